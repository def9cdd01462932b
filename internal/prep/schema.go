package prep

import (
	"fmt"
	"strings"
)

// Field maps a canonical column name to the header synonyms it may appear
// under in a source export. The first synonym present wins.
type Field struct {
	Name     string
	Synonyms []string
	Required bool
}

// Schema is the outcome of resolving fields against a header row once per load.
type Schema struct {
	index map[string]int
	order []string
}

// Resolve binds every field to a column index. A missing required field
// returns ErrMissingColumn naming the field and the headers it was looked up by.
func Resolve(headers []string, fields []Field) (Schema, error) {
	pos := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}
	s := Schema{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		found := -1
		for _, syn := range f.Synonyms {
			if i, ok := pos[normalizeHeader(syn)]; ok {
				found = i
				break
			}
		}
		if found < 0 {
			if f.Required {
				return Schema{}, fmt.Errorf("%w: %s (looked for %s)", ErrMissingColumn, f.Name, strings.Join(quoteAll(f.Synonyms), ", "))
			}
			continue
		}
		s.index[f.Name] = found
		s.order = append(s.order, f.Name)
	}
	return s, nil
}

// Index returns the column index of a resolved field, or -1.
func (s Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the field was resolved.
func (s Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Fields lists the resolved canonical names in declaration order.
func (s Schema) Fields() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
