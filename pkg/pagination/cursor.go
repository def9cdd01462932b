package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
)

// View names the result set a cursor pages through.
type View string

const (
	ViewSaleLines View = "sale_lines"
	ViewABC       View = "abc"
	ViewXYZ       View = "xyz"
	ViewMonthDiff View = "month_diff"
	ViewMonthly   View = "monthly"
)

// ErrCursorMismatch indicates a cursor was issued for a different dataset,
// view, or parameter set than the one it is being replayed against.
var ErrCursorMismatch = errors.New("cursor: does not match request")

// Cursor is the canonical, opaque pagination token (pre-encoding) with short field names to
// minimize payload size. It is serialized to minified JSON and encoded with URL-safe base64.
//
// Fields:
//   - v:    version of the cursor schema
//   - did:  dataset ID
//   - fp:   dataset fingerprint at issue time
//   - view: result set being paged
//   - off:  row offset from the start of the result
//   - ps:   page size in rows
//   - ph:   hash of the analysis parameters the result was computed with
//   - iat:  issued-at timestamp (unix seconds)
type Cursor struct {
	V    int    `json:"v"`
	Did  string `json:"did"`
	Fp   string `json:"fp,omitempty"`
	View View   `json:"view"`
	Off  int    `json:"off"`
	Ps   int    `json:"ps"`
	Ph   string `json:"ph,omitempty"`
	Iat  int64  `json:"iat"`
}

// EncodeCursor serializes and encodes the cursor as URL-safe base64 (without padding).
func EncodeCursor(c Cursor) (string, error) {
	if err := validate(&c); err != nil {
		return "", err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor decodes a URL-safe base64 token and parses the JSON cursor.
func DecodeCursor(token string) (*Cursor, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return nil, errors.New("cursor: empty token")
	}
	data, err := base64.RawURLEncoding.DecodeString(t)
	if err != nil {
		return nil, fmt.Errorf("cursor: invalid base64: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("cursor: invalid json: %w", err)
	}
	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Matches checks that the cursor belongs to the given dataset snapshot, view
// and parameter hash.
func (c *Cursor) Matches(did, fp string, view View, ph string) error {
	if c.Did != did || c.View != view || c.Ph != ph {
		return ErrCursorMismatch
	}
	if c.Fp != "" && fp != "" && c.Fp != fp {
		return ErrCursorMismatch
	}
	return nil
}

// ParamsHash returns a short stable hash of v's JSON form. Struct field order
// makes the encoding deterministic.
func ParamsHash(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return fmt.Sprintf("%016x", h.Sum64())
}

// validate performs structural checks and defaulting.
func validate(c *Cursor) error {
	if c.V <= 0 {
		c.V = 1
	}
	if c.Iat == 0 {
		c.Iat = time.Now().Unix()
	}
	if strings.TrimSpace(c.Did) == "" {
		return errors.New("cursor: did (dataset id) required")
	}
	switch c.View {
	case ViewSaleLines, ViewABC, ViewXYZ, ViewMonthDiff, ViewMonthly:
	default:
		return fmt.Errorf("cursor: invalid view %q", string(c.View))
	}
	if c.Off < 0 {
		return errors.New("cursor: off must be >= 0")
	}
	if c.Ps <= 0 {
		return errors.New("cursor: ps must be > 0")
	}
	return nil
}

// NextOffset computes the next offset after returning n rows.
func NextOffset(curr, n int) int {
	if curr < 0 {
		curr = 0
	}
	if n <= 0 {
		return curr
	}
	return curr + n
}

// Window returns the [start, end) bounds of a page over total rows.
func Window(total, off, ps int) (int, int) {
	if off < 0 {
		off = 0
	}
	if off > total {
		off = total
	}
	end := off + ps
	if ps <= 0 || end > total {
		end = total
	}
	return off, end
}
