package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/vinodismyname/mcpcellar/pkg/pagination"
)

var (
	v    *validator.Validate
	once sync.Once
)

// Validator returns a singleton validator with custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		// Report JSON field names so messages match the tool schema.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		// Custom: source workbook path must have a supported extension
		_ = v.RegisterValidation("filepath_ext", func(fl validator.FieldLevel) bool {
			s := strings.ToLower(strings.TrimSpace(fl.Field().String()))
			if s == "" {
				return false
			}
			return strings.HasSuffix(s, ".xlsx") || strings.HasSuffix(s, ".xlsm")
		})
		// Custom: report exports are always .xlsx
		_ = v.RegisterValidation("xlsx_out", func(fl validator.FieldLevel) bool {
			s := strings.ToLower(strings.TrimSpace(fl.Field().String()))
			return s == "" || strings.HasSuffix(s, ".xlsx")
		})
		// Custom: cursor must be decodable via pagination.DecodeCursor
		_ = v.RegisterValidation("cursor", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true // empty is allowed; use omitempty with this tag
			}
			_, err := pagination.DecodeCursor(s)
			return err == nil
		})
		// Custom: a date in YYYY-MM-DD form
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true
			}
			_, err := ParseDate(s)
			return err == nil
		})
		_ = v.RegisterValidation("isomonth", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true
			}
			_, err := ParseMonth(s)
			return err == nil
		})
	})
	return v
}

// ValidateStruct validates a struct and returns a user-friendly error string
// suitable for MCP tool errors. Returns empty string when valid.
func ValidateStruct(s any) string {
	err := Validator().Struct(s)
	if err == nil {
		return ""
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return "VALIDATION: invalid inputs"
	}
	fe := ve[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("VALIDATION: %s is required", field)
	case "filepath_ext":
		return fmt.Sprintf("VALIDATION: %s must be an Excel file (.xlsx, .xlsm)", field)
	case "xlsx_out":
		return fmt.Sprintf("VALIDATION: %s must end in .xlsx", field)
	case "cursor":
		return "CURSOR_INVALID: failed to decode cursor; restart pagination without a cursor"
	case "isodate":
		return fmt.Sprintf("VALIDATION: %s must be a date like 2024-03-31", field)
	case "isomonth":
		return fmt.Sprintf("VALIDATION: %s must be a month like 2024-03", field)
	case "oneof":
		return fmt.Sprintf("VALIDATION: %s must be one of [%s]", field, fe.Param())
	case "min", "max", "gte", "lte", "gt", "lt":
		return fmt.Sprintf("VALIDATION: %s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	case "ltefield":
		return fmt.Sprintf("VALIDATION: %s must not exceed %s", field, strings.ToLower(fe.Param()))
	}
	return fmt.Sprintf("VALIDATION: invalid %s", field)
}
