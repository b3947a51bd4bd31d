package models

import (
	"strconv"
	"strings"
)

// FormatValue renders a parsed cell for text output. Null is the empty
// string and sets use the "{A, B}" collection form.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', 1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case []string:
		return "{" + strings.Join(x, ", ") + "}"
	default:
		return ""
	}
}
