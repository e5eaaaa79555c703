package encoders

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// formatCell renders a table value as text. Nested objects and lists are
// written as compact JSON; nil is the empty string.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.Equal(val.Truncate(24 * time.Hour)) {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
