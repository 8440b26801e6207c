package common

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NA is the placeholder written for values that could not be extracted.
const NA = "N/A"

// Fielder is implemented by typed values that expose named attributes.
// Field returns found=false when the attribute does not exist, and a nil value
// when it exists but is unset.
type Fielder interface {
	Field(name string) (value any, found bool)
}

// Path resolves a dotted path such as "parameter.name" against v.
//
// Each segment is resolved against the attribute branch (Fielder) first and the
// mapping branch (map[string]any) second. A missing segment or a nil value at
// any step yields def. Empty strings and zero values are returned as found.
func Path(v any, path string, def any) any {
	cur := v
	for _, part := range strings.Split(path, ".") {
		if cur == nil {
			return def
		}
		if f, ok := cur.(Fielder); ok {
			if next, found := f.Field(part); found {
				cur = next
				continue
			}
		}
		if m, ok := cur.(map[string]any); ok {
			if next, found := m[part]; found {
				cur = next
				continue
			}
		}
		return def
	}
	if cur == nil {
		return def
	}
	return cur
}

// PathString is Path with the result rendered as text.
func PathString(v any, path string, def string) string {
	out := Path(v, path, nil)
	if out == nil {
		return def
	}
	return Stringify(out)
}

// Stringify renders scalar values the way they appear in exports.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
