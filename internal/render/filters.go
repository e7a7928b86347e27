package render

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Stringify converts a resolved value to its rendered form. Scalars render
// naturally, timestamps as RFC 3339, and structured values as the empty
// string (use the json filter to emit structures).
func Stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return ""
	}
}

func registerBuiltins(r *Renderer) {
	r.RegisterFilter("date", dateFilter)
	r.RegisterFilter("uri_escape", func(v interface{}, _ string) (interface{}, error) {
		return url.QueryEscape(Stringify(v)), nil
	})
	r.RegisterFilter("upcase", func(v interface{}, _ string) (interface{}, error) {
		return strings.ToUpper(Stringify(v)), nil
	})
	r.RegisterFilter("downcase", func(v interface{}, _ string) (interface{}, error) {
		return strings.ToLower(Stringify(v)), nil
	})
	r.RegisterFilter("trim", func(v interface{}, _ string) (interface{}, error) {
		return strings.TrimSpace(Stringify(v)), nil
	})
	r.RegisterFilter("default", func(v interface{}, arg string) (interface{}, error) {
		if Stringify(v) == "" {
			return arg, nil
		}
		return v, nil
	})
	r.RegisterFilter("json", func(v interface{}, _ string) (interface{}, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	})
}

// dateFilter formats a timestamp using a Go reference layout. It accepts
// time.Time values and RFC 3339 strings.
func dateFilter(v interface{}, arg string) (interface{}, error) {
	layout := arg
	if layout == "" {
		layout = time.RFC1123
	}
	switch x := v.(type) {
	case time.Time:
		return x.Format(layout), nil
	case string:
		t, err := time.Parse(time.RFC3339, x)
		if err != nil {
			return nil, fmt.Errorf("date: %q is not a timestamp", x)
		}
		return t.Format(layout), nil
	case nil:
		return nil, fmt.Errorf("date: no value")
	default:
		return nil, fmt.Errorf("date: cannot format %T", v)
	}
}
