package extract

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/kvittering/kvittering/internal/providers/utils"
)

// Path addresses a value nested in decoded JSON, one object key per element
type Path []string

// P builds a Path from a dotted string ("props.pageProps.ad.data")
func P(dotted string) Path {
	return Path(strings.Split(dotted, "."))
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Lookup walks root along p. Missing keys and non-object intermediates yield nil.
func Lookup(root any, p Path) any {
	cur := root
	for _, key := range p {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = obj[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// FirstPresent returns the first value along paths that is not empty
func FirstPresent(root any, paths ...Path) any {
	for _, p := range paths {
		if v := Lookup(root, p); !isEmpty(v) {
			return v
		}
	}
	return nil
}

// FirstPrice returns the first price along paths that coerces to a positive
// amount. Zero prices in any form ("0", 0.0, "0.00") fall through.
func FirstPrice(root any, paths ...Path) int {
	for _, p := range paths {
		if n := AsInt(Lookup(root, p)); n > 0 {
			return n
		}
	}
	return 0
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f == 0
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// decodeJSON decodes with UseNumber so large ids and prices survive intact
func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// AsString returns v when it is a string, or the textual form of a number
func AsString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}

// AsInt coerces a JSON price into whole currency units. Numbers are
// truncated toward zero, strings are parsed by their integer prefix and
// negative results are treated as unknown.
func AsInt(v any) int {
	var n int
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			n = clampInt(float64(i))
		} else if f, err := t.Float64(); err == nil {
			n = clampInt(f)
		}
	case float64:
		n = clampInt(t)
	case int:
		n = t
	case string:
		n = utils.ParseLeadingInt(t)
	}
	if n < 0 {
		return 0
	}
	return n
}

func clampInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}

// AsImageList accepts a single URL string, a list of URL strings, or a list
// of objects carrying the URL under one of keys. Order is preserved.
func AsImageList(v any, keys ...string) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case map[string]any:
		if u := firstStringKey(t, keys); u != "" {
			return []string{u}
		}
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			switch it := item.(type) {
			case string:
				out = append(out, it)
			case map[string]any:
				out = append(out, firstStringKey(it, keys))
			}
		}
		return out
	}
	return nil
}

func firstStringKey(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if s := AsString(obj[k]); s != "" {
			return s
		}
	}
	return ""
}
