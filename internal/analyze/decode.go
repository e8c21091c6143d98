package analyze

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// CleanJSON strips markdown code fences and anything outside the outermost
// {...} span of a model reply.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// DecodeObject parses a model reply into a generic JSON object. Numbers are
// kept as json.Number so they format without float noise.
func DecodeObject(raw string) (map[string]any, error) {
	cleaned := CleanJSON(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return nil, eris.New("analyze: no json object in reply")
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, eris.Wrap(err, "analyze: decode reply")
	}
	return obj, nil
}

// String coerces a loosely typed JSON value to text:
//
//	string       trimmed
//	number, bool formatted
//	list         non-empty elements joined with ", "
//	object       non-empty values joined with ", " in sorted key order
//	null, ""     not present
func String(v any) (string, bool) {
	var s string
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		s = strings.TrimSpace(val)
	case json.Number:
		s = val.String()
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			s = "true"
		} else {
			s = "false"
		}
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if p, ok := String(item); ok {
				parts = append(parts, p)
			}
		}
		s = strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if p, ok := String(val[k]); ok {
				parts = append(parts, p)
			}
		}
		s = strings.Join(parts, ", ")
	default:
		return "", false
	}
	return s, s != ""
}

// StringList coerces a list (or a single scalar) to non-empty strings.
func StringList(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := String(item); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		if s, ok := String(val); ok {
			return []string{s}
		}
		return nil
	}
}
