package extract

import (
	"encoding/json"
	"strings"

	"github.com/minicart/minicart/internal/page"
)

// pickString extracts the first usable string from an arbitrary JSON node:
// a plain string, the first usable element of an array, or a well-known
// wrapper member of an object. Both JSON extractors funnel values through
// here so schema quirks are handled in one place.
func pickString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, el := range t {
			if s := pickString(el); s != "" {
				return s
			}
		}
	case map[string]any:
		for _, key := range []string{"@value", "value", "url", "contentUrl"} {
			if s, ok := t[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// pickURL extracts a string and resolves it to an absolute URL against the
// page; unresolvable values are discarded, never returned relative.
func pickURL(p *page.Page, v any) string {
	s := pickString(v)
	if s == "" {
		return ""
	}
	return p.AbsURL(s)
}

// parseScriptJSON decodes script text that should hold a JSON payload.
// It tolerates multiple top-level roots and scripts that mix JS with one
// embedded JSON object; a nil return means nothing parseable was found.
func parseScriptJSON(txt string) any {
	var v any
	if err := json.Unmarshal([]byte(txt), &v); err == nil {
		return v
	}
	if raw := firstJSONObject(txt); raw != "" {
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	return nil
}

// firstJSONObject returns the first balanced {...} slice of txt, or "".
// String literals and escapes are respected so braces inside values do
// not unbalance the scan.
func firstJSONObject(txt string) string {
	start := strings.IndexByte(txt, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(txt); i++ {
		ch := txt[i]
		if inStr {
			if esc {
				esc = false
			} else if ch == '\\' {
				esc = true
			} else if ch == '"' {
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := txt[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate
				}
				return ""
			}
		}
	}
	return ""
}
