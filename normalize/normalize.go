// Package normalize coerces raw language-model output into strategy objects.
// Model output is not guaranteed to be well-formed JSON; every function here
// degrades to an empty result instead of failing.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Strategies extracts a list of JSON objects from raw provider text. Layers
// are tried in order: fence stripping, direct parse, greedy [ ... ] span,
// trailing-comma repair. The parsed value is then shaped: {"strategies": [...]}
// unwraps, a lone strategy object is wrapped, arrays keep only objects.
func Strategies(raw string) []map[string]any {
	v, ok := parseLayered(StripFences(raw), '[', ']')
	if !ok {
		return []map[string]any{}
	}
	return shape(v)
}

// StripFences removes leading and trailing markdown code fences (``` or ```json).
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// drop the language tag on the opening fence line
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{") {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseLayered parses text directly, then the greedy open...close span, then
// the same span with trailing commas removed.
func parseLayered(text string, open, close byte) (any, bool) {
	if v, ok := parse(text); ok {
		return v, true
	}
	candidate := text
	if span, ok := greedySpan(text, open, close); ok {
		if v, ok := parse(span); ok {
			return v, true
		}
		candidate = span
	}
	return parse(RepairTrailingCommas(candidate))
}

func parse(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

func greedySpan(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// RepairTrailingCommas drops commas that directly precede a closing ] or }
// (ignoring whitespace). Commas inside string literals are left alone.
func RepairTrailingCommas(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			sb.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == ']' || s[j] == '}') {
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

func shape(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if arr, ok := t["strategies"].([]any); ok {
			return objects(arr)
		}
		if looksLikeStrategy(t) {
			return []map[string]any{t}
		}
	case []any:
		return objects(t)
	}
	return []map[string]any{}
}

func objects(arr []any) []map[string]any {
	out := make([]map[string]any, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func looksLikeStrategy(m map[string]any) bool {
	_, hasTitle := m["title"]
	_, hasSummary := m["summary"]
	return hasTitle && hasSummary
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
