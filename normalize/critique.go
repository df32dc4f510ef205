package normalize

import (
	"strconv"
	"strings"
)

// Critique is a parsed critique response.
type Critique struct {
	Text  string  `json:"critique"`
	Score float64 `json:"score"`
}

// ParseCritique extracts {"critique": ..., "score": ...} from raw provider
// text using the same fence/span/repair layers as Strategies. Scores may be
// numbers or strings like "7.5" or "8/10"; they are not clamped. ok is false
// when no critique text can be found.
func ParseCritique(raw string) (Critique, bool) {
	v, ok := parseLayered(StripFences(raw), '{', '}')
	if !ok {
		return Critique{}, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return Critique{}, false
	}
	text, _ := m["critique"].(string)
	if strings.TrimSpace(text) == "" {
		return Critique{}, false
	}
	return Critique{Text: text, Score: score(m["score"])}, true
}

func score(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		s := strings.TrimSpace(t)
		if i := strings.IndexByte(s, '/'); i >= 0 {
			s = strings.TrimSpace(s[:i])
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}
