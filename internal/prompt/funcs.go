package prompt

import (
	"fmt"
	"strings"
	"text/template"

	json "github.com/goccy/go-json"
)

// DefaultFuncMap returns the functions available to every prompt template.
func DefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"trim":     strings.TrimSpace,
		"join":     join,
		"indent":   indent,
		"quote":    quote,
		"default":  defaultFunc,
		"toJSON":   toJSON,
		"truncate": truncate,
	}
}

func join(sep string, items []string) string {
	return strings.Join(items, sep)
}

// indent prefixes every line of s with the given number of spaces.
func indent(spaces int, s string) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// defaultFunc returns def when val is nil or the empty string.
func defaultFunc(def, val any) any {
	if val == nil {
		return def
	}
	if s, ok := val.(string); ok && s == "" {
		return def
	}
	return val
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(n int, s string) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
