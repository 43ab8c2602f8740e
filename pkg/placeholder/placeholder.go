// Package placeholder extracts variable references from control values. Three
// delimiter styles are recognised: `{{{x}}}`, `{{x}}` and `{#x#}`. Nested braces
// inside a placeholder are not supported.
package placeholder

import (
	"regexp"
	"strings"
)

// pattern lists the delimiter styles in precedence order so triple braces win
// over double braces when both start at the same position.
var pattern = regexp.MustCompile(`\{\{\{(.*?)\}\}\}|\{\{(.*?)\}\}|\{#(.*?)#\}`)

// Extract returns the variable names referenced by text in occurrence order.
// Duplicates are preserved; use Unique when a set is needed.
func Extract(text string) []string {
	if text == "" {
		return []string{}
	}

	matches := pattern.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, groups := range matches {
		for _, group := range groups[1:] {
			if group == "" {
				continue
			}
			if name := strings.TrimSpace(group); name != "" {
				out = append(out, name)
			}
			break
		}
	}
	return out
}

// Unique drops repeated names while keeping the first occurrence order.
func Unique(names []string) []string {
	if len(names) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// HasPrefix reports whether name starts with any of the supplied prefixes.
func HasPrefix(name string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Token is a run of literal text or a single placeholder. Name is empty for
// literal text.
type Token struct {
	Text string
	Name string
}

// Tokenize splits text into literal runs and placeholders in occurrence
// order. Blank placeholders stay part of the surrounding literal text.
func Tokenize(text string) []Token {
	var out []Token
	literal := func(s string) {
		if s == "" {
			return
		}
		if n := len(out); n > 0 && out[n-1].Name == "" {
			out[n-1].Text += s
			return
		}
		out = append(out, Token{Text: s})
	}

	last := 0
	for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
		name := ""
		for g := 1; g < len(loc)/2; g++ {
			if loc[2*g] >= 0 {
				name = strings.TrimSpace(text[loc[2*g]:loc[2*g+1]])
				break
			}
		}
		literal(text[last:loc[0]])
		if name == "" {
			literal(text[loc[0]:loc[1]])
		} else {
			out = append(out, Token{Text: text[loc[0]:loc[1]], Name: name})
		}
		last = loc[1]
	}
	literal(text[last:])
	return out
}
