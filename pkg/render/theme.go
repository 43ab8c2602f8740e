package render

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeContext is the resolved theme data handed to the email wrapper.
type ThemeContext struct {
	Name    string
	Variant string
	Tokens  map[string]string
	CSSVars map[string]string
}

// Style renders the CSS variables as an inline style declaration list.
func (t ThemeContext) Style() string {
	return cssVarsStyle(t.CSSVars)
}

// themeFromSelection merges the manifest tokens with the selected variant's
// overrides and derives `--token` CSS variables from them.
func themeFromSelection(selection *theme.Selection) ThemeContext {
	if selection == nil {
		return ThemeContext{}
	}
	ctx := ThemeContext{Name: selection.Theme, Variant: selection.Variant}

	tokens := make(map[string]string)
	if manifest := selection.Manifest; manifest != nil {
		for key, value := range manifest.Tokens {
			tokens[key] = value
		}
		if variant, ok := manifest.Variants[selection.Variant]; ok {
			for key, value := range variant.Tokens {
				tokens[key] = value
			}
		}
	}
	if len(tokens) > 0 {
		ctx.Tokens = tokens
		ctx.CSSVars = cssVars(tokens)
	}
	return ctx
}

func cssVars(tokens map[string]string) map[string]string {
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		name := strings.TrimSpace(key)
		if name == "" {
			continue
		}
		name = strings.NewReplacer(".", "-", "_", "-", " ", "-").Replace(name)
		out["--"+strings.TrimPrefix(name, "--")] = value
	}
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}
