package render

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	emailPolicyOnce sync.Once
	emailPolicy     *bluemonday.Policy
)

// SanitizeHTML strips markup the email preview does not allow. It keeps the
// user-generated-content element set plus the inline styles the node
// templates emit.
func SanitizeHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return EmailPolicy().Sanitize(trimmed)
}

// EmailPolicy returns the shared sanitizer policy.
func EmailPolicy() *bluemonday.Policy {
	emailPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowStyles(
			"text-align", "color", "background-color", "height", "padding",
			"display", "text-decoration", "border-radius",
		).Globally()
		policy.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
		emailPolicy = policy
	})
	return emailPolicy
}
