package markdown

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	sanitizePolicyOnce sync.Once
	sanitizePolicy     *bluemonday.Policy
)

// Sanitize scrubs a rendered fragment with a user-generated-content policy.
// Heading ids and code language classes survive so anchors and syntax
// highlighting keep working.
func Sanitize(fragment []byte) []byte {
	if len(fragment) == 0 {
		return fragment
	}
	return proseSanitizer().SanitizeBytes(fragment)
}

func proseSanitizer() *bluemonday.Policy {
	sanitizePolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		policy.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+-]+$`)).OnElements("code")
		policy.AllowAttrs("type", "checked", "disabled").OnElements("input")
		policy.AllowElements("input")
		sanitizePolicy = policy
	})
	return sanitizePolicy
}
