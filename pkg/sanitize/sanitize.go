package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text strips all HTML from user-supplied content and trims surrounding
// whitespace. Post captions, comments, bios and the like are stored as
// plain text only.
func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
