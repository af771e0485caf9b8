package submission

import (
	"html"
	"strings"

	"github.com/k3a/html2text"
)

// Sanitize strips any HTML markup from a form value and escapes what
// remains, so stored text is inert wherever it is rendered later.
func Sanitize(s string) string {
	plain := html2text.HTML2Text(s)
	return html.EscapeString(strings.TrimSpace(plain))
}
