package template

import (
	"regexp"
	"strings"
)

var htmlEntities = map[string]string{
	"&lt;":   "<",
	"&gt;":   ">",
	"&amp;":  "&",
	"&quot;": `"`,
	"&#39;":  "'",
	"&nbsp;": " ",
}

var (
	entityRe = regexp.MustCompile(`&[a-zA-Z0-9#]+;`)
	brRe     = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRe    = regexp.MustCompile(`</?[^>]+(>|$)`)
)

// HTMLToMarkdown normalizes an HTML fragment to plain markdown: known named
// entities are decoded, <br> variants become newlines, all other tags are
// stripped, and surrounding whitespace is trimmed. Unknown entities pass
// through untouched.
func HTMLToMarkdown(text string) string {
	out := entityRe.ReplaceAllStringFunc(text, func(entity string) string {
		if decoded, ok := htmlEntities[entity]; ok {
			return decoded
		}
		return entity
	})
	out = brRe.ReplaceAllString(out, "\n")
	out = tagRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
