// internal/app/system/htmlsanitize/htmlsanitize.go
// Package htmlsanitize renders user-supplied plain text as HTML that is
// safe to insert into a page. Stored text is never rewritten; escaping
// happens on output only.
package htmlsanitize

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once    sync.Once
	linkPol *bluemonday.Policy
)

// policy admits only the anchors TextHTML generates, with http(s) targets.
func policy() *bluemonday.Policy {
	once.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowAttrs("href").OnElements("a")
		p.AllowURLSchemes("http", "https")
		p.RequireParseableURLs(true)
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		linkPol = p
	})
	return linkPol
}

// urlPattern matches bare http(s) URLs in raw text.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// TextHTML escapes s and turns bare http(s) URLs into links. Markup typed
// by the user, including entity-encoded markup, comes out as visible text.
func TextHTML(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(s, -1) {
		u := strings.TrimRight(s[loc[0]:loc[1]], ".,;:!?)")
		b.WriteString(html.EscapeString(s[last:loc[0]]))
		eu := html.EscapeString(u)
		b.WriteString(`<a href="` + eu + `">` + eu + `</a>`)
		last = loc[0] + len(u)
	}
	b.WriteString(html.EscapeString(s[last:]))
	return policy().Sanitize(b.String())
}
