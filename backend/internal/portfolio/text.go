package portfolio

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are elements whose text never belongs in a description
const noiseSelectors = "script, style, noscript, iframe, svg"

// PlainText reduces an HTML or plain-text fragment to collapsed plain text.
// Repository descriptions and paper abstracts occasionally carry markup
// (JATS tags, inline badges) that must not leak into labels.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpace(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment)
	}
	doc.Find(noiseSelectors).Remove()

	// Block elements are separated by whitespace in the collapsed output
	doc.Find("p, br, li, div, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most n runes, appending "..." when cut
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
