package scene

import (
	"fmt"
	"html"
	"strings"

	"digital-garden/backend/internal/knowledge"
	"digital-garden/backend/internal/portfolio"
)

// MaxShortLabel is the character cap of labels drawn in the flat view
const MaxShortLabel = 15

// Label is the hover tooltip markup of a node
func Label(n knowledge.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="graph-tooltip"><strong>%s</strong>`, html.EscapeString(n.Name))
	if n.Type != "" {
		fmt.Fprintf(&b, `<br/><em>%s</em>`, html.EscapeString(n.Type.Title()))
	}
	if n.Description != "" {
		fmt.Fprintf(&b, `<br/>%s`, html.EscapeString(n.Description))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// ShortLabel truncates a node name for the flat view
func ShortLabel(n knowledge.Node) string {
	return portfolio.Truncate(n.Name, MaxShortLabel)
}
