// Package render draws a knowledge graph scene as static SVG or as an
// interactive 3D HTML page.
package render

import (
	"fmt"
	"html"
	"math"
	"strings"

	"digital-garden/backend/internal/knowledge"
	"digital-garden/backend/internal/scene"
)

// SVGOptions sizes the flat fallback drawing
type SVGOptions struct {
	Width  int
	Height int
	// Radius of the outer ring holding repository nodes
	Radius float64
}

// DefaultSVGOptions matches the 600x600 fallback view
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 600, Height: 600, Radius: 200}
}

const (
	linkColor     = "#6b7280"
	linkOpacity   = 0.3
	strokeColor   = "#e5e7eb"
	labelColor    = "#374151"
	minNodeRadius = 8.0
	dimOpacity    = 0.25
)

// nodeRadius is the drawn size of a node before hover scaling
func nodeRadius(n knowledge.Node) float64 {
	return math.Max(n.Val*2, minNodeRadius)
}

// SVG draws the visible part of the scene on the circular layout. The
// hovered node is enlarged; when a node has focus everything outside its
// neighborhood is dimmed.
func SVG(s *scene.Scene, opts SVGOptions) (string, error) {
	if s == nil {
		return "", fmt.Errorf("scene cannot be nil")
	}
	def := DefaultSVGOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Radius <= 0 {
		opts.Radius = def.Radius
	}

	data := s.Data()
	cx, cy := float64(opts.Width)/2, float64(opts.Height)/2
	pos := scene.CircularLayout(data, cx, cy, opts.Radius)
	focused := s.Selected() != ""

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img">`,
		opts.Width, opts.Height, opts.Width, opts.Height)
	b.WriteString("\n")

	if data.IsEmpty() {
		fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" font-size="14" fill="%s">No projects to display</text>`+"\n",
			num(cx), num(cy), labelColor)
		b.WriteString("</svg>\n")
		return b.String(), nil
	}

	b.WriteString(`<g class="links">` + "\n")
	for _, l := range data.Links {
		src, okS := pos[l.Source]
		dst, okT := pos[l.Target]
		if !okS || !okT {
			continue
		}
		opacity := linkOpacity
		if focused && !(s.IsHighlighted(l.Source) && s.IsHighlighted(l.Target)) {
			opacity = linkOpacity * dimOpacity
		}
		fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1" opacity="%s"/>`+"\n",
			num(src.X), num(src.Y), num(dst.X), num(dst.Y), linkColor, num(opacity))
	}
	b.WriteString("</g>\n")

	b.WriteString(`<g class="nodes">` + "\n")
	for _, n := range data.Nodes {
		p := pos[n.ID]
		r := nodeRadius(n) * s.Scale(n.ID)

		opacity := scene.MeshOpacity
		if focused && !s.IsHighlighted(n.ID) {
			opacity = dimOpacity
		}
		strokeWidth := 2
		if n.ID == s.Selected() {
			strokeWidth = 4
		}

		fmt.Fprintf(&b, `<g class="node node-%s" data-node-id="%s">`, html.EscapeString(string(n.Type)), html.EscapeString(n.ID))
		fmt.Fprintf(&b, `<title>%s</title>`, html.EscapeString(tooltip(n)))
		attrs := fmt.Sprintf(`fill="%s" fill-opacity="%s" stroke="%s" stroke-width="%d"`,
			html.EscapeString(n.Color), num(opacity), strokeColor, strokeWidth)
		b.WriteString(shapeElement(scene.GeometryFor(n).Shape, p.X, p.Y, r, attrs))
		fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" font-size="10" fill="%s">%s</text>`,
			num(p.X), num(p.Y-(r+15)), labelColor, html.EscapeString(scene.ShortLabel(n)))
		b.WriteString("</g>\n")
	}
	b.WriteString("</g>\n</svg>\n")
	return b.String(), nil
}

// shapeElement draws the 2D silhouette of a node geometry
func shapeElement(shape scene.Shape, x, y, r float64, attrs string) string {
	switch shape {
	case scene.ShapeOctahedron:
		return fmt.Sprintf(`<polygon points="%s" %s/>`, polygon(x, y, r, 4, 0), attrs)
	case scene.ShapeBox:
		side := r * math.Sqrt2
		return fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" %s/>`,
			num(x-side/2), num(y-side/2), num(side), num(side), attrs)
	case scene.ShapeCylinder:
		return fmt.Sprintf(`<ellipse cx="%s" cy="%s" rx="%s" ry="%s" %s/>`,
			num(x), num(y), num(r), num(r*0.6), attrs)
	case scene.ShapeTetrahedron:
		return fmt.Sprintf(`<polygon points="%s" %s/>`, polygon(x, y, r, 3, -math.Pi/2), attrs)
	default:
		return fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" %s/>`, num(x), num(y), num(r), attrs)
	}
}

func polygon(x, y, r float64, sides int, offset float64) string {
	pts := make([]string, sides)
	for i := 0; i < sides; i++ {
		a := offset + float64(i)*2*math.Pi/float64(sides)
		pts[i] = num(x+math.Cos(a)*r) + "," + num(y+math.Sin(a)*r)
	}
	return strings.Join(pts, " ")
}

func tooltip(n knowledge.Node) string {
	if n.Description == "" {
		return n.Name
	}
	return n.Name + ": " + n.Description
}

// num formats coordinates with two decimals and no trailing zeros
func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
