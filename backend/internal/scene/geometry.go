// Package scene models the interactive 3D knowledge graph surface: the shape
// drawn for each node, where nodes sit, where the camera looks from, and how
// hover, click and right-click change what is shown.
package scene

import (
	"math"

	"digital-garden/backend/internal/constants"
	"digital-garden/backend/internal/knowledge"
)

// Shape is the 3D primitive drawn for a node
type Shape string

const (
	ShapeSphere      Shape = "sphere"
	ShapeOctahedron  Shape = "octahedron"
	ShapeBox         Shape = "box"
	ShapeCylinder    Shape = "cylinder"
	ShapeTetrahedron Shape = "tetrahedron"
)

// Geometry sizes a shape. Radius applies to sphere, octahedron, tetrahedron
// and cylinder; Width/Height/Depth to box; Height to cylinder.
type Geometry struct {
	Shape  Shape   `json:"shape"`
	Radius float64 `json:"radius,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Depth  float64 `json:"depth,omitempty"`
}

// Material is the surface of a node mesh
type Material struct {
	Color       string  `json:"color"`
	Transparent bool    `json:"transparent"`
	Opacity     float64 `json:"opacity"`
	Shininess   float64 `json:"shininess"`
}

// Mesh is everything needed to draw one node
type Mesh struct {
	NodeID   string   `json:"nodeId"`
	Geometry Geometry `json:"geometry"`
	Material Material `json:"material"`
	Scale    float64  `json:"scale"`
}

// Material constants shared by every node
const (
	MeshOpacity   = 0.8
	MeshShininess = 100
	HoverScale    = 1.2
	RestScale     = 1.0
)

func nodeVal(n knowledge.Node) float64 {
	if n.Val <= 0 {
		return constants.DefaultNodeVal
	}
	return n.Val
}

// GeometryFor picks the primitive and its dimensions from the node type and size
func GeometryFor(n knowledge.Node) Geometry {
	v := nodeVal(n)
	switch n.Type {
	case knowledge.NodeRepository:
		return Geometry{Shape: ShapeSphere, Radius: v * 0.5}
	case knowledge.NodeTopic:
		return Geometry{Shape: ShapeOctahedron, Radius: v * 0.6}
	case knowledge.NodeTechnology:
		side := v * 0.8
		return Geometry{Shape: ShapeBox, Width: side, Height: side, Depth: side}
	case knowledge.NodeStatus:
		return Geometry{Shape: ShapeCylinder, Radius: v * 0.5, Height: v * 0.8}
	case knowledge.NodeYear:
		return Geometry{Shape: ShapeTetrahedron, Radius: v * 0.7}
	default:
		return Geometry{Shape: ShapeSphere, Radius: v * 0.5}
	}
}

// MaterialFor returns the translucent phong-style surface of a node
func MaterialFor(n knowledge.Node) Material {
	return Material{
		Color:       n.Color,
		Transparent: true,
		Opacity:     MeshOpacity,
		Shininess:   MeshShininess,
	}
}

// BoundingRadius is the radius of the sphere enclosing the geometry
func (g Geometry) BoundingRadius() float64 {
	switch g.Shape {
	case ShapeBox:
		return math.Sqrt(g.Width*g.Width+g.Height*g.Height+g.Depth*g.Depth) / 2
	case ShapeCylinder:
		return math.Hypot(g.Radius, g.Height/2)
	default:
		return g.Radius
	}
}
