package scene

import "math"

// Camera defaults
const (
	InitialDistance  = 300.0
	MinDistance      = 50.0
	MaxDistance      = 1500.0
	FieldOfView      = 40.0
	ZoomFitDuration  = 1000
	ZoomFitPadding   = 50.0
	DefaultViewWidth = 1200
	ViewHeight       = 600
	// ViewMargin is subtracted from the window width to size the canvas
	ViewMargin = 64
)

// Camera is a perspective camera orbiting a target
type Camera struct {
	Position    Vec3    `json:"position"`
	LookAt      Vec3    `json:"lookAt"`
	FOV         float64 `json:"fov"`
	MinDistance float64 `json:"minDistance"`
	MaxDistance float64 `json:"maxDistance"`
}

// NewCamera returns the camera at its starting pose, 300 units out on z
func NewCamera() Camera {
	return Camera{
		Position:    Vec3{Z: InitialDistance},
		FOV:         FieldOfView,
		MinDistance: MinDistance,
		MaxDistance: MaxDistance,
	}
}

// Distance from the camera to its target
func (c Camera) Distance() float64 {
	return c.Position.Distance(c.LookAt)
}

// Zoom scales the distance to the target; factors below 1 move closer.
// The result is clamped to the allowed range.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.setDistance(c.Distance() * factor)
}

// ZoomToFit points the camera at the center of the positions and backs off
// until the bounding sphere plus padding fills the view.
func (c *Camera) ZoomToFit(p Positions, padding float64) {
	if len(p) == 0 {
		*c = NewCamera()
		return
	}
	center, radius := p.Bounds()
	radius += padding
	half := c.FOV / 2 * math.Pi / 180
	dist := radius / math.Sin(half)

	c.LookAt = center
	c.Position = center.Add(Vec3{Z: 1})
	c.setDistance(dist)
}

func (c *Camera) setDistance(d float64) {
	d = math.Max(c.MinDistance, math.Min(c.MaxDistance, d))
	dir := c.Position.Sub(c.LookAt)
	l := dir.Length()
	if l == 0 {
		dir, l = Vec3{Z: 1}, 1
	}
	c.Position = c.LookAt.Add(dir.Scale(d / l))
}

// ResponsiveWidth sizes the canvas from the window width. Unknown or
// too-narrow windows get the default width.
func ResponsiveWidth(windowWidth int) int {
	if windowWidth <= ViewMargin {
		return DefaultViewWidth
	}
	return windowWidth - ViewMargin
}
