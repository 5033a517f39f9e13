package scene

import (
	"math"
	"math/rand"

	"digital-garden/backend/internal/knowledge"
)

// Vec3 is a point or direction in scene space
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3        { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3        { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(f float64) Vec3   { return Vec3{v.X * f, v.Y * f, v.Z * f} }
func (v Vec3) Length() float64        { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Length() }

// Positions maps node ids to coordinates
type Positions map[string]Vec3

// LayoutOptions tunes the force simulation
type LayoutOptions struct {
	// Dimensions is 2 or 3; 2 pins every node to z=0
	Dimensions int
	// WarmupTicks are simulation steps run before the layout is returned
	WarmupTicks int
	// Seed makes initial placement reproducible
	Seed int64
	// LinkDistance is the rest length of link springs
	LinkDistance float64
	// Charge is the pairwise repulsion strength (negative repels)
	Charge float64
}

// DefaultLayoutOptions mirrors the browser simulation defaults
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		Dimensions:   3,
		WarmupTicks:  100,
		Seed:         1,
		LinkDistance: 30,
		Charge:       -30,
	}
}

const (
	velocityDecay = 0.4
	alphaMin      = 0.001
	// alphaDecay cools alpha from 1 to alphaMin over 300 ticks
	alphaDecay = 0.0228
	minDistSq  = 1e-6
)

type body struct {
	pos Vec3
	vel Vec3
}

// ForceLayout places nodes with a deterministic force-directed simulation:
// many-body repulsion, spring links and a centering pull. The same graph
// and options always produce the same positions.
func ForceLayout(data knowledge.Data, opts LayoutOptions) Positions {
	if opts.Dimensions != 2 {
		opts.Dimensions = 3
	}
	if opts.LinkDistance <= 0 {
		opts.LinkDistance = 30
	}
	if opts.Charge == 0 {
		opts.Charge = -30
	}

	n := len(data.Nodes)
	out := make(Positions, n)
	if n == 0 {
		return out
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	index := make(map[string]int, n)
	bodies := make([]body, n)
	radius := 10 * math.Cbrt(float64(n))
	for i, node := range data.Nodes {
		index[node.ID] = i
		p := Vec3{
			X: (rng.Float64()*2 - 1) * radius,
			Y: (rng.Float64()*2 - 1) * radius,
		}
		if opts.Dimensions == 3 {
			p.Z = (rng.Float64()*2 - 1) * radius
		}
		bodies[i].pos = p
	}

	type spring struct{ a, b int }
	springs := make([]spring, 0, len(data.Links))
	degree := make([]int, n)
	for _, l := range data.Links {
		a, okA := index[l.Source]
		b, okB := index[l.Target]
		if !okA || !okB || a == b {
			continue
		}
		springs = append(springs, spring{a, b})
		degree[a]++
		degree[b]++
	}

	alpha := 1.0
	for tick := 0; tick < opts.WarmupTicks && alpha > alphaMin; tick++ {
		// many-body repulsion
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				d := bodies[j].pos.Sub(bodies[i].pos)
				distSq := d.X*d.X + d.Y*d.Y + d.Z*d.Z
				if distSq < minDistSq {
					d = Vec3{X: rng.Float64()*1e-3 + 1e-3, Y: rng.Float64()*1e-3 + 1e-3}
					distSq = d.X*d.X + d.Y*d.Y + d.Z*d.Z
				}
				f := opts.Charge * alpha / distSq
				push := d.Scale(f)
				bodies[j].vel = bodies[j].vel.Sub(push)
				bodies[i].vel = bodies[i].vel.Add(push)
			}
		}

		// link springs, weaker on busy nodes
		for _, s := range springs {
			d := bodies[s.b].pos.Add(bodies[s.b].vel).Sub(bodies[s.a].pos.Add(bodies[s.a].vel))
			dist := d.Length()
			if dist == 0 {
				continue
			}
			strength := 1 / float64(minInt(degree[s.a], degree[s.b]))
			k := (dist - opts.LinkDistance) / dist * alpha * strength
			bias := float64(degree[s.a]) / float64(degree[s.a]+degree[s.b])
			bodies[s.b].vel = bodies[s.b].vel.Sub(d.Scale(k * bias))
			bodies[s.a].vel = bodies[s.a].vel.Add(d.Scale(k * (1 - bias)))
		}

		for i := range bodies {
			bodies[i].vel = bodies[i].vel.Scale(1 - velocityDecay)
			bodies[i].pos = bodies[i].pos.Add(bodies[i].vel)
			if opts.Dimensions == 2 {
				bodies[i].pos.Z = 0
			}
		}

		// re-center on the origin
		var center Vec3
		for _, b := range bodies {
			center = center.Add(b.pos)
		}
		center = center.Scale(1 / float64(n))
		for i := range bodies {
			bodies[i].pos = bodies[i].pos.Sub(center)
		}

		alpha += (0 - alpha) * alphaDecay
	}

	for i, node := range data.Nodes {
		out[node.ID] = bodies[i].pos
	}
	return out
}

// CircularLayout is the flat fallback used when 3D rendering is unavailable:
// repositories on an outer ring of the given radius, group nodes on an
// inner ring at 0.4 of it.
func CircularLayout(data knowledge.Data, cx, cy, radius float64) Positions {
	out := make(Positions, len(data.Nodes))

	var repos, groups []knowledge.Node
	for _, node := range data.Nodes {
		if node.Type == knowledge.NodeRepository {
			repos = append(repos, node)
		} else {
			groups = append(groups, node)
		}
	}

	place := func(nodes []knowledge.Node, r float64) {
		for i, node := range nodes {
			angle := float64(i) / float64(len(nodes)) * 2 * math.Pi
			out[node.ID] = Vec3{X: cx + math.Cos(angle)*r, Y: cy + math.Sin(angle)*r}
		}
	}
	place(repos, radius)
	place(groups, radius*0.4)
	return out
}

// Bounds returns the center of the positions and the radius enclosing them
func (p Positions) Bounds() (Vec3, float64) {
	if len(p) == 0 {
		return Vec3{}, 0
	}
	minV := Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxV := Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range p {
		minV = Vec3{math.Min(minV.X, v.X), math.Min(minV.Y, v.Y), math.Min(minV.Z, v.Z)}
		maxV = Vec3{math.Max(maxV.X, v.X), math.Max(maxV.Y, v.Y), math.Max(maxV.Z, v.Z)}
	}
	center := minV.Add(maxV).Scale(0.5)
	var radius float64
	for _, v := range p {
		radius = math.Max(radius, v.Distance(center))
	}
	return center, radius
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
