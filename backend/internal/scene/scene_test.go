package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital-garden/backend/internal/knowledge"
)

func testGraph() knowledge.Data {
	return knowledge.Data{
		Nodes: []knowledge.Node{
			{ID: "repo_1", Name: "Seed Vault", Val: 12, Type: knowledge.NodeRepository, Color: knowledge.ColorDevelopment, URL: "https://github.com/g/seed-vault"},
			{ID: "repo_2", Name: "Notebook", Val: 10, Type: knowledge.NodeRepository, Color: knowledge.ColorResearch},
			{ID: "topic_go", Name: "go", Val: 15, Type: knowledge.NodeTopic, Color: knowledge.ColorTopic},
			{ID: "topic_ml", Name: "ml", Val: 15, Type: knowledge.NodeTopic, Color: knowledge.ColorTopic},
		},
		Links: []knowledge.Link{
			{Source: "repo_1", Target: "topic_go", Value: 1},
			{Source: "repo_2", Target: "topic_go", Value: 1},
			{Source: "repo_2", Target: "topic_ml", Value: 1},
		},
	}
}

func TestGeometryFor(t *testing.T) {
	tests := []struct {
		node knowledge.Node
		want Geometry
	}{
		{knowledge.Node{Type: knowledge.NodeRepository, Val: 10}, Geometry{Shape: ShapeSphere, Radius: 5}},
		{knowledge.Node{Type: knowledge.NodeTopic, Val: 15}, Geometry{Shape: ShapeOctahedron, Radius: 9}},
		{knowledge.Node{Type: knowledge.NodeTechnology, Val: 10}, Geometry{Shape: ShapeBox, Width: 8, Height: 8, Depth: 8}},
		{knowledge.Node{Type: knowledge.NodeStatus, Val: 10}, Geometry{Shape: ShapeCylinder, Radius: 5, Height: 8}},
		{knowledge.Node{Type: knowledge.NodeYear, Val: 10}, Geometry{Shape: ShapeTetrahedron, Radius: 7}},
		// unknown type and missing val fall back to a default sphere
		{knowledge.Node{Type: "comet"}, Geometry{Shape: ShapeSphere, Radius: 5}},
	}
	for _, tt := range tests {
		t.Run(string(tt.node.Type), func(t *testing.T) {
			got := GeometryFor(tt.node)
			assert.Equal(t, tt.want.Shape, got.Shape)
			assert.InDelta(t, tt.want.Radius, got.Radius, 1e-9)
			assert.InDelta(t, tt.want.Width, got.Width, 1e-9)
			assert.InDelta(t, tt.want.Height, got.Height, 1e-9)
			assert.InDelta(t, tt.want.Depth, got.Depth, 1e-9)
		})
	}
}

func TestMaterialFor(t *testing.T) {
	m := MaterialFor(knowledge.Node{Color: "#8b5cf6"})
	assert.Equal(t, Material{Color: "#8b5cf6", Transparent: true, Opacity: 0.8, Shininess: 100}, m)
}

func TestForceLayout_Deterministic(t *testing.T) {
	g := testGraph()
	a := ForceLayout(g, DefaultLayoutOptions())
	b := ForceLayout(g, DefaultLayoutOptions())
	require.Len(t, a, 4)
	assert.Equal(t, a, b)

	for id, p := range a {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z), "NaN position for %s", id)
	}
	assert.NotEqual(t, a["repo_1"], a["repo_2"])

	opts := DefaultLayoutOptions()
	opts.Seed = 7
	assert.NotEqual(t, a, ForceLayout(g, opts), "seed drives initial placement")
}

func TestForceLayout_TwoDimensions(t *testing.T) {
	opts := DefaultLayoutOptions()
	opts.Dimensions = 2
	for _, p := range ForceLayout(testGraph(), opts) {
		assert.Zero(t, p.Z)
	}
	assert.Empty(t, ForceLayout(knowledge.Data{}, opts))
}

func TestCircularLayout(t *testing.T) {
	pos := CircularLayout(testGraph(), 300, 300, 200)
	center := Vec3{X: 300, Y: 300}

	assert.InDelta(t, 200, pos["repo_1"].Distance(center), 1e-9)
	assert.InDelta(t, 200, pos["repo_2"].Distance(center), 1e-9)
	assert.InDelta(t, 80, pos["topic_go"].Distance(center), 1e-9)
	// first node of each ring sits at angle zero
	assert.InDelta(t, 500, pos["repo_1"].X, 1e-9)
	assert.InDelta(t, 380, pos["topic_go"].X, 1e-9)
}

func TestCamera(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, Vec3{Z: 300}, c.Position)
	assert.InDelta(t, 300, c.Distance(), 1e-9)

	c.Zoom(0.01)
	assert.InDelta(t, MinDistance, c.Distance(), 1e-9)
	c.Zoom(1000)
	assert.InDelta(t, MaxDistance, c.Distance(), 1e-9)

	c = NewCamera()
	c.ZoomToFit(Positions{"a": {X: -100}, "b": {X: 100}}, ZoomFitPadding)
	assert.Equal(t, Vec3{}, c.LookAt)
	want := 150 / math.Sin(20*math.Pi/180)
	assert.InDelta(t, want, c.Distance(), 1e-6)

	c.ZoomToFit(nil, ZoomFitPadding)
	assert.Equal(t, NewCamera(), c)
}

func TestResponsiveWidth(t *testing.T) {
	assert.Equal(t, 1216, ResponsiveWidth(1280))
	assert.Equal(t, DefaultViewWidth, ResponsiveWidth(0))
	assert.Equal(t, DefaultViewWidth, ResponsiveWidth(40))
}

func TestScene_Hover(t *testing.T) {
	s := New(testGraph(), Options{WindowWidth: 1280})
	assert.Equal(t, 1216, s.Width)
	assert.Equal(t, ViewHeight, s.Height)

	s.Hover("repo_1")
	assert.Equal(t, CursorPointer, s.Cursor())
	assert.Equal(t, HoverScale, s.Scale("repo_1"))

	s.Hover("topic_go")
	assert.Equal(t, RestScale, s.Scale("repo_1"), "previous node returns to rest")
	assert.Equal(t, HoverScale, s.Scale("topic_go"))

	s.Hover("")
	assert.Equal(t, CursorDefault, s.Cursor())
	assert.Empty(t, s.Hovered())
}

func TestScene_Click(t *testing.T) {
	s := New(testGraph(), Options{})

	act := s.Click("repo_1")
	assert.Equal(t, Action{Kind: ActionOpenURL, NodeID: "repo_1", URL: "https://github.com/g/seed-vault"}, act)
	assert.Empty(t, s.Selected(), "opening a link does not change focus")

	act = s.Click("topic_go")
	assert.Equal(t, ActionFocus, act.Kind)
	assert.Equal(t, "topic_go", s.Selected())
	assert.True(t, s.IsHighlighted("topic_go"))
	assert.True(t, s.IsHighlighted("repo_1"))
	assert.True(t, s.IsHighlighted("repo_2"))
	assert.False(t, s.IsHighlighted("topic_ml"))

	act = s.Click("")
	assert.Equal(t, ActionNone, act.Kind)
	assert.Empty(t, s.Selected())
	assert.False(t, s.IsHighlighted("topic_go"))
}

func TestScene_ContextMenu(t *testing.T) {
	s := New(testGraph(), Options{})

	menu := s.ContextMenu("repo_1", 10, 20)
	require.NotNil(t, menu)
	var kinds []MenuItemKind
	for _, it := range menu.Items {
		kinds = append(kinds, it.Kind)
	}
	assert.Equal(t, []MenuItemKind{MenuOpen, MenuFocus, MenuCopyLink, MenuHide}, kinds)
	assert.Equal(t, 10.0, menu.X)

	act, err := s.Choose(MenuCopyLink)
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: ActionCopyLink, NodeID: "repo_1", URL: "https://github.com/g/seed-vault"}, act)
	assert.Nil(t, s.Menu())

	_, err = s.Choose(MenuFocus)
	assert.Error(t, err, "no menu open")

	menu = s.ContextMenu("topic_ml", 0, 0)
	require.NotNil(t, menu)
	assert.Len(t, menu.Items, 2, "nodes without a url only offer focus and hide")
	_, err = s.Choose(MenuOpen)
	assert.Error(t, err)

	assert.Nil(t, s.ContextMenu("", 0, 0))
	assert.Nil(t, s.Menu())
}

func TestScene_SkipLayout(t *testing.T) {
	s := New(testGraph(), Options{SkipLayout: true})

	assert.Empty(t, s.Positions())
	assert.Equal(t, NewCamera(), s.Camera)
	assert.Len(t, s.Meshes(), 4)
	assert.True(t, s.Focus("topic_go"))
	assert.True(t, s.IsHighlighted("repo_1"))
	require.NotNil(t, s.ContextMenu("repo_2", 5, 5))

	laid := New(testGraph(), Options{})
	assert.Len(t, laid.Positions(), 4)
}

func TestScene_HideAndReset(t *testing.T) {
	s := New(testGraph(), Options{})
	s.Focus("topic_go")
	s.Hover("topic_go")

	s.ContextMenu("topic_go", 0, 0)
	act, err := s.Choose(MenuHide)
	require.NoError(t, err)
	assert.Equal(t, ActionHide, act.Kind)

	assert.True(t, s.IsHidden("topic_go"))
	assert.Empty(t, s.Selected())
	assert.Empty(t, s.Hovered())
	d := s.Data()
	assert.Len(t, d.Nodes, 3)
	assert.Equal(t, []knowledge.Link{{Source: "repo_2", Target: "topic_ml", Value: 1}}, d.Links)
	assert.Len(t, s.Meshes(), 3)

	// hidden nodes ignore interaction
	assert.Equal(t, ActionNone, s.Click("topic_go").Kind)

	s.Reset()
	assert.False(t, s.IsHidden("topic_go"))
	assert.Len(t, s.Data().Nodes, 4)
}

func TestScene_Escape(t *testing.T) {
	s := New(testGraph(), Options{})
	s.Focus("repo_2")
	s.ContextMenu("repo_2", 0, 0)

	s.Escape()
	assert.Nil(t, s.Menu())
	assert.Equal(t, "repo_2", s.Selected(), "first escape only closes the menu")

	s.Escape()
	assert.Empty(t, s.Selected())
}

func TestLabel(t *testing.T) {
	n := knowledge.Node{Name: "<script>", Type: knowledge.NodeTopic, Description: "Topic: a & b"}
	got := Label(n)
	assert.Contains(t, got, "<strong>&lt;script&gt;</strong>")
	assert.Contains(t, got, "<em>Topic</em>")
	assert.Contains(t, got, "Topic: a &amp; b")

	assert.Equal(t, "a-very-long-rep...", ShortLabel(knowledge.Node{Name: "a-very-long-repository"}))
	assert.Equal(t, "short", ShortLabel(knowledge.Node{Name: "short"}))
}
