package scene

import (
	"fmt"

	"digital-garden/backend/internal/knowledge"
)

// Cursor styles reported while hovering
const (
	CursorDefault = "auto"
	CursorPointer = "pointer"
)

// ActionKind is what the host should do after an interaction
type ActionKind string

const (
	ActionNone     ActionKind = "none"
	ActionOpenURL  ActionKind = "open_url"
	ActionFocus    ActionKind = "focus"
	ActionCopyLink ActionKind = "copy_link"
	ActionHide     ActionKind = "hide"
)

// Action is the outcome of a click or menu choice
type Action struct {
	Kind   ActionKind `json:"kind"`
	NodeID string     `json:"nodeId,omitempty"`
	URL    string     `json:"url,omitempty"`
}

// MenuItemKind identifies an entry of the node context menu
type MenuItemKind string

const (
	MenuOpen     MenuItemKind = "open"
	MenuFocus    MenuItemKind = "focus"
	MenuCopyLink MenuItemKind = "copy-link"
	MenuHide     MenuItemKind = "hide"
)

// MenuItem is a single context menu entry
type MenuItem struct {
	Kind  MenuItemKind `json:"kind"`
	Label string       `json:"label"`
}

// ContextMenu is the menu opened by right-clicking a node
type ContextMenu struct {
	NodeID string     `json:"nodeId"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Items  []MenuItem `json:"items"`
}

// Options configures a new Scene
type Options struct {
	WindowWidth int
	Layout      LayoutOptions
	// SkipLayout leaves positions empty for callers that place nodes
	// themselves or need none, such as static SVG and menus
	SkipLayout bool
}

// Scene is the interactive state of one graph view. Not safe for
// concurrent use.
type Scene struct {
	data      knowledge.Data
	positions Positions

	Camera Camera
	Width  int
	Height int

	hovered     string
	selected    string
	highlighted map[string]bool
	hidden      map[string]bool
	menu        *ContextMenu
	cursor      string
}

// New lays out the graph, runs the warmup ticks and fits the camera.
// With SkipLayout the camera stays at its default.
func New(data knowledge.Data, opts Options) *Scene {
	if opts.Layout.WarmupTicks == 0 {
		opts.Layout = DefaultLayoutOptions()
	}
	positions := Positions{}
	if !opts.SkipLayout {
		positions = ForceLayout(data, opts.Layout)
	}
	s := &Scene{
		data:        data,
		positions:   positions,
		Camera:      NewCamera(),
		Width:       ResponsiveWidth(opts.WindowWidth),
		Height:      ViewHeight,
		highlighted: make(map[string]bool),
		hidden:      make(map[string]bool),
		cursor:      CursorDefault,
	}
	s.Camera.ZoomToFit(s.positions, ZoomFitPadding)
	return s
}

// Data returns the graph minus hidden nodes and the links touching them
func (s *Scene) Data() knowledge.Data {
	out := knowledge.Data{Nodes: []knowledge.Node{}, Links: []knowledge.Link{}}
	for _, n := range s.data.Nodes {
		if !s.hidden[n.ID] {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, l := range s.data.Links {
		if !s.hidden[l.Source] && !s.hidden[l.Target] {
			out.Links = append(out.Links, l)
		}
	}
	return out
}

// Positions of every laid out node, hidden ones included
func (s *Scene) Positions() Positions { return s.positions }

// Meshes returns the drawable mesh of every visible node in graph order
func (s *Scene) Meshes() []Mesh {
	out := make([]Mesh, 0, len(s.data.Nodes))
	for _, n := range s.data.Nodes {
		if s.hidden[n.ID] {
			continue
		}
		out = append(out, Mesh{
			NodeID:   n.ID,
			Geometry: GeometryFor(n),
			Material: MaterialFor(n),
			Scale:    s.Scale(n.ID),
		})
	}
	return out
}

// Scale of the node mesh; the hovered node is enlarged
func (s *Scene) Scale(id string) float64 {
	if id != "" && id == s.hovered {
		return HoverScale
	}
	return RestScale
}

func (s *Scene) Hovered() string        { return s.hovered }
func (s *Scene) Selected() string       { return s.selected }
func (s *Scene) Cursor() string         { return s.cursor }
func (s *Scene) Menu() *ContextMenu     { return s.menu }
func (s *Scene) IsHidden(id string) bool { return s.hidden[id] }

// IsHighlighted reports whether a node is the focused node or one of its
// neighbors. Nothing is highlighted without a focus.
func (s *Scene) IsHighlighted(id string) bool { return s.highlighted[id] }

func (s *Scene) visibleNode(id string) (knowledge.Node, bool) {
	if id == "" || s.hidden[id] {
		return knowledge.Node{}, false
	}
	return s.data.Node(id)
}

// Hover moves the pointer onto a node, or off every node when id is empty
// or unknown. The previous node drops back to rest scale.
func (s *Scene) Hover(id string) {
	if _, ok := s.visibleNode(id); !ok {
		s.hovered = ""
		s.cursor = CursorDefault
		return
	}
	s.hovered = id
	s.cursor = CursorPointer
}

// Click handles a left click. Nodes with a URL open it, other nodes take
// focus. Clicking the background (empty id) closes the menu and clears focus.
func (s *Scene) Click(id string) Action {
	s.menu = nil
	n, ok := s.visibleNode(id)
	if !ok {
		s.clearFocus()
		return Action{Kind: ActionNone}
	}
	if n.URL != "" {
		return Action{Kind: ActionOpenURL, NodeID: n.ID, URL: n.URL}
	}
	s.focus(n.ID)
	return Action{Kind: ActionFocus, NodeID: n.ID}
}

// ContextMenu opens the node menu at screen coordinates. Open and copy
// entries only appear for nodes with a URL. Right-clicking the background
// closes any open menu and returns nil.
func (s *Scene) ContextMenu(id string, x, y float64) *ContextMenu {
	n, ok := s.visibleNode(id)
	if !ok {
		s.menu = nil
		return nil
	}
	var items []MenuItem
	if n.URL != "" {
		items = append(items, MenuItem{Kind: MenuOpen, Label: "Open " + n.Type.Title()})
	}
	items = append(items, MenuItem{Kind: MenuFocus, Label: "Focus neighbors"})
	if n.URL != "" {
		items = append(items, MenuItem{Kind: MenuCopyLink, Label: "Copy link"})
	}
	items = append(items, MenuItem{Kind: MenuHide, Label: "Hide node"})

	s.menu = &ContextMenu{NodeID: n.ID, X: x, Y: y, Items: items}
	return s.menu
}

// Choose runs a context menu entry and closes the menu
func (s *Scene) Choose(kind MenuItemKind) (Action, error) {
	if s.menu == nil {
		return Action{}, fmt.Errorf("no context menu open")
	}
	menu := s.menu
	var allowed bool
	for _, it := range menu.Items {
		if it.Kind == kind {
			allowed = true
			break
		}
	}
	if !allowed {
		return Action{}, fmt.Errorf("menu item %q not available for node %s", kind, menu.NodeID)
	}
	s.menu = nil

	n, _ := s.data.Node(menu.NodeID)
	switch kind {
	case MenuOpen:
		return Action{Kind: ActionOpenURL, NodeID: n.ID, URL: n.URL}, nil
	case MenuCopyLink:
		return Action{Kind: ActionCopyLink, NodeID: n.ID, URL: n.URL}, nil
	case MenuHide:
		s.hide(n.ID)
		return Action{Kind: ActionHide, NodeID: n.ID}, nil
	default:
		s.focus(n.ID)
		return Action{Kind: ActionFocus, NodeID: n.ID}, nil
	}
}

// Escape closes the open menu, or clears focus when no menu is open
func (s *Scene) Escape() {
	if s.menu != nil {
		s.menu = nil
		return
	}
	s.clearFocus()
}

// Reset restores hidden nodes, drops all interaction state and refits the camera
func (s *Scene) Reset() {
	s.hidden = make(map[string]bool)
	s.menu = nil
	s.hovered = ""
	s.cursor = CursorDefault
	s.clearFocus()
	s.Camera = NewCamera()
	s.Camera.ZoomToFit(s.positions, ZoomFitPadding)
}

// Focus selects a node and highlights its neighborhood
func (s *Scene) Focus(id string) bool {
	if _, ok := s.visibleNode(id); !ok {
		return false
	}
	s.focus(id)
	return true
}

func (s *Scene) focus(id string) {
	s.selected = id
	s.highlighted = map[string]bool{id: true}
	for _, other := range s.data.Neighbors(id) {
		if !s.hidden[other] {
			s.highlighted[other] = true
		}
	}
}

func (s *Scene) clearFocus() {
	s.selected = ""
	s.highlighted = make(map[string]bool)
}

func (s *Scene) hide(id string) {
	s.hidden[id] = true
	delete(s.highlighted, id)
	if s.selected == id {
		s.clearFocus()
	}
	if s.hovered == id {
		s.hovered = ""
		s.cursor = CursorDefault
	}
}
