// Package knowledge turns flat project records into the node/link graph
// rendered by the knowledge graph views.
package knowledge

import (
	"strings"

	apperrors "digital-garden/backend/pkg/errors"
)

// GroupingMode is the categorical dimension used to synthesize group nodes
type GroupingMode string

const (
	GroupByTopic      GroupingMode = "topic"
	GroupByTechnology GroupingMode = "technology"
	GroupByStatus     GroupingMode = "status"
	GroupByYear       GroupingMode = "year"
)

// GroupingModes lists every supported mode in display order
var GroupingModes = []GroupingMode{GroupByTopic, GroupByTechnology, GroupByStatus, GroupByYear}

// ParseGroupingMode validates a mode name; an empty name selects topic grouping.
func ParseGroupingMode(s string) (GroupingMode, error) {
	switch GroupingMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", GroupByTopic:
		return GroupByTopic, nil
	case GroupByTechnology:
		return GroupByTechnology, nil
	case GroupByStatus:
		return GroupByStatus, nil
	case GroupByYear:
		return GroupByYear, nil
	default:
		return "", apperrors.NewGraphInvalidGrouping(s)
	}
}

// NodeType returns the node type of the group nodes this mode creates
func (m GroupingMode) NodeType() NodeType {
	switch m {
	case GroupByTechnology:
		return NodeTechnology
	case GroupByStatus:
		return NodeStatus
	case GroupByYear:
		return NodeYear
	default:
		return NodeTopic
	}
}

// NodeType distinguishes project nodes from the group nodes around them
type NodeType string

const (
	NodeRepository NodeType = "repository"
	NodeTopic      NodeType = "topic"
	NodeTechnology NodeType = "technology"
	NodeStatus     NodeType = "status"
	NodeYear       NodeType = "year"
)

// Title returns the type name with its first letter upper-cased
func (t NodeType) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// Category is the heuristic classification of a repository node
type Category string

const (
	CategoryResearch    Category = "research"
	CategoryDevelopment Category = "development"
)

// Node is a vertex of the knowledge graph
type Node struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Val         float64  `json:"val"`
	Color       string   `json:"color"`
	Type        NodeType `json:"type"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Group       Category `json:"group,omitempty"`
}

// IsGroup reports whether the node is a synthesized group node
func (n Node) IsGroup() bool {
	return n.Type != NodeRepository
}

// Link connects a repository node to a group node
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value,omitempty"`
}

// Data is the complete graph consumed by the renderers
type Data struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// IsEmpty returns true if the graph has no nodes
func (d *Data) IsEmpty() bool {
	return len(d.Nodes) == 0
}

// Node looks up a node by id
func (d *Data) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Neighbors returns the ids linked to id, in link order without repeats
func (d *Data) Neighbors(id string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range d.Links {
		var other string
		switch id {
		case l.Source:
			other = l.Target
		case l.Target:
			other = l.Source
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

// Stats summarizes a graph for display next to the visualization
type Stats struct {
	TotalNodes      int `json:"totalNodes"`
	RepositoryNodes int `json:"repositoryNodes"`
	GroupNodes      int `json:"groupNodes"`
	TotalLinks      int `json:"totalLinks"`
}

// Summarize counts the nodes and links of a graph
func Summarize(d Data) Stats {
	s := Stats{TotalNodes: len(d.Nodes), TotalLinks: len(d.Links)}
	for _, n := range d.Nodes {
		if n.Type == NodeRepository {
			s.RepositoryNodes++
		} else {
			s.GroupNodes++
		}
	}
	return s
}
