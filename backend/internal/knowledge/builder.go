package knowledge

import (
	"strings"
	"time"

	"digital-garden/backend/internal/constants"
	"digital-garden/backend/internal/portfolio"
)

// Options controls a single graph build
type Options struct {
	Grouping     GroupingMode
	ResearchOnly bool
	// Now supplies the fallback year; defaults to time.Now
	Now func() time.Time
}

// builder accumulates nodes and links while deduplicating ids
type builder struct {
	data    Data
	nodeIDs map[string]bool
	linkIDs map[Link]bool
}

func newBuilder() *builder {
	return &builder{
		data:    Data{Nodes: []Node{}, Links: []Link{}},
		nodeIDs: make(map[string]bool),
		linkIDs: make(map[Link]bool),
	}
}

func (b *builder) addNode(n Node) {
	if b.nodeIDs[n.ID] {
		return
	}
	b.nodeIDs[n.ID] = true
	b.data.Nodes = append(b.data.Nodes, n)
}

func (b *builder) addLink(source, target string) {
	l := Link{Source: source, Target: target, Value: constants.LinkValue}
	if b.linkIDs[l] {
		return
	}
	b.linkIDs[l] = true
	b.data.Links = append(b.data.Links, l)
}

// Build maps projects into a graph of repository nodes linked to the group
// nodes of the chosen mode. Node and link order follow project order; the
// first project to introduce an id defines its node.
func Build(projects []portfolio.Project, opts Options) Data {
	mode := opts.Grouping
	if mode == "" {
		mode = GroupByTopic
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	b := newBuilder()
	for _, p := range projects {
		if opts.ResearchOnly && !IsResearch(p) {
			continue
		}

		repoID := RepositoryNodeID(p.ID)
		b.addNode(repositoryNode(p, repoID))

		groupType := mode.NodeType()
		for _, item := range groupItems(p, mode, now()) {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			groupID := GroupNodeID(mode, item)
			b.addNode(Node{
				ID:          groupID,
				Name:        item,
				Val:         constants.GroupNodeVal,
				Color:       NodeColor(groupType, ""),
				Type:        groupType,
				Description: groupType.Title() + ": " + item,
			})
			b.addLink(repoID, groupID)
		}
	}
	return b.data
}

// RepositoryNodeID is the node id of a project
func RepositoryNodeID(projectID string) string {
	return "repo_" + projectID
}

// GroupNodeID is the node id of a group value under a mode
func GroupNodeID(mode GroupingMode, value string) string {
	return string(mode) + "_" + value
}

func repositoryNode(p portfolio.Project, id string) Node {
	group := Classify(p)
	url := p.GitHubURL
	if url == "" {
		url = p.LiveURL
	}
	return Node{
		ID:          id,
		Name:        p.Title,
		Val:         float64(constants.RepositoryBaseVal + constants.RepositoryValPerTechnology*len(p.Technologies)),
		Color:       NodeColor(NodeRepository, group),
		Type:        NodeRepository,
		Description: portfolio.PlainText(p.Description),
		URL:         url,
		Group:       group,
	}
}

// groupItems picks the raw group values of a project for a mode. Topic mode
// falls back to technologies when a project carries no topics.
func groupItems(p portfolio.Project, mode GroupingMode, now time.Time) []string {
	switch mode {
	case GroupByTechnology:
		return p.Technologies
	case GroupByStatus:
		status := string(p.Status)
		if strings.TrimSpace(status) == "" {
			status = constants.UnknownStatus
		}
		return []string{status}
	case GroupByYear:
		return []string{projectYear(p.CreatedAt, p.LastUpdated, now)}
	default:
		if len(p.Topics) > 0 {
			return p.Topics
		}
		return p.Technologies
	}
}
