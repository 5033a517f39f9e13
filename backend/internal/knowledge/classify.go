package knowledge

import (
	"strings"

	"digital-garden/backend/internal/portfolio"
)

// researchFilterKeywords select projects for the research-only view
var researchFilterKeywords = []string{
	"research", "thesis", "theory", "article", "paper", "study", "analysis",
}

// researchClassKeywords mark a repository node as research when coloring.
// The list is wider than researchFilterKeywords: "academic" and "science"
// color a node green without admitting it to the research-only view.
var researchClassKeywords = []string{
	"research", "thesis", "theory", "article", "paper", "study", "analysis", "academic", "science",
}

// Node colors by type
const (
	ColorResearch    = "#10b981" // emerald-500
	ColorDevelopment = "#3b82f6" // blue-500
	ColorTopic       = "#8b5cf6" // violet-500
	ColorTechnology  = "#f59e0b" // amber-500
	ColorStatus      = "#ef4444" // red-500
	ColorYear        = "#6366f1" // indigo-500
	ColorDefault     = "#6b7280" // gray-500
)

func classificationText(p *portfolio.Project) string {
	return strings.ToLower(p.Title + " " + p.Description + " " + strings.Join(p.Topics, " "))
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Classify labels a project research or development from keywords in its
// title, description and topics.
func Classify(p portfolio.Project) Category {
	if containsAny(classificationText(&p), researchClassKeywords) {
		return CategoryResearch
	}
	return CategoryDevelopment
}

// IsResearch reports whether a project belongs in the research-only view
func IsResearch(p portfolio.Project) bool {
	return containsAny(classificationText(&p), researchFilterKeywords)
}

// NodeColor picks the display color of a node from its type and, for
// repositories, its category.
func NodeColor(t NodeType, group Category) string {
	switch t {
	case NodeRepository:
		if group == CategoryResearch {
			return ColorResearch
		}
		return ColorDevelopment
	case NodeTopic:
		return ColorTopic
	case NodeTechnology:
		return ColorTechnology
	case NodeStatus:
		return ColorStatus
	case NodeYear:
		return ColorYear
	default:
		return ColorDefault
	}
}
