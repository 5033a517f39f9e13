package knowledge

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital-garden/backend/internal/portfolio"
)

var fixedNow = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

func sampleProjects() []portfolio.Project {
	return []portfolio.Project{
		{
			ID:           "1",
			Title:        "Seed Vault",
			Description:  "Content-addressed storage for garden notes",
			Technologies: []string{"Go", "SQL"},
			Topics:       []string{"storage", "notes"},
			GitHubURL:    "https://github.com/gardener/seed-vault",
			Status:       portfolio.StatusMature,
			CreatedAt:    "Mar 5, 2022",
			LastUpdated:  "Jan 2, 2025",
		},
		{
			ID:           "2",
			Title:        "Thesis Experiments",
			Description:  "Analysis notebooks",
			Technologies: []string{"Python"},
			LiveURL:      "https://thesis.example.org",
			Status:       portfolio.StatusGrowing,
			CreatedAt:    "2024-02-10T08:00:00Z",
		},
	}
}

func TestBuild_TopicMode(t *testing.T) {
	got := Build(sampleProjects(), Options{Grouping: GroupByTopic, Now: fixedNow})

	want := Data{
		Nodes: []Node{
			{ID: "repo_1", Name: "Seed Vault", Val: 12, Color: ColorDevelopment, Type: NodeRepository,
				Description: "Content-addressed storage for garden notes", URL: "https://github.com/gardener/seed-vault", Group: CategoryDevelopment},
			{ID: "topic_storage", Name: "storage", Val: 15, Color: ColorTopic, Type: NodeTopic, Description: "Topic: storage"},
			{ID: "topic_notes", Name: "notes", Val: 15, Color: ColorTopic, Type: NodeTopic, Description: "Topic: notes"},
			{ID: "repo_2", Name: "Thesis Experiments", Val: 10, Color: ColorResearch, Type: NodeRepository,
				Description: "Analysis notebooks", URL: "https://thesis.example.org", Group: CategoryResearch},
			// no topics: technologies stand in
			{ID: "topic_Python", Name: "Python", Val: 15, Color: ColorTopic, Type: NodeTopic, Description: "Topic: Python"},
		},
		Links: []Link{
			{Source: "repo_1", Target: "topic_storage", Value: 1},
			{Source: "repo_1", Target: "topic_notes", Value: 1},
			{Source: "repo_2", Target: "topic_Python", Value: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_TechnologyModeSharesGroupNodes(t *testing.T) {
	projects := sampleProjects()
	projects[1].Technologies = []string{"Python", "Go"}

	got := Build(projects, Options{Grouping: GroupByTechnology, Now: fixedNow})

	var ids []string
	for _, n := range got.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"repo_1", "technology_Go", "technology_SQL", "repo_2", "technology_Python"}, ids)
	assert.Len(t, got.Links, 4)
	assert.Contains(t, got.Links, Link{Source: "repo_2", Target: "technology_Go", Value: 1})

	goNode, ok := got.Node("technology_Go")
	require.True(t, ok)
	assert.Equal(t, NodeTechnology, goNode.Type)
	assert.Equal(t, ColorTechnology, goNode.Color)
	assert.Equal(t, "Technology: Go", goNode.Description)
}

func TestBuild_StatusMode(t *testing.T) {
	projects := sampleProjects()
	projects = append(projects, portfolio.Project{ID: "3", Title: "Untended"})

	got := Build(projects, Options{Grouping: GroupByStatus, Now: fixedNow})

	_, ok := got.Node("status_mature")
	assert.True(t, ok)
	_, ok = got.Node("status_growing")
	assert.True(t, ok)
	unknown, ok := got.Node("status_unknown")
	require.True(t, ok, "missing status groups under unknown")
	assert.Equal(t, ColorStatus, unknown.Color)
	assert.Contains(t, got.Links, Link{Source: "repo_3", Target: "status_unknown", Value: 1})
}

func TestBuild_YearMode(t *testing.T) {
	projects := []portfolio.Project{
		{ID: "a", Title: "Display date", CreatedAt: "Mar 5, 2022"},
		{ID: "b", Title: "ISO date", CreatedAt: "2024-02-10T08:00:00Z"},
		{ID: "c", Title: "Updated only", CreatedAt: "someday", LastUpdated: "2023-07-01"},
		{ID: "d", Title: "No dates"},
	}

	got := Build(projects, Options{Grouping: GroupByYear, Now: fixedNow})

	assert.Equal(t, []Link{
		{Source: "repo_a", Target: "year_2022", Value: 1},
		{Source: "repo_b", Target: "year_2024", Value: 1},
		{Source: "repo_c", Target: "year_2023", Value: 1},
		{Source: "repo_d", Target: "year_2025", Value: 1},
	}, got.Links)

	year, ok := got.Node("year_2025")
	require.True(t, ok)
	assert.Equal(t, NodeYear, year.Type)
	assert.Equal(t, ColorYear, year.Color)
}

func TestBuild_ResearchOnly(t *testing.T) {
	projects := sampleProjects()
	projects = append(projects, portfolio.Project{
		ID: "3", Title: "Academic site", Description: "science outreach",
	})

	got := Build(projects, Options{Grouping: GroupByTopic, ResearchOnly: true, Now: fixedNow})

	stats := Summarize(got)
	assert.Equal(t, 1, stats.RepositoryNodes, "only the thesis project passes the research filter")
	_, ok := got.Node("repo_2")
	assert.True(t, ok)

	// academic/science color a node as research without passing the filter
	assert.Equal(t, CategoryResearch, Classify(projects[2]))
	assert.False(t, IsResearch(projects[2]))
}

func TestBuild_DropsBlankItemsAndDuplicates(t *testing.T) {
	projects := []portfolio.Project{
		{ID: "1", Title: "Messy", Topics: []string{" graphs ", "", "   ", "graphs"}},
		{ID: "1", Title: "Duplicate id", Topics: []string{"other"}},
	}

	got := Build(projects, Options{Grouping: GroupByTopic, Now: fixedNow})

	repo, ok := got.Node("repo_1")
	require.True(t, ok)
	assert.Equal(t, "Messy", repo.Name, "first project to introduce an id wins")

	assert.Equal(t, []Link{
		{Source: "repo_1", Target: "topic_graphs", Value: 1},
		{Source: "repo_1", Target: "topic_other", Value: 1},
	}, got.Links)
	assert.Equal(t, 3, Summarize(got).TotalNodes)
}

func TestBuild_Empty(t *testing.T) {
	got := Build(nil, Options{})
	assert.True(t, got.IsEmpty())
	assert.NotNil(t, got.Nodes)
	assert.NotNil(t, got.Links)
}

func TestBuild_StripsMarkupFromDescriptions(t *testing.T) {
	got := Build([]portfolio.Project{{ID: "x", Title: "X", Description: "<b>bold</b> idea"}}, Options{Now: fixedNow})
	assert.Equal(t, "bold idea", got.Nodes[0].Description)
}

func TestParseGroupingMode(t *testing.T) {
	for _, in := range []string{"", "topic", " Topic "} {
		mode, err := ParseGroupingMode(in)
		require.NoError(t, err)
		assert.Equal(t, GroupByTopic, mode)
	}
	mode, err := ParseGroupingMode("year")
	require.NoError(t, err)
	assert.Equal(t, GroupByYear, mode)

	_, err = ParseGroupingMode("color")
	assert.Error(t, err)
}

func TestNeighborsAndStats(t *testing.T) {
	d := Build(sampleProjects(), Options{Grouping: GroupByTechnology, Now: fixedNow})

	assert.Equal(t, []string{"technology_Go", "technology_SQL"}, d.Neighbors("repo_1"))
	assert.Equal(t, []string{"repo_1"}, d.Neighbors("technology_SQL"))
	assert.Empty(t, d.Neighbors("nope"))

	assert.Equal(t, Stats{TotalNodes: 5, RepositoryNodes: 2, GroupNodes: 3, TotalLinks: 3}, Summarize(d))
}

func TestNodeColor(t *testing.T) {
	assert.Equal(t, ColorResearch, NodeColor(NodeRepository, CategoryResearch))
	assert.Equal(t, ColorDevelopment, NodeColor(NodeRepository, CategoryDevelopment))
	assert.Equal(t, ColorDefault, NodeColor("galaxy", ""))
}
