package graph

import (
	"context"
	"os"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"digital-garden/backend/internal/knowledge"
)

func sampleGraph() knowledge.Data {
	return knowledge.Data{
		Nodes: []knowledge.Node{
			{ID: "test-repo-1", Name: "seed-vault", Val: 20, Color: "#10b981", Type: knowledge.NodeRepository, Group: knowledge.CategoryDevelopment, URL: "https://github.com/gardener/seed-vault"},
			{ID: "test-topic-go", Name: "go", Val: 10, Color: "#f59e0b", Type: knowledge.NodeTopic},
		},
		Links: []knowledge.Link{
			{Source: "test-repo-1", Target: "test-topic-go", Value: 1},
			{Source: "test-repo-1", Target: "test-topic-missing"},
		},
	}
}

func TestNodeParams(t *testing.T) {
	params := nodeParams(sampleGraph().Nodes)
	require.Len(t, params, 2)
	assert.Equal(t, "test-repo-1", params[0]["id"])
	assert.Equal(t, "repository", params[0]["type"])
	assert.Equal(t, "development", params[0]["group"])
	assert.Equal(t, "", params[1]["group"])
	assert.Equal(t, 10.0, params[1]["val"])
}

func TestLinkParams(t *testing.T) {
	params := linkParams(sampleGraph())
	require.Len(t, params, 1, "links to unknown nodes are dropped")
	assert.Equal(t, "test-topic-go", params[0]["target"])
	assert.Equal(t, int64(1), params[0]["value"])

	d := sampleGraph()
	d.Links = []knowledge.Link{{Source: "test-repo-1", Target: "test-topic-go"}}
	assert.Equal(t, int64(1), linkParams(d)[0]["value"], "zero weight defaults to one")
}

// TestRepository_ExportGraph requires a running Neo4j instance.
// Set NEO4J_URI, NEO4J_USER and NEO4J_PASSWORD to run it.
func TestRepository_ExportGraph(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}

	ctx := context.Background()
	repo, err := Connect(ctx, uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"), zap.NewNop())
	require.NoError(t, err)
	defer repo.Close(ctx)

	const mode = knowledge.GroupingMode("integration-test")

	defer func() {
		session := repo.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)
		_, _ = session.Run(ctx, "MATCH (g:GardenNode) WHERE g.id STARTS WITH 'test-' DETACH DELETE g", nil)
	}()

	require.NoError(t, repo.EnsureSchema(ctx))

	res, err := repo.ExportGraph(ctx, mode, sampleGraph())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Nodes)
	assert.Equal(t, 1, res.Links)
	assert.Zero(t, res.RemovedLinks)

	// exporting again replaces the mode's relations
	res, err = repo.ExportGraph(ctx, mode, sampleGraph())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RemovedLinks)

	count, err := repo.CountNodes(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, int64(2))

	counts, err := repo.CountLinks(ctx)
	require.NoError(t, err)
	assert.Contains(t, counts, ModeCount{Mode: string(mode), Links: 1})

	removed, err := repo.ClearMode(ctx, mode)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
