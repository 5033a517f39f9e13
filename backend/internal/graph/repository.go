// Package graph publishes knowledge graphs to Neo4j so they can be explored
// with Cypher. The site never reads state back from it.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"digital-garden/backend/internal/knowledge"
	apperrors "digital-garden/backend/pkg/errors"
	"digital-garden/backend/pkg/logger"
)

// Repository handles all Neo4j operations
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository wraps an existing driver. A nil logger uses the global one.
func NewRepository(driver neo4j.DriverWithContext, log *zap.Logger) *Repository {
	if log == nil {
		log = logger.Named("graph")
	}
	return &Repository{
		driver: driver,
		logger: log,
	}
}

// Connect opens a driver and verifies the server is reachable
func Connect(ctx context.Context, uri, user, password string, log *zap.Logger) (*Repository, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	return NewRepository(driver, log), nil
}

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// EnsureSchema creates the node id uniqueness constraint
func (r *Repository) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `CREATE CONSTRAINT garden_node_id IF NOT EXISTS FOR (n:GardenNode) REQUIRE n.id IS UNIQUE`
	if _, err := session.Run(ctx, query, nil); err != nil {
		return apperrors.NewGraphQueryFailed("create constraint", err)
	}
	return nil
}

// ExportGraph replaces the CONNECTED relations stored for mode with the links
// of data. Nodes are merged by id so group nodes shared between exports stay
// a single vertex.
func (r *Repository) ExportGraph(ctx context.Context, mode knowledge.GroupingMode, data knowledge.Data) (ExportResult, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	nodes := nodeParams(data.Nodes)
	links := linkParams(data)

	res := ExportResult{Mode: mode, Nodes: len(nodes), Links: len(links)}

	removed, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (:GardenNode)-[r:CONNECTED {mode: $mode}]->(:GardenNode)
			DELETE r
		`, map[string]interface{}{"mode": string(mode)})
		if err != nil {
			return int64(0), err
		}
		summary, err := result.Consume(ctx)
		if err != nil {
			return int64(0), err
		}

		if _, err := tx.Run(ctx, `
			UNWIND $nodes AS n
			MERGE (g:GardenNode {id: n.id})
			SET g.name = n.name,
			    g.type = n.type,
			    g.val = n.val,
			    g.color = n.color,
			    g.description = n.description,
			    g.url = n.url,
			    g.group = n.group,
			    g.updated_at = datetime()
		`, map[string]interface{}{"nodes": nodes}); err != nil {
			return int64(0), err
		}

		if _, err := tx.Run(ctx, `
			UNWIND $links AS l
			MATCH (s:GardenNode {id: l.source})
			MATCH (t:GardenNode {id: l.target})
			MERGE (s)-[c:CONNECTED {mode: $mode}]->(t)
			SET c.value = l.value
		`, map[string]interface{}{"links": links, "mode": string(mode)}); err != nil {
			return int64(0), err
		}

		return int64(summary.Counters().RelationshipsDeleted()), nil
	})
	if err != nil {
		return res, apperrors.NewGraphQueryFailed(fmt.Sprintf("export %s graph", mode), err)
	}
	res.RemovedLinks = removed.(int64)

	r.logger.Info("Graph exported",
		zap.String("mode", string(mode)),
		zap.Int("nodes", res.Nodes),
		zap.Int("links", res.Links),
		zap.Int64("removed_links", res.RemovedLinks),
	)
	return res, nil
}

// ClearMode removes the relations of one grouping mode, then any node left
// without relations. It returns the number of relations removed.
func (r *Repository) ClearMode(ctx context.Context, mode knowledge.GroupingMode) (int64, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (:GardenNode)-[r:CONNECTED {mode: $mode}]->(:GardenNode)
		DELETE r
	`, map[string]interface{}{"mode": string(mode)})
	if err != nil {
		return 0, apperrors.NewGraphQueryFailed(fmt.Sprintf("clear %s relations", mode), err)
	}
	summary, err := result.Consume(ctx)
	if err != nil {
		return 0, apperrors.NewGraphQueryFailed(fmt.Sprintf("clear %s relations", mode), err)
	}

	if _, err := session.Run(ctx, `
		MATCH (g:GardenNode)
		WHERE NOT (g)--()
		DELETE g
	`, nil); err != nil {
		return 0, apperrors.NewGraphQueryFailed("delete orphan nodes", err)
	}

	removed := int64(summary.Counters().RelationshipsDeleted())
	r.logger.Info("Graph mode cleared",
		zap.String("mode", string(mode)),
		zap.Int64("removed_links", removed),
	)
	return removed, nil
}

// CountNodes returns the number of exported nodes
func (r *Repository) CountNodes(ctx context.Context) (int64, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `MATCH (g:GardenNode) RETURN count(g) AS count`, nil)
	if err != nil {
		return 0, apperrors.NewGraphQueryFailed("count nodes", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, apperrors.NewGraphQueryFailed("count nodes", err)
	}
	return getInt64FromRecord(record, "count"), nil
}

// CountLinks returns the stored relation count per grouping mode
func (r *Repository) CountLinks(ctx context.Context) ([]ModeCount, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (:GardenNode)-[r:CONNECTED]->(:GardenNode)
		RETURN r.mode AS mode, count(r) AS links
		ORDER BY mode
	`, nil)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("count links", err)
	}

	var counts []ModeCount
	for result.Next(ctx) {
		record := result.Record()
		counts = append(counts, ModeCount{
			Mode:  getStringFromRecord(record, "mode"),
			Links: getInt64FromRecord(record, "links"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("count links", err)
	}
	return counts, nil
}
