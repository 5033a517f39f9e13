package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"digital-garden/backend/internal/knowledge"
)

// nodeParams flattens nodes into the property maps consumed by UNWIND
func nodeParams(nodes []knowledge.Node) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, map[string]interface{}{
			"id":          n.ID,
			"name":        n.Name,
			"type":        string(n.Type),
			"val":         n.Val,
			"color":       n.Color,
			"description": n.Description,
			"url":         n.URL,
			"group":       string(n.Group),
		})
	}
	return out
}

// linkParams drops links whose endpoints are not part of the node set
func linkParams(d knowledge.Data) []map[string]interface{} {
	ids := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.ID] = true
	}
	out := make([]map[string]interface{}, 0, len(d.Links))
	for _, l := range d.Links {
		if !ids[l.Source] || !ids[l.Target] {
			continue
		}
		value := l.Value
		if value == 0 {
			value = 1
		}
		out = append(out, map[string]interface{}{
			"source": l.Source,
			"target": l.Target,
			"value":  int64(value),
		})
	}
	return out
}

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}
