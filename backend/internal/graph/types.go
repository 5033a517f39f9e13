package graph

import "digital-garden/backend/internal/knowledge"

// ExportResult reports what one ExportGraph call wrote
type ExportResult struct {
	Mode         knowledge.GroupingMode `json:"mode"`
	Nodes        int                    `json:"nodes"`
	Links        int                    `json:"links"`
	RemovedLinks int64                  `json:"removedLinks"`
}

// ModeCount is the number of CONNECTED relations stored for a grouping mode
type ModeCount struct {
	Mode  string `json:"mode"`
	Links int64  `json:"links"`
}
