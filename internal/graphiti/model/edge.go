package model

import "time"

type EntityEdge struct {
	UUID          string     `json:"uuid"`
	SourceUUID    string     `json:"source_node_uuid"`
	TargetUUID    string     `json:"target_node_uuid"`
	GroupID       string     `json:"group_id"`
	Name          string     `json:"name"` // relation type, e.g. WORKS_AT
	Fact          string     `json:"fact"`
	CreatedAt     *time.Time `json:"created_at"`
	ExpiredAt     *time.Time `json:"expired_at,omitempty"`
	ValidAt       *time.Time `json:"valid_at,omitempty"`
	InvalidAt     *time.Time `json:"invalid_at,omitempty"`
	Episodes      []string   `json:"episodes"` // episode uuids, oldest first
	FactEmbedding []float32  `json:"fact_embedding,omitempty"`
}

// EpisodicEdge is the MENTIONS link from an episode to an entity.
type EpisodicEdge struct {
	UUID       string    `json:"uuid"`
	SourceUUID string    `json:"source_node_uuid"`
	TargetUUID string    `json:"target_node_uuid"`
	GroupID    string    `json:"group_id"`
	CreatedAt  time.Time `json:"created_at"`
}
