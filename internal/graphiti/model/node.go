package model

import "time"

type EpisodeType string

const (
	EpisodeTypeText    EpisodeType = "text"
	EpisodeTypeMessage EpisodeType = "message"
	EpisodeTypeJSON    EpisodeType = "json"
)

type EntityNode struct {
	UUID          string    `json:"uuid"`
	Name          string    `json:"name"`
	GroupID       string    `json:"group_id"`
	CreatedAt     time.Time `json:"created_at"`
	Summary       string    `json:"summary,omitempty"`
	NameEmbedding []float32 `json:"name_embedding,omitempty"`
}

type EpisodicNode struct {
	UUID              string      `json:"uuid"`
	Name              string      `json:"name"`
	GroupID           string      `json:"group_id"`
	CreatedAt         time.Time   `json:"created_at"`
	ValidAt           time.Time   `json:"valid_at"`
	Content           string      `json:"content"`
	Source            EpisodeType `json:"source"`
	SourceDescription string      `json:"source_description"`
	EntityEdges       []string    `json:"entity_edges"` // RELATES_TO uuids created from this episode
}

// NodeRef identifies an endpoint of an edge.
type NodeRef struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}
