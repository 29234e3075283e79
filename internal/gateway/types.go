package gateway

const Version = "1.0.0"

type EpisodeRequest struct {
	Name              string `json:"name"`
	EpisodeBody       string `json:"episode_body"`
	SourceDescription string `json:"source_description"`
	ReferenceTime     string `json:"reference_time"`
	GroupID           string `json:"group_id"`
}

// EpisodeRequestBody is the decoded wire form of EpisodeRequest. Every field
// must be present; a nil field was missing or null, while empty strings are
// passed through as given.
type EpisodeRequestBody struct {
	Name              *string `json:"name" binding:"required"`
	EpisodeBody       *string `json:"episode_body" binding:"required"`
	SourceDescription *string `json:"source_description" binding:"required"`
	ReferenceTime     *string `json:"reference_time" binding:"required"`
	GroupID           *string `json:"group_id" binding:"required"`
}

// Missing lists the JSON names of absent fields in declaration order.
func (b EpisodeRequestBody) Missing() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"name", b.Name},
		{"episode_body", b.EpisodeBody},
		{"source_description", b.SourceDescription},
		{"reference_time", b.ReferenceTime},
		{"group_id", b.GroupID},
	} {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Request dereferences the body. Call it only when Missing is empty.
func (b EpisodeRequestBody) Request() EpisodeRequest {
	return EpisodeRequest{
		Name:              *b.Name,
		EpisodeBody:       *b.EpisodeBody,
		SourceDescription: *b.SourceDescription,
		ReferenceTime:     *b.ReferenceTime,
		GroupID:           *b.GroupID,
	}
}

type EpisodeResponse struct {
	EpisodeID        string `json:"episode_id"`
	EntitiesCreated  int    `json:"entities_created"`
	RelationsCreated int    `json:"relations_created"`
}

type NodeRef struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

// Edge is the wire shape of a fact. created_at and expired_at are always
// emitted, as null when unset; the remaining optional fields are omitted.
type Edge struct {
	UUID              string   `json:"uuid"`
	Name              string   `json:"name"`
	Fact              string   `json:"fact"`
	CreatedAt         *string  `json:"created_at"`
	ExpiredAt         *string  `json:"expired_at"`
	SourceNode        *NodeRef `json:"source_node,omitempty"`
	TargetNode        *NodeRef `json:"target_node,omitempty"`
	SourceDescription *string  `json:"source_description,omitempty"`
	Score             *float64 `json:"score,omitempty"`
}

type SearchResult struct {
	Edges []Edge           `json:"edges"`
	Nodes []map[string]any `json:"nodes"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type DeleteResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
