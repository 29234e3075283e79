package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/canfieldjuan/graphgate/internal/driver"
	"github.com/canfieldjuan/graphgate/internal/graphiti/model"
)

func newEdge(hit model.SearchEdge) Edge {
	e := Edge{
		UUID:  hit.Edge.UUID,
		Name:  hit.Edge.Name,
		Fact:  hit.Edge.Fact,
		Score: hit.Score,
	}
	if hit.Edge.CreatedAt != nil {
		s := FormatTime(*hit.Edge.CreatedAt)
		e.CreatedAt = &s
	}
	if hit.Edge.ExpiredAt != nil {
		s := FormatTime(*hit.Edge.ExpiredAt)
		e.ExpiredAt = &s
	}
	if hit.SourceNode != nil {
		e.SourceNode = &NodeRef{Name: hit.SourceNode.Name, UUID: hit.SourceNode.UUID}
	}
	if hit.TargetNode != nil {
		e.TargetNode = &NodeRef{Name: hit.TargetNode.Name, UUID: hit.TargetNode.UUID}
	}
	return e
}

// enrichEdge shapes hit and, when it references an episode, fills in that
// episode's source_description. The returned error is a warning: the edge is
// always usable and simply lacks the field when the lookup failed.
func enrichEdge(ctx context.Context, kg KnowledgeGraph, hit model.SearchEdge) (Edge, error) {
	e := newEdge(hit)
	if len(hit.Edge.Episodes) == 0 {
		return e, nil
	}

	res, err := kg.ExecuteQuery(ctx, driver.EpisodeSourceDescriptionQuery, map[string]interface{}{
		"uuid": hit.Edge.Episodes[0],
	})
	if err != nil {
		return e, newError(KindEnrichment, "source_description", fmt.Errorf("could not get source_description for edge %s: %w", hit.Edge.UUID, err))
	}
	if len(res.Records) > 0 {
		if desc := driver.String(res.Records[0], "source_description"); desc != "" {
			e.SourceDescription = &desc
		}
	}
	return e, nil
}

// filterByName keeps edges whose name contains entityName, ignoring case.
func filterByName(hits []model.SearchEdge, entityName string) []model.SearchEdge {
	needle := strings.ToLower(entityName)
	out := make([]model.SearchEdge, 0, len(hits))
	for _, h := range hits {
		if strings.Contains(strings.ToLower(h.Edge.Name), needle) {
			out = append(out, h)
		}
	}
	return out
}
