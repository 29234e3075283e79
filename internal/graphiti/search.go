package graphiti

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/canfieldjuan/graphgate/internal/driver"
	"github.com/canfieldjuan/graphgate/internal/graphiti/model"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Search returns up to limit facts relevant to query within groupIDs. An
// empty groupIDs searches every group. Each fact is scored by the larger of
// query-term overlap and cosine similarity to the query embedding; facts
// scoring zero are dropped. A limit below one fails with ErrInvalidLimit.
func (c *Client) Search(ctx context.Context, query string, groupIDs []string, limit int) ([]model.SearchEdge, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidLimit, limit)
	}
	if groupIDs == nil {
		groupIDs = []string{}
	}

	res, err := c.Driver.ExecuteQuery(ctx, driver.SearchEdgesQuery, map[string]interface{}{
		"group_ids": groupIDs,
		"limit":     int64(c.Candidates),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search candidates: %w", err)
	}

	terms := tokenize(query)
	queryVec := c.embed(ctx, query)

	hits := make([]model.SearchEdge, 0, len(res.Records))
	for _, rec := range res.Records {
		hit := searchEdgeFromRecord(rec)

		haystack := strings.Join([]string{hit.Edge.Fact, hit.Edge.Name, refName(hit.SourceNode), refName(hit.TargetNode)}, " ")
		score := math.Max(termOverlap(terms, haystack), cosine(queryVec, hit.Edge.FactEmbedding))
		if score <= 0 {
			continue
		}
		hit.Score = &score
		hits = append(hits, hit)
	}

	sort.SliceStable(hits, func(i, j int) bool { return *hits[i].Score > *hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}

	if c.Reranker != nil && len(hits) > 1 {
		hits = c.rerank(ctx, query, hits)
	}
	return hits, nil
}

func (c *Client) rerank(ctx context.Context, query string, hits []model.SearchEdge) []model.SearchEdge {
	docs := make([]string, len(hits))
	for i, h := range hits {
		docs[i] = h.Edge.Fact
	}
	order, err := c.Reranker.Rank(ctx, query, docs)
	if err != nil || len(order) != len(hits) {
		c.logger.Warn("rerank skipped", "error", err, "returned", len(order), "expected", len(hits))
		return hits
	}
	out := make([]model.SearchEdge, 0, len(hits))
	for _, i := range order {
		out = append(out, hits[i])
	}
	return out
}

func searchEdgeFromRecord(rec *neo4j.Record) model.SearchEdge {
	edge := model.EntityEdge{
		UUID:          driver.String(rec, "uuid"),
		SourceUUID:    driver.String(rec, "source_uuid"),
		TargetUUID:    driver.String(rec, "target_uuid"),
		GroupID:       driver.String(rec, "group_id"),
		Name:          driver.String(rec, "name"),
		Fact:          driver.String(rec, "fact"),
		CreatedAt:     driver.Time(rec, "created_at"),
		ExpiredAt:     driver.Time(rec, "expired_at"),
		ValidAt:       driver.Time(rec, "valid_at"),
		InvalidAt:     driver.Time(rec, "invalid_at"),
		Episodes:      driver.Strings(rec, "episodes"),
		FactEmbedding: driver.Float32s(rec, "fact_embedding"),
	}

	hit := model.SearchEdge{Edge: edge}
	if edge.SourceUUID != "" {
		hit.SourceNode = &model.NodeRef{UUID: edge.SourceUUID, Name: driver.String(rec, "source_name")}
	}
	if edge.TargetUUID != "" {
		hit.TargetNode = &model.NodeRef{UUID: edge.TargetUUID, Name: driver.String(rec, "target_name")}
	}
	return hit
}

func refName(ref *model.NodeRef) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// termOverlap is the share of distinct query terms present in text.
func termOverlap(terms []string, text string) float64 {
	if len(terms) == 0 {
		return 0
	}
	words := make(map[string]bool)
	for _, w := range tokenize(text) {
		words[w] = true
	}

	seen := make(map[string]bool, len(terms))
	matched := 0
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		if words[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(seen))
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
