package graphiti

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/canfieldjuan/graphgate/internal/driver"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var searchKeys = []string{
	"uuid", "name", "fact", "group_id", "created_at", "expired_at", "valid_at", "invalid_at",
	"episodes", "fact_embedding", "source_uuid", "source_name", "target_uuid", "target_name",
}

func edgeRecord(uuid, name, fact string, embedding []interface{}, src, dst string) *neo4j.Record {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return record(searchKeys,
		uuid, name, fact, "g1", created, nil, created, nil,
		[]interface{}{"ep-" + uuid}, embedding,
		"n-"+src, src, "n-"+dst, dst,
	)
}

func searchDriver(records ...*neo4j.Record) *MockDriver {
	return &MockDriver{
		Results: map[string]neo4j.EagerResult{
			driver.SearchEdgesQuery: {Records: records},
		},
	}
}

func TestSearch_LexicalScoring(t *testing.T) {
	d := searchDriver(
		edgeRecord("e1", "LIKES", "Bob likes pizza", nil, "Bob", "pizza"),
		edgeRecord("e2", "WORKS_AT", "Alice works at Acme", nil, "Alice", "Acme"),
		edgeRecord("e3", "KNOWS", "Alice knows Bob", nil, "Alice", "Bob"),
	)
	c := newTestClient(d, &MockLLM{}, nil)

	hits, err := c.Search(context.Background(), "Alice Acme", []string{"g1"}, 10)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "e2", hits[0].Edge.UUID)
	assert.InDelta(t, 1.0, *hits[0].Score, 1e-9)
	assert.Equal(t, "e3", hits[1].Edge.UUID)
	assert.InDelta(t, 0.5, *hits[1].Score, 1e-9)

	require.NotNil(t, hits[0].SourceNode)
	assert.Equal(t, "Alice", hits[0].SourceNode.Name)
	assert.Equal(t, "n-Acme", hits[0].TargetNode.UUID)
	assert.Equal(t, []string{"ep-e2"}, hits[0].Edge.Episodes)
	assert.Nil(t, hits[0].Edge.ExpiredAt)
	assert.NotNil(t, hits[0].Edge.CreatedAt)

	params := d.Params(driver.SearchEdgesQuery)[0]
	assert.Equal(t, []string{"g1"}, params["group_ids"])
	assert.Equal(t, int64(500), params["limit"])
}

func TestSearch_EmptyGroupsMeansAll(t *testing.T) {
	d := searchDriver()
	c := newTestClient(d, &MockLLM{}, nil)

	hits, err := c.Search(context.Background(), "anything", nil, 5)

	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, []string{}, d.Params(driver.SearchEdgesQuery)[0]["group_ids"])
}

func TestSearch_Limit(t *testing.T) {
	d := searchDriver(
		edgeRecord("e1", "R", "alpha one", nil, "a", "b"),
		edgeRecord("e2", "R", "alpha two", nil, "a", "b"),
		edgeRecord("e3", "R", "alpha three", nil, "a", "b"),
	)
	c := newTestClient(d, &MockLLM{}, nil)

	hits, err := c.Search(context.Background(), "alpha", nil, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "e1", hits[0].Edge.UUID)
	assert.Equal(t, "e2", hits[1].Edge.UUID)

	executed := len(d.Executed)
	_, err = c.Search(context.Background(), "alpha", nil, 0)
	assert.EqualError(t, err, "search limit must be positive, got 0")
	_, err = c.Search(context.Background(), "alpha", nil, -3)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	assert.Len(t, d.Executed, executed)
}

func TestSearch_VectorSimilarity(t *testing.T) {
	d := searchDriver(
		edgeRecord("e1", "R", "unrelated words", []interface{}{1.0, 0.0}, "x", "y"),
		edgeRecord("e2", "R", "other words", []interface{}{0.0, 1.0}, "x", "y"),
	)
	emb := &MockEmbedder{Vectors: map[string][]float32{"colleagues": {0, 1}}}
	c := newTestClient(d, &MockLLM{}, emb)

	hits, err := c.Search(context.Background(), "colleagues", nil, 10)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "e2", hits[0].Edge.UUID)
	assert.InDelta(t, 1.0, *hits[0].Score, 1e-6)
}

func TestSearch_Rerank(t *testing.T) {
	d := searchDriver(
		edgeRecord("e1", "R", "alpha beta", nil, "a", "b"),
		edgeRecord("e2", "R", "alpha", nil, "a", "b"),
	)
	c := newTestClient(d, &MockLLM{}, nil)
	c.Reranker = &MockReranker{Order: []int{1, 0}}

	hits, err := c.Search(context.Background(), "alpha beta", nil, 10)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "e2", hits[0].Edge.UUID)
	assert.Equal(t, "e1", hits[1].Edge.UUID)
}

func TestSearch_DriverError(t *testing.T) {
	d := &MockDriver{Errs: map[string]error{driver.SearchEdgesQuery: errors.New("timeout")}}
	c := newTestClient(d, &MockLLM{}, nil)

	_, err := c.Search(context.Background(), "q", nil, 10)
	assert.EqualError(t, err, "failed to fetch search candidates: timeout")
}

func TestTermOverlap(t *testing.T) {
	terms := tokenize("Alice, alice & ACME!")
	assert.Equal(t, []string{"alice", "alice", "acme"}, terms)
	assert.InDelta(t, 0.5, termOverlap(terms, "Alice went home"), 1e-9)
	assert.Zero(t, termOverlap(nil, "anything"))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 1}, []float32{2, 2}), 1e-6)
	assert.Zero(t, cosine([]float32{1}, []float32{1, 2}))
	assert.Zero(t, cosine(nil, nil))
}
