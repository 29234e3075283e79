package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/canfieldjuan/graphgate/internal/gateway"
	"github.com/canfieldjuan/graphgate/internal/gateway/gatewaytest"
	"github.com/canfieldjuan/graphgate/internal/graphiti"
	"github.com/canfieldjuan/graphgate/internal/graphiti/model"
	"github.com/canfieldjuan/graphgate/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	enrichment int
	open       int
}

func (o *countingObserver) EnrichmentFailed() { o.enrichment++ }
func (o *countingObserver) ClientOpenFailed() { o.open++ }

func newService(fake *gatewaytest.Fake) (*gateway.Service, *countingObserver) {
	obs := &countingObserver{}
	return gateway.NewService(fake.Open(), obs, logger.Discard()), obs
}

func validRequest() gateway.EpisodeRequest {
	return gateway.EpisodeRequest{
		Name:              "standup",
		EpisodeBody:       "Alice works at Acme.",
		SourceDescription: "meeting notes",
		ReferenceTime:     "2024-05-01T09:00:00Z",
		GroupID:           "team-a",
	}
}

func TestHealth_NoGraphNeeded(t *testing.T) {
	fake := gatewaytest.New()
	fake.OpenErr = errors.New("neo4j unreachable")
	svc, _ := newService(fake)

	h := svc.Health()

	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "1.0.0", h.Version)
	assert.Zero(t, fake.Opened)
}

func TestAddEpisode(t *testing.T) {
	fake := gatewaytest.New()
	svc, _ := newService(fake)

	resp, err := svc.AddEpisode(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "ep-1", resp.EpisodeID)
	assert.Zero(t, resp.EntitiesCreated)
	assert.Zero(t, resp.RelationsCreated)

	assert.Equal(t, model.EpisodeTypeText, fake.LastAdd.Source)
	assert.Equal(t, "team-a", fake.LastAdd.GroupID)
	assert.True(t, fake.LastAdd.ReferenceTime.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, fake.Opened)
	assert.Equal(t, 1, fake.Released)
}

func TestAddEpisode_CountersAlwaysZero(t *testing.T) {
	fake := gatewaytest.New()
	fake.AddResult = &graphiti.AddEpisodeResults{
		Episode: &model.EpisodicNode{UUID: "ep-x"},
		Nodes:   make([]model.EntityNode, 4),
		Edges:   make([]model.EntityEdge, 7),
	}
	svc, _ := newService(fake)

	resp, err := svc.AddEpisode(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "ep-x", resp.EpisodeID)
	assert.Zero(t, resp.EntitiesCreated)
	assert.Zero(t, resp.RelationsCreated)
}

func TestAddEpisode_OpaqueResult(t *testing.T) {
	fake := gatewaytest.New()
	fake.AddResult = &graphiti.AddEpisodeResults{}
	svc, _ := newService(fake)

	resp, err := svc.AddEpisode(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "AddEpisodeResults(<nil>)", resp.EpisodeID)
}

func TestAddEpisode_BadTimestamp(t *testing.T) {
	fake := gatewaytest.New()
	svc, _ := newService(fake)
	req := validRequest()
	req.ReferenceTime = "last tuesday"

	_, err := svc.AddEpisode(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, gateway.KindValidation, gateway.KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, gateway.StatusCode(err))
	assert.Contains(t, err.Error(), "last tuesday")
	assert.Zero(t, fake.Opened)
}

func TestAddEpisode_UpstreamFailureReleases(t *testing.T) {
	fake := gatewaytest.New()
	fake.AddErr = errors.New("llm quota exceeded")
	svc, _ := newService(fake)

	_, err := svc.AddEpisode(context.Background(), validRequest())

	assert.EqualError(t, err, "llm quota exceeded")
	assert.Equal(t, http.StatusInternalServerError, gateway.StatusCode(err))
	assert.Equal(t, 1, fake.Released)
}

func TestAddEpisode_OpenFailure(t *testing.T) {
	fake := gatewaytest.New()
	fake.OpenErr = errors.New("failed to open graph driver: connection refused")
	svc, obs := newService(fake)

	_, err := svc.AddEpisode(context.Background(), validRequest())

	assert.EqualError(t, err, "failed to open graph driver: connection refused")
	assert.Equal(t, 1, obs.open)
	assert.Zero(t, fake.Released)
}

func TestSearch_ShapesAndEnriches(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	score := 0.75

	fake := gatewaytest.New()
	fake.SourceDescriptions["ep-1"] = "meeting notes"
	first := gatewaytest.Hit("e1", "WORKS_AT", "Alice works at Acme", "ep-1")
	first.Edge.CreatedAt = &created
	first.SourceNode = &model.NodeRef{UUID: "n-alice", Name: "Alice"}
	first.TargetNode = &model.NodeRef{UUID: "n-acme", Name: "Acme"}
	first.Score = &score
	second := gatewaytest.Hit("e2", "KNOWS", "Alice knows Bob", "")
	fake.Hits = []model.SearchEdge{first, second}
	svc, _ := newService(fake)

	res, err := svc.Search(context.Background(), "Alice", []string{"team-a"}, 10)
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"edges": [
			{
				"uuid": "e1", "name": "WORKS_AT", "fact": "Alice works at Acme",
				"created_at": "2024-05-01T09:00:00+00:00", "expired_at": null,
				"source_node": {"name": "Alice", "uuid": "n-alice"},
				"target_node": {"name": "Acme", "uuid": "n-acme"},
				"source_description": "meeting notes",
				"score": 0.75
			},
			{
				"uuid": "e2", "name": "KNOWS", "fact": "Alice knows Bob",
				"created_at": null, "expired_at": null
			}
		],
		"nodes": []
	}`, string(raw))

	require.Len(t, fake.Searches, 1)
	assert.Equal(t, gatewaytest.SearchCall{Query: "Alice", GroupIDs: []string{"team-a"}, Limit: 10}, fake.Searches[0])
	assert.Equal(t, 1, fake.Released)
}

func TestSearch_EnrichmentFailureKeepsEdge(t *testing.T) {
	fake := gatewaytest.New()
	fake.QueryErr = errors.New("bolt connection reset")
	hit := gatewaytest.Hit("e1", "WORKS_AT", "Alice works at Acme", "ep-1")
	hit.SourceNode = &model.NodeRef{UUID: "n-alice", Name: "Alice"}
	fake.Hits = []model.SearchEdge{hit}
	svc, obs := newService(fake)

	res, err := svc.Search(context.Background(), "Alice", nil, 10)

	require.NoError(t, err)
	require.Len(t, res.Edges, 1)
	edge := res.Edges[0]
	assert.Equal(t, "e1", edge.UUID)
	assert.Equal(t, "Alice works at Acme", edge.Fact)
	assert.Equal(t, "Alice", edge.SourceNode.Name)
	assert.Nil(t, edge.SourceDescription)
	assert.Equal(t, 1, obs.enrichment)

	raw, err := json.Marshal(edge)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "source_description")
}

func TestSearch_PreservesClientOrder(t *testing.T) {
	low, high := 0.1, 0.9
	fake := gatewaytest.New()
	a := gatewaytest.Hit("a", "R", "first", "")
	a.Score = &low
	b := gatewaytest.Hit("b", "R", "second", "")
	b.Score = &high
	fake.Hits = []model.SearchEdge{a, b}
	svc, _ := newService(fake)

	res, err := svc.Search(context.Background(), "q", []string{}, 10)

	require.NoError(t, err)
	assert.Equal(t, "a", res.Edges[0].UUID)
	assert.Equal(t, "b", res.Edges[1].UUID)
}

func TestSearch_PrimaryFailure(t *testing.T) {
	fake := gatewaytest.New()
	fake.SearchErr = errors.New("index offline")
	svc, _ := newService(fake)

	_, err := svc.Search(context.Background(), "q", []string{"g"}, 10)

	assert.EqualError(t, err, "index offline")
	assert.Equal(t, http.StatusInternalServerError, gateway.StatusCode(err))
	assert.Equal(t, 1, fake.Released)
}

func TestGetEntityEdges_CaseInsensitiveSubstring(t *testing.T) {
	fake := gatewaytest.New()
	fake.Hits = []model.SearchEdge{
		gatewaytest.Hit("1", "bob smith", "x", ""),
		gatewaytest.Hit("2", "Robert", "y", ""),
		gatewaytest.Hit("3", "MENTORS_BOB", "z", ""),
	}
	svc, _ := newService(fake)

	res, err := svc.GetEntityEdges(context.Background(), "Bob", []string{"g"})

	require.NoError(t, err)
	require.Len(t, res.Edges, 2)
	for _, e := range res.Edges {
		assert.Contains(t, strings.ToLower(e.Name), "bob")
	}
	assert.Equal(t, 50, fake.Searches[0].Limit)
	assert.Equal(t, "Bob", fake.Searches[0].Query)
}

func TestDeleteEpisode_TwiceIs200Then404(t *testing.T) {
	fake := gatewaytest.New()
	svc, _ := newService(fake)
	added, err := svc.AddEpisode(context.Background(), validRequest())
	require.NoError(t, err)

	resp, err := svc.DeleteEpisode(context.Background(), added.EpisodeID)
	require.NoError(t, err)
	assert.Equal(t, &gateway.DeleteResponse{Message: "Episode deleted", Success: true}, resp)

	_, err = svc.DeleteEpisode(context.Background(), added.EpisodeID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, gateway.StatusCode(err))
	assert.EqualError(t, err, "Episode ep-1 not found")
	assert.ErrorIs(t, err, graphiti.ErrNodeNotFound)

	assert.Equal(t, fake.Opened, fake.Released)
}

func TestDeleteEpisode_UpstreamFailure(t *testing.T) {
	fake := gatewaytest.New()
	fake.GetErr = errors.New("database unavailable")
	svc, _ := newService(fake)

	_, err := svc.DeleteEpisode(context.Background(), "ep-1")

	assert.EqualError(t, err, "database unavailable")
	assert.Equal(t, http.StatusInternalServerError, gateway.StatusCode(err))
}
