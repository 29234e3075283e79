// Package gateway maps the REST operations onto a knowledge graph client and
// shapes what comes back for the web front-end.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/canfieldjuan/graphgate/internal/graphiti"
	"github.com/canfieldjuan/graphgate/internal/graphiti/model"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const entityEdgesLimit = 50

// KnowledgeGraph is what the gateway needs from a graph client.
type KnowledgeGraph interface {
	AddEpisode(ctx context.Context, p graphiti.EpisodeParams) (*graphiti.AddEpisodeResults, error)
	Search(ctx context.Context, query string, groupIDs []string, limit int) ([]model.SearchEdge, error)
	GetEpisode(ctx context.Context, uuid string) (*model.EpisodicNode, error)
	DeleteEpisode(ctx context.Context, ep *model.EpisodicNode) error
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
}

// OpenFunc acquires a client for one request. The release func must be
// called exactly once when the request is done.
type OpenFunc func(ctx context.Context) (KnowledgeGraph, func(), error)

// FromFactory adapts a graphiti.Factory to an OpenFunc.
func FromFactory(f *graphiti.Factory) OpenFunc {
	return func(ctx context.Context) (KnowledgeGraph, func(), error) {
		c, release, err := f.Open(ctx)
		if err != nil {
			return nil, nil, err
		}
		return c, release, nil
	}
}

// Observer receives gateway events worth counting. A nil Observer is fine.
type Observer interface {
	EnrichmentFailed()
	ClientOpenFailed()
}

type Service struct {
	open     OpenFunc
	observer Observer
	logger   *slog.Logger
}

func NewService(open OpenFunc, observer Observer, logger *slog.Logger) *Service {
	return &Service{
		open:     open,
		observer: observer,
		logger:   logger.With("module", "gateway"),
	}
}

func (s *Service) Health() HealthResponse {
	return HealthResponse{Status: "healthy", Version: Version}
}

// withClient runs fn with a freshly opened client and releases it on every
// exit path.
func (s *Service) withClient(ctx context.Context, op string, fn func(KnowledgeGraph) error) error {
	kg, release, err := s.open(ctx)
	if err != nil {
		if s.observer != nil {
			s.observer.ClientOpenFailed()
		}
		return newError(KindUpstream, op, err)
	}
	defer release()
	return fn(kg)
}

func (s *Service) AddEpisode(ctx context.Context, req EpisodeRequest) (*EpisodeResponse, error) {
	refTime, err := ParseReferenceTime(req.ReferenceTime)
	if err != nil {
		s.logger.Error("error adding episode", "error", err)
		return nil, err
	}

	var resp *EpisodeResponse
	err = s.withClient(ctx, "add_episode", func(kg KnowledgeGraph) error {
		res, err := kg.AddEpisode(ctx, graphiti.EpisodeParams{
			Name:              req.Name,
			Body:              req.EpisodeBody,
			SourceDescription: req.SourceDescription,
			ReferenceTime:     refTime,
			GroupID:           req.GroupID,
			Source:            model.EpisodeTypeText,
		})
		if err != nil {
			return newError(KindUpstream, "add_episode", err)
		}
		resp = &EpisodeResponse{EpisodeID: episodeID(res)}
		return nil
	})
	if err != nil {
		s.logger.Error("error adding episode", "error", err)
		return nil, err
	}

	s.logger.Info("added episode", "name", req.Name, "group_id", req.GroupID, "episode_id", resp.EpisodeID)
	return resp, nil
}

// ingestView is the part of an ingestion result the gateway reads. HasUUID is
// false when the client returned no episode identity.
type ingestView struct {
	UUID    string
	HasUUID bool
}

func viewIngest(res *graphiti.AddEpisodeResults) ingestView {
	if res == nil || res.Episode == nil || res.Episode.UUID == "" {
		return ingestView{}
	}
	return ingestView{UUID: res.Episode.UUID, HasUUID: true}
}

func episodeID(res *graphiti.AddEpisodeResults) string {
	if v := viewIngest(res); v.HasUUID {
		return v.UUID
	}
	return fmt.Sprint(res)
}

func (s *Service) Search(ctx context.Context, query string, groupIDs []string, limit int) (*SearchResult, error) {
	var result *SearchResult
	err := s.withClient(ctx, "search", func(kg KnowledgeGraph) error {
		hits, err := kg.Search(ctx, query, groupIDs, limit)
		if err != nil {
			return newError(KindUpstream, "search", err)
		}
		result = s.shape(ctx, kg, hits)
		return nil
	})
	if err != nil {
		s.logger.Error("error searching", "error", err)
		return nil, err
	}

	s.logger.Info("search", "query", query, "edges", len(result.Edges))
	return result, nil
}

func (s *Service) GetEntityEdges(ctx context.Context, entityName string, groupIDs []string) (*SearchResult, error) {
	var result *SearchResult
	err := s.withClient(ctx, "get_entity_edges", func(kg KnowledgeGraph) error {
		hits, err := kg.Search(ctx, entityName, groupIDs, entityEdgesLimit)
		if err != nil {
			return newError(KindUpstream, "get_entity_edges", err)
		}
		result = s.shape(ctx, kg, filterByName(hits, entityName))
		return nil
	})
	if err != nil {
		s.logger.Error("error getting entity edges", "error", err)
		return nil, err
	}

	s.logger.Info("entity edges", "entity", entityName, "edges", len(result.Edges))
	return result, nil
}

func (s *Service) DeleteEpisode(ctx context.Context, episodeID string) (*DeleteResponse, error) {
	err := s.withClient(ctx, "delete_episode", func(kg KnowledgeGraph) error {
		ep, err := kg.GetEpisode(ctx, episodeID)
		if errors.Is(err, graphiti.ErrNodeNotFound) {
			return &Error{Kind: KindNotFound, Op: "delete_episode", Msg: fmt.Sprintf("Episode %s not found", episodeID), Err: err}
		}
		if err != nil {
			return newError(KindUpstream, "delete_episode", err)
		}
		if err := kg.DeleteEpisode(ctx, ep); err != nil {
			return newError(KindUpstream, "delete_episode", err)
		}
		return nil
	})
	if err != nil {
		if KindOf(err) != KindNotFound {
			s.logger.Error("error deleting episode", "error", err)
		}
		return nil, err
	}

	s.logger.Info("deleted episode", "episode_id", episodeID)
	return &DeleteResponse{Message: "Episode deleted", Success: true}, nil
}

// shape converts hits in client order, enriching each one and logging
// enrichment warnings.
func (s *Service) shape(ctx context.Context, kg KnowledgeGraph, hits []model.SearchEdge) *SearchResult {
	result := &SearchResult{Edges: make([]Edge, 0, len(hits)), Nodes: []map[string]any{}}
	for _, hit := range hits {
		edge, warn := enrichEdge(ctx, kg, hit)
		if warn != nil {
			s.logger.Warn("enrichment failed", "edge", hit.Edge.UUID, "error", warn)
			if s.observer != nil {
				s.observer.EnrichmentFailed()
			}
		}
		result.Edges = append(result.Edges, edge)
	}
	return result
}
