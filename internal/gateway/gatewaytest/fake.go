// Package gatewaytest provides an in-memory knowledge graph for tests of the
// gateway and the transports built on it.
package gatewaytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/canfieldjuan/graphgate/internal/driver"
	"github.com/canfieldjuan/graphgate/internal/gateway"
	"github.com/canfieldjuan/graphgate/internal/graphiti"
	"github.com/canfieldjuan/graphgate/internal/graphiti/model"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type SearchCall struct {
	Query    string
	GroupIDs []string
	Limit    int
}

// Fake stores episodes in a map and answers searches with Hits.
type Fake struct {
	mu sync.Mutex

	Episodes           map[string]*model.EpisodicNode
	Hits               []model.SearchEdge
	SourceDescriptions map[string]string // episode uuid -> description

	// AddResult, when set, is returned from AddEpisode as is.
	AddResult *graphiti.AddEpisodeResults

	OpenErr   error
	AddErr    error
	SearchErr error
	GetErr    error
	DeleteErr error
	QueryErr  error

	LastAdd  graphiti.EpisodeParams
	Searches []SearchCall
	Opened   int
	Released int
	next     int
}

func New() *Fake {
	return &Fake{
		Episodes:           map[string]*model.EpisodicNode{},
		SourceDescriptions: map[string]string{},
	}
}

// Open counts acquisitions and releases.
func (f *Fake) Open() gateway.OpenFunc {
	return func(ctx context.Context) (gateway.KnowledgeGraph, func(), error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.OpenErr != nil {
			return nil, nil, f.OpenErr
		}
		f.Opened++
		return f, func() {
			f.mu.Lock()
			f.Released++
			f.mu.Unlock()
		}, nil
	}
}

func (f *Fake) AddEpisode(ctx context.Context, p graphiti.EpisodeParams) (*graphiti.AddEpisodeResults, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastAdd = p
	if f.AddErr != nil {
		return nil, f.AddErr
	}
	if f.AddResult != nil {
		return f.AddResult, nil
	}
	f.next++
	ep := &model.EpisodicNode{
		UUID:              fmt.Sprintf("ep-%d", f.next),
		Name:              p.Name,
		GroupID:           p.GroupID,
		Content:           p.Body,
		Source:            p.Source,
		SourceDescription: p.SourceDescription,
		ValidAt:           p.ReferenceTime,
	}
	f.Episodes[ep.UUID] = ep
	f.SourceDescriptions[ep.UUID] = p.SourceDescription
	return &graphiti.AddEpisodeResults{Episode: ep}, nil
}

func (f *Fake) Search(ctx context.Context, query string, groupIDs []string, limit int) ([]model.SearchEdge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Searches = append(f.Searches, SearchCall{Query: query, GroupIDs: groupIDs, Limit: limit})
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w, got %d", graphiti.ErrInvalidLimit, limit)
	}
	hits := f.Hits
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (f *Fake) GetEpisode(ctx context.Context, uuid string) (*model.EpisodicNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	ep, ok := f.Episodes[uuid]
	if !ok {
		return nil, fmt.Errorf("episode %s: %w", uuid, graphiti.ErrNodeNotFound)
	}
	return ep, nil
}

func (f *Fake) DeleteEpisode(ctx context.Context, ep *model.EpisodicNode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.Episodes, ep.UUID)
	return nil
}

// ExecuteQuery only understands the source_description lookup.
func (f *Fake) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.QueryErr != nil {
		return neo4j.EagerResult{}, f.QueryErr
	}
	if query != driver.EpisodeSourceDescriptionQuery {
		return neo4j.EagerResult{}, fmt.Errorf("unexpected query: %s", query)
	}
	uuid, _ := params["uuid"].(string)
	desc, ok := f.SourceDescriptions[uuid]
	if !ok {
		return neo4j.EagerResult{}, nil
	}
	return neo4j.EagerResult{
		Keys:    []string{"source_description"},
		Records: []*neo4j.Record{{Keys: []string{"source_description"}, Values: []interface{}{desc}}},
	}, nil
}

// Hit builds a search hit with endpoint refs and one episode reference.
func Hit(uuid, name, fact, episodeUUID string) model.SearchEdge {
	e := model.SearchEdge{
		Edge: model.EntityEdge{UUID: uuid, Name: name, Fact: fact},
	}
	if episodeUUID != "" {
		e.Edge.Episodes = []string{episodeUUID}
	}
	return e
}
