// Package graphiti is a small temporal knowledge graph client on top of a
// bolt database and an LLM. Episodes are turned into entities and facts by
// LLM extraction; facts are searched by term overlap and embedding similarity.
package graphiti

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/canfieldjuan/graphgate/internal/config"
	"github.com/canfieldjuan/graphgate/internal/driver"
	"github.com/canfieldjuan/graphgate/internal/graphiti/dedupe"
	"github.com/canfieldjuan/graphgate/internal/graphiti/extraction"
	"github.com/canfieldjuan/graphgate/internal/graphiti/model"
	"github.com/canfieldjuan/graphgate/internal/llm"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const defaultCandidates = 500

type Client struct {
	Driver    driver.GraphDriver
	LLM       llm.LLMClient
	Embedder  llm.EmbedderClient // nil disables embeddings
	Reranker  llm.RerankerClient // nil disables reranking
	Extractor *extraction.Extractor
	Deduper   *dedupe.Deduplicator // nil skips LLM entity resolution

	// Candidates bounds the edge pool scored per search.
	Candidates int

	UUIDGenerator func() string
	Now           func() time.Time

	logger *slog.Logger
}

func NewClient(d driver.GraphDriver, llmClient llm.LLMClient, embedder llm.EmbedderClient, cfg *config.Config, logger *slog.Logger) *Client {
	candidates := cfg.Search.Candidates
	if candidates <= 0 {
		candidates = defaultCandidates
	}
	c := &Client{
		Driver:        d,
		LLM:           llmClient,
		Embedder:      embedder,
		Extractor:     extraction.NewExtractor(llmClient, cfg.Extraction),
		Candidates:    candidates,
		UUIDGenerator: func() string { return uuid.New().String() },
		Now:           func() time.Time { return time.Now().UTC() },
		logger:        logger.With("module", "graphiti"),
	}
	if cfg.Dedupe.Enabled {
		c.Deduper = dedupe.NewDeduplicator(llmClient, cfg.Extraction.Dedupe, cfg.Dedupe.MinConfidence)
	}
	return c
}

func (c *Client) BuildIndices(ctx context.Context) error {
	return c.Driver.BuildIndices(ctx)
}

func (c *Client) Close(ctx context.Context) error {
	return c.Driver.Close(ctx)
}

// ExecuteQuery runs raw Cypher against the underlying database.
func (c *Client) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	return c.Driver.ExecuteQuery(ctx, query, params)
}

type EpisodeParams struct {
	Name              string
	Body              string
	SourceDescription string
	ReferenceTime     time.Time
	GroupID           string
	Source            model.EpisodeType
}

type AddEpisodeResults struct {
	Episode *model.EpisodicNode
	Nodes   []model.EntityNode
	Edges   []model.EntityEdge
}

func (r *AddEpisodeResults) String() string {
	if r == nil || r.Episode == nil {
		return "AddEpisodeResults(<nil>)"
	}
	return fmt.Sprintf("AddEpisodeResults(episode=%s, nodes=%d, edges=%d)", r.Episode.UUID, len(r.Nodes), len(r.Edges))
}

// AddEpisode extracts entities and facts from the episode and writes the
// episode, new entities, MENTIONS links and RELATES_TO facts. All LLM work
// happens before the first write; writes are not transactional.
func (c *Client) AddEpisode(ctx context.Context, p EpisodeParams) (*AddEpisodeResults, error) {
	now := c.Now()
	source := p.Source
	if source == "" {
		source = model.EpisodeTypeText
	}
	validAt := p.ReferenceTime
	if validAt.IsZero() {
		validAt = now
	}

	episode := &model.EpisodicNode{
		UUID:              c.UUIDGenerator(),
		Name:              p.Name,
		GroupID:           p.GroupID,
		CreatedAt:         now,
		ValidAt:           validAt,
		Content:           p.Body,
		Source:            source,
		SourceDescription: p.SourceDescription,
		EntityEdges:       []string{},
	}

	extracted, err := c.Extractor.ExtractNodes(ctx, p.Body, p.SourceDescription)
	if err != nil {
		return nil, err
	}

	existing, err := c.getGroupNodes(ctx, p.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group entities: %w", err)
	}

	nodes, created := c.resolveEntities(extracted, existing, p.GroupID, now)
	nodes, created = c.dedupeEntities(ctx, nodes, created, existing)

	facts, err := c.Extractor.ExtractEdges(ctx, nodes, p.Body)
	if err != nil {
		return nil, err
	}

	edges := make([]model.EntityEdge, 0, len(facts))
	for _, f := range facts {
		edge := model.EntityEdge{
			UUID:       c.UUIDGenerator(),
			SourceUUID: f.SourceNodeUUID,
			TargetUUID: f.TargetNodeUUID,
			GroupID:    p.GroupID,
			Name:       f.RelationType,
			Fact:       f.Fact,
			CreatedAt:  &now,
			ValidAt:    &validAt,
			Episodes:   []string{episode.UUID},
		}
		edge.FactEmbedding = c.embed(ctx, edge.Fact)
		edges = append(edges, edge)
		episode.EntityEdges = append(episode.EntityEdges, edge.UUID)
	}
	for i := range created {
		created[i].NameEmbedding = c.embed(ctx, created[i].Name)
	}

	if err := c.saveEpisode(ctx, episode); err != nil {
		return nil, err
	}
	for _, n := range created {
		if err := c.saveEntity(ctx, n); err != nil {
			return nil, err
		}
	}
	for _, n := range nodes {
		if err := c.saveMention(ctx, episode, n.UUID, now); err != nil {
			return nil, err
		}
	}
	for _, e := range edges {
		if err := c.saveEntityEdge(ctx, e); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("episode ingested", "episode", episode.UUID, "group_id", p.GroupID,
		"entities", len(nodes), "new_entities", len(created), "facts", len(edges))

	return &AddEpisodeResults{Episode: episode, Nodes: nodes, Edges: edges}, nil
}

// resolveEntities maps extracted names onto existing group entities by
// case-insensitive name and mints nodes for the rest. It returns every node
// the episode mentions and, separately, the ones that must be created.
func (c *Client) resolveEntities(extracted []model.ExtractedEntity, existing []model.EntityNode, groupID string, now time.Time) ([]model.EntityNode, []model.EntityNode) {
	byName := make(map[string]model.EntityNode, len(existing))
	for _, n := range existing {
		byName[strings.ToLower(n.Name)] = n
	}

	var nodes, created []model.EntityNode
	for _, ent := range extracted {
		key := strings.ToLower(ent.Name)
		if n, ok := byName[key]; ok {
			nodes = append(nodes, n)
			continue
		}
		n := model.EntityNode{
			UUID:      c.UUIDGenerator(),
			Name:      ent.Name,
			GroupID:   groupID,
			CreatedAt: now,
		}
		byName[key] = n
		nodes = append(nodes, n)
		created = append(created, n)
	}
	return nodes, created
}

// dedupeEntities folds new entities the LLM matches to stored ones. A failed
// dedupe call keeps every new entity.
func (c *Client) dedupeEntities(ctx context.Context, nodes, created, existing []model.EntityNode) ([]model.EntityNode, []model.EntityNode) {
	if c.Deduper == nil || len(created) == 0 || len(existing) == 0 {
		return nodes, created
	}

	resolved, err := c.Deduper.ResolveDuplicates(ctx, created, existing)
	if err != nil {
		c.logger.Warn("entity dedupe failed", "error", err)
		return nodes, created
	}
	if len(resolved) == 0 {
		return nodes, created
	}

	seen := make(map[string]bool, len(nodes))
	merged := make([]model.EntityNode, 0, len(nodes))
	for _, n := range nodes {
		if original, ok := resolved[n.UUID]; ok {
			n = original
		}
		if seen[n.UUID] {
			continue
		}
		seen[n.UUID] = true
		merged = append(merged, n)
	}

	kept := created[:0]
	for _, n := range created {
		if _, ok := resolved[n.UUID]; !ok {
			kept = append(kept, n)
		}
	}
	return merged, kept
}

// embed returns nil when no embedder is configured or the call fails.
func (c *Client) embed(ctx context.Context, text string) []float32 {
	if c.Embedder == nil {
		return nil
	}
	vec, err := c.Embedder.Embed(ctx, text)
	if err != nil {
		c.logger.Warn("embedding failed", "error", err)
		return nil
	}
	return vec
}

func (c *Client) getGroupNodes(ctx context.Context, groupID string) ([]model.EntityNode, error) {
	res, err := c.Driver.ExecuteQuery(ctx, driver.GetGroupNodesQuery, map[string]interface{}{"group_id": groupID})
	if err != nil {
		return nil, err
	}

	nodes := make([]model.EntityNode, 0, len(res.Records))
	for _, rec := range res.Records {
		nodes = append(nodes, model.EntityNode{
			UUID:    driver.String(rec, "uuid"),
			Name:    driver.String(rec, "name"),
			GroupID: groupID,
			Summary: driver.String(rec, "summary"),
		})
	}
	return nodes, nil
}

func (c *Client) saveEpisode(ctx context.Context, ep *model.EpisodicNode) error {
	params := map[string]interface{}{
		"uuid":               ep.UUID,
		"name":               ep.Name,
		"group_id":           ep.GroupID,
		"created_at":         ep.CreatedAt,
		"valid_at":           ep.ValidAt,
		"content":            ep.Content,
		"source":             string(ep.Source),
		"source_description": ep.SourceDescription,
		"entity_edges":       ep.EntityEdges,
	}
	if _, err := c.Driver.ExecuteQuery(ctx, driver.SaveEpisodicNodeQuery, params); err != nil {
		return fmt.Errorf("failed to save episode: %w", err)
	}
	return nil
}

func (c *Client) saveEntity(ctx context.Context, n model.EntityNode) error {
	params := map[string]interface{}{
		"uuid":           n.UUID,
		"name":           n.Name,
		"group_id":       n.GroupID,
		"created_at":     n.CreatedAt,
		"summary":        n.Summary,
		"name_embedding": embeddingParam(n.NameEmbedding),
	}
	if _, err := c.Driver.ExecuteQuery(ctx, driver.SaveEntityNodeQuery, params); err != nil {
		return fmt.Errorf("failed to save entity %q: %w", n.Name, err)
	}
	return nil
}

func (c *Client) saveMention(ctx context.Context, ep *model.EpisodicNode, entityUUID string, now time.Time) error {
	params := map[string]interface{}{
		"uuid":        c.UUIDGenerator(),
		"source_uuid": ep.UUID,
		"target_uuid": entityUUID,
		"group_id":    ep.GroupID,
		"created_at":  now,
	}
	if _, err := c.Driver.ExecuteQuery(ctx, driver.SaveEpisodicEdgeQuery, params); err != nil {
		return fmt.Errorf("failed to link episode to entity %s: %w", entityUUID, err)
	}
	return nil
}

func (c *Client) saveEntityEdge(ctx context.Context, e model.EntityEdge) error {
	params := map[string]interface{}{
		"uuid":           e.UUID,
		"source_uuid":    e.SourceUUID,
		"target_uuid":    e.TargetUUID,
		"name":           e.Name,
		"fact":           e.Fact,
		"group_id":       e.GroupID,
		"created_at":     timeParam(e.CreatedAt),
		"expired_at":     timeParam(e.ExpiredAt),
		"valid_at":       timeParam(e.ValidAt),
		"invalid_at":     timeParam(e.InvalidAt),
		"episodes":       e.Episodes,
		"fact_embedding": embeddingParam(e.FactEmbedding),
	}
	if _, err := c.Driver.ExecuteQuery(ctx, driver.SaveEntityEdgeQuery, params); err != nil {
		return fmt.Errorf("failed to save fact %s: %w", e.UUID, err)
	}
	return nil
}

// GetEpisode loads an episodic node by uuid.
func (c *Client) GetEpisode(ctx context.Context, episodeUUID string) (*model.EpisodicNode, error) {
	res, err := c.Driver.ExecuteQuery(ctx, driver.GetEpisodeByUUIDQuery, map[string]interface{}{"uuid": episodeUUID})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("episode %s: %w", episodeUUID, ErrNodeNotFound)
	}

	rec := res.Records[0]
	ep := &model.EpisodicNode{
		UUID:              driver.String(rec, "uuid"),
		Name:              driver.String(rec, "name"),
		GroupID:           driver.String(rec, "group_id"),
		Content:           driver.String(rec, "content"),
		Source:            model.EpisodeType(driver.String(rec, "source")),
		SourceDescription: driver.String(rec, "source_description"),
		EntityEdges:       driver.Strings(rec, "entity_edges"),
	}
	if t := driver.Time(rec, "created_at"); t != nil {
		ep.CreatedAt = *t
	}
	if t := driver.Time(rec, "valid_at"); t != nil {
		ep.ValidAt = *t
	}
	return ep, nil
}

// DeleteEpisode detach-deletes the episodic node. Entities and facts it
// produced are left in place.
func (c *Client) DeleteEpisode(ctx context.Context, ep *model.EpisodicNode) error {
	if _, err := c.Driver.ExecuteQuery(ctx, driver.DeleteEpisodeQuery, map[string]interface{}{"uuid": ep.UUID}); err != nil {
		return fmt.Errorf("failed to delete episode %s: %w", ep.UUID, err)
	}
	return nil
}

func timeParam(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func embeddingParam(v []float32) interface{} {
	if len(v) == 0 {
		return nil
	}
	return v
}
