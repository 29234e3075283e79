package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/canfieldjuan/graphgate/internal/config"
	"github.com/canfieldjuan/graphgate/internal/graphiti/common"
	"github.com/canfieldjuan/graphgate/internal/graphiti/model"
	"github.com/canfieldjuan/graphgate/internal/llm"
)

type Extractor struct {
	LLM     llm.LLMClient
	Prompts config.ExtractionPrompts
}

func NewExtractor(llmClient llm.LLMClient, prompts config.ExtractionPrompts) *Extractor {
	return &Extractor{
		LLM:     llmClient,
		Prompts: prompts,
	}
}

// ExtractNodes asks the LLM for the entities mentioned in content. Blank and
// repeated names (case-insensitive) are dropped.
func (e *Extractor) ExtractNodes(ctx context.Context, content, sourceDescription string) ([]model.ExtractedEntity, error) {
	prompt := fmt.Sprintf(e.Prompts.Nodes, sourceDescription, content)

	response, err := e.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entities: %w", err)
	}

	result, err := common.ParseJSON[model.ExtractedEntities](response)
	if err != nil {
		return nil, fmt.Errorf("failed to extract entities: %w", err)
	}

	seen := make(map[string]bool, len(result.ExtractedEntities))
	entities := make([]model.ExtractedEntity, 0, len(result.ExtractedEntities))
	for _, ent := range result.ExtractedEntities {
		ent.Name = strings.TrimSpace(ent.Name)
		key := strings.ToLower(ent.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		entities = append(entities, ent)
	}
	return entities, nil
}

// ExtractEdges asks the LLM for facts between nodes. Edges that reference an
// unknown uuid or carry no fact are dropped.
func (e *Extractor) ExtractEdges(ctx context.Context, nodes []model.EntityNode, content string) ([]model.ExtractedEdge, error) {
	if len(nodes) < 2 {
		return nil, nil
	}

	known := make(map[string]bool, len(nodes))
	var nodeContext strings.Builder
	for _, n := range nodes {
		known[n.UUID] = true
		fmt.Fprintf(&nodeContext, "- UUID: %s, Name: %s\n", n.UUID, n.Name)
	}

	prompt := fmt.Sprintf(e.Prompts.Edges, nodeContext.String(), content)

	response, err := e.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate edges: %w", err)
	}

	result, err := common.ParseJSON[model.ExtractedEdges](response)
	if err != nil {
		return nil, fmt.Errorf("failed to extract edges: %w", err)
	}

	edges := make([]model.ExtractedEdge, 0, len(result.ExtractedEdges))
	for _, edge := range result.ExtractedEdges {
		if !known[edge.SourceNodeUUID] || !known[edge.TargetNodeUUID] || strings.TrimSpace(edge.Fact) == "" {
			continue
		}
		if edge.RelationType == "" {
			edge.RelationType = "RELATES_TO"
		}
		edges = append(edges, edge)
	}
	return edges, nil
}
