// Package dedupe asks the LLM which newly extracted entities are the same
// real-world thing as entities already stored for the group.
package dedupe

import (
	"context"
	"fmt"
	"strings"

	"github.com/canfieldjuan/graphgate/internal/graphiti/common"
	"github.com/canfieldjuan/graphgate/internal/graphiti/model"
	"github.com/canfieldjuan/graphgate/internal/llm"
)

type Deduplicator struct {
	LLM    llm.LLMClient
	Prompt string
	// MinConfidence discards pairs the model is less sure about.
	MinConfidence float64
}

func NewDeduplicator(llmClient llm.LLMClient, prompt string, minConfidence float64) *Deduplicator {
	return &Deduplicator{
		LLM:           llmClient,
		Prompt:        prompt,
		MinConfidence: minConfidence,
	}
}

// ResolveDuplicates returns a map from new node uuid to the existing node it
// duplicates. Pairs naming unknown uuids are ignored, and each new node maps
// to at most one existing node.
func (d *Deduplicator) ResolveDuplicates(ctx context.Context, newNodes, existingNodes []model.EntityNode) (map[string]model.EntityNode, error) {
	if len(newNodes) == 0 || len(existingNodes) == 0 {
		return map[string]model.EntityNode{}, nil
	}

	prompt := fmt.Sprintf(d.Prompt, serializeNodes(newNodes), serializeNodes(existingNodes))

	response, err := d.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate deduplication result: %w", err)
	}

	result, err := common.ParseJSON[model.DeduplicationResult](response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deduplication result: %w", err)
	}

	fresh := make(map[string]bool, len(newNodes))
	for _, n := range newNodes {
		fresh[n.UUID] = true
	}
	stored := make(map[string]model.EntityNode, len(existingNodes))
	for _, n := range existingNodes {
		stored[n.UUID] = n
	}

	resolved := make(map[string]model.EntityNode)
	for _, pair := range result.Duplicates {
		original, ok := stored[pair.OriginalUUID]
		if !ok || !fresh[pair.DuplicateUUID] || pair.Confidence < d.MinConfidence {
			continue
		}
		if _, done := resolved[pair.DuplicateUUID]; done {
			continue
		}
		resolved[pair.DuplicateUUID] = original
	}
	return resolved, nil
}

func serializeNodes(nodes []model.EntityNode) string {
	var sb strings.Builder
	for _, n := range nodes {
		fmt.Fprintf(&sb, "- UUID: %s, Name: %s\n", n.UUID, n.Name)
	}
	return sb.String()
}
