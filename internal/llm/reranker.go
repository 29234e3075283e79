package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxRerankDocLen = 200

var indexPattern = regexp.MustCompile(`\d+`)

type SimpleLLMReranker struct {
	LLM LLMClient
}

func NewSimpleLLMReranker(client LLMClient) *SimpleLLMReranker {
	return &SimpleLLMReranker{LLM: client}
}

// Rank returns document indices ordered by relevance. Every index appears
// exactly once; on LLM failure the original order is kept.
func (r *SimpleLLMReranker) Rank(ctx context.Context, query string, docs []string) ([]int, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) == 1 {
		return []int{0}, nil
	}

	var docList strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&docList, "[%d] %s\n", i, truncate(d, maxRerankDocLen))
	}

	prompt := fmt.Sprintf(`You are a search relevance optimization system.
Query: %s

Documents:
%s
Rank the documents above based on their relevance to the query.
Output ONLY the indices of the documents in order of relevance, separated by commas.
Example: 0, 2, 1
Do not output any other text.`, query, docList.String())

	resp, err := r.LLM.Generate(ctx, prompt)
	if err != nil {
		return identity(len(docs)), nil
	}
	return completeOrder(parseIndices(resp), len(docs)), nil
}

// truncate cuts s to at most limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

func parseIndices(s string) []int {
	var indices []int
	for _, m := range indexPattern.FindAllString(s, -1) {
		if i, err := strconv.Atoi(m); err == nil {
			indices = append(indices, i)
		}
	}
	return indices
}

// completeOrder drops out-of-range and repeated indices, then appends whatever
// the model left out in its original position order.
func completeOrder(indices []int, n int) []int {
	seen := make([]bool, n)
	out := make([]int, 0, n)
	for _, i := range indices {
		if i < 0 || i >= n || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	for i := 0; i < n; i++ {
		if !seen[i] {
			out = append(out, i)
		}
	}
	return out
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
