package graphiti

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type ExecutedQuery struct {
	Query  string
	Params map[string]interface{}
}

// MockDriver answers each query constant with a canned result and records
// everything it was asked to run.
type MockDriver struct {
	Results  map[string]neo4j.EagerResult
	Errs     map[string]error
	Executed []ExecutedQuery
	Closed   bool
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Executed = append(m.Executed, ExecutedQuery{Query: query, Params: params})
	if err := m.Errs[query]; err != nil {
		return neo4j.EagerResult{}, err
	}
	return m.Results[query], nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	m.Closed = true
	return nil
}

func (m *MockDriver) Count(query string) int {
	n := 0
	for _, q := range m.Executed {
		if q.Query == query {
			n++
		}
	}
	return n
}

func (m *MockDriver) Params(query string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, q := range m.Executed {
		if q.Query == query {
			out = append(out, q.Params)
		}
	}
	return out
}

type MockEmbedder struct {
	Vectors map[string][]float32
	Vector  []float32
	Err     error
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if v, ok := m.Vectors[text]; ok {
		return v, nil
	}
	return m.Vector, nil
}

type MockLLM struct {
	Response      string
	ResponseQueue []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

type MockReranker struct {
	Order []int
}

func (m *MockReranker) Rank(ctx context.Context, query string, docs []string) ([]int, error) {
	return m.Order, nil
}

func record(keys []string, values ...interface{}) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}
