package graph

import (
	"context"
	"maps"
	"sync"
)

// Responder produces the result for a query executed against a MemoryClient.
type Responder func(query string, params map[string]any) (Result, error)

// MemoryClient records every query and answers with a Responder. It stands in
// for Neo4j in repository and service tests.
type MemoryClient struct {
	mu           sync.Mutex
	calls        []ExecutedQuery
	respond      Responder
	connectivity error
}

// ExecutedQuery captures a cypher statement and parameters executed against the graph.
type ExecutedQuery struct {
	Write  bool
	Query  string
	Params map[string]any
}

// NewMemoryClient returns a client answering every query with an empty result.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithResponder installs the function answering subsequent queries.
func (m *MemoryClient) WithResponder(fn Responder) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respond = fn
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(true, cypher, params)
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(false, cypher, params)
}

func (m *MemoryClient) execute(write bool, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, ExecutedQuery{Write: write, Query: cypher, Params: maps.Clone(params)})
	if m.respond == nil {
		return Result{}, nil
	}
	return m.respond(cypher, params)
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// WriteCalls returns a snapshot of executed write queries.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	return m.filter(true)
}

// ReadCalls returns a snapshot of executed read queries.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	return m.filter(false)
}

func (m *MemoryClient) filter(write bool) []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ExecutedQuery
	for _, call := range m.calls {
		if call.Write == write {
			out = append(out, call)
		}
	}
	return out
}
