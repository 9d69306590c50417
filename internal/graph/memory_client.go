package graph

import (
	"context"
	"strings"
	"sync"
)

// Responder produces the result for a query routed to it by MemoryClient.
type Responder func(cypher string, params map[string]any) (Result, error)

// MemoryClient is a scriptable in-memory Client used to unit test repository
// logic without a running graph database. Queries are routed to the first
// responder whose fragment occurs in the statement; unrouted queries return an
// empty result.
type MemoryClient struct {
	mu           sync.Mutex
	routes       []route
	calls        []ExecutedQuery
	connectivity error
}

type route struct {
	fragment string
	respond  Responder
}

// ExecutedQuery captures a statement executed against the client.
type ExecutedQuery struct {
	Write  bool
	Query  string
	Params map[string]any
}

// NewMemoryClient instantiates an empty MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// On routes statements containing fragment to fn.
func (m *MemoryClient) On(fragment string, fn Responder) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route{fragment: fragment, respond: fn})
	return m
}

// WithConnectivityError forces VerifyConnectivity to return err.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

func (m *MemoryClient) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(ctx, true, cypher, params)
}

func (m *MemoryClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(ctx, false, cypher, params)
}

func (m *MemoryClient) execute(ctx context.Context, write bool, cypher string, params map[string]any) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, ExecutedQuery{
		Write:  write,
		Query:  cypher,
		Params: cloneMap(params),
	})
	var respond Responder
	for _, r := range m.routes {
		if strings.Contains(cypher, r.fragment) {
			respond = r.respond
			break
		}
	}
	m.mu.Unlock()

	if respond == nil {
		return Result{}, nil
	}
	return respond(cypher, params)
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// Calls returns a snapshot of executed statements.
func (m *MemoryClient) Calls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.calls...)
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
