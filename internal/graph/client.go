package graph

import (
	"context"
	"errors"
	"time"
)

// Client is the minimal contract the profile repository needs from a graph
// database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a fully consumed query response.
type Result struct {
	Records []Record
}

// Record maps returned column names to values.
type Record map[string]any

// Options configures a graph client implementation.
type Options struct {
	URI               string
	Database          string
	Username          string
	Password          string
	MaxConnections    int
	AcquireTimeout    time.Duration
	MaxTransactionTTL time.Duration
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
