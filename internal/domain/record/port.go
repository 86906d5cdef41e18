package record

import (
	"context"
	"errors"
)

const (
	CollectionUsers  = "users"
	CollectionTokens = "tokens"
	CollectionChecks = "checks"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrExists   = errors.New("record already exists")
)

// Record is a stored value as decoded from the store, before any validation.
type Record map[string]any

// Store is a keyed document store split into collections.
// Single-record operations are atomic; there are no cross-record transactions.
type Store interface {
	Create(ctx context.Context, collection, key string, value Record) error
	Read(ctx context.Context, collection, key string) (Record, error)
	Update(ctx context.Context, collection, key string, value Record) error
	Delete(ctx context.Context, collection, key string) error
	List(ctx context.Context, collection string) ([]string, error)
}
