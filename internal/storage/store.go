// Package storage persists the tracker's three records (expenses, categories
// and the item-category map) as JSON values in a key-value store.
package storage

import (
	"context"
	"errors"
)

// Record keys.
const (
	KeyExpenses   = "expenses"
	KeyCategories = "categories"
	KeyItemMap    = "itemCategoryMap"
)

// Keys lists every record key in a stable order.
var Keys = []string{KeyExpenses, KeyCategories, KeyItemMap}

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store closed")

// Store is the key-value capability the tracker is built on. Values are the
// serialized record text; a missing key loads as (nil, false, nil).
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	// SaveBatch writes every entry or none of them.
	SaveBatch(ctx context.Context, values map[string][]byte) error
	Close() error
}

// Pinger is implemented by stores backed by a network or file resource.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Versioner is implemented by stores that count writes. The version grows on
// every successful Save or SaveBatch, including writes from other processes
// sharing the same database.
type Versioner interface {
	Version(ctx context.Context) (int64, error)
}
