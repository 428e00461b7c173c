package store

import (
	"context"
	"errors"
)

// ErrItemNotFound is returned by Get when no item exists under the given key.
var ErrItemNotFound = errors.New("item not found")

// ItemStore is the persistence collaborator: a table/key/attribute contract
// over schema-less items. Implementations live in internal/infrastructure.
type ItemStore interface {
	// Get retrieves a single item by its full key.
	Get(ctx context.Context, table string, key Key) (Item, error)

	// Put writes an item, replacing any existing item with the same key.
	Put(ctx context.Context, table string, item Item) error

	// Update applies per-attribute edits to an item, creating it when absent.
	Update(ctx context.Context, table string, key Key, edits map[string]AttributeValue) error

	// Delete removes a single item. Deleting a missing item is not an error.
	Delete(ctx context.Context, table string, key Key) error

	// Query returns every item whose named attribute equals the given value,
	// in storage order.
	Query(ctx context.Context, table string, attr string, value AttributeValue) ([]Item, error)

	// Scan returns every item in the table, in storage order.
	Scan(ctx context.Context, table string) ([]Item, error)

	// BatchDelete removes the listed items in one batched operation.
	BatchDelete(ctx context.Context, table string, keys []Key) error
}

// BlobStore is the binary-object collaborator. Uploaded objects are publicly
// addressable by the returned URL.
type BlobStore interface {
	// Upload stores the object under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)

	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL an object under key would be served from,
	// whether or not the object exists.
	URL(key string) string
}

// KeySchema maps table names to their hash and optional range attribute
// names. Backends that index by partition need it to lay items out.
type KeySchema map[string]TableKeys

// TableKeys names the key attributes of one table.
type TableKeys struct {
	HashAttr  string
	RangeAttr string
}
