package persistence

import (
	"context"
	"sync"

	"github.com/adcrafted/adspace-service/internal/domain/store"
)

// MemoryItemStore is an in-memory item store for tests and local runs. It
// preserves insertion order per table, which is the storage order surfaced
// by Query and Scan.
type MemoryItemStore struct {
	mu     sync.RWMutex
	schema store.KeySchema
	tables map[string]*memoryTable
}

type memoryTable struct {
	items map[string]store.Item
	order []string
}

// NewMemoryItemStore creates an empty in-memory item store. The schema names
// the key attributes of each table so Put can derive item keys.
func NewMemoryItemStore(schema store.KeySchema) *MemoryItemStore {
	return &MemoryItemStore{
		schema: schema,
		tables: make(map[string]*memoryTable),
	}
}

func (s *MemoryItemStore) table(name string) *memoryTable {
	t, ok := s.tables[name]
	if !ok {
		t = &memoryTable{items: make(map[string]store.Item)}
		s.tables[name] = t
	}
	return t
}

func (s *MemoryItemStore) itemKey(table string, item store.Item) store.Key {
	if keys, ok := s.schema[table]; ok {
		return store.KeyOf(item, keys)
	}
	// Unregistered tables key on the whole item.
	key := store.Key{}
	for name, v := range item {
		key[name] = v
	}
	return key
}

// Get retrieves an item by key.
func (s *MemoryItemStore) Get(ctx context.Context, table string, key store.Key) (store.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[table]
	if !ok {
		return nil, store.ErrItemNotFound
	}
	item, ok := t.items[key.Canonical()]
	if !ok {
		return nil, store.ErrItemNotFound
	}
	return item.Clone(), nil
}

// Put writes an item, replacing any existing item with the same key.
func (s *MemoryItemStore) Put(ctx context.Context, table string, item store.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(table)
	canon := s.itemKey(table, item).Canonical()
	if _, exists := t.items[canon]; !exists {
		t.order = append(t.order, canon)
	}
	t.items[canon] = item.Clone()
	return nil
}

// Update merges the edits into the existing item, creating it when absent.
func (s *MemoryItemStore) Update(ctx context.Context, table string, key store.Key, edits map[string]store.AttributeValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(table)
	canon := key.Canonical()
	item, exists := t.items[canon]
	if !exists {
		item = store.Item{}
		for name, v := range key {
			item[name] = v
		}
		t.order = append(t.order, canon)
	}
	for name, v := range edits {
		item[name] = v
	}
	t.items[canon] = item
	return nil
}

// Delete removes an item. Missing items are not an error.
func (s *MemoryItemStore) Delete(ctx context.Context, table string, key store.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[table]
	if !ok {
		return nil
	}
	canon := key.Canonical()
	if _, exists := t.items[canon]; !exists {
		return nil
	}
	delete(t.items, canon)
	for i, k := range t.order {
		if k == canon {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Query returns items whose attribute equals the value, in insertion order.
func (s *MemoryItemStore) Query(ctx context.Context, table string, attr string, value store.AttributeValue) ([]store.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[table]
	if !ok {
		return nil, nil
	}
	var out []store.Item
	for _, canon := range t.order {
		item := t.items[canon]
		if v, present := item[attr]; present && v.Equal(value) {
			out = append(out, item.Clone())
		}
	}
	return out, nil
}

// Scan returns every item in the table, in insertion order.
func (s *MemoryItemStore) Scan(ctx context.Context, table string) ([]store.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[table]
	if !ok {
		return nil, nil
	}
	out := make([]store.Item, 0, len(t.order))
	for _, canon := range t.order {
		out = append(out, t.items[canon].Clone())
	}
	return out, nil
}

// BatchDelete removes the listed items.
func (s *MemoryItemStore) BatchDelete(ctx context.Context, table string, keys []store.Key) error {
	for _, key := range keys {
		if err := s.Delete(ctx, table, key); err != nil {
			return err
		}
	}
	return nil
}
