package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adcrafted/adspace-service/internal/domain/store"
	"github.com/adcrafted/adspace-service/pkg/monitoring"
)

// RedisItemStore implements the store.ItemStore contract on Redis. Items are
// JSON strings; per-table and per-partition sorted sets indexed by an
// insertion counter provide the storage order for Scan and Query.
type RedisItemStore struct {
	client *redis.Client
	schema store.KeySchema
}

// NewRedisItemStore creates a RedisItemStore. The schema names the key
// attributes of each logical table.
func NewRedisItemStore(client *redis.Client, schema store.KeySchema) *RedisItemStore {
	return &RedisItemStore{client: client, schema: schema}
}

func (s *RedisItemStore) itemKey(table string, key store.Key) string {
	return fmt.Sprintf("item:%s:%s", table, key.Canonical())
}

func (s *RedisItemStore) tableIndex(table string) string {
	return fmt.Sprintf("items:%s", table)
}

func (s *RedisItemStore) partIndex(table, hashValue string) string {
	return fmt.Sprintf("items:%s:part:%s", table, hashValue)
}

func (s *RedisItemStore) seqKey(table string) string {
	return fmt.Sprintf("items:%s:seq", table)
}

func (s *RedisItemStore) hashValue(table string, key store.Key) (string, bool) {
	keys, ok := s.schema[table]
	if !ok {
		return "", false
	}
	v, ok := key[keys.HashAttr]
	if !ok {
		return "", false
	}
	return v.Render(), true
}

// Get retrieves a single item by its full key.
func (s *RedisItemStore) Get(ctx context.Context, table string, key store.Key) (store.Item, error) {
	start := time.Now()
	raw, err := s.client.Get(ctx, s.itemKey(table, key)).Bytes()
	monitoring.RecordItemStoreOp("get", table, time.Since(start), ignoreNil(err))

	if err == redis.Nil {
		return nil, store.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return decodeItem(raw)
}

// Put writes an item, replacing any existing item with the same key.
func (s *RedisItemStore) Put(ctx context.Context, table string, item store.Item) error {
	keys, ok := s.schema[table]
	if !ok {
		return fmt.Errorf("no key schema registered for table %q", table)
	}
	return s.write(ctx, table, store.KeyOf(item, keys), item, "put")
}

// Update merges per-attribute edits into an item, creating it when absent.
func (s *RedisItemStore) Update(ctx context.Context, table string, key store.Key, edits map[string]store.AttributeValue) error {
	existing, err := s.Get(ctx, table, key)
	if err != nil && err != store.ErrItemNotFound {
		return err
	}
	merged := store.Item{}
	for name, v := range key {
		merged[name] = v
	}
	for name, v := range existing {
		merged[name] = v
	}
	for name, v := range edits {
		merged[name] = v
	}
	return s.write(ctx, table, key, merged, "update")
}

func (s *RedisItemStore) write(ctx context.Context, table string, key store.Key, item store.Item, op string) error {
	start := time.Now()
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode item: %w", err)
	}

	seq, err := s.client.Incr(ctx, s.seqKey(table)).Result()
	if err != nil {
		monitoring.RecordItemStoreOp(op, table, time.Since(start), err)
		return fmt.Errorf("failed to advance item sequence: %w", err)
	}

	member := s.itemKey(table, key)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, member, raw, 0)
	// NX keeps the original insertion score for overwrites.
	pipe.ZAddNX(ctx, s.tableIndex(table), redis.Z{Score: float64(seq), Member: member})
	if hash, ok := s.hashValue(table, key); ok {
		pipe.ZAddNX(ctx, s.partIndex(table, hash), redis.Z{Score: float64(seq), Member: member})
	}
	_, err = pipe.Exec(ctx)
	monitoring.RecordItemStoreOp(op, table, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to write item: %w", err)
	}
	return nil
}

// Delete removes a single item. Deleting a missing item is not an error.
func (s *RedisItemStore) Delete(ctx context.Context, table string, key store.Key) error {
	start := time.Now()
	member := s.itemKey(table, key)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, member)
	pipe.ZRem(ctx, s.tableIndex(table), member)
	if hash, ok := s.hashValue(table, key); ok {
		pipe.ZRem(ctx, s.partIndex(table, hash), member)
	}
	_, err := pipe.Exec(ctx)
	monitoring.RecordItemStoreOp("delete", table, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// Query returns items whose attribute equals the value, in storage order.
// Hash-attribute queries read the partition index; anything else scans.
func (s *RedisItemStore) Query(ctx context.Context, table string, attr string, value store.AttributeValue) ([]store.Item, error) {
	keys, ok := s.schema[table]
	if ok && attr == keys.HashAttr {
		start := time.Now()
		members, err := s.client.ZRange(ctx, s.partIndex(table, value.Render()), 0, -1).Result()
		monitoring.RecordItemStoreOp("query", table, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("failed to query partition index: %w", err)
		}
		return s.fetchMembers(ctx, members)
	}

	all, err := s.Scan(ctx, table)
	if err != nil {
		return nil, err
	}
	var out []store.Item
	for _, item := range all {
		if v, present := item[attr]; present && v.Equal(value) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Scan returns every item in the table, in storage order.
func (s *RedisItemStore) Scan(ctx context.Context, table string) ([]store.Item, error) {
	start := time.Now()
	members, err := s.client.ZRange(ctx, s.tableIndex(table), 0, -1).Result()
	monitoring.RecordItemStoreOp("scan", table, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to read table index: %w", err)
	}
	return s.fetchMembers(ctx, members)
}

// BatchDelete removes the listed items in one pipeline.
func (s *RedisItemStore) BatchDelete(ctx context.Context, table string, keys []store.Key) error {
	if len(keys) == 0 {
		return nil
	}
	start := time.Now()

	pipe := s.client.TxPipeline()
	for _, key := range keys {
		member := s.itemKey(table, key)
		pipe.Del(ctx, member)
		pipe.ZRem(ctx, s.tableIndex(table), member)
		if hash, ok := s.hashValue(table, key); ok {
			pipe.ZRem(ctx, s.partIndex(table, hash), member)
		}
	}
	_, err := pipe.Exec(ctx)
	monitoring.RecordItemStoreOp("batch_delete", table, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to batch delete items: %w", err)
	}
	return nil
}

func (s *RedisItemStore) fetchMembers(ctx context.Context, members []string) ([]store.Item, error) {
	if len(members) == 0 {
		return nil, nil
	}
	raws, err := s.client.MGet(ctx, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	var out []store.Item
	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// Index member without a value: racing delete, skip it.
			continue
		}
		item, err := decodeItem([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func decodeItem(raw []byte) (store.Item, error) {
	var item store.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}
	return item, nil
}

func ignoreNil(err error) error {
	if err == redis.Nil {
		return nil
	}
	return err
}
