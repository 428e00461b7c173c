package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/adcrafted/adspace-service/internal/domain/store"
	"github.com/adcrafted/adspace-service/pkg/monitoring"
)

// PostgresItemStore implements the store.ItemStore contract on a single
// items relation. Attributes are kept as JSONB so the schema-less attribute
// maps round-trip without per-table DDL.
type PostgresItemStore struct {
	db     *sql.DB
	schema store.KeySchema
}

// NewPostgresItemStore creates a PostgresItemStore. The schema names the key
// attributes of each logical table.
func NewPostgresItemStore(db *sql.DB, schema store.KeySchema) *PostgresItemStore {
	return &PostgresItemStore{db: db, schema: schema}
}

func (s *PostgresItemStore) keyColumns(table string, key store.Key) (hash, rng string, err error) {
	keys, ok := s.schema[table]
	if !ok {
		return "", "", fmt.Errorf("no key schema registered for table %q", table)
	}
	hv, ok := key[keys.HashAttr]
	if !ok {
		return "", "", fmt.Errorf("key for table %q is missing %q", table, keys.HashAttr)
	}
	hash = hv.Render()
	if keys.RangeAttr != "" {
		rv, ok := key[keys.RangeAttr]
		if !ok {
			return "", "", fmt.Errorf("key for table %q is missing %q", table, keys.RangeAttr)
		}
		rng = rv.Render()
	}
	return hash, rng, nil
}

// Get retrieves a single item by its full key.
func (s *PostgresItemStore) Get(ctx context.Context, table string, key store.Key) (store.Item, error) {
	start := time.Now()
	hash, rng, err := s.keyColumns(table, key)
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = s.db.QueryRowContext(ctx,
		`SELECT attributes FROM items WHERE table_name = $1 AND hash_key = $2 AND range_key = $3`,
		table, hash, rng,
	).Scan(&raw)
	monitoring.RecordItemStoreOp("get", table, time.Since(start), err)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return decodeItem(raw)
}

// Put writes an item, replacing any existing item with the same key.
func (s *PostgresItemStore) Put(ctx context.Context, table string, item store.Item) error {
	start := time.Now()
	keys, ok := s.schema[table]
	if !ok {
		return fmt.Errorf("no key schema registered for table %q", table)
	}
	hash, rng, err := s.keyColumns(table, store.KeyOf(item, keys))
	if err != nil {
		return err
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode item: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (table_name, hash_key, range_key, attributes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (table_name, hash_key, range_key)
		DO UPDATE SET attributes = EXCLUDED.attributes
	`, table, hash, rng, raw)
	monitoring.RecordItemStoreOp("put", table, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// Update merges per-attribute edits into an item, creating it when absent.
// The JSONB concatenation mirrors the attribute-level PUT action.
func (s *PostgresItemStore) Update(ctx context.Context, table string, key store.Key, edits map[string]store.AttributeValue) error {
	start := time.Now()
	hash, rng, err := s.keyColumns(table, key)
	if err != nil {
		return err
	}
	base := store.Item{}
	for name, v := range key {
		base[name] = v
	}
	for name, v := range edits {
		base[name] = v
	}
	raw, err := json.Marshal(base)
	if err != nil {
		return fmt.Errorf("failed to encode edits: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (table_name, hash_key, range_key, attributes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (table_name, hash_key, range_key)
		DO UPDATE SET attributes = items.attributes || EXCLUDED.attributes
	`, table, hash, rng, raw)
	monitoring.RecordItemStoreOp("update", table, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

// Delete removes a single item. Deleting a missing item is not an error.
func (s *PostgresItemStore) Delete(ctx context.Context, table string, key store.Key) error {
	start := time.Now()
	hash, rng, err := s.keyColumns(table, key)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM items WHERE table_name = $1 AND hash_key = $2 AND range_key = $3`,
		table, hash, rng,
	)
	monitoring.RecordItemStoreOp("delete", table, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// Query returns every item whose attribute equals the value, in storage
// order. Hash-attribute queries use the key columns; anything else filters
// on the JSONB document.
func (s *PostgresItemStore) Query(ctx context.Context, table string, attr string, value store.AttributeValue) ([]store.Item, error) {
	start := time.Now()
	keys, hasSchema := s.schema[table]

	var (
		rows *sql.Rows
		err  error
	)
	if hasSchema && attr == keys.HashAttr {
		rows, err = s.db.QueryContext(ctx, `
			SELECT attributes FROM items
			WHERE table_name = $1 AND hash_key = $2
			ORDER BY seq ASC
		`, table, value.Render())
	} else {
		encoded, merr := json.Marshal(value)
		if merr != nil {
			return nil, fmt.Errorf("failed to encode query value: %w", merr)
		}
		rows, err = s.db.QueryContext(ctx, `
			SELECT attributes FROM items
			WHERE table_name = $1 AND attributes -> $2 = $3::jsonb
			ORDER BY seq ASC
		`, table, attr, string(encoded))
	}
	monitoring.RecordItemStoreOp("query", table, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// Scan returns every item in the table, in storage order.
func (s *PostgresItemStore) Scan(ctx context.Context, table string) ([]store.Item, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT attributes FROM items WHERE table_name = $1 ORDER BY seq ASC`, table)
	monitoring.RecordItemStoreOp("scan", table, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// BatchDelete removes the listed items in one transaction.
func (s *PostgresItemStore) BatchDelete(ctx context.Context, table string, keys []store.Key) error {
	if len(keys) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		hash, rng, kerr := s.keyColumns(table, key)
		if kerr != nil {
			return kerr
		}
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM items WHERE table_name = $1 AND hash_key = $2 AND range_key = $3`,
			table, hash, rng,
		); err != nil {
			monitoring.RecordItemStoreOp("batch_delete", table, time.Since(start), err)
			return fmt.Errorf("failed to batch delete item: %w", err)
		}
	}

	err = tx.Commit()
	monitoring.RecordItemStoreOp("batch_delete", table, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to commit batch delete: %w", err)
	}
	return nil
}

func decodeItem(raw []byte) (store.Item, error) {
	var item store.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}
	return item, nil
}

func collectItems(rows *sql.Rows) ([]store.Item, error) {
	var out []store.Item
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		item, err := decodeItem(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item rows: %w", err)
	}
	return out, nil
}
