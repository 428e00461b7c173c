package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adcrafted/adspace-service/internal/domain/store"
)

func testSchema() store.KeySchema {
	return store.KeySchema{
		"AdSpace": {HashAttr: "AdSpaceID"},
		"Ads":     {HashAttr: "AdSpaceID", RangeAttr: "AdID"},
	}
}

func TestMemoryItemStore_PutAndGet(t *testing.T) {
	s := NewMemoryItemStore(testSchema())
	ctx := context.Background()

	item := store.Item{
		"AdSpaceID": store.String("s1"),
		"name":      store.String("front page"),
	}
	require.NoError(t, s.Put(ctx, "AdSpace", item))

	got, err := s.Get(ctx, "AdSpace", store.Key{"AdSpaceID": store.String("s1")})
	require.NoError(t, err)
	assert.True(t, got["name"].Equal(store.String("front page")))
}

func TestMemoryItemStore_GetMissingReturnsNotFound(t *testing.T) {
	s := NewMemoryItemStore(testSchema())

	_, err := s.Get(context.Background(), "AdSpace", store.Key{"AdSpaceID": store.String("nope")})

	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestMemoryItemStore_PutReplacesExistingItem(t *testing.T) {
	s := NewMemoryItemStore(testSchema())
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "AdSpace", store.Item{
		"AdSpaceID": store.String("s1"),
		"name":      store.String("old"),
		"extra":     store.String("gone after replace"),
	}))
	require.NoError(t, s.Put(ctx, "AdSpace", store.Item{
		"AdSpaceID": store.String("s1"),
		"name":      store.String("new"),
	}))

	got, err := s.Get(ctx, "AdSpace", store.Key{"AdSpaceID": store.String("s1")})
	require.NoError(t, err)
	assert.True(t, got["name"].Equal(store.String("new")))
	_, hasExtra := got["extra"]
	assert.False(t, hasExtra, "Put must replace the whole item, not merge")
}

func TestMemoryItemStore_UpdateMergesAttributes(t *testing.T) {
	s := NewMemoryItemStore(testSchema())
	ctx := context.Background()
	key := store.Key{"AdSpaceID": store.String("s1")}

	require.NoError(t, s.Put(ctx, "AdSpace", store.Item{
		"AdSpaceID": store.String("s1"),
		"name":      store.String("old"),
		"image":     store.String("null"),
	}))
	require.NoError(t, s.Update(ctx, "AdSpace", key, map[string]store.AttributeValue{
		"name": store.String("new"),
	}))

	got, err := s.Get(ctx, "AdSpace", key)
	require.NoError(t, err)
	assert.True(t, got["name"].Equal(store.String("new")))
	assert.True(t, got["image"].Equal(store.String("null")), "untouched attributes survive the merge")
}

func TestMemoryItemStore_UpdateCreatesMissingItem(t *testing.T) {
	s := NewMemoryItemStore(testSchema())
	ctx := context.Background()
	key := store.Key{"AdSpaceID": store.String("fresh")}

	require.NoError(t, s.Update(ctx, "AdSpace", key, map[string]store.AttributeValue{
		"name": store.String("made by update"),
	}))

	got, err := s.Get(ctx, "AdSpace", key)
	require.NoError(t, err)
	assert.True(t, got["AdSpaceID"].Equal(store.String("fresh")))
	assert.True(t, got["name"].Equal(store.String("made by update")))
}

func TestMemoryItemStore_QueryPreservesInsertionOrder(t *testing.T) {
	s := NewMemoryItemStore(testSchema())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Put(ctx, "Ads", store.Item{
			"AdSpaceID": store.String("s1"),
			"AdID":      store.Number(int64(i)),
		}))
	}
	require.NoError(t, s.Put(ctx, "Ads", store.Item{
		"AdSpaceID": store.String("other"),
		"AdID":      store.Number(0),
	}))

	ads, err := s.Query(ctx, "Ads", "AdSpaceID", store.String("s1"))
	require.NoError(t, err)
	require.Len(t, ads, 5)
	for i, ad := range ads {
		assert.Equal(t, int64(i), ad["AdID"].NumberVal())
	}
}

func TestMemoryItemStore_ScanReturnsAllItems(t *testing.T) {
	s := NewMemoryItemStore(testSchema())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Put(ctx, "AdSpace", store.Item{
			"AdSpaceID": store.String(fmt.Sprintf("s%d", i)),
		}))
	}

	items, err := s.Scan(ctx, "AdSpace")
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestMemoryItemStore_DeleteIsIdempotent(t *testing.T) {
	s := NewMemoryItemStore(testSchema())
	ctx := context.Background()
	key := store.Key{"AdSpaceID": store.String("s1")}

	require.NoError(t, s.Put(ctx, "AdSpace", store.Item{"AdSpaceID": store.String("s1")}))
	require.NoError(t, s.Delete(ctx, "AdSpace", key))
	require.NoError(t, s.Delete(ctx, "AdSpace", key))

	_, err := s.Get(ctx, "AdSpace", key)
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestMemoryItemStore_BatchDelete(t *testing.T) {
	s := NewMemoryItemStore(testSchema())
	ctx := context.Background()

	var keys []store.Key
	for i := 0; i < 4; i++ {
		item := store.Item{
			"AdSpaceID": store.String("s1"),
			"AdID":      store.Number(int64(i)),
		}
		require.NoError(t, s.Put(ctx, "Ads", item))
		keys = append(keys, store.Key{
			"AdSpaceID": store.String("s1"),
			"AdID":      store.Number(int64(i)),
		})
	}

	require.NoError(t, s.BatchDelete(ctx, "Ads", keys))

	ads, err := s.Query(ctx, "Ads", "AdSpaceID", store.String("s1"))
	require.NoError(t, err)
	assert.Empty(t, ads)
}

func TestMemoryItemStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryItemStore(testSchema())
	ctx := context.Background()
	key := store.Key{"AdSpaceID": store.String("s1")}

	require.NoError(t, s.Put(ctx, "AdSpace", store.Item{
		"AdSpaceID": store.String("s1"),
		"name":      store.String("original"),
	}))

	got, err := s.Get(ctx, "AdSpace", key)
	require.NoError(t, err)
	got["name"] = store.String("mutated")

	again, err := s.Get(ctx, "AdSpace", key)
	require.NoError(t, err)
	assert.True(t, again["name"].Equal(store.String("original")))
}
