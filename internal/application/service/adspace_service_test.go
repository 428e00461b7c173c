package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adcrafted/adspace-service/internal/domain/inventory"
	"github.com/adcrafted/adspace-service/internal/domain/store"
	"github.com/adcrafted/adspace-service/internal/infrastructure/blob"
	"github.com/adcrafted/adspace-service/internal/infrastructure/persistence"
	"github.com/adcrafted/adspace-service/pkg/logger"
)

func testTables() Tables {
	return Tables{AdSpace: "AdSpace", Ad: "Ads"}
}

func testFixture() (*AdSpaceService, *AdService, *persistence.MemoryItemStore, *blob.MemoryBlobStore) {
	items := persistence.NewMemoryItemStore(store.KeySchema{
		"AdSpace": {HashAttr: inventory.AttrAdSpaceID},
		"Ads":     {HashAttr: inventory.AttrAdSpaceID, RangeAttr: inventory.AttrAdID},
	})
	blobs := blob.NewMemoryBlobStore("http://localhost:8888/blobs")
	log := logger.New("error", "test")
	cfg := Config{Tables: testTables()}
	return NewAdSpaceService(items, blobs, log, cfg), NewAdService(items, blobs, log, cfg), items, blobs
}

func TestAdSpaceService_CreateAndGet(t *testing.T) {
	adSpaces, _, _, _ := testFixture()
	ctx := context.Background()

	id, err := adSpaces.Create(ctx, map[string]interface{}{
		"name": "front page banner",
	})
	require.NoError(t, err)
	require.NoError(t, uuid.Validate(id))

	got, err := adSpaces.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got[inventory.AttrAdSpaceID])
	assert.Equal(t, "front page banner", got["name"])
	assert.Equal(t, inventory.NullSentinel, got[inventory.AttrImage])
	assert.NotEmpty(t, got[inventory.AttrDate])
}

func TestAdSpaceService_CreateIgnoresClientSuppliedID(t *testing.T) {
	adSpaces, _, _, _ := testFixture()

	id, err := adSpaces.Create(context.Background(), map[string]interface{}{
		inventory.AttrAdSpaceID: "attacker-chosen",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "attacker-chosen", id)
}

func TestAdSpaceService_CreateUploadsDataURLImage(t *testing.T) {
	adSpaces, _, _, blobs := testFixture()
	ctx := context.Background()

	body := []byte{0xff, 0xd8, 0xff}
	id, err := adSpaces.Create(ctx, map[string]interface{}{
		"image": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(body),
	})
	require.NoError(t, err)

	obj, ok := blobs.Object(id + ".jpeg")
	require.True(t, ok, "blob stored under {id}.{ext}")
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, body, obj.Body)

	got, err := adSpaces.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, blobs.URL(id+".jpeg"), got[inventory.AttrImage])
}

func TestAdSpaceService_CreateStoresPlainImageURLVerbatim(t *testing.T) {
	adSpaces, _, _, blobs := testFixture()
	ctx := context.Background()

	id, err := adSpaces.Create(ctx, map[string]interface{}{
		"image": "https://cdn.example.com/banner.png",
	})
	require.NoError(t, err)
	assert.Zero(t, blobs.UploadCount())

	got, err := adSpaces.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/banner.png", got[inventory.AttrImage])
}

func TestAdSpaceService_CreateRejectsInvalidImagePayload(t *testing.T) {
	adSpaces, _, _, blobs := testFixture()

	_, err := adSpaces.Create(context.Background(), map[string]interface{}{
		"image": "data:image/png;base64,%%%%",
	})

	assert.ErrorIs(t, err, inventory.ErrInvalidImagePayload)
	assert.Zero(t, blobs.UploadCount())
}

func TestAdSpaceService_GetMissing(t *testing.T) {
	adSpaces, _, _, _ := testFixture()

	_, err := adSpaces.Get(context.Background(), uuid.New().String())

	assert.ErrorIs(t, err, inventory.ErrAdSpaceNotFound)
}

func TestAdSpaceService_GetAll(t *testing.T) {
	adSpaces, _, _, _ := testFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := adSpaces.Create(ctx, map[string]interface{}{})
		require.NoError(t, err)
	}

	list, err := adSpaces.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, list.Count)
	assert.Len(t, list.AdSpaces, 3)
}

func TestAdSpaceService_UpdateMergesAttributes(t *testing.T) {
	adSpaces, _, _, _ := testFixture()
	ctx := context.Background()

	id, err := adSpaces.Create(ctx, map[string]interface{}{
		"name":  "old name",
		"owner": "alice",
	})
	require.NoError(t, err)

	require.NoError(t, adSpaces.Update(ctx, id, map[string]interface{}{
		"name": "new name",
	}))

	got, err := adSpaces.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new name", got["name"])
	assert.Equal(t, "alice", got["owner"], "unmentioned attributes survive")
}

func TestAdSpaceService_UpdateNeverEditsID(t *testing.T) {
	adSpaces, _, _, _ := testFixture()
	ctx := context.Background()

	id, err := adSpaces.Create(ctx, map[string]interface{}{})
	require.NoError(t, err)

	require.NoError(t, adSpaces.Update(ctx, id, map[string]interface{}{
		inventory.AttrAdSpaceID: "other",
		"name":                  "renamed",
	}))

	got, err := adSpaces.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got[inventory.AttrAdSpaceID])
}

func TestAdSpaceService_DeleteCascadesToAds(t *testing.T) {
	adSpaces, ads, items, _ := testFixture()
	ctx := context.Background()

	id, err := adSpaces.Create(ctx, map[string]interface{}{})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := ads.Create(ctx, id, map[string]interface{}{})
		require.NoError(t, err)
	}

	require.NoError(t, adSpaces.Delete(ctx, id))

	_, err = adSpaces.Get(ctx, id)
	assert.ErrorIs(t, err, inventory.ErrAdSpaceNotFound)

	remaining, err := items.Query(ctx, "Ads", inventory.AttrAdSpaceID, store.String(id))
	require.NoError(t, err)
	assert.Empty(t, remaining, "every owned ad removed")
}

func TestAdSpaceService_DeleteMissingIsNotAnError(t *testing.T) {
	adSpaces, _, _, _ := testFixture()

	assert.NoError(t, adSpaces.Delete(context.Background(), uuid.New().String()))
}

// brokenCascadeStore lets the parent delete through, then fails the cascade.
type brokenCascadeStore struct {
	store.ItemStore
	failQuery bool
	failBatch bool
}

func (s *brokenCascadeStore) Query(ctx context.Context, table string, attr string, value store.AttributeValue) ([]store.Item, error) {
	if s.failQuery && table == "Ads" {
		return nil, errors.New("backend unavailable")
	}
	return s.ItemStore.Query(ctx, table, attr, value)
}

func (s *brokenCascadeStore) BatchDelete(ctx context.Context, table string, keys []store.Key) error {
	if s.failBatch {
		return errors.New("backend unavailable")
	}
	return s.ItemStore.BatchDelete(ctx, table, keys)
}

func TestAdSpaceService_DeleteReportsPartialFailure(t *testing.T) {
	_, ads, items, blobs := testFixture()
	log := logger.New("error", "test")
	broken := &brokenCascadeStore{ItemStore: items, failBatch: true}
	adSpaces := NewAdSpaceService(broken, blobs, log, Config{Tables: testTables()})
	ctx := context.Background()

	id, err := adSpaces.Create(ctx, map[string]interface{}{})
	require.NoError(t, err)
	_, err = ads.Create(ctx, id, map[string]interface{}{})
	require.NoError(t, err)

	err = adSpaces.Delete(ctx, id)

	var partial *inventory.PartialDeleteError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, id, partial.AdSpaceID)

	// Parent is gone, the ad is orphaned until the cleanup is retried.
	_, err = adSpaces.Get(ctx, id)
	assert.ErrorIs(t, err, inventory.ErrAdSpaceNotFound)
	orphans, err := items.Query(ctx, "Ads", inventory.AttrAdSpaceID, store.String(id))
	require.NoError(t, err)
	assert.Len(t, orphans, 1)
}

func TestAdSpaceService_DeleteReportsPartialFailureOnQuery(t *testing.T) {
	_, _, items, blobs := testFixture()
	log := logger.New("error", "test")
	broken := &brokenCascadeStore{ItemStore: items, failQuery: true}
	adSpaces := NewAdSpaceService(broken, blobs, log, Config{Tables: testTables()})
	ctx := context.Background()

	id, err := adSpaces.Create(ctx, map[string]interface{}{})
	require.NoError(t, err)

	err = adSpaces.Delete(ctx, id)

	var partial *inventory.PartialDeleteError
	assert.ErrorAs(t, err, &partial)
}
