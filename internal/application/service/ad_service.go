package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/adcrafted/adspace-service/internal/domain/inventory"
	"github.com/adcrafted/adspace-service/internal/domain/store"
	"github.com/adcrafted/adspace-service/pkg/logger"
	"github.com/adcrafted/adspace-service/pkg/monitoring"
)

// AdService owns Ad records scoped to a parent AdSpace: create with
// identifier assignment, fetch one/random/all, partial-merge update, and
// single delete.
type AdService struct {
	items  store.ItemStore
	images imageResolver
	tables Tables
	log    *logger.Logger
}

// NewAdService creates a new AdService.
func NewAdService(items store.ItemStore, blobs store.BlobStore, log *logger.Logger, cfg Config) *AdService {
	return &AdService{
		items:  items,
		images: imageResolver{blobs: blobs, log: log, strict: cfg.StrictUploads},
		tables: cfg.Tables,
		log:    log,
	}
}

// CreateAdResult carries both identifiers of a newly created Ad.
type CreateAdResult struct {
	AdSpaceID string `json:"AdSpaceID"`
	AdID      int64  `json:"AdID"`
}

// AdList is the collection envelope for GetAll.
type AdList struct {
	Count int                      `json:"Count"`
	Ads   []map[string]interface{} `json:"Ads"`
}

// Create persists a new Ad under the given AdSpace. The AdSpace must exist;
// otherwise ErrInvalidParent is returned before any write or upload happens.
// The new AdID is one past the highest existing AdID (0 when the AdSpace is
// empty). The scan-then-increment is not atomic with the final put, so
// concurrent creates against one AdSpace can collide; sequential creates
// yield a dense 0..N-1 sequence.
func (s *AdService) Create(ctx context.Context, adSpaceID string, attrs map[string]interface{}) (*CreateAdResult, error) {
	if _, err := s.items.Get(ctx, s.tables.AdSpace, s.adSpaceKey(adSpaceID)); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, inventory.ErrInvalidParent
		}
		return nil, inventory.NewStoreError("get", s.tables.AdSpace, err)
	}

	existing, err := s.items.Query(ctx, s.tables.Ad, inventory.AttrAdSpaceID, store.String(adSpaceID))
	if err != nil {
		return nil, inventory.NewStoreError("query", s.tables.Ad, err)
	}
	var nextAdID int64
	if len(existing) > 0 {
		for _, ad := range existing {
			if n := ad[inventory.AttrAdID].NumberVal(); n > nextAdID {
				nextAdID = n
			}
		}
		nextAdID++
	}

	item := store.Item{
		inventory.AttrAdSpaceID: store.String(adSpaceID),
		inventory.AttrAdID:      store.Number(nextAdID),
		inventory.AttrTitle:     store.String(inventory.NullSentinel),
		inventory.AttrText:      store.String(inventory.NullSentinel),
		inventory.AttrImage:     store.String(inventory.NullSentinel),
		inventory.AttrLink:      store.String(inventory.NullSentinel),
		inventory.AttrDate:      store.String(time.Now().UTC().Format(time.RFC3339)),
	}
	for name, raw := range attrs {
		if name == inventory.AttrAdSpaceID || name == inventory.AttrAdID {
			continue
		}
		var value store.AttributeValue
		if name == inventory.AttrImage {
			value, err = s.images.resolve(ctx, s.imageKeyBase(adSpaceID, nextAdID), raw)
		} else {
			value, err = inventory.NormalizeValue(name, raw)
		}
		if err != nil {
			return nil, err
		}
		item[name] = value
	}

	if err := s.items.Put(ctx, s.tables.Ad, item); err != nil {
		return nil, inventory.NewStoreError("put", s.tables.Ad, err)
	}
	monitoring.RecordAdCreated()
	return &CreateAdResult{AdSpaceID: adSpaceID, AdID: nextAdID}, nil
}

// Get fetches the Ad whose AdID attribute equals adID. The lookup is by
// field, not by position in the query result.
func (s *AdService) Get(ctx context.Context, adSpaceID string, adID int64) (map[string]interface{}, error) {
	ads, err := s.queryAds(ctx, adSpaceID)
	if err != nil {
		return nil, err
	}
	for _, ad := range ads {
		if v, ok := ad[inventory.AttrAdID]; ok && v.Kind() == store.KindNumber && v.NumberVal() == adID {
			return inventory.ParseItem(ad), nil
		}
	}
	return nil, inventory.ErrAdNotFound
}

// GetRandom returns one Ad chosen uniformly at random from the AdSpace.
func (s *AdService) GetRandom(ctx context.Context, adSpaceID string) (map[string]interface{}, error) {
	ads, err := s.queryAds(ctx, adSpaceID)
	if err != nil {
		return nil, err
	}
	if len(ads) == 0 {
		return nil, inventory.ErrAdNotFound
	}
	return inventory.ParseItem(ads[rand.Intn(len(ads))]), nil
}

// GetAll returns every Ad of the AdSpace in storage order.
func (s *AdService) GetAll(ctx context.Context, adSpaceID string) (*AdList, error) {
	ads, err := s.queryAds(ctx, adSpaceID)
	if err != nil {
		return nil, err
	}
	list := &AdList{
		Count: len(ads),
		Ads:   make([]map[string]interface{}, 0, len(ads)),
	}
	for _, ad := range ads {
		list.Ads = append(list.Ads, inventory.ParseItem(ad))
	}
	return list, nil
}

// Update applies a partial per-attribute merge to the Ad. Key attributes are
// never editable; a data-URL image uploads under "{adSpaceID}_{adID}.{ext}".
func (s *AdService) Update(ctx context.Context, adSpaceID string, adID int64, attrs map[string]interface{}) error {
	edits := make(map[string]store.AttributeValue, len(attrs))
	for name, raw := range attrs {
		if name == inventory.AttrAdSpaceID || name == inventory.AttrAdID {
			continue
		}
		var (
			value store.AttributeValue
			err   error
		)
		if name == inventory.AttrImage {
			value, err = s.images.resolve(ctx, s.imageKeyBase(adSpaceID, adID), raw)
		} else {
			value, err = inventory.NormalizeValue(name, raw)
		}
		if err != nil {
			return err
		}
		edits[name] = value
	}
	if len(edits) == 0 {
		return nil
	}

	if err := s.items.Update(ctx, s.tables.Ad, s.adKey(adSpaceID, adID), edits); err != nil {
		return inventory.NewStoreError("update", s.tables.Ad, err)
	}
	return nil
}

// Delete removes the single Ad. The parent AdSpace and any uploaded blob
// objects are left alone.
func (s *AdService) Delete(ctx context.Context, adSpaceID string, adID int64) error {
	if err := s.items.Delete(ctx, s.tables.Ad, s.adKey(adSpaceID, adID)); err != nil {
		return inventory.NewStoreError("delete", s.tables.Ad, err)
	}
	return nil
}

func (s *AdService) queryAds(ctx context.Context, adSpaceID string) ([]store.Item, error) {
	ads, err := s.items.Query(ctx, s.tables.Ad, inventory.AttrAdSpaceID, store.String(adSpaceID))
	if err != nil {
		return nil, inventory.NewStoreError("query", s.tables.Ad, err)
	}
	return ads, nil
}

func (s *AdService) adSpaceKey(id string) store.Key {
	return store.Key{inventory.AttrAdSpaceID: store.String(id)}
}

func (s *AdService) adKey(adSpaceID string, adID int64) store.Key {
	return store.Key{
		inventory.AttrAdSpaceID: store.String(adSpaceID),
		inventory.AttrAdID:      store.Number(adID),
	}
}

func (s *AdService) imageKeyBase(adSpaceID string, adID int64) string {
	return fmt.Sprintf("%s_%d", adSpaceID, adID)
}
