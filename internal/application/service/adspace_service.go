package service

import (
	"context"
	"errors"
	"time"

	"github.com/adcrafted/adspace-service/internal/domain/inventory"
	"github.com/adcrafted/adspace-service/internal/domain/store"
	"github.com/adcrafted/adspace-service/pkg/logger"
	"github.com/adcrafted/adspace-service/pkg/monitoring"
)

// Tables names the item store tables the services operate on.
type Tables struct {
	AdSpace string
	Ad      string
}

// Config carries the shared service configuration.
type Config struct {
	Tables        Tables
	StrictUploads bool
}

// AdSpaceService owns AdSpace records: create, fetch, partial-merge update,
// and delete with a cascade over the owned Ads.
type AdSpaceService struct {
	items  store.ItemStore
	images imageResolver
	tables Tables
	log    *logger.Logger
}

// NewAdSpaceService creates a new AdSpaceService.
func NewAdSpaceService(items store.ItemStore, blobs store.BlobStore, log *logger.Logger, cfg Config) *AdSpaceService {
	return &AdSpaceService{
		items:  items,
		images: imageResolver{blobs: blobs, log: log, strict: cfg.StrictUploads},
		tables: cfg.Tables,
		log:    log,
	}
}

// AdSpaceList is the collection envelope for GetAll.
type AdSpaceList struct {
	Count    int                      `json:"Count"`
	AdSpaces []map[string]interface{} `json:"AdSpaces"`
}

// Create persists a new AdSpace built from the supplied attributes and
// returns its generated identifier. A data-URL image attribute is uploaded
// to the blob store under "{id}.{ext}" and stored as the resulting URL.
func (s *AdSpaceService) Create(ctx context.Context, attrs map[string]interface{}) (string, error) {
	id := inventory.NewAdSpaceID()

	item := store.Item{
		inventory.AttrAdSpaceID: store.String(id),
		inventory.AttrDate:      store.String(time.Now().UTC().Format(time.RFC3339)),
		inventory.AttrImage:     store.String(inventory.NullSentinel),
	}
	for name, raw := range attrs {
		if name == inventory.AttrAdSpaceID {
			continue
		}
		var (
			value store.AttributeValue
			err   error
		)
		if name == inventory.AttrImage {
			value, err = s.images.resolve(ctx, id, raw)
		} else {
			value, err = inventory.NormalizeValue(name, raw)
		}
		if err != nil {
			return "", err
		}
		item[name] = value
	}

	if err := s.items.Put(ctx, s.tables.AdSpace, item); err != nil {
		return "", inventory.NewStoreError("put", s.tables.AdSpace, err)
	}
	monitoring.RecordAdSpaceCreated()
	return id, nil
}

// Get fetches a single AdSpace as a plain attribute map.
func (s *AdSpaceService) Get(ctx context.Context, id string) (map[string]interface{}, error) {
	item, err := s.items.Get(ctx, s.tables.AdSpace, s.key(id))
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, inventory.ErrAdSpaceNotFound
		}
		return nil, inventory.NewStoreError("get", s.tables.AdSpace, err)
	}
	return inventory.ParseItem(item), nil
}

// GetAll returns every AdSpace in storage order.
func (s *AdSpaceService) GetAll(ctx context.Context) (*AdSpaceList, error) {
	items, err := s.items.Scan(ctx, s.tables.AdSpace)
	if err != nil {
		return nil, inventory.NewStoreError("scan", s.tables.AdSpace, err)
	}
	list := &AdSpaceList{
		Count:    len(items),
		AdSpaces: make([]map[string]interface{}, 0, len(items)),
	}
	for _, item := range items {
		list.AdSpaces = append(list.AdSpaces, inventory.ParseItem(item))
	}
	return list, nil
}

// Update applies a partial per-attribute merge. Attributes not supplied are
// left untouched; a missing AdSpace falls through to the item store's
// merge-or-create semantics. The identifier itself is never editable.
func (s *AdSpaceService) Update(ctx context.Context, id string, attrs map[string]interface{}) error {
	edits := make(map[string]store.AttributeValue, len(attrs))
	for name, raw := range attrs {
		if name == inventory.AttrAdSpaceID {
			continue
		}
		var (
			value store.AttributeValue
			err   error
		)
		if name == inventory.AttrImage {
			value, err = s.images.resolve(ctx, id, raw)
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

	if err := s.items.Update(ctx, s.tables.AdSpace, s.key(id), edits); err != nil {
		return inventory.NewStoreError("update", s.tables.AdSpace, err)
	}
	return nil
}

// Delete removes the AdSpace and every Ad it owns. The two steps are not
// transactional: when the parent delete succeeded but the cascade failed,
// the result is a PartialDeleteError so callers can retry the cleanup.
func (s *AdSpaceService) Delete(ctx context.Context, id string) error {
	if err := s.items.Delete(ctx, s.tables.AdSpace, s.key(id)); err != nil {
		return inventory.NewStoreError("delete", s.tables.AdSpace, err)
	}

	ads, err := s.items.Query(ctx, s.tables.Ad, inventory.AttrAdSpaceID, store.String(id))
	if err != nil {
		monitoring.RecordCascadeDelete("partial")
		s.log.WithError(err).WithField("adSpaceID", id).Error("cascade query failed, ads orphaned")
		return &inventory.PartialDeleteError{AdSpaceID: id, Err: err}
	}
	if len(ads) == 0 {
		monitoring.RecordCascadeDelete("complete")
		return nil
	}

	keys := make([]store.Key, 0, len(ads))
	for _, ad := range ads {
		keys = append(keys, store.Key{
			inventory.AttrAdSpaceID: store.String(id),
			inventory.AttrAdID:      ad[inventory.AttrAdID],
		})
	}
	if err := s.items.BatchDelete(ctx, s.tables.Ad, keys); err != nil {
		monitoring.RecordCascadeDelete("partial")
		s.log.WithError(err).WithField("adSpaceID", id).Error("cascade batch delete failed, ads orphaned")
		return &inventory.PartialDeleteError{AdSpaceID: id, Err: err}
	}
	monitoring.RecordCascadeDelete("complete")
	return nil
}

func (s *AdSpaceService) key(id string) store.Key {
	return store.Key{inventory.AttrAdSpaceID: store.String(id)}
}
