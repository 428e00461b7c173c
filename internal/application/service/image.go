package service

import (
	"context"
	"fmt"

	"github.com/adcrafted/adspace-service/internal/domain/inventory"
	"github.com/adcrafted/adspace-service/internal/domain/store"
	"github.com/adcrafted/adspace-service/pkg/logger"
)

// imageResolver converts an inbound image attribute into its stored form.
// Inline data-URL payloads are decoded and uploaded to the blob store and
// the stored value becomes the public URL; anything else passes through
// verbatim.
type imageResolver struct {
	blobs  store.BlobStore
	log    *logger.Logger
	strict bool
}

// resolve handles the image attribute for a create or update. keyBase is the
// blob key without extension ("{adSpaceID}" or "{adSpaceID}_{adID}").
func (r *imageResolver) resolve(ctx context.Context, keyBase string, raw interface{}) (store.AttributeValue, error) {
	s, ok := raw.(string)
	if !ok {
		return store.AttributeValue{}, fmt.Errorf("%w: image attribute must be a string", inventory.ErrInvalidAttributeValue)
	}

	file, isDataURL, err := inventory.ParseDataURL(s)
	if err != nil {
		return store.AttributeValue{}, err
	}
	if !isDataURL {
		return store.String(s), nil
	}

	key := keyBase + "." + file.Ext
	url, err := r.blobs.Upload(ctx, key, file.MIME, file.Body)
	if err != nil {
		if r.strict {
			return store.AttributeValue{}, inventory.NewStoreError("upload", "", err)
		}
		// Lenient mode matches the historical behavior: record the URL the
		// object would have had and keep going.
		r.log.WithError(err).WithField("key", key).Warn("blob upload failed, storing URL anyway")
		url = r.blobs.URL(key)
	}
	return store.String(url), nil
}
