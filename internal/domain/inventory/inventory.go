package inventory

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/adcrafted/adspace-service/internal/domain/store"
)

// Reserved attribute names shared by AdSpace and Ad items.
const (
	AttrAdSpaceID = "AdSpaceID"
	AttrAdID      = "AdID"
	AttrDate      = "date"
	AttrImage     = "image"
	AttrTitle     = "title"
	AttrText      = "text"
	AttrLink      = "link"
)

// NullSentinel is stored for reserved string attributes that were not
// supplied. Kept for compatibility with existing consumers.
const NullSentinel = "null"

// NewAdSpaceID generates a fresh AdSpace identifier.
func NewAdSpaceID() string {
	return uuid.New().String()
}

// NormalizeValue converts a decoded JSON value into a store attribute value.
// Strings map to strings, arrays of strings to string sets, numbers to
// numbers. Anything else is rejected.
func NormalizeValue(name string, raw interface{}) (store.AttributeValue, error) {
	switch v := raw.(type) {
	case string:
		return store.String(v), nil
	case []string:
		return store.StringSet(v), nil
	case []interface{}:
		ss := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return store.AttributeValue{}, fmt.Errorf("%w: attribute %q set element is not a string", ErrInvalidAttributeValue, name)
			}
			ss = append(ss, s)
		}
		return store.StringSet(ss), nil
	case float64:
		return store.Number(int64(v)), nil
	case int:
		return store.Number(int64(v)), nil
	case int64:
		return store.Number(v), nil
	default:
		return store.AttributeValue{}, fmt.Errorf("%w: attribute %q has type %T", ErrInvalidAttributeValue, name, raw)
	}
}

// ParseItem converts a stored item into the plain attribute map returned to
// API clients.
func ParseItem(item store.Item) map[string]interface{} {
	out := make(map[string]interface{}, len(item))
	for name, v := range item {
		out[name] = v.Native()
	}
	return out
}
