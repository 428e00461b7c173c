package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueKind discriminates the attribute value union.
type ValueKind int

const (
	KindString ValueKind = iota
	KindStringSet
	KindNumber
)

// AttributeValue is a tagged union over the scalar types the item store
// understands: a single string, a set of strings, or a number.
type AttributeValue struct {
	kind ValueKind
	s    string
	ss   []string
	n    int64
}

// String builds a string-valued attribute.
func String(s string) AttributeValue {
	return AttributeValue{kind: KindString, s: s}
}

// StringSet builds a string-set-valued attribute.
func StringSet(ss []string) AttributeValue {
	return AttributeValue{kind: KindStringSet, ss: ss}
}

// Number builds a number-valued attribute.
func Number(n int64) AttributeValue {
	return AttributeValue{kind: KindNumber, n: n}
}

func (v AttributeValue) Kind() ValueKind     { return v.kind }
func (v AttributeValue) StringVal() string   { return v.s }
func (v AttributeValue) StringSetVal() []string { return v.ss }
func (v AttributeValue) NumberVal() int64    { return v.n }

// Equal reports whether two attribute values have the same kind and content.
func (v AttributeValue) Equal(o AttributeValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindNumber:
		return v.n == o.n
	case KindStringSet:
		if len(v.ss) != len(o.ss) {
			return false
		}
		for i := range v.ss {
			if v.ss[i] != o.ss[i] {
				return false
			}
		}
		return true
	}
	return false
}

// Render returns the value as a plain string, used for key encoding.
func (v AttributeValue) Render() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatInt(v.n, 10)
	case KindStringSet:
		return strings.Join(v.ss, ",")
	default:
		return v.s
	}
}

// Native returns the value as the plain Go type it marshals to.
func (v AttributeValue) Native() interface{} {
	switch v.kind {
	case KindNumber:
		return v.n
	case KindStringSet:
		return v.ss
	default:
		return v.s
	}
}

// MarshalJSON encodes the union by its natural JSON type: strings as
// strings, sets as arrays, numbers as numbers.
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

// UnmarshalJSON recovers the union from the JSON type of the payload.
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return fmt.Errorf("empty attribute value")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case '[':
		var ss []string
		if err := json.Unmarshal(data, &ss); err != nil {
			return err
		}
		*v = StringSet(ss)
		return nil
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return err
		}
		n, err := num.Int64()
		if err != nil {
			f, ferr := num.Float64()
			if ferr != nil {
				return err
			}
			n = int64(f)
		}
		*v = Number(n)
		return nil
	}
}

// Item is a schema-less record: attribute name to tagged value.
type Item map[string]AttributeValue

// Key identifies an item by its key attributes.
type Key map[string]AttributeValue

// Canonical renders a key to a stable string, independent of map order.
func (k Key) Canonical() string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+k[name].Render())
	}
	return strings.Join(parts, "|")
}

// KeyOf extracts an item's key according to the table's key attributes.
func KeyOf(item Item, keys TableKeys) Key {
	key := Key{}
	if v, ok := item[keys.HashAttr]; ok {
		key[keys.HashAttr] = v
	}
	if keys.RangeAttr != "" {
		if v, ok := item[keys.RangeAttr]; ok {
			key[keys.RangeAttr] = v
		}
	}
	return key
}

// Clone returns a deep-enough copy of the item for safe mutation.
func (i Item) Clone() Item {
	out := make(Item, len(i))
	for name, v := range i {
		if v.kind == KindStringSet {
			ss := make([]string, len(v.ss))
			copy(ss, v.ss)
			v.ss = ss
		}
		out[name] = v
	}
	return out
}
