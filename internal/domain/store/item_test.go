package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeValue_JSONRoundTripByType(t *testing.T) {
	item := Item{
		"AdSpaceID": String("abc-123"),
		"AdID":      Number(4),
		"tags":      StringSet([]string{"sports", "news"}),
	}

	raw, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded Item
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, KindString, decoded["AdSpaceID"].Kind())
	assert.Equal(t, "abc-123", decoded["AdSpaceID"].StringVal())
	assert.Equal(t, KindNumber, decoded["AdID"].Kind())
	assert.Equal(t, int64(4), decoded["AdID"].NumberVal())
	assert.Equal(t, KindStringSet, decoded["tags"].Kind())
	assert.Equal(t, []string{"sports", "news"}, decoded["tags"].StringSetVal())
}

func TestKey_CanonicalIsOrderIndependent(t *testing.T) {
	a := Key{"AdSpaceID": String("s1"), "AdID": Number(2)}
	b := Key{"AdID": Number(2), "AdSpaceID": String("s1")}

	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.Equal(t, "AdID=2|AdSpaceID=s1", a.Canonical())
}

func TestKeyOf_ExtractsHashAndRange(t *testing.T) {
	item := Item{
		"AdSpaceID": String("s1"),
		"AdID":      Number(0),
		"title":     String("hello"),
	}

	key := KeyOf(item, TableKeys{HashAttr: "AdSpaceID", RangeAttr: "AdID"})

	require.Len(t, key, 2)
	assert.True(t, key["AdSpaceID"].Equal(String("s1")))
	assert.True(t, key["AdID"].Equal(Number(0)))
}

func TestItem_CloneIsolatesStringSets(t *testing.T) {
	item := Item{"tags": StringSet([]string{"a", "b"})}

	clone := item.Clone()
	clone["tags"].StringSetVal()[0] = "mutated"

	assert.Equal(t, "a", item["tags"].StringSetVal()[0])
}
