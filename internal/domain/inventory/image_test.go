package inventory

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURL_ValidPayload(t *testing.T) {
	body := []byte{0x89, 'P', 'N', 'G'}
	raw := "data:image/png;base64," + base64.StdEncoding.EncodeToString(body)

	file, ok, err := ParseDataURL(raw)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "image/png", file.MIME)
	assert.Equal(t, "png", file.Ext)
	assert.Equal(t, body, file.Body)
}

func TestParseDataURL_PlainURLPassesThrough(t *testing.T) {
	file, ok, err := ParseDataURL("https://cdn.example.com/banner.png")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, file)
}

func TestParseDataURL_NullSentinelPassesThrough(t *testing.T) {
	_, ok, err := ParseDataURL(NullSentinel)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseDataURL_InvalidBase64(t *testing.T) {
	_, ok, err := ParseDataURL("data:image/jpeg;base64,@@not-base64@@")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidImagePayload)
	assert.False(t, ok)
}

func TestParseDataURL_SubtypeWithSuffix(t *testing.T) {
	raw := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte("<svg/>"))

	file, ok, err := ParseDataURL(raw)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "image/svg+xml", file.MIME)
	assert.Equal(t, "svg+xml", file.Ext)
}

func TestNormalizeValue_SupportedTypes(t *testing.T) {
	v, err := NormalizeValue("title", "Summer Sale")
	require.NoError(t, err)
	assert.Equal(t, "Summer Sale", v.StringVal())

	v, err = NormalizeValue("tags", []interface{}{"sports", "outdoor"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sports", "outdoor"}, v.StringSetVal())

	v, err = NormalizeValue("priority", float64(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.NumberVal())
}

func TestNormalizeValue_RejectsUnsupportedTypes(t *testing.T) {
	_, err := NormalizeValue("nested", map[string]interface{}{"a": 1})
	assert.ErrorIs(t, err, ErrInvalidAttributeValue)

	_, err = NormalizeValue("mixed", []interface{}{"ok", 3})
	assert.ErrorIs(t, err, ErrInvalidAttributeValue)

	_, err = NormalizeValue("flag", true)
	assert.ErrorIs(t, err, ErrInvalidAttributeValue)
}
