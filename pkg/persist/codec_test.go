package persist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testState is a struct for round-trip codec testing.
type testState struct {
	Name   string         `json:"name"`
	Count  int            `json:"count"`
	Values map[string]int `json:"values"`
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec()

	original := testState{
		Name:   "test",
		Count:  42,
		Values: map[string]int{"a": 1, "b": 2},
	}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))
	assert.Contains(t, buf.String(), "\n  \"name\"")

	var decoded testState

	require.NoError(t, codec.Decode(&buf, &decoded))

	assert.Equal(t, original, decoded)
}

func TestJSONCodec_CompactNoIndent(t *testing.T) {
	t.Parallel()

	codec := &JSONCodec{Indent: ""}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, testState{Name: "compact", Count: 1}))

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestJSONCodec_DecodeInvalid(t *testing.T) {
	t.Parallel()

	var state testState

	err := NewJSONCodec().Decode(strings.NewReader("{not json"), &state)

	assert.Error(t, err)
}

func TestLZ4Codec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewLZ4Codec(NewJSONCodec())

	assert.Equal(t, ".json.lz4", codec.Extension())

	original := testState{Name: strings.Repeat("abc", 200), Count: 7}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))
	assert.Less(t, buf.Len(), len(original.Name))

	var decoded testState

	require.NoError(t, codec.Decode(&buf, &decoded))
	assert.Equal(t, original, decoded)
}

func TestSaveLoadState(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	codec := NewJSONCodec()

	require.NoError(t, SaveState(fs, "out/nested", "state", codec, testState{Name: "x"}))

	ok, err := Exists(fs, "out/nested", "state", codec)
	require.NoError(t, err)
	assert.True(t, ok)

	tmpExists, err := afero.Exists(fs, "out/nested/state.json.tmp")
	require.NoError(t, err)
	assert.False(t, tmpExists)

	var loaded testState

	require.NoError(t, LoadState(fs, "out/nested", "state", codec, &loaded))
	assert.Equal(t, "x", loaded.Name)
}

func TestLoadState_Missing(t *testing.T) {
	t.Parallel()

	var state testState

	err := LoadState(afero.NewMemMapFs(), "out", "state", NewJSONCodec(), &state)

	require.ErrorIs(t, err, ErrNotFound)
}
