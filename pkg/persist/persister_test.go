package persist

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// persisterState is a struct for persister round-trip testing.
type persisterState struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

func TestPersister_SaveLoad_JSON(t *testing.T) {
	t.Parallel()

	p := NewPersister[persisterState](afero.NewMemMapFs(), "mystate", NewJSONCodec())

	original := persisterState{Label: "hello", Value: 42}

	err := p.Save("site", func() *persisterState { return &original })

	require.NoError(t, err)

	var restored persisterState

	err = p.Load("site", func(s *persisterState) { restored = *s })

	require.NoError(t, err)

	assert.Equal(t, original, restored)
	assert.Equal(t, "mystate.json", p.Filename())
}

func TestPersister_SaveLoad_LZ4(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	p := NewPersister[persisterState](fs, "backup", NewLZ4Codec(NewJSONCodec()))

	err := p.Save("site", func() *persisterState { return &persisterState{Label: "lz4", Value: 99} })

	require.NoError(t, err)

	ok, err := p.Exists("site")
	require.NoError(t, err)
	assert.True(t, ok)

	var restored persisterState

	err = p.Load("site", func(s *persisterState) { restored = *s })

	require.NoError(t, err)
	assert.Equal(t, "lz4", restored.Label)
}

func TestPersister_LoadMissingFile(t *testing.T) {
	t.Parallel()

	p := NewPersister[persisterState](afero.NewMemMapFs(), "missing", NewJSONCodec())

	err := p.Load("site", func(_ *persisterState) {})

	require.ErrorIs(t, err, ErrNotFound)
}

func TestPersister_SaveReadOnlyFs(t *testing.T) {
	t.Parallel()

	p := NewPersister[persisterState](afero.NewReadOnlyFs(afero.NewMemMapFs()), "state", NewJSONCodec())

	err := p.Save("site", func() *persisterState {
		return &persisterState{Label: "x"}
	})

	assert.Error(t, err)
}
