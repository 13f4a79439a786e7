package persist

import (
	"github.com/spf13/afero"
)

// Persister handles I/O for a specific state type using a Codec.
type Persister[T any] struct {
	fs       afero.Fs
	basename string
	codec    Codec
}

// NewPersister creates a persister with the given filesystem, basename and codec.
func NewPersister[T any](fs afero.Fs, basename string, codec Codec) *Persister[T] {
	return &Persister[T]{
		fs:       fs,
		basename: basename,
		codec:    codec,
	}
}

// Filename returns the file name written by the persister.
func (p *Persister[T]) Filename() string {
	return p.basename + p.codec.Extension()
}

// Save writes state to the given directory using the provided build function.
func (p *Persister[T]) Save(dir string, buildState func() *T) error {
	return SaveState(p.fs, dir, p.basename, p.codec, buildState())
}

// Load restores state from the given directory using the provided restore function.
func (p *Persister[T]) Load(dir string, restoreState func(*T)) error {
	var state T

	err := LoadState(p.fs, dir, p.basename, p.codec, &state)
	if err != nil {
		return err
	}

	restoreState(&state)

	return nil
}

// Exists reports whether the persisted file is present in dir.
func (p *Persister[T]) Exists(dir string) (bool, error) {
	return Exists(p.fs, dir, p.basename, p.codec)
}
