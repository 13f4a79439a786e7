package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/spf13/afero"

	"github.com/Sumatoshi-tech/bidiboard/pkg/config"
	"github.com/Sumatoshi-tech/bidiboard/pkg/persist"
	"github.com/Sumatoshi-tech/bidiboard/pkg/schema"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

// ErrInvalidStore is returned when the persisted history fails validation.
var ErrInvalidStore = errors.New("invalid history document")

func documentPersister(fs afero.Fs, cfg *config.Config) *persist.Persister[timeseries.Document] {
	return persist.NewPersister[timeseries.Document](fs, cfg.StoreBasename(), persist.NewJSONCodec())
}

func backupCodec() persist.Codec {
	return persist.NewLZ4Codec(persist.NewJSONCodec())
}

// StorePath returns the location of the history document.
func StorePath(cfg *config.Config) string {
	return path.Join(cfg.OutputDir, cfg.Store.File)
}

// BackupPath returns the location of the compressed copy of the previous
// history document.
func BackupPath(cfg *config.Config) string {
	return path.Join(cfg.OutputDir, cfg.StoreBasename()+backupCodec().Extension())
}

// LoadStore reads and validates the history document. A missing document
// yields an empty store and found=false.
func LoadStore(fs afero.Fs, cfg *config.Config) (store *timeseries.Store, found bool, err error) {
	epoch, err := cfg.Epoch()
	if err != nil {
		return nil, false, err
	}

	data, readErr := afero.ReadFile(fs, StorePath(cfg))
	if readErr != nil {
		exists, statErr := afero.Exists(fs, StorePath(cfg))
		if statErr == nil && !exists {
			return timeseries.NewStore(epoch), false, nil
		}

		return nil, false, fmt.Errorf("read history: %w", readErr)
	}

	result, validateErr := schema.Validate(data)
	if validateErr != nil {
		return nil, true, fmt.Errorf("%w: %w", ErrInvalidStore, validateErr)
	}

	if invalid := result.Err(); invalid != nil {
		return nil, true, fmt.Errorf("%w: %w", ErrInvalidStore, invalid)
	}

	var doc timeseries.Document

	loadErr := documentPersister(fs, cfg).Load(cfg.OutputDir, func(loaded *timeseries.Document) {
		doc = *loaded
	})
	if loadErr != nil {
		return nil, true, fmt.Errorf("load history: %w", loadErr)
	}

	return timeseries.FromDocument(&doc, epoch), true, nil
}

// SaveStore writes the history document.
func SaveStore(fs afero.Fs, cfg *config.Config, store *timeseries.Store) error {
	err := documentPersister(fs, cfg).Save(cfg.OutputDir, store.Document)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	return nil
}

// BackupStore writes raw, the undecoded previous history document, as an
// LZ4-compressed copy next to it.
func BackupStore(fs afero.Fs, cfg *config.Config, raw []byte) error {
	err := persist.SaveState(fs, cfg.OutputDir, cfg.StoreBasename(), backupCodec(), json.RawMessage(raw))
	if err != nil {
		return fmt.Errorf("backup history: %w", err)
	}

	return nil
}
