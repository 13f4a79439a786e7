package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

const textfileDirMode = 0o750

// WriteTextfile writes the metrics gathered by registry to path in the
// Prometheus text format, for the node-exporter textfile collector. The
// write is atomic.
func WriteTextfile(path string, registry prometheus.Gatherer) error {
	err := os.MkdirAll(filepath.Dir(path), textfileDirMode)
	if err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}

	writeErr := prometheus.WriteToTextfile(path, registry)
	if writeErr != nil {
		return fmt.Errorf("write metrics textfile: %w", writeErr)
	}

	return nil
}
