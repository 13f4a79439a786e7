package report

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
)

// DefaultEntry is the archive member holding the JSON report.
const DefaultEntry = "report.json"

// Supported report file extensions.
const (
	ExtZip  = ".zip"
	ExtLZ4  = ".lz4"
	ExtJSON = ".json"
)

// Sentinel reader errors.
var (
	ErrEntryNotFound      = errors.New("report entry not found in archive")
	ErrUnsupportedArchive = errors.New("unsupported report archive")
)

// ReadFile reads a report from a zip archive, an LZ4 frame stream or a plain
// JSON file, chosen by extension. For zip archives entry names the member
// holding the report; empty means DefaultEntry.
func ReadFile(fs afero.Fs, filePath, entry string) (*Report, error) {
	if entry == "" {
		entry = DefaultEntry
	}

	file, err := fs.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open report %s: %w", filePath, err)
	}
	defer file.Close()

	switch ext := strings.ToLower(path.Ext(filePath)); ext {
	case ExtZip:
		info, statErr := file.Stat()
		if statErr != nil {
			return nil, fmt.Errorf("stat report %s: %w", filePath, statErr)
		}

		return readZip(file, info.Size(), entry)
	case ExtLZ4:
		return Decode(lz4.NewReader(file))
	case ExtJSON:
		return Decode(file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArchive, filePath)
	}
}

func readZip(src io.ReaderAt, size int64, entry string) (*Report, error) {
	archive, err := zip.NewReader(src, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedReport, err)
	}

	for _, member := range archive.File {
		if member.Name != entry && path.Base(member.Name) != entry {
			continue
		}

		rc, openErr := member.Open()
		if openErr != nil {
			return nil, fmt.Errorf("open %s: %w", member.Name, openErr)
		}

		rep, decodeErr := Decode(rc)

		closeErr := rc.Close()
		if decodeErr != nil {
			return nil, decodeErr
		}

		if closeErr != nil {
			return nil, fmt.Errorf("close %s: %w", member.Name, closeErr)
		}

		return rep, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
}
