// Package persist provides codec-based file persistence for arbitrary state
// types on an afero filesystem.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
)

// File extensions for supported codecs.
const (
	jsonExtension = ".json"
	lz4Extension  = ".lz4"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// File and directory permissions for persisted state.
const (
	fileMode = 0o644
	dirMode  = 0o750
)

// ErrNotFound is returned by Load when the state file does not exist.
var ErrNotFound = errors.New("state file not found")

// Codec defines how state is serialized and deserialized.
type Codec interface {
	// Encode writes the state to the writer.
	Encode(w io.Writer, state any) error
	// Decode reads the state from the reader.
	Decode(r io.Reader, state any) error
	// Extension returns the file extension for this codec (e.g., ".json", ".json.lz4").
	Extension() string
}

// JSONCodec implements Codec using JSON encoding with optional indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing (2-space indent).
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, state any) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(state)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using JSON decoding.
func (c *JSONCodec) Decode(r io.Reader, state any) error {
	err := json.NewDecoder(r).Decode(state)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// LZ4Codec wraps another codec in an LZ4 frame stream.
type LZ4Codec struct {
	Inner Codec
}

// NewLZ4Codec wraps inner with LZ4 frame compression.
func NewLZ4Codec(inner Codec) *LZ4Codec {
	return &LZ4Codec{Inner: inner}
}

// Encode implements Codec.Encode, compressing the inner encoding.
func (c *LZ4Codec) Encode(w io.Writer, state any) error {
	zw := lz4.NewWriter(w)

	err := c.Inner.Encode(zw, state)
	if err != nil {
		return err
	}

	closeErr := zw.Close()
	if closeErr != nil {
		return fmt.Errorf("lz4 close: %w", closeErr)
	}

	return nil
}

// Decode implements Codec.Decode, decompressing before the inner decoding.
func (c *LZ4Codec) Decode(r io.Reader, state any) error {
	return c.Inner.Decode(lz4.NewReader(r), state)
}

// Extension implements Codec.Extension by suffixing the inner extension.
func (c *LZ4Codec) Extension() string {
	return c.Inner.Extension() + lz4Extension
}

// SaveState saves the given state to a file in the specified directory,
// creating the directory when needed. The filename is constructed from the
// basename and the codec's extension. The file is written to a temporary
// name first and renamed into place.
func SaveState(fs afero.Fs, dir, basename string, codec Codec, state any) error {
	target := path.Join(dir, basename+codec.Extension())

	err := fs.MkdirAll(dir, dirMode)
	if err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := target + ".tmp"

	file, err := fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}

	encodeErr := codec.Encode(file, state)

	closeErr := file.Close()
	if encodeErr != nil {
		return fmt.Errorf("encode state: %w", encodeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close state file: %w", closeErr)
	}

	renameErr := fs.Rename(tmp, target)
	if renameErr != nil {
		return fmt.Errorf("replace state file: %w", renameErr)
	}

	return nil
}

// LoadState loads state from a file in the specified directory.
// The filename is constructed from the basename and the codec's extension.
// The state parameter must be a pointer to the target struct. A missing file
// yields ErrNotFound.
func LoadState(fs afero.Fs, dir, basename string, codec Codec, state any) error {
	target := path.Join(dir, basename+codec.Extension())

	file, err := fs.Open(target)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, target)
	}

	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(file, state)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	return nil
}

// Exists reports whether the state file for basename exists.
func Exists(fs afero.Fs, dir, basename string, codec Codec) (bool, error) {
	ok, err := afero.Exists(fs, path.Join(dir, basename+codec.Extension()))
	if err != nil {
		return false, fmt.Errorf("stat state file: %w", err)
	}

	return ok, nil
}
