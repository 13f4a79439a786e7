// Package schema validates persisted result history documents against the
// embedded JSON Schema.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// DataSchema is the JSON Schema of data.json.
//
//go:embed data.schema.json
var DataSchema []byte

// Sentinel errors.
var (
	ErrInvalidJSON     = errors.New("invalid JSON")
	ErrInvalidDocument = errors.New("document does not match schema")
)

// Violation is one schema violation.
type Violation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// String implements fmt.Stringer.
func (v Violation) String() string {
	return v.Field + ": " + v.Description
}

// Result is the outcome of a validation.
type Result struct {
	Violations []Violation `json:"violations,omitempty"`
}

// Valid reports whether there were no violations.
func (r *Result) Valid() bool {
	return len(r.Violations) == 0
}

// Err returns ErrInvalidDocument wrapping the first violation, or nil.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}

	return fmt.Errorf("%w: %s (%d violations)", ErrInvalidDocument, r.Violations[0], len(r.Violations))
}

var compiled = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(DataSchema))
})

// Validate checks raw JSON bytes against the data.json schema. The error is
// non-nil only when the input is not JSON or the schema cannot be compiled.
func Validate(data []byte) (*Result, error) {
	var doc any

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	decodeErr := dec.Decode(&doc)
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, decodeErr)
	}

	return validate(gojsonschema.NewGoLoader(doc))
}

// ValidateValue marshals v and validates the result.
func ValidateValue(v any) (*Result, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	return Validate(data)
}

func validate(loader gojsonschema.JSONLoader) (*Result, error) {
	s, err := compiled()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	outcome, err := s.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}

	result := &Result{}

	for _, verr := range outcome.Errors() {
		result.Violations = append(result.Violations, Violation{
			Field:       verr.Field(),
			Description: verr.Description(),
		})
	}

	return result, nil
}
