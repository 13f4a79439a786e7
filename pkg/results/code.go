// Package results classifies Playwright test outcomes and aggregates a suite
// tree into per-suite counters and flat per-spec result codes.
package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Code is the compact stored outcome of one spec in one run.
type Code int

// Result codes. The numeric values are persisted and must not change.
const (
	// None means there is no information for the slot.
	None     Code = -1
	Passed   Code = 0
	Skipped  Code = 1
	Failed   Code = 2
	TimedOut Code = 3
)

// Playwright status strings.
const (
	StatusPassed   = "passed"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
	StatusTimedOut = "timedOut"
)

var jsonNull = []byte("null")

var statusCodes = map[string]Code{
	StatusPassed:   Passed,
	StatusSkipped:  Skipped,
	StatusFailed:   Failed,
	StatusTimedOut: TimedOut,
}

// ParseStatus maps a Playwright status string to its Code.
func ParseStatus(status string) (Code, bool) {
	code, ok := statusCodes[status]

	return code, ok
}

// Valid reports whether c is one of the four stored outcomes.
func (c Code) Valid() bool {
	return c >= Passed && c <= TimedOut
}

// String returns the Playwright status name, or "notrun" for None.
func (c Code) String() string {
	switch c {
	case Passed:
		return StatusPassed
	case Skipped:
		return StatusSkipped
	case Failed:
		return StatusFailed
	case TimedOut:
		return StatusTimedOut
	case None:
		return "notrun"
	default:
		return "code(" + strconv.Itoa(int(c)) + ")"
	}
}

// Label returns a human readable label.
func (c Code) Label() string {
	switch c {
	case Passed:
		return "passed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed out"
	case None:
		return "not run"
	default:
		return c.String()
	}
}

// MarshalJSON encodes None as null and every other code as its number.
func (c Code) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return jsonNull, nil
	}

	return []byte(strconv.Itoa(int(c))), nil
}

// UnmarshalJSON decodes null as None.
func (c *Code) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*c = None

		return nil
	}

	var n int

	err := json.Unmarshal(data, &n)
	if err != nil {
		return fmt.Errorf("decode result code: %w", err)
	}

	*c = Code(n)
	if !c.Valid() {
		*c = None
	}

	return nil
}

// Outcome is the normalized status used to compare runs.
type Outcome int

// Normalized outcomes.
const (
	// OutcomeNone covers skipped specs and slots without a run.
	OutcomeNone Outcome = iota
	OutcomePassing
	OutcomeFailing
)

// Normalize folds a Code into the outcome every consumer compares on:
// timedOut counts as failing, skipped counts as no information.
func Normalize(c Code) Outcome {
	switch c {
	case Passed:
		return OutcomePassing
	case Failed, TimedOut:
		return OutcomeFailing
	case Skipped, None:
		return OutcomeNone
	default:
		return OutcomeNone
	}
}

// PathSeparator joins suite and spec titles into a spec path.
const PathSeparator = " > "

// JoinPath joins titles into a spec path.
func JoinPath(titles ...string) string {
	return strings.Join(titles, PathSeparator)
}

// SplitPath splits a spec path into its top-level suite title and the
// remaining path. A path without separator has an empty remainder.
func SplitPath(path string) (suite, spec string) {
	suite, spec, _ = strings.Cut(path, PathSeparator)

	return suite, spec
}
