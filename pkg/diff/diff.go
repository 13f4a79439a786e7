// Package diff compares two flat result snapshots and reports the specs
// whose result changed.
package diff

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

// Entry is the before and after code of one changed spec. A side where the
// spec was absent holds results.None.
type Entry struct {
	Previous results.Code
	Current  results.Code
}

// MarshalJSON omits absent sides.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := make(map[string]results.Code, 2) //nolint:mnd // previous and current.

	if e.Previous != results.None {
		out["previous"] = e.Previous
	}

	if e.Current != results.None {
		out["current"] = e.Current
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal diff entry: %w", err)
	}

	return data, nil
}

// UnmarshalJSON treats missing or null sides as results.None.
func (e *Entry) UnmarshalJSON(data []byte) error {
	raw := struct {
		Previous *results.Code `json:"previous"`
		Current  *results.Code `json:"current"`
	}{}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("unmarshal diff entry: %w", err)
	}

	e.Previous, e.Current = results.None, results.None

	if raw.Previous != nil {
		e.Previous = *raw.Previous
	}

	if raw.Current != nil {
		e.Current = *raw.Current
	}

	return nil
}

// Added reports whether the spec is new in the after snapshot.
func (e Entry) Added() bool {
	return e.Previous == results.None && e.Current != results.None
}

// Removed reports whether the spec disappeared from the after snapshot.
func (e Entry) Removed() bool {
	return e.Previous != results.None && e.Current == results.None
}

// Entries maps spec paths to changed results.
type Entries map[string]Entry

// Diff returns the specs present in either snapshot whose code differs. A
// spec missing from one side compares as results.None, so additions and
// removals are both reported.
func Diff(before, after results.Flat) Entries {
	entries := make(Entries)

	for path, previous := range before {
		current, ok := after[path]
		if !ok {
			current = results.None
		}

		if previous != current {
			entries[path] = Entry{Previous: previous, Current: current}
		}
	}

	for path, current := range after {
		if _, ok := before[path]; ok {
			continue
		}

		if current != results.None {
			entries[path] = Entry{Previous: results.None, Current: current}
		}
	}

	return entries
}

// Swap exchanges previous and current of every entry.
func (e Entries) Swap() Entries {
	swapped := make(Entries, len(e))

	for path, entry := range e {
		swapped[path] = Entry{Previous: entry.Current, Current: entry.Previous}
	}

	return swapped
}

// Paths returns the changed spec paths, sorted.
func (e Entries) Paths() []string {
	paths := make([]string, 0, len(e))

	for path := range e {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths
}

// Summary counts entries by kind of change.
type Summary struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Fixed     int `json:"fixed"`
	Regressed int `json:"regressed"`
	Other     int `json:"other"`
}

// Summarize classifies every entry. Fixed means failing before and passing
// after; regressed the opposite.
func (e Entries) Summarize() Summary {
	var s Summary

	for _, entry := range e {
		before, after := results.Normalize(entry.Previous), results.Normalize(entry.Current)

		switch {
		case entry.Added():
			s.Added++
		case entry.Removed():
			s.Removed++
		case before == results.OutcomeFailing && after == results.OutcomePassing:
			s.Fixed++
		case before == results.OutcomePassing && after == results.OutcomeFailing:
			s.Regressed++
		default:
			s.Other++
		}
	}

	return s
}
