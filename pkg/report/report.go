// Package report reads Playwright JSON test reports into a suite tree.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrMalformedReport is returned when a report is not valid JSON.
var ErrMalformedReport = errors.New("malformed test report")

// Report is the root of a Playwright JSON report.
type Report struct {
	Config Config   `json:"config"`
	Suites []*Suite `json:"suites"`
	Stats  Stats    `json:"stats"`
}

// Config holds the subset of the Playwright config the dashboard reads.
type Config struct {
	Metadata Metadata `json:"metadata"`
}

// Metadata holds CI metadata attached by the Playwright runner.
type Metadata struct {
	CI *CIMetadata `json:"ci,omitempty"`
}

// CIMetadata describes the CI run that produced the report.
type CIMetadata struct {
	PRTitle    string `json:"prTitle,omitempty"`
	PRHref     string `json:"prHref,omitempty"`
	CommitHref string `json:"commitHref,omitempty"`
}

// Stats summarises the run.
type Stats struct {
	StartTime  time.Time `json:"startTime"`
	Duration   float64   `json:"duration"`
	Expected   int       `json:"expected"`
	Unexpected int       `json:"unexpected"`
	Flaky      int       `json:"flaky"`
	Skipped    int       `json:"skipped"`
}

// Suite is a named group of specs and nested suites.
type Suite struct {
	Title  string   `json:"title"`
	File   string   `json:"file,omitempty"`
	Suites []*Suite `json:"suites,omitempty"`
	Specs  []*Spec  `json:"specs"`
}

// Spec is a single test case.
type Spec struct {
	Title string  `json:"title"`
	OK    bool    `json:"ok"`
	Tests []*Test `json:"tests"`
}

// Test is one attempt of a spec, usually one per project.
type Test struct {
	ProjectName string    `json:"projectName,omitempty"`
	Status      string    `json:"status,omitempty"`
	Results     []*Result `json:"results"`
}

// Result is one execution of a test.
type Result struct {
	Status   string  `json:"status"`
	Duration float64 `json:"duration"`
	Retry    int     `json:"retry"`
}

// FirstStatus returns the status of the first result of the first test,
// which is authoritative for aggregation.
func (s *Spec) FirstStatus() (string, bool) {
	if s == nil || len(s.Tests) == 0 || s.Tests[0] == nil {
		return "", false
	}

	test := s.Tests[0]
	if len(test.Results) == 0 || test.Results[0] == nil {
		return "", false
	}

	status := test.Results[0].Status

	return status, status != ""
}

// PullRequestTitle returns the PR title recorded by CI, if any.
func (r *Report) PullRequestTitle() string {
	if r == nil || r.Config.Metadata.CI == nil {
		return ""
	}

	return r.Config.Metadata.CI.PRTitle
}

// StartTime returns the run start time in UTC, or the zero time.
func (r *Report) StartTime() time.Time {
	if r == nil {
		return time.Time{}
	}

	return r.Stats.StartTime.UTC()
}

// Decode parses a JSON report.
func Decode(r io.Reader) (*Report, error) {
	var rep Report

	err := json.NewDecoder(r).Decode(&rep)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedReport, err)
	}

	return &rep, nil
}
