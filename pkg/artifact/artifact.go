// Package artifact parses report artifact filenames and scans artifact
// directories. Filenames are the only addressing scheme: a day artifact is
// named <browser>-YYYY-MM-DD.<ext>, a pull-request artifact
// <browser>-pr-<number>.<ext>.
package artifact

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// DateLayout is the calendar date layout used in artifact and page names.
const DateLayout = "2006-01-02"

// Supported extensions, longest first so ".json.lz4" wins over ".json".
var extensions = []string{".json.lz4", ".zip", ".json"}

var (
	dayPattern = regexp.MustCompile(`^([a-z][a-z0-9_]*)-(\d{4}-\d{2}-\d{2})$`)
	prPattern  = regexp.MustCompile(`^([a-z][a-z0-9_]*)-pr-(\d+)$`)
)

// Kind distinguishes day artifacts from pull-request artifacts.
type Kind int

// Artifact kinds.
const (
	KindDay Kind = iota
	KindPullRequest
)

// Artifact is a parsed artifact filename.
type Artifact struct {
	// Name is the base filename.
	Name string
	// Path is the location on the scanned filesystem.
	Path    string
	Kind    Kind
	Browser string
	// Date is set for day artifacts (UTC midnight).
	Date time.Time
	// PullRequest is set for pull-request artifacts.
	PullRequest int
	Ext         string
}

// String implements fmt.Stringer.
func (a Artifact) String() string {
	if a.Kind == KindPullRequest {
		return fmt.Sprintf("%s PR #%d", a.Browser, a.PullRequest)
	}

	return fmt.Sprintf("%s %s", a.Browser, a.Date.Format(DateLayout))
}

// ParseFilename parses a base filename. It returns false for anything that is
// not a well-formed day or pull-request artifact name.
func ParseFilename(name string) (Artifact, bool) {
	stem, ext, ok := splitExt(name)
	if !ok {
		return Artifact{}, false
	}

	if m := prPattern.FindStringSubmatch(stem); m != nil {
		number, err := strconv.Atoi(m[2])
		if err != nil || number <= 0 {
			return Artifact{}, false
		}

		return Artifact{Name: name, Path: name, Kind: KindPullRequest, Browser: m[1], PullRequest: number, Ext: ext}, true
	}

	if m := dayPattern.FindStringSubmatch(stem); m != nil {
		date, err := time.Parse(DateLayout, m[2])
		if err != nil {
			return Artifact{}, false
		}

		return Artifact{Name: name, Path: name, Kind: KindDay, Browser: m[1], Date: date, Ext: ext}, true
	}

	return Artifact{}, false
}

func splitExt(name string) (stem, ext string, ok bool) {
	for _, candidate := range extensions {
		if strings.HasSuffix(name, candidate) {
			return strings.TrimSuffix(name, candidate), candidate, true
		}
	}

	return "", "", false
}

// DayFilename returns the canonical zip name of a day artifact.
func DayFilename(browser string, date time.Time) string {
	return browser + "-" + date.Format(DateLayout) + ".zip"
}

// PullRequestFilename returns the canonical zip name of a pull-request artifact.
func PullRequestFilename(browser string, number int) string {
	return browser + "-pr-" + strconv.Itoa(number) + ".zip"
}

// Scan lists the parseable artifacts in dir. Day artifacts come first, sorted
// by date then browser; pull-request artifacts follow, sorted by number then
// browser. When the same artifact exists with several extensions the first
// in name order is kept.
func Scan(fs afero.Fs, dir string) ([]Artifact, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("scan artifacts in %s: %w", dir, err)
	}

	seen := make(map[string]bool, len(infos))
	artifacts := make([]Artifact, 0, len(infos))

	for _, info := range infos {
		if info.IsDir() {
			continue
		}

		a, ok := ParseFilename(info.Name())
		if !ok {
			continue
		}

		key := a.key()
		if seen[key] {
			continue
		}

		seen[key] = true
		a.Path = path.Join(dir, a.Name)
		artifacts = append(artifacts, a)
	}

	sort.SliceStable(artifacts, func(i, j int) bool {
		return less(artifacts[i], artifacts[j])
	})

	return artifacts, nil
}

func (a Artifact) key() string {
	if a.Kind == KindPullRequest {
		return a.Browser + "-pr-" + strconv.Itoa(a.PullRequest)
	}

	return a.Browser + "-" + a.Date.Format(DateLayout)
}

func less(a, b Artifact) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}

	if a.Kind == KindDay && !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}

	if a.Kind == KindPullRequest && a.PullRequest != b.PullRequest {
		return a.PullRequest < b.PullRequest
	}

	return a.Browser < b.Browser
}
