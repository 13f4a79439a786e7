package diff

import (
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

// DefaultRenameDistance is the default edit distance for rename candidates.
const DefaultRenameDistance = 8

// Rename pairs a removed spec with an added spec that probably replaced it.
type Rename struct {
	From     string
	To       string
	Distance int
}

// Diffs returns the character diff between the two spec paths.
func (r Rename) Diffs() []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()

	return dmp.DiffCleanupSemantic(dmp.DiffMain(r.From, r.To, false))
}

// RenameCandidates pairs removed and added specs of the same top-level suite
// whose paths are at most maxDistance edits apart. Each spec appears in at
// most one pair; closer pairs win. Paths are otherwise stable identities, so
// these are hints only.
func RenameCandidates(entries Entries, maxDistance int) []Rename {
	if maxDistance <= 0 {
		return nil
	}

	var removed, added []string

	for _, path := range entries.Paths() {
		entry := entries[path]

		switch {
		case entry.Removed():
			removed = append(removed, path)
		case entry.Added():
			added = append(added, path)
		}
	}

	if len(removed) == 0 || len(added) == 0 {
		return nil
	}

	dmp := diffmatchpatch.New()

	var candidates []Rename

	for _, from := range removed {
		fromSuite, _ := results.SplitPath(from)

		for _, to := range added {
			toSuite, _ := results.SplitPath(to)
			if fromSuite != toSuite {
				continue
			}

			distance := dmp.DiffLevenshtein(dmp.DiffMain(from, to, false))
			if distance <= maxDistance {
				candidates = append(candidates, Rename{From: from, To: to, Distance: distance})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	used := make(map[string]bool, len(candidates)*2) //nolint:mnd // both sides.
	pairs := make([]Rename, 0, len(candidates))

	for _, c := range candidates {
		if used[c.From] || used[c.To] {
			continue
		}

		used[c.From], used[c.To] = true, true
		pairs = append(pairs, c)
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].From < pairs[j].From
	})

	return pairs
}
