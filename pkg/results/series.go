package results

import "sort"

// Series is a sparse per-day sequence of codes indexed by day index.
// Days without a run hold None.
type Series []Code

// At returns the code for day, or None when day is out of range.
func (s Series) At(day int) Code {
	if day < 0 || day >= len(s) {
		return None
	}

	return s[day]
}

// Set stores code at day, growing the series with None as needed.
// Negative days are ignored.
func (s Series) Set(day int, code Code) Series {
	if day < 0 {
		return s
	}

	for len(s) <= day {
		s = append(s, None)
	}

	s[day] = code

	return s
}

// LastIndex returns the highest day holding a code, or -1.
func (s Series) LastIndex() int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != None {
			return i
		}
	}

	return -1
}

// Flat maps spec paths to the code of one run (one day or one PR).
type Flat map[string]Code

// Paths returns the spec paths of f, sorted.
func (f Flat) Paths() []string {
	paths := make([]string, 0, len(f))

	for path := range f {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths
}
