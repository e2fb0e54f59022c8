package catalog

import (
	"errors"
	"strings"
	"sync/atomic"

	"tickerize/internal"
)

// ErrInvalidReference is returned when the supplied reference data contains
// no usable entry. Matching must not start against an empty index.
var ErrInvalidReference = errors.New("invalid reference data")

var indexVersions atomic.Uint64

// Entry is one indexed reference name. Normalized is computed once at build
// time with the same normalizer the matcher applies to queries.
type Entry struct {
	Name       string
	Ticker     string
	Normalized string
}

// Index is an immutable snapshot of the reference list for one run.
// Iteration order is the input order with the first occurrence of a duplicate
// name winning, which fixes exact-lookup and fuzzy tie-break determinism.
type Index struct {
	entries      []Entry
	byNormalized map[string]int
	version      uint64
}

// BuildIndex drops entries with a blank name or blank ticker and normalizes
// the rest through normalize. It fails with ErrInvalidReference when nothing
// usable remains.
func BuildIndex(entries []internal.ReferenceEntry, normalize func(string) string) (*Index, error) {
	idx := &Index{
		byNormalized: map[string]int{},
		version:      indexVersions.Add(1),
	}

	seen := map[string]struct{}{}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		ticker := strings.TrimSpace(e.Ticker)
		if name == "" || ticker == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		entry := Entry{Name: name, Ticker: ticker, Normalized: normalize(name)}
		idx.entries = append(idx.entries, entry)
		if entry.Normalized != "" {
			if _, ok := idx.byNormalized[entry.Normalized]; !ok {
				idx.byNormalized[entry.Normalized] = len(idx.entries) - 1
			}
		}
	}

	if len(idx.entries) == 0 {
		return nil, ErrInvalidReference
	}
	return idx, nil
}

// Entries returns the indexed entries in their fixed iteration order. The
// slice must not be mutated.
func (i *Index) Entries() []Entry {
	return i.entries
}

// Exact returns the first entry whose normalized name equals normalized.
func (i *Index) Exact(normalized string) (Entry, bool) {
	pos, ok := i.byNormalized[normalized]
	if !ok {
		return Entry{}, false
	}
	return i.entries[pos], true
}

func (i *Index) Len() int {
	return len(i.entries)
}

// Version identifies this snapshot. Cached match results are keyed against it
// so a rebuilt index never serves stale results.
func (i *Index) Version() uint64 {
	return i.version
}
