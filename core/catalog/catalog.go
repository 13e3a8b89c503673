// Package catalog holds the replacement pools used when rewriting encounter
// tables, keyed by level bucket.
package catalog

import (
	"fmt"
	"slices"

	"github.com/FocuswithJustin/wildswap/core/errors"
)

// Bounds of the level domain every catalog must cover.
const (
	MinLevel = 1
	MaxLevel = 100
)

// Bucket is a closed level interval [Min, Max].
type Bucket struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// String returns the bucket in "min-max" form, e.g. "6-15".
func (b Bucket) String() string {
	return fmt.Sprintf("%d-%d", b.Min, b.Max)
}

// Contains reports whether level falls inside the bucket.
func (b Bucket) Contains(level int) bool {
	return level >= b.Min && level <= b.Max
}

// Entry pairs a bucket with its ordered candidate identifiers.
type Entry struct {
	Bucket     Bucket
	Candidates []string
}

// Catalog maps level buckets to candidate identifiers. It is immutable once
// built; use New to construct one.
type Catalog struct {
	entries []Entry
}

// New validates entries and builds a Catalog. Buckets must be sorted, contiguous,
// start at MinLevel, end at MaxLevel, and each must have at least one candidate.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.NewValidation("", "catalog has no buckets")
	}

	sorted := make([]Entry, len(entries))
	for i, e := range entries {
		sorted[i] = Entry{Bucket: e.Bucket, Candidates: slices.Clone(e.Candidates)}
	}
	slices.SortFunc(sorted, func(a, b Entry) int { return a.Bucket.Min - b.Bucket.Min })

	next := MinLevel
	for i, e := range sorted {
		field := "bucket " + e.Bucket.String()
		if e.Bucket.Min > e.Bucket.Max {
			return nil, errors.NewValidation(field, "min exceeds max")
		}
		if i == 0 && e.Bucket.Min != MinLevel {
			return nil, errors.NewValidation(field, fmt.Sprintf("first bucket must start at %d", MinLevel))
		}
		if e.Bucket.Min < next {
			return nil, errors.NewValidation(field, "overlaps previous bucket")
		}
		if e.Bucket.Min > next {
			return nil, errors.NewValidation(field, fmt.Sprintf("gap before bucket, level %d is not covered", next))
		}
		if len(e.Candidates) == 0 {
			return nil, errors.NewValidation(field, "no candidates")
		}
		for _, c := range e.Candidates {
			if c == "" {
				return nil, errors.NewValidation(field, "empty candidate identifier")
			}
		}
		next = e.Bucket.Max + 1
	}
	if last := sorted[len(sorted)-1].Bucket; last.Max != MaxLevel {
		return nil, errors.NewValidation("bucket "+last.String(), fmt.Sprintf("last bucket must end at %d", MaxLevel))
	}

	return &Catalog{entries: sorted}, nil
}

// MustNew is like New but panics on an invalid catalog. Intended for
// package-level tables.
func MustNew(entries []Entry) *Catalog {
	c, err := New(entries)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// Buckets returns the catalog's buckets in ascending order.
func (c *Catalog) Buckets() []Bucket {
	out := make([]Bucket, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Bucket
	}
	return out
}

// BucketFor resolves a level to its bucket. Levels below the domain clamp to the
// lowest bucket and levels above it clamp to the highest.
func (c *Catalog) BucketFor(level int) Bucket {
	for _, e := range c.entries {
		if level <= e.Bucket.Max {
			return e.Bucket
		}
	}
	return c.entries[len(c.entries)-1].Bucket
}

// CandidatesFor returns the ordered candidates for bucket, or nil if the bucket
// is not part of this catalog. The returned slice is a copy.
func (c *Catalog) CandidatesFor(b Bucket) []string {
	for _, e := range c.entries {
		if e.Bucket == b {
			return slices.Clone(e.Candidates)
		}
	}
	return nil
}

// Identifiers returns every distinct identifier in the catalog, sorted.
func (c *Catalog) Identifiers() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range c.entries {
		for _, id := range e.Candidates {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
