// Package selector picks replacement identifiers from a catalog while spreading
// usage across each bucket's pool.
package selector

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/FocuswithJustin/wildswap/core/catalog"
)

// DefaultSoftCap is the number of selections after which a candidate is no
// longer preferred over its less used siblings.
const DefaultSoftCap = 3

// Options configures a Selector.
type Options struct {
	// Rand is the random source. Nil means a fresh unseeded PCG.
	Rand *rand.Rand
	// SoftCap overrides DefaultSoftCap when positive.
	SoftCap int
}

// Usage is one row of the usage summary.
type Usage struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// Selector chooses candidates for levels and owns the usage counters of one run.
// It is not safe for concurrent use; give each rewrite its own Selector.
type Selector struct {
	catalog *catalog.Catalog
	rng     *rand.Rand
	softCap int
	usage   map[string]int
}

// New creates a Selector over cat with empty usage counters.
func New(cat *catalog.Catalog, opts Options) *Selector {
	rng := opts.Rand
	if rng == nil {
		// Non-cryptographic PRNG is intentional; selections only need variety.
		// #nosec G404
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	softCap := opts.SoftCap
	if softCap <= 0 {
		softCap = DefaultSoftCap
	}
	return &Selector{
		catalog: cat,
		rng:     rng,
		softCap: softCap,
		usage:   make(map[string]int),
	}
}

// SeededRand returns a deterministic random source for seed.
func SeededRand(seed int64) *rand.Rand {
	// #nosec G404
	return rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// Choose picks a candidate for level and records the selection. Candidates
// chosen fewer than SoftCap times are preferred; once every candidate in the
// bucket reaches the cap, any of them may be picked.
func (s *Selector) Choose(level int) string {
	candidates := s.catalog.CandidatesFor(s.catalog.BucketFor(level))

	underused := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if s.usage[c] < s.softCap {
			underused = append(underused, c)
		}
	}

	pool := candidates
	if len(underused) > 0 {
		pool = underused
	}
	chosen := pool[s.rng.IntN(len(pool))]
	s.usage[chosen]++
	return chosen
}

// Count returns how many times id has been chosen so far.
func (s *Selector) Count(id string) int {
	return s.usage[id]
}

// SoftCap returns the configured soft cap.
func (s *Selector) SoftCap() int {
	return s.softCap
}

// Usage returns the usage counters sorted by identifier.
func (s *Selector) Usage() []Usage {
	out := make([]Usage, 0, len(s.usage))
	for id, count := range s.usage {
		out = append(out, Usage{ID: id, Count: count})
	}
	slices.SortFunc(out, func(a, b Usage) int { return strings.Compare(a.ID, b.ID) })
	return out
}
