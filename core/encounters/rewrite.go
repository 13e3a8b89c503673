// Package encounters rewrites the species of wild encounter tables.
//
// The expected document shape is
//
//	{"wild_encounter_groups": [
//	  {"encounters": [
//	    {"land_mons": {"mons": [{"species": "...", "min_level": 2, "max_level": 4}]}}
//	  ]}
//	]}
//
// Only "species" under recognized slots is changed; everything else passes
// through untouched.
package encounters

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/FocuswithJustin/wildswap/core/tree"
	"github.com/FocuswithJustin/wildswap/internal/logging"
)

// Document keys.
const (
	GroupsKey     = "wild_encounter_groups"
	EncountersKey = "encounters"
	MonsKey       = "mons"
	SpeciesKey    = "species"
	MinLevelKey   = "min_level"
	MaxLevelKey   = "max_level"
)

// DefaultLevel is used for a missing or non-numeric level field.
const DefaultLevel = 1

// maxSuggestDistance bounds typo suggestions for unrecognized slot keys.
const maxSuggestDistance = 3

// Slot is an encounter sub-table key.
type Slot string

const (
	SlotLand      Slot = "land_mons"
	SlotWater     Slot = "water_mons"
	SlotRockSmash Slot = "rock_smash_mons"
	SlotFishing   Slot = "fishing_mons"
	SlotHidden    Slot = "hidden_mons"
)

// Slots lists the recognized slots in rewrite order.
var Slots = []Slot{SlotLand, SlotWater, SlotRockSmash, SlotFishing, SlotHidden}

// Chooser picks a replacement identifier for a level.
type Chooser interface {
	Choose(level int) string
}

// Stats counts what a rewrite touched.
type Stats struct {
	Groups     int `json:"groups"`
	Encounters int `json:"encounters"`
	Slots      int `json:"slots"`
	Replaced   int `json:"replaced"`
	Skipped    int `json:"skipped"`
}

// Rewriter substitutes species using a Chooser.
type Rewriter struct {
	chooser Chooser
	stats   Stats
}

// NewRewriter returns a Rewriter drawing replacements from chooser.
func NewRewriter(chooser Chooser) *Rewriter {
	return &Rewriter{chooser: chooser}
}

// Stats returns the counters accumulated over every Rewrite call.
func (r *Rewriter) Stats() Stats {
	return r.stats
}

// Rewrite replaces species in place and returns root. Groups, encounters and
// slots of the wrong shape are skipped, not rejected.
func (r *Rewriter) Rewrite(root *tree.Value) *tree.Value {
	groups, _ := root.Get(GroupsKey)
	for _, group := range groups.Items() {
		r.stats.Groups++
		encounters, _ := group.Get(EncountersKey)
		for _, encounter := range encounters.Items() {
			r.stats.Encounters++
			r.rewriteEncounter(encounter)
		}
	}
	return root
}

func (r *Rewriter) rewriteEncounter(encounter *tree.Value) {
	for _, key := range encounter.Keys() {
		if !strings.Contains(key, "_mon") || IsSlot(key) {
			continue
		}
		logging.SlotSkipped(key, SuggestSlot(key))
	}

	for _, slot := range Slots {
		table, ok := encounter.Get(string(slot))
		if !ok {
			continue
		}
		r.stats.Slots++
		mons, _ := table.Get(MonsKey)
		for _, mon := range mons.Items() {
			if !mon.Has(SpeciesKey) {
				r.stats.Skipped++
				continue
			}
			level := RepresentativeLevel(mon)
			mon.Set(SpeciesKey, tree.String(r.chooser.Choose(level)))
			r.stats.Replaced++
		}
	}
}

// RepresentativeLevel is floor((min_level + max_level) / 2), with missing or
// non-numeric levels read as DefaultLevel. The result is clamped to the int32
// range so absurd inputs stay representable. Opposite infinite bounds resolve
// to the top of the range.
func RepresentativeLevel(mon *tree.Value) int {
	lo := levelField(mon, MinLevelKey)
	hi := levelField(mon, MaxLevelKey)
	mid := math.Floor((lo + hi) / 2)
	switch {
	case math.IsNaN(mid), mid > math.MaxInt32:
		return math.MaxInt32
	case mid < math.MinInt32:
		return math.MinInt32
	}
	return int(mid)
}

func levelField(mon *tree.Value, key string) float64 {
	field, ok := mon.Get(key)
	if ok {
		if f, ok := field.Float(); ok {
			return f
		}
		// Literals beyond float64 range overflow to a signed infinity.
		if n, ok := field.Num(); ok {
			if f, _ := n.Float64(); math.IsInf(f, 0) {
				return f
			}
		}
	}
	logging.LevelDefaulted(key, mon.StringOr(SpeciesKey, ""), DefaultLevel)
	return DefaultLevel
}

// IsSlot reports whether key is a recognized slot.
func IsSlot(key string) bool {
	for _, s := range Slots {
		if string(s) == key {
			return true
		}
	}
	return false
}

// SuggestSlot returns the recognized slot closest to key, or "" when none is
// within a small edit distance.
func SuggestSlot(key string) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, s := range Slots {
		if d := levenshtein.ComputeDistance(key, string(s)); d < bestDist {
			best, bestDist = string(s), d
		}
	}
	return best
}
