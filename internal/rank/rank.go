// Package rank resolves cumulative activity points to named rank tiers.
// A Table is an immutable snapshot of the tier ladder; resolution is a
// pure function over it.
package rank

import (
	"errors"
	"fmt"
	"sort"

	"telegram-activity-bot/internal/model"
)

// Unranked is the sentinel returned when no tier matches (negative totals,
// or an empty table).
var Unranked = model.RankTier{Name: "Unranked", MinPoints: -1, MaxPoints: -1}

// Validation errors.
var (
	ErrEmptyTable = errors.New("rank table is empty")
)

// Table is an ordered, validated rank ladder.
type Table struct {
	tiers []model.RankTier
}

// NewTable builds a Table from tiers, sorting by minimum points and
// validating that the ladder starts at zero, is strictly ordered and does
// not overlap. Fractional totals falling between one tier's maximum and
// the next tier's minimum resolve to the lower tier, so the ladder is
// exhaustive over [0, +inf).
func NewTable(tiers []model.RankTier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, ErrEmptyTable
	}

	sorted := make([]model.RankTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinPoints < sorted[j].MinPoints
	})

	if sorted[0].MinPoints != 0 {
		return nil, fmt.Errorf("lowest tier %q must start at 0, got %v", sorted[0].Name, sorted[0].MinPoints)
	}
	for i, t := range sorted {
		if t.MaxPoints < t.MinPoints {
			return nil, fmt.Errorf("tier %q has max below min", t.Name)
		}
		if i > 0 && t.MinPoints <= sorted[i-1].MaxPoints {
			return nil, fmt.Errorf("tier %q overlaps %q", t.Name, sorted[i-1].Name)
		}
	}

	return &Table{tiers: sorted}, nil
}

// Resolve returns the tier containing total points: the highest tier whose
// minimum does not exceed the total. Negative totals resolve to Unranked.
func (t *Table) Resolve(total float64) model.RankTier {
	if total < 0 {
		return Unranked
	}
	// First tier with MinPoints > total; the one before it holds the total.
	i := sort.Search(len(t.tiers), func(i int) bool {
		return t.tiers[i].MinPoints > total
	})
	if i == 0 {
		return Unranked
	}
	return t.tiers[i-1]
}

// Next returns the lowest tier whose minimum exceeds the total, along with
// the points remaining to reach it. ok is false when the total is already
// in the highest tier.
func (t *Table) Next(total float64) (tier model.RankTier, remaining float64, ok bool) {
	i := sort.Search(len(t.tiers), func(i int) bool {
		return t.tiers[i].MinPoints > total
	})
	if i == len(t.tiers) {
		return model.RankTier{}, 0, false
	}
	return t.tiers[i], t.tiers[i].MinPoints - total, true
}

// Lowest returns the first tier of the ladder, the default rank for users
// with no cached rank yet.
func (t *Table) Lowest() model.RankTier {
	return t.tiers[0]
}

// Tiers returns a copy of the ladder in ascending order.
func (t *Table) Tiers() []model.RankTier {
	out := make([]model.RankTier, len(t.tiers))
	copy(out, t.tiers)
	return out
}
