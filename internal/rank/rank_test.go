package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"telegram-activity-bot/internal/model"
)

func TestDefaultTiersValid(t *testing.T) {
	table, err := NewTable(DefaultTiers())
	require.NoError(t, err)
	assert.Equal(t, "🔍 Seeker", table.Lowest().Name)
}

func TestNewTableValidation(t *testing.T) {
	tests := []struct {
		name    string
		tiers   []model.RankTier
		wantErr bool
	}{
		{"empty", nil, true},
		{"not anchored at zero", []model.RankTier{{Name: "A", MinPoints: 10, MaxPoints: 99}}, true},
		{"max below min", []model.RankTier{{Name: "A", MinPoints: 0, MaxPoints: -1}}, true},
		{"overlapping", []model.RankTier{
			{Name: "A", MinPoints: 0, MaxPoints: 100},
			{Name: "B", MinPoints: 100, MaxPoints: 249},
		}, true},
		{"valid pair", []model.RankTier{
			{Name: "A", MinPoints: 0, MaxPoints: 99},
			{Name: "B", MinPoints: 100, MaxPoints: 249},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.tiers)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveBoundaries(t *testing.T) {
	table, err := NewTable([]model.RankTier{
		{Name: "A", MinPoints: 0, MaxPoints: 99},
		{Name: "B", MinPoints: 100, MaxPoints: 249},
	})
	require.NoError(t, err)

	assert.Equal(t, "A", table.Resolve(0).Name)
	assert.Equal(t, "A", table.Resolve(99).Name)
	// Fractional totals between integer bounds stay in the lower band.
	assert.Equal(t, "A", table.Resolve(99.5).Name)
	assert.Equal(t, "B", table.Resolve(100).Name)
	assert.Equal(t, "B", table.Resolve(100000).Name)
	assert.Equal(t, Unranked, table.Resolve(-1))
}

func TestNext(t *testing.T) {
	table, err := NewTable([]model.RankTier{
		{Name: "A", MinPoints: 0, MaxPoints: 99},
		{Name: "B", MinPoints: 100, MaxPoints: 249},
	})
	require.NoError(t, err)

	next, remaining, ok := table.Next(40)
	require.True(t, ok)
	assert.Equal(t, "B", next.Name)
	assert.Equal(t, 60.0, remaining)

	// Already at the top of the ladder: no next tier.
	_, _, ok = table.Next(100)
	assert.False(t, ok)
	_, _, ok = table.Next(5000)
	assert.False(t, ok)
}

// TestResolveExhaustiveProperty checks that every non-negative total
// resolves to exactly one tier of the default ladder.
func TestResolveExhaustiveProperty(t *testing.T) {
	table := Default()
	tiers := table.Tiers()

	rapid.Check(t, func(t *rapid.T) {
		total := rapid.Float64Range(0, 2_000_000).Draw(t, "total")

		got := table.Resolve(total)
		if got == Unranked {
			t.Fatalf("total %v resolved to Unranked", total)
		}

		matches := 0
		for i, tier := range tiers {
			upper := float64(openEndedMax)
			if i+1 < len(tiers) {
				upper = tiers[i+1].MinPoints
			}
			if total >= tier.MinPoints && total < upper {
				matches++
				if tier.Name != got.Name {
					t.Fatalf("total %v resolved to %q, expected %q", total, got.Name, tier.Name)
				}
			}
		}
		if matches != 1 {
			t.Fatalf("total %v matched %d tiers", total, matches)
		}
	})
}

// TestResolveMonotonicProperty checks that rank never decreases as the
// total grows.
func TestResolveMonotonicProperty(t *testing.T) {
	table := Default()

	rapid.Check(t, func(t *rapid.T) {
		total := rapid.Float64Range(0, 2_000_000).Draw(t, "total")
		delta := rapid.Float64Range(0, 100_000).Draw(t, "delta")

		before := table.Resolve(total)
		after := table.Resolve(total + delta)
		if after.MinPoints < before.MinPoints {
			t.Fatalf("rank decreased: %v -> %v after adding %v to %v",
				before.Name, after.Name, delta, total)
		}
	})
}
