package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSuccessReward(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		attempts int
		expected float64
	}{
		{"emoji first try", 5.0, 0, 5.0},
		{"emoji one miss", 5.0, 1, 4.5},
		{"emoji two misses", 5.0, 2, 4.0},
		{"quiz first try", 3.0, 0, 3.0},
		{"quiz two misses", 3.0, 2, 2.0},
		{"floors at one", 3.0, 10, 1.0},
		{"exact floor", 1.0, 0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SuccessReward(tt.base, tt.attempts))
		})
	}
}

// TestSuccessRewardDecreasingProperty checks that the reward never
// increases with attempt count and never drops below the floor.
func TestSuccessRewardDecreasingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.Float64Range(1.0, 10.0).Draw(t, "base")
		attempts := rapid.IntRange(0, 20).Draw(t, "attempts")

		reward := SuccessReward(base, attempts)
		next := SuccessReward(base, attempts+1)

		if reward < MinSuccessReward {
			t.Fatalf("reward %v below floor", reward)
		}
		if next > reward {
			t.Fatalf("reward grew with attempts: %v -> %v", reward, next)
		}
		if reward > MinSuccessReward && next >= reward {
			t.Fatalf("reward not strictly decreasing above floor: %v -> %v", reward, next)
		}
	})
}

func TestConsolationIndependentOfBase(t *testing.T) {
	assert.Equal(t, 0.5, ConsolationReward)
	assert.Less(t, ConsolationReward, MinSuccessReward)
}
