package arbiter

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"telegram-activity-bot/internal/game"
)

func TestTryStartAndEnd(t *testing.T) {
	a := New(time.Hour)

	require.NoError(t, a.TryStart(game.KindEmoji, -100, 1))

	info, active := a.Status()
	require.True(t, active)
	assert.Equal(t, game.KindEmoji, info.Kind)
	assert.Equal(t, int64(-100), info.ChatID)
	assert.Equal(t, int64(1), info.UserID)

	a.End()
	_, active = a.Status()
	assert.False(t, active)

	// End is idempotent.
	a.End()
	_, active = a.Status()
	assert.False(t, active)
}

func TestTryStartBusy(t *testing.T) {
	a := New(time.Hour)

	require.NoError(t, a.TryStart(game.KindEmoji, -100, 1))

	err := a.TryStart(game.KindQuiz, -200, 2)
	var busy *BusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, game.KindEmoji, busy.Active.Kind)
	assert.Equal(t, int64(-100), busy.Active.ChatID)
	assert.Equal(t, int64(1), busy.Active.UserID)
}

func TestCooldownBlocksAndExpires(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := New(60 * time.Minute)
	a.now = func() time.Time { return now }

	require.NoError(t, a.TryStart(game.KindQuiz, -100, 7))
	a.End()

	// Within the window the same user is blocked.
	now = now.Add(10 * time.Minute)
	err := a.TryStart(game.KindEmoji, -100, 7)
	var cd *CooldownError
	require.ErrorAs(t, err, &cd)
	assert.Equal(t, game.KindQuiz, cd.LastKind)
	assert.Equal(t, 50*time.Minute, cd.Remaining)

	// A different user is not.
	require.NoError(t, a.TryStart(game.KindEmoji, -100, 8))
	a.End()

	// After the window elapses the original user may start again.
	now = now.Add(51 * time.Minute)
	require.NoError(t, a.TryStart(game.KindEmoji, -100, 7))
}

func TestCancelForgivesCooldown(t *testing.T) {
	a := New(time.Hour)

	// Cancel on an empty slot is a no-op.
	a.Cancel()

	require.NoError(t, a.TryStart(game.KindEmoji, -100, 7))
	a.Cancel()

	_, active := a.Status()
	assert.False(t, active)

	// The cancelled start left no cooldown stamp behind.
	require.NoError(t, a.TryStart(game.KindEmoji, -100, 7))
}

func TestEndKeepsCooldown(t *testing.T) {
	a := New(time.Hour)

	require.NoError(t, a.TryStart(game.KindEmoji, -100, 7))
	a.End()

	err := a.TryStart(game.KindEmoji, -100, 7)
	var cd *CooldownError
	assert.ErrorAs(t, err, &cd)
}

func TestSetCooldownTakesEffect(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := New(60 * time.Minute)
	a.now = func() time.Time { return now }

	require.NoError(t, a.TryStart(game.KindQuiz, -100, 7))
	a.End()

	a.SetCooldown(5 * time.Minute)
	assert.Equal(t, 5*time.Minute, a.CooldownWindow())

	now = now.Add(6 * time.Minute)
	require.NoError(t, a.TryStart(game.KindQuiz, -100, 7))
}

func TestRenewKeepsSlotOccupied(t *testing.T) {
	a := New(time.Hour)

	require.NoError(t, a.TryStart(game.KindEmoji, -100, 1))
	a.Renew(game.KindEmoji, -100, 1)

	info, active := a.Status()
	require.True(t, active)
	assert.Equal(t, int64(1), info.UserID)

	// The renewed slot still blocks everyone else.
	err := a.TryStart(game.KindQuiz, -200, 2)
	var busy *BusyError
	assert.ErrorAs(t, err, &busy)
}

// TestConcurrentStartProperty: for any number of concurrent TryStart calls
// from distinct users against an empty slot, exactly one succeeds.
func TestConcurrentStartProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 32).Draw(t, "starters")
		a := New(time.Hour)

		var wins, busies int64
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(userID int64) {
				defer wg.Done()
				err := a.TryStart(game.KindEmoji, -100, userID)
				switch {
				case err == nil:
					atomic.AddInt64(&wins, 1)
				default:
					var busy *BusyError
					if errors.As(err, &busy) {
						atomic.AddInt64(&busies, 1)
					}
				}
			}(int64(i + 1))
		}
		wg.Wait()

		if wins != 1 {
			t.Fatalf("expected exactly one winner, got %d", wins)
		}
		if busies != int64(n-1) {
			t.Fatalf("expected %d busy results, got %d", n-1, busies)
		}
	})
}
