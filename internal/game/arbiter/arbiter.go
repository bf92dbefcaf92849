// Package arbiter owns the bot-wide game slot and the per-user game
// cooldown records. Both are shared mutable state touched by every chat
// event, so a single mutex guards every check-and-set as one critical
// section.
package arbiter

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-activity-bot/internal/game"
)

// Info describes the occupant of the game slot.
type Info struct {
	Kind      game.Kind
	ChatID    int64
	UserID    int64
	StartedAt time.Time
}

// Elapsed returns how long the game has been running.
func (i Info) Elapsed(now time.Time) time.Duration {
	return now.Sub(i.StartedAt)
}

// BusyError reports that the slot is already occupied. The whole bot
// shares one slot: a game in any chat blocks game starts everywhere.
type BusyError struct {
	Active  Info
	Elapsed time.Duration
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("a %s game is already running in chat %d (started by %d, %s ago)",
		e.Active.Kind, e.Active.ChatID, e.Active.UserID, e.Elapsed.Round(time.Second))
}

// CooldownError reports that the requesting user started a game too
// recently.
type CooldownError struct {
	Remaining time.Duration
	LastKind  game.Kind
	LastAt    time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown: %s remaining after %s game", e.Remaining.Round(time.Second), e.LastKind)
}

type lastGame struct {
	at   time.Time
	kind game.Kind
}

// Arbiter enforces that at most one mini-game is active across the whole
// bot instance and that each user waits out a cooldown window between
// game starts. The window is runtime mutable.
type Arbiter struct {
	mu     sync.Mutex
	slot   *Info
	last   map[int64]lastGame
	window time.Duration

	now func() time.Time // injected for tests
}

// New creates an Arbiter with the given cooldown window.
func New(window time.Duration) *Arbiter {
	return &Arbiter{
		last:   make(map[int64]lastGame),
		window: window,
		now:    time.Now,
	}
}

// TryStart atomically occupies the slot for (kind, chatID, userID) and
// stamps the user's cooldown. Returns *BusyError if any game is active,
// *CooldownError if the user's last game is younger than the window.
func (a *Arbiter) TryStart(kind game.Kind, chatID, userID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()

	if a.slot != nil {
		return &BusyError{Active: *a.slot, Elapsed: now.Sub(a.slot.StartedAt)}
	}

	if prev, ok := a.last[userID]; ok {
		if remaining := a.window - now.Sub(prev.at); remaining > 0 {
			return &CooldownError{Remaining: remaining, LastKind: prev.kind, LastAt: prev.at}
		}
	}

	a.slot = &Info{Kind: kind, ChatID: chatID, UserID: userID, StartedAt: now}
	a.last[userID] = lastGame{at: now, kind: kind}

	log.Info().
		Str("kind", string(kind)).
		Int64("chat_id", chatID).
		Int64("user_id", userID).
		Msg("Game started")
	return nil
}

// Renew restarts the slot for the same holder without releasing it, so a
// replayed game can never be stolen by a concurrent start. The holder's
// cooldown stamp is refreshed.
func (a *Arbiter) Renew(kind game.Kind, chatID, userID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	a.slot = &Info{Kind: kind, ChatID: chatID, UserID: userID, StartedAt: now}
	a.last[userID] = lastGame{at: now, kind: kind}
}

// Cancel releases the slot and forgives the holder's cooldown stamp. Used
// when a started game never produced a challenge, so the holder is not
// locked out of a game they never got to play.
func (a *Arbiter) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.slot == nil {
		return
	}

	delete(a.last, a.slot.UserID)
	log.Info().
		Str("kind", string(a.slot.Kind)).
		Int64("user_id", a.slot.UserID).
		Msg("Game cancelled before it began")
	a.slot = nil
}

// End clears the slot. Idempotent: ending an empty slot is a no-op.
func (a *Arbiter) End() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.slot != nil {
		log.Info().
			Str("kind", string(a.slot.Kind)).
			Int64("chat_id", a.slot.ChatID).
			Msg("Game ended")
		a.slot = nil
	}
}

// Status returns the current occupant, if any.
func (a *Arbiter) Status() (Info, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.slot == nil {
		return Info{}, false
	}
	return *a.slot, true
}

// SetCooldown changes the cooldown window at runtime.
func (a *Arbiter) SetCooldown(window time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	log.Info().Dur("old", a.window).Dur("new", window).Msg("Game cooldown changed")
	a.window = window
}

// CooldownWindow returns the current cooldown window.
func (a *Arbiter) CooldownWindow() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.window
}
