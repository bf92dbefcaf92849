package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"

	"telegram-activity-bot/internal/game"
	"telegram-activity-bot/internal/game/arbiter"
	"telegram-activity-bot/internal/model"
)

// Outcome classifies a game submission.
type Outcome int

const (
	// OutcomeWrong is a valid but incorrect answer; an attempt was consumed.
	OutcomeWrong Outcome = iota
	// OutcomeCorrect solved the challenge; the game ended.
	OutcomeCorrect
	// OutcomeExhausted is a submission made after all attempts were spent;
	// the game ended with a consolation reward.
	OutcomeExhausted
	// OutcomeInvalid is an unparseable submission; no attempt was consumed.
	OutcomeInvalid
)

// SubmitResult describes what a submission did to the live game.
type SubmitResult struct {
	Outcome      Outcome
	AttemptsLeft int
	Answer       string // revealed answer on a terminal outcome
	Points       float64
	Promotion    *Promotion
	Replay       bool
	ReplayPrompt string
}

// session is the live game bound to the arbiter slot.
type session struct {
	kind     game.Kind
	chatID   int64
	userID   int64
	attempts int
}

// GameService runs the mini-games: one global slot, attempt tracking,
// rewards through the ledger, and the chance-based replay round.
type GameService struct {
	mu      sync.Mutex
	engines map[game.Kind]game.Engine
	arbiter *arbiter.Arbiter
	ledger  Recorder

	current *session

	replayChance float64
	// rng is injectable so the replay roll is deterministic in tests.
	rng func() float64
}

// NewGameService creates a GameService over the given engines and slot
// arbiter.
func NewGameService(engines []game.Engine, arb *arbiter.Arbiter, ledger Recorder, replayChance float64) *GameService {
	byKind := make(map[game.Kind]game.Engine, len(engines))
	for _, e := range engines {
		byKind[e.Kind()] = e
	}
	return &GameService{
		engines:      byKind,
		arbiter:      arb,
		ledger:       ledger,
		replayChance: replayChance,
		rng:          rand.Float64,
	}
}

// Start claims the global slot and draws a challenge. It returns the
// prompt to post, or a *arbiter.BusyError / *arbiter.CooldownError when
// the slot is unavailable.
func (s *GameService) Start(ctx context.Context, kind game.Kind, chatID, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine, ok := s.engines[kind]
	if !ok {
		return "", fmt.Errorf("no engine for game kind %q", kind)
	}

	if err := s.arbiter.TryStart(kind, chatID, userID); err != nil {
		return "", err
	}

	prompt, err := engine.Next()
	if err != nil {
		// No challenge was ever shown, so the cooldown stamped by TryStart
		// is forgiven along with the slot.
		s.arbiter.Cancel()
		return "", fmt.Errorf("failed to draw challenge: %w", err)
	}

	s.current = &session{kind: kind, chatID: chatID, userID: userID}
	return prompt, nil
}

// Submit checks a text message against the live game. It returns nil when
// the message is not a submission for the caller: no live game, another
// chat, or another user's game.
func (s *GameService) Submit(ctx context.Context, chatID, userID int64, answer string) (*SubmitResult, error) {
	s.mu.Lock()

	sess := s.current
	if sess == nil || sess.chatID != chatID || sess.userID != userID {
		s.mu.Unlock()
		return nil, nil
	}

	engine := s.engines[sess.kind]
	res := &SubmitResult{}

	switch verdict := engine.Check(answer); {
	case verdict == game.VerdictInvalid:
		// Invalid input never consumes an attempt, even when none are
		// left: only a recognizable answer can end the game.
		res.Outcome = OutcomeInvalid
		res.AttemptsLeft = game.MaxAttempts - sess.attempts

	case sess.attempts >= game.MaxAttempts:
		// Attempts were already spent: the next valid submission ends the
		// game no matter what it says.
		res.Outcome = OutcomeExhausted
		res.Answer = engine.Reveal()
		res.Points = game.ConsolationReward
		s.finish(res, sess, engine)

	case verdict == game.VerdictCorrect:
		res.Outcome = OutcomeCorrect
		res.Answer = engine.Reveal()
		res.Points = game.SuccessReward(engine.BaseReward(), sess.attempts)
		s.finish(res, sess, engine)

	default:
		sess.attempts++
		res.Outcome = OutcomeWrong
		res.AttemptsLeft = game.MaxAttempts - sess.attempts
	}

	category := categoryFor(sess.kind)
	s.mu.Unlock()

	// Ledger writes stay outside the lock so a slow database never blocks
	// slot arbitration.
	if res.Points > 0 {
		promo, err := s.ledger.Record(ctx, chatID, userID, category, res.Points)
		if err != nil {
			return res, err
		}
		res.Promotion = promo
	}

	return res, nil
}

// finish ends the current game and rolls for a replay round. On replay the
// same holder keeps the slot with a fresh challenge and attempts; both the
// roll and the renewal happen under the service lock so no other start can
// slip in between.
func (s *GameService) finish(res *SubmitResult, sess *session, engine game.Engine) {
	if s.rng() < s.replayChance {
		prompt, err := engine.Next()
		if err == nil {
			s.arbiter.Renew(sess.kind, sess.chatID, sess.userID)
			s.current = &session{kind: sess.kind, chatID: sess.chatID, userID: sess.userID}
			res.Replay = true
			res.ReplayPrompt = prompt

			log.Info().
				Str("game", string(sess.kind)).
				Int64("user_id", sess.userID).
				Msg("Replay round granted")
			return
		}
		log.Warn().Err(err).Str("game", string(sess.kind)).Msg("Replay draw failed, ending game")
	}

	engine.Reset()
	s.current = nil
	s.arbiter.End()
}

// Abort force-ends the live game and reveals its answer. The second return
// is false when no game is live.
func (s *GameService) Abort() (game.Kind, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return "", "", false
	}

	sess := s.current
	engine := s.engines[sess.kind]
	answer := engine.Reveal()

	engine.Reset()
	s.current = nil
	s.arbiter.End()

	log.Info().Str("game", string(sess.kind)).Int64("user_id", sess.userID).Msg("Game aborted")
	return sess.kind, answer, true
}

// Commands maps each engine's chat command to its kind, so handler routing
// is derived from the engines themselves.
func (s *GameService) Commands() map[string]game.Kind {
	cmds := make(map[string]game.Kind, len(s.engines))
	for kind, e := range s.engines {
		cmds[e.Command()] = kind
	}
	return cmds
}

// LivePrompt returns the live challenge's prompt for status displays. The
// second return is false when no game is live.
func (s *GameService) LivePrompt() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return "", false
	}
	return s.engines[s.current.kind].Prompt(), true
}

// Status reports the live slot and the attempts spent so far.
func (s *GameService) Status() (arbiter.Info, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.arbiter.Status()
	if !ok || s.current == nil {
		return arbiter.Info{}, 0, false
	}
	return info, s.current.attempts, true
}

// categoryFor maps a game kind to its ledger category.
func categoryFor(kind game.Kind) string {
	if kind == game.KindQuiz {
		return model.CategoryQuiz
	}
	return model.CategoryEmojiGame
}
