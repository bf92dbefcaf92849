// Package game defines the puzzle engine interface and the shared
// attempt-decaying reward policy for the activity bot's mini-games.
package game

// Kind identifies one of the mini-game variants.
type Kind string

const (
	KindEmoji Kind = "emoji"
	KindQuiz  Kind = "quiz"
)

// DisplayName returns a human-readable game name.
func (k Kind) DisplayName() string {
	switch k {
	case KindEmoji:
		return "Guess the Emoji"
	case KindQuiz:
		return "Quiz"
	default:
		return string(k)
	}
}

// Verdict is the outcome of checking one submitted answer.
type Verdict int

const (
	// VerdictWrong is a valid but incorrect answer; it consumes an attempt.
	VerdictWrong Verdict = iota
	// VerdictCorrect solves the live challenge.
	VerdictCorrect
	// VerdictInvalid is a submission that is not a recognizable option
	// (quiz only); it does not consume an attempt.
	VerdictInvalid
)

// Engine is a puzzle engine holding at most one live challenge. Engines
// are not safe for concurrent use; the game service serializes access.
type Engine interface {
	// Kind returns the engine's game kind.
	Kind() Kind

	// Command returns the chat command that starts this game.
	Command() string

	// Next draws a random challenge, replacing any live one, and returns
	// the prompt to present to players.
	Next() (string, error)

	// Check validates a submitted answer against the live challenge.
	// With no live challenge every submission is wrong.
	Check(answer string) Verdict

	// Reveal returns the canonical answer of the live challenge.
	Reveal() string

	// Prompt re-renders the live challenge's prompt, empty when none is
	// live.
	Prompt() string

	// Reset discards the live challenge.
	Reset()

	// BaseReward returns the base points B for the reward curve.
	BaseReward() float64
}

const (
	// MaxAttempts is the number of wrong answers allowed before the next
	// submission exhausts the game.
	MaxAttempts = 3

	// MinSuccessReward is the floor of the decaying reward curve.
	MinSuccessReward = 1.0

	// ConsolationReward is granted when attempts are exhausted, regardless
	// of the engine's base reward.
	ConsolationReward = 0.5

	// AttemptPenalty is deducted from the base reward per prior attempt.
	AttemptPenalty = 0.5
)

// SuccessReward computes the points for a correct answer given the number
// of attempts already failed: max(base - attempts*0.5, 1.0).
func SuccessReward(base float64, attempts int) float64 {
	reward := base - float64(attempts)*AttemptPenalty
	if reward < MinSuccessReward {
		return MinSuccessReward
	}
	return reward
}
