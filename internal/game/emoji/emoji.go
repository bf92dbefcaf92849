// Package emoji implements the "guess by emoji" riddle engine: players
// name the movie, game or show encoded as an emoji sequence.
package emoji

import (
	"errors"
	"math/rand"
	"strings"

	"telegram-activity-bot/internal/game"
)

// BaseReward is the base points for a correct riddle answer.
const BaseReward = 5.0

// ErrEmptyPool is returned when the engine has no riddles to draw from.
var ErrEmptyPool = errors.New("emoji riddle pool is empty")

// defaultRiddles maps an emoji sequence to its canonical answer.
var defaultRiddles = map[string]string{
	"🧙‍♂️📓⚡🔮":  "Harry Potter",
	"🦁👑🌍":     "The Lion King",
	"👸❄️⛄":     "Frozen",
	"👠🧚‍♀️🎃":   "Cinderella",
	"🚢❄️💑":     "Titanic",
	"🕷️🕸️👨":    "Spider-Man",
	"🤖👽💥":     "Transformers",
	"🦖🏝️🚙":    "Jurassic Park",
	"🧸👦🍯":     "Winnie the Pooh",
	"👻👻🔫":     "Ghostbusters",
	"👨‍👩‍👧📦🏠": "Up",
	"🧠😢😡😄":    "Inside Out",
	"🤵🔫🕴️":    "James Bond",
	"🔍🧩🕵️":    "Sherlock Holmes",
	"👑💍🧙‍♂️":   "The Lord of the Rings",
	"🤖❤️🌎":     "WALL-E",
	"🦇🃏🌃":     "Batman",
	"🧜‍♀️🐠🌊":   "The Little Mermaid",
	"🔴⚔️👽":     "Star Wars",
	"🍄👨🐢":     "Mario",
	"⛏️🌳🧱":    "Minecraft",
	"🔫🎮🎖️":    "Call of Duty",
	"🚗🏎️💨":    "Need for Speed",
	"🏆⚽🎮":     "FIFA",
	"🧙‍♂️🐲👑":   "Skyrim",
	"🧟🔫🏙️":    "Resident Evil",
	"🗡️🛡️🐉":   "Dark Souls",
	"🤖🦾🤯":     "Cyberpunk 2077",
	"🟡👨‍👩‍👧‍👦🍩": "The Simpsons",
	"👨‍🔬👦🔬":   "Rick and Morty",
	"🏰🐉👑":     "Game of Thrones",
	"🧪👨‍🔬💊":   "Breaking Bad",
	"👽👧🚲":     "Stranger Things",
	"🐼🥋🐯":     "Kung Fu Panda",
	"🔥🌪️💧":    "Avatar: The Last Airbender",
}

// Engine holds the riddle pool and at most one live challenge.
type Engine struct {
	riddles map[string]string
	prompt  string
	answer  string
	rng     *rand.Rand
}

// New creates an engine over the default riddle pool.
func New() *Engine {
	return NewWithPool(defaultRiddles)
}

// NewWithPool creates an engine over a custom pool.
func NewWithPool(riddles map[string]string) *Engine {
	return &Engine{
		riddles: riddles,
		rng:     rand.New(rand.NewSource(rand.Int63())),
	}
}

// Kind returns the engine's game kind.
func (e *Engine) Kind() game.Kind {
	return game.KindEmoji
}

// Command returns the command that starts this game.
func (e *Engine) Command() string {
	return "emoji_game"
}

// BaseReward returns the base points for the reward curve.
func (e *Engine) BaseReward() float64 {
	return BaseReward
}

// Next draws a random riddle, replacing any live one.
func (e *Engine) Next() (string, error) {
	if len(e.riddles) == 0 {
		return "", ErrEmptyPool
	}

	i := e.rng.Intn(len(e.riddles))
	for prompt, answer := range e.riddles {
		if i == 0 {
			e.prompt = prompt
			e.answer = answer
			return prompt, nil
		}
		i--
	}
	return "", ErrEmptyPool // unreachable
}

// Check compares the submission against the live answer, case-insensitive
// exact match. With no live challenge every submission is wrong.
func (e *Engine) Check(answer string) game.Verdict {
	if e.answer == "" {
		return game.VerdictWrong
	}
	if strings.EqualFold(strings.TrimSpace(answer), e.answer) {
		return game.VerdictCorrect
	}
	return game.VerdictWrong
}

// Reveal returns the live answer.
func (e *Engine) Reveal() string {
	return e.answer
}

// Prompt returns the live riddle.
func (e *Engine) Prompt() string {
	return e.prompt
}

// Reset discards the live challenge.
func (e *Engine) Reset() {
	e.prompt = ""
	e.answer = ""
}
