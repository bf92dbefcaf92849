// Package quiz implements the multiple-choice quiz engine. Submissions
// are a 1-based option number or the option text; anything else is an
// invalid submission and does not count as an attempt.
package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"telegram-activity-bot/internal/game"
)

// BaseReward is the base points for a correct quiz answer.
const BaseReward = 3.0

// ErrEmptyPool is returned when the engine has no questions to draw from.
var ErrEmptyPool = errors.New("quiz question pool is empty")

// Question is one multiple-choice entry of the pool.
type Question struct {
	Text    string
	Options []string
	Correct int // index into Options
}

var defaultQuestions = []Question{
	{
		Text:    "Which country is the largest by area?",
		Options: []string{"China", "USA", "Russia", "Canada"},
		Correct: 2,
	},
	{
		Text:    "How many planets are in the Solar System?",
		Options: []string{"7", "8", "9", "10"},
		Correct: 1,
	},
	{
		Text:    "Who wrote 'War and Peace'?",
		Options: []string{"Dostoevsky", "Tolstoy", "Chekhov", "Pushkin"},
		Correct: 1,
	},
	{
		Text:    "Which element has the symbol 'O' in the periodic table?",
		Options: []string{"Tin", "Osmium", "Oxygen", "Gold"},
		Correct: 2,
	},
	{
		Text:    "What is the capital of Japan?",
		Options: []string{"Kyoto", "Osaka", "Tokyo", "Seoul"},
		Correct: 2,
	},
	{
		Text:    "In which year did World War II begin?",
		Options: []string{"1937", "1939", "1941", "1945"},
		Correct: 1,
	},
	{
		Text:    "Who was the first president of the United States?",
		Options: []string{"Thomas Jefferson", "George Washington", "Abraham Lincoln", "John Adams"},
		Correct: 1,
	},
	{
		Text:    "Which river is the longest in the world?",
		Options: []string{"Amazon", "Nile", "Yangtze", "Mississippi"},
		Correct: 0,
	},
	{
		Text:    "In which country is the Taj Mahal located?",
		Options: []string{"India", "Pakistan", "Iran", "UAE"},
		Correct: 0,
	},
	{
		Text:    "Which gas is the most abundant in Earth's atmosphere?",
		Options: []string{"Oxygen", "Carbon dioxide", "Nitrogen", "Argon"},
		Correct: 2,
	},
	{
		Text:    "Which is the fastest land animal?",
		Options: []string{"Lion", "Cheetah", "Antelope", "Tiger"},
		Correct: 1,
	},
	{
		Text:    "Who painted 'The Starry Night'?",
		Options: []string{"Claude Monet", "Pablo Picasso", "Vincent van Gogh", "Salvador Dali"},
		Correct: 2,
	},
	{
		Text:    "Which musical instrument has 88 keys?",
		Options: []string{"Organ", "Piano", "Accordion", "Synthesizer"},
		Correct: 1,
	},
	{
		Text:    "In which city were the first modern Olympic Games held?",
		Options: []string{"Paris", "Athens", "London", "Rome"},
		Correct: 1,
	},
	{
		Text:    "How many players are on a football team?",
		Options: []string{"10", "11", "12", "9"},
		Correct: 1,
	},
	{
		Text:    "Who founded Microsoft?",
		Options: []string{"Steve Jobs", "Bill Gates", "Mark Zuckerberg", "Elon Musk"},
		Correct: 1,
	},
	{
		Text:    "In which year was the first iPhone released?",
		Options: []string{"2005", "2007", "2009", "2010"},
		Correct: 1,
	},
	{
		Text:    "Which film won the Best Picture Oscar in 2020?",
		Options: []string{"1917", "Joker", "Parasite", "Once Upon a Time in Hollywood"},
		Correct: 2,
	},
	{
		Text:    "Who played Iron Man in the Marvel Cinematic Universe?",
		Options: []string{"Chris Evans", "Robert Downey Jr.", "Chris Hemsworth", "Mark Ruffalo"},
		Correct: 1,
	},
	{
		Text:    "Which country is the birthplace of pizza?",
		Options: []string{"France", "Spain", "Greece", "Italy"},
		Correct: 3,
	},
	{
		Text:    "What is traditional wasabi usually made from?",
		Options: []string{"Mustard", "Horseradish", "Green pepper", "Ginger"},
		Correct: 1,
	},
}

// Engine holds the question pool and at most one live question.
type Engine struct {
	pool    []Question
	current *Question
	rng     *rand.Rand
}

// New creates an engine over the default question pool.
func New() *Engine {
	return NewWithPool(defaultQuestions)
}

// NewWithPool creates an engine over a custom pool.
func NewWithPool(pool []Question) *Engine {
	return &Engine{
		pool: pool,
		rng:  rand.New(rand.NewSource(rand.Int63())),
	}
}

// Kind returns the engine's game kind.
func (e *Engine) Kind() game.Kind {
	return game.KindQuiz
}

// Command returns the command that starts this game.
func (e *Engine) Command() string {
	return "quiz"
}

// BaseReward returns the base points for the reward curve.
func (e *Engine) BaseReward() float64 {
	return BaseReward
}

// Next draws a random question, replacing any live one, and returns the
// formatted prompt with numbered options.
func (e *Engine) Next() (string, error) {
	if len(e.pool) == 0 {
		return "", ErrEmptyPool
	}

	q := e.pool[e.rng.Intn(len(e.pool))]
	e.current = &q
	return e.Prompt(), nil
}

// Prompt re-renders the live question with its numbered options.
func (e *Engine) Prompt() string {
	if e.current == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(e.current.Text)
	b.WriteString("\n")
	for i, opt := range e.current.Options {
		fmt.Fprintf(&b, "\n%d. %s", i+1, opt)
	}
	return b.String()
}

// Check resolves the submission to an option index and compares it to the
// correct one. A 1-based number in range or a case-insensitive option text
// is a valid selection; anything else is VerdictInvalid.
func (e *Engine) Check(answer string) game.Verdict {
	if e.current == nil {
		return game.VerdictWrong
	}

	idx, ok := e.resolveOption(strings.TrimSpace(answer))
	if !ok {
		return game.VerdictInvalid
	}
	if idx == e.current.Correct {
		return game.VerdictCorrect
	}
	return game.VerdictWrong
}

// resolveOption maps a submission to a 0-based option index.
func (e *Engine) resolveOption(answer string) (int, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		idx := n - 1
		if idx >= 0 && idx < len(e.current.Options) {
			return idx, true
		}
		return 0, false
	}
	for i, opt := range e.current.Options {
		if strings.EqualFold(answer, opt) {
			return i, true
		}
	}
	return 0, false
}

// Reveal returns the text of the correct option.
func (e *Engine) Reveal() string {
	if e.current == nil {
		return ""
	}
	return e.current.Options[e.current.Correct]
}

// Reset discards the live question.
func (e *Engine) Reset() {
	e.current = nil
}
