package handler

import (
	"time"

	tele "gopkg.in/telebot.v3"
)

// weekdayChallenges is the rotating daily engagement prompt, one per
// weekday.
var weekdayChallenges = map[time.Weekday]string{
	time.Monday:    "📝 Monday — introductions day\nShare an interesting fact about yourself!",
	time.Tuesday:   "❓ Tuesday — question day\nAsk the chat something worth discussing!",
	time.Wednesday: "🎮 Wednesday — game day\nGuess the movie or game by emoji — try /emoji_game!",
	time.Thursday:  "📚 Thursday — tips day\nShare a useful tip or life hack!",
	time.Friday:    "😂 Friday — meme day\nPost your favorite meme or a funny story!",
	time.Saturday:  "🔄 Saturday — feedback day\nTell us what you think about this chat!",
	time.Sunday:    "🎯 Sunday — goals day\nWhat are your plans for the coming week?",
}

// challengeFor picks the engagement prompt for the given moment.
func challengeFor(t time.Time) string {
	return weekdayChallenges[t.Weekday()]
}

// ChallengeHandler handles the /challenge command.
type ChallengeHandler struct {
	now func() time.Time
}

// NewChallengeHandler creates a new ChallengeHandler.
func NewChallengeHandler() *ChallengeHandler {
	return &ChallengeHandler{now: time.Now}
}

// HandleChallenge handles the /challenge command: today's engagement
// prompt.
func (h *ChallengeHandler) HandleChallenge(c tele.Context) error {
	return c.Send(challengeFor(h.now()))
}
