package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-activity-bot/internal/service"
)

// QuestionHandler handles question-of-the-day commands and crediting.
type QuestionHandler struct {
	questions *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questions *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// HandleRandomQuestion handles the /random_question admin command: post a
// question from the pool right now instead of waiting for the schedule.
func (h *QuestionHandler) HandleRandomQuestion(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || chat.Type == tele.ChatPrivate {
		return nil
	}

	question := h.questions.Draw()
	msg, err := c.Bot().Send(chat, "💬 Question of the day:\n\n"+question+"\n\nReply to this message to answer!")
	if err != nil {
		return err
	}

	if err := h.questions.Published(context.Background(), chat.ID, int64(msg.ID), question); err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to record question")
	}
	return nil
}

// TryCredit credits a reply when it answers a tracked question. It
// reports whether the credit was granted; an uncredited reply (repeat
// answer, or not a question at all) stays eligible for ordinary reply
// points.
func (h *QuestionHandler) TryCredit(c tele.Context) (bool, error) {
	chat := c.Chat()
	sender := c.Sender()
	msg := c.Message()
	if chat == nil || sender == nil || msg == nil || msg.ReplyTo == nil {
		return false, nil
	}

	credit, err := h.questions.OnReply(context.Background(), chat.ID, int64(msg.ReplyTo.ID), sender.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to credit question reply")
		return false, nil
	}
	if credit == nil {
		return false, nil
	}

	if credit.Promotion != nil {
		return true, announcePromotion(c, sender, credit.Promotion)
	}
	return true, nil
}

// HandleQuestionStats handles the /question_stats command: response counts
// for the chat's questions over the last week.
func (h *QuestionHandler) HandleQuestionStats(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || chat.Type == tele.ChatPrivate {
		return nil
	}

	stats, err := h.questions.Stats(context.Background(), chat.ID, time.Now().AddDate(0, 0, -7), 5)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load question stats")
		return c.Reply("❌ Could not load question stats")
	}
	if len(stats) == 0 {
		return c.Reply("ℹ️ No questions were asked here in the last week")
	}

	var b strings.Builder
	b.WriteString("💬 Recent questions:\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "\n%s — %s\n  %d answers, %.1f points handed out\n",
			s.AskedAt.Format("Jan 2"), s.Question, s.Responses, s.PointsTotal)
		if len(s.Participants) > 0 {
			fmt.Fprintf(&b, "  answered by: %s\n", strings.Join(s.Participants, ", "))
		}
	}
	return c.Send(b.String())
}
