package handler

import (
	"context"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-activity-bot/internal/config"
	"telegram-activity-bot/internal/model"
	"telegram-activity-bot/internal/service"
)

// ActivityHandler turns ordinary chat traffic into ledger points. It is
// the catch-all for text and media after commands are routed.
type ActivityHandler struct {
	cfg       *config.Config
	ledger    *service.ActivityService
	games     *GameHandler
	questions *QuestionHandler
	profiles  *service.ProfileService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(
	cfg *config.Config,
	ledger *service.ActivityService,
	games *GameHandler,
	questions *QuestionHandler,
	profiles *service.ProfileService,
) *ActivityHandler {
	return &ActivityHandler{
		cfg:       cfg,
		ledger:    ledger,
		games:     games,
		questions: questions,
		profiles:  profiles,
	}
}

// HandleText processes every non-command text message: first as a game
// submission, then as a daily-question reply, and finally as ordinary
// activity points.
func (h *ActivityHandler) HandleText(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	msg := c.Message()
	if chat == nil || sender == nil || msg == nil || chat.Type == tele.ChatPrivate {
		return nil
	}

	ctx := context.Background()
	h.seen(ctx, chat, sender)

	// A live game owns the holder's plain messages.
	consumed, err := h.games.TrySubmit(c)
	if consumed || err != nil {
		return err
	}

	// A reply answering the daily question earns the credit instead of
	// ordinary points. Repeat answers fall through to reply points.
	if msg.ReplyTo != nil {
		credited, err := h.questions.TryCredit(c)
		if credited || err != nil {
			return err
		}
	}

	category, points := h.classify(msg)
	promo, err := h.ledger.Record(ctx, chat.ID, sender.ID, category, points)
	if err != nil {
		log.Error().Err(err).Msg("Failed to record message activity")
		return nil
	}

	if promo != nil {
		return announcePromotion(c, sender, promo)
	}
	return nil
}

// HandleMedia awards media points for photos, videos, stickers and the
// like.
func (h *ActivityHandler) HandleMedia(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil || chat.Type == tele.ChatPrivate {
		return nil
	}

	ctx := context.Background()
	h.seen(ctx, chat, sender)

	promo, err := h.ledger.Record(ctx, chat.ID, sender.ID, model.CategoryMedia, h.cfg.Points.Media)
	if err != nil {
		log.Error().Err(err).Msg("Failed to record media activity")
		return nil
	}

	if promo != nil {
		return announcePromotion(c, sender, promo)
	}
	return nil
}

// seen refreshes the chat and user profiles from the update.
func (h *ActivityHandler) seen(ctx context.Context, chat *tele.Chat, sender *tele.User) {
	h.profiles.Seen(ctx,
		&model.Chat{ID: chat.ID, Title: chat.Title},
		&model.User{
			TelegramID: sender.ID,
			Username:   sender.Username,
			FirstName:  sender.FirstName,
			LastName:   sender.LastName,
		},
	)
}

// classify picks the ledger category and point value for a text message.
// Replies outrank length: replying is the engagement being rewarded.
func (h *ActivityHandler) classify(msg *tele.Message) (string, float64) {
	if msg.ReplyTo != nil {
		return model.CategoryReply, h.cfg.Points.Reply
	}
	if utf8.RuneCountInString(msg.Text) > h.cfg.Points.LongMessageRunes {
		return model.CategoryLongMessage, h.cfg.Points.LongMessage
	}
	return model.CategoryMessage, h.cfg.Points.Message
}
