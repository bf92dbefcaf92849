package handler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-activity-bot/internal/game/arbiter"
	"telegram-activity-bot/internal/model"
	"telegram-activity-bot/internal/service"
)

// AdminHandler handles admin-only commands. The admin middleware has
// already verified the sender.
type AdminHandler struct {
	ledger  *service.ActivityService
	arbiter *arbiter.Arbiter
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ledger *service.ActivityService, arb *arbiter.Arbiter) *AdminHandler {
	return &AdminHandler{ledger: ledger, arbiter: arb}
}

// HandleAddPoints handles /add_points. Reply to a user's message with
// "/add_points <points>", or use "/add_points <user_id> <points>".
func (h *AdminHandler) HandleAddPoints(c tele.Context) error {
	chat := c.Chat()
	msg := c.Message()
	if chat == nil || msg == nil {
		return nil
	}

	args := c.Args()
	var userID int64
	var points float64
	var err error

	switch {
	case msg.ReplyTo != nil && msg.ReplyTo.Sender != nil && len(args) == 1:
		userID = msg.ReplyTo.Sender.ID
		points, err = strconv.ParseFloat(args[0], 64)
	case len(args) == 2:
		userID, err = strconv.ParseInt(args[0], 10, 64)
		if err == nil {
			points, err = strconv.ParseFloat(args[1], 64)
		}
	default:
		return c.Reply("Usage: reply with /add_points <points>, or /add_points <user_id> <points>")
	}
	if err != nil {
		return c.Reply("❌ Points must be a number, e.g. /add_points 5 or /add_points 5.5")
	}

	promo, err := h.ledger.Record(context.Background(), chat.ID, userID, model.CategoryManual, points)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Manual point adjustment failed")
		return c.Reply("❌ Could not adjust points")
	}

	log.Info().
		Int64("admin_id", c.Sender().ID).
		Int64("user_id", userID).
		Float64("points", points).
		Msg("Manual point adjustment")

	if err := c.Reply(fmt.Sprintf("✅ Adjusted user %d by %+.1f points", userID, points)); err != nil {
		return err
	}
	if promo != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil {
		return announcePromotion(c, msg.ReplyTo.Sender, promo)
	}
	return nil
}

// HandleSetCooldown handles /set_cooldown <minutes>: changes the game
// cooldown window at runtime.
func (h *AdminHandler) HandleSetCooldown(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Reply(fmt.Sprintf("Usage: /set_cooldown <minutes>\nCurrent: %s", h.arbiter.CooldownWindow()))
	}

	minutes, err := strconv.Atoi(args[0])
	if err != nil || minutes < 0 {
		return c.Reply("❌ Minutes must be a non-negative integer")
	}

	h.arbiter.SetCooldown(time.Duration(minutes) * time.Minute)
	return c.Reply(fmt.Sprintf("✅ Game cooldown set to %d minutes", minutes))
}
