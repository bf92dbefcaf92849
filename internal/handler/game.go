// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-activity-bot/internal/config"
	"telegram-activity-bot/internal/game"
	"telegram-activity-bot/internal/game/arbiter"
	"telegram-activity-bot/internal/service"
)

// GameHandler handles the mini-game commands and submissions.
type GameHandler struct {
	cfg   *config.Config
	games *service.GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(cfg *config.Config, games *service.GameService) *GameHandler {
	return &GameHandler{cfg: cfg, games: games}
}

// HandleStart returns the start handler for one game kind. The commands
// themselves come from the engines' Command values.
func (h *GameHandler) HandleStart(kind game.Kind) tele.HandlerFunc {
	return func(c tele.Context) error {
		return h.start(c, kind)
	}
}

func (h *GameHandler) start(c tele.Context, kind game.Kind) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}

	if chat.Type == tele.ChatPrivate {
		return c.Reply("❌ Games can only be played in group chats")
	}

	ctx := context.Background()
	prompt, err := h.games.Start(ctx, kind, chat.ID, sender.ID)
	if err != nil {
		var busy *arbiter.BusyError
		if errors.As(err, &busy) {
			return c.Reply(fmt.Sprintf("⏳ A %s game is already running (started %s ago). Wait for it to finish.",
				busy.Active.Kind.DisplayName(), busy.Elapsed.Round(time.Second)))
		}
		var cooldown *arbiter.CooldownError
		if errors.As(err, &cooldown) {
			return c.Reply(fmt.Sprintf("⏰ You played %s just %s ago. You can start a new game in %s.",
				cooldown.LastKind.DisplayName(),
				time.Since(cooldown.LastAt).Round(time.Second),
				cooldown.Remaining.Round(time.Second)))
		}
		log.Error().Err(err).Str("game", string(kind)).Msg("Failed to start game")
		return c.Reply("❌ Could not start the game, try again later")
	}

	header := fmt.Sprintf("🎮 %s started by %s!\nYou have %d attempts. Answer with a plain message.\n\n",
		kind.DisplayName(), mention(sender), game.MaxAttempts)
	return c.Send(header + prompt)
}

// TrySubmit feeds a plain text message to the live game. It reports
// whether the message was consumed as a game submission.
func (h *GameHandler) TrySubmit(c tele.Context) (bool, error) {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return false, nil
	}

	ctx := context.Background()
	res, err := h.games.Submit(ctx, chat.ID, sender.ID, c.Text())
	if err != nil {
		log.Error().Err(err).Msg("Game submission failed")
		return true, c.Reply("❌ Something went wrong, try again")
	}
	if res == nil {
		return false, nil
	}

	switch res.Outcome {
	case service.OutcomeInvalid:
		if res.AttemptsLeft > 0 {
			return true, c.Reply(fmt.Sprintf("🤔 That's not one of the options. Answer with the option number or its text (%d attempts left).", res.AttemptsLeft))
		}
		return true, c.Reply("🤔 That's not one of the options. No attempts left — your next valid answer ends the game.")

	case service.OutcomeWrong:
		if res.AttemptsLeft > 0 {
			return true, c.Reply(fmt.Sprintf("❌ Not quite! %d attempts left.", res.AttemptsLeft))
		}
		return true, c.Reply("❌ Not quite! No attempts left — your next answer ends the game.")

	case service.OutcomeCorrect:
		msg := fmt.Sprintf("🎉 Correct, %s! The answer was \"%s\". You earned %.1f points.",
			mention(sender), res.Answer, res.Points)
		if err := c.Send(msg); err != nil {
			return true, err
		}

	case service.OutcomeExhausted:
		msg := fmt.Sprintf("😔 Out of attempts. The answer was \"%s\". %s gets %.1f consolation points.",
			res.Answer, mention(sender), res.Points)
		if err := c.Send(msg); err != nil {
			return true, err
		}
	}

	if res.Promotion != nil {
		if err := announcePromotion(c, sender, res.Promotion); err != nil {
			return true, err
		}
	}

	if res.Replay {
		time.Sleep(h.cfg.Games.ReplayDelay)
		return true, c.Send("🎁 Bonus round! One more for free:\n\n" + res.ReplayPrompt)
	}

	return true, nil
}

// HandleEndGame handles the /end_game command. Only the game's starter or
// an admin may end it.
func (h *GameHandler) HandleEndGame(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	info, _, ok := h.games.Status()
	if !ok {
		return c.Reply("ℹ️ No game is running")
	}

	if info.UserID != sender.ID && !h.cfg.IsAdmin(sender.ID) {
		return c.Reply("❌ Only the player who started the game (or an admin) can end it")
	}

	kind, answer, ok := h.games.Abort()
	if !ok {
		return c.Reply("ℹ️ No game is running")
	}

	return c.Send(fmt.Sprintf("🛑 %s ended. The answer was \"%s\".", kind.DisplayName(), answer))
}

// HandleGameStatus handles the /game_status command.
func (h *GameHandler) HandleGameStatus(c tele.Context) error {
	info, attempts, ok := h.games.Status()
	if !ok {
		return c.Reply("ℹ️ No game is running. Start one with /emoji_game or /quiz!")
	}

	msg := fmt.Sprintf("🎮 %s in progress, started %s ago. Attempts used: %d of %d.",
		info.Kind.DisplayName(), info.Elapsed(time.Now()).Round(time.Second), attempts, game.MaxAttempts)
	if prompt, live := h.games.LivePrompt(); live && prompt != "" {
		msg += "\n\n" + prompt
	}
	return c.Reply(msg)
}

// mention renders a user reference the way Telegram group members read it.
func mention(u *tele.User) string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return u.FirstName
}

// announcePromotion posts the rank-up message for a user.
func announcePromotion(c tele.Context, u *tele.User, promo *service.Promotion) error {
	return c.Send(fmt.Sprintf("🏅 %s leveled up: %s → %s (%.1f points total)!",
		mention(u), promo.OldRank.Name, promo.NewRank.Name, promo.TotalPoints))
}
