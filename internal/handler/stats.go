package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-activity-bot/internal/model"
	"telegram-activity-bot/internal/repository"
	"telegram-activity-bot/internal/service"
)

// TopWindow is the leaderboard window for /top.
const TopWindow = 7 * 24 * time.Hour

// StatsHandler handles the read-only stats commands.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// HandleStats handles the /stats command: the sender's profile in this
// chat.
func (h *StatsHandler) HandleStats(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil || chat.Type == tele.ChatPrivate {
		return nil
	}

	stats, err := h.stats.UserStats(context.Background(), chat.ID, sender.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Reply("ℹ️ No activity recorded for you yet. Say something!")
		}
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load user stats")
		return c.Reply("❌ Could not load your stats")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Stats for %s\n\n", stats.User.DisplayName())
	fmt.Fprintf(&b, "🏅 Rank: %s\n", stats.Rank.Name)
	fmt.Fprintf(&b, "⭐ Total points: %.1f\n", stats.TotalPoints)
	fmt.Fprintf(&b, "💬 Messages here: %d (%.1f points)\n", stats.Messages, stats.ChatPoints)
	if stats.HasNext {
		fmt.Fprintf(&b, "⬆️ %.1f points to %s\n", stats.PointsToGo, stats.NextRank.Name)
	} else {
		b.WriteString("👑 Top of the ladder!\n")
	}
	return c.Reply(b.String())
}

// HandleTop handles the /top command: the chat leaderboard for the last
// week.
func (h *StatsHandler) HandleTop(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || chat.Type == tele.ChatPrivate {
		return nil
	}

	top, err := h.stats.TopUsers(context.Background(), chat.ID, TopWindow, 10)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to load leaderboard")
		return c.Reply("❌ Could not load the leaderboard")
	}
	if len(top) == 0 {
		return c.Reply("ℹ️ No activity this week yet")
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var b strings.Builder
	b.WriteString("🏆 This week's most active:\n\n")
	for i, u := range top {
		marker := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			marker = medals[i]
		}
		fmt.Fprintf(&b, "%s %s — %.1f points (%d messages)\n", marker, u.DisplayName(), u.TotalPoints, u.Messages)
	}
	return c.Send(b.String())
}

// HandleGameStats handles the /game_stats command: per-game totals and
// the chat's top game earners.
func (h *StatsHandler) HandleGameStats(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || chat.Type == tele.ChatPrivate {
		return nil
	}

	report, err := h.stats.GameReport(context.Background(), chat.ID, 5)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to load game stats")
		return c.Reply("❌ Could not load game stats")
	}
	if len(report.Totals) == 0 {
		return c.Reply("ℹ️ No games played here yet. Start one with /emoji_game or /quiz!")
	}

	var b strings.Builder
	b.WriteString("🎮 Game stats:\n\n")
	for _, t := range report.Totals {
		fmt.Fprintf(&b, "%s — %d plays, %.1f points handed out\n", gameCategoryName(t.Category), t.Plays, t.Points)
	}
	if len(report.TopPlayers) > 0 {
		b.WriteString("\nTop players:\n")
		for i, u := range report.TopPlayers {
			fmt.Fprintf(&b, "%d. %s — %.1f points (%d plays)\n", i+1, u.DisplayName(), u.TotalPoints, u.Messages)
		}
	}
	return c.Send(b.String())
}

// gameCategoryName maps a ledger game category to its display name.
func gameCategoryName(category string) string {
	switch category {
	case model.CategoryEmojiGame:
		return "Guess the Emoji"
	case model.CategoryQuiz:
		return "Quiz"
	default:
		return category
	}
}

// HandleInactive handles the /inactive admin command: members with no
// activity for the given number of days (default 14).
func (h *StatsHandler) HandleInactive(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || chat.Type == tele.ChatPrivate {
		return nil
	}

	days := 14
	if args := c.Args(); len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return c.Reply("Usage: /inactive [days]")
		}
		days = n
	}

	users, err := h.stats.InactiveUsers(context.Background(), chat.ID, days)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to load inactive users")
		return c.Reply("❌ Could not load inactive users")
	}
	if len(users) == 0 {
		return c.Reply(fmt.Sprintf("✅ Everyone has been active in the last %d days", days))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💤 Quiet for %d+ days:\n\n", days)
	for _, u := range users {
		fmt.Fprintf(&b, "• %s (%.1f points lifetime)\n", u.DisplayName(), u.TotalPoints)
	}
	return c.Send(b.String())
}
