// Package broadcast runs the scheduled announcements: the question of the
// day, the weekly activity report, the daily most-active shoutout and the
// event reminder sweep.
package broadcast

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-activity-bot/internal/config"
	"telegram-activity-bot/internal/repository"
	"telegram-activity-bot/internal/service"
)

// eventReminderWindow is how far ahead the reminder sweep looks for
// events whose reminder has not gone out yet.
const eventReminderWindow = 24 * time.Hour

// Broadcaster schedules and sends recurring messages to every known group
// chat.
type Broadcaster struct {
	bot       *tele.Bot
	cfg       *config.Config
	chats     *repository.ChatRepository
	questions *service.QuestionService
	stats     *service.StatsService
	events    *service.EventService
	cron      *cron.Cron
}

// New creates a Broadcaster. Call Start to begin scheduling.
func New(
	bot *tele.Bot,
	cfg *config.Config,
	chats *repository.ChatRepository,
	questions *service.QuestionService,
	stats *service.StatsService,
	events *service.EventService,
) *Broadcaster {
	return &Broadcaster{
		bot:       bot,
		cfg:       cfg,
		chats:     chats,
		questions: questions,
		stats:     stats,
		events:    events,
		cron:      cron.New(),
	}
}

// Start registers the cron jobs and starts the scheduler.
func (b *Broadcaster) Start() error {
	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"daily question", b.cfg.Broadcast.DailyQuestionCron, b.sendDailyQuestion},
		{"weekly report", b.cfg.Broadcast.WeeklyReportCron, b.sendWeeklyReport},
		{"most active", b.cfg.Broadcast.ActiveUserCron, b.sendMostActive},
		{"event reminders", b.cfg.Broadcast.EventReminderCron, b.sendEventReminders},
	}

	for _, j := range jobs {
		if _, err := b.cron.AddFunc(j.spec, j.run); err != nil {
			return fmt.Errorf("failed to schedule %s (%q): %w", j.name, j.spec, err)
		}
		log.Info().Str("job", j.name).Str("cron", j.spec).Msg("Broadcast scheduled")
	}

	b.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (b *Broadcaster) Stop() {
	ctx := b.cron.Stop()
	<-ctx.Done()
}

// groups lists the chats to broadcast to, logging instead of failing.
func (b *Broadcaster) groups(ctx context.Context) []int64 {
	chats, err := b.chats.ListGroups(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list chats for broadcast")
		return nil
	}

	ids := make([]int64, 0, len(chats))
	for _, c := range chats {
		ids = append(ids, c.ID)
	}
	return ids
}

// sendDailyQuestion posts a fresh question of the day in every group.
func (b *Broadcaster) sendDailyQuestion() {
	ctx := context.Background()
	for _, chatID := range b.groups(ctx) {
		question := b.questions.Draw()
		msg, err := b.bot.Send(&tele.Chat{ID: chatID},
			"💬 Question of the day:\n\n"+question+"\n\nReply to this message to answer!")
		if err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send daily question")
			continue
		}

		if err := b.questions.Published(ctx, chatID, int64(msg.ID), question); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to record daily question")
		}
	}
}

// sendWeeklyReport posts the 7-day activity summary in every group.
func (b *Broadcaster) sendWeeklyReport() {
	ctx := context.Background()
	for _, chatID := range b.groups(ctx) {
		report, err := b.stats.ChatReport(ctx, chatID, 7)
		if err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to build weekly report")
			continue
		}
		if report.Messages == 0 {
			continue
		}

		var sb strings.Builder
		sb.WriteString("📈 Weekly activity report\n\n")
		fmt.Fprintf(&sb, "💬 Messages: %d\n", report.Messages)
		fmt.Fprintf(&sb, "⭐ Points earned: %.1f\n", report.TotalPoints)
		fmt.Fprintf(&sb, "👥 Active members: %d\n", report.ActiveUsers)
		if len(report.Daily) > 0 {
			sb.WriteString("\nBy day:\n")
			for _, d := range report.Daily {
				fmt.Fprintf(&sb, "  %s — %d messages\n", d.Day.Format("Mon Jan 2"), d.Messages)
			}
		}

		if _, err := b.bot.Send(&tele.Chat{ID: chatID}, sb.String()); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send weekly report")
		}
	}
}

// sendEventReminders announces events starting within the window, once per
// event.
func (b *Broadcaster) sendEventReminders() {
	ctx := context.Background()

	due, err := b.events.DueReminders(ctx, eventReminderWindow)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list due event reminders")
		return
	}

	for _, ev := range due {
		var sb strings.Builder
		fmt.Fprintf(&sb, "📅 Reminder: %s starts %s", ev.Title, ev.EventAt.Format("Mon Jan 2 at 15:04"))
		if ev.Description != "" {
			sb.WriteString("\n" + ev.Description)
		}

		participants, err := b.events.Participants(ctx, ev.ID)
		if err != nil {
			log.Error().Err(err).Int64("event_id", ev.ID).Msg("Failed to list event participants")
		} else if len(participants) > 0 {
			names := make([]string, 0, len(participants))
			for _, p := range participants {
				names = append(names, p.DisplayName())
			}
			sb.WriteString("\n\nSigned up: " + strings.Join(names, ", "))
		}

		if _, err := b.bot.Send(&tele.Chat{ID: ev.ChatID}, sb.String()); err != nil {
			log.Error().Err(err).Int64("event_id", ev.ID).Msg("Failed to send event reminder")
			continue
		}

		// Marked only after a successful send, so a failed delivery is
		// retried on the next sweep.
		if err := b.events.MarkReminded(ctx, ev.ID); err != nil {
			log.Error().Err(err).Int64("event_id", ev.ID).Msg("Failed to mark event reminded")
		}
	}
}

// sendMostActive celebrates the most active member of the last 24 hours.
func (b *Broadcaster) sendMostActive() {
	ctx := context.Background()
	for _, chatID := range b.groups(ctx) {
		top, err := b.stats.MostActive(ctx, chatID)
		if err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to find most active user")
			continue
		}
		if top == nil {
			continue
		}

		msg := fmt.Sprintf("🌟 Most active today: %s with %d messages and %.1f points. Well done!",
			top.DisplayName(), top.Messages, top.TotalPoints)
		if _, err := b.bot.Send(&tele.Chat{ID: chatID}, msg); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send most-active shoutout")
		}
	}
}
