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

	"telegram-activity-bot/internal/config"
	"telegram-activity-bot/internal/repository"
	"telegram-activity-bot/internal/service"
)

// eventTimeLayout is the event time format accepted by /create_event.
const eventTimeLayout = "2006-01-02 15:04"

// EventHandler handles the scheduled-event commands.
type EventHandler struct {
	cfg    *config.Config
	events *service.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(cfg *config.Config, events *service.EventService) *EventHandler {
	return &EventHandler{cfg: cfg, events: events}
}

// HandleSchedule handles the /schedule command: the chat's upcoming events.
func (h *EventHandler) HandleSchedule(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || chat.Type == tele.ChatPrivate {
		return nil
	}

	events, err := h.events.Upcoming(context.Background(), chat.ID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to list events")
		return c.Reply("❌ Could not load the schedule")
	}
	if len(events) == 0 {
		return c.Reply("ℹ️ Nothing scheduled. Create an event with /create_event <yyyy-mm-dd hh:mm> <title>")
	}

	var b strings.Builder
	b.WriteString("📅 Upcoming events:\n")
	for _, ev := range events {
		fmt.Fprintf(&b, "\n#%d %s — %s (%d joined)\n", ev.ID, ev.Title, ev.EventAt.Format(eventTimeLayout), ev.Participants)
		if ev.Description != "" {
			fmt.Fprintf(&b, "  %s\n", ev.Description)
		}
	}
	b.WriteString("\nJoin with /join_event <id>, leave with /leave_event <id>")
	return c.Send(b.String())
}

// HandleCreateEvent handles /create_event <yyyy-mm-dd> <hh:mm> <title...>.
func (h *EventHandler) HandleCreateEvent(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil || chat.Type == tele.ChatPrivate {
		return nil
	}

	args := c.Args()
	if len(args) < 3 {
		return c.Reply("Usage: /create_event <yyyy-mm-dd> <hh:mm> <title>\nExample: /create_event 2026-09-05 19:00 Movie night")
	}

	at, err := time.ParseInLocation(eventTimeLayout, args[0]+" "+args[1], time.Local)
	if err != nil {
		return c.Reply("❌ Could not read the date. Use yyyy-mm-dd hh:mm, e.g. 2026-09-05 19:00")
	}
	title := strings.Join(args[2:], " ")

	ev, err := h.events.Create(context.Background(), chat.ID, sender.ID, title, "", at)
	if err != nil {
		if errors.Is(err, service.ErrEventInPast) {
			return c.Reply("❌ That time has already passed")
		}
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to create event")
		return c.Reply("❌ Could not create the event")
	}

	return c.Send(fmt.Sprintf("📅 Event #%d scheduled: %s on %s.\nJoin with /join_event %d",
		ev.ID, ev.Title, ev.EventAt.Format(eventTimeLayout), ev.ID))
}

// HandleJoinEvent handles /join_event <id>.
func (h *EventHandler) HandleJoinEvent(c tele.Context) error {
	return h.signup(c, true)
}

// HandleLeaveEvent handles /leave_event <id>.
func (h *EventHandler) HandleLeaveEvent(c tele.Context) error {
	return h.signup(c, false)
}

func (h *EventHandler) signup(c tele.Context, join bool) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil || chat.Type == tele.ChatPrivate {
		return nil
	}

	eventID, ok := eventIDArg(c)
	if !ok {
		if join {
			return c.Reply("Usage: /join_event <id> — see /schedule for ids")
		}
		return c.Reply("Usage: /leave_event <id> — see /schedule for ids")
	}

	ctx := context.Background()
	if join {
		ev, joined, err := h.events.Join(ctx, chat.ID, eventID, sender.ID)
		if err != nil {
			return h.signupError(c, err, eventID)
		}
		if !joined {
			return c.Reply("ℹ️ You are already signed up for this event")
		}
		return c.Reply(fmt.Sprintf("✅ %s joined %s", mention(sender), ev.Title))
	}

	ev, left, err := h.events.Leave(ctx, chat.ID, eventID, sender.ID)
	if err != nil {
		return h.signupError(c, err, eventID)
	}
	if !left {
		return c.Reply("ℹ️ You were not signed up for this event")
	}
	return c.Reply(fmt.Sprintf("👋 %s left %s", mention(sender), ev.Title))
}

func (h *EventHandler) signupError(c tele.Context, err error, eventID int64) error {
	if errors.Is(err, repository.ErrEventNotFound) || errors.Is(err, service.ErrEventOtherChat) {
		return c.Reply("❌ No such event here. See /schedule for the current list")
	}
	log.Error().Err(err).Int64("event_id", eventID).Msg("Event sign-up failed")
	return c.Reply("❌ Something went wrong, try again")
}

// HandleDeleteEvent handles /delete_event <id>. Only the event's creator
// or an admin may delete it.
func (h *EventHandler) HandleDeleteEvent(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil || chat.Type == tele.ChatPrivate {
		return nil
	}

	eventID, ok := eventIDArg(c)
	if !ok {
		return c.Reply("Usage: /delete_event <id>")
	}

	ev, err := h.events.Delete(context.Background(), chat.ID, eventID, sender.ID, h.cfg.IsAdmin(sender.ID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotEventCreator):
			return c.Reply("❌ Only the event creator or an admin can delete it")
		case errors.Is(err, repository.ErrEventNotFound), errors.Is(err, service.ErrEventOtherChat):
			return c.Reply("❌ No such event here")
		}
		log.Error().Err(err).Int64("event_id", eventID).Msg("Failed to delete event")
		return c.Reply("❌ Could not delete the event")
	}

	return c.Send(fmt.Sprintf("🗑 Event cancelled: %s", ev.Title))
}

// eventIDArg parses the single numeric event-id argument.
func eventIDArg(c tele.Context) (int64, bool) {
	args := c.Args()
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
