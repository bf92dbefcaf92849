package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-activity-bot/internal/model"
	"telegram-activity-bot/internal/repository"
)

// Event service errors surfaced to handlers.
var (
	ErrEventInPast     = errors.New("event time is in the past")
	ErrNotEventCreator = errors.New("only the event creator or an admin can delete an event")
	ErrEventOtherChat  = errors.New("event belongs to another chat")
)

// EventService manages scheduled chat events: creation, sign-ups and the
// reminder sweep.
type EventService struct {
	events *repository.EventRepository
	users  *repository.UserRepository
	chats  *repository.ChatRepository
}

// NewEventService creates an EventService.
func NewEventService(events *repository.EventRepository, users *repository.UserRepository, chats *repository.ChatRepository) *EventService {
	return &EventService{events: events, users: users, chats: chats}
}

// Create schedules a new event in a chat. The event time must be in the
// future.
func (s *EventService) Create(ctx context.Context, chatID, creatorID int64, title, description string, at time.Time) (*model.Event, error) {
	if !at.After(time.Now()) {
		return nil, ErrEventInPast
	}

	// Event rows reference the chat and creator, either may be unseen.
	if err := s.chats.EnsureExists(ctx, chatID); err != nil {
		return nil, err
	}
	if err := s.users.EnsureExists(ctx, creatorID); err != nil {
		return nil, err
	}

	ev := &model.Event{
		ChatID:      chatID,
		CreatorID:   creatorID,
		Title:       title,
		Description: description,
		EventAt:     at,
	}
	if err := s.events.Insert(ctx, ev); err != nil {
		return nil, err
	}

	log.Info().
		Int64("event_id", ev.ID).
		Int64("chat_id", chatID).
		Time("event_at", at).
		Msg("Event scheduled")
	return ev, nil
}

// Upcoming lists the chat's events that have not started yet.
func (s *EventService) Upcoming(ctx context.Context, chatID int64) ([]*model.Event, error) {
	return s.events.ListUpcoming(ctx, chatID, time.Now())
}

// Join signs a user up for an event in the given chat. The returned bool
// is false when the user was already signed up.
func (s *EventService) Join(ctx context.Context, chatID, eventID, userID int64) (*model.Event, bool, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, false, err
	}
	if ev.ChatID != chatID {
		return nil, false, ErrEventOtherChat
	}

	if err := s.users.EnsureExists(ctx, userID); err != nil {
		return nil, false, err
	}

	joined, err := s.events.AddParticipant(ctx, eventID, userID)
	if err != nil {
		return nil, false, err
	}
	return ev, joined, nil
}

// Leave withdraws a user's sign-up. The returned bool is false when the
// user was not signed up.
func (s *EventService) Leave(ctx context.Context, chatID, eventID, userID int64) (*model.Event, bool, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, false, err
	}
	if ev.ChatID != chatID {
		return nil, false, ErrEventOtherChat
	}

	left, err := s.events.RemoveParticipant(ctx, eventID, userID)
	if err != nil {
		return nil, false, err
	}
	return ev, left, nil
}

// Delete removes an event. Only its creator or an admin may delete it.
func (s *EventService) Delete(ctx context.Context, chatID, eventID, requesterID int64, isAdmin bool) (*model.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.ChatID != chatID {
		return nil, ErrEventOtherChat
	}
	if ev.CreatorID != requesterID && !isAdmin {
		return nil, ErrNotEventCreator
	}

	if err := s.events.Delete(ctx, eventID); err != nil {
		return nil, err
	}

	log.Info().
		Int64("event_id", eventID).
		Int64("user_id", requesterID).
		Msg("Event deleted")
	return ev, nil
}

// Participants lists an event's sign-ups.
func (s *EventService) Participants(ctx context.Context, eventID int64) ([]*model.EventParticipant, error) {
	return s.events.Participants(ctx, eventID)
}

// DueReminders returns events starting within the window whose reminder
// has not gone out yet.
func (s *EventService) DueReminders(ctx context.Context, within time.Duration) ([]*model.Event, error) {
	if within <= 0 {
		return nil, fmt.Errorf("reminder window must be positive, got %s", within)
	}
	return s.events.DueForNotification(ctx, time.Now(), within)
}

// MarkReminded records that the event's reminder was sent.
func (s *EventService) MarkReminded(ctx context.Context, eventID int64) error {
	return s.events.MarkNotified(ctx, eventID)
}
