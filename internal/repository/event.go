package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-activity-bot/internal/model"
)

// ErrEventNotFound is returned when a scheduled event does not exist.
var ErrEventNotFound = errors.New("event not found")

// EventRepository handles scheduled chat events and their sign-ups.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository instance.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Insert records a new event and fills in its ID and timestamp.
func (r *EventRepository) Insert(ctx context.Context, ev *model.Event) error {
	const query = `
		INSERT INTO schedule_events (chat_id, creator_id, title, description, event_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, ev.ChatID, ev.CreatorID, ev.Title, ev.Description, ev.EventAt).
		Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetByID retrieves one event with its sign-up count.
// Returns ErrEventNotFound if the event does not exist.
func (r *EventRepository) GetByID(ctx context.Context, eventID int64) (*model.Event, error) {
	const query = `
		SELECT e.id, e.chat_id, e.creator_id, e.title, e.description,
		       e.event_at, e.created_at, e.notified,
		       COUNT(p.id)
		FROM schedule_events e
		LEFT JOIN event_participants p ON p.event_id = e.id
		WHERE e.id = $1
		GROUP BY e.id
	`

	var ev model.Event
	err := r.pool.QueryRow(ctx, query, eventID).Scan(
		&ev.ID, &ev.ChatID, &ev.CreatorID, &ev.Title, &ev.Description,
		&ev.EventAt, &ev.CreatedAt, &ev.Notified, &ev.Participants,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &ev, nil
}

// ListUpcoming returns the chat's events that have not started yet, soonest
// first, each with its sign-up count.
func (r *EventRepository) ListUpcoming(ctx context.Context, chatID int64, now time.Time) ([]*model.Event, error) {
	const query = `
		SELECT e.id, e.chat_id, e.creator_id, e.title, e.description,
		       e.event_at, e.created_at, e.notified,
		       COUNT(p.id)
		FROM schedule_events e
		LEFT JOIN event_participants p ON p.event_id = e.id
		WHERE e.chat_id = $1 AND e.event_at > $2
		GROUP BY e.id
		ORDER BY e.event_at
	`

	rows, err := r.pool.Query(ctx, query, chatID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		var ev model.Event
		err := rows.Scan(&ev.ID, &ev.ChatID, &ev.CreatorID, &ev.Title, &ev.Description,
			&ev.EventAt, &ev.CreatedAt, &ev.Notified, &ev.Participants)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// Delete removes an event. Sign-ups go with it via the cascade.
// Returns ErrEventNotFound if the event does not exist.
func (r *EventRepository) Delete(ctx context.Context, eventID int64) error {
	const query = `DELETE FROM schedule_events WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}

	return nil
}

// AddParticipant signs a user up for an event. The unique constraint on
// (event_id, user_id) makes repeat sign-ups no-ops; the returned bool
// reports whether this call actually added the user.
func (r *EventRepository) AddParticipant(ctx context.Context, eventID, userID int64) (bool, error) {
	const query = `
		INSERT INTO event_participants (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to add participant: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// RemoveParticipant withdraws a user's sign-up. The returned bool reports
// whether the user was signed up at all.
func (r *EventRepository) RemoveParticipant(ctx context.Context, eventID, userID int64) (bool, error) {
	const query = `
		DELETE FROM event_participants
		WHERE event_id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove participant: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Participants lists an event's sign-ups in join order.
func (r *EventRepository) Participants(ctx context.Context, eventID int64) ([]*model.EventParticipant, error) {
	const query = `
		SELECT p.user_id, u.username, u.first_name, p.joined_at
		FROM event_participants p
		JOIN users u ON u.user_id = p.user_id
		WHERE p.event_id = $1
		ORDER BY p.joined_at
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*model.EventParticipant
	for rows.Next() {
		var p model.EventParticipant
		if err := rows.Scan(&p.UserID, &p.Username, &p.FirstName, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return participants, nil
}

// DueForNotification returns events starting between now and now+within
// whose reminder has not been sent yet.
func (r *EventRepository) DueForNotification(ctx context.Context, now time.Time, within time.Duration) ([]*model.Event, error) {
	const query = `
		SELECT id, chat_id, creator_id, title, description, event_at, created_at, notified
		FROM schedule_events
		WHERE event_at BETWEEN $1 AND $2 AND NOT notified
		ORDER BY event_at
	`

	rows, err := r.pool.Query(ctx, query, now, now.Add(within))
	if err != nil {
		return nil, fmt.Errorf("failed to list due events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		var ev model.Event
		err := rows.Scan(&ev.ID, &ev.ChatID, &ev.CreatorID, &ev.Title, &ev.Description,
			&ev.EventAt, &ev.CreatedAt, &ev.Notified)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due event: %w", err)
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due events: %w", err)
	}

	return events, nil
}

// MarkNotified records that the event's reminder went out, so the sweep
// never sends it twice.
func (r *EventRepository) MarkNotified(ctx context.Context, eventID int64) error {
	const query = `UPDATE schedule_events SET notified = TRUE WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, eventID)
	if err != nil {
		return fmt.Errorf("failed to mark event notified: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}

	return nil
}
