package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-activity-bot/internal/model"
)

// ActivityRepository handles the append-only points ledger.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository instance.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// Insert appends one ledger entry and fills in its ID and timestamp.
func (r *ActivityRepository) Insert(ctx context.Context, rec *model.ActivityRecord) error {
	const query = `
		INSERT INTO activity (chat_id, user_id, category, points)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, rec.ChatID, rec.UserID, rec.Category, rec.Points).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// SumPointsByUser returns the user's cumulative points across all chats.
// Ranks are global, so the sum is not scoped to a chat.
func (r *ActivityRepository) SumPointsByUser(ctx context.Context, userID int64) (float64, error) {
	const query = `
		SELECT COALESCE(SUM(points), 0)
		FROM activity
		WHERE user_id = $1
	`

	var total float64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return total, nil
}

// UserChatStats returns a user's message count and points within one chat.
func (r *ActivityRepository) UserChatStats(ctx context.Context, chatID, userID int64) (messages int64, points float64, lastActive time.Time, err error) {
	const query = `
		SELECT COUNT(*) FILTER (WHERE category IN ('message', 'long_message', 'media', 'reply')),
		       COALESCE(SUM(points), 0),
		       COALESCE(MAX(created_at), 'epoch'::timestamptz)
		FROM activity
		WHERE chat_id = $1 AND user_id = $2
	`

	err = r.pool.QueryRow(ctx, query, chatID, userID).Scan(&messages, &points, &lastActive)
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("failed to get user chat stats: %w", err)
	}
	return messages, points, lastActive, nil
}

// TopUsers returns the chat leaderboard since the given time, ordered by
// points earned in that window.
func (r *ActivityRepository) TopUsers(ctx context.Context, chatID int64, since time.Time, limit int) ([]*model.TopUser, error) {
	const query = `
		SELECT a.user_id, u.username, u.first_name, u.last_name,
		       SUM(a.points) AS total_points,
		       COUNT(*) FILTER (WHERE a.category IN ('message', 'long_message', 'media', 'reply')) AS messages
		FROM activity a
		JOIN users u ON u.user_id = a.user_id
		WHERE a.chat_id = $1 AND a.created_at >= $2
		GROUP BY a.user_id, u.username, u.first_name, u.last_name
		ORDER BY total_points DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, chatID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	defer rows.Close()

	var top []*model.TopUser
	for rows.Next() {
		var u model.TopUser
		err := rows.Scan(&u.UserID, &u.Username, &u.FirstName, &u.LastName, &u.TotalPoints, &u.Messages)
		if err != nil {
			return nil, fmt.Errorf("failed to scan top user: %w", err)
		}
		top = append(top, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top users: %w", err)
	}

	return top, nil
}

// MostActiveSince returns the user with the most messages in a chat since
// the given time, or nil when the window is empty.
func (r *ActivityRepository) MostActiveSince(ctx context.Context, chatID int64, since time.Time) (*model.TopUser, error) {
	top, err := r.TopUsers(ctx, chatID, since, 1)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return nil, nil
	}
	return top[0], nil
}

// ChatReport aggregates a chat's activity since the given time, including
// a per-day message breakdown.
func (r *ActivityRepository) ChatReport(ctx context.Context, chatID int64, since time.Time) (*model.ChatReport, error) {
	const totalsQuery = `
		SELECT COUNT(*) FILTER (WHERE category IN ('message', 'long_message', 'media', 'reply')),
		       COALESCE(SUM(points), 0),
		       COUNT(DISTINCT user_id)
		FROM activity
		WHERE chat_id = $1 AND created_at >= $2
	`

	var report model.ChatReport
	err := r.pool.QueryRow(ctx, totalsQuery, chatID, since).
		Scan(&report.Messages, &report.TotalPoints, &report.ActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat totals: %w", err)
	}

	const dailyQuery = `
		SELECT date_trunc('day', created_at) AS day,
		       COUNT(*) FILTER (WHERE category IN ('message', 'long_message', 'media', 'reply'))
		FROM activity
		WHERE chat_id = $1 AND created_at >= $2
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.pool.Query(ctx, dailyQuery, chatID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily activity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day model.DayActivity
		if err := rows.Scan(&day.Day, &day.Messages); err != nil {
			return nil, fmt.Errorf("failed to scan daily activity: %w", err)
		}
		report.Daily = append(report.Daily, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily activity: %w", err)
	}

	return &report, nil
}

// GameTotals aggregates the chat's game plays and payouts per game
// category.
func (r *ActivityRepository) GameTotals(ctx context.Context, chatID int64) ([]model.GameTotal, error) {
	const query = `
		SELECT category, COUNT(*), COALESCE(SUM(points), 0)
		FROM activity
		WHERE chat_id = $1 AND category IN ('emoji_game', 'quiz')
		GROUP BY category
		ORDER BY category
	`

	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game totals: %w", err)
	}
	defer rows.Close()

	var totals []model.GameTotal
	for rows.Next() {
		var t model.GameTotal
		if err := rows.Scan(&t.Category, &t.Plays, &t.Points); err != nil {
			return nil, fmt.Errorf("failed to scan game total: %w", err)
		}
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game totals: %w", err)
	}

	return totals, nil
}

// TopGamePlayers returns the chat's players ordered by game points earned.
// Messages carries the play count here.
func (r *ActivityRepository) TopGamePlayers(ctx context.Context, chatID int64, limit int) ([]*model.TopUser, error) {
	const query = `
		SELECT a.user_id, u.username, u.first_name, u.last_name,
		       SUM(a.points) AS total_points,
		       COUNT(*) AS plays
		FROM activity a
		JOIN users u ON u.user_id = a.user_id
		WHERE a.chat_id = $1 AND a.category IN ('emoji_game', 'quiz')
		GROUP BY a.user_id, u.username, u.first_name, u.last_name
		ORDER BY total_points DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top game players: %w", err)
	}
	defer rows.Close()

	var top []*model.TopUser
	for rows.Next() {
		var u model.TopUser
		err := rows.Scan(&u.UserID, &u.Username, &u.FirstName, &u.LastName, &u.TotalPoints, &u.Messages)
		if err != nil {
			return nil, fmt.Errorf("failed to scan top game player: %w", err)
		}
		top = append(top, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top game players: %w", err)
	}

	return top, nil
}

// InactiveUsers returns users who have activity in the chat but none since
// the given time.
func (r *ActivityRepository) InactiveUsers(ctx context.Context, chatID int64, since time.Time) ([]*model.TopUser, error) {
	const query = `
		SELECT a.user_id, u.username, u.first_name, u.last_name,
		       SUM(a.points) AS total_points,
		       COUNT(*) AS messages
		FROM activity a
		JOIN users u ON u.user_id = a.user_id
		WHERE a.chat_id = $1
		GROUP BY a.user_id, u.username, u.first_name, u.last_name
		HAVING MAX(a.created_at) < $2
		ORDER BY MAX(a.created_at)
	`

	rows, err := r.pool.Query(ctx, query, chatID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get inactive users: %w", err)
	}
	defer rows.Close()

	var users []*model.TopUser
	for rows.Next() {
		var u model.TopUser
		err := rows.Scan(&u.UserID, &u.Username, &u.FirstName, &u.LastName, &u.TotalPoints, &u.Messages)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inactive user: %w", err)
		}
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inactive users: %w", err)
	}

	return users, nil
}
