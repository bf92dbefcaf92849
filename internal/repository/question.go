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

// QuestionRepository handles daily questions and their credited responses.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository instance.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Insert records a published question and fills in its ID and timestamp.
func (r *QuestionRepository) Insert(ctx context.Context, q *model.DailyQuestion) error {
	const query = `
		INSERT INTO daily_questions (chat_id, message_id, question)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, q.ChatID, q.MessageID, q.Question).
		Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}
	return nil
}

// FindByMessage looks up a question by the chat and message it was posted
// as. Returns ErrQuestionNotFound when the reply target is not a question.
func (r *QuestionRepository) FindByMessage(ctx context.Context, chatID, messageID int64) (*model.DailyQuestion, error) {
	const query = `
		SELECT id, chat_id, message_id, question, created_at
		FROM daily_questions
		WHERE chat_id = $1 AND message_id = $2
	`

	var q model.DailyQuestion
	err := r.pool.QueryRow(ctx, query, chatID, messageID).
		Scan(&q.ID, &q.ChatID, &q.MessageID, &q.Question, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to find question: %w", err)
	}

	return &q, nil
}

// AddResponse credits a user's reply to a question. The unique constraint
// on (question_id, user_id) makes repeat replies no-ops; the returned bool
// reports whether this call actually credited the user.
func (r *QuestionRepository) AddResponse(ctx context.Context, questionID, userID int64, points float64) (bool, error) {
	const query = `
		INSERT INTO question_responses (question_id, user_id, points_awarded)
		VALUES ($1, $2, $3)
		ON CONFLICT (question_id, user_id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query, questionID, userID, points)
	if err != nil {
		return false, fmt.Errorf("failed to add question response: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// RecentStats summarizes responses to questions asked in the chat since
// the given time, newest first.
func (r *QuestionRepository) RecentStats(ctx context.Context, chatID int64, since time.Time, limit int) ([]*model.QuestionStats, error) {
	const query = `
		SELECT q.id, q.question, q.created_at,
		       COUNT(r.id),
		       COALESCE(SUM(r.points_awarded), 0),
		       COALESCE(ARRAY_AGG(u.username ORDER BY r.created_at) FILTER (WHERE r.id IS NOT NULL), '{}')
		FROM daily_questions q
		LEFT JOIN question_responses r ON r.question_id = q.id
		LEFT JOIN users u ON u.user_id = r.user_id
		WHERE q.chat_id = $1 AND q.created_at >= $2
		GROUP BY q.id, q.question, q.created_at
		ORDER BY q.created_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, chatID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get question stats: %w", err)
	}
	defer rows.Close()

	var stats []*model.QuestionStats
	for rows.Next() {
		var s model.QuestionStats
		err := rows.Scan(&s.QuestionID, &s.Question, &s.AskedAt, &s.Responses, &s.PointsTotal, &s.Participants)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question stats: %w", err)
		}
		stats = append(stats, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question stats: %w", err)
	}

	return stats, nil
}
