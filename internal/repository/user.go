// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-activity-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrQuestionNotFound = errors.New("question not found")
)

// UserRepository handles user data persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Upsert inserts a user or refreshes their profile fields. The cached
// rank is untouched so a profile update never loses a promotion.
func (r *UserRepository) Upsert(ctx context.Context, user *model.User) error {
	const query = `
		INSERT INTO users (user_id, username, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query, user.TelegramID, user.Username, user.FirstName, user.LastName)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// EnsureExists inserts a bare user row if none exists yet. Used before
// writing ledger entries that reference the user.
func (r *UserRepository) EnsureExists(ctx context.Context, telegramID int64) error {
	const query = `
		INSERT INTO users (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, telegramID)
	if err != nil {
		return fmt.Errorf("failed to ensure user exists: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their Telegram ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, telegramID int64) (*model.User, error) {
	const query = `
		SELECT user_id, username, first_name, last_name, current_rank, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.CurrentRank,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetRank returns the cached rank name for a user, empty if never ranked.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetRank(ctx context.Context, telegramID int64) (string, error) {
	const query = `SELECT current_rank FROM users WHERE user_id = $1`

	var rank string
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(&rank)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user rank: %w", err)
	}

	return rank, nil
}

// SetRank updates the cached rank name for a user.
func (r *UserRepository) SetRank(ctx context.Context, telegramID int64, rank string) error {
	const query = `
		UPDATE users
		SET current_rank = $2, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, rank)
	if err != nil {
		return fmt.Errorf("failed to set user rank: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
