package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-activity-bot/internal/model"
)

// RankRepository handles the persisted rank ladder.
type RankRepository struct {
	pool *pgxpool.Pool
}

// NewRankRepository creates a new RankRepository instance.
func NewRankRepository(pool *pgxpool.Pool) *RankRepository {
	return &RankRepository{pool: pool}
}

// Seed replaces the stored ladder with the given tiers inside one
// transaction. Called on startup so config changes take effect.
func (r *RankRepository) Seed(ctx context.Context, tiers []model.RankTier) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM ranks`); err != nil {
		return fmt.Errorf("failed to clear ranks: %w", err)
	}

	const insert = `INSERT INTO ranks (name, min_points, max_points) VALUES ($1, $2, $3)`
	for _, t := range tiers {
		if _, err := tx.Exec(ctx, insert, t.Name, t.MinPoints, t.MaxPoints); err != nil {
			return fmt.Errorf("failed to insert rank %q: %w", t.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return nil
}

// List returns the stored ladder ordered by threshold.
func (r *RankRepository) List(ctx context.Context) ([]model.RankTier, error) {
	const query = `
		SELECT name, min_points, max_points
		FROM ranks
		ORDER BY min_points
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranks: %w", err)
	}

	tiers, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.RankTier])
	if err != nil {
		return nil, fmt.Errorf("failed to scan ranks: %w", err)
	}
	return tiers, nil
}
