package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-activity-bot/internal/model"
)

// ChatRepository handles chat data persistence.
type ChatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository creates a new ChatRepository instance.
func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

// Upsert inserts a chat or refreshes its title.
func (r *ChatRepository) Upsert(ctx context.Context, chat *model.Chat) error {
	const query = `
		INSERT INTO chats (chat_id, title, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (chat_id) DO UPDATE
		SET title = EXCLUDED.title
	`

	_, err := r.pool.Exec(ctx, query, chat.ID, chat.Title)
	if err != nil {
		return fmt.Errorf("failed to upsert chat: %w", err)
	}
	return nil
}

// EnsureExists inserts a bare chat row if none exists yet.
func (r *ChatRepository) EnsureExists(ctx context.Context, chatID int64) error {
	const query = `
		INSERT INTO chats (chat_id)
		VALUES ($1)
		ON CONFLICT (chat_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, chatID)
	if err != nil {
		return fmt.Errorf("failed to ensure chat exists: %w", err)
	}
	return nil
}

// ListGroups returns all known group chats. Telegram group chat IDs are
// negative, so private chats are filtered out.
func (r *ChatRepository) ListGroups(ctx context.Context) ([]*model.Chat, error) {
	const query = `
		SELECT chat_id, title, joined_at
		FROM chats
		WHERE chat_id < 0
		ORDER BY joined_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []*model.Chat
	for rows.Next() {
		var chat model.Chat
		if err := rows.Scan(&chat.ID, &chat.Title, &chat.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, &chat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chats: %w", err)
	}

	return chats, nil
}
