package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"telegram-activity-bot/internal/model"
	"telegram-activity-bot/internal/repository"
)

// ProfileService keeps chat and user profiles fresh from incoming
// updates. Failures are logged and swallowed: a stale username must never
// block message handling.
type ProfileService struct {
	users *repository.UserRepository
	chats *repository.ChatRepository
}

// NewProfileService creates a ProfileService.
func NewProfileService(users *repository.UserRepository, chats *repository.ChatRepository) *ProfileService {
	return &ProfileService{users: users, chats: chats}
}

// Seen upserts the chat and user a message came from.
func (s *ProfileService) Seen(ctx context.Context, chat *model.Chat, user *model.User) {
	if err := s.chats.Upsert(ctx, chat); err != nil {
		log.Warn().Err(err).Int64("chat_id", chat.ID).Msg("Failed to upsert chat profile")
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		log.Warn().Err(err).Int64("user_id", user.TelegramID).Msg("Failed to upsert user profile")
	}
}
