package service

import (
	"context"
	"fmt"
	"time"

	"telegram-activity-bot/internal/model"
	"telegram-activity-bot/internal/rank"
	"telegram-activity-bot/internal/repository"
)

// UserStats is everything the /stats command shows for one user.
type UserStats struct {
	User        *model.User
	Messages    int64
	ChatPoints  float64
	TotalPoints float64
	Rank        model.RankTier
	NextRank    model.RankTier
	PointsToGo  float64
	HasNext     bool
	LastActive  time.Time
}

// StatsService answers read-only questions about activity and ranks.
type StatsService struct {
	activity *repository.ActivityRepository
	users    *repository.UserRepository
	table    *rank.Table
}

// NewStatsService creates a StatsService.
func NewStatsService(activity *repository.ActivityRepository, users *repository.UserRepository, table *rank.Table) *StatsService {
	return &StatsService{activity: activity, users: users, table: table}
}

// UserStats assembles a user's profile for one chat: per-chat counters
// plus the global total, the resolved rank and the distance to the next.
func (s *StatsService) UserStats(ctx context.Context, chatID, userID int64) (*UserStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	messages, chatPoints, lastActive, err := s.activity.UserChatStats(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}

	total, err := s.activity.SumPointsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{
		User:        user,
		Messages:    messages,
		ChatPoints:  chatPoints,
		TotalPoints: total,
		Rank:        s.table.Resolve(total),
		LastActive:  lastActive,
	}

	if next, remaining, ok := s.table.Next(total); ok {
		stats.NextRank = next
		stats.PointsToGo = remaining
		stats.HasNext = true
	}

	return stats, nil
}

// TopUsers returns the chat leaderboard over the given window.
func (s *StatsService) TopUsers(ctx context.Context, chatID int64, window time.Duration, limit int) ([]*model.TopUser, error) {
	return s.activity.TopUsers(ctx, chatID, time.Now().Add(-window), limit)
}

// MostActive returns the most active user of the last 24 hours, or nil
// when the chat was quiet.
func (s *StatsService) MostActive(ctx context.Context, chatID int64) (*model.TopUser, error) {
	return s.activity.MostActiveSince(ctx, chatID, time.Now().Add(-24*time.Hour))
}

// ChatReport aggregates the chat's activity over the last N days.
func (s *StatsService) ChatReport(ctx context.Context, chatID int64, days int) (*model.ChatReport, error) {
	if days <= 0 {
		return nil, fmt.Errorf("report window must be positive, got %d days", days)
	}
	return s.activity.ChatReport(ctx, chatID, time.Now().AddDate(0, 0, -days))
}

// GameReport aggregates the chat's mini-game plays: per-game totals and
// the top earners.
func (s *StatsService) GameReport(ctx context.Context, chatID int64, limit int) (*model.GameReport, error) {
	totals, err := s.activity.GameTotals(ctx, chatID)
	if err != nil {
		return nil, err
	}

	top, err := s.activity.TopGamePlayers(ctx, chatID, limit)
	if err != nil {
		return nil, err
	}

	return &model.GameReport{Totals: totals, TopPlayers: top}, nil
}

// InactiveUsers returns users with no activity in the chat for the given
// number of days.
func (s *StatsService) InactiveUsers(ctx context.Context, chatID int64, days int) ([]*model.TopUser, error) {
	if days <= 0 {
		return nil, fmt.Errorf("inactivity window must be positive, got %d days", days)
	}
	return s.activity.InactiveUsers(ctx, chatID, time.Now().AddDate(0, 0, -days))
}
