// Package service implements business logic for the activity bot.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"telegram-activity-bot/internal/model"
	"telegram-activity-bot/internal/rank"
	"telegram-activity-bot/internal/repository"
)

// Fault policies for ledger writes. With PolicyIgnore a storage fault is
// logged and the points are dropped so chat handling never breaks; with
// PolicyPropagate the error reaches the caller.
const (
	PolicyIgnore    = "ignore"
	PolicyPropagate = "propagate"
)

// Promotion reports a rank change caused by a ledger write.
type Promotion struct {
	OldRank     model.RankTier
	NewRank     model.RankTier
	TotalPoints float64
}

// Recorder appends points to the ledger. Game and question services
// depend on this slice of ActivityService.
type Recorder interface {
	Record(ctx context.Context, chatID, userID int64, category string, points float64) (*Promotion, error)
}

// ActivityService owns the points ledger and the derived rank cache.
type ActivityService struct {
	activity    *repository.ActivityRepository
	users       *repository.UserRepository
	chats       *repository.ChatRepository
	table       *rank.Table
	faultPolicy string
}

// NewActivityService creates an ActivityService over the given table and
// fault policy.
func NewActivityService(
	activity *repository.ActivityRepository,
	users *repository.UserRepository,
	chats *repository.ChatRepository,
	table *rank.Table,
	faultPolicy string,
) *ActivityService {
	return &ActivityService{
		activity:    activity,
		users:       users,
		chats:       chats,
		table:       table,
		faultPolicy: faultPolicy,
	}
}

// Table returns the rank ladder the service resolves against.
func (s *ActivityService) Table() *rank.Table {
	return s.table
}

// Record appends one ledger entry and re-resolves the user's rank from the
// new global total. It returns a non-nil Promotion when the rank changed.
// Under the "ignore" fault policy storage errors are logged and swallowed.
func (s *ActivityService) Record(ctx context.Context, chatID, userID int64, category string, points float64) (*Promotion, error) {
	promo, err := s.record(ctx, chatID, userID, category, points)
	if err != nil {
		if s.faultPolicy == PolicyPropagate {
			return nil, err
		}
		log.Error().Err(err).
			Int64("chat_id", chatID).
			Int64("user_id", userID).
			Str("category", category).
			Float64("points", points).
			Msg("Dropping activity points after storage fault")
		return nil, nil
	}
	return promo, nil
}

func (s *ActivityService) record(ctx context.Context, chatID, userID int64, category string, points float64) (*Promotion, error) {
	// Stub rows keep the ledger's foreign keys satisfied even when the
	// profile upsert path hasn't seen this chat or user yet.
	if err := s.chats.EnsureExists(ctx, chatID); err != nil {
		return nil, err
	}
	if err := s.users.EnsureExists(ctx, userID); err != nil {
		return nil, err
	}

	rec := &model.ActivityRecord{
		ChatID:   chatID,
		UserID:   userID,
		Category: category,
		Points:   points,
	}
	if err := s.activity.Insert(ctx, rec); err != nil {
		return nil, err
	}

	log.Debug().
		Int64("chat_id", chatID).
		Int64("user_id", userID).
		Str("category", category).
		Float64("points", points).
		Msg("Activity recorded")

	return s.refreshRank(ctx, userID)
}

// refreshRank re-resolves the user's rank from their global total and
// persists it when it changed.
func (s *ActivityService) refreshRank(ctx context.Context, userID int64) (*Promotion, error) {
	cached, err := s.users.GetRank(ctx, userID)
	if err != nil {
		return nil, err
	}

	// A user with no cached rank starts at the bottom of the ladder.
	oldTier := s.table.Lowest()
	if cached != "" {
		oldTier = s.tierByName(cached)
	}

	total, err := s.activity.SumPointsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	newTier := s.table.Resolve(total)
	if newTier.Name == oldTier.Name {
		// Fill an empty cache silently; staying in the lowest tier is
		// not a promotion.
		if cached == "" {
			if err := s.users.SetRank(ctx, userID, newTier.Name); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	if err := s.users.SetRank(ctx, userID, newTier.Name); err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", userID).
		Str("old_rank", oldTier.Name).
		Str("new_rank", newTier.Name).
		Float64("total_points", total).
		Msg("User rank changed")

	return &Promotion{OldRank: oldTier, NewRank: newTier, TotalPoints: total}, nil
}

// tierByName maps a cached rank name back onto the ladder. A stale name
// from an older ladder falls back to the lowest tier.
func (s *ActivityService) tierByName(name string) model.RankTier {
	for _, t := range s.table.Tiers() {
		if t.Name == name {
			return t
		}
	}
	return s.table.Lowest()
}

// ValidateFaultPolicy rejects fault policy values outside the known set.
func ValidateFaultPolicy(policy string) error {
	switch policy {
	case PolicyIgnore, PolicyPropagate:
		return nil
	default:
		return fmt.Errorf("unknown fault policy %q", policy)
	}
}
