package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-activity-bot/internal/model"
	"telegram-activity-bot/internal/repository"
)

// defaultQuestionPool is the question-of-the-day pool. Questions are
// conversation starters, not puzzles; any reply earns the credit.
var defaultQuestionPool = []string{
	"What made you smile today?",
	"What's the best book you've read recently?",
	"If you could travel anywhere tomorrow, where would you go?",
	"What's a skill you'd love to learn this year?",
	"Coffee or tea, and how do you take it?",
	"What's the most underrated movie you've seen?",
	"What's one small thing that improved your life lately?",
	"If you could have dinner with anyone, living or dead, who would it be?",
	"What's your favorite way to spend a day off?",
	"What song have you had on repeat lately?",
	"What's the best advice you've ever received?",
	"If you won the lottery, what's the first thing you'd do?",
	"What's a food you refused to eat as a kid but love now?",
	"What's your most useless talent?",
	"If you could instantly master one instrument, which one?",
	"What's the best trip you've ever taken?",
	"What hobby would you pick up if time and money were no object?",
	"What's one thing you're looking forward to this week?",
}

// ReplyCredit is the result of crediting a reply to a daily question.
type ReplyCredit struct {
	Points    float64
	Promotion *Promotion
}

// QuestionService publishes questions of the day and credits replies to
// them, at most once per user per question.
type QuestionService struct {
	questions *repository.QuestionRepository
	users     *repository.UserRepository
	ledger    Recorder
	pool      []string
	reward    float64
	rng       *rand.Rand
}

// NewQuestionService creates a QuestionService over the default question
// pool.
func NewQuestionService(questions *repository.QuestionRepository, users *repository.UserRepository, ledger Recorder, reward float64) *QuestionService {
	return &QuestionService{
		questions: questions,
		users:     users,
		ledger:    ledger,
		pool:      defaultQuestionPool,
		reward:    reward,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Draw picks a random question text from the pool.
func (s *QuestionService) Draw() string {
	return s.pool[s.rng.Intn(len(s.pool))]
}

// Published records a question the bot just posted so replies to that
// message can be credited.
func (s *QuestionService) Published(ctx context.Context, chatID, messageID int64, question string) error {
	q := &model.DailyQuestion{ChatID: chatID, MessageID: messageID, Question: question}
	if err := s.questions.Insert(ctx, q); err != nil {
		return fmt.Errorf("failed to record published question: %w", err)
	}

	log.Info().Int64("chat_id", chatID).Int64("question_id", q.ID).Msg("Daily question published")
	return nil
}

// OnReply credits a reply when the replied-to message is a known daily
// question and the user hasn't been credited for it yet. It returns nil
// when the reply earns nothing; the message is still ordinary activity.
func (s *QuestionService) OnReply(ctx context.Context, chatID, repliedMessageID, userID int64) (*ReplyCredit, error) {
	q, err := s.questions.FindByMessage(ctx, chatID, repliedMessageID)
	if err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	// The response row references the user, who may be unseen so far.
	if err := s.users.EnsureExists(ctx, userID); err != nil {
		return nil, err
	}

	credited, err := s.questions.AddResponse(ctx, q.ID, userID, s.reward)
	if err != nil {
		return nil, err
	}
	if !credited {
		log.Debug().
			Int64("question_id", q.ID).
			Int64("user_id", userID).
			Msg("Repeat reply to daily question, no credit")
		return nil, nil
	}

	promo, err := s.ledger.Record(ctx, chatID, userID, model.CategoryQuestion, s.reward)
	if err != nil {
		return nil, err
	}

	return &ReplyCredit{Points: s.reward, Promotion: promo}, nil
}

// Stats summarizes responses to the chat's recent questions.
func (s *QuestionService) Stats(ctx context.Context, chatID int64, since time.Time, limit int) ([]*model.QuestionStats, error) {
	return s.questions.RecentStats(ctx, chatID, since, limit)
}
