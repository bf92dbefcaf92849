// Package model defines the data models for the activity bot.
package model

import "time"

// User represents a Telegram user known to the bot.
// CurrentRank is a derived cache of the rank resolved from the user's
// cumulative points; the activity table is the source of truth.
type User struct {
	TelegramID  int64     `db:"user_id"`
	Username    string    `db:"username"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	CurrentRank string    `db:"current_rank"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// DisplayName returns the best human-readable name for the user.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}

// Chat represents a group chat the bot has seen activity in.
type Chat struct {
	ID       int64     `db:"chat_id"`
	Title    string    `db:"title"`
	JoinedAt time.Time `db:"joined_at"`
}

// ActivityRecord is one immutable entry in the points ledger.
type ActivityRecord struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	UserID    int64     `db:"user_id"`
	Category  string    `db:"category"`
	Points    float64   `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}

// RankTier is a named band of cumulative points. Tiers are strictly
// ordered and non-overlapping; the last tier's MaxPoints is an open-ended
// sentinel.
type RankTier struct {
	Name      string  `db:"name"`
	MinPoints float64 `db:"min_points"`
	MaxPoints float64 `db:"max_points"`
}

// DailyQuestion records a broadcast question-of-the-day message so replies
// to it can be credited.
type DailyQuestion struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	MessageID int64     `db:"message_id"`
	Question  string    `db:"question"`
	CreatedAt time.Time `db:"created_at"`
}

// QuestionResponse is a single credited reply to a daily question.
// (QuestionID, UserID) is unique: a user is credited at most once per
// question.
type QuestionResponse struct {
	ID         int64     `db:"id"`
	QuestionID int64     `db:"question_id"`
	UserID     int64     `db:"user_id"`
	Points     float64   `db:"points_awarded"`
	CreatedAt  time.Time `db:"created_at"`
}

// TopUser is a leaderboard row: a user with aggregated activity in a chat.
type TopUser struct {
	UserID      int64   `db:"user_id"`
	Username    string  `db:"username"`
	FirstName   string  `db:"first_name"`
	LastName    string  `db:"last_name"`
	TotalPoints float64 `db:"total_points"`
	Messages    int64   `db:"messages"`
}

// DisplayName returns the best human-readable name for the row.
func (t *TopUser) DisplayName() string {
	if t.Username != "" {
		return "@" + t.Username
	}
	name := t.FirstName
	if t.LastName != "" {
		name += " " + t.LastName
	}
	return name
}

// ChatReport aggregates activity in one chat over a period.
type ChatReport struct {
	Messages    int64
	TotalPoints float64
	ActiveUsers int64
	Daily       []DayActivity
}

// DayActivity is one day's message count within a report.
type DayActivity struct {
	Day      time.Time
	Messages int64
}

// Event is a scheduled chat event members can sign up for. Participants
// carries the sign-up count when the event comes from a list query.
type Event struct {
	ID           int64     `db:"id"`
	ChatID       int64     `db:"chat_id"`
	CreatorID    int64     `db:"creator_id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	EventAt      time.Time `db:"event_at"`
	CreatedAt    time.Time `db:"created_at"`
	Notified     bool      `db:"notified"`
	Participants int64
}

// EventParticipant is one sign-up for a scheduled event.
type EventParticipant struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	JoinedAt  time.Time `db:"joined_at"`
}

// DisplayName returns the best human-readable name for the participant.
func (p *EventParticipant) DisplayName() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	return p.FirstName
}

// GameTotal aggregates one game category's plays within a chat.
type GameTotal struct {
	Category string
	Plays    int64
	Points   float64
}

// GameReport is everything the /game_stats command shows for one chat.
type GameReport struct {
	Totals     []GameTotal
	TopPlayers []*TopUser
}

// QuestionStats summarizes responses to one broadcast question.
type QuestionStats struct {
	QuestionID   int64
	Question     string
	AskedAt      time.Time
	Responses    int64
	PointsTotal  float64
	Participants []string
}

// Activity categories for ledger entries.
const (
	CategoryMessage     = "message"      // Plain chat message
	CategoryLongMessage = "long_message" // Message above the length threshold
	CategoryMedia       = "media"        // Photo, video, sticker, etc.
	CategoryReply       = "reply"        // Reply to another message
	CategoryEmojiGame   = "emoji_game"   // Emoji riddle reward
	CategoryQuiz        = "quiz"         // Quiz reward
	CategoryQuestion    = "question_response" // Daily question credit
	CategoryManual      = "manual"       // Admin point adjustment
)
