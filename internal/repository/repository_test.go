// Package repository provides data access layer implementations.
// Tests use testcontainers-go to spin up a PostgreSQL container.
package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"telegram-activity-bot/internal/model"
	"telegram-activity-bot/internal/pkg/db"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a connection pool.
// Skips the test if Docker is not available.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	err = db.Migrate(ctx, pool)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedUserAndChat inserts the rows every ledger entry references.
func seedUserAndChat(t *testing.T, pool *pgxpool.Pool, chatID, userID int64) {
	t.Helper()
	ctx := context.Background()

	chats := NewChatRepository(pool)
	require.NoError(t, chats.Upsert(ctx, &model.Chat{ID: chatID, Title: "test group"}))

	users := NewUserRepository(pool)
	require.NoError(t, users.Upsert(ctx, &model.User{
		TelegramID: userID,
		Username:   "testuser",
		FirstName:  "Test",
	}))
}

// ============================================================================
// UserRepository Tests
// ============================================================================

func TestUserRepository_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	err := repo.Upsert(ctx, &model.User{TelegramID: 12345, Username: "alice", FirstName: "Alice"})
	require.NoError(t, err)

	user, err := repo.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), user.TelegramID)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.CurrentRank)
	assert.False(t, user.CreatedAt.IsZero())

	// Profile refresh keeps the cached rank.
	require.NoError(t, repo.SetRank(ctx, 12345, "⭐ Star"))
	err = repo.Upsert(ctx, &model.User{TelegramID: 12345, Username: "alice_renamed", FirstName: "Alice"})
	require.NoError(t, err)

	user, err = repo.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "alice_renamed", user.Username)
	assert.Equal(t, "⭐ Star", user.CurrentRank)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)

	_, err := repo.GetByID(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_Rank(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.EnsureExists(ctx, 12345))

	rank, err := repo.GetRank(ctx, 12345)
	require.NoError(t, err)
	assert.Empty(t, rank)

	require.NoError(t, repo.SetRank(ctx, 12345, "🔍 Seeker"))

	rank, err = repo.GetRank(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "🔍 Seeker", rank)

	assert.ErrorIs(t, repo.SetRank(ctx, 404, "x"), ErrUserNotFound)
}

// ============================================================================
// ChatRepository Tests
// ============================================================================

func TestChatRepository_ListGroups(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewChatRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &model.Chat{ID: -100123, Title: "group one"}))
	require.NoError(t, repo.Upsert(ctx, &model.Chat{ID: -100456, Title: "group two"}))
	require.NoError(t, repo.Upsert(ctx, &model.Chat{ID: 777, Title: "private"}))

	chats, err := repo.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	for _, c := range chats {
		assert.Negative(t, c.ID)
	}
}

// ============================================================================
// ActivityRepository Tests
// ============================================================================

func TestActivityRepository_InsertAndSum(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 12345)
	repo := NewActivityRepository(pool)
	ctx := context.Background()

	rec := &model.ActivityRecord{ChatID: -100123, UserID: 12345, Category: model.CategoryMessage, Points: 1.0}
	require.NoError(t, repo.Insert(ctx, rec))
	assert.NotZero(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	require.NoError(t, repo.Insert(ctx, &model.ActivityRecord{
		ChatID: -100123, UserID: 12345, Category: model.CategoryEmojiGame, Points: 4.5,
	}))

	total, err := repo.SumPointsByUser(ctx, 12345)
	require.NoError(t, err)
	assert.InDelta(t, 5.5, total, 1e-9)
}

func TestActivityRepository_SumIsGlobalAcrossChats(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 12345)
	chats := NewChatRepository(pool)
	require.NoError(t, chats.EnsureExists(context.Background(), -100456))

	repo := NewActivityRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &model.ActivityRecord{
		ChatID: -100123, UserID: 12345, Category: model.CategoryMessage, Points: 1.0,
	}))
	require.NoError(t, repo.Insert(ctx, &model.ActivityRecord{
		ChatID: -100456, UserID: 12345, Category: model.CategoryReply, Points: 2.0,
	}))

	total, err := repo.SumPointsByUser(ctx, 12345)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, total, 1e-9)
}

func TestActivityRepository_TopUsers(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 1)
	users := NewUserRepository(pool)
	ctx := context.Background()
	require.NoError(t, users.Upsert(ctx, &model.User{TelegramID: 2, Username: "bob"}))

	repo := NewActivityRepository(pool)
	require.NoError(t, repo.Insert(ctx, &model.ActivityRecord{ChatID: -100123, UserID: 1, Category: model.CategoryMessage, Points: 1.0}))
	require.NoError(t, repo.Insert(ctx, &model.ActivityRecord{ChatID: -100123, UserID: 2, Category: model.CategoryLongMessage, Points: 2.0}))
	require.NoError(t, repo.Insert(ctx, &model.ActivityRecord{ChatID: -100123, UserID: 2, Category: model.CategoryMedia, Points: 1.5}))

	top, err := repo.TopUsers(ctx, -100123, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].UserID)
	assert.InDelta(t, 3.5, top[0].TotalPoints, 1e-9)
	assert.Equal(t, int64(2), top[0].Messages)
	assert.Equal(t, int64(1), top[1].UserID)
}

func TestActivityRepository_MostActiveSince_Empty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 1)
	repo := NewActivityRepository(pool)

	u, err := repo.MostActiveSince(context.Background(), -100123, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestActivityRepository_ChatReport(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 1)
	repo := NewActivityRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &model.ActivityRecord{ChatID: -100123, UserID: 1, Category: model.CategoryMessage, Points: 1.0}))
	require.NoError(t, repo.Insert(ctx, &model.ActivityRecord{ChatID: -100123, UserID: 1, Category: model.CategoryQuiz, Points: 3.0}))

	report, err := repo.ChatReport(ctx, -100123, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Messages) // game rewards don't count as messages
	assert.InDelta(t, 4.0, report.TotalPoints, 1e-9)
	assert.Equal(t, int64(1), report.ActiveUsers)
	require.Len(t, report.Daily, 1)
	assert.Equal(t, int64(1), report.Daily[0].Messages)
}

// ============================================================================
// RankRepository Tests
// ============================================================================

func TestRankRepository_SeedAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRankRepository(pool)
	ctx := context.Background()

	tiers := []model.RankTier{
		{Name: "B", MinPoints: 100, MaxPoints: 199},
		{Name: "A", MinPoints: 0, MaxPoints: 99},
	}
	require.NoError(t, repo.Seed(ctx, tiers))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name) // ordered by threshold
	assert.Equal(t, "B", got[1].Name)

	// Re-seeding replaces, not appends.
	require.NoError(t, repo.Seed(ctx, tiers[:1]))
	got, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// ============================================================================
// EventRepository Tests
// ============================================================================

func TestEventRepository_InsertGetDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 1)
	repo := NewEventRepository(pool)
	ctx := context.Background()

	ev := &model.Event{
		ChatID:    -100123,
		CreatorID: 1,
		Title:     "Movie night",
		EventAt:   time.Now().Add(48 * time.Hour),
	}
	require.NoError(t, repo.Insert(ctx, ev))
	assert.NotZero(t, ev.ID)
	assert.False(t, ev.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Movie night", got.Title)
	assert.False(t, got.Notified)
	assert.Zero(t, got.Participants)

	require.NoError(t, repo.Delete(ctx, ev.ID))
	_, err = repo.GetByID(ctx, ev.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, ev.ID), ErrEventNotFound)
}

func TestEventRepository_ListUpcomingSkipsPast(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 1)
	repo := NewEventRepository(pool)
	ctx := context.Background()

	past := &model.Event{ChatID: -100123, CreatorID: 1, Title: "done", EventAt: time.Now().Add(-time.Hour)}
	future := &model.Event{ChatID: -100123, CreatorID: 1, Title: "soon", EventAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Insert(ctx, past))
	require.NoError(t, repo.Insert(ctx, future))

	_, joined, err := joinHelper(ctx, repo, future.ID, 1)
	require.NoError(t, err)
	require.True(t, joined)

	upcoming, err := repo.ListUpcoming(ctx, -100123, time.Now())
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "soon", upcoming[0].Title)
	assert.Equal(t, int64(1), upcoming[0].Participants)
}

// joinHelper signs a user up and fetches the refreshed event.
func joinHelper(ctx context.Context, repo *EventRepository, eventID, userID int64) (*model.Event, bool, error) {
	joined, err := repo.AddParticipant(ctx, eventID, userID)
	if err != nil {
		return nil, false, err
	}
	ev, err := repo.GetByID(ctx, eventID)
	return ev, joined, err
}

func TestEventRepository_ParticipantsOncePerUser(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 1)
	repo := NewEventRepository(pool)
	ctx := context.Background()

	ev := &model.Event{ChatID: -100123, CreatorID: 1, Title: "Quiz night", EventAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Insert(ctx, ev))

	joined, err := repo.AddParticipant(ctx, ev.ID, 1)
	require.NoError(t, err)
	assert.True(t, joined)

	joined, err = repo.AddParticipant(ctx, ev.ID, 1)
	require.NoError(t, err)
	assert.False(t, joined, "second sign-up must be a no-op")

	participants, err := repo.Participants(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, "testuser", participants[0].Username)

	left, err := repo.RemoveParticipant(ctx, ev.ID, 1)
	require.NoError(t, err)
	assert.True(t, left)

	left, err = repo.RemoveParticipant(ctx, ev.ID, 1)
	require.NoError(t, err)
	assert.False(t, left)
}

func TestEventRepository_DueForNotification(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 1)
	repo := NewEventRepository(pool)
	ctx := context.Background()

	soon := &model.Event{ChatID: -100123, CreatorID: 1, Title: "soon", EventAt: time.Now().Add(2 * time.Hour)}
	far := &model.Event{ChatID: -100123, CreatorID: 1, Title: "far", EventAt: time.Now().Add(72 * time.Hour)}
	require.NoError(t, repo.Insert(ctx, soon))
	require.NoError(t, repo.Insert(ctx, far))

	due, err := repo.DueForNotification(ctx, time.Now(), 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "soon", due[0].Title)

	// Once marked, the event never comes due again.
	require.NoError(t, repo.MarkNotified(ctx, due[0].ID))
	due, err = repo.DueForNotification(ctx, time.Now(), 24*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, due)
}

// ============================================================================
// Game stats
// ============================================================================

func TestActivityRepository_GameTotalsAndTopPlayers(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 1)
	users := NewUserRepository(pool)
	ctx := context.Background()
	require.NoError(t, users.Upsert(ctx, &model.User{TelegramID: 2, Username: "bob"}))

	repo := NewActivityRepository(pool)
	require.NoError(t, repo.Insert(ctx, &model.ActivityRecord{ChatID: -100123, UserID: 1, Category: model.CategoryEmojiGame, Points: 5.0}))
	require.NoError(t, repo.Insert(ctx, &model.ActivityRecord{ChatID: -100123, UserID: 2, Category: model.CategoryQuiz, Points: 3.0}))
	require.NoError(t, repo.Insert(ctx, &model.ActivityRecord{ChatID: -100123, UserID: 2, Category: model.CategoryQuiz, Points: 0.5}))
	// Ordinary chatter is not a game play.
	require.NoError(t, repo.Insert(ctx, &model.ActivityRecord{ChatID: -100123, UserID: 1, Category: model.CategoryMessage, Points: 1.0}))

	totals, err := repo.GameTotals(ctx, -100123)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, model.CategoryEmojiGame, totals[0].Category)
	assert.Equal(t, int64(1), totals[0].Plays)
	assert.InDelta(t, 5.0, totals[0].Points, 1e-9)
	assert.Equal(t, model.CategoryQuiz, totals[1].Category)
	assert.Equal(t, int64(2), totals[1].Plays)
	assert.InDelta(t, 3.5, totals[1].Points, 1e-9)

	top, err := repo.TopGamePlayers(ctx, -100123, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(1), top[0].UserID)
	assert.InDelta(t, 5.0, top[0].TotalPoints, 1e-9)
	assert.Equal(t, int64(2), top[1].Messages) // play count
}

// ============================================================================
// QuestionRepository Tests
// ============================================================================

func TestQuestionRepository_InsertAndFind(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 1)
	repo := NewQuestionRepository(pool)
	ctx := context.Background()

	q := &model.DailyQuestion{ChatID: -100123, MessageID: 555, Question: "What made you smile today?"}
	require.NoError(t, repo.Insert(ctx, q))
	assert.NotZero(t, q.ID)

	found, err := repo.FindByMessage(ctx, -100123, 555)
	require.NoError(t, err)
	assert.Equal(t, q.ID, found.ID)
	assert.Equal(t, q.Question, found.Question)

	_, err = repo.FindByMessage(ctx, -100123, 556)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestQuestionRepository_AddResponse_OncePerUser(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 1)
	repo := NewQuestionRepository(pool)
	ctx := context.Background()

	q := &model.DailyQuestion{ChatID: -100123, MessageID: 555, Question: "Coffee or tea?"}
	require.NoError(t, repo.Insert(ctx, q))

	credited, err := repo.AddResponse(ctx, q.ID, 1, 2.0)
	require.NoError(t, err)
	assert.True(t, credited)

	credited, err = repo.AddResponse(ctx, q.ID, 1, 2.0)
	require.NoError(t, err)
	assert.False(t, credited, "second reply to the same question must not credit")
}

func TestQuestionRepository_RecentStats(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedUserAndChat(t, pool, -100123, 1)
	repo := NewQuestionRepository(pool)
	ctx := context.Background()

	q := &model.DailyQuestion{ChatID: -100123, MessageID: 555, Question: "Coffee or tea?"}
	require.NoError(t, repo.Insert(ctx, q))

	_, err := repo.AddResponse(ctx, q.ID, 1, 2.0)
	require.NoError(t, err)

	stats, err := repo.RecentStats(ctx, -100123, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, q.ID, stats[0].QuestionID)
	assert.Equal(t, int64(1), stats[0].Responses)
	assert.InDelta(t, 2.0, stats[0].PointsTotal, 1e-9)
	assert.Equal(t, []string{"testuser"}, stats[0].Participants)
}
