// Package main is the entry point for the Telegram activity bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"telegram-activity-bot/internal/bot"
	"telegram-activity-bot/internal/broadcast"
	"telegram-activity-bot/internal/config"
	"telegram-activity-bot/internal/game"
	"telegram-activity-bot/internal/game/arbiter"
	"telegram-activity-bot/internal/game/emoji"
	"telegram-activity-bot/internal/game/quiz"
	"telegram-activity-bot/internal/pkg/db"
	"telegram-activity-bot/internal/rank"
	"telegram-activity-bot/internal/repository"
	"telegram-activity-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := service.ValidateFaultPolicy(cfg.Points.FaultPolicy); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	chatRepo := repository.NewChatRepository(dbPool.Pool)
	activityRepo := repository.NewActivityRepository(dbPool.Pool)
	rankRepo := repository.NewRankRepository(dbPool.Pool)
	questionRepo := repository.NewQuestionRepository(dbPool.Pool)
	eventRepo := repository.NewEventRepository(dbPool.Pool)

	// Seed the rank ladder and build the in-memory table from what the
	// database now holds.
	if err := rankRepo.Seed(ctx, rank.DefaultTiers()); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed rank ladder")
	}
	tiers, err := rankRepo.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load rank ladder")
	}
	table, err := rank.NewTable(tiers)
	if err != nil {
		log.Fatal().Err(err).Msg("Rank ladder is malformed")
	}
	log.Info().Int("tiers", len(tiers)).Msg("Rank ladder loaded")

	// Services
	activityService := service.NewActivityService(activityRepo, userRepo, chatRepo, table, cfg.Points.FaultPolicy)
	profileService := service.NewProfileService(userRepo, chatRepo)
	statsService := service.NewStatsService(activityRepo, userRepo, table)
	questionService := service.NewQuestionService(questionRepo, userRepo, activityService, cfg.Question.Reward)
	eventService := service.NewEventService(eventRepo, userRepo, chatRepo)

	// Games
	arb := arbiter.New(time.Duration(cfg.Games.CooldownMinutes) * time.Minute)
	gameService := service.NewGameService(
		[]game.Engine{emoji.New(), quiz.New()},
		arb,
		activityService,
		cfg.Games.ReplayChance,
	)

	// Bot
	telegramBot, err := bot.New(&bot.Dependencies{
		Config:    cfg,
		Activity:  activityService,
		Games:     gameService,
		Questions: questionService,
		Stats:     statsService,
		Profiles:  profileService,
		Events:    eventService,
		Arbiter:   arb,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Scheduled broadcasts
	broadcaster := broadcast.New(telegramBot.Telebot(), cfg, chatRepo, questionService, statsService, eventService)
	if err := broadcaster.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start broadcaster")
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	broadcaster.Stop()
	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}
