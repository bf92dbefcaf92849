package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-activity-bot/internal/config"
	"telegram-activity-bot/internal/game"
	"telegram-activity-bot/internal/game/arbiter"
	"telegram-activity-bot/internal/handler"
	"telegram-activity-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	activityHandler  *handler.ActivityHandler
	gameHandler      *handler.GameHandler
	questionHandler  *handler.QuestionHandler
	statsHandler     *handler.StatsHandler
	adminHandler     *handler.AdminHandler
	eventHandler     *handler.EventHandler
	challengeHandler *handler.ChallengeHandler

	gameCommands map[string]game.Kind
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Config    *config.Config
	Activity  *service.ActivityService
	Games     *service.GameService
	Questions *service.QuestionService
	Stats     *service.StatsService
	Profiles  *service.ProfileService
	Events    *service.EventService
	Arbiter   *arbiter.Arbiter
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot: teleBot,
		cfg: deps.Config,
	}

	b.gameHandler = handler.NewGameHandler(deps.Config, deps.Games)
	b.questionHandler = handler.NewQuestionHandler(deps.Questions)
	b.statsHandler = handler.NewStatsHandler(deps.Stats)
	b.adminHandler = handler.NewAdminHandler(deps.Activity, deps.Arbiter)
	b.eventHandler = handler.NewEventHandler(deps.Config, deps.Events)
	b.challengeHandler = handler.NewChallengeHandler()
	b.activityHandler = handler.NewActivityHandler(
		deps.Config, deps.Activity, b.gameHandler, b.questionHandler, deps.Profiles)
	b.gameCommands = deps.Games.Commands()

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and message handlers.
func (b *Bot) registerHandlers() {
	// Stats commands
	b.bot.Handle("/stats", b.statsHandler.HandleStats)
	b.bot.Handle("/top", b.statsHandler.HandleTop)
	b.bot.Handle("/game_stats", b.statsHandler.HandleGameStats)

	// Game commands; start commands come from the engines themselves.
	for cmd, kind := range b.gameCommands {
		b.bot.Handle("/"+cmd, b.gameHandler.HandleStart(kind))
	}
	b.bot.Handle("/end_game", b.gameHandler.HandleEndGame)
	b.bot.Handle("/game_status", b.gameHandler.HandleGameStatus)

	// Question of the day
	b.bot.Handle("/question_stats", b.questionHandler.HandleQuestionStats)

	// Daily engagement prompt
	b.bot.Handle("/challenge", b.challengeHandler.HandleChallenge)

	// Scheduled events
	b.bot.Handle("/schedule", b.eventHandler.HandleSchedule)
	b.bot.Handle("/create_event", b.eventHandler.HandleCreateEvent)
	b.bot.Handle("/join_event", b.eventHandler.HandleJoinEvent)
	b.bot.Handle("/leave_event", b.eventHandler.HandleLeaveEvent)
	b.bot.Handle("/delete_event", b.eventHandler.HandleDeleteEvent)

	// Admin commands
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/add_points", b.adminHandler.HandleAddPoints)
	adminGroup.Handle("/set_cooldown", b.adminHandler.HandleSetCooldown)
	adminGroup.Handle("/random_question", b.questionHandler.HandleRandomQuestion)
	adminGroup.Handle("/inactive", b.statsHandler.HandleInactive)

	// Everything that is not a command earns activity points.
	b.bot.Handle(tele.OnText, b.activityHandler.HandleText)
	for _, event := range []string{
		tele.OnPhoto, tele.OnVideo, tele.OnAnimation, tele.OnSticker,
		tele.OnVoice, tele.OnVideoNote, tele.OnAudio, tele.OnDocument,
	} {
		b.bot.Handle(event, b.activityHandler.HandleMedia)
	}
}

// Start starts the bot polling. Blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}

// Telebot returns the underlying telebot instance for the broadcaster.
func (b *Bot) Telebot() *tele.Bot {
	return b.bot
}
