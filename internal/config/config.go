// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Points    PointsConfig    `mapstructure:"points"`
	Games     GamesConfig     `mapstructure:"games"`
	Question  QuestionConfig  `mapstructure:"question"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// PointsConfig holds point values for ordinary chat activity.
type PointsConfig struct {
	Message          float64 `mapstructure:"message"`
	LongMessage      float64 `mapstructure:"long_message"`
	Media            float64 `mapstructure:"media"`
	Reply            float64 `mapstructure:"reply"`
	LongMessageRunes int     `mapstructure:"long_message_runes"`
	// FaultPolicy controls what happens when recording points hits a
	// storage fault: "ignore" logs and drops the points, "propagate"
	// returns the error to the caller.
	FaultPolicy string `mapstructure:"fault_policy"`
}

// GamesConfig holds mini-game configuration.
type GamesConfig struct {
	CooldownMinutes int           `mapstructure:"cooldown_minutes"`
	ReplayChance    float64       `mapstructure:"replay_chance"`
	ReplayDelay     time.Duration `mapstructure:"replay_delay"`
}

// QuestionConfig holds question-of-the-day configuration.
type QuestionConfig struct {
	Reward float64 `mapstructure:"reward"`
}

// BroadcastConfig holds cron specs for scheduled broadcasts.
type BroadcastConfig struct {
	DailyQuestionCron string `mapstructure:"daily_question_cron"`
	WeeklyReportCron  string `mapstructure:"weekly_report_cron"`
	ActiveUserCron    string `mapstructure:"active_user_cron"`
	EventReminderCron string `mapstructure:"event_reminder_cron"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, DATABASE_HOST, POINTS_REPLY.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "activitybot")
	v.SetDefault("database.name", "activitybot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Point values
	v.SetDefault("points.message", 1.0)
	v.SetDefault("points.long_message", 2.0)
	v.SetDefault("points.media", 1.5)
	v.SetDefault("points.reply", 2.0)
	v.SetDefault("points.long_message_runes", 200)
	v.SetDefault("points.fault_policy", "ignore")

	// Games
	v.SetDefault("games.cooldown_minutes", 60)
	v.SetDefault("games.replay_chance", 0.3)
	v.SetDefault("games.replay_delay", "2s")

	// Question of the day
	v.SetDefault("question.reward", 2.0)

	// Broadcast schedules (bot-local time)
	v.SetDefault("broadcast.daily_question_cron", "0 12 * * *")
	v.SetDefault("broadcast.weekly_report_cron", "0 9 * * 1")
	v.SetDefault("broadcast.active_user_cron", "0 20 * * *")
	v.SetDefault("broadcast.event_reminder_cron", "@every 10m")
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
