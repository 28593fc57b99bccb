// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/partyhall/internal/store"
	"github.com/sirupsen/logrus"
)

// Config is the process configuration, read once from the environment at startup.
type Config struct {
	Port string

	RedisAddr string
	RedisDB   int

	RoomTTL      time.Duration
	SessionTTL   time.Duration
	HeartbeatTTL time.Duration
	ActionIDTTL  time.Duration

	DisconnectAfter   time.Duration
	ReplaceAfter      time.Duration
	SchedulerMaxSteps int

	HistoryQueue       string
	HistorianBatchSize int
	HistorianFlush     time.Duration

	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDatabase string

	LogLevel       logrus.Level
	AllowedOrigins []string
}

// Load reads every setting, falling back to defaults for missing or malformed values.
func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		RoomTTL:      getEnvDuration("ROOM_TTL", 2*time.Hour),
		SessionTTL:   getEnvDuration("SESSION_TTL", 24*time.Hour),
		HeartbeatTTL: getEnvDuration("HEARTBEAT_TTL", 5*time.Minute),
		ActionIDTTL:  getEnvDuration("ACTION_ID_TTL", time.Hour),

		DisconnectAfter:   getEnvDuration("DISCONNECT_AFTER", 15*time.Second),
		ReplaceAfter:      getEnvDuration("REPLACE_AFTER", 60*time.Second),
		SchedulerMaxSteps: getEnvInt("SCHEDULER_MAX_STEPS", 64),

		HistoryQueue:       getEnv("HISTORY_QUEUE_NAME", "partyhall_events"),
		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 100),
		HistorianFlush:     time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresHost:     getEnv("PG_HOST", "localhost"),
		PostgresPort:     getEnv("PG_PORT", "5432"),
		PostgresDatabase: getEnv("PG_DATABASE", "partyhall"),

		LogLevel:       getEnvLevel("LOG_LEVEL", logrus.DebugLevel),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS"),
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// StoreOptions returns the record expiries the room store needs.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		RoomTTL:      c.RoomTTL,
		SessionTTL:   c.SessionTTL,
		HeartbeatTTL: c.HeartbeatTTL,
		ActionIDTTL:  c.ActionIDTTL,
	}
}

// PostgresURL is the pgx connection string.
func (c Config) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDatabase,
	)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnvLevel(key string, def logrus.Level) logrus.Level {
	lvl, err := logrus.ParseLevel(os.Getenv(key))
	if err != nil {
		return def
	}
	return lvl
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
