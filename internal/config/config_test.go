// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ROOM_TTL", "DISCONNECT_AFTER", "SCHEDULER_MAX_STEPS", "LOG_LEVEL", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	c := Load()
	assert.Equal(t, ":8080", c.Addr())
	assert.Equal(t, 2*time.Hour, c.RoomTTL)
	assert.Equal(t, 15*time.Second, c.DisconnectAfter)
	assert.Equal(t, 60*time.Second, c.ReplaceAfter)
	assert.Equal(t, 64, c.SchedulerMaxSteps)
	assert.Equal(t, logrus.DebugLevel, c.LogLevel)
	assert.Empty(t, c.AllowedOrigins)
}

func TestLoadOverridesAndMalformedValues(t *testing.T) {
	t.Setenv("ROOM_TTL", "30m")
	t.Setenv("ACTION_ID_TTL", "soon")
	t.Setenv("SCHEDULER_MAX_STEPS", "8")
	t.Setenv("REDIS_DB", "x")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("POSTGRES_USER", "ph")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("PG_DATABASE", "games")

	c := Load()
	assert.Equal(t, 30*time.Minute, c.RoomTTL)
	assert.Equal(t, time.Hour, c.ActionIDTTL)
	assert.Equal(t, 8, c.SchedulerMaxSteps)
	assert.Equal(t, 0, c.RedisDB)
	assert.Equal(t, logrus.WarnLevel, c.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, "postgres://ph:secret@db:6543/games", c.PostgresURL())
	assert.Equal(t, 30*time.Minute, c.StoreOptions().RoomTTL)
}
