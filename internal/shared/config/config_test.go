package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FEST_API_BASE_URL", "")
	t.Setenv("NOTIFY_BROKER", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, "http://localhost:3048", cfg.FestAPI.BaseURL)
	assert.Equal(t, "INR", cfg.Checkout.Currency)
	assert.Equal(t, "none", cfg.Notify.Broker)
	assert.Equal(t, 30*time.Minute, cfg.Booking.SessionTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Contains(t, cfg.Database.DSN, "dbname=festbook_db")
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 20, cfg.Redis.PoolSize)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FEST_API_BASE_URL", "https://fest.example.com/")
	t.Setenv("NOTIFY_BROKER", "Kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("BOOKING_SESSION_TTL", "5m")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, "https://fest.example.com", cfg.FestAPI.BaseURL)
	assert.Equal(t, "kafka", cfg.Notify.Broker)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notify.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.Booking.SessionTTL)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 0, cfg.Redis.DB)
}
