package config

import (
	"log"
	"os"
	"time"
)

// Config holds all runtime settings. Every timer that drives a background
// task or a delayed broadcast is tunable here rather than hardcoded.
type Config struct {
	Port      string
	MongoURI  string
	MongoDB   string
	RedisAddr string
	JWTSecret string

	// Realtime tuning
	HeartbeatInterval   time.Duration
	StaleTimeout        time.Duration
	SyncInterval        time.Duration
	JoinSettleDelay     time.Duration
	StartBroadcastDelay time.Duration
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		MongoURI:  getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGODB_DATABASE", "drawit"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),

		HeartbeatInterval:   getDuration("HEARTBEAT_INTERVAL", 30*time.Second),
		StaleTimeout:        getDuration("STALE_TIMEOUT", 5*time.Minute),
		SyncInterval:        getDuration("SYNC_INTERVAL", time.Minute),
		JoinSettleDelay:     getDuration("JOIN_SETTLE_DELAY", 100*time.Millisecond),
		StartBroadcastDelay: getDuration("START_BROADCAST_DELAY", time.Second),
	}
}

func getEnv(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using default %s", key, value, fallback)
		return fallback
	}
	return d
}
