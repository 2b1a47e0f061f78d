package config

import (
	"os"
	"strconv"
	"time"

	"casino_server/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	// Broadcast channel
	BroadcastBackend string // "redis", "nats" or "memory"
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	NATSURL          string

	// Versioned state
	SnapshotInterval int64
	MaxVersionGap    int64

	// Session sweeps
	HeartbeatInterval time.Duration
	SessionExpiry     time.Duration
	ExpirySweep       time.Duration
	AbandonedSweep    time.Duration

	// Action endpoint rate limiting
	ActionRateLimit  int
	ActionRateWindow time.Duration
}

// Load reads configuration from the environment.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	backend := os.Getenv("BROADCAST_BACKEND")
	if backend == "" {
		backend = "memory"
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,

		BroadcastBackend: backend,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          envInt("REDIS_DB", 0),
		NATSURL:          envDefault("NATS_URL", "nats://localhost:4222"),

		SnapshotInterval: int64(envInt("SNAPSHOT_INTERVAL", 10)),
		MaxVersionGap:    int64(envInt("MAX_VERSION_GAP", 10)),

		HeartbeatInterval: envSeconds("HEARTBEAT_INTERVAL_SECONDS", 30*time.Second),
		SessionExpiry:     envSeconds("SESSION_EXPIRY_SECONDS", 24*time.Hour),
		ExpirySweep:       envSeconds("EXPIRY_SWEEP_SECONDS", time.Hour),
		AbandonedSweep:    envSeconds("ABANDONED_SWEEP_SECONDS", 60*time.Second),

		ActionRateLimit:  envInt("ACTION_RATE_LIMIT", 60),
		ActionRateWindow: envSeconds("ACTION_RATE_WINDOW_SECONDS", time.Minute),
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
