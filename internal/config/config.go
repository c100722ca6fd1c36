package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	ListenAddr    string
	PublicBaseURL string

	RedisURL         string
	DatabaseURL      string
	ResultWebhookURL string

	DefaultDifficulty  string
	DefaultTimeControl string
	EnginePath         string

	OpenQueueTTL time.Duration
	ChallengeTTL time.Duration
	SweepEvery   time.Duration

	MsgOverrideDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:         ":8080",
		DefaultDifficulty:  "level3",
		DefaultTimeControl: "none",
		OpenQueueTTL:       5 * time.Minute,
		ChallengeTTL:       60 * time.Minute,
		SweepEvery:         60 * time.Second,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/")

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.ResultWebhookURL = strings.TrimSpace(os.Getenv("RESULT_WEBHOOK_URL"))

	if v := strings.TrimSpace(os.Getenv("DEFAULT_DIFFICULTY")); v != "" {
		cfg.DefaultDifficulty = v
	}
	if v := strings.TrimSpace(os.Getenv("DEFAULT_TIME_CONTROL")); v != "" {
		cfg.DefaultTimeControl = v
	}

	if v := strings.TrimSpace(os.Getenv("OPEN_QUEUE_TTL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.OpenQueueTTL = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHALLENGE_TTL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChallengeTTL = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("SWEEP_INTERVAL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SweepEvery = time.Duration(n) * time.Second
		}
	}

	cfg.EnginePath = strings.TrimSpace(os.Getenv("BOT_ENGINE_PATH"))
	cfg.MsgOverrideDir = strings.TrimSpace(os.Getenv("MSG_OVERRIDE_DIR"))

	return cfg, nil
}
