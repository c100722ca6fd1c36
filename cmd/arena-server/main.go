package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/archive"
	"github.com/park285/chess-arena/internal/arena"
	"github.com/park285/chess-arena/internal/bot"
	appcfg "github.com/park285/chess-arena/internal/config"
	"github.com/park285/chess-arena/internal/msgcat"
	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/internal/registry"
	"github.com/park285/chess-arena/internal/webhook"
	"github.com/park285/chess-arena/internal/ws"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()

	cat, err := msgcat.New(cfg.MsgOverrideDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	// Challenge links need Redis; without it the feature is reported as
	// unavailable rather than failing startup.
	var challenges *arena.ChallengeStore
	if cfg.RedisURL != "" {
		challenges, err = arena.NewChallengeStore(cfg.RedisURL, cfg.ChallengeTTL)
		if err != nil {
			log.Fatalf("challenge store init error: %v", err)
		}
	} else {
		logger.Warn("REDIS_URL not set, challenge links disabled")
	}

	var repo *archive.Repository
	if cfg.DatabaseURL != "" {
		repo, err = archive.NewRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("archive init error: %v", err)
		}
	} else {
		logger.Warn("DATABASE_URL not set, match archival disabled")
	}

	var hook *webhook.Client
	if cfg.ResultWebhookURL != "" {
		hook = webhook.NewClient(cfg.ResultWebhookURL)
	}

	var proposer bot.Proposer = bot.NewLocalProposer()
	if cfg.EnginePath != "" {
		ep := bot.NewEngineProposer(cfg.EnginePath)
		defer func() { _ = ep.Close() }()
		proposer = ep
		logger.Info("using external engine for automated opponent", zap.String("path", cfg.EnginePath))
	}

	reg := registry.New()
	mgr := arena.NewManager(arena.Deps{
		Registry:           reg,
		Proposer:           proposer,
		Challenges:         challenges,
		Archive:            repo,
		Webhook:            hook,
		Catalog:            cat,
		QueueTTL:           cfg.OpenQueueTTL,
		ChallengeTTL:       cfg.ChallengeTTL,
		SweepEvery:         cfg.SweepEvery,
		PublicBaseURL:      cfg.PublicBaseURL,
		DefaultDifficulty:  cfg.DefaultDifficulty,
		DefaultTimeControl: cfg.DefaultTimeControl,
	})

	rootCtx, stop := context.WithCancel(context.Background())
	go mgr.Run(rootCtx)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           ws.NewServer(mgr, reg, cat).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	_ = srv.Shutdown(shutdownCtx)
	cancel()

	if challenges != nil {
		_ = challenges.Close()
	}
	if repo != nil {
		_ = repo.Close()
	}
}
