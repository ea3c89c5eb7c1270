package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/techmoncton/hive/internal/api"
	"github.com/techmoncton/hive/internal/config"
	"github.com/techmoncton/hive/internal/events"
	"github.com/techmoncton/hive/internal/mailer"
	"github.com/techmoncton/hive/internal/pkg/logger"
	"github.com/techmoncton/hive/internal/repository/postgres"
	"github.com/techmoncton/hive/internal/service/broadcast"
	"github.com/techmoncton/hive/internal/service/subscription"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logger.DEBUG)
	}
	if os.Getenv("DEV_MODE") == "true" {
		logger.SetRedactPII(false)
	}

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancel()
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}
	cancel()

	sender, err := buildSender(cfg.Mail)
	if err != nil {
		logger.Error("failed to build mail sender", "error", err)
		os.Exit(1)
	}

	templates, err := mailer.NewTemplates()
	if err != nil {
		logger.Error("failed to parse email templates", "error", err)
		os.Exit(1)
	}

	feedOpts := []events.Option{}
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("invalid redis url", "error", err)
			os.Exit(1)
		}
		feedOpts = append(feedOpts, events.WithCache(redis.NewClient(opts), cfg.Events.CacheTTL()))
		logger.Info("event feed cache enabled")
	}
	feed := events.NewClient(cfg.Events.BaseURL, cfg.Events.StartYear, feedOpts...)

	repo := postgres.NewSubscriberRepo(db)
	subs := subscription.NewService(repo, sender, templates, cfg.Site)
	bcast := broadcast.NewService(repo, feed, sender, templates, cfg.Site, cfg.Broadcast)

	server := api.NewServer(cfg.Site, api.NewHandlers(subs, bcast, feed))

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "site", cfg.Site.Name)
		errCh <- server.ListenAndServe(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildSender picks the mail provider from config. Without credentials the
// server still runs; emails are logged instead of sent.
func buildSender(cfg config.MailConfig) (mailer.Sender, error) {
	switch cfg.Provider {
	case "ses":
		if cfg.SESRegion == "" {
			break
		}
		return mailer.NewSESSender(context.Background(), cfg.SESRegion, cfg.SESAccessKey, cfg.SESSecretKey, cfg.From)
	default:
		if cfg.ResendAPIKey == "" {
			break
		}
		return mailer.NewResendSender(cfg.ResendAPIKey, cfg.From, cfg.Timeout()), nil
	}
	logger.Warn("no mail credentials configured, using log sender")
	return mailer.NewLogSender(), nil
}
