package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"ampersand-agent/internal/bootstrap"
	"ampersand-agent/internal/config"
	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/internal/server"
	"ampersand-agent/internal/tracer"
	"ampersand-agent/pkg/channels"

	"golang.org/x/sync/errgroup"
)

// Runs the Telegram bot and the HTTP surface side by side; either one
// failing stops both.
func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Platform.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	// 2. Logger & Tracer
	zapLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer zapLogger.Sync()

	shutdownTracer := tracer.InitTracer(tracer.ServiceName, zapLogger)
	defer shutdownTracer(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Identify the bot; mentions are parsed against its real username
	bot, err := channels.NewTelegramChannel(cfg.Platform.TelegramToken, zapLogger)
	if err != nil {
		log.Fatalf("Failed to create telegram channel: %v", err)
	}
	username, err := bot.Identify(ctx)
	if err != nil {
		log.Fatalf("Failed to identify telegram bot: %v", err)
	}
	cfg.Platform.BotUsername = channels.MentionName(cfg.Platform.BotUsername, username, zapLogger)

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	defer container.Close()

	srv := server.New(cfg, container)

	// 5. Supervise
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx, container.ChatbotService)
	})
	g.Go(func() error {
		return srv.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Error("MAIN", "Stopped with error", map[string]interface{}{"error": err.Error()})
	}
}
