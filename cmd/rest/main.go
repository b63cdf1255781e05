package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ampersand-agent/internal/bootstrap"
	"ampersand-agent/internal/config"
	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/internal/server"
	"ampersand-agent/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Logger & Tracer
	zapLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer zapLogger.Sync()

	shutdownTracer := tracer.InitTracer(tracer.ServiceName, zapLogger)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg, zapLogger)
	if err != nil {
		zapLogger.Error("MAIN", "Failed to bootstrap", map[string]interface{}{"error": err.Error()})
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	defer container.Close()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			zapLogger.Warn("MAIN", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 5. Run Server
	if err := srv.Run(); err != nil {
		zapLogger.Error("MAIN", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
