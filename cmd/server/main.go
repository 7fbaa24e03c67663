package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spacesedan/civicpulse/config"
	"github.com/spacesedan/civicpulse/internal/clients"
	"github.com/spacesedan/civicpulse/internal/db"
	"github.com/spacesedan/civicpulse/internal/events"
	"github.com/spacesedan/civicpulse/internal/logging"
	"github.com/spacesedan/civicpulse/internal/sentiment"
	"github.com/spacesedan/civicpulse/internal/server"
	"github.com/spacesedan/civicpulse/internal/submissions"
)

const shutdownTimeout = 10 * time.Second

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	analyzerCfg, err := sentiment.ConfigFromEnv()
	if err != nil {
		slog.Error("[Main] Invalid analyzer configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	analyzer, err := sentiment.NewAnalyzer(analyzerCfg)
	if err != nil {
		slog.Error("[Main] Failed to build analyzer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store := db.NewStore(clients.GetDynamoDBClient())

	var guard server.DuplicateGuard
	if os.Getenv("VALKEY_INIT_ADDRESS") != "" {
		guard = clients.InitValkey()
		defer clients.CloseValkey()
	}

	var publisher submissions.EventPublisher
	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		kafkaPublisher, err := events.NewPublisher(broker)
		if err != nil {
			slog.Error("[Main] Failed to init Kafka producer, analytics events disabled",
				slog.String("error", err.Error()))
		} else {
			publisher = kafkaPublisher
			defer kafkaPublisher.Close()
		}
	}

	service := submissions.NewService(analyzer, store, publisher)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := server.New(port, allowedOrigins(), service, store, guard)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	<-stopChan

	slog.Info("[Main] Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("[Main] Forced shutdown", slog.String("error", err.Error()))
	}
}

func allowedOrigins() []string {
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		return strings.Split(origins, ",")
	}
	return []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"http://127.0.0.1:5173",
	}
}
