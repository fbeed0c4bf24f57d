package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-waba-webhooks/internal/application/accountupdate"
	"github.com/go-waba-webhooks/internal/application/dispatch"
	"github.com/go-waba-webhooks/internal/config"
	"github.com/go-waba-webhooks/internal/infrastructure/rabbitmq"
	snsinfra "github.com/go-waba-webhooks/internal/infrastructure/sns"
	"github.com/go-waba-webhooks/internal/infrastructure/whatsapp"
	transporthttp "github.com/go-waba-webhooks/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := dispatch.NewDispatcher(accountupdate.NewParser(loc), whatsapp.NewClient(cfg))

	switch cfg.EventSink {
	case config.SinkSNS:
		client, err := snsinfra.NewClient(ctx, cfg)
		if err != nil {
			log.Fatalf("sns: %v", err)
		}
		dispatcher.OnAccountUpdate(snsinfra.NewForwarder(client, cfg.SNSTopicARN, cfg.SNSAlertPhone).Forward, 0)
	case config.SinkAMQP:
		producer, err := rabbitmq.NewProducer(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("amqp: %v", err)
		}
		defer producer.Close()
		dispatcher.OnAccountUpdate(producer.Forward, 0)
	default:
		slog.Warn("no event sink configured, account updates are only logged")
	}

	router := transporthttp.NewRouter(ctx, cfg, &transporthttp.Deps{Dispatcher: dispatcher})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.AppEnv, "sink", cfg.EventSink)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		return
	}
	slog.Info("server stopped")
}
