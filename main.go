package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"example.com/miniter/cmd/server"
	"example.com/miniter/cmd/worker"
	"example.com/miniter/internal/auth"
	"example.com/miniter/internal/broker"
	config "example.com/miniter/internal/init"
	"example.com/miniter/internal/logger"
	"example.com/miniter/internal/service"
	"example.com/miniter/internal/store"
)

func main() {
	// Initialize application configuration
	cfg := config.Init()
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Fatalf("invalid LOG_LEVEL: %v", err)
	}

	// Open the relational store and apply migrations
	st, err := store.New(cfg)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer st.Close()

	// Setup OS signal handling for graceful shutdown (SIGINT, SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run application depending on selected mode
	switch cfg.Mode {
	case "server":
		pub, err := broker.NewPublisher(cfg)
		if err != nil {
			log.Fatalf("events publisher init failed: %v", err)
		}
		defer pub.Close()

		tokens := auth.NewTokens(cfg.JWTSecret)
		s := server.New(
			service.NewUserService(st, tokens, pub),
			service.NewTweetService(st, pub),
		)
		server.Run(ctx, s, cfg)
	case "worker":
		// Consume activity events published by server instances
		reader := broker.NewKafkaReader(broker.KafkaConfigFrom(cfg))
		w := worker.New(st, reader, cfg.WorkerCount, cfg.WorkerQueueSize)
		w.Run(ctx)
		w.Close()
	default:
		log.Fatalf("unknown mode: %s", cfg.Mode)
	}

	log.Println("Shutdown completed")
}
