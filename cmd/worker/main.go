package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"opossum/internal/app"
	"opossum/internal/config"
	"opossum/internal/logger"
	"opossum/internal/worker"
	"opossum/internal/worker/processors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)
	defer logger.Sync()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize: %v", err)
	}
	defer application.Close()

	// Initialize worker
	processor := processors.NewEventProcessor(application.Engine, logger)
	w := worker.New(cfg, logger, worker.NewReader(cfg), processor)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
