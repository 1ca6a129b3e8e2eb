package main

import (
	"os"
	"os/signal"
	"syscall"

	"gerador/internal/app"
	"gerador/internal/config"
	"gerador/internal/logger"
)

var customLog = logger.NewLogger()

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Initialize storage, broker and HTTP server ---
	server, err := app.NewApp(cfg)
	if err != nil {
		customLog.Fatalf("Failed to initialize application: %v", err)
	}

	if err := server.StartConsumers(); err != nil {
		customLog.Errorf("Failed to start RabbitMQ consumer: %v", err)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Listen(); err != nil {
			customLog.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	customLog.Infoln("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		customLog.Errorf("Error during shutdown: %v", err)
	}
	customLog.Infoln("Server gracefully stopped")
}
