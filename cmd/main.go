/**
 * @description
 * This is the main entry point for the onboarding-service. Its responsibility
 * is to initialize all components and start the HTTP server that drives
 * onboarding and receives provider webhooks.
 *
 * Key features:
 * - Loads application configuration from environment variables and refuses to
 *   start when a required secret is missing.
 * - Establishes and manages a connection pool to the PostgreSQL database.
 * - Initializes the Meta Graph API client and, when configured, the RabbitMQ
 *   event producer.
 * - Wires up the onboarding saga and the webhook dispatcher with their
 *   dependencies and starts the HTTP server with graceful shutdown.
 *
 * @dependencies
 * - The service's internal packages for config, app logic, storage, and external clients.
 * - pgxpool for database connection, godotenv for local config, and rabbitmq for messaging.
 */
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/waconnect/onboarding-service/internal/api"
	"github.com/waconnect/onboarding-service/internal/app"
	"github.com/waconnect/onboarding-service/internal/config"
	"github.com/waconnect/onboarding-service/internal/store"
	"github.com/waconnect/onboarding-service/pkg/graphclient"
	"github.com/waconnect/onboarding-service/pkg/rabbitmq"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load application configuration.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	// Establish database connection pool.
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database URL: %v", err)
	}
	dbConfig.MaxConns = 50
	dbConfig.MinConns = 5
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer dbpool.Close()
	log.Println("Database connection established")

	// Set up dependencies.
	accountRepo := store.NewPostgresAccountRepository(dbpool)
	graphClient := graphclient.NewClient(cfg.GraphAPIBaseURL, cfg.MetaAppID, cfg.MetaAppSecret)

	// The event producer is optional: without a broker URL the service runs
	// standalone and skips internal event publishing.
	var publisher app.EventPublisher
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer producer.Close()
		publisher = producer
		log.Println("RabbitMQ event producer ready")
	} else {
		log.Println("RABBITMQ_URL not set; internal event publishing disabled")
	}

	// Setup services.
	onboardingService := app.NewOnboardingService(accountRepo, graphClient, publisher, cfg.WhatsAppPin)

	dispatcher := app.NewWebhookDispatcher()
	webhookEvents := app.NewWebhookEventHandler(accountRepo, publisher)
	webhookEvents.RegisterHandlers(dispatcher)

	// Setup and start HTTP server.
	router := api.NewRouter(cfg, onboardingService, dispatcher)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s", err)
		}
	}()

	log.Println("Onboarding service is running.")

	// Wait for termination signal for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down onboarding-service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
