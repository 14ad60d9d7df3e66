package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/Andrew-dev1/StockSprout/internal/api"
	"github.com/Andrew-dev1/StockSprout/internal/auth"
	"github.com/Andrew-dev1/StockSprout/internal/config"
	"github.com/Andrew-dev1/StockSprout/internal/database"
	"github.com/Andrew-dev1/StockSprout/internal/finnhub"
	"github.com/Andrew-dev1/StockSprout/internal/jobs"
	"github.com/Andrew-dev1/StockSprout/internal/kafka"
	"github.com/Andrew-dev1/StockSprout/internal/pricing"
)

func main() {
	cfg := config.Load()

	db, err := database.NewWithPolicy(cfg.Database.ConnectionString(), database.Policy{
		DustThreshold: cfg.Policy.DustThreshold,
		MinimumBuy:    cfg.Policy.MinimumBuy,
		CashOutUnit:   cfg.Policy.CashOutUnit,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("connected to database")

	if err := db.RunMigrations("db/migrations"); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Println("migrations applied")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis unavailable, quote caching disabled: %v", err)
		rdb = nil
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		log.Printf("kafka producer connected to %v", cfg.Kafka.Brokers)
	}

	finnhubClient := finnhub.NewClient(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL)
	pricingSvc := pricing.NewService(db, finnhubClient, rdb, cfg.Redis.QuoteTTL, cfg.Finnhub.RequestDelay)
	sessions := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.SessionMaxAge)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := jobs.NewRunner(db, pricingSvc, producer, cfg.Jobs.PriceRefreshInterval, cfg.Jobs.SnapshotInterval)
	runner.Start(ctx)

	handler := api.NewHandler(db, pricingSvc, sessions, producer)
	router := api.SetupRoutes(handler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler(router)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
