// cmd/historian is an asynchronous historian service that pops room events from a Redis
// queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/partyhall/internal/cache"
	"github.com/jason-s-yu/partyhall/internal/config"
	"github.com/jason-s-yu/partyhall/internal/database"
	"github.com/jason-s-yu/partyhall/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB); err != nil {
		logger.Fatalf("redis: %v", err)
	}
	rdb := cache.Client()
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.PostgresURL())
	if err != nil {
		logger.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatalf("schema: %v", err)
	}
	logger.WithField("host", cfg.PostgresHost).Info("connected to database")

	insert := func(ctx context.Context, records []cache.RoomEventRecord) error {
		return database.InsertRoomEvents(ctx, pool, records)
	}
	svc := historian.NewService(rdb, insert, logger, historian.Options{
		Queue:      cfg.HistoryQueue,
		BatchSize:  cfg.HistorianBatchSize,
		FlushDelay: cfg.HistorianFlush,
	})
	if err := svc.Run(ctx); err != nil {
		logger.Fatalf("historian: %v", err)
	}
}
