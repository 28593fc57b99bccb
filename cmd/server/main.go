// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/partyhall/internal/auth"
	"github.com/jason-s-yu/partyhall/internal/bus"
	"github.com/jason-s-yu/partyhall/internal/cache"
	"github.com/jason-s-yu/partyhall/internal/config"
	"github.com/jason-s-yu/partyhall/internal/games"
	"github.com/jason-s-yu/partyhall/internal/handlers"
	"github.com/jason-s-yu/partyhall/internal/room"
	"github.com/jason-s-yu/partyhall/internal/store"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	if err := auth.Init(); err != nil {
		logger.Fatalf("auth init: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB); err != nil {
		logger.Fatalf("redis: %v", err)
	}
	rdb := cache.Client()
	defer rdb.Close()

	svc := room.NewService(
		store.NewRedisStore(rdb, cfg.StoreOptions()),
		bus.NewRedisPublisher(rdb),
		games.Default(),
		logger,
		room.Options{
			DisconnectAfter: cfg.DisconnectAfter,
			ReplaceAfter:    cfg.ReplaceAfter,
			MaxSteps:        cfg.SchedulerMaxSteps,
		},
	).WithHistory(cache.NewHistory(rdb, cfg.HistoryQueue))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.NewRouter(logger, svc, rdb, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	logger.Infof("Running on %s", cfg.Addr())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}
