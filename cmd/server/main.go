package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/gtd-inbox/config"
	"github.com/d60-Lab/gtd-inbox/internal/api/handler"
	"github.com/d60-Lab/gtd-inbox/internal/cache"
	"github.com/d60-Lab/gtd-inbox/internal/repository"
	"github.com/d60-Lab/gtd-inbox/internal/router"
	"github.com/d60-Lab/gtd-inbox/internal/service"
	"github.com/d60-Lab/gtd-inbox/pkg/database"
	"github.com/d60-Lab/gtd-inbox/pkg/logger"
	"github.com/d60-Lab/gtd-inbox/pkg/monitoring"
	"github.com/d60-Lab/gtd-inbox/pkg/tracing"
)

// @title GTD Inbox API
// @version 1.0
// @description 收集箱条目的增删改查服务
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := monitoring.InitSentry(cfg.Sentry); err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer monitoring.Flush(2 * time.Second)

	ctx := context.Background()
	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("init tracer", zap.Error(err))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer database.Close(db)
	if cfg.Database.AutoMigrate {
		if err := repository.InitSchema(db); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
	}

	repo, closeCache := buildRepository(ctx, cfg, db)
	defer closeCache()

	svc := service.NewInboxService(repo)
	h := handler.NewHandler(svc, func(ctx context.Context) error { return database.Ping(ctx, db) })
	engine, err := router.Setup(cfg, h)
	if err != nil {
		logger.Fatal("setup router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown", zap.Error(err))
	}
}

// buildRepository Redis 不可用时退回直连数据库
func buildRepository(ctx context.Context, cfg *config.Config, db *gorm.DB) (repository.InboxRepository, func()) {
	repo := repository.NewInboxRepository(db)
	if !cfg.Redis.Enabled {
		return repo, func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = client.Close()
		return repo, func() {}
	}
	logger.Info("inbox read cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
	return cache.NewInboxCache(repo, client, cfg.Redis.TTL), func() { _ = client.Close() }
}
