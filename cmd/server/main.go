package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/omnilaze/internal/config"
	"github.com/example/omnilaze/internal/database"
	"github.com/example/omnilaze/internal/handlers"
	"github.com/example/omnilaze/internal/logger"
	"github.com/example/omnilaze/internal/repository"
	"github.com/example/omnilaze/internal/repository/gormstore"
	"github.com/example/omnilaze/internal/repository/memory"
	"github.com/example/omnilaze/internal/repository/redisstore"
	"github.com/example/omnilaze/internal/routes"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zl.Sync()

	stores, closeStores, err := openStores(cfg, zl)
	if err != nil {
		zl.Fatal("open stores", zap.Error(err))
	}
	defer closeStores()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	err = stores.Accounts.SeedInvites(ctx, cfg.InviteCodes)
	cancel()
	if err != nil {
		zl.Fatal("seed invite codes", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "OmniLaze API",
		ErrorHandler: handlers.ErrorHandler(zl),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	routes.Register(app, cfg, stores, zl)

	zl.Info("starting server",
		zap.String("port", cfg.AppPort),
		zap.String("environment", cfg.Environment),
		zap.Bool("development_mode", cfg.DevelopmentMode),
		zap.Bool("ephemeral", cfg.Ephemeral()),
		zap.Bool("strict_submit", cfg.StrictSubmit))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		zl.Fatal("fiber.Listen error", zap.Error(err))
	}
}

// openStores picks the backends from configuration: in-memory without a
// database URL, postgres otherwise, and redis for verification codes when
// a redis URL is set.
func openStores(cfg *config.Config, zl *zap.Logger) (repository.Stores, func(), error) {
	var stores repository.Stores
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Ephemeral() {
		zl.Warn("DATABASE_URL not set, using in-memory stores")
		stores = repository.Stores{
			Verifications: memory.NewVerifications(),
			Accounts:      memory.NewAccounts(),
			Orders:        memory.NewOrders(),
		}
	} else {
		db, err := database.Connect(cfg.DatabaseURL, cfg.DevelopmentMode, zl)
		if err != nil {
			return stores, closeAll, err
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		stores = repository.Stores{
			Verifications: gormstore.NewVerifications(db),
			Accounts:      gormstore.NewAccounts(db),
			Orders:        gormstore.NewOrders(db),
		}
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			closeAll()
			return stores, func() {}, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			closeAll()
			return stores, func() {}, fmt.Errorf("ping redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		stores.Verifications = redisstore.NewVerifications(rdb)
		zl.Info("verification codes stored in redis", zap.String("addr", opts.Addr))
	}

	return stores, closeAll, nil
}
