package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/userhub/account-api/docs"
	"github.com/userhub/account-api/internal/api"
	"github.com/userhub/account-api/internal/core/service"
	"github.com/userhub/account-api/internal/infrastructure/config"
	mongodb "github.com/userhub/account-api/internal/infrastructure/db/mongo"
	redisdb "github.com/userhub/account-api/internal/infrastructure/db/redis"
	"github.com/userhub/account-api/internal/infrastructure/hashing"
	"github.com/userhub/account-api/internal/infrastructure/storage"
	"github.com/userhub/account-api/pkg/logger"
)

// @title        Account API
// @version      1.0
// @description  User-account backend: registration, login, password change, profile CRUD and profile-picture upload.
// @BasePath     /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	accountRepo := mongodb.NewAccountRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("token service initialisation failed")
	}

	files, err := storage.NewDiskStore(cfg.Upload.Dir, "uploads")
	if err != nil {
		log.Fatal().Err(err).Msg("upload directory initialisation failed")
	}

	hasher := hashing.NewPool(cfg.Bcrypt.Workers, cfg.Bcrypt.Cost, log)

	e := api.NewRouter(api.Deps{
		DB:        db,
		Redis:     rdb,
		Hasher:    hasher,
		Tokens:    tokens,
		Files:     files,
		UploadDir: cfg.Upload.Dir,
		Logger:    log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
