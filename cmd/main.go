package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"urbaneye/backend/internal/api"
	"urbaneye/backend/internal/api/handler"
	"urbaneye/backend/internal/complaint"
	"urbaneye/backend/internal/config"
	"urbaneye/backend/internal/events"
	"urbaneye/backend/internal/logger"
	"urbaneye/backend/internal/mlclient"
	"urbaneye/backend/internal/storage"
	"urbaneye/backend/internal/telegram"
)

func setupDependencies(cfg *config.Config, zlog *zap.Logger) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		zlog.Fatal("failed to connect PostgreSQL", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		zlog.Fatal("failed to connect Redis", zap.Error(err))
	}

	return db, rdb
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file loaded")
	}

	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("starting UrbanEye backend")

	db, rdb := setupDependencies(cfg, zlog)
	s := storage.NewService(db, rdb, zlog)
	if err := s.Migrate(); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}
	zlog.Info("database and Redis connections established, migrations complete")

	bus := events.NewBus(rdb, zlog)
	hub := events.NewHub(bus, zlog)
	ml := mlclient.New(cfg.MLServiceURL, zlog)
	svc := complaint.NewService(s, ml, bus, zlog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go bus.Run(ctx)
	go hub.Run(ctx)

	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		notifier, err := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, bus, zlog)
		if err != nil {
			zlog.Warn("telegram notifier disabled", zap.Error(err))
		} else {
			go notifier.Run(ctx)
		}
	}

	r := gin.Default()
	h := handler.NewHandler(svc, s, ml, hub, cfg, zlog)
	api.RegisterRoutes(r, h)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	zlog.Info("HTTP server listening", zap.String("port", cfg.Port))
	if err := server.ListenAndServe(); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
