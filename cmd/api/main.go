package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"twin-profile/internal/analysis"
	"twin-profile/internal/config"
	"twin-profile/internal/db"
	apihttp "twin-profile/internal/http"
	"twin-profile/internal/knowledge"
	"twin-profile/internal/repository"
	"twin-profile/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	kb := knowledge.LoadWithThreshold(cfg.DatasetPath, cfg.FeatureThreshold, logger)
	if kb.Len() == 0 {
		logger.Warn("knowledge base is empty, analyses will produce no evidence")
	}

	params := analysis.Params{
		MinAbsCorrelation: cfg.MinAbsCorrelation,
		AdjustmentScale:   cfg.AdjustmentScale,
		ConflictPenalty:   cfg.ConflictPenalty,
	}
	orchestrator := analysis.NewOrchestrator(
		analysis.DefaultAnalyzerFactory(kb, params, logger),
		params,
		logger,
	)

	profileRepo := repository.NewPgProfileRepository(pool)

	cache := service.NewMemoryProfileCache()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory cache", zap.Error(err))
		} else {
			cache = service.NewRedisProfileCache(redisClient)
		}
		cancel()
	}

	profileSvc := service.NewProfileService(
		orchestrator,
		profileRepo,
		cache,
		time.Duration(cfg.CacheTTLHours)*time.Hour,
		logger,
	)

	profileHandler := apihttp.NewProfileHandler(logger, profileSvc)
	router := apihttp.NewRouter(logger, profileHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("dataset_version", kb.Version()),
		zap.Int("correlation_records", kb.Len()))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
