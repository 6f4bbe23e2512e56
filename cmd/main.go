package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/meetvoice/message-history-service/internal/cache"
	"github.com/meetvoice/message-history-service/internal/config"
	"github.com/meetvoice/message-history-service/internal/handler"
	"github.com/meetvoice/message-history-service/internal/repository"
	"github.com/meetvoice/message-history-service/internal/service"
	"github.com/meetvoice/message-history-service/pkg/database"
	"github.com/meetvoice/message-history-service/pkg/log"
)

func main() {
	configPath := "config/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	logger := log.L()

	// Message store: required, the service cannot start without it.
	msgRepo, err := repository.NewMongoMessageRepository(cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to message store")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = msgRepo.Close(ctx)
	}()

	contactRepo := repository.NewMongoContactRepository(msgRepo.Client(), cfg.Mongo)

	// Fallback relational store: optional. Probed exactly once here; when
	// unreachable the service runs without enrichment and presence.
	var accountRepo *repository.GormAccountRepository
	if cfg.FallbackConfigured() {
		db, err := connectFallback(cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("fallback profile store unavailable, continuing without it")
		} else {
			accountRepo = repository.NewGormAccountRepository(db)
			logger.Info().Str("driver", cfg.Database.Driver).Msg("fallback profile store connected")
		}
	} else {
		logger.Info().Msg("no fallback profile store configured")
	}

	// Summary cache: optional as well; aggregation works uncached.
	var convCache cache.ConversationCache
	if redisCache, err := cache.NewRedisConversationCache(cfg.Redis, cfg.Cache.Prefix); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, running without conversation cache")
	} else {
		convCache = redisCache
		defer redisCache.Close()
	}

	messageService := service.NewMessageService(msgRepo, convCache)
	conversationService := service.NewConversationService(
		msgRepo, contactRepo, fallbackOrNil(accountRepo), convCache, cfg.Cache.TTL)
	presenceService := service.NewPresenceService(presenceOrNil(accountRepo))

	httpHandler := handler.NewHTTPHandler(messageService, conversationService, presenceService)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(log.GinMiddleware(logger))

	httpHandler.RegisterRoutes(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("starting message-history-service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

func connectFallback(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, &repository.AccountModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate accounts table: %w", err)
	}
	return db, nil
}

// A nil *GormAccountRepository must become a nil interface value, otherwise
// the services would see the capability as present.
func fallbackOrNil(repo *repository.GormAccountRepository) repository.FallbackProfileRepository {
	if repo == nil {
		return nil
	}
	return repo
}

func presenceOrNil(repo *repository.GormAccountRepository) repository.PresenceRepository {
	if repo == nil {
		return nil
	}
	return repo
}
