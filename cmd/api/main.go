package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"example.com/agenda/internal/api"
	"example.com/agenda/internal/auth"
	"example.com/agenda/internal/config"
	"example.com/agenda/internal/crypto"
	"example.com/agenda/internal/domain"
	"example.com/agenda/internal/events"
	"example.com/agenda/internal/locks"
	persistence "example.com/agenda/internal/persistence/mongodb"
	"example.com/agenda/internal/platform/logger"
	platformmongo "example.com/agenda/internal/platform/mongodb"
	httptransport "example.com/agenda/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := platformmongo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to mongodb")
	}
	defer func() {
		if err := platformmongo.Close(client); err != nil {
			log.Error().Err(err).Msg("disconnect mongodb")
		}
	}()

	db := client.Database(cfg.MongoDatabase)
	activityRepo := persistence.NewActivityRepository(db)
	userRepo := persistence.NewUserRepository(db)

	cipher, err := crypto.New(cfg.CipherKey, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize field cipher")
	}

	var publisher domain.EventPublisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewPublisher(cfg.KafkaBrokers, cfg.EventTopic, log)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	var locker locks.Locker = locks.NewMemory()
	if cfg.RedisAddr != "" {
		redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		locker = locks.NewRedis(redisClient, cfg.ReconcileLockTTL)
	}

	authCfg := auth.Config{Secret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}

	activities := domain.NewService(activityRepo, cipher, publisher, locker, log)
	users := domain.NewUserService(userRepo)
	resolver := auth.NewResolver(userRepo, authCfg)

	handler := api.New(activities, users, resolver, authCfg, activityRepo, log)
	router := handler.Router()
	router.Handle("/metrics", promhttp.Handler())

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, httptransport.CORS(cfg.CORSOrigin, router))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("address", cfg.HTTPAddress).Msg("agenda service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
