package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/perks/internal/cache"
	"github.com/Nixie-Tech-LLC/perks/internal/clock"
	"github.com/Nixie-Tech-LLC/perks/internal/config"
	"github.com/Nixie-Tech-LLC/perks/internal/db"
	"github.com/Nixie-Tech-LLC/perks/internal/events"
	"github.com/Nixie-Tech-LLC/perks/internal/service"
	"github.com/Nixie-Tech-LLC/perks/internal/watch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.Development() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	defer conn.Close()

	if err := db.RunMigrations(conn, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	store := db.NewStore(conn)

	svcCfg := service.Config{
		Store:    store,
		Clock:    clock.NewReal(),
		Policy:   cfg.Policy,
		Location: cfg.DefaultLocation,
	}

	var invalidator watch.Invalidator
	if cfg.RedisAddress != "" {
		rdb := cache.NewClient(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Str("address", cfg.RedisAddress).Msg("redis unreachable, continuing without cache")
		} else {
			dc := cache.NewDiscountCache(rdb, cfg.CacheTTL)
			svcCfg.Cache = dc
			invalidator = dc
			log.Info().Str("address", cfg.RedisAddress).Dur("ttl", cfg.CacheTTL).Msg("discount cache enabled")
		}
	}

	var notifier watch.Notifier = events.Discard{}
	if cfg.MQTTBrokerURL != "" {
		pub, err := events.Connect(cfg.MQTTBrokerURL, cfg.MQTTClientID)
		if err != nil {
			log.Warn().Err(err).Msg("mqtt unavailable, availability events disabled")
		} else {
			defer pub.Close()
			notifier = pub
		}
	}

	watcher := watch.New(invalidator, notifier)
	defer watcher.Close()
	svcCfg.Scheduler = watcher
	discounts := service.NewDiscounts(svcCfg)

	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, cfg, store, discounts, watcher)

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: r}
	go func() {
		log.Info().Str("address", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
