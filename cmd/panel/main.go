// Command panel runs the TechFix panel gateway: it terminates browser
// sessions, enforces role-based access to the panel's routes, and proxies
// resource traffic to the upstream TechFix REST API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/techfix/panel-gateway/internal/api"
	"github.com/techfix/panel-gateway/internal/api/metrics"
	"github.com/techfix/panel-gateway/internal/infrastructure/config"
	"github.com/techfix/panel-gateway/internal/infrastructure/db/redis"
	"github.com/techfix/panel-gateway/internal/session"
	"github.com/techfix/panel-gateway/internal/upstream"
	"github.com/techfix/panel-gateway/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.Init(logger.Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: os.Getenv("ENV") != "production",
	})

	cfg := config.Load(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sessions prefer Redis so replicas converge; a failed connection
	// degrades to process-local storage instead of refusing to start.
	var (
		rdb     *goredis.Client
		backend session.Backend
	)
	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, sessions are process-local")
		backend = session.NewMemoryBackend()
	} else {
		redisBackend := session.NewRedisBackend(rdb, log)
		defer redisBackend.Close()
		backend = redisBackend
	}

	store := session.NewStore(backend, cfg.Session.TTL, log)
	client := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, log)
	manager := session.NewManager(store, client, log)
	defer manager.Close()

	cancelObserve := store.Subscribe(func(string) { metrics.SessionChangeEvents.Inc() })
	defer cancelObserve()
	metrics.RegisterActiveSessions(func() float64 { return float64(manager.Live()) })

	e := api.NewRouter(api.Deps{
		Manager:      manager,
		Users:        client,
		Catalog:      client,
		Repairs:      client,
		Redis:        rdb,
		Upstream:     client,
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.Secure,
		Log:          log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("panel gateway listening")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
