package server

import (
	"context"
	"net/http"
	"os"
	"time"

	cachepackage "flashplan/cache"
	"flashplan/config"
	"flashplan/database"
	"flashplan/handlers"
	"flashplan/ratelimit"
	"flashplan/session"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// checkAuth is consulted by httpserver for routes whose AuthType is not
// "none". All routes are registered as "none": handlers resolve the
// session cookie themselves so they can tell a dead session from a
// failing store.
func checkAuth(r *http.Request) (bool, httpserver.RequestAuth) {
	return false, httpserver.RequestAuth{}
}

func InitLogger() {
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})
}

func StartServer(envFile string) {
	InitLogger()
	logger.Info("Starting FlashPlan service...")

	cfg, err := config.Load(envFile)
	if err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	planCache, err := cachepackage.InitializeCache(cfg)
	if err != nil {
		logger.Error("Failed to initialize cache", zap.Error(err))
		os.Exit(1)
	}
	if planCache != nil {
		defer planCache.Close()
	}

	store, closeStore, err := newSessionStore(cfg, dbConn)
	if err != nil {
		logger.Error("Failed to initialize session store", zap.Error(err))
		os.Exit(1)
	}
	defer closeStore()

	sessions := session.NewManager(store, cfg.SessionTTL, cfg.CookieSecure)
	limiter := ratelimit.New(cfg.AuthRatePerSecond, cfg.AuthRateBurst)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runMaintenance(ctx, cfg.SessionPurge, sessions, limiter)

	h := handlers.New(dbConn, planCache, sessions, limiter, handlers.Options{
		BcryptCost:   cfg.BcryptCost,
		PlanCacheTTL: cfg.PlanCacheTTL,
	})

	server := httpserver.New(cfg.Port, checkAuth)
	for _, rt := range Routes(h) {
		server.Register(rt.Route, rt.Handler)
	}

	logger.Info("FlashPlan service started", zap.String("port", cfg.Port))
	logger.Info("Health check: GET /health")

	if err := server.Start(); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		os.Exit(1)
	}
}

// newSessionStore picks the session backend. The returned close func is
// always safe to call.
func newSessionStore(cfg *config.Config, dbConn *sqlx.DB) (session.Store, func(), error) {
	if cfg.SessionBackend != "redis" {
		return session.NewSQLStore(dbConn), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}

	logger.Info("Using redis session store", zap.String("addr", cfg.RedisAddr))
	return session.NewRedisStore(client), func() { client.Close() }, nil
}

// runMaintenance purges expired sessions and idle rate-limit buckets
// until ctx is cancelled.
func runMaintenance(ctx context.Context, every time.Duration, sessions *session.Manager, limiter *ratelimit.Limiter) {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Error("Failed to purge expired sessions", zap.Error(err))
			} else if purged > 0 {
				logger.Info("Purged expired sessions", zap.Int64("count", purged))
			}
			limiter.Cleanup(every)
		}
	}
}
