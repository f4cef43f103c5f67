package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gripinvest/ai"
	"gripinvest/config"
	"gripinvest/database"
	"gripinvest/mailer"
	"gripinvest/middleware"
	"gripinvest/routes"
	"gripinvest/services"
	"gripinvest/utils"

	"github.com/redis/go-redis/v9"
)

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// connectRedis returns nil when redis is not configured or unreachable; the
// rate limiters then fall back to memory and token revocation is disabled.
func connectRedis(cfg config.RedisConfig, log *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		log.Info("redis not configured, using in-memory rate limiting")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Pass, DB: cfg.DB})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, using in-memory rate limiting", "addr", cfg.Addr, "error", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func newAssistant(ctx context.Context, cfg config.AIConfig, log *slog.Logger) ai.Assistant {
	g, err := ai.NewGemini(ctx, cfg.APIKey, cfg.Model, log)
	if err != nil {
		log.Warn("AI assistant disabled", "error", err)
		return ai.Unavailable{}
	}
	return g
}

func main() {
	seed := flag.Bool("seed", false, "load development fixtures and exit")
	flag.Parse()

	boot := newLogger("info")
	cfg, err := config.Load()
	if err != nil {
		boot.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := newLogger(cfg.LogLevel)

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		log.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	if *seed {
		if err := services.Seed(context.Background(), db, log); err != nil {
			log.Error("seeding failed", "error", err)
			os.Exit(1)
		}
		log.Info("seed completed")
		return
	}

	rdb := connectRedis(cfg.Redis, log)
	assistant := newAssistant(context.Background(), cfg.AI, log)
	mail := mailer.New(cfg.Mail, log)

	accounts := services.NewAccountLedger(db)
	router := routes.InitRouter(routes.Deps{
		Log:       log,
		DB:        db,
		Tokens:    utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Audience, cfg.JWT.Issuer, cfg.JWT.TTL, rdb),
		Users:     services.NewUserService(db, assistant, mail, log),
		Catalog:   services.NewProductCatalog(db, assistant, log),
		Ledger:    services.NewInvestmentLedger(db, accounts),
		Portfolio: services.NewPortfolioAggregator(db, assistant, log),
		Logs:      services.NewTransactionLogs(db, assistant, log),
		Metrics:   middleware.NewMetrics(),
		Store:     middleware.NewStore(rdb),
		Rate:      cfg.Rate,
		Origins:   cfg.CORSAllowedOrigins,
	})

	// Logging -> Security headers -> Request ID -> Max Body -> Timeout -> Recovery -> router
	handler := middleware.RequestLog(log)(
		middleware.SecurityHeaders(!cfg.IsDevelopment())(
			middleware.RequestID(
				middleware.MaxBody(cfg.MaxBodyBytes)(
					middleware.Timeout(cfg.RequestTimeout())(
						middleware.Recovery(log)(router),
					),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", cfg.Addr(), "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server exited")
}
