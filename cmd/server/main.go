package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "userauth/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"userauth/internal/auth"
	"userauth/internal/cache"
	"userauth/internal/config"
	"userauth/internal/db"
	"userauth/internal/guard"
	"userauth/internal/handler"
	"userauth/internal/logging"
	"userauth/internal/repository"
	"userauth/internal/router"
	"userauth/internal/service"
	"userauth/internal/session"
)

// @title User Auth API
// @version 1.0
// @description User management API with server-side sessions and a Ticket token cookie.
// @host localhost:3001
// @BasePath /
// @schemes http
func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return err
	}
	if cfg.ResetDB {
		log.Warn(ctx, "RESET_DB=true detected, dropping users table")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		return err
	}

	store, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(gormDB)

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	sessions := session.NewManager(store, session.Options{
		TTL:    cfg.SessionTTL,
		Secret: cfg.SessionSecret,
		Secure: cfg.CookieSecure,
	}, log.With("component", "session"))

	authService := service.NewAuthService(userRepo, hasher, jwtService)
	userService := service.NewUserService(userRepo, hasher)

	e := echo.New()
	e.HideBanner = true
	router.Register(
		e,
		cfg,
		log,
		sessions,
		guard.New(userRepo, sessions, jwtService, cfg.CookieSecure, log),
		handler.NewAuthHandler(authService, sessions, cfg.TokenTTL, cfg.CookieSecure, log),
		handler.NewUserHandler(userService, log),
	)

	log.Info(ctx, "swagger documentation available", "url", swaggerURL(cfg))

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(":" + cfg.ServerPort)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newSessionStore picks the backend named by SESSION_STORE. The memory store
// purges expired sessions until ctx is cancelled.
func newSessionStore(ctx context.Context, cfg *config.Config, log logging.Logger) (session.Store, error) {
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "using redis session store", "addr", cfg.RedisAddr)
		return session.NewRedisStore(client), nil
	default:
		if cfg.SessionStore != config.SessionStoreMemory {
			log.Warn(ctx, "unknown SESSION_STORE, using memory", "value", cfg.SessionStore)
		}
		store := session.NewMemoryStore()
		go store.Run(ctx, time.Minute)
		return store, nil
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
