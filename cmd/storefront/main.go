package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/shopwave/storefront/internal/cache"
	"github.com/shopwave/storefront/internal/httpserver"
	"github.com/shopwave/storefront/internal/notify"
	"github.com/shopwave/storefront/internal/repo"
	"github.com/shopwave/storefront/internal/search"
	"github.com/shopwave/storefront/internal/service"
	"github.com/shopwave/storefront/pkg/config"
	"github.com/shopwave/storefront/pkg/db"
	"github.com/shopwave/storefront/pkg/kafka"
	"github.com/shopwave/storefront/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("storefront_exit", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load(".env")
	if err := cfg.Require(); err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gdb, err := db.Open(initCtx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer func() { _ = db.Close(gdb) }()

	Repo := repo.New(gdb)
	if err := Repo.AutoMigrate(initCtx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var cartCache cache.CartCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		rc := cache.NewRedisCache(client)
		if err := rc.Ping(initCtx); err != nil {
			logger.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		}
		cartCache = rc
	}

	var events httpserver.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		defer producer.Close()
		events = producer
	}

	catalogService := service.NewCatalogService(Repo, nil)
	if cfg.ESURL != "" {
		es, err := search.NewClient(initCtx, search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			logger.Warn("search_unavailable", "url", cfg.ESURL, "error", err)
		} else {
			catalogService.Search = es
			if cfg.SearchReindexOnStart {
				n, err := catalogService.Reindex(initCtx, es)
				if err != nil {
					logger.Warn("search_reindex_error", "error", err)
				} else {
					logger.Info("search_reindexed", "products", n)
				}
			}
		}
	}

	notifications := notify.NewManager(notify.DefaultTTL)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(httpserver.Common(logger)...)

	httpserver.Register(e, &httpserver.Deps{
		CartHandler: &httpserver.CartHTTP{
			Svc:    service.NewCartService(Repo, Repo, cartCache),
			Notify: notifications,
			Events: events,
		},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogService},
		AuthHandler: &httpserver.AuthHTTP{
			Svc:           service.NewAuthService(Repo, cfg.JWTSecret, cfg.AccessTokenTTL),
			Events:        events,
			SecureCookies: cfg.CookieSecure,
		},
		NotificationsHandler: &httpserver.NotificationsHTTP{Manager: notifications},
		JWTSecret:            cfg.JWTSecret,
		DB:                   Repo,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepNotifications(ctx, notifications)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		logger.Info("server_starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("echo start: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("server_shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo_shutdown_error", "error", err)
	}

	logger.Info("server_stopped")
	return nil
}

func sweepNotifications(ctx context.Context, m *notify.Manager) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
