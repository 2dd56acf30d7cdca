package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/i474232898/weather-history/internal/api/http"
	"github.com/i474232898/weather-history/internal/config"
	"github.com/i474232898/weather-history/internal/logging"
	"github.com/i474232898/weather-history/internal/metrics"
	"github.com/i474232898/weather-history/internal/scheduler"
	"github.com/i474232898/weather-history/internal/store"
	"github.com/i474232898/weather-history/internal/views"
	"github.com/i474232898/weather-history/internal/weather"
	"github.com/i474232898/weather-history/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Logging, os.Stdout)

	var samples weather.Store
	switch cfg.Database.Driver {
	case config.DriverMemory:
		samples = store.NewMemoryStore(cfg.Database.Location())
	default:
		sqlStore, err := store.Open(cfg.Database, logging.Gorm(log, cfg.Logging.Level))
		if err != nil {
			log.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		samples = sqlStore
	}

	// Shared HTTP client for outbound provider calls; zero timeout keeps the transport default.
	httpClient := &http.Client{Timeout: cfg.Weather.HTTPTimeout}
	client, err := providers.New(cfg.Weather, httpClient)
	if err != nil {
		log.Error("failed to configure weather providers", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewCollector(registry)
	if err != nil {
		log.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	board := views.NewBoard()
	service := weather.NewService(samples, client, board, collector)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := service.Initialize(initCtx); err != nil {
		cancelInit()
		log.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	cancelInit()

	sched := scheduler.New(cfg.RefreshInterval, scheduler.RefreshFunc(func(ctx context.Context) error {
		_, err := service.RefreshInBackground(ctx)
		return err
	}))
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-history",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// AddCity waits on two upstream calls
		WriteTimeout: 60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		count, err := service.Count(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "degraded",
				"service": "weather-history",
				"error":   err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-history",
			"samples": count,
		})
	})

	httpapi.RegisterRoutes(app, service, board, registry)

	go func() {
		log.Info("listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
