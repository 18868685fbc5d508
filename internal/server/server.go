// Package server boots the storefront: config, datastores, background
// workers, routes, and the HTTP listener with graceful shutdown.
package server

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

	"github.com/fusionfit/storefront/app/controllers"
	"github.com/fusionfit/storefront/app/jobs"
	"github.com/fusionfit/storefront/app/listeners"
	"github.com/fusionfit/storefront/app/repositories"
	"github.com/fusionfit/storefront/app/routes"
	"github.com/fusionfit/storefront/app/services"
	"github.com/fusionfit/storefront/config"
	"github.com/fusionfit/storefront/pkg/cache"
	"github.com/fusionfit/storefront/pkg/database"
	"github.com/fusionfit/storefront/pkg/logger"
	"github.com/fusionfit/storefront/pkg/metrics"
	"github.com/fusionfit/storefront/pkg/middleware"
	"github.com/fusionfit/storefront/pkg/queue"
	"github.com/fusionfit/storefront/pkg/reqid"
	"github.com/fusionfit/storefront/pkg/router"
	"github.com/fusionfit/storefront/pkg/schedule"
	"github.com/fusionfit/storefront/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

// Start boots everything and blocks until SIGINT/SIGTERM.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.Load(); err != nil {
		return err
	}

	if err := database.Connect(ctx); err != nil {
		return err
	}
	defer database.Disconnect(context.Background())

	if config.Get("LOG_MONGO", "false") == "true" {
		mh := logger.NewMongoHandler(database.Collection(database.ColLogs))
		defer mh.Close()
		logger.UseHandler(logger.NewMultiHandler(
			slog.NewJSONHandler(os.Stdout, nil), mh))
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, continuing without cache", "error", err)
	}
	if err := storage.Connect(); err != nil {
		return err
	}

	if err := database.EnsureIndexes(ctx); err != nil {
		return err
	}

	// Background machinery: queue workers, event listeners, scheduler.
	jobs.RegisterAll()
	if cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	queue.SetFailedJobsCollection(database.Collection("failed_jobs"))
	queue.StartWorkers(ctx, 5)

	users := repositories.NewUserRepository()
	products := repositories.NewProductRepository()
	orders := repositories.NewOrderRepository()

	listeners.Register(users)

	schedule.Hourly().Name("purge-expired-tokens").WithoutOverlapping().Run(func() {
		purgeCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := users.PurgeExpiredTokens(purgeCtx)
		if err != nil {
			logger.Error("schedule: purge expired tokens", "error", err)
			return
		}
		logger.Info("schedule: purged expired tokens", "count", n)
	})
	schedule.Start(ctx)

	r := NewRouter(routes.Controllers{
		Auth:    controllers.NewAuthController(services.NewAuthService(users, products)),
		Product: controllers.NewProductController(services.NewCatalogService(products, storage.Default())),
		Order:   controllers.NewOrderController(services.NewOrderService(orders, products)),
		Admin:   controllers.NewAdminController(services.NewAdminService(orders, products)),
		Cart:    controllers.NewCartController(services.DefaultCartService()),
	})

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewRouter assembles the middleware stack and mounts all routes.
// Split out so tests can drive the full HTTP surface.
func NewRouter(c routes.Controllers) *router.Router {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(corsOptions()))
	r.Use(middleware.RateLimit(300, time.Minute))

	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"status":"ok"}`)) //nolint:errcheck
	})
	r.Get("/metrics", "metrics", metrics.Handler().ServeHTTP)

	routes.Register(r, c)
	return r
}

func corsOptions() middleware.CORSOptions {
	opts := middleware.DefaultCORSOptions()
	if config.AppEnv() == "production" {
		opts.AllowedOrigins = []string{config.ClientURL()}
	}
	return opts
}
