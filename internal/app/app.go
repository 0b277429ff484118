// Package app wires the application together and runs the HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/movie-orders/internal/domain/movie"
	"github.com/xenking/movie-orders/internal/domain/order"
	"github.com/xenking/movie-orders/internal/domain/shipping"
	"github.com/xenking/movie-orders/internal/handler"
	"github.com/xenking/movie-orders/internal/moviecache"
	"github.com/xenking/movie-orders/internal/omdb"
	"github.com/xenking/movie-orders/internal/repository"
	"github.com/xenking/movie-orders/internal/zipcode"
	"github.com/xenking/movie-orders/pkg/health"
	"github.com/xenking/movie-orders/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	orderRepo := repository.NewOrderRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)

	// Movie catalog: OMDB, optionally behind a Redis read-through cache.
	var movies movie.Repository = omdb.NewClient(cfg.Omdb.BaseURL, cfg.Omdb.APIKey, nil)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		healthSvc.AddReadinessCheck("redis", 5*time.Second, func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		movies = moviecache.New(movies, rdb, cfg.MovieCacheTTL)
	}

	// ZIP directory: Zipwise API when a key is configured, otherwise the
	// locally ingested zip_codes table.
	var directory shipping.Directory
	if cfg.Zipwise.APIKey != "" {
		directory = zipcode.NewClient(cfg.Zipwise.BaseURL, cfg.Zipwise.APIKey, nil)
	} else {
		directory = repository.NewZipCodeRepository(pool)
	}

	// Domain services.
	orderService := order.NewService(orderRepo, customerRepo, movies, shipping.NewValidator(directory))

	// Metrics.
	meter := m.MeterProvider().Meter("movie-orders")
	ordersCreated, err := meter.Int64Counter("orders.created",
		metric.WithDescription("Number of orders created"))
	if err != nil {
		return errors.Wrap(err, "create orders.created counter")
	}
	ordersCompleted, err := meter.Int64Counter("orders.completed",
		metric.WithDescription("Number of orders completed"))
	if err != nil {
		return errors.Wrap(err, "create orders.completed counter")
	}

	// HTTP handlers.
	h := handler.NewHandler(orderService, movies, customerRepo, handler.Metrics{
		OrdersCreated:   ordersCreated,
		OrdersCompleted: ordersCompleted,
	})

	api := otelhttp.NewHandler(http.StripPrefix("/api", h.Routes()), "movie-orders-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", api)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
