// Package app wires configuration, storage, domain services and the HTTP
// server into a runnable API process.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/orderkaro/orderkaro/db"
	"github.com/orderkaro/orderkaro/internal/cache"
	"github.com/orderkaro/orderkaro/internal/domain/address"
	"github.com/orderkaro/orderkaro/internal/domain/auth"
	"github.com/orderkaro/orderkaro/internal/domain/cart"
	"github.com/orderkaro/orderkaro/internal/domain/catalog"
	"github.com/orderkaro/orderkaro/internal/domain/order"
	"github.com/orderkaro/orderkaro/internal/domain/payment"
	"github.com/orderkaro/orderkaro/internal/domain/user"
	"github.com/orderkaro/orderkaro/internal/handler"
	"github.com/orderkaro/orderkaro/internal/memstore"
	"github.com/orderkaro/orderkaro/internal/repository"
	"github.com/orderkaro/orderkaro/pkg/health"
	"github.com/orderkaro/orderkaro/pkg/httpmiddleware"
)

// repositories groups the storage implementations behind the domain
// interfaces so the memory and PostgreSQL backends wire identically.
type repositories struct {
	catalog   catalog.Repository
	carts     cart.Repository
	addresses address.Repository
	orders    order.Repository
	users     user.Repository
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	var repos repositories
	if cfg.DatabaseURL != "" {
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := repository.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}

		healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
		repos = repositories{
			catalog:   repository.NewCatalogRepository(pool),
			carts:     repository.NewCartRepository(pool),
			addresses: repository.NewAddressRepository(pool),
			orders:    repository.NewOrderRepository(pool),
			users:     repository.NewUserRepository(pool),
		}
	} else {
		lg.Warn("No database configured, using in-memory storage")
		mem, err := newMemoryRepositories()
		if err != nil {
			return errors.Wrap(err, "seed in-memory storage")
		}
		repos = mem
	}

	// Optional Redis cart cache.
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return errors.Wrap(err, "parse redis URL")
		}
		client := redis.NewClient(opts)
		defer client.Close() //nolint:errcheck

		healthSvc.AddReadinessCheck("redis", 5*time.Second, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		repos.carts = cache.NewCachedRepository(repos.carts, cache.NewRedisCache(client))
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain services.
	cartService := cart.NewService(repos.carts, repos.catalog)
	addressService := address.NewService(repos.addresses)
	orderService := order.NewService(repos.catalog, repos.orders)
	userService := user.NewService(repos.users)
	tokens := auth.NewJWT(cfg.JWTSecret, cfg.TokenTTL)
	payments := payment.NewStubProvider(cfg.PaymentSecret)

	// HTTP surface.
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	h := handler.NewHandler(
		handler.Config{Version: cfg.Version, PaymentTimeout: cfg.PaymentTimeout},
		repos.catalog,
		cartService,
		addressService,
		orderService,
		userService,
		tokens,
		payments,
	)
	h.RegisterRoutes(engine)

	// Mux: health probes + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/", engine)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			httpmiddleware.Instrument("orderkaro-api", mux),
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

// newMemoryRepositories builds in-memory stores with the embedded catalog.
func newMemoryRepositories() (repositories, error) {
	products, categories, err := db.SeedCatalog()
	if err != nil {
		return repositories{}, err
	}
	catalogStore := memstore.NewCatalogStore()
	catalogStore.Seed(products, categories)
	return repositories{
		catalog:   catalogStore,
		carts:     memstore.NewCartStore(),
		addresses: memstore.NewAddressStore(),
		orders:    memstore.NewOrderStore(),
		users:     memstore.NewUserStore(),
	}, nil
}
