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

	"github.com/redis/go-redis/v9"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/cart"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/config"
	httpDelivery "github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/delivery/http"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/messaging"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/messaging/gochannel"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/messaging/kafka"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository/memory"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository/postgres"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/service"
)

const memoryBackend = "memory"

type repositories struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	orders     repository.OrderRepository
	events     repository.EventStore
	newsletter repository.NewsletterRepository
	close      func() error
}

type broker interface {
	messaging.Publisher
	messaging.Subscriber
	Close() error
}

func main() {
	if err := run(); err != nil {
		slog.Error("Shop exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(cfg.Logger(os.Stdout))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Database ---
	repos, err := openRepositories(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	defer repos.close()

	if err := repos.categories.Seed(ctx, repository.SeedCategories()); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := repos.products.Seed(ctx, repository.SeedProducts()); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	// --- Cart storage ---
	sessions, closeSessions, err := openCartStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer closeSessions()

	// --- Messaging ---
	var bus broker
	if len(cfg.KafkaBrokers) > 0 {
		bus = kafka.NewKafkaBroker(cfg.KafkaBrokers)
		slog.Info("Using Kafka brokers", "brokers", cfg.KafkaBrokers)
	} else {
		bus = gochannel.NewBroker(slog.Default())
		slog.Info("No Kafka brokers configured, using in-process pub/sub")
	}
	defer bus.Close()

	// --- Services ---
	shop := cfg.Shop
	catalogSvc := service.NewCatalogService(repos.products, repos.categories, shop.ReadTimeout, shop.CatalogTTL)
	cartSvc := service.NewCartService(catalogSvc, sessions)
	checkoutSvc := service.NewCheckoutService(repos.orders, bus, shop.FeePolicy(), shop.Merchant)
	trackingSvc := service.NewTrackingService(repos.orders, shop.ReadTimeout)
	orderSvc := service.NewOrderService(repos.orders, repos.events, bus)
	newsletterSvc := service.NewNewsletterService(repos.newsletter)

	// --- HTTP API ---
	handler := httpDelivery.NewHandler(catalogSvc, cartSvc, checkoutSvc, trackingSvc, orderSvc, newsletterSvc, cfg.AdminToken)
	if cfg.AdminToken == "" {
		slog.Warn("ADMIN_TOKEN is not set, operator endpoints are disabled")
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpDelivery.EnableCORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start everything ---
	go bus.Consume(ctx, messaging.TopicOrderPlaced, "tezzaz-order-notifications", orderSvc.HandleOrderPlaced)
	go bus.Consume(ctx, messaging.TopicOrderStatusChanged, "tezzaz-order-status", orderSvc.HandleOrderStatusChanged)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "err", err)
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}

func openRepositories(ctx context.Context, dsn string) (*repositories, error) {
	if dsn == memoryBackend {
		slog.Warn("DATABASE_URL=memory, orders will not survive a restart")
		events := memory.NewEventStore()
		return &repositories{
			products:   memory.NewProductRepository(),
			categories: memory.NewCategoryRepository(),
			orders:     memory.NewOrderRepository(events),
			events:     events,
			newsletter: memory.NewNewsletterRepository(),
			close:      func() error { return nil },
		}, nil
	}

	db, err := postgres.InitDB(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &repositories{
		products:   postgres.NewProductRepository(db),
		categories: postgres.NewCategoryRepository(db),
		orders:     postgres.NewOrderRepository(db),
		events:     postgres.NewEventStore(db),
		newsletter: postgres.NewNewsletterRepository(db),
		close:      db.Close,
	}, nil
}

func openCartStorage(ctx context.Context, cfg config.Config) (service.StorageFactory, func() error, error) {
	if cfg.RedisURL == memoryBackend {
		slog.Warn("REDIS_URL=memory, carts are kept in process memory")
		return service.MemorySessions(cart.NewMemorySessions()), func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Shop.ReadTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}

	storage := cart.NewRedisStorage(client, "tezzaz:session", cart.WithRedisTTL(cfg.Shop.CartTTL))
	return service.RedisSessions(storage), client.Close, nil
}
