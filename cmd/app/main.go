package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wichananm65/supply-market-backend/internal/cart"
	"github.com/wichananm65/supply-market-backend/internal/catalog"
	"github.com/wichananm65/supply-market-backend/internal/checkout"
	"github.com/wichananm65/supply-market-backend/internal/config"
	"github.com/wichananm65/supply-market-backend/internal/database/postgres"
	"github.com/wichananm65/supply-market-backend/internal/order"
	"github.com/wichananm65/supply-market-backend/internal/server"
	"github.com/wichananm65/supply-market-backend/internal/vendor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}

	cartRepo, closeCarts, err := newCartRepository(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	defer closeCarts()

	catalogService := catalog.NewService(catalog.NewPostgresRepository(db))
	vendorService := vendor.NewService(vendor.NewPostgresRepository(db))
	cartService := cart.NewService(cartRepo)
	orderRepo := order.NewPostgresRepository(db)

	checkoutService := checkout.NewService(orderRepo,
		checkout.Policy{FreeDeliveryThreshold: cfg.FreeDeliveryThreshold, DeliveryFee: cfg.DeliveryFee},
		checkout.WithLogger(logger),
		checkout.WithParallelGroups(cfg.ParallelGroups),
	)

	app := server.New(cfg, logger, server.Handlers{
		Catalog:  catalog.NewHandler(catalogService),
		Cart:     cart.NewHandler(cartService),
		Checkout: checkout.NewHandler(checkoutService, cartService, catalogService, vendorService, logger),
		Orders:   order.NewHandler(order.NewService(orderRepo)),
		Ready:    db.PingContext,
	})

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", cfg.Addr))
		errc <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// newCartRepository stores carts in Redis when REDIS_ADDR is set and in the
// vendor_carts table otherwise.
func newCartRepository(ctx context.Context, cfg config.Config, db *sql.DB, logger *slog.Logger) (cart.Repository, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("cart storage: postgres")
		return cart.NewPostgresRepository(db), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}
	logger.Info("cart storage: redis", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.CartTTL))
	return cart.NewRedisRepository(client, cfg.CartTTL), func() { client.Close() }, nil
}
