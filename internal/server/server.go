package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/wichananm65/supply-market-backend/internal/cart"
	"github.com/wichananm65/supply-market-backend/internal/catalog"
	"github.com/wichananm65/supply-market-backend/internal/checkout"
	"github.com/wichananm65/supply-market-backend/internal/config"
	"github.com/wichananm65/supply-market-backend/internal/order"
)

// Handlers groups the feature handlers mounted on the app.
type Handlers struct {
	Catalog  *catalog.Handler
	Cart     *cart.Handler
	Checkout *checkout.Handler
	Orders   *order.Handler
	// Ready backs /health when set, e.g. a database ping.
	Ready func(ctx context.Context) error
}

// New assembles the fiber app: public routes first, then every route
// registered after the JWT middleware requires a valid bearer token.
func New(cfg config.Config, logger *slog.Logger, h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "supply-market-backend",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(requestLogger(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		if h.Ready != nil {
			if err := h.Ready(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "message": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if h.Catalog != nil {
		h.Catalog.RegisterPublicRoutes(app)
	}

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	}))

	if h.Cart != nil {
		h.Cart.RegisterProtectedRoutes(app)
	}
	if h.Checkout != nil {
		h.Checkout.RegisterProtectedRoutes(app)
	}
	if h.Orders != nil {
		h.Orders.RegisterProtectedRoutes(app)
	}
	return app
}

func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.UserContext(), level, "request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		)
		return err
	}
}
