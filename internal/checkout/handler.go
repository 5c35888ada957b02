package checkout

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/supply-market-backend/internal/cart"
	"github.com/wichananm65/supply-market-backend/internal/catalog"
	"github.com/wichananm65/supply-market-backend/internal/vendor"
)

// Handler exposes checkout over HTTP. It loads the vendor's stored cart and
// a fresh catalog snapshot for every request.
type Handler struct {
	service *Service
	carts   *cart.Service
	catalog *catalog.Service
	vendors *vendor.Service
	logger  *slog.Logger
}

func NewHandler(s *Service, carts *cart.Service, cat *catalog.Service, vendors *vendor.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: s, carts: carts, catalog: cat, vendors: vendors, logger: logger}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/checkout/preview", h.preview)
	app.Post("/api/v1/checkout", h.placeOrder)
}

func (h *Handler) preview(c *fiber.Ctx) error {
	vendorID, err := vendor.IDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	ctx := c.UserContext()
	crt, err := h.carts.Get(ctx, vendorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	snap, err := h.catalog.SnapshotFor(ctx, crt.ProductIDs())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(h.service.Preview(crt, snap))
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	sess, err := h.vendors.SessionFromCtx(c)
	if err != nil {
		switch {
		case errors.Is(err, fiber.ErrUnauthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		case errors.Is(err, vendor.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	ctx := c.UserContext()
	crt, err := h.carts.Get(ctx, sess.VendorID())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	snap, err := h.catalog.SnapshotFor(ctx, crt.ProductIDs())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	receipt, err := h.service.PlaceOrder(ctx, sess, crt, snap)
	var verr *ValidationError
	var perr *PersistenceError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": verr.Error(),
			"reason":  verr.Reason,
			"issues":  verr.Issues,
		})
	case errors.As(err, &perr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message":      "checkout failed",
			"reason":       perr.Kind,
			"checkoutId":   perr.CheckoutID,
			"supplierId":   perr.SupplierID,
			"placedOrders": perr.Placed,
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	// Orders are already written; a failure here only leaves a stale cart.
	if err := h.carts.Save(ctx, sess.VendorID(), crt); err != nil {
		h.logger.ErrorContext(ctx, "clear cart after checkout",
			slog.String("checkout_id", receipt.CheckoutID),
			slog.Int64("vendor_id", sess.VendorID()),
			slog.Any("error", err),
		)
	}
	return c.Status(fiber.StatusCreated).JSON(receipt)
}
