package cart

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/supply-market-backend/internal/vendor"
)

// Handler delegates cart operations to the cart service.
// This keeps cart-specific HTTP routing isolated.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/cart", h.getCart)
	app.Delete("/api/v1/cart", h.clearCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Put("/api/v1/cart/items/:productID", h.setQuantity)
	app.Delete("/api/v1/cart/items/:productID", h.removeItem)
}

type cartResponse struct {
	Items []Entry `json:"items"`
	Units int     `json:"units"`
}

func toResponse(c *Cart) cartResponse {
	return cartResponse{Items: c.Entries(), Units: c.Units()}
}

type addRequest struct {
	ProductID int64 `json:"productID"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	vendorID, err := vendor.IDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	crt, err := h.service.Get(c.UserContext(), vendorID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(toResponse(crt))
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	vendorID, err := vendor.IDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	crt, err := h.service.Add(c.UserContext(), vendorID, payload.ProductID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(toResponse(crt))
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	vendorID, err := vendor.IDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	productID, err := strconv.ParseInt(c.Params("productID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productID"})
	}
	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "quantity is required"})
	}
	crt, err := h.service.SetQuantity(c.UserContext(), vendorID, productID, *payload.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(toResponse(crt))
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	vendorID, err := vendor.IDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	productID, err := strconv.ParseInt(c.Params("productID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productID"})
	}
	crt, err := h.service.Remove(c.UserContext(), vendorID, productID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(toResponse(crt))
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	vendorID, err := vendor.IDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.Clear(c.UserContext(), vendorID); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidProduct), errors.Is(err, ErrInvalidVendor):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
