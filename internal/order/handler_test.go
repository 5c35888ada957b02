package order

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/supply-market-backend/internal/vendor"
)

func setupApp(repo Repository) *fiber.App {
	a := fiber.New()
	a.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-Vendor-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{vendor.ClaimVendorID: float64(id)}})
			}
		}
		return c.Next()
	})
	NewHandler(NewService(repo)).RegisterProtectedRoutes(a)
	return a
}

func TestGetOrders_History(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first, _ := NewOrder(1, 10, decimal.NewFromInt(300), "Asha, Dadar", base)
	first, _ = repo.CreateOrder(ctx, first)
	it, _ := NewItem(first.ID, 3, 3, decimal.NewFromInt(100))
	repo.CreateOrderItem(ctx, it)

	second, _ := NewOrder(1, 11, decimal.NewFromInt(600), "Asha, Dadar", base.Add(time.Hour))
	second, _ = repo.CreateOrder(ctx, second)

	other, _ := NewOrder(2, 10, decimal.NewFromInt(50), "Ramesh, Bandra", base)
	repo.CreateOrder(ctx, other)

	a := setupApp(repo)

	res, err := a.Test(httptest.NewRequest("GET", "/api/v1/orders", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", res.StatusCode)
	}

	req := httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.Header.Set("X-Vendor-ID", "1")
	res, err = a.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}

	var orders []Order
	if err := json.NewDecoder(res.Body).Decode(&orders); err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != second.ID {
		t.Errorf("expected newest order first, got %d", orders[0].ID)
	}
	if len(orders[1].Items) != 1 || orders[1].Items[0].Quantity != 3 {
		t.Errorf("expected items attached to first order, got %+v", orders[1].Items)
	}
}

func TestInMemoryCreateItem_UnknownOrder(t *testing.T) {
	repo := NewInMemoryRepository()
	it, _ := NewItem(99, 3, 1, decimal.NewFromInt(1))
	if _, err := repo.CreateOrderItem(context.Background(), it); err != ErrConstraint {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}
}
