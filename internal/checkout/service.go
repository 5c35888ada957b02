package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wichananm65/supply-market-backend/internal/cart"
	"github.com/wichananm65/supply-market-backend/internal/catalog"
	"github.com/wichananm65/supply-market-backend/internal/order"
	"github.com/wichananm65/supply-market-backend/internal/vendor"
	"golang.org/x/sync/errgroup"
)

// OrderStore is the write side of order persistence used by checkout.
type OrderStore interface {
	CreateOrder(ctx context.Context, ord order.Order) (order.Order, error)
	CreateOrderItem(ctx context.Context, item order.Item) (order.Item, error)
}

// Preview is what the vendor sees before confirming a checkout.
type Preview struct {
	Report
	Groups []Group `json:"groups"`
	Quote  Quote   `json:"quote"`
	// CanCheckout is true when PlaceOrder would pass validation.
	CanCheckout bool `json:"canCheckout"`
}

// Receipt describes a completed checkout. Orders follow group order and
// carry their items.
type Receipt struct {
	CheckoutID string        `json:"checkoutId"`
	Orders     []order.Order `json:"orders"`
	Quote      Quote         `json:"quote"`
}

type Option func(*Service)

// WithClock replaces time.Now as the source of order timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithParallelGroups places the orders of different suppliers concurrently.
// Items within one order are still written in sequence.
func WithParallelGroups(on bool) Option {
	return func(s *Service) { s.parallel = on }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service validates carts, splits them by supplier and writes one order per
// supplier.
type Service struct {
	store    OrderStore
	policy   Policy
	logger   *slog.Logger
	now      func() time.Time
	parallel bool
}

func NewService(store OrderStore, policy Policy, opts ...Option) *Service {
	s := &Service{
		store:  store,
		policy: policy,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Policy() Policy { return s.policy }

// Preview validates and prices the cart without writing anything.
func (s *Service) Preview(c *cart.Cart, snap catalog.Snapshot) Preview {
	report := Validate(c, snap)
	groups := Split(report)
	return Preview{
		Report:      report,
		Groups:      groups,
		Quote:       s.policy.Quote(groups),
		CanCheckout: report.Err() == nil,
	}
}

// PlaceOrder checks out c for the session's vendor using the prices in snap.
//
// A refused cart returns a *ValidationError before any storage call. A
// storage failure stops the checkout and returns a *PersistenceError; what
// was written before it stays written and c is left untouched. On success c
// is cleared and the receipt lists every order created.
func (s *Service) PlaceOrder(ctx context.Context, sess vendor.Session, c *cart.Cart, snap catalog.Snapshot) (Receipt, error) {
	report := Validate(c, snap)
	if err := report.Err(); err != nil {
		return Receipt{}, err
	}
	groups := Split(report)
	quote := s.policy.Quote(groups)
	checkoutID := uuid.NewString()
	log := s.logger.With(
		slog.String("checkout_id", checkoutID),
		slog.Int64("vendor_id", sess.VendorID()),
	)
	if len(report.Dropped) > 0 {
		log.WarnContext(ctx, "cart products missing from catalog", slog.Any("product_ids", report.Dropped))
	}

	var (
		placed []order.Order
		err    error
	)
	if s.parallel {
		placed, err = s.placeParallel(ctx, checkoutID, sess, groups)
	} else {
		placed, err = s.placeSequential(ctx, checkoutID, sess, groups)
	}
	if err != nil {
		var perr *PersistenceError
		if errors.As(err, &perr) {
			perr.Placed = placed
			log.ErrorContext(ctx, "checkout aborted",
				slog.String("kind", string(perr.Kind)),
				slog.Int64("supplier_id", perr.SupplierID),
				slog.Int("placed_orders", len(placed)),
				slog.Any("error", perr.Err),
			)
		}
		return Receipt{}, err
	}

	c.Clear()
	log.InfoContext(ctx, "checkout completed",
		slog.Int("orders", len(placed)),
		slog.String("subtotal", quote.Subtotal.String()),
		slog.String("total", quote.Total.String()),
	)
	return Receipt{CheckoutID: checkoutID, Orders: placed, Quote: quote}, nil
}

func (s *Service) placeSequential(ctx context.Context, checkoutID string, sess vendor.Session, groups []Group) ([]order.Order, error) {
	placed := make([]order.Order, 0, len(groups))
	for _, g := range groups {
		ord, err := s.placeGroup(ctx, checkoutID, sess, g)
		if ord.ID != 0 {
			placed = append(placed, ord)
		}
		if err != nil {
			return placed, err
		}
	}
	return placed, nil
}

func (s *Service) placeParallel(ctx context.Context, checkoutID string, sess vendor.Session, groups []Group) ([]order.Order, error) {
	results := make([]order.Order, len(groups))
	var mu sync.Mutex
	eg, egctx := errgroup.WithContext(ctx)
	for i, g := range groups {
		i, g := i, g
		eg.Go(func() error {
			ord, err := s.placeGroup(egctx, checkoutID, sess, g)
			mu.Lock()
			results[i] = ord
			mu.Unlock()
			return err
		})
	}
	err := eg.Wait()
	placed := make([]order.Order, 0, len(groups))
	for _, ord := range results {
		if ord.ID != 0 {
			placed = append(placed, ord)
		}
	}
	return placed, err
}

// placeGroup writes one order and then its items in cart order. The returned
// order carries whatever was persisted, even alongside an error.
func (s *Service) placeGroup(ctx context.Context, checkoutID string, sess vendor.Session, g Group) (order.Order, error) {
	draft, err := order.NewOrder(sess.VendorID(), g.SupplierID, g.Total, sess.Vendor.DeliveryAddress(), s.now())
	if err != nil {
		return order.Order{}, &PersistenceError{Kind: OrderCreateFailed, CheckoutID: checkoutID, SupplierID: g.SupplierID, Err: err}
	}
	ord, err := s.store.CreateOrder(ctx, draft)
	if err != nil {
		return order.Order{}, &PersistenceError{Kind: OrderCreateFailed, CheckoutID: checkoutID, SupplierID: g.SupplierID, Err: err}
	}
	ord.Items = make([]order.Item, 0, len(g.Items))
	for _, it := range g.Items {
		item, err := order.NewItem(ord.ID, it.Product.ID, it.Quantity, it.Product.Price)
		if err == nil {
			item, err = s.store.CreateOrderItem(ctx, item)
		}
		if err != nil {
			return ord, &PersistenceError{
				Kind:       ItemCreateFailed,
				CheckoutID: checkoutID,
				SupplierID: g.SupplierID,
				ProductID:  it.Product.ID,
				Err:        err,
			}
		}
		ord.Items = append(ord.Items, item)
	}
	s.logger.DebugContext(ctx, "order placed",
		slog.String("checkout_id", checkoutID),
		slog.Int64("order_id", ord.ID),
		slog.Int64("supplier_id", g.SupplierID),
		slog.Int("items", len(ord.Items)),
	)
	return ord, nil
}
