package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/supply-market-backend/internal/catalog"
	"github.com/wichananm65/supply-market-backend/internal/order"
	"github.com/wichananm65/supply-market-backend/internal/vendor"
)

var errStorage = errors.New("connection reset")

// recordingStore wraps the in-memory order repository with call counters and
// failure injection.
type recordingStore struct {
	*order.InMemoryRepository

	mu            sync.Mutex
	orderCalls    int
	itemCalls     int
	failSupplier  int64
	failProduct   int64
	delaySupplier int64
}

func newRecordingStore() *recordingStore {
	return &recordingStore{InMemoryRepository: order.NewInMemoryRepository()}
}

func (s *recordingStore) CreateOrder(ctx context.Context, ord order.Order) (order.Order, error) {
	s.mu.Lock()
	s.orderCalls++
	fail := s.failSupplier != 0 && ord.SupplierID == s.failSupplier
	delay := s.delaySupplier != 0 && ord.SupplierID == s.delaySupplier
	s.mu.Unlock()
	if delay {
		time.Sleep(20 * time.Millisecond)
	}
	if fail {
		return order.Order{}, errStorage
	}
	return s.InMemoryRepository.CreateOrder(ctx, ord)
}

func (s *recordingStore) CreateOrderItem(ctx context.Context, item order.Item) (order.Item, error) {
	s.mu.Lock()
	s.itemCalls++
	fail := s.failProduct != 0 && item.ProductID == s.failProduct
	s.mu.Unlock()
	if fail {
		return order.Item{}, errStorage
	}
	return s.InMemoryRepository.CreateOrderItem(ctx, item)
}

func (s *recordingStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderCalls + s.itemCalls
}

var checkoutTime = time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)

func testSession(t *testing.T) vendor.Session {
	t.Helper()
	sess, err := vendor.NewSession(vendor.Vendor{ID: 1, Name: "Asha", BusinessName: "Asha Chaat", Area: "Dadar"})
	require.NoError(t, err)
	return sess
}

func newTestService(store OrderStore, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return checkoutTime })}, opts...)
	return NewService(store, DefaultPolicy(), opts...)
}

// Supplier 10 sells product 1, supplier 20 sells products 2 and 3.
func marketSnapshot() catalog.Snapshot {
	return catalog.NewSnapshot([]catalog.Product{
		product(1, 10, "100", 5, 50),
		product(2, 20, "200", 1, 10),
		product(3, 20, "40", 2, 100),
	})
}

func TestPlaceOrder_OneOrderPerSupplier(t *testing.T) {
	store := newRecordingStore()
	svc := newTestService(store)
	c := cartOf(1, 5, 2, 2)

	receipt, err := svc.PlaceOrder(context.Background(), testSession(t), c, marketSnapshot())
	require.NoError(t, err)

	assert.NotEmpty(t, receipt.CheckoutID)
	assert.True(t, decimal.NewFromInt(900).Equal(receipt.Quote.Subtotal))
	assert.True(t, receipt.Quote.DeliveryFee.IsZero())
	assert.True(t, decimal.NewFromInt(900).Equal(receipt.Quote.Total))

	require.Len(t, receipt.Orders, 2)
	a, b := receipt.Orders[0], receipt.Orders[1]
	assert.Equal(t, int64(10), a.SupplierID)
	assert.True(t, decimal.NewFromInt(500).Equal(a.TotalAmount))
	assert.Equal(t, int64(20), b.SupplierID)
	assert.True(t, decimal.NewFromInt(400).Equal(b.TotalAmount))

	for _, o := range receipt.Orders {
		assert.Equal(t, int64(1), o.VendorID)
		assert.Equal(t, order.StatusPending, o.Status)
		assert.Equal(t, "Asha Chaat, Dadar", o.DeliveryAddress)
		assert.Equal(t, checkoutTime, o.CreatedAt)
		assert.Equal(t, checkoutTime.Add(4*time.Hour), o.ExpectedDelivery)
		require.Len(t, o.Items, 1)
	}
	assert.Equal(t, 5, a.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(100).Equal(a.Items[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(500).Equal(a.Items[0].TotalPrice))
	assert.True(t, decimal.NewFromInt(200).Equal(b.Items[0].UnitPrice))

	assert.True(t, c.IsEmpty(), "cart is cleared after a full success")

	stored, err := store.ListByVendor(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestPlaceOrder_DeliveryFeeIsNotPersisted(t *testing.T) {
	store := newRecordingStore()
	svc := newTestService(store)

	receipt, err := svc.PlaceOrder(context.Background(), testSession(t), cartOf(3, 3, 2, 1), marketSnapshot())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(320).Equal(receipt.Quote.Subtotal))
	assert.True(t, decimal.NewFromInt(50).Equal(receipt.Quote.DeliveryFee))
	assert.True(t, decimal.NewFromInt(370).Equal(receipt.Quote.Total))

	// products 3 and 2 share a supplier
	require.Len(t, receipt.Orders, 1)
	persisted := decimal.Zero
	for _, o := range receipt.Orders {
		persisted = persisted.Add(o.TotalAmount)
	}
	assert.True(t, decimal.NewFromInt(320).Equal(persisted))
	assert.False(t, persisted.Equal(receipt.Quote.Total))
}

func TestPlaceOrder_RefusedCartMakesNoStorageCalls(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Product{
		product(1, 10, "100", 5, 50),
		product(2, 20, "200", 1, 10),
		product(4, 30, "10", 10, 4),
		product(5, 30, "10", 1, 0),
	})
	tests := []struct {
		name   string
		pairs  []int64
		reason Reason
	}{
		{"below minimum", []int64{1, 3, 2, 2}, ReasonBelowMinimum},
		{"exceeds stock", []int64{1, 5, 2, 11}, ReasonExceedsStock},
		{"minimum above stock", []int64{4, 4}, ReasonUnavailable},
		{"zero stock", []int64{5, 1}, ReasonUnavailable},
		{"empty cart", nil, ReasonEmptyCart},
		{"only unknown products", []int64{77, 1}, ReasonEmptyCart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newRecordingStore()
			svc := newTestService(store)
			c := cartOf(tt.pairs...)
			before := c.Entries()

			_, err := svc.PlaceOrder(context.Background(), testSession(t), c, snap)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.reason, verr.Reason)
			assert.Zero(t, store.calls())
			assert.Equal(t, before, c.Entries(), "cart is unchanged")
		})
	}
}

func TestPlaceOrder_BelowMinimumIssue(t *testing.T) {
	svc := newTestService(newRecordingStore())

	_, err := svc.PlaceOrder(context.Background(), testSession(t), cartOf(1, 3, 2, 2), marketSnapshot())

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, Issue{ProductID: 1, Reason: ReasonBelowMinimum, Quantity: 3, MinOrderQuantity: 5, StockQuantity: 50}, verr.Issues[0])
}

func TestPlaceOrder_ItemFailureKeepsEarlierOrders(t *testing.T) {
	store := newRecordingStore()
	store.failProduct = 2
	svc := newTestService(store)
	c := cartOf(1, 5, 2, 2)

	_, err := svc.PlaceOrder(context.Background(), testSession(t), c, marketSnapshot())

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, ItemCreateFailed, perr.Kind)
	assert.Equal(t, int64(20), perr.SupplierID)
	assert.Equal(t, int64(2), perr.ProductID)
	assert.NotEmpty(t, perr.CheckoutID)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, errStorage)

	// supplier 10's order is complete, supplier 20's order exists without items
	require.Len(t, perr.Placed, 2)
	assert.Equal(t, int64(10), perr.Placed[0].SupplierID)
	assert.Len(t, perr.Placed[0].Items, 1)
	assert.Equal(t, int64(20), perr.Placed[1].SupplierID)
	assert.Empty(t, perr.Placed[1].Items)

	stored, err := store.ListByVendor(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	assert.Equal(t, 2, c.Len(), "cart is retained")
}

func TestPlaceOrder_OrderFailureStopsRemainingGroups(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Product{
		product(1, 10, "100", 1, 50),
		product(2, 20, "200", 1, 10),
		product(3, 30, "40", 1, 100),
	})
	store := newRecordingStore()
	store.failSupplier = 20
	svc := newTestService(store)
	c := cartOf(1, 1, 2, 1, 3, 1)

	_, err := svc.PlaceOrder(context.Background(), testSession(t), c, snap)

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, OrderCreateFailed, perr.Kind)
	assert.Equal(t, int64(20), perr.SupplierID)
	require.Len(t, perr.Placed, 1)
	assert.Equal(t, int64(10), perr.Placed[0].SupplierID)

	// supplier 30 is never attempted
	assert.Equal(t, 2, store.orderCalls)
	assert.Equal(t, 3, c.Len())
}

func TestPlaceOrder_UsesSnapshotPrices(t *testing.T) {
	repo := catalog.NewInMemoryRepository(
		[]catalog.Supplier{{ID: 10, BusinessName: "Fresh Farms", Area: "Andheri"}},
		[]catalog.Product{product(1, 10, "100", 1, 50)},
	)
	cat := catalog.NewService(repo)
	c := cartOf(1, 2)

	snap, err := cat.SnapshotFor(context.Background(), c.ProductIDs())
	require.NoError(t, err)
	repo.Upsert(product(1, 10, "180", 1, 50))

	store := newRecordingStore()
	receipt, err := newTestService(store).PlaceOrder(context.Background(), testSession(t), c, snap)
	require.NoError(t, err)

	item := receipt.Orders[0].Items[0]
	assert.True(t, decimal.NewFromInt(100).Equal(item.UnitPrice))
	assert.True(t, decimal.NewFromInt(200).Equal(item.TotalPrice))
}

func TestPlaceOrder_DropsUnknownProducts(t *testing.T) {
	store := newRecordingStore()
	c := cartOf(42, 3, 2, 1)

	receipt, err := newTestService(store).PlaceOrder(context.Background(), testSession(t), c, marketSnapshot())
	require.NoError(t, err)

	require.Len(t, receipt.Orders, 1)
	require.Len(t, receipt.Orders[0].Items, 1)
	assert.Equal(t, int64(2), receipt.Orders[0].Items[0].ProductID)
	assert.True(t, c.IsEmpty())
}

func TestPlaceOrder_Deterministic(t *testing.T) {
	snap := marketSnapshot()
	run := func() []order.Order {
		receipt, err := newTestService(newRecordingStore()).PlaceOrder(context.Background(), testSession(t), cartOf(3, 2, 1, 5, 2, 1), snap)
		require.NoError(t, err)
		return receipt.Orders
	}
	assert.Equal(t, run(), run())
}

func TestPlaceOrder_ParallelGroups(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Product{
		product(1, 10, "100", 1, 50),
		product(2, 20, "200", 1, 10),
		product(3, 30, "40", 1, 100),
		product(4, 20, "5", 1, 100),
	})
	store := newRecordingStore()
	store.delaySupplier = 10
	svc := newTestService(store, WithParallelGroups(true))
	c := cartOf(1, 1, 2, 1, 3, 1, 4, 2)

	receipt, err := svc.PlaceOrder(context.Background(), testSession(t), c, snap)
	require.NoError(t, err)

	require.Len(t, receipt.Orders, 3)
	assert.Equal(t, int64(10), receipt.Orders[0].SupplierID)
	assert.Equal(t, int64(20), receipt.Orders[1].SupplierID)
	assert.Equal(t, int64(30), receipt.Orders[2].SupplierID)
	assert.Len(t, receipt.Orders[1].Items, 2)
	assert.True(t, decimal.NewFromInt(210).Equal(receipt.Orders[1].TotalAmount))
	assert.True(t, c.IsEmpty())
}

func TestPlaceOrder_ParallelFailureRetainsCart(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Product{
		product(1, 10, "100", 1, 50),
		product(2, 20, "200", 1, 10),
	})
	store := newRecordingStore()
	store.failProduct = 2
	svc := newTestService(store, WithParallelGroups(true))
	c := cartOf(1, 1, 2, 1)

	_, err := svc.PlaceOrder(context.Background(), testSession(t), c, snap)

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ItemCreateFailed, perr.Kind)
	assert.NotEmpty(t, perr.Placed)
	assert.Equal(t, 2, c.Len())
}

func TestPreview(t *testing.T) {
	svc := newTestService(newRecordingStore())

	p := svc.Preview(cartOf(1, 3, 2, 1, 99, 1), marketSnapshot())
	assert.False(t, p.CanCheckout)
	assert.Equal(t, []int64{99}, p.Dropped)
	require.Len(t, p.Groups, 2)
	assert.True(t, decimal.NewFromInt(500).Equal(p.Quote.Subtotal))
	assert.True(t, p.Quote.DeliveryFee.IsZero())

	p = svc.Preview(cartOf(2, 1), marketSnapshot())
	assert.True(t, p.CanCheckout)
	assert.True(t, decimal.NewFromInt(300).Equal(p.Quote.FreeDeliveryShortfall))
}

func TestPlaceOrder_TwoSuppliersNoFee(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Product{
		product(1, 10, "100", 1, 50),
		product(2, 20, "600", 1, 5),
	})
	store := newRecordingStore()
	c := cartOf(1, 3, 2, 1)

	p := newTestService(store).Preview(c, snap)
	require.Len(t, p.Groups, 2)
	assert.True(t, decimal.NewFromInt(300).Equal(p.Groups[0].Total))
	assert.True(t, decimal.NewFromInt(600).Equal(p.Groups[1].Total))

	receipt, err := newTestService(store).PlaceOrder(context.Background(), testSession(t), c, snap)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(900).Equal(receipt.Quote.Subtotal))
	assert.True(t, receipt.Quote.DeliveryFee.IsZero())
	assert.True(t, decimal.NewFromInt(900).Equal(receipt.Quote.Total))
	require.Len(t, receipt.Orders, 2)
	assert.True(t, decimal.NewFromInt(300).Equal(receipt.Orders[0].TotalAmount))
	assert.True(t, decimal.NewFromInt(600).Equal(receipt.Orders[1].TotalAmount))
}

func TestPlaceOrder_BelowMinimumSingleLine(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Product{product(3, 10, "100", 5, 50)})
	store := newRecordingStore()
	c := cartOf(3, 2)

	assert.False(t, IsCheckoutEligible(c, snap))

	_, err := newTestService(store).PlaceOrder(context.Background(), testSession(t), c, snap)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ReasonBelowMinimum, verr.Reason)
	assert.Equal(t, int64(3), verr.Issues[0].ProductID)
	assert.Zero(t, store.calls())
}
