// AngelaMos | 2026
// service_test.go

package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/voltgear/internal/account"
	"github.com/angelamos/voltgear/internal/cart"
	"github.com/angelamos/voltgear/internal/core"
	"github.com/angelamos/voltgear/internal/event"
	"github.com/angelamos/voltgear/internal/kvstore"
)

type fakeSession struct {
	acct *account.Account
}

func (f *fakeSession) Current(context.Context) *account.Account {
	return f.acct
}

func (f *fakeSession) CurrentAccountID(context.Context) string {
	if f.acct == nil {
		return ""
	}
	return f.acct.ID
}

type recordedActivity struct {
	action  string
	details map[string]any
}

type fakeActivity struct {
	logged []recordedActivity
}

func (f *fakeActivity) Log(_ context.Context, action string, details map[string]any) {
	f.logged = append(f.logged, recordedActivity{action: action, details: details})
}

type fixture struct {
	orders   *Service
	carts    *cart.Manager
	session  *fakeSession
	activity *fakeActivity
	bus      *event.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kvstore.New(kvstore.NewMemoryBackend(), nil)
	bus := event.NewBus()
	session := &fakeSession{}
	carts := cart.NewManager(store, session, bus, 0, nil)
	t.Cleanup(carts.Close)

	activity := &fakeActivity{}
	orders := NewService(store, carts, session, activity, bus, nil)
	return &fixture{
		orders:   orders,
		carts:    carts,
		session:  session,
		activity: activity,
		bus:      bus,
	}
}

var headset = cart.Product{ID: "surround-pro-7-1", Title: "Surround Pro 7.1", Price: 179}

func checkoutForm() CheckoutDetails {
	return CheckoutDetails{
		ShippingAddress: ShippingAddress{
			FullName: "Dana Reyes",
			Email:    "dana@example.com",
			Phone:    "+1 (555) 010-7788",
			Address:  "12 Harbor Lane",
			City:     "Portland",
		},
		PaymentMethod: "card",
	}
}

func TestCreateOrderSnapshotsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddToCart(ctx, headset, 2)
	require.NoError(t, err)

	o, err := f.orders.CreateOrder(ctx, checkoutForm())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(o.ID, "ORD-"))
	assert.Equal(t, StatusPending, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.InDelta(t, 358.00, o.Subtotal, 1e-9)
	assert.InDelta(t, 35.80, o.Tax, 1e-9)
	assert.InDelta(t, 393.80, o.Total, 1e-9)
	assert.WithinDuration(t, time.Now(), o.CreatedAt, time.Minute)

	// Checkout empties the cart.
	assert.True(t, f.carts.IsEmpty(ctx))
}

func TestCreateOrderAttributesAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.session.acct = &account.Account{
		ID:    "u1",
		Name:  "Dana",
		Email: "dana@example.com",
	}

	_, err := f.carts.AddToCart(ctx, headset, 1)
	require.NoError(t, err)

	o, err := f.orders.CreateOrder(ctx, checkoutForm())
	require.NoError(t, err)

	assert.Equal(t, "u1", o.AccountID)
	assert.Equal(t, "dana@example.com", o.Email)
	assert.Equal(t, "Dana Reyes", o.Shipping.FullName)
	assert.Equal(t, "Portland", o.Shipping.City)
	assert.Equal(t, "card", o.PaymentMethod)
}

func TestCreateOrderValidatesCheckoutDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CheckoutDetails)
	}{
		{"short name", func(d *CheckoutDetails) { d.FullName = "Al" }},
		{"bad email", func(d *CheckoutDetails) { d.Email = "not-an-email" }},
		{"phone letters", func(d *CheckoutDetails) { d.Phone = "call me" }},
		{"phone too short", func(d *CheckoutDetails) { d.Phone = "555-12" }},
		{"short address", func(d *CheckoutDetails) { d.Address = "12" }},
		{"short city", func(d *CheckoutDetails) { d.City = "X" }},
		{"no payment method", func(d *CheckoutDetails) { d.PaymentMethod = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			details := checkoutForm()
			tc.mutate(&details)
			_, err := f.orders.CreateOrder(ctx, details)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestCreateOrderOnEmptyCart(t *testing.T) {
	f := newFixture(t)

	o, err := f.orders.CreateOrder(context.Background(), checkoutForm())
	require.NoError(t, err)

	assert.Empty(t, o.Items)
	assert.Zero(t, o.Total)
	assert.Equal(t, StatusPending, o.Status)
}

func TestCreateOrderLogsActivityAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var created []event.OrderCreated
	f.bus.Subscribe(event.TopicOrderCreated, func(_ context.Context, payload any) {
		created = append(created, payload.(event.OrderCreated))
	})

	_, err := f.carts.AddToCart(ctx, headset, 3)
	require.NoError(t, err)

	o, err := f.orders.CreateOrder(ctx, checkoutForm())
	require.NoError(t, err)

	require.Len(t, f.activity.logged, 1)
	assert.Equal(t, "Place Order", f.activity.logged[0].action)
	assert.Equal(t, o.ID, f.activity.logged[0].details["order_id"])
	assert.Equal(t, 3, f.activity.logged[0].details["item_count"])

	require.Len(t, created, 1)
	assert.Equal(t, o.ID, created[0].OrderID)
	assert.InDelta(t, o.Total, created[0].Total, 1e-9)
}

func TestOrderSnapshotIsImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddToCart(ctx, headset, 1)
	require.NoError(t, err)

	o, err := f.orders.CreateOrder(ctx, checkoutForm())
	require.NoError(t, err)

	// New cart activity after checkout must not reach the placed order.
	_, err = f.carts.AddToCart(ctx, headset, 5)
	require.NoError(t, err)

	stored, err := f.orders.OrderByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 1, stored.Items[0].Quantity)
}

func TestOrdersNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddToCart(ctx, headset, 1)
	require.NoError(t, err)
	first, err := f.orders.CreateOrder(ctx, checkoutForm())
	require.NoError(t, err)

	_, err = f.carts.AddToCart(ctx, headset, 2)
	require.NoError(t, err)
	second, err := f.orders.CreateOrder(ctx, checkoutForm())
	require.NoError(t, err)

	all := f.orders.Orders(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

func TestOrderIDsDistinctWithinSameMillisecond(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.orders.now = func() time.Time { return now }
	ctx := context.Background()

	a, err := f.orders.CreateOrder(ctx, checkoutForm())
	require.NoError(t, err)
	b, err := f.orders.CreateOrder(ctx, checkoutForm())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestOrdersForAccountAndEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.session.acct = &account.Account{ID: "u1", Email: "dana@example.com"}
	_, err := f.carts.AddToCart(ctx, headset, 1)
	require.NoError(t, err)
	_, err = f.orders.CreateOrder(ctx, checkoutForm())
	require.NoError(t, err)

	f.session.acct = &account.Account{ID: "u2", Email: "lee@example.com"}
	_, err = f.carts.AddToCart(ctx, headset, 1)
	require.NoError(t, err)
	leeForm := checkoutForm()
	leeForm.FullName = "Lee Park"
	leeForm.Email = "lee@example.com"
	_, err = f.orders.CreateOrder(ctx, leeForm)
	require.NoError(t, err)

	assert.Len(t, f.orders.OrdersForAccount(ctx, "u1"), 1)
	assert.Len(t, f.orders.OrdersForEmail(ctx, "DANA@EXAMPLE.COM"), 1)
	assert.Empty(t, f.orders.OrdersForAccount(ctx, "u3"))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.orders.CreateOrder(ctx, checkoutForm())
	require.NoError(t, err)

	updated, err := f.orders.UpdateStatus(ctx, o.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)

	stored, err := f.orders.OrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.orders.CreateOrder(ctx, checkoutForm())
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, o.ID, Status("shipped-maybe"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.UpdateStatus(context.Background(), "ORD-0-none", StatusCancelled)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestOrderByIDMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.OrderByID(context.Background(), "ORD-0-none")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
