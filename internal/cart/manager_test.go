// AngelaMos | 2026
// manager_test.go

package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/voltgear/internal/event"
	"github.com/angelamos/voltgear/internal/kvstore"
)

type fakeSession struct {
	accountID string
}

func (f *fakeSession) CurrentAccountID(context.Context) string {
	return f.accountID
}

func newTestManager(t *testing.T) (*Manager, *fakeSession, *event.Bus) {
	t.Helper()
	store := kvstore.New(kvstore.NewMemoryBackend(), nil)
	session := &fakeSession{}
	bus := event.NewBus()
	m := NewManager(store, session, bus, 0, nil)
	t.Cleanup(m.Close)
	return m, session, bus
}

var (
	mouse    = Product{ID: "apex-pro", Title: "APEX PRO Wireless", Price: 129}
	keyboard = Product{ID: "mech-pro-rgb", Title: "Mechanical Pro RGB", Price: 149}
)

func TestAddToCartAccumulatesQuantity(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddToCart(ctx, mouse, 1)
	require.NoError(t, err)
	items, err := m.AddToCart(ctx, mouse, 2)
	require.NoError(t, err)

	// One line per product, quantities merged.
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 3, m.GetCartCount(ctx))
}

func TestAddToCartDefaultsQuantityToOne(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	items, err := m.AddToCart(ctx, mouse, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAddToCartRequiresProductID(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.AddToCart(context.Background(), Product{}, 1)
	assert.Error(t, err)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddToCart(ctx, mouse, 2)
	require.NoError(t, err)
	_, err = m.AddToCart(ctx, keyboard, 1)
	require.NoError(t, err)

	items := m.UpdateQuantity(ctx, mouse.ID, 0)

	require.Len(t, items, 1)
	assert.Equal(t, keyboard.ID, items[0].ProductID)

	_, found := m.GetCartItem(ctx, mouse.ID)
	assert.False(t, found)
}

func TestUpdateQuantityUnknownProductIsNoOp(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddToCart(ctx, mouse, 1)
	require.NoError(t, err)

	items := m.UpdateQuantity(ctx, "ghost", 5)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestIncreaseDecreaseQuantity(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddToCart(ctx, mouse, 1)
	require.NoError(t, err)

	items := m.IncreaseQuantity(ctx, mouse.ID)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	items = m.DecreaseQuantity(ctx, mouse.ID)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)

	// Decreasing past zero drops the line.
	items = m.DecreaseQuantity(ctx, mouse.ID)
	assert.Empty(t, items)
	assert.True(t, m.IsEmpty(ctx))
}

func TestCartTotalsAndTax(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddToCart(ctx, mouse, 2)
	require.NoError(t, err)
	_, err = m.AddToCart(ctx, keyboard, 1)
	require.NoError(t, err)

	subtotal := m.GetCartTotal(ctx)
	assert.InDelta(t, 407.0, subtotal, 1e-9)

	tax := m.CalculateTax(ctx)
	assert.InDelta(t, 40.70, tax, 1e-9)

	assert.InDelta(t, 447.70, m.OrderTotal(ctx), 1e-9)
}

func TestTaxRoundsToTwoDecimals(t *testing.T) {
	// 3 * 33.33 = 99.99; 10% = 9.999 -> 10.00
	assert.Equal(t, 10.0, Tax(99.99, 0.10))
	assert.Equal(t, 0.67, Tax(6.66, 0.10))
}

func TestCartScopesByAccount(t *testing.T) {
	m, session, _ := newTestManager(t)
	ctx := context.Background()

	// Anonymous cart.
	_, err := m.AddToCart(ctx, mouse, 1)
	require.NoError(t, err)
	assert.Equal(t, CartKey, m.ScopeKey(ctx))

	// Signing in switches to the account's own scope.
	session.accountID = "u1"
	assert.Equal(t, CartKey+"_u1", m.ScopeKey(ctx))
	assert.True(t, m.IsEmpty(ctx))

	_, err = m.AddToCart(ctx, keyboard, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, m.GetCartCount(ctx))

	// Signing out returns to the untouched anonymous cart.
	session.accountID = ""
	items := m.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, mouse.ID, items[0].ProductID)
}

func TestLogoutEventClearsDepartingScope(t *testing.T) {
	m, session, bus := newTestManager(t)
	ctx := context.Background()

	session.accountID = "u1"
	_, err := m.AddToCart(ctx, mouse, 1)
	require.NoError(t, err)

	session.accountID = ""
	bus.Publish(ctx, event.TopicSessionLogout, event.SessionLogout{AccountID: "u1"})

	session.accountID = "u1"
	assert.True(t, m.IsEmpty(ctx))
}

func TestLogoutEventForAnonymousDoesNothing(t *testing.T) {
	m, _, bus := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddToCart(ctx, mouse, 1)
	require.NoError(t, err)

	bus.Publish(ctx, event.TopicSessionLogout, event.SessionLogout{AccountID: ""})
	assert.Equal(t, 1, m.GetCartCount(ctx))
}

func TestCartUpdatedEventPublished(t *testing.T) {
	m, _, bus := newTestManager(t)
	ctx := context.Background()

	var updates []event.CartUpdated
	bus.Subscribe(event.TopicCartUpdated, func(_ context.Context, payload any) {
		updates = append(updates, payload.(event.CartUpdated))
	})

	_, err := m.AddToCart(ctx, mouse, 2)
	require.NoError(t, err)

	require.Len(t, updates, 1)
	assert.Equal(t, CartKey, updates[0].Scope)
	assert.Equal(t, 2, updates[0].Count)
	assert.InDelta(t, 258.0, updates[0].Total, 1e-9)
}

func TestClearCart(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.AddToCart(ctx, mouse, 1)
	require.NoError(t, err)

	m.ClearCart(ctx)
	assert.True(t, m.IsEmpty(ctx))
	assert.Zero(t, m.GetCartTotal(ctx))
}
