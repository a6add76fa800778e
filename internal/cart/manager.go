// AngelaMos | 2026
// manager.go

package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/angelamos/voltgear/internal/core"
	"github.com/angelamos/voltgear/internal/event"
	"github.com/angelamos/voltgear/internal/kvstore"
)

// SessionReader is the slice of the account service the cart needs to
// resolve which scope the caller's cart lives under.
type SessionReader interface {
	CurrentAccountID(ctx context.Context) string
}

// Manager owns cart state. Every read goes back to the store so that a
// cart written by another process is picked up on the next call; the
// mutex only serializes read-modify-write cycles within this process.
type Manager struct {
	store    *kvstore.Store
	session  SessionReader
	bus      *event.Bus
	logger   *slog.Logger
	taxRate  float64
	mu       sync.Mutex
	unsubFns []func()
}

func NewManager(store *kvstore.Store, session SessionReader, bus *event.Bus, taxRate float64, logger *slog.Logger) *Manager {
	if taxRate <= 0 {
		taxRate = DefaultTaxRate
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		store:   store,
		session: session,
		bus:     bus,
		logger:  logger,
		taxRate: taxRate,
	}
	// A departing account's cart is dropped so the next anonymous
	// visitor on the same store does not inherit it.
	m.unsubFns = append(m.unsubFns, bus.Subscribe(event.TopicSessionLogout, func(ctx context.Context, payload any) {
		logout, ok := payload.(event.SessionLogout)
		if !ok || logout.AccountID == "" {
			return
		}
		m.clearScope(ctx, scopeKeyFor(logout.AccountID))
	}))
	return m
}

// Close detaches the manager from the event bus.
func (m *Manager) Close() {
	for _, unsub := range m.unsubFns {
		unsub()
	}
	m.unsubFns = nil
}

func scopeKeyFor(accountID string) string {
	if accountID == "" {
		return CartKey
	}
	return CartKey + "_" + accountID
}

// ScopeKey resolves the storage key for the caller's cart: the shared
// anonymous key when logged out, a per-account key when signed in.
func (m *Manager) ScopeKey(ctx context.Context) string {
	return scopeKeyFor(m.session.CurrentAccountID(ctx))
}

// Items returns the current cart lines. A missing or unreadable cart is
// an empty cart.
func (m *Manager) Items(ctx context.Context) []LineItem {
	return m.load(ctx, m.ScopeKey(ctx))
}

func (m *Manager) load(ctx context.Context, key string) []LineItem {
	items := []LineItem{}
	m.store.Get(ctx, key, &items)
	return items
}

func (m *Manager) save(ctx context.Context, key string, items []LineItem) bool {
	ok := m.store.Set(ctx, key, items)
	if !ok {
		m.logger.Warn("cart write failed", "key", key)
	}
	m.publish(ctx, key, items)
	return ok
}

func (m *Manager) publish(ctx context.Context, key string, items []LineItem) {
	count := 0
	total := 0.0
	for _, it := range items {
		count += it.Quantity
		total += it.Price * float64(it.Quantity)
	}
	m.bus.Publish(ctx, event.TopicCartUpdated, event.CartUpdated{
		Scope: key,
		Count: count,
		Total: Round2(total),
	})
}

// AddToCart merges quantity into an existing line for the product or
// appends a new line. Quantities below one are treated as one.
func (m *Manager) AddToCart(ctx context.Context, p Product, quantity int) ([]LineItem, error) {
	if p.ID == "" {
		return nil, core.ValidationError("product id is required")
	}
	if quantity < 1 {
		quantity = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.ScopeKey(ctx)
	items := m.load(ctx, key)
	merged := false
	for i := range items {
		if items[i].ProductID == p.ID {
			items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, LineItem{
			ProductID: p.ID,
			Title:     p.Title,
			Image:     p.Image,
			Price:     p.Price,
			Quantity:  quantity,
		})
	}
	m.save(ctx, key, items)
	return items, nil
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the
// line. Updating a product that is not in the cart is a no-op.
func (m *Manager) UpdateQuantity(ctx context.Context, productID string, quantity int) []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.ScopeKey(ctx)
	items := m.load(ctx, key)
	changed := false
	next := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			next = append(next, it)
			continue
		}
		changed = true
		if quantity > 0 {
			it.Quantity = quantity
			next = append(next, it)
		}
	}
	if changed {
		m.save(ctx, key, next)
	}
	return next
}

// IncreaseQuantity bumps a line by one.
func (m *Manager) IncreaseQuantity(ctx context.Context, productID string) []LineItem {
	return m.adjust(ctx, productID, +1)
}

// DecreaseQuantity lowers a line by one, removing it at zero.
func (m *Manager) DecreaseQuantity(ctx context.Context, productID string) []LineItem {
	return m.adjust(ctx, productID, -1)
}

func (m *Manager) adjust(ctx context.Context, productID string, delta int) []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.ScopeKey(ctx)
	items := m.load(ctx, key)
	changed := false
	next := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			next = append(next, it)
			continue
		}
		changed = true
		it.Quantity += delta
		if it.Quantity > 0 {
			next = append(next, it)
		}
	}
	if changed {
		m.save(ctx, key, next)
	}
	return next
}

// RemoveFromCart drops a product's line entirely.
func (m *Manager) RemoveFromCart(ctx context.Context, productID string) []LineItem {
	return m.UpdateQuantity(ctx, productID, 0)
}

// GetCartItem returns the line for a product, or false when absent.
func (m *Manager) GetCartItem(ctx context.Context, productID string) (LineItem, bool) {
	for _, it := range m.Items(ctx) {
		if it.ProductID == productID {
			return it, true
		}
	}
	return LineItem{}, false
}

// GetCartCount sums quantities across all lines.
func (m *Manager) GetCartCount(ctx context.Context) int {
	count := 0
	for _, it := range m.Items(ctx) {
		count += it.Quantity
	}
	return count
}

// GetCartTotal is the pre-tax subtotal.
func (m *Manager) GetCartTotal(ctx context.Context) float64 {
	total := 0.0
	for _, it := range m.Items(ctx) {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// CalculateTax applies the configured rate to the current subtotal,
// rounded to currency scale.
func (m *Manager) CalculateTax(ctx context.Context) float64 {
	return Tax(m.GetCartTotal(ctx), m.taxRate)
}

// TaxRate exposes the configured rate for order snapshots.
func (m *Manager) TaxRate() float64 {
	return m.taxRate
}

// OrderTotal is subtotal plus tax at currency scale.
func (m *Manager) OrderTotal(ctx context.Context) float64 {
	subtotal := m.GetCartTotal(ctx)
	return Round2(subtotal + Tax(subtotal, m.taxRate))
}

// IsEmpty reports whether the caller's cart has no lines.
func (m *Manager) IsEmpty(ctx context.Context) bool {
	return len(m.Items(ctx)) == 0
}

// ClearCart removes the caller's cart entirely.
func (m *Manager) ClearCart(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearScope(ctx, m.ScopeKey(ctx))
}

func (m *Manager) clearScope(ctx context.Context, key string) {
	m.store.Remove(ctx, key)
	m.publish(ctx, key, nil)
}
