// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/angelamos/voltgear/internal/account"
	"github.com/angelamos/voltgear/internal/cart"
	"github.com/angelamos/voltgear/internal/core"
	"github.com/angelamos/voltgear/internal/event"
	"github.com/angelamos/voltgear/internal/kvstore"
)

// SessionReader resolves the account placing an order, nil when the
// caller is anonymous.
type SessionReader interface {
	Current(ctx context.Context) *account.Account
}

// ActivityRecorder mirrors checkout into the activity ledger.
type ActivityRecorder interface {
	Log(ctx context.Context, action string, details map[string]any)
}

type Service struct {
	store    *kvstore.Store
	carts    *cart.Manager
	session  SessionReader
	activity ActivityRecorder
	bus      *event.Bus
	logger   *slog.Logger
	now      func() time.Time
	mu       sync.Mutex
}

func NewService(
	store *kvstore.Store,
	carts *cart.Manager,
	session SessionReader,
	activity ActivityRecorder,
	bus *event.Bus,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		carts:    carts,
		session:  session,
		activity: activity,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) ledger(ctx context.Context) []Order {
	orders := []Order{}
	s.store.Get(ctx, OrdersKey, &orders)
	return orders
}

// Phone accepts dial characters only, at least seven of them.
var checkoutPhoneRe = regexp.MustCompile(`^[\d\s\-\+\(\)]{7,}$`)

var checkoutEmailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (d *CheckoutDetails) validate() error {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Address = strings.TrimSpace(d.Address)
	d.City = strings.TrimSpace(d.City)
	d.PaymentMethod = strings.TrimSpace(d.PaymentMethod)

	switch {
	case len(d.FullName) < 3:
		return core.ValidationError("name must be at least 3 characters")
	case !checkoutEmailRe.MatchString(d.Email):
		return core.ValidationError("a valid email is required")
	case !checkoutPhoneRe.MatchString(d.Phone):
		return core.ValidationError("a valid phone number is required")
	case len(d.Address) < 5:
		return core.ValidationError("a valid address is required")
	case len(d.City) < 2:
		return core.ValidationError("a valid city is required")
	case d.PaymentMethod == "":
		return core.ValidationError("a payment method is required")
	}
	return nil
}

// CreateOrder snapshots the caller's cart into a pending order, appends
// it to the ledger, clears the cart, and publishes order.created. An
// empty cart still produces a zero-total order; the storefront lets the
// client decide whether to offer checkout on an empty cart.
func (s *Service) CreateOrder(ctx context.Context, details CheckoutDetails) (Order, error) {
	if err := details.validate(); err != nil {
		return Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts.Items(ctx)
	snapshot := make([]cart.LineItem, len(items))
	copy(snapshot, items)

	subtotal := 0.0
	for _, it := range snapshot {
		subtotal += it.Price * float64(it.Quantity)
	}
	tax := cart.Tax(subtotal, s.carts.TaxRate())

	now := s.now().UTC()
	o := Order{
		ID:            newOrderID(now),
		Email:         details.Email,
		Items:         snapshot,
		Subtotal:      cart.Round2(subtotal),
		Tax:           tax,
		Total:         cart.Round2(subtotal + tax),
		Shipping:      details.ShippingAddress,
		PaymentMethod: details.PaymentMethod,
		Status:        StatusPending,
		CreatedAt:     now,
	}
	if acct := s.session.Current(ctx); acct != nil {
		o.AccountID = acct.ID
	}

	orders := append([]Order{o}, s.ledger(ctx)...)
	if !s.store.Set(ctx, OrdersKey, orders) {
		return Order{}, core.NewAppError(
			500, "STORAGE_FAILED", "could not persist order",
		)
	}

	s.carts.ClearCart(ctx)

	itemCount := 0
	for _, it := range snapshot {
		itemCount += it.Quantity
	}
	s.activity.Log(ctx, "Place Order", map[string]any{
		"order_id":   o.ID,
		"total":      o.Total,
		"item_count": itemCount,
	})
	s.bus.Publish(ctx, event.TopicOrderCreated, event.OrderCreated{
		OrderID:   o.ID,
		AccountID: o.AccountID,
		Total:     o.Total,
		ItemCount: itemCount,
	})

	s.logger.Info("order created",
		"order_id", o.ID,
		"account_id", o.AccountID,
		"total", o.Total,
	)
	return o, nil
}

// Orders returns every order, newest first.
func (s *Service) Orders(ctx context.Context) []Order {
	return s.ledger(ctx)
}

// OrdersForAccount filters the ledger to one account's orders.
func (s *Service) OrdersForAccount(ctx context.Context, accountID string) []Order {
	out := []Order{}
	for _, o := range s.ledger(ctx) {
		if o.AccountID == accountID {
			out = append(out, o)
		}
	}
	return out
}

// OrdersForEmail filters the ledger by the email captured at checkout.
func (s *Service) OrdersForEmail(ctx context.Context, email string) []Order {
	out := []Order{}
	for _, o := range s.ledger(ctx) {
		if strings.EqualFold(o.Email, email) {
			out = append(out, o)
		}
	}
	return out
}

// OrderByID looks one order up by id.
func (s *Service) OrderByID(ctx context.Context, id string) (Order, error) {
	for _, o := range s.ledger(ctx) {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, core.NotFoundError("order")
}

// UpdateStatus moves an order to a new status.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Order, error) {
	if !ValidStatus(status) {
		return Order{}, core.ValidationError("unknown order status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders := s.ledger(ctx)
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		orders[i].Status = status
		if !s.store.Set(ctx, OrdersKey, orders) {
			return Order{}, core.NewAppError(
				500, "STORAGE_FAILED", "could not persist order status",
			)
		}
		return orders[i], nil
	}
	return Order{}, core.NotFoundError("order")
}
