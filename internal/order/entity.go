// AngelaMos | 2026
// entity.go

package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/voltgear/internal/cart"
)

// OrdersKey is the single ledger every order lives under.
const OrdersKey = "voltgear_orders"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is a recognized order status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ShippingAddress is the contact and delivery block captured from the
// checkout form.
type ShippingAddress struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

// CheckoutDetails is the full checkout form: shipping fields plus the
// chosen payment method.
type CheckoutDetails struct {
	ShippingAddress
	PaymentMethod string `json:"payment_method"`
}

// Order is an immutable snapshot of a cart at checkout time. Items are
// copied by value so later cart edits never reach into placed orders.
type Order struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id,omitempty"`
	Email         string          `json:"email"`
	Items         []cart.LineItem `json:"items"`
	Subtotal      float64         `json:"subtotal"`
	Tax           float64         `json:"tax"`
	Total         float64         `json:"total"`
	Shipping      ShippingAddress `json:"shipping_address"`
	PaymentMethod string          `json:"payment_method"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// newOrderID follows the original "ORD-<millis>" shape with a short
// random suffix so two checkouts in the same millisecond stay distinct.
func newOrderID(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
