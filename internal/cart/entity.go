// AngelaMos | 2026
// entity.go

package cart

import (
	"math"
)

// CartKey is the anonymous-scope storage key; signed-in accounts use
// CartKey + "_" + accountID.
const CartKey = "voltgear_cart"

// DefaultTaxRate matches the original storefront's flat 10%.
const DefaultTaxRate = 0.10

// LineItem is one product's row in a cart. A cart holds at most one line
// per product id; a quantity reaching zero removes the line entirely.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Product is the minimal shape AddToCart needs from the catalog.
type Product struct {
	ID    string
	Title string
	Image string
	Price float64
}

// Round2 rounds to two decimal places, currency scale.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Tax computes rate on subtotal, rounded to two decimal places.
func Tax(subtotal, rate float64) float64 {
	return Round2(subtotal * rate)
}
