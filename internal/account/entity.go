// AngelaMos | 2026
// entity.go

package account

import (
	"time"
)

// Storage keys are the stable on-disk format carried over from the original
// storefront, mixed prefixes included.
const (
	SessionKey = "techgear_current_user"
	LedgerKey  = "techgear_users"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	maxViewedProducts = 10
	maxInteractions   = 20
)

type Account struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	PasswordHash   string          `json:"password_hash,omitempty"`
	Role           string          `json:"role"`
	CreatedAt      time.Time       `json:"created_at"`
	LastLogin      *time.Time      `json:"last_login,omitempty"`
	ViewedProducts []ViewedProduct `json:"viewed_products"`
	Interactions   []Interaction   `json:"interactions"`
}

// ViewedProduct is one entry of the most-recent-first viewed list, capped at
// ten entries.
type ViewedProduct struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	ViewedAt time.Time `json:"viewed_at"`
}

// Interaction is one entry of the most-recent-first interaction history,
// capped at twenty entries.
type Interaction struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a *Account) recordView(productID, productName string, at time.Time) {
	a.ViewedProducts = append([]ViewedProduct{{
		ID:       productID,
		Name:     productName,
		ViewedAt: at,
	}}, a.ViewedProducts...)

	if len(a.ViewedProducts) > maxViewedProducts {
		a.ViewedProducts = a.ViewedProducts[:maxViewedProducts]
	}
}

func (a *Account) recordInteraction(kind, description string, at time.Time) {
	a.Interactions = append([]Interaction{{
		Type:        kind,
		Description: description,
		Timestamp:   at,
	}}, a.Interactions...)

	if len(a.Interactions) > maxInteractions {
		a.Interactions = a.Interactions[:maxInteractions]
	}
}
