// AngelaMos | 2026
// payloads.go

package event

// Payloads stay free of domain types so any package can publish or subscribe
// without import cycles.

type SessionLogout struct {
	AccountID string `json:"account_id"`
}

type CartUpdated struct {
	Scope string  `json:"scope"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

type OrderCreated struct {
	OrderID   string  `json:"order_id"`
	AccountID string  `json:"account_id,omitempty"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

type ActivityLogged struct {
	EventID string `json:"event_id"`
	Action  string `json:"action"`
}
