// AngelaMos | 2026
// handler.go

package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/voltgear/internal/account"
	"github.com/angelamos/voltgear/internal/activity"
	"github.com/angelamos/voltgear/internal/cart"
	"github.com/angelamos/voltgear/internal/contact"
	"github.com/angelamos/voltgear/internal/core"
	"github.com/angelamos/voltgear/internal/kvstore"
	"github.com/angelamos/voltgear/internal/order"
)

type Handler struct {
	store    *kvstore.Store
	accounts *account.Service
	orders   *order.Service
	contacts *contact.Service
	activity *activity.Logger
}

func NewHandler(
	store *kvstore.Store,
	accounts *account.Service,
	orders *order.Service,
	contacts *contact.Service,
	activityLog *activity.Logger,
) *Handler {
	return &Handler{
		store:    store,
		accounts: accounts,
		orders:   orders,
		contacts: contacts,
		activity: activityLog,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
		r.Get("/stats/store", h.GetStoreStats)
		r.Get("/users", h.ListUsers)
		r.Get("/orders", h.ListOrders)
		r.Patch("/orders/{orderID}/status", h.UpdateOrderStatus)
		r.Get("/contacts", h.ListContacts)
		r.Get("/activity", h.ListActivity)
		r.Delete("/activity", h.ClearActivity)
	})
}

type DashboardStats struct {
	TotalUsers    int     `json:"total_users"`
	TotalOrders   int     `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalContacts int     `json:"total_contacts"`
	PendingOrders int     `json:"pending_orders"`
}

// GetStats mirrors the storefront dashboard cards: registered users,
// orders placed, revenue summed from order totals, and contact inbox
// size.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders := h.orders.Orders(ctx)
	revenue := 0.0
	pending := 0
	for _, o := range orders {
		revenue += o.Total
		if o.Status == order.StatusPending {
			pending++
		}
	}

	core.OK(w, DashboardStats{
		TotalUsers:    len(h.accounts.Accounts(ctx)),
		TotalOrders:   len(orders),
		TotalRevenue:  cart.Round2(revenue),
		TotalContacts: len(h.contacts.Inbox(ctx)),
		PendingOrders: pending,
	})
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	core.OK(w, map[string]any{
		"goroutines":    runtime.NumGoroutine(),
		"heap_alloc_mb": m.HeapAlloc / 1024 / 1024,
		"heap_sys_mb":   m.HeapSys / 1024 / 1024,
		"num_gc":        m.NumGC,
		"gc_pause_ns":   m.PauseNs[(m.NumGC+255)%256],
		"next_gc_mb":    m.NextGC / 1024 / 1024,
		"go_version":    runtime.Version(),
		"num_cpu":       runtime.NumCPU(),
	})
}

// GetStoreStats lists the documents currently held by the persistent
// store, optionally narrowed with ?prefix=.
func (h *Handler) GetStoreStats(w http.ResponseWriter, r *http.Request) {
	keys := h.store.Keys(r.Context(), r.URL.Query().Get("prefix"))
	core.OK(w, map[string]any{
		"documents": len(keys),
		"keys":      keys,
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	core.OK(w, account.ToAccountResponseList(h.accounts.Accounts(r.Context())))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "page_size", 20)

	all := h.orders.Orders(r.Context())
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	core.Paginated(w, all[start:end], page, pageSize, len(all))
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	o, err := h.orders.UpdateStatus(
		r.Context(),
		chi.URLParam(r, "orderID"),
		order.Status(req.Status),
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "unknown order status")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "order not found")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	h.activity.Log(r.Context(), "Update Order Status", map[string]any{
		"order_id": o.ID,
		"status":   string(o.Status),
	})

	core.OK(w, o)
}

func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("recent"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			core.BadRequest(w, "recent must be a positive integer")
			return
		}
		core.OK(w, h.contacts.Recent(r.Context(), n))
		return
	}
	core.OK(w, h.contacts.Inbox(r.Context()))
}

func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.activity.Entries(r.Context()))
}

func (h *Handler) ClearActivity(w http.ResponseWriter, r *http.Request) {
	h.activity.Clear(r.Context())
	core.NoContent(w)
}
