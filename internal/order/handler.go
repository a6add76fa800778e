// AngelaMos | 2026
// handler.go

package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/voltgear/internal/account"
	"github.com/angelamos/voltgear/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts checkout behind optional auth (guest checkout
// is allowed; the order just carries no account id) plus its own rate
// limit, and the order views behind the full authenticator.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth, checkoutLimit func(http.Handler) http.Handler,
) {
	r.Route("/orders", func(r chi.Router) {
		r.With(optionalAuth, checkoutLimit).Post("/", h.Checkout)
		r.With(authenticator).Get("/", h.ListOrders)
		r.With(authenticator).Get("/{orderID}", h.GetOrder)
	})
}

// Checkout turns the caller's cart into a pending order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var details CheckoutDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	o, err := h.service.CreateOrder(r.Context(), details)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			var appErr *core.AppError
			if errors.As(err, &appErr) {
				core.BadRequest(w, appErr.Message)
				return
			}
			core.BadRequest(w, "invalid checkout details")
			return
		}
		core.InternalServerError(w, err)
		return
	}
	core.Created(w, o)
}

// ListOrders returns the caller's own orders, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	acct := h.service.session.Current(r.Context())
	if acct == nil {
		core.JSONError(w, core.UnauthorizedError("no active session"))
		return
	}
	if acct.Role == account.RoleAdmin {
		core.OK(w, h.service.Orders(r.Context()))
		return
	}
	core.OK(w, h.service.OrdersForAccount(r.Context(), acct.ID))
}

// GetOrder returns one order; non-admin callers only see their own.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	acct := h.service.session.Current(r.Context())
	if acct == nil {
		core.JSONError(w, core.UnauthorizedError("no active session"))
		return
	}

	o, err := h.service.OrderByID(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		core.NotFound(w, "order not found")
		return
	}
	if acct.Role != account.RoleAdmin && o.AccountID != acct.ID {
		core.Forbidden(w, "not your order")
		return
	}
	core.OK(w, o)
}
