// AngelaMos | 2026
// handler.go

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/voltgear/internal/core"
)

// ProductLookup resolves catalog products for AddToCart.
type ProductLookup interface {
	Product(ctx context.Context, id string) (Product, bool)
}

type Handler struct {
	manager   *Manager
	catalog   ProductLookup
	validator *validator.Validate
}

func NewHandler(manager *Manager, catalog ProductLookup) *Handler {
	return &Handler{
		manager:   manager,
		catalog:   catalog,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.UpdateItem)
		r.Post("/items/{productID}/increase", h.IncreaseItem)
		r.Post("/items/{productID}/decrease", h.DecreaseItem)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Delete("/", h.ClearCart)
	})
}

func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, items []LineItem) {
	count := 0
	subtotal := 0.0
	for _, it := range items {
		count += it.Quantity
		subtotal += it.Price * float64(it.Quantity)
	}
	tax := Tax(subtotal, h.manager.TaxRate())
	core.OK(w, CartResponse{
		Items:    items,
		Count:    count,
		Subtotal: Round2(subtotal),
		Tax:      tax,
		Total:    Round2(subtotal + tax),
	})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respond(r.Context(), w, h.manager.Items(r.Context()))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	product, ok := h.catalog.Product(r.Context(), req.ProductID)
	if !ok {
		core.NotFound(w, "product not found")
		return
	}

	items, err := h.manager.AddToCart(r.Context(), product, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid cart item")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	h.respond(r.Context(), w, items)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	items := h.manager.UpdateQuantity(r.Context(), productID, req.Quantity)
	h.respond(r.Context(), w, items)
}

func (h *Handler) IncreaseItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	h.respond(r.Context(), w, h.manager.IncreaseQuantity(r.Context(), productID))
}

func (h *Handler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	h.respond(r.Context(), w, h.manager.DecreaseQuantity(r.Context(), productID))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	h.respond(r.Context(), w, h.manager.RemoveFromCart(r.Context(), productID))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearCart(r.Context())
	h.respond(r.Context(), w, nil)
}
