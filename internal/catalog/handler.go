// AngelaMos | 2026
// handler.go

package catalog

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/voltgear/internal/core"
)

// ViewRecorder keeps the signed-in account's recently-viewed list.
type ViewRecorder interface {
	AddViewedProduct(ctx context.Context, productID, productName string) error
}

// ActivityRecorder mirrors product views into the activity ledger.
type ActivityRecorder interface {
	Log(ctx context.Context, action string, details map[string]any)
}

type Handler struct {
	service  *Service
	views    ViewRecorder
	activity ActivityRecorder
}

func NewHandler(service *Service, views ViewRecorder, activity ActivityRecorder) *Handler {
	return &Handler{service: service, views: views, activity: activity}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{productID}", h.GetProduct)
	})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		core.OK(w, h.service.ByCategory(r.Context(), category))
		return
	}
	core.OK(w, h.service.List(r.Context()))
}

// GetProduct returns one product and, as a side effect, records the view
// against the current session.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.service.Get(r.Context(), chi.URLParam(r, "productID"))
	if !ok {
		core.NotFound(w, "product not found")
		return
	}

	if err := h.views.AddViewedProduct(r.Context(), p.ID, p.Name); err != nil {
		core.InternalServerError(w, err)
		return
	}
	h.activity.Log(r.Context(), "View Product", map[string]any{
		"product_id":  p.ID,
		"description": "Viewed " + p.Name,
	})

	core.OK(w, p)
}
