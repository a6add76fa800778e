// AngelaMos | 2026
// handler.go

package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/voltgear/internal/core"
)

// ActivityRecorder mirrors auth actions into the activity ledger.
type ActivityRecorder interface {
	Log(ctx context.Context, action string, details map[string]any)
}

type Handler struct {
	service   *Service
	tokens    *TokenManager
	activity  ActivityRecorder
	validator *validator.Validate
}

func NewHandler(
	service *Service,
	tokens *TokenManager,
	activity ActivityRecorder,
) *Handler {
	return &Handler{
		service:   service,
		tokens:    tokens,
		activity:  activity,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.GetMe)
		})
	})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	acct, err := h.service.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid signup details")
		case errors.Is(err, core.ErrDuplicateKey):
			core.JSONError(w, core.NewAppError(
				http.StatusConflict,
				"EMAIL_TAKEN",
				"email already registered or restricted",
			))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	h.activity.Log(r.Context(), "Signup", map[string]any{
		"account_id": acct.ID,
		"email":      acct.Email,
	})

	// Signup never authenticates; the client must log in explicitly.
	core.Created(w, ToAccountResponse(acct))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	acct, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "email and password are required")
		case errors.Is(err, core.ErrUnauthorized):
			core.JSONError(
				w,
				core.UnauthorizedError("invalid email or password"),
			)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	token, expiresAt, err := h.tokens.IssueSessionToken(acct)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	h.activity.Log(r.Context(), "Login", map[string]any{
		"account_id": acct.ID,
	})

	core.OK(w, SessionResponse{
		Account:   ToAccountResponse(acct),
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	// Log before the pointer is cleared so the event is attributed.
	h.activity.Log(r.Context(), "Logout", map[string]any{})

	h.service.Logout(r.Context())

	core.OK(w, map[string]string{"message": "logged out"})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	acct := h.service.Current(r.Context())
	if acct == nil {
		core.JSONError(w, core.UnauthorizedError("no active session"))
		return
	}

	core.OK(w, ToProfileResponse(acct))
}
