// AngelaMos | 2026
// dto.go

package account

import (
	"time"
)

type SignupRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type AccountResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// ProfileResponse is the dashboard view of the signed-in account.
type ProfileResponse struct {
	AccountResponse
	ViewedProducts []ViewedProduct `json:"viewed_products"`
	Interactions   []Interaction   `json:"interactions"`
}

type SessionResponse struct {
	Account   AccountResponse `json:"account"`
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func ToAccountResponse(a *Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
		LastLogin: a.LastLogin,
	}
}

func ToProfileResponse(a *Account) ProfileResponse {
	viewed := a.ViewedProducts
	if viewed == nil {
		viewed = []ViewedProduct{}
	}
	interactions := a.Interactions
	if interactions == nil {
		interactions = []Interaction{}
	}

	return ProfileResponse{
		AccountResponse: ToAccountResponse(a),
		ViewedProducts:  viewed,
		Interactions:    interactions,
	}
}

func ToAccountResponseList(accounts []Account) []AccountResponse {
	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, ToAccountResponse(&accounts[i]))
	}
	return responses
}
