// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/voltgear/internal/core"
)

type fakeVerifier struct {
	claims *SessionClaims
	err    error
}

func (f *fakeVerifier) VerifySessionToken(context.Context, string) (*SessionClaims, error) {
	return f.claims, f.err
}

type fakePointer struct {
	accountID string
}

func (f *fakePointer) CurrentAccountID(context.Context) string {
	return f.accountID
}

func TestExtractToken(t *testing.T) {
	newReq := func(header string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return r
	}

	assert.Equal(t, "abc", ExtractToken(newReq("Bearer abc")))
	assert.Equal(t, "abc", ExtractToken(newReq("bearer abc")))
	assert.Equal(t, "", ExtractToken(newReq("")))
	assert.Equal(t, "", ExtractToken(newReq("Basic abc")))
	assert.Equal(t, "", ExtractToken(newReq("Bearer")))
}

func runAuthenticated(
	t *testing.T,
	verifier TokenVerifier,
	pointer SessionPointer,
	header string,
) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	reached := false
	handler := Authenticator(verifier, pointer)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			assert.Equal(t, "u1", GetAccountID(r.Context()))
			w.WriteHeader(http.StatusOK)
		}),
	)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w, reached
}

func TestAuthenticatorAcceptsValidSession(t *testing.T) {
	verifier := &fakeVerifier{claims: &SessionClaims{AccountID: "u1", Role: "user"}}
	pointer := &fakePointer{accountID: "u1"}

	w, reached := runAuthenticated(t, verifier, pointer, "Bearer tok")
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticatorRejectsMissingToken(t *testing.T) {
	w, reached := runAuthenticated(
		t,
		&fakeVerifier{},
		&fakePointer{},
		"",
	)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatorRejectsBadToken(t *testing.T) {
	verifier := &fakeVerifier{err: core.TokenInvalidError()}

	w, reached := runAuthenticated(t, verifier, &fakePointer{}, "Bearer tok")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatorRejectsExpiredToken(t *testing.T) {
	verifier := &fakeVerifier{err: core.TokenExpiredError()}

	w, reached := runAuthenticated(t, verifier, &fakePointer{}, "Bearer tok")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// A valid token belonging to an account that has since logged out (or been
// replaced by another login) must be rejected: the store pointer wins.
func TestAuthenticatorRejectsStaleSession(t *testing.T) {
	verifier := &fakeVerifier{claims: &SessionClaims{AccountID: "u1"}}
	pointer := &fakePointer{accountID: ""}

	w, reached := runAuthenticated(t, verifier, pointer, "Bearer tok")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole("admin")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	run := func(role string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if role != "" {
			ctx := context.WithValue(r.Context(), AccountRoleKey, role)
			r = r.WithContext(ctx)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusOK, run("admin").Code)
	assert.Equal(t, http.StatusForbidden, run("user").Code)
	assert.Equal(t, http.StatusUnauthorized, run("").Code)
}

func TestOptionalAuthPassesThroughAnonymous(t *testing.T) {
	handler := OptionalAuth(&fakeVerifier{}, &fakePointer{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.False(t, IsAuthenticated(r.Context()))
			w.WriteHeader(http.StatusOK)
		}),
	)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuthAttachesValidSession(t *testing.T) {
	verifier := &fakeVerifier{claims: &SessionClaims{AccountID: "u1", Role: "user"}}
	pointer := &fakePointer{accountID: "u1"}

	handler := OptionalAuth(verifier, pointer)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "u1", GetAccountID(r.Context()))
			w.WriteHeader(http.StatusOK)
		}),
	)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
}
