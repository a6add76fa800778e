// AngelaMos | 2026
// service_test.go

package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/voltgear/internal/config"
	"github.com/angelamos/voltgear/internal/core"
	"github.com/angelamos/voltgear/internal/event"
	"github.com/angelamos/voltgear/internal/kvstore"
)

func testAdminConfig() config.AdminConfig {
	return config.AdminConfig{
		Email:    "admin@gmail.com",
		Password: "admin123",
		Name:     "VoltGear Admin",
	}
}

func newTestService(t *testing.T) (*Service, *kvstore.Store, *event.Bus) {
	t.Helper()
	store := kvstore.New(kvstore.NewMemoryBackend(), nil)
	bus := event.NewBus()
	svc, err := NewService(store, bus, testAdminConfig())
	require.NoError(t, err)
	return svc, store, bus
}

func TestSignupCreatesUserRole(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	acct, err := svc.Signup(ctx, "Dana", "dana@example.com", "secret1")
	require.NoError(t, err)

	assert.NotEmpty(t, acct.ID)
	assert.Equal(t, RoleUser, acct.Role)
	assert.Equal(t, "dana@example.com", acct.Email)
	assert.Empty(t, acct.LastLogin)
	assert.NotEmpty(t, acct.PasswordHash)
	assert.NotEqual(t, "secret1", acct.PasswordHash)
}

func TestSignupNeverAuthenticates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Dana", "dana@example.com", "secret1")
	require.NoError(t, err)

	assert.Nil(t, svc.Current(ctx))
	assert.False(t, svc.IsAuthenticated(ctx))
}

func TestSignupValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"missing name", "", "a@b.co", "secret1"},
		{"missing email", "Dana", "", "secret1"},
		{"missing password", "Dana", "a@b.co", ""},
		{"bad email", "Dana", "not-an-email", "secret1"},
		{"email with spaces", "Dana", "a b@c.co", "secret1"},
		{"short password", "Dana", "a@b.co", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tc.userName, tc.email, tc.password)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Dana", "dana@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "Other", "dana@example.com", "secret2")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestSignupReservedEmailRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Impostor", "admin@gmail.com", "secret1")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	// Case variants of the reserved address are rejected too.
	_, err = svc.Signup(ctx, "Impostor", "ADMIN@GMAIL.COM", "secret1")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestLoginSetsSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Dana", "dana@example.com", "secret1")
	require.NoError(t, err)

	acct, err := svc.Login(ctx, "dana@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, acct.LastLogin)

	current := svc.Current(ctx)
	require.NotNil(t, current)
	assert.Equal(t, acct.ID, current.ID)
	assert.Equal(t, acct.ID, svc.CurrentAccountID(ctx))
	assert.Equal(t, "Dana", svc.CurrentAccountName(ctx))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Dana", "dana@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "dana@example.com", "wrong-password")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	assert.Nil(t, svc.Current(ctx))
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestLoginEmailIsCaseSensitiveForRegularAccounts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Dana", "dana@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "DANA@EXAMPLE.COM", "secret1")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestReservedAdminLoginWithEmptyLedger(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	admin, err := svc.Login(ctx, "admin@gmail.com", "admin123")
	require.NoError(t, err)

	assert.Equal(t, "admin-voltgear-root", admin.ID)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.Equal(t, "VoltGear Admin", admin.Name)
	assert.Equal(t, 2024, admin.CreatedAt.Year())

	// The synthesized admin never joins the ledger.
	assert.Empty(t, svc.Accounts(ctx))
	require.NotNil(t, svc.Current(ctx))
}

func TestReservedAdminWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "admin@gmail.com", "nope")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestReservedAdminLoginMatchesExactSpelling(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// Only signup folds case on the reserved address; a case variant at
	// login falls through to the ledger and finds nothing.
	_, err := svc.Login(ctx, "ADMIN@GMAIL.COM", "admin123")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	assert.Nil(t, svc.Current(ctx))
}

func TestLogoutClearsSessionAndPublishes(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx := context.Background()

	var published []event.SessionLogout
	bus.Subscribe(event.TopicSessionLogout, func(_ context.Context, payload any) {
		published = append(published, payload.(event.SessionLogout))
	})

	_, err := svc.Signup(ctx, "Dana", "dana@example.com", "secret1")
	require.NoError(t, err)
	acct, err := svc.Login(ctx, "dana@example.com", "secret1")
	require.NoError(t, err)

	gone := svc.Logout(ctx)
	assert.Equal(t, acct.ID, gone)
	assert.Nil(t, svc.Current(ctx))

	require.Len(t, published, 1)
	assert.Equal(t, acct.ID, published[0].AccountID)
}

func TestLogoutWhileLoggedOut(t *testing.T) {
	svc, _, _ := newTestService(t)

	assert.Equal(t, "", svc.Logout(context.Background()))
}

func TestViewedProductsCapAtTen(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Dana", "dana@example.com", "secret1")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "dana@example.com", "secret1")
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		require.NoError(t, svc.AddViewedProduct(
			ctx,
			"p"+string(rune('a'+i)),
			"Product",
		))
	}

	current := svc.Current(ctx)
	require.NotNil(t, current)
	require.Len(t, current.ViewedProducts, 10)
	// Newest first, oldest two dropped.
	assert.Equal(t, "p"+string(rune('a'+11)), current.ViewedProducts[0].ID)
	assert.Equal(t, "p"+string(rune('a'+2)), current.ViewedProducts[9].ID)
}

func TestInteractionsCapAtTwenty(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Dana", "dana@example.com", "secret1")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "dana@example.com", "secret1")
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		require.NoError(t, svc.AddInteraction(ctx, "click", "clicked"))
	}

	current := svc.Current(ctx)
	require.NotNil(t, current)
	assert.Len(t, current.Interactions, 20)
}

func TestViewedProductNoOpWhenLoggedOut(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddViewedProduct(ctx, "p1", "Product"))
	assert.Nil(t, svc.Current(ctx))
}

func TestReservedAdminHistoryStaysOffLedger(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin@gmail.com", "admin123")
	require.NoError(t, err)

	require.NoError(t, svc.AddViewedProduct(ctx, "p1", "Product"))

	current := svc.Current(ctx)
	require.NotNil(t, current)
	assert.Len(t, current.ViewedProducts, 1)
	assert.Empty(t, svc.Accounts(ctx))
}
