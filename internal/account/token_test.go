// AngelaMos | 2026
// token_test.go

package account

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/voltgear/internal/config"
	"github.com/angelamos/voltgear/internal/core"
)

func newTestTokenManager(t *testing.T, expire time.Duration) *TokenManager {
	t.Helper()

	keyPath := filepath.Join(t.TempDir(), "session.pem")
	require.NoError(t, GenerateKeyPair(keyPath))

	tm, err := NewTokenManager(config.SessionConfig{
		PrivateKeyPath:    keyPath,
		AccessTokenExpire: expire,
		Issuer:            "voltgear-test",
		Audience:          "voltgear-ui",
	})
	require.NoError(t, err)
	return tm
}

func TestIssueAndVerifySessionToken(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)

	acct := &Account{ID: "u1", Name: "Dana", Role: RoleUser}
	signed, expiresAt, err := tm.IssueSessionToken(acct)
	require.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := tm.VerifySessionToken(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.AccountID)
	assert.Equal(t, RoleUser, claims.Role)
	assert.Equal(t, "Dana", claims.Name)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)

	_, err := tm.VerifySessionToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tm := newTestTokenManager(t, -time.Minute)

	acct := &Account{ID: "u1", Name: "Dana", Role: RoleUser}
	signed, _, err := tm.IssueSessionToken(acct)
	require.NoError(t, err)

	_, err = tm.VerifySessionToken(context.Background(), signed)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyRejectsTokenFromAnotherKey(t *testing.T) {
	issuer := newTestTokenManager(t, time.Hour)
	verifier := newTestTokenManager(t, time.Hour)

	signed, _, err := issuer.IssueSessionToken(&Account{ID: "u1", Role: RoleUser})
	require.NoError(t, err)

	_, err = verifier.VerifySessionToken(context.Background(), signed)
	assert.Error(t, err)
}

func TestKeyIDIsStableForManager(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	assert.Len(t, tm.KeyID(), 8)
	assert.Equal(t, tm.KeyID(), tm.KeyID())
}
