// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/voltgear/internal/config"
	"github.com/angelamos/voltgear/internal/core"
	"github.com/angelamos/voltgear/internal/event"
	"github.com/angelamos/voltgear/internal/kvstore"
)

const minPasswordLength = 6

// Matches the permissive shape check the storefront always used.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Identifier of the synthesized reserved administrator. Never appears in the
// account ledger.
const reservedAdminID = "admin-voltgear-root"

// Service owns the account ledger and the current-session pointer. The store
// is authoritative: every operation re-reads or rewrites it, the in-memory
// mutex only serializes this process's read-modify-write sections.
type Service struct {
	store     *kvstore.Store
	bus       *event.Bus
	admin     config.AdminConfig
	adminHash string

	mu sync.Mutex
}

func NewService(
	store *kvstore.Store,
	bus *event.Bus,
	adminCfg config.AdminConfig,
) (*Service, error) {
	adminHash, err := core.HashPassword(adminCfg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash reserved admin password: %w", err)
	}

	return &Service{
		store:     store,
		bus:       bus,
		admin:     adminCfg,
		adminHash: adminHash,
	}, nil
}

// Signup validates and appends a new role-user account to the ledger. It
// never establishes a session; the caller must log in explicitly.
func (s *Service) Signup(
	ctx context.Context,
	name, email, password string,
) (*Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf(
			"signup: all fields are required: %w", core.ErrInvalidInput)
	}

	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf(
			"signup: invalid email format: %w", core.ErrInvalidInput)
	}

	if len(password) < minPasswordLength {
		return nil, fmt.Errorf(
			"signup: password must be at least %d characters: %w",
			minPasswordLength, core.ErrInvalidInput)
	}

	if s.IsReservedEmail(email) {
		return nil, fmt.Errorf(
			"signup: email is restricted: %w", core.ErrDuplicateKey)
	}

	passwordHash, err := core.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := s.ledger(ctx)
	for i := range accounts {
		if accounts[i].Email == email {
			return nil, fmt.Errorf(
				"signup: email already registered: %w", core.ErrDuplicateKey)
		}
	}

	acct := Account{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		PasswordHash:   passwordHash,
		Role:           RoleUser,
		CreatedAt:      time.Now().UTC(),
		ViewedProducts: []ViewedProduct{},
		Interactions:   []Interaction{},
	}

	accounts = append(accounts, acct)
	if !s.store.Set(ctx, LedgerKey, accounts) {
		return nil, fmt.Errorf("signup: persist account ledger: %w", core.ErrStorage)
	}

	return &acct, nil
}

// Login authenticates and sets the session pointer. The reserved credential
// pair always yields a synthesized admin account, ledger contents
// notwithstanding.
func (s *Service) Login(
	ctx context.Context,
	email, password string,
) (*Account, error) {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return nil, fmt.Errorf(
			"login: email and password are required: %w", core.ErrInvalidInput)
	}

	// The reserved pair matches the stored spelling only; casing folds at
	// signup, where the address is blocked, not at login.
	if email == s.admin.Email {
		return s.loginReservedAdmin(ctx, password)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := s.ledger(ctx)

	var match *Account
	for i := range accounts {
		if accounts[i].Email == email {
			match = &accounts[i]
			break
		}
	}

	var hash *string
	if match != nil {
		hash = &match.PasswordHash
	}

	valid, err := core.VerifyPasswordTimingSafe(password, hash)
	if err != nil {
		return nil, fmt.Errorf("login: verify password: %w", err)
	}

	if !valid {
		return nil, fmt.Errorf(
			"login: invalid email or password: %w", core.ErrUnauthorized)
	}

	now := time.Now().UTC()
	match.LastLogin = &now

	if !s.store.Set(ctx, LedgerKey, accounts) {
		return nil, fmt.Errorf("login: persist account ledger: %w", core.ErrStorage)
	}
	if !s.store.Set(ctx, SessionKey, match) {
		return nil, fmt.Errorf("login: persist session: %w", core.ErrStorage)
	}

	cp := *match
	return &cp, nil
}

func (s *Service) loginReservedAdmin(
	ctx context.Context,
	password string,
) (*Account, error) {
	valid, err := core.VerifyPassword(password, s.adminHash)
	if err != nil {
		return nil, fmt.Errorf("login: verify admin password: %w", err)
	}

	if !valid {
		return nil, fmt.Errorf(
			"login: invalid email or password: %w", core.ErrUnauthorized)
	}

	now := time.Now().UTC()
	admin := Account{
		ID:        reservedAdminID,
		Name:      s.admin.Name,
		Email:     s.admin.Email,
		Role:      RoleAdmin,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastLogin: &now,
	}

	if !s.store.Set(ctx, SessionKey, &admin) {
		return nil, fmt.Errorf("login: persist session: %w", core.ErrStorage)
	}

	return &admin, nil
}

// Logout clears the session pointer and publishes session.logout so the cart
// manager clears the departing account's scope. Returns the id of the account
// that was signed in, or "" when nobody was.
func (s *Service) Logout(ctx context.Context) string {
	s.mu.Lock()
	current := s.current(ctx)
	s.store.Remove(ctx, SessionKey)
	s.mu.Unlock()

	accountID := ""
	if current != nil {
		accountID = current.ID
	}

	s.bus.Publish(ctx, event.TopicSessionLogout, event.SessionLogout{
		AccountID: accountID,
	})

	return accountID
}

// Current returns the session pointer, or nil when logged out.
func (s *Service) Current(ctx context.Context) *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(ctx)
}

func (s *Service) current(ctx context.Context) *Account {
	var acct Account
	if !s.store.Get(ctx, SessionKey, &acct) {
		return nil
	}
	return &acct
}

// CurrentAccountID satisfies the middleware session check.
func (s *Service) CurrentAccountID(ctx context.Context) string {
	if acct := s.Current(ctx); acct != nil {
		return acct.ID
	}
	return ""
}

// CurrentAccountName is the display name for attribution, empty when
// logged out.
func (s *Service) CurrentAccountName(ctx context.Context) string {
	if acct := s.Current(ctx); acct != nil {
		return acct.Name
	}
	return ""
}

func (s *Service) IsAuthenticated(ctx context.Context) bool {
	return s.Current(ctx) != nil
}

// Accounts returns the registered-account ledger.
func (s *Service) Accounts(ctx context.Context) []Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := s.ledger(ctx)
	for i := range accounts {
		if accounts[i].ID == id {
			cp := accounts[i]
			return &cp, nil
		}
	}

	return nil, fmt.Errorf("get account %q: %w", id, core.ErrNotFound)
}

// UpdateAccount replaces a ledger entry by id, refreshing the session copy
// when the updated account is the one signed in.
func (s *Service) UpdateAccount(ctx context.Context, updated *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, updated)
}

func (s *Service) updateLocked(ctx context.Context, updated *Account) error {
	accounts := s.ledger(ctx)

	idx := -1
	for i := range accounts {
		if accounts[i].ID == updated.ID {
			idx = i
			break
		}
	}

	if idx == -1 {
		return fmt.Errorf("update account %q: %w", updated.ID, core.ErrNotFound)
	}

	accounts[idx] = *updated
	if !s.store.Set(ctx, LedgerKey, accounts) {
		return fmt.Errorf("update account: persist ledger: %w", core.ErrStorage)
	}

	if current := s.current(ctx); current != nil && current.ID == updated.ID {
		if !s.store.Set(ctx, SessionKey, updated) {
			return fmt.Errorf("update account: persist session: %w", core.ErrStorage)
		}
	}

	return nil
}

// AddViewedProduct prepends to the signed-in account's viewed list (cap 10).
// A no-op when logged out.
func (s *Service) AddViewedProduct(
	ctx context.Context,
	productID, productName string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.current(ctx)
	if current == nil {
		return nil
	}

	current.recordView(productID, productName, time.Now().UTC())

	if current.ID == reservedAdminID {
		// The synthesized admin has no ledger entry; only the session copy
		// carries its history.
		if !s.store.Set(ctx, SessionKey, current) {
			return fmt.Errorf("record view: persist session: %w", core.ErrStorage)
		}
		return nil
	}

	return s.updateLocked(ctx, current)
}

// AddInteraction prepends to the signed-in account's interaction history
// (cap 20). A no-op when logged out.
func (s *Service) AddInteraction(
	ctx context.Context,
	kind, description string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.current(ctx)
	if current == nil {
		return nil
	}

	current.recordInteraction(kind, description, time.Now().UTC())

	if current.ID == reservedAdminID {
		if !s.store.Set(ctx, SessionKey, current) {
			return fmt.Errorf(
				"record interaction: persist session: %w", core.ErrStorage)
		}
		return nil
	}

	return s.updateLocked(ctx, current)
}

// IsReservedEmail reports whether email is the hard-reserved admin address.
// Signup blocks it case-insensitively; every other email comparison in the
// service is exact.
func (s *Service) IsReservedEmail(email string) bool {
	return strings.EqualFold(email, s.admin.Email)
}

func (s *Service) ledger(ctx context.Context) []Account {
	accounts := []Account{}
	s.store.Get(ctx, LedgerKey, &accounts)
	return accounts
}
