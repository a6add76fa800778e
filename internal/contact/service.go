// AngelaMos | 2026
// service.go

package contact

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/voltgear/internal/core"
	"github.com/angelamos/voltgear/internal/kvstore"
)

// InboxKey is the contact-submission ledger's storage key.
const InboxKey = "techgear_contacts"

// Phone is optional, but a provided value must hold only dial
// characters and at least ten digits.
var (
	phoneChars  = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
	phoneDigits = regexp.MustCompile(`\d`)
	emailRe     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Submission is one contact-form entry, appended oldest-first so the
// admin inbox can slice the tail for recency.
type Submission struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone,omitempty"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}

// InteractionRecorder mirrors a submission into the signed-in account's
// interaction history.
type InteractionRecorder interface {
	AddInteraction(ctx context.Context, kind, description string) error
}

type Service struct {
	store        *kvstore.Store
	interactions InteractionRecorder
	now          func() time.Time
	mu           sync.Mutex
}

func NewService(store *kvstore.Store, interactions InteractionRecorder) *Service {
	return &Service{
		store:        store,
		interactions: interactions,
		now:          time.Now,
	}
}

func validPhone(phone string) bool {
	return phoneChars.MatchString(phone) &&
		len(phoneDigits.FindAllString(phone, -1)) >= 10
}

// Submit validates and stores a contact-form submission.
func (s *Service) Submit(ctx context.Context, sub Submission) (Submission, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Phone = strings.TrimSpace(sub.Phone)
	sub.Subject = strings.TrimSpace(sub.Subject)
	sub.Message = strings.TrimSpace(sub.Message)

	switch {
	case sub.Name == "":
		return Submission{}, core.ValidationError("name is required")
	case !emailRe.MatchString(sub.Email):
		return Submission{}, core.ValidationError("a valid email is required")
	case sub.Phone != "" && !validPhone(sub.Phone):
		return Submission{}, core.ValidationError("phone number is not valid")
	case sub.Subject == "":
		return Submission{}, core.ValidationError("subject is required")
	case sub.Message == "":
		return Submission{}, core.ValidationError("message is required")
	}

	sub.ID = uuid.NewString()
	sub.Date = s.now().UTC()

	s.mu.Lock()
	inbox := []Submission{}
	s.store.Get(ctx, InboxKey, &inbox)
	inbox = append(inbox, sub)
	ok := s.store.Set(ctx, InboxKey, inbox)
	s.mu.Unlock()

	if !ok {
		return Submission{}, core.NewAppError(
			500, "STORAGE_FAILED", "could not persist submission",
		)
	}

	if s.interactions != nil {
		_ = s.interactions.AddInteraction(ctx, "contact", "Submitted contact form")
	}
	return sub, nil
}

// Inbox returns every submission, oldest first.
func (s *Service) Inbox(ctx context.Context) []Submission {
	inbox := []Submission{}
	s.store.Get(ctx, InboxKey, &inbox)
	return inbox
}

// Recent returns the latest n submissions, newest first.
func (s *Service) Recent(ctx context.Context, n int) []Submission {
	inbox := s.Inbox(ctx)
	out := []Submission{}
	for i := len(inbox) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, inbox[i])
	}
	return out
}
