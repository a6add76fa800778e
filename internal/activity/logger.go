// AngelaMos | 2026
// logger.go

package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/voltgear/internal/event"
	"github.com/angelamos/voltgear/internal/kvstore"
)

// LogKey is the rolling activity ledger's storage key.
const LogKey = "techgear_activity_log"

// maxEntries caps the ledger; the oldest entries fall off first.
const maxEntries = 100

// guestID and guestName mark events raised while nobody is signed in.
const (
	guestID   = "guest"
	guestName = "Guest"
)

// Event is one entry in the activity ledger.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"user_id"`
	UserName  string         `json:"user_name"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
}

// SessionReader resolves who an event is attributed to.
type SessionReader interface {
	CurrentAccountID(ctx context.Context) string
	CurrentAccountName(ctx context.Context) string
}

// InteractionRecorder mirrors activity into the acting account's
// recent-interaction list.
type InteractionRecorder interface {
	AddInteraction(ctx context.Context, kind, description string) error
}

// Logger appends to the capped activity ledger. Writes are best effort:
// a failed persist is logged and dropped, never surfaced to the caller.
type Logger struct {
	store        *kvstore.Store
	session      SessionReader
	interactions InteractionRecorder
	bus          *event.Bus
	logger       *slog.Logger
	now          func() time.Time
	mu           sync.Mutex
}

func NewLogger(
	store *kvstore.Store,
	session SessionReader,
	interactions InteractionRecorder,
	bus *event.Bus,
	logger *slog.Logger,
) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{
		store:        store,
		session:      session,
		interactions: interactions,
		bus:          bus,
		logger:       logger,
		now:          time.Now,
	}
}

// Log records an action against the current session, guest when nobody
// is signed in. Newest entries sit at the front; the hundred-and-first
// oldest entry is dropped.
func (l *Logger) Log(ctx context.Context, action string, details map[string]any) {
	e := Event{
		ID:        uuid.NewString(),
		Timestamp: l.now().UTC(),
		UserID:    guestID,
		UserName:  guestName,
		Action:    action,
		Details:   details,
	}
	if id := l.session.CurrentAccountID(ctx); id != "" {
		e.UserID = id
		if name := l.session.CurrentAccountName(ctx); name != "" {
			e.UserName = name
		}
	}

	l.mu.Lock()
	entries := []Event{}
	l.store.Get(ctx, LogKey, &entries)
	entries = append([]Event{e}, entries...)
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	if !l.store.Set(ctx, LogKey, entries) {
		l.logger.Warn("activity write dropped", "action", action)
	}
	l.mu.Unlock()

	if e.UserID != guestID && l.interactions != nil {
		description := action
		if d, ok := details["description"].(string); ok && d != "" {
			description = d
		}
		if err := l.interactions.AddInteraction(ctx, action, description); err != nil {
			l.logger.Warn("interaction mirror failed", "error", err)
		}
	}

	l.bus.Publish(ctx, event.TopicActivityLogged, event.ActivityLogged{
		EventID: e.ID,
		Action:  action,
	})
}

// Entries returns the ledger newest first.
func (l *Logger) Entries(ctx context.Context) []Event {
	entries := []Event{}
	l.store.Get(ctx, LogKey, &entries)
	return entries
}

// Clear wipes the ledger.
func (l *Logger) Clear(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.Remove(ctx, LogKey)
}
