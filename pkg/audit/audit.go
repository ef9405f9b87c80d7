// Package audit writes the activity log: one append-only record per
// create, update, delete, or view action. Logging is best effort. A failed
// log write is reported to the diagnostic logger and otherwise ignored, so
// it can never make the action that triggered it look failed.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// ActionType is the verb of a log entry.
type ActionType string

// Actions.
const (
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
	ActionView   ActionType = "VIEW"
)

// EntityType is the kind of record a log entry is about. Values are the
// display names stored in target_type.
type EntityType string

// Entity types.
const (
	EntityCase          EntityType = "Dosya"
	EntityEvent         EntityType = "Etkinlik"
	EntityClient        EntityType = "Müvekkil"
	EntityFinancial     EntityType = "Finansal"
	EntityDocument      EntityType = "Belge"
	EntityMessage       EntityType = "Mesaj"
	EntityCommunication EntityType = "İletişim"
	EntitySystem        EntityType = "Sistem"
)

// Actor identifies who performed an action.
type Actor struct {
	ID   string
	Name string
}

// Entry describes one action to log. An empty Description is filled from
// the phrase table.
type Entry struct {
	Actor       Actor
	Action      ActionType
	Target      EntityType
	TargetID    string
	TargetName  string
	Description string
	Details     string
}

// AuditLogger records entries. Record reports whether the entry was
// written; callers are free to ignore it.
type AuditLogger interface {
	Record(ctx context.Context, e Entry) bool
}

// Logger appends entries to the activity_logs collection.
type Logger struct {
	store  *store.Store
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock overrides the time source for created_at.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// WithLogger sets the diagnostic logger.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Logger) { l.logger = lg }
}

// New creates a Logger writing through s.
func New(s *store.Store, opts ...Option) *Logger {
	l := &Logger{store: s, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends e. It never panics and never retries.
func (l *Logger) Record(ctx context.Context, e Entry) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.WarnContext(ctx, "activity log panicked", "panic", fmt.Sprint(r))
			ok = false
		}
	}()
	res := l.store.Push(ctx, types.ActivityLogs, Build(e, l.now()))
	if !res.Success {
		l.logger.WarnContext(ctx, "activity log write failed",
			"action", string(e.Action), "target_type", string(e.Target), "target_id", e.TargetID, "err", res.Err)
		return false
	}
	return true
}

// Build renders e as the stored log record.
func Build(e Entry, at time.Time) types.ActivityLog {
	name := e.Actor.Name
	if name == "" {
		name = types.SystemUserName
	}
	desc := e.Description
	if desc == "" {
		desc = Describe(e.Target, e.Action)
	}
	return types.ActivityLog{
		UserID:            e.Actor.ID,
		UserName:          name,
		ActionType:        string(e.Action),
		ActionDescription: desc,
		TargetType:        string(e.Target),
		TargetID:          e.TargetID,
		TargetName:        e.TargetName,
		Details:           e.Details,
		CreatedAt:         at.UTC().Format(types.TimeLayout),
	}
}

// Login is the entry written when a lawyer signs in.
func Login(a Actor) Entry {
	return Entry{
		Actor:       withFallbackName(a),
		Action:      ActionView,
		Target:      EntitySystem,
		TargetID:    a.ID,
		TargetName:  "Giriş",
		Description: "Sisteme giriş yapıldı",
		Details:     "Kullanıcı: " + a.Name,
	}
}

// Logout is the entry written when a lawyer signs out.
func Logout(a Actor) Entry {
	return Entry{
		Actor:       withFallbackName(a),
		Action:      ActionView,
		Target:      EntitySystem,
		TargetID:    a.ID,
		TargetName:  "Çıkış",
		Description: "Sistemden çıkış yapıldı",
		Details:     "Kullanıcı: " + a.Name,
	}
}

func withFallbackName(a Actor) Actor {
	if a.Name == "" {
		a.Name = types.UnknownUser
	}
	return a
}

// Nop discards every entry.
type Nop struct{}

// Record implements AuditLogger.
func (Nop) Record(context.Context, Entry) bool { return true }

var (
	_ AuditLogger = (*Logger)(nil)
	_ AuditLogger = Nop{}
)
