// Package office implements the operations behind the office screens:
// lawyers, cases, clients, calendar events, expenses, documents, chat,
// client communications and case stages. Every mutating operation makes
// its primary write through the store and then records an activity log
// entry. A log write that fails is ignored, so it never turns a
// successful operation into a failed one.
package office

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// DateLayout is the layout of calendar dates such as payment_date and
// event dates.
const DateLayout = "2006-01-02"

// Office bundles the services of one firm.
type Office struct {
	Lawyers        *Lawyers
	Cases          *Cases
	Clients        *Clients
	Events         *Events
	Expenses       *Expenses
	Documents      *Documents
	Chat           *Chat
	Communications *Communications
	Process        *CaseProcess
}

// Option configures the services.
type Option func(*service)

// WithClock overrides the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *service) { s.logger = l }
}

// WithHashCost sets the bcrypt cost for lawyer passwords.
func WithHashCost(cost int) Option {
	return func(s *service) { s.hashCost = cost }
}

// New creates the services over s. Activity is recorded through log; pass
// audit.Nop{} to record nothing.
func New(s *store.Store, log audit.AuditLogger, opts ...Option) *Office {
	svc := &service{
		store:    s,
		log:      log,
		now:      time.Now,
		logger:   slog.Default(),
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return &Office{
		Lawyers:        &Lawyers{svc},
		Cases:          &Cases{svc},
		Clients:        &Clients{svc},
		Events:         &Events{svc},
		Expenses:       &Expenses{svc},
		Documents:      &Documents{svc},
		Chat:           &Chat{svc},
		Communications: &Communications{svc},
		Process:        &CaseProcess{svc},
	}
}

// service is the state shared by all services.
type service struct {
	store    *store.Store
	log      audit.AuditLogger
	now      func() time.Time
	logger   *slog.Logger
	hashCost int
}

func (s *service) stamp() string { return s.now().UTC().Format(types.TimeLayout) }

func (s *service) today() string { return s.now().Format(DateLayout) }

func (s *service) record(ctx context.Context, e audit.Entry) {
	if !s.log.Record(ctx, e) {
		s.logger.DebugContext(ctx, "activity not recorded", "action", string(e.Action), "target_id", e.TargetID)
	}
}

// lawyerName returns the name of the lawyer with id, or the placeholder
// when there is none.
func (s *service) lawyerName(ctx context.Context, id string) string {
	if id == "" {
		return types.UnknownLawyer
	}
	if rec := s.store.Get(ctx, types.Lawyers, id); rec != nil && rec.String("name") != "" {
		return rec.String("name")
	}
	return types.UnknownLawyer
}

func check(op string, res store.Result) error {
	if res.Success {
		return nil
	}
	return fmt.Errorf("%s: %w", op, res.Err)
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", types.ErrMissingField, field)
}

func notFound(collection, id string) error {
	return fmt.Errorf("%w: %s/%s", types.ErrNotFound, collection, id)
}

// fold lower-cases s with Turkish rules, so that "I" matches "ı" and "İ"
// matches "i".
func fold(s string) string {
	return cases.Lower(language.Turkish).String(s)
}

// sortTurkish orders items by the Turkish collation of key.
func sortTurkish[T any](items []T, key func(T) string) {
	c := collate.New(language.Turkish)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(key(items[i]), key(items[j])) < 0
	})
}

// sortNewest orders items by timestamp key, latest first. Timestamps are
// in one fixed layout, so they compare as strings.
func sortNewest[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool { return key(items[i]) > key(items[j]) })
}
