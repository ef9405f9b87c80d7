package office

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Lawyers manages lawyer accounts. A lawyer's record key is the e-mail
// address.
type Lawyers struct{ *service }

// Registration holds the fields of a new lawyer account.
type Registration struct {
	Name     string
	Email    string
	Password string
	Color    string
}

// Register creates an account. E-mail addresses and calendar colors are
// unique across the firm.
func (l *Lawyers) Register(ctx context.Context, r Registration) (types.Lawyer, error) {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return types.Lawyer{}, missing("name")
	case r.Email == "":
		return types.Lawyer{}, missing("email")
	case r.Password == "":
		return types.Lawyer{}, missing("password")
	case !strings.Contains(r.Email, "@"):
		return types.Lawyer{}, fmt.Errorf("%w: email %q", types.ErrInvalidField, r.Email)
	}

	if l.store.Get(ctx, types.Lawyers, r.Email) != nil {
		return types.Lawyer{}, fmt.Errorf("%w: lawyer %s", types.ErrDuplicateKey, r.Email)
	}
	if r.Color != "" {
		for _, other := range store.AllAs[types.Lawyer](ctx, l.store, types.Lawyers) {
			if strings.EqualFold(other.Color, r.Color) {
				return types.Lawyer{}, fmt.Errorf("%w: color %s is used by %s", types.ErrDuplicateKey, r.Color, other.Name)
			}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), l.hashCost)
	if err != nil {
		return types.Lawyer{}, fmt.Errorf("hashing password: %w", err)
	}
	lw := types.Lawyer{
		Name:      r.Name,
		Email:     r.Email,
		Password:  string(hash),
		Color:     r.Color,
		CreatedAt: l.stamp(),
	}
	if err := check("registering lawyer", l.store.Set(ctx, types.Lawyers, r.Email, lw)); err != nil {
		return types.Lawyer{}, err
	}
	lw.ID = r.Email
	lw.Password = ""
	return lw, nil
}

// Login verifies the credentials and records the sign-in. Accounts
// created before passwords were hashed are still accepted.
func (l *Lawyers) Login(ctx context.Context, email, password string) (types.Lawyer, error) {
	lw, ok := store.GetAs[types.Lawyer](ctx, l.store, types.Lawyers, email)
	if !ok || !passwordMatches(lw.Password, password) {
		return types.Lawyer{}, types.ErrInvalidCredentials
	}
	lw.Password = ""
	l.record(ctx, audit.Login(audit.Actor{ID: email, Name: lw.Name}))
	return lw, nil
}

// Logout records the sign-out of a.
func (l *Lawyers) Logout(ctx context.Context, a audit.Actor) {
	l.record(ctx, audit.Logout(a))
}

// Actor returns the log identity of the lawyer with id.
func (l *Lawyers) Actor(ctx context.Context, id string) audit.Actor {
	if id == "" {
		return audit.Actor{}
	}
	return audit.Actor{ID: id, Name: l.lawyerName(ctx, id)}
}

// List returns every lawyer sorted by name, without password hashes.
func (l *Lawyers) List(ctx context.Context) []types.Lawyer {
	out := store.AllAs[types.Lawyer](ctx, l.store, types.Lawyers)
	for i := range out {
		out[i].Password = ""
	}
	sortTurkish(out, func(x types.Lawyer) string { return x.Name })
	return out
}

// Name returns the lawyer's display name or "Bilinmeyen Avukat".
func (l *Lawyers) Name(ctx context.Context, id string) string {
	return l.lawyerName(ctx, id)
}

func passwordMatches(stored, given string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
