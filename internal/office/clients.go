package office

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Clients manages the firm's clients.
type Clients struct{ *service }

// ClientRow is a client with totals over its cases.
type ClientRow struct {
	types.Client
	CaseCount    int     `json:"case_count"`
	TotalRevenue float64 `json:"total_revenue"`
	PaidRevenue  float64 `json:"paid_revenue"`
}

func validateClient(c types.Client) error {
	if strings.TrimSpace(c.Name) == "" {
		return missing("name")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return fmt.Errorf("%w: email %q", types.ErrInvalidField, c.Email)
	}
	if c.TCNumber != "" {
		if len(c.TCNumber) != 11 || strings.IndexFunc(c.TCNumber, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
			return fmt.Errorf("%w: tc_number must be 11 digits", types.ErrInvalidField)
		}
	}
	return nil
}

// Create stores a new client and returns it with its generated id.
func (cl *Clients) Create(ctx context.Context, a audit.Actor, c types.Client) (types.Client, error) {
	if err := validateClient(c); err != nil {
		return types.Client{}, err
	}
	c.ID = ""
	c.CreatedAt = cl.stamp()
	c.UpdatedAt = c.CreatedAt

	res := cl.store.Push(ctx, types.Clients, c)
	if err := check("creating client", res); err != nil {
		return types.Client{}, err
	}
	c.ID = res.Key
	cl.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionCreate,
		Target:     audit.EntityClient,
		TargetID:   c.ID,
		TargetName: c.Name,
		Details:    "E-posta: " + c.Email,
	})
	return c, nil
}

// Get returns the client with id.
func (cl *Clients) Get(ctx context.Context, id string) (types.Client, bool) {
	return store.GetAs[types.Client](ctx, cl.store, types.Clients, id)
}

// Update overwrites an existing client. A rename is copied into the
// client_name of the client's linked cases, each with its own UPDATE
// entry.
func (cl *Clients) Update(ctx context.Context, a audit.Actor, c types.Client) (types.Client, error) {
	if c.ID == "" {
		return types.Client{}, missing("id")
	}
	if err := validateClient(c); err != nil {
		return types.Client{}, err
	}
	old, ok := cl.Get(ctx, c.ID)
	if !ok {
		return types.Client{}, notFound(types.Clients, c.ID)
	}
	if c.CreatedAt == "" {
		c.CreatedAt = old.CreatedAt
	}
	c.UpdatedAt = cl.stamp()
	if err := check("updating client", cl.store.Set(ctx, types.Clients, c.ID, c)); err != nil {
		return types.Client{}, err
	}
	cl.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionUpdate,
		Target:     audit.EntityClient,
		TargetID:   c.ID,
		TargetName: c.Name,
		Details:    "E-posta: " + c.Email,
	})

	if old.Name != c.Name {
		for _, cs := range store.AllAs[types.Case](ctx, cl.store, types.Cases) {
			if cs.ClientID != c.ID || cs.ClientName == c.Name {
				continue
			}
			cs.ClientName = c.Name
			if res := cl.store.Set(ctx, types.Cases, cs.ID, cs); !res.Success {
				cl.logger.WarnContext(ctx, "renaming client on case failed", "case", cs.ID, "err", res.Err)
				continue
			}
			cl.recordCaseClient(ctx, a, cs)
		}
	}
	return c, nil
}

// LinkCases attaches the given cases to the client.
func (cl *Clients) LinkCases(ctx context.Context, a audit.Actor, clientID string, caseIDs ...string) error {
	c, ok := cl.Get(ctx, clientID)
	if !ok {
		return notFound(types.Clients, clientID)
	}
	for _, id := range caseIDs {
		cs, ok := store.GetAs[types.Case](ctx, cl.store, types.Cases, id)
		if !ok {
			return notFound(types.Cases, id)
		}
		cs.ClientID = c.ID
		cs.ClientName = c.Name
		if err := check("linking case", cl.store.Set(ctx, types.Cases, id, cs)); err != nil {
			return err
		}
		cs.ID = id
		cl.recordCaseClient(ctx, a, cs)
	}
	return nil
}

// recordCaseClient logs a change of a case's client.
func (cl *Clients) recordCaseClient(ctx context.Context, a audit.Actor, cs types.Case) {
	cl.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionUpdate,
		Target:     audit.EntityCase,
		TargetID:   cs.ID,
		TargetName: cs.Title,
		Details:    "Müvekkil: " + cs.ClientName,
	})
}

// Delete removes the client. Cases keep their client_name.
func (cl *Clients) Delete(ctx context.Context, a audit.Actor, id string) error {
	if id == "" {
		return missing("id")
	}
	old, ok := cl.Get(ctx, id)
	if err := check("deleting client", cl.store.Remove(ctx, types.Clients+"/"+id)); err != nil {
		return err
	}
	name := types.Unknown
	if ok {
		name = old.Name
	}
	cl.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionDelete,
		Target:     audit.EntityClient,
		TargetID:   id,
		TargetName: name,
	})
	return nil
}

// Cases returns the cases linked to the client by id, or by name for
// cases recorded before linking existed.
func (cl *Clients) Cases(ctx context.Context, id string) []types.Case {
	c, ok := cl.Get(ctx, id)
	if !ok {
		return nil
	}
	var out []types.Case
	for _, cs := range store.AllAs[types.Case](ctx, cl.store, types.Cases) {
		if belongsTo(cs, c) {
			out = append(out, cs)
		}
	}
	return out
}

// List returns every client sorted by name with case totals. A non-empty
// text keeps only clients whose name, e-mail or phone contains it.
func (cl *Clients) List(ctx context.Context, text string) []ClientRow {
	all := store.AllAs[types.Case](ctx, cl.store, types.Cases)
	needle := fold(strings.TrimSpace(text))

	var out []ClientRow
	for _, c := range store.AllAs[types.Client](ctx, cl.store, types.Clients) {
		if needle != "" &&
			!strings.Contains(fold(c.Name), needle) &&
			!strings.Contains(fold(c.Email), needle) &&
			!strings.Contains(c.Phone, needle) {
			continue
		}
		row := ClientRow{Client: c}
		for _, cs := range all {
			if belongsTo(cs, c) {
				row.CaseCount++
				row.TotalRevenue += cs.TotalFee
				row.PaidRevenue += cs.PaidFee
			}
		}
		out = append(out, row)
	}
	sortTurkish(out, func(r ClientRow) string { return r.Name })
	return out
}

func belongsTo(cs types.Case, c types.Client) bool {
	if cs.ClientID != "" {
		return cs.ClientID == c.ID
	}
	return cs.ClientName == c.Name
}
