package office

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Cases manages case files.
type Cases struct{ *service }

// CaseRow is a case with its lawyer's name resolved.
type CaseRow struct {
	types.Case
	LawyerName string `json:"lawyer_name"`
}

// CaseOrder selects the order of List.
type CaseOrder int

// Case orders.
const (
	NewestFirst CaseOrder = iota
	ByTitle
)

// CaseQuery narrows List. Zero values match everything.
type CaseQuery struct {
	LawyerID string
	Status   string
	Order    CaseOrder
}

func validateCase(c types.Case) error {
	switch {
	case c.CaseNumber == "":
		return missing("case_number")
	case c.Title == "":
		return missing("title")
	case c.ClientName == "":
		return missing("client_name")
	case c.LawyerID == "":
		return missing("lawyer_id")
	}
	return types.ValidateFees(c.TotalFee, c.PaidFee)
}

// Create stores a new case and returns it with its generated id. The
// remaining fee is always recomputed from the total and paid fees.
func (cs *Cases) Create(ctx context.Context, a audit.Actor, c types.Case) (types.Case, error) {
	if err := validateCase(c); err != nil {
		return types.Case{}, err
	}
	c.ID = ""
	c.RemainingFee = types.RemainingFee(c.TotalFee, c.PaidFee)
	if c.Status == "" {
		c.Status = types.CaseOpen
	}
	c.CreatedAt = cs.stamp()
	c.UpdatedAt = c.CreatedAt

	res := cs.store.Push(ctx, types.Cases, c)
	if err := check("creating case", res); err != nil {
		return types.Case{}, err
	}
	c.ID = res.Key

	cs.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionCreate,
		Target:     audit.EntityCase,
		TargetID:   c.ID,
		TargetName: c.Title,
		Details:    fmt.Sprintf("Müvekkil: %s, Avukat: %s", c.ClientName, cs.lawyerName(ctx, c.LawyerID)),
	})
	return c, nil
}

// Get returns the case with id.
func (cs *Cases) Get(ctx context.Context, id string) (types.Case, bool) {
	return store.GetAs[types.Case](ctx, cs.store, types.Cases, id)
}

// Update overwrites an existing case. A change of the total fee is
// recorded as a financial update as well.
func (cs *Cases) Update(ctx context.Context, a audit.Actor, c types.Case) (types.Case, error) {
	if c.ID == "" {
		return types.Case{}, missing("id")
	}
	if err := validateCase(c); err != nil {
		return types.Case{}, err
	}
	old, ok := cs.Get(ctx, c.ID)
	if !ok {
		return types.Case{}, notFound(types.Cases, c.ID)
	}
	c.RemainingFee = types.RemainingFee(c.TotalFee, c.PaidFee)
	if c.CreatedAt == "" {
		c.CreatedAt = old.CreatedAt
	}
	c.UpdatedAt = cs.stamp()

	if err := check("updating case", cs.store.Set(ctx, types.Cases, c.ID, c)); err != nil {
		return types.Case{}, err
	}
	cs.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionUpdate,
		Target:     audit.EntityCase,
		TargetID:   c.ID,
		TargetName: c.Title,
		Details:    "Müvekkil: " + c.ClientName,
	})
	if old.TotalFee != c.TotalFee {
		cs.record(ctx, audit.Entry{
			Actor:       a,
			Action:      audit.ActionUpdate,
			Target:      audit.EntityFinancial,
			TargetID:    c.ID,
			TargetName:  c.Title,
			Description: audit.FeeUpdated(c.TotalFee),
			Details:     "Tutar: " + audit.FormatAmount(c.TotalFee) + " TL",
		})
	}
	return c, nil
}

// Delete removes the case. Linked events, documents and stages are left
// in place.
func (cs *Cases) Delete(ctx context.Context, a audit.Actor, id string) error {
	if id == "" {
		return missing("id")
	}
	old, ok := cs.Get(ctx, id)
	if err := check("deleting case", cs.store.Remove(ctx, types.Cases+"/"+id)); err != nil {
		return err
	}
	e := audit.Entry{
		Actor:      a,
		Action:     audit.ActionDelete,
		Target:     audit.EntityCase,
		TargetID:   id,
		TargetName: types.UnknownCase,
	}
	if ok {
		e.TargetName = old.Title
		e.Details = "Müvekkil: " + old.ClientName
	}
	cs.record(ctx, e)
	return nil
}

// RecordPayment adds amount to the paid fee of a case.
func (cs *Cases) RecordPayment(ctx context.Context, a audit.Actor, id string, paid float64) (types.Case, error) {
	if paid < 0 {
		return types.Case{}, types.ErrNegativeFee
	}
	if paid == 0 {
		return types.Case{}, fmt.Errorf("%w: payment amount is zero", types.ErrInvalidField)
	}
	c, ok := cs.Get(ctx, id)
	if !ok {
		return types.Case{}, notFound(types.Cases, id)
	}
	c.PaidFee += paid
	if err := types.ValidateFees(c.TotalFee, c.PaidFee); err != nil {
		return types.Case{}, err
	}
	c.RemainingFee = types.RemainingFee(c.TotalFee, c.PaidFee)
	c.PaymentDate = cs.today()
	c.UpdatedAt = cs.stamp()

	if err := check("recording payment", cs.store.Set(ctx, types.Cases, id, c)); err != nil {
		return types.Case{}, err
	}
	cs.record(ctx, audit.Entry{
		Actor:       a,
		Action:      audit.ActionUpdate,
		Target:      audit.EntityFinancial,
		TargetID:    id,
		TargetName:  c.Title,
		Description: audit.PaymentReceived(paid),
		Details:     "Tutar: " + audit.FormatAmount(paid) + " TL",
	})
	return c, nil
}

// List returns the cases matching q with lawyer names resolved.
func (cs *Cases) List(ctx context.Context, q CaseQuery) []CaseRow {
	names := map[string]string{}
	var out []CaseRow
	for _, c := range store.AllAs[types.Case](ctx, cs.store, types.Cases) {
		if q.LawyerID != "" && c.LawyerID != q.LawyerID {
			continue
		}
		if q.Status != "" && c.Status != q.Status {
			continue
		}
		name, ok := names[c.LawyerID]
		if !ok {
			name = cs.lawyerName(ctx, c.LawyerID)
			names[c.LawyerID] = name
		}
		out = append(out, CaseRow{Case: c, LawyerName: name})
	}

	switch q.Order {
	case ByTitle:
		sortTurkish(out, func(r CaseRow) string { return r.Title })
	default:
		sortNewest(out, func(r CaseRow) string { return r.CreatedAt })
	}
	return out
}

// Search returns the cases whose number, title or client name contains
// text, ignoring case with Turkish rules.
func (cs *Cases) Search(ctx context.Context, text string) []types.Case {
	needle := fold(strings.TrimSpace(text))
	var out []types.Case
	for _, c := range store.AllAs[types.Case](ctx, cs.store, types.Cases) {
		if needle == "" ||
			strings.Contains(fold(c.CaseNumber), needle) ||
			strings.Contains(fold(c.Title), needle) ||
			strings.Contains(fold(c.ClientName), needle) {
			out = append(out, c)
		}
	}
	sortTurkish(out, func(c types.Case) string { return c.Title })
	return out
}
