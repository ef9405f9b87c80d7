package office

import (
	"context"
	"strings"
	"time"

	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Expenses manages office expenses.
type Expenses struct{ *service }

// Summary is the firm's financial position.
type Summary struct {
	TotalFees       float64 `json:"total_fees"`
	PaidFees        float64 `json:"paid_fees"`
	RemainingFees   float64 `json:"remaining_fees"`
	TotalExpenses   float64 `json:"total_expenses"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
	Net             float64 `json:"net"`
}

// Create stores a new expense. The date defaults to today and the
// category to "Diğer".
func (ex *Expenses) Create(ctx context.Context, a audit.Actor, e types.Expense) (types.Expense, error) {
	if strings.TrimSpace(e.Title) == "" {
		return types.Expense{}, missing("title")
	}
	if e.Amount == 0 {
		return types.Expense{}, missing("amount")
	}
	if e.Amount < 0 {
		return types.Expense{}, types.ErrNegativeFee
	}
	e.ID = ""
	if e.Category == "" {
		e.Category = types.ExpenseCategories[len(types.ExpenseCategories)-1]
	}
	if e.Date == "" {
		e.Date = ex.today()
	}
	e.CreatedAt = ex.stamp()

	res := ex.store.Push(ctx, types.Expenses, e)
	if err := check("creating expense", res); err != nil {
		return types.Expense{}, err
	}
	e.ID = res.Key
	ex.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionCreate,
		Target:     audit.EntityFinancial,
		TargetID:   e.ID,
		TargetName: e.Title,
		Details:    "Tutar: " + audit.FormatAmount(e.Amount) + " TL",
	})
	return e, nil
}

// Delete removes the expense.
func (ex *Expenses) Delete(ctx context.Context, a audit.Actor, id string) error {
	if id == "" {
		return missing("id")
	}
	old, ok := store.GetAs[types.Expense](ctx, ex.store, types.Expenses, id)
	if err := check("deleting expense", ex.store.Remove(ctx, types.Expenses+"/"+id)); err != nil {
		return err
	}
	e := audit.Entry{
		Actor:      a,
		Action:     audit.ActionDelete,
		Target:     audit.EntityFinancial,
		TargetID:   id,
		TargetName: "Finansal İşlem",
	}
	if ok {
		e.TargetName = old.Title
		e.Details = "Tutar: " + audit.FormatAmount(old.Amount) + " TL"
	}
	ex.record(ctx, e)
	return nil
}

// List returns expenses newest date first.
func (ex *Expenses) List(ctx context.Context) []types.Expense {
	out := store.AllAs[types.Expense](ctx, ex.store, types.Expenses)
	sortNewest(out, func(e types.Expense) string { return e.Date })
	return out
}

// Summary totals case fees and expenses. MonthlyExpenses covers the
// calendar month of month.
func (ex *Expenses) Summary(ctx context.Context, month time.Time) Summary {
	var s Summary
	for _, c := range store.AllAs[types.Case](ctx, ex.store, types.Cases) {
		s.TotalFees += c.TotalFee
		s.PaidFees += c.PaidFee
		s.RemainingFees += types.RemainingFee(c.TotalFee, c.PaidFee)
	}
	prefix := month.Format("2006-01")
	for _, e := range store.AllAs[types.Expense](ctx, ex.store, types.Expenses) {
		s.TotalExpenses += e.Amount
		if strings.HasPrefix(e.Date, prefix) {
			s.MonthlyExpenses += e.Amount
		}
	}
	s.Net = s.PaidFees - s.TotalExpenses
	return s
}
