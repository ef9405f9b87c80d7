package office

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/internal/backendtest"
	"github.com/mesh-intelligence/docket/internal/memdb"
	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/types"
)

func TestCreateCaseScenario(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	c, err := f.office.Cases.Create(ctx, lawyer, sampleCase())
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)

	recs := f.store.GetAll(ctx, types.Cases)
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, c.ID, rec.ID())
	assert.Equal(t, "2024/55", rec.String("case_number"))
	assert.Equal(t, "Foo", rec.String("title"))
	assert.Equal(t, "Ayşe Yılmaz", rec.String("client_name"))
	assert.Equal(t, "adv@firm.com", rec.String("lawyer_id"))
	assert.Equal(t, 1000.0, rec.Float("total_fee"))
	assert.Equal(t, 0.0, rec.Float("paid_fee"))
	assert.Equal(t, 1000.0, rec.Float("remaining_fee"))
	assert.Equal(t, "Open", rec.String("status"))

	logs := f.logs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, "CREATE", logs[0].ActionType)
	assert.Equal(t, "Dosya", logs[0].TargetType)
	assert.Equal(t, c.ID, logs[0].TargetID)
	assert.Equal(t, "Foo", logs[0].TargetName)
	assert.Equal(t, "Yeni dosya oluşturuldu", logs[0].ActionDescription)
	assert.Equal(t, "Av. Ayşe", logs[0].UserName)
	assert.Equal(t, "Müvekkil: Ayşe Yılmaz, Avukat: Bilinmeyen Avukat", logs[0].Details)
}

func TestCreateCaseComputesRemainingFee(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	in := sampleCase()
	in.PaidFee = 400
	in.RemainingFee = 12345
	in.Status = ""
	c, err := f.office.Cases.Create(ctx, lawyer, in)
	require.NoError(t, err)
	assert.Equal(t, 600.0, c.RemainingFee)
	assert.Equal(t, types.CaseOpen, c.Status)

	got, ok := f.office.Cases.Get(ctx, c.ID)
	require.True(t, ok)
	assert.Equal(t, 600.0, got.RemainingFee)
}

func TestCreateCaseValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	tests := []struct {
		name   string
		modify func(*types.Case)
		want   error
	}{
		{"missing title", func(c *types.Case) { c.Title = "" }, types.ErrMissingField},
		{"missing number", func(c *types.Case) { c.CaseNumber = "" }, types.ErrMissingField},
		{"missing lawyer", func(c *types.Case) { c.LawyerID = "" }, types.ErrMissingField},
		{"overpaid", func(c *types.Case) { c.PaidFee = 1500 }, types.ErrPaidExceedsTotal},
		{"negative", func(c *types.Case) { c.TotalFee = -1 }, types.ErrNegativeFee},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleCase()
			tt.modify(&c)
			_, err := f.office.Cases.Create(ctx, lawyer, c)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.store.GetAll(ctx, types.Cases))
	assert.Empty(t, f.logs(t))
}

func TestDeleteCaseLogsOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	keep, err := f.office.Cases.Create(ctx, lawyer, sampleCase())
	require.NoError(t, err)
	other := sampleCase()
	other.Title = "Bar"
	gone, err := f.office.Cases.Create(ctx, lawyer, other)
	require.NoError(t, err)
	before := len(f.logs(t))

	require.NoError(t, f.office.Cases.Delete(ctx, lawyer, gone.ID))

	_, ok := f.office.Cases.Get(ctx, gone.ID)
	assert.False(t, ok)
	_, ok = f.office.Cases.Get(ctx, keep.ID)
	assert.True(t, ok, "sibling case untouched")

	logs := f.logs(t)
	require.Len(t, logs, before+1)
	var deletes []types.ActivityLog
	for _, l := range logs {
		if l.ActionType == "DELETE" {
			deletes = append(deletes, l)
		}
	}
	require.Len(t, deletes, 1)
	assert.Equal(t, "Dosya", deletes[0].TargetType)
	assert.Equal(t, "Bar", deletes[0].TargetName)
	assert.Equal(t, gone.ID, deletes[0].TargetID)
}

func TestDeleteMissingCaseUsesPlaceholder(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	require.NoError(t, f.office.Cases.Delete(ctx, lawyer, "nope"))
	logs := f.logs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, types.UnknownCase, logs[0].TargetName)
}

func TestLogFailureDoesNotFailCase(t *testing.T) {
	ctx := context.Background()

	for _, mode := range []string{"error", "panic"} {
		t.Run(mode, func(t *testing.T) {
			mem, err := memdb.New(memdb.WithLogger(quiet))
			require.NoError(t, err)
			t.Cleanup(func() { mem.Close() })
			failing := backendtest.NewFailing(mem)
			if mode == "panic" {
				failing.PanicWrites(types.ActivityLogs)
			} else {
				failing.FailWrites(types.ActivityLogs)
			}
			f := setupOn(t, failing)

			c, err := f.office.Cases.Create(ctx, lawyer, sampleCase())
			require.NoError(t, err)
			_, ok := f.office.Cases.Get(ctx, c.ID)
			assert.True(t, ok)
			require.NoError(t, f.office.Cases.Delete(ctx, lawyer, c.ID))
			assert.Empty(t, f.logs(t))
		})
	}
}

func TestPrimaryFailureIsReported(t *testing.T) {
	ctx := context.Background()
	mem, err := memdb.New(memdb.WithLogger(quiet))
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })
	failing := backendtest.NewFailing(mem)
	failing.FailWrites(types.Cases)
	f := setupOn(t, failing)

	_, err = f.office.Cases.Create(ctx, lawyer, sampleCase())
	assert.ErrorIs(t, err, backendtest.ErrInjected)
	assert.Empty(t, f.logs(t), "no log for a failed write")
}

func TestUpdateCase(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c, err := f.office.Cases.Create(ctx, lawyer, sampleCase())
	require.NoError(t, err)

	c.Title = "Foo v. Bar"
	c.TotalFee = 2000
	c.PaidFee = 500
	up, err := f.office.Cases.Update(ctx, lawyer, c)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, up.RemainingFee)
	assert.Equal(t, c.CreatedAt, up.CreatedAt)
	assert.NotEqual(t, c.UpdatedAt, up.UpdatedAt)

	logs := f.logs(t)
	require.Len(t, logs, 3)
	assert.Equal(t, "Dosya güncellendi", logs[1].ActionDescription)
	assert.Equal(t, "Finansal", logs[2].TargetType)
	assert.Equal(t, "Ücret güncellendi (2000 TL)", logs[2].ActionDescription)

	c.ID = "missing"
	_, err = f.office.Cases.Update(ctx, lawyer, c)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRecordPayment(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c, err := f.office.Cases.Create(ctx, lawyer, sampleCase())
	require.NoError(t, err)

	got, err := f.office.Cases.RecordPayment(ctx, lawyer, c.ID, 250)
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.PaidFee)
	assert.Equal(t, 750.0, got.RemainingFee)
	assert.Equal(t, "2024-03-05", got.PaymentDate)

	_, err = f.office.Cases.RecordPayment(ctx, lawyer, c.ID, 800)
	assert.ErrorIs(t, err, types.ErrPaidExceedsTotal)
	_, err = f.office.Cases.RecordPayment(ctx, lawyer, c.ID, -5)
	assert.ErrorIs(t, err, types.ErrNegativeFee)
	_, err = f.office.Cases.RecordPayment(ctx, lawyer, "nope", 5)
	assert.ErrorIs(t, err, types.ErrNotFound)

	stored, _ := f.office.Cases.Get(ctx, c.ID)
	assert.Equal(t, 250.0, stored.PaidFee)

	logs := f.logs(t)
	require.Len(t, logs, 2)
	assert.Equal(t, "Finansal", logs[1].TargetType)
	assert.Equal(t, "Ödeme alındı (250 TL)", logs[1].ActionDescription)
}

func TestListCases(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.office.Lawyers.Register(ctx, Registration{Name: "Av. Ayşe", Email: "adv@firm.com", Password: "pw"})
	require.NoError(t, err)

	for _, title := range []string{"Çek", "Dava", "Cam"} {
		c := sampleCase()
		c.Title = title
		_, err := f.office.Cases.Create(ctx, lawyer, c)
		require.NoError(t, err)
	}
	closed := sampleCase()
	closed.Title = "Ödeme"
	closed.LawyerID = "other@firm.com"
	closed.Status = types.CaseClosed
	_, err = f.office.Cases.Create(ctx, lawyer, closed)
	require.NoError(t, err)

	titles := func(rows []CaseRow) []string {
		var out []string
		for _, r := range rows {
			out = append(out, r.Title)
		}
		return out
	}

	byTitle := f.office.Cases.List(ctx, CaseQuery{Order: ByTitle})
	assert.Equal(t, []string{"Cam", "Çek", "Dava", "Ödeme"}, titles(byTitle))

	newest := f.office.Cases.List(ctx, CaseQuery{})
	assert.Equal(t, []string{"Ödeme", "Cam", "Dava", "Çek"}, titles(newest))
	assert.Equal(t, types.UnknownLawyer, newest[0].LawyerName)
	assert.Equal(t, "Av. Ayşe", newest[1].LawyerName)

	mine := f.office.Cases.List(ctx, CaseQuery{LawyerID: "adv@firm.com", Status: "Open"})
	assert.Len(t, mine, 3)
}

func TestSearchCasesFoldsTurkish(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	for _, title := range []string{"Işık Davası", "İstanbul Kira", "Tapu İptali"} {
		c := sampleCase()
		c.Title = title
		_, err := f.office.Cases.Create(ctx, audit.Actor{}, c)
		require.NoError(t, err)
	}

	got := f.office.Cases.Search(ctx, "ışık")
	require.Len(t, got, 1)
	assert.Equal(t, "Işık Davası", got[0].Title)

	got = f.office.Cases.Search(ctx, "istanbul")
	require.Len(t, got, 1)
	assert.Equal(t, "İstanbul Kira", got[0].Title)

	assert.Len(t, f.office.Cases.Search(ctx, "2024/55"), 3)
	assert.Len(t, f.office.Cases.Search(ctx, ""), 3)
	assert.Empty(t, f.office.Cases.Search(ctx, "yok"))
}
