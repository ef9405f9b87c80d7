package office

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/types"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	lw, err := f.office.Lawyers.Register(ctx, Registration{
		Name: "Av. Ayşe", Email: "adv@firm.com", Password: "s3cret", Color: "#4caf50",
	})
	require.NoError(t, err)
	assert.Equal(t, "adv@firm.com", lw.ID)
	assert.Empty(t, lw.Password)

	rec := f.store.Get(ctx, types.Lawyers, "adv@firm.com")
	require.NotNil(t, rec)
	assert.True(t, strings.HasPrefix(rec.String("password"), "$2"), "password is stored hashed")

	got, err := f.office.Lawyers.Login(ctx, "adv@firm.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "Av. Ayşe", got.Name)
	assert.Empty(t, got.Password)

	_, err = f.office.Lawyers.Login(ctx, "adv@firm.com", "wrong")
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)
	_, err = f.office.Lawyers.Login(ctx, "nobody@firm.com", "s3cret")
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)

	logs := f.logs(t)
	require.Len(t, logs, 1, "only the successful login is logged")
	assert.Equal(t, "VIEW", logs[0].ActionType)
	assert.Equal(t, "Sistem", logs[0].TargetType)
	assert.Equal(t, "Giriş", logs[0].TargetName)
	assert.Equal(t, "adv@firm.com", logs[0].UserID)
	assert.Equal(t, "Kullanıcı: Av. Ayşe", logs[0].Details)

	f.office.Lawyers.Logout(ctx, audit.Actor{ID: "adv@firm.com", Name: "Av. Ayşe"})
	logs = f.logs(t)
	require.Len(t, logs, 2)
	assert.Equal(t, "Çıkış", logs[1].TargetName)
}

func TestLoginAcceptsLegacyPlaintext(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	require.True(t, f.store.Set(ctx, types.Lawyers, "old@firm.com", types.Lawyer{
		Name: "Av. Mehmet", Email: "old@firm.com", Password: "123456",
	}).Success)

	_, err := f.office.Lawyers.Login(ctx, "old@firm.com", "123456")
	assert.NoError(t, err)
	_, err = f.office.Lawyers.Login(ctx, "old@firm.com", "12345")
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.office.Lawyers.Register(ctx, Registration{Name: "A", Email: "a@firm.com", Password: "x", Color: "#ff0000"})
	require.NoError(t, err)

	_, err = f.office.Lawyers.Register(ctx, Registration{Name: "B", Email: "a@firm.com", Password: "y"})
	assert.ErrorIs(t, err, types.ErrDuplicateKey)
	_, err = f.office.Lawyers.Register(ctx, Registration{Name: "B", Email: "b@firm.com", Password: "y", Color: "#FF0000"})
	assert.ErrorIs(t, err, types.ErrDuplicateKey)
	_, err = f.office.Lawyers.Register(ctx, Registration{Name: "B", Email: "b-at-firm", Password: "y"})
	assert.ErrorIs(t, err, types.ErrInvalidField)
	_, err = f.office.Lawyers.Register(ctx, Registration{Email: "b@firm.com", Password: "y"})
	assert.ErrorIs(t, err, types.ErrMissingField)

	assert.Len(t, f.office.Lawyers.List(ctx), 1)
}

func TestListAndName(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	for _, r := range []Registration{
		{Name: "Zeynep", Email: "z@firm.com", Password: "x"},
		{Name: "Şule", Email: "s@firm.com", Password: "x"},
		{Name: "Selim", Email: "se@firm.com", Password: "x"},
	} {
		_, err := f.office.Lawyers.Register(ctx, r)
		require.NoError(t, err)
	}

	list := f.office.Lawyers.List(ctx)
	require.Len(t, list, 3)
	var names []string
	for _, l := range list {
		names = append(names, l.Name)
		assert.Empty(t, l.Password)
	}
	assert.Equal(t, []string{"Selim", "Şule", "Zeynep"}, names)

	assert.Equal(t, "Şule", f.office.Lawyers.Name(ctx, "s@firm.com"))
	assert.Equal(t, types.UnknownLawyer, f.office.Lawyers.Name(ctx, "gone@firm.com"))
	assert.Equal(t, audit.Actor{ID: "z@firm.com", Name: "Zeynep"}, f.office.Lawyers.Actor(ctx, "z@firm.com"))
	assert.Equal(t, audit.Actor{}, f.office.Lawyers.Actor(ctx, ""))
}
