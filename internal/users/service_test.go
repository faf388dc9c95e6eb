package users

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/backend/memory"
	"github.com/starford/esurat/internal/models"
	"github.com/starford/esurat/internal/replica"
)

func setup(t *testing.T) (*Service, *replica.Replica, models.User) {
	t.Helper()
	return setupMode(t, false)
}

func setupMode(t *testing.T, allowPasswordless bool) (*Service, *replica.Replica, models.User) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	r := replica.New(memory.New(), logger)
	require.NoError(t, r.Start(context.Background()))
	admin, ok := r.Users().Find(func(u models.User) bool { return u.Username == models.AdminUsername })
	require.True(t, ok)
	return NewService(r, allowPasswordless), r, admin
}

func find(r *replica.Replica, username string) (models.User, bool) {
	return r.Users().Find(func(u models.User) bool { return u.Username == username })
}

func TestAddNormalizesUsername(t *testing.T) {
	svc, r, admin := setup(t)
	u, err := svc.Add(context.Background(), admin, models.User{Username: "  Budi ", Name: "Budi Santoso", Role: models.RoleIncoming, Password: "rahasia"})
	require.NoError(t, err)
	assert.Equal(t, "budi", u.Username)
	assert.Empty(t, u.Password)

	stored, ok := find(r, "budi")
	require.True(t, ok)
	assert.Equal(t, "rahasia", stored.Password)
}

func TestAddRejectsDuplicateUsername(t *testing.T) {
	svc, r, admin := setup(t)
	before := len(r.ListUsers())
	_, err := svc.Add(context.Background(), admin, models.User{Username: "MASUK", Name: "Lain", Role: models.RoleIncoming, Password: "x"})
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)
	assert.Equal(t, "Username sudah digunakan.", apperr.Message(err))
	assert.Len(t, r.ListUsers(), before)
}

func TestAddValidates(t *testing.T) {
	svc, _, admin := setup(t)
	_, err := svc.Add(context.Background(), admin, models.User{Username: "budi", Role: models.RoleIncoming, Password: "x"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Nama wajib diisi.", apperr.Message(err))

	_, err = svc.Add(context.Background(), admin, models.User{Username: "budi", Name: "Budi", Role: "TAMU", Password: "x"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Peran tidak dikenal.", apperr.Message(err))
}

func TestOnlyAdminManagesUsers(t *testing.T) {
	svc, r, _ := setup(t)
	staff, ok := find(r, "masuk")
	require.True(t, ok)

	_, err := svc.List(staff)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = svc.Add(context.Background(), staff, models.User{Username: "x", Name: "X", Role: models.RoleIncoming, Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), staff, staff.ID), apperr.ErrForbidden)
}

func TestUpdateKeepsPasswordWhenEmpty(t *testing.T) {
	svc, r, admin := setup(t)
	staff, _ := find(r, "keluar")

	staff.Name = "Staf Keluar Baru"
	staff.Password = ""
	_, err := svc.Update(context.Background(), admin, staff)
	require.NoError(t, err)

	got, _ := find(r, "keluar")
	assert.Equal(t, "Staf Keluar Baru", got.Name)
	assert.Equal(t, "123", got.Password)
}

func TestUpdateRejectsRenameOntoExisting(t *testing.T) {
	svc, r, admin := setup(t)
	staff, _ := find(r, "keluar")
	staff.Username = "masuk"
	_, err := svc.Update(context.Background(), admin, staff)
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestMainAdminProtected(t *testing.T) {
	svc, _, admin := setup(t)

	renamed := admin
	renamed.Username = "root"
	_, err := svc.Update(context.Background(), admin, renamed)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	assert.ErrorIs(t, svc.Delete(context.Background(), admin, admin.ID), apperr.ErrForbidden)
}

func TestDelete(t *testing.T) {
	svc, r, admin := setup(t)
	staff, _ := find(r, "masuk")
	require.NoError(t, svc.Delete(context.Background(), admin, staff.ID))
	_, ok := find(r, "masuk")
	assert.False(t, ok)
	assert.ErrorIs(t, svc.Delete(context.Background(), admin, staff.ID), apperr.ErrNotFound)
}

func TestAddPasswordRequiredOnManagedDrivers(t *testing.T) {
	svc, r, admin := setupMode(t, false)
	before := len(r.ListUsers())
	_, err := svc.Add(context.Background(), admin, models.User{Username: "staf", Name: "Staf", Role: models.RoleIncoming})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Password wajib diisi.", apperr.Message(err))
	assert.Len(t, r.ListUsers(), before)
}

func TestAddWithoutPasswordOnLocalDrivers(t *testing.T) {
	svc, r, admin := setupMode(t, true)
	u, err := svc.Add(context.Background(), admin, models.User{Username: "staf", Name: "Staf", Role: models.RoleIncoming})
	require.NoError(t, err)
	assert.Equal(t, "staf", u.Username)

	stored, ok := find(r, "staf")
	require.True(t, ok)
	assert.Empty(t, stored.Password)
}

func TestClearPassword(t *testing.T) {
	svc, r, admin := setupMode(t, true)
	staff, _ := find(r, "keluar")

	u, err := svc.ClearPassword(context.Background(), admin, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, staff.Name, u.Name)
	got, _ := find(r, "keluar")
	assert.Empty(t, got.Password)

	_, err = svc.ClearPassword(context.Background(), staff, staff.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = svc.ClearPassword(context.Background(), admin, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestClearPasswordRejectedOnManagedDrivers(t *testing.T) {
	svc, r, admin := setupMode(t, false)
	staff, _ := find(r, "keluar")

	_, err := svc.ClearPassword(context.Background(), admin, staff.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)
	got, _ := find(r, "keluar")
	assert.Equal(t, "123", got.Password)
}
