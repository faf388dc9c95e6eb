package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/backend/local"
	"github.com/starford/esurat/internal/models"
)

type staticUsers []models.User

func (s staticUsers) ListUsers() []models.User { return s }

func openKV(t *testing.T) *local.KV {
	t.Helper()
	kv, err := local.OpenKV(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestAuthenticate(t *testing.T) {
	users := []models.User{
		{ID: "1", Username: "admin", Name: "Administrator", Role: models.RoleAdmin, Password: "123"},
		{ID: "2", Username: "masuk", Name: "Staf", Role: models.RoleIncoming},
	}

	u, err := Authenticate(users, "ADMIN", "123", false)
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)

	_, err = Authenticate(users, "admin", "wrong", false)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = Authenticate(users, "nobody", "", true)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = Authenticate(users, "masuk", "", false)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials, "passwordless login needs the passwordless variant")

	u, err = Authenticate(users, " Masuk ", "", true)
	require.NoError(t, err)
	assert.Equal(t, "2", u.ID)

	_, err = Authenticate(users, "admin", "", true)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials, "a stored password is always required")
}

func TestManagerLoginPersists(t *testing.T) {
	kv := openKV(t)
	users := staticUsers{{ID: "1", Username: "admin", Name: "Administrator", Role: models.RoleAdmin, Password: "123"}}
	ctx := context.Background()

	m := NewManager(users, NewStore(kv), false)
	u, err := m.Login(ctx, "ADMIN", "123")
	require.NoError(t, err)
	assert.Empty(t, u.Password)

	// A new process restores the session from the same store.
	m2 := NewManager(users, NewStore(kv), false)
	restored, err := m2.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "1", restored.ID)

	cur, ok := m2.Current()
	require.True(t, ok)
	assert.Equal(t, "Administrator", cur.Name)
}

func TestManagerFailedLoginStoresNothing(t *testing.T) {
	kv := openKV(t)
	users := staticUsers{{ID: "1", Username: "admin", Password: "123", Role: models.RoleAdmin}}
	ctx := context.Background()

	m := NewManager(users, NewStore(kv), false)
	_, err := m.Login(ctx, "admin", "wrong")
	require.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
	_, signedIn := m.Current()
	assert.False(t, signedIn)
}

func TestManagerLogout(t *testing.T) {
	kv := openKV(t)
	users := staticUsers{{ID: "1", Username: "admin", Password: "123", Role: models.RoleAdmin}}
	ctx := context.Background()

	m := NewManager(users, NewStore(kv), false)
	_, err := m.Login(ctx, "admin", "123")
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx))

	_, signedIn := m.Current()
	assert.False(t, signedIn)
	restored, err := NewManager(users, NewStore(kv), false).Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, restored)
}

func TestRestoreDropsDeletedUser(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	store := NewStore(kv)
	require.NoError(t, store.Save(ctx, models.User{ID: "gone", Username: "gone"}))

	restored, err := NewManager(staticUsers{}, store, false).Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, restored)

	_, ok, _ := kv.Get(ctx, StorageKey)
	assert.False(t, ok)
}
