package backend

import "github.com/starford/esurat/internal/models"

// SeedPassword is the initial password of seeded accounts on managed backends.
const SeedPassword = "123"

// DefaultUsers returns the three bootstrap accounts, one per role.
// An empty password produces the passwordless variant used by local storage.
func DefaultUsers(password string) []models.User {
	return []models.User{
		{Username: models.AdminUsername, Name: "Administrator", Role: models.RoleAdmin, Password: password},
		{Username: "masuk", Name: "Staf Surat Masuk", Role: models.RoleIncoming, Password: password},
		{Username: "keluar", Name: "Staf Surat Keluar", Role: models.RoleOutgoing, Password: password},
	}
}

// AdminOnly returns just the administrator account.
func AdminOnly(password string) []models.User {
	return DefaultUsers(password)[:1]
}
