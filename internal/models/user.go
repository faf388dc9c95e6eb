// Package models defines the domain types for E-Surat.
package models

// Role is the access level of an account.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleIncoming Role = "STAF_MASUK"
	RoleOutgoing Role = "STAF_KELUAR"
)

// AdminUsername is the built-in administrator account. It can be neither
// renamed nor deleted.
const AdminUsername = "admin"

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleIncoming, RoleOutgoing:
		return true
	}
	return false
}

// Label returns the Indonesian display name of the role.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleIncoming:
		return "Staf Surat Masuk"
	case RoleOutgoing:
		return "Staf Surat Keluar"
	}
	return string(r)
}

// User is an account that can sign in.
// Password is stored and compared as plain text.
type User struct {
	ID       string `json:"id" bson:"_id"`
	Username string `json:"username" bson:"username"`
	Name     string `json:"name" bson:"name"`
	Role     Role   `json:"role" bson:"role"`
	Password string `json:"password,omitempty" bson:"password,omitempty"`
}

// IsAdmin reports whether the user has the ADMIN role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsMainAdmin reports whether u is the built-in administrator account.
func (u User) IsMainAdmin() bool {
	return u.Username == AdminUsername
}

// Public returns a copy of u without the password.
func (u User) Public() User {
	u.Password = ""
	return u
}

// CanManage reports whether u may create or edit letters of direction d.
func (u User) CanManage(d Direction) bool {
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleIncoming:
		return d == DirectionIncoming
	case RoleOutgoing:
		return d == DirectionOutgoing
	}
	return false
}
