package model

import "time"

// Role is the ordered privilege tier of a user. Roles are stored as
// strings in the `users` table but compared through Level so that
// "superuser" implies everything "admin" can do, and "admin" implies
// everything "user" can do. Never compare Role values with < or >;
// string ordering is meaningless here.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleSuperuser Role = "superuser"
)

// Level maps a role to its position in the tier ordering. Unknown
// roles map to 0 and therefore never satisfy any gate.
func (r Role) Level() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperuser:
		return 3
	}
	return 0
}

// Valid reports whether r is one of the known tiers.
func (r Role) Valid() bool { return r.Level() > 0 }

// AtLeast reports whether r grants the access of min or higher.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Level() >= min.Level()
}

// User represents an application user record as stored in the
// `users` table. The password hash never leaves the repository and
// service layers; handlers define separate response types without it.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, normalized (lowercased) email address.
//  Username     – unique alphanumeric handle.
//  FullName     – optional display name.
//  PasswordHash – bcrypt hashed password.
//  Role         – privilege tier (user/admin/superuser).
//  IsActive     – whether the account is active; deactivation is the
//                 designed alternative to physical deletion.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Username     string    // users.username
	FullName     string    // users.full_name
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// UserUpdate carries a partial update for a user row. Nil fields are
// left untouched. PasswordHash, when set, must already be hashed;
// plaintext never reaches the repository.
type UserUpdate struct {
	Email        *string
	Username     *string
	FullName     *string
	PasswordHash *string
	Role         *Role
	IsActive     *bool
}
