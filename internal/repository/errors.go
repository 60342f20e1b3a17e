// Package repository persists and retrieves user records. The sentinel
// errors defined here let the service layer distinguish failure
// scenarios without ever seeing driver-level errors: ErrNotFound wraps
// sql.ErrNoRows, and the two duplicate errors wrap MySQL's duplicate-key
// violation (error 1062) broken out by which unique index fired.
package repository

import "errors"

// ErrNotFound is returned when no user row matches the lookup.
var ErrNotFound = errors.New("user not found")

// ErrEmailExists is returned when an insert or update collides with
// the unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an insert or update collides with
// the unique index on users.username.
var ErrUsernameExists = errors.New("username already exists")
