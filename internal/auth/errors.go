// Package auth implements the token-based authentication core:
// password hashing, signed token issuance and verification, and the
// service orchestrating login, refresh, current-user resolution and
// role gating. Handlers translate these sentinel errors into HTTP
// status codes; nothing below this package's boundary leaks driver or
// JWT library internals.
package auth

import "errors"

// ErrInvalidCredentials covers both "no such user" and "wrong
// password". The two cases are deliberately indistinguishable so the
// login endpoint cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken covers every token verification failure: bad
// signature, wrong algorithm, expired, malformed, wrong issuer, wrong
// token type, or a subject that no longer resolves to a user. Callers
// get no hint which one it was.
var ErrInvalidToken = errors.New("invalid token")

// ErrInactiveUser is returned for a valid identity whose account has
// been deactivated.
var ErrInactiveUser = errors.New("inactive user")

// ErrInsufficientRole is returned when a valid, active identity sits
// below the tier an endpoint requires.
var ErrInsufficientRole = errors.New("not enough permissions")

// ErrEmailTaken and ErrUsernameTaken signal a registration or profile
// update colliding with an existing identity.
var (
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)
