package auth

import (
	"net/mail"
	"strings"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// ValidationErrors is the typed error list returned when structured
// input fails validation. Handlers render it as a 400 with one entry
// per offending field.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
	maxPasswordLen = 128
)

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

func validUsername(s string) bool {
	if len(s) < minUsernameLen || len(s) > maxUsernameLen {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

func validPassword(s string) bool {
	return len(s) >= minPasswordLen && len(s) <= maxPasswordLen
}

// RegisterInput is the structured registration request. Email is
// normalized (trimmed, lowercased) before validation. An empty Role
// defaults to the lowest tier.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

// Validate checks every field and reports all failures at once rather
// than stopping at the first.
func (in RegisterInput) Validate() error {
	var errs ValidationErrors
	if !validEmail(in.Email) {
		errs = append(errs, FieldError{"email", "must be a valid email address"})
	}
	if !validUsername(in.Username) {
		errs = append(errs, FieldError{"username", "must be 3-50 alphanumeric characters"})
	}
	if !validPassword(in.Password) {
		errs = append(errs, FieldError{"password", "must be 8-128 characters"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateInput is a partial profile update; nil fields are untouched.
// Password, when present, is re-hashed by the service before it
// reaches the store.
type UpdateInput struct {
	Email    *string
	Username *string
	FullName *string
	Password *string
	IsActive *bool
}

func (in UpdateInput) Validate() error {
	var errs ValidationErrors
	if in.Email != nil && !validEmail(strings.ToLower(strings.TrimSpace(*in.Email))) {
		errs = append(errs, FieldError{"email", "must be a valid email address"})
	}
	if in.Username != nil && !validUsername(*in.Username) {
		errs = append(errs, FieldError{"username", "must be 3-50 alphanumeric characters"})
	}
	if in.Password != nil && !validPassword(*in.Password) {
		errs = append(errs, FieldError{"password", "must be 8-128 characters"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
