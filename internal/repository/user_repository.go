package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/teamnote/auth-service/internal/model"
)

const userColumns = "id,email,username,full_name,password_hash,role,is_active,created_at,updated_at"

// UserRepo implements the user store on MySQL.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns the stored row. The caller supplies
// an already-hashed password; plaintext never reaches this layer.
// Duplicate email/username collisions surface as ErrEmailExists or
// ErrUsernameExists regardless of whether the caller pre-checked.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, full_name, password_hash, role, is_active) VALUES (?,?,?,?,?,?)",
		strings.ToLower(strings.TrimSpace(u.Email)), u.Username, u.FullName, u.PasswordHash, string(u.Role), u.IsActive)
	if err != nil {
		return model.User{}, dupErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getWhere(ctx, "email=?", email)
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getWhere(ctx, "username=?", username)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getWhere(ctx, "id=?", id)
}

func (r *UserRepo) getWhere(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg).
		Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	return u, nil
}

// Update applies a partial update to a user row and returns the fresh
// row. Nil fields in upd are skipped; an update with nothing set is a
// plain re-read. Email/username collisions map to the duplicate
// sentinels just like Create.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd model.UserUpdate) (model.User, error) {
	var sets []string
	var args []any
	if upd.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*upd.Email)))
	}
	if upd.Username != nil {
		sets = append(sets, "username=?")
		args = append(args, *upd.Username)
	}
	if upd.FullName != nil {
		sets = append(sets, "full_name=?")
		args = append(args, *upd.FullName)
	}
	if upd.PasswordHash != nil {
		sets = append(sets, "password_hash=?")
		args = append(args, *upd.PasswordHash)
	}
	if upd.Role != nil {
		sets = append(sets, "role=?")
		args = append(args, string(*upd.Role))
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active=?")
		args = append(args, *upd.IsActive)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.DB.ExecContext(ctx,
			fmt.Sprintf("UPDATE users SET %s WHERE id=?", strings.Join(sets, ",")), args...); err != nil {
			return model.User{}, dupErr(err)
		}
	}
	// The read doubles as the existence check: a missing id comes back
	// as ErrNotFound whether or not the UPDATE matched anything.
	return r.GetByID(ctx, id)
}

// dupErr classifies a MySQL duplicate-key violation (error 1062) by the
// unique index named in the message, falling back to the raw error for
// anything else.
func dupErr(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "username") {
		return ErrUsernameExists
	}
	return ErrEmailExists
}
