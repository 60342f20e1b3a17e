package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teamnote/auth-service/internal/model"
	"github.com/teamnote/auth-service/internal/repository"
)

// UserStore is the persistence collaborator the service depends on.
// *repository.UserRepo satisfies it; tests substitute fakes.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	Update(ctx context.Context, id uint64, upd model.UserUpdate) (model.User, error)
}

// Service orchestrates authentication: credential verification, token
// issuance and validation, and role gating. All collaborators are
// injected at construction; the service holds no mutable state and is
// safe for concurrent use.
type Service struct {
	store  UserStore
	hasher *PasswordHasher
	codec  *TokenCodec
}

func NewService(store UserStore, hasher *PasswordHasher, codec *TokenCodec) *Service {
	return &Service{store: store, hasher: hasher, codec: codec}
}

// AccessTTL reports the configured access-token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.codec.AccessTTL() }

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until the access token expires
}

// Authenticate verifies an email/password pair. A missing user and a
// wrong password return the same ErrInvalidCredentials; the caller
// cannot tell which happened, so login cannot enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and, on success, issues an access/refresh token
// pair bound to the user's id.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, model.User, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return TokenPair{}, model.User{}, err
	}
	access, err := s.codec.IssueAccess(u.ID)
	if err != nil {
		return TokenPair{}, model.User{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.IssueRefresh(u.ID)
	if err != nil {
		return TokenPair{}, model.User{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
	}, u, nil
}

// Refresh exchanges a valid refresh token for a new access token. An
// access token presented here fails with ErrInvalidToken; a subject
// that no longer resolves to an active user fails with ErrInactiveUser.
// The presented refresh token is not rotated or invalidated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.Parse(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.TokenType != TokenTypeRefresh {
		return "", ErrInvalidToken
	}
	id, err := claims.UserID()
	if err != nil {
		return "", ErrInvalidToken
	}
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInactiveUser
		}
		return "", fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return "", ErrInactiveUser
	}
	return s.codec.IssueAccess(u.ID)
}

// CurrentUser resolves an access token to its user. A refresh token,
// any verification failure, or a subject with no backing user all
// return the same ErrInvalidToken.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (model.User, error) {
	claims, err := s.codec.Parse(accessToken)
	if err != nil {
		return model.User{}, ErrInvalidToken
	}
	if claims.TokenType != TokenTypeAccess {
		return model.User{}, ErrInvalidToken
	}
	id, err := claims.UserID()
	if err != nil {
		return model.User{}, ErrInvalidToken
	}
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Token valid but user gone reads the same as a bad token.
			return model.User{}, ErrInvalidToken
		}
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// RequireActive passes the user through when the account is active.
func (s *Service) RequireActive(u model.User) (model.User, error) {
	if !u.IsActive {
		return model.User{}, ErrInactiveUser
	}
	return u, nil
}

// RequireRole gates on the tier ordering user < admin < superuser. An
// admin gate admits admins and superusers; a superuser gate admits
// only superusers.
func (s *Service) RequireRole(u model.User, min model.Role) (model.User, error) {
	if !u.Role.AtLeast(min) {
		return model.User{}, ErrInsufficientRole
	}
	return u, nil
}

// Register validates input, hashes the password and creates the user.
// The duplicate pre-checks are a fast path for better error messages;
// the store's unique constraints remain the source of truth, so a race
// between two concurrent registrations still resolves to exactly one
// created row and one ErrEmailTaken/ErrUsernameTaken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if err := in.Validate(); err != nil {
		return model.User{}, err
	}
	if _, err := s.store.GetByEmail(ctx, in.Email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, fmt.Errorf("check email: %w", err)
	}
	if _, err := s.store.GetByUsername(ctx, in.Username); err == nil {
		return model.User{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, fmt.Errorf("check username: %w", err)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.store.Create(ctx, model.User{
		Email:        in.Email,
		Username:     in.Username,
		FullName:     in.FullName,
		PasswordHash: hash,
		Role:         model.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		return model.User{}, mapStoreErr(err)
	}
	return u, nil
}

// UpdateProfile applies a partial update to the given user. A password
// change is re-hashed before it is persisted; plaintext is never
// stored.
func (s *Service) UpdateProfile(ctx context.Context, id uint64, in UpdateInput) (model.User, error) {
	if err := in.Validate(); err != nil {
		return model.User{}, err
	}
	upd := model.UserUpdate{
		FullName: in.FullName,
		IsActive: in.IsActive,
	}
	if in.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*in.Email))
		upd.Email = &e
	}
	if in.Username != nil {
		un := strings.TrimSpace(*in.Username)
		upd.Username = &un
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return model.User{}, fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = &hash
	}
	u, err := s.store.Update(ctx, id, upd)
	if err != nil {
		return model.User{}, mapStoreErr(err)
	}
	return u, nil
}

// mapStoreErr lifts repository duplicate sentinels into the auth
// taxonomy and wraps anything unexpected.
func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrUsernameExists):
		return ErrUsernameTaken
	default:
		return fmt.Errorf("user store: %w", err)
	}
}
