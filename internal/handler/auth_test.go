package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamnote/auth-service/internal/auth"
	"github.com/teamnote/auth-service/internal/config"
	"github.com/teamnote/auth-service/internal/handler"
	"github.com/teamnote/auth-service/internal/middleware"
	"github.com/teamnote/auth-service/internal/model"
	"github.com/teamnote/auth-service/internal/repository"
	"github.com/teamnote/auth-service/internal/router"
)

// memStore is an in-memory user store with repository-equivalent
// uniqueness semantics, letting the full HTTP stack run without MySQL.
type memStore struct {
	mu     sync.Mutex
	users  map[uint64]model.User
	nextID uint64
}

func newMemStore() *memStore { return &memStore{users: make(map[uint64]model.User)} }

func (m *memStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memStore) Create(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return model.User{}, repository.ErrEmailExists
		}
		if existing.Username == u.Username {
			return model.User{}, repository.ErrUsernameExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) Update(_ context.Context, id uint64, upd model.UserUpdate) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return u, nil
}

// newTestServer wires the real service, middleware and routes over the
// in-memory store. Event publishing is off so tests never touch a
// broker; the rate limiter is disabled so they never touch Redis.
func newTestServer(t *testing.T) (*echo.Echo, *memStore, *auth.Service) {
	t.Helper()
	store := newMemStore()
	hasher := auth.NewPasswordHasher(bcrypt.DefaultCost)
	codec := auth.NewTokenCodec("test-secret", "team-note-auth", 30*time.Minute, 7*24*time.Hour)
	svc := auth.NewService(store, hasher, codec)

	h := handler.NewAuthHandler(svc)
	h.PublishEvents = false

	e := echo.New()
	limiter := middleware.NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	router.Register(e, h, svc, limiter)
	return e, store, svc
}

func doJSON(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doLogin(e *echo.Echo, email, password string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

const registerAlice = `{"email":"alice@x.com","username":"alice123","full_name":"Alice Example","password":"secret123"}`

func TestRegisterLoginMeFlow(t *testing.T) {
	e, store, _ := newTestServer(t)

	// Register returns 201 with the public representation, never the
	// hash, and the stored hash is not the plaintext.
	rec := doJSON(e, http.MethodPost, "/register/user", registerAlice, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created handler.UserResp
	decode(t, rec, &created)
	assert.Equal(t, "alice@x.com", created.Email)
	assert.Equal(t, "alice123", created.Username)
	assert.Equal(t, model.RoleUser, created.Role)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "secret123")

	stored, err := store.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)

	// Login with the OAuth2-style form.
	rec = doLogin(e, "alice@x.com", "secret123")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tokens handler.TokenResp
	decode(t, rec, &tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "bearer", tokens.TokenType)
	assert.Equal(t, int64(1800), tokens.ExpiresIn)

	// The access token resolves back to alice.
	rec = doJSON(e, http.MethodGet, "/me", "", tokens.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me handler.UserResp
	decode(t, rec, &me)
	assert.Equal(t, created.ID, me.ID)

	// Default tier is user, so the admin gate refuses.
	rec = doJSON(e, http.MethodGet, "/admin-only", "", tokens.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Refresh yields a fresh access token that still resolves to alice.
	rec = doJSON(e, http.MethodPost, "/refresh", `{"refresh_token":"`+tokens.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var refreshed handler.TokenResp
	decode(t, rec, &refreshed)
	require.NotEmpty(t, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken, "refresh is not rotated")

	rec = doJSON(e, http.MethodGet, "/me", "", refreshed.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &me)
	assert.Equal(t, created.ID, me.ID)
}

func TestRegisterDuplicateIs409(t *testing.T) {
	e, store, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/register/user", registerAlice, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPost, "/register/user", registerAlice, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Same username, different email is also a conflict.
	rec = doJSON(e, http.MethodPost, "/register/user",
		`{"email":"bob@x.com","username":"alice123","password":"secret123"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Len(t, store.users, 1, "no extra rows created")
}

func TestRegisterValidationIs400WithFieldList(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/register/user",
		`{"email":"nope","username":"!","password":"x"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Fields []auth.FieldError `json:"fields"`
	}
	decode(t, rec, &body)
	assert.Len(t, body.Fields, 3)
}

func TestLoginFailures(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/register/user", registerAlice, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	// Wrong password and unknown email are the same 401 with the
	// bearer challenge.
	for _, creds := range [][2]string{
		{"alice@x.com", "wrong-password"},
		{"nobody@x.com", "secret123"},
	} {
		rec = doLogin(e, creds[0], creds[1])
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
	}

	rec = doLogin(e, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenTypeEnforcement(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/register/user", registerAlice, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doLogin(e, "alice@x.com", "secret123")
	require.Equal(t, http.StatusOK, rec.Code)
	var tokens handler.TokenResp
	decode(t, rec, &tokens)

	// A refresh token on a protected endpoint is a plain 401.
	rec = doJSON(e, http.MethodGet, "/me", "", tokens.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// An access token on the refresh endpoint is a plain 401.
	rec = doJSON(e, http.MethodPost, "/refresh", `{"refresh_token":"`+tokens.AccessToken+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage and missing tokens too.
	rec = doJSON(e, http.MethodGet, "/me", "", "not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSON(e, http.MethodGet, "/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGates(t *testing.T) {
	e, store, svc := newTestServer(t)

	seed := func(email, username string, role model.Role) string {
		t.Helper()
		hash, err := auth.NewPasswordHasher(bcrypt.DefaultCost).Hash("secret123")
		require.NoError(t, err)
		_, err = store.Create(context.Background(), model.User{
			Email: email, Username: username, PasswordHash: hash, Role: role, IsActive: true,
		})
		require.NoError(t, err)
		pair, _, err := svc.Login(context.Background(), email, "secret123")
		require.NoError(t, err)
		return pair.AccessToken
	}

	adminTok := seed("admin@x.com", "admin1", model.RoleAdmin)
	superTok := seed("root@x.com", "root1", model.RoleSuperuser)

	rec := doJSON(e, http.MethodGet, "/admin-only", "", adminTok)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(e, http.MethodGet, "/superuser-only", "", adminTok)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Superuser clears both gates.
	rec = doJSON(e, http.MethodGet, "/admin-only", "", superTok)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(e, http.MethodGet, "/superuser-only", "", superTok)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInactiveUserIs400(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/register/user", registerAlice, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doLogin(e, "alice@x.com", "secret123")
	require.Equal(t, http.StatusOK, rec.Code)
	var tokens handler.TokenResp
	decode(t, rec, &tokens)

	// Self-deactivate, then every protected call is a 400 and refresh
	// is a 401.
	rec = doJSON(e, http.MethodPatch, "/me", `{"is_active":false}`, tokens.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodGet, "/me", "", tokens.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/refresh", `{"refresh_token":"`+tokens.RefreshToken+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	e, store, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/register/user", registerAlice, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doLogin(e, "alice@x.com", "secret123")
	require.Equal(t, http.StatusOK, rec.Code)
	var tokens handler.TokenResp
	decode(t, rec, &tokens)

	// Change name and password in one call.
	rec = doJSON(e, http.MethodPatch, "/me",
		`{"full_name":"Alice B. Example","password":"evenmoresecret"}`, tokens.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated handler.UserResp
	decode(t, rec, &updated)
	assert.Equal(t, "Alice B. Example", updated.FullName)

	stored, err := store.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "evenmoresecret", stored.PasswordHash)

	// Old password no longer logs in, the new one does.
	rec = doLogin(e, "alice@x.com", "secret123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doLogin(e, "alice@x.com", "evenmoresecret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
