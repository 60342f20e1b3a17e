package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types. A refresh token is never accepted where an access token
// is required and vice versa; the service checks the claim on every
// verification path.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the payload carried by every token this system signs:
// the registered sub/exp/iat/iss/jti claims plus a type discriminator.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim parsed back into a user id.
func (c *Claims) UserID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// TokenCodec creates and verifies HS256-signed tokens. The secret and
// issuer are fixed at construction; the signing method is pinned so a
// token presenting a different algorithm is rejected no matter what its
// header says. The codec is pure and safe for concurrent use.
type TokenCodec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenCodec(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL reports the configured access-token lifetime; the login
// response exposes it as expires_in.
func (tc *TokenCodec) AccessTTL() time.Duration { return tc.accessTTL }

// IssueAccess signs a short-lived access token for the given user.
func (tc *TokenCodec) IssueAccess(userID uint64) (string, error) {
	return tc.issue(userID, TokenTypeAccess, tc.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the given user.
func (tc *TokenCodec) IssueRefresh(userID uint64) (string, error) {
	return tc.issue(userID, TokenTypeRefresh, tc.refreshTTL)
}

func (tc *TokenCodec) issue(userID uint64, typ string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tc.issuer,
			ID:        uuid.NewString(), // jti
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.secret)
}

// Parse verifies a token string and returns its claims. Signature,
// algorithm, expiry, issuer and the presence of a known type claim are
// all checked; any failure collapses into ErrInvalidToken and no claim
// content is returned, so a caller cannot learn why a bad token was
// bad.
func (tc *TokenCodec) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Type assert the signing method to HMAC; reject others.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tc.secret, nil
	}, jwt.WithIssuer(tc.issuer), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != TokenTypeAccess && claims.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
