package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	redis "github.com/redis/go-redis/v9"
)

type contextKey string

const UserIDKey = contextKey("userID")
const UserAdminKey = contextKey("userAdmin")
const ClaimsKey = contextKey("claims")
const RequestIDKey = contextKey("requestID")

const blacklistPrefix = "jwt:blacklist:"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims is the validated payload of an access token.
type Claims struct {
	UserID    string
	IsAdmin   bool
	ID        string
	ExpiresAt time.Time
}

// TokenManager issues and validates HS256 access tokens. Redis is optional and
// backs the jti revocation list.
type TokenManager struct {
	secret   []byte
	audience string
	issuer   string
	ttl      time.Duration
	redis    *redis.Client
	now      func() time.Time
}

func NewTokenManager(secret, audience, issuer string, ttl time.Duration, rc *redis.Client) *TokenManager {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &TokenManager{
		secret:   []byte(secret),
		audience: audience,
		issuer:   issuer,
		ttl:      ttl,
		redis:    rc,
		now:      time.Now,
	}
}

func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs an access token for the given user.
func (m *TokenManager) Issue(userID string, isAdmin bool) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("JWT secret is not set")
	}
	now := m.now()
	jti, err := generateJTI(16)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"id":      userID,
		"isAdmin": isAdmin,
		"exp":     now.Add(m.ttl).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
		"jti":     jti,
	}
	if m.audience != "" {
		claims["aud"] = m.audience
	}
	if m.issuer != "" {
		claims["iss"] = m.issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses tokenStr, checks the registered claims and the revocation
// list, and returns the user claims.
func (m *TokenManager) Validate(ctx context.Context, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Require exact HS256 algorithm to avoid algorithm confusion.
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("exp claim missing")
	}

	if m.audience != "" {
		aud, err := claims.GetAudience()
		if err != nil {
			return nil, errors.New("invalid audience claim format")
		}
		found := false
		for _, a := range aud {
			if a == m.audience {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.New("invalid audience")
		}
	}

	if m.issuer != "" {
		if iss, _ := claims["iss"].(string); iss != m.issuer {
			return nil, errors.New("invalid issuer")
		}
	}

	out := &Claims{ExpiresAt: exp.Time}
	out.UserID, _ = claims["id"].(string)
	if out.UserID == "" {
		return nil, errors.New("invalid token payload")
	}
	out.IsAdmin, _ = claims["isAdmin"].(bool)
	out.ID, _ = claims["jti"].(string)

	if out.ID != "" && m.redis != nil {
		res, err := m.redis.Get(ctx, blacklistPrefix+out.ID).Result()
		if err == nil && res == "1" {
			return nil, ErrTokenRevoked
		}
		// redis outages do not fail authentication
	}
	return out, nil
}

// Revoke blacklists jti until the token would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("empty jti")
	}
	if m.redis == nil {
		return errors.New("no revocation store configured")
	}
	ttl := expiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.redis.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return tok, tok != ""
}

func generateJTI(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WithUser stores the authenticated identity in ctx.
func WithUser(ctx context.Context, c *Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, c.UserID)
	ctx = context.WithValue(ctx, UserAdminKey, c.IsAdmin)
	return context.WithValue(ctx, ClaimsKey, c)
}

// GetUserID returns the authenticated user id from the request context.
func GetUserID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(UserIDKey).(string)
	return id, ok && id != ""
}

func IsAdmin(r *http.Request) bool {
	v, _ := r.Context().Value(UserAdminKey).(bool)
	return v
}

// GetClaims returns the full token claims from the request context.
func GetClaims(r *http.Request) (*Claims, bool) {
	c, ok := r.Context().Value(ClaimsKey).(*Claims)
	return c, ok
}
