// internal/auth/auth.go
//
// Player accounts: credential rules, password hashing and signed tokens.
//
// Notes:
//   - Tokens are HS256 JWTs carrying the player id and username.
//   - A token is read from "Authorization: Bearer <token>" first, then from the auth cookie.
//   - The authenticated player travels in the request context (WithPlayer / PlayerFrom).

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
)

// Player is the authenticated caller.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ValidateCredentials enforces basic username/password rules.
func ValidateCredentials(username, password string) error {
	if len(username) < 3 || len(username) > 24 {
		return errors.New("username must be 3-24 chars")
	}
	for _, r := range username {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(password) < 8 || len(password) > 100 {
		return errors.New("password must be 8-100 chars")
	}
	return nil
}

// HashPassword returns a bcrypt hash at the default cost.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword is a bcrypt verifier.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Issuer signs and verifies player tokens.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer for secret with tokens valid for ttl.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{Secret: []byte(secret), TTL: ttl, now: time.Now}
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Sign issues a token for p and returns it with its expiry.
func (i *Issuer) Sign(p Player) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.TTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: p.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString(i.Secret)
	return ss, exp, err
}

// Parse verifies token and returns the player it names.
func (i *Issuer) Parse(token string) (Player, error) {
	var c claims
	t, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return i.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !t.Valid {
		return Player{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" || c.Username == "" {
		return Player{}, ErrInvalidToken
	}
	return Player{ID: c.Subject, Username: c.Username}, nil
}

// TokenFromRequest extracts a bearer token from the Authorization header or the named cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

type ctxPlayerKey struct{}

// WithPlayer stores p in ctx.
func WithPlayer(ctx context.Context, p Player) context.Context {
	return context.WithValue(ctx, ctxPlayerKey{}, p)
}

// PlayerFrom returns the player stored in ctx, if any.
func PlayerFrom(ctx context.Context) (Player, bool) {
	p, ok := ctx.Value(ctxPlayerKey{}).(Player)
	return p, ok
}
