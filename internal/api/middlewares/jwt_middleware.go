package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenCookie is where the Supabase client stores the access token.
const AccessTokenCookie = "sb-access-token"

type ctxKey int

const (
	userKey ctxKey = iota
	sessionKey
)

// User is the authenticated caller taken from a verified token.
type User struct {
	ID    string
	Email string
}

// UserFromContext returns the caller, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userKey).(*User)
	return u
}

// WithUser attaches u to ctx.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// Auth verifies Supabase-issued HS256 tokens.
type Auth struct {
	secret []byte
}

// NewAuth returns an Auth that treats every request as anonymous when secret
// is empty.
func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(strings.TrimSpace(secret))}
}

func (a *Auth) Enabled() bool {
	return len(a.secret) > 0
}

// Optional attaches the user when a valid token is presented and lets
// anonymous or invalid requests through unchanged.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, err := a.userFromRequest(r); err == nil {
			r = r.WithContext(WithUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}

// Required rejects requests without a valid token.
func (a *Auth) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}
		u, err := a.userFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

var (
	errNoToken      = errors.New("missing or invalid token")
	errBadToken     = errors.New("invalid token")
	errBadClaims    = errors.New("invalid token claims")
	errAuthDisabled = errors.New("authentication not configured")
)

func (a *Auth) userFromRequest(r *http.Request) (*User, error) {
	if !a.Enabled() {
		return nil, errAuthDisabled
	}
	tokenStr := bearer(r)
	if tokenStr == "" {
		return nil, errNoToken
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, errBadToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errBadClaims
	}
	email, _ := claims["email"].(string)
	return &User{ID: sub, Email: email}, nil
}

func bearer(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}
