package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shortlyhq/shortly/pkg/config"
)

type contextKey string

const ownerIDKey contextKey = "owner_id"

// OwnerID returns the authenticated caller identity from the request context,
// or nil for anonymous requests.
func OwnerID(ctx context.Context) *string {
	owner, ok := ctx.Value(ownerIDKey).(string)
	if !ok {
		return nil
	}
	return &owner
}

type Middleware struct {
	jwtSecret []byte
}

func NewMiddleware(cfg *config.Config) *Middleware {
	return &Middleware{
		jwtSecret: []byte(cfg.JWTSecret),
	}
}

// RequireAuth rejects requests without a valid token.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := m.verify(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the caller identity when a valid token is present and
// lets the request through anonymously otherwise. A malformed or expired
// token degrades to anonymous instead of failing the request.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if owner, ok := m.verify(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), ownerIDKey, owner))
		}
		next.ServeHTTP(w, r)
	})
}

// verify extracts and validates the JWT from the Authorization header or the
// auth_token cookie. The subject claim is the owner identity.
func (m *Middleware) verify(r *http.Request) (string, bool) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		cookie, err := r.Cookie("auth_token")
		if err != nil {
			return "", false
		}
		tokenString = cookie.Value
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !token.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
