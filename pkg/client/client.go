package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

// AuthUser is the authenticated identity extracted from a verified token.
// Authentication itself happens upstream; by the time this middleware runs the
// token is already verified and the user identified.
type AuthUser struct {
	UserId      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	// UserUuid is the parsed UserId, convenient for services that take uuid.UUID
	UserUuid uuid.UUID
}

func (u AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", u.UserId),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation. This technique
// for defining context keys was copied from Go 1.7's new use of context in net/http.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "authz context value " + k.name
}

const (
	ACCESS_TOKEN_NAME = "access_token"
)

var (
	AuthUserKey = &contextKey{"AuthUser"}
)

// LoadFromMap copies map claims into a struct via JSON round-trip
func LoadFromMap[T any](m map[string]interface{}, c *T) error {
	data, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(data, c)
	}
	return err
}

// AuthUserMiddleware extracts the authenticated user from verified JWT claims
// and stores it in the request context under AuthUserKey. Requests without a
// resolvable user are rejected with 401 before any handler runs.
func AuthUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, jwtClaims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			http.Error(w, "missing or invalid JWT", http.StatusUnauthorized)
			return
		}
		if jwtClaims == nil {
			http.Error(w, "missing JWT claims", http.StatusUnauthorized)
			return
		}

		claims := make(map[string]interface{}, len(jwtClaims))
		for k, v := range jwtClaims {
			claims[k] = v
		}

		authUser := new(AuthUser)

		if extraClaimsRaw, exists := claims["extra_claims"]; exists {
			if extraClaims, ok := extraClaimsRaw.(map[string]interface{}); ok {
				if err := LoadFromMap(extraClaims, authUser); err != nil {
					slog.Error("failed to parse extra claims", "error", err)
					http.Error(w, "invalid extra claims data", http.StatusUnauthorized)
					return
				}
			}
		}

		if err := LoadFromMap(claims, authUser); err != nil {
			slog.Error("failed to parse standard claims", "error", err)
			http.Error(w, "invalid token claims", http.StatusUnauthorized)
			return
		}

		// Fall back to the subject claim for the user ID
		if authUser.UserId == "" {
			if sub, ok := claims["sub"].(string); ok {
				authUser.UserId = sub
			}
		}
		if authUser.UserId == "" {
			http.Error(w, "missing user ID in token", http.StatusUnauthorized)
			return
		}

		userUUID, err := uuid.Parse(authUser.UserId)
		if err != nil {
			slog.Warn("failed to parse user ID as UUID", "userId", authUser.UserId, "error", err)
			http.Error(w, "invalid user ID in token", http.StatusUnauthorized)
			return
		}
		authUser.UserUuid = userUUID

		slog.Debug("authenticated user", "userId", authUser.UserId)

		ctx := context.WithValue(r.Context(), AuthUserKey, authUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Verifier verifies JWTs from the Authorization header or the access token cookie
func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Verify(ja, jwtauth.TokenFromHeader, TokenFromCookie)(next)
	}
}

// TokenFromCookie extracts the access token from the request cookie
func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(ACCESS_TOKEN_NAME)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// AuthUserFromContext returns the authenticated user set by AuthUserMiddleware
func AuthUserFromContext(ctx context.Context) (*AuthUser, bool) {
	authUser, ok := ctx.Value(AuthUserKey).(*AuthUser)
	return authUser, ok
}
