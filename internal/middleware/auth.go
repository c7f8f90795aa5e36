package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lumapix/service/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// UserIDKey is the context key for the authenticated user's ID.
const UserIDKey contextKey = "userID"

// UsernameKey is the context key for the authenticated user's username.
const UsernameKey contextKey = "username"

// RequireAuth returns middleware that validates a Bearer JWT and injects
// user claims into the request context. Requests without a valid token are
// rejected with 401.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, username, ok := parseBearer(r, jwtSecret)
			if !ok {
				response.Unauthorized(w, "invalid or missing authentication token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, UsernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth returns middleware that injects user claims when a valid
// Bearer JWT is present and passes the request through untouched otherwise.
// Access decisions downstream treat the absent identity as a normal input,
// never as an error.
func OptionalAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, username, ok := parseBearer(r, jwtSecret); ok {
				ctx := context.WithValue(r.Context(), UserIDKey, userID)
				ctx = context.WithValue(ctx, UsernameKey, username)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CallerID returns the authenticated user's ID from the context, or "" when
// the request carried no valid credential.
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// HasCredential reports whether the request presented any credential at all:
// a bearer token (valid or not) or a shared-secret header. Callers use it to
// distinguish 401 (nothing presented) from 403 (presented but insufficient).
func HasCredential(r *http.Request) bool {
	return r.Header.Get("Authorization") != "" || r.Header.Get(SharedSecretHeader) != ""
}

// SharedSecretHeader carries the pre-shared viewer passphrase.
const SharedSecretHeader = "X-Access-Secret"

// parseBearer extracts and validates the Bearer token, returning the user
// claims it carries.
func parseBearer(r *http.Request, jwtSecret string) (userID, username string, ok bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "", false
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", false
	}

	userID, _ = claims["sub"].(string)
	username, _ = claims["username"].(string)
	if userID == "" {
		return "", "", false
	}
	return userID, username, true
}
