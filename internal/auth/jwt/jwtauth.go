package jwt

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

// New returns an HS256 verifier for admin tokens.
func New(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// NewToken creates an admin token expiring after ttl. Subject is optional and
// ends up in the request log.
func NewToken(jwtAuth *jwtauth.JWTAuth, ttl time.Duration, subject string) (string, error) {
	claims := map[string]interface{}{
		"exp": time.Now().Add(ttl).Unix(),
	}
	if subject != "" {
		claims["sub"] = subject
	}
	_, ts, err := jwtAuth.Encode(claims)
	if err != nil {
		return "", err
	}
	return ts, nil
}

// Subject returns the subject of the verified token in ctx, if any.
func Subject(ctx context.Context) string {
	t, _, err := jwtauth.FromContext(ctx)
	if err != nil || t == nil {
		return ""
	}
	return t.Subject()
}

// Guard verifies the bearer token (header or "jwt" cookie) of every request
// and hands requests without a valid token to unauthorized.
func Guard(jwtAuth *jwtauth.JWTAuth, unauthorized http.Handler) func(http.Handler) http.Handler {
	verify := jwtauth.Verifier(jwtAuth)
	return func(next http.Handler) http.Handler {
		return verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, _, err := jwtauth.FromContext(r.Context())
			if err != nil || t == nil {
				slog.Default().WarnContext(r.Context(), "rejected admin request",
					slog.String("path", r.URL.Path),
					slog.String("err", errString(err)),
				)
				unauthorized.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func errString(err error) string {
	if err == nil {
		return "no token"
	}
	return err.Error()
}
