package middleware

import (
	"context"
	"net/http"

	"mini-eats/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Headers set by the upstream identity provider and the client.
const (
	UserIDHeader    = "X-User-ID"
	SessionIDHeader = "X-Session-ID"
)

type contextKey int

const (
	userKey contextKey = iota
	sessionKey
)

// Identity reads the authenticated user forwarded by the identity provider.
// Requests without the header continue anonymously; a malformed id is
// rejected.
func Identity(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(UserIDHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil {
				logger.Warn().Str("path", r.URL.Path).Msg("malformed user id header")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid user id")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}

// Session resolves the cart session. The X-Session-ID header wins; signed-in
// users without one share a session keyed by their user id.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(SessionIDHeader)
		if sessionID == "" {
			if userID, ok := CurrentUser(r.Context()); ok {
				sessionID = "user:" + userID.String()
			}
		}
		if sessionID != "" {
			r = r.WithContext(context.WithValue(r.Context(), sessionKey, sessionID))
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying userID.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userKey).(uuid.UUID)
	return userID, ok
}

// SessionID returns the cart session resolved by Session.
func SessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey).(string)
	return id, ok && id != ""
}
