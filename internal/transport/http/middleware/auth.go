package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/commune-hq/commune/internal/session"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	SessionIDKey contextKey = "session_id"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = session.CookieName

const unauthorizedBody = `{"error":{"code":"AUTH_REQUIRED","message":"Authentication required"}}`

// Auth resolves the session cookie to a user and rejects requests without a
// valid, non-expired session.
func Auth(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil {
				logrus.WithError(err).Error("session lookup failed")
				http.Error(w, `{"error":{"code":"INTERNAL","message":"Something went wrong"}}`, http.StatusInternalServerError)
				return
			}
			if sess == nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, sess.UserID)
			ctx = context.WithValue(ctx, SessionIDKey, sess.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	http.Error(w, unauthorizedBody, http.StatusUnauthorized)
}

// GetUserID extracts the authenticated user's id from the request context.
func GetUserID(ctx context.Context) int64 {
	return ctx.Value(UserIDKey).(int64)
}

// GetSessionID extracts the session token from the request context.
func GetSessionID(ctx context.Context) string {
	return ctx.Value(SessionIDKey).(string)
}
