package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardhouse/storefront/pkg/logger"
)

// sessionCookieName identifies the shopper session. The cookie is the Go
// rendition of per-browser cart identity: everything cart-related hangs off
// it.
const sessionCookieName = "storefront_session"

// sessionCookieMaxAge keeps the session cookie alive well past typical cart
// abandonment windows.
var sessionCookieMaxAge = int((90 * 24 * time.Hour).Seconds())

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const sessionIDKey contextKey = "session_id"

// ShopperSession is middleware that reads the shopper session cookie, minting
// a new one when absent, and stores the session id in the request context.
// Unlike an auth header there is no rejection path: every visitor gets a
// session.
func ShopperSession(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
				if _, err := uuid.Parse(c.Value); err == nil {
					sid = c.Value
				}
			}

			if sid == "" {
				sid = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    sid,
					Path:     "/",
					MaxAge:   sessionCookieMaxAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sid)
			ctx = logger.WithSessionID(ctx, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionIDFromContext extracts the shopper session id from the request
// context. Returns the id and true if present, or empty string and false
// otherwise.
func sessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok && sid != ""
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
