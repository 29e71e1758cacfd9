package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/datacheck/internal/core"
)

type ctxKey int

const sessionKey ctxKey = iota

func withSession(ctx context.Context, sess *core.Session) context.Context {
	ctx = context.WithValue(ctx, sessionKey, sess)
	return core.ContextWithSessionID(ctx, sess.ID)
}

// sessionFrom returns the session attached by sessionMiddleware.
func sessionFrom(r *http.Request) *core.Session {
	sess, _ := r.Context().Value(sessionKey).(*core.Session)
	return sess
}

// sessionMiddleware resolves the session cookie, creating a fresh session when
// the cookie is missing, malformed or expired.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			id = c.Value
		}

		sess, created := s.service.Sessions().GetOrCreate(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(s.cfg.Session.TTL.Seconds()),
				HttpOnly: true,
				Secure:   s.cfg.Session.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}
