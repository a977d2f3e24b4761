package middleware

import (
	"net/http"

	"github.com/ghaggin/portal/internal/model"
)

const LoginPath = "/login"

// CanEnter reports whether a protected view may be rendered for session.
func CanEnter(session model.Session) bool {
	return session.Authenticated()
}

// RequireAuth redirects to the login page unless the session holds a token.
func (s *SessionManager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !CanEnter(s.Get(r.Context())) {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}
