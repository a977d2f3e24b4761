package middleware

import (
	"context"
	"encoding/gob"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/portal/internal/config"
	"github.com/ghaggin/portal/internal/model"
	"github.com/ghaggin/portal/internal/token"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	sessionKey = "session_key"
	flashKey   = "flash"

	cookieName = "portal_session"
)

// SessionManager holds the per-browser session. A stored session is always
// complete: token and user id are written and removed together.
type SessionManager struct {
	impl *scs.SessionManager
	log  *zap.Logger
}

type SessionParams struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
}

func NewSessionManager(p SessionParams) (*SessionManager, error) {
	gob.Register(model.Session{})

	sm := &SessionManager{log: p.Log}
	sm.impl = scs.New()
	sm.impl.Lifetime = p.Config.Web.SessionLifetime
	sm.impl.Cookie.Name = cookieName
	sm.impl.Cookie.HttpOnly = true
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode
	sm.impl.Cookie.Secure = p.Config.Web.SecureCookie
	sm.impl.ErrorFunc = sm.onError

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

// Get returns the current session, or the zero Session when nobody is
// logged in.
func (s *SessionManager) Get(ctx context.Context) model.Session {
	session, ok := s.impl.Get(ctx, sessionKey).(model.Session)
	if !ok {
		return model.Session{}
	}

	return session
}

// Login decodes tok and stores it with its subject. A token that cannot be
// decoded is rejected and the session is left as it was.
func (s *SessionManager) Login(ctx context.Context, tok string) error {
	uid, err := token.Subject(tok)
	if err != nil {
		return err
	}

	if err := s.impl.RenewToken(ctx); err != nil {
		return err
	}

	s.impl.Put(ctx, sessionKey, model.Session{
		Token:  tok,
		UserID: uid,
	})
	return nil
}

// Logout forgets the token. It is local only; the API keeps no session state.
func (s *SessionManager) Logout(ctx context.Context) error {
	if err := s.impl.RenewToken(ctx); err != nil {
		return err
	}

	s.impl.Remove(ctx, sessionKey)
	return nil
}

func (s *SessionManager) Flash(ctx context.Context, msg string) {
	s.impl.Put(ctx, flashKey, msg)
}

func (s *SessionManager) PopFlash(ctx context.Context) string {
	return s.impl.PopString(ctx, flashKey)
}

func (s *SessionManager) onError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("session error", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
