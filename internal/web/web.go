package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"

	"github.com/ghaggin/portal/internal/client"
	"github.com/ghaggin/portal/internal/config"
	"github.com/ghaggin/portal/internal/form"
	"github.com/ghaggin/portal/internal/middleware"
	"github.com/ghaggin/portal/internal/template"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed static
var staticFiles embed.FS

// Server renders the login, signup and dashboard pages.
type Server struct {
	log      *zap.Logger
	sessions *middleware.SessionManager
	api      *client.Client
	forms    *form.Registry
	renderer *template.Renderer
	server   *http.Server
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   *config.Config
	Sessions *middleware.SessionManager
	API      *client.Client
	Forms    *form.Registry
	Renderer *template.Renderer
}

func New(p Params) (*Server, error) {
	s := &Server{
		log:      p.Log,
		sessions: p.Sessions,
		api:      p.API,
		forms:    p.Forms,
		renderer: p.Renderer,
	}

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, err
	}

	root := chi.NewRouter()
	root.Use(chimw.RequestID)
	root.Use(middleware.Logger(p.Log))
	root.Use(chimw.Recoverer)
	root.Use(s.sessions.Wrap)

	// Auth
	root.Group(func(r chi.Router) {
		r.Use(s.sessions.RequireAuth)
		r.Get("/dashboard", s.dashboard)
		r.Post("/logout", s.logout)
	})

	// No Auth
	root.Group(func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		})
		r.Get("/login", s.loginPage)
		r.Post("/login", s.login)
		r.Get("/signup", s.signupPage)
		r.Post("/signup", s.signup)

		r.Handle("/static/*", http.StripPrefix("/static", http.FileServer(http.FS(static))))
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", p.Config.Web.Port),
		Handler: root,
	}

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.server.Shutdown,
	})
}

func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	s.log.Info("web front-end listening", zap.String("addr", s.server.Addr))
	go func() {
		err := s.server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error serving web front-end", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) render(w http.ResponseWriter, status int, tmpl string, td *template.Data) {
	if err := s.renderer.Render(w, status, tmpl, td); err != nil {
		s.log.Error("error rendering template", zap.String("template", tmpl), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
