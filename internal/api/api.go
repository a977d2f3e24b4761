package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/ghaggin/portal/internal/config"
	"github.com/ghaggin/portal/internal/middleware"
	"github.com/ghaggin/portal/internal/model"
	"github.com/ghaggin/portal/internal/validate"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const maxBody = 1 << 20

// Server is the development auth API: signup, login, token introspection
// and a user listing.
type Server struct {
	log        *zap.Logger
	controller *Controller
	server     *http.Server
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Config     *config.Config
	Controller *Controller
}

func New(p Params) (*Server, error) {
	s := &Server{
		log:        p.Log,
		controller: p.Controller,
	}

	root := chi.NewRouter()
	root.Use(chimw.RequestID)
	root.Use(middleware.Logger(p.Log))
	root.Use(chimw.Recoverer)

	root.Post("/signup", s.signup)
	root.Post("/login", s.login)
	root.Get("/me", s.me)
	root.Get("/users", s.users)

	s.server = &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", p.Config.API.Port),
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

	s.log.Info("auth api listening", zap.String("addr", s.server.Addr))
	go func() {
		err := s.server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error serving auth api", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var creds model.SignupCredentials
	if !s.decode(w, r, &creds) {
		return
	}

	tok, err := s.controller.Register(r.Context(), creds)
	switch {
	case errors.Is(err, ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already registered.")
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, "password is too long")
	case err != nil:
		s.log.Error("error registering user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusCreated, model.TokenResponse{Token: tok})
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds model.LoginCredentials
	if !s.decode(w, r, &creds) {
		return
	}

	tok, err := s.controller.Login(r.Context(), creds)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials.")
	case err != nil:
		s.log.Error("error logging in", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, model.TokenResponse{Token: tok})
	}
}

type meResponse struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	tok, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	claims, err := s.controller.Authenticate(tok)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token.")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{Sub: claims.Subject, Email: claims.Email})
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) users(w http.ResponseWriter, r *http.Request) {
	users, err := s.controller.GetUsers(r.Context())
	if err != nil {
		s.log.Error("error listing users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	writeJSON(w, http.StatusOK, out)
}

// decode reads a JSON body into v and validates it, answering 400 itself
// when either fails.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := validate.Struct(v); err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.First())
			return false
		}
		s.log.Error("error validating request", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}

	return true
}

func bearerToken(header string) (string, bool) {
	scheme, tok, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || tok == "" {
		return "", false
	}
	return tok, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}
