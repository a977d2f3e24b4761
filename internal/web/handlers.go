package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/ghaggin/portal/internal/client"
	"github.com/ghaggin/portal/internal/form"
	"github.com/ghaggin/portal/internal/middleware"
	"github.com/ghaggin/portal/internal/model"
	"github.com/ghaggin/portal/internal/template"
	"github.com/ghaggin/portal/internal/token"
	"github.com/ghaggin/portal/internal/validate"
	"go.uber.org/zap"
)

const (
	dashboardPath = "/dashboard"

	loginFailed      = "Failed to login"
	signupFailed     = "Failed to sign up"
	badTokenMessage  = "The server returned an invalid token."
	inFlightMessage  = "Your previous request is still being processed."
	loginSucceeded   = "User logged in successfully!"
	signupSucceeded  = "User created successfully!"
	loggedOutMessage = "You have been logged out."
)

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login.html", &template.Data{
		PageTitle: "login",
		FormID:    form.NewID(),
		Success:   s.sessions.PopFlash(r.Context()),
	})
}

func (s *Server) signupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "signup.html", &template.Data{
		PageTitle: "signup",
		FormID:    form.NewID(),
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	creds := model.LoginCredentials{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}

	err := s.submit(r, func(ctx context.Context) (string, error) {
		return s.api.Login(ctx, creds)
	}, creds)
	if err != nil {
		status, msg := s.failure(err, loginFailed)
		s.log.Info("login failed", zap.String("email", creds.Email), zap.Error(err))
		s.render(w, status, "login.html", &template.Data{
			PageTitle: "login",
			FormID:    s.nextFormID(r, err),
			Email:     creds.Email,
			Error:     msg,
		})
		return
	}

	s.sessions.Flash(r.Context(), loginSucceeded)
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	creds := model.SignupCredentials{
		Name:     r.PostForm.Get("name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}

	err := s.submit(r, func(ctx context.Context) (string, error) {
		return s.api.Signup(ctx, creds)
	}, creds)
	if err != nil {
		status, msg := s.failure(err, signupFailed)
		s.log.Info("signup failed", zap.String("email", creds.Email), zap.Error(err))
		s.render(w, status, "signup.html", &template.Data{
			PageTitle: "signup",
			FormID:    s.nextFormID(r, err),
			Name:      creds.Name,
			Email:     creds.Email,
			Error:     msg,
		})
		return
	}

	s.sessions.Flash(r.Context(), signupSucceeded)
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

// submit validates creds, then runs one API call for the posted form
// instance and logs the returned token into the session. An instance still
// waiting on the API is refused before its fields are looked at.
func (s *Server) submit(r *http.Request, call func(context.Context) (string, error), creds any) error {
	id := r.PostForm.Get("form_id")
	if id != "" && s.forms.InFlight(id) {
		return form.ErrInFlight
	}

	if err := validate.Struct(creds); err != nil {
		return err
	}

	return s.forms.Submit(r.Context(), id, func(ctx context.Context) error {
		tok, err := call(ctx)
		if err != nil {
			return err
		}
		return s.sessions.Login(ctx, tok)
	})
}

// failure maps a submission error to the status and message shown on the
// re-rendered form.
func (s *Server) failure(err error, generic string) (int, string) {
	var verr *validate.Error
	var apiErr *client.APIError

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, verr.First()
	case errors.Is(err, form.ErrInFlight):
		return http.StatusConflict, inFlightMessage
	case errors.Is(err, token.ErrMalformedToken):
		return http.StatusBadGateway, badTokenMessage
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < 400 || status > 499 {
			status = http.StatusBadGateway
		}
		return status, client.Message(err, generic)
	default:
		return http.StatusBadGateway, generic
	}
}

// nextFormID keeps the instance id while its first submission is still
// running so that further posts stay blocked; otherwise the re-rendered
// form is a new instance.
func (s *Server) nextFormID(r *http.Request, err error) string {
	if errors.Is(err, form.ErrInFlight) {
		return r.PostForm.Get("form_id")
	}
	return form.NewID()
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.Get(r.Context())

	s.render(w, http.StatusOK, "dashboard.html", &template.Data{
		PageTitle: "dashboard",
		UserID:    session.UserID,
		Success:   s.sessions.PopFlash(r.Context()),
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		s.log.Error("error logging out", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	s.sessions.Flash(r.Context(), loggedOutMessage)
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}
