package api

import (
	"context"
	"errors"
	"strings"

	"github.com/ghaggin/portal/internal/model"
	"github.com/ghaggin/portal/internal/repository"
	"github.com/ghaggin/portal/internal/token"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Controller struct {
	repo   repository.Repository
	issuer *token.Issuer
	log    *zap.Logger
	cost   int
}

type ControllerParams struct {
	fx.In

	Logger *zap.Logger
	Repo   repository.Repository
	Issuer *token.Issuer
}

func NewController(p ControllerParams) (*Controller, error) {
	return &Controller{
		log:    p.Logger,
		repo:   p.Repo,
		issuer: p.Issuer,
		cost:   bcrypt.DefaultCost,
	}, nil
}

// Register creates the user and returns a token for it.
func (c *Controller) Register(ctx context.Context, creds model.SignupCredentials) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), c.cost)
	if err != nil {
		return "", err
	}

	u := &model.User{
		Name:         creds.Name,
		Email:        normalizeEmail(creds.Email),
		PasswordHash: string(hash),
	}
	if err := c.repo.AddUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return "", ErrEmailTaken
		}
		return "", err
	}

	c.log.Info("user registered", zap.String("user_id", u.ID))
	return c.issuer.Issue(u.ID, u.Email)
}

// Login checks the password and returns a fresh token. Unknown email and
// wrong password are reported the same way.
func (c *Controller) Login(ctx context.Context, creds model.LoginCredentials) (string, error) {
	u, err := c.repo.GetUserByEmail(ctx, normalizeEmail(creds.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return c.issuer.Issue(u.ID, u.Email)
}

// Authenticate verifies a bearer token's signature and expiry.
func (c *Controller) Authenticate(tok string) (*token.Claims, error) {
	return c.issuer.Verify(tok)
}

func (c *Controller) GetUsers(ctx context.Context) ([]model.User, error) {
	return c.repo.GetUsers(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
