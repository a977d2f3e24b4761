// Package client talks to the auth API on behalf of the web front-end.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ghaggin/portal/internal/config"
	"github.com/ghaggin/portal/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	loginPath  = "/login"
	signupPath = "/signup"

	// maxErrorBody bounds how much of a failed response is read.
	maxErrorBody = 64 << 10
)

var (
	ErrUnavailable = errors.New("auth api unavailable")
	ErrEmptyToken  = errors.New("auth api returned no token")
)

// APIError is a non-2xx answer from the auth API. Message is empty when the
// body carried no readable error.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth api: status %d", e.Status)
	}
	return fmt.Sprintf("auth api: status %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

type Params struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
}

func New(p Params) *Client {
	return &Client{
		baseURL: strings.TrimRight(p.Config.Web.APIBaseURL, "/"),
		http:    &http.Client{Timeout: p.Config.Web.APITimeout},
		log:     p.Log,
	}
}

func (c *Client) Login(ctx context.Context, creds model.LoginCredentials) (string, error) {
	return c.postForToken(ctx, loginPath, creds)
}

func (c *Client) Signup(ctx context.Context, creds model.SignupCredentials) (string, error) {
	return c.postForToken(ctx, signupPath, creds)
}

// postForToken makes exactly one attempt; failures are returned, not retried.
func (c *Client) postForToken(ctx context.Context, path string, body any) (string, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body),
		}
		c.log.Debug("auth api rejected request",
			zap.String("path", path),
			zap.Int("status", apiErr.Status),
			zap.String("message", apiErr.Message),
		)
		return "", apiErr
	}

	var tr model.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.Token == "" {
		return "", ErrEmptyToken
	}

	return tr.Token, nil
}

// readErrorMessage accepts {"error": "..."} and the {"detail": "..."} shape
// some backends emit. Anything else yields "".
func readErrorMessage(r io.Reader) string {
	var body struct {
		Error  string `json:"error"`
		Detail any    `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&body); err != nil {
		return ""
	}

	if body.Error != "" {
		return body.Error
	}
	if s, ok := body.Detail.(string); ok {
		return s
	}
	return ""
}

// Message returns the text to show a user for err, falling back to generic.
func Message(err error, generic string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return generic
}
