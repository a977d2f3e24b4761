package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ghaggin/portal/internal/config"
	"github.com/ghaggin/portal/internal/model"
	"github.com/ghaggin/portal/internal/repository"
	"github.com/ghaggin/portal/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Repo.Path = filepath.Join(t.TempDir(), "users.json")
	log := zap.NewNop()

	repo, err := repository.NewJSON(repository.JSONParams{
		LC:     fxtest.NewLifecycle(t),
		Config: cfg,
		Log:    log,
	})
	require.NoError(t, err)

	c, err := NewController(ControllerParams{
		Logger: log,
		Repo:   repo,
		Issuer: token.NewIssuer(cfg),
	})
	require.NoError(t, err)
	c.cost = bcrypt.MinCost

	s, err := New(Params{Log: log, Config: cfg, Controller: c})
	require.NoError(t, err)
	return s
}

func do(s *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeToken(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var tr model.TokenResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&tr))
	require.NotEmpty(t, tr.Token)
	return tr.Token
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var er model.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&er))
	return er.Error
}

func TestSignupThenLogin(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := newTestServer(t)

	rr := do(s, http.MethodPost, "/signup", `{"name":"A","email":"A@b.com","password":"pw"}`)
	require.Equal(http.StatusCreated, rr.Code)
	signupTok := decodeToken(t, rr)

	sub, err := token.Subject(signupTok)
	require.NoError(err)

	rr = do(s, http.MethodPost, "/login", `{"email":"a@b.com","password":"pw"}`)
	require.Equal(http.StatusOK, rr.Code)
	loginTok := decodeToken(t, rr)

	loginSub, err := token.Subject(loginTok)
	require.NoError(err)
	assert.Equal(sub, loginSub)

	rr = do(s, http.MethodGet, "/me", "", "Authorization", "Bearer "+loginTok)
	require.Equal(http.StatusOK, rr.Code)
	var me meResponse
	require.NoError(json.NewDecoder(rr.Body).Decode(&me))
	assert.Equal(meResponse{Sub: sub, Email: "a@b.com"}, me)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	s := newTestServer(t)

	rr := do(s, http.MethodPost, "/signup", `{"name":"A","email":"a@b.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(s, http.MethodPost, "/signup", `{"name":"B","email":"a@b.com","password":"other"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Email already registered.", decodeError(t, rr))
}

func TestSignup_BadRequests(t *testing.T) {
	s := newTestServer(t)

	rr := do(s, http.MethodPost, "/signup", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid request body", decodeError(t, rr))

	rr = do(s, http.MethodPost, "/signup", `{"email":"a@b.com","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "name is required", decodeError(t, rr))

	rr = do(s, http.MethodPost, "/signup", `{"name":"A","email":"a@b.com","password":"`+strings.Repeat("x", 80)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newTestServer(t)

	rr := do(s, http.MethodPost, "/signup", `{"name":"A","email":"a@b.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	for _, body := range []string{
		`{"email":"a@b.com","password":"wrong"}`,
		`{"email":"nobody@b.com","password":"pw"}`,
	} {
		rr = do(s, http.MethodPost, "/login", body)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials.", decodeError(t, rr))
	}
}

func TestMe_Unauthorized(t *testing.T) {
	s := newTestServer(t)

	rr := do(s, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(s, http.MethodGet, "/me", "", "Authorization", "Bearer a.b.c")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(s, http.MethodGet, "/me", "", "Authorization", "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}

func TestUsers_ListsWithoutHashes(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := newTestServer(t)

	rr := do(s, http.MethodGet, "/users", "")
	require.Equal(http.StatusOK, rr.Code)
	assert.JSONEq(`[]`, rr.Body.String())

	rr = do(s, http.MethodPost, "/signup", `{"name":"A","email":"a@b.com","password":"pw"}`)
	require.Equal(http.StatusCreated, rr.Code)
	sub, err := token.Subject(decodeToken(t, rr))
	require.NoError(err)

	rr = do(s, http.MethodGet, "/users", "")
	require.Equal(http.StatusOK, rr.Code)
	assert.NotContains(rr.Body.String(), "password")

	var users []userResponse
	require.NoError(json.NewDecoder(rr.Body).Decode(&users))
	assert.Equal([]userResponse{{ID: sub, Name: "A", Email: "a@b.com"}}, users)
}
