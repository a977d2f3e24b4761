package token

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/ghaggin/portal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer(secret string, ttl time.Duration) *Issuer {
	cfg := config.Default()
	cfg.API.TokenSecret = secret
	cfg.API.TokenTTL = ttl
	return NewIssuer(cfg)
}

func TestSubject(t *testing.T) {
	require := require.New(t)

	tok, err := newIssuer("s", time.Hour).Issue("u1", "a@b.com")
	require.NoError(err)

	sub, err := Subject(tok)
	require.NoError(err)
	require.Equal("u1", sub)
}

func TestSubject_IgnoresSignature(t *testing.T) {
	require := require.New(t)

	tok, err := newIssuer("one", time.Hour).Issue("u2", "a@b.com")
	require.NoError(err)

	// Expired and signed with an unknown key: still decodable.
	expired, err := newIssuer("two", -time.Hour).Issue("u3", "a@b.com")
	require.NoError(err)

	sub, err := Subject(tok)
	require.NoError(err)
	require.Equal("u2", sub)

	sub, err = Subject(expired)
	require.NoError(err)
	require.Equal("u3", sub)
}

func TestSubject_PayloadOnly(t *testing.T) {
	payload := `{"sub":"u1","n":"~~~?"}`
	raw := base64.RawURLEncoding.EncodeToString([]byte(payload))
	padded := base64.URLEncoding.EncodeToString([]byte(payload))
	std := base64.StdEncoding.EncodeToString([]byte(payload))
	require.Contains(t, padded, "=")
	require.Contains(t, std, "+")

	unknownAlg := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"XX"}`))

	cases := map[string]string{
		"opaque header":  "header." + raw + ".sig",
		"unknown alg":    unknownAlg + "." + raw + ".sig",
		"padded payload": "header." + padded + ".sig",
		"std alphabet":   "header." + std + ".sig",
		"empty sig":      "header." + raw + ".",
	}

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			sub, err := Subject(tok)
			require.NoError(t, err)
			assert.Equal(t, "u1", sub)
		})
	}
}

func TestSubject_Malformed(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	noSub := base64.RawURLEncoding.EncodeToString([]byte(`{"email":"a@b.com"}`))
	numericSub := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":42}`))

	cases := map[string]string{
		"empty":          "",
		"one segment":    "abc",
		"two segments":   header + ".abc",
		"four segments":  header + "." + noSub + ".sig.extra",
		"bad base64":     header + ".!!!.sig",
		"not json":       header + "." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".sig",
		"missing sub":    header + "." + noSub + ".sig",
		"non-string sub": header + "." + numericSub + ".sig",
	}

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Subject(tok)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestIssuer_Verify(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	i := newIssuer("secret", time.Hour)
	tok, err := i.Issue("u1", "a@b.com")
	require.NoError(err)

	claims, err := i.Verify(tok)
	require.NoError(err)
	assert.Equal("u1", claims.Subject)
	assert.Equal("a@b.com", claims.Email)

	_, err = newIssuer("other", time.Hour).Verify(tok)
	assert.ErrorIs(err, ErrInvalidToken)

	_, err = i.Verify("not.a.jwt")
	assert.ErrorIs(err, ErrInvalidToken)
}

func TestIssuer_VerifyExpired(t *testing.T) {
	require := require.New(t)

	i := newIssuer("secret", time.Minute)
	now := time.Now()
	i.now = func() time.Time { return now.Add(-time.Hour) }

	tok, err := i.Issue("u1", "a@b.com")
	require.NoError(err)

	i.now = time.Now
	_, err = i.Verify(tok)
	require.ErrorIs(err, ErrExpiredToken)
}
