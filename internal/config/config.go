package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

var (
	errMissingAPIBaseURL = errors.New("api base url is required")
	errMissingSecret     = errors.New("token secret is required")
)

type Mode string

const (
	ModeWeb Mode = "web"
	ModeAPI Mode = "api"
)

type Config struct {
	Log  Log  `yaml:"log"`
	Web  Web  `yaml:"web"`
	API  API  `yaml:"api"`
	Repo Repo `yaml:"repo"`
}

type Log struct {
	// Development selects zap's development logger.
	Development bool `yaml:"development" env:"LOG_DEVELOPMENT"`
}

// Web is the front-end serving the login, signup and dashboard pages.
type Web struct {
	Port            int           `yaml:"port" env:"WEB_PORT"`
	APIBaseURL      string        `yaml:"api_base_url" env:"API_BASE_URL"`
	APITimeout      time.Duration `yaml:"api_timeout" env:"API_TIMEOUT"`
	SessionLifetime time.Duration `yaml:"session_lifetime" env:"SESSION_LIFETIME"`
	SecureCookie    bool          `yaml:"secure_cookie" env:"SECURE_COOKIE"`
}

// API is the development auth API the front-end talks to.
type API struct {
	Port        int           `yaml:"port" env:"API_PORT"`
	TokenSecret string        `yaml:"token_secret" env:"TOKEN_SECRET"`
	TokenTTL    time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
}

type Repo struct {
	Path string `yaml:"path" env:"REPO_PATH"`
}

func Default() *Config {
	return &Config{
		Log: Log{
			Development: true,
		},
		Web: Web{
			Port:            8123,
			APIBaseURL:      "http://localhost:8124",
			APITimeout:      10 * time.Second,
			SessionLifetime: 24 * time.Hour,
		},
		API: API{
			Port:        8124,
			TokenSecret: "dev_secret",
			TokenTTL:    24 * time.Hour,
		},
		Repo: Repo{
			Path: "data/users.json",
		},
	}
}

// New builds the configuration from defaults, the optional yaml file and
// the environment, in that order.
func New() (*Config, error) {
	cfg := Default()

	if err := readFile(configPath(), cfg); err != nil {
		return nil, err
	}

	if err := readEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Web.APIBaseURL == "" {
		return errMissingAPIBaseURL
	}

	u, err := url.Parse(c.Web.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api base url %q: scheme must be http or https", c.Web.APIBaseURL)
	}

	if c.API.TokenSecret == "" {
		return errMissingSecret
	}

	return nil
}
