package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	APIURL                 string `env:"API_URL"`
	LegacyAPIURL           string `env:"NEXT_PUBLIC_API_URL"`
	CredentialStoreURL     string `env:"CREDENTIAL_STORE_URL"`
	DownloadDir            string `env:"DOWNLOAD_DIR" envDefault:"."`
	EncryptionKey          string `env:"ENCRYPTION_KEY"`
	RequestTimeoutSeconds  int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	DownloadTimeoutSeconds int    `env:"DOWNLOAD_TIMEOUT_SECONDS" envDefault:"30"`
	LogLevel               string `env:"LOG_LEVEL" envDefault:"info"`
}

// BaseURL returns the backend base URL. API_URL wins over the
// NEXT_PUBLIC_API_URL name kept for existing deployments.
func (c *Config) BaseURL() string {
	if c.APIURL != "" {
		return strings.TrimRight(c.APIURL, "/")
	}
	if c.LegacyAPIURL != "" {
		return strings.TrimRight(c.LegacyAPIURL, "/")
	}
	return DefaultAPIURL
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSeconds) * time.Second
}

// StoreURL returns the credential store location, defaulting to a sqlite
// file under the user config directory.
func (c *Config) StoreURL() string {
	if c.CredentialStoreURL != "" {
		return c.CredentialStoreURL
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return "sqlite://" + filepath.Join(dir, AppDirName, CredentialDBFile)
}

func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.BaseURL()); err != nil {
		return fmt.Errorf("API_URL must be an absolute URL: %w", err)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be > 0")
	}
	if c.DownloadTimeoutSeconds <= 0 {
		return fmt.Errorf("DOWNLOAD_TIMEOUT_SECONDS must be > 0")
	}
	if c.EncryptionKey != "" && len(c.EncryptionKey) != 64 {
		return fmt.Errorf("ENCRYPTION_KEY must be 64 hex characters (generate with: openssl rand -hex 32)")
	}
	if c.EncryptionKey == "" && !strings.HasPrefix(c.StoreURL(), "memory://") {
		log.Debug().Msg("ENCRYPTION_KEY is empty: auth token is stored in plain text")
	}
	return nil
}

// MockConfig configures the local mock backend.
type MockConfig struct {
	Port                   int    `env:"PORT" envDefault:"8000"`
	JWTSecret              string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	AdminAccessCode        string `env:"ADMIN_ACCESS_CODE" envDefault:"letmein"`
	TokenTTLMinutes        int    `env:"TOKEN_TTL_MINUTES" envDefault:"60"`
	LoginAttemptsPerMinute int    `env:"LOGIN_ATTEMPTS_PER_MINUTE" envDefault:"5"`
	SeedDemo               bool   `env:"SEED_DEMO" envDefault:"true"`
	LogLevel               string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *MockConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *MockConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func LoadMock() (*MockConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	var cfg MockConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// loadDotEnv reads .env from the working directory when present. Values
// already set in the environment are not overridden.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
