package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"gatekey/internal/failure"
)

// Store backends.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Network modes.
const (
	ModeLocal     = "local"
	ModeDelegated = "delegated"
)

const envPrefix = "GATEKEY_"

// Config holds runtime wiring options, read from GATEKEY_* variables.
type Config struct {
	Home            string `env:"HOME"`
	Store           string `env:"STORE" envDefault:"file"`
	StorePassphrase string `env:"STORE_PASSPHRASE"`
	RedisURL        string `env:"REDIS_URL"`
	PostgresDSN     string `env:"POSTGRES_DSN"`
	DocumentsFile   string `env:"DOCUMENTS_FILE"` // defaults to HOME/documents.json

	NetworkMode string `env:"NETWORK_MODE" envDefault:"local"`
	NodeURL     string `env:"NODE_URL" envDefault:"http://127.0.0.1:8080"`
	RelayURL    string `env:"RELAY_URL" envDefault:"http://127.0.0.1:8080"`
	OAuthURL    string `env:"OAUTH_URL"` // defaults to RelayURL

	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	ReadyTimeout   time.Duration `env:"READY_TIMEOUT" envDefault:"1500ms"`
	ConnectRetries int           `env:"CONNECT_RETRIES" envDefault:"3"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`

	Domain  string `env:"DOMAIN" envDefault:"gatekey.local"`
	AppName string `env:"APP_NAME" envDefault:"gatekey"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// RelayConfig configures cmd/relay.
type RelayConfig struct {
	Addr      string `env:"RELAY_ADDR" envDefault:":8080"`
	Secret    string `env:"RELAY_SECRET"` // hex; random when empty
	Network   string `env:"RELAY_NETWORK" envDefault:"gatekey-dev"`
	Domain    string `env:"DOMAIN" envDefault:"gatekey.local"`
	AppName   string `env:"APP_NAME" envDefault:"gatekey"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadConfig reads optional .env files (default ".env") and then the process
// environment.
func LoadConfig(files ...string) (Config, error) {
	if err := loadDotenv(files); err != nil {
		return Config{}, err
	}
	return ParseConfig(nil)
}

// ParseConfig parses environ, or the process environment when environ is nil,
// and fills derived defaults.
func ParseConfig(environ map[string]string) (Config, error) {
	const op = "app.ParseConfig"

	cfg, err := env.ParseAsWithOptions[Config](options(environ))
	if err != nil {
		return Config{}, failure.Wrap(err, failure.InvalidInput, op, "parse environment")
	}
	if cfg.Home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, failure.Wrap(err, failure.InvalidInput, op, "resolve home directory")
		}
		cfg.Home = filepath.Join(dir, ".gatekey")
	}
	if cfg.OAuthURL == "" {
		cfg.OAuthURL = cfg.RelayURL
	}
	return cfg, cfg.Validate()
}

// DocumentsPath is where the document delegate keeps its snapshot. The
// memory store keeps documents in memory too, so it answers "".
func (c Config) DocumentsPath() string {
	switch {
	case c.DocumentsFile != "":
		return c.DocumentsFile
	case c.Store == StoreMemory:
		return ""
	default:
		return filepath.Join(c.Home, "documents.json")
	}
}

// Validate checks enumerations and backend prerequisites.
func (c Config) Validate() error {
	const op = "app.Config.Validate"

	switch c.Store {
	case StoreFile, StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return failure.New(failure.InvalidInput, op, "GATEKEY_REDIS_URL is required for the redis store")
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return failure.New(failure.InvalidInput, op, "GATEKEY_POSTGRES_DSN is required for the postgres store")
		}
	default:
		return failure.New(failure.InvalidInput, op, "unknown store "+c.Store)
	}
	switch c.NetworkMode {
	case ModeLocal:
		if c.NodeURL == "" {
			return failure.New(failure.InvalidInput, op, "local mode needs GATEKEY_NODE_URL")
		}
	case ModeDelegated:
		if c.RelayURL == "" {
			return failure.New(failure.InvalidInput, op, "delegated mode needs GATEKEY_RELAY_URL")
		}
	default:
		return failure.New(failure.InvalidInput, op, "unknown network mode "+c.NetworkMode)
	}
	if c.SessionTTL <= 0 || c.ReadyTimeout <= 0 || c.HTTPTimeout <= 0 {
		return failure.New(failure.InvalidInput, op, "durations must be positive")
	}
	if c.ConnectRetries < 0 {
		return failure.New(failure.InvalidInput, op, "GATEKEY_CONNECT_RETRIES must not be negative")
	}
	return nil
}

// LoadRelayConfig is LoadConfig for the relay binary.
func LoadRelayConfig(files ...string) (RelayConfig, error) {
	if err := loadDotenv(files); err != nil {
		return RelayConfig{}, err
	}
	return ParseRelayConfig(nil)
}

// ParseRelayConfig is ParseConfig for cmd/relay.
func ParseRelayConfig(environ map[string]string) (RelayConfig, error) {
	cfg, err := env.ParseAsWithOptions[RelayConfig](options(environ))
	if err != nil {
		return RelayConfig{}, failure.Wrap(err, failure.InvalidInput, "app.ParseRelayConfig", "parse environment")
	}
	return cfg, nil
}

func options(environ map[string]string) env.Options {
	return env.Options{Prefix: envPrefix, Environment: environ}
}

// loadDotenv loads files into the process environment without overriding
// variables that are already set. Missing files are skipped.
func loadDotenv(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return failure.Wrap(err, failure.InvalidInput, "app.loadDotenv", "read "+f)
		}
	}
	return nil
}
