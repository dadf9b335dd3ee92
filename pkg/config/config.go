// Package config loads chessview settings from a YAML file, fills in
// defaults, applies environment overrides and validates the result.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvServer = "CHESSVIEW_SERVER"
	EnvSocket = "CHESSVIEW_SOCKET"
)

// Defaults.
const (
	DefaultServer = "http://localhost:5000"
	DefaultSocket = "ws://localhost:5000/ws"
)

// Config is the complete client configuration.
type Config struct {
	Server string `yaml:"server" validate:"required,url"`
	Socket string `yaml:"socket" validate:"required,url"`

	ConnectTimeout time.Duration `yaml:"connect_timeout" validate:"gt=0"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout" validate:"gt=0"`

	Tree  TreeConfig  `yaml:"tree"`
	Log   LogConfig   `yaml:"log"`
	Watch WatchConfig `yaml:"watch"`

	// Journal is the sqlite path of the session journal; empty keeps it in memory.
	Journal string `yaml:"journal"`
	// MetricsAddr serves /metrics when set (e.g. ":9464").
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
}

// TreeConfig controls the game tree view.
type TreeConfig struct {
	Animation   time.Duration `yaml:"animation" validate:"gte=0"`
	Orientation string        `yaml:"orientation" validate:"oneof=horizontal vertical"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file"`
}

// WatchConfig controls PGN file watching.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// DefaultPath is $XDG_CONFIG_HOME/chessview/config.yaml (or the platform
// equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chessview", "config.yaml")
}

// DefaultLogFile is where the TUI logs when no file is configured.
func DefaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "chessview.log")
	}
	return filepath.Join(dir, "chessview", "chessview.log")
}

// Load reads path, or the default path when path is empty. A missing file
// at the default path is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvServer)); v != "" {
		c.Server = v
	}
	if v := strings.TrimSpace(getenv(EnvSocket)); v != "" {
		c.Socket = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server == "" {
		c.Server = DefaultServer
	}
	c.Server = strings.TrimRight(c.Server, "/")
	if c.Socket == "" {
		c.Socket = SocketFor(c.Server)
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 5 * time.Second
	}
	if c.Tree.Animation == 0 {
		c.Tree.Animation = 500 * time.Millisecond
	}
	if c.Tree.Orientation == "" {
		c.Tree.Orientation = "horizontal"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 250 * time.Millisecond
	}
}

// SocketFor derives the stream URL from the HTTP base: same host, ws or wss
// scheme, path /ws.
func SocketFor(server string) string {
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return DefaultSocket
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and URL schemes
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if u, _ := url.Parse(c.Server); u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid config: server must be http or https, got %q", c.Server)
	}
	if u, _ := url.Parse(c.Socket); u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid config: socket must be ws or wss, got %q", c.Socket)
	}
	return nil
}
