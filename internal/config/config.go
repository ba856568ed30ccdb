// Package config loads settings for the console and the telemetry server.
// Values come from built-in defaults, then an optional YAML file, then
// environment variables. Command-line flags are applied by the binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/mission-control/telemetry/internal/poller"
)

// Log controls the slog handler shared by both binaries.
type Log struct {
	Env   string `yaml:"env"   env:"APP_ENV"`
	Level string `yaml:"level" env:"LOG_LEVEL"`
	// File is where the console writes its log. The server always logs to stdout.
	File       string `yaml:"file"         env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"  env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups"  env:"LOG_MAX_BACKUPS"`
}

// Client is the console configuration.
type Client struct {
	BackendURL     string        `yaml:"backend_url"     env:"BACKEND_URL"`
	Origin         string        `yaml:"origin"          env:"MISSION_ORIGIN"`
	Order          string        `yaml:"order"           env:"MISSION_ORDER"`
	StrictFields   bool          `yaml:"strict_fields"   env:"MISSION_STRICT_FIELDS"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"MISSION_REQUEST_TIMEOUT"`
	Log            Log           `yaml:"log"`
}

// Server is the telemetry simulator configuration.
type Server struct {
	Host              string        `yaml:"host"               env:"HTTP_HOST"`
	Port              int           `yaml:"port"               env:"HTTP_PORT"`
	NodeName          string        `yaml:"node_name"          env:"NODE_NAME"`
	Version           string        `yaml:"version"            env:"APP_VERSION"`
	BroadcastInterval time.Duration `yaml:"broadcast_interval" env:"BROADCAST_INTERVAL"`
	Log               Log           `yaml:"log"`
}

func defaultLog() Log {
	return Log{
		Env:        "dev",
		Level:      "info",
		MaxSizeMB:  10,
		MaxBackups: 3,
	}
}

// DefaultClient returns the console defaults.
func DefaultClient() Client {
	l := defaultLog()
	l.File = "mission-tui.log"
	return Client{
		BackendURL:     "/api",
		Origin:         "http://127.0.0.1:8080",
		Order:          poller.OrderLatestIssued.String(),
		RequestTimeout: 10 * time.Second,
		Log:            l,
	}
}

// DefaultServer returns the simulator defaults.
func DefaultServer() Server {
	return Server{
		Host:              "0.0.0.0",
		Port:              8080,
		Version:           "v1.0.0",
		BroadcastInterval: time.Second,
		Log:               defaultLog(),
	}
}

// LoadClient reads the console configuration. path may be empty or name a
// file that does not exist, in which case only defaults and env apply.
// The result is not validated: callers apply flag overrides first and
// then call Validate.
func LoadClient(path string) (*Client, error) {
	cfg := DefaultClient()
	if err := load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadServer reads the simulator configuration. Like LoadClient it leaves
// validation to the caller.
func LoadServer(path string) (*Server, error) {
	cfg := DefaultServer()
	if err := load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func load(path string, target any) error {
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, target); err != nil {
				return fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the console configuration.
func (c *Client) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return errors.New("backend_url must not be empty")
	}
	if _, err := poller.ParseOrderPolicy(c.Order); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request_timeout %s (must be > 0)", c.RequestTimeout)
	}
	return c.Log.Validate()
}

// Validate checks the simulator configuration.
func (s *Server) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	if s.BroadcastInterval <= 0 {
		return fmt.Errorf("invalid broadcast_interval %s (must be > 0)", s.BroadcastInterval)
	}
	return s.Log.Validate()
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Validate checks the logging settings.
func (l Log) Validate() error {
	switch l.Env {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", l.Env)
	}
	_, err := ParseLogLevel(l.Level)
	return err
}

// SlogLevel returns the parsed level, falling back to info.
func (l Log) SlogLevel() slog.Level {
	level, _ := ParseLogLevel(l.Level)
	return level
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
