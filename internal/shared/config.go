package shared

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Discogs DiscogsConfig `toml:"discogs"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	CORSOrigin      string `toml:"cors_origin"`
	RequestTimeout  string `toml:"request_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// DiscogsConfig contains settings for the Discogs API client.
type DiscogsConfig struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
	Timeout   string `toml:"timeout"`
	Folder    string `toml:"folder"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RequestTimeoutDuration parses request_timeout. Zero means no deadline.
func (s ServerConfig) RequestTimeoutDuration() time.Duration {
	return parseDurationOr(s.RequestTimeout, 0)
}

// ShutdownTimeoutDuration parses shutdown_timeout, defaulting to ten seconds.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return parseDurationOr(s.ShutdownTimeout, 10*time.Second)
}

// TimeoutDuration parses the per-call HTTP timeout, defaulting to thirty seconds.
func (d DiscogsConfig) TimeoutDuration() time.Duration {
	return parseDurationOr(d.Timeout, 30*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys absent from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads variables from the given .env files (default ".env") into the process environment.
//
// Missing files are not an error; variables already set in the environment win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto the config.
//
// Recognized: PORT, HOST, CORS_ORIGIN, DISCOGS_BASE_URL, DISCOGS_USER_AGENT, DISCOGS_FOLDER, LOG_LEVEL.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT must be a number, got %q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}

	for key, dst := range map[string]*string{
		"HOST":               &c.Server.Host,
		"CORS_ORIGIN":        &c.Server.CORSOrigin,
		"DISCOGS_BASE_URL":   &c.Discogs.BaseURL,
		"DISCOGS_USER_AGENT": &c.Discogs.UserAgent,
		"DISCOGS_FOLDER":     &c.Discogs.Folder,
		"LOG_LEVEL":          &c.Log.Level,
	} {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	return nil
}

// Validate checks ranges and duration syntax.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port out of range: %d", ErrInvalidConfig, c.Server.Port)
	}
	if strings.TrimSpace(c.Discogs.BaseURL) == "" {
		return fmt.Errorf("%w: discogs.base_url is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Discogs.Folder) == "" {
		return fmt.Errorf("%w: discogs.folder is required", ErrInvalidConfig)
	}

	for name, value := range map[string]string{
		"server.request_timeout":  c.Server.RequestTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"discogs.timeout":         c.Discogs.Timeout,
	} {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}
