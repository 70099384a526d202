// Package config provides Viper-based configuration loading for the dice tool.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backend names accepted by storage.backend.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// ServerConfig holds top-level process settings.
type ServerConfig struct {
	// Mode is the process operation mode. Only "standalone" is supported.
	Mode string `mapstructure:"mode"`
	// Name identifies this instance in logs and the telnet banner.
	Name string `mapstructure:"name"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// TelnetConfig holds settings for the telnet dice console.
type TelnetConfig struct {
	// Enabled turns the console listener on.
	Enabled bool `mapstructure:"enabled"`
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// HTTPConfig holds settings for the JSON API.
type HTTPConfig struct {
	// Enabled turns the HTTP listener on.
	Enabled bool `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// GinMode is passed to gin.SetMode: "debug", "release", or "test".
	GinMode string `mapstructure:"gin_mode"`
	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// StorageConfig selects where the roll log is persisted.
type StorageConfig struct {
	// Backend is one of "memory", "sqlite", or "postgres".
	Backend string `mapstructure:"backend"`
	// Key is the namespaced key the log lives under.
	Key string `mapstructure:"key"`
	// SQLitePath is the database file for the sqlite backend; ":memory:" is allowed.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DiceConfig holds randomness and roll-limit settings.
type DiceConfig struct {
	// Source is "crypto" or "pseudo".
	Source string `mapstructure:"source"`
	// Seed seeds the pseudo source; 0 picks a random seed.
	Seed uint64 `mapstructure:"seed"`
	// TimestampLayout is the Go time layout for record timestamps.
	TimestampLayout string `mapstructure:"timestamp_layout"`
	// MaxCount caps the dice count on structured rolls.
	MaxCount int `mapstructure:"max_count"`
	// MaxSides caps the die size on structured and single-die rolls.
	MaxSides int `mapstructure:"max_sides"`
}

// PresetsConfig locates the preset definitions.
type PresetsConfig struct {
	// Path is the presets YAML file; empty uses the built-in defaults.
	Path string `mapstructure:"path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Dice     DiceConfig     `mapstructure:"dice"`
	Presets  PresetsConfig  `mapstructure:"presets"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateServer(c.Server),
		validateTelnet(c.Telnet),
		validateHTTP(c.HTTP),
		validateStorage(c.Storage),
		validateDice(c.Dice),
		validateLogging(c.Logging),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	// Database settings only matter when postgres holds the log.
	if c.Storage.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Mode != "standalone" {
		return fmt.Errorf("server.mode must be one of [standalone], got %q", s.Mode)
	}
	if s.Name == "" {
		return errors.New("server.name must not be empty")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Enabled && (t.Port < 1 || t.Port > 65535) {
		errs = append(errs, fmt.Sprintf("telnet.port must be 1-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHTTP(h HTTPConfig) error {
	var errs []string
	if h.Enabled && (h.Port < 1 || h.Port > 65535) {
		errs = append(errs, fmt.Sprintf("http.port must be 1-65535, got %d", h.Port))
	}
	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[h.GinMode] {
		errs = append(errs, fmt.Sprintf("http.gin_mode must be one of [debug, release, test], got %q", h.GinMode))
	}
	if h.ShutdownTimeout < 0 {
		errs = append(errs, "http.shutdown_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	var errs []string
	switch s.Backend {
	case BackendMemory, BackendPostgres:
	case BackendSQLite:
		if s.SQLitePath == "" {
			errs = append(errs, "storage.sqlite_path must not be empty for the sqlite backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.backend must be one of [memory, sqlite, postgres], got %q", s.Backend))
	}
	if s.Key == "" {
		errs = append(errs, "storage.key must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDice(d DiceConfig) error {
	var errs []string
	if d.Source != "crypto" && d.Source != "pseudo" {
		errs = append(errs, fmt.Sprintf("dice.source must be one of [crypto, pseudo], got %q", d.Source))
	}
	if d.TimestampLayout == "" {
		errs = append(errs, "dice.timestamp_layout must not be empty")
	}
	if d.MaxCount < 1 {
		errs = append(errs, fmt.Sprintf("dice.max_count must be >= 1, got %d", d.MaxCount))
	}
	if d.MaxSides < 1 {
		errs = append(errs, fmt.Sprintf("dice.max_sides must be >= 1, got %d", d.MaxSides))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance carrying the defaults and the DICE_
// environment overrides but no config file.
//
// Postcondition: Returns a non-nil Viper for which LoadFromViper yields a valid Config.
func NewViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with DICE_ prefix
	v.SetEnvPrefix("DICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "standalone")
	v.SetDefault("server.name", "dicetool")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dice")
	v.SetDefault("database.password", "dice")
	v.SetDefault("database.name", "dice")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("telnet.enabled", true)
	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4025)
	v.SetDefault("telnet.read_timeout", "30m")
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("http.enabled", true)
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8025)
	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("http.gin_mode", "release")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.key", "sw25_logs")
	v.SetDefault("storage.sqlite_path", "dicetool.db")

	v.SetDefault("dice.source", "crypto")
	v.SetDefault("dice.seed", 0)
	v.SetDefault("dice.timestamp_layout", "2006/1/2 15:04:05")
	v.SetDefault("dice.max_count", 100)
	v.SetDefault("dice.max_sides", 1000)

	v.SetDefault("presets.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
