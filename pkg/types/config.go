package types

import (
	"errors"
	"fmt"
)

// Config holds backend selection and parameters for backend.Open.
type Config struct {
	Backend     string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir     string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Firm        string `json:"firm" yaml:"firm" mapstructure:"firm"`
	RemoteURL   string `json:"remote_url" yaml:"remote_url" mapstructure:"remote_url"`
	KeyEncoding string `json:"key_encoding" yaml:"key_encoding" mapstructure:"key_encoding"`
	LogLevel    string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	Listen      string `json:"listen" yaml:"listen" mapstructure:"listen"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRemote = "remote"
)

// Supported key encodings.
const (
	KeyEncodingLegacy  = "legacy"
	KeyEncodingPercent = "percent"
)

// DefaultFirm names the database used when no firm is configured.
const DefaultFirm = "firm1"

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrRemoteURLEmpty     = errors.New("remote backend requires remote_url")
	ErrKeyEncodingUnknown = errors.New("unknown key encoding")
	ErrFirmInvalid        = errors.New("firm name must be a plain file name")
)

var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
	BackendRemote: true,
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendSQLite,
		Firm:        DefaultFirm,
		KeyEncoding: KeyEncodingLegacy,
		LogLevel:    "info",
		Listen:      ":8420",
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	if c.Backend == BackendRemote && c.RemoteURL == "" {
		return ErrRemoteURLEmpty
	}
	switch c.KeyEncoding {
	case "", KeyEncodingLegacy, KeyEncodingPercent:
	default:
		return fmt.Errorf("%w: %q", ErrKeyEncodingUnknown, c.KeyEncoding)
	}
	for _, r := range c.Firm {
		if r == '/' || r == '\\' || r == 0 {
			return ErrFirmInvalid
		}
	}
	if c.Firm == "." || c.Firm == ".." {
		return ErrFirmInvalid
	}
	return nil
}

// FirmName returns the configured firm or DefaultFirm.
func (c Config) FirmName() string {
	if c.Firm == "" {
		return DefaultFirm
	}
	return c.Firm
}
