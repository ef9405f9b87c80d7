// Package config loads the docket configuration with viper: defaults,
// then config.yaml in the configuration directory, then DOCKET_*
// environment variables. A .env file is read into the environment first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/docket/pkg/types"
)

const (
	fileName = "config"
	fileType = "yaml"

	// FileExt is the configuration file name inside the config directory.
	FileExt = "config.yaml"

	// EnvPrefix prefixes every environment override, as in DOCKET_BACKEND.
	EnvPrefix = "DOCKET"

	// DotEnv is the file loaded into the environment when no other is
	// named.
	DotEnv = ".env"
)

// Keys.
const (
	KeyBackend     = "backend"
	KeyDataDir     = "data_dir"
	KeyFirm        = "firm"
	KeyRemoteURL   = "remote_url"
	KeyKeyEncoding = "key_encoding"
	KeyLogLevel    = "log_level"
	KeyListen      = "listen"
)

// defaultYAML is written to config.yaml on first run.
const defaultYAML = `# docket configuration
# Every key can be overridden with a DOCKET_ environment variable,
# for example DOCKET_BACKEND=memory.

# memory, sqlite or remote
backend: sqlite

# Firm database name; each firm has its own file in data_dir.
firm: firm1

# Directory holding the firm databases (optional; --data-dir wins).
# data_dir:

# Base URL of a docket server, for the remote backend.
# remote_url: http://localhost:8420

# legacy (_DOT_/_AT_) or percent
key_encoding: legacy

log_level: info
listen: ":8420"
`

// Load reads the configuration from configDir, creating the directory and
// a default config.yaml when they are missing. envFiles are loaded into
// the environment first without overriding variables that are already
// set; with none given, ./.env is tried. Missing env files are ignored.
func Load(configDir string, envFiles ...string) (*viper.Viper, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DotEnv}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	def := types.DefaultConfig()
	v.SetDefault(KeyBackend, def.Backend)
	v.SetDefault(KeyDataDir, def.DataDir)
	v.SetDefault(KeyFirm, def.Firm)
	v.SetDefault(KeyRemoteURL, def.RemoteURL)
	v.SetDefault(KeyKeyEncoding, def.KeyEncoding)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyListen, def.Listen)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetConfigName(fileName)
	v.SetConfigType(fileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Decode converts v into a Config.
func Decode(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Write stores cfg as config.yaml in configDir, replacing any existing
// file.
func Write(configDir string, cfg types.Config) (string, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	path := filepath.Join(configDir, FileExt)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func ensureDefaultFile(configDir string) error {
	path := filepath.Join(configDir, FileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultYAML), 0o644)
}
