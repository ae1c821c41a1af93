package config

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/getart/internal/applemusic"
	httpclient "github.com/handiism/getart/internal/http"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to setting keys to form environment variable
// names, e.g. GETART_OUTPUT_DIR.
const EnvPrefix = "GETART"

// Settings holds all configuration options.
type Settings struct {
	// Network settings
	Timeout            time.Duration `mapstructure:"timeout"`
	UserAgent          string        `mapstructure:"user_agent"`
	MaxManifestFetches int           `mapstructure:"max_manifest_fetches"`

	// Output settings
	OutputDir         string `mapstructure:"output_dir"`
	Download          bool   `mapstructure:"download"`
	OpenAfterDownload bool   `mapstructure:"open"`

	// Diagnostics
	LogLevel string `mapstructure:"log_level"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Timeout:            httpclient.DefaultTimeout,
		UserAgent:          httpclient.DefaultUserAgent,
		MaxManifestFetches: applemusic.DefaultMaxManifestFetches,

		OutputDir:         ".",
		Download:          true,
		OpenAfterDownload: false,

		LogLevel: "warning",
	}
}

// Load reads settings from a config file, then applies GETART_*
// environment overrides.
//
// An empty path or a file that does not exist yields the defaults (still
// subject to environment overrides).
func Load(path string) (*Settings, error) {
	v := newViper()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return settings, nil
}

// Save writes settings to a file. The format is chosen from the file
// extension.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	v := viper.New()
	v.Set("timeout", s.Timeout.String())
	v.Set("user_agent", s.UserAgent)
	v.Set("max_manifest_fetches", s.MaxManifestFetches)
	v.Set("output_dir", s.OutputDir)
	v.Set("download", s.Download)
	v.Set("open", s.OpenAfterDownload)
	v.Set("log_level", s.LogLevel)

	return v.WriteConfigAs(path)
}

// ToHTTPConfig converts settings to an HTTP client configuration.
func (s *Settings) ToHTTPConfig() httpclient.Config {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = s.Timeout
	if s.UserAgent != "" {
		cfg.Header = http.Header{}
		cfg.Header.Set("User-Agent", s.UserAgent)
	}
	return cfg
}

// ToResolverOptions converts settings to resolver options.
func (s *Settings) ToResolverOptions(log logrus.FieldLogger) applemusic.Options {
	return applemusic.Options{
		MaxManifestFetches: s.MaxManifestFetches,
		Logger:             log,
	}
}

func newViper() *viper.Viper {
	defaults := DefaultSettings()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("user_agent", defaults.UserAgent)
	v.SetDefault("max_manifest_fetches", defaults.MaxManifestFetches)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("download", defaults.Download)
	v.SetDefault("open", defaults.OpenAfterDownload)
	v.SetDefault("log_level", defaults.LogLevel)

	return v
}
