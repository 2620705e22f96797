// Package config loads recipedesk settings from defaults, an optional
// recipedesk.yaml, a .env file, RECIPEDESK_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// RECIPEDESK_VIEW_PAGE_SIZE.
const EnvPrefix = "RECIPEDESK"

// Keys.
const (
	KeyBaseURL          = "api.base_url"
	KeyTimeout          = "api.timeout"
	KeyFetchLimit       = "api.fetch_limit"
	KeyPageSize         = "view.page_size"
	KeyLocale           = "view.locale"
	KeyPolicy           = "mutation.policy"
	KeyRetry            = "mutation.retry"
	KeyLogLevel         = "log.level"
	KeyLogFile          = "log.file"
	KeyTelemetryEnabled = "telemetry.enabled"
	KeyTelemetryStdout  = "telemetry.stdout"
	KeyServerAddr       = "server.addr"
)

var defaults = map[string]any{
	KeyBaseURL:          "https://dummyjson.com",
	KeyTimeout:          15 * time.Second,
	KeyFetchLimit:       200,
	KeyPageSize:         10,
	KeyLocale:           "en",
	KeyPolicy:           "revert",
	KeyRetry:            time.Duration(0),
	KeyLogLevel:         "normal",
	KeyLogFile:          ".recipedesk/recipedesk.log",
	KeyTelemetryEnabled: false,
	KeyTelemetryStdout:  false,
	KeyServerAddr:       ":8080",
}

// Config is the resolved settings tree.
type Config struct {
	API       API       `mapstructure:"api"`
	View      View      `mapstructure:"view"`
	Mutation  Mutation  `mapstructure:"mutation"`
	Log       Log       `mapstructure:"log"`
	Telemetry Telemetry `mapstructure:"telemetry"`
	Server    Server    `mapstructure:"server"`
}

type API struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	FetchLimit int           `mapstructure:"fetch_limit"`
}

type View struct {
	PageSize int    `mapstructure:"page_size"`
	Locale   string `mapstructure:"locale"`
}

type Mutation struct {
	Policy string `mapstructure:"policy"`
	// Retry is the max elapsed time for retrying transient edit/delete
	// failures. Zero disables retries.
	Retry time.Duration `mapstructure:"retry"`
}

type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Telemetry struct {
	Enabled bool `mapstructure:"enabled"`
	Stdout  bool `mapstructure:"stdout"`
}

type Server struct {
	Addr string `mapstructure:"addr"`
}

// New returns a viper instance with defaults and environment binding
// set up. Nothing is read from disk yet.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds each flag whose name is listed in flagKeys to its
// config key. Flags only override the lower layers when set.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, flagKeys map[string]string) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Load reads the .env file (if present), then the yaml config file.
// An empty path looks for recipedesk.yaml in the working directory and
// $HOME/.recipedesk; a missing file there is not an error. An explicit
// path must exist.
func Load(v *viper.Viper, path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("recipedesk")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.recipedesk")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no component could run with.
func (c Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyBaseURL))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyTimeout))
	}
	if c.API.FetchLimit <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyFetchLimit))
	}
	if c.Mutation.Retry < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyRetry))
	}
	return errors.Join(errs...)
}
