// Package config loads cmdext settings from defaults, an optional config
// file and CMDEXT_ environment variables, in increasing priority.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/nathoo/cmdext/engine"
	"github.com/nathoo/cmdext/engine/hotfix"
	"github.com/nathoo/cmdext/engine/lexer"
)

const (
	// FileName is the config file name without extension; viper accepts
	// yaml, toml and json.
	FileName  = "cmdext"
	EnvPrefix = "CMDEXT"
)

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full settings record.
type Config struct {
	GameRoot           string `mapstructure:"game_root"`
	ScriptRoot         string `mapstructure:"script_root"`
	MaxExecDepth       int    `mapstructure:"max_exec_depth"`
	LogLevel           string `mapstructure:"log_level"`
	Encoding           string `mapstructure:"encoding"`
	HotfixServiceIndex int    `mapstructure:"hotfix_service_index"`
	Profile            string `mapstructure:"profile"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		GameRoot:           ".",
		MaxExecDepth:       engine.DefaultMaxExecDepth,
		LogLevel:           "info",
		Encoding:           string(lexer.EncodingAuto),
		HotfixServiceIndex: hotfix.DefaultServiceIndex,
	}
}

// LoadOptions selects where configuration comes from.
type LoadOptions struct {
	// ConfigFilePath forces a specific file; it must exist.
	ConfigFilePath string
	// ConfigDirPath replaces the user config directory in the search.
	ConfigDirPath string
}

// Provider loads configuration.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider returns the viper backed provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested sources.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	d := Default()
	v.SetDefault("game_root", d.GameRoot)
	v.SetDefault("script_root", d.ScriptRoot)
	v.SetDefault("max_exec_depth", d.MaxExecDepth)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("encoding", d.Encoding)
	v.SetDefault("hotfix_service_index", d.HotfixServiceIndex)
	v.SetDefault("profile", d.Profile)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if opts.ConfigFilePath != "" {
		if _, err := os.Stat(opts.ConfigFilePath); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", opts.ConfigFilePath, err)
		}
	} else {
		v.SetConfigName(FileName)
		if dir, err := configDir(opts.ConfigDirPath); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, FileName), nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var problems []string
	if c.MaxExecDepth <= 0 {
		problems = append(problems, "max_exec_depth must be positive")
	}
	if c.HotfixServiceIndex <= 0 {
		problems = append(problems, "hotfix_service_index must be positive")
	}
	if _, err := lexer.ParseEncoding(c.Encoding); err != nil {
		problems = append(problems, fmt.Sprintf("encoding %q is not one of auto, utf-8, latin-1", c.Encoding))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Level returns the parsed log level, info when unset.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// EngineOptions maps the settings onto engine.Options.
func (c Config) EngineOptions() engine.Options {
	enc, err := lexer.ParseEncoding(c.Encoding)
	if err != nil {
		enc = lexer.EncodingAuto
	}
	return engine.Options{
		GameRoot:     c.GameRoot,
		ScriptRoot:   c.ScriptRoot,
		MaxExecDepth: c.MaxExecDepth,
		Encoding:     enc,
		Profile:      c.Profile,
		ServiceIndex: c.HotfixServiceIndex,
	}
}
