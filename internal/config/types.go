// Package config provides configuration loading for automator.
//
// Configuration is loaded using Viper from an optional YAML file with
// environment variable overrides.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (AUTOMATOR_ prefix, dots become underscores,
//     e.g. AUTOMATOR_LOG_LEVEL)
//  2. Config file named by AUTOMATOR_CONFIG_PATH or the --config flag
//  3. ./automator.yaml
//  4. User config directory (e.g. ~/.config/automator/automator.yaml)
//  5. [DefaultConfig] defaults
package config

import (
	"fmt"

	"github.com/aretw0/automator/pkg/builder"
	"github.com/aretw0/automator/pkg/domain"
	"github.com/aretw0/automator/pkg/view"
)

// Config represents the root configuration structure.
type Config struct {
	// Strict makes operations on unknown workflow or action IDs return
	// errors instead of silently doing nothing.
	Strict bool `mapstructure:"strict"`

	// IDs selects the action identifier generator: "uuid" or "counter".
	IDs string `mapstructure:"ids"`

	// DefaultWorkflowName names the workflow every new session starts with.
	DefaultWorkflowName string `mapstructure:"default_workflow_name"`

	Log   LogConfig   `mapstructure:"log"`
	HTTP  HTTPConfig  `mapstructure:"http"`
	Redis RedisConfig `mapstructure:"redis"`
	View  ViewConfig  `mapstructure:"view"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `mapstructure:"level"`

	// Format is "json" or "console". Default: console
	Format string `mapstructure:"format"`
}

// HTTPConfig contains the HTTP API settings.
type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

// RedisConfig configures the optional change-event publisher.
type RedisConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Address       string `mapstructure:"address"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

// ViewConfig controls how workflows are rendered by default.
type ViewConfig struct {
	// Format is text, markdown, json or yaml. Default: text
	Format string `mapstructure:"format"`

	// Width is the card width in columns for text output. Default: 48
	Width int `mapstructure:"width"`
}

// DefaultConfig returns a new [Config] with defaults that work without any
// configuration file.
func DefaultConfig() *Config {
	return &Config{
		Strict:              false,
		IDs:                 builder.IDKindUUID,
		DefaultWorkflowName: domain.DefaultWorkflowName,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		HTTP: HTTPConfig{
			Port: 8080,
		},
		Redis: RedisConfig{
			Address:       "localhost:6379",
			ChannelPrefix: "automator:events:",
		},
		View: ViewConfig{
			Format: string(view.FormatText),
			Width:  view.DefaultWidth,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := builder.NewIDGenerator(c.IDs); err != nil {
		return fmt.Errorf("ids: %w", err)
	}
	if _, err := view.ParseFormat(c.View.Format); err != nil {
		return fmt.Errorf("view.format: %w", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port: out of range: %d", c.HTTP.Port)
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return fmt.Errorf("redis.address: required when redis is enabled")
	}
	return nil
}

// StoreOptions translates the builder settings into store options.
func (c *Config) StoreOptions() ([]builder.Option, error) {
	ids, err := builder.NewIDGenerator(c.IDs)
	if err != nil {
		return nil, err
	}
	opts := []builder.Option{
		builder.WithStrict(c.Strict),
		builder.WithIDGenerator(ids),
	}
	if c.DefaultWorkflowName != "" {
		opts = append(opts, builder.WithDefaultName(c.DefaultWorkflowName))
	}
	return opts, nil
}
