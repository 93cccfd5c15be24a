package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is used for the config file and user config directory.
	AppName = "automator"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "AUTOMATOR"

	// ConfigPathEnv names an explicit config file.
	ConfigPathEnv = EnvPrefix + "_CONFIG_PATH"
)

// Loader handles Viper-based configuration loading.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader seeded with [DefaultConfig] values and bound to
// AUTOMATOR_ environment variables.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Viper exposes the underlying instance so command flags can be bound to it.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads configuration from the first config file found, falling back to
// defaults when there is none.
func (l *Loader) Load() (*Config, error) {
	if path := os.Getenv(ConfigPathEnv); path != "" {
		return l.LoadFromFile(path)
	}

	l.v.SetConfigName(AppName)
	l.v.SetConfigType("yaml")
	l.v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(dir, AppName))
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadFromFile reads configuration from a specific file.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return l.unmarshal()
}

// ConfigFileUsed returns the file the configuration was read from, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := DefaultConfig()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("strict", cfg.Strict)
	v.SetDefault("ids", cfg.IDs)
	v.SetDefault("default_workflow_name", cfg.DefaultWorkflowName)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)

	v.SetDefault("http.port", cfg.HTTP.Port)

	v.SetDefault("redis.enabled", cfg.Redis.Enabled)
	v.SetDefault("redis.address", cfg.Redis.Address)
	v.SetDefault("redis.password", cfg.Redis.Password)
	v.SetDefault("redis.db", cfg.Redis.DB)
	v.SetDefault("redis.channel_prefix", cfg.Redis.ChannelPrefix)

	v.SetDefault("view.format", cfg.View.Format)
	v.SetDefault("view.width", cfg.View.Width)
}
