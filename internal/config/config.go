package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Actions []string    `yaml:"actions" mapstructure:"actions"`
	Epsilon float64     `yaml:"epsilon" mapstructure:"epsilon"`
	Alpha   float64     `yaml:"alpha" mapstructure:"alpha"`
	Gamma   float64     `yaml:"gamma" mapstructure:"gamma"`
	Seed    int64       `yaml:"seed" mapstructure:"seed"`
	Store   StoreConfig `yaml:"store" mapstructure:"store"`
	Log     LogConfig   `yaml:"log" mapstructure:"log"`
}

type StoreConfig struct {
	Kind string `yaml:"kind" mapstructure:"kind"`
	Path string `yaml:"path" mapstructure:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Actions: []string{"left", "right", "forward"},
		Epsilon: 0.1,
		Alpha:   0.2,
		Gamma:   0.8,
		Store: StoreConfig{
			Kind: "file",
			Path: "checkpoints",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads configuration from path, or from config.yaml in the working
// directory or $XDG_CONFIG_HOME/qlearn when path is empty. QLEARN_* environment
// variables override file values (QLEARN_STORE_KIND for store.kind).
func Load(path string) (*Config, error) {
	defaults := DefaultConfig()
	v := viper.New()

	v.SetDefault("actions", defaults.Actions)
	v.SetDefault("epsilon", defaults.Epsilon)
	v.SetDefault("alpha", defaults.Alpha)
	v.SetDefault("gamma", defaults.Gamma)
	v.SetDefault("seed", defaults.Seed)
	v.SetDefault("store.kind", defaults.Store.Kind)
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "qlearn"))
		}
	}

	v.SetEnvPrefix("QLEARN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Actions) == 0 {
		return fmt.Errorf("config: actions must not be empty")
	}
	seen := make(map[string]bool, len(c.Actions))
	for _, a := range c.Actions {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("config: actions must not contain blank names")
		}
		if seen[a] {
			return fmt.Errorf("config: duplicate action %q", a)
		}
		seen[a] = true
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("config: epsilon %v must be in [0,1]", c.Epsilon)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("config: alpha %v must be in (0,1]", c.Alpha)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("config: gamma %v must be in [0,1]", c.Gamma)
	}
	switch c.Store.Kind {
	case "memory":
	case "file", "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("config: store %q requires path", c.Store.Kind)
		}
	default:
		return fmt.Errorf("config: store kind %q must be memory, file or sqlite", c.Store.Kind)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log level %q must be debug, info, warn or error", c.Log.Level)
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("config: log format %q must be auto, text or json", c.Log.Format)
	}
	return nil
}

// Write stores c as YAML at path.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
