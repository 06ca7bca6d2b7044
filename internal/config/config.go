// Package config loads and hot-reloads the service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`

	// PublicBaseURL is the origin published catalogue URLs are built on.
	PublicBaseURL string `mapstructure:"public_base_url" yaml:"public_base_url"`
}

// LLMConfig holds the completion-provider settings used by the pipeline.
type LLMConfig struct {
	Model          string  `mapstructure:"model" yaml:"model"`
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit"`

	// StructureConcurrency caps parallel per-chunk structuring calls.
	StructureConcurrency int `mapstructure:"structure_concurrency" yaml:"structure_concurrency"`
}

// ImagesConfig holds stock-photo search settings.
type ImagesConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries"`
}

// DatabaseConfig holds Postgres settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// AuthConfig holds identity-provider settings.
type AuthConfig struct {
	// IntrospectURL is the identity provider's token introspection endpoint.
	IntrospectURL string `mapstructure:"introspect_url" yaml:"introspect_url"`

	// StaticTokens maps bearer tokens to user IDs for local development.
	// Ignored when IntrospectURL is set.
	StaticTokens map[string]string `mapstructure:"static_tokens" yaml:"static_tokens,omitempty"`
}

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	Images   ImagesConfig   `mapstructure:"images" yaml:"images"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("server", defaults.Server)
	viper.SetDefault("llm", defaults.LLM)
	viper.SetDefault("images", defaults.Images)
	viper.SetDefault("database", defaults.Database)
	viper.SetDefault("auth", defaults.Auth)

	// Environment variables with QUICKTALOG_ prefix
	viper.SetEnvPrefix("QUICKTALOG")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.quicktalog")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Quicktalog configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export OPENAI_API_KEY=xxx PEXELS_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
