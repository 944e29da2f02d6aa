// Package config handles configuration loading for PlateSense.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"  yaml:"engine" json:"engine"`
	LLM     LLMConfig     `mapstructure:"llm"     yaml:"llm" json:"llm"`
	Reviews ReviewsConfig `mapstructure:"reviews" yaml:"reviews" json:"reviews"`
	API     APIConfig     `mapstructure:"api"     yaml:"api" json:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// EngineConfig holds the insight engine's tunable constants.
type EngineConfig struct {
	AssumedPrincipalPayment float64 `mapstructure:"assumed_principal_payment" yaml:"assumed_principal_payment" json:"assumed_principal_payment"`
	AfterTaxCashFlowFactor  float64 `mapstructure:"after_tax_cash_flow_factor" yaml:"after_tax_cash_flow_factor" json:"after_tax_cash_flow_factor"`
	MultiplierMin           float64 `mapstructure:"multiplier_min"             yaml:"multiplier_min" json:"multiplier_min"`
	MultiplierMax           float64 `mapstructure:"multiplier_max"             yaml:"multiplier_max" json:"multiplier_max"`
	MultiplierStep          float64 `mapstructure:"multiplier_step"            yaml:"multiplier_step" json:"multiplier_step"`
	MultiplierDefault       float64 `mapstructure:"multiplier_default"         yaml:"multiplier_default" json:"multiplier_default"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Primary     string  `mapstructure:"primary"     yaml:"primary" json:"primary"` // "openai" or "ollama"
	OpenAIKey   string  `mapstructure:"openai_key"  yaml:"openai_key"  json:"-"`
	OllamaURL   string  `mapstructure:"ollama_url"  yaml:"ollama_url" json:"ollama_url"`
	Model       string  `mapstructure:"model"       yaml:"model" json:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" json:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"  yaml:"max_tokens" json:"max_tokens"`
}

// ReviewFeed is one configured review feed for a branch.
type ReviewFeed struct {
	Source   string `mapstructure:"source"    yaml:"source" json:"source"`
	BranchID string `mapstructure:"branch_id" yaml:"branch_id" json:"branch_id"`
	URL      string `mapstructure:"url"       yaml:"url" json:"url"`
}

// ReviewPage is one configured scrapeable review page for a branch.
type ReviewPage struct {
	Source   string `mapstructure:"source"    yaml:"source" json:"source"`
	BranchID string `mapstructure:"branch_id" yaml:"branch_id" json:"branch_id"`
	URL      string `mapstructure:"url"       yaml:"url" json:"url"`
}

// ReviewsConfig holds customer review sourcing settings.
type ReviewsConfig struct {
	Feeds      []ReviewFeed `mapstructure:"feeds"       yaml:"feeds" json:"feeds"`
	Pages      []ReviewPage `mapstructure:"pages"       yaml:"pages" json:"pages"`
	FetchLimit int          `mapstructure:"fetch_limit" yaml:"fetch_limit" json:"fetch_limit"`
	CacheTTL   int          `mapstructure:"cache_ttl"   yaml:"cache_ttl" json:"cache_ttl"` // seconds
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host" json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port" json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
	SeedDemo    bool     `mapstructure:"seed_demo"    yaml:"seed_demo" json:"seed_demo"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level" json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.platesense/config.yaml (home directory)
//  3. /etc/platesense/config.yaml (system)
//
// Environment variables override config file values.
// Format: PLATESENSE_<SECTION>_<KEY>, e.g., PLATESENSE_LLM_OPENAI_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".platesense"))
	v.AddConfigPath("/etc/platesense")

	v.SetEnvPrefix("PLATESENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("PLATESENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Engine defaults mirror the constants the calculations were built
	// around; they are configurable, not hardcoded.
	v.SetDefault("engine.assumed_principal_payment", 20000)
	v.SetDefault("engine.after_tax_cash_flow_factor", 0.85)
	v.SetDefault("engine.multiplier_min", 4.0)
	v.SetDefault("engine.multiplier_max", 15.0)
	v.SetDefault("engine.multiplier_step", 0.5)
	v.SetDefault("engine.multiplier_default", 8.0)

	// LLM defaults
	v.SetDefault("llm.primary", "openai")
	v.SetDefault("llm.ollama_url", "http://localhost:11434")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 2048)

	// Reviews defaults
	v.SetDefault("reviews.fetch_limit", 50)
	v.SetDefault("reviews.cache_ttl", 600) // 10 minutes

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.seed_demo", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("PLATESENSE_LLM_OPENAI_KEY"); key != "" {
		cfg.LLM.OpenAIKey = key
	}
	if url := os.Getenv("PLATESENSE_LLM_OLLAMA_URL"); url != "" {
		cfg.LLM.OllamaURL = url
	}
}

// ConfigFilePath returns the path of the active config file: the project
// config if present, otherwise the per-user one.
func ConfigFilePath() string {
	local := filepath.Join("config", "config.yaml")
	if _, err := os.Stat(local); err == nil {
		return local
	}
	return filepath.Join(homeDir(), ".platesense", "config.yaml")
}

// SaveToFile writes the configuration as YAML. Sensitive values carried
// only in the environment (API keys) are serialised too, so the file is
// written with owner-only permissions.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
