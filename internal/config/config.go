// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// AIOPSLAB_LLM_API_KEY maps to llm.api_key.
const EnvPrefix = "AIOPSLAB"

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	Episode  EpisodeConfig  `mapstructure:"episode" yaml:"episode"`
	Executor ExecutorConfig `mapstructure:"executor" yaml:"executor"`
	Driver   DriverConfig   `mapstructure:"driver" yaml:"driver"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// LLMProvider names a supported model backend.
type LLMProvider string

const (
	// ProviderOpenAI covers any OpenAI-compatible chat-completions endpoint,
	// including self-hosted vLLM servers.
	ProviderOpenAI LLMProvider = "openai"
	ProviderVLLM   LLMProvider = "vllm"
)

// LLMConfig defines the model collaborator and its sampling parameters.
type LLMConfig struct {
	Provider          LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model             string        `mapstructure:"model" yaml:"model"`
	APIKey            string        `mapstructure:"api_key" yaml:"-"`
	Endpoint          string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout        time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature       float64       `mapstructure:"temperature" yaml:"temperature"`
	TopP              float64       `mapstructure:"top_p" yaml:"top_p"`
	RepetitionPenalty float64       `mapstructure:"repetition_penalty" yaml:"repetition_penalty"`
	MaxTokens         int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	// RequestsPerSecond throttles outbound model calls; zero disables the
	// limiter.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// EpisodeConfig bounds a single investigation episode.
type EpisodeConfig struct {
	MaxSteps int `mapstructure:"max_steps" yaml:"max_steps"`
}

// ExecutorConfig tunes the local shell command executor.
type ExecutorConfig struct {
	CommandTimeout time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
	// Shell is the interpreter used for commands with shell metacharacters.
	Shell string `mapstructure:"shell" yaml:"shell"`
}

// DriverConfig controls the multi-episode driver.
type DriverConfig struct {
	// Parallelism is the number of episodes run concurrently; 1 means
	// strictly sequential.
	Parallelism int `mapstructure:"parallelism" yaml:"parallelism"`
	// ResultsFile appends one JSON report per finished episode when set.
	ResultsFile string `mapstructure:"results_file" yaml:"results_file"`
	// ProblemsFile overlays extra problem definitions from a YAML file.
	ProblemsFile string `mapstructure:"problems_file" yaml:"problems_file"`
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults only.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "aiopslab")
	v.SetDefault("logger.log_file", "aiopslab.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- LLM --
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.api_timeout", "60s")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.top_p", 0.9)
	v.SetDefault("llm.repetition_penalty", 1.0)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.requests_per_second", 0.0)

	// -- Episode --
	v.SetDefault("episode.max_steps", 30)

	// -- Executor --
	v.SetDefault("executor.command_timeout", "2m")
	v.SetDefault("executor.shell", "/bin/sh")

	// -- Driver --
	v.SetDefault("driver.parallelism", 1)
	v.SetDefault("driver.results_file", "")
	v.SetDefault("driver.problems_file", "")
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Unmarshal can miss env-only keys that were never set elsewhere.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(EnvPrefix + "_LLM_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Episode.MaxSteps <= 0 {
		return fmt.Errorf("episode.max_steps must be a positive integer")
	}
	if c.LLM.APITimeout <= 0 {
		return fmt.Errorf("llm.api_timeout must be a positive duration")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be a positive integer")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0.0 and 2.0")
	}
	if c.LLM.TopP <= 0 || c.LLM.TopP > 1 {
		return fmt.Errorf("llm.top_p must be in (0.0, 1.0]")
	}
	if c.Executor.CommandTimeout <= 0 {
		return fmt.Errorf("executor.command_timeout must be a positive duration")
	}
	if c.Driver.Parallelism <= 0 {
		return fmt.Errorf("driver.parallelism must be a positive integer")
	}
	return nil
}
