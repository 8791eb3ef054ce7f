// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "aiopslab", cfg.Logger.ServiceName)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, 60*time.Second, cfg.LLM.APITimeout)
	assert.Equal(t, 30, cfg.Episode.MaxSteps)
	assert.Equal(t, 2*time.Minute, cfg.Executor.CommandTimeout)
	assert.Equal(t, 1, cfg.Driver.Parallelism)

	require.NoError(t, cfg.Validate())
}

func TestNewConfigFromViper(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("llm.model", "Qwen/Qwen2.5-72B-Instruct")
	v.Set("llm.endpoint", "http://vllm.internal:8000/v1/chat/completions")
	v.Set("episode.max_steps", 15)
	v.Set("driver.parallelism", 4)

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "Qwen/Qwen2.5-72B-Instruct", cfg.LLM.Model)
	assert.Equal(t, 15, cfg.Episode.MaxSteps)
	assert.Equal(t, 4, cfg.Driver.Parallelism)
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("AIOPSLAB_LLM_API_KEY", "sk-test-key")

	v := viper.New()
	SetDefaults(v)

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-key", cfg.LLM.APIKey)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max steps", func(c *Config) { c.Episode.MaxSteps = 0 }},
		{"negative api timeout", func(c *Config) { c.LLM.APITimeout = -time.Second }},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }},
		{"temperature out of range", func(c *Config) { c.LLM.Temperature = 3.5 }},
		{"top_p out of range", func(c *Config) { c.LLM.TopP = 1.5 }},
		{"zero command timeout", func(c *Config) { c.Executor.CommandTimeout = 0 }},
		{"zero parallelism", func(c *Config) { c.Driver.Parallelism = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
