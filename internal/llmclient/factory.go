// internal/llmclient/factory.go
package llmclient

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gyuri2020/AIOpsLab-fork/internal/agent"
	"github.com/gyuri2020/AIOpsLab-fork/internal/config"
)

// NewClient is a factory function that creates a ModelClient based on the
// configured provider.
func NewClient(cfg config.LLMConfig, logger *zap.Logger) (agent.ModelClient, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, config.ProviderVLLM:
		// vLLM serves the OpenAI chat-completions API; both providers share
		// one client and differ only in endpoint and extensions.
		return NewOpenAIClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported LLM provider configured: '%s'. Supported: [%s, %s]",
			cfg.Provider, config.ProviderOpenAI, config.ProviderVLLM)
	}
}
