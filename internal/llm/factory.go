package llm

import (
	"fmt"
	"strings"

	"realestate-agent/internal/config"
	"realestate-agent/internal/llm/providers"
)

// LLMFactory creates LLM provider instances
type LLMFactory struct {
	config *config.Config
}

func NewLLMFactory(cfg *config.Config) *LLMFactory {
	return &LLMFactory{config: cfg}
}

// CreateProvider creates the configured provider authenticated with apiKey
func (f *LLMFactory) CreateProvider(apiKey string) (LLMProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}

	switch f.config.LLM.Provider {
	case "claude":
		return providers.NewClaudeProvider(f.config, apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: %s)", f.config.LLM.Provider, strings.Join(f.GetSupportedProviders(), ", "))
	}
}

// GetSupportedProviders returns a list of supported LLM providers
func (f *LLMFactory) GetSupportedProviders() []string {
	return []string{"claude"}
}
