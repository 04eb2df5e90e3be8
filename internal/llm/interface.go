package llm

import (
	"context"

	"realestate-agent/pkg/models"
)

// LLMProvider defines the interface for LLM providers
type LLMProvider interface {
	// ExtractProperties turns a scraped listing page into property records matching criteria
	ExtractProperties(ctx context.Context, content, source string, criteria models.UserCriteria) ([]map[string]interface{}, error)

	// AnalyzeMarket writes a market analysis for the search area
	AnalyzeMarket(ctx context.Context, req models.MarketRequest) (string, error)

	// ValuateProperties writes a valuation of each collected property
	ValuateProperties(ctx context.Context, req models.MarketRequest) (string, error)

	// GetProviderName returns the name of the LLM provider
	GetProviderName() string
}

// ProviderFactory creates providers bound to a language-model API key
type ProviderFactory interface {
	CreateProvider(apiKey string) (LLMProvider, error)
}
