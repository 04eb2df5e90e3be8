package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"realestate-agent/internal/config"
	"realestate-agent/internal/llm/processors"
	"realestate-agent/internal/logging"
	"realestate-agent/internal/metrics"
	"realestate-agent/pkg/models"
	"realestate-agent/pkg/utils"
)

const analystSystemPrompt = "You are an experienced real-estate analyst. Be factual, concise and base every statement on the listing data provided."

// ClaudeProvider implements the LLM provider interface using Anthropic's Claude
type ClaudeProvider struct {
	client  anthropic.Client
	config  *config.Config
	cleaner *processors.ContentCleaner
	logger  logging.Logger
}

// NewClaudeProvider creates a Claude provider authenticated with apiKey
func NewClaudeProvider(cfg *config.Config, apiKey string) *ClaudeProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(cfg.LLM.Timeout),
		option.WithMaxRetries(cfg.LLM.MaxRetries),
	)

	return &ClaudeProvider{
		client:  client,
		config:  cfg,
		cleaner: processors.NewContentCleaner(),
		logger:  logging.GetGlobalLogger().WithField("provider", "claude"),
	}
}

// ExtractProperties extracts listing records from a scraped page
func (cp *ClaudeProvider) ExtractProperties(ctx context.Context, content, source string, criteria models.UserCriteria) ([]map[string]interface{}, error) {
	// Rough estimation: ContentBudget chars per token
	maxChars := int(float64(cp.config.LLM.MaxTokens) * cp.config.Agent.ContentBudget)
	cleaned, err := cp.cleaner.Clean(content, maxChars)
	if err != nil {
		return nil, fmt.Errorf("failed to clean content: %w", err)
	}

	text, err := cp.complete(ctx, buildExtractionPrompt(cleaned, source, criteria))
	if err != nil {
		return nil, err
	}

	properties, err := parsePropertiesResponse(text)
	if err != nil {
		cp.logger.Warn("Unparseable extraction response", map[string]interface{}{
			"source":  source,
			"preview": utils.Truncate(text, 200),
		})
		return nil, fmt.Errorf("failed to parse Claude response: %w", err)
	}

	cp.logger.Info("Property extraction completed", map[string]interface{}{
		"source":     source,
		"properties": len(properties),
	})
	return properties, nil
}

// AnalyzeMarket writes a market analysis for the search area
func (cp *ClaudeProvider) AnalyzeMarket(ctx context.Context, req models.MarketRequest) (string, error) {
	prompt, err := buildMarketPrompt(req)
	if err != nil {
		return "", err
	}
	return cp.complete(ctx, prompt)
}

// ValuateProperties writes a per-property valuation
func (cp *ClaudeProvider) ValuateProperties(ctx context.Context, req models.MarketRequest) (string, error) {
	prompt, err := buildValuationPrompt(req)
	if err != nil {
		return "", err
	}
	return cp.complete(ctx, prompt)
}

func (cp *ClaudeProvider) GetProviderName() string {
	return "claude"
}

// complete sends one user prompt and returns the concatenated text blocks
func (cp *ClaudeProvider) complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(cp.config.LLM.Model),
		MaxTokens:   int64(cp.config.LLM.MaxTokens),
		Temperature: anthropic.Float(float64(cp.config.LLM.Temperature)),
		System: []anthropic.TextBlockParam{
			{Text: analystSystemPrompt},
		},
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	metrics.ObserveExternal("claude", err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	var b strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("no text content in Claude response")
	}

	cp.logger.Debug("Claude response received", map[string]interface{}{
		"duration": time.Since(start).String(),
		"chars":    len(text),
	})
	return text, nil
}

func buildExtractionPrompt(content, source string, criteria models.UserCriteria) string {
	return fmt.Sprintf(`Extract every property listing from the page content below (scraped from %s) that plausibly matches the buyer criteria.

Buyer criteria:
- Budget: %s
- Property type: %s
- Bedrooms: %s
- Bathrooms: %s
- Minimum square feet: %d
- Special features: %s

Return ONLY a JSON array. Each element is an object with these keys:
{
  "address": "string",
  "price": "string as displayed, e.g. '$450,000'",
  "bedrooms": "string",
  "bathrooms": "string",
  "square_feet": "string",
  "property_type": "string",
  "description": "string - one or two sentences",
  "features": ["string"],
  "listing_url": "string - absolute URL if present, otherwise empty"
}

RULES:
1. No prose, no markdown, only the JSON array
2. Use "" for unknown strings and [] for unknown lists
3. Return [] if the page contains no listings

PAGE CONTENT:
%s`, source, criteria.BudgetRange, criteria.PropertyType, criteria.Bedrooms, criteria.Bathrooms,
		criteria.MinSqft, criteria.SpecialFeatures, content)
}

func buildMarketPrompt(req models.MarketRequest) (string, error) {
	listings, err := json.MarshalIndent(req.Properties, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode properties: %w", err)
	}

	return fmt.Sprintf(`Write a market analysis for %s for a buyer with budget %s looking for %s (%s bedrooms, %s bathrooms, at least %d sqft, special features: %s).

Cover price levels and spread, value for money relative to the budget, neighbourhood observations visible in the data, and buying recommendations. Use short paragraphs.

LISTINGS (%d):
%s`, location(req), req.Criteria.BudgetRange, req.Criteria.PropertyType, req.Criteria.Bedrooms,
		req.Criteria.Bathrooms, req.Criteria.MinSqft, req.Criteria.SpecialFeatures, len(req.Properties), listings), nil
}

func buildValuationPrompt(req models.MarketRequest) (string, error) {
	listings, err := json.MarshalIndent(req.Properties, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode properties: %w", err)
	}

	return fmt.Sprintf(`For each listing below in %s, give a short valuation: whether the asking price looks under, fair or over market, the main reasons, and a suggested offer range. The buyer's budget is %s.

Format one section per property, headed by its address.

LISTINGS:
%s`, location(req), req.Criteria.BudgetRange, listings), nil
}

func location(req models.MarketRequest) string {
	if req.State == "" {
		return req.City
	}
	return req.City + ", " + req.State
}

// stripCodeFence removes a surrounding ```json / ``` fence if present
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

// parsePropertiesResponse accepts a bare array or an object with a "properties" array.
// Non-object elements are dropped.
func parsePropertiesResponse(text string) ([]map[string]interface{}, error) {
	text = stripCodeFence(text)

	var raw interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		// models sometimes wrap the array in prose
		start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	if obj, ok := raw.(map[string]interface{}); ok {
		raw = obj["properties"]
	}

	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a JSON array of properties, got %T", raw)
	}

	properties := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if property, ok := item.(map[string]interface{}); ok {
			properties = append(properties, property)
		}
	}
	return properties, nil
}
