package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"realestate-agent/internal/cache"
	"realestate-agent/internal/config"
	"realestate-agent/internal/llm"
	"realestate-agent/internal/logging"
	"realestate-agent/internal/scraper"
	"realestate-agent/internal/scraper/ratelimit"
	"realestate-agent/pkg/models"
)

// Limiter paces requests per domain and tracks their health
type Limiter interface {
	Wait(ctx context.Context, domain string) error
	RecordSuccess(domain string)
	RecordFailure(domain string, err error)
}

// SequentialAnalyzer scrapes each selected source in turn, then asks the
// language model for a market analysis and valuations
type SequentialAnalyzer struct {
	config    *config.Config
	scrapers  scraper.ScraperFactory
	providers llm.ProviderFactory
	cache     cache.Cache
	limiter   Limiter
	logger    logging.Logger
}

// NewSequentialAnalyzer wires the analyzer's collaborators
func NewSequentialAnalyzer(cfg *config.Config, scrapers scraper.ScraperFactory, providers llm.ProviderFactory, c cache.Cache, limiter Limiter) *SequentialAnalyzer {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &SequentialAnalyzer{
		config:    cfg,
		scrapers:  scrapers,
		providers: providers,
		cache:     c,
		limiter:   limiter,
		logger:    logging.GetGlobalLogger().WithField("component", "sequential_analyzer"),
	}
}

// Run executes the full analysis. Every error is reported as a failed Outcome.
func (a *SequentialAnalyzer) Run(ctx context.Context, input AnalysisInput, sink ProgressSink) Outcome {
	if sink == nil {
		sink = NoopProgress{}
	}
	logger := a.logger.WithFields(map[string]interface{}{
		"city":    input.City,
		"state":   input.State,
		"sources": len(input.Sources),
	})

	sink.Update(0.05, "Starting analysis", fmt.Sprintf("Searching %d website(s) for listings in %s", len(input.Sources), input.City))

	provider, err := a.providers.CreateProvider(input.Credentials.LLMKey)
	if err != nil {
		return Failure(fmt.Sprintf("failed to create LLM provider: %v", err))
	}

	s, err := a.scrapers.CreateScraper(a.config.Agent.Engine, input.Credentials.ScrapingKey)
	if err != nil {
		return Failure(fmt.Sprintf("failed to create scraper: %v", err))
	}
	defer s.Cleanup()

	properties := make([]map[string]interface{}, 0)
	var sourceErrors []string

	for i, source := range input.Sources {
		if err := ctx.Err(); err != nil {
			return Failure(err.Error())
		}

		fraction := 0.1 + 0.5*float64(i)/float64(len(input.Sources))
		sink.Update(fraction, "Scraping "+source, fmt.Sprintf("Collecting listings from %s (%d of %d)", source, i+1, len(input.Sources)))

		found, err := a.collect(ctx, s, provider, source, input)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Failure(ctxErr.Error())
			}
			logger.Warn("Failed to collect listings", map[string]interface{}{
				"source": source,
				"error":  err.Error(),
			})
			sourceErrors = append(sourceErrors, fmt.Sprintf("%s: %v", source, err))
			continue
		}

		properties = append(properties, found...)
		logger.Info("Collected listings", map[string]interface{}{
			"source":     source,
			"properties": len(found),
		})
	}

	if len(input.Sources) > 0 && len(sourceErrors) == len(input.Sources) {
		return Failure("failed to collect listings from any selected website: " + strings.Join(sourceErrors, "; "))
	}

	if limit := a.config.Agent.MaxProperties; limit > 0 && len(properties) > limit {
		properties = properties[:limit]
	}

	sink.Update(0.7, "Analyzing market", fmt.Sprintf("Analyzing %d properties", len(properties)))

	if len(properties) == 0 {
		sink.Update(1.0, "Analysis complete", "No matching properties found")
		return Success(Result{
			Properties:      properties,
			MarketAnalysis:  fmt.Sprintf("No properties matching the criteria were found in %s.", input.City),
			TotalProperties: 0,
		})
	}

	req := models.MarketRequest{
		City:       input.City,
		State:      input.State,
		Criteria:   input.Criteria,
		Properties: properties,
	}

	marketAnalysis, err := provider.AnalyzeMarket(ctx, req)
	if err != nil {
		return Failure(a.failureText(ctx, "market analysis failed", err))
	}

	sink.Update(0.85, "Valuing properties", fmt.Sprintf("Valuing %d properties", len(properties)))

	valuations, err := provider.ValuateProperties(ctx, req)
	if err != nil {
		return Failure(a.failureText(ctx, "property valuation failed", err))
	}

	sink.Update(1.0, "Analysis complete", fmt.Sprintf("Found %d properties", len(properties)))
	logger.Info("Analysis completed", map[string]interface{}{"properties": len(properties)})

	return Success(Result{
		Properties:         properties,
		MarketAnalysis:     marketAnalysis,
		PropertyValuations: valuations,
		TotalProperties:    len(properties),
	})
}

// collect scrapes one source and extracts its property records
func (a *SequentialAnalyzer) collect(ctx context.Context, s scraper.Scraper, provider llm.LLMProvider, source string, input AnalysisInput) ([]map[string]interface{}, error) {
	listingURL, err := ResolveSourceURL(source, input.City, input.State)
	if err != nil {
		return nil, err
	}

	content, err := a.fetch(ctx, s, listingURL)
	if err != nil {
		return nil, err
	}

	records, err := provider.ExtractProperties(ctx, content, source, input.Criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to extract properties: %w", err)
	}

	for _, record := range records {
		record["source"] = source
		if _, ok := record["listing_url"]; !ok {
			record["listing_url"] = listingURL
		}
	}
	return records, nil
}

// fetch waits for the domain's turn, then serves the page from the cache or scrapes it
func (a *SequentialAnalyzer) fetch(ctx context.Context, s scraper.Scraper, listingURL string) (string, error) {
	domain := ratelimit.DomainOf(listingURL)
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, domain); err != nil {
			if errors.Is(err, ratelimit.ErrCircuitOpen) {
				return "", fmt.Errorf("skipped: %w", err)
			}
			return "", err
		}
	}

	key := cache.ListingKey(listingURL)
	if content, ok, err := a.cache.Get(ctx, key); err != nil {
		a.logger.Warn("Cache lookup failed", map[string]interface{}{"url": listingURL, "error": err.Error()})
	} else if ok {
		a.logger.Debug("Using cached listing page", map[string]interface{}{"url": listingURL})
		return content, nil
	}

	content, err := s.ScrapeListings(ctx, listingURL)
	if err != nil {
		if a.limiter != nil && ctx.Err() == nil {
			a.limiter.RecordFailure(domain, err)
		}
		return "", err
	}
	if a.limiter != nil {
		a.limiter.RecordSuccess(domain)
	}

	if err := a.cache.Set(ctx, key, content, a.config.Redis.CacheTTL); err != nil {
		a.logger.Warn("Failed to cache listing page", map[string]interface{}{"url": listingURL, "error": err.Error()})
	}
	return content, nil
}

func (a *SequentialAnalyzer) failureText(ctx context.Context, what string, err error) string {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr.Error()
	}
	return fmt.Sprintf("%s: %v", what, err)
}
