package scraper

import (
	"fmt"
	"strings"

	"realestate-agent/internal/config"
	"realestate-agent/internal/scraper/engines/firecrawl"
)

// DefaultScraperFactory implements ScraperFactory
type DefaultScraperFactory struct {
	config *config.Config
}

func NewScraperFactory(cfg *config.Config) ScraperFactory {
	return &DefaultScraperFactory{config: cfg}
}

// CreateScraper creates a new scraper instance for the given engine
func (f *DefaultScraperFactory) CreateScraper(engine, apiKey string) (Scraper, error) {
	switch engine {
	case "firecrawl", "":
		return firecrawl.NewFirecrawlScraper(f.config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported scraping engine: %s (supported: %s)", engine, strings.Join(f.GetSupportedEngines(), ", "))
	}
}

func (f *DefaultScraperFactory) GetSupportedEngines() []string {
	return []string{"firecrawl"}
}
