package scraper

import "context"

// Scraper fetches the content of a listing-search page
type Scraper interface {
	// ScrapeListings returns the page at url as markdown (or HTML when markdown is unavailable)
	ScrapeListings(ctx context.Context, url string) (string, error)

	// Cleanup releases any resources used by the scraper
	Cleanup()

	// IsHealthy returns true if the scraper is ready to process requests
	IsHealthy() bool
}

// ScraperFactory creates scrapers bound to a scraping-service API key
type ScraperFactory interface {
	CreateScraper(engine, apiKey string) (Scraper, error)
	GetSupportedEngines() []string
}
