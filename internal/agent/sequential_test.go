package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-agent/internal/cache"
	"realestate-agent/internal/config"
	"realestate-agent/internal/llm"
	"realestate-agent/internal/scraper"
	"realestate-agent/internal/scraper/ratelimit"
	"realestate-agent/pkg/models"
)

type fakeScraper struct {
	mu      sync.Mutex
	pages   map[string]string
	failing map[string]error
	calls   []string
	cleaned bool
}

func (f *fakeScraper) ScrapeListings(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if err, ok := f.failing[url]; ok {
		return "", err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return "# listings for " + url, nil
}

func (f *fakeScraper) Cleanup()        { f.cleaned = true }
func (f *fakeScraper) IsHealthy() bool { return true }

type fakeScraperFactory struct {
	scraper *fakeScraper
	apiKey  string
}

func (f *fakeScraperFactory) CreateScraper(_ string, apiKey string) (scraper.Scraper, error) {
	f.apiKey = apiKey
	return f.scraper, nil
}

func (f *fakeScraperFactory) GetSupportedEngines() []string { return []string{"fake"} }

type fakeProvider struct {
	perSource    int
	extractErr   error
	marketErr    error
	marketCalls  int
	valuateCalls int
	lastRequest  models.MarketRequest
}

func (p *fakeProvider) ExtractProperties(_ context.Context, _ string, source string, _ models.UserCriteria) ([]map[string]interface{}, error) {
	if p.extractErr != nil {
		return nil, p.extractErr
	}
	records := make([]map[string]interface{}, 0, p.perSource)
	for i := 0; i < p.perSource; i++ {
		records = append(records, map[string]interface{}{"address": fmt.Sprintf("%d %s Ave", i+1, source)})
	}
	return records, nil
}

func (p *fakeProvider) AnalyzeMarket(_ context.Context, req models.MarketRequest) (string, error) {
	p.marketCalls++
	p.lastRequest = req
	if p.marketErr != nil {
		return "", p.marketErr
	}
	return "steady market", nil
}

func (p *fakeProvider) ValuateProperties(_ context.Context, _ models.MarketRequest) (string, error) {
	p.valuateCalls++
	return "fairly priced", nil
}

func (p *fakeProvider) GetProviderName() string { return "fake" }

type fakeProviderFactory struct {
	provider *fakeProvider
	apiKey   string
}

func (f *fakeProviderFactory) CreateProvider(apiKey string) (llm.LLMProvider, error) {
	f.apiKey = apiKey
	return f.provider, nil
}

type fakeLimiter struct {
	open      map[string]bool
	successes []string
	failures  []string
}

func (l *fakeLimiter) Wait(_ context.Context, domain string) error {
	if l.open[domain] {
		return fmt.Errorf("%s: %w", domain, ratelimit.ErrCircuitOpen)
	}
	return nil
}

func (l *fakeLimiter) RecordSuccess(domain string) { l.successes = append(l.successes, domain) }

func (l *fakeLimiter) RecordFailure(domain string, _ error) { l.failures = append(l.failures, domain) }

type memoryCache struct {
	entries map[string]string
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *memoryCache) Ping(context.Context) error { return nil }
func (m *memoryCache) Close() error               { return nil }

type harness struct {
	analyzer  *SequentialAnalyzer
	scraper   *fakeScraper
	scrapers  *fakeScraperFactory
	provider  *fakeProvider
	providers *fakeProviderFactory
	limiter   *fakeLimiter
	cache     *memoryCache
}

func newHarness(perSource int) *harness {
	cfg := config.NewDefaultConfig()
	h := &harness{
		scraper:  &fakeScraper{pages: map[string]string{}, failing: map[string]error{}},
		provider: &fakeProvider{perSource: perSource},
		limiter:  &fakeLimiter{open: map[string]bool{}},
		cache:    &memoryCache{entries: map[string]string{}},
	}
	h.scrapers = &fakeScraperFactory{scraper: h.scraper}
	h.providers = &fakeProviderFactory{provider: h.provider}
	h.analyzer = NewSequentialAnalyzer(cfg, h.scrapers, h.providers, h.cache, h.limiter)
	return h
}

func testInput(sources ...string) AnalysisInput {
	return AnalysisInput{
		City:        "Austin",
		State:       "TX",
		Criteria:    models.UserCriteria{BudgetRange: "$250,000 - $500,000", SpecialFeatures: "None specified"},
		Sources:     sources,
		Credentials: config.Credentials{ScrapingKey: "fc-key", LLMKey: "llm-key"},
	}
}

type progressRecord struct {
	fraction float64
	status   string
}

func recordProgress() (*[]progressRecord, ProgressSink) {
	var records []progressRecord
	return &records, ProgressFunc(func(fraction float64, status, _ string) {
		records = append(records, progressRecord{fraction, status})
	})
}

func TestSequentialAnalyzer_Success(t *testing.T) {
	h := newHarness(2)
	updates, sink := recordProgress()

	outcome := h.analyzer.Run(context.Background(), testInput("zillow", "redfin"), sink)
	require.False(t, outcome.Failed(), outcome.FailureMessage())

	result := outcome.Result()
	assert.Len(t, result.Properties, 4)
	assert.Equal(t, 4, result.TotalProperties)
	assert.Equal(t, "steady market", result.MarketAnalysis)
	assert.Equal(t, "fairly priced", result.PropertyValuations)

	assert.Equal(t, "zillow", result.Properties[0]["source"])
	assert.Equal(t, "https://www.zillow.com/homes/for_sale/austin-tx/", result.Properties[0]["listing_url"])
	assert.Equal(t, "redfin", result.Properties[3]["source"])

	assert.Equal(t, "fc-key", h.scrapers.apiKey)
	assert.Equal(t, "llm-key", h.providers.apiKey)
	assert.True(t, h.scraper.cleaned)
	assert.Equal(t, []string{"www.zillow.com", "www.redfin.com"}, h.limiter.successes)
	assert.Equal(t, "Austin", h.provider.lastRequest.City)
	assert.Len(t, h.provider.lastRequest.Properties, 4)

	require.NotEmpty(t, *updates)
	last := 0.0
	for _, u := range *updates {
		assert.GreaterOrEqual(t, u.fraction, last)
		last = u.fraction
	}
	assert.Equal(t, progressRecord{0.05, "Starting analysis"}, (*updates)[0])
	assert.Equal(t, progressRecord{1.0, "Analysis complete"}, (*updates)[len(*updates)-1])
	assert.Contains(t, *updates, progressRecord{0.1, "Scraping zillow"})
	assert.Contains(t, *updates, progressRecord{0.7, "Analyzing market"})
	assert.Contains(t, *updates, progressRecord{0.85, "Valuing properties"})
}

func TestSequentialAnalyzer_KeepsExistingListingURL(t *testing.T) {
	h := newHarness(0)
	h.analyzer.providers = &staticProviderFactory{provider: &urlProvider{fakeProvider: h.provider}}

	outcome := h.analyzer.Run(context.Background(), testInput("zillow"), nil)
	require.False(t, outcome.Failed())
	assert.Equal(t, "https://www.zillow.com/homedetails/1", outcome.Result().Properties[0]["listing_url"])
}

type urlProvider struct {
	*fakeProvider
}

func (p *urlProvider) ExtractProperties(context.Context, string, string, models.UserCriteria) ([]map[string]interface{}, error) {
	return []map[string]interface{}{{"listing_url": "https://www.zillow.com/homedetails/1"}}, nil
}

type staticProviderFactory struct {
	provider llm.LLMProvider
}

func (f *staticProviderFactory) CreateProvider(string) (llm.LLMProvider, error) {
	return f.provider, nil
}

func TestSequentialAnalyzer_TruncatesToMaxProperties(t *testing.T) {
	h := newHarness(20)

	outcome := h.analyzer.Run(context.Background(), testInput("zillow", "trulia"), NoopProgress{})
	require.False(t, outcome.Failed())
	assert.Len(t, outcome.Result().Properties, 25)
	assert.Equal(t, 25, outcome.Result().TotalProperties)
}

func TestSequentialAnalyzer_AllSourcesFail(t *testing.T) {
	h := newHarness(2)
	h.scraper.failing["https://www.zillow.com/homes/for_sale/austin-tx/"] = errors.New("blocked")

	outcome := h.analyzer.Run(context.Background(), testInput("zillow", "craigslist"), NoopProgress{})
	require.True(t, outcome.Failed())
	assert.Contains(t, outcome.FailureMessage(), "failed to collect listings from any selected website: ")
	assert.Contains(t, outcome.FailureMessage(), "zillow: blocked")
	assert.Contains(t, outcome.FailureMessage(), "craigslist: unsupported listing source")
	assert.Equal(t, []string{"www.zillow.com"}, h.limiter.failures)
	assert.Zero(t, h.provider.marketCalls)
}

func TestSequentialAnalyzer_PartialFailureStillSucceeds(t *testing.T) {
	h := newHarness(1)
	h.scraper.failing["https://www.trulia.com/TX/Austin/"] = errors.New("timeout")

	outcome := h.analyzer.Run(context.Background(), testInput("trulia", "zillow"), NoopProgress{})
	require.False(t, outcome.Failed())
	assert.Equal(t, 1, outcome.Result().TotalProperties)
	assert.Equal(t, "zillow", outcome.Result().Properties[0]["source"])
}

func TestSequentialAnalyzer_NoPropertiesSkipsLLM(t *testing.T) {
	h := newHarness(0)

	outcome := h.analyzer.Run(context.Background(), testInput("zillow"), NoopProgress{})
	require.False(t, outcome.Failed())

	result := outcome.Result()
	assert.NotNil(t, result.Properties)
	assert.Empty(t, result.Properties)
	assert.Equal(t, "No properties matching the criteria were found in Austin.", result.MarketAnalysis)
	assert.Empty(t, result.PropertyValuations)
	assert.Zero(t, h.provider.marketCalls)
	assert.Zero(t, h.provider.valuateCalls)
}

func TestSequentialAnalyzer_CircuitOpenSkipsSource(t *testing.T) {
	h := newHarness(1)
	h.limiter.open["www.zillow.com"] = true

	outcome := h.analyzer.Run(context.Background(), testInput("zillow", "redfin"), NoopProgress{})
	require.False(t, outcome.Failed())
	assert.Equal(t, 1, outcome.Result().TotalProperties)
	assert.Equal(t, []string{"https://www.redfin.com/city/search?q=Austin%2C+TX"}, h.scraper.calls)
}

func TestSequentialAnalyzer_UsesCache(t *testing.T) {
	h := newHarness(1)
	url := "https://www.zillow.com/homes/for_sale/austin-tx/"
	h.cache.entries[cache.ListingKey(url)] = "cached page"

	outcome := h.analyzer.Run(context.Background(), testInput("zillow", "homes"), NoopProgress{})
	require.False(t, outcome.Failed())
	assert.Equal(t, []string{"https://www.homes.com/austin-tx/"}, h.scraper.calls)
	assert.Contains(t, h.cache.entries, cache.ListingKey("https://www.homes.com/austin-tx/"))
}

func TestSequentialAnalyzer_LLMFailure(t *testing.T) {
	h := newHarness(1)
	h.provider.marketErr = errors.New("overloaded")

	outcome := h.analyzer.Run(context.Background(), testInput("zillow"), NoopProgress{})
	require.True(t, outcome.Failed())
	assert.Equal(t, "market analysis failed: overloaded", outcome.FailureMessage())
	assert.Zero(t, h.provider.valuateCalls)
}

func TestSequentialAnalyzer_ExtractionFailureCountsAsSourceError(t *testing.T) {
	h := newHarness(1)
	h.provider.extractErr = errors.New("bad json")

	outcome := h.analyzer.Run(context.Background(), testInput("zillow"), NoopProgress{})
	require.True(t, outcome.Failed())
	assert.Contains(t, outcome.FailureMessage(), "zillow: failed to extract properties: bad json")
}

func TestSequentialAnalyzer_CancelledContext(t *testing.T) {
	h := newHarness(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := h.analyzer.Run(ctx, testInput("zillow"), NoopProgress{})
	require.True(t, outcome.Failed())
	assert.Equal(t, context.Canceled.Error(), outcome.FailureMessage())
	assert.Empty(t, h.scraper.calls)
}

func TestOutcome(t *testing.T) {
	ok := Success(Result{MarketAnalysis: "m", TotalProperties: 1})
	assert.False(t, ok.Failed())
	assert.Empty(t, ok.FailureMessage())
	assert.Equal(t, "m", ok.Result().MarketAnalysis)

	failed := Failure("scrape timeout")
	assert.True(t, failed.Failed())
	assert.Equal(t, "scrape timeout", failed.FailureMessage())
	assert.Equal(t, Result{}, failed.Result())
}
