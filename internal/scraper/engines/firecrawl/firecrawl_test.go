package firecrawl

import (
	"testing"

	"github.com/mendableai/firecrawl-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-agent/internal/config"
)

func TestNewFirecrawlScraper_RequiresKey(t *testing.T) {
	_, err := NewFirecrawlScraper(config.NewDefaultConfig(), "")
	assert.Error(t, err)
}

func TestNewFirecrawlScraper_Healthy(t *testing.T) {
	s, err := NewFirecrawlScraper(config.NewDefaultConfig(), "fc-test")
	require.NoError(t, err)
	assert.True(t, s.IsHealthy())
	s.Cleanup()
}

func TestDocumentContent(t *testing.T) {
	content, err := documentContent(&firecrawl.FirecrawlDocument{Markdown: "# Homes", HTML: "<h1>Homes</h1>"})
	require.NoError(t, err)
	assert.Equal(t, "# Homes", content)

	content, err = documentContent(&firecrawl.FirecrawlDocument{HTML: "<h1>Homes</h1>"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Homes</h1>", content)

	_, err = documentContent(&firecrawl.FirecrawlDocument{})
	assert.Error(t, err)

	_, err = documentContent(nil)
	assert.Error(t, err)
}
