package processors

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentCleaner_HTMLListingCards(t *testing.T) {
	html := `<html><head><title>Homes</title><script>var x = 1;</script></head>
<body>
  <nav>Buy Rent Sell</nav>
  <ul>
    <li class="search-result"><article>123 Main St, Austin TX  $450,000   3 bd 2 ba 1,800 sqft</article></li>
    <li class="search-result"><article>9 Oak Ave, Austin TX $610,000 4 bd 3 ba 2,400 sqft</article></li>
  </ul>
  <footer>Copyright</footer>
</body></html>`

	text, err := NewContentCleaner().Clean(html, 0)
	require.NoError(t, err)

	assert.Contains(t, text, "123 Main St, Austin TX $450,000 3 bd 2 ba 1,800 sqft")
	assert.Contains(t, text, "9 Oak Ave")
	assert.NotContains(t, text, "Buy Rent Sell")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "Copyright")
}

func TestContentCleaner_HTMLFallsBackToMain(t *testing.T) {
	html := `<html><body><nav>menu</nav><main>  Only   main content here </main></body></html>`

	text, err := NewContentCleaner().Clean(html, 0)
	require.NoError(t, err)
	assert.Equal(t, "Only main content here", text)
}

func TestContentCleaner_Markdown(t *testing.T) {
	md := "# Austin homes\n\n\n\n![photo](https://img/1.jpg)  **$450,000**   3 bd\n\n\n\nNext"

	text, err := NewContentCleaner().Clean(md, 0)
	require.NoError(t, err)
	assert.Equal(t, "# Austin homes\n\n**$450,000** 3 bd\n\nNext", text)
}

func TestContentCleaner_Truncates(t *testing.T) {
	md := strings.Repeat("a", 100)

	text, err := NewContentCleaner().Clean(md, 10)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 10)+"...", text)
}

func TestContentCleaner_TruncatesOnRuneBoundary(t *testing.T) {
	md := "Café " + strings.Repeat("ü", 20)

	text, err := NewContentCleaner().Clean(md, 8)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(text))
	assert.Equal(t, "Café ü...", text)
}
