package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"realestate-agent/pkg/utils"
)

var (
	whitespaceRegex    = regexp.MustCompile(`[ \t]+`)
	blankLinesRegex    = regexp.MustCompile(`\n{3,}`)
	markdownImageRegex = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	dataURIRegex       = regexp.MustCompile(`\(data:[^)]*\)`)
)

// ContentCleaner reduces scraped listing pages to the text an LLM needs
type ContentCleaner struct {
	removeTags       []string
	listingSelectors []string
}

func NewContentCleaner() *ContentCleaner {
	return &ContentCleaner{
		removeTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"form", "input", "button", "select", "textarea",
			"nav", "header", "footer", "aside", "menu",
			"svg", "meta", "link", "title", "base",
		},
		listingSelectors: []string{
			"article",
			"[data-testid*='property']", "[data-test*='property']",
			"[class*='property-card']", "[class*='listing-card']",
			"[class*='ListItem']", "li[class*='result']",
		},
	}
}

// Clean normalizes markdown or, for HTML input, extracts listing text first.
// The result is cut to maxChars when maxChars is positive.
func (cc *ContentCleaner) Clean(content string, maxChars int) (string, error) {
	text := content
	if looksLikeHTML(content) {
		extracted, err := cc.ExtractListingText(content)
		if err != nil {
			return "", err
		}
		text = extracted
	} else {
		text = cc.normalizeMarkdown(text)
	}

	return utils.Truncate(text, maxChars), nil
}

// ExtractListingText pulls text out of listing-like containers, falling back to main then body
func (cc *ContentCleaner) ExtractListingText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, tag := range cc.removeTags {
		doc.Find(tag).Remove()
	}

	var parts []string
	for _, selector := range cc.listingSelectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			if text := collapse(s.Text()); len(text) > 20 {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			break
		}
	}

	if len(parts) == 0 {
		for _, fallback := range []string{"main", "[role='main']", "body"} {
			if text := collapse(doc.Find(fallback).First().Text()); text != "" {
				parts = append(parts, text)
				break
			}
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

func (cc *ContentCleaner) normalizeMarkdown(md string) string {
	md = markdownImageRegex.ReplaceAllString(md, "")
	md = dataURIRegex.ReplaceAllString(md, "")

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRegex.ReplaceAllString(line, " "))
	}
	md = strings.Join(lines, "\n")
	md = blankLinesRegex.ReplaceAllString(md, "\n\n")

	return strings.TrimSpace(md)
}

func looksLikeHTML(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "<")
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
