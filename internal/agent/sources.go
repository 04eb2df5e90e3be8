package agent

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"realestate-agent/pkg/utils"
)

type sourceURLBuilder func(city, state string) string

var listingSources = map[string]sourceURLBuilder{
	"zillow": func(city, state string) string {
		return "https://www.zillow.com/homes/for_sale/" + joinNonEmpty("-", utils.Slugify(city, "-"), utils.Slugify(state, "-")) + "/"
	},
	"realtor": func(city, state string) string {
		return "https://www.realtor.com/realestateandhomes-search/" + joinNonEmpty("_", titleWords(city, "_"), strings.ToUpper(strings.TrimSpace(state)))
	},
	"trulia": func(city, state string) string {
		return "https://www.trulia.com/" + joinNonEmpty("/", strings.ToUpper(strings.TrimSpace(state)), titleWords(city, "_")) + "/"
	},
	"homes": func(city, state string) string {
		return "https://www.homes.com/" + joinNonEmpty("-", utils.Slugify(city, "-"), utils.Slugify(state, "-")) + "/"
	},
	"redfin": func(city, state string) string {
		return "https://www.redfin.com/city/search?q=" + url.QueryEscape(joinNonEmpty(", ", strings.TrimSpace(city), strings.TrimSpace(state)))
	},
}

// SupportedSources lists the built-in source identifiers
func SupportedSources() []string {
	return []string{"zillow", "realtor", "trulia", "homes", "redfin"}
}

// ResolveSourceURL maps a source identifier (e.g. "Zillow", "Realtor.com") or an
// absolute http(s) URL to the listing-search page to scrape
func ResolveSourceURL(source, city, state string) (string, error) {
	trimmed := strings.TrimSpace(source)
	if u, err := url.Parse(trimmed); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return trimmed, nil
	}

	build, ok := listingSources[normalizeSource(trimmed)]
	if !ok {
		return "", fmt.Errorf("unsupported listing source %q", source)
	}
	return build(city, state), nil
}

// normalizeSource lower-cases and drops spaces, dashes, a leading "www." and a trailing ".com"
func normalizeSource(source string) string {
	s := strings.ToLower(strings.TrimSpace(source))
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimSuffix(s, ".com")
	return strings.NewReplacer(" ", "", "-", "", ".", "").Replace(s)
}

func titleWords(s, sep string) string {
	words := strings.Fields(s)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, sep)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
