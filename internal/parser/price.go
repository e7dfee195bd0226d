package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	pricePattern   = regexp.MustCompile(`[0-9][0-9,]*`)
	nonNumericChar = regexp.MustCompile(`[^0-9.]`)
)

// NormalizePrice converts a raw price string to whole JPY. All
// characters except digits and a decimal point are stripped, sub-unit
// precision is truncated (JPY has no minor unit), and empty or
// non-positive results are rejected.
func NormalizePrice(raw string) (int, error) {
	cleaned := nonNumericChar.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, ErrMalformedPrice
	}
	// Keep only the first decimal point
	if i := strings.Index(cleaned, "."); i >= 0 {
		cleaned = cleaned[:i+1] + strings.ReplaceAll(cleaned[i+1:], ".", "")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, ErrMalformedPrice
	}

	price := int(v)
	if price <= 0 {
		return 0, ErrMalformedPrice
	}
	return price, nil
}

// extractJPYPrice pulls the first yen amount out of display text like
// "¥12,800（税込）" or "12,800円". Returns 0 when no digits are present.
func extractJPYPrice(text string) int {
	text = strings.NewReplacer("¥", "", "￥", "", "円", "", "税込", "").Replace(text)
	match := pricePattern.FindString(text)
	if match == "" {
		return 0
	}
	price, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil || price <= 0 {
		return 0
	}
	return price
}

// absolutizeURL resolves a possibly relative asset URL against the page
func absolutizeURL(assetURL, pageURL string) string {
	if assetURL == "" || strings.HasPrefix(assetURL, "http://") || strings.HasPrefix(assetURL, "https://") {
		return assetURL
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return assetURL
	}
	ref, err := url.Parse(assetURL)
	if err != nil {
		return assetURL
	}
	return base.ResolveReference(ref).String()
}
