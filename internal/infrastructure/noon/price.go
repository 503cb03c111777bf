package noon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyCodePattern = regexp.MustCompile(`(?i)\b(AED|USD|EUR|GBP|JPY|SAR|KWD|QAR|OMR|BHD)\b`)
	priceValuePattern   = regexp.MustCompile(`\b(\d{1,6}(?:[.,]\d{2})?)\b`)
	arabicScriptPattern = regexp.MustCompile("[؀-ۿ]")
	discountNoise       = regexp.MustCompile(`(?i)\boff\b|%.*$`)
)

// ExtractCurrency pulls a currency code out of a raw price string. The
// storefront is UAE-based, so AED is the default when nothing identifiable
// is present (including Arabic-script price text).
func ExtractCurrency(priceText string) string {
	if priceText == "" {
		return "AED"
	}

	if m := currencyCodePattern.FindStringSubmatch(priceText); m != nil {
		return strings.ToUpper(m[1])
	}

	switch {
	case strings.Contains(priceText, "$"):
		return "USD"
	case strings.Contains(priceText, "€"):
		return "EUR"
	case strings.Contains(priceText, "£"):
		return "GBP"
	case strings.Contains(priceText, "¥"):
		return "JPY"
	}

	if arabicScriptPattern.MatchString(priceText) {
		return "AED"
	}

	return "AED"
}

// ExtractPriceValue parses the first numeric amount in a price string.
// Returns false when no amount is present.
func ExtractPriceValue(priceText string) (float64, bool) {
	if priceText == "" {
		return 0, false
	}

	m := priceValuePattern.FindStringSubmatch(priceText)
	if m == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// FormatPrice normalizes a scraped price string to "<amount> <CUR>" with two
// decimals, e.g. "299.00 AED". Discount noise ("15% Off") is stripped first.
// Unparseable input is passed through; empty input becomes "N/A".
func FormatPrice(priceText string) string {
	if priceText == "" {
		return "N/A"
	}

	cleaned := strings.TrimSpace(discountNoise.ReplaceAllString(priceText, ""))

	currency := ExtractCurrency(cleaned)
	value, ok := ExtractPriceValue(cleaned)
	if !ok {
		return priceText
	}

	return fmt.Sprintf("%.2f %s", value, currency)
}
