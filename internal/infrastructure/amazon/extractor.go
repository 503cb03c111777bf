package amazon

import (
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wishlink/backend/internal/domain"
)

// asinPattern matches the retailer's 10-character product identifier in a URL path
var asinPattern = regexp.MustCompile(`dp/([A-Z0-9]{10})`)

// Price strings arrive as "AED 299.00", "299.00 AED", "$19.99" or worse;
// these pull the amount and the currency token apart.
var (
	priceCurrencyFirst = regexp.MustCompile(`([A-Z]{3}|[€$£¥₹])\s*([\d,\.]+)`)
	priceCurrencyLast  = regexp.MustCompile(`([\d,\.]+)\s*([A-Z]{3}|[€$£¥₹])`)
	nonAmountChars     = regexp.MustCompile(`[^\d,\.]`)
	nonCurrencyChars   = regexp.MustCompile(`[\d,\.\s]`)
	promoSuffixPattern = regexp.MustCompile(`\s*[\(\[].*$`)
)

// maxListingLinks caps how many product links one listing page may emit
const maxListingLinks = 100

// maxTitleLength bounds extracted titles
const maxTitleLength = 120

// titleStrategy is one attempt at pulling a product title out of a document.
// Strategies run in order; the first non-empty result wins.
type titleStrategy func(doc *goquery.Document) string

// titleStrategies is ordered most-reliable-first. Retailer markup drifts, so
// treat this as configuration to keep current rather than fixed logic.
var titleStrategies = []titleStrategy{
	func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find("#productTitle").First().Text())
	},
	func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find("h1.product-title, h1 span.product-title-word-break").First().Text())
	},
	func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find(`[data-testid="product-title"]`).First().Text())
	},
}

// priceStrategy is one attempt at pulling a raw price and currency token
type priceStrategy func(doc *goquery.Document) (price, currency string)

var priceStrategies = []priceStrategy{
	// Whole + fraction sub-elements with an adjacent currency symbol
	func(doc *goquery.Document) (string, string) {
		whole := strings.TrimSpace(doc.Find(`.a-price[data-a-color="price"] .a-price-whole, .a-price .a-price-whole`).First().Text())
		if whole == "" {
			return "", ""
		}
		fraction := strings.TrimSpace(doc.Find(`.a-price[data-a-color="price"] .a-price-fraction, .a-price .a-price-fraction`).First().Text())
		symbol := strings.TrimSpace(doc.Find(`.a-price[data-a-color="price"] .a-price-symbol, .a-price .a-price-symbol`).First().Text())
		return whole + fraction, symbol
	},
	// Consolidated price in one hidden element
	func(doc *goquery.Document) (string, string) {
		full := strings.TrimSpace(doc.Find(`.a-price[data-a-color="price"] .a-offscreen, #corePrice_feature_div .a-offscreen`).First().Text())
		if full == "" {
			return "", ""
		}
		return splitPriceText(full)
	},
	// Selector names from older markup variants
	func(doc *goquery.Document) (string, string) {
		whole := strings.TrimSpace(doc.Find(`.price-whole, span[aria-hidden="true"].a-price-whole`).First().Text())
		if whole == "" {
			return "", ""
		}
		fraction := strings.TrimSpace(doc.Find(".price-fraction").First().Text())
		symbol := strings.TrimSpace(doc.Find(".price-symbol, .a-price-symbol").First().Text())
		return whole + fraction, symbol
	},
}

// imageSelectors is tried in order for the product hero image
var imageSelectors = []string{
	"#landingImage",
	".a-dynamic-image",
	`img[src*="images-amazon"]`,
	"[data-a-image-primary]",
}

// listingLinkSelectors locates product anchors on wishlist/collection pages.
// The first group is scoped to the wishlist item containers so cross-sell
// carousels and "show more" links are not swept in; the second is the looser
// page-wide fallback.
var listingLinkSelectors = []string{
	`#wl-item-view a[href*="/dp/"], ul.g-items a[href*="/dp/"]`,
	`.a-carousel-viewport a[href*="/dp/"], a[href*="/gp/product/"], .a-link-normal[href*="/dp/"], a[data-asin]`,
}

// domainCurrencies maps retailer domain suffixes to currency codes, used
// when the page markup does not expose a currency
var domainCurrencies = []struct {
	suffix   string
	currency string
}{
	{".ae", "AED"},
	{".co.uk", "GBP"},
	{".de", "EUR"},
	{".fr", "EUR"},
	{".es", "EUR"},
	{".it", "EUR"},
	{".in", "INR"},
	{".co.jp", "JPY"},
	{".jp", "JPY"},
	{".com", "USD"},
}

// symbolCurrencies maps currency symbols captured from markup to 3-letter codes
var symbolCurrencies = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
}

// Extractor turns fetched retailer documents into product records
type Extractor struct {
	affiliateTag string
	debug        bool
}

// NewExtractor creates an Extractor. affiliateTag may be empty, in which
// case records carry no affiliate URL.
func NewExtractor(affiliateTag string, debug bool) *Extractor {
	return &Extractor{
		affiliateTag: affiliateTag,
		debug:        debug,
	}
}

// ExtractListingLinks scans a wishlist or collection page for product links.
// Relative hrefs are absolutized against the page's own host, results are
// deduplicated in order and capped at maxListingLinks. A page with no product
// anchors that is itself a product page yields a one-element list.
func (e *Extractor) ExtractListingLinks(doc *goquery.Document, pageURL string) []string {
	host := hostOf(pageURL)

	var links []string
	seen := make(map[string]bool)

	for _, selector := range listingLinkSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if len(links) >= maxListingLinks {
				return
			}

			href, ok := sel.Attr("href")
			if !ok || href == "" {
				href, _ = sel.Attr("data-href")
			}
			if href == "" {
				return
			}

			if !strings.HasPrefix(href, "http") {
				href = "https://" + host + href
			}
			if !strings.Contains(href, "/dp/") {
				return
			}

			if asin := ExtractASIN(href); asin != "" && !seen[asin] {
				seen[asin] = true
				links = append(links, href)
			}
		})

		if len(links) > 0 {
			break
		}
	}

	// A single-product page stands in as its own one-element listing
	if len(links) == 0 {
		if asin := ExtractASIN(pageURL); asin != "" {
			links = append(links, fmt.Sprintf("https://%s/dp/%s", host, asin))
		}
	}

	if e.debug {
		log.Printf("[EXTRACT] %d product links on %s", len(links), pageURL)
	}

	return links
}

// ExtractProduct pulls a single product record out of a product page.
// A page without a title or without an identifier in its URL is not a
// product and yields ErrProductNotFound.
func (e *Extractor) ExtractProduct(doc *goquery.Document, productURL string) (*domain.ProductRecord, error) {
	asin := ExtractASIN(productURL)
	if asin == "" {
		return nil, fmt.Errorf("%w: no identifier in %s", domain.ErrProductNotFound, productURL)
	}

	title := extractFirst(doc, titleStrategies)
	title = cleanTitle(title)
	if title == "" {
		return nil, fmt.Errorf("%w: no title on %s", domain.ErrProductNotFound, productURL)
	}

	price, currency := extractPrice(doc)
	if currency == "" && price != "N/A" {
		currency = currencyForDomain(hostOf(productURL))
	}

	image := ""
	for _, selector := range imageSelectors {
		if src, ok := doc.Find(selector).First().Attr("src"); ok && src != "" {
			image = src
			break
		}
	}

	record := &domain.ProductRecord{
		Identifier: asin,
		Title:      title,
		Price:      price,
		Currency:   currency,
		ImageURL:   image,
		SourceURL:  productURL,
	}

	if e.affiliateTag != "" {
		record.AffiliateURL = fmt.Sprintf("https://%s/dp/%s?tag=%s", hostOf(productURL), asin, e.affiliateTag)
	}

	if e.debug {
		log.Printf("[EXTRACT] %s: %q %s %s", asin, truncate(title, 40), currency, price)
	}

	return record, nil
}

// ExtractASIN returns the product identifier embedded in a URL, or ""
func ExtractASIN(rawURL string) string {
	m := asinPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// extractFirst runs title strategies in order and returns the first hit
func extractFirst(doc *goquery.Document, strategies []titleStrategy) string {
	for _, strategy := range strategies {
		if value := strategy(doc); value != "" {
			return value
		}
	}
	return ""
}

// extractPrice runs the price cascade and normalizes the amount.
// An unparseable price is the literal "N/A", never an error.
func extractPrice(doc *goquery.Document) (string, string) {
	var price, currency string
	for _, strategy := range priceStrategies {
		price, currency = strategy(doc)
		if price != "" {
			break
		}
	}

	price = normalizePriceAmount(price)
	if price == "" {
		return "N/A", currency
	}

	if code, ok := symbolCurrencies[currency]; ok {
		currency = code
	}

	return price, currency
}

// splitPriceText separates a consolidated price string like "AED 299.00" or
// "299.00 AED" into amount and currency. When neither pattern fits, digits
// become the amount and everything else the currency.
func splitPriceText(text string) (price, currency string) {
	if m := priceCurrencyFirst.FindStringSubmatch(text); m != nil {
		return m[2], m[1]
	}
	if m := priceCurrencyLast.FindStringSubmatch(text); m != nil {
		return m[1], m[2]
	}

	price = nonAmountChars.ReplaceAllString(text, "")
	currency = strings.TrimSpace(nonCurrencyChars.ReplaceAllString(text, ""))
	return price, currency
}

// normalizePriceAmount strips whitespace and settles on "." as the decimal
// separator
func normalizePriceAmount(price string) string {
	price = strings.ReplaceAll(price, " ", "")
	price = strings.ReplaceAll(price, ",", ".")
	return price
}

// cleanTitle strips trailing bracketed promo suffixes and bounds the length
func cleanTitle(title string) string {
	title = promoSuffixPattern.ReplaceAllString(title, "")
	title = truncate(title, maxTitleLength)
	return strings.TrimSpace(title)
}

// currencyForDomain infers a currency from the retailer domain suffix
func currencyForDomain(host string) string {
	for _, entry := range domainCurrencies {
		if strings.HasSuffix(host, entry.suffix) {
			return entry.currency
		}
	}
	return ""
}

// hostOf returns the hostname of a URL, defaulting to the UAE storefront
// when the URL does not parse
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return "www.amazon.ae"
	}
	return parsed.Hostname()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
