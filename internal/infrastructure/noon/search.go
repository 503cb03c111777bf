// Package noon queries the secondary retailer's public search page and
// extracts unscored product candidates from its markup.
package noon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/wishlink/backend/internal/domain"
)

// StoreName identifies this retailer in alternate listings
const StoreName = "noon"

// skuPattern matches the store's product identifier in a listing URL
var skuPattern = regexp.MustCompile(`/([A-Z0-9-]+)/p/?`)

// Client talks to the retailer's search endpoint
type Client struct {
	httpClient    *http.Client
	searchBaseURL string
	maxCandidates int
	rateLimiter   *rate.Limiter
	cache         domain.CacheRepository
	cacheTTL      time.Duration
	debug         bool
}

// Options configures a search client
type Options struct {
	SearchBaseURL  string
	Timeout        time.Duration
	MaxCandidates  int
	RequestsPerMin int
	// Cache is optional; search responses are remembered for CacheTTL
	Cache    domain.CacheRepository
	CacheTTL time.Duration
	Debug    bool
}

// NewClient creates a search client
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	maxCandidates := opts.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 5
	}

	requestsPerMin := opts.RequestsPerMin
	if requestsPerMin <= 0 {
		requestsPerMin = 30
	}

	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		searchBaseURL: opts.SearchBaseURL,
		maxCandidates: maxCandidates,
		rateLimiter:   rate.NewLimiter(rate.Limit(float64(requestsPerMin)/60.0), 5),
		cache:         opts.Cache,
		cacheTTL:      opts.CacheTTL,
		debug:         opts.Debug,
	}
}

// Search runs a free-text query against the store's search page and returns
// up to maxCandidates unscored listings.
func (c *Client) Search(ctx context.Context, query string) ([]domain.MatchCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidRequest
	}

	cacheKey := "noon:" + strings.ToLower(query)
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey); err == nil {
			if candidates, ok := cached.([]domain.MatchCandidate); ok {
				if c.debug {
					log.Printf("[NOON] cache hit for %q (%d candidates)", query, len(candidates))
				}
				return candidates, nil
			}
		}
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	searchURL := fmt.Sprintf("%s?q=%s", c.searchBaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search status %d", domain.ErrFetchFailed, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", domain.ErrFetchFailed, err)
	}

	candidates := c.extractCandidates(doc)
	if c.debug {
		log.Printf("[NOON] %d candidates for %q", len(candidates), query)
	}

	if c.cache != nil && len(candidates) > 0 {
		_ = c.cache.Set(ctx, cacheKey, candidates, c.cacheTTL)
	}

	return candidates, nil
}

// extractCandidates tries the dedicated search-result markup first and only
// falls back to a generic product-anchor scan when that yields nothing.
func (c *Client) extractCandidates(doc *goquery.Document) []domain.MatchCandidate {
	candidates := c.extractFromResultCards(doc)
	if len(candidates) == 0 {
		candidates = c.extractFromProductAnchors(doc)
	}
	return candidates
}

// extractFromResultCards walks the store's tagged search-result elements
func (c *Client) extractFromResultCards(doc *goquery.Document) []domain.MatchCandidate {
	var candidates []domain.MatchCandidate

	doc.Find(`[data-qa="product-name"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= c.maxCandidates {
			return false
		}

		title := strings.TrimSpace(sel.Text())

		link := sel.Closest("a")
		href, _ := link.Attr("href")
		productURL := absoluteURL(href)
		if title == "" || productURL == "" {
			return true
		}

		card := link.Closest(`.productContainer, [class*="product"], [data-qa]`)
		price := strings.TrimSpace(card.Find(`[data-qa="product-price"], [class*="price"]`).First().Text())

		img := card.Find("img").First()
		image, ok := img.Attr("src")
		if !ok || image == "" {
			image, _ = img.Attr("data-src")
		}

		candidates = append(candidates, domain.MatchCandidate{
			Title:    title,
			Price:    FormatPrice(price),
			ImageURL: stripQuery(image),
			URL:      stripQuery(productURL),
			SKU:      extractSKU(productURL),
		})
		return true
	})

	return candidates
}

// extractFromProductAnchors is the loose fallback: any anchor pointing at a
// product path, with title and price scraped from the nearest container
func (c *Client) extractFromProductAnchors(doc *goquery.Document) []domain.MatchCandidate {
	var candidates []domain.MatchCandidate

	doc.Find(`a[href*="/p/"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(candidates) >= c.maxCandidates {
			return false
		}

		href, _ := sel.Attr("href")
		if !strings.Contains(href, "/p/") || strings.Contains(href, "/brand/") {
			return true
		}
		productURL := absoluteURL(href)

		container := sel.Closest("div").Parent()
		title := strings.TrimSpace(container.Find(`h2, h3, [class*="title"], [class*="name"]`).First().Text())
		if title == "" {
			title = strings.TrimSpace(sel.Text())
		}
		if len(title) < 5 {
			return true
		}

		price := strings.TrimSpace(container.Find(`[class*="price"]`).First().Text())

		img := container.Find("img").First()
		image, ok := img.Attr("src")
		if !ok || image == "" {
			image, _ = img.Attr("data-src")
		}

		candidates = append(candidates, domain.MatchCandidate{
			Title:    title,
			Price:    FormatPrice(price),
			ImageURL: stripQuery(image),
			URL:      stripQuery(productURL),
			SKU:      extractSKU(productURL),
		})
		return true
	})

	return candidates
}

// setBrowserHeaders applies a realistic desktop browser profile
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "max-age=0")
}

// absoluteURL prefixes store-relative hrefs with the storefront host
func absoluteURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://www.noon.com" + href
}

// stripQuery drops query parameters and fragments from a URL
func stripQuery(rawURL string) string {
	if idx := strings.IndexAny(rawURL, "?#"); idx >= 0 {
		return rawURL[:idx]
	}
	return rawURL
}

// extractSKU pulls the store identifier out of a product URL, or ""
func extractSKU(rawURL string) string {
	m := skuPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}
