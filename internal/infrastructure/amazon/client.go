package amazon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/wishlink/backend/internal/domain"
)

// Client fetches retailer pages with browser-like headers. It expects URLs
// that have already been through the Resolver, but tolerates server-side
// redirects (the underlying client follows them here, unlike the Resolver's).
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a page-fetching client. requestsPerMin bounds outbound
// calls so batch parsing does not hammer the retailer.
func NewClient(timeout time.Duration, requestsPerMin int) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if requestsPerMin <= 0 {
		requestsPerMin = 30
	}

	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMin)/60.0), 5)

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// FetchPage retrieves pageURL and returns the parsed document. Failures come
// back as typed errors the caller can skip or retry on; FetchPage itself
// never retries.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	applyHeaders(req, 0)

	if c.debug {
		log.Printf("[FETCH] GET %s", pageURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d for %s", domain.ErrFetchFailed, resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", domain.ErrFetchFailed, err)
	}

	if isBotChallenge(doc) {
		return nil, fmt.Errorf("%w: %s", domain.ErrBotBlocked, pageURL)
	}

	return doc, nil
}

// isBotChallenge detects the retailer's captcha interstitial, which is
// served with status 200 and would otherwise parse as an empty product page
func isBotChallenge(doc *goquery.Document) bool {
	if doc.Find("form[action*='validateCaptcha']").Length() > 0 {
		return true
	}
	title := strings.ToLower(doc.Find("title").First().Text())
	return strings.Contains(title, "robot check") || strings.Contains(title, "captcha")
}
