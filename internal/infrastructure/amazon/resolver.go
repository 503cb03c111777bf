package amazon

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wishlink/backend/internal/domain"
)

// Resolver follows redirect chains for shortened retailer links (a.co,
// amzn.to and friends) to the canonical product or wishlist URL.
//
// Resolution is best-effort by contract: whatever goes wrong, the caller
// gets back a usable URL, never an error. The worst outcome is that the
// original shortened link is returned and downstream extraction fails to
// find a product on it.
type Resolver struct {
	httpClient *http.Client
	shorteners []string
	maxHops    int
	retryDelay time.Duration
	cache      domain.CacheRepository
	cacheTTL   time.Duration
	debug      bool
}

// ResolverOptions configures a Resolver
type ResolverOptions struct {
	ShortenerDomains []string
	MaxHops          int
	Timeout          time.Duration
	// Cache is optional; when set, resolved URLs are remembered for CacheTTL
	Cache    domain.CacheRepository
	CacheTTL time.Duration
	Debug    bool
}

// NewResolver creates a Resolver with redirect-following disabled on its
// HTTP client, so each hop of the chain is observed explicitly.
func NewResolver(opts ResolverOptions) *Resolver {
	maxHops := opts.MaxHops
	if maxHops <= 0 {
		maxHops = 5
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Resolver{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		shorteners: opts.ShortenerDomains,
		maxHops:    maxHops,
		retryDelay: 500 * time.Millisecond,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		debug:      opts.Debug,
	}
}

// Resolve returns the canonical URL behind rawURL. URLs whose host is not a
// known shortener domain are returned unchanged without any network call.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) string {
	if !r.isShortURL(rawURL) {
		return rawURL
	}

	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, "resolve:"+rawURL); err == nil {
			if resolved, ok := cached.(string); ok && resolved != "" {
				if r.debug {
					log.Printf("[RESOLVE] cache hit: %s -> %s", rawURL, resolved)
				}
				return resolved
			}
		}
	}

	resolved := r.followRedirects(ctx, rawURL)

	if r.cache != nil && resolved != rawURL {
		_ = r.cache.Set(ctx, "resolve:"+rawURL, resolved, r.cacheTTL)
	}

	return resolved
}

// followRedirects walks the redirect chain as an explicit bounded loop.
// Each request, retry, and blocked response consumes one hop of budget.
func (r *Resolver) followRedirects(ctx context.Context, rawURL string) string {
	current := rawURL
	headerIdx := 0

	for hop := 0; hop < r.maxHops; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			log.Printf("[RESOLVE] bad URL %q: %v", current, err)
			return rawURL
		}
		applyHeaders(req, headerIdx)

		resp, err := r.httpClient.Do(req)
		if err != nil {
			if isTransient(err) && hop < r.maxHops-1 {
				if r.debug {
					log.Printf("[RESOLVE] transient error on %s, retrying: %v", current, err)
				}
				if !r.sleep(ctx) {
					return current
				}
				continue
			}
			log.Printf("[RESOLVE] giving up on %s: %v", current, err)
			return rawURL
		}
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 300 && resp.StatusCode < 400:
			location := resp.Header.Get("Location")
			if location == "" {
				return current
			}
			next := absoluteLocation(current, location)
			if r.debug {
				log.Printf("[RESOLVE] %s -> %s", current, next)
			}
			current = next

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
			// Blocked: rotate to a different browser profile before retrying
			headerIdx++
			if r.debug {
				log.Printf("[RESOLVE] blocked on %s (status %d), rotating headers", current, resp.StatusCode)
			}
			if !r.sleep(ctx) {
				return current
			}

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return current

		default:
			// Terminal status on an intermediate hop; the last known URL is
			// still the most useful thing we have
			return current
		}
	}

	log.Printf("[RESOLVE] hop budget exhausted for %s, returning %s", rawURL, current)
	return current
}

// isShortURL reports whether the URL's host belongs to a shortener domain
func (r *Resolver) isShortURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	for _, domain := range r.shorteners {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// sleep waits the retry delay, aborting early if ctx is done
func (r *Resolver) sleep(ctx context.Context) bool {
	t := time.NewTimer(r.retryDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// absoluteLocation resolves a possibly-relative Location header against the
// URL that produced it
func absoluteLocation(base, location string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return location
	}
	locURL, err := url.Parse(location)
	if err != nil {
		return location
	}
	return baseURL.ResolveReference(locURL).String()
}

// isTransient reports whether a network error is worth retrying
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe")
}
