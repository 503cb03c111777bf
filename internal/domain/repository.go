package domain

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// LinkResolver resolves shortened retailer links to their canonical URL.
// Resolution never fails: on any error the input URL is returned as-is.
type LinkResolver interface {
	Resolve(ctx context.Context, rawURL string) string
}

// PageFetcher retrieves a retailer page as a parsed document
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// CandidateSearcher queries a secondary retailer's search endpoint and
// returns unscored candidate listings
type CandidateSearcher interface {
	Search(ctx context.Context, query string) ([]MatchCandidate, error)
}

// ProductExtractor turns fetched retailer documents into product links and
// product records
type ProductExtractor interface {
	ExtractListingLinks(doc *goquery.Document, pageURL string) []string
	ExtractProduct(doc *goquery.Document, productURL string) (*ProductRecord, error)
}

// PipelineLogger records pipeline events for later inspection. Implemented
// by the parselog ring buffer.
type PipelineLogger interface {
	Info(message string, data ...string)
	Success(message string, data ...string)
	Warning(message string, data ...string)
	Error(message string, data ...string)
}
