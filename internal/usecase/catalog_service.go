package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wishlink/backend/internal/domain"
)

// ErrorPolicy controls what happens to a source URL whose processing fails
type ErrorPolicy int

const (
	// SkipSilently drops the failed URL and moves on
	SkipSilently ErrorPolicy = iota
	// RecordPlaceholder emits an identifier-less error record so the caller
	// can show the user which input went wrong
	RecordPlaceholder
)

// CatalogConfig holds configuration for the catalog service
type CatalogConfig struct {
	MaxInputURLs       int
	MaxItems           int
	MaxWorkers         int
	ItemTimeout        time.Duration
	Policy             ErrorPolicy
	EnableDebugLogging bool
}

// CatalogService runs the full discovery pipeline over a batch of input
// URLs: resolve each link, fetch the page, expand listing pages into product
// links, extract a record per product, and deduplicate by identifier.
//
// Per-item failures are swallowed by design: one dead link or blocked fetch
// must never abort the batch. The only batch-level error is a run that
// produces zero valid items.
type CatalogService struct {
	resolver  domain.LinkResolver
	fetcher   domain.PageFetcher
	extractor domain.ProductExtractor
	plog      domain.PipelineLogger

	maxInputURLs int
	maxItems     int
	maxWorkers   int
	itemTimeout  time.Duration
	policy       ErrorPolicy
	debug        bool
}

// NewCatalogService creates a catalog service. plog may be nil.
func NewCatalogService(
	resolver domain.LinkResolver,
	fetcher domain.PageFetcher,
	extractor domain.ProductExtractor,
	plog domain.PipelineLogger,
	config CatalogConfig,
) *CatalogService {
	maxInputURLs := config.MaxInputURLs
	if maxInputURLs <= 0 {
		maxInputURLs = 10
	}

	maxItems := config.MaxItems
	if maxItems <= 0 {
		maxItems = 100
	}

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	itemTimeout := config.ItemTimeout
	if itemTimeout <= 0 {
		itemTimeout = 20 * time.Second
	}

	return &CatalogService{
		resolver:     resolver,
		fetcher:      fetcher,
		extractor:    extractor,
		plog:         plog,
		maxInputURLs: maxInputURLs,
		maxItems:     maxItems,
		maxWorkers:   maxWorkers,
		itemTimeout:  itemTimeout,
		policy:       config.Policy,
		debug:        config.EnableDebugLogging,
	}
}

// collector accumulates records across workers. The dedup set and the item
// cap live behind one mutex so concurrent product fetches cannot race on
// duplicate detection.
type collector struct {
	mutex      sync.Mutex
	items      []domain.ProductRecord
	seen       map[string]bool
	duplicates int
	errors     int
	maxItems   int
}

// add appends a record unless its identifier was already seen or the run is
// full. Returns false once the item cap is reached.
func (c *collector) add(record domain.ProductRecord) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(c.items) >= c.maxItems {
		return false
	}
	if record.Identifier != "" && c.seen[record.Identifier] {
		c.duplicates++
		return true
	}
	if record.Identifier != "" {
		c.seen[record.Identifier] = true
	}
	c.items = append(c.items, record)
	return true
}

func (c *collector) full() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items) >= c.maxItems
}

func (c *collector) recordError() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors++
}

// BuildCatalog processes up to maxInputURLs input URLs and returns the
// aggregated catalog. Input beyond the cap is ignored.
func (s *CatalogService) BuildCatalog(ctx context.Context, urls []string) (*domain.Catalog, error) {
	if len(urls) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	if len(urls) > s.maxInputURLs {
		urls = urls[:s.maxInputURLs]
	}

	col := &collector{
		seen:     make(map[string]bool),
		maxItems: s.maxItems,
	}

	for _, sourceURL := range urls {
		if col.full() || ctx.Err() != nil {
			break
		}
		s.processSource(ctx, sourceURL, col)
	}

	validItems := 0
	for _, item := range col.items {
		if item.Identifier != "" {
			validItems++
		}
	}

	s.logInfo(fmt.Sprintf("catalog run finished: %d items, %d duplicates skipped, %d errors",
		len(col.items), col.duplicates, col.errors))

	if validItems == 0 {
		return nil, domain.ErrNoProductsFound
	}

	return &domain.Catalog{
		Items:             col.items,
		DuplicatesSkipped: col.duplicates,
		Errors:            col.errors,
	}, nil
}

// processSource handles one input URL end to end: resolve, fetch, expand to
// product links, extract products concurrently.
func (s *CatalogService) processSource(ctx context.Context, sourceURL string, col *collector) {
	resolved := s.resolver.Resolve(ctx, sourceURL)
	if s.debug && resolved != sourceURL {
		log.Printf("[CATALOG] resolved %s -> %s", sourceURL, resolved)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	doc, err := s.fetcher.FetchPage(fetchCtx, resolved)
	cancel()
	if err != nil {
		s.logWarning("source page fetch failed", resolved)
		col.recordError()
		if s.policy == RecordPlaceholder {
			col.add(placeholderRecord(sourceURL))
		}
		return
	}

	links := s.extractor.ExtractListingLinks(doc, resolved)
	if len(links) == 0 {
		s.logWarning("no product links found", resolved)
		col.recordError()
		if s.policy == RecordPlaceholder {
			col.add(placeholderRecord(sourceURL))
		}
		return
	}

	s.logInfo(fmt.Sprintf("found %d product links", len(links)), resolved)
	s.processProducts(ctx, links, col)
}

// processProducts fetches and extracts product pages through a bounded
// worker pool. Each unit runs under its own deadline so one hanging fetch
// cannot stall the batch; a unit past its deadline counts as a fetch
// failure.
func (s *CatalogService) processProducts(ctx context.Context, links []string, col *collector) {
	jobs := make(chan string, len(links))

	workers := s.maxWorkers
	if workers > len(links) {
		workers = len(links)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for productURL := range jobs {
				if col.full() || ctx.Err() != nil {
					continue
				}
				s.processProduct(ctx, productURL, col)
			}
		}()
	}

	for _, link := range links {
		jobs <- link
	}
	close(jobs)

	wg.Wait()
}

// processProduct extracts one product record. Every failure here is
// skip-and-continue: a bad product page is "not found", not a batch fault.
func (s *CatalogService) processProduct(ctx context.Context, productURL string, col *collector) {
	itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	doc, err := s.fetcher.FetchPage(itemCtx, productURL)
	if err != nil {
		if s.debug {
			log.Printf("[CATALOG] skipping %s: %v", productURL, err)
		}
		col.recordError()
		return
	}

	record, err := s.extractor.ExtractProduct(doc, productURL)
	if err != nil {
		if s.debug {
			log.Printf("[CATALOG] skipping %s: %v", productURL, err)
		}
		col.recordError()
		return
	}

	if !col.add(*record) {
		return
	}
	s.logSuccess("parsed product "+record.Identifier, record.SourceURL)
}

// placeholderRecord builds the identifier-less error item emitted under the
// RecordPlaceholder policy
func placeholderRecord(sourceURL string) domain.ProductRecord {
	tail := sourceURL
	if len(tail) > 60 {
		tail = tail[len(tail)-60:]
	}
	return domain.ProductRecord{
		Title:     "Error: " + tail,
		Price:     "N/A",
		SourceURL: sourceURL,
	}
}

func (s *CatalogService) logInfo(message string, data ...string) {
	if s.plog != nil {
		s.plog.Info(message, data...)
	}
}

func (s *CatalogService) logWarning(message string, data ...string) {
	if s.plog != nil {
		s.plog.Warning(message, data...)
	}
}

func (s *CatalogService) logSuccess(message string, data ...string) {
	if s.plog != nil {
		s.plog.Success(message, data...)
	}
}
