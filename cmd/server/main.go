package main

import (
	"fmt"
	"log"
	"os"

	"github.com/wishlink/backend/config"
	httpDelivery "github.com/wishlink/backend/internal/delivery/http"
	"github.com/wishlink/backend/internal/infrastructure/amazon"
	"github.com/wishlink/backend/internal/infrastructure/cache"
	"github.com/wishlink/backend/internal/infrastructure/noon"
	"github.com/wishlink/backend/internal/infrastructure/parselog"
	"github.com/wishlink/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting WishLink Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	debug := cfg.Server.Environment == "development" || cfg.Matching.EnableDebugLogging

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	parseLog := parselog.New(parselog.DefaultCapacity)

	resolver := amazon.NewResolver(amazon.ResolverOptions{
		ShortenerDomains: cfg.Amazon.ShortenerDomains,
		MaxHops:          cfg.Amazon.MaxRedirectHops,
		Timeout:          cfg.Amazon.FetchTimeout,
		Cache:            memoryCache,
		CacheTTL:         cfg.Cache.ResolvedURLTTL,
		Debug:            debug,
	})

	amazonClient := amazon.NewClient(cfg.Amazon.FetchTimeout, cfg.Amazon.RequestsPerMin)
	amazonClient.SetDebug(debug)

	extractor := amazon.NewExtractor(cfg.Amazon.AffiliateTag, debug)

	noonClient := noon.NewClient(noon.Options{
		SearchBaseURL:  cfg.Noon.SearchBaseURL,
		Timeout:        cfg.Noon.FetchTimeout,
		MaxCandidates:  cfg.Noon.MaxCandidates,
		RequestsPerMin: cfg.Noon.RequestsPerMin,
		Cache:          memoryCache,
		CacheTTL:       cfg.Cache.SearchTTL,
		Debug:          debug,
	})

	// Initialize usecase layer
	catalogService := usecase.NewCatalogService(
		resolver,
		amazonClient,
		extractor,
		parseLog,
		usecase.CatalogConfig{
			MaxInputURLs:       cfg.Limits.MaxInputURLs,
			MaxItems:           cfg.Limits.MaxItems,
			MaxWorkers:         cfg.Limits.MaxWorkers,
			Policy:             usecase.RecordPlaceholder,
			EnableDebugLogging: debug,
		},
	)

	matchingService := usecase.NewMatchingService(
		noonClient,
		usecase.MatchConfig{
			MinMatchScore:      cfg.Matching.MinMatchScore,
			EnableDebugLogging: debug,
		},
	)

	log.Printf("Matching: threshold=%d, debug=%v", cfg.Matching.MinMatchScore, debug)
	log.Printf("Limits: urls=%d items=%d workers=%d",
		cfg.Limits.MaxInputURLs, cfg.Limits.MaxItems, cfg.Limits.MaxWorkers)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(catalogService, matchingService, parseLog)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
