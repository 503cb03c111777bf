package usecase

import (
	"context"
	"log"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wishlink/backend/internal/domain"
)

// Compiled regex patterns for title normalization
var (
	conditionWordsPattern = regexp.MustCompile(`(?i)\b(new|used|refurbished|renewed)\b`)
	sizeTokenPattern      = regexp.MustCompile(`(?i)\b\d+(\.\d+)?\s*(gb|tb|mb|kg|g|cm|mm|inch|"|')\b`)
	colorWordsPattern     = regexp.MustCompile(`(?i)\b(black|white|red|blue|green|yellow|pink|purple|gray|silver|gold)\b`)
	punctuationPattern    = regexp.MustCompile(`[^\w\s]`)
	multiSpacePattern     = regexp.MustCompile(`\s+`)
	brandSplitPattern     = regexp.MustCompile(`[\s:,\-]`)
	priceAmountPattern    = regexp.MustCompile(`\b(\d{1,6}(?:[.,]\d{2})?)\b`)
)

// Score component budgets: keyword overlap dominates, price proximity is a
// strong secondary signal, brand identity a smaller one. Total caps at 100.
const (
	keywordScoreMax      = 50.0
	brandScoreExact      = 20.0
	brandScorePartial    = 10.0
	priceScoreMax        = 30.0
	priceProximityCutoff = 0.5 // relative difference beyond this scores nothing
)

// stopWords are dropped from titles before keyword comparison
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "pack": true, "set": true, "kit": true,
}

// knownBrands is checked before falling back to the first title word.
// Treat as configuration to extend as new brands show up in wishlists.
var knownBrands = []string{
	"funko", "pop", "lego", "samsung", "apple", "sony", "lg", "philips",
	"nike", "adidas", "puma", "reebok", "converse",
	"logitech", "razer", "corsair", "hyperx",
	"national", "geographic", "mattel", "hasbro",
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	MinMatchScore      int
	EnableDebugLogging bool
}

// MatchingService decides whether a listing found on the secondary retailer
// is the same physical product as a reference listing, via a weighted
// keyword/brand/price heuristic.
type MatchingService struct {
	searcher      domain.CandidateSearcher
	minMatchScore int
	debug         bool
}

// NewMatchingService creates a matching service with the given configuration
func NewMatchingService(searcher domain.CandidateSearcher, config MatchConfig) *MatchingService {
	threshold := config.MinMatchScore
	if threshold <= 0 {
		threshold = 40
	}

	return &MatchingService{
		searcher:      searcher,
		minMatchScore: threshold,
		debug:         config.EnableDebugLogging,
	}
}

// FindMatch searches the secondary retailer for referenceTitle, scores every
// candidate against the reference, and returns the best one if it clears the
// minimum score.
//
// "No match" is a normal outcome, reported as ErrNoCandidates (nothing found)
// or ErrLowConfidence (best candidate below threshold, returned alongside the
// error for diagnostics). Callers must not treat either as a fault.
func (s *MatchingService) FindMatch(ctx context.Context, referenceTitle, referencePrice string) (*domain.MatchResult, error) {
	if strings.TrimSpace(referenceTitle) == "" {
		return nil, domain.ErrInvalidRequest
	}

	candidates, err := s.searcher.Search(ctx, referenceTitle)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoCandidates
	}

	results := make([]domain.MatchResult, 0, len(candidates))
	for _, candidate := range candidates {
		score := s.scoreCandidate(referenceTitle, referencePrice, candidate)
		if s.debug {
			log.Printf("[MATCH] %q vs %q -> %d", truncate(referenceTitle, 40), truncate(candidate.Title, 40), score)
		}
		results = append(results, domain.MatchResult{MatchCandidate: candidate, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	best := results[0]
	if best.Score < s.minMatchScore {
		if s.debug {
			log.Printf("[MATCH] best score %d below threshold %d, rejecting", best.Score, s.minMatchScore)
		}
		return &best, domain.ErrLowConfidence
	}

	return &best, nil
}

// scoreCandidate computes the 0-100 match score from three weighted
// components: keyword overlap (50), brand identity (20), price proximity (30).
func (s *MatchingService) scoreCandidate(referenceTitle, referencePrice string, candidate domain.MatchCandidate) int {
	score := 0.0

	// Keyword overlap: fraction of reference keywords found (by substring
	// match in either direction) among the candidate's keywords
	refKeywords := extractKeywords(referenceTitle)
	candKeywords := extractKeywords(candidate.Title)

	matched := 0
	for _, word := range refKeywords {
		for _, candWord := range candKeywords {
			if strings.Contains(candWord, word) || strings.Contains(word, candWord) {
				matched++
				break
			}
		}
	}

	refCount := len(refKeywords)
	if refCount == 0 {
		refCount = 1
	}
	score += float64(matched) / float64(refCount) * keywordScoreMax

	// Brand identity: exact match scores full credit, one brand containing
	// the other scores half
	refBrand := extractBrand(referenceTitle)
	candBrand := extractBrand(candidate.Title)
	if refBrand != "" && candBrand != "" {
		if refBrand == candBrand {
			score += brandScoreExact
		} else if strings.Contains(refBrand, candBrand) || strings.Contains(candBrand, refBrand) {
			score += brandScorePartial
		}
	}

	// Price proximity: only when both sides carry a parseable amount, scaled
	// linearly to zero at 50% relative difference
	refValue, refOK := parsePriceValue(referencePrice)
	candValue, candOK := parsePriceValue(candidate.Price)
	if refOK && candOK && refValue > 0 {
		relDiff := math.Abs(refValue-candValue) / refValue
		if relDiff < priceProximityCutoff {
			score += (1 - relDiff) * priceScoreMax
		}
	}

	rounded := int(math.Round(score))
	if rounded > 100 {
		rounded = 100
	}
	if rounded < 0 {
		rounded = 0
	}
	return rounded
}

// extractKeywords normalizes a title to its significant words: lowercase,
// condition/size/color tokens and punctuation stripped, stop words and
// short words dropped.
func extractKeywords(title string) []string {
	cleaned := strings.ToLower(title)
	cleaned = conditionWordsPattern.ReplaceAllString(cleaned, "")
	cleaned = sizeTokenPattern.ReplaceAllString(cleaned, "")
	cleaned = colorWordsPattern.ReplaceAllString(cleaned, "")
	cleaned = punctuationPattern.ReplaceAllString(cleaned, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")

	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 || stopWords[word] {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// extractBrand pulls a brand token from a title: a known brand if one
// appears anywhere, otherwise the first word when it is long enough to be
// meaningful.
func extractBrand(title string) string {
	lower := strings.ToLower(title)
	for _, brand := range knownBrands {
		if strings.Contains(lower, brand) {
			return brand
		}
	}

	parts := brandSplitPattern.Split(title, 2)
	if len(parts) > 0 && len(parts[0]) > 2 {
		return strings.ToLower(parts[0])
	}
	return ""
}

// parsePriceValue extracts the first numeric amount from a price string
func parsePriceValue(priceText string) (float64, bool) {
	if priceText == "" {
		return 0, false
	}
	m := priceAmountPattern.FindStringSubmatch(priceText)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// truncate shortens a string for log lines
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
