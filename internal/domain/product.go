package domain

// ProductRecord is one product discovered on the primary retailer.
// Records are built once per catalog run and never mutated afterwards,
// except to append alternate listings found on other stores.
type ProductRecord struct {
	Identifier        string             `json:"asin"`
	Title             string             `json:"title"`
	Price             string             `json:"price"`
	Currency          string             `json:"currency,omitempty"`
	ImageURL          string             `json:"img,omitempty"`
	SourceURL         string             `json:"url"`
	AffiliateURL      string             `json:"affiliate,omitempty"`
	AlternateListings []AlternateListing `json:"alternate_listings,omitempty"`
}

// AlternateListing is a confirmed cross-retailer match for a product.
type AlternateListing struct {
	Store      string `json:"store"`
	URL        string `json:"url"`
	Price      string `json:"price,omitempty"`
	ImageURL   string `json:"img,omitempty"`
	MatchScore int    `json:"match_score,omitempty"`
}

// MatchCandidate is an unconfirmed listing pulled from a secondary
// retailer's search results, before scoring.
type MatchCandidate struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	ImageURL string `json:"img"`
	URL      string `json:"url"`
	SKU      string `json:"sku"`
}

// MatchResult is a scored candidate. Score is 0-100; candidates below the
// configured threshold are never surfaced as matches.
type MatchResult struct {
	MatchCandidate
	Score int `json:"matchScore"`
}

// Catalog is the output of one aggregation run over a batch of input URLs.
type Catalog struct {
	Items             []ProductRecord `json:"items"`
	DuplicatesSkipped int             `json:"duplicates_skipped"`
	Errors            int             `json:"errors"`
}
