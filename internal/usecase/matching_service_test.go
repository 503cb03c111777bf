package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/wishlink/backend/internal/domain"
)

// fakeSearcher returns canned candidates or a canned error
type fakeSearcher struct {
	candidates []domain.MatchCandidate
	err        error
	calls      int
	lastQuery  string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]domain.MatchCandidate, error) {
	f.calls++
	f.lastQuery = query
	return f.candidates, f.err
}

func TestFindMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("identical title and price scores 100", func(t *testing.T) {
		searcher := &fakeSearcher{candidates: []domain.MatchCandidate{
			{Title: "Funko Pop Batman Figure", Price: "89.00 AED", URL: "https://www.noon.com/x/p/"},
		}}
		service := NewMatchingService(searcher, MatchConfig{})

		result, err := service.FindMatch(ctx, "Funko Pop Batman Figure", "89.00 AED")
		if err != nil {
			t.Fatalf("FindMatch() error = %v", err)
		}
		if result.Score != 100 {
			t.Errorf("Score = %d, want 100", result.Score)
		}
		if searcher.lastQuery != "Funko Pop Batman Figure" {
			t.Errorf("search query = %q, want the reference title", searcher.lastQuery)
		}
	})

	t.Run("best candidate wins regardless of order", func(t *testing.T) {
		searcher := &fakeSearcher{candidates: []domain.MatchCandidate{
			{Title: "Stainless Steel Water Bottle", Price: "25.00 AED"},
			{Title: "Funko Pop Batman Figure", Price: "89.00 AED"},
		}}
		service := NewMatchingService(searcher, MatchConfig{})

		result, err := service.FindMatch(ctx, "Funko Pop Batman Figure", "89.00 AED")
		if err != nil {
			t.Fatalf("FindMatch() error = %v", err)
		}
		if result.Title != "Funko Pop Batman Figure" {
			t.Errorf("best candidate = %q, want the matching one", result.Title)
		}
	})

	t.Run("partial keyword overlap with matching brand and price", func(t *testing.T) {
		searcher := &fakeSearcher{candidates: []domain.MatchCandidate{
			{Title: "Lego Star Wars Falcon Model", Price: "349.00 AED"},
		}}
		service := NewMatchingService(searcher, MatchConfig{})

		// 4 of 6 reference keywords overlap (33), exact brand (20), equal
		// price (30): 83
		result, err := service.FindMatch(ctx, "Lego Star Wars Millennium Falcon Building Set", "349.00 AED")
		if err != nil {
			t.Fatalf("FindMatch() error = %v", err)
		}
		if result.Score != 83 {
			t.Errorf("Score = %d, want 83", result.Score)
		}
	})

	t.Run("unrelated candidate is low confidence", func(t *testing.T) {
		searcher := &fakeSearcher{candidates: []domain.MatchCandidate{
			{Title: "Stainless Steel Water Bottle", Price: "9.00 AED"},
		}}
		service := NewMatchingService(searcher, MatchConfig{})

		result, err := service.FindMatch(ctx, "Funko Pop Batman Figure", "89.00 AED")
		if !errors.Is(err, domain.ErrLowConfidence) {
			t.Fatalf("FindMatch() error = %v, want ErrLowConfidence", err)
		}
		if result == nil {
			t.Fatal("low-confidence result must still carry the best candidate")
		}
		if result.Score >= 40 {
			t.Errorf("Score = %d, want below the default threshold", result.Score)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		searcher := &fakeSearcher{}
		service := NewMatchingService(searcher, MatchConfig{})

		_, err := service.FindMatch(ctx, "Funko Pop Batman Figure", "89.00 AED")
		if !errors.Is(err, domain.ErrNoCandidates) {
			t.Errorf("FindMatch() error = %v, want ErrNoCandidates", err)
		}
	})

	t.Run("empty reference title", func(t *testing.T) {
		searcher := &fakeSearcher{}
		service := NewMatchingService(searcher, MatchConfig{})

		_, err := service.FindMatch(ctx, "   ", "89.00 AED")
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("FindMatch() error = %v, want ErrInvalidRequest", err)
		}
		if searcher.calls != 0 {
			t.Errorf("searcher called %d times, want 0", searcher.calls)
		}
	})

	t.Run("search errors propagate", func(t *testing.T) {
		searcher := &fakeSearcher{err: domain.ErrFetchFailed}
		service := NewMatchingService(searcher, MatchConfig{})

		_, err := service.FindMatch(ctx, "Funko Pop Batman Figure", "89.00 AED")
		if !errors.Is(err, domain.ErrFetchFailed) {
			t.Errorf("FindMatch() error = %v, want ErrFetchFailed", err)
		}
	})

	t.Run("custom threshold", func(t *testing.T) {
		searcher := &fakeSearcher{candidates: []domain.MatchCandidate{
			{Title: "Lego Star Wars Falcon Model", Price: "349.00 AED"},
		}}
		service := NewMatchingService(searcher, MatchConfig{MinMatchScore: 90})

		_, err := service.FindMatch(ctx, "Lego Star Wars Millennium Falcon Building Set", "349.00 AED")
		if !errors.Is(err, domain.ErrLowConfidence) {
			t.Errorf("FindMatch() error = %v, want ErrLowConfidence at threshold 90", err)
		}
	})
}

func TestScoreCandidate_PriceProximity(t *testing.T) {
	service := NewMatchingService(&fakeSearcher{}, MatchConfig{})

	tests := []struct {
		name           string
		referencePrice string
		candidatePrice string
		wantScore      int
	}{
		// Identical titles contribute 50 (keywords) + 20 (brand)
		{"equal price", "100.00 AED", "100.00 AED", 100},
		{"ten percent off", "100.00 AED", "110.00 AED", 97},
		{"half price misses the cutoff", "100.00 AED", "50.00 AED", 70},
		{"unparseable candidate price", "100.00 AED", "N/A", 70},
		{"missing reference price", "", "100.00 AED", 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := domain.MatchCandidate{Title: "Funko Pop Batman Figure", Price: tt.candidatePrice}
			got := service.scoreCandidate("Funko Pop Batman Figure", tt.referencePrice, candidate)
			if got != tt.wantScore {
				t.Errorf("scoreCandidate() = %d, want %d", got, tt.wantScore)
			}
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{
			"condition size and color stripped",
			"New Apple iPhone 15 Pro Max 256GB Blue",
			[]string{"apple", "iphone", "pro", "max"},
		},
		{
			"stop words and short words dropped",
			"The Lego Set of 2 for Kids",
			[]string{"lego", "kids"},
		},
		{
			"punctuation becomes separators",
			"Funko Pop! Batman, Figure",
			[]string{"funko", "pop", "batman", "figure"},
		},
		{
			"empty title",
			"",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractKeywords(tt.title)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("extractKeywords(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestExtractBrand(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Funko Pop! Batman Figure", "funko"},
		{"Galaxy Watch by Samsung", "samsung"},
		{"Acme Rocket Skates", "acme"},
		{"LG 55 Inch TV", "lg"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := extractBrand(tt.title); got != tt.want {
				t.Errorf("extractBrand(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestParsePriceValue(t *testing.T) {
	tests := []struct {
		input     string
		wantValue float64
		wantOK    bool
	}{
		{"299.00 AED", 299.00, true},
		{"AED 89.00", 89.00, true},
		{"120", 120, true},
		{"N/A", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			value, ok := parsePriceValue(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parsePriceValue(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && value != tt.wantValue {
				t.Errorf("parsePriceValue(%q) = %v, want %v", tt.input, value, tt.wantValue)
			}
		})
	}
}
