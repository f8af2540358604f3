package domain

import (
	"strings"
	"time"
)

// A SourceTag identifies the catalog a [Product] was read from.
type SourceTag string

const (
	SourceLocal     SourceTag = "local"
	SourcePartner   SourceTag = "partner"
	SourceExternalA SourceTag = "externalA"
	SourceExternalB SourceTag = "externalB"
)

// Sources lists all tags in merge priority order.
var Sources = []SourceTag{
	SourceLocal, SourcePartner, SourceExternalA, SourceExternalB,
}

func (t SourceTag) Valid() bool {
	switch t {
	case SourceLocal, SourcePartner, SourceExternalA, SourceExternalB:
		return true
	}
	return false
}

// ProductID builds the response-wide identifier of a native record.
func (t SourceTag) ProductID(nativeID string) string {
	return string(t) + "_" + nativeID
}

// SplitProductID returns the source tag and native id encoded in id.
// The ok is false when id has no known tag prefix.
func SplitProductID(id string) (tag SourceTag, nativeID string, ok bool) {
	for _, t := range Sources {
		prefix := string(t) + "_"
		if rest, found := strings.CutPrefix(id, prefix); found && rest != "" {
			return t, rest, true
		}
	}
	return "", id, false
}

// Product is the canonical catalog item every source is normalized into.
type Product struct {
	ID            string
	Name          string
	Category      string
	Subcategory   string
	Brand         string
	Color         string
	Size          string
	Location      string
	Description   string
	StyleTag      string
	DeliveryTime  string
	DiscountLabel string
	Price         float64
	Currency      string
	Rating        float64
	Stock         int
	// StockEstimated is set when the source has no inventory data
	// and Stock holds a synthesized placeholder.
	StockEstimated bool
	ImageURL       string
	Source         SourceTag
	ExternalID     string
}

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// ClampRating bounds r to [MinRating, MaxRating].
func ClampRating(r float64) float64 {
	switch {
	case r != r, r < MinRating:
		return MinRating
	case r > MaxRating:
		return MaxRating
	}
	return r
}

// ClampPrice returns 0 for negative or NaN prices.
func ClampPrice(p float64) float64 {
	if p != p || p < 0 {
		return 0
	}
	return p
}

type (
	SourceCounts struct {
		Local    int
		Partner  int
		External int
	}

	SourceStatus struct {
		Source SourceTag
		OK     bool
		Err    string
		Count  int
	}

	SearchResult struct {
		Products []Product
		Total    int
		Sources  SourceCounts
		Statuses []SourceStatus
	}

	TrendingResult struct {
		Products []Product
		Total    int
	}
)

// HealthStatus is the last observed outcome of a source call.
type HealthStatus struct {
	OK        bool
	Err       string
	CheckedAt time.Time
}

type CatalogStats struct {
	TotalProducts int
	Categories    int
	Brands        int
	AvgRating     float64
}

// A SearchEvent describes one served search.
type SearchEvent struct {
	Query      string
	Term       string
	Category   string
	Brand      string
	PriceMax   *float64
	MinRating  *float64
	Results    int
	Local      int
	Partner    int
	External   int
	OccurredAt time.Time
}
