package storage

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/niksmo/shopfinder/internal/core/imageurl"
	"github.com/shopspring/decimal"
)

const (
	partnerCurrency      = "INR"
	partnerDefaultName   = "Unknown Product"
	partnerDefaultBrand  = "Unknown"
	defaultCategory      = "general"
	defaultRating        = 4.0
	categoryPathSplitter = ">>"
)

var (
	nonPriceChars = regexp.MustCompile(`[^\d.]`)
	ratingText    = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

var hundred = decimal.NewFromInt(100)

type partnerRow struct {
	uniqID          string
	productName     string
	categoryTree    string
	image           string
	retailPrice     string
	discountedPrice string
	productRating   string
	overallRating   string
	brand           string
	description     string
	specifications  string
}

// normalizePartner never rejects a row. Unparsable fields fall back to
// defaults.
func normalizePartner(v partnerRow, stockFn func() int) domain.Product {
	name := strings.TrimSpace(v.productName)
	if name == "" {
		name = partnerDefaultName
	}

	brand := strings.TrimSpace(v.brand)
	if brand == "" {
		brand = partnerDefaultBrand
	}

	description := v.description
	if strings.TrimSpace(description) == "" {
		description = v.specifications
	}

	price, priceOK := partnerPrice(v.discountedPrice, v.retailPrice)

	p := domain.Product{
		ID:             domain.SourcePartner.ProductID(v.uniqID),
		Name:           name,
		Category:       partnerCategory(v.categoryTree),
		Brand:          brand,
		Description:    description,
		Price:          domain.ClampPrice(price.InexactFloat64()),
		Currency:       partnerCurrency,
		Rating:         partnerRating(v.productRating, v.overallRating),
		Stock:          stockFn(),
		StockEstimated: true,
		ImageURL:       imageurl.Resolve(imageurl.Decode(v.image)),
		Source:         domain.SourcePartner,
		ExternalID:     v.uniqID,
	}

	if retail, ok := parsePrice(v.retailPrice); ok && priceOK {
		p.DiscountLabel = discountLabel(retail, price)
	}

	return p
}

// partnerCategory takes the leaf of a category path. The path is either a
// JSON array of strings or a single ">>" separated string.
func partnerCategory(raw string) string {
	raw = strings.TrimSpace(raw)

	var list []string
	var s string
	switch {
	case json.Unmarshal([]byte(raw), &list) == nil:
		raw = ""
		for i := len(list) - 1; i >= 0; i-- {
			if e := strings.TrimSpace(list[i]); e != "" {
				raw = e
				break
			}
		}
	case json.Unmarshal([]byte(raw), &s) == nil:
		raw = s
	}

	segments := strings.Split(raw, categoryPathSplitter)
	leaf := strings.TrimSpace(segments[len(segments)-1])
	if leaf == "" {
		return defaultCategory
	}
	return strings.ToLower(leaf)
}

// partnerPrice prefers the discounted price. A present but unparsable
// discounted price yields zero, it does not fall back to retail.
func partnerPrice(discounted, retail string) (decimal.Decimal, bool) {
	if strings.TrimSpace(discounted) != "" {
		return parsePrice(discounted)
	}
	return parsePrice(retail)
}

func parsePrice(s string) (decimal.Decimal, bool) {
	cleaned := nonPriceChars.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

func partnerRating(primary, alternate string) float64 {
	for _, s := range []string{primary, alternate} {
		s = strings.TrimSpace(s)
		if !ratingText.MatchString(s) {
			continue
		}
		r, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		return domain.ClampRating(r)
	}
	return defaultRating
}

// discountLabel renders the drop from retail to price, e.g. "25% OFF".
func discountLabel(retail, price decimal.Decimal) string {
	if !retail.IsPositive() || !price.IsPositive() || !retail.GreaterThan(price) {
		return ""
	}
	pct := retail.Sub(price).Div(retail).Mul(hundred).Round(0)
	return fmt.Sprintf("%s%% OFF", pct.String())
}
