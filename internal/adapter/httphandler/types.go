package httphandler

import (
	"time"

	"github.com/niksmo/shopfinder/internal/core/domain"
)

type (
	SearchRequest struct {
		Query    string `json:"query"`
		Category string `json:"category"`
		Limit    int    `json:"limit"`
	}

	ProductDetailRequest struct {
		ProductID string `json:"product_id"`
		Source    string `json:"source"`
	}
)

type (
	Product struct {
		ID             string  `json:"id"`
		Name           string  `json:"name"`
		Category       string  `json:"category"`
		Subcategory    string  `json:"subcategory,omitempty"`
		Brand          string  `json:"brand,omitempty"`
		Color          string  `json:"color,omitempty"`
		Size           string  `json:"size,omitempty"`
		Location       string  `json:"location,omitempty"`
		Description    string  `json:"description,omitempty"`
		StyleTag       string  `json:"style_tag,omitempty"`
		DeliveryTime   string  `json:"delivery_time,omitempty"`
		Discount       string  `json:"discount,omitempty"`
		Price          float64 `json:"price"`
		Currency       string  `json:"currency"`
		Rating         float64 `json:"rating"`
		Stock          int     `json:"stock"`
		StockEstimated bool    `json:"stock_estimated"`
		ImageURL       string  `json:"image_url"`
		Source         string  `json:"source"`
		ExternalID     string  `json:"external_id"`
	}

	SourceCounts struct {
		Local    int `json:"local"`
		Partner  int `json:"partner"`
		External int `json:"external"`
	}

	SearchResponse struct {
		Products []Product    `json:"products"`
		Total    int          `json:"total"`
		Sources  SourceCounts `json:"sources"`
	}

	TrendingResponse struct {
		Products []Product `json:"products"`
		Total    int       `json:"total"`
	}

	ProductResponse struct {
		Product Product `json:"product"`
	}

	SourceHealth struct {
		OK        bool      `json:"ok"`
		Error     string    `json:"error,omitempty"`
		CheckedAt time.Time `json:"checked_at"`
	}

	HealthResponse struct {
		Status            string                  `json:"status"`
		SearchEngineReady bool                    `json:"search_engine_ready"`
		Sources           map[string]SourceHealth `json:"sources"`
	}

	StatsResponse struct {
		TotalProducts int     `json:"total_products"`
		Categories    int     `json:"categories"`
		Brands        int     `json:"brands"`
		AvgRating     float64 `json:"avg_rating"`
	}

	SearchCountResponse struct {
		Term     string `json:"term"`
		Searches int64  `json:"searches"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}
)

func productFromDomain(p domain.Product) Product {
	return Product{
		ID:             p.ID,
		Name:           p.Name,
		Category:       p.Category,
		Subcategory:    p.Subcategory,
		Brand:          p.Brand,
		Color:          p.Color,
		Size:           p.Size,
		Location:       p.Location,
		Description:    p.Description,
		StyleTag:       p.StyleTag,
		DeliveryTime:   p.DeliveryTime,
		Discount:       p.DiscountLabel,
		Price:          p.Price,
		Currency:       p.Currency,
		Rating:         p.Rating,
		Stock:          p.Stock,
		StockEstimated: p.StockEstimated,
		ImageURL:       p.ImageURL,
		Source:         string(p.Source),
		ExternalID:     p.ExternalID,
	}
}

func productsFromDomain(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = productFromDomain(p)
	}
	return out
}
