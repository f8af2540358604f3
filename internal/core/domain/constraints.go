package domain

const DefaultResultLimit = 20

// SearchConstraints are the structured filters derived from a free-text
// request. Empty strings and nil pointers mean unconstrained.
type SearchConstraints struct {
	Query       string
	Category    string
	Subcategory string
	Brand       string
	Color       string
	Location    string
	Size        string
	ProductName string
	PriceMax    *float64
	MinRating   *float64
	ResultLimit int
}

// Term returns the most specific subject of the search.
func (c SearchConstraints) Term() string {
	switch {
	case c.ProductName != "":
		return c.ProductName
	case c.Category != "":
		return c.Category
	}
	return c.Query
}

// TextFilter is the substring matched against names and descriptions.
func (c SearchConstraints) TextFilter() string {
	if c.ProductName != "" {
		return c.ProductName
	}
	return c.Query
}
