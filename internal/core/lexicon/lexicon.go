// Package lexicon holds the vocabularies used to map free-text tokens to
// search constraint slots.
package lexicon

// A Lexicon is a read-only set of vocabularies. Slice order matters: the
// product name scan picks the first listed entry found in the text.
type Lexicon struct {
	Categories    []string
	Subcategories []string
	Brands        []string
	Colors        []string
	Locations     []string
	Sizes         []string
	ProductNames  []string
}

var defaultLexicon = Lexicon{
	Categories: []string{
		"footwear", "apparel", "accessories", "groceries",
		"food", "home decor", "home essentials", "electronics",
	},
	Subcategories: []string{
		"athletic", "top", "bottom", "outerwear", "headwear",
		"bag", "ethnic", "produce", "bakery", "ready-to-eat",
		"wall art", "decorative", "kitchenware", "bedding",
		"window", "lighting",
	},
	Brands: []string{
		"nike", "puma", "adidas", "levis", "zara", "h&m",
		"michael kors", "guess", "philips", "samsung",
		"apple", "dominos", "pizza hut", "organic harvest",
	},
	Colors: []string{
		"black", "white", "red", "blue", "green", "yellow",
		"brown", "pink", "purple", "beige", "orange", "gold",
		"silver", "gray", "navy", "multicolor",
	},
	Locations: []string{
		"new york", "los angeles", "chicago", "houston",
		"phoenix", "philadelphia", "san antonio", "san diego",
		"dallas", "san jose", "austin", "jacksonville",
		"fort worth", "columbus", "charlotte", "san francisco",
		"indianapolis", "seattle", "denver", "washington",
		"boston", "el paso", "detroit", "nashville",
		"portland", "memphis", "oklahoma city", "las vegas",
		"louisville", "baltimore", "milwaukee", "albuquerque",
		"tucson", "fresno", "mesa", "sacramento", "atlanta",
		"kansas city", "colorado springs", "omaha", "raleigh",
		"miami", "oakland", "minneapolis", "tulsa", "cleveland",
		"wichita", "arlington",
	},
	Sizes: []string{
		"s", "small", "m", "medium", "l", "large", "xl", "xxl",
		"xs", "extra small", "extra large", "free size", "one size",
		"6", "7", "8", "9", "10", "11", "12", "13", "14",
		"28", "30", "32", "34", "36", "38", "40", "42",
	},
	ProductNames: []string{
		"sneakers", "shoes", "t-shirt", "shirt", "jeans", "pants",
		"jacket", "coat", "dress", "skirt", "shorts", "cap", "hat",
		"handbag", "backpack", "wallet", "watch", "sunglasses",
		"pizza", "burger", "sandwich", "salad", "pasta", "rice",
		"bread", "milk", "eggs", "cheese", "chicken", "beef",
		"sofa", "chair", "table", "bed", "lamp", "curtains",
		"pillow", "blanket", "vase", "mirror", "phone", "laptop",
		"headphones", "speaker", "camera", "tablet",
	},
}

// Default returns the built-in vocabularies. The returned slices are shared
// and must not be modified.
func Default() Lexicon {
	return defaultLexicon
}

// Slot names a constraint field filled from a vocabulary.
type Slot int

const (
	SlotCategory Slot = iota
	SlotSubcategory
	SlotBrand
	SlotColor
	SlotLocation
	SlotSize
)

// Slots lists the vocabulary slots in matching priority order.
var Slots = []Slot{
	SlotCategory, SlotSubcategory, SlotBrand, SlotColor, SlotLocation, SlotSize,
}

func (s Slot) String() string {
	switch s {
	case SlotCategory:
		return "category"
	case SlotSubcategory:
		return "subcategory"
	case SlotBrand:
		return "brand"
	case SlotColor:
		return "color"
	case SlotLocation:
		return "location"
	case SlotSize:
		return "size"
	}
	return "unknown"
}

// Vocabulary returns the word list backing the slot.
func (l Lexicon) Vocabulary(s Slot) []string {
	switch s {
	case SlotCategory:
		return l.Categories
	case SlotSubcategory:
		return l.Subcategories
	case SlotBrand:
		return l.Brands
	case SlotColor:
		return l.Colors
	case SlotLocation:
		return l.Locations
	case SlotSize:
		return l.Sizes
	}
	return nil
}
