package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const SearchEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "shopfinder",
	"name": "search_event",
	"fields": [
		{"name": "query", "type": "string"},
		{"name": "term", "type": "string"},
		{"name": "category", "type": "string"},
		{"name": "brand", "type": "string"},
		{"name": "price_max", "type": ["null", "double"], "default": null},
		{"name": "min_rating", "type": ["null", "double"], "default": null},
		{"name": "results", "type": "int"},
		{"name": "local", "type": "int"},
		{"name": "partner", "type": "int"},
		{"name": "external", "type": "int"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type SearchEventV1 struct {
	Query      string    `avro:"query"`
	Term       string    `avro:"term"`
	Category   string    `avro:"category"`
	Brand      string    `avro:"brand"`
	PriceMax   *float64  `avro:"price_max"`
	MinRating  *float64  `avro:"min_rating"`
	Results    int       `avro:"results"`
	Local      int       `avro:"local"`
	Partner    int       `avro:"partner"`
	External   int       `avro:"external"`
	OccurredAt time.Time `avro:"occurred_at"`
}

// SearchEventV1Avro panics if the schema text is invalid.
func SearchEventV1Avro() avro.Schema {
	return avro.MustParse(SearchEventSchemaTextV1)
}
