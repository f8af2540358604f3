package adapter

import "github.com/shopspring/decimal"

// Number is a lenient JSON numeric field of a third-party record. It accepts
// numbers and numeric strings. Anything else, null included, decodes to zero
// with Valid unset instead of failing the whole payload.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var d decimal.NullDecimal
	if err := d.UnmarshalJSON(data); err != nil || !d.Valid {
		*n = Number{}
		return nil
	}
	*n = Number{Value: d.Decimal.InexactFloat64(), Valid: true}
	return nil
}

// Int truncates the value toward zero.
func (n Number) Int() int {
	return int(n.Value)
}
