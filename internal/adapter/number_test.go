package adapter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Number
	}{
		{"Float", `12.5`, Number{Value: 12.5, Valid: true}},
		{"Integer", `7`, Number{Value: 7, Valid: true}},
		{"QuotedNumber", `"19.99"`, Number{Value: 19.99, Valid: true}},
		{"Null", `null`, Number{}},
		{"Garbage", `"n/a"`, Number{}},
		{"Bool", `true`, Number{}},
		{"Object", `{"amount":1}`, Number{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				N Number `json:"n"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"n":`+tt.input+`}`), &v))
			assert.Equal(t, tt.want, v.N)
		})
	}

	t.Run("Int", func(t *testing.T) {
		assert.Equal(t, 9, Number{Value: 9.8, Valid: true}.Int())
	})
}
