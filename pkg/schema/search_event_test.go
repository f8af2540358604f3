package schema

import (
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchEventV1(t *testing.T) {
	var eventSchema avro.Schema
	require.NotPanics(t, func() {
		eventSchema = SearchEventV1Avro()
	})

	minRating := 4.5
	vMarshal := SearchEventV1{
		Query:      "rating above 4.5 red sneakers",
		Term:       "sneakers",
		MinRating:  &minRating,
		Results:    3,
		Local:      3,
		OccurredAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	data, err := avro.Marshal(eventSchema, vMarshal)
	require.NoError(t, err)

	var vUnmarshal SearchEventV1
	err = avro.Unmarshal(eventSchema, data, &vUnmarshal)
	require.NoError(t, err)

	assert.Equal(t, vMarshal.Query, vUnmarshal.Query)
	assert.Equal(t, vMarshal.Term, vUnmarshal.Term)
	assert.Empty(t, vUnmarshal.Category)
	assert.Nil(t, vUnmarshal.PriceMax)
	require.NotNil(t, vUnmarshal.MinRating)
	assert.Equal(t, minRating, *vUnmarshal.MinRating)
	assert.Equal(t, vMarshal.Local, vUnmarshal.Local)
	assert.True(t, vMarshal.OccurredAt.Equal(vUnmarshal.OccurredAt))
}
