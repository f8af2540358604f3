package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	l := Default()
	assert.Len(t, l.Categories, 8)
	assert.Len(t, l.Subcategories, 16)
	assert.Len(t, l.Brands, 14)
	assert.Len(t, l.Colors, 16)
	assert.Len(t, l.Locations, 48)
	assert.Len(t, l.ProductNames, 46)
	assert.Equal(t, "sneakers", l.ProductNames[0])
}

func TestVocabulary(t *testing.T) {
	l := Default()
	for _, s := range Slots {
		assert.NotEmpty(t, l.Vocabulary(s), s.String())
	}
	assert.Nil(t, l.Vocabulary(Slot(99)))
	assert.Equal(t, "unknown", Slot(99).String())
}
