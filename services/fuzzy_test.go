package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSetRatioHandlesCyrillic(t *testing.T) {
	// Token-set scoring ignores the extra words around the brand.
	assert.Equal(t, 100, TokenSetRatio("разлив диор покажи", "диор"))
	assert.Equal(t, 100, TokenSetRatio("есть ли armani", "armani"))
}

func TestTokenSortRatioExactMatch(t *testing.T) {
	assert.Equal(t, 100, TokenSortRatio("sauvage dior", "dior sauvage"))
}

func TestPartialRatioSubstring(t *testing.T) {
	assert.Equal(t, 100, PartialRatio("sauvage", "сколько стоит sauvage"))
}

func TestBestMatch(t *testing.T) {
	candidates := []string{"sauvage", "bleu de chanel", "aventus"}

	best, score, ok := BestMatch("савваж sauvage", candidates, TokenSetRatio)
	require.True(t, ok)
	assert.Equal(t, "sauvage", best)
	assert.GreaterOrEqual(t, score, 60)

	_, _, ok = BestMatch("anything", nil, TokenSetRatio)
	assert.False(t, ok)
}

func TestStripPunctuation(t *testing.T) {
	assert.Equal(t, "сколько стоит sauvage", StripPunctuation("Сколько стоит Sauvage?!"))
	assert.Equal(t, "", StripPunctuation("..."))
}
