package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfume-bot/models"
)

func TestSnapshotProductsByType(t *testing.T) {
	snap := &Snapshot{Products: []models.Product{
		{Name: "Sauvage", Brand: "Dior", Type: models.TypeOriginal},
		{Name: "Sauvage", Brand: "Dior", Type: models.TypeSpilled},
		{Name: "Bleu De Chanel", Brand: "Chanel", Type: models.TypeOriginal},
	}}

	originals := snap.ProductsByType(models.TypeOriginal)
	require.Len(t, originals, 2)
	assert.Equal(t, "Sauvage", originals[0].Name)
	assert.Equal(t, "Bleu De Chanel", originals[1].Name)

	spilled := snap.ProductsByType(models.TypeSpilled)
	require.Len(t, spilled, 1)
	assert.Equal(t, models.TypeSpilled, spilled[0].Type)

	assert.Empty(t, (&Snapshot{}).ProductsByType(models.TypeOriginal))
}
