package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfume-bot/models"
)

type fakeSource struct {
	rows map[string][]Row
	err  error
}

func (f *fakeSource) Rows(_ context.Context, category string) ([]Row, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[category], nil
}

func TestRefreshNormalizesAndDeduplicates(t *testing.T) {
	source := &fakeSource{rows: map[string][]Row{
		"original": {
			{Name: "sauvage", Brand: " Dior ", Volume: "100", Cost: "45000", Country: "Франция"},
			{Name: "SAUVAGE", Brand: "Dior", Volume: "100", Cost: "45000"},
			{Name: "bleu de chanel", Brand: "Chanel", Volume: "50 ml", Cost: "38000"},
		},
		"spilled": {
			{Name: "sauvage", Brand: "Dior", Volume: "игнорируется", Cost: "1200"},
		},
	}}

	catalog := NewCatalog()
	refresher := NewRefresher(source, catalog)
	require.NoError(t, refresher.Refresh(context.Background()))

	snap := catalog.Snapshot()
	// Same (name, type, volume) key case-insensitively: one survivor, plus
	// the other bottle and the decant.
	require.Len(t, snap.Products, 3)

	sauvage := snap.Products[0]
	assert.Equal(t, "Sauvage", sauvage.Name)
	assert.Equal(t, "Dior", sauvage.Brand)
	assert.Equal(t, models.TypeOriginal, sauvage.Type)
	assert.Equal(t, "100ml", sauvage.Volume)
	assert.Equal(t, float64(45000), sauvage.Cost)

	chanel := snap.Products[1]
	assert.Equal(t, "Bleu De Chanel", chanel.Name)
	assert.Equal(t, "50 ml", chanel.Volume)

	decant := snap.Products[2]
	assert.Equal(t, models.TypeSpilled, decant.Type)
	assert.Equal(t, "1ml", decant.Volume)

	assert.ElementsMatch(t, []string{"Dior", "Chanel"}, snap.Brands)
}

func TestRefreshIsIdempotent(t *testing.T) {
	source := &fakeSource{rows: map[string][]Row{
		"original": {
			{Name: "Sauvage", Brand: "Dior", Volume: "100", Cost: "45000"},
			{Name: "sauvage ", Brand: "Dior", Volume: "100", Cost: "45000"},
		},
		"spilled": nil,
	}}

	catalog := NewCatalog()
	refresher := NewRefresher(source, catalog)

	require.NoError(t, refresher.Refresh(context.Background()))
	first := catalog.Snapshot()
	require.NoError(t, refresher.Refresh(context.Background()))
	second := catalog.Snapshot()

	require.Len(t, first.Products, 1)
	assert.Equal(t, first.Products, second.Products)
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	source := &fakeSource{rows: map[string][]Row{
		"original": {{Name: "Sauvage", Brand: "Dior", Volume: "100", Cost: "45000"}},
		"spilled":  nil,
	}}

	catalog := NewCatalog()
	refresher := NewRefresher(source, catalog)
	require.NoError(t, refresher.Refresh(context.Background()))
	before := catalog.Snapshot()

	source.err = errors.New("sheet unreachable")
	err := refresher.Refresh(context.Background())
	require.Error(t, err)

	assert.Same(t, before, catalog.Snapshot())
}

func TestRefreshIsSafeToCallConcurrently(t *testing.T) {
	source := &fakeSource{rows: map[string][]Row{
		"original": {
			{Name: "sauvage", Brand: "Dior", Volume: "100", Cost: "45000"},
			{Name: "bleu de chanel", Brand: "Chanel", Volume: "50", Cost: "38000"},
		},
		"spilled": {
			{Name: "sauvage", Brand: "Dior", Cost: "1200"},
		},
	}}

	catalog := NewCatalog()
	refresher := NewRefresher(source, catalog)

	// The short and long schedules fire at the same instant whenever they
	// line up, so overlapping cycles are routine, not exceptional.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NoError(t, refresher.Refresh(context.Background()))
			}
		}()
	}
	wg.Wait()

	snap := catalog.Snapshot()
	require.Len(t, snap.Products, 3)
	assert.Equal(t, "Sauvage", snap.Products[0].Name)
	assert.Equal(t, "Bleu De Chanel", snap.Products[1].Name)
}

func TestRefreshSkipsNamelessRows(t *testing.T) {
	source := &fakeSource{rows: map[string][]Row{
		"original": {
			{Name: "", Brand: "Dior", Volume: "100", Cost: "45000"},
			{Name: "Sauvage", Brand: "Dior", Volume: "100", Cost: "45000"},
		},
		"spilled": nil,
	}}

	catalog := NewCatalog()
	require.NoError(t, NewRefresher(source, catalog).Refresh(context.Background()))
	assert.Len(t, catalog.Snapshot().Products, 1)
}
