package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfume-bot/models"
)

func TestSessionCreatedLazilyInBotMode(t *testing.T) {
	m := NewSessionManager(NewMemoryStore())
	ctx := context.Background()

	mode, err := m.Mode(ctx, "7700000001")
	require.NoError(t, err)
	assert.Equal(t, models.ModeBot, mode)

	session, err := m.Session(ctx, "7700000001")
	require.NoError(t, err)
	assert.False(t, session.Welcomed)
	assert.Nil(t, session.LastProduct)
}

func TestSetModePersists(t *testing.T) {
	m := NewSessionManager(NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, m.SetMode(ctx, "u1", models.ModeManager))
	mode, err := m.Mode(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ModeManager, mode)

	require.NoError(t, m.SetMode(ctx, "u1", models.ModeBot))
	mode, err = m.Mode(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ModeBot, mode)
}

func TestHistoryCap(t *testing.T) {
	m := NewSessionManager(NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		require.NoError(t, m.RecordTurn(ctx, "u1", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
	}

	history, err := m.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, DefaultHistoryLimit)
	assert.Equal(t, "q5", history[0].UserMessage)
	assert.Equal(t, "q14", history[len(history)-1].UserMessage)

	history, err = m.History(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "q12", history[0].UserMessage)
}

func TestLastProductIsValueCopy(t *testing.T) {
	m := NewSessionManager(NewMemoryStore())
	ctx := context.Background()

	product := models.Product{Name: "Sauvage", Brand: "Dior", Type: models.TypeOriginal, Volume: "100ml", Cost: 45000}
	require.NoError(t, m.SetLastProduct(ctx, "u1", product))

	// Mutating the caller's copy must not touch the stored record.
	product.Cost = 1

	got, err := m.LastProduct(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, float64(45000), got.Cost)

	// Mutating the returned copy must not either.
	got.Name = "changed"
	again, err := m.LastProduct(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Sauvage", again.Name)
}

func TestMemoryStoreIsolatesHistorySlices(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := &models.Session{UserID: "u1", Mode: models.ModeBot, History: []models.Turn{{UserMessage: "hi"}}}
	require.NoError(t, store.Put(ctx, session))

	session.History[0].UserMessage = "mutated"

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "hi", got.History[0].UserMessage)
}
