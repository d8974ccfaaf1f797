package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetSourceParsesCSV(t *testing.T) {
	csv := "name,brand,volume,cost,country,description\n" +
		"Sauvage,Dior,100,45000,Франция,Свежий древесный аромат\n" +
		"Bleu De Chanel,Chanel,50,38000,,\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(csv))
	}))
	defer srv.Close()

	source := NewSheetSource(map[string]string{"original": srv.URL})
	rows, err := source.Rows(context.Background(), "original")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Sauvage", rows[0].Name)
	assert.Equal(t, "Dior", rows[0].Brand)
	assert.Equal(t, "45000", rows[0].Cost)
	assert.Equal(t, "Свежий древесный аромат", rows[0].Description)
	assert.Empty(t, rows[1].Country)
}

func TestSheetSourceRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	source := NewSheetSource(map[string]string{"original": srv.URL})
	_, err := source.Rows(context.Background(), "original")
	assert.Error(t, err)
}

func TestSheetSourceRequiresConfiguredURL(t *testing.T) {
	source := NewSheetSource(map[string]string{})
	_, err := source.Rows(context.Background(), "spilled")
	assert.Error(t, err)
}
