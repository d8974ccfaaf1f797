package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gocarina/gocsv"
)

// Row is one raw catalog row as exported from the spreadsheet. Fields may
// be empty; the refresher substitutes markers, never values.
type Row struct {
	Name        string `csv:"name"`
	Brand       string `csv:"brand"`
	Volume      string `csv:"volume"`
	Cost        string `csv:"cost"`
	Country     string `csv:"country"`
	Description string `csv:"description"`
}

// RowSource supplies raw catalog rows per category ("original", "spilled").
type RowSource interface {
	Rows(ctx context.Context, category string) ([]Row, error)
}

// SheetSource fetches rows from per-worksheet CSV export URLs (the
// spreadsheet is published as CSV, one URL per category).
type SheetSource struct {
	urls   map[string]string
	client *http.Client
}

func NewSheetSource(urls map[string]string) *SheetSource {
	return &SheetSource{
		urls: urls,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Rows downloads and parses the CSV worksheet for a category.
func (s *SheetSource) Rows(ctx context.Context, category string) ([]Row, error) {
	url, ok := s.urls[category]
	if !ok || url == "" {
		return nil, fmt.Errorf("no sheet URL configured for category %q", category)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	req.Header.Set("User-Agent", "PerfumeBot-CatalogFetcher/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet %q: %w", category, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sheet %q returned status %d: %s", category, resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", category, err)
	}

	var rows []Row
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse sheet %q: %w", category, err)
	}

	return rows, nil
}
