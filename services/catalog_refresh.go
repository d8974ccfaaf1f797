package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"perfume-bot/models"
)

// Refresher pulls raw rows for each product category, normalizes and
// deduplicates them, and swaps the result into the catalog. A failed cycle
// leaves the previous snapshot untouched.
type Refresher struct {
	source  RowSource
	catalog *Catalog
}

func NewRefresher(source RowSource, catalog *Catalog) *Refresher {
	return &Refresher{source: source, catalog: catalog}
}

// Refresh performs one full catalog rebuild. Safe to call concurrently: an
// overlapping cycle simply installs a later snapshot.
func (r *Refresher) Refresh(ctx context.Context) error {
	originals, err := r.source.Rows(ctx, string(models.TypeOriginal))
	if err != nil {
		return fmt.Errorf("failed to load original products: %w", err)
	}
	spilled, err := r.source.Rows(ctx, string(models.TypeSpilled))
	if err != nil {
		return fmt.Errorf("failed to load spilled products: %w", err)
	}

	combined := prepareProducts(originals, models.TypeOriginal)
	combined = append(combined, prepareProducts(spilled, models.TypeSpilled)...)

	products := deduplicateProducts(combined)
	snap := &Snapshot{
		Products: products,
		Brands:   uniqueBrands(products),
	}
	r.catalog.Replace(snap)

	slog.Info("Catalog refreshed",
		"products", len(snap.Products),
		"brands", len(snap.Brands),
	)
	return nil
}

// Start runs an immediate refresh and then schedules recurring ones on each
// configured interval. The duplicated short/long schedule mirrors how the
// shop has always run it; both perform the same full rebuild.
func (r *Refresher) Start(ctx context.Context, intervals ...time.Duration) {
	if err := r.Refresh(ctx); err != nil {
		slog.Error("Initial catalog refresh failed", "error", err)
	}

	c := cron.New()
	for _, interval := range intervals {
		spec := "@every " + interval.String()
		if _, err := c.AddFunc(spec, func() {
			refreshCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := r.Refresh(refreshCtx); err != nil {
				slog.Error("Scheduled catalog refresh failed", "error", err)
			}
		}); err != nil {
			slog.Error("Failed to schedule catalog refresh", "spec", spec, "error", err)
			continue
		}
		slog.Info("Catalog refresh scheduled", "interval", interval.String())
	}
	c.Start()

	go func() {
		<-ctx.Done()
		slog.Info("Stopping catalog refresh scheduler")
		c.Stop()
	}()
}

// prepareProducts tags rows with their category type and normalizes fields:
// original volumes get an "ml" suffix when the sheet holds a bare number,
// spilled items are always sold per 1ml.
func prepareProducts(rows []Row, t models.ProductType) []models.Product {
	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		p := models.Product{
			Name:        strings.TrimSpace(row.Name),
			Brand:       strings.TrimSpace(row.Brand),
			Type:        t,
			Country:     strings.TrimSpace(row.Country),
			Description: strings.TrimSpace(row.Description),
			Cost:        parseCost(row.Cost),
		}

		if t == models.TypeSpilled {
			p.Volume = "1ml"
		} else {
			p.Volume = normalizeVolume(row.Volume)
		}

		if p.Name == "" {
			continue
		}
		products = append(products, p)
	}
	return products
}

func normalizeVolume(volume string) string {
	volume = strings.TrimSpace(volume)
	if volume == "" {
		return "N/A"
	}
	if _, err := strconv.ParseFloat(volume, 64); err == nil {
		return volume + "ml"
	}
	return volume
}

func parseCost(cost string) float64 {
	cost = strings.ReplaceAll(strings.TrimSpace(cost), " ", "")
	if cost == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cost, 64)
	if err != nil {
		return 0
	}
	return v
}

// deduplicateProducts keeps the first row per (name, type, volume) key,
// case-insensitively, and title-cases the surviving name. The caser is
// per-call state; cases.Caser is not safe for concurrent use and refresh
// cycles may overlap.
func deduplicateProducts(products []models.Product) []models.Product {
	titleCaser := cases.Title(language.Und)
	seen := make(map[string]struct{}, len(products))
	unique := make([]models.Product, 0, len(products))
	for _, p := range products {
		key := p.DedupKey()
		if _, ok := seen[key]; ok {
			slog.Debug("Duplicate product skipped", "name", p.Name, "volume", p.Volume)
			continue
		}
		seen[key] = struct{}{}
		p.Name = titleCaser.String(strings.TrimSpace(p.Name))
		unique = append(unique, p)
	}
	return unique
}

func uniqueBrands(products []models.Product) []string {
	seen := make(map[string]struct{})
	var brands []string
	for _, p := range products {
		if p.Brand == "" {
			continue
		}
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		brands = append(brands, p.Brand)
	}
	return brands
}
