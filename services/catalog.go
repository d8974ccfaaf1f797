package services

import (
	"fmt"
	"strings"
	"sync/atomic"

	"perfume-bot/models"
)

// Snapshot is one internally consistent view of the catalog: the
// deduplicated product set plus the derived brand list. Snapshots are
// immutable; the refresher builds a new one and swaps it in whole.
type Snapshot struct {
	Products []models.Product
	Brands   []string
}

// Catalog holds the current snapshot behind an atomic pointer. Readers grab
// the pointer once per lookup and never observe a half-replaced set.
type Catalog struct {
	current atomic.Pointer[Snapshot]
}

func NewCatalog() *Catalog {
	c := &Catalog{}
	c.current.Store(&Snapshot{})
	return c
}

// Snapshot returns the current catalog view.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Replace atomically installs a new snapshot.
func (c *Catalog) Replace(snap *Snapshot) {
	c.current.Store(snap)
}

// ProductsByType filters a snapshot by product type.
func (s *Snapshot) ProductsByType(t models.ProductType) []models.Product {
	var out []models.Product
	for _, p := range s.Products {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

// ProductsByBrand returns products whose brand fuzzily matches the given
// brand at or above threshold, optionally restricted to one type.
func (s *Snapshot) ProductsByBrand(brand string, threshold int, t models.ProductType) []models.Product {
	brand = strings.ToLower(brand)
	var out []models.Product
	for _, p := range s.Products {
		if t != "" && p.Type != t {
			continue
		}
		if TokenSetRatio(strings.ToLower(p.Brand), brand) >= threshold {
			out = append(out, p)
		}
	}
	return out
}

// Listing renders the whole catalog as "Name (cost KZT)" lines for model
// prompts.
func (s *Snapshot) Listing() string {
	lines := make([]string, 0, len(s.Products))
	for _, p := range s.Products {
		lines = append(lines, fmt.Sprintf("%s (%s KZT)", p.Name, p.CostText()))
	}
	return strings.Join(lines, "\n")
}
