package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ProductType distinguishes full bottles from decanted 1ml samples.
type ProductType string

const (
	TypeOriginal ProductType = "original"
	TypeSpilled  ProductType = "spilled"
)

// Product is a single sellable catalog entry. Products are built in bulk by
// the catalog refresher and never mutated afterwards; a new refresh replaces
// the whole set.
type Product struct {
	Name        string      `bson:"name" json:"name"`
	Brand       string      `bson:"brand" json:"brand"`
	Type        ProductType `bson:"type" json:"type"`
	Volume      string      `bson:"volume" json:"volume"`
	Cost        float64     `bson:"cost" json:"cost"`
	Country     string      `bson:"country" json:"country"`
	Description string      `bson:"description,omitempty" json:"description,omitempty"`
}

// DedupKey identifies a product within one catalog snapshot. Two rows with
// the same key are the same sellable item regardless of letter case.
func (p Product) DedupKey() string {
	return fmt.Sprintf("%s|%s|%s",
		strings.ToLower(strings.TrimSpace(p.Name)),
		p.Type,
		strings.ToLower(strings.TrimSpace(p.Volume)),
	)
}

// CostText renders the cost for user-facing replies; sheets occasionally
// miss the price column.
func (p Product) CostText() string {
	if p.Cost <= 0 {
		return "нет данных"
	}
	return strconv.FormatFloat(p.Cost, 'f', -1, 64)
}
