package models

import (
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog.
// Price is a whole amount in KES; the catalog never deals in minor units.
type Product struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Price       int64           `json:"price" yaml:"price"`
	Category    string          `json:"category" yaml:"category"`
	Images      []string        `json:"images" yaml:"images"`
	InStock     bool            `json:"in_stock" yaml:"inStock"`
	Rating      decimal.Decimal `json:"rating" yaml:"rating"`
	Reviews     int             `json:"reviews" yaml:"reviews"`
	Featured    bool            `json:"featured,omitempty" yaml:"featured"`
	Tags        []string        `json:"tags" yaml:"tags"`
}

// PrimaryImage returns the first image reference, or "" when the product has none.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
