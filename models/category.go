package models

// Category represents a product category.
// ProductCount is a display hint carried with the catalog data. It is never
// recomputed from the products and may drift from the real count.
type Category struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
	Image        string `json:"image" yaml:"image"`
	ProductCount int    `json:"product_count" yaml:"productCount"`
}
