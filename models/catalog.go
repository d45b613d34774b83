package models

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
)

// Catalog is the static, read-only product and category collection.
// Lookups hand out pointers into the catalog; callers must not mutate them.
type Catalog struct {
	categories []Category
	products   []*Product
}

type catalogFile struct {
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
}

// NewCatalog builds a catalog from already decoded records, keeping their order.
func NewCatalog(categories []Category, products []Product) *Catalog {
	c := &Catalog{
		categories: make([]Category, len(categories)),
		products:   make([]*Product, len(products)),
	}
	copy(c.categories, categories)
	for i := range products {
		p := products[i]
		c.products[i] = &p
	}
	return c
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Products))
	for _, p := range f.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("decode catalog: product %q has no id", p.Name)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("decode catalog: duplicate product id %q", p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("decode catalog: product %q has negative price", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return NewCatalog(f.Categories, f.Products), nil
}

// LoadCatalogFile reads a catalog from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// MustLoadCatalog returns the catalog compiled into the binary.
func MustLoadCatalog() *Catalog {
	c, err := ParseCatalog(embeddedCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// Products returns every product in catalog order.
func (c *Catalog) Products() []*Product {
	out := make([]*Product, len(c.products))
	copy(out, c.products)
	return out
}

// Categories returns every category in catalog order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Catalog) FindCategory(id string) (*Category, error) {
	for i := range c.categories {
		if c.categories[i].ID == id {
			cat := c.categories[i]
			return &cat, nil
		}
	}
	return nil, ErrCategoryNotFound
}

// FindByID returns the first product with the given id.
func (c *Catalog) FindByID(id string) (*Product, error) {
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (c *Catalog) FilterByCategory(categoryID string) []*Product {
	return c.filter(func(p *Product) bool { return p.Category == categoryID })
}

func (c *Catalog) Featured() []*Product {
	return c.filter(func(p *Product) bool { return p.Featured })
}

// Search matches query case-insensitively against name, description and tags.
// An empty query matches every product; callers decide whether to skip it.
func (c *Catalog) Search(query string) []*Product {
	q := strings.ToLower(query)
	return c.filter(func(p *Product) bool {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			return true
		}
		for _, tag := range p.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
}

// Related returns up to limit other products from the same category.
func (c *Catalog) Related(product *Product, limit int) []*Product {
	var out []*Product
	for _, p := range c.products {
		if limit > 0 && len(out) >= limit {
			break
		}
		if p.Category == product.Category && p.ID != product.ID {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders accepted by ProductFilters.Sort.
const (
	SortFeatured  = "featured"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortRating    = "rating"
)

const DefaultMaxPrice int64 = 20000

// ProductFilters narrows a catalog listing. Zero values disable a filter,
// except MaxPrice which falls back to DefaultMaxPrice.
type ProductFilters struct {
	CategoryCode string
	Search       string
	MinPrice     int64
	MaxPrice     int64
	InStockOnly  bool
	Sort         string
}

// Query runs the browse pipeline: search, category, price range, stock, sort.
func (c *Catalog) Query(filters ProductFilters) []*Product {
	var result []*Product
	if filters.Search != "" {
		result = c.Search(filters.Search)
	} else {
		result = c.Products()
	}

	maxPrice := filters.MaxPrice
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPrice
	}

	filtered := result[:0:0]
	for _, p := range result {
		if filters.CategoryCode != "" && p.Category != filters.CategoryCode {
			continue
		}
		if p.Price < filters.MinPrice || p.Price > maxPrice {
			continue
		}
		if filters.InStockOnly && !p.InStock {
			continue
		}
		filtered = append(filtered, p)
	}

	switch filters.Sort {
	case SortPriceAsc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case SortPriceDesc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	case SortRating:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Rating.GreaterThan(filtered[j].Rating)
		})
	case SortFeatured:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Featured && !filtered[j].Featured })
	}
	return filtered
}

func (c *Catalog) filter(keep func(*Product) bool) []*Product {
	var out []*Product
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
