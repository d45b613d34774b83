package api

import (
	"github.com/kenyaconnect/storefront/models"
)

// Product is the public JSON shape of a catalog product.
type Product struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          int64    `json:"price"`
	FormattedPrice string   `json:"formatted_price"`
	Category       string   `json:"category"`
	Image          string   `json:"image"`
	Images         []string `json:"images"`
	InStock        bool     `json:"in_stock"`
	Rating         float64  `json:"rating"`
	Reviews        int      `json:"reviews"`
	Featured       bool     `json:"featured"`
	Tags           []string `json:"tags"`
}

func NewProduct(p *models.Product) Product {
	return Product{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		FormattedPrice: models.FormatPrice(p.Price),
		Category:       p.Category,
		Image:          p.PrimaryImage(),
		Images:         p.Images,
		InStock:        p.InStock,
		Rating:         p.Rating.InexactFloat64(),
		Reviews:        p.Reviews,
		Featured:       p.Featured,
		Tags:           p.Tags,
	}
}

func NewProducts(ps []*models.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = NewProduct(p)
	}
	return out
}
