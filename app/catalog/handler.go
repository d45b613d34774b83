package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kenyaconnect/storefront/app/api"
	"github.com/kenyaconnect/storefront/models"
)

const relatedLimit = 4

type Response struct {
	Total    int           `json:"total"`
	Products []api.Product `json:"products"`
}

type ProductDetail struct {
	api.Product
	Related []api.Product `json:"related"`
}

type ProductProvider interface {
	GetFilteredProducts(offset, limit int, filters models.ProductFilters) ([]*models.Product, int64, error)
	GetFeaturedProducts() ([]*models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetRelated(product *models.Product, limit int) ([]*models.Product, error)
}

type CatalogHandler struct {
	repo ProductProvider
}

func NewCatalogHandler(r ProductProvider) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Parse pagination query params
	offset := 0
	limit := 10

	if oStr := q.Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := q.Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	// Parse filters; malformed values are ignored
	filters := models.ProductFilters{
		CategoryCode: q.Get("category"),
		Search:       q.Get("search"),
		MinPrice:     parseAmount(q.Get("min_price")),
		MaxPrice:     parseAmount(q.Get("max_price")),
		Sort:         q.Get("sort"),
	}
	if v, err := strconv.ParseBool(q.Get("in_stock")); err == nil {
		filters.InStockOnly = v
	}

	res, total, err := h.repo.GetFilteredProducts(offset, limit, filters)
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	api.OKResponse(w, http.StatusOK, Response{
		Total:    int(total),
		Products: api.NewProducts(res),
	})
}

func (h *CatalogHandler) HandleGetFeatured(w http.ResponseWriter, r *http.Request) {
	res, err := h.repo.GetFeaturedProducts()
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to get products")
		return
	}
	api.OKResponse(w, http.StatusOK, Response{
		Total:    len(res),
		Products: api.NewProducts(res),
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	product, err := h.repo.GetByID(id)
	if errors.Is(err, models.ErrProductNotFound) {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	related, err := h.repo.GetRelated(product, relatedLimit)
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	api.OKResponse(w, http.StatusOK, ProductDetail{
		Product: api.NewProduct(product),
		Related: api.NewProducts(related),
	})
}

func parseAmount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
