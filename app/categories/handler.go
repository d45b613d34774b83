package categories

import (
	"errors"
	"net/http"

	"github.com/kenyaconnect/storefront/app/api"
	"github.com/kenyaconnect/storefront/models"
)

type CategoryResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	ProductCount int    `json:"product_count"`
}

type CategoryDetail struct {
	CategoryResponse
	Products []api.Product `json:"products"`
}

type CategoryProvider interface {
	GetAllCategories() ([]models.Category, error)
	GetCategory(id string) (*models.Category, error)
	GetProductsByCategory(id string) ([]*models.Product, error)
}

type CategoryHandler struct {
	repo CategoryProvider
}

func NewCategoryHandler(r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{repo: r}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories()
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = newCategoryResponse(c)
	}

	api.OKResponse(w, http.StatusOK, response)
}

// HandleGet returns one category with the products actually filed under it.
// ProductCount is the advertised figure and may differ from len(Products).
func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	category, err := h.repo.GetCategory(id)
	if errors.Is(err, models.ErrCategoryNotFound) {
		api.ErrorResponse(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	products, err := h.repo.GetProductsByCategory(id)
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to fetch products")
		return
	}

	api.OKResponse(w, http.StatusOK, CategoryDetail{
		CategoryResponse: newCategoryResponse(*category),
		Products:         api.NewProducts(products),
	})
}

func newCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Image:        c.Image,
		ProductCount: c.ProductCount,
	}
}
