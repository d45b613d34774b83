package models

type ProductsRepository struct {
	catalog *Catalog
}

func NewProductsRepository(catalog *Catalog) *ProductsRepository {
	return &ProductsRepository{
		catalog: catalog,
	}
}

func (r *ProductsRepository) GetFilteredProducts(offset, limit int, filters ProductFilters) ([]*Product, int64, error) {
	products := r.catalog.Query(filters)
	total := int64(len(products))

	// Apply pagination
	start := offset
	if start < 0 {
		start = 0
	}
	if start > len(products) {
		start = len(products)
	}
	// Compare against the remainder so huge offsets or limits cannot overflow.
	end := len(products)
	if limit >= 0 && limit < end-start {
		end = start + limit
	}

	return products[start:end], total, nil
}

func (r *ProductsRepository) GetFeaturedProducts() ([]*Product, error) {
	return r.catalog.Featured(), nil
}

func (r *ProductsRepository) GetByID(id string) (*Product, error) {
	return r.catalog.FindByID(id)
}

func (r *ProductsRepository) GetRelated(product *Product, limit int) ([]*Product, error) {
	return r.catalog.Related(product, limit), nil
}

func (r *ProductsRepository) GetAllCategories() ([]Category, error) {
	return r.catalog.Categories(), nil
}

func (r *ProductsRepository) GetCategory(id string) (*Category, error) {
	return r.catalog.FindCategory(id)
}

func (r *ProductsRepository) GetProductsByCategory(id string) ([]*Product, error) {
	return r.catalog.FilterByCategory(id), nil
}
