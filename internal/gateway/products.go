package gateway

import (
	"context"
	"net/http"
)

// ProductInput is the create/update payload for catalog entries.
type ProductInput struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	PriceRetail    float64  `json:"priceRetail"`
	PriceWholesale *float64 `json:"priceWholesale,omitempty"`
	PriceCost      *float64 `json:"priceCost,omitempty"`
	ImageURL       string   `json:"imageUrl,omitempty"`
	Size           string   `json:"size,omitempty"`
	Visible        bool     `json:"visible"`
	SupplierID     string   `json:"supplierId,omitempty"`
	CategoryID     string   `json:"categoryId,omitempty"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Search     string
	SupplierID string
	CategoryID string
	Active     *bool
	Page       int
	PerPage    int
}

// ListProducts returns a paginated catalog slice.
func (c *Client) ListProducts(ctx context.Context, filter ProductFilter) (*Page[Product], error) {
	q := newQuery().
		set("search", filter.Search).
		set("supplierId", filter.SupplierID).
		set("categoryId", filter.CategoryID).
		setBool("active", filter.Active).
		setInt("page", filter.Page).
		setInt("perPage", filter.PerPage)
	var page Page[Product]
	if err := c.get(ctx, "/products", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProduct fetches one product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := c.get(ctx, "/products/"+id, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CheckProductCode reports whether a code is already taken. Uniqueness
// is enforced server-side; this exists only for the pre-submit warning.
func (c *Client) CheckProductCode(ctx context.Context, code string) (bool, error) {
	var resp struct {
		Exists bool `json:"exists"`
	}
	q := newQuery().set("code", code)
	if err := c.get(ctx, "/products/check-code", q, &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// CreateProduct creates a catalog entry.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	var product Product
	if err := c.send(ctx, http.MethodPost, "/products", nil, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct applies a partial update.
func (c *Client) UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error) {
	var product Product
	if err := c.send(ctx, http.MethodPatch, "/products/"+id, nil, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ArchiveProduct hides the product from sale without deleting it.
func (c *Client) ArchiveProduct(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodPatch, "/products/"+id+"/archive", nil, nil, nil)
}

// RestoreProduct reverses an archive.
func (c *Client) RestoreProduct(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodPatch, "/products/"+id+"/restore", nil, nil, nil)
}

// DeleteProduct removes the product permanently.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/products/"+id, nil, nil, nil)
}

// ListCategories returns every category.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.get(ctx, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, name string) (*Category, error) {
	var category Category
	payload := map[string]string{"name": name}
	if err := c.send(ctx, http.MethodPost, "/categories", nil, payload, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, id, name string) (*Category, error) {
	var category Category
	payload := map[string]string{"name": name}
	if err := c.send(ctx, http.MethodPatch, "/categories/"+id, nil, payload, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category. Products keep working; the backend
// clears their reference.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/categories/"+id, nil, nil, nil)
}
