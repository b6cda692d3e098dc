package gateway

import (
	"context"
	"net/http"
)

// SupplierInput is the create/update payload for suppliers.
type SupplierInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	URL   string `json:"url,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// SupplierFilter narrows supplier listings. Zero values are not
// serialized.
type SupplierFilter struct {
	Search string
	Active *bool
}

// ListSuppliers returns suppliers matching the filter. Archived
// suppliers stay listable for historical references.
func (c *Client) ListSuppliers(ctx context.Context, filter SupplierFilter) ([]Supplier, error) {
	q := newQuery().set("search", filter.Search).setBool("active", filter.Active)
	var suppliers []Supplier
	if err := c.get(ctx, "/suppliers", q, &suppliers); err != nil {
		return nil, err
	}
	return suppliers, nil
}

// GetSupplier fetches one supplier by id.
func (c *Client) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	var supplier Supplier
	if err := c.get(ctx, "/suppliers/"+id, nil, &supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// CreateSupplier creates a supplier.
func (c *Client) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	var supplier Supplier
	if err := c.send(ctx, http.MethodPost, "/suppliers", nil, input, &supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// UpdateSupplier applies a partial update.
func (c *Client) UpdateSupplier(ctx context.Context, id string, input SupplierInput) (*Supplier, error) {
	var supplier Supplier
	if err := c.send(ctx, http.MethodPatch, "/suppliers/"+id, nil, input, &supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// ArchiveSupplier hides the supplier from active-selection lists while
// keeping it referenceable by historical products and orders.
func (c *Client) ArchiveSupplier(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodPatch, "/suppliers/"+id+"/archive", nil, nil, nil)
}

// RestoreSupplier reverses an archive.
func (c *Client) RestoreSupplier(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodPatch, "/suppliers/"+id+"/restore", nil, nil, nil)
}

// DeleteSupplier removes the supplier permanently.
func (c *Client) DeleteSupplier(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/suppliers/"+id, nil, nil, nil)
}
