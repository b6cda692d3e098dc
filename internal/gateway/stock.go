package gateway

import (
	"context"
	"net/http"
)

// AdjustmentInput posts a signed quantity delta against a product. The
// backend appends the resulting ledger entry and is the sole arbiter of
// stock non-negativity under concurrent adjustments.
type AdjustmentInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
}

// PostAdjustment records a manual stock adjustment and returns the
// confirming ledger entry.
func (c *Client) PostAdjustment(ctx context.Context, input AdjustmentInput) (*StockMovement, error) {
	var movement StockMovement
	if err := c.send(ctx, http.MethodPost, "/stock/adjustments", nil, input, &movement); err != nil {
		return nil, err
	}
	return &movement, nil
}

// ListMovements returns the movement ledger for a product, newest
// first.
func (c *Client) ListMovements(ctx context.Context, productID string) ([]StockMovement, error) {
	q := newQuery().set("productId", productID)
	var movements []StockMovement
	if err := c.get(ctx, "/stock/movements", q, &movements); err != nil {
		return nil, err
	}
	return movements, nil
}

// GetDashboardStats fetches the aggregate snapshot for the home view.
func (c *Client) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.get(ctx, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListSupplierOrders returns persisted import batches.
func (c *Client) ListSupplierOrders(ctx context.Context, supplierID string) ([]SupplierOrder, error) {
	q := newQuery().set("supplierId", supplierID)
	var orders []SupplierOrder
	if err := c.get(ctx, "/supplier-orders", q, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetSupplierOrder fetches one import batch.
func (c *Client) GetSupplierOrder(ctx context.Context, id string) (*SupplierOrder, error) {
	var order SupplierOrder
	if err := c.get(ctx, "/supplier-orders/"+id, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetUploadAuth requests a short-lived signed authorization for a
// direct image upload to the CDN.
func (c *Client) GetUploadAuth(ctx context.Context) (*UploadAuth, error) {
	var auth UploadAuth
	if err := c.get(ctx, "/upload/auth", nil, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}
