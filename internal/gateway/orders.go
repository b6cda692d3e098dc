package gateway

import (
	"context"
	"net/http"
)

// OrderItemInput is a (product, quantity) pair. Unit price is not part
// of the payload: the backend stamps the current catalog price at
// creation time.
type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderInput creates a sales order.
type OrderInput struct {
	CustomerID        string           `json:"customerId"`
	ShippingAddressID string           `json:"shippingAddressId,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	Items             []OrderItemInput `json:"items"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Search     string
	CustomerID string
	Status     OrderStatus
	Page       int
	PerPage    int
}

// ListOrders returns a paginated order slice.
func (c *Client) ListOrders(ctx context.Context, filter OrderFilter) (*Page[Order], error) {
	q := newQuery().
		set("search", filter.Search).
		set("customerId", filter.CustomerID).
		set("status", string(filter.Status)).
		setInt("page", filter.Page).
		setInt("perPage", filter.PerPage)
	var page Page[Order]
	if err := c.get(ctx, "/orders", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetOrder fetches one order with items, customer and address.
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.get(ctx, "/orders/"+id, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder submits a new order.
func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (*Order, error) {
	var order Order
	if err := c.send(ctx, http.MethodPost, "/orders", nil, input, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus patches the single status field. No transition
// graph is enforced here; the backend rejects illegal moves.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (*Order, error) {
	var order Order
	payload := map[string]string{"status": string(status)}
	if err := c.send(ctx, http.MethodPatch, "/orders/"+id+"/status", nil, payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/orders/"+id, nil, nil, nil)
}

// ListShippingZones returns the deliverable zones for address forms.
func (c *Client) ListShippingZones(ctx context.Context) ([]ShippingZone, error) {
	var zones []ShippingZone
	if err := c.get(ctx, "/shipping/zones", nil, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// CalculateShipping quotes the cost of shipping to a postal code.
func (c *Client) CalculateShipping(ctx context.Context, postalCode string) (float64, error) {
	var resp struct {
		Cost float64 `json:"cost"`
	}
	q := newQuery().set("postalCode", postalCode)
	if err := c.get(ctx, "/public/shipping/calculate", q, &resp); err != nil {
		return 0, err
	}
	return resp.Cost, nil
}
