package gateway

import (
	"context"
	"net/http"
)

// CustomerInput is the create/update payload for customers.
type CustomerInput struct {
	Phone string       `json:"phone"`
	Name  string       `json:"name"`
	Type  CustomerType `json:"type"`
	Notes string       `json:"notes,omitempty"`
}

// AddressInput is the create/update payload for customer addresses.
type AddressInput struct {
	Label      string `json:"label"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Province   string `json:"province"`
	Country    string `json:"country"`
	Notes      string `json:"notes,omitempty"`
}

// CustomerFilter narrows customer listings.
type CustomerFilter struct {
	Search string
	Type   CustomerType
	Active *bool
}

// ListCustomers returns customers matching the filter.
func (c *Client) ListCustomers(ctx context.Context, filter CustomerFilter) ([]Customer, error) {
	q := newQuery().
		set("search", filter.Search).
		set("type", string(filter.Type)).
		setBool("active", filter.Active)
	var customers []Customer
	if err := c.get(ctx, "/customers", q, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// GetCustomer fetches one customer with addresses.
func (c *Client) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var customer Customer
	if err := c.get(ctx, "/customers/"+id, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCustomer creates a customer.
func (c *Client) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	var customer Customer
	if err := c.send(ctx, http.MethodPost, "/customers", nil, input, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateCustomer applies a partial update.
func (c *Client) UpdateCustomer(ctx context.Context, id string, input CustomerInput) (*Customer, error) {
	var customer Customer
	if err := c.send(ctx, http.MethodPatch, "/customers/"+id, nil, input, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// ArchiveCustomer deactivates a customer.
func (c *Client) ArchiveCustomer(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodPatch, "/customers/"+id+"/archive", nil, nil, nil)
}

// RestoreCustomer reactivates a customer.
func (c *Client) RestoreCustomer(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodPatch, "/customers/"+id+"/restore", nil, nil, nil)
}

// CreateAddress adds a shipping address to a customer.
func (c *Client) CreateAddress(ctx context.Context, customerID string, input AddressInput) (*CustomerAddress, error) {
	var address CustomerAddress
	q := newQuery().set("customerId", customerID)
	if err := c.send(ctx, http.MethodPost, "/customer-addresses", q, input, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

// UpdateAddress applies a partial update to an address.
func (c *Client) UpdateAddress(ctx context.Context, id string, input AddressInput) (*CustomerAddress, error) {
	var address CustomerAddress
	if err := c.send(ctx, http.MethodPatch, "/customer-addresses/"+id, nil, input, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

// DeleteAddress removes an address.
func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/customer-addresses/"+id, nil, nil, nil)
}

// SetDefaultAddress marks one address as the customer's default. The
// backend serializes this so exactly one default survives.
func (c *Client) SetDefaultAddress(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodPatch, "/customer-addresses/"+id+"/set-default", nil, nil, nil)
}
