package gateway

import "time"

// The types below are pure mirrors of backend JSON. The backend owns
// every invariant (code uniqueness, stock non-negativity, one default
// address); this application only renders and submits them.

// Supplier is a product source the shop buys from.
type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	URL       string    `json:"url,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category groups products in the catalog.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog entry. Wholesale and cost tiers are optional;
// retail is always present.
type Product struct {
	ID             string    `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	PriceRetail    float64   `json:"priceRetail"`
	PriceWholesale *float64  `json:"priceWholesale,omitempty"`
	PriceCost      *float64  `json:"priceCost,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	Size           string    `json:"size,omitempty"`
	Active         bool      `json:"active"`
	Visible        bool      `json:"visible"`
	Stock          int       `json:"stock"`
	SupplierID     string    `json:"supplierId,omitempty"`
	CategoryID     string    `json:"categoryId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CustomerType distinguishes pricing treatment server-side.
type CustomerType string

const (
	CustomerRetail    CustomerType = "RETAIL"
	CustomerWholesale CustomerType = "WHOLESALE"
)

// Customer is identified primarily by phone.
type Customer struct {
	ID        string            `json:"id"`
	Phone     string            `json:"phone"`
	Name      string            `json:"name"`
	Type      CustomerType      `json:"type"`
	Notes     string            `json:"notes,omitempty"`
	Active    bool              `json:"active"`
	Addresses []CustomerAddress `json:"addresses,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// CustomerAddress is a shipping destination. At most one address per
// customer carries IsDefault, enforced by the backend's set-default op.
type CustomerAddress struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	Label      string `json:"label"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Province   string `json:"province"`
	Country    string `json:"country"`
	Notes      string `json:"notes,omitempty"`
	IsDefault  bool   `json:"isDefault"`
}

// OrderStatus is the order lifecycle enum. The client offers all five
// values and trusts the backend to reject illegal transitions.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// AllOrderStatuses lists the enum in display order.
var AllOrderStatuses = []OrderStatus{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

// Rank gives a total order over statuses for badges and sorted filters.
func (s OrderStatus) Rank() int {
	for i, status := range AllOrderStatuses {
		if s == status {
			return i
		}
	}
	return len(AllOrderStatuses)
}

// Valid reports whether s is one of the five known statuses.
func (s OrderStatus) Valid() bool {
	return s.Rank() < len(AllOrderStatuses)
}

// Label returns the Spanish badge text for a status.
func (s OrderStatus) Label() string {
	switch s {
	case OrderPending:
		return "Pendiente"
	case OrderPaid:
		return "Pagado"
	case OrderShipped:
		return "Enviado"
	case OrderDelivered:
		return "Entregado"
	case OrderCancelled:
		return "Cancelado"
	default:
		return string(s)
	}
}

// OrderItem captures the unit price at order time. Historical orders
// keep their value when catalog prices change later.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	ProductCode string  `json:"productCode,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// Subtotal is quantity times the captured unit price.
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Order is a sales order through its lifecycle.
type Order struct {
	ID                string           `json:"id"`
	Number            string           `json:"number"`
	CustomerID        string           `json:"customerId"`
	Customer          *Customer        `json:"customer,omitempty"`
	ShippingAddressID string           `json:"shippingAddressId,omitempty"`
	ShippingAddress   *CustomerAddress `json:"shippingAddress,omitempty"`
	Status            OrderStatus      `json:"status"`
	Notes             string           `json:"notes,omitempty"`
	Items             []OrderItem      `json:"items"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// Total sums quantity times unit price over the order's items.
func (o Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}

// MovementType tags a stock ledger entry.
type MovementType string

const (
	MovementPurchase   MovementType = "PURCHASE"
	MovementSale       MovementType = "SALE"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementReturn     MovementType = "RETURN"
)

// StockMovement is an append-only ledger entry; the client never
// mutates or deletes one.
type StockMovement struct {
	ID        string       `json:"id"`
	ProductID string       `json:"productId"`
	Quantity  int          `json:"quantity"`
	Type      MovementType `json:"type"`
	Reference string       `json:"reference,omitempty"`
	Notes     string       `json:"notes,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// SupplierOrderItem is one line of a reconciled import batch.
type SupplierOrderItem struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	UnitCost float64 `json:"unitCost"`
}

// SupplierOrder is the persisted record of a reconciled import batch,
// created only as a side effect of a successful import execution.
type SupplierOrder struct {
	ID            string              `json:"id"`
	InvoiceNumber string              `json:"invoiceNumber"`
	SupplierID    string              `json:"supplierId"`
	SupplierName  string              `json:"supplierName,omitempty"`
	Date          time.Time           `json:"date"`
	Subtotal      float64             `json:"subtotal"`
	Shipping      float64             `json:"shipping"`
	Surcharge     float64             `json:"surcharge"`
	Total         float64             `json:"total"`
	Currency      string              `json:"currency"`
	PDFURL        string              `json:"pdfUrl,omitempty"`
	Items         []SupplierOrderItem `json:"items"`
}

// ShippingZone is a deliverable region with a flat cost.
type ShippingZone struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// DashboardStats is the backend's aggregate snapshot for the home view.
type DashboardStats struct {
	OrdersByStatus map[OrderStatus]int `json:"ordersByStatus"`
	TotalProducts  int                 `json:"totalProducts"`
	TotalCustomers int                 `json:"totalCustomers"`
	LowStock       []Product           `json:"lowStock"`
	RecentOrders   []Order             `json:"recentOrders"`
}

// UploadAuth is a short-lived signed authorization for pushing an image
// straight to the CDN; the backend never sees the raw bytes.
type UploadAuth struct {
	Token     string `json:"token"`
	Expire    int64  `json:"expire"`
	Signature string `json:"signature"`
}

// Page is the generic paginated listing envelope the backend returns.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
