package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// The parse endpoints return a different preview shape per source. The
// importer package normalizes them into one staging shape; here they
// stay faithful mirrors of the backend JSON.

// InvoiceItem is a candidate product parsed from a supplier invoice PDF.
type InvoiceItem struct {
	Code               string  `json:"code"`
	Description        string  `json:"description"`
	Quantity           int     `json:"quantity"`
	UnitCost           float64 `json:"unitCost"`
	SuggestedRetail    float64 `json:"suggestedRetail"`
	SuggestedWholesale float64 `json:"suggestedWholesale"`
	SuggestedCategory  string  `json:"suggestedCategoryId"`
	WeightGrams        float64 `json:"weightGrams,omitempty"`
	MetalType          string  `json:"metalType,omitempty"`
	Exists             bool    `json:"exists"`
	ProductID          string  `json:"productId,omitempty"`
}

// InvoicePreview is the parse result for the invoice PDF source.
type InvoicePreview struct {
	InvoiceNumber     string        `json:"invoiceNumber"`
	InvoiceDate       string        `json:"invoiceDate"`
	InvoiceExists     bool          `json:"invoiceExists"`
	ExistingInvoiceID string        `json:"existingInvoiceId,omitempty"`
	SupplierID        string        `json:"supplierId,omitempty"`
	Currency          string        `json:"currency"`
	Subtotal          float64       `json:"subtotal"`
	Shipping          float64       `json:"shipping"`
	Surcharge         float64       `json:"surcharge"`
	Total             float64       `json:"total"`
	Items             []InvoiceItem `json:"items"`
}

// EmailItem is a candidate parsed from a shipment-confirmation email.
type EmailItem struct {
	SKU                 string  `json:"sku"`
	Title               string  `json:"title"`
	Qty                 int     `json:"qty"`
	Price               float64 `json:"price"`
	RetailSuggestion    float64 `json:"retailSuggestion"`
	WholesaleSuggestion float64 `json:"wholesaleSuggestion"`
	SuggestedCategory   string  `json:"suggestedCategoryId"`
	AlreadyInCatalog    bool    `json:"alreadyInCatalog"`
	ProductID           string  `json:"productId,omitempty"`
}

// EmailPreview is the parse result for the .eml source.
type EmailPreview struct {
	OrderNumber    string      `json:"orderNumber"`
	TrackingNumber string      `json:"trackingNumber,omitempty"`
	Carrier        string      `json:"carrier,omitempty"`
	SupplierID     string      `json:"supplierId,omitempty"`
	Subtotal       float64     `json:"subtotal"`
	Shipping       float64     `json:"shipping"`
	Total          float64     `json:"total"`
	Items          []EmailItem `json:"items"`
}

// ExcelRow is a candidate parsed from a spreadsheet. Excel files carry
// no supplier identity, so the caller supplies one up front.
type ExcelRow struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Units             int     `json:"units"`
	Cost              float64 `json:"cost"`
	Retail            float64 `json:"retail"`
	Wholesale         float64 `json:"wholesale"`
	SuggestedCategory string  `json:"suggestedCategoryId"`
	Exists            bool    `json:"exists"`
	ProductID         string  `json:"productId,omitempty"`
}

// ExcelPreview is the parse result for the spreadsheet source.
type ExcelPreview struct {
	Subtotal float64    `json:"subtotal"`
	Total    float64    `json:"total"`
	Rows     []ExcelRow `json:"rows"`
}

// MayoristaItem is a candidate from the vendor-specific wholesale
// silver invoice, priced by weight.
type MayoristaItem struct {
	Codigo            string  `json:"codigo"`
	Descripcion       string  `json:"descripcion"`
	Cantidad          int     `json:"cantidad"`
	CostoUnitario     float64 `json:"costoUnitario"`
	SugeridoMinorista float64 `json:"sugeridoMinorista"`
	SugeridoMayorista float64 `json:"sugeridoMayorista"`
	CategoriaSugerida string  `json:"categoriaSugerida"`
	PesoGramos        float64 `json:"pesoGramos"`
	Metal             string  `json:"metal"`
	Existe            bool    `json:"existe"`
	ProductID         string  `json:"productId,omitempty"`
}

// MayoristaPreview is the parse result for the mayorista-plata source.
type MayoristaPreview struct {
	InvoiceNumber     string          `json:"invoiceNumber"`
	InvoiceDate       string          `json:"invoiceDate"`
	InvoiceExists     bool            `json:"invoiceExists"`
	ExistingInvoiceID string          `json:"existingInvoiceId,omitempty"`
	Subtotal          float64         `json:"subtotal"`
	Shipping          float64         `json:"shipping"`
	Total             float64         `json:"total"`
	Items             []MayoristaItem `json:"items"`
}

// SearchResult is a candidate returned by the query-based source.
type SearchResult struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Cost              float64 `json:"cost"`
	SuggestedRetail   float64 `json:"suggestedRetail"`
	SuggestedCategory string  `json:"suggestedCategoryId"`
	Exists            bool    `json:"exists"`
	ProductID         string  `json:"productId,omitempty"`
}

// ImportItemInput is one selected staging row mapped back to the
// execution-request shape.
type ImportItemInput struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	Quantity       int      `json:"quantity"`
	CostPrice      float64  `json:"costPrice"`
	RetailPrice    float64  `json:"retailPrice"`
	WholesalePrice *float64 `json:"wholesalePrice,omitempty"`
	CategoryID     string   `json:"categoryId,omitempty"`
	WeightGrams    float64  `json:"weightGrams,omitempty"`
	MetalType      string   `json:"metalType,omitempty"`
	ProductID      string   `json:"productId,omitempty"`
}

// ExecuteImportRequest finalizes an import: only selected items plus
// the carried-over source metadata.
type ExecuteImportRequest struct {
	Source         string            `json:"source"`
	SupplierID     string            `json:"supplierId"`
	InvoiceNumber  string            `json:"invoiceNumber,omitempty"`
	InvoiceDate    string            `json:"invoiceDate,omitempty"`
	TrackingNumber string            `json:"trackingNumber,omitempty"`
	ShippingCost   float64           `json:"shippingCost,omitempty"`
	Currency       string            `json:"currency,omitempty"`
	Items          []ImportItemInput `json:"items"`
}

// ImportItemError reports one item the backend could not import.
type ImportItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult is the execution outcome. Partial failures arrive here;
// already-imported items are never rolled back by the client.
type ImportResult struct {
	Imported        int               `json:"imported"`
	Skipped         int               `json:"skipped"`
	SupplierOrderID string            `json:"supplierOrderId,omitempty"`
	Errors          []ImportItemError `json:"errors,omitempty"`
}

// ParseInvoice submits a supplier invoice PDF for server-side parsing.
func (c *Client) ParseInvoice(ctx context.Context, file FileAttachment) (*InvoicePreview, error) {
	var preview InvoicePreview
	if err := c.sendMultipart(ctx, http.MethodPost, "/import/parse-invoice", nil, nil, []FileAttachment{file}, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// ParseEmail submits a .eml shipment confirmation for parsing.
func (c *Client) ParseEmail(ctx context.Context, file FileAttachment) (*EmailPreview, error) {
	var preview EmailPreview
	if err := c.sendMultipart(ctx, http.MethodPost, "/import/parse-email", nil, nil, []FileAttachment{file}, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// ParseExcel submits a spreadsheet for parsing. prefix is the chosen
// supplier's code prefix, mandatory because spreadsheets carry no
// supplier identity of their own.
func (c *Client) ParseExcel(ctx context.Context, file FileAttachment, prefix string) (*ExcelPreview, error) {
	if prefix == "" {
		return nil, fmt.Errorf("excel parse requires a supplier prefix")
	}
	q := newQuery().set("prefix", prefix)
	var preview ExcelPreview
	if err := c.sendMultipart(ctx, http.MethodPost, "/import/parse-excel", q, nil, []FileAttachment{file}, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// ParseMayoristaPlata submits the vendor-specific wholesale PDF.
func (c *Client) ParseMayoristaPlata(ctx context.Context, file FileAttachment) (*MayoristaPreview, error) {
	var preview MayoristaPreview
	if err := c.sendMultipart(ctx, http.MethodPost, "/import/parse-mayorista-plata", nil, nil, []FileAttachment{file}, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// SearchImportCandidates runs the query-based source.
func (c *Client) SearchImportCandidates(ctx context.Context, search string) ([]SearchResult, error) {
	q := newQuery().set("q", search)
	var results []SearchResult
	if err := c.get(ctx, "/import/search", q, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ExecuteImport submits the final import request. When the source was a
// file the original is attached so the backend can persist a copy; the
// request then goes as multipart with the JSON under a "data" field.
func (c *Client) ExecuteImport(ctx context.Context, req ExecuteImportRequest, original *FileAttachment) (*ImportResult, error) {
	var result ImportResult
	if original == nil {
		if err := c.send(ctx, http.MethodPost, "/import/execute", nil, req, &result); err != nil {
			return nil, err
		}
		return &result, nil
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode import request: %w", err)
	}
	fields := map[string]string{"data": string(data)}
	if err := c.sendMultipart(ctx, http.MethodPost, "/import/execute", nil, fields, []FileAttachment{*original}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
