package importer

import (
	"github.com/alhaja/alhaja-admin/internal/gateway"
)

// ProductToImport is the transient staging shape every source preview
// is normalized into. It exists only for the lifetime of a wizard
// session and is never persisted; execution translates it back into
// the request shape.
type ProductToImport struct {
	Code                string
	Name                string
	Quantity            int
	Cost                float64
	Retail              float64
	Wholesale           *float64
	SuggestedCategoryID string
	WeightGrams         float64
	MetalType           string
	Exists              bool
	ProductID           string
	Selected            bool
}

// Metadata carries the source-specific document data through the
// wizard into the execution request.
type Metadata struct {
	Source            Source
	SupplierID        string
	InvoiceNumber     string
	InvoiceDate       string
	DocumentExists    bool
	ExistingInvoiceID string
	OrderNumber       string
	TrackingNumber    string
	Carrier           string
	Currency          string
}

// DocumentTotals is the monetary reconciliation panel: the source
// document's own stated figures. Discrepancies against the rollup are
// display-only and never block execution.
type DocumentTotals struct {
	Subtotal  float64
	Shipping  float64
	Surcharge float64
	Total     float64
}

// Preview is the tagged union over the heterogeneous parse results.
// One implementation per source keeps the mapping exhaustive: adding a
// source without a Normalize mapping cannot compile.
type Preview interface {
	Source() Source
	Normalize() []ProductToImport
	Metadata() Metadata
	DocumentTotals() DocumentTotals
}

// defaultMetal is assumed when a source omits the metal type; the shop
// only imports sterling silver from those suppliers.
const defaultMetal = "plata-925"

// InvoicePreview adapts the invoice PDF parse result.
type InvoicePreview struct {
	gateway.InvoicePreview
}

func (p InvoicePreview) Source() Source { return SourceInvoice }

func (p InvoicePreview) Normalize() []ProductToImport {
	items := make([]ProductToImport, 0, len(p.Items))
	for _, item := range p.Items {
		wholesale := item.SuggestedWholesale
		items = append(items, ProductToImport{
			Code:                item.Code,
			Name:                item.Description,
			Quantity:            item.Quantity,
			Cost:                item.UnitCost,
			Retail:              item.SuggestedRetail,
			Wholesale:           &wholesale,
			SuggestedCategoryID: item.SuggestedCategory,
			WeightGrams:         item.WeightGrams,
			MetalType:           item.MetalType,
			Exists:              item.Exists,
			ProductID:           item.ProductID,
			// Existing products are pre-deselected to avoid duplicate
			// creation; the operator can still opt them in.
			Selected: !item.Exists,
		})
	}
	return items
}

func (p InvoicePreview) Metadata() Metadata {
	return Metadata{
		Source:            SourceInvoice,
		SupplierID:        p.SupplierID,
		InvoiceNumber:     p.InvoiceNumber,
		InvoiceDate:       p.InvoiceDate,
		DocumentExists:    p.InvoiceExists,
		ExistingInvoiceID: p.ExistingInvoiceID,
		Currency:          p.Currency,
	}
}

func (p InvoicePreview) DocumentTotals() DocumentTotals {
	return DocumentTotals{Subtotal: p.Subtotal, Shipping: p.Shipping, Surcharge: p.Surcharge, Total: p.Total}
}

// EmailPreview adapts the .eml parse result.
type EmailPreview struct {
	gateway.EmailPreview
}

func (p EmailPreview) Source() Source { return SourceEmail }

func (p EmailPreview) Normalize() []ProductToImport {
	items := make([]ProductToImport, 0, len(p.Items))
	for _, item := range p.Items {
		wholesale := item.WholesaleSuggestion
		items = append(items, ProductToImport{
			Code:                item.SKU,
			Name:                item.Title,
			Quantity:            item.Qty,
			Cost:                item.Price,
			Retail:              item.RetailSuggestion,
			Wholesale:           &wholesale,
			SuggestedCategoryID: item.SuggestedCategory,
			Exists:              item.AlreadyInCatalog,
			ProductID:           item.ProductID,
			Selected:            !item.AlreadyInCatalog,
		})
	}
	return items
}

func (p EmailPreview) Metadata() Metadata {
	return Metadata{
		Source:         SourceEmail,
		SupplierID:     p.SupplierID,
		OrderNumber:    p.OrderNumber,
		TrackingNumber: p.TrackingNumber,
		Carrier:        p.Carrier,
	}
}

func (p EmailPreview) DocumentTotals() DocumentTotals {
	return DocumentTotals{Subtotal: p.Subtotal, Shipping: p.Shipping, Total: p.Total}
}

// ExcelPreview adapts the spreadsheet parse result. The supplier comes
// from the wizard, not the document.
type ExcelPreview struct {
	gateway.ExcelPreview
	SupplierID string
}

func (p ExcelPreview) Source() Source { return SourceExcel }

func (p ExcelPreview) Normalize() []ProductToImport {
	items := make([]ProductToImport, 0, len(p.Rows))
	for _, row := range p.Rows {
		var wholesale *float64
		if row.Wholesale > 0 {
			w := row.Wholesale
			wholesale = &w
		}
		items = append(items, ProductToImport{
			Code:                row.Code,
			Name:                row.Name,
			Quantity:            row.Units,
			Cost:                row.Cost,
			Retail:              row.Retail,
			Wholesale:           wholesale,
			SuggestedCategoryID: row.SuggestedCategory,
			Exists:              row.Exists,
			ProductID:           row.ProductID,
			Selected:            !row.Exists,
		})
	}
	return items
}

func (p ExcelPreview) Metadata() Metadata {
	return Metadata{Source: SourceExcel, SupplierID: p.SupplierID}
}

func (p ExcelPreview) DocumentTotals() DocumentTotals {
	return DocumentTotals{Subtotal: p.Subtotal, Total: p.Total}
}

// MayoristaPreview adapts the vendor-specific wholesale silver invoice.
type MayoristaPreview struct {
	gateway.MayoristaPreview
	SupplierID string
}

func (p MayoristaPreview) Source() Source { return SourceMayoristaPlata }

func (p MayoristaPreview) Normalize() []ProductToImport {
	items := make([]ProductToImport, 0, len(p.Items))
	for _, item := range p.Items {
		wholesale := item.SugeridoMayorista
		metal := item.Metal
		if metal == "" {
			metal = defaultMetal
		}
		items = append(items, ProductToImport{
			Code:                item.Codigo,
			Name:                item.Descripcion,
			Quantity:            item.Cantidad,
			Cost:                item.CostoUnitario,
			Retail:              item.SugeridoMinorista,
			Wholesale:           &wholesale,
			SuggestedCategoryID: item.CategoriaSugerida,
			WeightGrams:         item.PesoGramos,
			MetalType:           metal,
			Exists:              item.Existe,
			ProductID:           item.ProductID,
			Selected:            !item.Existe,
		})
	}
	return items
}

func (p MayoristaPreview) Metadata() Metadata {
	return Metadata{
		Source:            SourceMayoristaPlata,
		SupplierID:        p.SupplierID,
		InvoiceNumber:     p.InvoiceNumber,
		InvoiceDate:       p.InvoiceDate,
		DocumentExists:    p.InvoiceExists,
		ExistingInvoiceID: p.ExistingInvoiceID,
	}
}

func (p MayoristaPreview) DocumentTotals() DocumentTotals {
	return DocumentTotals{Subtotal: p.Subtotal, Shipping: p.Shipping, Total: p.Total}
}

// SearchPreview adapts the query-based source. Quantity defaults to one
// unit per candidate; there is no document to reconcile against.
type SearchPreview struct {
	Results    []gateway.SearchResult
	SupplierID string
}

func (p SearchPreview) Source() Source { return SourceSearch }

func (p SearchPreview) Normalize() []ProductToImport {
	items := make([]ProductToImport, 0, len(p.Results))
	for _, result := range p.Results {
		items = append(items, ProductToImport{
			Code:                result.Code,
			Name:                result.Name,
			Quantity:            1,
			Cost:                result.Cost,
			Retail:              result.SuggestedRetail,
			SuggestedCategoryID: result.SuggestedCategory,
			Exists:              result.Exists,
			ProductID:           result.ProductID,
			Selected:            !result.Exists,
		})
	}
	return items
}

func (p SearchPreview) Metadata() Metadata {
	return Metadata{Source: SourceSearch, SupplierID: p.SupplierID}
}

func (p SearchPreview) DocumentTotals() DocumentTotals {
	return DocumentTotals{}
}
