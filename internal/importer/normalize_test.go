package importer

import (
	"testing"

	"github.com/alhaja/alhaja-admin/internal/gateway"
)

func TestNormalizePreselectsOnlyNewItems(t *testing.T) {
	previews := []Preview{
		InvoicePreview{gateway.InvoicePreview{Items: []gateway.InvoiceItem{
			{Code: "AB-1", Exists: false, SuggestedCategory: "cat-anillos"},
			{Code: "AB-2", Exists: true, SuggestedCategory: "cat-aros"},
		}}},
		EmailPreview{gateway.EmailPreview{Items: []gateway.EmailItem{
			{SKU: "CD-1", AlreadyInCatalog: false, SuggestedCategory: "cat-anillos"},
			{SKU: "CD-2", AlreadyInCatalog: true, SuggestedCategory: "cat-aros"},
		}}},
		ExcelPreview{ExcelPreview: gateway.ExcelPreview{Rows: []gateway.ExcelRow{
			{Code: "EF-1", Exists: false, SuggestedCategory: "cat-anillos"},
			{Code: "EF-2", Exists: true, SuggestedCategory: "cat-aros"},
		}}},
		MayoristaPreview{MayoristaPreview: gateway.MayoristaPreview{Items: []gateway.MayoristaItem{
			{Codigo: "GH-1", Existe: false, CategoriaSugerida: "cat-anillos"},
			{Codigo: "GH-2", Existe: true, CategoriaSugerida: "cat-aros"},
		}}},
		SearchPreview{Results: []gateway.SearchResult{
			{Code: "IJ-1", Exists: false, SuggestedCategory: "cat-anillos"},
			{Code: "IJ-2", Exists: true, SuggestedCategory: "cat-aros"},
		}},
	}

	for _, preview := range previews {
		items := preview.Normalize()
		if len(items) != 2 {
			t.Fatalf("%s: expected 2 items got %d", preview.Source(), len(items))
		}
		if !items[0].Selected {
			t.Errorf("%s: new item must be pre-selected", preview.Source())
		}
		if items[1].Selected {
			t.Errorf("%s: existing item must be pre-deselected", preview.Source())
		}
		// Suggestions must survive normalization for every source.
		if items[0].SuggestedCategoryID != "cat-anillos" || items[1].SuggestedCategoryID != "cat-aros" {
			t.Errorf("%s: suggested category dropped: %+v", preview.Source(), items)
		}
	}
}

func TestNormalizeInvoiceKeepsPriceSuggestions(t *testing.T) {
	preview := InvoicePreview{gateway.InvoicePreview{Items: []gateway.InvoiceItem{{
		Code:               "AB-1",
		Description:        "Anillo corazón",
		Quantity:           3,
		UnitCost:           10.5,
		SuggestedRetail:    28,
		SuggestedWholesale: 18,
		SuggestedCategory:  "cat-anillos",
		WeightGrams:        2.4,
		MetalType:          "plata-925",
	}}}}

	items := preview.Normalize()
	item := items[0]
	if item.Name != "Anillo corazón" || item.Quantity != 3 {
		t.Fatalf("field mapping broken: %+v", item)
	}
	if item.Cost != 10.5 || item.Retail != 28 {
		t.Fatalf("price suggestions dropped: %+v", item)
	}
	if item.Wholesale == nil || *item.Wholesale != 18 {
		t.Fatalf("wholesale suggestion dropped: %+v", item)
	}
	if item.WeightGrams != 2.4 || item.MetalType != "plata-925" {
		t.Fatalf("weight/metal dropped: %+v", item)
	}
}

func TestNormalizeMayoristaDefaultsMetal(t *testing.T) {
	preview := MayoristaPreview{MayoristaPreview: gateway.MayoristaPreview{Items: []gateway.MayoristaItem{
		{Codigo: "GH-1"},
		{Codigo: "GH-2", Metal: "plata-950"},
	}}}
	items := preview.Normalize()
	if items[0].MetalType != defaultMetal {
		t.Errorf("expected default metal, got %q", items[0].MetalType)
	}
	if items[1].MetalType != "plata-950" {
		t.Errorf("explicit metal overridden: %q", items[1].MetalType)
	}
}

func TestNormalizeExcelOmitsZeroWholesale(t *testing.T) {
	preview := ExcelPreview{ExcelPreview: gateway.ExcelPreview{Rows: []gateway.ExcelRow{
		{Code: "EF-1", Wholesale: 0},
		{Code: "EF-2", Wholesale: 14.5},
	}}}
	items := preview.Normalize()
	if items[0].Wholesale != nil {
		t.Errorf("zero wholesale should map to absent tier")
	}
	if items[1].Wholesale == nil || *items[1].Wholesale != 14.5 {
		t.Errorf("wholesale tier dropped: %+v", items[1])
	}
}

func TestNormalizeSearchDefaultsQuantityToOne(t *testing.T) {
	preview := SearchPreview{Results: []gateway.SearchResult{{Code: "IJ-1"}}}
	items := preview.Normalize()
	if items[0].Quantity != 1 {
		t.Errorf("expected quantity 1 got %d", items[0].Quantity)
	}
}

func TestMetadataCarriesDocumentIdentity(t *testing.T) {
	preview := InvoicePreview{gateway.InvoicePreview{
		InvoiceNumber:     "F-0042",
		InvoiceDate:       "2026-08-01",
		InvoiceExists:     true,
		ExistingInvoiceID: "so-99",
		Currency:          "ARS",
	}}
	meta := preview.Metadata()
	if meta.InvoiceNumber != "F-0042" || meta.InvoiceDate != "2026-08-01" {
		t.Fatalf("invoice identity dropped: %+v", meta)
	}
	if !meta.DocumentExists || meta.ExistingInvoiceID != "so-99" {
		t.Fatalf("duplicate flag dropped: %+v", meta)
	}
}
