package importer

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/alhaja/alhaja-admin/internal/gateway"
)

func pdfFile(name string, size int) gateway.FileAttachment {
	return gateway.FileAttachment{Field: "file", Filename: name, Content: bytes.Repeat([]byte("x"), size)}
}

func previewForTest(exists ...bool) InvoicePreview {
	items := make([]gateway.InvoiceItem, len(exists))
	for i, e := range exists {
		items[i] = gateway.InvoiceItem{Code: "AB", Quantity: 1, UnitCost: 10, SuggestedRetail: 25, Exists: e}
	}
	return InvoicePreview{gateway.InvoicePreview{InvoiceNumber: "F-1", Subtotal: 10, Items: items}}
}

func startedWizard(t *testing.T, source Source) *Wizard {
	t.Helper()
	w := NewWizard()
	if err := w.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := w.ChooseSource(source); err != nil {
		t.Fatalf("choose source: %v", err)
	}
	return w
}

func wizardInPreview(t *testing.T, preview Preview) *Wizard {
	t.Helper()
	w := startedWizard(t, preview.Source())
	if preview.Source().NeedsSupplier() {
		if err := w.SetSupplier("sup-1"); err != nil {
			t.Fatalf("set supplier: %v", err)
		}
	}
	var err error
	if preview.Source().FileBacked() {
		name := "doc.pdf"
		if preview.Source() == SourceExcel {
			name = "doc.xlsx"
		} else if preview.Source() == SourceEmail {
			name = "doc.eml"
		}
		err = w.BeginParse(pdfFile(name, 100))
	} else {
		err = w.BeginSearch()
	}
	if err != nil {
		t.Fatalf("begin parse: %v", err)
	}
	if err := w.ApplyPreview(preview); err != nil {
		t.Fatalf("apply preview: %v", err)
	}
	return w
}

func TestWizardHappyPath(t *testing.T) {
	w := wizardInPreview(t, previewForTest(false, true))
	if w.State() != StatePreview {
		t.Fatalf("expected PREVIEW got %s", w.State())
	}

	req, original, err := w.BuildExecuteRequest()
	if err != nil {
		t.Fatalf("build execute: %v", err)
	}
	if len(req.Items) != 1 {
		t.Fatalf("only selected items must be submitted, got %d", len(req.Items))
	}
	if original == nil {
		t.Fatalf("file-backed source must resubmit the original document")
	}
	if req.InvoiceNumber != "F-1" {
		t.Fatalf("metadata not carried: %+v", req)
	}
	if w.State() != StateExecuting {
		t.Fatalf("expected EXECUTING got %s", w.State())
	}

	if err := w.Complete(gateway.ImportResult{Imported: 1}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if w.State() != StateDone {
		t.Fatalf("expected DONE got %s", w.State())
	}
	if w.Result() == nil || w.Result().Imported != 1 {
		t.Fatalf("result not stored")
	}
}

func TestWizardExcelUploadGatedOnSupplier(t *testing.T) {
	w := startedWizard(t, SourceExcel)
	if w.UploadEnabled() {
		t.Fatalf("upload must be disabled without a supplier")
	}
	if err := w.BeginParse(pdfFile("lista.xlsx", 100)); !errors.Is(err, ErrSupplierRequired) {
		t.Fatalf("expected ErrSupplierRequired got %v", err)
	}

	if err := w.SetSupplier("sup-1"); err != nil {
		t.Fatalf("set supplier: %v", err)
	}
	if !w.UploadEnabled() {
		t.Fatalf("upload must be enabled once a supplier is chosen")
	}
	if err := w.BeginParse(pdfFile("lista.xlsx", 100)); err != nil {
		t.Fatalf("upload after choosing supplier: %v", err)
	}
}

func TestWizardSupplierLockedAfterSelection(t *testing.T) {
	w := wizardInPreview(t, previewForTest(false, true))

	if err := w.SetSupplier("sup-other"); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState in preview, got %v", err)
	}
	if w.Supplier() == "sup-other" {
		t.Fatalf("supplier must not change once the preview is built")
	}

	req, _, err := w.BuildExecuteRequest()
	if err != nil {
		t.Fatalf("build execute: %v", err)
	}
	if err := w.SetSupplier("sup-other"); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState while executing, got %v", err)
	}
	if req.SupplierID == "sup-other" {
		t.Fatalf("execute request carries a supplier that was never previewed")
	}
}

func TestWizardRejectsWrongExtensionAndOversize(t *testing.T) {
	w := startedWizard(t, SourceInvoice)
	if err := w.BeginParse(pdfFile("factura.docx", 100)); err == nil {
		t.Fatalf("expected extension rejection")
	}
	if err := w.BeginParse(pdfFile("factura.pdf", 11<<20)); err == nil {
		t.Fatalf("expected size rejection")
	}
	if w.State() != StateSelectingSource {
		t.Fatalf("rejected upload must not leave source selection, got %s", w.State())
	}
}

func TestWizardParseFailureReturnsToSelection(t *testing.T) {
	w := startedWizard(t, SourceInvoice)
	if err := w.BeginParse(pdfFile("factura.pdf", 100)); err != nil {
		t.Fatalf("begin parse: %v", err)
	}
	w.FailParse("no se pudo leer el PDF")
	if w.State() != StateSelectingSource {
		t.Fatalf("expected SELECTING_SOURCE got %s", w.State())
	}
	if msg := w.LastError(); msg != "no se pudo leer el PDF" {
		t.Fatalf("error message not carried: %q", msg)
	}
	if msg := w.LastError(); msg != "" {
		t.Fatalf("error must clear after read: %q", msg)
	}
}

func TestWizardExecuteFailureReturnsToPreview(t *testing.T) {
	w := wizardInPreview(t, previewForTest(false))
	if _, _, err := w.BuildExecuteRequest(); err != nil {
		t.Fatalf("build execute: %v", err)
	}
	w.FailExecute("backend caído")
	if w.State() != StatePreview {
		t.Fatalf("expected PREVIEW got %s", w.State())
	}
	if len(w.Items()) != 1 {
		t.Fatalf("staging rows must survive an execute failure")
	}
}

func TestWizardRejectsExecuteWithNothingSelected(t *testing.T) {
	w := wizardInPreview(t, previewForTest(true, true))
	if _, _, err := w.BuildExecuteRequest(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection got %v", err)
	}
	if w.State() != StatePreview {
		t.Fatalf("failed build must stay in PREVIEW, got %s", w.State())
	}
}

func TestWizardDuplicateInvoiceIsNonBlocking(t *testing.T) {
	preview := InvoicePreview{gateway.InvoicePreview{
		InvoiceNumber:     "F-1",
		InvoiceExists:     true,
		ExistingInvoiceID: "so-7",
		Items:             []gateway.InvoiceItem{{Code: "AB", Quantity: 1}},
	}}
	w := wizardInPreview(t, preview)

	dup, existingID := w.DuplicateWarning()
	if !dup || existingID != "so-7" {
		t.Fatalf("duplicate warning missing: %v %q", dup, existingID)
	}
	// Execution must still be permitted; the server decides.
	if _, _, err := w.BuildExecuteRequest(); err != nil {
		t.Fatalf("duplicate must not block execution: %v", err)
	}
}

func TestWizardToggleAndPriceEditing(t *testing.T) {
	w := wizardInPreview(t, previewForTest(false, false))

	if err := w.ToggleItem(1); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if w.Items()[1].Selected {
		t.Fatalf("toggle did not deselect")
	}

	wholesale := 18.0
	if err := w.SetPrices(0, 30, &wholesale); err != nil {
		t.Fatalf("set prices: %v", err)
	}
	item := w.Items()[0]
	if item.Retail != 30 || item.Wholesale == nil || *item.Wholesale != 18 {
		t.Fatalf("price edit lost: %+v", item)
	}

	if err := w.SetPrices(0, -1, nil); err == nil {
		t.Fatalf("negative retail must be rejected")
	}
	if err := w.ToggleItem(9); err == nil {
		t.Fatalf("out of range toggle must fail")
	}
}

func TestWizardGuardsBadStates(t *testing.T) {
	w := NewWizard()
	if err := w.ChooseSource(SourceInvoice); !errors.Is(err, ErrBadState) {
		t.Fatalf("choose before begin: %v", err)
	}
	if err := w.ApplyPreview(previewForTest(false)); !errors.Is(err, ErrBadState) {
		t.Fatalf("preview from idle: %v", err)
	}
	if err := w.ToggleItem(0); !errors.Is(err, ErrBadState) {
		t.Fatalf("toggle from idle: %v", err)
	}
}

func TestStoreSweepDropsIdleWizards(t *testing.T) {
	store := NewStore(time.Minute)
	w := store.Create()
	if store.Get(w.ID) == nil {
		t.Fatalf("wizard must be retrievable")
	}
	if dropped := store.Sweep(time.Now()); dropped != 0 {
		t.Fatalf("fresh wizard swept")
	}
	if dropped := store.Sweep(time.Now().Add(2 * time.Minute)); dropped != 1 {
		t.Fatalf("idle wizard not swept")
	}
	if store.Get(w.ID) != nil {
		t.Fatalf("swept wizard still retrievable")
	}
}
