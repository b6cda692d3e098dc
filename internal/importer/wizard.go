package importer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alhaja/alhaja-admin/internal/gateway"
)

// State names one step of a wizard session. Transitions are guarded;
// an operation in the wrong state fails with ErrBadState instead of
// silently corrupting the session.
type State string

const (
	StateIdle            State = "IDLE"
	StateSelectingSource State = "SELECTING_SOURCE"
	StateParsing         State = "PARSING"
	StatePreview         State = "PREVIEW"
	StateExecuting       State = "EXECUTING"
	StateDone            State = "DONE"
)

var (
	// ErrBadState rejects an operation outside its guarded state.
	ErrBadState = errors.New("operation not allowed in current wizard state")
	// ErrNoSelection rejects execution with zero selected items.
	ErrNoSelection = errors.New("no items selected for import")
	// ErrSupplierRequired gates uploads for sources whose documents
	// carry no supplier identity.
	ErrSupplierRequired = errors.New("a supplier must be chosen before uploading")
)

// Wizard is one import session. It lives only in memory: navigating
// away orphans it and the store's janitor drops it later.
type Wizard struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time

	state    State
	source   Source
	supplier string
	lastErr  string

	items    []ProductToImport
	meta     Metadata
	document DocumentTotals
	original *gateway.FileAttachment
	result   *gateway.ImportResult

	touched time.Time
}

// NewWizard starts a session in the idle state.
func NewWizard() *Wizard {
	now := time.Now()
	return &Wizard{
		ID:        uuid.NewString(),
		CreatedAt: now,
		state:     StateIdle,
		touched:   now,
	}
}

// State returns the current step.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastError returns and clears the message carried by a failure path.
func (w *Wizard) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg := w.lastErr
	w.lastErr = ""
	return msg
}

// Begin moves an idle session to source selection.
func (w *Wizard) Begin() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateIdle {
		return fmt.Errorf("%w: begin from %s", ErrBadState, w.state)
	}
	w.transition(StateSelectingSource)
	return nil
}

// ChooseSource records the source. Allowed while selecting, and again
// from the preview so the operator can start over with another source.
func (w *Wizard) ChooseSource(source Source) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !source.Valid() {
		return fmt.Errorf("unknown import source %q", source)
	}
	if w.state != StateSelectingSource && w.state != StatePreview {
		return fmt.Errorf("%w: choose source from %s", ErrBadState, w.state)
	}
	w.source = source
	w.items = nil
	w.meta = Metadata{}
	w.document = DocumentTotals{}
	w.original = nil
	w.transition(StateSelectingSource)
	return nil
}

// Source returns the chosen source.
func (w *Wizard) Source() Source {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.source
}

// SetSupplier records the target supplier for sources that need one.
// Only allowed while selecting; once a preview was normalized against a
// supplier, changing it would desync the rows from the execute request.
func (w *Wizard) SetSupplier(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateSelectingSource {
		return fmt.Errorf("%w: set supplier from %s", ErrBadState, w.state)
	}
	w.supplier = id
	w.touched = time.Now()
	return nil
}

// Supplier returns the chosen target supplier id.
func (w *Wizard) Supplier() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.supplier
}

// UploadEnabled reports whether the upload control is active: a source
// is chosen and, when the source requires it, a supplier too.
func (w *Wizard) UploadEnabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateSelectingSource || w.source == "" {
		return false
	}
	if w.source.NeedsSupplier() && w.supplier == "" {
		return false
	}
	return true
}

// BeginParse validates the upload and enters the parsing state. The
// actual backend call happens outside the lock; its outcome arrives via
// ApplyPreview or FailParse.
func (w *Wizard) BeginParse(file gateway.FileAttachment) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateSelectingSource {
		return fmt.Errorf("%w: upload from %s", ErrBadState, w.state)
	}
	if w.source == "" {
		return fmt.Errorf("no source chosen")
	}
	if w.source.NeedsSupplier() && w.supplier == "" {
		return ErrSupplierRequired
	}
	if w.source.FileBacked() {
		if err := w.source.AcceptFile(file.Filename, int64(len(file.Content))); err != nil {
			return err
		}
		original := file
		w.original = &original
	}
	w.transition(StateParsing)
	return nil
}

// BeginSearch enters the parsing state for the query-based source.
func (w *Wizard) BeginSearch() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateSelectingSource {
		return fmt.Errorf("%w: search from %s", ErrBadState, w.state)
	}
	if w.source != SourceSearch {
		return fmt.Errorf("source %s does not search", w.source)
	}
	w.transition(StateParsing)
	return nil
}

// ApplyPreview normalizes the backend parse result and enters review.
func (w *Wizard) ApplyPreview(preview Preview) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateParsing {
		return fmt.Errorf("%w: preview from %s", ErrBadState, w.state)
	}
	if preview.Source() != w.source {
		return fmt.Errorf("preview source %s does not match wizard source %s", preview.Source(), w.source)
	}
	w.items = preview.Normalize()
	w.meta = preview.Metadata()
	w.document = preview.DocumentTotals()
	if w.meta.SupplierID == "" {
		w.meta.SupplierID = w.supplier
	} else if w.supplier == "" {
		// PDF and email sources infer the supplier from the document.
		w.supplier = w.meta.SupplierID
	}
	w.transition(StatePreview)
	return nil
}

// FailParse records a parse failure and falls back to source selection.
func (w *Wizard) FailParse(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateParsing {
		return
	}
	w.lastErr = message
	w.original = nil
	w.transition(StateSelectingSource)
}

// Items returns a copy of the staging rows for rendering.
func (w *Wizard) Items() []ProductToImport {
	w.mu.Lock()
	defer w.mu.Unlock()
	items := make([]ProductToImport, len(w.items))
	copy(items, w.items)
	return items
}

// Metadata returns the carried document metadata.
func (w *Wizard) Metadata() Metadata {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.meta
}

// DocumentTotals returns the source document's stated figures.
func (w *Wizard) DocumentTotals() DocumentTotals {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.document
}

// DuplicateWarning reports whether the backend flagged the document as
// already imported, and which record it points at. The warning is
// non-blocking: execution stays permitted.
func (w *Wizard) DuplicateWarning() (bool, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.meta.DocumentExists, w.meta.ExistingInvoiceID
}

// ToggleItem flips the selection of one staging row.
func (w *Wizard) ToggleItem(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StatePreview {
		return fmt.Errorf("%w: toggle from %s", ErrBadState, w.state)
	}
	if index < 0 || index >= len(w.items) {
		return fmt.Errorf("item index %d out of range", index)
	}
	w.items[index].Selected = !w.items[index].Selected
	w.touched = time.Now()
	return nil
}

// SetPrices edits the retail and wholesale price of one staging row.
// A nil wholesale clears the tier.
func (w *Wizard) SetPrices(index int, retail float64, wholesale *float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StatePreview {
		return fmt.Errorf("%w: edit prices from %s", ErrBadState, w.state)
	}
	if index < 0 || index >= len(w.items) {
		return fmt.Errorf("item index %d out of range", index)
	}
	if retail < 0 {
		return fmt.Errorf("retail price cannot be negative")
	}
	if wholesale != nil && *wholesale < 0 {
		return fmt.Errorf("wholesale price cannot be negative")
	}
	w.items[index].Retail = retail
	w.items[index].Wholesale = wholesale
	w.touched = time.Now()
	return nil
}

// Rollup aggregates the currently selected rows.
func (w *Wizard) Rollup() Rollup {
	return ComputeRollup(w.Items())
}

// Reconciliation returns the display-only comparison panel.
func (w *Wizard) Reconciliation() Reconciliation {
	return Reconcile(w.DocumentTotals(), w.Rollup())
}

// BuildExecuteRequest maps the selected rows back into the execution
// request and moves the wizard into the executing state. The original
// file is returned for file-backed sources so the backend can archive
// the document.
func (w *Wizard) BuildExecuteRequest() (gateway.ExecuteImportRequest, *gateway.FileAttachment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StatePreview {
		return gateway.ExecuteImportRequest{}, nil, fmt.Errorf("%w: execute from %s", ErrBadState, w.state)
	}

	var items []gateway.ImportItemInput
	for _, item := range w.items {
		if !item.Selected {
			continue
		}
		items = append(items, gateway.ImportItemInput{
			Code:           item.Code,
			Name:           item.Name,
			Quantity:       item.Quantity,
			CostPrice:      item.Cost,
			RetailPrice:    item.Retail,
			WholesalePrice: item.Wholesale,
			CategoryID:     item.SuggestedCategoryID,
			WeightGrams:    item.WeightGrams,
			MetalType:      item.MetalType,
			ProductID:      item.ProductID,
		})
	}
	if len(items) == 0 {
		return gateway.ExecuteImportRequest{}, nil, ErrNoSelection
	}

	req := gateway.ExecuteImportRequest{
		Source:         string(w.source),
		SupplierID:     w.supplier,
		InvoiceNumber:  w.meta.InvoiceNumber,
		InvoiceDate:    w.meta.InvoiceDate,
		TrackingNumber: w.meta.TrackingNumber,
		ShippingCost:   w.document.Shipping,
		Currency:       w.meta.Currency,
		Items:          items,
	}

	var original *gateway.FileAttachment
	if w.source.FileBacked() {
		original = w.original
	}
	w.transition(StateExecuting)
	return req, original, nil
}

// FailExecute records an execution failure and returns to the review
// stage so the operator can adjust and resubmit.
func (w *Wizard) FailExecute(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateExecuting {
		return
	}
	w.lastErr = message
	w.transition(StatePreview)
}

// Complete stores the execution outcome. Partial failures land here
// too: the result keeps the per-item error list alongside the counts.
func (w *Wizard) Complete(result gateway.ImportResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateExecuting {
		return fmt.Errorf("%w: complete from %s", ErrBadState, w.state)
	}
	w.result = &result
	w.transition(StateDone)
	return nil
}

// Result returns the execution outcome once done.
func (w *Wizard) Result() *gateway.ImportResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Touched returns the last activity time, used by the store janitor.
func (w *Wizard) Touched() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.touched
}

func (w *Wizard) transition(next State) {
	w.state = next
	w.touched = time.Now()
}
