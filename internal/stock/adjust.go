// Package stock implements the manual stock adjustment form: a signed
// delta against a product, previewed locally and posted as an
// append-only ledger entry.
package stock

import "errors"

var (
	// ErrZeroDelta rejects an adjustment of zero units.
	ErrZeroDelta = errors.New("el ajuste no puede ser cero")
	// ErrNegativeResult rejects an adjustment that would leave the
	// displayed stock below zero. The backend re-checks under its own
	// view of the stock; the displayed value is advisory only.
	ErrNegativeResult = errors.New("el stock resultante no puede ser negativo")
)

// Adjustment is the local form state before submission.
type Adjustment struct {
	ProductID    string
	CurrentStock int
	Delta        int
	Notes        string
}

// NewStock previews the resulting level, computed live as the operator
// types.
func (a Adjustment) NewStock() int {
	return a.CurrentStock + a.Delta
}

// Validate applies the local guards. It never contacts the backend:
// the server remains the sole arbiter of non-negativity under
// concurrent adjustments.
func (a Adjustment) Validate() error {
	if a.Delta == 0 {
		return ErrZeroDelta
	}
	if a.NewStock() < 0 {
		return ErrNegativeResult
	}
	return nil
}
