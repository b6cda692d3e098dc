package importer

// Rollup aggregates the review table over selected items only.
type Rollup struct {
	SelectedCount int
	CostTotal     float64
	RetailTotal   float64
	StockToAdd    int
}

// ComputeRollup sums cost, retail and stock-to-add over the selected
// staging items.
func ComputeRollup(items []ProductToImport) Rollup {
	var rollup Rollup
	for _, item := range items {
		if !item.Selected {
			continue
		}
		rollup.SelectedCount++
		rollup.CostTotal += float64(item.Quantity) * item.Cost
		rollup.RetailTotal += float64(item.Quantity) * item.Retail
		rollup.StockToAdd += item.Quantity
	}
	return rollup
}

// Reconciliation compares the rollup against the document's stated
// totals. A non-zero difference is surfaced in the review panel but
// never blocks execution; the server arbitrates at execute time.
type Reconciliation struct {
	Document   DocumentTotals
	CostTotal  float64
	Difference float64
}

// Reconcile computes the display-only discrepancy between the selected
// items' cost and the document subtotal.
func Reconcile(doc DocumentTotals, rollup Rollup) Reconciliation {
	return Reconciliation{
		Document:   doc,
		CostTotal:  rollup.CostTotal,
		Difference: rollup.CostTotal - doc.Subtotal,
	}
}

// Matches reports whether the rollup matches the document subtotal to
// the cent.
func (r Reconciliation) Matches() bool {
	diff := r.Difference
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.01
}
