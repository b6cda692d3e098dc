package importer

import "testing"

func w(v float64) *float64 { return &v }

func TestComputeRollupCountsOnlySelected(t *testing.T) {
	items := []ProductToImport{
		{Selected: true, Quantity: 2, Cost: 10, Retail: 25},
		{Selected: true, Quantity: 1, Cost: 5, Retail: 12, Wholesale: w(8)},
		{Selected: false, Quantity: 10, Cost: 100, Retail: 300},
	}
	rollup := ComputeRollup(items)
	if rollup.SelectedCount != 2 {
		t.Fatalf("selected count %d", rollup.SelectedCount)
	}
	if rollup.CostTotal != 25 {
		t.Fatalf("cost total %.2f", rollup.CostTotal)
	}
	if rollup.RetailTotal != 62 {
		t.Fatalf("retail total %.2f", rollup.RetailTotal)
	}
	if rollup.StockToAdd != 3 {
		t.Fatalf("stock to add %d", rollup.StockToAdd)
	}
}

func TestReconcileReportsDiscrepancy(t *testing.T) {
	doc := DocumentTotals{Subtotal: 100, Shipping: 12, Total: 112}
	rec := Reconcile(doc, Rollup{CostTotal: 95})
	if rec.Matches() {
		t.Fatalf("5 unit gap must not match")
	}
	if rec.Difference != -5 {
		t.Fatalf("difference %.2f", rec.Difference)
	}

	exact := Reconcile(doc, Rollup{CostTotal: 100.004})
	if !exact.Matches() {
		t.Fatalf("sub-cent gap must match")
	}
}
