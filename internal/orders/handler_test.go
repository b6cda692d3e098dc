package orders

import (
	"testing"

	"github.com/alhaja/alhaja-admin/internal/gateway"
)

func TestParseCartItemsDropsEmptyRows(t *testing.T) {
	items := parseCartItems(
		[]string{"p1", "", "p2", "p3"},
		[]string{"2", "5", "0", ""},
	)
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	want := []gateway.OrderItemInput{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1}, // zero quantity falls back to 1
		{ProductID: "p3", Quantity: 1},
	}
	for i, item := range items {
		if item != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, item, want[i])
		}
	}
}

func TestParseCartItemsEmptyForm(t *testing.T) {
	if items := parseCartItems(nil, nil); items != nil {
		t.Fatalf("expected no items, got %v", items)
	}
}
