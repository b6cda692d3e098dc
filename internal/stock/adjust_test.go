package stock

import (
	"errors"
	"testing"
)

func TestAdjustmentNewStockPreview(t *testing.T) {
	cases := []struct {
		current, delta, want int
	}{
		{10, 5, 15},
		{10, -4, 6},
		{0, 3, 3},
		{7, -7, 0},
	}
	for _, tc := range cases {
		a := Adjustment{CurrentStock: tc.current, Delta: tc.delta}
		if got := a.NewStock(); got != tc.want {
			t.Errorf("NewStock(%d%+d) = %d, want %d", tc.current, tc.delta, got, tc.want)
		}
	}
}

func TestAdjustmentValidate(t *testing.T) {
	if err := (Adjustment{CurrentStock: 10, Delta: -3}).Validate(); err != nil {
		t.Fatalf("valid adjustment rejected: %v", err)
	}
	if err := (Adjustment{CurrentStock: 10, Delta: 0}).Validate(); !errors.Is(err, ErrZeroDelta) {
		t.Fatalf("zero delta: got %v, want ErrZeroDelta", err)
	}
	if err := (Adjustment{CurrentStock: 2, Delta: -3}).Validate(); !errors.Is(err, ErrNegativeResult) {
		t.Fatalf("negative result: got %v, want ErrNegativeResult", err)
	}
	// Draining the stock to exactly zero is allowed.
	if err := (Adjustment{CurrentStock: 3, Delta: -3}).Validate(); err != nil {
		t.Fatalf("drain to zero rejected: %v", err)
	}
}
