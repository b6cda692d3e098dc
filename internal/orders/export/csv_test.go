package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhaja/alhaja-admin/internal/gateway"
)

func testOrder(number string, items ...gateway.OrderItem) gateway.Order {
	return gateway.Order{
		Number:    number,
		Status:    gateway.OrderPending,
		Customer:  &gateway.Customer{Name: "Sofía", Phone: "1155550000"},
		Items:     items,
		CreatedAt: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
	}
}

func TestWriteOrdersCSVGoldenRows(t *testing.T) {
	orders := []gateway.Order{
		testOrder("P-0001",
			gateway.OrderItem{Quantity: 1, UnitPrice: 5.50},
			gateway.OrderItem{Quantity: 2, UnitPrice: 3.50},
		), // 12.50
		testOrder("P-0002",
			gateway.OrderItem{Quantity: 2, UnitPrice: 3.50},
		), // 7.00
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOrdersCSV(&buf, orders))

	raw := buf.String()
	assert.True(t, strings.HasPrefix(raw, "\xEF\xBB\xBF"), "file must start with a UTF-8 BOM")

	lines := strings.Split(strings.TrimRight(strings.TrimPrefix(raw, "\xEF\xBB\xBF"), "\r\n"), "\r\n")
	require.Len(t, lines, 3)

	assert.True(t, strings.HasPrefix(lines[0], `"Nº Pedido";"Fecha";`), "header row: %s", lines[0])

	for i, wantTotal := range []string{"12.50", "7.00"} {
		fields := strings.Split(lines[i+1], ";")
		require.GreaterOrEqual(t, len(fields), 2)
		assert.Equal(t, `"`+wantTotal+`"`, fields[len(fields)-2], "row %d", i+1)
	}
}

func TestWriteOrdersCSVTotalIgnoresCatalogPrices(t *testing.T) {
	// The captured unit price rules; a later catalog change must not
	// move a historical order's value.
	order := testOrder("P-0003", gateway.OrderItem{ProductID: "p1", Quantity: 3, UnitPrice: 4})
	var buf bytes.Buffer
	require.NoError(t, WriteOrdersCSV(&buf, []gateway.Order{order}))
	assert.Contains(t, buf.String(), `"12.00"`)
}

func TestWriteOrdersCSVEscapesQuotes(t *testing.T) {
	order := testOrder("P-0004", gateway.OrderItem{Quantity: 1, UnitPrice: 1})
	order.Notes = `entregar "en mano"`
	var buf bytes.Buffer
	require.NoError(t, WriteOrdersCSV(&buf, []gateway.Order{order}))
	assert.Contains(t, buf.String(), `"entregar ""en mano"""`)
}

func TestOrdersCSVFilenameIsDateStamped(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "pedidos-2026-08-28.csv", OrdersCSVFilename(now))
}
