package export

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhaja/alhaja-admin/internal/gateway"
)

func exportOrder() gateway.Order {
	return gateway.Order{
		Number: "P-0042",
		Status: gateway.OrderPaid,
		Customer: &gateway.Customer{
			Name:  "Valentina Ruiz",
			Phone: "1144440000",
		},
		ShippingAddress: &gateway.CustomerAddress{
			Street: "Av. Rivadavia 1234",
			City:   "CABA",
		},
		Notes: "envolver para regalo",
		Items: []gateway.OrderItem{
			{ProductName: "Anillo corazón", Quantity: 2, UnitPrice: 12.5},
			{ProductName: "Cadena 45cm", Quantity: 1, UnitPrice: 30},
		},
		CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRenderOrderPostsHTMLToGotenberg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))
		file, _, err := r.FormFile("files")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		html, err := io.ReadAll(file)
		require.NoError(t, err)

		body := string(html)
		assert.Contains(t, body, "P-0042")
		assert.Contains(t, body, "Valentina Ruiz")
		assert.Contains(t, body, "Av. Rivadavia 1234")
		assert.Contains(t, body, "envolver para regalo")
		// Line subtotal 2 × 12.50 and grand total 55.00.
		assert.Contains(t, body, "25")
		assert.Contains(t, body, "55")
		// Payment reference phone from configuration.
		assert.Contains(t, body, "11-0000-9999")

		_, _ = w.Write([]byte("MOCK-PDF"))
	}))
	defer srv.Close()

	exporter, err := NewPDFExporter(srv.URL, srv.Client(), "11-0000-9999")
	require.NoError(t, err)

	pdf, err := exporter.RenderOrder(context.Background(), exportOrder())
	require.NoError(t, err)
	assert.Equal(t, "MOCK-PDF", string(pdf))
}

func TestRenderOrderNilExporter(t *testing.T) {
	var exporter *PDFExporter
	_, err := exporter.RenderOrder(context.Background(), exportOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestRenderOrderFailsOnGotenbergError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	exporter, err := NewPDFExporter(srv.URL, srv.Client(), "")
	require.NoError(t, err)
	_, err = exporter.RenderOrder(context.Background(), exportOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestOrderPDFFilename(t *testing.T) {
	assert.Equal(t, "pedido-P-0042.pdf", OrderPDFFilename(exportOrder()))
}
