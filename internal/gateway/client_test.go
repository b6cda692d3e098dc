package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhaja/alhaja-admin/internal/shared"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := New(srv.URL, 5*time.Second, nil)
	client.SetHTTPClient(srv.Client())
	return client
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	ctx := shared.ContextWithToken(context.Background(), "tok-abc")
	_, err := client.ListSuppliers(ctx, SupplierFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestClientOmitsAuthorizationWithoutSession(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.ListSuppliers(context.Background(), SupplierFilter{})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClientSerializesOnlyDefinedFilters(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"items":[],"total":0}`))
	})

	_, err := client.ListProducts(context.Background(), ProductFilter{Search: "anillo", Page: 2})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "search=anillo")
	assert.Contains(t, gotQuery, "page=2")
	assert.NotContains(t, gotQuery, "supplierId")
	assert.NotContains(t, gotQuery, "categoryId")
	assert.NotContains(t, gotQuery, "active")
	assert.NotContains(t, gotQuery, "perPage")
}

func TestClientClassifies401AsSessionExpired(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	})

	_, err := client.GetSupplier(context.Background(), "s1")
	require.Error(t, err)
	assert.True(t, IsSessionExpired(err))
}

func TestClientExtractsSingleMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"el código ya existe"}`))
	})

	_, err := client.CreateSupplier(context.Background(), SupplierInput{Name: "x"})
	require.Error(t, err)
	assert.Equal(t, "el código ya existe", RejectionMessage(err))
}

func TestClientExtractsFirstMessageFromArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":["phone is required","name is required"]}`))
	})

	_, err := client.CreateCustomer(context.Background(), CustomerInput{})
	require.Error(t, err)
	assert.Equal(t, "phone is required", RejectionMessage(err))
}

func TestClientFallsBackToGenericStatusMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream down`))
	})

	_, err := client.GetOrder(context.Background(), "o1")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Error 502", apiErr.Message)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestParseInvoiceSendsMultipartFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/import/parse-invoice", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "factura.pdf", header.Filename)
		_, _ = w.Write([]byte(`{"invoiceNumber":"F-001","items":[]}`))
	})

	preview, err := client.ParseInvoice(context.Background(), FileAttachment{
		Field:    "file",
		Filename: "factura.pdf",
		Content:  []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "F-001", preview.InvoiceNumber)
}

func TestParseExcelRequiresPrefix(t *testing.T) {
	client := New("http://127.0.0.1:1", time.Second, nil)
	_, err := client.ParseExcel(context.Background(), FileAttachment{Field: "file", Filename: "x.xlsx"}, "")
	require.Error(t, err)
}

func TestExecuteImportAttachesOriginalDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Contains(t, r.FormValue("data"), `"invoiceNumber":"F-001"`)
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		_ = file.Close()
		_, _ = w.Write([]byte(`{"imported":3,"skipped":1,"errors":[{"code":"AB-9","message":"duplicado"}]}`))
	})

	result, err := client.ExecuteImport(context.Background(), ExecuteImportRequest{
		Source:        "invoice",
		SupplierID:    "s1",
		InvoiceNumber: "F-001",
		Items:         []ImportItemInput{{Code: "AB-1", Name: "Anillo", Quantity: 2, CostPrice: 10, RetailPrice: 25}},
	}, &FileAttachment{Field: "file", Filename: "factura.pdf", Content: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "duplicado", result.Errors[0].Message)
}

func TestExecuteImportWithoutFileSendsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"imported":1,"skipped":0}`))
	})

	result, err := client.ExecuteImport(context.Background(), ExecuteImportRequest{Source: "search"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}
