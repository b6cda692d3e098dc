package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/web"
)

// OrderPDFPayload aggregates an already-fetched order for rendering.
// Building it is a pure formatting transform; nothing is refetched.
type OrderPDFPayload struct {
	Order        gateway.Order
	PaymentPhone string
	GeneratedAt  time.Time
}

// PDFExporter renders the order document as HTML and converts it via
// Gotenberg.
type PDFExporter struct {
	Endpoint     string
	Client       *http.Client
	PaymentPhone string
	templates    *template.Template
}

// NewPDFExporter parses the order template once at construction.
func NewPDFExporter(endpoint string, client *http.Client, paymentPhone string) (*PDFExporter, error) {
	printer := message.NewPrinter(language.Spanish)
	funcMap := template.FuncMap{
		"money": func(v float64) string {
			return printer.Sprintf("$ %.2f", v)
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006")
		},
	}

	tpl, err := template.New("order_pdf.html").Funcs(funcMap).ParseFS(
		web.Templates, "templates/reports/order_pdf.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parse order pdf template: %w", err)
	}

	return &PDFExporter{
		Endpoint:     endpoint,
		Client:       client,
		PaymentPhone: paymentPhone,
		templates:    tpl,
	}, nil
}

// RenderOrder produces the finished PDF bytes for an order.
func (e *PDFExporter) RenderOrder(ctx context.Context, order gateway.Order) ([]byte, error) {
	if e == nil || e.templates == nil {
		return nil, fmt.Errorf("pdf exporter not initialized")
	}
	if e.Endpoint == "" {
		return nil, fmt.Errorf("gotenberg endpoint not configured")
	}

	payload := OrderPDFPayload{
		Order:        order,
		PaymentPhone: e.PaymentPhone,
		GeneratedAt:  time.Now(),
	}

	var html bytes.Buffer
	if err := e.templates.ExecuteTemplate(&html, "order_pdf.html", payload); err != nil {
		return nil, fmt.Errorf("render order pdf template: %w", err)
	}

	return e.convert(ctx, html.Bytes())
}

func (e *PDFExporter) convert(ctx context.Context, html []byte) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(html); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	client := e.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("convert order pdf: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("pdf conversion failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// OrderPDFFilename returns the download name for one order.
func OrderPDFFilename(order gateway.Order) string {
	return fmt.Sprintf("pedido-%s.pdf", order.Number)
}
