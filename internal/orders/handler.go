// Package orders renders the sales order listing, detail, creation
// form, lifecycle actions and the CSV/PDF exports.
package orders

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/orders/export"
	"github.com/alhaja/alhaja-admin/internal/platform/httpx"
	"github.com/alhaja/alhaja-admin/internal/shared"
	"github.com/alhaja/alhaja-admin/internal/view"
)

const (
	ordersPerPage = 25
	// exportPageSize is the backend page size used when draining the
	// full filtered listing for a CSV export.
	exportPageSize = 200
)

// Handler wires HTTP endpoints for the order module.
type Handler struct {
	logger    *slog.Logger
	client    *gateway.Client
	pdf       *export.PDFExporter
	templates *view.Engine
	csrf      *shared.CSRFManager
	failures  *httpx.GatewayErrors
}

// NewHandler constructs an order handler.
func NewHandler(logger *slog.Logger, client *gateway.Client, pdf *export.PDFExporter, templates *view.Engine, csrf *shared.CSRFManager, failures *httpx.GatewayErrors) *Handler {
	return &Handler{
		logger:    logger,
		client:    client,
		pdf:       pdf,
		templates: templates,
		csrf:      csrf,
		failures:  failures,
	}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/export.csv", h.handleExportCSV)
	r.Get("/shipping-quote", h.handleShippingQuote)
	r.Get("/new", h.showCreateForm)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleDetail)
	r.Get("/{id}/pdf", h.handleExportPDF)
	r.Post("/{id}/status", h.handleStatusChange)
	r.Post("/{id}/delete", h.handleDelete)
}

type orderListData struct {
	Orders     []gateway.Order
	Statuses   []gateway.OrderStatus
	Status     string
	Pagination shared.Pagination
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	search := q.Get("search")
	status := gateway.OrderStatus(q.Get("status"))
	if status != "" && !status.Valid() {
		status = ""
	}

	result, err := h.client.ListOrders(r.Context(), gateway.OrderFilter{
		Search:  search,
		Status:  status,
		Page:    page,
		PerPage: ordersPerPage,
	})
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.logger.Error("list orders", slog.Any("error", err))
		h.flashError(r, err)
		result = &gateway.Page[gateway.Order]{}
	}

	h.render(w, r, "pages/orders_list.html", "Pedidos", orderListData{
		Orders:     result.Items,
		Statuses:   gateway.AllOrderStatuses,
		Status:     string(status),
		Pagination: shared.NewPagination(page, ordersPerPage, result.Total, search),
	}, http.StatusOK)
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.client.GetOrder(r.Context(), id)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
		http.Redirect(w, r, "/orders", http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/order_detail.html", "Pedido "+order.Number, map[string]any{
		"Order":    order,
		"Statuses": gateway.AllOrderStatuses,
	}, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderCreateForm(w, r, createFormState{}, http.StatusOK)
}

type createFormState struct {
	CustomerID        string
	ShippingAddressID string
	Notes             string
	Error             string
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	state := createFormState{
		CustomerID:        r.PostFormValue("customer_id"),
		ShippingAddressID: r.PostFormValue("shipping_address_id"),
		Notes:             r.PostFormValue("notes"),
	}
	items := parseCartItems(r.PostForm["product_id"], r.PostForm["quantity"])

	if state.CustomerID == "" {
		state.Error = "Elegí una clienta"
	} else if len(items) == 0 {
		state.Error = "Agregá al menos un artículo"
	}

	if state.Error == "" {
		created, err := h.client.CreateOrder(r.Context(), gateway.OrderInput{
			CustomerID:        state.CustomerID,
			ShippingAddressID: state.ShippingAddressID,
			Notes:             state.Notes,
			Items:             items,
		})
		if err != nil {
			if h.failures.HandleExpired(w, r, err) {
				return
			}
			state.Error = gateway.RejectionMessage(err)
		} else {
			h.flashSuccess(r, "Pedido "+created.Number+" creado")
			http.Redirect(w, r, "/orders/"+created.ID, http.StatusSeeOther)
			return
		}
	}
	h.renderCreateForm(w, r, state, http.StatusBadRequest)
}

// parseCartItems pairs the parallel product/quantity columns of the
// cart form, dropping empty rows.
func parseCartItems(productIDs, quantities []string) []gateway.OrderItemInput {
	var items []gateway.OrderItemInput
	for i, productID := range productIDs {
		if strings.TrimSpace(productID) == "" {
			continue
		}
		quantity := 1
		if i < len(quantities) {
			if parsed, err := strconv.Atoi(quantities[i]); err == nil && parsed > 0 {
				quantity = parsed
			}
		}
		items = append(items, gateway.OrderItemInput{ProductID: productID, Quantity: quantity})
	}
	return items
}

func (h *Handler) handleStatusChange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	status := gateway.OrderStatus(r.PostFormValue("status"))
	if !status.Valid() {
		h.flashErrorMessage(r, "Estado no válido")
		http.Redirect(w, r, "/orders/"+id, http.StatusSeeOther)
		return
	}
	// All five statuses are always offered; the backend is the one that
	// rejects illegal transitions.
	if _, err := h.client.UpdateOrderStatus(r.Context(), id, status); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	} else {
		h.flashSuccess(r, "Estado actualizado a "+status.Label())
	}
	http.Redirect(w, r, "/orders/"+id, http.StatusSeeOther)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.client.DeleteOrder(r.Context(), id); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
		http.Redirect(w, r, "/orders/"+id, http.StatusSeeOther)
		return
	}
	h.flashSuccess(r, "Pedido eliminado")
	http.Redirect(w, r, "/orders", http.StatusSeeOther)
}

// handleExportCSV streams the filtered listing as a spreadsheet-ready
// CSV. The current filters apply; pagination does not.
func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := gateway.OrderStatus(q.Get("status"))
	if status != "" && !status.Valid() {
		status = ""
	}
	filter := gateway.OrderFilter{
		Search:  q.Get("search"),
		Status:  status,
		PerPage: exportPageSize,
	}

	var all []gateway.Order
	for page := 1; ; page++ {
		filter.Page = page
		result, err := h.client.ListOrders(r.Context(), filter)
		if err != nil {
			if h.failures.HandleExpired(w, r, err) {
				return
			}
			h.flashError(r, err)
			http.Redirect(w, r, "/orders", http.StatusSeeOther)
			return
		}
		all = append(all, result.Items...)
		if len(result.Items) < exportPageSize || len(all) >= result.Total {
			break
		}
	}

	httpx.Attachment(w, export.OrdersCSVFilename(time.Now()), "text/csv; charset=utf-8")
	if err := export.WriteOrdersCSV(w, all); err != nil {
		h.logger.Error("write orders csv", slog.Any("error", err))
	}
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.client.GetOrder(r.Context(), id)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
		http.Redirect(w, r, "/orders", http.StatusSeeOther)
		return
	}
	pdf, err := h.pdf.RenderOrder(r.Context(), *order)
	if err != nil {
		h.logger.Error("render order pdf", slog.String("order", order.Number), slog.Any("error", err))
		h.flashErrorMessage(r, "No se pudo generar el PDF. Intentá nuevamente.")
		http.Redirect(w, r, "/orders/"+id, http.StatusSeeOther)
		return
	}
	httpx.Attachment(w, export.OrderPDFFilename(*order), "application/pdf")
	_, _ = w.Write(pdf)
}

// handleShippingQuote backs the live shipping cost hint on the order
// form.
func (h *Handler) handleShippingQuote(w http.ResponseWriter, r *http.Request) {
	postalCode := strings.TrimSpace(r.URL.Query().Get("postalCode"))
	if postalCode == "" {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "postalCode is required"})
		return
	}
	cost, err := h.client.CalculateShipping(r.Context(), postalCode)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		httpx.JSON(w, http.StatusBadGateway, map[string]string{"error": gateway.RejectionMessage(err)})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{"cost": cost})
}

func (h *Handler) renderCreateForm(w http.ResponseWriter, r *http.Request, state createFormState, status int) {
	data := map[string]any{
		"Form":  state,
		"Error": state.Error,
	}
	if customers, err := h.client.ListCustomers(r.Context(), gateway.CustomerFilter{}); err == nil {
		data["Customers"] = customers
	}
	if products, err := h.client.ListProducts(r.Context(), gateway.ProductFilter{PerPage: exportPageSize}); err == nil {
		data["Products"] = products.Items
	}
	if zones, err := h.client.ListShippingZones(r.Context()); err == nil {
		data["ShippingZones"] = zones
	}
	h.render(w, r, "pages/order_form.html", "Nuevo pedido", data, status)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	var identity *shared.Identity
	if sess != nil {
		flash = sess.PopFlash()
		identity = sess.Identity()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Identity:    identity,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render order page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) flashSuccess(r *http.Request, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
	}
}

func (h *Handler) flashError(r *http.Request, err error) {
	h.flashErrorMessage(r, gateway.RejectionMessage(err))
}

func (h *Handler) flashErrorMessage(r *http.Request, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: message})
	}
}
