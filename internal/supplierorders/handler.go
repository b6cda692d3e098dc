// Package supplierorders renders the read-only history of reconciled
// import batches. These records are created only by the import wizard;
// there is no manual creation or editing here.
package supplierorders

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/platform/httpx"
	"github.com/alhaja/alhaja-admin/internal/shared"
	"github.com/alhaja/alhaja-admin/internal/view"
)

// Handler wires HTTP endpoints for the supplier order history.
type Handler struct {
	logger    *slog.Logger
	client    *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	failures  *httpx.GatewayErrors
}

// NewHandler constructs a supplier order handler.
func NewHandler(logger *slog.Logger, client *gateway.Client, templates *view.Engine, csrf *shared.CSRFManager, failures *httpx.GatewayErrors) *Handler {
	return &Handler{
		logger:    logger,
		client:    client,
		templates: templates,
		csrf:      csrf,
		failures:  failures,
	}
}

// MountRoutes registers supplier order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleDetail)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	supplierID := r.URL.Query().Get("supplier")
	orders, err := h.client.ListSupplierOrders(r.Context(), supplierID)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.logger.Error("list supplier orders", slog.Any("error", err))
		h.flashError(r, err)
	}
	data := map[string]any{"Orders": orders, "SupplierID": supplierID}
	if suppliers, err := h.client.ListSuppliers(r.Context(), gateway.SupplierFilter{}); err == nil {
		data["Suppliers"] = suppliers
	}
	h.render(w, r, "pages/supplier_orders_list.html", "Compras", data, http.StatusOK)
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.client.GetSupplierOrder(r.Context(), id)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
		http.Redirect(w, r, "/supplier-orders", http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/supplier_order_detail.html", "Compra "+order.InvoiceNumber, map[string]any{"Order": order}, http.StatusOK)
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
		h.logger.Error("render supplier order page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) flashError(r *http.Request, err error) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: gateway.RejectionMessage(err)})
	}
}
