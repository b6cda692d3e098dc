package stock

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/platform/httpx"
	"github.com/alhaja/alhaja-admin/internal/shared"
	"github.com/alhaja/alhaja-admin/internal/view"
)

// Handler wires HTTP endpoints for the stock module.
type Handler struct {
	logger    *slog.Logger
	client    *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	failures  *httpx.GatewayErrors
}

// NewHandler constructs a stock handler.
func NewHandler(logger *slog.Logger, client *gateway.Client, templates *view.Engine, csrf *shared.CSRFManager, failures *httpx.GatewayErrors) *Handler {
	return &Handler{
		logger:    logger,
		client:    client,
		templates: templates,
		csrf:      csrf,
		failures:  failures,
	}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleMovements)
	r.Get("/adjust", h.showAdjustForm)
	r.Post("/adjust", h.handleAdjust)
}

func (h *Handler) handleMovements(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product")
	data := map[string]any{"ProductID": productID}

	if productID != "" {
		movements, err := h.client.ListMovements(r.Context(), productID)
		if err != nil {
			if h.failures.HandleExpired(w, r, err) {
				return
			}
			h.flashError(r, err)
		} else {
			data["Movements"] = movements
		}
		if product, err := h.client.GetProduct(r.Context(), productID); err == nil {
			data["Product"] = product
		}
	}
	if products, err := h.client.ListProducts(r.Context(), gateway.ProductFilter{PerPage: 200}); err == nil {
		data["Products"] = products.Items
	}

	h.render(w, r, "pages/stock_list.html", "Stock", data, http.StatusOK)
}

func (h *Handler) showAdjustForm(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product")
	if productID == "" {
		http.Redirect(w, r, "/stock", http.StatusSeeOther)
		return
	}
	product, err := h.client.GetProduct(r.Context(), productID)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
		http.Redirect(w, r, "/stock", http.StatusSeeOther)
		return
	}
	h.renderAdjust(w, r, Adjustment{ProductID: product.ID, CurrentStock: product.Stock}, product, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	productID := r.PostFormValue("product_id")
	product, err := h.client.GetProduct(r.Context(), productID)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
		http.Redirect(w, r, "/stock", http.StatusSeeOther)
		return
	}

	adjustment := Adjustment{
		ProductID:    productID,
		CurrentStock: product.Stock,
		Notes:        r.PostFormValue("notes"),
	}
	errors := make(map[string]string)
	if delta, parseErr := strconv.Atoi(r.PostFormValue("delta")); parseErr == nil {
		adjustment.Delta = delta
	} else {
		errors["delta"] = "El ajuste debe ser un número entero"
	}

	if len(errors) == 0 {
		if err := adjustment.Validate(); err != nil {
			errors["delta"] = err.Error()
		}
	}

	if len(errors) == 0 {
		_, err := h.client.PostAdjustment(r.Context(), gateway.AdjustmentInput{
			ProductID: adjustment.ProductID,
			Quantity:  adjustment.Delta,
			Notes:     adjustment.Notes,
		})
		if err != nil {
			if h.failures.HandleExpired(w, r, err) {
				return
			}
			errors["general"] = gateway.RejectionMessage(err)
		} else {
			h.flashSuccess(r, "Ajuste registrado")
			http.Redirect(w, r, "/stock?product="+productID, http.StatusSeeOther)
			return
		}
	}
	h.renderAdjust(w, r, adjustment, product, errors, http.StatusBadRequest)
}

func (h *Handler) renderAdjust(w http.ResponseWriter, r *http.Request, adjustment Adjustment, product *gateway.Product, errors map[string]string, status int) {
	h.render(w, r, "pages/stock_adjust.html", "Ajustar stock", map[string]any{
		"Adjustment": adjustment,
		"Product":    product,
		"Errors":     errors,
	}, status)
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
		h.logger.Error("render stock page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) flashSuccess(r *http.Request, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
	}
}

func (h *Handler) flashError(r *http.Request, err error) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: gateway.RejectionMessage(err)})
	}
}
