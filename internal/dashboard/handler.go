// Package dashboard renders the home view: order counts by status, low
// stock alerts and the latest activity.
package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/platform/httpx"
	"github.com/alhaja/alhaja-admin/internal/shared"
	"github.com/alhaja/alhaja-admin/internal/view"
)

// Handler wires the dashboard endpoint.
type Handler struct {
	logger    *slog.Logger
	client    *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	failures  *httpx.GatewayErrors
}

// NewHandler constructs a dashboard handler.
func NewHandler(logger *slog.Logger, client *gateway.Client, templates *view.Engine, csrf *shared.CSRFManager, failures *httpx.GatewayErrors) *Handler {
	return &Handler{
		logger:    logger,
		client:    client,
		templates: templates,
		csrf:      csrf,
		failures:  failures,
	}
}

// MountRoutes registers the dashboard route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleDashboard)
}

type pageData struct {
	Stats          *gateway.DashboardStats
	SupplierOrders []gateway.SupplierOrder
	Statuses       []gateway.OrderStatus
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := pageData{Statuses: gateway.AllOrderStatuses}

	// Both panels are independent backend calls; fetch them in parallel.
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		stats, err := h.client.GetDashboardStats(ctx)
		if err != nil {
			return err
		}
		data.Stats = stats
		return nil
	})
	g.Go(func() error {
		orders, err := h.client.ListSupplierOrders(ctx, "")
		if err != nil {
			return err
		}
		if len(orders) > 5 {
			orders = orders[:5]
		}
		data.SupplierOrders = orders
		return nil
	})
	if err := g.Wait(); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.logger.Error("load dashboard", slog.Any("error", err))
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: gateway.RejectionMessage(err)})
		}
	}

	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	var identity *shared.Identity
	if sess != nil {
		flash = sess.PopFlash()
		identity = sess.Identity()
	}
	viewData := view.TemplateData{
		Title:       "Alhaja Admin",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Identity:    identity,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
