// Package suppliers renders the supplier directory and its CRUD forms.
package suppliers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/platform/httpx"
	"github.com/alhaja/alhaja-admin/internal/shared"
	"github.com/alhaja/alhaja-admin/internal/view"
)

// Handler wires HTTP endpoints for the supplier module.
type Handler struct {
	logger    *slog.Logger
	client    *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	failures  *httpx.GatewayErrors
	validator *validator.Validate
}

// NewHandler constructs a supplier handler.
func NewHandler(logger *slog.Logger, client *gateway.Client, templates *view.Engine, csrf *shared.CSRFManager, failures *httpx.GatewayErrors) *Handler {
	return &Handler{
		logger:    logger,
		client:    client,
		templates: templates,
		csrf:      csrf,
		failures:  failures,
		validator: validator.New(),
	}
}

// MountRoutes registers supplier routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/new", h.showCreateForm)
	r.Post("/", h.handleCreate)
	r.Get("/{id}/edit", h.showEditForm)
	r.Post("/{id}", h.handleUpdate)
	r.Post("/{id}/archive", h.handleArchive)
	r.Post("/{id}/restore", h.handleRestore)
	r.Post("/{id}/delete", h.handleDelete)
}

type supplierForm struct {
	Name  string `validate:"required,min=2"`
	Phone string
	URL   string `validate:"omitempty,url"`
	Notes string
}

type listPageData struct {
	Suppliers    []gateway.Supplier
	Search       string
	ShowArchived bool
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := listPageData{
		Search:       q.Get("search"),
		ShowArchived: q.Get("archived") == "1",
	}

	filter := gateway.SupplierFilter{Search: data.Search}
	if !data.ShowArchived {
		active := true
		filter.Active = &active
	}
	suppliers, err := h.client.ListSuppliers(r.Context(), filter)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.logger.Error("list suppliers", slog.Any("error", err))
		h.flashError(r, err)
	}
	data.Suppliers = suppliers

	h.render(w, r, "pages/suppliers_list.html", "Proveedores", data, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "", supplierForm{}, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form, errors := h.parseForm(r)
	if len(errors) == 0 {
		_, err := h.client.CreateSupplier(r.Context(), gateway.SupplierInput{
			Name:  form.Name,
			Phone: form.Phone,
			URL:   form.URL,
			Notes: form.Notes,
		})
		if err != nil {
			if h.failures.HandleExpired(w, r, err) {
				return
			}
			errors["general"] = gateway.RejectionMessage(err)
		} else {
			h.flashSuccess(r, "Proveedor creado")
			http.Redirect(w, r, "/suppliers", http.StatusSeeOther)
			return
		}
	}
	h.renderForm(w, r, "", form, errors, http.StatusBadRequest)
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	supplier, err := h.client.GetSupplier(r.Context(), id)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
		http.Redirect(w, r, "/suppliers", http.StatusSeeOther)
		return
	}
	form := supplierForm{
		Name:  supplier.Name,
		Phone: supplier.Phone,
		URL:   supplier.URL,
		Notes: supplier.Notes,
	}
	h.renderForm(w, r, id, form, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	form, errors := h.parseForm(r)
	if len(errors) == 0 {
		_, err := h.client.UpdateSupplier(r.Context(), id, gateway.SupplierInput{
			Name:  form.Name,
			Phone: form.Phone,
			URL:   form.URL,
			Notes: form.Notes,
		})
		if err != nil {
			if h.failures.HandleExpired(w, r, err) {
				return
			}
			errors["general"] = gateway.RejectionMessage(err)
		} else {
			h.flashSuccess(r, "Proveedor actualizado")
			http.Redirect(w, r, "/suppliers", http.StatusSeeOther)
			return
		}
	}
	h.renderForm(w, r, id, form, errors, http.StatusBadRequest)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Proveedor archivado", h.client.ArchiveSupplier)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Proveedor restaurado", h.client.RestoreSupplier)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Proveedor eliminado", h.client.DeleteSupplier)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, success string, op func(context.Context, string) error) {
	id := chi.URLParam(r, "id")
	if err := op(r.Context(), id); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	} else {
		h.flashSuccess(r, success)
	}
	http.Redirect(w, r, "/suppliers", http.StatusSeeOther)
}

func (h *Handler) parseForm(r *http.Request) (supplierForm, map[string]string) {
	form := supplierForm{
		Name:  r.PostFormValue("name"),
		Phone: r.PostFormValue("phone"),
		URL:   r.PostFormValue("url"),
		Notes: r.PostFormValue("notes"),
	}
	errors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range fieldErrs {
				switch fieldErr.Field() {
				case "Name":
					errors["name"] = "El nombre es obligatorio"
				case "URL":
					errors["url"] = "La URL no es válida"
				}
			}
		}
	}
	return form, errors
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, id string, form supplierForm, errors map[string]string, status int) {
	title := "Nuevo proveedor"
	if id != "" {
		title = "Editar proveedor"
	}
	h.render(w, r, "pages/supplier_form.html", title, map[string]any{
		"ID":     id,
		"Form":   form,
		"Errors": errors,
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
		h.logger.Error("render supplier page", slog.String("page", page), slog.Any("error", err))
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
