// Package customers renders the customer directory, per-customer
// detail and the address book operations.
package customers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/platform/httpx"
	"github.com/alhaja/alhaja-admin/internal/shared"
	"github.com/alhaja/alhaja-admin/internal/view"
)

// Handler wires HTTP endpoints for the customer module.
type Handler struct {
	logger    *slog.Logger
	client    *gateway.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	failures  *httpx.GatewayErrors
	validator *validator.Validate
}

// NewHandler constructs a customer handler.
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

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/new", h.showCreateForm)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleDetail)
	r.Get("/{id}/edit", h.showEditForm)
	r.Post("/{id}", h.handleUpdate)
	r.Post("/{id}/archive", h.handleArchive)
	r.Post("/{id}/restore", h.handleRestore)
	r.Post("/{id}/addresses", h.handleCreateAddress)
	r.Post("/{id}/addresses/{addressID}", h.handleUpdateAddress)
	r.Post("/{id}/addresses/{addressID}/delete", h.handleDeleteAddress)
	r.Post("/{id}/addresses/{addressID}/set-default", h.handleSetDefaultAddress)
}

type customerForm struct {
	Phone string `validate:"required,min=6"`
	Name  string `validate:"required,min=2"`
	Type  string `validate:"required,oneof=RETAIL WHOLESALE"`
	Notes string
}

type addressForm struct {
	Label      string `validate:"required"`
	Street     string `validate:"required"`
	City       string `validate:"required"`
	PostalCode string `validate:"required"`
	Province   string
	Country    string
	Notes      string
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := gateway.CustomerFilter{
		Search: q.Get("search"),
		Type:   gateway.CustomerType(q.Get("type")),
	}
	if q.Get("archived") != "1" {
		active := true
		filter.Active = &active
	}
	customers, err := h.client.ListCustomers(r.Context(), filter)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.logger.Error("list customers", slog.Any("error", err))
		h.flashError(r, err)
	}
	h.render(w, r, "pages/customers_list.html", "Clientas", map[string]any{
		"Customers":    customers,
		"Search":       filter.Search,
		"Type":         string(filter.Type),
		"ShowArchived": q.Get("archived") == "1",
	}, http.StatusOK)
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	customer, err := h.client.GetCustomer(r.Context(), id)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
		http.Redirect(w, r, "/customers", http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/customer_detail.html", customer.Name, map[string]any{
		"Customer": customer,
	}, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "", customerForm{Type: string(gateway.CustomerRetail)}, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form, errors := h.parseCustomerForm(r)
	if len(errors) == 0 {
		created, err := h.client.CreateCustomer(r.Context(), form.toInput())
		if err != nil {
			if h.failures.HandleExpired(w, r, err) {
				return
			}
			errors["general"] = gateway.RejectionMessage(err)
		} else {
			h.flashSuccess(r, "Clienta creada")
			http.Redirect(w, r, "/customers/"+created.ID, http.StatusSeeOther)
			return
		}
	}
	h.renderForm(w, r, "", form, errors, http.StatusBadRequest)
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	customer, err := h.client.GetCustomer(r.Context(), id)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
		http.Redirect(w, r, "/customers", http.StatusSeeOther)
		return
	}
	form := customerForm{
		Phone: customer.Phone,
		Name:  customer.Name,
		Type:  string(customer.Type),
		Notes: customer.Notes,
	}
	h.renderForm(w, r, id, form, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	form, errors := h.parseCustomerForm(r)
	if len(errors) == 0 {
		_, err := h.client.UpdateCustomer(r.Context(), id, form.toInput())
		if err != nil {
			if h.failures.HandleExpired(w, r, err) {
				return
			}
			errors["general"] = gateway.RejectionMessage(err)
		} else {
			h.flashSuccess(r, "Clienta actualizada")
			http.Redirect(w, r, "/customers/"+id, http.StatusSeeOther)
			return
		}
	}
	h.renderForm(w, r, id, form, errors, http.StatusBadRequest)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.client.ArchiveCustomer(r.Context(), id); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	} else {
		h.flashSuccess(r, "Clienta archivada")
	}
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.client.RestoreCustomer(r.Context(), id); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	} else {
		h.flashSuccess(r, "Clienta restaurada")
	}
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

func (h *Handler) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	form, errors := h.parseAddressForm(r)
	if len(errors) > 0 {
		h.flashErrorMessage(r, firstError(errors))
		http.Redirect(w, r, "/customers/"+id, http.StatusSeeOther)
		return
	}
	if _, err := h.client.CreateAddress(r.Context(), id, form.toInput()); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	} else {
		h.flashSuccess(r, "Dirección agregada")
	}
	http.Redirect(w, r, "/customers/"+id, http.StatusSeeOther)
}

func (h *Handler) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	addressID := chi.URLParam(r, "addressID")
	form, errors := h.parseAddressForm(r)
	if len(errors) > 0 {
		h.flashErrorMessage(r, firstError(errors))
		http.Redirect(w, r, "/customers/"+id, http.StatusSeeOther)
		return
	}
	if _, err := h.client.UpdateAddress(r.Context(), addressID, form.toInput()); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	} else {
		h.flashSuccess(r, "Dirección actualizada")
	}
	http.Redirect(w, r, "/customers/"+id, http.StatusSeeOther)
}

func (h *Handler) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	addressID := chi.URLParam(r, "addressID")
	if err := h.client.DeleteAddress(r.Context(), addressID); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	} else {
		h.flashSuccess(r, "Dirección eliminada")
	}
	http.Redirect(w, r, "/customers/"+id, http.StatusSeeOther)
}

func (h *Handler) handleSetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	addressID := chi.URLParam(r, "addressID")
	// The backend clears the previous default atomically.
	if err := h.client.SetDefaultAddress(r.Context(), addressID); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	} else {
		h.flashSuccess(r, "Dirección predeterminada actualizada")
	}
	http.Redirect(w, r, "/customers/"+id, http.StatusSeeOther)
}

func (f customerForm) toInput() gateway.CustomerInput {
	return gateway.CustomerInput{
		Phone: f.Phone,
		Name:  f.Name,
		Type:  gateway.CustomerType(f.Type),
		Notes: f.Notes,
	}
}

func (f addressForm) toInput() gateway.AddressInput {
	return gateway.AddressInput{
		Label:      f.Label,
		Street:     f.Street,
		City:       f.City,
		PostalCode: f.PostalCode,
		Province:   f.Province,
		Country:    f.Country,
		Notes:      f.Notes,
	}
}

func (h *Handler) parseCustomerForm(r *http.Request) (customerForm, map[string]string) {
	form := customerForm{
		Phone: strings.TrimSpace(r.PostFormValue("phone")),
		Name:  strings.TrimSpace(r.PostFormValue("name")),
		Type:  r.PostFormValue("type"),
		Notes: r.PostFormValue("notes"),
	}
	errors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range fieldErrs {
				switch fieldErr.Field() {
				case "Phone":
					errors["phone"] = "El teléfono es obligatorio"
				case "Name":
					errors["name"] = "El nombre es obligatorio"
				case "Type":
					errors["type"] = "El tipo no es válido"
				}
			}
		}
	}
	return form, errors
}

func (h *Handler) parseAddressForm(r *http.Request) (addressForm, map[string]string) {
	form := addressForm{
		Label:      strings.TrimSpace(r.PostFormValue("label")),
		Street:     strings.TrimSpace(r.PostFormValue("street")),
		City:       strings.TrimSpace(r.PostFormValue("city")),
		PostalCode: strings.TrimSpace(r.PostFormValue("postal_code")),
		Province:   r.PostFormValue("province"),
		Country:    r.PostFormValue("country"),
		Notes:      r.PostFormValue("notes"),
	}
	if form.Country == "" {
		form.Country = "Argentina"
	}
	errors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range fieldErrs {
				errors[strings.ToLower(fieldErr.Field())] = "Completá los datos de la dirección"
			}
		}
	}
	return form, errors
}

func firstError(errors map[string]string) string {
	for _, message := range errors {
		return message
	}
	return ""
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, id string, form customerForm, errors map[string]string, status int) {
	title := "Nueva clienta"
	if id != "" {
		title = "Editar clienta"
	}
	h.render(w, r, "pages/customer_form.html", title, map[string]any{
		"ID":     id,
		"Form":   form,
		"Errors": errors,
		"Types":  []string{string(gateway.CustomerRetail), string(gateway.CustomerWholesale)},
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
		h.logger.Error("render customer page", slog.String("page", page), slog.Any("error", err))
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
