// Package catalog renders the product catalog and category management.
package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/platform/httpx"
	"github.com/alhaja/alhaja-admin/internal/shared"
	"github.com/alhaja/alhaja-admin/internal/uploads"
	"github.com/alhaja/alhaja-admin/internal/view"
)

const (
	productsPerPage  = 25
	maxImageFormSize = 12 << 20
)

// Handler wires HTTP endpoints for the catalog module.
type Handler struct {
	logger    *slog.Logger
	client    *gateway.Client
	uploader  *uploads.Uploader
	templates *view.Engine
	csrf      *shared.CSRFManager
	failures  *httpx.GatewayErrors
	validator *validator.Validate
}

// NewHandler constructs a catalog handler.
func NewHandler(logger *slog.Logger, client *gateway.Client, uploader *uploads.Uploader, templates *view.Engine, csrf *shared.CSRFManager, failures *httpx.GatewayErrors) *Handler {
	return &Handler{
		logger:    logger,
		client:    client,
		uploader:  uploader,
		templates: templates,
		csrf:      csrf,
		failures:  failures,
		validator: validator.New(),
	}
}

// MountProductRoutes registers product routes.
func (h *Handler) MountProductRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/check-code", h.handleCheckCode)
	r.Get("/new", h.showCreateForm)
	r.Post("/", h.handleCreate)
	r.Get("/{id}/edit", h.showEditForm)
	r.Post("/{id}", h.handleUpdate)
	r.Post("/{id}/archive", h.handleArchive)
	r.Post("/{id}/restore", h.handleRestore)
	r.Post("/{id}/delete", h.handleDelete)
}

// MountCategoryRoutes registers category routes.
func (h *Handler) MountCategoryRoutes(r chi.Router) {
	r.Get("/", h.handleCategories)
	r.Post("/", h.handleCreateCategory)
	r.Post("/{id}", h.handleRenameCategory)
	r.Post("/{id}/delete", h.handleDeleteCategory)
}

type productForm struct {
	Code           string `validate:"required,min=2"`
	Name           string `validate:"required,min=2"`
	PriceRetail    float64
	PriceWholesale *float64
	PriceCost      *float64
	ImageURL       string
	Size           string
	Visible        bool
	SupplierID     string
	CategoryID     string
}

type productListData struct {
	Products   []gateway.Product
	Suppliers  []gateway.Supplier
	Categories []gateway.Category
	Pagination shared.Pagination
	SupplierID string
	CategoryID string
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	data := productListData{
		SupplierID: q.Get("supplier"),
		CategoryID: q.Get("category"),
	}
	search := q.Get("search")

	result, err := h.client.ListProducts(r.Context(), gateway.ProductFilter{
		Search:     search,
		SupplierID: data.SupplierID,
		CategoryID: data.CategoryID,
		Page:       page,
		PerPage:    productsPerPage,
	})
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.logger.Error("list products", slog.Any("error", err))
		h.flashError(r, err)
		result = &gateway.Page[gateway.Product]{}
	}
	data.Products = result.Items
	data.Pagination = shared.NewPagination(page, productsPerPage, result.Total, search)

	// Filter dropdowns are best-effort; a failed lookup leaves them empty.
	if suppliers, err := h.client.ListSuppliers(r.Context(), gateway.SupplierFilter{}); err == nil {
		data.Suppliers = suppliers
	}
	if categories, err := h.client.ListCategories(r.Context()); err == nil {
		data.Categories = categories
	}

	h.render(w, r, "pages/products_list.html", "Productos", data, http.StatusOK)
}

// handleCheckCode backs the live duplicate check on the product form.
func (h *Handler) handleCheckCode(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "code is required"})
		return
	}
	exists, err := h.client.CheckProductCode(r.Context(), code)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		httpx.JSON(w, http.StatusBadGateway, map[string]string{"error": gateway.RejectionMessage(err)})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "", productForm{Visible: true}, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	form, errors, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	if len(errors) == 0 {
		_, err := h.client.CreateProduct(r.Context(), form.toInput())
		if err != nil {
			if h.failures.HandleExpired(w, r, err) {
				return
			}
			errors["general"] = gateway.RejectionMessage(err)
		} else {
			h.flashSuccess(r, "Producto creado")
			http.Redirect(w, r, "/products", http.StatusSeeOther)
			return
		}
	}
	h.renderForm(w, r, "", form, errors, http.StatusBadRequest)
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := h.client.GetProduct(r.Context(), id)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}
	form := productForm{
		Code:           product.Code,
		Name:           product.Name,
		PriceRetail:    product.PriceRetail,
		PriceWholesale: product.PriceWholesale,
		PriceCost:      product.PriceCost,
		ImageURL:       product.ImageURL,
		Size:           product.Size,
		Visible:        product.Visible,
		SupplierID:     product.SupplierID,
		CategoryID:     product.CategoryID,
	}
	h.renderForm(w, r, id, form, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, errors, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	if len(errors) == 0 {
		_, err := h.client.UpdateProduct(r.Context(), id, form.toInput())
		if err != nil {
			if h.failures.HandleExpired(w, r, err) {
				return
			}
			errors["general"] = gateway.RejectionMessage(err)
		} else {
			h.flashSuccess(r, "Producto actualizado")
			http.Redirect(w, r, "/products", http.StatusSeeOther)
			return
		}
	}
	h.renderForm(w, r, id, form, errors, http.StatusBadRequest)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	h.mutateProduct(w, r, "Producto archivado", h.client.ArchiveProduct)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	h.mutateProduct(w, r, "Producto restaurado", h.client.RestoreProduct)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	h.mutateProduct(w, r, "Producto eliminado", h.client.DeleteProduct)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.client.ListCategories(r.Context())
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	}
	h.render(w, r, "pages/categories.html", "Categorías", map[string]any{"Categories": categories}, http.StatusOK)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		h.flashErrorMessage(r, "El nombre de la categoría es obligatorio")
	} else if _, err := h.client.CreateCategory(r.Context(), name); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	} else {
		h.flashSuccess(r, "Categoría creada")
	}
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

func (h *Handler) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		h.flashErrorMessage(r, "El nombre de la categoría es obligatorio")
	} else if _, err := h.client.UpdateCategory(r.Context(), id, name); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	} else {
		h.flashSuccess(r, "Categoría actualizada")
	}
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.client.DeleteCategory(r.Context(), id); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	} else {
		h.flashSuccess(r, "Categoría eliminada")
	}
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

func (f productForm) toInput() gateway.ProductInput {
	return gateway.ProductInput{
		Code:           f.Code,
		Name:           f.Name,
		PriceRetail:    f.PriceRetail,
		PriceWholesale: f.PriceWholesale,
		PriceCost:      f.PriceCost,
		ImageURL:       f.ImageURL,
		Size:           f.Size,
		Visible:        f.Visible,
		SupplierID:     f.SupplierID,
		CategoryID:     f.CategoryID,
	}
}

// parseForm reads the multipart product form, uploading a new image to
// the CDN when one was attached. The returned bool is false when the
// response has already been written.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (productForm, map[string]string, bool) {
	if err := r.ParseMultipartForm(maxImageFormSize); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return productForm{}, nil, false
	}
	errors := make(map[string]string)
	form := productForm{
		Code:       strings.TrimSpace(r.PostFormValue("code")),
		Name:       strings.TrimSpace(r.PostFormValue("name")),
		ImageURL:   r.PostFormValue("image_url"),
		Size:       r.PostFormValue("size"),
		Visible:    r.PostFormValue("visible") == "1",
		SupplierID: r.PostFormValue("supplier_id"),
		CategoryID: r.PostFormValue("category_id"),
	}
	if retail, err := strconv.ParseFloat(r.PostFormValue("price_retail"), 64); err == nil && retail >= 0 {
		form.PriceRetail = retail
	} else {
		errors["price_retail"] = "El precio minorista no es válido"
	}
	form.PriceWholesale = optionalPrice(r.PostFormValue("price_wholesale"), errors, "price_wholesale")
	form.PriceCost = optionalPrice(r.PostFormValue("price_cost"), errors, "price_cost")

	if err := h.validator.Struct(form); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range fieldErrs {
				switch fieldErr.Field() {
				case "Code":
					errors["code"] = "El código es obligatorio"
				case "Name":
					errors["name"] = "El nombre es obligatorio"
				}
			}
		}
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer func() {
			_ = file.Close()
		}()
		content, readErr := io.ReadAll(file)
		if readErr != nil {
			errors["image"] = "No se pudo leer la imagen"
		} else if len(content) > 0 {
			url, upErr := h.uploader.Upload(r.Context(), header.Filename, content)
			if upErr != nil {
				h.logger.Error("image upload", slog.Any("error", upErr))
				errors["image"] = "No se pudo subir la imagen"
			} else {
				form.ImageURL = url
			}
		}
	}

	return form, errors, true
}

func optionalPrice(raw string, errors map[string]string, field string) *float64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		errors[field] = "El precio no es válido"
		return nil
	}
	return &value
}

func (h *Handler) mutateProduct(w http.ResponseWriter, r *http.Request, success string, op func(ctx context.Context, id string) error) {
	id := chi.URLParam(r, "id")
	if err := op(r.Context(), id); err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		h.flashError(r, err)
	} else {
		h.flashSuccess(r, success)
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, id string, form productForm, errors map[string]string, status int) {
	title := "Nuevo producto"
	if id != "" {
		title = "Editar producto"
	}
	data := map[string]any{
		"ID":     id,
		"Form":   form,
		"Errors": errors,
	}
	if suppliers, err := h.client.ListSuppliers(r.Context(), gateway.SupplierFilter{}); err == nil {
		data["Suppliers"] = suppliers
	}
	if categories, err := h.client.ListCategories(r.Context()); err == nil {
		data["Categories"] = categories
	}
	h.render(w, r, "pages/product_form.html", title, data, status)
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
		h.logger.Error("render catalog page", slog.String("page", page), slog.Any("error", err))
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
