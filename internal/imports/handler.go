// Package imports drives the multi-source import wizard over HTTP.
// The wizard state itself lives in internal/importer; this package
// maps form posts onto its transitions and renders each stage.
package imports

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/alhaja/alhaja-admin/internal/gateway"
	"github.com/alhaja/alhaja-admin/internal/importer"
	"github.com/alhaja/alhaja-admin/internal/platform/httpx"
	"github.com/alhaja/alhaja-admin/internal/shared"
	"github.com/alhaja/alhaja-admin/internal/view"
)

const maxUploadFormSize = 12 << 20

// Handler wires HTTP endpoints for the import wizard.
type Handler struct {
	logger    *slog.Logger
	client    *gateway.Client
	store     *importer.Store
	templates *view.Engine
	csrf      *shared.CSRFManager
	failures  *httpx.GatewayErrors
}

// NewHandler constructs an import handler.
func NewHandler(logger *slog.Logger, client *gateway.Client, store *importer.Store, templates *view.Engine, csrf *shared.CSRFManager, failures *httpx.GatewayErrors) *Handler {
	return &Handler{
		logger:    logger,
		client:    client,
		store:     store,
		templates: templates,
		csrf:      csrf,
		failures:  failures,
	}
}

// MountRoutes registers wizard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleStart)
	r.Get("/{id}", h.handleShow)
	r.Post("/{id}/source", h.handleChooseSource)
	r.Post("/{id}/supplier", h.handleSetSupplier)
	r.Post("/{id}/upload", h.handleUpload)
	r.Post("/{id}/search", h.handleSearch)
	r.Post("/{id}/toggle", h.handleToggle)
	r.Post("/{id}/prices", h.handleSetPrices)
	r.Post("/{id}/execute", h.handleExecute)
	r.Post("/{id}/discard", h.handleDiscard)
}

// handleStart opens a fresh wizard session and sends the operator to
// its source selection stage.
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	wizard := h.store.Create()
	if err := wizard.Begin(); err != nil {
		h.logger.Error("begin import wizard", slog.Any("error", err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	wizard := h.wizard(w, r)
	if wizard == nil {
		return
	}
	switch wizard.State() {
	case importer.StateDone:
		h.renderResult(w, r, wizard)
	case importer.StatePreview, importer.StateExecuting:
		h.renderPreview(w, r, wizard)
	default:
		h.renderSourceSelection(w, r, wizard)
	}
}

func (h *Handler) handleChooseSource(w http.ResponseWriter, r *http.Request) {
	wizard := h.wizard(w, r)
	if wizard == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	source := importer.Source(r.PostFormValue("source"))
	if err := wizard.ChooseSource(source); err != nil {
		h.flashErrorMessage(r, "No se pudo elegir la fuente")
	}
	http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
}

func (h *Handler) handleSetSupplier(w http.ResponseWriter, r *http.Request) {
	wizard := h.wizard(w, r)
	if wizard == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := wizard.SetSupplier(r.PostFormValue("supplier_id")); err != nil {
		h.flashErrorMessage(r, "No se pudo cambiar el proveedor en este paso")
	}
	http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	wizard := h.wizard(w, r)
	if wizard == nil {
		return
	}
	if err := r.ParseMultipartForm(maxUploadFormSize); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.flashErrorMessage(r, "Seleccioná un archivo")
		http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
		return
	}
	defer func() {
		_ = file.Close()
	}()
	content, err := io.ReadAll(file)
	if err != nil {
		h.flashErrorMessage(r, "No se pudo leer el archivo")
		http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
		return
	}

	attachment := gateway.FileAttachment{Field: "file", Filename: header.Filename, Content: content}
	if err := wizard.BeginParse(attachment); err != nil {
		h.flashErrorMessage(r, uploadErrorMessage(err))
		http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
		return
	}

	preview, err := h.parse(r, wizard, attachment, strings.TrimSpace(r.PostFormValue("prefix")))
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		wizard.FailParse(gateway.RejectionMessage(err))
	} else if err := wizard.ApplyPreview(preview); err != nil {
		h.logger.Error("apply preview", slog.Any("error", err))
		wizard.FailParse("No se pudo procesar el archivo")
	}
	http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
}

// parse dispatches the uploaded file to the source's backend parser.
func (h *Handler) parse(r *http.Request, wizard *importer.Wizard, file gateway.FileAttachment, prefix string) (importer.Preview, error) {
	ctx := r.Context()
	switch wizard.Source() {
	case importer.SourceInvoice:
		parsed, err := h.client.ParseInvoice(ctx, file)
		if err != nil {
			return nil, err
		}
		return importer.InvoicePreview{InvoicePreview: *parsed}, nil
	case importer.SourceEmail:
		parsed, err := h.client.ParseEmail(ctx, file)
		if err != nil {
			return nil, err
		}
		return importer.EmailPreview{EmailPreview: *parsed}, nil
	case importer.SourceExcel:
		parsed, err := h.client.ParseExcel(ctx, file, prefix)
		if err != nil {
			return nil, err
		}
		return importer.ExcelPreview{ExcelPreview: *parsed, SupplierID: wizard.Supplier()}, nil
	case importer.SourceMayoristaPlata:
		parsed, err := h.client.ParseMayoristaPlata(ctx, file)
		if err != nil {
			return nil, err
		}
		return importer.MayoristaPreview{MayoristaPreview: *parsed, SupplierID: wizard.Supplier()}, nil
	default:
		return nil, errors.New("la fuente elegida no acepta archivos")
	}
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	wizard := h.wizard(w, r)
	if wizard == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	query := strings.TrimSpace(r.PostFormValue("query"))
	if query == "" {
		h.flashErrorMessage(r, "Ingresá un término de búsqueda")
		http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
		return
	}
	if err := wizard.BeginSearch(); err != nil {
		h.flashErrorMessage(r, "No se pudo iniciar la búsqueda")
		http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
		return
	}
	results, err := h.client.SearchImportCandidates(r.Context(), query)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		wizard.FailParse(gateway.RejectionMessage(err))
	} else if err := wizard.ApplyPreview(importer.SearchPreview{Results: results, SupplierID: wizard.Supplier()}); err != nil {
		h.logger.Error("apply search preview", slog.Any("error", err))
		wizard.FailParse("No se pudo procesar la búsqueda")
	}
	http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	wizard := h.wizard(w, r)
	if wizard == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	index, err := strconv.Atoi(r.PostFormValue("index"))
	if err == nil {
		err = wizard.ToggleItem(index)
	}
	if err != nil {
		h.flashErrorMessage(r, "No se pudo cambiar la selección")
	}
	http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
}

func (h *Handler) handleSetPrices(w http.ResponseWriter, r *http.Request) {
	wizard := h.wizard(w, r)
	if wizard == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	index, err := strconv.Atoi(r.PostFormValue("index"))
	if err != nil {
		h.flashErrorMessage(r, "Fila no válida")
		http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
		return
	}
	retail, err := strconv.ParseFloat(r.PostFormValue("retail"), 64)
	if err != nil {
		h.flashErrorMessage(r, "El precio minorista no es válido")
		http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
		return
	}
	var wholesale *float64
	if raw := strings.TrimSpace(r.PostFormValue("wholesale")); raw != "" {
		value, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			h.flashErrorMessage(r, "El precio mayorista no es válido")
			http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
			return
		}
		wholesale = &value
	}
	if err := wizard.SetPrices(index, retail, wholesale); err != nil {
		h.flashErrorMessage(r, "No se pudieron guardar los precios")
	}
	http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	wizard := h.wizard(w, r)
	if wizard == nil {
		return
	}
	req, original, err := wizard.BuildExecuteRequest()
	if err != nil {
		if errors.Is(err, importer.ErrNoSelection) {
			h.flashErrorMessage(r, "No hay artículos seleccionados")
		} else {
			h.flashErrorMessage(r, "No se pudo enviar la importación")
		}
		http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
		return
	}

	result, err := h.client.ExecuteImport(r.Context(), req, original)
	if err != nil {
		if h.failures.HandleExpired(w, r, err) {
			return
		}
		// Back to the review stage with rows intact; the operator can
		// adjust and press execute again.
		wizard.FailExecute(gateway.RejectionMessage(err))
	} else if err := wizard.Complete(*result); err != nil {
		h.logger.Error("complete import", slog.Any("error", err))
	}
	http.Redirect(w, r, "/imports/"+wizard.ID, http.StatusSeeOther)
}

func (h *Handler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.store.Delete(id)
	http.Redirect(w, r, "/imports", http.StatusSeeOther)
}

// wizard resolves the session from the URL, restarting the flow when it
// has already been swept.
func (h *Handler) wizard(w http.ResponseWriter, r *http.Request) *importer.Wizard {
	id := chi.URLParam(r, "id")
	wizard := h.store.Get(id)
	if wizard == nil {
		h.flashErrorMessage(r, "La importación expiró. Empezá de nuevo.")
		http.Redirect(w, r, "/imports", http.StatusSeeOther)
		return nil
	}
	return wizard
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, importer.ErrSupplierRequired):
		return "Elegí un proveedor antes de subir el archivo"
	case errors.Is(err, importer.ErrBadState):
		return "La importación no está lista para recibir archivos"
	default:
		return err.Error()
	}
}

type sourceOption struct {
	Source   importer.Source
	Label    string
	Selected bool
}

func (h *Handler) renderSourceSelection(w http.ResponseWriter, r *http.Request, wizard *importer.Wizard) {
	options := make([]sourceOption, 0, len(importer.AllSources))
	for _, source := range importer.AllSources {
		options = append(options, sourceOption{
			Source:   source,
			Label:    source.Label(),
			Selected: source == wizard.Source(),
		})
	}
	data := map[string]any{
		"WizardID":      wizard.ID,
		"Sources":       options,
		"Source":        wizard.Source(),
		"NeedsSupplier": wizard.Source() != "" && wizard.Source().NeedsSupplier(),
		"FileBacked":    wizard.Source() != "" && wizard.Source().FileBacked(),
		"SupplierID":    wizard.Supplier(),
		"UploadEnabled": wizard.UploadEnabled(),
		"LastError":     wizard.LastError(),
	}
	if suppliers, err := h.client.ListSuppliers(r.Context(), gateway.SupplierFilter{}); err == nil {
		data["Suppliers"] = suppliers
	}
	h.render(w, r, "pages/imports_source.html", "Importar productos", data, http.StatusOK)
}

func (h *Handler) renderPreview(w http.ResponseWriter, r *http.Request, wizard *importer.Wizard) {
	duplicate, existingID := wizard.DuplicateWarning()
	data := map[string]any{
		"WizardID":          wizard.ID,
		"Source":            wizard.Source(),
		"SourceLabel":       wizard.Source().Label(),
		"Items":             wizard.Items(),
		"Metadata":          wizard.Metadata(),
		"Rollup":            wizard.Rollup(),
		"Reconciliation":    wizard.Reconciliation(),
		"HasDocumentTotals": wizard.DocumentTotals().Total != 0,
		"Duplicate":         duplicate,
		"ExistingInvoiceID": existingID,
		"LastError":         wizard.LastError(),
	}
	h.render(w, r, "pages/imports_preview.html", "Revisar importación", data, http.StatusOK)
}

func (h *Handler) renderResult(w http.ResponseWriter, r *http.Request, wizard *importer.Wizard) {
	h.render(w, r, "pages/imports_result.html", "Importación finalizada", map[string]any{
		"WizardID": wizard.ID,
		"Result":   wizard.Result(),
	}, http.StatusOK)
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
		h.logger.Error("render import page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) flashErrorMessage(r *http.Request, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: message})
	}
}
