package handler

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/tradutema/delivery/internal/entity"
	inerr "github.com/tradutema/delivery/internal/errors"
	"github.com/tradutema/delivery/internal/service"
	"go.uber.org/zap"
)

//go:embed views/*.gohtml
var viewsFS embed.FS

// maxUploadBytes limita el tamaño total del formulario multiparte. Los
// adjuntos del flujo son documentos, no vídeos.
const maxUploadBytes = 64 << 20

type Workflow interface {
	Begin(ctx context.Context, token string) (service.RedemptionView, error)
	Redeem(ctx context.Context, token string, files []entity.FileUpload) (service.RedemptionResult, error)
}

type Validator interface {
	Var(ctx context.Context, field any, tag string) error
}

// Delivery atiende el enlace público de entrega: GET presenta el formulario
// de subida o confirmación y POST redime el token. La respuesta es siempre un
// documento HTML completo.
type Delivery struct {
	workflow  Workflow
	validator Validator
	views     *template.Template
	log       *zap.Logger
}

func NewDelivery(w Workflow, v Validator, log *zap.Logger) *Delivery {
	return &Delivery{
		workflow:  w,
		validator: v,
		views:     template.Must(template.ParseFS(viewsFS, "views/*.gohtml")),
		log:       log,
	}
}

type formData struct {
	Token string
	View  service.RedemptionView
	Error string
}

type resultData struct {
	Result service.RedemptionResult
}

// Form presenta el formulario de entrega o los estados de error y de enlace
// ya utilizado. Nunca muta nada.
func (h *Delivery) Form(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := h.validator.Var(r.Context(), token, "uploadtoken"); err != nil {
		h.renderError(w, http.StatusNotFound, "El enlace no es válido o ha caducado.")

		return
	}

	view, err := h.workflow.Begin(r.Context(), token)
	if err != nil {
		h.renderBeginError(w, err)

		return
	}

	if view.Used {
		h.render(w, "used", http.StatusOK, nil)

		return
	}

	h.render(w, "form", http.StatusOK, formData{Token: token, View: view})
}

// Redeem procesa el envío del formulario. Para proveedores externos espera un
// formulario multiparte con al menos un archivo; para internos, una simple
// confirmación sin archivos.
func (h *Delivery) Redeem(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	}

	token := r.FormValue("token")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if err := h.validator.Var(r.Context(), token, "uploadtoken"); err != nil {
		h.renderError(w, http.StatusNotFound, "El enlace no es válido o ha caducado.")

		return
	}

	files, validationErr := h.collectFiles(r)
	if validationErr != "" {
		h.renderRetryForm(w, r, token, validationErr)

		return
	}

	result, err := h.workflow.Redeem(r.Context(), token, files)
	switch {
	case err == nil:
		h.render(w, "result", http.StatusOK, resultData{Result: result})
	case errors.Is(err, inerr.ErrTokenAlreadyUsed):
		h.render(w, "used", http.StatusConflict, nil)
	case errors.Is(err, inerr.ErrTokenInvalid), errors.Is(err, inerr.ErrOrderNotFound):
		h.renderError(w, http.StatusNotFound, "El enlace no es válido o ha caducado.")
	case errors.Is(err, inerr.ErrUploadValidation):
		h.renderRetryForm(w, r, token, "Debe adjuntar al menos un archivo.")
	case errors.Is(err, inerr.ErrStorageUnavailable):
		h.log.Error("almacenamiento no disponible durante la redención", zap.Error(err))
		h.renderRetryForm(w, r, token, "No se pudieron guardar los archivos. Inténtelo de nuevo en unos minutos.")
	default:
		h.log.Error("fallo inesperado durante la redención", zap.Error(err))
		h.renderError(w, http.StatusInternalServerError, "Se ha producido un error. Inténtelo de nuevo más tarde.")
	}
}

// collectFiles extrae los archivos del formulario multiparte. Devuelve un
// mensaje de validación cuando el envío está malformado; la ausencia de
// archivos no es error aquí, eso lo decide el flujo según el proveedor.
func (h *Delivery) collectFiles(r *http.Request) ([]entity.FileUpload, string) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return nil, ""
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "Los archivos superan el tamaño máximo permitido."
		}

		return nil, "No se pudo leer el formulario. Vuelva a intentarlo."
	}

	var files []entity.FileUpload
	for _, header := range r.MultipartForm.File["archivos"] {
		if header.Size == 0 {
			return nil, "Uno de los archivos está vacío o no se subió por completo."
		}

		f, err := header.Open()
		if err != nil {
			return nil, "Uno de los archivos no se pudo leer. Vuelva a intentarlo."
		}

		files = append(files, entity.FileUpload{
			Name:        filepath.Base(header.Filename),
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     f,
		})
	}

	return files, ""
}

// renderRetryForm vuelve a presentar el formulario con un mensaje, para que
// el proveedor pueda reintentar sin perder el enlace.
func (h *Delivery) renderRetryForm(w http.ResponseWriter, r *http.Request, token, message string) {
	view, err := h.workflow.Begin(r.Context(), token)
	if err != nil {
		h.renderBeginError(w, err)

		return
	}
	if view.Used {
		h.render(w, "used", http.StatusConflict, nil)

		return
	}

	h.render(w, "form", http.StatusUnprocessableEntity, formData{Token: token, View: view, Error: message})
}

func (h *Delivery) renderBeginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inerr.ErrTokenInvalid), errors.Is(err, inerr.ErrOrderNotFound):
		h.renderError(w, http.StatusNotFound, "El enlace no es válido o ha caducado.")
	default:
		h.log.Error("fallo al resolver el enlace de entrega", zap.Error(err))
		h.renderError(w, http.StatusInternalServerError, "Se ha producido un error. Inténtelo de nuevo más tarde.")
	}
}

func (h *Delivery) renderError(w http.ResponseWriter, code int, message string) {
	h.render(w, "error", code, struct{ Message string }{Message: message})
}

func (h *Delivery) render(w http.ResponseWriter, name string, code int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := h.views.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error("fallo al renderizar la vista", zap.String("vista", name), zap.Error(err))
	}
}
