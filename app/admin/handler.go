// Package admin serves CRUD endpoints over the locally stored product
// records. There is no authentication in front of these routes.
package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	storeadmin "github.com/kenyaconnect/storefront/admin"
	"github.com/kenyaconnect/storefront/app/api"
	"github.com/kenyaconnect/storefront/models"
	"github.com/kenyaconnect/storefront/notify"
)

type RecordEditor interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Save(ctx context.Context, r storeadmin.Record) (*models.Product, error)
	Delete(ctx context.Context, id string, confirm storeadmin.Confirmer) error
}

type ListResponse struct {
	Total    int           `json:"total"`
	Products []api.Product `json:"products"`
}

type RecordResponse struct {
	Product *api.Product    `json:"product,omitempty"`
	Notices []notify.Notice `json:"notices,omitempty"`
}

type AdminHandler struct {
	editor   RecordEditor
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewAdminHandler(editor RecordEditor, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		editor:   editor,
		notifier: notify.NewLogNotifier(logger),
		logger:   logger,
	}
}

func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.editor.List(r.Context())
	if err != nil {
		h.logger.Error("list product records", zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to load products")
		return
	}

	products := make([]api.Product, len(records))
	for i := range records {
		products[i] = api.NewProduct(&records[i])
	}
	api.OKResponse(w, http.StatusOK, ListResponse{Total: len(products), Products: products})
}

func (h *AdminHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.editor.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, storeadmin.ErrRecordNotFound) {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to load product")
		return
	}
	view := api.NewProduct(p)
	api.OKResponse(w, http.StatusOK, RecordResponse{Product: &view})
}

func (h *AdminHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input storeadmin.Record
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	input.ID = ""
	h.save(w, r, input, http.StatusCreated)
}

// HandleUpdate replaces the record at {id}. Unknown ids are created under that id.
func (h *AdminHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var input storeadmin.Record
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	input.ID = r.PathValue("id")
	if input.ID == "" {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	h.save(w, r, input, http.StatusOK)
}

func (h *AdminHandler) save(w http.ResponseWriter, r *http.Request, input storeadmin.Record, status int) {
	rec := &notify.Recorder{}
	ctx := notify.WithNotifier(r.Context(), notify.Multi(rec, h.notifier))

	p, err := h.editor.Save(ctx, input)
	var invalid *storeadmin.RecordError
	if errors.As(err, &invalid) {
		api.ErrorResponse(w, http.StatusUnprocessableEntity, invalid.Message, rec.Notices()...)
		return
	}
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to save product", rec.Notices()...)
		return
	}

	view := api.NewProduct(p)
	api.OKResponse(w, status, RecordResponse{Product: &view, Notices: rec.Notices()})
}

// HandleDelete removes a record. The caller confirms with ?confirm=true.
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	rec := &notify.Recorder{}
	ctx := notify.WithNotifier(r.Context(), notify.Multi(rec, h.notifier))

	err := h.editor.Delete(ctx, r.PathValue("id"), func(string) bool { return confirmed })
	if errors.Is(err, storeadmin.ErrDeleteNotConfirmed) {
		api.ErrorResponse(w, http.StatusConflict, "Are you sure you want to delete this product?")
		return
	}
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete product", rec.Notices()...)
		return
	}
	api.OKResponse(w, http.StatusOK, RecordResponse{Notices: rec.Notices()})
}
