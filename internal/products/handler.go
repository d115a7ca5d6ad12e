package products

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/storefront/internal/auth"
	"github.com/odyssey-erp/storefront/internal/platform/httpx"
)

// MaxUploadBytes bounds multipart thumbnail uploads.
const MaxUploadBytes = 5 << 20

const (
	msgMissingList = "Kindly provide the list of data of the products"
	msgInvalidID   = "Invalid product ID"
	msgTooLarge    = "File too large. Maximum size is 5MB"
)

// Handler exposes product endpoints. Every route expects auth.Gate to run first.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    *auth.Gate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, gate *auth.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers product routes behind the auth gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.gate.Protect)
	r.Post("/create", h.handleCreate)
	r.Patch("/upload/{id}", h.handleUpload)
	r.Get("/getAll", h.handleList)
	r.Get("/my", h.handleMine)
	r.Patch("/update/{id}", h.handleUpdate)
	r.Delete("/delete/{id}", h.handleDelete)
	r.Get("/{id}", h.handleGet)
}

type messageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type createResponse struct {
	Status     string     `json:"status"`
	NewProduct BulkResult `json:"newProduct"`
}

type listResponse struct {
	Status  string           `json:"status"`
	Results int              `json:"results"`
	Data    []map[string]any `json:"data"`
	Total   int              `json:"total"`
}

type productsResponse struct {
	Status string    `json:"status"`
	Data   []Product `json:"data"`
}

type productResponse struct {
	Status string  `json:"status"`
	Data   Product `json:"data"`
}

type updateResponse struct {
	Status         string  `json:"status"`
	Message        string  `json:"message"`
	UpdatedProduct Product `json:"updatedProduct"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req BulkCreateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			err = httpx.Validation(msgMissingList).Wrap(typeErr)
		}
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if req.Data == nil {
		httpx.RespondError(w, r, h.logger, httpx.Validation(msgMissingList))
		return
	}
	result, err := h.service.BulkCreate(r.Context(), caller, req.Data)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, createResponse{Status: httpx.StatusSuccess, NewProduct: result})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+(1<<20))
	upload, cleanup, err := readImage(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	defer cleanup()

	if _, err := h.service.UploadThumbnail(r.Context(), caller, id, upload); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, messageResponse{Status: httpx.StatusSuccess, Message: "Image uploaded successfully"})
}

// readImage extracts the "image" part. A request without one yields a nil upload.
func readImage(r *http.Request) (*Upload, func(), error) {
	noop := func() {}
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, noop, httpx.Validation(msgTooLarge).Wrap(err)
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return nil, noop, nil
		default:
			return nil, noop, httpx.Validation("Invalid multipart body").Wrap(err)
		}
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, cleanup, nil
		}
		return nil, cleanup, httpx.Validation("Invalid file upload").Wrap(err)
	}
	if header.Size > MaxUploadBytes {
		_ = file.Close()
		return nil, cleanup, httpx.Validation(msgTooLarge)
	}
	closeAll := func() {
		_ = file.Close()
		cleanup()
	}
	return &Upload{Filename: header.Filename, Size: header.Size, Body: file}, closeAll, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	result, err := h.service.List(r.Context(), caller, q)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Status:  httpx.StatusSuccess,
		Results: len(result.Items),
		Data:    result.Items,
		Total:   result.Total,
	})
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	products, err := h.service.Mine(r.Context(), caller)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, productsResponse{Status: httpx.StatusSuccess, Data: products})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, productResponse{Status: httpx.StatusSuccess, Data: *product})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	var in UpdateInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	product, err := h.service.Update(r.Context(), caller, id, in)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updateResponse{
		Status:         httpx.StatusSuccess,
		Message:        "Product has been updated",
		UpdatedProduct: *product,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, messageResponse{
		Status:  httpx.StatusSuccess,
		Message: fmt.Sprintf("Product with ID %s has been deleted", id),
	})
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, h.logger, httpx.Authentication("You are not logged in! Please log in to get access."))
		return auth.Identity{}, false
	}
	return identity, true
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, httpx.Validation(msgInvalidID).Wrap(err))
		return uuid.Nil, false
	}
	return id, true
}
