package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/mos-jef/title-crm/internal/apperr"
	"github.com/mos-jef/title-crm/internal/parcelservice"
)

const maxUploadBytes = 50 << 20 // 50 MB

// Handler holds API route handlers.
type Handler struct {
	svc *parcelservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *parcelservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListParcels handles GET /api/parcels.
//
//	@Summary		List all parcel records
//	@Tags			parcels
//	@Produce		json
//	@Success		200	{object}	ParcelListResponse
//	@Security		BearerAuth
//	@Router			/parcels [get]
func (h *Handler) ListParcels(w http.ResponseWriter, r *http.Request) {
	parcels := h.svc.ListParcels(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"parcels": parcels,
		"total":   len(parcels),
	})
}

// GetParcel handles GET /api/parcels/{id}.
//
//	@Summary		Get a single parcel by id
//	@Tags			parcels
//	@Produce		json
//	@Param			id	path		string	true	"Parcel id"
//	@Success		200	{object}	models.Parcel
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parcels/{id} [get]
func (h *Handler) GetParcel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.svc.GetParcel(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			errJSON(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("get parcel failed", slog.String("id", id), slog.String("error", err.Error()))
			errJSON(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// FindParcel handles GET /api/parcels/lookup?apn=.
//
//	@Summary		Find a parcel by APN, ignoring punctuation and case
//	@Tags			parcels
//	@Produce		json
//	@Param			apn	query		string	true	"Assessor parcel number"
//	@Success		200	{object}	models.Parcel
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parcels/lookup [get]
func (h *Handler) FindParcel(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("apn")
	if raw == "" {
		errJSON(w, http.StatusBadRequest, "query parameter 'apn' is required")
		return
	}
	p, err := h.svc.FindByAPN(r.Context(), raw)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			errJSON(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("find parcel failed", slog.String("apn", raw), slog.String("error", err.Error()))
			errJSON(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateParcel handles POST /api/parcels.
//
//	@Summary		Create a new parcel record with its folder tree
//	@Tags			parcels
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ParcelRequest	true	"Parcel to create"
//	@Success		201		{object}	models.Parcel
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parcels [post]
func (h *Handler) CreateParcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ParcelRequest
	if err := readJSON(r, &req); err != nil {
		errJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.APN == "" {
		errJSON(w, http.StatusBadRequest, "apn is required")
		return
	}
	p, err := h.svc.CreateParcel(r.Context(), req.toModel())
	if err != nil {
		slog.Error("create parcel failed", slog.String("apn", req.APN), slog.String("error", err.Error()))
		errJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateParcel handles PUT /api/parcels/{id}.
//
//	@Summary		Replace the descriptive fields of a parcel
//	@Tags			parcels
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Parcel id"
//	@Param			body	body		ParcelRequest	true	"Updated fields"
//	@Success		200		{object}	models.Parcel
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parcels/{id} [put]
func (h *Handler) UpdateParcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	var req ParcelRequest
	if err := readJSON(r, &req); err != nil {
		errJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.APN == "" {
		errJSON(w, http.StatusBadRequest, "apn is required")
		return
	}
	p, err := h.svc.UpdateParcel(r.Context(), id, req.toModel())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			errJSON(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("update parcel failed", slog.String("id", id), slog.String("error", err.Error()))
			errJSON(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteParcel handles DELETE /api/parcels/{id}. The record is removed
// from the catalog; its document folder stays on disk.
//
//	@Summary		Delete a parcel record
//	@Tags			parcels
//	@Param			id	path	string	true	"Parcel id"
//	@Success		204	"Parcel deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parcels/{id} [delete]
func (h *Handler) DeleteParcel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteParcel(r.Context(), id); err != nil {
		errJSON(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetCompleted handles PUT /api/parcels/{id}/complete.
//
//	@Summary		Toggle the completed flag on a parcel
//	@Tags			parcels
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Parcel id"
//	@Param			body	body		CompleteRequest	true	"New flag value"
//	@Success		200		{object}	models.Parcel
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parcels/{id}/complete [put]
func (h *Handler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req CompleteRequest
	if err := readJSON(r, &req); err != nil {
		errJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := h.svc.SetCompleted(r.Context(), id, req.Completed)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			errJSON(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("set completed failed", slog.String("id", id), slog.String("error", err.Error()))
			errJSON(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListFiles handles GET /api/parcels/{id}/files.
//
//	@Summary		List the parcel's documents grouped by category
//	@Tags			files
//	@Produce		json
//	@Param			id	path		string	true	"Parcel id"
//	@Success		200	{object}	FileListResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parcels/{id}/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	files, err := h.svc.ListFiles(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			errJSON(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("list files failed", slog.String("id", id), slog.String("error", err.Error()))
			errJSON(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

// UploadFile handles POST /api/parcels/{id}/files
// (multipart/form-data, fields "file" and "category").
//
//	@Summary		Upload a document into a parcel category folder
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id			path		string	true	"Parcel id"
//	@Param			category	formData	string	true	"Category folder name"
//	@Param			file		formData	file	true	"Document"
//	@Success		201			{object}	map[string]string
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parcels/{id}/files [post]
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	id := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		errJSON(w, http.StatusBadRequest, "file too large or invalid multipart")
		return
	}
	category := r.FormValue("category")
	if category == "" {
		errJSON(w, http.StatusBadRequest, "category is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		errJSON(w, http.StatusBadRequest, "missing 'file' field in multipart form")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		errJSON(w, http.StatusBadRequest, "invalid filename")
		return
	}

	// Spool the upload to a temp file, then place it through the
	// service so category validation applies.
	tmp, err := os.CreateTemp("", "upload-*")
	if err != nil {
		errJSON(w, http.StatusInternalServerError, "failed to buffer upload")
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		errJSON(w, http.StatusInternalServerError, "failed to buffer upload")
		return
	}
	tmp.Close()

	if err := h.svc.AttachFile(r.Context(), id, category, tmp.Name(), name); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			errJSON(w, http.StatusNotFound, "not found")
		} else {
			errJSON(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"filename": name,
		"category": category,
	})
}

// StartBatch handles POST /api/batch.
//
//	@Summary		Start a batch reconciliation run over a folder of PDFs
//	@Tags			batch
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BatchRequest	true	"Run parameters"
//	@Success		202		{object}	BatchStateResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/batch [post]
func (h *Handler) StartBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := readJSON(r, &req); err != nil {
		errJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if (req.Folder == "") == (len(req.Files) == 0) {
		errJSON(w, http.StatusBadRequest, "exactly one of folder or files is required")
		return
	}
	autoCreate := h.svc.DefaultAutoCreate()
	if req.AutoCreate != nil {
		autoCreate = *req.AutoCreate
	}
	var state parcelservice.RunState
	var err error
	if req.Folder != "" {
		state, err = h.svc.StartBatch(req.Folder, autoCreate)
	} else {
		state, err = h.svc.StartBatchFiles(req.Files, autoCreate)
	}
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			errJSON(w, http.StatusConflict, "a batch run is already in progress")
		} else {
			errJSON(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusAccepted, state)
}

// BatchStatus handles GET /api/batch.
//
//	@Summary		Get the state of the current or last batch run
//	@Tags			batch
//	@Produce		json
//	@Success		200	{object}	BatchStateResponse
//	@Security		BearerAuth
//	@Router			/batch [get]
func (h *Handler) BatchStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.BatchStatus())
}

// CancelBatch handles POST /api/batch/cancel. Cancellation takes
// effect between documents; the in-flight one finishes first.
//
//	@Summary		Cancel the active batch run
//	@Tags			batch
//	@Success		202	"Cancellation requested"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/batch/cancel [post]
func (h *Handler) CancelBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CancelBatch(); err != nil {
		errJSON(w, http.StatusNotFound, "no batch run in progress")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
