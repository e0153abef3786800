package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/mos-jef/title-crm/internal/parcelservice"
)

// NewRouter creates a chi router with all API routes mounted.
// When token is non-empty, Bearer token auth is enforced.
func NewRouter(svc *parcelservice.Service, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(token != "", token))

	// Parcels CRUD.
	r.Get("/parcels", h.ListParcels)
	r.Post("/parcels", h.CreateParcel)
	r.Get("/parcels/lookup", h.FindParcel)
	r.Get("/parcels/{id}", h.GetParcel)
	r.Put("/parcels/{id}", h.UpdateParcel)
	r.Delete("/parcels/{id}", h.DeleteParcel)
	r.Put("/parcels/{id}/complete", h.SetCompleted)

	// Documents.
	r.Get("/parcels/{id}/files", h.ListFiles)
	r.Post("/parcels/{id}/files", h.UploadFile)

	// Batch reconciliation.
	r.Post("/batch", h.StartBatch)
	r.Get("/batch", h.BatchStatus)
	r.Post("/batch/cancel", h.CancelBatch)

	return r
}
