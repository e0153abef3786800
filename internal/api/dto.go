package api

import (
	"github.com/mos-jef/title-crm/internal/models"
	"github.com/mos-jef/title-crm/internal/parcelfs"
	"github.com/mos-jef/title-crm/internal/parcelservice"
)

// ParcelRequest is the request body for creating or updating a parcel.
// APN is required on create; all other fields are optional.
type ParcelRequest struct {
	APN              string `json:"apn" example:"123-45-678" validate:"required"`
	MapParcelNo      string `json:"mapParcelNo,omitempty"`
	County           string `json:"county,omitempty" example:"Lake"`
	State            string `json:"state,omitempty" example:"OR"`
	Address          string `json:"address,omitempty"`
	AssessedOwner    string `json:"assessedOwner,omitempty"`
	LegalOwner       string `json:"legalOwner,omitempty"`
	LegalDescription string `json:"legalDescription,omitempty"`
	BriefLegal       string `json:"briefLegal,omitempty"`
	TractType        string `json:"tractType,omitempty"`
	Acres            string `json:"acres,omitempty"`
	VestingDeedNo    string `json:"vestingDeedNo,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

func (r ParcelRequest) toModel() models.Parcel {
	return models.Parcel{
		APN:              r.APN,
		MapParcelNo:      r.MapParcelNo,
		County:           r.County,
		State:            r.State,
		Address:          r.Address,
		AssessedOwner:    r.AssessedOwner,
		LegalOwner:       r.LegalOwner,
		LegalDescription: r.LegalDescription,
		BriefLegal:       r.BriefLegal,
		TractType:        r.TractType,
		Acres:            r.Acres,
		VestingDeedNo:    r.VestingDeedNo,
		Notes:            r.Notes,
	}
}

// CompleteRequest is the request body for toggling the completed flag.
type CompleteRequest struct {
	Completed bool `json:"completed" validate:"required"`
}

// BatchRequest is the request body for starting a batch run. Exactly
// one of Folder or Files must be set; a single entry in Files gives the
// one-document flow.
type BatchRequest struct {
	Folder     string   `json:"folder,omitempty" example:"/inbox/tax-cards"`
	Files      []string `json:"files,omitempty"`
	AutoCreate *bool    `json:"autoCreate,omitempty"`
}

// ParcelListResponse wraps parcel listings.
type ParcelListResponse struct {
	Parcels []models.Parcel `json:"parcels" validate:"required"`
	Total   int             `json:"total" example:"42" validate:"required"`
}

// FileListResponse maps category names to the documents they hold.
type FileListResponse struct {
	Files map[string][]parcelfs.FileInfo `json:"files" validate:"required"`
}

// BatchStateResponse is the observable state of a batch run (aliased
// from the domain layer).
type BatchStateResponse = parcelservice.RunState
