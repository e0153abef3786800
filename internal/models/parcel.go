// Package models defines the domain types for Title CRM.
package models

// Parcel is a single real-property record in the catalog.
//
// ID is assigned once at creation and never changes; APN is the
// human-facing natural key that batch matching runs on (always through
// apn.Normalize, never raw). FolderPath may be empty when folder
// provisioning failed — the record is still valid.
type Parcel struct {
	ID               string `json:"id" firestore:"id"`
	APN              string `json:"apn" firestore:"apn"`
	MapParcelNo      string `json:"mapParcelNo" firestore:"mapParcelNo"`
	County           string `json:"county" firestore:"county"`
	State            string `json:"state" firestore:"state"`
	Address          string `json:"address" firestore:"address"`
	AssessedOwner    string `json:"assessedOwner" firestore:"assessedOwner"`
	LegalOwner       string `json:"legalOwner" firestore:"legalOwner"`
	LegalDescription string `json:"legalDescription" firestore:"legalDescription"`
	BriefLegal       string `json:"briefLegal" firestore:"briefLegal"`
	TractType        string `json:"tractType" firestore:"tractType"`
	Acres            string `json:"acres" firestore:"acres"`
	VestingDeedNo    string `json:"vestingDeedNo" firestore:"vestingDeedNo"`
	Notes            string `json:"notes" firestore:"notes"`
	Completed        bool   `json:"completed" firestore:"completed"`
	FolderPath       string `json:"folderPath" firestore:"folderPath"`
	CreatedAt        string `json:"createdAt" firestore:"createdAt"`
	UpdatedAt        string `json:"updatedAt" firestore:"updatedAt"`
}
