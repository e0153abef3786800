package batch

import "github.com/mos-jef/title-crm/internal/extract"

// Status is the closed set of per-item states. An item is created
// pending, moves through processing exactly once, and terminates in
// exactly one of matched, created, no-match, or error.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusMatched    Status = "matched"
	StatusCreated    Status = "created"
	StatusNoMatch    Status = "no-match"
	StatusError      Status = "error"
)

// Terminal reports whether the status ends an item's lifecycle.
func (s Status) Terminal() bool {
	switch s {
	case StatusMatched, StatusCreated, StatusNoMatch, StatusError:
		return true
	}
	return false
}

// Item tracks one input document through a run.
type Item struct {
	FileName string          `json:"fileName"`
	FilePath string          `json:"filePath"`
	Status   Status          `json:"status"`
	APN      string          `json:"apn,omitempty"`      // raw extracted identifier
	ParcelID string          `json:"parcelId,omitempty"` // matched or created record
	Error    string          `json:"error,omitempty"`
	Warning  string          `json:"warning,omitempty"` // non-fatal placement failure
	Fields   *extract.Fields `json:"extracted,omitempty"`
}

// CountByStatus tallies items per status.
func CountByStatus(items []Item) map[Status]int {
	counts := make(map[Status]int)
	for _, it := range items {
		counts[it.Status]++
	}
	return counts
}
