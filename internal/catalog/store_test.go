package catalog

import (
	"errors"
	"testing"

	"github.com/mos-jef/title-crm/internal/apperr"
	"github.com/mos-jef/title-crm/internal/models"
)

func sampleParcel(id, apn string) models.Parcel {
	return models.Parcel{
		ID:        id,
		APN:       apn,
		County:    "Lake",
		State:     "MT",
		CreatedAt: "2026-01-02T15:04:05Z",
		UpdatedAt: "2026-01-02T15:04:05Z",
	}
}

func TestUpsertRoundTrip(t *testing.T) {
	s := NewStore(nil, nil)
	p := sampleParcel("p1", "123-45-678")
	p.AssessedOwner = "Jane Doe"
	p.Acres = "40"

	s.Upsert(p)

	got, err := s.GetByID("p1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != p {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, p)
	}
}

func TestUpsertIdempotent(t *testing.T) {
	s := NewStore(nil, nil)
	p := sampleParcel("p1", "111")
	s.Upsert(p)
	s.Upsert(p)

	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	got, _ := s.GetByID("p1")
	if got != p {
		t.Errorf("record changed after duplicate upsert: %+v", got)
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	s := NewStore(nil, nil)
	s.Upsert(sampleParcel("p1", "111"))

	updated := sampleParcel("p1", "111")
	updated.County = "Cook"
	s.Upsert(updated)

	got, _ := s.GetByID("p1")
	if got.County != "Cook" {
		t.Errorf("county = %q, want Cook", got.County)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestGetByID_NotFound(t *testing.T) {
	s := NewStore(nil, nil)
	_, err := s.GetByID("ghost")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := NewStore(nil, nil)
	s.Upsert(sampleParcel("p1", "111"))
	s.Upsert(sampleParcel("p2", "222"))
	s.Upsert(sampleParcel("p3", "333"))

	s.Delete("p2")

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if _, err := s.GetByID("p2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("deleted record still present")
	}
	// Later records stay reachable after the index reshuffle.
	if got, err := s.GetByID("p3"); err != nil || got.APN != "333" {
		t.Errorf("p3 lookup after delete: %+v, %v", got, err)
	}

	// Deleting an absent id is a no-op.
	s.Delete("ghost")
	if s.Len() != 2 {
		t.Errorf("Len = %d after no-op delete", s.Len())
	}
}

func TestSetCompleted(t *testing.T) {
	s := NewStore(nil, nil)
	p := sampleParcel("p1", "111")
	s.Upsert(p)

	got, err := s.SetCompleted("p1", true)
	if err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	if !got.Completed {
		t.Error("completed flag not set")
	}
	if got.UpdatedAt == p.UpdatedAt {
		t.Error("UpdatedAt should refresh on SetCompleted")
	}

	if _, err := s.SetCompleted("ghost", true); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListAllIsACopy(t *testing.T) {
	s := NewStore([]models.Parcel{sampleParcel("p1", "111")}, nil)
	list := s.ListAll()
	list[0].County = "Mutated"

	got, _ := s.GetByID("p1")
	if got.County != "Lake" {
		t.Error("ListAll must return a copy, not the backing slice")
	}
}

func TestNewStoreSeedsRecords(t *testing.T) {
	initial := []models.Parcel{sampleParcel("a", "1"), sampleParcel("b", "2")}
	s := NewStore(initial, nil)
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if _, err := s.GetByID("b"); err != nil {
		t.Errorf("seeded record missing: %v", err)
	}
}
