package catalog

import (
	"os"
	"testing"

	"github.com/mos-jef/title-crm/internal/models"
)

func testMirror(t *testing.T) *Mirror {
	t.Helper()
	f, err := os.CreateTemp("", "titlecrm-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	m, err := OpenMirror(f.Name())
	if err != nil {
		t.Fatalf("OpenMirror: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestMirrorReplaceAndLoad(t *testing.T) {
	m := testMirror(t)

	in := []models.Parcel{
		sampleParcel("p1", "111"),
		sampleParcel("p2", "222"),
	}
	in[1].Completed = true
	in[1].Notes = "second"

	if err := m.ReplaceAll(in); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	out, err := m.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestMirrorReplaceIsWholesale(t *testing.T) {
	m := testMirror(t)

	_ = m.ReplaceAll([]models.Parcel{sampleParcel("p1", "111"), sampleParcel("p2", "222")})
	if err := m.ReplaceAll([]models.Parcel{sampleParcel("p3", "333")}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	out, _ := m.LoadAll()
	if len(out) != 1 || out[0].ID != "p3" {
		t.Errorf("stale rows survived wholesale refresh: %+v", out)
	}
}

func TestMirrorEmptySnapshot(t *testing.T) {
	m := testMirror(t)
	_ = m.ReplaceAll([]models.Parcel{sampleParcel("p1", "111")})
	if err := m.ReplaceAll(nil); err != nil {
		t.Fatalf("ReplaceAll(nil): %v", err)
	}
	out, err := m.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}
