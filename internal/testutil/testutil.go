// Package testutil provides shared test helpers for setting up parcel
// roots and mirror databases.
package testutil

import (
	"os"
	"testing"

	"github.com/mos-jef/title-crm/internal/catalog"
	"github.com/mos-jef/title-crm/internal/parcelfs"
)

// TestMirror creates a temporary SQLite mirror that is automatically cleaned up.
func TestMirror(t *testing.T) *catalog.Mirror {
	t.Helper()
	dbFile, err := os.CreateTemp("", "titlecrm-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	m, err := catalog.OpenMirror(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

// TestLayout creates a temporary parcels root with a parcelfs.Layout.
func TestLayout(t *testing.T) (string, *parcelfs.Layout) {
	t.Helper()
	root := t.TempDir()
	layout, err := parcelfs.NewLayout(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, layout
}
