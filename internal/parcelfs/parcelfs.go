// Package parcelfs manages the on-disk document folder for each parcel.
package parcelfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mos-jef/title-crm/internal/apperr"
)

// Category subfolders created inside every parcel folder.
const (
	CategoryMaps        = "Maps"
	CategoryVestingDeed = "Vesting Deed"
	CategoryEasements   = "Easements"
	CategoryChain       = "Chain"
	CategoryTaxes       = "Taxes"
	CategoryMisc        = "Miscellaneous"
)

// Categories lists every category subfolder in display order.
var Categories = []string{
	CategoryMaps,
	CategoryVestingDeed,
	CategoryEasements,
	CategoryChain,
	CategoryTaxes,
	CategoryMisc,
}

// FileInfo describes one document inside a category subfolder.
type FileInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Layout creates and fills parcel folders under a fixed root directory.
type Layout struct {
	root string
}

// NewLayout returns a Layout rooted at the given directory. The
// directory must already exist.
func NewLayout(root string) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("parcelfs: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("parcelfs: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("parcelfs: root is not a directory: %s", abs)
	}
	return &Layout{root: abs}, nil
}

// Root returns the absolute parcels root directory.
func (l *Layout) Root() string { return l.root }

// CreateParcelFolder provisions the folder tree for a parcel, named
// after its sanitized APN (falling back to id when the APN sanitizes to
// nothing), and returns the absolute folder path.
func (l *Layout) CreateParcelFolder(apn, id string) (string, error) {
	name := sanitizeFolderName(apn)
	if name == "" {
		name = id
	}
	base := filepath.Join(l.root, name)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("parcelfs: create parcel folder: %w", err)
	}
	for _, c := range Categories {
		if err := os.MkdirAll(filepath.Join(base, c), 0o755); err != nil {
			return "", fmt.Errorf("parcelfs: create category %s: %w", c, err)
		}
	}
	return base, nil
}

// Place copies sourcePath into folderPath/category/fileName, creating
// the category directory if missing and overwriting any existing file
// of the same name.
func Place(sourcePath, folderPath, category, fileName string) error {
	if folderPath == "" {
		return &apperr.PlacementError{Category: category, Err: fmt.Errorf("parcel has no folder")}
	}
	destDir := filepath.Join(folderPath, category)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return &apperr.PlacementError{Category: category, Err: err}
	}
	if err := copyFile(sourcePath, filepath.Join(destDir, fileName)); err != nil {
		return &apperr.PlacementError{Category: category, Err: err}
	}
	return nil
}

// ListFiles returns the documents in each category subfolder. Missing
// subfolders (parcels created before a category existed) yield empty
// lists.
func ListFiles(folderPath string) (map[string][]FileInfo, error) {
	if folderPath == "" {
		return nil, fmt.Errorf("parcelfs: parcel has no folder")
	}
	out := make(map[string][]FileInfo, len(Categories))
	for _, c := range Categories {
		out[c] = []FileInfo{}
		dir := filepath.Join(folderPath, c)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			out[c] = append(out[c], FileInfo{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
		}
	}
	return out, nil
}

// TaxCardName generates the file name used when the batch pipeline
// files a tax card, embedding the parcel's identifier.
func TaxCardName(apn, id string) string {
	name := sanitizeFolderName(apn)
	if name == "" {
		name = id
	}
	return "TaxCard_" + name + ".pdf"
}

// sanitizeFolderName keeps letters, digits, hyphens, and underscores;
// everything else becomes an underscore.
func sanitizeFolderName(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
