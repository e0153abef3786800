// Package batch drives folders of scanned parcel documents through
// extraction, matching, and catalog reconciliation.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mos-jef/title-crm/internal/apn"
	"github.com/mos-jef/title-crm/internal/catalog"
	"github.com/mos-jef/title-crm/internal/extract"
	"github.com/mos-jef/title-crm/internal/models"
	"github.com/mos-jef/title-crm/internal/parcelfs"
)

// ProgressFunc receives the full item list after every status
// transition so a consumer can render live progress.
type ProgressFunc func(items []Item)

// Options configure one engine.
type Options struct {
	// AutoCreate makes unmatched items create new catalog records
	// instead of terminating in no-match.
	AutoCreate bool
	// ItemDelay is the fixed pause after every item, successful or
	// not, to stay under the extraction service's rate limit.
	ItemDelay time.Duration
	// OnProgress may be nil.
	OnProgress ProgressFunc
}

// Engine runs batch reconciliations. Items are processed strictly one
// at a time in input order; records created mid-run are visible to the
// items that follow.
type Engine struct {
	store     *catalog.Store
	extractor extract.Extractor
	layout    *parcelfs.Layout
	logger    *slog.Logger
	opts      Options
}

// NewEngine creates an engine over the given collaborators.
func NewEngine(store *catalog.Store, extractor extract.Extractor, layout *parcelfs.Layout, logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, extractor: extractor, layout: layout, logger: logger, opts: opts}
}

// ScanFolder enumerates the PDF documents in dir as pending items,
// sorted by file name.
func ScanFolder(dir string) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("batch: scan folder: %w", err)
	}
	var items []Item
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		items = append(items, Item{
			FileName: e.Name(),
			FilePath: filepath.Join(dir, e.Name()),
			Status:   StatusPending,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].FileName < items[j].FileName })
	return items, nil
}

// ItemsFromPaths builds pending items for explicit file paths. A
// single-document import is a one-item batch.
func ItemsFromPaths(paths ...string) []Item {
	items := make([]Item, len(paths))
	for i, p := range paths {
		items[i] = Item{FileName: filepath.Base(p), FilePath: p, Status: StatusPending}
	}
	return items
}

// Run processes items sequentially and returns the final item list and
// per-status counts. An item failure never interrupts the batch;
// cancellation is honored between items and leaves the remainder
// pending.
func (e *Engine) Run(ctx context.Context, items []Item) ([]Item, map[Status]int, error) {
	snapshot := e.store.ListAll()

	for i := range items {
		if err := ctx.Err(); err != nil {
			return items, CountByStatus(items), err
		}

		items[i].Status = StatusProcessing
		e.emit(items)

		snapshot = e.processItem(ctx, items, i, snapshot)
		e.emit(items)

		if e.opts.ItemDelay > 0 && i < len(items)-1 {
			select {
			case <-time.After(e.opts.ItemDelay):
			case <-ctx.Done():
				return items, CountByStatus(items), ctx.Err()
			}
		}
	}

	counts := CountByStatus(items)
	e.logger.Info("batch run finished",
		slog.Int("total", len(items)),
		slog.Int("matched", counts[StatusMatched]),
		slog.Int("created", counts[StatusCreated]),
		slog.Int("no_match", counts[StatusNoMatch]),
		slog.Int("errors", counts[StatusError]))
	return items, counts, nil
}

// processItem drives one item to its terminal status and returns the
// (possibly grown) working snapshot.
func (e *Engine) processItem(ctx context.Context, items []Item, i int, snapshot []models.Parcel) []models.Parcel {
	item := &items[i]

	data, err := os.ReadFile(item.FilePath)
	if err != nil {
		item.Status = StatusError
		item.Error = "Could not read file"
		return snapshot
	}

	fields, err := e.extractor.Extract(ctx, data)
	if err != nil {
		item.Status = StatusError
		item.Error = err.Error()
		return snapshot
	}
	item.Fields = &fields
	item.APN = fields.Identifier()

	key := apn.Normalize(fields.APN)
	if key == "" {
		key = apn.Normalize(fields.APNRaw)
	}
	if key == "" {
		item.Status = StatusError
		item.Error = "Could not extract identifier"
		return snapshot
	}

	// Linear scan, first match wins.
	matchIdx := -1
	for j := range snapshot {
		if apn.Normalize(snapshot[j].APN) == key {
			matchIdx = j
			break
		}
	}

	if matchIdx < 0 {
		if !e.opts.AutoCreate {
			item.Status = StatusNoMatch
			return snapshot
		}
		created := e.createParcel(fields)
		snapshot = append(snapshot, created)
		item.ParcelID = created.ID
		item.Warning = e.placeTaxCard(item.FilePath, created)
		item.Status = StatusCreated
		return snapshot
	}

	merged := overlay(snapshot[matchIdx], fields)
	merged.UpdatedAt = catalog.NowISO()
	e.store.Upsert(merged)
	snapshot[matchIdx] = merged

	item.ParcelID = merged.ID
	item.Warning = e.placeTaxCard(item.FilePath, merged)
	item.Status = StatusMatched
	return snapshot
}

// createParcel synthesizes and persists a new record for an unmatched
// document. Folder creation failure is tolerated: the record still
// exists, with an empty FolderPath.
func (e *Engine) createParcel(fields extract.Fields) models.Parcel {
	now := catalog.NowISO()
	p := overlay(models.Parcel{
		ID:        uuid.NewString(),
		APN:       fields.Identifier(),
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}, fields)

	folderPath, err := e.layout.CreateParcelFolder(p.APN, p.ID)
	if err != nil {
		e.logger.Warn("parcel folder creation failed",
			slog.String("apn", p.APN), slog.String("error", err.Error()))
	} else {
		p.FolderPath = folderPath
	}

	e.store.Upsert(p)
	return p
}

// placeTaxCard copies the source document into the parcel's Taxes
// folder. Failure is returned as a warning message; the catalog
// mutation it documents has already committed.
func (e *Engine) placeTaxCard(sourcePath string, p models.Parcel) string {
	name := parcelfs.TaxCardName(p.APN, p.ID)
	if err := parcelfs.Place(sourcePath, p.FolderPath, parcelfs.CategoryTaxes, name); err != nil {
		e.logger.Warn("tax card placement failed",
			slog.String("parcel", p.ID), slog.String("error", err.Error()))
		return err.Error()
	}
	return ""
}

// overlay copies the non-empty extracted fields onto base. Fields the
// extraction left empty never overwrite existing values, and the APN
// of an existing record is never replaced.
func overlay(base models.Parcel, f extract.Fields) models.Parcel {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&base.AssessedOwner, f.AssessedOwner)
	set(&base.LegalOwner, f.LegalOwner)
	set(&base.County, f.County)
	set(&base.State, f.State)
	set(&base.Acres, f.Acres)
	set(&base.BriefLegal, f.BriefLegal)
	set(&base.LegalDescription, f.LegalDescription)
	set(&base.MapParcelNo, f.MapParcelNo)
	set(&base.Address, f.Address)
	return base
}

func (e *Engine) emit(items []Item) {
	if e.opts.OnProgress == nil {
		return
	}
	out := make([]Item, len(items))
	copy(out, items)
	e.opts.OnProgress(out)
}
