// Package parcelservice coordinates catalog, folder, and batch
// operations behind one boundary.
package parcelservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mos-jef/title-crm/internal/apn"
	"github.com/mos-jef/title-crm/internal/apperr"
	"github.com/mos-jef/title-crm/internal/batch"
	"github.com/mos-jef/title-crm/internal/catalog"
	"github.com/mos-jef/title-crm/internal/extract"
	"github.com/mos-jef/title-crm/internal/models"
	"github.com/mos-jef/title-crm/internal/parcelfs"
)

// EventFunc is notified after parcel mutations ("created", "updated",
// "deleted").
type EventFunc func(kind, id string)

// BatchEventFunc is notified on batch lifecycle events
// ("batch.progress", "batch.done") with a JSON-marshalable payload.
type BatchEventFunc func(event string, data any)

// RunState is the observable state of the current (or last) batch run.
type RunState struct {
	Running    bool                 `json:"running"`
	Folder     string               `json:"folder,omitempty"`
	AutoCreate bool                 `json:"autoCreate"`
	Items      []batch.Item         `json:"items"`
	Counts     map[batch.Status]int `json:"counts,omitempty"`
	StartedAt  string               `json:"startedAt,omitempty"`
	FinishedAt string               `json:"finishedAt,omitempty"`
}

// Service is the application-facing surface over the parcel catalog.
type Service struct {
	store       *catalog.Store
	layout      *parcelfs.Layout
	extractor   extract.Extractor
	logger      *slog.Logger
	itemDelay   time.Duration
	autoCreate  bool // default for runs that don't specify it

	onParcel EventFunc      // may be nil
	onBatch  BatchEventFunc // may be nil

	mu     sync.Mutex
	run    RunState
	cancel context.CancelFunc
}

// NewService creates a parcel service. autoCreate is the default for
// batch runs that don't specify it. onParcel and onBatch may be nil.
func NewService(store *catalog.Store, layout *parcelfs.Layout, extractor extract.Extractor, logger *slog.Logger, itemDelay time.Duration, autoCreate bool, onParcel EventFunc, onBatch BatchEventFunc) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		layout:     layout,
		extractor:  extractor,
		logger:     logger,
		itemDelay:  itemDelay,
		autoCreate: autoCreate,
		onParcel:   onParcel,
		onBatch:    onBatch,
	}
}

// DefaultAutoCreate reports whether batch runs create records for
// unmatched documents when the request leaves the choice open.
func (s *Service) DefaultAutoCreate() bool {
	return s.autoCreate
}

// ListParcels returns every catalog record.
func (s *Service) ListParcels(context.Context) []models.Parcel {
	return s.store.ListAll()
}

// GetParcel returns one record by id.
func (s *Service) GetParcel(_ context.Context, id string) (models.Parcel, error) {
	return s.store.GetByID(id)
}

// FindByAPN returns the first record whose normalized APN equals the
// normalized input. An input that normalizes to nothing never matches.
func (s *Service) FindByAPN(_ context.Context, raw string) (models.Parcel, error) {
	key := apn.Normalize(raw)
	if key == "" {
		return models.Parcel{}, apperr.ErrNotFound
	}
	for _, p := range s.store.ListAll() {
		if apn.Normalize(p.APN) == key {
			return p, nil
		}
	}
	return models.Parcel{}, apperr.ErrNotFound
}

// CreateParcel assigns identity and timestamps, provisions the folder
// tree (tolerating failure), and persists the record.
func (s *Service) CreateParcel(_ context.Context, p models.Parcel) (models.Parcel, error) {
	if p.APN == "" {
		return models.Parcel{}, fmt.Errorf("apn is required")
	}
	now := catalog.NowISO()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Completed = false

	folderPath, err := s.layout.CreateParcelFolder(p.APN, p.ID)
	if err != nil {
		s.logger.Warn("parcel folder creation failed",
			slog.String("apn", p.APN), slog.String("error", err.Error()))
		p.FolderPath = ""
	} else {
		p.FolderPath = folderPath
	}

	s.store.Upsert(p)
	s.emitParcel("created", p.ID)
	return p, nil
}

// UpdateParcel replaces the descriptive fields of an existing record.
// Identity, creation time, folder path, and the completed flag are
// preserved; UpdatedAt is refreshed.
func (s *Service) UpdateParcel(_ context.Context, id string, in models.Parcel) (models.Parcel, error) {
	existing, err := s.store.GetByID(id)
	if err != nil {
		return models.Parcel{}, err
	}
	in.ID = existing.ID
	in.CreatedAt = existing.CreatedAt
	in.FolderPath = existing.FolderPath
	in.Completed = existing.Completed
	in.UpdatedAt = catalog.NowISO()

	s.store.Upsert(in)
	s.emitParcel("updated", id)
	return in, nil
}

// DeleteParcel removes the record. The on-disk folder is left in place
// so no documents are lost.
func (s *Service) DeleteParcel(_ context.Context, id string) error {
	if _, err := s.store.GetByID(id); err != nil {
		return err
	}
	s.store.Delete(id)
	s.emitParcel("deleted", id)
	return nil
}

// SetCompleted flips the workflow flag.
func (s *Service) SetCompleted(_ context.Context, id string, completed bool) (models.Parcel, error) {
	p, err := s.store.SetCompleted(id, completed)
	if err != nil {
		return models.Parcel{}, err
	}
	s.emitParcel("updated", id)
	return p, nil
}

// ListFiles returns the parcel's documents grouped by category.
func (s *Service) ListFiles(_ context.Context, id string) (map[string][]parcelfs.FileInfo, error) {
	p, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p.FolderPath == "" {
		return nil, fmt.Errorf("parcel %s has no folder", id)
	}
	return parcelfs.ListFiles(p.FolderPath)
}

// AttachFile copies a document from sourcePath into the parcel's
// category subfolder under its original name.
func (s *Service) AttachFile(_ context.Context, id, category, sourcePath, fileName string) error {
	if !slices.Contains(parcelfs.Categories, category) {
		return fmt.Errorf("unknown category: %s", category)
	}
	p, err := s.store.GetByID(id)
	if err != nil {
		return err
	}
	return parcelfs.Place(sourcePath, p.FolderPath, category, fileName)
}

// StartBatch scans folder for PDFs and launches a reconciliation run.
// Only one run may be active at a time.
func (s *Service) StartBatch(folder string, autoCreate bool) (RunState, error) {
	if s.extractor == nil {
		return RunState{}, fmt.Errorf("extraction is not configured")
	}
	items, err := batch.ScanFolder(folder)
	if err != nil {
		return RunState{}, err
	}
	if len(items) == 0 {
		return RunState{}, fmt.Errorf("no PDF documents found in %s", folder)
	}
	return s.startRun(folder, autoCreate, items)
}

// StartBatchFiles launches a run over explicit document paths. A single
// path gives the one-document flow the same semantics as a full run.
func (s *Service) StartBatchFiles(paths []string, autoCreate bool) (RunState, error) {
	if s.extractor == nil {
		return RunState{}, fmt.Errorf("extraction is not configured")
	}
	if len(paths) == 0 {
		return RunState{}, fmt.Errorf("no documents given")
	}
	return s.startRun("", autoCreate, batch.ItemsFromPaths(paths...))
}

func (s *Service) startRun(folder string, autoCreate bool, items []batch.Item) (RunState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run.Running {
		return RunState{}, apperr.ErrConflict
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	// The engine mutates items in place; the observable state keeps its
	// own copy so concurrent readers never see those writes.
	s.run = RunState{
		Running:    true,
		Folder:     folder,
		AutoCreate: autoCreate,
		Items:      append([]batch.Item(nil), items...),
		StartedAt:  catalog.NowISO(),
	}

	engine := batch.NewEngine(s.store, s.extractor, s.layout, s.logger, batch.Options{
		AutoCreate: autoCreate,
		ItemDelay:  s.itemDelay,
		OnProgress: s.recordProgress,
	})

	go func() {
		defer cancel()
		final, counts, runErr := engine.Run(ctx, items)
		if runErr != nil {
			s.logger.Info("batch run stopped early", slog.String("reason", runErr.Error()))
		}

		s.mu.Lock()
		s.run.Running = false
		s.run.Items = final
		s.run.Counts = counts
		s.run.FinishedAt = catalog.NowISO()
		done := s.run
		s.cancel = nil
		s.mu.Unlock()

		s.emitBatch("batch.done", done)
	}()

	return s.run, nil
}

// CancelBatch requests cancellation of the active run. The engine
// honors it between items.
func (s *Service) CancelBatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.run.Running || s.cancel == nil {
		return apperr.ErrNotFound
	}
	s.cancel()
	return nil
}

// BatchStatus returns a copy of the current run state.
func (s *Service) BatchStatus() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.run
	state.Items = append([]batch.Item(nil), s.run.Items...)
	return state
}

func (s *Service) recordProgress(items []batch.Item) {
	s.mu.Lock()
	s.run.Items = items
	s.mu.Unlock()
	s.emitBatch("batch.progress", map[string]any{"items": items})
}

func (s *Service) emitParcel(kind, id string) {
	if s.onParcel != nil {
		s.onParcel(kind, id)
	}
}

func (s *Service) emitBatch(event string, data any) {
	if s.onBatch != nil {
		s.onBatch(event, data)
	}
}
