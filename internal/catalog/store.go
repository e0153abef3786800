// Package catalog owns the authoritative parcel record set and keeps
// its persistence tiers consistent.
//
// The in-process cache is the source of truth for the duration of a
// session: every mutation updates it synchronously, then enqueues a
// background job that refreshes the SQLite mirror wholesale and sends
// the single changed record (or deletion) to the remote store. Tier
// failures are surfaced on the syncer's error callback, never to the
// mutating caller.
package catalog

import (
	"sync"
	"time"

	"github.com/mos-jef/title-crm/internal/apperr"
	"github.com/mos-jef/title-crm/internal/models"
)

// NowISO returns the current time in the ISO-8601 form stored on
// records.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Store is the catalog. Safe for concurrent use; callers must not
// issue overlapping writes for the same id (the batch engine never
// does, because each item owns a disjoint match).
type Store struct {
	mu      sync.RWMutex
	parcels []models.Parcel
	byID    map[string]int

	syncer *Syncer
}

// NewStore creates a catalog seeded with the given records. syncer may
// be nil, in which case mutations update only the in-process cache.
func NewStore(initial []models.Parcel, syncer *Syncer) *Store {
	s := &Store{
		parcels: make([]models.Parcel, len(initial)),
		byID:    make(map[string]int, len(initial)),
		syncer:  syncer,
	}
	copy(s.parcels, initial)
	for i, p := range s.parcels {
		s.byID[p.ID] = i
	}
	return s
}

// ListAll returns a copy of every record in insertion order.
func (s *Store) ListAll() []models.Parcel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Parcel, len(s.parcels))
	copy(out, s.parcels)
	return out
}

// GetByID returns the record with the given id.
func (s *Store) GetByID(id string) (models.Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return models.Parcel{}, apperr.ErrNotFound
	}
	return s.parcels[i], nil
}

// Upsert fully replaces the record with the same id, or appends it.
// Idempotent: upserting an identical record twice leaves the catalog
// unchanged.
func (s *Store) Upsert(p models.Parcel) {
	s.mu.Lock()
	if i, ok := s.byID[p.ID]; ok {
		s.parcels[i] = p
	} else {
		s.byID[p.ID] = len(s.parcels)
		s.parcels = append(s.parcels, p)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if s.syncer != nil {
		s.syncer.enqueue(syncJob{op: opSave, parcel: p, snapshot: snapshot})
	}
}

// Delete removes the record with the given id. Deleting an absent id
// is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	i, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.parcels = append(s.parcels[:i], s.parcels[i+1:]...)
	delete(s.byID, id)
	for j := i; j < len(s.parcels); j++ {
		s.byID[s.parcels[j].ID] = j
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if s.syncer != nil {
		s.syncer.enqueue(syncJob{op: opDelete, id: id, snapshot: snapshot})
	}
}

// SetCompleted flips the workflow flag and refreshes UpdatedAt.
func (s *Store) SetCompleted(id string, completed bool) (models.Parcel, error) {
	s.mu.Lock()
	i, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return models.Parcel{}, apperr.ErrNotFound
	}
	s.parcels[i].Completed = completed
	s.parcels[i].UpdatedAt = NowISO()
	p := s.parcels[i]
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if s.syncer != nil {
		s.syncer.enqueue(syncJob{op: opSave, parcel: p, snapshot: snapshot})
	}
	return p, nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.parcels)
}

func (s *Store) snapshotLocked() []models.Parcel {
	out := make([]models.Parcel, len(s.parcels))
	copy(out, s.parcels)
	return out
}
