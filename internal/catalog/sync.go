package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/mos-jef/title-crm/internal/apperr"
	"github.com/mos-jef/title-crm/internal/models"
	"github.com/mos-jef/title-crm/internal/remote"
)

type syncOp int

const (
	opSave syncOp = iota
	opDelete
)

type syncJob struct {
	op       syncOp
	parcel   models.Parcel
	id       string
	snapshot []models.Parcel
}

// ErrorFunc receives persistence failures from the background syncer.
type ErrorFunc func(error)

// Syncer drains catalog mutations to the mirror and remote tiers on a
// single background goroutine. Mutating callers never wait on it; a
// failed write leaves that tier lagging until the next job carries a
// fresh snapshot.
type Syncer struct {
	mirror *Mirror
	remote remote.Store // nil when no remote is configured
	logger *slog.Logger
	onErr  ErrorFunc

	jobs    chan syncJob
	stopped chan struct{}
}

const remoteWriteTimeout = 15 * time.Second

// NewSyncer starts a syncer. remoteStore and onErr may be nil.
func NewSyncer(mirror *Mirror, remoteStore remote.Store, logger *slog.Logger, onErr ErrorFunc) *Syncer {
	s := &Syncer{
		mirror:  mirror,
		remote:  remoteStore,
		logger:  logger,
		onErr:   onErr,
		jobs:    make(chan syncJob, 256),
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

// Close stops accepting jobs, drains the queue, and waits for the last
// write to finish.
func (s *Syncer) Close() {
	close(s.jobs)
	<-s.stopped
}

func (s *Syncer) enqueue(job syncJob) {
	s.jobs <- job
}

func (s *Syncer) run() {
	defer close(s.stopped)

	for job := range s.jobs {
		if s.mirror != nil {
			if err := s.mirror.ReplaceAll(job.snapshot); err != nil {
				s.report(&apperr.PersistenceError{Tier: "mirror", Err: err})
			}
		}
		if s.remote != nil {
			s.pushRemote(job)
		}
	}
}

func (s *Syncer) pushRemote(job syncJob) {
	ctx, cancel := context.WithTimeout(context.Background(), remoteWriteTimeout)
	defer cancel()

	var err error
	switch job.op {
	case opSave:
		err = s.remote.Save(ctx, job.parcel)
	case opDelete:
		err = s.remote.Delete(ctx, job.id)
	}
	if err != nil {
		s.report(&apperr.PersistenceError{Tier: "remote", Err: err})
	}
}

func (s *Syncer) report(err error) {
	if s.logger != nil {
		s.logger.Warn("catalog sync failed", slog.String("error", err.Error()))
	}
	if s.onErr != nil {
		s.onErr(err)
	}
}
