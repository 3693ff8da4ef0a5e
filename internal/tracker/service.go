// Package tracker implements the tracker's use cases on top of the
// repositories: validated writes, assignment toggles and completion.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/repository"
	"task-tracker-api/internal/rules"

	"go.uber.org/zap"
)

// Service runs every mutating operation inside one transaction.
type Service struct {
	repos *repository.Repositories
	hub   *realtime.Hub
	log   *zap.Logger
	now   func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHub publishes realtime events after successful mutations.
func WithHub(hub *realtime.Hub) Option {
	return func(s *Service) { s.hub = hub }
}

// NewService wires the service; log may be nil.
func NewService(repos *repository.Repositories, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{repos: repos, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repos exposes the read side to the HTTP layer.
func (s *Service) Repos() *repository.Repositories {
	return s.repos
}

func (s *Service) publish(ev realtime.Event, recipients ...uint) {
	if s.hub == nil || len(recipients) == 0 {
		return
	}
	s.hub.Publish(ev, recipients...)
}

// IsNotFound reports whether err means the addressed entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

// AsFieldErrors extracts validation messages from err.
func AsFieldErrors(err error) (rules.FieldErrors, bool) {
	var fe rules.FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// requireWorker turns a missing actor into ErrNotFound.
func requireWorker(ctx context.Context, tx *repository.Repositories, workerID uint) error {
	ok, err := tx.Workers.Exists(ctx, workerID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("worker %d: %w", workerID, repository.ErrNotFound)
	}
	return nil
}
