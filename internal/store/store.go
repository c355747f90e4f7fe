package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"loan-marketplace/internal/infrastructure/logging"
	"loan-marketplace/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

// ErrVersionConflict is returned by Backend.Save when another writer saved first.
var ErrVersionConflict = errors.New("store: version conflict")

// Backend persists the aggregate as one blob.
type Backend interface {
	// Name labels the backend in logs and metrics.
	Name() string
	// Load returns a freshly decoded copy, or an empty aggregate when nothing is stored.
	Load(ctx context.Context) (*Database, error)
	// Save replaces the stored aggregate if its version still equals expectedVersion.
	Save(ctx context.Context, db *Database, expectedVersion uint64) error
}

type Options struct {
	// MaxRetries bounds re-runs after ErrVersionConflict. Zero disables retries.
	MaxRetries int
	Metrics    metrics.Collector
	Logger     *logging.Logger
}

// Store runs load-mutate-save units of work against a Backend. Units are
// serialized inside the process; across processes the version check turns a
// lost update into a retry.
type Store struct {
	mu      sync.Mutex
	backend Backend
	retries int
	metrics metrics.Collector
	log     *logging.Logger
}

func New(b Backend, opts Options) *Store {
	s := &Store{backend: b, retries: opts.MaxRetries, metrics: opts.Metrics, log: opts.Logger}
	if s.metrics == nil {
		s.metrics = metrics.NoOpCollector{}
	}
	if s.log == nil {
		s.log = logging.L()
	}
	if s.retries < 0 {
		s.retries = 0
	}
	s.log = s.log.Named("store").With(zap.String("backend", b.Name()))
	return s
}

// WithinTx loads the aggregate, runs fn on it and saves the result. If fn
// returns an error the working copy is dropped, so nothing fn changed is kept.
// fn may run more than once when a concurrent writer wins the save.
func (s *Store) WithinTx(ctx context.Context, fn func(db *Database) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := s.backend.Name()
	start := time.Now()
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		db, err := s.backend.Load(ctx)
		if err != nil {
			s.metrics.RecordUnitOfWork(name, metrics.OutcomeFailed, time.Since(start))
			return fmt.Errorf("store: load: %w", err)
		}
		if err := fn(db); err != nil {
			s.metrics.RecordUnitOfWork(name, metrics.OutcomeRejected, time.Since(start))
			return err
		}

		expected := db.Version
		db.Version++
		err = s.backend.Save(ctx, db, expected)
		switch {
		case err == nil:
			s.metrics.RecordUnitOfWork(name, metrics.OutcomeCommitted, time.Since(start))
			return nil
		case errors.Is(err, ErrVersionConflict) && attempt < s.retries:
			s.metrics.RecordRetry(name)
			s.log.Warn("version conflict, retrying",
				zap.Uint64("expected_version", expected),
				zap.Int("attempt", attempt+1),
			)
		case errors.Is(err, ErrVersionConflict):
			s.metrics.RecordUnitOfWork(name, metrics.OutcomeConflict, time.Since(start))
			return err
		default:
			s.metrics.RecordUnitOfWork(name, metrics.OutcomeFailed, time.Since(start))
			return fmt.Errorf("store: save: %w", err)
		}
	}
}

// View loads the aggregate and hands it to fn without saving.
func (s *Store) View(ctx context.Context, fn func(db *Database) error) error {
	db, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("store: load: %w", err)
	}
	return fn(db)
}
