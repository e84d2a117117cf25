package search

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/govsearch/internal/domain"
	"github.com/kailas-cloud/govsearch/internal/domain/record"
	"github.com/kailas-cloud/govsearch/internal/index"
)

// Service aggregates every registered provider into one queryable index.
// The provider list is fixed at construction; the only shared mutable state
// is the current-snapshot pointer, replaced wholesale on each rebuild.
// Searches load the pointer once and run against that complete snapshot, so
// readers never observe a half-built index and never block on a rebuild.
//
// Concurrent Rebuild calls are allowed; whichever finishes last wins. Callers
// that need single-flight rebuilds (the HTTP boundary does) serialize around
// Rebuild themselves.
type Service struct {
	providers []domain.SearchProvider
	builder   SnapshotBuilder
	current   atomic.Pointer[index.Snapshot]
	logger    *zap.Logger
}

// Stats summarizes one rebuild for logging and the status endpoint.
type Stats struct {
	Records    int
	Generation uint64
	BuiltAt    time.Time
	Duration   time.Duration
}

// New creates the search service. The service is not ready until Rebuild has
// run once; until then searches return no results (never an error).
func New(builder SnapshotBuilder, providers []domain.SearchProvider, logger *zap.Logger) *Service {
	s := &Service{
		providers: providers,
		builder:   builder,
		logger:    logger,
	}
	s.current.Store(index.Empty())

	if len(providers) == 0 {
		logger.Warn("no search providers registered, index will stay empty")
	}
	return s
}

// Rebuild collects records from all providers into a new snapshot and
// publishes it atomically. It never fails: provider errors and malformed
// records are handled inside the builder.
func (s *Service) Rebuild(ctx context.Context) Stats {
	start := time.Now()
	snap := s.builder.Build(ctx, s.providers)
	s.current.Store(snap)
	return Stats{
		Records:    snap.Len(),
		Generation: snap.Generation(),
		BuiltAt:    snap.BuiltAt(),
		Duration:   time.Since(start),
	}
}

// Search evaluates term against the current snapshot. The snapshot reference
// is read exactly once, so a concurrent rebuild cannot mix generations into
// one result set.
func (s *Service) Search(_ context.Context, term string) []record.Record {
	return Match(s.current.Load(), term)
}

// Current returns the published snapshot (diagnostics, health, status).
func (s *Service) Current() *index.Snapshot {
	return s.current.Load()
}

// ProviderCount returns the number of registered providers.
func (s *Service) ProviderCount() int {
	return len(s.providers)
}
