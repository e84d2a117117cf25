package index

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/govsearch/internal/domain"
	"github.com/kailas-cloud/govsearch/internal/domain/record"
	"github.com/kailas-cloud/govsearch/internal/metrics"
)

// Builder collects records from every registered provider into a fresh
// Snapshot. A provider failure is isolated: it is logged, counted, and the
// provider contributes zero records to that build. Build never returns an
// error; a failed provider is retried on the next rebuild.
type Builder struct {
	providerTimeout time.Duration // per-provider ctx budget; 0 = unlimited
	logger          *zap.Logger
	generation      atomic.Uint64
}

// NewBuilder creates a Builder. providerTimeout bounds each provider call via
// a context deadline so one slow provider cannot stall a rebuild indefinitely;
// providers own their I/O and are expected to honor the deadline.
func NewBuilder(providerTimeout time.Duration, logger *zap.Logger) *Builder {
	return &Builder{providerTimeout: providerTimeout, logger: logger}
}

// Build calls every provider in registration order and freezes the collected
// records into a new Snapshot. Record order is provider registration order,
// then each provider's own return order, so results are deterministic given
// deterministic providers.
func (b *Builder) Build(ctx context.Context, providers []domain.SearchProvider) *Snapshot {
	start := time.Now()
	gen := b.generation.Add(1)

	var records []record.Record
	seen := make(map[string]struct{})
	failed := 0

	for _, p := range providers {
		recs, err := b.listRecords(ctx, p)
		if err != nil {
			failed++
			metrics.ProviderFailuresTotal.WithLabelValues(p.Name()).Inc()
			b.logger.Error("provider failed, skipping for this build",
				zap.String("provider", p.Name()),
				zap.Uint64("generation", gen),
				zap.Error(err),
			)
			continue
		}

		for _, r := range recs {
			if err := r.Validate(); err != nil {
				metrics.RecordsDroppedTotal.WithLabelValues(p.Name()).Inc()
				b.logger.Warn("dropping malformed record",
					zap.String("provider", p.Name()),
					zap.String("record_id", r.ID()),
					zap.Error(err),
				)
				continue
			}
			if _, dup := seen[r.ID()]; dup {
				// Ids are kept as-is; colliding providers are a wiring
				// problem worth surfacing to operators.
				b.logger.Warn("duplicate record id across providers",
					zap.String("provider", p.Name()),
					zap.String("record_id", r.ID()),
				)
			}
			seen[r.ID()] = struct{}{}
			records = append(records, r)
		}
	}

	snap := newSnapshot(records, gen)

	metrics.IndexRebuildsTotal.Inc()
	metrics.IndexRebuildDuration.Observe(time.Since(start).Seconds())
	metrics.IndexRecords.Set(float64(snap.Len()))

	b.logger.Info("index built",
		zap.Uint64("generation", gen),
		zap.Int("records", snap.Len()),
		zap.Int("providers", len(providers)),
		zap.Int("providers_failed", failed),
		zap.Duration("duration", time.Since(start)),
	)

	return snap
}

func (b *Builder) listRecords(ctx context.Context, p domain.SearchProvider) ([]record.Record, error) {
	if b.providerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.providerTimeout)
		defer cancel()
	}
	return p.ListSearchRecords(ctx)
}
