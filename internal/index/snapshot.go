package index

import (
	"time"

	"github.com/kailas-cloud/govsearch/internal/domain/record"
)

// Snapshot is one frozen generation of the aggregated search index. It is
// built off to the side by Builder and published by a single atomic pointer
// swap; once published it is never mutated, so readers iterating a snapshot
// never race a rebuild.
type Snapshot struct {
	records    []record.Record
	builtAt    time.Time
	generation uint64
}

// Empty returns the pre-first-rebuild snapshot (generation zero, no records).
// Querying it yields no results, never an error.
func Empty() *Snapshot {
	return &Snapshot{}
}

// Reconstruct creates a snapshot directly from records, bypassing the
// builder (test fixtures and tooling). Records are used as given.
func Reconstruct(records []record.Record, generation uint64) *Snapshot {
	return newSnapshot(records, generation)
}

func newSnapshot(records []record.Record, generation uint64) *Snapshot {
	return &Snapshot{
		records:    records,
		builtAt:    time.Now().UTC(),
		generation: generation,
	}
}

// Len returns the number of records in the snapshot.
func (s *Snapshot) Len() int { return len(s.records) }

// At returns the i-th record in deterministic index order (provider
// registration order, then each provider's own order).
func (s *Snapshot) At(i int) record.Record { return s.records[i] }

// BuiltAt returns when the snapshot was frozen (zero for Empty).
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Generation returns the build counter; zero means no rebuild has happened.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Ready reports whether at least one rebuild produced this snapshot.
func (s *Snapshot) Ready() bool { return s.generation > 0 }
