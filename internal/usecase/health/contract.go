package health

import (
	"context"

	"github.com/kailas-cloud/govsearch/internal/index"
)

// IndexReader exposes the currently published index snapshot.
type IndexReader interface {
	Current() *index.Snapshot
}

// BackendPinger checks availability of a provider backend (e.g. Redis).
type BackendPinger interface {
	Ping(ctx context.Context) error
}
