package search

import (
	"context"

	"github.com/kailas-cloud/govsearch/internal/domain"
	"github.com/kailas-cloud/govsearch/internal/index"
)

// SnapshotBuilder produces a new index snapshot from the registered providers.
type SnapshotBuilder interface {
	Build(ctx context.Context, providers []domain.SearchProvider) *index.Snapshot
}
