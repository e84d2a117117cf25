package domain

import (
	"context"

	"github.com/kailas-cloud/govsearch/internal/domain/record"
)

// SearchProvider is the capability a catalog domain implements to expose its
// entities to the aggregated index. It is the only contract between the core
// and a domain manager: the core never reads domain storage directly.
//
// ListSearchRecords must be side-effect-free from the caller's perspective.
// It may fail; the index builder treats a failure as recoverable and isolated
// to that provider.
type SearchProvider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	ListSearchRecords(ctx context.Context) ([]record.Record, error)
}
