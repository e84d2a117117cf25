// Package redishash implements a SearchProvider over records that domain
// managers publish to Redis. Each manager registers its domain tag in the set
// "<prefix>domains" and keeps a JSON array of its records at
// "<prefix>records:<domain>". The provider only reads; publishing and
// freshness are the managers' responsibility.
package redishash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/govsearch/internal/domain/record"
)

// Store is the Redis surface the provider depends on.
type Store interface {
	SMembers(ctx context.Context, key string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Ping(ctx context.Context) error
}

// Provider lists search records published to Redis by domain managers.
type Provider struct {
	store     Store
	keyPrefix string
}

type recordPayload struct {
	ID          string   `json:"id"`
	EntityType  string   `json:"entity_type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	Tags        []string `json:"tags"`
}

// New creates a Redis records provider.
func New(store Store, keyPrefix string) *Provider {
	return &Provider{store: store, keyPrefix: keyPrefix}
}

// Name identifies the provider in logs and metrics.
func (p *Provider) Name() string { return "redis" }

// ListSearchRecords reads every published domain's records. Domains are
// visited in sorted tag order so the index stays deterministic. A domain tag
// whose records key has expired or been withdrawn contributes nothing; any
// other store error fails the whole listing (the builder isolates it).
func (p *Provider) ListSearchRecords(ctx context.Context) ([]record.Record, error) {
	domains, err := p.store.SMembers(ctx, p.keyPrefix+"domains")
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	sort.Strings(domains)

	var records []record.Record
	for _, d := range domains {
		data, err := p.store.Get(ctx, p.keyPrefix+"records:"+d)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("domain %s: %w", d, err)
		}

		var payloads []recordPayload
		if err := json.Unmarshal(data, &payloads); err != nil {
			return nil, fmt.Errorf("domain %s: decode records: %w", d, err)
		}

		for _, r := range payloads {
			entityType := r.EntityType
			if entityType == "" {
				entityType = d
			}
			records = append(records, record.Reconstruct(
				r.ID, entityType, r.Title, r.Description, r.Link, r.Tags,
			))
		}
	}
	return records, nil
}
