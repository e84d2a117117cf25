// Package staticfile implements a SearchProvider over a directory of YAML
// catalog exports. Domains that cannot expose a live manager drop a file per
// domain into the export directory instead:
//
//	domain: glossary-term
//	records:
//	  - id: term::revenue
//	    title: Revenue
//	    description: Income from operations
//	    link: /glossary/revenue
//	    tags: [finance]
package staticfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/govsearch/internal/domain/record"
)

// Provider reads every *.yaml/*.yml file in Dir on each listing. Files are
// read in sorted name order so the index stays deterministic.
type Provider struct {
	dir string
}

type exportDoc struct {
	Domain  string      `yaml:"domain"`
	Records []recordDoc `yaml:"records"`
}

type recordDoc struct {
	ID          string   `yaml:"id"`
	EntityType  string   `yaml:"entity_type"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Link        string   `yaml:"link"`
	Tags        []string `yaml:"tags"`
}

// New creates a static file provider over dir.
func New(dir string) *Provider {
	return &Provider{dir: dir}
}

// Name identifies the provider in logs and metrics.
func (p *Provider) Name() string { return "static-file" }

// Dir returns the export directory (used by the file watcher).
func (p *Provider) Dir() string { return p.dir }

// ListSearchRecords parses all export files. Records are hydrated without
// validation; the index builder drops malformed ones.
func (p *Provider) ListSearchRecords(ctx context.Context) ([]record.Record, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("read export dir %s: %w", p.dir, err)
	}

	var records []record.Record
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("listing aborted: %w", err)
		}
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}

		path := filepath.Join(p.dir, e.Name())
		recs, err := readExport(path)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func readExport(path string) ([]record.Record, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", path, err)
	}

	var doc exportDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse export %s: %w", path, err)
	}

	records := make([]record.Record, 0, len(doc.Records))
	for _, r := range doc.Records {
		entityType := r.EntityType
		if entityType == "" {
			entityType = doc.Domain
		}
		records = append(records, record.Reconstruct(
			r.ID, entityType, r.Title, r.Description, r.Link, r.Tags,
		))
	}
	return records, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
