package record

import (
	"fmt"
	"strings"
)

// Record is the normalized, domain-agnostic unit stored in the search index
// (immutable value object).
//
// IDs follow the convention "<domain-tag>::<native-id>" (e.g. "product::42").
// Uniqueness across providers is the providers' responsibility; the index
// keeps colliding ids as-is and the builder warns about them.
type Record struct {
	id          string
	entityType  string
	title       string
	description string
	link        string
	tags        []string
}

// New validates and creates a Record. ID and title are mandatory; everything
// else may be empty.
func New(id, entityType, title, description, link string, tags []string) (Record, error) {
	r := Reconstruct(id, entityType, title, description, link, tags)
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Reconstruct creates a Record without validation (provider hydration from
// YAML/Redis payloads). The index builder validates hydrated records and
// drops malformed ones.
func Reconstruct(id, entityType, title, description, link string, tags []string) Record {
	return Record{
		id:          id,
		entityType:  entityType,
		title:       title,
		description: description,
		link:        link,
		tags:        cloneTags(tags),
	}
}

// Validate reports whether the record carries its mandatory fields.
// Errors wrap ErrMalformed.
func (r Record) Validate() error {
	if strings.TrimSpace(r.id) == "" {
		return fmt.Errorf("%w: missing id", ErrMalformed)
	}
	if strings.TrimSpace(r.title) == "" {
		return fmt.Errorf("%w: missing title (id %q)", ErrMalformed, r.id)
	}
	return nil
}

// ID returns the namespaced record identifier.
func (r Record) ID() string { return r.id }

// EntityType returns the short domain tag (e.g. "data-product").
func (r Record) EntityType() string { return r.entityType }

// Title returns the primary match field.
func (r Record) Title() string { return r.title }

// Description returns the optional secondary match field ("" when absent).
func (r Record) Description() string { return r.description }

// Link returns the navigation target. Opaque to the core, never matched.
func (r Record) Link() string { return r.link }

// Tags returns a copy of the tag list; each tag is an independent match field.
func (r Record) Tags() []string { return cloneTags(r.tags) }

// TagAt returns the i-th tag without copying the slice.
func (r Record) TagAt(i int) string { return r.tags[i] }

// TagCount returns the number of tags.
func (r Record) TagCount() int { return len(r.tags) }

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	c := make([]string, len(tags))
	copy(c, tags)
	return c
}
