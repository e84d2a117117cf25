package search

import (
	"strings"

	"github.com/kailas-cloud/govsearch/internal/domain/record"
	"github.com/kailas-cloud/govsearch/internal/index"
)

// Match evaluates a free-text term against a frozen snapshot and returns the
// matching records as an order-preserving subsequence. Matching is a
// case-insensitive prefix test over title, then description, then each tag,
// short-circuited at the first hit so a record never appears twice.
//
// An empty or whitespace-only term matches nothing: an empty query is not
// "match everything". The scan is linear, which is fine at catalog scale
// (hundreds to low thousands of records); the contract leaves room to swap in
// a prefix trie behind the same signature if that ever changes.
func Match(snap *index.Snapshot, term string) []record.Record {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	q := strings.ToLower(term)

	var out []record.Record
	for i := 0; i < snap.Len(); i++ {
		r := snap.At(i)
		if recordMatches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func recordMatches(r record.Record, q string) bool {
	if strings.HasPrefix(strings.ToLower(r.Title()), q) {
		return true
	}
	if d := r.Description(); d != "" && strings.HasPrefix(strings.ToLower(d), q) {
		return true
	}
	for i := 0; i < r.TagCount(); i++ {
		if strings.HasPrefix(strings.ToLower(r.TagAt(i)), q) {
			return true
		}
	}
	return false
}
