// Package projection implements the read-only query surface (C10) a
// GraphQL-style layer or an AI agent consumes: entity/relation lookups and
// filtered listings, an attribute's display name, per-entity version
// markers, and semantic search. Every multi-row operation accepts a filter
// tree built from query package primitives, so a caller composes exactly
// the same ValueFilter/PropertyFilter/EdgeFilter vocabulary the ingestion
// side already validates against.
package projection

import (
	"github.com/geo-kg/indexer/store"
)

// DefaultLimit and MaxLimit bound every listing operation per §4.8: a
// caller asking for more than MaxLimit silently gets MaxLimit, never an
// error, since pagination is a courtesy to the backing store, not a
// contract the caller can violate.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Pagination bounds a listing operation. A zero value means "apply the
// defaults".
type Pagination struct {
	Skip  int
	Limit int
}

// clamp normalizes a Pagination to its effective (skip, limit), applying
// DefaultLimit when Limit is unset and capping at MaxLimit.
func (p Pagination) clamp() (skip, limit int) {
	skip = p.Skip
	if skip < 0 {
		skip = 0
	}
	limit = p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}

// Projection is the query surface, wired directly to the graph store: it
// holds no cache of its own, since the store's own read performance is the
// projection layer's contract (§6 "Graph store").
type Projection struct {
	Store store.Store
}

// New builds a Projection over s.
func New(s store.Store) *Projection {
	return &Projection{Store: s}
}
