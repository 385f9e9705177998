package projection

import (
	"context"

	"github.com/geo-kg/indexer/store"
)

// SemanticSearch ranks entities by cosine similarity to queryVector over the
// Properties.embedding vector index, returning at most limit results. A
// limit outside (0, MaxLimit] is clamped the same way Pagination.Limit is.
func (p *Projection) SemanticSearch(ctx context.Context, queryVector []float32, limit int) ([]store.SemanticSearchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return p.Store.SemanticSearch(ctx, queryVector, limit, 0)
}
