package projection

import (
	"context"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/model"
	"github.com/geo-kg/indexer/query"
)

// EntityFilter selects entities by their per-space Properties overlay, plus
// an optional post-hydration type check. Wheres is ANDed: every
// query.Subquery (typically a query.PropertyFilter or query.ValueFilter)
// must match the overlay for an entity to be returned.
//
// Types is checked after hydration rather than compiled into the Cypher
// query: type labels live on the Entity node, while Wheres compiles against
// the Properties overlay node query.NewEntityOverlay anchors subqueries to,
// and a query.QueryBuilder has exactly one anchor variable per query. Entity
// type sets are small, so a Go-side check after the (already paginated)
// overlay query costs nothing a second Cypher round-trip would save.
type EntityFilter struct {
	Types  []uuid.UUID
	Wheres []query.Subquery
}

func (f EntityFilter) matchesTypes(e *model.Entity) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if e.HasType(t) {
			return true
		}
	}
	return false
}

// Entity returns the entity identified by id, or nil if it doesn't exist or
// carries no overlay in spaceID, matching §7's "NotFound as null in
// optional fields".
func (p *Projection) Entity(ctx context.Context, id, spaceID uuid.UUID) (*model.Entity, error) {
	e, ok, err := p.Store.FindEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if _, hasOverlay := e.Overlays[spaceID]; !hasOverlay {
		return nil, nil
	}
	return e, nil
}

// Entities lists entities carrying a Properties overlay in spaceID,
// constrained by filter, ordered by orderBy (entity id ascending as the
// final tiebreaker), and paginated per page. A NotFound-shaped empty result
// is an empty, non-nil slice, matching §7's "NotFound as an empty list in
// list fields".
func (p *Projection) Entities(ctx context.Context, spaceID uuid.UUID, filter EntityFilter, orderBy []query.FieldOrderBy, page Pagination) ([]*model.Entity, error) {
	qb := query.NewEntityOverlay("e", "props", spaceID)
	for _, w := range filter.Wheres {
		qb = qb.Where(w)
	}
	for _, o := range orderBy {
		qb = qb.OrderBy(o)
	}
	skip, limit := page.clamp()
	qb = qb.Skip(skip).Limit(limit)

	compiled, err := qb.Compile()
	if err != nil {
		return nil, err
	}
	if compiled.Empty {
		return []*model.Entity{}, nil
	}

	stubs, err := p.Store.FindMany(ctx, compiled.Cypher, compiled.Params)
	if err != nil {
		return nil, err
	}

	entities := make([]*model.Entity, 0, len(stubs))
	for _, stub := range stubs {
		e, ok, err := p.Store.FindEntity(ctx, stub.ID)
		if err != nil {
			return nil, err
		}
		if !ok || !filter.matchesTypes(e) {
			continue
		}
		entities = append(entities, e)
	}
	return entities, nil
}
