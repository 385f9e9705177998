package projection

import (
	"context"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/model"
	"github.com/geo-kg/indexer/query"
)

// RelationFilter selects relations by their flattened edge properties.
// Wheres is ANDed; a query.EdgeFilter scoping to spaceID and/or current
// version is typical alongside property filters, since relation properties
// live directly on the RELATION edge query.NewRelation anchors to.
type RelationFilter struct {
	Wheres []query.Subquery
}

// Relation returns the relation identified by id, or nil if it doesn't
// exist or belongs to a different space, matching §7's "NotFound as null
// in optional fields".
func (p *Projection) Relation(ctx context.Context, id, spaceID uuid.UUID) (*model.Relation, error) {
	r, ok, err := p.Store.FindRelation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok || r.SpaceID != spaceID {
		return nil, nil
	}
	return r, nil
}

// Relations lists relations constrained by filter, ordered by orderBy
// (relation id ascending as the final tiebreaker), and paginated per page.
// Callers wanting only live, current-space relations pass a
// query.EdgeFilter{SpaceID: &spaceID} in filter.Wheres; Relations itself
// does not implicitly scope by space, since a relation's anchor variable
// ("r") carries no separate space parameter the way an entity overlay does.
func (p *Projection) Relations(ctx context.Context, filter RelationFilter, orderBy []query.FieldOrderBy, page Pagination) ([]*model.Relation, error) {
	qb := query.NewRelation("r")
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
		return []*model.Relation{}, nil
	}

	relations, err := p.Store.FindManyRelations(ctx, compiled.Cypher, compiled.Params)
	if err != nil {
		return nil, err
	}
	if relations == nil {
		relations = []*model.Relation{}
	}
	return relations, nil
}
