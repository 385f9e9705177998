package projection

import (
	"context"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/model"
)

// TripleName resolves the display name of the triple (entityID, attributeID,
// spaceID): it confirms the triple actually exists, then returns the value
// of attributeID's own NAME property within spaceID — the attribute entity's
// human-readable label, not the triple's value. Mirrors Triple::name() in
// the upstream schema, which resolves system NAME_ATTRIBUTE against
// self.attribute rather than self.entity.
//
// ok is false, with no error, whenever the triple doesn't exist or the
// attribute carries no name in spaceID, matching §7's "NotFound as null in
// optional fields".
func (p *Projection) TripleName(ctx context.Context, entityID, attributeID, spaceID uuid.UUID) (string, bool, error) {
	entity, ok, err := p.Store.FindEntity(ctx, entityID)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	if _, hasTriple := entity.ValueIn(spaceID, attributeID); !hasTriple {
		return "", false, nil
	}

	attribute, ok, err := p.Store.FindEntity(ctx, attributeID)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	nameVal, ok := attribute.ValueIn(spaceID, model.NameAttr)
	if !ok {
		return "", false, nil
	}
	return nameVal.Raw, true, nil
}
