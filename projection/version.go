package projection

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/ids"
	"github.com/geo-kg/indexer/model"
)

// EntityVersion is a point in an entity's history at which some relation
// touching it opened or closed. Unlike the upstream system, this indexer's
// Properties overlay (I2) keeps at most one live value per (entity, space)
// rather than a historized row per triple-write, so an entity's value
// history cannot be reconstructed triple-by-triple; EntityVersions instead
// derives version markers from the entity's relation intervals, the one
// part of the data model that is genuinely versioned. See DESIGN.md.
type EntityVersion struct {
	ID       uuid.UUID
	EntityID uuid.UUID
	SpaceID  uuid.UUID
	Index    model.Version
}

// EntityVersions lists the distinct versions at which a relation touching
// entityID opened (MinVersion) or closed (a non-live MaxVersion), optionally
// scoped to one space, oldest first.
func (p *Projection) EntityVersions(ctx context.Context, entityID uuid.UUID, spaceID *uuid.UUID) ([]EntityVersion, error) {
	params := map[string]interface{}{"entity_id": entityID.String()}
	cypher := `MATCH (e:Entity {id: $entity_id})-[r:RELATION]-() `
	if spaceID != nil {
		cypher += `WHERE r.space_id = $space_id `
		params["space_id"] = spaceID.String()
	}
	cypher += `RETURN r`

	relations, err := p.Store.FindManyRelations(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	seen := map[model.Version]uuid.UUID{} // version -> space, for id derivation
	var versions []model.Version
	addBoundary := func(v model.Version, sp uuid.UUID) {
		if v == model.LiveUntil {
			return
		}
		if _, ok := seen[v]; !ok {
			seen[v] = sp
			versions = append(versions, v)
		}
	}
	for _, r := range relations {
		addBoundary(r.MinVersion, r.SpaceID)
		addBoundary(r.MaxVersion, r.SpaceID)
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].Less(versions[j]) })

	out := make([]EntityVersion, 0, len(versions))
	for _, v := range versions {
		sp := seen[v]
		out = append(out, EntityVersion{
			ID:       ids.Derive(entityID.String() + ":" + sp.String() + ":" + string(v)),
			EntityID: entityID,
			SpaceID:  sp,
			Index:    v,
		})
	}
	return out, nil
}
