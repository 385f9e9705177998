package ops

import (
	"github.com/google/uuid"

	"github.com/geo-kg/indexer/model"
)

// entityGroup accumulates every op targeting one entity within a single
// edit, along with whether the group's triples declared TYPES = RELATION.
type entityGroup struct {
	entity     uuid.UUID
	ops        []model.Op
	isRelation bool
}

// GroupOps partitions ops by entity, in first-seen order, flagging any
// group whose triples include `TYPES = <RelationTypeEntity>`.
func GroupOps(all []model.Op) []*entityGroup {
	index := map[uuid.UUID]*entityGroup{}
	var order []uuid.UUID

	for _, op := range all {
		g, ok := index[op.Entity]
		if !ok {
			g = &entityGroup{entity: op.Entity}
			index[op.Entity] = g
			order = append(order, op.Entity)
		}
		if op.Kind == model.OpSetTriple && op.Attribute == model.TypesAttr {
			if id, ok := resolvedEntityValue(op); ok && id == model.RelationTypeEntity {
				g.isRelation = true
			}
		}
		g.ops = append(g.ops, op)
	}

	groups := make([]*entityGroup, len(order))
	for i, id := range order {
		groups[i] = index[id]
	}
	return groups
}

// RelationBatch is the reduction of an entity group whose triples declared
// it a relation: the canonical FROM_ENTITY/TO_ENTITY/RELATION_TYPE fields
// plus any remaining property-overlay values.
type RelationBatch struct {
	EntityID     uuid.UUID
	From         uuid.UUID
	To           uuid.UUID
	RelationType uuid.UUID
	Index        string
	Properties   []model.Value
}

// PropertyBatch is the reduction of a non-relation entity group: every
// live property-overlay write/removal for that entity.
type PropertyBatch struct {
	EntityID uuid.UUID
	Sets     []model.Value
	Unsets   []uuid.UUID
}

// BatchOps reduces a flat op list into relation batches and property
// batches, per §4.4's policy. A relation group missing one of its
// canonical fields fails to build a RelationBatch; that group's ops are
// dropped (logged by the caller) rather than applied partially, leaving
// neighboring batches unaffected.
func BatchOps(all []model.Op) (relations []RelationBatch, properties []PropertyBatch, failed []uuid.UUID) {
	for _, g := range GroupOps(all) {
		if g.isRelation {
			batch, ok := buildRelationBatch(g)
			if !ok {
				failed = append(failed, g.entity)
				continue
			}
			relations = append(relations, batch)
			continue
		}
		properties = append(properties, buildPropertyBatch(g))
	}
	return relations, properties, failed
}

func buildRelationBatch(g *entityGroup) (RelationBatch, bool) {
	batch := RelationBatch{EntityID: g.entity}
	var hasFrom, hasTo, hasType bool

	for _, op := range g.ops {
		if op.Kind != model.OpSetTriple {
			continue
		}
		switch op.Attribute {
		case model.FromEntityAttr:
			if id, ok := resolvedEntityValue(op); ok {
				batch.From = id
				hasFrom = true
			}
		case model.ToEntityAttr:
			if id, ok := resolvedEntityValue(op); ok {
				batch.To = id
				hasTo = true
			}
		case model.RelationTypeAttr:
			if id, ok := resolvedEntityValue(op); ok {
				batch.RelationType = id
				hasType = true
			}
		case model.RelationIndexAttr:
			batch.Index = op.Value.Raw
		case model.TypesAttr:
			// already consumed to flag the group as a relation
		default:
			batch.Properties = append(batch.Properties, op.Value)
		}
	}

	if !hasFrom || !hasTo || !hasType {
		return RelationBatch{}, false
	}
	return batch, true
}

func buildPropertyBatch(g *entityGroup) PropertyBatch {
	batch := PropertyBatch{EntityID: g.entity}
	for _, op := range g.ops {
		if op.Kind == model.OpDeleteTriple {
			batch.Unsets = append(batch.Unsets, op.Attribute)
			continue
		}
		batch.Sets = append(batch.Sets, op.Value)
	}
	return batch
}
