// Package ops converts wire-level SetTriple/DeleteTriple ops into the
// graph-store mutations that apply them, following §4.4's batching policy:
// group by entity, detect TYPES=RELATION groups and emit a single
// insert_relation for them, and emit property-overlay writes for everything
// else.
package ops

import (
	"github.com/google/uuid"

	"github.com/geo-kg/indexer/ids"
	"github.com/geo-kg/indexer/model"
)

// WireValueKind is the closed set of value kinds the wire format carries.
// Anything outside this set degenerates to Null per C.5 of SPEC_FULL.md.
type WireValueKind string

const (
	KindText     WireValueKind = "text"
	KindNumber   WireValueKind = "number"
	KindEntity   WireValueKind = "entity"
	KindURI      WireValueKind = "uri"
	KindCheckbox WireValueKind = "checkbox"
	KindTime     WireValueKind = "time"
	KindGeo      WireValueKind = "geo_location"
	KindNull     WireValueKind = ""
)

// WireValue is a triple's value as it arrives off the wire, before it has
// been reduced to model.Value.
type WireValue struct {
	Kind WireValueKind
	Raw  string
}

// WireTriple names the entity/attribute a SetTriple/DeleteTriple targets,
// as raw protocol strings (not yet resolved to UUIDs).
type WireTriple struct {
	Entity    string
	Attribute string
	Value     *WireValue // nil for DeleteTriple
}

// WireOp is a single decoded op from an edit's ops[], still carrying
// protocol-level entity/attribute strings.
type WireOp struct {
	Kind   model.OpKind
	Triple *WireTriple
}

// Convert resolves a WireOp's entity/attribute strings to canonical UUIDs
// and reduces its value to model.Value. Value kinds outside the closed set
// degenerate to a Null value (Raw == "") rather than a conversion error, so
// the op is retained rather than dropped.
func Convert(op WireOp) (model.Op, error) {
	if op.Triple == nil {
		return model.Op{}, nil
	}
	entityID, err := ids.CanonicalizeUUID(op.Triple.Entity)
	if err != nil {
		return model.Op{}, err
	}
	attrID, err := ids.CanonicalizeUUID(op.Triple.Attribute)
	if err != nil {
		return model.Op{}, err
	}

	out := model.Op{Kind: op.Kind, Entity: entityID, Attribute: attrID}
	if op.Kind == model.OpDeleteTriple || op.Triple.Value == nil {
		return out, nil
	}

	v := model.Value{PropertyID: attrID}
	switch op.Triple.Value.Kind {
	case KindText, KindNumber, KindURI, KindCheckbox, KindTime, KindGeo:
		v.Raw = op.Triple.Value.Raw
	case KindEntity:
		v.Raw = op.Triple.Value.Raw
	default:
		// Unknown kind: degrade to Null, keep the op for forensics.
	}
	out.Value = v
	return out, nil
}

// resolvedEntityValue returns the raw value as a UUID whenever it parses as
// one, whatever the op's value kind (used to detect TYPES=RELATION and to
// read a relation's FROM_ENTITY/TO_ENTITY/RELATION_TYPE fields).
func resolvedEntityValue(op model.Op) (uuid.UUID, bool) {
	if op.Value.Raw == "" {
		return uuid.UUID{}, false
	}
	id, err := ids.CanonicalizeUUID(op.Value.Raw)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}
