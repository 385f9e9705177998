package model

import "github.com/google/uuid"

// Relation is a directed, typed, space-scoped, versioned edge with its own
// identity and an optional property overlay. The source modeled relations
// both as edges and, in older paths, as nodes with FROM/TO edges; this
// model keeps the edge form exclusively.
type Relation struct {
	ID           uuid.UUID
	From         uuid.UUID
	To           uuid.UUID
	RelationType uuid.UUID
	SpaceID      uuid.UUID
	Index        string
	MinVersion   Version
	MaxVersion   Version // LiveUntil ("") while the relation has not been closed
	Properties   map[uuid.UUID]Value
}

// NewRelation constructs a live relation (MaxVersion = LiveUntil).
func NewRelation(id, from, to, relationType, spaceID uuid.UUID, index string, minVersion Version) *Relation {
	return &Relation{
		ID:           id,
		From:         from,
		To:           to,
		RelationType: relationType,
		SpaceID:      spaceID,
		Index:        index,
		MinVersion:   minVersion,
		MaxVersion:   LiveUntil,
		Properties:   map[uuid.UUID]Value{},
	}
}

// VisibleAt reports whether r is visible at version v.
func (r *Relation) VisibleAt(v Version) bool {
	return VisibleAt(r.MinVersion, r.MaxVersion, v)
}

// Close sets r's MaxVersion, ending its live interval. It never mutates
// history otherwise: the relation remains readable at any version before v.
func (r *Relation) Close(v Version) {
	r.MaxVersion = v
}

// Less orders two relations by Index, breaking ties by ID, matching the
// relation ordering invariant (I6).
func Less(a, b *Relation) bool {
	if a.Index != b.Index {
		return a.Index < b.Index
	}
	return a.ID.String() < b.ID.String()
}
