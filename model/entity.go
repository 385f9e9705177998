package model

import "github.com/google/uuid"

// Property is a first-class entity describing a schema slot: every value
// written under PropertyID must encode DataType.
type Property struct {
	ID       uuid.UUID
	DataType DataType
}

// Overlay is a single (entity, space) property map plus its optional
// embedding vector, used for semantic search. An entity may carry one
// overlay per space it has been written into; overlays are independent.
type Overlay struct {
	SpaceID   uuid.UUID
	Values    map[uuid.UUID]Value
	Embedding []float32
}

// Entity is a node identified by a UUID, carrying a set of type labels and,
// per space it appears in, an independent Overlay.
type Entity struct {
	ID       uuid.UUID
	Types    []uuid.UUID
	Overlays map[uuid.UUID]Overlay // keyed by space id
}

// NewEntity returns an Entity with no types and no overlays.
func NewEntity(id uuid.UUID) *Entity {
	return &Entity{ID: id, Overlays: map[uuid.UUID]Overlay{}}
}

// HasType reports whether typeID appears in e's type labels.
func (e *Entity) HasType(typeID uuid.UUID) bool {
	for _, t := range e.Types {
		if t == typeID {
			return true
		}
	}
	return false
}

// OverlayIn returns e's overlay for spaceID, creating an empty one on first
// access so callers can write into it directly.
func (e *Entity) OverlayIn(spaceID uuid.UUID) Overlay {
	if o, ok := e.Overlays[spaceID]; ok {
		return o
	}
	o := Overlay{SpaceID: spaceID, Values: map[uuid.UUID]Value{}}
	e.Overlays[spaceID] = o
	return o
}

// SetValue replaces any prior value for v.PropertyID within spaceID's
// overlay. Writing in one space never affects another space's overlay.
func (e *Entity) SetValue(spaceID uuid.UUID, v Value) {
	o := e.OverlayIn(spaceID)
	o.Values[v.PropertyID] = v
	e.Overlays[spaceID] = o
}

// UnsetValues removes propertyIDs from spaceID's overlay. Removing a key
// that is not present is a no-op.
func (e *Entity) UnsetValues(spaceID uuid.UUID, propertyIDs ...uuid.UUID) {
	o, ok := e.Overlays[spaceID]
	if !ok {
		return
	}
	for _, id := range propertyIDs {
		delete(o.Values, id)
	}
}

// ValueIn returns the value for propertyID within spaceID's overlay, or
// ok=false if the overlay doesn't exist or lacks that property.
func (e *Entity) ValueIn(spaceID, propertyID uuid.UUID) (Value, bool) {
	o, ok := e.Overlays[spaceID]
	if !ok {
		return Value{}, false
	}
	v, ok := o.Values[propertyID]
	return v, ok
}
