// Package hierarchy resolves a space's parent-space graph: ancestor lookup,
// cycle-safe traversal, and the depth-ranked property resolution used when a
// space's own properties are absent and pluralistic lookup falls back to an
// ancestor space.
package hierarchy

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/model"
)

// SpaceRepository resolves a space's direct parents.
type SpaceRepository interface {
	ParentSpaces(spaceID uuid.UUID) ([]uuid.UUID, error)
}

// Ancestor is a space reached while walking up the parent-space graph, at the
// given BFS depth (0 = the starting space itself).
type Ancestor struct {
	SpaceID uuid.UUID
	Depth   int
}

// Ancestors performs a cycle-safe breadth-first walk of spaceID's parent
// chain and returns every space reached, ordered by increasing depth with
// first-seen-within-a-depth order preserved. spaceID itself is included at
// depth 0.
func Ancestors(repo SpaceRepository, spaceID uuid.UUID) ([]Ancestor, error) {
	visited := map[uuid.UUID]struct{}{spaceID: {}}
	frontier := []uuid.UUID{spaceID}
	result := []Ancestor{{SpaceID: spaceID, Depth: 0}}

	for depth := 1; len(frontier) > 0; depth++ {
		var next []uuid.UUID
		for _, id := range frontier {
			parents, err := repo.ParentSpaces(id)
			if err != nil {
				return nil, fmt.Errorf("resolving parents of %s: %w", id, err)
			}
			for _, parent := range parents {
				if _, seen := visited[parent]; seen {
					continue
				}
				visited[parent] = struct{}{}
				result = append(result, Ancestor{SpaceID: parent, Depth: depth})
				next = append(next, parent)
			}
		}
		frontier = next
	}

	return result, nil
}

// WouldCreateCycle reports whether adding spaceID as a descendant reachable
// from candidateParent would close a cycle back to spaceID — i.e. whether
// spaceID already appears in candidateParent's ancestor chain.
func WouldCreateCycle(repo SpaceRepository, spaceID, candidateParent uuid.UUID) (bool, error) {
	if spaceID == candidateParent {
		return true, nil
	}
	ancestors, err := Ancestors(repo, candidateParent)
	if err != nil {
		return false, err
	}
	for _, a := range ancestors {
		if a.SpaceID == spaceID {
			return true, nil
		}
	}
	return false, nil
}

// PropertyLookup resolves a property value for an entity, consulting a
// space and then, in pluralistic mode, its ancestors in depth order.
type PropertyLookup interface {
	// PropertyInSpace returns the value an entity has within a single
	// space, or ok=false if the space defines no such value.
	PropertyInSpace(spaceID, entityID, propertyID uuid.UUID) (value model.Value, ok bool, err error)
}

// ResolveProperty looks up an entity's property value in spaceID. When
// strict is true, only spaceID itself is consulted. When strict is false
// (pluralistic lookup), spaceID's ancestors are consulted in increasing
// depth order and the first value found wins — lowest depth wins, and
// within a depth the first-seen-in-BFS ancestor wins, matching the order
// Ancestors returns.
func ResolveProperty(repo SpaceRepository, lookup PropertyLookup, spaceID, entityID, propertyID uuid.UUID, strict bool) (model.Value, bool, error) {
	if strict {
		return lookup.PropertyInSpace(spaceID, entityID, propertyID)
	}

	ancestors, err := Ancestors(repo, spaceID)
	if err != nil {
		return model.Value{}, false, err
	}
	for _, a := range ancestors {
		value, ok, err := lookup.PropertyInSpace(a.SpaceID, entityID, propertyID)
		if err != nil {
			return model.Value{}, false, err
		}
		if ok {
			return value, true, nil
		}
	}
	return model.Value{}, false, nil
}
