// Package query implements the composable filter/subquery builder: each
// filter is a value that contributes a Cypher fragment plus named
// parameters, and a QueryBuilder composes them into one parameterized
// query. Parameter-key collisions across subqueries are a compile-time
// ParameterConflict, never a runtime surprise.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/kgerr"
	"github.com/geo-kg/indexer/model"
)

// Fragment is a piece of a compiled query: a Cypher boolean expression (for
// WHERE-clause contributors) plus the parameters it binds. Params keys are
// already namespaced by the owning subquery and must be globally unique
// within one compiled QueryBuilder.
type Fragment struct {
	Clause string
	Params map[string]interface{}
}

// Subquery is anything that can contribute a Fragment anchored at a given
// Cypher variable.
type Subquery interface {
	// Compile renders the subquery's clause using varName as the anchor
	// node/relationship variable, and namespace as a prefix guaranteed
	// unique among sibling subqueries in the same QueryBuilder.
	Compile(varName, namespace string) (Fragment, error)
}

// Inclusivity controls whether a Range comparison includes its bound.
type Inclusivity int

const (
	Exclusive Inclusivity = iota
	Inclusive
)

// ValueFilterOp is the closed set of comparison operators a ValueFilter may
// apply.
type ValueFilterOp int

const (
	OpEquals ValueFilterOp = iota
	OpNotEquals
	OpIn
	OpNotIn
	OpExists
	OpMatches
	OpRange
)

// ValueFilter constrains a property's value on the anchor node. Every
// operand is a string compared against the raw stored string, so Range
// bounds compare as strings too.
type ValueFilter struct {
	Property uuid.UUID
	Op       ValueFilterOp

	Equals  string
	In      []string
	Pattern string // for Matches

	RangeLo, RangeHi         string
	RangeLoIncl, RangeHiIncl Inclusivity

	Exists bool
}

// Compile renders the ValueFilter as a WHERE clause fragment over
// varName's Properties overlay, keyed by the given property.
//
// Edge cases: In/NotIn with an empty set degenerate, per the query-builder
// contract, to "match nothing"/"match everything" respectively, expressed
// as the plain boolean literals false/true so the caller's WHERE clause
// composes normally. Exists compiles to IS NOT NULL / IS NULL on the
// flattened key, so Exists false selects rows that lack the property.
func (f ValueFilter) Compile(varName, namespace string) (Fragment, error) {
	propParam := namespace + "_prop"
	// Neo4j has no nested-map property type, so an entity/relation's values
	// are flattened directly onto the node/relationship (keyed by property
	// UUID string) rather than living under a "values" map; dynamic
	// property access (varName[$key]) reads that flattened key.
	key := fmt.Sprintf("%s[$%s]", varName, propParam)
	params := map[string]interface{}{propParam: f.Property.String()}

	switch f.Op {
	case OpEquals:
		valParam := namespace + "_eq"
		params[valParam] = f.Equals
		return Fragment{Clause: fmt.Sprintf("%s = $%s", key, valParam), Params: params}, nil
	case OpNotEquals:
		valParam := namespace + "_neq"
		params[valParam] = f.Equals
		return Fragment{Clause: fmt.Sprintf("%s <> $%s", key, valParam), Params: params}, nil
	case OpIn:
		if len(f.In) == 0 {
			return Fragment{Clause: "false", Params: map[string]interface{}{}}, nil
		}
		valParam := namespace + "_in"
		params[valParam] = f.In
		return Fragment{Clause: fmt.Sprintf("%s IN $%s", key, valParam), Params: params}, nil
	case OpNotIn:
		if len(f.In) == 0 {
			return Fragment{Clause: "true", Params: map[string]interface{}{}}, nil
		}
		valParam := namespace + "_notin"
		params[valParam] = f.In
		return Fragment{Clause: fmt.Sprintf("NOT %s IN $%s", key, valParam), Params: params}, nil
	case OpExists:
		if f.Exists {
			return Fragment{Clause: fmt.Sprintf("%s IS NOT NULL", key), Params: params}, nil
		}
		return Fragment{Clause: fmt.Sprintf("%s IS NULL", key), Params: params}, nil
	case OpMatches:
		valParam := namespace + "_re"
		params[valParam] = f.Pattern
		return Fragment{Clause: fmt.Sprintf("%s =~ $%s", key, valParam), Params: params}, nil
	case OpRange:
		loOp, hiOp := ">", "<"
		if f.RangeLoIncl == Inclusive {
			loOp = ">="
		}
		if f.RangeHiIncl == Inclusive {
			hiOp = "<="
		}
		loParam, hiParam := namespace+"_lo", namespace+"_hi"
		params[loParam] = f.RangeLo
		params[hiParam] = f.RangeHi
		return Fragment{
			Clause: fmt.Sprintf("(%s %s $%s AND %s %s $%s)", key, loOp, loParam, key, hiOp, hiParam),
			Params: params,
		}, nil
	default:
		return Fragment{}, kgerr.ParameterConflictErr("value filter: unknown operator")
	}
}

// PropertyFilter selects entities whose Properties overlay contains
// Property, optionally constrained by a nested Value. A nil Value matches
// any entity carrying the property at all.
type PropertyFilter struct {
	Property uuid.UUID
	Value    *ValueFilter
}

func (f PropertyFilter) Compile(varName, namespace string) (Fragment, error) {
	propParam := namespace + "_has"
	params := map[string]interface{}{propParam: f.Property.String()}
	clause := fmt.Sprintf("$%s IN keys(%s)", propParam, varName)

	if f.Value == nil {
		return Fragment{Clause: clause, Params: params}, nil
	}

	nested := *f.Value
	nested.Property = f.Property
	nestedFrag, err := nested.Compile(varName, namespace+"_v")
	if err != nil {
		return Fragment{}, err
	}
	merged, err := mergeParams(params, nestedFrag.Params)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{Clause: fmt.Sprintf("(%s AND %s)", clause, nestedFrag.Clause), Params: merged}, nil
}

// EdgeFilter constrains relations by space, target entity, and visibility
// at a version.
type EdgeFilter struct {
	SpaceID   *uuid.UUID
	ToID      *uuid.UUID
	VersionAt *model.Version // nil means "current"
}

func (f EdgeFilter) Compile(varName, namespace string) (Fragment, error) {
	var clauses []string
	params := map[string]interface{}{}

	if f.SpaceID != nil {
		p := namespace + "_space"
		params[p] = f.SpaceID.String()
		clauses = append(clauses, fmt.Sprintf("%s.space_id = $%s", varName, p))
	}
	if f.ToID != nil {
		p := namespace + "_to"
		params[p] = f.ToID.String()
		clauses = append(clauses, fmt.Sprintf("%s.to_id = $%s", varName, p))
	}
	if f.VersionAt == nil {
		clauses = append(clauses, fmt.Sprintf("%s.max_version = ''", varName))
	} else {
		p := namespace + "_version"
		params[p] = string(*f.VersionAt)
		clauses = append(clauses,
			fmt.Sprintf("(%s.min_version <= $%s AND (%s.max_version = '' OR $%s < %s.max_version))",
				varName, p, varName, p, varName))
	}

	if len(clauses) == 0 {
		return Fragment{Clause: "true", Params: params}, nil
	}
	return Fragment{Clause: "(" + strings.Join(clauses, " AND ") + ")", Params: params}, nil
}

// TypesFilter selects entities whose types list property contains any
// entity in Types.
type TypesFilter struct {
	Types []uuid.UUID
}

func (f TypesFilter) Compile(varName, namespace string) (Fragment, error) {
	if len(f.Types) == 0 {
		return Fragment{Clause: "false", Params: map[string]interface{}{}}, nil
	}
	p := namespace + "_types"
	ids := make([]string, len(f.Types))
	for i, t := range f.Types {
		ids[i] = t.String()
	}
	return Fragment{
		Clause: fmt.Sprintf("any(t IN %s.types WHERE t IN $%s)", varName, p),
		Params: map[string]interface{}{p: ids},
	}, nil
}

// VersionFilter selects either "current" (empty max_version) or "at a given
// version" visibility by the anchor's min_version/max_version keys.
// Properties overlay nodes written by store.Neo4jStore carry no version
// keys, so anchored at an overlay it matches no rows.
type VersionFilter struct {
	At *model.Version // nil means current
}

func (f VersionFilter) Compile(varName, namespace string) (Fragment, error) {
	if f.At == nil {
		return Fragment{Clause: fmt.Sprintf("%s.max_version = ''", varName), Params: map[string]interface{}{}}, nil
	}
	p := namespace + "_version"
	return Fragment{
		Clause: fmt.Sprintf("(%s.min_version <= $%s AND (%s.max_version = '' OR $%s < %s.max_version))",
			varName, p, varName, p, varName),
		Params: map[string]interface{}{p: string(*f.At)},
	}, nil
}

// SortDirection is Asc or Desc.
type SortDirection int

const (
	Asc SortDirection = iota
	Desc
)

// FieldOrderBy orders results by a property's value, secondary-sorted by
// entity id ascending for stability. Entities missing the property sort to
// the end on Asc and the start on Desc.
type FieldOrderBy struct {
	Property  uuid.UUID
	Direction SortDirection
}

func mergeParams(sets ...map[string]interface{}) (map[string]interface{}, error) {
	merged := map[string]interface{}{}
	var keys []string
	for _, set := range sets {
		for k := range set {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	seen := map[string]struct{}{}
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			return nil, kgerr.ParameterConflictErr("duplicate query parameter %q", k)
		}
		seen[k] = struct{}{}
	}
	for _, set := range sets {
		for k, v := range set {
			merged[k] = v
		}
	}
	return merged, nil
}
