package query

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/kgerr"
)

// CompiledQuery is a QueryBuilder rendered to a single parameterized Cypher
// statement.
type CompiledQuery struct {
	Cypher string
	Params map[string]interface{}
	// Empty is true when the builder determined the query can't return any
	// rows without executing (Limit == 0): callers should skip execution
	// entirely.
	Empty bool
}

// QueryBuilder composes an ordered list of subqueries anchored at a single
// variable into one parameterized query. Every subquery's parameters are
// namespaced by its position so two unrelated filters never collide by
// accident; an explicit collision (e.g. a caller reusing a namespace) is
// still caught and reported as ParameterConflict.
type QueryBuilder struct {
	anchorVar   string
	anchorLabel string
	subqueries  []Subquery
	orderBy     []FieldOrderBy
	skip        *int
	limit       *int
	returnExpr  string

	// matchPattern overrides the default "(anchorVar:anchorLabel)" MATCH
	// clause, for anchors that aren't a plain labelled node (a relation
	// edge, or an entity reached through its Properties overlay).
	matchPattern string
	// stableOrderVar names the variable whose .id breaks ORDER BY ties;
	// defaults to anchorVar.
	stableOrderVar string
	extraParams    map[string]interface{}
}

// New starts a QueryBuilder anchored at a node labelled label, bound to the
// Cypher variable varName.
func New(varName, label string) *QueryBuilder {
	return &QueryBuilder{anchorVar: varName, anchorLabel: label, returnExpr: varName}
}

// NewRelation starts a QueryBuilder anchored at a RELATION edge bound to
// varName. Subqueries (EdgeFilter, ValueFilter over relation properties)
// compile against varName, since relation properties are flattened
// directly onto the edge.
func NewRelation(varName string) *QueryBuilder {
	return &QueryBuilder{
		anchorVar:    varName,
		anchorLabel:  "RELATION",
		matchPattern: fmt.Sprintf("()-[%s:RELATION]->()", varName),
		returnExpr:   varName,
	}
}

// NewEntityOverlay starts a QueryBuilder for entities filtered by their
// per-space Properties overlay: subqueries compile against propsVar (the
// overlay node, whose values are flattened directly onto it), while the
// compiled query returns and orders by the owning Entity node (entityVar).
// spaceID is bound as a fixed parameter restricting the overlay to one
// space.
func NewEntityOverlay(entityVar, propsVar string, spaceID uuid.UUID) *QueryBuilder {
	return &QueryBuilder{
		anchorVar:      propsVar,
		anchorLabel:    "Properties",
		matchPattern:   fmt.Sprintf("(%s:Entity)-[:PROPERTIES]->(%s:Properties {space_id: $overlay_space_id})", entityVar, propsVar),
		stableOrderVar: entityVar,
		returnExpr:     entityVar,
		extraParams:    map[string]interface{}{"overlay_space_id": spaceID.String()},
	}
}

// Where adds a subquery contributing to the compiled WHERE clause.
func (b *QueryBuilder) Where(s Subquery) *QueryBuilder {
	b.subqueries = append(b.subqueries, s)
	return b
}

// OrderBy appends a sort key. Multiple calls compose in the order given,
// followed implicitly by entity id ascending for stability.
func (b *QueryBuilder) OrderBy(o FieldOrderBy) *QueryBuilder {
	b.orderBy = append(b.orderBy, o)
	return b
}

// Skip sets the number of leading rows, post-ordering, to discard.
func (b *QueryBuilder) Skip(n int) *QueryBuilder {
	b.skip = &n
	return b
}

// Limit sets the maximum number of rows returned. A limit of exactly 0
// short-circuits Compile to an Empty result with no query execution.
func (b *QueryBuilder) Limit(n int) *QueryBuilder {
	b.limit = &n
	return b
}

// Return overrides the default RETURN expression (the bare anchor
// variable).
func (b *QueryBuilder) Return(expr string) *QueryBuilder {
	b.returnExpr = expr
	return b
}

// Compile renders the builder into one parameterized Cypher query.
// Duplicate parameter keys across subqueries fail here with
// ParameterConflict rather than at execution.
func (b *QueryBuilder) Compile() (CompiledQuery, error) {
	if b.limit != nil && *b.limit == 0 {
		return CompiledQuery{Empty: true}, nil
	}

	params := map[string]interface{}{}
	for k, v := range b.extraParams {
		params[k] = v
	}
	var clauses []string
	for i, sub := range b.subqueries {
		namespace := fmt.Sprintf("f%d", i)
		frag, err := sub.Compile(b.anchorVar, namespace)
		if err != nil {
			return CompiledQuery{}, err
		}
		for k, v := range frag.Params {
			if _, exists := params[k]; exists {
				return CompiledQuery{}, kgerr.ParameterConflictErr("parameter %q bound by more than one subquery", k)
			}
			params[k] = v
		}
		clauses = append(clauses, frag.Clause)
	}

	matchClause := b.matchPattern
	if matchClause == "" {
		matchClause = fmt.Sprintf("(%s:%s)", b.anchorVar, b.anchorLabel)
	}

	var b2 strings.Builder
	fmt.Fprintf(&b2, "MATCH %s", matchClause)
	if len(clauses) > 0 {
		fmt.Fprintf(&b2, " WHERE %s", strings.Join(clauses, " AND "))
	}
	fmt.Fprintf(&b2, " RETURN %s", b.returnExpr)

	if len(b.orderBy) > 0 {
		var orderTerms []string
		for i, o := range b.orderBy {
			dir := "ASC"
			nullsClause := ""
			if o.Direction == Desc {
				dir = "DESC"
				nullsClause = fmt.Sprintf("CASE WHEN %s[$ord%d_prop] IS NULL THEN 1 ELSE 0 END DESC, ", b.anchorVar, i)
			} else {
				nullsClause = fmt.Sprintf("CASE WHEN %s[$ord%d_prop] IS NULL THEN 1 ELSE 0 END ASC, ", b.anchorVar, i)
			}
			params[fmt.Sprintf("ord%d_prop", i)] = o.Property.String()
			orderTerms = append(orderTerms, fmt.Sprintf("%s%s[$ord%d_prop] %s", nullsClause, b.anchorVar, i, dir))
		}
		stableVar := b.anchorVar
		if b.stableOrderVar != "" {
			stableVar = b.stableOrderVar
		}
		orderTerms = append(orderTerms, fmt.Sprintf("%s.id ASC", stableVar))
		fmt.Fprintf(&b2, " ORDER BY %s", strings.Join(orderTerms, ", "))
	}

	if b.skip != nil {
		fmt.Fprintf(&b2, " SKIP %d", *b.skip)
	}
	if b.limit != nil {
		fmt.Fprintf(&b2, " LIMIT %d", *b.limit)
	}

	return CompiledQuery{Cypher: b2.String(), Params: params}, nil
}
