package query

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueFilter_InEmptySetMatchesNothing(t *testing.T) {
	f := ValueFilter{Property: uuid.New(), Op: OpIn, In: nil}
	frag, err := f.Compile("e", "f0")
	require.NoError(t, err)
	assert.Equal(t, "false", frag.Clause)
}

func TestValueFilter_NotInEmptySetMatchesEverything(t *testing.T) {
	f := ValueFilter{Property: uuid.New(), Op: OpNotIn, In: nil}
	frag, err := f.Compile("e", "f0")
	require.NoError(t, err)
	assert.Equal(t, "true", frag.Clause)
}

func TestTypesFilter_EmptyMatchesNothing(t *testing.T) {
	f := TypesFilter{}
	frag, err := f.Compile("e", "f0")
	require.NoError(t, err)
	assert.Equal(t, "false", frag.Clause)
}

func TestBuilder_LimitZeroIsEmptyWithoutCompiling(t *testing.T) {
	b := New("e", "Entity").Limit(0)
	compiled, err := b.Compile()
	require.NoError(t, err)
	assert.True(t, compiled.Empty)
	assert.Empty(t, compiled.Cypher)
}

func TestBuilder_DuplicateParameterIsConflict(t *testing.T) {
	prop := uuid.New()
	b := New("e", "Entity").
		Where(ValueFilter{Property: prop, Op: OpEquals, Equals: "a"})

	// Force a collision: reuse the exact parameter namespace twice by
	// compiling the same filter instance at the same index is impossible
	// through the public API (namespaces are index-derived), so exercise
	// mergeParams directly via PropertyFilter nesting with a conflicting
	// raw map.
	_, err := mergeParams(map[string]interface{}{"x": 1}, map[string]interface{}{"x": 2})
	assert.Error(t, err)

	// Sanity: the builder itself still compiles cleanly with non-colliding
	// namespaces.
	_, err = b.Compile()
	assert.NoError(t, err)
}

func TestBuilder_CompilesWhereAndOrderBy(t *testing.T) {
	prop := uuid.New()
	nameProp := uuid.New()

	b := New("e", "Entity").
		Where(PropertyFilter{Property: prop}).
		OrderBy(FieldOrderBy{Property: nameProp, Direction: Asc}).
		Skip(5).
		Limit(10)

	compiled, err := b.Compile()
	require.NoError(t, err)
	assert.False(t, compiled.Empty)
	assert.Contains(t, compiled.Cypher, "MATCH (e:Entity)")
	assert.Contains(t, compiled.Cypher, "WHERE")
	assert.Contains(t, compiled.Cypher, "ORDER BY")
	assert.Contains(t, compiled.Cypher, "SKIP 5")
	assert.Contains(t, compiled.Cypher, "LIMIT 10")
	assert.Equal(t, prop.String(), compiled.Params["f0_has"])
}

func TestPropertyFilter_WithNestedValueFilter(t *testing.T) {
	prop := uuid.New()
	vf := ValueFilter{Op: OpEquals, Equals: "Alice"}
	f := PropertyFilter{Property: prop, Value: &vf}

	frag, err := f.Compile("e", "f0")
	require.NoError(t, err)
	assert.Contains(t, frag.Clause, "IN keys(e)")
	assert.Contains(t, frag.Clause, "e[$f0_v_prop] = $f0_v_eq")
	assert.Equal(t, "Alice", frag.Params["f0_v_eq"])
}

func TestEdgeFilter_DefaultsToCurrentVersion(t *testing.T) {
	f := EdgeFilter{}
	frag, err := f.Compile("r", "f0")
	require.NoError(t, err)
	assert.Contains(t, frag.Clause, "r.max_version = ''")
}
