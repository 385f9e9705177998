package projection

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geo-kg/indexer/model"
	"github.com/geo-kg/indexer/query"
	"github.com/geo-kg/indexer/store"
)

func TestEntity_ReturnsNilWhenOverlayMissingInSpace(t *testing.T) {
	s := newFakeStore()
	spaceA, spaceB := uuid.New(), uuid.New()
	e := model.NewEntity(uuid.New())
	e.SetValue(spaceA, model.Value{PropertyID: model.NameAttr, Raw: "Alice"})
	s.entities[e.ID] = e

	p := New(s)

	found, err := p.Entity(context.Background(), e.ID, spaceA)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Alice", found.Overlays[spaceA].Values[model.NameAttr].Raw)

	missing, err := p.Entity(context.Background(), e.ID, spaceB)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEntity_ReturnsNilWhenEntityAbsent(t *testing.T) {
	p := New(newFakeStore())
	found, err := p.Entity(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestEntities_HydratesAndAppliesTypeFilter(t *testing.T) {
	s := newFakeStore()
	spaceID := uuid.New()
	personType := uuid.New()

	person := model.NewEntity(uuid.New())
	person.Types = []uuid.UUID{personType}
	person.SetValue(spaceID, model.Value{PropertyID: model.NameAttr, Raw: "Bob"})
	s.entities[person.ID] = person

	other := model.NewEntity(uuid.New())
	other.SetValue(spaceID, model.Value{PropertyID: model.NameAttr, Raw: "Acme"})
	s.entities[other.ID] = other

	s.manyEntities = []*model.Entity{model.NewEntity(person.ID), model.NewEntity(other.ID)}

	p := New(s)
	out, err := p.Entities(context.Background(), spaceID, EntityFilter{Types: []uuid.UUID{personType}}, nil, Pagination{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, person.ID, out[0].ID)
}

func TestPagination_ClampsZeroToDefaultAndCapsAtMax(t *testing.T) {
	skip, limit := Pagination{}.clamp()
	assert.Equal(t, 0, skip)
	assert.Equal(t, DefaultLimit, limit)

	_, limit = Pagination{Limit: MaxLimit + 500}.clamp()
	assert.Equal(t, MaxLimit, limit)

	skip, _ = Pagination{Skip: -5}.clamp()
	assert.Equal(t, 0, skip)
}

func TestRelation_ReturnsNilWhenSpaceMismatched(t *testing.T) {
	s := newFakeStore()
	spaceA, spaceB := uuid.New(), uuid.New()
	r := model.NewRelation(uuid.New(), uuid.New(), uuid.New(), uuid.New(), spaceA, "a0", model.NewVersion(1, 0))
	s.relations[r.ID] = r

	p := New(s)

	found, err := p.Relation(context.Background(), r.ID, spaceA)
	require.NoError(t, err)
	require.NotNil(t, found)

	missing, err := p.Relation(context.Background(), r.ID, spaceB)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRelations_ReturnsEmptyNotNilWhenStoreHasNone(t *testing.T) {
	p := New(newFakeStore())
	out, err := p.Relations(context.Background(), RelationFilter{}, nil, Pagination{})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestRelations_AppliesEdgeFilterAndOrderBy(t *testing.T) {
	s := newFakeStore()
	spaceID := uuid.New()
	r := model.NewRelation(uuid.New(), uuid.New(), uuid.New(), uuid.New(), spaceID, "a0", model.NewVersion(1, 0))
	s.manyRelations = []*model.Relation{r}

	p := New(s)
	out, err := p.Relations(context.Background(), RelationFilter{
		Wheres: []query.Subquery{query.EdgeFilter{SpaceID: &spaceID}},
	}, []query.FieldOrderBy{{Property: model.RelationIndexAttr}}, Pagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, r.ID, out[0].ID)
	assert.Contains(t, s.lastRelationsCypher, "r.space_id = $f0_space")
	assert.Contains(t, s.lastRelationsCypher, "ORDER BY")
	assert.Equal(t, spaceID.String(), s.lastRelationsParams["f0_space"])
	assert.Equal(t, model.RelationIndexAttr.String(), s.lastRelationsParams["ord0_prop"])
}

func TestTripleName_ResolvesAttributesOwnNameNotTripleValue(t *testing.T) {
	s := newFakeStore()
	spaceID := uuid.New()
	ageAttr := uuid.New()

	person := model.NewEntity(uuid.New())
	person.SetValue(spaceID, model.Value{PropertyID: ageAttr, Raw: "42"})
	s.entities[person.ID] = person

	attrEntity := model.NewEntity(ageAttr)
	attrEntity.SetValue(spaceID, model.Value{PropertyID: model.NameAttr, Raw: "Age"})
	s.entities[ageAttr] = attrEntity

	p := New(s)
	name, ok, err := p.TripleName(context.Background(), person.ID, ageAttr, spaceID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Age", name)
}

func TestTripleName_FalseWhenTripleDoesNotExist(t *testing.T) {
	s := newFakeStore()
	spaceID := uuid.New()
	person := model.NewEntity(uuid.New())
	s.entities[person.ID] = person

	p := New(s)
	_, ok, err := p.TripleName(context.Background(), person.ID, uuid.New(), spaceID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntityVersions_DerivesSortedBoundariesFromRelations(t *testing.T) {
	s := newFakeStore()
	spaceID := uuid.New()
	entityID := uuid.New()

	v1, v2, v3 := model.NewVersion(1, 0), model.NewVersion(2, 0), model.NewVersion(3, 0)
	closed := model.NewRelation(uuid.New(), entityID, uuid.New(), uuid.New(), spaceID, "a0", v1)
	closed.Close(v2)
	stillLive := model.NewRelation(uuid.New(), entityID, uuid.New(), uuid.New(), spaceID, "a1", v3)
	s.manyRelations = []*model.Relation{closed, stillLive}

	p := New(s)
	versions, err := p.EntityVersions(context.Background(), entityID, &spaceID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, v1, versions[0].Index)
	assert.Equal(t, v2, versions[1].Index)
	assert.Equal(t, v3, versions[2].Index)
	for _, v := range versions {
		assert.Equal(t, entityID, v.EntityID)
	}
}

func TestSemanticSearch_ClampsLimit(t *testing.T) {
	s := newFakeStore()
	s.semanticResults = []store.SemanticSearchResult{{EntityID: uuid.New(), Score: 0.9}}

	p := New(s)
	out, err := p.SemanticSearch(context.Background(), []float32{0.1, 0.2}, 0)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, DefaultLimit, s.lastSemanticN)

	_, err = p.SemanticSearch(context.Background(), []float32{0.1, 0.2}, MaxLimit+1)
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, s.lastSemanticN)
}
