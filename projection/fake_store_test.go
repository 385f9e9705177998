package projection

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/model"
	"github.com/geo-kg/indexer/store"
)

// fakeStore is a minimal in-memory store.Store for projection tests. It
// does not interpret Cypher: FindMany/FindManyRelations return whatever was
// pre-loaded into manyEntities/manyRelations, exactly as the filter/order/
// pagination logic already compiled into the Cypher string would have
// selected in a real backend. This lets projection tests exercise the
// hydration and post-filtering logic projection itself owns, without
// reimplementing a Cypher interpreter.
type fakeStore struct {
	entities  map[uuid.UUID]*model.Entity
	relations map[uuid.UUID]*model.Relation

	manyEntities  []*model.Entity
	manyRelations []*model.Relation

	semanticResults []store.SemanticSearchResult

	lastRelationsCypher string
	lastRelationsParams map[string]interface{}
	lastSemanticN       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entities:  map[uuid.UUID]*model.Entity{},
		relations: map[uuid.UUID]*model.Relation{},
	}
}

func (f *fakeStore) UpsertEntity(ctx context.Context, in store.UpsertEntityInput) error {
	return fmt.Errorf("fakeStore: UpsertEntity not supported")
}

func (f *fakeStore) FindEntity(ctx context.Context, id uuid.UUID) (*model.Entity, bool, error) {
	e, ok := f.entities[id]
	return e, ok, nil
}

func (f *fakeStore) FindMany(ctx context.Context, cypher string, params map[string]interface{}) ([]*model.Entity, error) {
	return f.manyEntities, nil
}

func (f *fakeStore) UnsetValues(ctx context.Context, id, spaceID uuid.UUID, propertyIDs []uuid.UUID) error {
	return fmt.Errorf("fakeStore: UnsetValues not supported")
}

func (f *fakeStore) DeleteEntity(ctx context.Context, id, spaceID uuid.UUID, atVersion model.Version) error {
	return fmt.Errorf("fakeStore: DeleteEntity not supported")
}

func (f *fakeStore) InsertRelation(ctx context.Context, in store.InsertRelationInput) error {
	return fmt.Errorf("fakeStore: InsertRelation not supported")
}

func (f *fakeStore) InsertManyRelations(ctx context.Context, ins []store.InsertRelationInput) error {
	return fmt.Errorf("fakeStore: InsertManyRelations not supported")
}

func (f *fakeStore) UpdateRelation(ctx context.Context, in store.UpdateRelationInput) error {
	return fmt.Errorf("fakeStore: UpdateRelation not supported")
}

func (f *fakeStore) DeleteRelation(ctx context.Context, id uuid.UUID, atVersion model.Version) error {
	return fmt.Errorf("fakeStore: DeleteRelation not supported")
}

func (f *fakeStore) FindRelation(ctx context.Context, id uuid.UUID) (*model.Relation, bool, error) {
	r, ok := f.relations[id]
	return r, ok, nil
}

func (f *fakeStore) FindManyRelations(ctx context.Context, cypher string, params map[string]interface{}) ([]*model.Relation, error) {
	f.lastRelationsCypher, f.lastRelationsParams = cypher, params
	return f.manyRelations, nil
}

func (f *fakeStore) ShortestPaths(ctx context.Context, from, to uuid.UUID, maxDepth int) ([][]uuid.UUID, error) {
	return nil, fmt.Errorf("fakeStore: ShortestPaths not supported")
}

func (f *fakeStore) SemanticSearch(ctx context.Context, queryVector []float32, n int, ratio float64) ([]store.SemanticSearchResult, error) {
	f.lastSemanticN = n
	return f.semanticResults, nil
}

func (f *fakeStore) CreateVectorIndex(ctx context.Context, name string, dim int) error {
	return nil
}

func (f *fakeStore) ParentSpaces(spaceID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeStore) UpsertSpace(ctx context.Context, s model.Space) error {
	return fmt.Errorf("fakeStore: UpsertSpace not supported")
}

func (f *fakeStore) FindSpaceByPluginAddress(ctx context.Context, addr string) (uuid.UUID, bool, error) {
	return uuid.UUID{}, false, nil
}

func (f *fakeStore) Close(ctx context.Context) error { return nil }

var _ store.Store = (*fakeStore)(nil)
