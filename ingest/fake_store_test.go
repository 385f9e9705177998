package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/model"
	"github.com/geo-kg/indexer/store"
)

// fakeStore is a minimal in-memory store.Store used to exercise Pipeline
// without a live Neo4j instance. It keeps just enough state to observe
// handler ordering, idempotency, and cursor advancement.
type fakeStore struct {
	mu sync.Mutex

	entities  map[uuid.UUID]*model.Entity
	relations map[uuid.UUID]*model.Relation
	spaces    map[uuid.UUID]model.Space
	byPlugin  map[string]uuid.UUID

	insertRelationCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entities:  map[uuid.UUID]*model.Entity{},
		relations: map[uuid.UUID]*model.Relation{},
		spaces:    map[uuid.UUID]model.Space{},
		byPlugin:  map[string]uuid.UUID{},
	}
}

func (f *fakeStore) UpsertEntity(ctx context.Context, in store.UpsertEntityInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.entities[in.ID]
	if !ok {
		e = model.NewEntity(in.ID)
		f.entities[in.ID] = e
	}
	for _, t := range in.Types {
		if !e.HasType(t) {
			e.Types = append(e.Types, t)
		}
	}
	for _, v := range in.Values {
		e.SetValue(in.SpaceID, v)
	}
	if in.Embedding != nil {
		o := e.OverlayIn(in.SpaceID)
		o.Embedding = in.Embedding
		e.Overlays[in.SpaceID] = o
	}
	return nil
}

func (f *fakeStore) FindEntity(ctx context.Context, id uuid.UUID) (*model.Entity, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entities[id]
	return e, ok, nil
}

func (f *fakeStore) FindMany(ctx context.Context, cypher string, params map[string]interface{}) ([]*model.Entity, error) {
	return nil, fmt.Errorf("fakeStore: FindMany not supported")
}

func (f *fakeStore) UnsetValues(ctx context.Context, id, spaceID uuid.UUID, propertyIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entities[id]
	if !ok {
		return nil
	}
	e.UnsetValues(spaceID, propertyIDs...)
	return nil
}

func (f *fakeStore) DeleteEntity(ctx context.Context, id, spaceID uuid.UUID, atVersion model.Version) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entities[id]; ok {
		delete(e.Overlays, spaceID)
	}
	return nil
}

func (f *fakeStore) InsertRelation(ctx context.Context, in store.InsertRelationInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertRelationCalls++
	r := model.NewRelation(in.ID, in.From, in.To, in.RelationType, in.SpaceID, in.Index, in.MinVersion)
	for _, v := range in.Properties {
		r.Properties[v.PropertyID] = v
	}
	f.relations[in.ID] = r
	return nil
}

func (f *fakeStore) InsertManyRelations(ctx context.Context, ins []store.InsertRelationInput) error {
	for _, in := range ins {
		if err := f.InsertRelation(ctx, in); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) UpdateRelation(ctx context.Context, in store.UpdateRelationInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.relations[in.ID]
	if !ok {
		return fmt.Errorf("fakeStore: relation %s not found", in.ID)
	}
	if in.Index != nil {
		r.Index = *in.Index
	}
	if in.RelationType != nil {
		r.RelationType = *in.RelationType
	}
	for _, v := range in.Properties {
		r.Properties[v.PropertyID] = v
	}
	return nil
}

func (f *fakeStore) DeleteRelation(ctx context.Context, id uuid.UUID, atVersion model.Version) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.relations[id]
	if !ok {
		return nil
	}
	r.Close(atVersion)
	return nil
}

func (f *fakeStore) FindRelation(ctx context.Context, id uuid.UUID) (*model.Relation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.relations[id]
	return r, ok, nil
}

// FindManyRelations is a linear scan over every stored relation, ignoring
// the supplied Cypher entirely: no test exercises relation-query filtering
// against the fake, only that the method satisfies store.Store.
func (f *fakeStore) FindManyRelations(ctx context.Context, cypher string, params map[string]interface{}) ([]*model.Relation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Relation, 0, len(f.relations))
	for _, r := range f.relations {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) ShortestPaths(ctx context.Context, from, to uuid.UUID, maxDepth int) ([][]uuid.UUID, error) {
	return nil, fmt.Errorf("fakeStore: ShortestPaths not supported")
}

func (f *fakeStore) SemanticSearch(ctx context.Context, queryVector []float32, n int, ratio float64) ([]store.SemanticSearchResult, error) {
	return nil, fmt.Errorf("fakeStore: SemanticSearch not supported")
}

func (f *fakeStore) CreateVectorIndex(ctx context.Context, name string, dim int) error {
	return nil
}

func (f *fakeStore) ParentSpaces(spaceID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeStore) UpsertSpace(ctx context.Context, s model.Space) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spaces[s.ID] = s
	if s.SpacePluginAddress != "" {
		f.byPlugin[s.SpacePluginAddress] = s.ID
	}
	if s.VotingPluginAddress != "" {
		f.byPlugin[s.VotingPluginAddress] = s.ID
	}
	if s.MemberPluginAddress != "" {
		f.byPlugin[s.MemberPluginAddress] = s.ID
	}
	if s.PersonalPluginAddress != "" {
		f.byPlugin[s.PersonalPluginAddress] = s.ID
	}
	return nil
}

func (f *fakeStore) FindSpaceByPluginAddress(ctx context.Context, addr string) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byPlugin[addr]
	return id, ok, nil
}

func (f *fakeStore) Close(ctx context.Context) error { return nil }

var _ store.Store = (*fakeStore)(nil)
