// Package store defines the abstract graph-store contract (C4/C6) and its
// Neo4j-backed implementation: entity/relation CRUD and bulk variants,
// property-overlay semantics, semantic search, and shortest-path queries.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/model"
)

// UpsertEntityInput is the argument to UpsertEntity.
type UpsertEntityInput struct {
	ID        uuid.UUID
	SpaceID   uuid.UUID
	Values    []model.Value
	Types     []uuid.UUID
	Embedding []float32 // nil means "leave embedding unchanged"
}

// InsertRelationInput is the argument to InsertRelation.
type InsertRelationInput struct {
	ID           uuid.UUID
	From         uuid.UUID
	To           uuid.UUID
	RelationType uuid.UUID
	SpaceID      uuid.UUID
	MinVersion   model.Version
	Index        string
	Properties   []model.Value
}

// UpdateRelationInput carries the only fields a relation update may touch:
// its sort index, its relation-type, and property overlay entries to set.
type UpdateRelationInput struct {
	ID           uuid.UUID
	SpaceID      uuid.UUID
	Index        *string
	RelationType *uuid.UUID
	Properties   []model.Value
}

// FindManyOptions bounds a streaming FindMany query.
type FindManyOptions struct {
	OrderBy []model.Version // unused placeholder kept intentionally narrow; real ordering is expressed via query.FieldOrderBy at the caller and passed through Cypher
	Limit   int
	Skip    int
}

// SemanticSearchResult pairs an entity id with its similarity score.
type SemanticSearchResult struct {
	EntityID uuid.UUID
	Score    float32
}

// Store is the abstract property-graph backend the indexer writes through
// and queries against.
type Store interface {
	// Entity CRUD
	UpsertEntity(ctx context.Context, in UpsertEntityInput) error
	FindEntity(ctx context.Context, id uuid.UUID) (*model.Entity, bool, error)
	FindMany(ctx context.Context, cypher string, params map[string]interface{}) ([]*model.Entity, error)
	UnsetValues(ctx context.Context, id, spaceID uuid.UUID, propertyIDs []uuid.UUID) error
	DeleteEntity(ctx context.Context, id, spaceID uuid.UUID, atVersion model.Version) error

	// Relation CRUD
	InsertRelation(ctx context.Context, in InsertRelationInput) error
	InsertManyRelations(ctx context.Context, ins []InsertRelationInput) error
	UpdateRelation(ctx context.Context, in UpdateRelationInput) error
	DeleteRelation(ctx context.Context, id uuid.UUID, atVersion model.Version) error
	FindRelation(ctx context.Context, id uuid.UUID) (*model.Relation, bool, error)

	// FindManyRelations runs a caller-supplied parameterized Cypher query
	// (typically produced by query.QueryBuilder.Compile via
	// query.NewRelation) and materializes each returned relation row.
	FindManyRelations(ctx context.Context, cypher string, params map[string]interface{}) ([]*model.Relation, error)

	// Path finding, avoiding the canonical schema-type node
	// (model.SchemaTypeEntity).
	ShortestPaths(ctx context.Context, from, to uuid.UUID, maxDepth int) ([][]uuid.UUID, error)

	// Semantic search over the embedding vector index, widening the ANN
	// candidate set by ratio before returning the top n.
	SemanticSearch(ctx context.Context, queryVector []float32, n int, ratio float64) ([]SemanticSearchResult, error)

	// CreateVectorIndex ensures the cosine-similarity vector index used by
	// SemanticSearch exists, at the given dimensionality.
	CreateVectorIndex(ctx context.Context, name string, dim int) error

	// ParentSpaces satisfies hierarchy.SpaceRepository: the direct
	// PARENT_SPACE targets of spaceID.
	ParentSpaces(spaceID uuid.UUID) ([]uuid.UUID, error)

	// UpsertSpace records a space's identity and plugin addresses, so
	// later events addressed by plugin address can be resolved back to a
	// space id.
	UpsertSpace(ctx context.Context, s model.Space) error

	// FindSpaceByPluginAddress resolves the space whose space/voting/
	// member/personal plugin address matches addr (checksummed).
	FindSpaceByPluginAddress(ctx context.Context, addr string) (uuid.UUID, bool, error)

	Close(ctx context.Context) error
}
