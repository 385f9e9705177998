package model

import (
	"github.com/google/uuid"

	"github.com/geo-kg/indexer/ids"
)

// The reserved ids below mirror the canonical indexer-reserved UUIDs
// defined by the protocol: a fixed INDEXER space that hosts cross-space
// bookkeeping, plus the system attributes and relation types every
// installation agrees on regardless of which spaces it indexes.
var (
	// IndexerSpaceID is the reserved space hosting cursor, membership,
	// editor and subspace relations.
	IndexerSpaceID = uuid.MustParse("fc04f58f-e2bd-4662-ade7-eb6846bec3d6")

	CreatedAtTimestamp = uuid.MustParse("38efae7c-898a-44ce-89a0-ab4bad67d227")
	CreatedAtBlock     = uuid.MustParse("218ca5b1-14c6-41ff-af00-58eb2b913729")
	UpdatedAtTimestamp = uuid.MustParse("234e4099-b794-4014-8005-9db2561c2c81")
	UpdatedAtBlock     = uuid.MustParse("3739663e-5815-4323-987e-9969635fbe75")

	SpaceGovernanceType      = uuid.MustParse("631a6dc1-4084-498f-874f-1f3fe284b3ed")
	SpaceDaoAddress          = uuid.MustParse("712f426c-b724-4315-a979-f870484da2ec")
	SpacePluginAddress       = uuid.MustParse("3ccadec7-d838-4f08-879f-37b72c864a3b")
	SpaceVotingPluginAddress = uuid.MustParse("7c642815-d095-4504-8e62-2a3b64090c05")
	SpaceMemberPluginAddress = uuid.MustParse("4b0f05c8-54d5-4056-9da0-39db5f2050bf")
	SpacePersonalPluginAddr  = uuid.MustParse("723965ce-3dc6-40b4-85dd-bcee75193c8f")

	// MemberRelation: GEO_ACCOUNT -> MEMBER_RELATION -> space.
	MemberRelation = uuid.MustParse("0e8f17ee-4156-4b1c-9b42-9b24c2690bd1")
	// EditorRelation: GEO_ACCOUNT -> EDITOR_RELATION -> space.
	EditorRelation = uuid.MustParse("0894a01e-956e-457c-8fbb-bca05e2c0b3b")
	// ParentSpaceRelation: space -> PARENT_SPACE -> space.
	ParentSpaceRelation = uuid.MustParse("1e34c040-63fb-4165-88cb-8e5eacbe5d7e")

	CursorType         = uuid.MustParse("3bacc212-be34-44ab-95a4-5bb694a2c9e4")
	CursorID           = uuid.MustParse("43d42395-6373-409a-ad06-11710429a70b")
	CursorAttribute    = uuid.MustParse("2d8ef4e9-fb9b-4908-b3d1-8a714e16c7c6")
	BlockNumberAttr    = uuid.MustParse("3dc13be8-6cc9-2eee-cb41-f00dc956c7c6")
	BlockTimestampAttr = uuid.MustParse("44d9a4ee-598f-2b59-a3e8-0650f6617653")
	VersionAttr        = uuid.MustParse("7e6478f2-964f-2426-bbd1-52373735a32b")
)

// canonical derives a system id from a stable, human-readable name. These
// are not present in the upstream reserved-id table above, which only
// covers indexer bookkeeping; the rest of the closed vocabulary (reserved
// property and type ids referenced throughout ingestion and queries) is
// seeded the same way the protocol derives any other deterministic id.
func canonical(name string) uuid.UUID {
	return ids.Derive(name)
}

var (
	// TypesAttr links an entity to its type entities.
	TypesAttr = canonical("system:TYPES")
	// NameAttr is the designated text property the ingestion pipeline
	// derives an overlay's embedding from.
	NameAttr = canonical("system:NAME")
	// DescriptionAttr holds a human-readable description.
	DescriptionAttr = canonical("system:DESCRIPTION")
	// ValueTypeAttr links a Property entity to its DataType.
	ValueTypeAttr = canonical("system:VALUE_TYPE")
	// RelationTypeAttr records a Relation's own relation-type entity id.
	RelationTypeAttr = canonical("system:RELATION_TYPE")
	// FromEntityAttr and ToEntityAttr back a relation's endpoints when a
	// relation is expressed as TYPES=RELATION triples during ingestion.
	FromEntityAttr = canonical("system:FROM_ENTITY")
	ToEntityAttr   = canonical("system:TO_ENTITY")
	// RelationIndexAttr carries a relation's sort index during ingestion.
	RelationIndexAttr = canonical("system:RELATION_INDEX")

	// SchemaTypeEntity is the reserved type marking a Property or
	// canonical type entity as part of a space's schema.
	SchemaTypeEntity = canonical("system:SCHEMA_TYPE")
	// RelationTypeEntity is the canonical TYPES value that marks an
	// entity as a relation when op batching groups its triples.
	RelationTypeEntity = canonical("system:RELATION_TYPE_NODE")
	// PersonType and SpaceType are the bootstrap type entities the S3/S4
	// scenarios reference.
	PersonType = canonical("system:PERSON_TYPE")
	SpaceType  = canonical("system:SPACE_TYPE")

	// SubspaceRelation: space -> SUBSPACE -> space, a looser grouping
	// than PARENT_SPACE. Ingestion does not write it; subspace events write
	// ParentSpaceRelation.
	SubspaceRelation = canonical("system:SUBSPACE_RELATION")
	// VoteCastRelation: account -> VOTE_CAST -> proposal.
	VoteCastRelation = canonical("system:VOTE_CAST_RELATION")
	// VoteTypeAttr carries a VOTE_CAST relation's VoteType.
	VoteTypeAttr = canonical("system:VOTE_TYPE")
	// ProposalStatusAttr carries a proposal entity's ProposalStatus, set
	// under IndexerSpaceID alongside the other cross-space bookkeeping.
	ProposalStatusAttr = canonical("system:PROPOSAL_STATUS")
)
