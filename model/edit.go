package model

import (
	"github.com/google/uuid"

	"github.com/geo-kg/indexer/ids"
)

// OpKind distinguishes the two protocol-level wire mutations.
type OpKind int

const (
	OpSetTriple OpKind = iota
	OpDeleteTriple
)

// Op is a single protocol-level mutation decoded from an edit's ops[].
// SetTriple carries Value; DeleteTriple leaves it zero.
type Op struct {
	Kind      OpKind
	Entity    uuid.UUID
	Attribute uuid.UUID
	Value     Value
}

// Edit carries the content an EditPublished event references: a name, the
// content URI it was fetched from, its ops, and author account ids.
type Edit struct {
	ID         uuid.UUID
	Name       string
	ContentURI string
	Ops        []Op
	Authors    []uuid.UUID
}

// EditID derives an edit's id from its content URI, so the same IPFS blob
// always maps to the same edit entity.
func EditID(contentURI string) uuid.UUID {
	return ids.Derive(contentURI)
}
