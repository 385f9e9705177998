// Package chain defines the abstract blockchain event source the
// ingestion pipeline consumes: an ordered stream of block-scoped event
// batches, each comparable by cursor for resume and skip-ahead checks.
package chain

import (
	"context"
	"time"
)

// Cursor is an opaque position in the event stream. Two cursors from the
// same source are comparable by (BlockNumber, Ordinal); block number is
// strictly increasing within a source, per §4.6.
type Cursor struct {
	Opaque       string
	BlockNumber  uint64
	VersionIndex uint16
}

// LessOrEqual reports whether c is not strictly ahead of other, i.e.
// whether a block at c's position counts as already processed when
// resuming from other.
func (c Cursor) LessOrEqual(other Cursor) bool {
	if c.BlockNumber != other.BlockNumber {
		return c.BlockNumber < other.BlockNumber
	}
	return c.VersionIndex <= other.VersionIndex
}

// SpaceCreated mirrors a GeoSpaceCreated event.
type SpaceCreated struct {
	SpaceAddress string
	DaoAddress   string
}

// ProposalProcessed mirrors a ProposalProcessed event: a proposal whose
// content has been finalized on-chain, content still living on IPFS.
type ProposalProcessed struct {
	ProposalID    string
	PluginAddress string
	ContentURI    string
}

// EditorAdded/EditorRemoved/MemberAdded/MemberRemoved mirror the
// corresponding governance events: an account gaining or losing a role in
// a space.
type EditorAdded struct {
	PluginAddress string
	Account       string
}

type EditorRemoved struct {
	PluginAddress string
	Account       string
}

type MemberAdded struct {
	PluginAddress string
	Account       string
}

type MemberRemoved struct {
	PluginAddress string
	Account       string
}

// SubspaceAdded/SubspaceRemoved mirror a space being added/removed as a
// subspace of another.
type SubspaceAdded struct {
	ParentPluginAddress string
	SubspaceAddress     string
}

type SubspaceRemoved struct {
	ParentPluginAddress string
	SubspaceAddress     string
}

// VoteCast mirrors an account casting (or recasting) a vote on a proposal.
type VoteCast struct {
	ProposalID string
	Voter      string
	VoteType   string // "accept" | "reject"
}

// Events groups every event kind observed within one block, in source
// order within each slice.
type Events struct {
	SpacesCreated      []SpaceCreated
	ProposalsProcessed []ProposalProcessed
	EditorsAdded       []EditorAdded
	EditorsRemoved     []EditorRemoved
	MembersAdded       []MemberAdded
	MembersRemoved     []MemberRemoved
	SubspacesAdded     []SubspaceAdded
	SubspacesRemoved   []SubspaceRemoved
	VotesCast          []VoteCast
}

// BlockScopedData is one unit of the event stream: everything observed at
// a single block, plus the cursor positioned just after it.
type BlockScopedData struct {
	Cursor      Cursor
	BlockNumber uint64
	Timestamp   time.Time
	Events      Events
}

// Source is an ordered event stream. Next blocks until the next block's
// data is available, the context is canceled, or the stream ends.
type Source interface {
	Next(ctx context.Context) (*BlockScopedData, error)
}
