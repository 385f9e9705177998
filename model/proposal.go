package model

import "github.com/google/uuid"

// ProposalStatus is the closed set of proposal lifecycle states.
type ProposalStatus string

const (
	ProposalProposed ProposalStatus = "Proposed"
	ProposalAccepted ProposalStatus = "Accepted"
	ProposalRejected ProposalStatus = "Rejected"
	ProposalExecuted ProposalStatus = "Executed"
	ProposalCanceled ProposalStatus = "Canceled"
)

// ProposalTargetKind distinguishes what a proposal governs.
type ProposalTargetKind string

const (
	ProposalTargetMember   ProposalTargetKind = "Member"
	ProposalTargetEditor   ProposalTargetKind = "Editor"
	ProposalTargetSubspace ProposalTargetKind = "Subspace"
	ProposalTargetEdit     ProposalTargetKind = "Edit"
)

// Proposal carries a creator, a target, and a lifecycle status.
type Proposal struct {
	ID         uuid.UUID
	SpaceID    uuid.UUID
	Creator    uuid.UUID
	TargetKind ProposalTargetKind
	TargetID   uuid.UUID // e.g. the candidate member/editor account, subspace, or edit
	Status     ProposalStatus
}

// transitions enumerates the legal status transitions; anything not listed
// is rejected.
var transitions = map[ProposalStatus]map[ProposalStatus]bool{
	ProposalProposed: {ProposalAccepted: true, ProposalRejected: true, ProposalCanceled: true},
	ProposalAccepted: {ProposalExecuted: true},
}

// CanTransition reports whether moving from `from` to `to` is legal.
// Executed is terminal: no transition out of it is ever legal.
func CanTransition(from, to ProposalStatus) bool {
	return transitions[from][to]
}

// VoteType is the closed set of vote choices.
type VoteType string

const (
	VoteAccept VoteType = "Accept"
	VoteReject VoteType = "Reject"
)
