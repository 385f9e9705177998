package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geo-kg/indexer/chain"
	"github.com/geo-kg/indexer/ids"
	"github.com/geo-kg/indexer/model"
)

func TestProcessBlock_CreatesSpaceAndAdvancesCursor(t *testing.T) {
	s := newFakeStore()
	p := NewPipeline(s, nil, nil, nil)
	ctx := context.Background()

	block := &chain.BlockScopedData{
		Cursor:      chain.Cursor{Opaque: "c10", BlockNumber: 10},
		BlockNumber: 10,
		Timestamp:   time.Unix(1000, 0).UTC(),
		Events: chain.Events{
			SpacesCreated: []chain.SpaceCreated{
				{SpaceAddress: "0xAAA", DaoAddress: "0xDAO1"},
			},
		},
	}

	require.NoError(t, p.ProcessBlock(ctx, block))

	spaceID := model.SpaceID("GEO", "0xDAO1")
	sp, ok := s.spaces[spaceID]
	require.True(t, ok)
	assert.Equal(t, "0xAAA", sp.SpacePluginAddress)

	cur, err := loadCursor(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), cur.BlockNumber)
	assert.Equal(t, "c10", cur.CursorOpaque)
}

func TestProcessBlock_StaleBlockIsSkipped(t *testing.T) {
	s := newFakeStore()
	p := NewPipeline(s, nil, nil, nil)
	ctx := context.Background()

	first := &chain.BlockScopedData{
		Cursor:      chain.Cursor{Opaque: "c10", BlockNumber: 10},
		BlockNumber: 10,
		Timestamp:   time.Unix(1000, 0).UTC(),
	}
	require.NoError(t, p.ProcessBlock(ctx, first))

	stale := &chain.BlockScopedData{
		Cursor:      chain.Cursor{Opaque: "c9", BlockNumber: 9},
		BlockNumber: 9,
		Timestamp:   time.Unix(900, 0).UTC(),
		Events: chain.Events{
			SpacesCreated: []chain.SpaceCreated{
				{SpaceAddress: "0xBBB", DaoAddress: "0xDAO2"},
			},
		},
	}
	require.NoError(t, p.ProcessBlock(ctx, stale))

	// the stale block's space must never have been created, and the cursor
	// must still reflect block 10.
	_, ok := s.spaces[model.SpaceID("GEO", "0xDAO2")]
	assert.False(t, ok)

	cur, err := loadCursor(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), cur.BlockNumber)
}

func TestProcessBlock_MembersAndEditors_UnknownSpaceSkippedWithoutFailing(t *testing.T) {
	s := newFakeStore()
	p := NewPipeline(s, nil, nil, nil)
	ctx := context.Background()

	block := &chain.BlockScopedData{
		Cursor:      chain.Cursor{Opaque: "c1", BlockNumber: 1},
		BlockNumber: 1,
		Timestamp:   time.Unix(1, 0).UTC(),
		Events: chain.Events{
			EditorsAdded: []chain.EditorAdded{
				{PluginAddress: "0xUNKNOWN", Account: "0xACC1"},
			},
		},
	}

	err := p.ProcessBlock(ctx, block)
	require.NoError(t, err)
	assert.Empty(t, s.relations)
}

func TestProcessBlock_EditorAddedThenRemoved(t *testing.T) {
	s := newFakeStore()
	p := NewPipeline(s, nil, nil, nil)
	ctx := context.Background()

	sp := model.NewSpace("GEO", "0xDAO1", model.GovernancePublic)
	sp.VotingPluginAddress = "0xPLUGIN"
	require.NoError(t, s.UpsertSpace(ctx, *sp))

	added := &chain.BlockScopedData{
		Cursor:      chain.Cursor{Opaque: "c1", BlockNumber: 1},
		BlockNumber: 1,
		Timestamp:   time.Unix(1, 0).UTC(),
		Events: chain.Events{
			EditorsAdded: []chain.EditorAdded{
				{PluginAddress: "0xPLUGIN", Account: "0xACC1"},
			},
		},
	}
	require.NoError(t, p.ProcessBlock(ctx, added))
	require.Len(t, s.relations, 1)

	var relID uuid.UUID
	for id, r := range s.relations {
		relID = id
		assert.Equal(t, model.LiveUntil, r.MaxVersion)
	}

	removed := &chain.BlockScopedData{
		Cursor:      chain.Cursor{Opaque: "c2", BlockNumber: 2},
		BlockNumber: 2,
		Timestamp:   time.Unix(2, 0).UTC(),
		Events: chain.Events{
			EditorsRemoved: []chain.EditorRemoved{
				{PluginAddress: "0xPLUGIN", Account: "0xACC1"},
			},
		},
	}
	require.NoError(t, p.ProcessBlock(ctx, removed))

	closed := s.relations[relID]
	require.NotNil(t, closed)
	assert.NotEqual(t, model.LiveUntil, closed.MaxVersion)
}

func TestProcessBlock_EditorAddedCarriesBlockVersion(t *testing.T) {
	s := newFakeStore()
	p := NewPipeline(s, nil, nil, nil)
	ctx := context.Background()

	sp := model.NewSpace("GEO", "0xDAO1", model.GovernancePublic)
	sp.VotingPluginAddress = "0xPLUGIN"
	require.NoError(t, s.UpsertSpace(ctx, *sp))

	block := &chain.BlockScopedData{
		Cursor:      chain.Cursor{Opaque: "c42", BlockNumber: 42, VersionIndex: 3},
		BlockNumber: 42,
		Timestamp:   time.Unix(1, 0).UTC(),
		Events: chain.Events{
			EditorsAdded: []chain.EditorAdded{
				{PluginAddress: "0xPLUGIN", Account: "0xACC1"},
			},
		},
	}
	require.NoError(t, p.ProcessBlock(ctx, block))

	require.Len(t, s.relations, 1)
	for _, r := range s.relations {
		assert.Equal(t, model.NewVersion(42, 3), r.MinVersion)
	}
}

func TestProcessBlock_ProposalExecutedIgnoresSubsequentVote(t *testing.T) {
	s := newFakeStore()
	p := NewPipeline(s, nil, nil, nil)
	ctx := context.Background()

	proposalID := ids.Derive("prop-executed")
	require.NoError(t, p.setProposalStatus(ctx, proposalID, model.ProposalExecuted))

	block := &chain.BlockScopedData{
		Cursor:      chain.Cursor{Opaque: "c1", BlockNumber: 1},
		BlockNumber: 1,
		Timestamp:   time.Unix(1, 0).UTC(),
		Events: chain.Events{
			VotesCast: []chain.VoteCast{
				{ProposalID: "prop-executed", Voter: "0xVOTER", VoteType: "accept"},
			},
		},
	}
	require.NoError(t, p.ProcessBlock(ctx, block))

	assert.Empty(t, s.relations)
}

func TestMarkProposalExecuted_IsIdempotentOnceExecuted(t *testing.T) {
	s := newFakeStore()
	p := NewPipeline(s, nil, nil, nil)
	ctx := context.Background()

	proposalID := ids.Derive("prop-7")
	require.NoError(t, p.markProposalExecuted(ctx, "prop-7"))
	status, err := p.proposalStatus(ctx, proposalID)
	require.NoError(t, err)
	assert.Equal(t, model.ProposalExecuted, status)

	// re-processing the same proposal must not error or change its status.
	require.NoError(t, p.markProposalExecuted(ctx, "prop-7"))
	status, err = p.proposalStatus(ctx, proposalID)
	require.NoError(t, err)
	assert.Equal(t, model.ProposalExecuted, status)
}

func TestProcessBlock_VoteCastReplacesPriorVote(t *testing.T) {
	s := newFakeStore()
	p := NewPipeline(s, nil, nil, nil)
	ctx := context.Background()

	firstVote := &chain.BlockScopedData{
		Cursor:      chain.Cursor{Opaque: "c1", BlockNumber: 1},
		BlockNumber: 1,
		Timestamp:   time.Unix(1, 0).UTC(),
		Events: chain.Events{
			VotesCast: []chain.VoteCast{
				{ProposalID: "prop-1", Voter: "0xVOTER", VoteType: "accept"},
			},
		},
	}
	require.NoError(t, p.ProcessBlock(ctx, firstVote))
	require.Len(t, s.relations, 1)

	var firstRelID uuid.UUID
	for id := range s.relations {
		firstRelID = id
	}

	secondVote := &chain.BlockScopedData{
		Cursor:      chain.Cursor{Opaque: "c2", BlockNumber: 2},
		BlockNumber: 2,
		Timestamp:   time.Unix(2, 0).UTC(),
		Events: chain.Events{
			VotesCast: []chain.VoteCast{
				{ProposalID: "prop-1", Voter: "0xVOTER", VoteType: "reject"},
			},
		},
	}
	require.NoError(t, p.ProcessBlock(ctx, secondVote))

	// the first vote's edge is closed, never deleted, and a new edge for
	// the second vote now exists alongside it.
	require.Len(t, s.relations, 2)
	assert.NotEqual(t, model.LiveUntil, s.relations[firstRelID].MaxVersion)

	liveCount := 0
	for _, r := range s.relations {
		if r.MaxVersion == model.LiveUntil {
			liveCount++
		}
	}
	assert.Equal(t, 1, liveCount)
}
