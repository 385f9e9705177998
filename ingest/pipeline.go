// Package ingest runs the indexer's ingestion pipeline (C6): per block, it
// resolves IPFS-referenced content, converts wire ops into graph-store
// mutations, and advances the singleton cursor, in the fixed handler order
// §4.6.5 requires for referential closure.
package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/geo-kg/indexer/cache"
	"github.com/geo-kg/indexer/chain"
	"github.com/geo-kg/indexer/ids"
	"github.com/geo-kg/indexer/ingest/ops"
	"github.com/geo-kg/indexer/model"
	"github.com/geo-kg/indexer/store"
)

// IPFSClient is the subset of ipfs.Client the pipeline needs; kept as a
// local interface so ingest doesn't import the ipfs package's HTTP
// concerns directly.
type IPFSClient interface {
	Get(ctx context.Context, hash string, verify bool) ([]byte, error)
}

// Pipeline wires the graph store, cache, and IPFS client into the
// ingestion handlers.
type Pipeline struct {
	Store  store.Store
	Cache  *cache.Cache
	IPFS   IPFSClient
	Logger *logrus.Logger
}

// NewPipeline builds a Pipeline. logger may be nil, in which case a
// standard logrus.New() is used.
func NewPipeline(s store.Store, c *cache.Cache, ipfsClient IPFSClient, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{Store: s, Cache: c, IPFS: ipfsClient, Logger: logger}
}

// ProcessBlock applies one block's events per §4.6: skip if stale, resolve
// IPFS content, apply handler groups in the fixed order, then advance the
// cursor. A failure after some mutations have landed but before the cursor
// is committed is safe to retry because every handler below is idempotent
// (re-applying the same SetTriple, the same MERGE-based relation insert,
// etc. converges to the same state).
func (p *Pipeline) ProcessBlock(ctx context.Context, block *chain.BlockScopedData) error {
	cur, err := loadCursor(ctx, p.Store)
	if err != nil {
		return err
	}
	candidate := model.Cursor{
		CursorOpaque:   block.Cursor.Opaque,
		BlockNumber:    block.Cursor.BlockNumber,
		BlockTimestamp: block.Timestamp,
		VersionIndex:   block.Cursor.VersionIndex,
	}
	if cur.BlockNumber != 0 && !cur.Advances(candidate) {
		p.Logger.WithField("block_number", block.BlockNumber).Debug("skipping already-processed block")
		return nil
	}

	lockKey := cache.LockKey(model.IndexerSpaceID.String(), block.BlockNumber)
	if p.Cache != nil {
		acquired, err := p.Cache.AcquireLock(ctx, lockKey, 0)
		if err == nil && !acquired {
			return fmt.Errorf("ingest: block %d already being written by another writer", block.BlockNumber)
		}
		if err == nil {
			defer p.Cache.ReleaseLock(ctx, lockKey)
		}
		// a cache error is advisory-only: ingestion still proceeds without the lock.
	}

	version := model.NewVersion(block.Cursor.BlockNumber, block.Cursor.VersionIndex)

	// (a) create spaces
	createdSpaceIDs, err := p.handleSpacesCreated(ctx, block.Events.SpacesCreated, block.Events.ProposalsProcessed)
	if err != nil {
		return err
	}

	// (b) upsert accounts is implicit: accounts are created lazily the
	// first time a membership/editor/vote relation references them, via
	// UpsertEntity's MERGE semantics.

	// (c) membership/editor/subspace relations
	if err := p.handleMembersAndEditors(ctx, block.Events, version); err != nil {
		return err
	}
	if err := p.handleSubspaces(ctx, block.Events.SubspacesAdded, block.Events.SubspacesRemoved, version); err != nil {
		return err
	}

	// (d) proposals (including vote casts and edit publication as part of
	// proposal processing)
	if err := p.handleProposalsProcessed(ctx, block.Events.ProposalsProcessed, createdSpaceIDs, version); err != nil {
		return err
	}
	if err := p.handleVotesCast(ctx, block.Events.VotesCast, version); err != nil {
		return err
	}

	// (e) edit ops were applied as part of (d); nothing further here.

	return storeCursor(ctx, p.Store, candidate)
}

// applyEdit converts an edit's wire ops into relation/property batches and
// writes them to the store. All relations go out in one InsertManyRelations
// call; property batches follow with separate UpsertEntity/UnsetValues calls
// per entity, so readers can observe an edit partly applied.
func (p *Pipeline) applyEdit(ctx context.Context, edit model.Edit, spaceID uuid.UUID, version model.Version) error {
	wireOps := make([]model.Op, len(edit.Ops))
	copy(wireOps, edit.Ops)

	relations, properties, failed := ops.BatchOps(wireOps)
	for _, f := range failed {
		p.Logger.WithField("entity_id", f).Warn("dropping relation batch: missing canonical field")
	}

	if len(relations) > 0 {
		ins := make([]store.InsertRelationInput, len(relations))
		for i, r := range relations {
			ins[i] = store.InsertRelationInput{
				ID:           r.EntityID,
				From:         r.From,
				To:           r.To,
				RelationType: r.RelationType,
				SpaceID:      spaceID,
				Index:        r.Index,
				MinVersion:   version,
				Properties:   r.Properties,
			}
		}
		if err := p.Store.InsertManyRelations(ctx, ins); err != nil {
			return err
		}
	}

	for _, pb := range properties {
		if len(pb.Sets) > 0 {
			if err := p.Store.UpsertEntity(ctx, store.UpsertEntityInput{
				ID:      pb.EntityID,
				SpaceID: spaceID,
				Values:  pb.Sets,
			}); err != nil {
				return err
			}
		}
		if len(pb.Unsets) > 0 {
			if err := p.Store.UnsetValues(ctx, pb.EntityID, spaceID, pb.Unsets); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pipeline) resolveAccountID(address string) uuid.UUID {
	return ids.Derive("GEO:" + address)
}
