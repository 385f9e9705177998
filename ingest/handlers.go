package ingest

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/chain"
	"github.com/geo-kg/indexer/ids"
	"github.com/geo-kg/indexer/ingest/ops"
	"github.com/geo-kg/indexer/model"
	"github.com/geo-kg/indexer/store"
	"github.com/geo-kg/indexer/worker"
)

// importDoc mirrors the subset of a GRC-20 Import blob the space-created
// handler needs: the forked space's prior network/address, so a forked
// space keeps the same id it had before the fork (C.3 of SPEC_FULL.md).
type importDoc struct {
	PreviousNetwork         string   `json:"previous_network"`
	PreviousContractAddress string   `json:"previous_contract_address"`
	Edits                   []string `json:"edits"`
}

// editDoc mirrors a GRC-20 Edit blob.
type editDoc struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Authors []string    `json:"authors"`
	Ops     []wireOpDoc `json:"ops"`
}

type wireOpDoc struct {
	Type   string         `json:"type"`
	Triple *wireTripleDoc `json:"triple"`
}

type wireTripleDoc struct {
	Entity    string        `json:"entity"`
	Attribute string        `json:"attribute"`
	Value     *wireValueDoc `json:"value"`
}

type wireValueDoc struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// handleSpacesCreated creates a Space entity for every GeoSpaceCreated
// event, resolving forked-space identity via a paired ProposalProcessed
// event's IPFS-hosted Import document when present. Returns the created
// space ids in event order.
func (p *Pipeline) handleSpacesCreated(ctx context.Context, created []chain.SpaceCreated, proposals []chain.ProposalProcessed) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, event := range created {
		spaceID := model.SpaceID("GEO", event.DaoAddress)

		for _, proposal := range proposals {
			matched, err := sameChecksummedAddress(proposal.PluginAddress, event.SpaceAddress)
			if err != nil {
				continue
			}
			if !matched {
				continue
			}
			var imp importDoc
			if err := p.fetchJSON(ctx, proposal.ContentURI, &imp); err != nil {
				continue
			}
			if imp.PreviousNetwork != "" && imp.PreviousContractAddress != "" {
				spaceID = model.SpaceID(imp.PreviousNetwork, imp.PreviousContractAddress)
			}
			break
		}

		sp := model.NewSpace("GEO", event.DaoAddress, model.GovernancePublic)
		sp.ID = spaceID
		sp.SpacePluginAddress = event.SpaceAddress
		if err := p.Store.UpsertSpace(ctx, *sp); err != nil {
			return nil, err
		}
		out = append(out, spaceID)
	}
	return out, nil
}

func sameChecksummedAddress(a, b string) (bool, error) {
	ca, err := ids.Checksum(a, nil)
	if err != nil {
		return false, err
	}
	cb, err := ids.Checksum(b, nil)
	if err != nil {
		return false, err
	}
	return ca == cb, nil
}

// handleMembersAndEditors applies every editor/member add/remove event,
// resolving the target space by its voting/member plugin address. Events
// referencing an unknown space are skipped, never failing the whole block;
// add events for an unknown space are also logged.
func (p *Pipeline) handleMembersAndEditors(ctx context.Context, events chain.Events, version model.Version) error {
	for _, e := range events.EditorsAdded {
		spaceID, found, err := p.Store.FindSpaceByPluginAddress(ctx, e.PluginAddress)
		if err != nil {
			return err
		}
		if !found {
			p.Logger.WithField("plugin_address", e.PluginAddress).Warn("editor added for unknown space")
			continue
		}
		if err := p.upsertRoleRelation(ctx, model.EditorRelation, e.Account, spaceID, version); err != nil {
			return err
		}
	}
	for _, e := range events.EditorsRemoved {
		spaceID, found, err := p.Store.FindSpaceByPluginAddress(ctx, e.PluginAddress)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		if err := p.closeRoleRelation(ctx, model.EditorRelation, e.Account, spaceID, version); err != nil {
			return err
		}
	}
	for _, e := range events.MembersAdded {
		spaceID, found, err := p.Store.FindSpaceByPluginAddress(ctx, e.PluginAddress)
		if err != nil {
			return err
		}
		if !found {
			p.Logger.WithField("plugin_address", e.PluginAddress).Warn("member added for unknown space")
			continue
		}
		if err := p.upsertRoleRelation(ctx, model.MemberRelation, e.Account, spaceID, version); err != nil {
			return err
		}
	}
	for _, e := range events.MembersRemoved {
		spaceID, found, err := p.Store.FindSpaceByPluginAddress(ctx, e.PluginAddress)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		if err := p.closeRoleRelation(ctx, model.MemberRelation, e.Account, spaceID, version); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) upsertRoleRelation(ctx context.Context, relationType uuid.UUID, account string, spaceID uuid.UUID, version model.Version) error {
	accountID := p.resolveAccountID(account)
	relID := ids.Derive(relationType.String() + ":" + accountID.String() + ":" + spaceID.String())
	return p.Store.InsertRelation(ctx, store.InsertRelationInput{
		ID:           relID,
		From:         accountID,
		To:           spaceID,
		RelationType: relationType,
		SpaceID:      model.IndexerSpaceID,
		MinVersion:   version,
	})
}

func (p *Pipeline) closeRoleRelation(ctx context.Context, relationType uuid.UUID, account string, spaceID uuid.UUID, version model.Version) error {
	accountID := p.resolveAccountID(account)
	relID := ids.Derive(relationType.String() + ":" + accountID.String() + ":" + spaceID.String())
	return p.Store.DeleteRelation(ctx, relID, version)
}

// handleSubspaces applies subspace add/remove events, writing/closing a
// PARENT_SPACE relation from the subspace to its parent.
func (p *Pipeline) handleSubspaces(ctx context.Context, added []chain.SubspaceAdded, removed []chain.SubspaceRemoved, version model.Version) error {
	for _, e := range added {
		parentID, found, err := p.Store.FindSpaceByPluginAddress(ctx, e.ParentPluginAddress)
		if err != nil {
			return err
		}
		if !found {
			p.Logger.WithField("plugin_address", e.ParentPluginAddress).Warn("subspace added to unknown parent space")
			continue
		}
		subspaceID := model.SpaceID("GEO", e.SubspaceAddress)
		relID := ids.Derive(model.ParentSpaceRelation.String() + ":" + subspaceID.String() + ":" + parentID.String())
		if err := p.Store.InsertRelation(ctx, store.InsertRelationInput{
			ID:           relID,
			From:         subspaceID,
			To:           parentID,
			RelationType: model.ParentSpaceRelation,
			SpaceID:      model.IndexerSpaceID,
			MinVersion:   version,
		}); err != nil {
			return err
		}
	}
	for _, e := range removed {
		parentID, found, err := p.Store.FindSpaceByPluginAddress(ctx, e.ParentPluginAddress)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		subspaceID := model.SpaceID("GEO", e.SubspaceAddress)
		relID := ids.Derive(model.ParentSpaceRelation.String() + ":" + subspaceID.String() + ":" + parentID.String())
		if err := p.Store.DeleteRelation(ctx, relID, version); err != nil {
			return err
		}
	}
	return nil
}

// handleProposalsProcessed fetches each proposal's finalized content from
// IPFS, decodes it as either a single Edit or an Import (whose referenced
// edits are fetched concurrently, bounded fan-out), and applies every
// resulting edit's ops.
func (p *Pipeline) handleProposalsProcessed(ctx context.Context, proposals []chain.ProposalProcessed, createdSpaceIDs []uuid.UUID, version model.Version) error {
	for _, proposal := range proposals {
		spaceID, found, err := p.Store.FindSpaceByPluginAddress(ctx, proposal.PluginAddress)
		if !found || err != nil {
			p.Logger.WithField("plugin_address", proposal.PluginAddress).Warn("proposal processed for unknown space")
			continue
		}

		var meta struct {
			Type string `json:"type"`
		}
		if err := p.fetchJSON(ctx, proposal.ContentURI, &meta); err != nil {
			p.Logger.WithError(err).Warn("failed to fetch proposal content")
			continue
		}

		switch meta.Type {
		case "AddEdit":
			var doc editDoc
			if err := p.fetchJSON(ctx, proposal.ContentURI, &doc); err != nil {
				continue
			}
			if err := p.applyEditDoc(ctx, doc, spaceID, version); err != nil {
				return err
			}
			if err := p.markProposalExecuted(ctx, proposal.ProposalID); err != nil {
				return err
			}
		case "ImportSpace":
			var imp importDoc
			if err := p.fetchJSON(ctx, proposal.ContentURI, &imp); err != nil {
				continue
			}
			docs, err := worker.RunIndexed(ctx, worker.NewPool(10), len(imp.Edits), func(ctx context.Context, i int) (*editDoc, error) {
				var doc editDoc
				if err := p.fetchJSON(ctx, imp.Edits[i], &doc); err != nil {
					p.Logger.WithError(err).Warn("failed to fetch imported edit")
					return nil, nil
				}
				return &doc, nil
			})
			if err != nil {
				return err
			}
			for _, doc := range docs {
				if doc == nil {
					continue
				}
				if err := p.applyEditDoc(ctx, *doc, spaceID, version); err != nil {
					return err
				}
			}
			if err := p.markProposalExecuted(ctx, proposal.ProposalID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pipeline) applyEditDoc(ctx context.Context, doc editDoc, spaceID uuid.UUID, version model.Version) error {
	edit := model.Edit{ID: model.EditID(doc.ID), Name: doc.Name}
	for _, a := range doc.Authors {
		edit.Authors = append(edit.Authors, p.resolveAccountID(a))
	}

	var resolved []model.Op
	for _, wo := range doc.Ops {
		if wo.Triple == nil {
			continue
		}
		op, err := ops.Convert(wo.toWireOp())
		if err != nil {
			continue
		}
		resolved = append(resolved, op)
	}
	edit.Ops = resolved

	return p.applyEdit(ctx, edit, spaceID, version)
}

// proposalStatus resolves a proposal's current lifecycle status, defaulting
// to Proposed for a proposal this indexer has not seen marked otherwise.
func (p *Pipeline) proposalStatus(ctx context.Context, proposalID uuid.UUID) (model.ProposalStatus, error) {
	e, found, err := p.Store.FindEntity(ctx, proposalID)
	if err != nil {
		return "", err
	}
	if !found {
		return model.ProposalProposed, nil
	}
	overlay, ok := e.Overlays[model.IndexerSpaceID]
	if !ok {
		return model.ProposalProposed, nil
	}
	v, ok := overlay.Values[model.ProposalStatusAttr]
	if !ok {
		return model.ProposalProposed, nil
	}
	return model.ProposalStatus(v.Raw), nil
}

func (p *Pipeline) setProposalStatus(ctx context.Context, proposalID uuid.UUID, status model.ProposalStatus) error {
	return p.Store.UpsertEntity(ctx, store.UpsertEntityInput{
		ID:      proposalID,
		SpaceID: model.IndexerSpaceID,
		Values:  []model.Value{{PropertyID: model.ProposalStatusAttr, Raw: string(status)}},
	})
}

// markProposalExecuted transitions rawProposalID to Executed, the status a
// ProposalProcessed event signals (this indexer's event catalogue carries no
// separate "proposal accepted" event, so a proposal's first observed
// ProposalProcessed is treated as passing through Accepted on its way to
// Executed). A proposal already Executed is left untouched: Executed is
// terminal (S6), so re-processing the same proposal is a no-op rather than
// an illegal transition.
func (p *Pipeline) markProposalExecuted(ctx context.Context, rawProposalID string) error {
	proposalID := ids.Derive(rawProposalID)
	status, err := p.proposalStatus(ctx, proposalID)
	if err != nil {
		return err
	}
	if status == model.ProposalExecuted {
		return nil
	}
	if status == model.ProposalProposed {
		status = model.ProposalAccepted
	}
	if !model.CanTransition(status, model.ProposalExecuted) {
		p.Logger.WithField("proposal_id", rawProposalID).Warn("proposal cannot transition to Executed, skipping")
		return nil
	}
	return p.setProposalStatus(ctx, proposalID, model.ProposalExecuted)
}

// handleVotesCast applies a VOTE_CAST relation for each vote, closing any
// prior vote from the same account on the same proposal first so a second
// vote replaces rather than duplicates (C.4 of SPEC_FULL.md). A vote against
// a proposal already Executed is a no-op (S6): Executed is terminal.
func (p *Pipeline) handleVotesCast(ctx context.Context, votes []chain.VoteCast, version model.Version) error {
	for _, v := range votes {
		proposalID := ids.Derive(v.ProposalID)

		status, err := p.proposalStatus(ctx, proposalID)
		if err != nil {
			return err
		}
		if status == model.ProposalExecuted {
			p.Logger.WithField("proposal_id", v.ProposalID).Debug("vote cast against executed proposal, ignoring")
			continue
		}

		voterID := p.resolveAccountID(v.Voter)

		for _, priorType := range []string{"accept", "reject"} {
			if priorType == v.VoteType {
				continue
			}
			priorRelID := ids.Derive(model.VoteCastRelation.String() + ":" + voterID.String() + ":" + proposalID.String() + ":" + priorType)
			prior, found, err := p.Store.FindRelation(ctx, priorRelID)
			if err != nil {
				return err
			}
			if found && prior.MaxVersion == model.LiveUntil {
				if err := p.Store.DeleteRelation(ctx, priorRelID, version); err != nil {
					return err
				}
			}
		}

		newRelID := ids.Derive(model.VoteCastRelation.String() + ":" + voterID.String() + ":" + proposalID.String() + ":" + v.VoteType)
		if err := p.Store.InsertRelation(ctx, store.InsertRelationInput{
			ID:           newRelID,
			From:         voterID,
			To:           proposalID,
			RelationType: model.VoteCastRelation,
			SpaceID:      model.IndexerSpaceID,
			MinVersion:   version,
			Properties:   []model.Value{{PropertyID: model.VoteTypeAttr, Raw: v.VoteType}},
		}); err != nil {
			return err
		}
	}
	return nil
}

// toWireOp adapts the JSON-decoded shape to ops.WireOp, so conversion
// (entity/attribute resolution, unknown-kind degradation) happens in one
// place.
func (wo wireOpDoc) toWireOp() ops.WireOp {
	kind := model.OpSetTriple
	if wo.Type == "DeleteTriple" {
		kind = model.OpDeleteTriple
	}
	if wo.Triple == nil {
		return ops.WireOp{Kind: kind}
	}

	out := ops.WireOp{Kind: kind, Triple: &ops.WireTriple{
		Entity:    wo.Triple.Entity,
		Attribute: wo.Triple.Attribute,
	}}
	if wo.Triple.Value != nil {
		out.Triple.Value = &ops.WireValue{
			Kind: ops.WireValueKind(wo.Triple.Value.Type),
			Raw:  wo.Triple.Value.Value,
		}
	}
	return out
}

func (p *Pipeline) fetchJSON(ctx context.Context, contentURI string, dest interface{}) error {
	data, err := p.IPFS.Get(ctx, contentURI, true)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
