package model

import (
	"github.com/google/uuid"

	"github.com/geo-kg/indexer/ids"
)

// GovernanceType distinguishes a space's governance model.
type GovernanceType string

const (
	GovernancePublic   GovernanceType = "Public"
	GovernancePersonal GovernanceType = "Personal"
)

// Space is the entity bound to (network, dao_address) that scopes property
// overlays and relations. Its id is deterministic: derive(network + ":" +
// dao_address), so the same on-chain DAO always maps to the same space.
type Space struct {
	ID                    uuid.UUID
	Network               string
	DaoAddress            string
	GovernanceType        GovernanceType
	SpacePluginAddress    string
	VotingPluginAddress   string
	MemberPluginAddress   string
	PersonalPluginAddress string
}

// SpaceID derives a space's canonical id from its network and (already
// checksummed) dao address.
func SpaceID(network, daoAddress string) uuid.UUID {
	return ids.Derive(network + ":" + daoAddress)
}

// NewSpace builds a Space with its id derived from network/daoAddress.
func NewSpace(network, daoAddress string, governance GovernanceType) *Space {
	return &Space{
		ID:             SpaceID(network, daoAddress),
		Network:        network,
		DaoAddress:     daoAddress,
		GovernanceType: governance,
	}
}
