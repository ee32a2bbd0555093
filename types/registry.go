package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Role names used by the authorization gate.
const (
	RoleAdmin    = "admin"
	RoleVerifier = "verifier"
	RoleCreator  = "creator"
)

// CreatorProfile is the reputation record of a campaign creator. The score
// starts at a fixed baseline on registration and never goes below zero.
type CreatorProfile struct {
	Address             common.Address `json:"address"             cbor:"0,keyasint"`
	Reputation          uint64         `json:"reputation"          cbor:"1,keyasint"`
	Verified            bool           `json:"verified"            cbor:"2,keyasint"`
	SuccessfulCampaigns uint64         `json:"successfulCampaigns" cbor:"3,keyasint"`
	RegisteredAt        time.Time      `json:"registeredAt"        cbor:"4,keyasint"`
}
