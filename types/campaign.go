package types

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crowdveil/crowdveil/crypto/commitment"
)

// CampaignPhase is the lifecycle state of a fundraising campaign. Phases
// advance one-way: Preparation -> Live -> Successful|Failed, and
// Successful -> TokenDistribution -> Completed. Failed and Completed are
// terminal.
type CampaignPhase uint8

const (
	PhasePreparation CampaignPhase = iota
	PhaseLive
	PhaseSuccessful
	PhaseFailed
	PhaseTokenDistribution
	PhaseCompleted
)

func (p CampaignPhase) String() string {
	switch p {
	case PhasePreparation:
		return "preparation"
	case PhaseLive:
		return "live"
	case PhaseSuccessful:
		return "successful"
	case PhaseFailed:
		return "failed"
	case PhaseTokenDistribution:
		return "tokenDistribution"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further phase transition is possible.
func (p CampaignPhase) Terminal() bool {
	return p == PhaseFailed || p == PhaseCompleted
}

// Campaign is the aggregate record of a fundraising campaign. The funding
// goal is public while the running raised amount is an encrypted commitment,
// only decrypted once at finalize time. RaisedCleartext is zero until then.
type Campaign struct {
	ID                uint64                 `json:"id"                cbor:"0,keyasint"`
	Owner             common.Address         `json:"owner"             cbor:"1,keyasint"`
	Token             common.Address         `json:"token"             cbor:"2,keyasint"`
	Supply            *BigInt                `json:"supply"            cbor:"3,keyasint"`
	Goal              *BigInt                `json:"goal"              cbor:"4,keyasint"`
	Price             *BigInt                `json:"price"             cbor:"5,keyasint"`
	Raised            *commitment.Commitment `json:"raised"            cbor:"6,keyasint"`
	StartTime         time.Time              `json:"startTime"         cbor:"7,keyasint"`
	EndTime           time.Time              `json:"endTime"           cbor:"8,keyasint"`
	MinContribution   *BigInt                `json:"minContribution"   cbor:"9,keyasint"`
	MaxContribution   *BigInt                `json:"maxContribution"   cbor:"10,keyasint"`
	Phase             CampaignPhase          `json:"phase"             cbor:"11,keyasint"`
	Live              bool                   `json:"live"              cbor:"12,keyasint"`
	FundingSuccessful bool                   `json:"fundingSuccessful" cbor:"13,keyasint"`
	RaisedCleartext   *BigInt                `json:"raisedCleartext,omitempty" cbor:"14,keyasint,omitempty"`
	TotalBackers      uint64                 `json:"totalBackers"      cbor:"15,keyasint"`
	BackingRoot       HexBytes               `json:"backingRoot"       cbor:"16,keyasint"`
	MetadataURI       string                 `json:"metadataURI"       cbor:"17,keyasint"`
	Verified          bool                   `json:"verified"          cbor:"18,keyasint"`
	Paused            bool                   `json:"paused"            cbor:"19,keyasint"`
}

func (c *Campaign) String() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(data)
}

// Backing is a single accepted contribution. The payment amount is cleartext
// (it arrives as an attached native-currency value), while the recorded
// commitment hides it from anyone reading the backing list without the
// opening. The contribution nonce travels inside the proof and is never
// stored next to the commitment it opens.
type Backing struct {
	Index      uint64                 `json:"index"      cbor:"0,keyasint"`
	CampaignID uint64                 `json:"campaignId" cbor:"1,keyasint"`
	Backer     common.Address         `json:"backer"     cbor:"2,keyasint"`
	Amount     *BigInt                `json:"amount"     cbor:"3,keyasint"`
	Commitment *commitment.Commitment `json:"commitment" cbor:"4,keyasint"`
	Timestamp  time.Time              `json:"timestamp"  cbor:"5,keyasint"`
	Claimed    bool                   `json:"claimed"    cbor:"6,keyasint"`
}

// VestingSchedule tracks the linear release of reward tokens for one backer
// of one campaign. Nothing is claimable before the cliff; the full
// entitlement unlocks at Start+Duration.
type VestingSchedule struct {
	CampaignID uint64         `json:"campaignId" cbor:"0,keyasint"`
	Backer     common.Address `json:"backer"     cbor:"1,keyasint"`
	Total      *BigInt        `json:"total"      cbor:"2,keyasint"`
	Claimed    *BigInt        `json:"claimed"    cbor:"3,keyasint"`
	Start      time.Time      `json:"start"      cbor:"4,keyasint"`
	Duration   time.Duration  `json:"duration"   cbor:"5,keyasint"`
	Cliff      time.Duration  `json:"cliff"      cbor:"6,keyasint"`
	Active     bool           `json:"active"     cbor:"7,keyasint"`
}
