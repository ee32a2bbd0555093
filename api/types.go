package api

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/crowdveil/crowdveil/crypto/commitment"
	"github.com/crowdveil/crowdveil/types"
)

// SignedRequest is the envelope of every mutating request. Payload is the
// JSON-encoded operation body; the signature is an Ethereum personal-message
// signature over the raw payload bytes and identifies the sender.
type SignedRequest struct {
	Payload   types.HexBytes `json:"payload"`
	Signature types.HexBytes `json:"signature"`
}

// LaunchRequest is the payload to create a campaign.
type LaunchRequest struct {
	Token           common.Address `json:"token"`
	Supply          *types.BigInt  `json:"supply"`
	Goal            *types.BigInt  `json:"goal"`
	Price           *types.BigInt  `json:"price"`
	DurationSeconds uint64         `json:"durationSeconds"`
	MinContribution *types.BigInt  `json:"minContribution,omitempty"`
	MaxContribution *types.BigInt  `json:"maxContribution,omitempty"`
	MetadataURI     string         `json:"metadataURI,omitempty"`
}

// ContributeRequest is the payload to back a campaign.
type ContributeRequest struct {
	Amount     *types.BigInt          `json:"amount"`
	Commitment *commitment.Commitment `json:"commitment"`
	Proof      *commitment.Proof      `json:"proof"`
}

// MetadataRequest is the payload to replace a campaign's metadata URI.
type MetadataRequest struct {
	MetadataURI string `json:"metadataURI"`
}

// ClaimResponse reports the amount released by a claim.
type ClaimResponse struct {
	Amount *types.BigInt `json:"amount"`
}

// CampaignListResponse lists campaign ids.
type CampaignListResponse struct {
	Campaigns []uint64 `json:"campaigns"`
}

// PoolListResponse lists pool ids.
type PoolListResponse struct {
	Pools []uint64 `json:"pools"`
}

// OrderListResponse lists order ids.
type OrderListResponse struct {
	Orders []uint64 `json:"orders"`
}

// PoolRequest is the payload to create a liquidity pool.
type PoolRequest struct {
	TokenA         common.Address `json:"tokenA"`
	TokenB         common.Address `json:"tokenB"`
	FeeBasisPoints uint32         `json:"feeBasisPoints"`
}

// LiquidityRequest is the payload to deposit liquidity into a pool.
type LiquidityRequest struct {
	AmountA *types.BigInt          `json:"amountA"`
	AmountB *types.BigInt          `json:"amountB"`
	ComA    *commitment.Commitment `json:"commitmentA"`
	ComB    *commitment.Commitment `json:"commitmentB"`
	ProofA  *commitment.Proof      `json:"proofA"`
	ProofB  *commitment.Proof      `json:"proofB"`
}

// WithdrawRequest is the payload to withdraw a liquidity position.
type WithdrawRequest struct {
	Position uint64 `json:"position"`
}

// SwapRequest is the payload to swap against a pool.
type SwapRequest struct {
	TokenIn    common.Address         `json:"tokenIn"`
	AmountIn   *types.BigInt          `json:"amountIn"`
	Commitment *commitment.Commitment `json:"commitment"`
	Proof      *commitment.Proof      `json:"proof"`
}

// SwapResponse reports the output amount of a swap.
type SwapResponse struct {
	AmountOut *types.BigInt `json:"amountOut"`
}

// OrderRequest is the payload to place an order. It offers AmountA of
// TokenA in exchange for AmountB of TokenB.
type OrderRequest struct {
	TokenA  common.Address         `json:"tokenA"`
	TokenB  common.Address         `json:"tokenB"`
	AmountA *types.BigInt          `json:"amountA"`
	AmountB *types.BigInt          `json:"amountB"`
	ComA    *commitment.Commitment `json:"commitmentA"`
	ComB    *commitment.Commitment `json:"commitmentB"`
	ProofA  *commitment.Proof      `json:"proofA"`
	ProofB  *commitment.Proof      `json:"proofB"`
	Type    types.OrderType        `json:"type"`
}

// RoleRequest is the payload to grant or revoke a role.
type RoleRequest struct {
	Role    string         `json:"role"`
	Address common.Address `json:"address"`
	Grant   bool           `json:"grant"`
}

// KeyResponse carries the affine coordinates of a commitment public key.
type KeyResponse struct {
	X *types.BigInt `json:"publicKeyX"`
	Y *types.BigInt `json:"publicKeyY"`
}
