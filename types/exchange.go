package types

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crowdveil/crowdveil/crypto/commitment"
)

// OrderType distinguishes buy and sell orders.
type OrderType uint8

const (
	OrderTypeBuy OrderType = iota
	OrderTypeSell
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeBuy:
		return "buy"
	case OrderTypeSell:
		return "sell"
	default:
		return "unknown"
	}
}

// OrderStatus is the lifecycle state of an order. Filled, Cancelled and
// Expired are terminal and only reachable from Pending.
type OrderStatus uint8

const (
	OrderStatusPending OrderStatus = iota
	OrderStatusFilled
	OrderStatusCancelled
	OrderStatusExpired
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusFilled:
		return "filled"
	case OrderStatusCancelled:
		return "cancelled"
	case OrderStatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// LiquidityPool holds the encrypted reserves for an unordered token pair.
// Both orderings of the pair resolve to the same pool.
type LiquidityPool struct {
	ID             uint64                 `json:"id"             cbor:"0,keyasint"`
	TokenA         common.Address         `json:"tokenA"         cbor:"1,keyasint"`
	TokenB         common.Address         `json:"tokenB"         cbor:"2,keyasint"`
	ReserveA       *commitment.Commitment `json:"reserveA"       cbor:"3,keyasint"`
	ReserveB       *commitment.Commitment `json:"reserveB"       cbor:"4,keyasint"`
	TotalShares    *commitment.Commitment `json:"totalShares"    cbor:"5,keyasint"`
	Providers      uint64                 `json:"providers"      cbor:"6,keyasint"`
	Active         bool                   `json:"active"         cbor:"7,keyasint"`
	FeeBasisPoints uint32                 `json:"feeBasisPoints" cbor:"8,keyasint"`
	CreatedAt      time.Time              `json:"createdAt"      cbor:"9,keyasint"`
}

func (p *LiquidityPool) String() string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}

// LiquidityPosition is one deposit event of a provider in a pool. Positions
// are append-only; removing liquidity deactivates the position instead of
// deleting it, keeping the audit trail intact.
type LiquidityPosition struct {
	Index     uint64                 `json:"index"     cbor:"0,keyasint"`
	PoolID    uint64                 `json:"poolId"    cbor:"1,keyasint"`
	Provider  common.Address         `json:"provider"  cbor:"2,keyasint"`
	ShareA    *commitment.Commitment `json:"shareA"    cbor:"3,keyasint"`
	ShareB    *commitment.Commitment `json:"shareB"    cbor:"4,keyasint"`
	Shares    *commitment.Commitment `json:"shares"    cbor:"5,keyasint"`
	Timestamp time.Time              `json:"timestamp" cbor:"6,keyasint"`
	Active    bool                   `json:"active"    cbor:"7,keyasint"`
}

// Order is a confidential limit order. Amounts and price are commitments;
// the fill commitment is recorded when the order is filled but does not
// reduce a remaining-amount field: fills are all-or-nothing at status level.
type Order struct {
	ID             uint64                 `json:"id"             cbor:"0,keyasint"`
	Trader         common.Address         `json:"trader"         cbor:"1,keyasint"`
	TokenA         common.Address         `json:"tokenA"         cbor:"2,keyasint"`
	TokenB         common.Address         `json:"tokenB"         cbor:"3,keyasint"`
	AmountA        *commitment.Commitment `json:"amountA"        cbor:"4,keyasint"`
	AmountB        *commitment.Commitment `json:"amountB"        cbor:"5,keyasint"`
	Price          *commitment.Commitment `json:"price"          cbor:"6,keyasint"`
	Type           OrderType              `json:"type"           cbor:"7,keyasint"`
	Status         OrderStatus            `json:"status"         cbor:"8,keyasint"`
	CreatedAt      time.Time              `json:"createdAt"      cbor:"9,keyasint"`
	ExpiresAt      time.Time              `json:"expiresAt"      cbor:"10,keyasint"`
	Filler         common.Address         `json:"filler,omitempty"         cbor:"11,keyasint,omitempty"`
	FillCommitment *commitment.Commitment `json:"fillCommitment,omitempty" cbor:"12,keyasint,omitempty"`
}

func (o *Order) String() string {
	data, err := json.Marshal(o)
	if err != nil {
		return ""
	}
	return string(data)
}
