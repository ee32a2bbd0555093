package exchange

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crowdveil/crowdveil/config"
	"github.com/crowdveil/crowdveil/crypto/commitment"
	"github.com/crowdveil/crowdveil/events"
	"github.com/crowdveil/crowdveil/log"
	"github.com/crowdveil/crowdveil/types"
)

// OrderParams are the trader-supplied parameters of a new order. The order
// offers AmountA of TokenA in exchange for AmountB of TokenB; both amounts
// must be opened against their commitments at creation time.
type OrderParams struct {
	TokenA  common.Address
	TokenB  common.Address
	AmountA *big.Int
	AmountB *big.Int
	ComA    *commitment.Commitment
	ComB    *commitment.Commitment
	ProofA  *commitment.Proof
	ProofB  *commitment.Proof
	Type    types.OrderType
}

// CreateOrder places a confidential limit order. The offered amount is
// escrowed immediately; the order expires a fixed interval after creation.
func (e *Exchange) CreateOrder(sender common.Address, params *OrderParams) (*types.Order, error) {
	if params.AmountA == nil || params.AmountA.Sign() <= 0 ||
		params.AmountB == nil || params.AmountB.Sign() <= 0 {
		return nil, fmt.Errorf("order amounts must be positive")
	}
	// the zero address is the native currency, not a tradable token
	if params.TokenA == (common.Address{}) || params.TokenB == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if params.TokenA == params.TokenB {
		return nil, ErrSamePair
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	if !e.verifyOpening(params.ComA, params.ProofA, params.AmountA) ||
		!e.verifyOpening(params.ComB, params.ProofB, params.AmountB) {
		return nil, ErrProofInvalid
	}

	// price = amountB per amountA, committed so the book leaks nothing
	price := new(big.Int).Div(
		new(big.Int).Mul(params.AmountB, big.NewInt(config.BasisPointsDivisor)),
		params.AmountA)
	priceCom, err := e.commitValue(price)
	if err != nil {
		return nil, fmt.Errorf("price commitment: %w", err)
	}

	now := e.now().UTC()
	order := &types.Order{
		Trader:    sender,
		TokenA:    params.TokenA,
		TokenB:    params.TokenB,
		AmountA:   params.ComA,
		AmountB:   params.ComB,
		Price:     priceCom,
		Type:      params.Type,
		Status:    types.OrderStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(config.OrderTTL),
	}
	id, err := e.stg.CreateOrder(order)
	if err != nil {
		return nil, err
	}
	if err := e.vault.Transfer(params.TokenA, sender, orderEscrow(id), params.AmountA); err != nil {
		// the stored order must not stand without its escrow
		order.Status = types.OrderStatusCancelled
		if updErr := e.stg.UpdateOrder(order); updErr != nil {
			return nil, fmt.Errorf("void unfunded order: %w", updErr)
		}
		return nil, err
	}

	log.Debugw("order created", "id", id, "trader", sender.Hex(), "type", order.Type.String())
	e.bus.Publish(events.OrderCreated, order)
	return order, nil
}

// Order returns an order by id.
func (e *Exchange) Order(id uint64) (*types.Order, error) {
	return e.stg.Order(id)
}

// OrdersByTrader returns the order ids of a trader.
func (e *Exchange) OrdersByTrader(trader common.Address) ([]uint64, error) {
	return e.stg.OrdersByTrader(trader)
}

// FillOrder executes a pending order in full. The filler pays the asked
// amount of TokenB to the trader and receives the escrowed TokenA. The
// engine decrypts both committed amounts to settle; traders cannot fill
// their own orders.
func (e *Exchange) FillOrder(sender common.Address, orderID uint64) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	order, err := e.stg.Order(orderID)
	if err != nil {
		return err
	}
	if order.Trader == sender {
		return ErrSelfTrade
	}
	if order.Status != types.OrderStatusPending {
		return ErrOrderNotFillable
	}
	if !e.now().UTC().Before(order.ExpiresAt) {
		return ErrOrderNotFillable
	}

	amountA, err := e.decrypt(order.AmountA, "order settlement")
	if err != nil {
		return err
	}
	amountB, err := e.decrypt(order.AmountB, "order settlement")
	if err != nil {
		return err
	}

	// the ask leg moves first so an underfunded filler cannot touch the
	// escrow
	if err := e.vault.Transfer(order.TokenB, sender, order.Trader, amountB); err != nil {
		return err
	}
	if err := e.vault.Transfer(order.TokenA, orderEscrow(orderID), sender, amountA); err != nil {
		return err
	}

	fillCom, err := e.commitValue(amountA)
	if err != nil {
		return fmt.Errorf("fill commitment: %w", err)
	}
	order.Status = types.OrderStatusFilled
	order.Filler = sender
	order.FillCommitment = fillCom
	if err := e.stg.UpdateOrder(order); err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	log.Debugw("order filled", "id", orderID, "filler", sender.Hex())
	e.bus.Publish(events.OrderFilled, order)
	return nil
}

// CancelOrder withdraws a pending order and returns its escrow. Only the
// trader may cancel.
func (e *Exchange) CancelOrder(sender common.Address, orderID uint64) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	order, err := e.stg.Order(orderID)
	if err != nil {
		return err
	}
	if order.Trader != sender {
		return ErrUnauthorized
	}
	if order.Status != types.OrderStatusPending {
		return ErrOrderNotFillable
	}
	if err := e.refundEscrow(order); err != nil {
		return err
	}
	order.Status = types.OrderStatusCancelled
	if err := e.stg.UpdateOrder(order); err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	e.bus.Publish(events.OrderCancelled, order)
	return nil
}

// ExpireOrder reaps an order past its deadline and returns the escrow to
// the trader. Anyone may call it.
func (e *Exchange) ExpireOrder(orderID uint64) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	order, err := e.stg.Order(orderID)
	if err != nil {
		return err
	}
	if order.Status != types.OrderStatusPending {
		return ErrOrderNotFillable
	}
	if e.now().UTC().Before(order.ExpiresAt) {
		return ErrOrderNotExpired
	}
	if err := e.refundEscrow(order); err != nil {
		return err
	}
	order.Status = types.OrderStatusExpired
	if err := e.stg.UpdateOrder(order); err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	e.bus.Publish(events.OrderExpired, order)
	return nil
}

// refundEscrow returns the escrowed TokenA of a pending order to its
// trader. Caller must hold the exchange lock.
func (e *Exchange) refundEscrow(order *types.Order) error {
	amountA, err := e.decrypt(order.AmountA, "order refund")
	if err != nil {
		return err
	}
	if err := e.vault.Transfer(order.TokenA, orderEscrow(order.ID), order.Trader, amountA); err != nil {
		return fmt.Errorf("refund order escrow: %w", err)
	}
	return nil
}
