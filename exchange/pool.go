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

// CreatePool registers a new liquidity pool for an unordered token pair.
// Admin only. Reserves start as encryptions of zero; liquidity arrives
// through AddLiquidity.
func (e *Exchange) CreatePool(sender, tokenA, tokenB common.Address, feeBasisPoints uint32) (*types.LiquidityPool, error) {
	if !e.registry.HasRole(types.RoleAdmin, sender) {
		return nil, ErrUnauthorized
	}
	// the zero address is the native currency, not a tradable token
	if tokenA == (common.Address{}) || tokenB == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if tokenA == tokenB {
		return nil, ErrSamePair
	}
	if feeBasisPoints > config.MaxFeeBasisPoints {
		return nil, ErrInvalidFee
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	reserveA, err := e.commitValue(big.NewInt(0))
	if err != nil {
		return nil, fmt.Errorf("initial reserve: %w", err)
	}
	reserveB, err := e.commitValue(big.NewInt(0))
	if err != nil {
		return nil, fmt.Errorf("initial reserve: %w", err)
	}
	totalShares, err := e.commitValue(big.NewInt(0))
	if err != nil {
		return nil, fmt.Errorf("initial shares: %w", err)
	}

	pool := &types.LiquidityPool{
		TokenA:         tokenA,
		TokenB:         tokenB,
		ReserveA:       reserveA,
		ReserveB:       reserveB,
		TotalShares:    totalShares,
		Active:         true,
		FeeBasisPoints: feeBasisPoints,
		CreatedAt:      e.now().UTC(),
	}
	id, err := e.stg.CreatePool(pool)
	if err != nil {
		return nil, err
	}
	log.Infow("pool created", "id", id, "tokenA", tokenA.Hex(), "tokenB", tokenB.Hex(),
		"feeBasisPoints", feeBasisPoints)
	e.bus.Publish(events.PoolCreated, pool)
	return pool, nil
}

// Pool returns a pool by id.
func (e *Exchange) Pool(id uint64) (*types.LiquidityPool, error) {
	return e.stg.Pool(id)
}

// PoolByPair returns the pool of an unordered token pair.
func (e *Exchange) PoolByPair(tokenA, tokenB common.Address) (*types.LiquidityPool, error) {
	return e.stg.PoolByPair(tokenA, tokenB)
}

// ListPools returns the ids of all pools.
func (e *Exchange) ListPools() ([]uint64, error) {
	return e.stg.ListPools()
}

// SetPoolActive pauses or resumes a pool. Admin only.
func (e *Exchange) SetPoolActive(sender common.Address, poolID uint64, active bool) error {
	if !e.registry.HasRole(types.RoleAdmin, sender) {
		return ErrUnauthorized
	}
	e.lock.Lock()
	defer e.lock.Unlock()

	pool, err := e.stg.Pool(poolID)
	if err != nil {
		return err
	}
	if pool.Active == active {
		return nil
	}
	pool.Active = active
	if err := e.stg.UpdatePool(pool); err != nil {
		return err
	}
	if active {
		e.bus.Publish(events.PoolResumed, pool)
	} else {
		e.bus.Publish(events.PoolPaused, pool)
	}
	return nil
}

// AddLiquidity deposits amountA and amountB into the pool. The attached
// commitments must open to the amounts under the exchange key; reserves
// are updated homomorphically and a position is recorded for later
// withdrawal.
func (e *Exchange) AddLiquidity(sender common.Address, poolID uint64,
	amountA, amountB *big.Int,
	comA, comB *commitment.Commitment, proofA, proofB *commitment.Proof,
) (*types.LiquidityPosition, error) {
	if amountA == nil || amountA.Sign() <= 0 || amountB == nil || amountB.Sign() <= 0 {
		return nil, fmt.Errorf("deposit amounts must be positive")
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	pool, err := e.stg.Pool(poolID)
	if err != nil {
		return nil, err
	}
	if !pool.Active {
		return nil, ErrPoolInactive
	}
	if !e.verifyOpening(comA, proofA, amountA) || !e.verifyOpening(comB, proofB, amountB) {
		return nil, ErrProofInvalid
	}

	escrow := poolEscrow(poolID)
	if err := e.vault.Transfer(pool.TokenA, sender, escrow, amountA); err != nil {
		return nil, err
	}
	if err := e.vault.Transfer(pool.TokenB, sender, escrow, amountB); err != nil {
		// roll the first leg back so a partial deposit cannot stick
		if rbErr := e.vault.Transfer(pool.TokenA, escrow, sender, amountA); rbErr != nil {
			return nil, fmt.Errorf("rollback deposit: %w", rbErr)
		}
		return nil, err
	}

	// share accounting uses the geometric-mean-free simple sum: shares
	// scale with the deposited amounts and are burned pro rata on exit
	shares := new(big.Int).Add(amountA, amountB)
	shareCom, err := e.commitValue(shares)
	if err != nil {
		return nil, fmt.Errorf("share commitment: %w", err)
	}

	position := &types.LiquidityPosition{
		PoolID:    poolID,
		Provider:  sender,
		ShareA:    comA,
		ShareB:    comB,
		Shares:    shareCom,
		Timestamp: e.now().UTC(),
		Active:    true,
	}
	if _, err := e.stg.AppendPosition(position); err != nil {
		return nil, fmt.Errorf("store position: %w", err)
	}

	pool.ReserveA = pool.ReserveA.Add(comA)
	pool.ReserveB = pool.ReserveB.Add(comB)
	pool.TotalShares = pool.TotalShares.Add(shareCom)
	pool.Providers++
	if err := e.stg.UpdatePool(pool); err != nil {
		return nil, fmt.Errorf("update pool: %w", err)
	}

	log.Debugw("liquidity added", "pool", poolID, "provider", sender.Hex(), "position", position.Index)
	e.bus.Publish(events.LiquidityAdded, position)
	return position, nil
}

// RemoveLiquidity withdraws a position. The engine decrypts the position's
// share commitments to learn the amounts to return, subtracts them from
// the reserves and deactivates the position.
func (e *Exchange) RemoveLiquidity(sender common.Address, poolID, positionIndex uint64) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	pool, err := e.stg.Pool(poolID)
	if err != nil {
		return err
	}
	if !pool.Active {
		return ErrPoolInactive
	}
	positions, err := e.stg.Positions(poolID)
	if err != nil {
		return err
	}
	if positionIndex >= uint64(len(positions)) {
		return ErrNotPositionOwner
	}
	position := positions[positionIndex]
	if position.Provider != sender {
		return ErrNotPositionOwner
	}
	if !position.Active {
		return ErrPositionInactive
	}

	amountA, err := e.decrypt(position.ShareA, "position withdrawal")
	if err != nil {
		return err
	}
	amountB, err := e.decrypt(position.ShareB, "position withdrawal")
	if err != nil {
		return err
	}

	escrow := poolEscrow(poolID)
	if err := e.vault.Transfer(pool.TokenA, escrow, sender, amountA); err != nil {
		return err
	}
	if err := e.vault.Transfer(pool.TokenB, escrow, sender, amountB); err != nil {
		return err
	}

	position.Active = false
	if err := e.stg.UpdatePosition(position); err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	pool.ReserveA = pool.ReserveA.Subtract(position.ShareA)
	pool.ReserveB = pool.ReserveB.Subtract(position.ShareB)
	pool.TotalShares = pool.TotalShares.Subtract(position.Shares)
	pool.Providers--
	if err := e.stg.UpdatePool(pool); err != nil {
		return fmt.Errorf("update pool: %w", err)
	}

	log.Debugw("liquidity removed", "pool", poolID, "provider", sender.Hex(), "position", positionIndex)
	e.bus.Publish(events.LiquidityRemoved, position)
	return nil
}

// Swap trades amountIn of tokenIn against the pool at the constant-product
// price, net of the pool fee. The input commitment must open to amountIn;
// the engine decrypts the current reserves to compute the output, pays it
// out and re-commits both reserves' deltas homomorphically. Returns the
// output amount.
func (e *Exchange) Swap(sender common.Address, poolID uint64, tokenIn common.Address,
	amountIn *big.Int, comIn *commitment.Commitment, proofIn *commitment.Proof,
) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("swap amount must be positive")
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	pool, err := e.stg.Pool(poolID)
	if err != nil {
		return nil, err
	}
	if !pool.Active {
		return nil, ErrPoolInactive
	}
	var tokenOut common.Address
	reserveInCom, reserveOutCom := pool.ReserveA, pool.ReserveB
	switch tokenIn {
	case pool.TokenA:
		tokenOut = pool.TokenB
	case pool.TokenB:
		tokenOut = pool.TokenA
		reserveInCom, reserveOutCom = pool.ReserveB, pool.ReserveA
	default:
		return nil, ErrUnknownToken
	}
	if !e.verifyOpening(comIn, proofIn, amountIn) {
		return nil, ErrProofInvalid
	}

	reserveIn, err := e.decrypt(reserveInCom, "swap pricing")
	if err != nil {
		return nil, err
	}
	reserveOut, err := e.decrypt(reserveOutCom, "swap pricing")
	if err != nil {
		return nil, err
	}
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}

	// out = reserveOut * inNet / (reserveIn + inNet), with the fee taken
	// from the input
	inNet := new(big.Int).Mul(amountIn, big.NewInt(config.BasisPointsDivisor-int64(pool.FeeBasisPoints)))
	inNet.Div(inNet, big.NewInt(config.BasisPointsDivisor))
	amountOut := new(big.Int).Mul(reserveOut, inNet)
	amountOut.Div(amountOut, new(big.Int).Add(reserveIn, inNet))
	if amountOut.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, ErrInsufficientLiquidity
	}

	escrow := poolEscrow(poolID)
	if err := e.vault.Transfer(tokenIn, sender, escrow, amountIn); err != nil {
		return nil, err
	}
	if err := e.vault.Transfer(tokenOut, escrow, sender, amountOut); err != nil {
		return nil, err
	}

	comOut, err := e.commitValue(amountOut)
	if err != nil {
		return nil, fmt.Errorf("output commitment: %w", err)
	}
	newReserveIn := reserveInCom.Add(comIn)
	newReserveOut := reserveOutCom.Subtract(comOut)
	if tokenIn == pool.TokenA {
		pool.ReserveA, pool.ReserveB = newReserveIn, newReserveOut
	} else {
		pool.ReserveB, pool.ReserveA = newReserveIn, newReserveOut
	}
	if err := e.stg.UpdatePool(pool); err != nil {
		return nil, fmt.Errorf("update pool: %w", err)
	}

	log.Debugw("swap executed", "pool", poolID, "trader", sender.Hex(),
		"tokenIn", tokenIn.Hex(), "out", amountOut.String())
	e.bus.Publish(events.SwapExecuted, map[string]any{
		"poolId": poolID, "trader": sender.Hex(), "tokenIn": tokenIn.Hex(),
	})
	return amountOut, nil
}
