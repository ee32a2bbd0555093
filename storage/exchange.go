package storage

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crowdveil/crowdveil/types"
)

var (
	poolSeq  = []byte("pool")
	orderSeq = []byte("order")
)

// pairKey builds the canonical key of an unordered token pair by sorting
// the two addresses, so both orderings map to the same pool.
func pairKey(tokenA, tokenB common.Address) []byte {
	a, b := tokenA.Bytes(), tokenB.Bytes()
	if bytes.Compare(a, b) > 0 {
		a, b = b, a
	}
	return compositeKey(a, b)
}

// CreatePool allocates the next pool id, stores the pool and registers the
// pair index. It fails if a pool for the unordered token pair already
// exists.
func (s *Storage) CreatePool(p *types.LiquidityPool) (uint64, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	pk := pairKey(p.TokenA, p.TokenB)
	if s.hasKey(pairIndexPrefix, pk) {
		return 0, fmt.Errorf("pool for token pair already exists")
	}

	wTx := s.db.WriteTx()
	defer wTx.Discard()

	id, err := nextSequence(wTx, poolSeq)
	if err != nil {
		return 0, err
	}
	p.ID = id
	if err := setArtifact(wTx, poolPrefix, uint64Key(id), p); err != nil {
		return 0, fmt.Errorf("store pool: %w", err)
	}
	if err := setArtifact(wTx, pairIndexPrefix, pk, id); err != nil {
		return 0, fmt.Errorf("index pool pair: %w", err)
	}
	return id, wTx.Commit()
}

// UpdatePool overwrites an existing pool record.
func (s *Storage) UpdatePool(p *types.LiquidityPool) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if !s.hasKey(poolPrefix, uint64Key(p.ID)) {
		return ErrNotFound
	}
	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := setArtifact(wTx, poolPrefix, uint64Key(p.ID), p); err != nil {
		return fmt.Errorf("update pool: %w", err)
	}
	return wTx.Commit()
}

// Pool retrieves a liquidity pool by id.
func (s *Storage) Pool(id uint64) (*types.LiquidityPool, error) {
	p := &types.LiquidityPool{}
	if err := s.getArtifact(poolPrefix, uint64Key(id), p); err != nil {
		return nil, err
	}
	return p, nil
}

// PoolByPair retrieves the pool of an unordered token pair. Either
// argument order resolves to the same pool.
func (s *Storage) PoolByPair(tokenA, tokenB common.Address) (*types.LiquidityPool, error) {
	var id uint64
	if err := s.getArtifact(pairIndexPrefix, pairKey(tokenA, tokenB), &id); err != nil {
		return nil, err
	}
	return s.Pool(id)
}

// ListPools returns all pool ids in ascending order.
func (s *Storage) ListPools() ([]uint64, error) {
	var ids []uint64
	err := s.iterate(poolPrefix, nil, func(k, _ []byte) bool {
		if len(k) == 8 {
			ids = append(ids, bytesToUint64(k))
		}
		return true
	})
	return ids, err
}

// AppendPosition stores a liquidity position at the next index of its
// pool's append-only list and returns that index (starting at 0).
func (s *Storage) AppendPosition(p *types.LiquidityPosition) (uint64, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	defer wTx.Discard()

	seqName := compositeKey([]byte("position/"), uint64Key(p.PoolID))
	seq, err := nextSequence(wTx, seqName)
	if err != nil {
		return 0, err
	}
	p.Index = seq - 1
	key := compositeKey(uint64Key(p.PoolID), uint64Key(p.Index))
	if err := setArtifact(wTx, positionPrefix, key, p); err != nil {
		return 0, fmt.Errorf("store position: %w", err)
	}
	return p.Index, wTx.Commit()
}

// UpdatePosition overwrites a stored position (used to deactivate it on
// withdrawal).
func (s *Storage) UpdatePosition(p *types.LiquidityPosition) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	key := compositeKey(uint64Key(p.PoolID), uint64Key(p.Index))
	if !s.hasKey(positionPrefix, key) {
		return ErrNotFound
	}
	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := setArtifact(wTx, positionPrefix, key, p); err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return wTx.Commit()
}

// Positions returns all positions of a pool in deposit order.
func (s *Storage) Positions(poolID uint64) ([]*types.LiquidityPosition, error) {
	var list []*types.LiquidityPosition
	err := s.iterate(positionPrefix, uint64Key(poolID), func(_ []byte, v []byte) bool {
		p := &types.LiquidityPosition{}
		if err := decodeArtifact(v, p); err == nil {
			list = append(list, p)
		}
		return true
	})
	return list, err
}

// CreateOrder allocates the next order id, stores the order and updates
// the trader index.
func (s *Storage) CreateOrder(o *types.Order) (uint64, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	defer wTx.Discard()

	id, err := nextSequence(wTx, orderSeq)
	if err != nil {
		return 0, err
	}
	o.ID = id
	if err := setArtifact(wTx, orderPrefix, uint64Key(id), o); err != nil {
		return 0, fmt.Errorf("store order: %w", err)
	}
	idxKey := compositeKey(o.Trader.Bytes(), uint64Key(id))
	if err := setArtifact(wTx, orderIndexPrefix, idxKey, id); err != nil {
		return 0, fmt.Errorf("index order: %w", err)
	}
	return id, wTx.Commit()
}

// UpdateOrder overwrites an existing order record.
func (s *Storage) UpdateOrder(o *types.Order) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if !s.hasKey(orderPrefix, uint64Key(o.ID)) {
		return ErrNotFound
	}
	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := setArtifact(wTx, orderPrefix, uint64Key(o.ID), o); err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return wTx.Commit()
}

// Order retrieves an order by id.
func (s *Storage) Order(id uint64) (*types.Order, error) {
	o := &types.Order{}
	if err := s.getArtifact(orderPrefix, uint64Key(id), o); err != nil {
		return nil, err
	}
	return o, nil
}

// OrdersByTrader returns the order ids created by the given address, in
// ascending id order.
func (s *Storage) OrdersByTrader(trader common.Address) ([]uint64, error) {
	var ids []uint64
	err := s.iterate(orderIndexPrefix, trader.Bytes(), func(_ []byte, v []byte) bool {
		var id uint64
		if err := decodeArtifact(v, &id); err == nil {
			ids = append(ids, id)
		}
		return true
	})
	return ids, err
}
