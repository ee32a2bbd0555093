// Package exchange implements the confidential trading engine: liquidity
// pools with encrypted reserves, an order book of committed amounts and
// constant-product swaps. All commitments live under a single
// exchange-wide keypair, which makes the engine the only party able to
// decrypt reserves and order amounts. Every such internal decryption is
// announced on the event bus.
package exchange

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/crowdveil/crowdveil/config"
	"github.com/crowdveil/crowdveil/crypto/commitment"
	"github.com/crowdveil/crowdveil/crypto/ecc"
	"github.com/crowdveil/crowdveil/crypto/ecc/curves"
	"github.com/crowdveil/crowdveil/events"
	"github.com/crowdveil/crowdveil/log"
	"github.com/crowdveil/crowdveil/registry"
	"github.com/crowdveil/crowdveil/storage"
	"github.com/crowdveil/crowdveil/tokens"
)

// Exchange executes pool, order and swap operations. All mutating
// operations are serialized.
type Exchange struct {
	stg      *storage.Storage
	vault    *tokens.Vault
	registry *registry.Registry
	bus      *events.Bus

	pubKey  ecc.Point
	privKey *big.Int

	lock sync.Mutex

	// now is replaceable in tests
	now func() time.Time
}

// New creates the exchange, loading the engine keypair from storage or
// generating it on first run.
func New(stg *storage.Storage, vault *tokens.Vault, reg *registry.Registry,
	bus *events.Bus,
) (*Exchange, error) {
	pubKey, privKey, err := stg.ExchangeKeys()
	if errors.Is(err, storage.ErrNotFound) {
		curve := curves.New(curves.CurveTypeBN254)
		pubKey, privKey, err = commitment.GenerateKey(curve)
		if err != nil {
			return nil, fmt.Errorf("generate exchange keys: %w", err)
		}
		if err := stg.SetExchangeKeys(pubKey, privKey); err != nil {
			return nil, fmt.Errorf("store exchange keys: %w", err)
		}
		log.Infow("generated exchange keypair")
	} else if err != nil {
		return nil, fmt.Errorf("load exchange keys: %w", err)
	}
	return &Exchange{
		stg:      stg,
		vault:    vault,
		registry: reg,
		bus:      bus,
		pubKey:   pubKey,
		privKey:  privKey,
		now:      time.Now,
	}, nil
}

// PublicKey returns the exchange-wide commitment public key. Clients
// commit their amounts under this key.
func (e *Exchange) PublicKey() ecc.Point {
	return e.pubKey
}

// poolEscrow derives the deterministic escrow account of a pool.
func poolEscrow(poolID uint64) common.Address {
	return common.BytesToAddress(ethcrypto.Keccak256([]byte("pool-escrow/"), uint64ToBytes(poolID)))
}

// orderEscrow derives the deterministic escrow account of an order.
func orderEscrow(orderID uint64) common.Address {
	return common.BytesToAddress(ethcrypto.Keccak256([]byte("order-escrow/"), uint64ToBytes(orderID)))
}

func uint64ToBytes(v uint64) []byte {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[7-i] = byte(v >> (8 * i))
	}
	return buf
}

// commitValue builds a fresh commitment of value under the exchange key.
func (e *Exchange) commitValue(value *big.Int) (*commitment.Commitment, error) {
	nonce, err := commitment.RandNonce()
	if err != nil {
		return nil, err
	}
	return commitment.Commit(e.pubKey, value, nonce)
}

// decrypt recovers the plaintext behind c with the engine key. Every call
// is announced on the event bus with its reason. Caller must hold the
// exchange lock.
func (e *Exchange) decrypt(c *commitment.Commitment, reason string) (*big.Int, error) {
	e.bus.Publish(events.DecryptAuthorized, map[string]string{"actor": "exchange", "reason": reason})
	value, err := commitment.Decrypt(e.privKey, c, config.MaxPlaintext)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", reason, err)
	}
	return value, nil
}

// verifyOpening checks that c opens to value under the exchange key.
func (e *Exchange) verifyOpening(c *commitment.Commitment, proof *commitment.Proof, value *big.Int) bool {
	if c == nil || proof == nil || value == nil {
		return false
	}
	return commitment.VerifyOpening(e.pubKey, c, proof, value)
}
