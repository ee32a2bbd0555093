package storage

import (
	"fmt"
	"math/big"

	"github.com/crowdveil/crowdveil/crypto/ecc"
	"github.com/crowdveil/crowdveil/crypto/ecc/curves"
	"github.com/crowdveil/crowdveil/types"
)

// EncryptionKeys holds a commitment keypair as stored on disk. The public
// key is the affine point (X, Y); the private key never leaves storage
// through the API layer.
type EncryptionKeys struct {
	X          *types.BigInt `json:"publicKeyX" cbor:"0,keyasint"`
	Y          *types.BigInt `json:"publicKeyY" cbor:"1,keyasint"`
	PrivateKey *types.BigInt `json:"-" cbor:"2,keyasint"`
}

// exchangeKeyName is the fixed key of the exchange-wide keypair.
var exchangeKeyName = []byte("exchange")

// SetCampaignKeys stores the encryption keypair of a campaign.
func (s *Storage) SetCampaignKeys(campaignID uint64, publicKey ecc.Point, privateKey *big.Int) error {
	return s.setKeys(uint64Key(campaignID), publicKey, privateKey)
}

// CampaignKeys loads the encryption keypair of a campaign. Returns
// ErrNotFound if no keys exist.
func (s *Storage) CampaignKeys(campaignID uint64) (ecc.Point, *big.Int, error) {
	return s.keys(uint64Key(campaignID))
}

// SetExchangeKeys stores the exchange-wide encryption keypair.
func (s *Storage) SetExchangeKeys(publicKey ecc.Point, privateKey *big.Int) error {
	return s.setKeys(exchangeKeyName, publicKey, privateKey)
}

// ExchangeKeys loads the exchange-wide encryption keypair. Returns
// ErrNotFound if no keys exist.
func (s *Storage) ExchangeKeys() (ecc.Point, *big.Int, error) {
	return s.keys(exchangeKeyName)
}

func (s *Storage) setKeys(name []byte, publicKey ecc.Point, privateKey *big.Int) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	x, y := publicKey.Point()
	eks := EncryptionKeys{
		X:          (*types.BigInt)(x),
		Y:          (*types.BigInt)(y),
		PrivateKey: (*types.BigInt)(privateKey),
	}
	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := setArtifact(wTx, keyPrefix, name, &eks); err != nil {
		return fmt.Errorf("store encryption keys: %w", err)
	}
	return wTx.Commit()
}

func (s *Storage) keys(name []byte) (ecc.Point, *big.Int, error) {
	eks := EncryptionKeys{}
	if err := s.getArtifact(keyPrefix, name, &eks); err != nil {
		return nil, nil, err
	}
	pubKey := curves.New(curves.CurveTypeBN254).SetPoint(eks.X.MathBigInt(), eks.Y.MathBigInt())
	return pubKey, eks.PrivateKey.MathBigInt(), nil
}
