// Package ethereum provides secp256k1 signing keys and Ethereum-style
// signature recovery, used to authenticate API submissions: the platform
// derives the actor address from the signature attached to a request.
package ethereum

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/crowdveil/crowdveil/util"
)

// SignatureLength is the size in bytes of an Ethereum signature (r, s, v).
const SignatureLength = 65

// SignKeys is a secp256k1 key pair.
type SignKeys struct {
	Public  *ecdsa.PublicKey
	Private *ecdsa.PrivateKey
}

func NewSignKeys() *SignKeys {
	return &SignKeys{}
}

// Generate creates a new random key pair.
func (k *SignKeys) Generate() error {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	k.Private = key
	k.Public = &key.PublicKey
	return nil
}

// AddHexKey imports a private key from its hex representation.
func (k *SignKeys) AddHexKey(privHex string) error {
	key, err := ethcrypto.HexToECDSA(util.TrimHex(privHex))
	if err != nil {
		return fmt.Errorf("invalid private key: %w", err)
	}
	k.Private = key
	k.Public = &key.PublicKey
	return nil
}

// HexString returns the compressed public key and the private key as hex
// strings.
func (k *SignKeys) HexString() (string, string) {
	pub := hex.EncodeToString(ethcrypto.CompressPubkey(k.Public))
	priv := hex.EncodeToString(ethcrypto.FromECDSA(k.Private))
	return pub, priv
}

// PublicKey returns the compressed public key bytes.
func (k *SignKeys) PublicKey() []byte {
	return ethcrypto.CompressPubkey(k.Public)
}

// Address returns the Ethereum address of the key pair.
func (k *SignKeys) Address() common.Address {
	return ethcrypto.PubkeyToAddress(*k.Public)
}

// AddressString returns the checksummed address representation.
func (k *SignKeys) AddressString() string {
	return k.Address().String()
}

// SignEthereum signs a message with the Ethereum personal-message prefix.
func (k *SignKeys) SignEthereum(message []byte) ([]byte, error) {
	if k.Private == nil {
		return nil, fmt.Errorf("no private key available")
	}
	return ethcrypto.Sign(HashEthereumMessage(message), k.Private)
}

// HashRaw computes the Keccak256 hash of data.
func HashRaw(data []byte) []byte {
	return ethcrypto.Keccak256(data)
}

// HashEthereumMessage hashes a message with the standard Ethereum prefix.
func HashEthereumMessage(message []byte) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return ethcrypto.Keccak256([]byte(prefixed))
}

// PubKeyFromSignature recovers the compressed public key that produced the
// signature over an Ethereum-prefixed message.
func PubKeyFromSignature(message, signature []byte) ([]byte, error) {
	if len(signature) < SignatureLength {
		return nil, fmt.Errorf("invalid signature length %d", len(signature))
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature[:SignatureLength])
	// normalize the recovery id
	if sig[64] > 1 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return nil, fmt.Errorf("invalid recovery id %d", sig[64])
	}
	pub, err := ethcrypto.SigToPub(HashEthereumMessage(message), sig)
	if err != nil {
		return nil, fmt.Errorf("signature recovery failed: %w", err)
	}
	return ethcrypto.CompressPubkey(pub), nil
}

// AddrFromPublicKey converts a compressed public key to an address.
func AddrFromPublicKey(pub []byte) (common.Address, error) {
	key, err := ethcrypto.DecompressPubkey(pub)
	if err != nil {
		return common.Address{}, fmt.Errorf("cannot decompress public key: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*key), nil
}

// AddrFromSignature recovers the address that signed message.
func AddrFromSignature(message, signature []byte) (common.Address, error) {
	pub, err := PubKeyFromSignature(message, signature)
	if err != nil {
		return common.Address{}, err
	}
	return AddrFromPublicKey(pub)
}
