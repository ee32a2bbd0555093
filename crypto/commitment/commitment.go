package commitment

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/arbo"

	"github.com/crowdveil/crowdveil/crypto/ecc"
	"github.com/crowdveil/crowdveil/crypto/ecc/curves"
)

// sizes in bytes of a serialized commitment
const (
	sizeCoord      = 32
	sizePoint      = 2 * sizeCoord
	SizeCommitment = 2 * sizePoint
)

// Commitment is an opaque encrypted numeric value: an exponential ElGamal
// ciphertext pair. A commitment never reveals its plaintext; every
// homomorphic operation returns a fresh value and leaves its operands
// untouched.
type Commitment struct {
	C1 ecc.Point
	C2 ecc.Point
}

// Zero returns the commitment of zero, the additive identity used to seed
// running totals.
func Zero() *Commitment {
	curve := curves.New(CurveType)
	c1 := curve.New()
	c1.SetZero()
	c2 := curve.New()
	c2.SetZero()
	return &Commitment{C1: c1, C2: c2}
}

// IsValid reports whether c is structurally well-formed: non-nil points and
// not the zero/empty sentinel. It is not a proof check.
func (c *Commitment) IsValid() bool {
	if c == nil || c.C1 == nil || c.C2 == nil {
		return false
	}
	return !c.C1.Equal(Zero().C1) || !c.C2.Equal(Zero().C2)
}

// Add returns a new commitment encoding the sum of the plaintexts of c and
// other.
func (c *Commitment) Add(other *Commitment) *Commitment {
	out := Zero()
	out.C1.Add(c.C1, other.C1)
	out.C2.Add(c.C2, other.C2)
	return out
}

// Subtract returns a new commitment encoding the difference of the
// plaintexts of c and other. An underflow is not detectable here; it
// surfaces at decryption time as an out-of-range plaintext.
func (c *Commitment) Subtract(other *Commitment) *Commitment {
	neg := Zero()
	neg.C1.Neg(other.C1)
	neg.C2.Neg(other.C2)
	return c.Add(neg)
}

// Scale returns a new commitment encoding k times the plaintext of c.
func (c *Commitment) Scale(k *big.Int) *Commitment {
	out := Zero()
	out.C1.ScalarMult(c.C1, k)
	out.C2.ScalarMult(c.C2, k)
	return out
}

// Equal reports whether both commitments are the same ciphertext. Note that
// equal plaintexts under different nonces produce different ciphertexts.
func (c *Commitment) Equal(other *Commitment) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.C1.Equal(other.C1) && c.C2.Equal(other.C2)
}

// Serialize returns a slice of SizeCommitment bytes representing
// C1.X, C1.Y, C2.X, C2.Y.
func (c *Commitment) Serialize() []byte {
	var buf bytes.Buffer
	c1x, c1y := c.C1.Point()
	c2x, c2y := c.C2.Point()
	for _, coord := range []*big.Int{c1x, c1y, c2x, c2y} {
		buf.Write(arbo.BigIntToBytes(sizeCoord, coord))
	}
	return buf.Bytes()
}

// Deserialize reconstructs a commitment from a slice produced by Serialize.
func (c *Commitment) Deserialize(data []byte) error {
	if len(data) != SizeCommitment {
		return fmt.Errorf("invalid input length: got %d bytes, expected %d bytes", len(data), SizeCommitment)
	}
	coord := func(i int) *big.Int {
		return arbo.BytesToBigInt(data[i*sizeCoord : (i+1)*sizeCoord])
	}
	curve := curves.New(CurveType)
	c.C1 = curve.SetPoint(coord(0), coord(1))
	c.C2 = curve.SetPoint(coord(2), coord(3))
	return nil
}

// MarshalJSON encodes the commitment as a 0x-prefixed hex string.
func (c *Commitment) MarshalJSON() ([]byte, error) {
	return []byte(`"0x` + hex.EncodeToString(c.Serialize()) + `"`), nil
}

// UnmarshalJSON decodes a commitment from a hex string.
func (c *Commitment) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	s = strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid commitment encoding: %w", err)
	}
	return c.Deserialize(raw)
}

// MarshalCBOR encodes the commitment as a CBOR byte string.
func (c *Commitment) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(c.Serialize())
}

// UnmarshalCBOR decodes a commitment from a CBOR byte string.
func (c *Commitment) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	return c.Deserialize(raw)
}

// String returns a short hex representation for logging.
func (c *Commitment) String() string {
	if c == nil || c.C1 == nil || c.C2 == nil {
		return "{nil}"
	}
	s := hex.EncodeToString(c.Serialize())
	return s[:16] + "..."
}
