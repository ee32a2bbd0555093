// Package commitment implements the confidential-value algebra used by the
// campaign ledger and the exchange: additively homomorphic commitments over
// BN254 based on exponential ElGamal. Adding two commitments yields a
// commitment to the sum of the plaintexts, so the running totals kept by the
// aggregates decrypt to the exact sum of the accepted contributions.
//
// Decryption recovers m*G and solves the discrete logarithm with
// baby-step giant-step, so plaintext magnitudes must stay below the
// configured ceiling. Every decryption goes through the owning aggregate's
// authorization gate; this package only provides the raw operation.
package commitment

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"

	"github.com/vocdoni/arbo"

	"github.com/crowdveil/crowdveil/crypto/ecc"
	"github.com/crowdveil/crowdveil/crypto/ecc/curves"
	"github.com/crowdveil/crowdveil/util"
)

// CurveType is the curve backend used for all commitments.
const CurveType = curves.CurveTypeBN254

// RandNonce generates a random commitment nonce within the scalar field.
func RandNonce() (*big.Int, error) {
	k := new(big.Int).SetBytes(util.RandomBytes(20))
	return arbo.BigToFF(arbo.BN254BaseField, k), nil
}

// GenerateKey generates a new public/private encryption key pair on the
// given curve.
func GenerateKey(curve ecc.Point) (publicKey ecc.Point, privateKey *big.Int, err error) {
	order := curve.Order()
	d, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key scalar: %w", err)
	}
	if d.Sign() == 0 {
		d = big.NewInt(1) // avoid zero private keys
	}
	publicKey = curve.New()
	publicKey.SetGenerator()
	publicKey.ScalarMult(publicKey, d)
	return publicKey, d, nil
}

// Commit produces the commitment of value under publicKey with the given
// nonce. It is deterministic: the same (value, nonce) pair under the same
// key always reproduces the same commitment, which is what makes opening
// proofs verifiable by recomputation.
//
//	C1 = nonce*G
//	C2 = value*G + nonce*publicKey
func Commit(publicKey ecc.Point, value, nonce *big.Int) (*Commitment, error) {
	if publicKey == nil || value == nil || nonce == nil {
		return nil, fmt.Errorf("nil commitment input")
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("negative values cannot be committed")
	}
	v := new(big.Int).Mod(value, publicKey.Order())
	c1 := publicKey.New()
	c1.ScalarBaseMult(nonce)
	shared := publicKey.New()
	shared.ScalarMult(publicKey, nonce)
	m := publicKey.New()
	m.ScalarBaseMult(v)
	c2 := publicKey.New()
	c2.Add(m, shared)
	return &Commitment{C1: c1, C2: c2}, nil
}

// Decrypt recovers the plaintext of c using the private key. It computes
// M = C2 - d*C1 and solves M = m*G for m in [0, maxPlaintext] with
// baby-step giant-step. It returns an error when the plaintext falls
// outside the range, which is also how an underflowing subtraction
// surfaces.
func Decrypt(privateKey *big.Int, c *Commitment, maxPlaintext uint64) (*big.Int, error) {
	if privateKey == nil || c == nil || c.C1 == nil || c.C2 == nil {
		return nil, fmt.Errorf("nil decryption input")
	}
	shared := c.C1.New()
	shared.ScalarMult(c.C1, privateKey)
	shared.Neg(shared)

	m := c.C2.New()
	m.Set(c.C2)
	m.Add(m, shared) // M = C2 - d*C1

	g := c.C1.New()
	g.SetGenerator()
	value, err := babyStepGiantStep(m, g, maxPlaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to find discrete log: %w", err)
	}
	return value, nil
}

// CheckNonce reports whether nonce was the one used to produce c, without
// decrypting: it checks C1 == nonce*G.
func CheckNonce(c *Commitment, nonce *big.Int) bool {
	if c == nil || c.C1 == nil || nonce == nil {
		return false
	}
	check := c.C1.New()
	check.ScalarBaseMult(nonce)
	return check.Equal(c.C1)
}

// babyStepGiantStep solves M = x*G for x in [0, maxValue].
func babyStepGiantStep(m, g ecc.Point, maxValue uint64) (*big.Int, error) {
	steps := uint64(math.Sqrt(float64(maxValue))) + 1

	babySteps := make(map[string]uint64, steps)
	babyStep := m.New()
	babyStep.SetZero()
	for j := uint64(0); j < steps; j++ {
		babySteps[babyStep.String()] = j
		babyStep.Add(babyStep, g)
	}

	// giant stride of -steps*G
	stride := m.New()
	stride.ScalarBaseMult(new(big.Int).SetUint64(steps))
	stride.Neg(stride)

	giantStep := m.New()
	giantStep.Set(m)
	for i := uint64(0); i <= steps; i++ {
		if j, found := babySteps[giantStep.String()]; found {
			return new(big.Int).SetUint64(i*steps + j), nil
		}
		giantStep.Add(giantStep, stride)
	}
	return nil, fmt.Errorf("discrete logarithm not found below %d", maxValue)
}
