package commitment

import (
	"math/big"

	"github.com/crowdveil/crowdveil/crypto/ecc"
)

// Proof is the opening of a commitment: it binds a commitment to a public
// value the verifier already knows in cleartext (for example the attached
// payment amount of a contribution). It optionally asserts a range the
// value must lie in. A proof is consumed exactly once at verification time
// and never stored beyond the owning record's audit trail.
type Proof struct {
	// Nonce is the commitment nonce. Revealing it here is safe because the
	// bound value is public anyway; it is never stored alongside the
	// commitment it opens.
	Nonce *big.Int `json:"nonce" cbor:"0,keyasint"`
	// Min and Max optionally constrain the bound value. Nil means
	// unbounded on that side.
	Min *big.Int `json:"min,omitempty" cbor:"1,keyasint,omitempty"`
	Max *big.Int `json:"max,omitempty" cbor:"2,keyasint,omitempty"`
}

// WellFormed reports whether the proof carries a usable nonce and a
// consistent range.
func (p *Proof) WellFormed() bool {
	if p == nil || p.Nonce == nil || p.Nonce.Sign() <= 0 {
		return false
	}
	if p.Min != nil && p.Max != nil && p.Min.Cmp(p.Max) > 0 {
		return false
	}
	return true
}

// VerifyOpening checks that proof opens c to publicValue under publicKey.
// It recomputes the deterministic commitment of (publicValue, proof.Nonce)
// and compares ciphertexts, then checks the optional range. It fails
// closed: any malformed input yields false, never a panic or an error the
// caller must interpret.
func VerifyOpening(publicKey ecc.Point, c *Commitment, proof *Proof, publicValue *big.Int) bool {
	if publicKey == nil || publicValue == nil || !proof.WellFormed() {
		return false
	}
	if !c.IsValid() {
		return false
	}
	if proof.Min != nil && publicValue.Cmp(proof.Min) < 0 {
		return false
	}
	if proof.Max != nil && publicValue.Cmp(proof.Max) > 0 {
		return false
	}
	expected, err := Commit(publicKey, publicValue, proof.Nonce)
	if err != nil {
		return false
	}
	return expected.Equal(c)
}
