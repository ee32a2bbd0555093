package commitment

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/crowdveil/crowdveil/crypto/ecc/curves"
)

const testMaxPlaintext = 1 << 20

func TestGenerateKey(t *testing.T) {
	curve := curves.New(CurveType)
	publicKey, privateKey, err := GenerateKey(curve)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, publicKey, qt.Not(qt.IsNil))
	qt.Assert(t, privateKey, qt.Not(qt.IsNil))

	// publicKey must equal privateKey*G
	check := curve.New()
	check.SetGenerator()
	check.ScalarMult(check, privateKey)
	qt.Assert(t, check.Equal(publicKey), qt.IsTrue)
}

func TestCommitDecrypt(t *testing.T) {
	pub, priv, err := GenerateKey(curves.New(CurveType))
	qt.Assert(t, err, qt.IsNil)

	for _, v := range []int64{0, 1, 42, 999999} {
		nonce, err := RandNonce()
		qt.Assert(t, err, qt.IsNil)
		c, err := Commit(pub, big.NewInt(v), nonce)
		qt.Assert(t, err, qt.IsNil)

		got, err := Decrypt(priv, c, testMaxPlaintext)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, got.Int64(), qt.Equals, v)
	}
}

func TestCommitDeterministic(t *testing.T) {
	pub, _, err := GenerateKey(curves.New(CurveType))
	qt.Assert(t, err, qt.IsNil)

	nonce, err := RandNonce()
	qt.Assert(t, err, qt.IsNil)

	c1, err := Commit(pub, big.NewInt(77), nonce)
	qt.Assert(t, err, qt.IsNil)
	c2, err := Commit(pub, big.NewInt(77), nonce)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, c1.Equal(c2), qt.IsTrue)

	// a different nonce yields a different ciphertext for the same value
	nonce2, err := RandNonce()
	qt.Assert(t, err, qt.IsNil)
	c3, err := Commit(pub, big.NewInt(77), nonce2)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, c1.Equal(c3), qt.IsFalse)
}

// TestConservation checks the core homomorphic property: the sum of
// commitments decrypts to the sum of the committed values.
func TestConservation(t *testing.T) {
	pub, priv, err := GenerateKey(curves.New(CurveType))
	qt.Assert(t, err, qt.IsNil)

	values := []int64{5, 17, 128, 3000, 1}
	total := Zero()
	var expected int64
	for _, v := range values {
		nonce, err := RandNonce()
		qt.Assert(t, err, qt.IsNil)
		c, err := Commit(pub, big.NewInt(v), nonce)
		qt.Assert(t, err, qt.IsNil)
		total = total.Add(c)
		expected += v
	}

	got, err := Decrypt(priv, total, testMaxPlaintext)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got.Int64(), qt.Equals, expected)
}

func TestSubtract(t *testing.T) {
	pub, priv, err := GenerateKey(curves.New(CurveType))
	qt.Assert(t, err, qt.IsNil)

	n1, _ := RandNonce()
	n2, _ := RandNonce()
	c100, err := Commit(pub, big.NewInt(100), n1)
	qt.Assert(t, err, qt.IsNil)
	c30, err := Commit(pub, big.NewInt(30), n2)
	qt.Assert(t, err, qt.IsNil)

	diff := c100.Subtract(c30)
	got, err := Decrypt(priv, diff, testMaxPlaintext)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got.Int64(), qt.Equals, int64(70))

	// underflow surfaces as an out-of-range plaintext at decryption
	under := c30.Subtract(c100)
	_, err = Decrypt(priv, under, testMaxPlaintext)
	qt.Assert(t, err, qt.IsNotNil)
}

func TestScale(t *testing.T) {
	pub, priv, err := GenerateKey(curves.New(CurveType))
	qt.Assert(t, err, qt.IsNil)

	nonce, _ := RandNonce()
	c, err := Commit(pub, big.NewInt(21), nonce)
	qt.Assert(t, err, qt.IsNil)

	got, err := Decrypt(priv, c.Scale(big.NewInt(3)), testMaxPlaintext)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got.Int64(), qt.Equals, int64(63))
}

func TestVerifyOpening(t *testing.T) {
	pub, _, err := GenerateKey(curves.New(CurveType))
	qt.Assert(t, err, qt.IsNil)

	nonce, _ := RandNonce()
	value := big.NewInt(500)
	c, err := Commit(pub, value, nonce)
	qt.Assert(t, err, qt.IsNil)

	proof := &Proof{Nonce: nonce}
	qt.Assert(t, VerifyOpening(pub, c, proof, value), qt.IsTrue)

	// wrong value
	qt.Assert(t, VerifyOpening(pub, c, proof, big.NewInt(501)), qt.IsFalse)
	// wrong nonce
	other, _ := RandNonce()
	qt.Assert(t, VerifyOpening(pub, c, &Proof{Nonce: other}, value), qt.IsFalse)
	// malformed proofs fail closed
	qt.Assert(t, VerifyOpening(pub, c, nil, value), qt.IsFalse)
	qt.Assert(t, VerifyOpening(pub, c, &Proof{}, value), qt.IsFalse)
	qt.Assert(t, VerifyOpening(pub, nil, proof, value), qt.IsFalse)
	qt.Assert(t, VerifyOpening(nil, c, proof, value), qt.IsFalse)
}

func TestVerifyOpeningRange(t *testing.T) {
	pub, _, err := GenerateKey(curves.New(CurveType))
	qt.Assert(t, err, qt.IsNil)

	nonce, _ := RandNonce()
	value := big.NewInt(5)
	c, err := Commit(pub, value, nonce)
	qt.Assert(t, err, qt.IsNil)

	inRange := &Proof{Nonce: nonce, Min: big.NewInt(1), Max: big.NewInt(10)}
	qt.Assert(t, VerifyOpening(pub, c, inRange, value), qt.IsTrue)

	tooLow := &Proof{Nonce: nonce, Min: big.NewInt(6), Max: big.NewInt(10)}
	qt.Assert(t, VerifyOpening(pub, c, tooLow, value), qt.IsFalse)

	inverted := &Proof{Nonce: nonce, Min: big.NewInt(10), Max: big.NewInt(1)}
	qt.Assert(t, VerifyOpening(pub, c, inverted, value), qt.IsFalse)
}

func TestCheckNonce(t *testing.T) {
	pub, _, err := GenerateKey(curves.New(CurveType))
	qt.Assert(t, err, qt.IsNil)

	nonce, _ := RandNonce()
	c, err := Commit(pub, big.NewInt(9), nonce)
	qt.Assert(t, err, qt.IsNil)

	qt.Assert(t, CheckNonce(c, nonce), qt.IsTrue)
	other, _ := RandNonce()
	qt.Assert(t, CheckNonce(c, other), qt.IsFalse)
}

func TestSerializeRoundTrip(t *testing.T) {
	pub, priv, err := GenerateKey(curves.New(CurveType))
	qt.Assert(t, err, qt.IsNil)

	nonce, _ := RandNonce()
	c, err := Commit(pub, big.NewInt(1234), nonce)
	qt.Assert(t, err, qt.IsNil)

	data := c.Serialize()
	qt.Assert(t, len(data), qt.Equals, SizeCommitment)

	restored := &Commitment{}
	qt.Assert(t, restored.Deserialize(data), qt.IsNil)
	qt.Assert(t, restored.Equal(c), qt.IsTrue)

	// the restored ciphertext still decrypts
	got, err := Decrypt(priv, restored, testMaxPlaintext)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got.Int64(), qt.Equals, int64(1234))

	// bad lengths are rejected
	qt.Assert(t, restored.Deserialize(data[:17]), qt.IsNotNil)
}

func TestIsValid(t *testing.T) {
	qt.Assert(t, Zero().IsValid(), qt.IsFalse)
	qt.Assert(t, (*Commitment)(nil).IsValid(), qt.IsFalse)

	pub, _, err := GenerateKey(curves.New(CurveType))
	qt.Assert(t, err, qt.IsNil)
	nonce, _ := RandNonce()
	c, err := Commit(pub, big.NewInt(1), nonce)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, c.IsValid(), qt.IsTrue)
}
