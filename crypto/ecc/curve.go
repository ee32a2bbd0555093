// Package ecc defines the elliptic curve group interface the commitment
// algebra is built on. Implementations live in subpackages and are selected
// through the curves factory.
package ecc

import "math/big"

// Point is an element of an elliptic curve group. Operations that take
// other points expect them to belong to the same backend.
type Point interface {
	// New returns a fresh zero point on the same curve.
	New() Point

	// Order returns the order of the group as a big integer.
	Order() *big.Int

	// Add sets the receiver to a+b.
	Add(a, b Point)

	// SafeAdd is Add with exclusive access to the receiver, safe for
	// concurrent accumulation into a shared point.
	SafeAdd(a, b Point)

	// ScalarMult sets the receiver to scalar*a.
	ScalarMult(a Point, scalar *big.Int)

	// ScalarBaseMult sets the receiver to scalar*G.
	ScalarBaseMult(scalar *big.Int)

	// Neg sets the receiver to -a.
	Neg(a Point)

	// Equal reports whether the receiver and a are the same element.
	Equal(a Point) bool

	// SetZero sets the receiver to the group identity.
	SetZero()

	// Set copies a into the receiver.
	Set(a Point)

	// SetGenerator sets the receiver to the group generator.
	SetGenerator()

	// Marshal serializes the point.
	Marshal() []byte

	// Unmarshal deserializes a point produced by Marshal.
	Unmarshal(buf []byte) error

	// Point returns the affine coordinates.
	Point() (*big.Int, *big.Int)

	// SetPoint returns a point with the given affine coordinates.
	SetPoint(x, y *big.Int) Point

	// String returns a hex representation, mostly for debugging.
	String() string
}
