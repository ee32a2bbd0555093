// Package curves instantiates ecc.Point implementations by type name.
package curves

import (
	"fmt"

	"github.com/crowdveil/crowdveil/crypto/ecc"
	"github.com/crowdveil/crowdveil/crypto/ecc/bn254"
)

const (
	CurveTypeBN254 = "bn254"
)

// New creates a zero point on the curve identified by curveType. It panics
// on unknown types, which are a programming error rather than bad input.
func New(curveType string) ecc.Point {
	switch curveType {
	case CurveTypeBN254:
		return bn254.New()
	default:
		panic(fmt.Sprintf("unsupported curve type: %s", curveType))
	}
}
