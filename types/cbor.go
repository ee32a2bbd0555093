package types

import "github.com/fxamacker/cbor/v2"

// cborEncMode uses the deterministic core encoding options so that the same
// artifact always encodes to the same bytes, which keeps content-derived
// keys stable.
var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

func cborDecode(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}
