package types

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// HexBytes is a []byte slice that encodes to JSON as a 0x-prefixed hex
// string. It is used for ids, commitments and other opaque blobs exposed
// through the API.
type HexBytes []byte

func HexBytesFromString(s string) (HexBytes, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	return b, nil
}

// String returns the hex string representation without the 0x prefix.
func (b HexBytes) String() string {
	return hex.EncodeToString(b)
}

func (b HexBytes) MarshalJSON() ([]byte, error) {
	enc := make([]byte, len(b)*2+4)
	enc[0] = '"'
	enc[1] = '0'
	enc[2] = 'x'
	hex.Encode(enc[3:], b)
	enc[len(enc)-1] = '"'
	return enc, nil
}

func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid JSON string: %q", data)
	}
	data = data[1 : len(data)-1]
	if len(data) >= 2 && data[0] == '0' && (data[1] == 'x' || data[1] == 'X') {
		data = data[2:]
	}
	decoded := make([]byte, hex.DecodedLen(len(data)))
	if _, err := hex.Decode(decoded, data); err != nil {
		return err
	}
	*b = decoded
	return nil
}

// BigInt is a big.Int wrapper that serializes to JSON as a decimal string.
// CBOR encoding uses the raw big.Int encoding from the cbor library.
type BigInt big.Int

func NewBigInt(i int64) *BigInt {
	return (*BigInt)(big.NewInt(i))
}

// MathBigInt converts b to a math/big *big.Int.
func (b *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(b)
}

func (b *BigInt) String() string {
	return b.MathBigInt().String()
}

func (b *BigInt) SetString(s string) (*BigInt, bool) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, false
	}
	return (*BigInt)(i), true
}

func (b *BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid big integer: %q", s)
	}
	*b = BigInt(*i)
	return nil
}

func (b *BigInt) MarshalCBOR() ([]byte, error) {
	return cborEncMode.Marshal(b.MathBigInt().Bytes())
}

func (b *BigInt) UnmarshalCBOR(data []byte) error {
	var buf []byte
	if err := cborDecode(data, &buf); err != nil {
		return err
	}
	*b = BigInt(*new(big.Int).SetBytes(buf))
	return nil
}

// Equal reports whether b and x represent the same integer.
func (b *BigInt) Equal(x *BigInt) bool {
	if b == nil || x == nil {
		return b == x
	}
	return b.MathBigInt().Cmp(x.MathBigInt()) == 0
}
