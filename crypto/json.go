package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	big "github.com/ncw/gmp"
)

// BigIntToJSON encodes as "0x" prefixed lower case hex
func BigIntToJSON(x *big.Int) string {
	b := x.Bytes()
	if len(b) == 0 {
		b = []byte{0}
	}
	return "0x" + hex.EncodeToString(b)
}

// BigIntFromJSON reads "0x" prefixed hex, unpadded base64url or padded
// standard base64. Producers of election artifacts are not consistent.
// A base64 value may itself start with "0x", so a prefixed string that is
// not valid hex is read as base64.
func BigIntFromJSON(s string) (*big.Int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		h := s[2:]
		if len(h)%2 == 1 {
			h = "0" + h
		}
		if b, err := hex.DecodeString(h); err == nil && len(b) > 0 {
			return new(big.Int).SetBytes(b), nil
		}
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("Expecting hex or base64 encoded integer, got: %s", s)
		}
	}
	return new(big.Int).SetBytes(b), nil
}

// BigInt is a JSON friendly *big.Int. Convert with Int() and NewBigInt
type BigInt big.Int

// NewBigInt wraps x (no copy)
func NewBigInt(x *big.Int) *BigInt {
	return (*BigInt)(x)
}

// Int returns the underlying integer, nil for a nil receiver
func (b *BigInt) Int() *big.Int {
	return (*big.Int)(b)
}

func (b *BigInt) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return json.Marshal(BigIntToJSON(b.Int()))
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := BigIntFromJSON(s)
	if err != nil {
		return err
	}
	b.Int().Set(n)
	return nil
}

// slice of *big.Int s
type BigIntSlice []*big.Int

func (s BigIntSlice) MarshalJSON() ([]byte, error) {
	strs := make([]string, len(s))
	for i, n := range s {
		strs[i] = BigIntToJSON(n)
	}
	return json.Marshal(strs)
}

func (s *BigIntSlice) UnmarshalJSON(b []byte) error {
	var strs []string
	if err := json.Unmarshal(b, &strs); err != nil {
		return err
	}
	bs := make(BigIntSlice, len(strs))
	for i := range strs {
		n, err := BigIntFromJSON(strs[i])
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		bs[i] = n
	}
	*s = bs
	return nil
}

// Equal compares element-wise
func (s BigIntSlice) Equal(o BigIntSlice) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] == nil || o[i] == nil {
			if s[i] != o[i] {
				return false
			}
			continue
		}
		if s[i].Cmp(o[i]) != 0 {
			return false
		}
	}
	return true
}
