// Package hashing implements the recursive hash used for every Fiat-Shamir
// challenge and every signed message.
//
// Values are hashed with SHA3-256 after a one byte type tag:
//
//	bytes   H(0x00 || b)
//	integer H(0x01 || big-endian bytes, at least one byte)
//	string  H(0x02 || utf8)
//	list    H(0x03 || H(v1) || ... || H(vn))
//
// HashToZq stretches a recursive hash with SHAKE256 to bitlen(q)+256 bits
// and reduces modulo q, so the bias is negligible.
package hashing

import (
	"fmt"

	big "github.com/ncw/gmp"
	"golang.org/x/crypto/sha3"

	"github.com/thechriswalker/go-verifier/crypto"
)

const (
	tagBytes   byte = 0x00
	tagInteger byte = 0x01
	tagString  byte = 0x02
	tagList    byte = 0x03
)

var zqDomain = []byte("RecursiveHash")

// RecursiveHash hashes the values as a list. Supported types are string,
// []byte, int, *big.Int, *crypto.BigInt, []*big.Int, crypto.BigIntSlice,
// []string and []interface{} (nested lists). Anything else is a
// programming error and panics.
func RecursiveHash(values ...interface{}) []byte {
	return digest(values)
}

// HashToZq derives a challenge in [0, q)
func HashToZq(q *big.Int, values ...interface{}) *big.Int {
	h := sha3.NewShake256()
	h.Write(integerBytes(q))
	h.Write(zqDomain)
	h.Write(digest(values))
	out := make([]byte, (q.BitLen()+256+7)/8)
	h.Read(out)
	x := new(big.Int).SetBytes(out)
	return x.Mod(x, q)
}

func integerBytes(x *big.Int) []byte {
	b := x.Bytes()
	if len(b) == 0 {
		return []byte{0}
	}
	return b
}

func sum(tag byte, parts ...[]byte) []byte {
	h := sha3.New256()
	h.Write([]byte{tag})
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

func digest(v interface{}) []byte {
	switch x := v.(type) {
	case []byte:
		return sum(tagBytes, x)
	case string:
		return sum(tagString, []byte(x))
	case int:
		if x < 0 {
			panic(fmt.Sprintf("hashing: negative integer %d", x))
		}
		return sum(tagInteger, integerBytes(big.NewInt(int64(x))))
	case *big.Int:
		if x == nil {
			panic("hashing: nil integer")
		}
		if x.Sign() < 0 {
			panic("hashing: negative integer")
		}
		return sum(tagInteger, integerBytes(x))
	case *crypto.BigInt:
		return digest(x.Int())
	case []*big.Int:
		parts := make([][]byte, len(x))
		for i := range x {
			parts[i] = digest(x[i])
		}
		return sum(tagList, parts...)
	case crypto.BigIntSlice:
		return digest([]*big.Int(x))
	case []string:
		parts := make([][]byte, len(x))
		for i := range x {
			parts[i] = digest(x[i])
		}
		return sum(tagList, parts...)
	case []interface{}:
		parts := make([][]byte, len(x))
		for i := range x {
			parts[i] = digest(x[i])
		}
		return sum(tagList, parts...)
	default:
		panic(fmt.Sprintf("hashing: unsupported type %T", v))
	}
}
