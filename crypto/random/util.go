package random

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	gbig "math/big"

	big "github.com/ncw/gmp"
)

// Int returns a random int < max
func Int(max *big.Int) *big.Int {
	r, err := rand.Int(rand.Reader, new(gbig.Int).SetBytes(max.Bytes()))
	if err != nil {
		// the rand.Reader is broken. Nothing we can do.
		panic(err)
	}
	return new(big.Int).SetBytes(r.Bytes())
}

// Vector returns n random ints < max
func Vector(n int, max *big.Int) []*big.Int {
	v := make([]*big.Int, n)
	for i := range v {
		v[i] = Int(max)
	}
	return v
}

// Permutation returns a uniformly random permutation of 0..n-1
func Permutation(n int) []int {
	pi := make([]int, n)
	for i := range pi {
		pi[i] = i
	}
	// Fisher-Yates
	for i := n - 1; i > 0; i-- {
		j := int(Int(big.NewInt(int64(i + 1))).Int64())
		pi[i], pi[j] = pi[j], pi[i]
	}
	return pi
}

// SafePrimes returns two primes P and Q where P is pbits bits
// and P = 2Q + 1
func SafePrimes(bits int) (*big.Int, *big.Int) {
	one := gbig.NewInt(1)
	alpha := gbig.NewInt(2)

	q, p := new(gbig.Int), new(gbig.Int)
	var err error
	for {
		p, err = rand.Prime(rand.Reader, bits)
		// will only err on bad reader.
		if err != nil {
			panic(err)
		}
		// check is q = (p-1)/alpha is prime
		q.Sub(p, one)
		q.Div(q, alpha)
		// we use 20 as that is what rand.Prime uses
		if q.ProbablyPrime(20) {
			P := new(big.Int).SetBytes(p.Bytes())
			Q := new(big.Int).SetBytes(q.Bytes())
			return P, Q
		}
	}
}

// ID returns a random 128 bit identifier as 32 upper case hex digits
func ID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return strings.ToUpper(hex.EncodeToString(b))
}
