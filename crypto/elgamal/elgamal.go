package elgamal

import (
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto/random"
)

// System represents the parameters for an ElGamal Cryptosystem over the
// quadratic residues of a safe prime P = 2Q + 1
type System struct {
	P, Q, G *big.Int
}

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
)

// New creates a new ElGamal system with a prime of n-bits
// this is very slow for large primes (>1024bits)
// G is the smallest integer >= 2 in the order Q subgroup.
func New(bits int) (sys *System) {
	sys = &System{}
	sys.P, sys.Q = random.SafePrimes(bits)
	sys.G = big.NewInt(2)
	for !sys.IsMember(sys.G) {
		sys.G.Add(sys.G, bigOne)
	}
	return
}

// Validate checks the system params are OK. That is that
// P = Q * 2 +1 and that P and Q are (probably) prime
// and that G satisfies the exponentation test
func (s *System) Validate() error {
	if s == nil || s.P == nil || s.Q == nil || s.G == nil {
		return fmt.Errorf("ElGamal System Invalid: missing parameters")
	}
	if !s.P.ProbablyPrime(20) {
		return fmt.Errorf("ElGamal System Invalid: p is not prime")
	}
	if !s.Q.ProbablyPrime(20) {
		return fmt.Errorf("ElGamal System Invalid: q is not prime")
	}
	// p = 2q + 1
	twoQPlusOne := new(big.Int).Mul(s.Q, bigTwo)
	twoQPlusOne.Add(twoQPlusOne, bigOne)
	if twoQPlusOne.Cmp(s.P) != 0 {
		return fmt.Errorf("ElGamal System Invalid: p != 2q + 1")
	}
	if s.G.Cmp(bigTwo) < 0 || s.G.Cmp(s.P) >= 0 {
		return fmt.Errorf("ElGamal System Invalid: g not in [2, p-1]")
	}
	// now check g^q = 1 mod p
	if new(big.Int).Exp(s.G, s.Q, s.P).Cmp(bigOne) != 0 {
		return fmt.Errorf("ElGamal System invalid: g^q != 1 mod p")
	}
	return nil
}

// Equal compares all three parameters
func (s *System) Equal(o *System) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.P.Cmp(o.P) == 0 && s.Q.Cmp(o.Q) == 0 && s.G.Cmp(o.G) == 0
}

// IsMember reports whether x is in the order q subgroup of Z_p*
func (s *System) IsMember(x *big.Int) bool {
	if x == nil || x.Cmp(bigOne) < 0 || x.Cmp(s.P) >= 0 {
		return false
	}
	return new(big.Int).Exp(x, s.Q, s.P).Cmp(bigOne) == 0
}

// InZq reports whether 0 <= x < q
func (s *System) InZq(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(s.Q) < 0
}

// Exp returns b^e mod p, e must be non-negative
func (s *System) Exp(b, e *big.Int) *big.Int {
	return new(big.Int).Exp(b, e, s.P)
}

// Mul returns the product of the xs mod p
func (s *System) Mul(xs ...*big.Int) *big.Int {
	r := big.NewInt(1)
	for _, x := range xs {
		r.Mul(r, x)
		r.Mod(r, s.P)
	}
	return r
}

// Inverse returns x^-1 mod p
func (s *System) Inverse(x *big.Int) *big.Int {
	return new(big.Int).ModInverse(x, s.P)
}

// Div returns a * b^-1 mod p
func (s *System) Div(a, b *big.Int) *big.Int {
	r := s.Inverse(b)
	r.Mul(r, a)
	return r.Mod(r, s.P)
}

// ExpNeg returns b^-e for a group member b. Members have order q so this
// is b^(q-e) and needs no inversion.
func (s *System) ExpNeg(b, e *big.Int) *big.Int {
	ne := new(big.Int).Sub(s.Q, e)
	ne.Mod(ne, s.Q)
	return s.Exp(b, ne)
}

// Exponent arithmetic mod q

func (s *System) AddQ(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, s.Q)
}

func (s *System) SubQ(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, s.Q)
}

func (s *System) MulQ(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, s.Q)
}

func (s *System) NegQ(a *big.Int) *big.Int {
	return s.SubQ(bigZero, a)
}

// Ciphertext is a multi-recipient ElGamal ciphertext (gamma, phi_0..phi_l-1)
// sharing the randomness across all phis.
type Ciphertext struct {
	Gamma *big.Int
	Phis  []*big.Int
}

// Size is the number of phis
func (ct *Ciphertext) Size() int {
	return len(ct.Phis)
}

// Identity is the trivial encryption of 1 with randomness 0
func Identity(l int) *Ciphertext {
	ct := &Ciphertext{Gamma: big.NewInt(1), Phis: make([]*big.Int, l)}
	for i := range ct.Phis {
		ct.Phis[i] = big.NewInt(1)
	}
	return ct
}

// Mul does a homomorphic multiplication of two cipher texts of equal size
func (ct *Ciphertext) Mul(sys *System, other *Ciphertext) *Ciphertext {
	out := &Ciphertext{
		Gamma: sys.Mul(ct.Gamma, other.Gamma),
		Phis:  make([]*big.Int, len(ct.Phis)),
	}
	for i := range ct.Phis {
		out.Phis[i] = sys.Mul(ct.Phis[i], other.Phis[i])
	}
	return out
}

// Exp raises every element to e
func (ct *Ciphertext) Exp(sys *System, e *big.Int) *Ciphertext {
	out := &Ciphertext{
		Gamma: sys.Exp(ct.Gamma, e),
		Phis:  make([]*big.Int, len(ct.Phis)),
	}
	for i := range ct.Phis {
		out.Phis[i] = sys.Exp(ct.Phis[i], e)
	}
	return out
}

func (ct *Ciphertext) Equals(other *Ciphertext) bool {
	if ct == nil || other == nil {
		return ct == other
	}
	if ct.Gamma.Cmp(other.Gamma) != 0 || len(ct.Phis) != len(other.Phis) {
		return false
	}
	for i := range ct.Phis {
		if ct.Phis[i].Cmp(other.Phis[i]) != 0 {
			return false
		}
	}
	return true
}

// IsMember checks every element is a group member
func (ct *Ciphertext) IsMember(sys *System) bool {
	if ct == nil || !sys.IsMember(ct.Gamma) {
		return false
	}
	for _, phi := range ct.Phis {
		if !sys.IsMember(phi) {
			return false
		}
	}
	return true
}

func (ct *Ciphertext) String() string {
	return fmt.Sprintf("Ciphertext[gamma=%s, phis=%v]", ct.Gamma, ct.Phis)
}

func (ct *Ciphertext) hashable() []interface{} {
	return []interface{}{ct.Gamma, ct.Phis}
}

func ciphertextsHashable(cts []*Ciphertext) []interface{} {
	out := make([]interface{}, len(cts))
	for i, ct := range cts {
		out[i] = ct.hashable()
	}
	return out
}

// ProductOf multiplies all ciphertexts raised to the matching exponent
func ProductOf(sys *System, cts []*Ciphertext, exps []*big.Int) *Ciphertext {
	acc := Identity(cts[0].Size())
	for i, ct := range cts {
		acc = acc.Mul(sys, ct.Exp(sys, exps[i]))
	}
	return acc
}
