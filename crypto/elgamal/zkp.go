package elgamal

import (
	"errors"
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto/hashing"
	"github.com/thechriswalker/go-verifier/crypto/random"
)

// ProofError is returned when a proof was evaluated and did not hold.
// Check names the precondition or equation that failed.
type ProofError struct {
	Proof string
	Check string
}

func (e *ProofError) Error() string {
	return e.Proof + ": " + e.Check
}

// IsProofError reports whether err (or something it wraps) is a ProofError
func IsProofError(err error) bool {
	var pe *ProofError
	return errors.As(err, &pe)
}

// ErrMalformed marks inputs that cannot be evaluated at all (nil values,
// mismatched dimensions the caller should have caught).
var ErrMalformed = errors.New("malformed proof input")

// All our proofs of knowledge share one shape (a sigma protocol made
// non-interactive with Fiat-Shamir). For a homomorphism phi from Z_q^k
// into the group, statement y = phi(x) and proof (e, z):
//
//	c  = phi(z) * y^-e
//	e' = HashToZq(q, f, y, c, aux)
//
// and the proof holds iff e' == e. The prover picks b at random, sets
// c = phi(b), derives e and answers z = b + e*x.
type sigma struct {
	name  string
	sys   *System
	k     int
	phi   func(x []*big.Int) []*big.Int
	bases []*big.Int
	y     []*big.Int
	aux   []interface{}
}

func (sg *sigma) challenge(c []*big.Int) *big.Int {
	f := append([]*big.Int{sg.sys.P, sg.sys.Q, sg.sys.G}, sg.bases...)
	aux := append([]interface{}{sg.name}, sg.aux...)
	return hashing.HashToZq(sg.sys.Q, f, sg.y, c, aux)
}

func (sg *sigma) fail(format string, args ...interface{}) error {
	return &ProofError{Proof: sg.name, Check: fmt.Sprintf(format, args...)}
}

func (sg *sigma) verify(e *big.Int, z []*big.Int) error {
	if e == nil {
		return fmt.Errorf("%s: missing challenge: %w", sg.name, ErrMalformed)
	}
	if !sg.sys.InZq(e) {
		return sg.fail("challenge e not in Z_q")
	}
	if len(z) != sg.k {
		return sg.fail("response has %d elements, expected %d", len(z), sg.k)
	}
	for i, zi := range z {
		if zi == nil {
			return fmt.Errorf("%s: missing response element %d: %w", sg.name, i, ErrMalformed)
		}
		if !sg.sys.InZq(zi) {
			return sg.fail("response z[%d] not in Z_q", i)
		}
	}
	for i, b := range sg.bases {
		if !sg.sys.IsMember(b) {
			return sg.fail("base %d not a group member", i)
		}
	}
	for i, yi := range sg.y {
		if !sg.sys.IsMember(yi) {
			return sg.fail("statement y[%d] not a group member", i)
		}
	}
	phiZ := sg.phi(z)
	c := make([]*big.Int, len(phiZ))
	for i := range phiZ {
		c[i] = sg.sys.Mul(phiZ[i], sg.sys.ExpNeg(sg.y[i], e))
	}
	if sg.challenge(c).Cmp(e) != 0 {
		return sg.fail("recomputed challenge e' != e")
	}
	return nil
}

func (sg *sigma) prove(x []*big.Int) (*big.Int, []*big.Int) {
	b := random.Vector(sg.k, sg.sys.Q)
	e := sg.challenge(sg.phi(b))
	z := make([]*big.Int, sg.k)
	for i := range z {
		z[i] = sg.sys.AddQ(b[i], sg.sys.MulQ(e, x[i]))
	}
	return e, z
}

// SchnorrProof proves knowledge of x with y = g^x
type SchnorrProof struct {
	E, Z *big.Int
}

func schnorrSigma(sys *System, y *big.Int, aux []interface{}) *sigma {
	return &sigma{
		name: "SchnorrProof",
		sys:  sys,
		k:    1,
		phi: func(x []*big.Int) []*big.Int {
			return []*big.Int{sys.Exp(sys.G, x[0])}
		},
		y:   []*big.Int{y},
		aux: aux,
	}
}

// ProveSchnorr proves knowledge of x for y = g^x
func ProveSchnorr(sys *System, x *big.Int, aux ...interface{}) *SchnorrProof {
	e, z := schnorrSigma(sys, sys.Exp(sys.G, x), aux).prove([]*big.Int{x})
	return &SchnorrProof{E: e, Z: z[0]}
}

// VerifySchnorr checks a Schnorr proof for y
func VerifySchnorr(sys *System, y *big.Int, proof *SchnorrProof, aux ...interface{}) error {
	if proof == nil {
		return fmt.Errorf("SchnorrProof: missing proof: %w", ErrMalformed)
	}
	return schnorrSigma(sys, y, aux).verify(proof.E, []*big.Int{proof.Z})
}

// ExponentiationProof proves that ys[i] = bases[i]^x for a common x
type ExponentiationProof struct {
	E, Z *big.Int
}

func exponentiationSigma(sys *System, bases, ys []*big.Int, aux []interface{}) *sigma {
	return &sigma{
		name: "ExponentiationProof",
		sys:  sys,
		k:    1,
		phi: func(x []*big.Int) []*big.Int {
			out := make([]*big.Int, len(bases))
			for i, g := range bases {
				out[i] = sys.Exp(g, x[0])
			}
			return out
		},
		bases: bases,
		y:     ys,
		aux:   aux,
	}
}

// ProveExponentiation raises the bases to x and proves it
func ProveExponentiation(sys *System, bases []*big.Int, x *big.Int, aux ...interface{}) ([]*big.Int, *ExponentiationProof) {
	ys := make([]*big.Int, len(bases))
	for i, g := range bases {
		ys[i] = sys.Exp(g, x)
	}
	e, z := exponentiationSigma(sys, bases, ys, aux).prove([]*big.Int{x})
	return ys, &ExponentiationProof{E: e, Z: z[0]}
}

// VerifyExponentiation checks that ys are the bases raised to one secret exponent
func VerifyExponentiation(sys *System, bases, ys []*big.Int, proof *ExponentiationProof, aux ...interface{}) error {
	if proof == nil {
		return fmt.Errorf("ExponentiationProof: missing proof: %w", ErrMalformed)
	}
	if len(bases) == 0 || len(bases) != len(ys) {
		return &ProofError{Proof: "ExponentiationProof", Check: fmt.Sprintf("%d bases but %d exponentiated values", len(bases), len(ys))}
	}
	return exponentiationSigma(sys, bases, ys, aux).verify(proof.E, []*big.Int{proof.Z})
}

// DecryptionProof proves that m is the decryption of a ciphertext with the
// secret key behind pk, i.e. pk_i = g^x_i and phi_i / m_i = gamma^x_i
type DecryptionProof struct {
	E *big.Int
	Z []*big.Int
}

func decryptionSigma(sys *System, ct *Ciphertext, pk, m []*big.Int, aux []interface{}) *sigma {
	l := len(ct.Phis)
	y := make([]*big.Int, 0, 2*l)
	y = append(y, pk...)
	for i := range ct.Phis {
		y = append(y, sys.Div(ct.Phis[i], m[i]))
	}
	return &sigma{
		name: "DecryptionProof",
		sys:  sys,
		k:    l,
		phi: func(x []*big.Int) []*big.Int {
			out := make([]*big.Int, 2*l)
			for i := range x {
				out[i] = sys.Exp(sys.G, x[i])
				out[l+i] = sys.Exp(ct.Gamma, x[i])
			}
			return out
		},
		bases: []*big.Int{ct.Gamma},
		y:     y,
		aux:   append([]interface{}{ct.Phis, m}, aux...),
	}
}

// ProveDecryption decrypts ct with sk (which must have as many elements as
// ct has phis) and proves the result. With a share of the key this is a
// proven partial decryption.
func ProveDecryption(sk *SecretKey, ct *Ciphertext, aux ...interface{}) ([]*big.Int, *DecryptionProof) {
	m := sk.PartialDecrypt(ct)
	e, z := decryptionSigma(sk.System, ct, sk.Y, m, aux).prove(sk.X)
	return m, &DecryptionProof{E: e, Z: z}
}

// VerifyDecryption checks that m decrypts ct under pk
func VerifyDecryption(sys *System, ct *Ciphertext, pk, m []*big.Int, proof *DecryptionProof, aux ...interface{}) error {
	if proof == nil || ct == nil || ct.Gamma == nil {
		return fmt.Errorf("DecryptionProof: missing input: %w", ErrMalformed)
	}
	l := len(ct.Phis)
	if len(pk) != l || len(m) != l {
		return &ProofError{Proof: "DecryptionProof", Check: fmt.Sprintf("dimension mismatch: %d phis, %d key elements, %d message elements", l, len(pk), len(m))}
	}
	if !sys.IsMember(ct.Gamma) {
		return &ProofError{Proof: "DecryptionProof", Check: "gamma not a group member"}
	}
	for i := range m {
		if !sys.IsMember(m[i]) {
			return &ProofError{Proof: "DecryptionProof", Check: fmt.Sprintf("message m[%d] not a group member", i)}
		}
		if !sys.IsMember(ct.Phis[i]) {
			return &ProofError{Proof: "DecryptionProof", Check: fmt.Sprintf("phi[%d] not a group member", i)}
		}
	}
	return decryptionSigma(sys, ct, pk, m, aux).verify(proof.E, proof.Z)
}

// PlaintextEqualityProof proves two single-phi ciphertexts, under keys h
// and h', encrypt the same plaintext
type PlaintextEqualityProof struct {
	E *big.Int
	Z []*big.Int
}

func plaintextEqualitySigma(sys *System, c, cp *Ciphertext, h, hp *big.Int, aux []interface{}) *sigma {
	return &sigma{
		name: "PlaintextEqualityProof",
		sys:  sys,
		k:    2,
		phi: func(x []*big.Int) []*big.Int {
			return []*big.Int{
				sys.Exp(sys.G, x[0]),
				sys.Exp(sys.G, x[1]),
				sys.Mul(sys.Exp(h, x[0]), sys.ExpNeg(hp, x[1])),
			}
		},
		bases: []*big.Int{h, hp},
		y:     []*big.Int{c.Gamma, cp.Gamma, sys.Div(c.Phis[0], cp.Phis[0])},
		aux:   append([]interface{}{c.Phis[0], cp.Phis[0]}, aux...),
	}
}

// ProvePlaintextEquality proves c (randomness r, key h) and cp (randomness
// rp, key hp) encrypt the same message
func ProvePlaintextEquality(sys *System, c, cp *Ciphertext, h, hp, r, rp *big.Int, aux ...interface{}) *PlaintextEqualityProof {
	e, z := plaintextEqualitySigma(sys, c, cp, h, hp, aux).prove([]*big.Int{r, rp})
	return &PlaintextEqualityProof{E: e, Z: z}
}

// VerifyPlaintextEquality checks a plaintext equality proof
func VerifyPlaintextEquality(sys *System, c, cp *Ciphertext, h, hp *big.Int, proof *PlaintextEqualityProof, aux ...interface{}) error {
	if proof == nil || c == nil || cp == nil || c.Gamma == nil || cp.Gamma == nil {
		return fmt.Errorf("PlaintextEqualityProof: missing input: %w", ErrMalformed)
	}
	if len(c.Phis) != 1 || len(cp.Phis) != 1 {
		return &ProofError{Proof: "PlaintextEqualityProof", Check: "ciphertexts must have exactly one phi"}
	}
	if !sys.IsMember(c.Phis[0]) || !sys.IsMember(cp.Phis[0]) {
		return &ProofError{Proof: "PlaintextEqualityProof", Check: "phi not a group member"}
	}
	return plaintextEqualitySigma(sys, c, cp, h, hp, aux).verify(proof.E, proof.Z)
}
