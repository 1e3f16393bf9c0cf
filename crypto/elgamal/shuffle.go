package elgamal

import (
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto/hashing"
)

// ShuffleArgument is a Bayer-Groth argument that the shuffled ciphertexts
// are a re-encrypted permutation of the input. The ciphertexts are laid
// out as a single row (m = 1), so the product argument reduces to a single
// value product argument.
type ShuffleArgument struct {
	CA       []*big.Int
	CB       []*big.Int
	Product  *SingleValueProductArgument
	MultiExp *MultiExponentiationArgument
}

// SingleValueProductArgument shows a committed vector multiplies to b
type SingleValueProductArgument struct {
	CD          *big.Int
	CLowerDelta *big.Int
	CUpperDelta *big.Int
	ATilde      []*big.Int
	BTilde      []*big.Int
	RTilde      *big.Int
	STilde      *big.Int
}

// MultiExponentiationArgument shows C = Enc(1; rho) * prod C_i^a_i for the
// committed vector a
type MultiExponentiationArgument struct {
	CA0 *big.Int
	CB  []*big.Int
	E   []*Ciphertext
	A   []*big.Int
	R   *big.Int
	B   *big.Int
	S   *big.Int
	Tau *big.Int
}

type shuffleContext struct {
	sys *System
	pk  []*big.Int
	ck  *CommitmentKey
}

func (sc *shuffleContext) public() []interface{} {
	return []interface{}{sc.sys.P, sc.sys.Q, sc.pk, sc.ck.hashable()}
}

func shuffleFail(check string, args ...interface{}) error {
	return &ProofError{Proof: "ShuffleArgument", Check: fmt.Sprintf(check, args...)}
}

func (sc *shuffleContext) challenges(in, out []*Ciphertext, cA, cB []*big.Int) (x, y, z *big.Int) {
	base := append(sc.public(), ciphertextsHashable(in), ciphertextsHashable(out), cA)
	x = hashing.HashToZq(sc.sys.Q, base...)
	y = hashing.HashToZq(sc.sys.Q, append([]interface{}{cB}, base...)...)
	z = hashing.HashToZq(sc.sys.Q, append([]interface{}{"1", cB}, base...)...)
	return
}

// productTarget is prod_{i<n} (y*i + x^i - z) mod q
func productTarget(sys *System, n int, x, y, z *big.Int) *big.Int {
	b := big.NewInt(1)
	xi := big.NewInt(1)
	for i := 0; i < n; i++ {
		f := sys.MulQ(y, big.NewInt(int64(i)))
		f = sys.AddQ(f, xi)
		f = sys.SubQ(f, z)
		b = sys.MulQ(b, f)
		xi = sys.MulQ(xi, x)
	}
	return b
}

func powers(sys *System, x *big.Int, n int) []*big.Int {
	out := make([]*big.Int, n)
	xi := big.NewInt(1)
	for i := range out {
		out[i] = xi
		xi = sys.MulQ(xi, x)
	}
	return out
}

// VerifyShuffle checks that out is a shuffle of in under pk. Ciphertext
// sizes must match len(pk), and ck must be at least len(in) long.
func VerifyShuffle(sys *System, pk []*big.Int, ck *CommitmentKey, in, out []*Ciphertext, arg *ShuffleArgument) error {
	if arg == nil || arg.Product == nil || arg.MultiExp == nil {
		return fmt.Errorf("ShuffleArgument: missing argument: %w", ErrMalformed)
	}
	n := len(in)
	if n < 2 {
		return shuffleFail("%d input ciphertexts, at least 2 required", n)
	}
	if len(out) != n {
		return shuffleFail("%d shuffled ciphertexts for %d inputs", len(out), n)
	}
	if ck.Size() < n {
		return fmt.Errorf("ShuffleArgument: commitment key of size %d for %d ciphertexts: %w", ck.Size(), n, ErrMalformed)
	}
	if len(arg.CA) != 1 || len(arg.CB) != 1 {
		return fmt.Errorf("ShuffleArgument: only single row arguments are supported, got m=%d: %w", len(arg.CA), ErrMalformed)
	}
	for i := range in {
		if in[i].Size() != len(pk) {
			return shuffleFail("input ciphertext %d has %d phis, key has %d elements", i, in[i].Size(), len(pk))
		}
		if out[i].Size() != len(pk) {
			return shuffleFail("shuffled ciphertext %d has %d phis, key has %d elements", i, out[i].Size(), len(pk))
		}
		if !in[i].IsMember(sys) {
			return shuffleFail("input ciphertext %d not a group member", i)
		}
		if !out[i].IsMember(sys) {
			return shuffleFail("shuffled ciphertext %d not a group member", i)
		}
	}
	if !sys.IsMember(arg.CA[0]) || !sys.IsMember(arg.CB[0]) {
		return shuffleFail("commitments c_A, c_B not group members")
	}
	sc := &shuffleContext{sys: sys, pk: pk, ck: ck}
	x, y, z := sc.challenges(in, out, arg.CA, arg.CB)

	minusZ := make([]*big.Int, n)
	for i := range minusZ {
		minusZ[i] = sys.NegQ(z)
	}
	cMinusZ := ck.Commit(sys, minusZ, bigZero)
	cD := sys.Mul(sys.Exp(arg.CA[0], y), arg.CB[0])
	b := productTarget(sys, n, x, y, z)

	if err := sc.verifySingleValueProduct(sys.Mul(cD, cMinusZ), b, n, arg.Product); err != nil {
		return err
	}

	cx := ProductOf(sys, in, powers(sys, x, n))
	return sc.verifyMultiExponentiation(out, cx, arg.CB[0], arg.MultiExp)
}

func (sc *shuffleContext) svpChallenge(cA, b *big.Int, arg *SingleValueProductArgument) *big.Int {
	return hashing.HashToZq(sc.sys.Q, append([]interface{}{arg.CUpperDelta, arg.CLowerDelta, arg.CD, b, cA}, sc.public()...)...)
}

func (sc *shuffleContext) verifySingleValueProduct(cA, b *big.Int, n int, arg *SingleValueProductArgument) error {
	sys := sc.sys
	fail := func(check string, args ...interface{}) error {
		return &ProofError{Proof: "SingleValueProductArgument", Check: fmt.Sprintf(check, args...)}
	}
	if arg.CD == nil || arg.CLowerDelta == nil || arg.CUpperDelta == nil || arg.RTilde == nil || arg.STilde == nil {
		return fmt.Errorf("SingleValueProductArgument: missing values: %w", ErrMalformed)
	}
	if len(arg.ATilde) != n || len(arg.BTilde) != n {
		return fail("a~ and b~ have %d and %d elements, expected %d", len(arg.ATilde), len(arg.BTilde), n)
	}
	for _, c := range []*big.Int{arg.CD, arg.CLowerDelta, arg.CUpperDelta} {
		if !sys.IsMember(c) {
			return fail("commitment not a group member")
		}
	}
	for i := 0; i < n; i++ {
		if !sys.InZq(arg.ATilde[i]) || !sys.InZq(arg.BTilde[i]) {
			return fail("a~[%d] or b~[%d] not in Z_q", i, i)
		}
	}
	if !sys.InZq(arg.RTilde) || !sys.InZq(arg.STilde) {
		return fail("r~ or s~ not in Z_q")
	}
	x := sc.svpChallenge(cA, b, arg)

	// c_a^x * c_d == commit(a~; r~)
	lhs := sys.Mul(sys.Exp(cA, x), arg.CD)
	if lhs.Cmp(sc.ck.Commit(sys, arg.ATilde, arg.RTilde)) != 0 {
		return fail("c_a^x * c_d != commit(a~; r~)")
	}
	// c_Delta^x * c_delta == commit(x*b~_{i+1} - b~_i*a~_{i+1}; s~)
	e := make([]*big.Int, n-1)
	for i := 0; i < n-1; i++ {
		e[i] = sys.SubQ(sys.MulQ(x, arg.BTilde[i+1]), sys.MulQ(arg.BTilde[i], arg.ATilde[i+1]))
	}
	lhs = sys.Mul(sys.Exp(arg.CUpperDelta, x), arg.CLowerDelta)
	if lhs.Cmp(sc.ck.Commit(sys, e, arg.STilde)) != 0 {
		return fail("c_Delta^x * c_delta != commit(x*b~_(i+1) - b~_i*a~_(i+1); s~)")
	}
	if arg.BTilde[0].Cmp(arg.ATilde[0]) != 0 {
		return fail("b~_1 != a~_1")
	}
	if arg.BTilde[n-1].Cmp(sys.MulQ(x, b)) != 0 {
		return fail("b~_n != x * b")
	}
	return nil
}

func (sc *shuffleContext) multiExpChallenge(rows []*Ciphertext, c *Ciphertext, cA *big.Int, arg *MultiExponentiationArgument) *big.Int {
	v := append(sc.public(), ciphertextsHashable(rows), c.hashable(), []*big.Int{cA}, arg.CA0, arg.CB, ciphertextsHashable(arg.E))
	return hashing.HashToZq(sc.sys.Q, v...)
}

// encryptGb is Enc((g^b, .., g^b); tau) under pk
func (sc *shuffleContext) encryptGb(b, tau *big.Int) *Ciphertext {
	sys := sc.sys
	gb := sys.Exp(sys.G, b)
	m := make([]*big.Int, len(sc.pk))
	for i := range m {
		m[i] = gb
	}
	return (&PublicKey{System: sys, Y: sc.pk}).Encrypt(m, tau)
}

func (sc *shuffleContext) verifyMultiExponentiation(rows []*Ciphertext, c *Ciphertext, cA *big.Int, arg *MultiExponentiationArgument) error {
	sys := sc.sys
	fail := func(check string, args ...interface{}) error {
		return &ProofError{Proof: "MultiExponentiationArgument", Check: fmt.Sprintf(check, args...)}
	}
	if arg.CA0 == nil || arg.R == nil || arg.B == nil || arg.S == nil || arg.Tau == nil {
		return fmt.Errorf("MultiExponentiationArgument: missing values: %w", ErrMalformed)
	}
	n := len(rows)
	if len(arg.CB) != 2 || len(arg.E) != 2 {
		return fail("c_B and E must have 2 elements, got %d and %d", len(arg.CB), len(arg.E))
	}
	if arg.CB[0] == nil || arg.CB[1] == nil {
		return fmt.Errorf("MultiExponentiationArgument: missing c_B: %w", ErrMalformed)
	}
	if len(arg.A) != n {
		return fail("a has %d elements, expected %d", len(arg.A), n)
	}
	if !sys.IsMember(arg.CA0) || !sys.IsMember(arg.CB[0]) {
		return fail("commitment not a group member")
	}
	for i, e := range arg.E {
		if e == nil || e.Size() != len(sc.pk) || !e.IsMember(sys) {
			return fail("E_%d not a valid ciphertext", i)
		}
	}
	for i := range arg.A {
		if !sys.InZq(arg.A[i]) {
			return fail("a[%d] not in Z_q", i)
		}
	}
	for _, v := range []*big.Int{arg.R, arg.B, arg.S, arg.Tau} {
		if !sys.InZq(v) {
			return fail("response not in Z_q")
		}
	}
	if arg.CB[1].Cmp(bigOne) != 0 {
		return fail("c_B_m != commit(0; 0)")
	}
	if !arg.E[1].Equals(c) {
		return fail("E_m != C")
	}
	x := sc.multiExpChallenge(rows, c, cA, arg)

	// c_A0 * c_A^x == commit(a; r)
	lhs := sys.Mul(arg.CA0, sys.Exp(cA, x))
	if lhs.Cmp(sc.ck.Commit(sys, arg.A, arg.R)) != 0 {
		return fail("c_A0 * c_A^x != commit(a; r)")
	}
	// c_B0 * c_B1^x == commit(b; s)
	lhs = sys.Mul(arg.CB[0], sys.Exp(arg.CB[1], x))
	if lhs.Cmp(sc.ck.Commit(sys, []*big.Int{arg.B}, arg.S)) != 0 {
		return fail("c_B0 * c_B1^x != commit(b; s)")
	}
	// E_0 * E_1^x == Enc(g^b; tau) * prod C_i^a_i
	left := arg.E[0].Mul(sys, arg.E[1].Exp(sys, x))
	right := sc.encryptGb(arg.B, arg.Tau).Mul(sys, ProductOf(sys, rows, arg.A))
	if !left.Equals(right) {
		return fail("E_0 * E_1^x != Enc(g^b; tau) * prod C_i^a_i")
	}
	return nil
}
