package elgamal

import (
	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto/random"
)

// Shuffle permutes and re-encrypts the ciphertexts under pk and produces
// the matching ShuffleArgument. Used to build mixnet output for
// simulated elections.
func Shuffle(sys *System, pk []*big.Int, ck *CommitmentKey, in []*Ciphertext) ([]*Ciphertext, *ShuffleArgument) {
	n := len(in)
	key := &PublicKey{System: sys, Y: pk}
	pi := random.Permutation(n)
	rho := random.Vector(n, sys.Q)
	ones := make([]*big.Int, len(pk))
	for i := range ones {
		ones[i] = big.NewInt(1)
	}
	out := make([]*Ciphertext, n)
	for i := range out {
		out[i] = in[pi[i]].Mul(sys, key.Encrypt(ones, rho[i]))
	}

	sc := &shuffleContext{sys: sys, pk: pk, ck: ck}
	a := make([]*big.Int, n)
	for i := range a {
		a[i] = big.NewInt(int64(pi[i]))
	}
	r := random.Int(sys.Q)
	cA := []*big.Int{ck.Commit(sys, a, r)}

	x, _, _ := sc.challenges(in, out, cA, nil)
	xs := powers(sys, x, n)
	b := make([]*big.Int, n)
	for i := range b {
		b[i] = xs[pi[i]]
	}
	s := random.Int(sys.Q)
	cB := []*big.Int{ck.Commit(sys, b, s)}
	_, y, z := sc.challenges(in, out, cA, cB)

	// d - z with randomness t, committed as c_A^y * c_B * c_{-z}
	dz := make([]*big.Int, n)
	for i := range dz {
		dz[i] = sys.SubQ(sys.AddQ(sys.MulQ(y, a[i]), b[i]), z)
	}
	t := sys.AddQ(sys.MulQ(y, r), s)
	minusZ := make([]*big.Int, n)
	for i := range minusZ {
		minusZ[i] = sys.NegQ(z)
	}
	cDz := sys.Mul(sys.Exp(cA[0], y), cB[0], ck.Commit(sys, minusZ, bigZero))
	product := sc.proveSingleValueProduct(cDz, dz, t)

	// C^x = Enc(1; -sum rho_i b_i) * prod out_i^b_i
	rhoB := big.NewInt(0)
	for i := range rho {
		rhoB = sys.AddQ(rhoB, sys.MulQ(rho[i], b[i]))
	}
	cx := ProductOf(sys, in, xs)
	multi := sc.proveMultiExponentiation(out, cx, cB[0], b, s, sys.NegQ(rhoB))

	return out, &ShuffleArgument{CA: cA, CB: cB, Product: product, MultiExp: multi}
}

func (sc *shuffleContext) proveSingleValueProduct(cA *big.Int, a []*big.Int, r *big.Int) *SingleValueProductArgument {
	sys, ck := sc.sys, sc.ck
	n := len(a)
	// running products b_i = a_0 * .. * a_i
	bs := make([]*big.Int, n)
	bs[0] = a[0]
	for i := 1; i < n; i++ {
		bs[i] = sys.MulQ(bs[i-1], a[i])
	}
	d := random.Vector(n, sys.Q)
	rd := random.Int(sys.Q)
	delta := make([]*big.Int, n)
	delta[0] = d[0]
	for i := 1; i < n-1; i++ {
		delta[i] = random.Int(sys.Q)
	}
	delta[n-1] = big.NewInt(0)
	s0 := random.Int(sys.Q)
	sx := random.Int(sys.Q)

	lower := make([]*big.Int, n-1)
	upper := make([]*big.Int, n-1)
	for i := 0; i < n-1; i++ {
		lower[i] = sys.NegQ(sys.MulQ(delta[i], d[i+1]))
		u := sys.SubQ(delta[i+1], sys.MulQ(a[i+1], delta[i]))
		upper[i] = sys.SubQ(u, sys.MulQ(bs[i], d[i+1]))
	}
	arg := &SingleValueProductArgument{
		CD:          ck.Commit(sys, d, rd),
		CLowerDelta: ck.Commit(sys, lower, s0),
		CUpperDelta: ck.Commit(sys, upper, sx),
	}
	x := sc.svpChallenge(cA, bs[n-1], arg)
	arg.ATilde = make([]*big.Int, n)
	arg.BTilde = make([]*big.Int, n)
	for i := 0; i < n; i++ {
		arg.ATilde[i] = sys.AddQ(sys.MulQ(x, a[i]), d[i])
		arg.BTilde[i] = sys.AddQ(sys.MulQ(x, bs[i]), delta[i])
	}
	arg.RTilde = sys.AddQ(sys.MulQ(x, r), rd)
	arg.STilde = sys.AddQ(sys.MulQ(x, sx), s0)
	return arg
}

func (sc *shuffleContext) proveMultiExponentiation(rows []*Ciphertext, c *Ciphertext, cA *big.Int, a []*big.Int, r, rho *big.Int) *MultiExponentiationArgument {
	sys, ck := sc.sys, sc.ck
	n := len(rows)
	a0 := random.Vector(n, sys.Q)
	r0 := random.Int(sys.Q)
	b0 := random.Int(sys.Q)
	s0 := random.Int(sys.Q)
	tau0 := random.Int(sys.Q)

	e0 := sc.encryptGb(b0, tau0).Mul(sys, ProductOf(sys, rows, a0))
	arg := &MultiExponentiationArgument{
		CA0: ck.Commit(sys, a0, r0),
		CB:  []*big.Int{ck.Commit(sys, []*big.Int{b0}, s0), big.NewInt(1)},
		E:   []*Ciphertext{e0, c},
	}
	x := sc.multiExpChallenge(rows, c, cA, arg)
	arg.A = make([]*big.Int, n)
	for i := range a {
		arg.A[i] = sys.AddQ(a0[i], sys.MulQ(x, a[i]))
	}
	arg.R = sys.AddQ(r0, sys.MulQ(x, r))
	arg.B = b0
	arg.S = s0
	arg.Tau = sys.AddQ(tau0, sys.MulQ(x, rho))
	return arg
}
