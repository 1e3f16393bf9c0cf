package elgamal

import (
	"errors"
	"testing"

	big "github.com/ncw/gmp"
)

func shuffleFixture(t *testing.T, n int) (*System, *PublicKey, *CommitmentKey, []*Ciphertext) {
	t.Helper()
	sys := testSystem(t)
	kp := GenerateKeyPair(sys, 2)
	ck, err := VerifiableCommitmentKey(sys, n)
	if err != nil {
		t.Fatal(err)
	}
	in := make([]*Ciphertext, n)
	for i := range in {
		m := []*big.Int{sys.Exp(sys.G, big.NewInt(int64(i+1))), big.NewInt(1)}
		in[i] = kp.Public().Encrypt(m, nil)
	}
	return sys, kp.Public(), ck, in
}

func TestCommitmentKeyIsVerifiable(t *testing.T) {
	sys := testSystem(t)
	a, err := VerifiableCommitmentKey(sys, 5)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := VerifiableCommitmentKey(sys, 5)
	if a.H.Cmp(b.H) != 0 {
		t.Error("commitment key derivation is not deterministic")
	}
	for i, g := range append([]*big.Int{a.H}, a.G...) {
		if !sys.IsMember(g) || g.Cmp(sys.G) == 0 || g.Cmp(bigOne) == 0 {
			t.Errorf("element %d is not a usable group member", i)
		}
	}
}

func TestShuffleArgument(t *testing.T) {
	for _, n := range []int{2, 3, 7} {
		sys, pk, ck, in := shuffleFixture(t, n)
		out, arg := Shuffle(sys, pk.Y, ck, in)
		if err := VerifyShuffle(sys, pk.Y, ck, in, out, arg); err != nil {
			t.Fatalf("n=%d: valid shuffle rejected: %v", n, err)
		}
	}
}

func TestShuffleArgumentDetectsTampering(t *testing.T) {
	sys, pk, ck, in := shuffleFixture(t, 4)
	out, arg := Shuffle(sys, pk.Y, ck, in)

	// replacing a vote changes the challenges and breaks the argument
	swapped := append([]*Ciphertext{}, out...)
	swapped[0] = pk.Encrypt([]*big.Int{sys.G, big.NewInt(1)}, nil)
	if err := VerifyShuffle(sys, pk.Y, ck, in, swapped, arg); !IsProofError(err) {
		t.Errorf("tampered output: expected proof failure, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(a *ShuffleArgument)
		check  string
	}{
		{"a~", func(a *ShuffleArgument) { a.Product.ATilde[1] = sys.AddQ(a.Product.ATilde[1], bigOne) }, "c_a^x * c_d != commit(a~; r~)"},
		{"s~", func(a *ShuffleArgument) { a.Product.STilde = sys.AddQ(a.Product.STilde, bigOne) }, "c_Delta^x * c_delta"},
		{"multiexp a", func(a *ShuffleArgument) { a.MultiExp.A[0] = sys.AddQ(a.MultiExp.A[0], bigOne) }, "c_A0 * c_A^x != commit(a; r)"},
		{"multiexp s", func(a *ShuffleArgument) { a.MultiExp.S = sys.AddQ(a.MultiExp.S, bigOne) }, "c_B0 * c_B1^x != commit(b; s)"},
		{"multiexp tau", func(a *ShuffleArgument) { a.MultiExp.Tau = sys.AddQ(a.MultiExp.Tau, bigOne) }, "E_0 * E_1^x"},
		{"c_B_m", func(a *ShuffleArgument) { a.MultiExp.CB[1] = sys.G }, "c_B_m != commit(0; 0)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cloneArgument(arg)
			tc.mutate(c)
			expectCheck(t, VerifyShuffle(sys, pk.Y, ck, in, out, c), tc.check)
		})
	}
}

func TestShuffleRejectsSingleCiphertext(t *testing.T) {
	sys, pk, ck, in := shuffleFixture(t, 2)
	out, arg := Shuffle(sys, pk.Y, ck, in)
	expectCheck(t, VerifyShuffle(sys, pk.Y, ck, in[:1], out[:1], arg), "at least 2 required")
}

func cloneInts(xs []*big.Int) []*big.Int {
	out := make([]*big.Int, len(xs))
	for i, x := range xs {
		out[i] = new(big.Int).Set(x)
	}
	return out
}

func cloneArgument(a *ShuffleArgument) *ShuffleArgument {
	p := *a.Product
	p.ATilde = cloneInts(p.ATilde)
	p.BTilde = cloneInts(p.BTilde)
	m := *a.MultiExp
	m.A = cloneInts(m.A)
	m.CB = cloneInts(m.CB)
	return &ShuffleArgument{CA: cloneInts(a.CA), CB: cloneInts(a.CB), Product: &p, MultiExp: &m}
}

func TestShuffleMissingCommitmentIsMalformed(t *testing.T) {
	sys, pk, ck, in := shuffleFixture(t, 3)
	out, arg := Shuffle(sys, pk.Y, ck, in)
	c := cloneArgument(arg)
	c.MultiExp.CB[1] = nil
	err := VerifyShuffle(sys, pk.Y, ck, in, out, c)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if IsProofError(err) {
		t.Errorf("missing c_B reported as a failed proof: %v", err)
	}
}
