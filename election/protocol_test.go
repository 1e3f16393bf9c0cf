package election

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto/elgamal"
)

func TestDecodeVote(t *testing.T) {
	options := []int{13, 5, 7, 11}
	tt := []struct {
		m    int64
		want []int
		ok   bool
	}{
		{m: 35, want: []int{5, 7}, ok: true},
		{m: 11 * 13, want: []int{11, 13}, ok: true},
		{m: 25, want: []int{5, 5}, ok: true},
		{m: 3 * 5, want: []int{5}, ok: false},
		{m: 1, want: nil, ok: true},
		{m: 0, want: nil, ok: false},
	}
	for _, tc := range tt {
		got, ok := DecodeVote(big.NewInt(tc.m), options)
		if ok != tc.ok {
			t.Errorf("DecodeVote(%d) ok=%v, want %v", tc.m, ok, tc.ok)
		}
		if tc.ok {
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("DecodeVote(%d) (-want +got):\n%s", tc.m, diff)
			}
		}
	}
	for _, bad := range [][]int{{0, 1, 2, 3}, {1, 2, 3}, {0, 2, 3}} {
		if _, ok := DecodeVote(big.NewInt(6), bad); ok {
			t.Errorf("DecodeVote(6, %v) accepted options below 2", bad)
		}
	}
	if m := EncodeVote([]int{5, 7, 11}); m.Int64() != 385 {
		t.Errorf("EncodeVote = %s", m)
	}
}

func TestMixnetInput(t *testing.T) {
	if got := MixnetInput(nil, 1); len(got) != 2 || !IsTrivialPlaintext(got[0].Phis) {
		t.Errorf("empty ballot box padded to %d", len(got))
	}
	one := []*elgamal.Ciphertext{{Gamma: big.NewInt(4), Phis: []*big.Int{big.NewInt(9)}}}
	got := MixnetInput(one, 1)
	if len(got) != 2 || got[0] != one[0] {
		t.Errorf("single vote not padded after the vote: %v", got)
	}
	three := append(one, one[0], one[0])
	if len(MixnetInput(three, 1)) != 3 {
		t.Error("padding added to a full input")
	}
}

func TestMixingKeys(t *testing.T) {
	sys := &elgamal.System{P: big.NewInt(23), Q: big.NewInt(11), G: big.NewInt(4)}
	k := func(xs ...int64) []*big.Int {
		out := make([]*big.Int, len(xs))
		for i, x := range xs {
			out[i] = big.NewInt(x)
		}
		return out
	}
	ccm := [][]*big.Int{k(2, 3), k(4, 6)}
	eb := k(8, 9)
	keys, err := MixingKeys(sys, ccm, eb, 1)
	if err != nil {
		t.Fatal(err)
	}
	// stage 0: (2*4*8) * (3*6*9) mod 23
	want := []int64{(2 * 4 * 8 * 3 * 6 * 9) % 23, (4 * 8 * 6 * 9) % 23, (8 * 9) % 23}
	for i, w := range want {
		if len(keys[i]) != 1 || keys[i][0].Int64() != w {
			t.Errorf("stage %d key %v, want %d", i, keys[i], w)
		}
	}
	if _, err := MixingKeys(sys, [][]*big.Int{k(2)}, eb, 1); err == nil {
		t.Error("expected an error for keys of different sizes")
	}
}
