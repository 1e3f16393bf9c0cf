package random

import (
	"sort"
	"testing"

	big "github.com/ncw/gmp"
)

func TestIntBelowMax(t *testing.T) {
	max := big.NewInt(11)
	for i := 0; i < 200; i++ {
		r := Int(max)
		if r.Sign() < 0 || r.Cmp(max) >= 0 {
			t.Fatalf("Int(11) returned %s", r)
		}
	}
}

func TestPermutation(t *testing.T) {
	for _, n := range []int{0, 1, 2, 17} {
		pi := Permutation(n)
		if len(pi) != n {
			t.Fatalf("Permutation(%d) has %d elements", n, len(pi))
		}
		sorted := append([]int(nil), pi...)
		sort.Ints(sorted)
		for i, v := range sorted {
			if v != i {
				t.Fatalf("Permutation(%d) = %v is not a permutation", n, pi)
			}
		}
	}
}

func TestSafePrimes(t *testing.T) {
	p, q := SafePrimes(64)
	if p.BitLen() != 64 {
		t.Errorf("p has %d bits", p.BitLen())
	}
	twoQ := new(big.Int).Lsh(q, 1)
	if twoQ.Add(twoQ, big.NewInt(1)).Cmp(p) != 0 {
		t.Errorf("p != 2q + 1 (p=%s q=%s)", p, q)
	}
	if !q.ProbablyPrime(20) {
		t.Errorf("q=%s is not prime", q)
	}
}

func TestID(t *testing.T) {
	a, b := ID(), ID()
	if len(a) != 32 {
		t.Errorf("ID length %d", len(a))
	}
	if a == b {
		t.Errorf("two IDs collided: %s", a)
	}
}
