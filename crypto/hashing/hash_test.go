package hashing

import (
	"bytes"
	"testing"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto"
)

func TestRecursiveHashDistinguishesTypes(t *testing.T) {
	cases := map[string][]byte{
		"string":      RecursiveHash("1"),
		"int":         RecursiveHash(1),
		"bytes":       RecursiveHash([]byte("1")),
		"nested list": RecursiveHash([]interface{}{"1"}),
	}
	seen := map[string]string{}
	for name, h := range cases {
		if other, ok := seen[string(h)]; ok {
			t.Errorf("%s and %s hash to the same value", name, other)
		}
		seen[string(h)] = name
	}
}

func TestRecursiveHashIntegerForms(t *testing.T) {
	a := RecursiveHash(42)
	b := RecursiveHash(big.NewInt(42))
	c := RecursiveHash(crypto.NewBigInt(big.NewInt(42)))
	if !bytes.Equal(a, b) || !bytes.Equal(b, c) {
		t.Error("integer representations should hash identically")
	}
	if !bytes.Equal(RecursiveHash([]*big.Int{big.NewInt(1)}), RecursiveHash(crypto.BigIntSlice{big.NewInt(1)})) {
		t.Error("slice representations should hash identically")
	}
}

func TestHashToZqRange(t *testing.T) {
	q := big.NewInt(1019)
	for i := 0; i < 200; i++ {
		x := HashToZq(q, "test", i)
		if x.Sign() < 0 || x.Cmp(q) >= 0 {
			t.Fatalf("challenge %s out of range", x)
		}
	}
	if HashToZq(q, "a").Cmp(HashToZq(q, "a")) != 0 {
		t.Error("HashToZq is not deterministic")
	}
}

func TestUnsupportedTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	RecursiveHash(3.14)
}
