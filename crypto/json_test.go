package crypto

import (
	"encoding/json"
	"testing"

	big "github.com/ncw/gmp"
)

func TestBigIntFromJSONEncodings(t *testing.T) {
	want := big.NewInt(0xabcdef)
	for _, s := range []string{"0xabcdef", "0xABCDEF", "q83v"} {
		got, err := BigIntFromJSON(s)
		if err != nil {
			t.Fatalf("decode %q: %v", s, err)
		}
		if got.Cmp(want) != 0 {
			t.Errorf("decode %q: got %s want %s", s, got, want)
		}
	}
	if _, err := BigIntFromJSON("not base64!"); err == nil {
		t.Error("expected an error for garbage input")
	}
}

func TestBigIntStructField(t *testing.T) {
	type proof struct {
		E *BigInt     `json:"e"`
		Z BigIntSlice `json:"z"`
	}
	in := proof{E: NewBigInt(big.NewInt(12345)), Z: BigIntSlice{big.NewInt(1), big.NewInt(99)}}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out proof
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out.E.Int().Cmp(big.NewInt(12345)) != 0 {
		t.Errorf("e round trip: got %s", out.E.Int())
	}
	if !out.Z.Equal(in.Z) {
		t.Errorf("z round trip: got %v", out.Z)
	}
}

func TestBigIntRoundTrip(t *testing.T) {
	values := []int64{0, 1, 0xd31234, 0xd17abc, 0xd3, 0xd1ff, 1 << 40}
	for _, v := range values {
		x := big.NewInt(v)
		b, err := json.Marshal(NewBigInt(x))
		if err != nil {
			t.Fatal(err)
		}
		var got BigInt
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatalf("%#x: unmarshal %s: %v", v, b, err)
		}
		if got.Int().Cmp(x) != 0 {
			t.Errorf("%#x: round trip through %s gave %s", v, b, got.Int())
		}
	}

	var slice BigIntSlice
	for _, v := range values {
		slice = append(slice, big.NewInt(v))
	}
	b, err := json.Marshal(slice)
	if err != nil {
		t.Fatal(err)
	}
	var out BigIntSlice
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", b, err)
	}
	if !out.Equal(slice) {
		t.Errorf("slice round trip through %s gave %v", b, out)
	}
}

func TestBigIntFromJSONPrefixedBase64(t *testing.T) {
	// base64url of 0xd31234 starts with "0x" but is not hex
	got, err := BigIntFromJSON("0xI0")
	if err != nil {
		t.Fatal(err)
	}
	if got.Cmp(big.NewInt(0xd31234)) != 0 {
		t.Errorf("got %s", got)
	}
}
