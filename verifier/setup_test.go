package verifier

import (
	"strings"
	"testing"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto"
	"github.com/thechriswalker/go-verifier/election"
)

func groupContext(t *testing.T, p, q, g int64, minBits int, primes ...int) *election.Context {
	t.Helper()
	ds := &election.Dataset{Setup: &election.SetupArtifacts{
		EncryptionParameters: &election.EncryptionParametersPayload{
			EncryptionGroup: &election.EncryptionGroup{
				P: crypto.NewBigInt(big.NewInt(p)),
				Q: crypto.NewBigInt(big.NewInt(q)),
				G: crypto.NewBigInt(big.NewInt(g)),
			},
			SmallPrimes: primes,
		},
	}}
	policy := election.DefaultPolicy
	policy.MinGroupBits = minBits
	return contextOf(t, ds, election.WithPolicy(policy))
}

func TestEncryptionParameters(t *testing.T) {
	tests := []struct {
		name    string
		p, q, g int64
		minBits int
		want    string
	}{
		{name: "valid", p: 23, q: 11, g: 4, minBits: 4},
		{name: "p off by one", p: 24, q: 11, g: 4, minBits: 4, want: "p is not prime"},
		{name: "q off by one", p: 23, q: 12, g: 4, minBits: 4, want: "q is not prime"},
		{name: "p not 2q+1", p: 23, q: 13, g: 4, minBits: 4, want: "p != 2q + 1"},
		{name: "g out of range", p: 23, q: 11, g: 1, minBits: 4, want: "g not in [2, p-1]"},
		{name: "g not a member", p: 23, q: 11, g: 5, minBits: 4, want: "g^q != 1 mod p"},
		{name: "group too small", p: 23, q: 11, g: 4, minBits: 2048, want: "p has 5 bits, at least 2048 required"},
	}
	for _, tt := range tests {
		got := evaluate(t, verifyEncryptionParameters, groupContext(t, tt.p, tt.q, tt.g, tt.minBits))
		switch {
		case tt.want == "" && len(got) > 0:
			t.Errorf("%s: unexpected findings %v", tt.name, got)
		case tt.want != "" && (len(got) != 1 || !strings.Contains(got[0], tt.want)):
			t.Errorf("%s: findings %v, want one containing %q", tt.name, got, tt.want)
		}
	}
}

func TestSmallPrimeGroupMembers(t *testing.T) {
	// members of the order 11 subgroup of Z_23: 1 2 3 4 6 8 9 12 13 16 18
	tests := []struct {
		name   string
		primes []int
		want   []string
	}{
		{name: "valid", primes: []int{2, 3, 13}},
		{name: "not a member", primes: []int{2, 3, 5}, want: []string{"small prime 2: 5 is not a group member"}},
		{name: "generator", primes: []int{2, 4}, want: []string{"small prime 1: 4 is not prime", "small prime 1: 4 is the generator"}},
		{name: "not ascending", primes: []int{3, 2}, want: []string{"small primes not strictly ascending at 1: 3 >= 2"}},
		{name: "none", want: []string{"no small primes"}},
	}
	for _, tt := range tests {
		got := evaluate(t, verifySmallPrimeGroupMembers, groupContext(t, 23, 11, 4, 4, tt.primes...))
		if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
			t.Errorf("%s: findings %q, want %q", tt.name, got, tt.want)
		}
	}
}
