package elgamal

import (
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto/hashing"
)

// CommitmentKey is (h, g_1..g_nu) for Pedersen vector commitments
type CommitmentKey struct {
	H *big.Int
	G []*big.Int
}

// VerifiableCommitmentKey derives nu+1 distinct group members from the
// group parameters alone, so nobody knows discrete logs between them.
// Candidates are squares of hash outputs, skipping 1 and g.
func VerifiableCommitmentKey(sys *System, nu int) (*CommitmentKey, error) {
	if nu < 1 {
		return nil, fmt.Errorf("commitment key size must be positive, got %d", nu)
	}
	elements := make([]*big.Int, 0, nu+1)
	seen := map[string]bool{}
	for count := 0; len(elements) < nu+1; count++ {
		u := hashing.HashToZq(sys.Q, sys.P, sys.Q, sys.G, "commitmentKey", len(elements), count)
		u.Add(u, bigOne)
		w := new(big.Int).Mul(u, u)
		w.Mod(w, sys.P)
		if w.Cmp(bigOne) == 0 || w.Cmp(sys.G) == 0 || seen[w.String()] {
			continue
		}
		seen[w.String()] = true
		elements = append(elements, w)
	}
	return &CommitmentKey{H: elements[0], G: elements[1:]}, nil
}

// Size is nu, the longest vector this key commits to
func (ck *CommitmentKey) Size() int {
	return len(ck.G)
}

// Commit returns h^r * prod g_i^a_i. It panics if a is longer than the key.
func (ck *CommitmentKey) Commit(sys *System, a []*big.Int, r *big.Int) *big.Int {
	if len(a) > len(ck.G) {
		panic(fmt.Sprintf("commitment of %d values with a key of size %d", len(a), len(ck.G)))
	}
	c := sys.Exp(ck.H, r)
	for i := range a {
		c = sys.Mul(c, sys.Exp(ck.G[i], a[i]))
	}
	return c
}

func (ck *CommitmentKey) hashable() []interface{} {
	return []interface{}{ck.H, ck.G}
}
