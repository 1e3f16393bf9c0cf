package election

import (
	"fmt"
	"sort"
	"strconv"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto/elgamal"
)

// NumberOfControlComponents is the number of online control component nodes
const NumberOfControlComponents = 4

// VoteSize is the number of phis of an encrypted vote
const VoteSize = 1

// NodeIDs of the online control components
func NodeIDs() []int {
	ids := make([]int, NumberOfControlComponents)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

// auxiliary data bound into the Fiat-Shamir challenge of each proof

func AuxGenKeysCCR(ee string, node int) []interface{} {
	return []interface{}{ee, "GenKeysCCR", strconv.Itoa(node)}
}

func AuxSetupTallyCCM(ee string, node int) []interface{} {
	return []interface{}{ee, "SetupTallyCCM", strconv.Itoa(node)}
}

func AuxSetupTallyEB(ee string) []interface{} {
	return []interface{}{ee, "SetupTallyEB"}
}

func AuxGenEncLongCodeShares(ee, vcID string, node int) []interface{} {
	return []interface{}{ee, vcID, "GenEncLongCodeShares", strconv.Itoa(node)}
}

func AuxCreateVote(ee, vcID string) []interface{} {
	return []interface{}{ee, vcID, "CreateVote"}
}

func AuxMixDecOnline(ee, bb string, node int) []interface{} {
	return []interface{}{ee, bb, "MixDecOnline", strconv.Itoa(node)}
}

func AuxMixDecOffline(ee, bb string) []interface{} {
	return []interface{}{ee, bb, "MixDecOffline"}
}

// MixingKeys are the keys each stage of the mixnet shuffles under. Online
// node j (1-based) uses the product of the CCM keys of nodes j..n and the
// electoral board key; the last element is the electoral board key alone,
// used by the tally control component. All keys are compressed to l.
func MixingKeys(sys *elgamal.System, ccm [][]*big.Int, eb []*big.Int, l int) ([][]*big.Int, error) {
	out := make([][]*big.Int, len(ccm)+1)
	remaining := eb
	last, err := elgamal.CompressKey(sys, eb, l)
	if err != nil {
		return nil, fmt.Errorf("electoral board key: %w", err)
	}
	out[len(ccm)] = last
	for j := len(ccm) - 1; j >= 0; j-- {
		remaining, err = elgamal.CombineKeys(sys, ccm[j], remaining)
		if err != nil {
			return nil, fmt.Errorf("node %d key: %w", j+1, err)
		}
		if out[j], err = elgamal.CompressKey(sys, remaining, l); err != nil {
			return nil, fmt.Errorf("node %d key: %w", j+1, err)
		}
	}
	return out, nil
}

// MixnetInput pads the confirmed votes with trivial encryptions of 1 so
// that the mixnet always has at least two ciphertexts
func MixnetInput(votes []*elgamal.Ciphertext, l int) []*elgamal.Ciphertext {
	out := append([]*elgamal.Ciphertext(nil), votes...)
	for len(out) < 2 {
		out = append(out, elgamal.Identity(l))
	}
	return out
}

// IsTrivialPlaintext reports whether m is an encoded padding vote
func IsTrivialPlaintext(m []*big.Int) bool {
	for _, x := range m {
		if x == nil || x.Cmp(big.NewInt(1)) != 0 {
			return false
		}
	}
	return true
}

// EncodeVote multiplies the encoded voting options
func EncodeVote(primes []int) *big.Int {
	out := big.NewInt(1)
	for _, p := range primes {
		out.Mul(out, big.NewInt(int64(p)))
	}
	return out
}

// DecodeVote factorises m over the encoded voting options, returning the
// primes in ascending order. It fails if m has any other factor or an
// option is below 2.
func DecodeVote(m *big.Int, options []int) ([]int, bool) {
	if m == nil || m.Sign() <= 0 {
		return nil, false
	}
	sorted := append([]int(nil), options...)
	sort.Ints(sorted)
	if len(sorted) > 0 && sorted[0] < 2 {
		return nil, false
	}
	rest := new(big.Int).Set(m)
	q, r := new(big.Int), new(big.Int)
	var out []int
	for _, p := range sorted {
		bp := big.NewInt(int64(p))
		for {
			q.QuoRem(rest, bp, r)
			if r.Sign() != 0 {
				break
			}
			out = append(out, p)
			rest.Set(q)
		}
	}
	return out, rest.Cmp(big.NewInt(1)) == 0
}
