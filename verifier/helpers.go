package verifier

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto"
	"github.com/thechriswalker/go-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-verifier/election"
	"github.com/thechriswalker/go-verifier/signing"
)

var errMissing = errors.New("required artifact missing")

func missing(what string) error {
	return fmt.Errorf("%w: %s", errMissing, what)
}

// group returns the encryption group, which the predicates guarantee
func group(ctx *election.Context) (*elgamal.System, error) {
	sys, ok := ctx.Group()
	if !ok {
		return nil, missing("encryption group")
	}
	return sys, nil
}

func electionEventID(ctx *election.Context) (string, error) {
	ee, ok := ctx.ElectionEventID()
	if !ok {
		return "", missing("election event context")
	}
	return ee, nil
}

// verifySignature checks one artifact's signature. A missing or invalid
// signature is a finding, an authority unknown to the keystore is not.
func verifySignature(ks *signing.Keystore, a signing.Authority, artifact election.SignedArtifact, what string, f *Findings) error {
	sig, err := artifact.SignatureContents()
	if err != nil {
		f.Add("%s: %v", what, err)
		return nil
	}
	msg, err := artifact.SignedMessage()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	err = ks.Verify(a, sig, msg)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, signing.ErrBadSignature):
		f.Add("%s: signature of %s does not verify", what, a)
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}

func keystore(ctx *election.Context) (*signing.Keystore, error) {
	ks, ok := ctx.Keystore()
	if !ok {
		return nil, missing("keystore")
	}
	return ks, nil
}

func allMembers(sys *elgamal.System, xs []*big.Int) bool {
	for _, x := range xs {
		if !sys.IsMember(x) {
			return false
		}
	}
	return true
}

func sameInts(a, b []*big.Int) bool {
	return crypto.BigIntSlice(a).Equal(crypto.BigIntSlice(b))
}

// sameSet compares two string sets, reporting what is only in one of them
func sameSet(f *Findings, what, leftName string, left []string, rightName string, right []string) {
	l, r := toSet(left), toSet(right)
	var onlyL, onlyR []string
	for k := range l {
		if !r[k] {
			onlyL = append(onlyL, k)
		}
	}
	for k := range r {
		if !l[k] {
			onlyR = append(onlyR, k)
		}
	}
	sort.Strings(onlyL)
	sort.Strings(onlyR)
	if len(onlyL) > 0 {
		f.Add("%s: %s only in %s", what, strings.Join(onlyL, ", "), leftName)
	}
	if len(onlyR) > 0 {
		f.Add("%s: %s only in %s", what, strings.Join(onlyR, ", "), rightName)
	}
}

func toSet(xs []string) map[string]bool {
	out := make(map[string]bool, len(xs))
	for _, x := range xs {
		out[x] = true
	}
	return out
}

func intsString(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// combinedKeys returns the CCR and CCM keys of the nodes in ascending order,
// taken from the setup component public keys
func combinedKeys(ctx *election.Context) ([]*election.ControlComponentPublicKeys, *election.SetupComponentPublicKeys, error) {
	p, ok := ctx.SetupComponentPublicKeys()
	if !ok {
		return nil, nil, missing("setup component public keys")
	}
	keys := append([]*election.ControlComponentPublicKeys(nil), p.SetupComponentPublicKeys.CombinedControlComponentPublicKeys...)
	for i, k := range keys {
		if k == nil {
			return nil, nil, fmt.Errorf("combined control component public keys: entry %d: %w", i, errMissing)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].NodeID < keys[j].NodeID })
	return keys, p.SetupComponentPublicKeys, nil
}
