package verifier

import (
	"fmt"
	"sort"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-verifier/election"
)

func verifyEncryptionParameters(ctx *election.Context, f *Findings) error {
	sys, err := group(ctx)
	if err != nil {
		return err
	}
	if err := sys.Validate(); err != nil {
		f.Add("%v", err)
		return nil
	}
	if bits, minBits := sys.P.BitLen(), ctx.Policy().MinGroupBits; bits < minBits {
		f.Add("p has %d bits, at least %d required", bits, minBits)
	}
	return nil
}

func verifySmallPrimeGroupMembers(ctx *election.Context, f *Findings) error {
	sys, err := group(ctx)
	if err != nil {
		return err
	}
	ep, _ := ctx.EncryptionParameters()
	primes := ep.SmallPrimes
	if len(primes) == 0 {
		f.Add("no small primes")
		return nil
	}
	for i, p := range primes {
		bp := big.NewInt(int64(p))
		if p < 2 || !bp.ProbablyPrime(20) {
			f.Add("small prime %d: %d is not prime", i, p)
		}
		if !sys.IsMember(bp) {
			f.Add("small prime %d: %d is not a group member", i, p)
		}
		if bp.Cmp(sys.G) == 0 {
			f.Add("small prime %d: %d is the generator", i, p)
		}
		if i > 0 && primes[i-1] >= p {
			f.Add("small primes not strictly ascending at %d: %d >= %d", i, primes[i-1], p)
		}
	}
	if ee, ok := ctx.ElectionEventContext(); ok {
		if n := ee.ElectionEventContext.MaximumNumberOfVotingOptions; len(primes) < n {
			f.Add("%d small primes for up to %d voting options", len(primes), n)
		}
	}
	return nil
}

func verifyVotingOptions(ctx *election.Context, f *Findings) error {
	sys, err := group(ctx)
	if err != nil {
		return err
	}
	ee, _ := ctx.ElectionEventContext()
	c := ee.ElectionEventContext
	policy := ctx.Policy()
	if c.MaximumNumberOfVotingOptions > policy.MaxVotingOptions {
		f.Add("maximum number of voting options %d exceeds %d", c.MaximumNumberOfVotingOptions, policy.MaxVotingOptions)
	}
	for _, vcc := range c.VerificationCardSetContexts {
		where := "verification card set " + vcc.VerificationCardSetID
		options := vcc.PrimesMappingTable.EncodedVotingOptions()
		n, psi := len(options), vcc.NumberOfSelections
		if n == 0 {
			f.Add("%s: no voting options", where)
			continue
		}
		if n > c.MaximumNumberOfVotingOptions {
			f.Add("%s: %d voting options, at most %d allowed", where, n, c.MaximumNumberOfVotingOptions)
		}
		if psi < 1 || psi > c.MaximumNumberOfSelections || psi > n {
			f.Add("%s: %d selections with %d options and at most %d selections", where, psi, n, c.MaximumNumberOfSelections)
			continue
		}
		// the largest possible vote must still be an element below p
		sorted := append([]int(nil), options...)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		if election.EncodeVote(sorted[:psi]).Cmp(sys.P) >= 0 {
			f.Add("%s: product of the %d largest voting options is not smaller than p", where, psi)
		}
	}
	return nil
}

func verifyKeyGenerationSchnorrProofs(ctx *election.Context, f *Findings) error {
	sys, err := group(ctx)
	if err != nil {
		return err
	}
	ee, err := electionEventID(ctx)
	if err != nil {
		return err
	}
	check := func(what string, keys []*big.Int, proofs []*election.SchnorrProof, aux []interface{}) error {
		if len(keys) != len(proofs) {
			f.Add("%s: %d proofs for %d key elements", what, len(proofs), len(keys))
			return nil
		}
		for i := range keys {
			err := elgamal.VerifySchnorr(sys, keys[i], proofs[i].ElGamal(), aux...)
			if err := f.Proof(fmt.Sprintf("%s element %d", what, i), err); err != nil {
				return err
			}
		}
		return nil
	}
	own, _ := ctx.ControlComponentPublicKeys()
	for _, node := range election.SortedKeys(own) {
		k := own[node].ControlComponentPublicKeys
		if k == nil {
			return fmt.Errorf("node %d: %w", node, missing("control component public keys"))
		}
		if err := check(fmt.Sprintf("node %d CCR key", node), k.CcrjChoiceReturnCodesEncryptionPublicKey, k.CcrjSchnorrProofs, election.AuxGenKeysCCR(ee, node)); err != nil {
			return err
		}
		if err := check(fmt.Sprintf("node %d CCM key", node), k.CcmjElectionPublicKey, k.CcmjSchnorrProofs, election.AuxSetupTallyCCM(ee, node)); err != nil {
			return err
		}
	}
	_, keys, err := combinedKeys(ctx)
	if err != nil {
		return err
	}
	return check("electoral board key", keys.ElectoralBoardPublicKey, keys.ElectoralBoardSchnorrProofs, election.AuxSetupTallyEB(ee))
}

// codeShareProof selects one of the two exponentiation proofs of a code share
type codeShareProof struct {
	name      string
	encrypted func(*election.SetupComponentVerificationData) *election.Ciphertext
	exponent  func(*election.ControlComponentCodeShares) (*election.Ciphertext, *election.ExponentiationProof)
	key       func(*election.ControlComponentCodeShares) *big.Int
}

var (
	partialChoiceReturnCodesProof = codeShareProof{
		name: "partial choice return codes",
		encrypted: func(d *election.SetupComponentVerificationData) *election.Ciphertext {
			return d.EncryptedHashedSquaredPartialChoiceReturnCodes
		},
		exponent: func(s *election.ControlComponentCodeShares) (*election.Ciphertext, *election.ExponentiationProof) {
			return s.ExponentiatedEncryptedPartialChoiceReturnCodes, s.EncryptedPartialChoiceReturnCodeExponentiationProof
		},
		key: func(s *election.ControlComponentCodeShares) *big.Int {
			return s.VoterChoiceReturnCodeGenerationPublicKey.Int()
		},
	}
	confirmationKeyProof = codeShareProof{
		name: "confirmation key",
		encrypted: func(d *election.SetupComponentVerificationData) *election.Ciphertext {
			return d.EncryptedHashedSquaredConfirmationKey
		},
		exponent: func(s *election.ControlComponentCodeShares) (*election.Ciphertext, *election.ExponentiationProof) {
			return s.ExponentiatedEncryptedConfirmationKey, s.EncryptedConfirmationKeyExponentiationProof
		},
		key: func(s *election.ControlComponentCodeShares) *big.Int {
			return s.VoterVoteCastReturnCodeGenerationPublicKey.Int()
		},
	}
)

// exponentiationBases are (g, gamma, phi_0, ..) of a ciphertext
func exponentiationBases(sys *elgamal.System, ct *elgamal.Ciphertext) []*big.Int {
	return append([]*big.Int{sys.G, ct.Gamma}, ct.Phis...)
}

func verifyCodeShareProofs(ctx *election.Context, f *Findings, which codeShareProof) error {
	sys, err := group(ctx)
	if err != nil {
		return err
	}
	ee, err := electionEventID(ctx)
	if err != nil {
		return err
	}
	for _, id := range ctx.VerificationCardSetIDs() {
		vcs, _ := ctx.VerificationCardSet(id)
		encrypted := map[string]*election.Ciphertext{}
		for _, chunk := range election.SortedKeys(vcs.VerificationData) {
			for _, d := range vcs.VerificationData[chunk].SetupComponentVerificationData {
				encrypted[d.VerificationCardID] = which.encrypted(d)
			}
		}
		for _, chunk := range election.SortedKeys(vcs.CodeShares) {
			for _, p := range vcs.CodeShares[chunk] {
				for _, s := range p.ControlComponentCodeShares {
					where := fmt.Sprintf("node %d %s of verification card %s", p.NodeID, which.name, s.VerificationCardID)
					in, ok := encrypted[s.VerificationCardID]
					out, proof := which.exponent(s)
					if !ok || in == nil || out == nil {
						f.Add("%s: ciphertext missing", where)
						continue
					}
					ct := in.ElGamal()
					if ct.Gamma == nil {
						f.Add("%s: ciphertext missing", where)
						continue
					}
					exp := out.ElGamal()
					ys := append([]*big.Int{which.key(s), exp.Gamma}, exp.Phis...)
					err := elgamal.VerifyExponentiation(sys, exponentiationBases(sys, ct), ys, proof.ElGamal(), election.AuxGenEncLongCodeShares(ee, s.VerificationCardID, p.NodeID)...)
					if err := f.Proof(where, err); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func verifyEncryptedPCCExponentiationProofs(ctx *election.Context, f *Findings) error {
	return verifyCodeShareProofs(ctx, f, partialChoiceReturnCodesProof)
}

func verifyEncryptedCKExponentiationProofs(ctx *election.Context, f *Findings) error {
	return verifyCodeShareProofs(ctx, f, confirmationKeyProof)
}
