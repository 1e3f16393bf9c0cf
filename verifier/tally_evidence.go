package verifier

import (
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-verifier/election"
)

// mixnet holds what every ballot box needs to replay the mixing
type mixnet struct {
	sys  *elgamal.System
	ee   string
	keys [][]*big.Int // shuffle key of each online node, then the tally component
	ccm  [][]*big.Int // partial decryption key of each online node
	eb   []*big.Int
	el   []*big.Int
	ccr  []*big.Int
}

func newMixnet(ctx *election.Context) (*mixnet, error) {
	sys, err := group(ctx)
	if err != nil {
		return nil, err
	}
	ee, err := electionEventID(ctx)
	if err != nil {
		return nil, err
	}
	nodes, keys, err := combinedKeys(ctx)
	if err != nil {
		return nil, err
	}
	mx := &mixnet{sys: sys, ee: ee}
	var full [][]*big.Int
	for _, k := range nodes {
		full = append(full, k.CcmjElectionPublicKey)
		compressed, err := elgamal.CompressKey(sys, k.CcmjElectionPublicKey, election.VoteSize)
		if err != nil {
			return nil, fmt.Errorf("node %d CCM key: %w", k.NodeID, err)
		}
		mx.ccm = append(mx.ccm, compressed)
	}
	if mx.keys, err = election.MixingKeys(sys, full, keys.ElectoralBoardPublicKey, election.VoteSize); err != nil {
		return nil, err
	}
	mx.eb = mx.keys[len(mx.keys)-1]
	if mx.el, err = elgamal.CompressKey(sys, keys.ElectionPublicKey, election.VoteSize); err != nil {
		return nil, fmt.Errorf("election public key: %w", err)
	}
	mx.ccr = keys.ChoiceReturnCodesEncryptionPublicKey
	return mx, nil
}

// input is the first shuffle's input: the confirmed votes, padded
func (mx *mixnet) input(votes []*election.EncryptedVerifiableVote) []*elgamal.Ciphertext {
	cts := make([]*elgamal.Ciphertext, len(votes))
	for i, v := range votes {
		if v != nil {
			cts[i] = v.EncryptedVote.ElGamal()
		}
	}
	return election.MixnetInput(cts, election.VoteSize)
}

func (mx *mixnet) verifyConfirmedVote(ctx *election.Context, f *Findings, bb string, i int, v *election.EncryptedVerifiableVote) error {
	where := fmt.Sprintf("ballot box %s vote %d", bb, i)
	if v == nil || v.ContextIDs == nil || v.EncryptedVote == nil || v.ExponentiatedEncryptedVote == nil || v.EncryptedPartialChoiceReturnCodes == nil {
		f.Add("%s: incomplete", where)
		return nil
	}
	vc := v.ContextIDs.VerificationCardID
	vcs, ok := ctx.VerificationCardSet(v.ContextIDs.VerificationCardSetID)
	if !ok || vcs.TallyData == nil {
		f.Add("%s: no tally data for verification card set %s", where, v.ContextIDs.VerificationCardSetID)
		return nil
	}
	k, ok := vcs.TallyData.VerificationCardPublicKey(vc)
	if !ok {
		f.Add("%s: no verification card public key for %s", where, vc)
		return nil
	}
	vcc, ok := ctx.VerificationCardSetContext(v.ContextIDs.VerificationCardSetID)
	if !ok {
		f.Add("%s: verification card set %s not in the election event context", where, v.ContextIDs.VerificationCardSetID)
		return nil
	}
	e1, e1t, e2 := v.EncryptedVote.ElGamal(), v.ExponentiatedEncryptedVote.ElGamal(), v.EncryptedPartialChoiceReturnCodes.ElGamal()
	if len(e1.Phis) != election.VoteSize || len(e1t.Phis) != election.VoteSize {
		f.Add("%s: encrypted vote must have %d phis", where, election.VoteSize)
		return nil
	}
	psi := vcc.NumberOfSelections
	if len(e2.Phis) != psi || psi > len(mx.ccr) {
		f.Add("%s: %d encrypted partial choice return codes for %d selections", where, len(e2.Phis), psi)
		return nil
	}
	aux := election.AuxCreateVote(mx.ee, vc)

	bases := []*big.Int{mx.sys.G, e1.Gamma, e1.Phis[0]}
	ys := []*big.Int{k.Int(), e1t.Gamma, e1t.Phis[0]}
	err := elgamal.VerifyExponentiation(mx.sys, bases, ys, v.ExponentiationProof.ElGamal(), aux...)
	if err := f.Proof(where+" exponentiation", err); err != nil {
		return err
	}

	// (gamma_2, prod phi_2) encrypts the product of the partial choice
	// return codes under the product of the first psi CCR key elements
	e2t := &elgamal.Ciphertext{Gamma: e2.Gamma, Phis: []*big.Int{mx.sys.Mul(e2.Phis...)}}
	hp := mx.sys.Mul(mx.ccr[:psi]...)
	err = elgamal.VerifyPlaintextEquality(mx.sys, e1t, e2t, mx.el[0], hp, v.PlaintextEqualityProof.ElGamal(), aux...)
	return f.Proof(where+" plaintext equality", err)
}

// commitmentKeys caches one verifiable commitment key per size
type commitmentKeys struct {
	sys  *elgamal.System
	keys map[int]*elgamal.CommitmentKey
}

func (c *commitmentKeys) get(n int) (*elgamal.CommitmentKey, error) {
	if ck, ok := c.keys[n]; ok {
		return ck, nil
	}
	ck, err := elgamal.VerifiableCommitmentKey(c.sys, n)
	if err != nil {
		return nil, err
	}
	c.keys[n] = ck
	return ck, nil
}

func verifyDecryptions(f *Findings, where string, sys *elgamal.System, in []*elgamal.Ciphertext, pk []*big.Int, plaintexts [][]*big.Int, proofs []*election.DecryptionProof, aux []interface{}) error {
	if len(plaintexts) != len(in) || len(proofs) != len(in) {
		f.Add("%s: %d decryptions with %d proofs for %d ciphertexts", where, len(plaintexts), len(proofs), len(in))
		return nil
	}
	for i := range in {
		err := elgamal.VerifyDecryption(sys, in[i], pk, plaintexts[i], proofs[i].ElGamal(), aux...)
		if err := f.Proof(fmt.Sprintf("%s decryption %d", where, i), err); err != nil {
			return err
		}
	}
	return nil
}

func verifyOnlineMixing(ctx *election.Context, f *Findings) error {
	mx, err := newMixnet(ctx)
	if err != nil {
		return err
	}
	cks := &commitmentKeys{sys: mx.sys, keys: map[int]*elgamal.CommitmentKey{}}
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		votes, ok := confirmedVotes(bb)
		if !ok {
			f.Add("ballot box %s: no confirmed votes payload", id)
			continue
		}
		for i, v := range votes {
			if err := mx.verifyConfirmedVote(ctx, f, id, i, v); err != nil {
				return err
			}
		}
		in := mx.input(votes)
		if complete(in) != nil {
			f.Add("ballot box %s: confirmed votes incomplete, mixing not verified", id)
			continue
		}
		ck, err := cks.get(len(in))
		if err != nil {
			return err
		}
		for j, node := range election.NodeIDs() {
			where := fmt.Sprintf("ballot box %s node %d", id, node)
			s := bb.ControlComponentShuffles[node]
			if s == nil || s.VerifiableShuffle == nil || s.VerifiableDecryptions == nil {
				f.Add("%s: shuffle missing", where)
				break
			}
			if j >= len(mx.ccm) {
				f.Add("%s: no CCM key", where)
				break
			}
			shuffled := election.Ciphertexts(s.VerifiableShuffle.ShuffledCiphertexts)
			if err := complete(shuffled); err != nil {
				return fmt.Errorf("%s shuffle: %w", where, err)
			}
			err := elgamal.VerifyShuffle(mx.sys, mx.keys[j], ck, in, shuffled, s.VerifiableShuffle.ShuffleArgument.ElGamal())
			if err := f.Proof(where+" shuffle", err); err != nil {
				return err
			}
			decrypted := election.Ciphertexts(s.VerifiableDecryptions.Ciphertexts)
			if err := complete(decrypted); err != nil {
				return fmt.Errorf("%s decryptions: %w", where, err)
			}
			plaintexts := make([][]*big.Int, len(decrypted))
			for i, d := range decrypted {
				plaintexts[i] = d.Phis
			}
			aux := election.AuxMixDecOnline(mx.ee, id, node)
			if err := verifyDecryptions(f, where, mx.sys, shuffled, mx.ccm[j], plaintexts, s.VerifiableDecryptions.DecryptionProofs, aux); err != nil {
				return err
			}
			in = decrypted
		}
	}
	return nil
}

// lastOnlineOutput is the input of the tally component shuffle
func lastOnlineOutput(bb *election.BallotBoxArtifacts) ([]*elgamal.Ciphertext, bool) {
	nodes := election.NodeIDs()
	s := bb.ControlComponentShuffles[nodes[len(nodes)-1]]
	if s == nil || s.VerifiableDecryptions == nil {
		return nil, false
	}
	return election.Ciphertexts(s.VerifiableDecryptions.Ciphertexts), true
}

func verifyOfflineMixing(ctx *election.Context, f *Findings) error {
	mx, err := newMixnet(ctx)
	if err != nil {
		return err
	}
	cks := &commitmentKeys{sys: mx.sys, keys: map[int]*elgamal.CommitmentKey{}}
	for _, id := range ctx.BallotBoxIDs() {
		where := "ballot box " + id + " tally component"
		bb, _ := ctx.BallotBox(id)
		in, ok := lastOnlineOutput(bb)
		if !ok {
			f.Add("%s: output of the last online node missing", where)
			continue
		}
		t := bb.TallyComponentShuffle
		if t == nil || t.VerifiableShuffle == nil || t.VerifiablePlaintextDecryption == nil {
			f.Add("%s: shuffle missing", where)
			continue
		}
		shuffled := election.Ciphertexts(t.VerifiableShuffle.ShuffledCiphertexts)
		if err := complete(append(append([]*elgamal.Ciphertext(nil), in...), shuffled...)); err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}
		ck, err := cks.get(len(in))
		if err != nil {
			return err
		}
		err = elgamal.VerifyShuffle(mx.sys, mx.eb, ck, in, shuffled, t.VerifiableShuffle.ShuffleArgument.ElGamal())
		if err := f.Proof(where+" shuffle", err); err != nil {
			return err
		}
		d := t.VerifiablePlaintextDecryption
		plaintexts := make([][]*big.Int, len(d.DecryptedVotes))
		for i, m := range d.DecryptedVotes {
			plaintexts[i] = m
		}
		if err := verifyDecryptions(f, where, mx.sys, shuffled, mx.eb, plaintexts, d.DecryptionProofs, election.AuxMixDecOffline(mx.ee, id)); err != nil {
			return err
		}
		verifyFactorisation(ctx, f, id, plaintexts, bb.TallyComponentVotes)
	}
	return nil
}

// verifyFactorisation decodes every non-padding plaintext over the ballot
// box's voting options and compares with the tallied votes
func verifyFactorisation(ctx *election.Context, f *Findings, id string, plaintexts [][]*big.Int, votes *election.TallyComponentVotesPayload) {
	vcc, ok := ctx.BallotBoxContext(id)
	if !ok {
		f.Add("ballot box %s: no verification card set context", id)
		return
	}
	options := vcc.PrimesMappingTable.EncodedVotingOptions()
	for _, o := range options {
		if o < 2 {
			f.Add("ballot box %s: encoded voting option %d is not a prime >= 2", id, o)
			return
		}
	}
	var decoded [][]int
	for i, m := range plaintexts {
		if len(m) != election.VoteSize || election.IsTrivialPlaintext(m) {
			continue
		}
		primes, ok := election.DecodeVote(m[0], options)
		if !ok {
			f.Add("ballot box %s: plaintext %d does not factorise over the voting options", id, i)
			continue
		}
		if len(primes) != vcc.NumberOfSelections {
			f.Add("ballot box %s: plaintext %d has %d selections, expected %d", id, i, len(primes), vcc.NumberOfSelections)
		}
		decoded = append(decoded, primes)
	}
	if votes == nil {
		f.Add("ballot box %s: tally component votes missing", id)
		return
	}
	if len(decoded) != len(votes.Votes) {
		f.Add("ballot box %s: %d decoded votes != %d tallied votes", id, len(decoded), len(votes.Votes))
		return
	}
	for i := range decoded {
		f.Mismatch(fmt.Sprintf("ballot box %s: vote %d", id, i), decoded[i], sortedInts(votes.Votes[i]))
	}
}

func complete(cts []*elgamal.Ciphertext) error {
	for i, ct := range cts {
		if ct == nil || ct.Gamma == nil {
			return fmt.Errorf("ciphertext %d: %w", i, elgamal.ErrMalformed)
		}
	}
	return nil
}
