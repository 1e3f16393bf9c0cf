package simulate

import (
	"fmt"
	"time"

	big "github.com/ncw/gmp"
	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-verifier/crypto"
	"github.com/thechriswalker/go-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-verifier/crypto/random"
	"github.com/thechriswalker/go-verifier/election"
)

func (g *generator) generateTally() error {
	sys := g.sys
	ccm := make([][]*big.Int, len(g.ccm))
	for i, kp := range g.ccm {
		ccm[i] = kp.Public().Y
	}
	keys, err := election.MixingKeys(sys, ccm, g.eb.Public().Y, election.VoteSize)
	if err != nil {
		return err
	}
	t := &election.TallyArtifacts{BallotBoxes: map[string]*election.BallotBoxArtifacts{}}
	results := &election.DecryptResults{
		ContestIdentification: g.ds.Setup.Configuration.Contest.ContestIdentification,
	}
	for _, b := range g.boxes {
		start := time.Now()
		bb, votes, err := g.ballotBox(b, keys)
		if err != nil {
			return fmt.Errorf("ballot box %s: %w", b.id, err)
		}
		t.BallotBoxes[b.id] = bb
		results.BallotsBoxes = append(results.BallotsBoxes, resultBallotBox(b, votes))
		log.Debug().
			Str("ballotBox", b.id).
			Int("votes", len(votes.Votes)).
			Dur("ms", time.Since(start)).
			Msg("Simulated ballot box")
	}
	results.CastBallots = results.CountedBallots()
	t.DecryptResults = results
	g.ds.Tally = t
	return nil
}

// vote casts a ballot with card c for the given options
func (g *generator) vote(b *box, c card, primes []int) *election.EncryptedVerifiableVote {
	sys, ee := g.sys, g.ee
	aux := election.AuxCreateVote(ee, c.id)

	r := random.Int(sys.Q)
	el := &elgamal.PublicKey{System: sys, Y: g.el}
	e1 := el.Encrypt([]*big.Int{election.EncodeVote(primes)}, r)

	ys, expProof := elgamal.ProveExponentiation(sys, []*big.Int{sys.G, e1.Gamma, e1.Phis[0]}, c.k, aux...)
	e1t := &elgamal.Ciphertext{Gamma: ys[1], Phis: []*big.Int{ys[2]}}

	pcc := make([]*big.Int, len(primes))
	for i, p := range primes {
		pcc[i] = sys.Exp(big.NewInt(int64(p)), c.k)
	}
	r2 := random.Int(sys.Q)
	ccr := &elgamal.PublicKey{System: sys, Y: g.pkCCR}
	e2 := ccr.Encrypt(pcc, r2)

	e2t := &elgamal.Ciphertext{Gamma: e2.Gamma, Phis: []*big.Int{sys.Mul(e2.Phis...)}}
	hp := sys.Mul(g.pkCCR[:len(primes)]...)
	eqProof := elgamal.ProvePlaintextEquality(sys, e1t, e2t, g.el[0], hp, sys.MulQ(r, c.k), r2, aux...)

	return &election.EncryptedVerifiableVote{
		ContextIDs: &election.ContextIDs{
			ElectionEventID:       ee,
			VerificationCardSetID: b.vcs,
			VerificationCardID:    c.id,
		},
		EncryptedVote:                     election.CiphertextOf(e1),
		ExponentiatedEncryptedVote:        election.CiphertextOf(e1t),
		EncryptedPartialChoiceReturnCodes: election.CiphertextOf(e2),
		ExponentiationProof:               election.ExponentiationProofOf(expProof),
		PlaintextEqualityProof:            election.PlaintextEqualityProofOf(eqProof),
	}
}

func (g *generator) ballotBox(b *box, keys [][]*big.Int) (*election.BallotBoxArtifacts, *election.TallyComponentVotesPayload, error) {
	sys, ee := g.sys, g.ee
	bb := &election.BallotBoxArtifacts{
		ControlComponentBallotBoxes: map[int]*election.ControlComponentBallotBoxPayload{},
		ControlComponentShuffles:    map[int]*election.ControlComponentShufflePayload{},
	}

	cast := len(b.cards) - len(b.cards)/4
	var confirmed []*election.EncryptedVerifiableVote
	for _, c := range b.cards[:cast] {
		perm := random.Permutation(len(b.options))
		primes := make([]int, b.psi)
		for i := range primes {
			primes[i] = b.options[perm[i]].prime
		}
		confirmed = append(confirmed, g.vote(b, c, primes))
	}
	for _, node := range election.NodeIDs() {
		bb.ControlComponentBallotBoxes[node] = &election.ControlComponentBallotBoxPayload{
			ElectionEventID:         ee,
			BallotBoxID:             b.id,
			NodeID:                  node,
			EncryptionGroup:         election.GroupOf(sys),
			ConfirmedEncryptedVotes: confirmed,
		}
	}

	encrypted := make([]*elgamal.Ciphertext, len(confirmed))
	for i, v := range confirmed {
		encrypted[i] = v.EncryptedVote.ElGamal()
	}
	in := election.MixnetInput(encrypted, election.VoteSize)
	ck, err := elgamal.VerifiableCommitmentKey(sys, len(in))
	if err != nil {
		return nil, nil, err
	}
	for j, node := range election.NodeIDs() {
		shuffled, arg := elgamal.Shuffle(sys, keys[j], ck, in)
		sk, err := g.ccm[j].Secret().Compress(election.VoteSize)
		if err != nil {
			return nil, nil, err
		}
		decryptions := &election.VerifiableDecryptions{}
		next := make([]*elgamal.Ciphertext, len(shuffled))
		for i, ct := range shuffled {
			m, proof := elgamal.ProveDecryption(sk, ct, election.AuxMixDecOnline(ee, b.id, node)...)
			next[i] = &elgamal.Ciphertext{Gamma: ct.Gamma, Phis: m}
			decryptions.DecryptionProofs = append(decryptions.DecryptionProofs, election.DecryptionProofOf(proof))
		}
		decryptions.Ciphertexts = election.CiphertextsOf(next)
		bb.ControlComponentShuffles[node] = &election.ControlComponentShufflePayload{
			ElectionEventID: ee,
			BallotBoxID:     b.id,
			NodeID:          node,
			EncryptionGroup: election.GroupOf(sys),
			VerifiableShuffle: &election.VerifiableShuffle{
				ShuffledCiphertexts: election.CiphertextsOf(shuffled),
				ShuffleArgument:     election.ShuffleArgumentOf(arg),
			},
			VerifiableDecryptions: decryptions,
		}
		in = next
	}

	shuffled, arg := elgamal.Shuffle(sys, keys[len(keys)-1], ck, in)
	sk, err := g.eb.Secret().Compress(election.VoteSize)
	if err != nil {
		return nil, nil, err
	}
	decryption := &election.VerifiablePlaintextDecryption{}
	votes := &election.TallyComponentVotesPayload{
		ElectionEventID: ee,
		BallotBoxID:     b.id,
		EncryptionGroup: election.GroupOf(sys),
	}
	for _, ct := range shuffled {
		m, proof := elgamal.ProveDecryption(sk, ct, election.AuxMixDecOffline(ee, b.id)...)
		decryption.DecryptedVotes = append(decryption.DecryptedVotes, crypto.BigIntSlice(m))
		decryption.DecryptionProofs = append(decryption.DecryptionProofs, election.DecryptionProofOf(proof))
		if election.IsTrivialPlaintext(m) {
			continue
		}
		primes, ok := election.DecodeVote(m[0], b.primes())
		if !ok {
			return nil, nil, fmt.Errorf("plaintext %s does not decode", m[0])
		}
		selected := make([]string, len(primes))
		for i, p := range primes {
			selected[i] = b.actualVotingOption(p)
		}
		votes.Votes = append(votes.Votes, primes)
		votes.ActualSelectedVotingOptions = append(votes.ActualSelectedVotingOptions, selected)
	}
	bb.TallyComponentShuffle = &election.TallyComponentShufflePayload{
		ElectionEventID: ee,
		BallotBoxID:     b.id,
		EncryptionGroup: election.GroupOf(sys),
		VerifiableShuffle: &election.VerifiableShuffle{
			ShuffledCiphertexts: election.CiphertextsOf(shuffled),
			ShuffleArgument:     election.ShuffleArgumentOf(arg),
		},
		VerifiablePlaintextDecryption: decryption,
	}
	bb.TallyComponentVotes = votes
	return bb, votes, nil
}

// resultBallotBox lists every tallied vote as one counted ballot
func resultBallotBox(b *box, votes *election.TallyComponentVotesPayload) *election.ResultBallotBox {
	doi := &election.DomainOfInfluence{DomainOfInfluenceIdentification: "doi-1"}
	for _, selected := range votes.ActualSelectedVotingOptions {
		var choices []string
		for _, option := range selected {
			_, choice, _ := election.SplitVotingOption(option)
			choices = append(choices, choice)
		}
		if b.isVote {
			doi.Votes = append(doi.Votes, &election.ResultVote{VoteIdentification: b.contest, ChosenAnswers: choices})
		} else {
			doi.Elections = append(doi.Elections, &election.ResultElection{ElectionIdentification: b.contest, ChosenCandidates: choices})
		}
	}
	return &election.ResultBallotBox{
		BallotBoxIdentification: b.id,
		CountingCircles: []*election.CountingCircle{{
			CountingCircleIdentification: "cc-" + b.id[:8],
			DomainsOfInfluence:           []*election.DomainOfInfluence{doi},
		}},
	}
}
