package verifier

import (
	"fmt"

	"github.com/thechriswalker/go-verifier/election"
	"github.com/thechriswalker/go-verifier/signing"
)

// signed is one artifact to check and the authority that must have signed it
type signed struct {
	what      string
	authority signing.Authority
	artifact  election.SignedArtifact
}

// signatureCheck builds an algorithm verifying the artifacts collect finds
func signatureCheck(collect func(ctx *election.Context) []signed) Algorithm {
	return func(ctx *election.Context, f *Findings) error {
		ks, err := keystore(ctx)
		if err != nil {
			return err
		}
		for _, s := range collect(ctx) {
			if err := verifySignature(ks, s.authority, s.artifact, s.what, f); err != nil {
				return err
			}
		}
		return nil
	}
}

func encryptionParametersSignatures(ctx *election.Context) []signed {
	p, _ := ctx.EncryptionParameters()
	return []signed{{"encryption parameters", signing.AuthoritySetup, p}}
}

func configurationSignatures(ctx *election.Context) []signed {
	c, _ := ctx.Configuration()
	return []signed{{"configuration", signing.AuthorityCanton, c}}
}

func controlComponentPublicKeysSignatures(ctx *election.Context) []signed {
	own, _ := ctx.ControlComponentPublicKeys()
	var out []signed
	for _, node := range election.SortedKeys(own) {
		out = append(out, signed{fmt.Sprintf("control component public keys of node %d", node), signing.ControlComponent(node), own[node]})
	}
	return out
}

func setupComponentPublicKeysSignatures(ctx *election.Context) []signed {
	p, _ := ctx.SetupComponentPublicKeys()
	return []signed{{"setup component public keys", signing.AuthoritySetup, p}}
}

func codeSharesSignatures(ctx *election.Context) []signed {
	var out []signed
	for _, id := range ctx.VerificationCardSetIDs() {
		vcs, _ := ctx.VerificationCardSet(id)
		for _, chunk := range election.SortedKeys(vcs.CodeShares) {
			for _, p := range vcs.CodeShares[chunk] {
				out = append(out, signed{fmt.Sprintf("verification card set %s code shares chunk %d node %d", id, chunk, p.NodeID), signing.ControlComponent(p.NodeID), p})
			}
		}
	}
	return out
}

func verificationDataSignatures(ctx *election.Context) []signed {
	var out []signed
	for _, id := range ctx.VerificationCardSetIDs() {
		vcs, _ := ctx.VerificationCardSet(id)
		for _, chunk := range election.SortedKeys(vcs.VerificationData) {
			out = append(out, signed{fmt.Sprintf("verification card set %s verification data chunk %d", id, chunk), signing.AuthoritySetup, vcs.VerificationData[chunk]})
		}
	}
	return out
}

func tallyDataSignatures(ctx *election.Context) []signed {
	var out []signed
	for _, id := range ctx.VerificationCardSetIDs() {
		vcs, _ := ctx.VerificationCardSet(id)
		if vcs.TallyData != nil {
			out = append(out, signed{"verification card set " + id + " tally data", signing.AuthoritySetup, vcs.TallyData})
		}
	}
	return out
}

func electionEventContextSignatures(ctx *election.Context) []signed {
	p, _ := ctx.ElectionEventContext()
	return []signed{{"election event context", signing.AuthoritySetup, p}}
}

// ballotBoxSignatures collects per ballot box artifacts in id order
func ballotBoxSignatures(collect func(bb string, a *election.BallotBoxArtifacts) []signed) func(*election.Context) []signed {
	return func(ctx *election.Context) []signed {
		var out []signed
		for _, id := range ctx.BallotBoxIDs() {
			a, _ := ctx.BallotBox(id)
			out = append(out, collect(id, a)...)
		}
		return out
	}
}

var (
	controlComponentBallotBoxSignatures = ballotBoxSignatures(func(bb string, a *election.BallotBoxArtifacts) []signed {
		var out []signed
		for _, node := range election.SortedKeys(a.ControlComponentBallotBoxes) {
			out = append(out, signed{fmt.Sprintf("ballot box %s node %d", bb, node), signing.ControlComponent(node), a.ControlComponentBallotBoxes[node]})
		}
		return out
	})
	controlComponentShuffleSignatures = ballotBoxSignatures(func(bb string, a *election.BallotBoxArtifacts) []signed {
		var out []signed
		for _, node := range election.SortedKeys(a.ControlComponentShuffles) {
			out = append(out, signed{fmt.Sprintf("ballot box %s shuffle of node %d", bb, node), signing.ControlComponent(node), a.ControlComponentShuffles[node]})
		}
		return out
	})
	tallyComponentShuffleSignatures = ballotBoxSignatures(func(bb string, a *election.BallotBoxArtifacts) []signed {
		if a.TallyComponentShuffle == nil {
			return nil
		}
		return []signed{{"ballot box " + bb + " tally component shuffle", signing.AuthorityTally, a.TallyComponentShuffle}}
	})
	tallyComponentVotesSignatures = ballotBoxSignatures(func(bb string, a *election.BallotBoxArtifacts) []signed {
		if a.TallyComponentVotes == nil {
			return nil
		}
		return []signed{{"ballot box " + bb + " tally component votes", signing.AuthorityTally, a.TallyComponentVotes}}
	})
)

func decryptResultsSignatures(ctx *election.Context) []signed {
	r, _ := ctx.DecryptResults()
	return []signed{{"decrypt results", signing.AuthorityTally, r}}
}
