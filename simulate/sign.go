package simulate

import (
	"fmt"

	"github.com/thechriswalker/go-verifier/election"
	"github.com/thechriswalker/go-verifier/signing"
)

type signable interface {
	SignedMessage() ([]byte, error)
	Sign([]byte)
}

type pending struct {
	authority signing.Authority
	artifact  signable
}

// Sign signs every artifact of ds as the authority that produces it
func Sign(ds *election.Dataset, s *signing.Signers) error {
	for _, p := range artifacts(ds) {
		msg, err := p.artifact.SignedMessage()
		if err != nil {
			return err
		}
		sig, err := s.Sign(p.authority, msg)
		if err != nil {
			return fmt.Errorf("signing as %s: %w", p.authority, err)
		}
		p.artifact.Sign(sig)
	}
	return nil
}

func artifacts(ds *election.Dataset) []pending {
	var out []pending
	add := func(a signing.Authority, artifact signable) {
		out = append(out, pending{a, artifact})
	}
	if s := ds.Setup; s != nil {
		if s.EncryptionParameters != nil {
			add(signing.AuthoritySetup, s.EncryptionParameters)
		}
		if s.ElectionEventContext != nil {
			add(signing.AuthoritySetup, s.ElectionEventContext)
		}
		if s.SetupComponentPublicKeys != nil {
			add(signing.AuthoritySetup, s.SetupComponentPublicKeys)
		}
		if s.Configuration != nil {
			add(signing.AuthorityCanton, s.Configuration)
		}
		for node, p := range s.ControlComponentPublicKeys {
			add(signing.ControlComponent(node), p)
		}
		for _, vcs := range s.VerificationCardSets {
			if vcs.TallyData != nil {
				add(signing.AuthoritySetup, vcs.TallyData)
			}
			for _, p := range vcs.VerificationData {
				add(signing.AuthoritySetup, p)
			}
			for _, chunk := range vcs.CodeShares {
				for _, p := range chunk {
					add(signing.ControlComponent(p.NodeID), p)
				}
			}
		}
	}
	if t := ds.Tally; t != nil {
		for _, bb := range t.BallotBoxes {
			for node, p := range bb.ControlComponentBallotBoxes {
				add(signing.ControlComponent(node), p)
			}
			for node, p := range bb.ControlComponentShuffles {
				add(signing.ControlComponent(node), p)
			}
			if bb.TallyComponentShuffle != nil {
				add(signing.AuthorityTally, bb.TallyComponentShuffle)
			}
			if bb.TallyComponentVotes != nil {
				add(signing.AuthorityTally, bb.TallyComponentVotes)
			}
		}
		if t.DecryptResults != nil {
			add(signing.AuthorityTally, t.DecryptResults)
		}
	}
	return out
}
