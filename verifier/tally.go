package verifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thechriswalker/go-verifier/election"
)

func verifyTallyCompleteness(ctx *election.Context, f *Findings) error {
	if _, ok := ctx.DecryptResults(); !ok {
		f.Add("decrypt results missing")
	}
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		for _, node := range election.NodeIDs() {
			if bb.ControlComponentBallotBoxes[node] == nil {
				f.Add("ballot box %s: ballot box of node %d missing", id, node)
			}
			if bb.ControlComponentShuffles[node] == nil {
				f.Add("ballot box %s: shuffle of node %d missing", id, node)
			}
		}
		if bb.TallyComponentShuffle == nil {
			f.Add("ballot box %s: tally component shuffle missing", id)
		}
		if bb.TallyComponentVotes == nil {
			f.Add("ballot box %s: tally component votes missing", id)
		}
	}
	if ee, ok := ctx.ElectionEventContext(); ok {
		for _, vcc := range ee.ElectionEventContext.VerificationCardSetContexts {
			if _, ok := ctx.BallotBox(vcc.BallotBoxID); !ok {
				f.Add("ballot box %s missing", vcc.BallotBoxID)
			}
		}
	}
	return nil
}

// confirmedVotes are the votes of the lowest numbered node, the input of
// the mixnet
func confirmedVotes(bb *election.BallotBoxArtifacts) ([]*election.EncryptedVerifiableVote, bool) {
	nodes := election.SortedKeys(bb.ControlComponentBallotBoxes)
	if len(nodes) == 0 {
		return nil, false
	}
	return bb.ControlComponentBallotBoxes[nodes[0]].ConfirmedEncryptedVotes, true
}

func sameVote(a, b *election.EncryptedVerifiableVote) bool {
	if a == nil || b == nil || a.ContextIDs == nil || b.ContextIDs == nil {
		return a == b
	}
	return *a.ContextIDs == *b.ContextIDs &&
		a.EncryptedVote.Equal(b.EncryptedVote) &&
		a.ExponentiatedEncryptedVote.Equal(b.ExponentiatedEncryptedVote) &&
		a.EncryptedPartialChoiceReturnCodes.Equal(b.EncryptedPartialChoiceReturnCodes)
}

func verifyConfirmedVotesConsistency(ctx *election.Context, f *Findings) error {
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		nodes := election.SortedKeys(bb.ControlComponentBallotBoxes)
		if len(nodes) == 0 {
			continue
		}
		ref := bb.ControlComponentBallotBoxes[nodes[0]].ConfirmedEncryptedVotes
		for _, node := range nodes[1:] {
			votes := bb.ControlComponentBallotBoxes[node].ConfirmedEncryptedVotes
			if len(votes) != len(ref) {
				f.Add("ballot box %s: node %d has %d confirmed votes, node %d has %d", id, node, len(votes), nodes[0], len(ref))
				continue
			}
			for i := range votes {
				if !sameVote(ref[i], votes[i]) {
					f.Add("ballot box %s: confirmed vote %d of node %d differs from node %d", id, i, node, nodes[0])
				}
			}
		}
	}
	return nil
}

func verifyCiphertextsConsistency(ctx *election.Context, f *Findings) error {
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		votes, ok := confirmedVotes(bb)
		if !ok {
			continue
		}
		n := len(votes)
		if n < 2 {
			n = 2
		}
		for _, node := range election.NodeIDs() {
			s := bb.ControlComponentShuffles[node]
			if s == nil || s.VerifiableShuffle == nil || s.VerifiableDecryptions == nil {
				f.Add("ballot box %s: shuffle of node %d incomplete", id, node)
				break
			}
			where := fmt.Sprintf("ballot box %s node %d", id, node)
			shuffled, decrypted := s.VerifiableShuffle.ShuffledCiphertexts, s.VerifiableDecryptions.Ciphertexts
			f.Mismatch(where+": shuffled ciphertexts", n, len(shuffled))
			f.Mismatch(where+": partially decrypted ciphertexts", len(shuffled), len(decrypted))
			f.Mismatch(where+": decryption proofs", len(decrypted), len(s.VerifiableDecryptions.DecryptionProofs))
			for i := 0; i < len(shuffled) && i < len(decrypted); i++ {
				if shuffled[i] == nil || decrypted[i] == nil || shuffled[i].Gamma == nil || decrypted[i].Gamma == nil {
					f.Add("%s: ciphertext %d missing", where, i)
					continue
				}
				if shuffled[i].Gamma.Int().Cmp(decrypted[i].Gamma.Int()) != 0 {
					f.Add("%s: partial decryption %d changed gamma", where, i)
				}
				f.Mismatch(fmt.Sprintf("%s: phis of ciphertext %d", where, i), election.VoteSize, len(decrypted[i].Phis))
			}
			n = len(decrypted)
		}
		if t := bb.TallyComponentShuffle; t != nil && t.VerifiableShuffle != nil && t.VerifiablePlaintextDecryption != nil {
			where := "ballot box " + id + " tally component"
			f.Mismatch(where+": shuffled ciphertexts", n, len(t.VerifiableShuffle.ShuffledCiphertexts))
			f.Mismatch(where+": decrypted votes", len(t.VerifiableShuffle.ShuffledCiphertexts), len(t.VerifiablePlaintextDecryption.DecryptedVotes))
			f.Mismatch(where+": decryption proofs", len(t.VerifiablePlaintextDecryption.DecryptedVotes), len(t.VerifiablePlaintextDecryption.DecryptionProofs))
		}
	}
	return nil
}

func verifyPlaintextsConsistency(ctx *election.Context, f *Findings) error {
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		t, v := bb.TallyComponentShuffle, bb.TallyComponentVotes
		if t == nil || t.VerifiablePlaintextDecryption == nil || v == nil {
			continue
		}
		var plaintexts []string
		for _, m := range t.VerifiablePlaintextDecryption.DecryptedVotes {
			if len(m) != election.VoteSize {
				f.Add("ballot box %s: decrypted vote of %d elements", id, len(m))
				continue
			}
			if !election.IsTrivialPlaintext(m) {
				plaintexts = append(plaintexts, m[0].String())
			}
		}
		if len(plaintexts) != len(v.Votes) {
			f.Add("ballot box %s: %d decrypted votes != %d tallied votes", id, len(plaintexts), len(v.Votes))
			continue
		}
		for i, vote := range v.Votes {
			if got := election.EncodeVote(vote).String(); got != plaintexts[i] {
				f.Add("ballot box %s: tallied vote %d encodes to %s != decrypted %s", id, i, got, plaintexts[i])
			}
		}
		if len(v.ActualSelectedVotingOptions) != len(v.Votes) {
			f.Add("ballot box %s: %d selected voting options for %d votes", id, len(v.ActualSelectedVotingOptions), len(v.Votes))
			continue
		}
		vcc, ok := ctx.BallotBoxContext(id)
		if !ok {
			continue
		}
		for i, vote := range v.Votes {
			var want []string
			for _, p := range vote {
				opt, ok := vcc.PrimesMappingTable.ActualVotingOption(p)
				if !ok {
					opt = fmt.Sprintf("<unmapped %d>", p)
				}
				want = append(want, opt)
			}
			f.Mismatch(fmt.Sprintf("ballot box %s: selected voting options of vote %d", id, i), want, v.ActualSelectedVotingOptions[i])
		}
	}
	return nil
}

func verifyTallyVerificationCardIDs(ctx *election.Context, f *Findings) error {
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		vcc, ok := ctx.BallotBoxContext(id)
		if !ok {
			f.Add("ballot box %s: no verification card set", id)
			continue
		}
		vcs, ok := ctx.VerificationCardSet(vcc.VerificationCardSetID)
		if !ok || vcs.TallyData == nil {
			f.Add("ballot box %s: verification card set %s has no tally data", id, vcc.VerificationCardSetID)
			continue
		}
		cards := toSet(vcs.TallyData.VerificationCardIDs)
		for _, node := range election.SortedKeys(bb.ControlComponentBallotBoxes) {
			seen := map[string]bool{}
			for i, v := range bb.ControlComponentBallotBoxes[node].ConfirmedEncryptedVotes {
				if v == nil || v.ContextIDs == nil {
					f.Add("ballot box %s node %d: vote %d has no context ids", id, node, i)
					continue
				}
				vc := v.ContextIDs.VerificationCardID
				if !cards[vc] {
					f.Add("ballot box %s node %d: verification card %s not in set %s", id, node, vc, vcc.VerificationCardSetID)
				}
				if seen[vc] {
					f.Add("ballot box %s node %d: verification card %s confirmed twice", id, node, vc)
				}
				seen[vc] = true
				f.Mismatch(fmt.Sprintf("ballot box %s node %d: verification card set of card %s", id, node, vc), vcc.VerificationCardSetID, v.ContextIDs.VerificationCardSetID)
			}
		}
	}
	return nil
}

func verifyBallotBoxIDs(ctx *election.Context, f *Findings) error {
	ee, _ := ctx.ElectionEventContext()
	var declared []string
	for _, vcc := range ee.ElectionEventContext.VerificationCardSetContexts {
		declared = append(declared, vcc.BallotBoxID)
	}
	sameSet(f, "ballot boxes", "election event context", declared, "tally directory", ctx.BallotBoxIDs())
	return nil
}

func verifyFileNameBallotBoxIDs(ctx *election.Context, f *Findings) error {
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		for _, node := range election.SortedKeys(bb.ControlComponentBallotBoxes) {
			f.Mismatch(fmt.Sprintf("ballot box of node %d: ballot box id", node), id, bb.ControlComponentBallotBoxes[node].BallotBoxID)
		}
		for _, node := range election.SortedKeys(bb.ControlComponentShuffles) {
			f.Mismatch(fmt.Sprintf("shuffle of node %d: ballot box id", node), id, bb.ControlComponentShuffles[node].BallotBoxID)
		}
		if t := bb.TallyComponentShuffle; t != nil {
			f.Mismatch("tally component shuffle: ballot box id", id, t.BallotBoxID)
		}
		if v := bb.TallyComponentVotes; v != nil {
			f.Mismatch("tally component votes: ballot box id", id, v.BallotBoxID)
		}
	}
	return nil
}

func verifyConfirmedVoteCounts(ctx *election.Context, f *Findings) error {
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		votes, ok := confirmedVotes(bb)
		if !ok {
			continue
		}
		if vcc, ok := ctx.BallotBoxContext(id); ok && len(votes) > vcc.NumberOfVotingCards {
			f.Add("ballot box %s: %d confirmed votes for %d voting cards", id, len(votes), vcc.NumberOfVotingCards)
		}
		if v := bb.TallyComponentVotes; v != nil {
			f.Mismatch("ballot box "+id+": confirmed votes vs tallied votes", len(votes), len(v.Votes))
		}
	}
	return nil
}

func verifyTallyElectionEventIDs(ctx *election.Context, f *Findings) error {
	ee, err := electionEventID(ctx)
	if err != nil {
		return err
	}
	check := func(what, got string) {
		if got != ee {
			f.Add("%s: election event id %s != %s", what, got, ee)
		}
	}
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		for _, node := range election.SortedKeys(bb.ControlComponentBallotBoxes) {
			p := bb.ControlComponentBallotBoxes[node]
			check(fmt.Sprintf("ballot box %s node %d", id, node), p.ElectionEventID)
			for i, v := range p.ConfirmedEncryptedVotes {
				if v != nil && v.ContextIDs != nil {
					check(fmt.Sprintf("ballot box %s node %d vote %d", id, node, i), v.ContextIDs.ElectionEventID)
				}
			}
		}
		for _, node := range election.SortedKeys(bb.ControlComponentShuffles) {
			check(fmt.Sprintf("ballot box %s shuffle of node %d", id, node), bb.ControlComponentShuffles[node].ElectionEventID)
		}
		if t := bb.TallyComponentShuffle; t != nil {
			check("ballot box "+id+" tally component shuffle", t.ElectionEventID)
		}
		if v := bb.TallyComponentVotes; v != nil {
			check("ballot box "+id+" tally component votes", v.ElectionEventID)
		}
	}
	return nil
}

func verifyTallyNodeIDs(ctx *election.Context, f *Findings) error {
	want := intsString(election.NodeIDs())
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		f.Mismatch("ballot box "+id+": ballot box nodes", want, intsString(election.SortedKeys(bb.ControlComponentBallotBoxes)))
		f.Mismatch("ballot box "+id+": shuffle nodes", want, intsString(election.SortedKeys(bb.ControlComponentShuffles)))
	}
	return nil
}

func verifyFileNameNodeIDs(ctx *election.Context, f *Findings) error {
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		for _, node := range election.SortedKeys(bb.ControlComponentBallotBoxes) {
			f.Mismatch("ballot box "+id+": node id of ballot box file", node, bb.ControlComponentBallotBoxes[node].NodeID)
		}
		for _, node := range election.SortedKeys(bb.ControlComponentShuffles) {
			f.Mismatch("ballot box "+id+": node id of shuffle file", node, bb.ControlComponentShuffles[node].NodeID)
		}
	}
	return nil
}

func verifyTallyEncryptionGroups(ctx *election.Context, f *Findings) error {
	sys, err := group(ctx)
	if err != nil {
		return err
	}
	check := func(what string, eg *election.EncryptionGroup) {
		if !eg.Equal(sys) {
			f.Add("%s: encryption group differs from the encryption parameters", what)
		}
	}
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		for _, node := range election.SortedKeys(bb.ControlComponentBallotBoxes) {
			check(fmt.Sprintf("ballot box %s node %d", id, node), bb.ControlComponentBallotBoxes[node].EncryptionGroup)
		}
		for _, node := range election.SortedKeys(bb.ControlComponentShuffles) {
			check(fmt.Sprintf("ballot box %s shuffle of node %d", id, node), bb.ControlComponentShuffles[node].EncryptionGroup)
		}
		if t := bb.TallyComponentShuffle; t != nil {
			check("ballot box "+id+" tally component shuffle", t.EncryptionGroup)
		}
		if v := bb.TallyComponentVotes; v != nil {
			check("ballot box "+id+" tally component votes", v.EncryptionGroup)
		}
	}
	return nil
}

func verifyCastBallots(ctx *election.Context, f *Findings) error {
	r, _ := ctx.DecryptResults()
	if r.CastBallots < 0 {
		f.Add("castBallots is negative: %d", r.CastBallots)
		return nil
	}
	f.Mismatch("castBallots does not match the counted ballots", r.CastBallots, r.CountedBallots())
	return nil
}

func verifyBallotBoxIdentification(ctx *election.Context, f *Findings) error {
	cfg, _ := ctx.Configuration()
	check := func(id, where string) {
		if _, ok := cfg.BallotBox(id); !ok {
			f.Add("ballot box %s referenced by %s is not in the configuration", id, where)
		}
	}
	for _, id := range ctx.BallotBoxIDs() {
		check(id, "the tally directory")
	}
	if r, ok := ctx.DecryptResults(); ok {
		for _, bb := range r.BallotsBoxes {
			check(bb.BallotBoxIdentification, "the decrypt results")
		}
	}
	return nil
}

func verifyChosenIdentifiers(ctx *election.Context, f *Findings) error {
	r, _ := ctx.DecryptResults()
	cfg, _ := ctx.Configuration()
	for _, bb := range r.BallotsBoxes {
		for _, cc := range bb.CountingCircles {
			for _, doi := range cc.DomainsOfInfluence {
				where := fmt.Sprintf("ballot box %s counting circle %s", bb.BallotBoxIdentification, cc.CountingCircleIdentification)
				for _, e := range doi.Elections {
					declared, ok := cfg.Candidates(e.ElectionIdentification)
					if !ok {
						f.Add("%s: election %s is not declared", where, e.ElectionIdentification)
						continue
					}
					for _, c := range e.ChosenCandidates {
						if !declared[c] {
							f.Add("%s: candidate %s is not declared for election %s", where, c, e.ElectionIdentification)
						}
					}
				}
				for _, v := range doi.Votes {
					declared, ok := cfg.Answers(v.VoteIdentification)
					if !ok {
						f.Add("%s: vote %s is not declared", where, v.VoteIdentification)
						continue
					}
					for _, a := range v.ChosenAnswers {
						if !declared[a] {
							f.Add("%s: answer %s is not declared for vote %s", where, a, v.VoteIdentification)
						}
					}
				}
			}
		}
	}
	return nil
}

// ballotKey is a canonical form of one ballot's selections
func ballotKey(options []string) string {
	sorted := append([]string(nil), options...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func countedBallots(bb *election.ResultBallotBox) []string {
	var out []string
	for _, cc := range bb.CountingCircles {
		for _, doi := range cc.DomainsOfInfluence {
			for _, e := range doi.Elections {
				opts := make([]string, len(e.ChosenCandidates))
				for i, c := range e.ChosenCandidates {
					opts[i] = election.JoinVotingOption(e.ElectionIdentification, c)
				}
				out = append(out, ballotKey(opts))
			}
			for _, v := range doi.Votes {
				opts := make([]string, len(v.ChosenAnswers))
				for i, a := range v.ChosenAnswers {
					opts[i] = election.JoinVotingOption(v.VoteIdentification, a)
				}
				out = append(out, ballotKey(opts))
			}
		}
	}
	sort.Strings(out)
	return out
}

func verifyDecryptResultsConsistency(ctx *election.Context, f *Findings) error {
	r, _ := ctx.DecryptResults()
	results := map[string]*election.ResultBallotBox{}
	for _, bb := range r.BallotsBoxes {
		if _, dup := results[bb.BallotBoxIdentification]; dup {
			f.Add("ballot box %s appears twice in the decrypt results", bb.BallotBoxIdentification)
		}
		results[bb.BallotBoxIdentification] = bb
	}
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		v := bb.TallyComponentVotes
		if v == nil {
			continue
		}
		var want []string
		for _, opts := range v.ActualSelectedVotingOptions {
			want = append(want, ballotKey(opts))
		}
		sort.Strings(want)
		var got []string
		if rb, ok := results[id]; ok {
			got = countedBallots(rb)
		}
		delete(results, id)
		if len(want) != len(got) {
			f.Add("ballot box %s: %d tallied votes != %d counted ballots", id, len(want), len(got))
			continue
		}
		for i := range want {
			if want[i] != got[i] {
				f.Add("ballot box %s: tallied ballot %q != counted ballot %q", id, want[i], got[i])
				break
			}
		}
	}
	for _, id := range sortedStrings(results) {
		f.Add("ballot box %s in the decrypt results has no tallied votes", id)
	}
	return nil
}

func sortedStrings[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func verifyTallyIntegrity(ctx *election.Context, f *Findings) error {
	sys, err := group(ctx)
	if err != nil {
		return err
	}
	ciphertexts := func(where string, cts []*election.Ciphertext) {
		for i, ct := range cts {
			if ct == nil || !ct.ElGamal().IsMember(sys) {
				f.Add("%s: ciphertext %d not in the group", where, i)
			}
		}
	}
	for _, id := range ctx.BallotBoxIDs() {
		bb, _ := ctx.BallotBox(id)
		for _, node := range election.SortedKeys(bb.ControlComponentBallotBoxes) {
			for i, v := range bb.ControlComponentBallotBoxes[node].ConfirmedEncryptedVotes {
				if v == nil {
					continue
				}
				where := fmt.Sprintf("ballot box %s node %d vote %d", id, node, i)
				ciphertexts(where, []*election.Ciphertext{v.EncryptedVote, v.ExponentiatedEncryptedVote, v.EncryptedPartialChoiceReturnCodes})
				if v.EncryptedVote != nil && len(v.EncryptedVote.Phis) != election.VoteSize {
					f.Add("%s: encrypted vote has %d phis, expected %d", where, len(v.EncryptedVote.Phis), election.VoteSize)
				}
			}
		}
		for _, node := range election.SortedKeys(bb.ControlComponentShuffles) {
			s := bb.ControlComponentShuffles[node]
			if s.VerifiableShuffle != nil {
				ciphertexts(fmt.Sprintf("ballot box %s shuffle of node %d", id, node), s.VerifiableShuffle.ShuffledCiphertexts)
			}
			if s.VerifiableDecryptions != nil {
				ciphertexts(fmt.Sprintf("ballot box %s decryptions of node %d", id, node), s.VerifiableDecryptions.Ciphertexts)
			}
		}
		if t := bb.TallyComponentShuffle; t != nil {
			if t.VerifiableShuffle != nil {
				ciphertexts("ballot box "+id+" tally component shuffle", t.VerifiableShuffle.ShuffledCiphertexts)
			}
			if t.VerifiablePlaintextDecryption != nil {
				for i, m := range t.VerifiablePlaintextDecryption.DecryptedVotes {
					if !allMembers(sys, m) {
						f.Add("ballot box %s: decrypted vote %d not in the group", id, i)
					}
				}
			}
		}
	}
	return nil
}
