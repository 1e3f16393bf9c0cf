package verifier

import (
	"fmt"
	"sort"
	"time"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto"
	"github.com/thechriswalker/go-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-verifier/election"
)

func verifySetupCompleteness(ctx *election.Context, f *Findings) error {
	s, _ := ctx.Setup()
	if s.EncryptionParameters == nil {
		f.Add("encryption parameters missing")
	}
	if s.ElectionEventContext == nil {
		f.Add("election event context missing")
	}
	if s.SetupComponentPublicKeys == nil {
		f.Add("setup component public keys missing")
	}
	if s.Configuration == nil {
		f.Add("configuration missing")
	}
	for _, node := range election.NodeIDs() {
		if s.ControlComponentPublicKeys[node] == nil {
			f.Add("control component public keys of node %d missing", node)
		}
	}
	ee, ok := ctx.ElectionEventContext()
	if !ok {
		return nil
	}
	for _, vcc := range ee.ElectionEventContext.VerificationCardSetContexts {
		id := vcc.VerificationCardSetID
		vcs, ok := ctx.VerificationCardSet(id)
		if !ok {
			f.Add("verification card set %s missing", id)
			continue
		}
		if vcs.TallyData == nil {
			f.Add("verification card set %s: tally data missing", id)
		}
		if len(vcs.VerificationData) == 0 {
			f.Add("verification card set %s: verification data missing", id)
		}
		for _, chunk := range election.SortedKeys(vcs.VerificationData) {
			if n := len(vcs.CodeShares[chunk]); n != election.NumberOfControlComponents {
				f.Add("verification card set %s chunk %d: code shares of %d nodes, expected %d", id, chunk, n, election.NumberOfControlComponents)
			}
		}
	}
	return nil
}

func verifySetupEncryptionGroups(ctx *election.Context, f *Findings) error {
	sys, err := group(ctx)
	if err != nil {
		return err
	}
	check := func(what string, eg *election.EncryptionGroup) {
		if !eg.Equal(sys) {
			f.Add("%s: encryption group differs from the encryption parameters", what)
		}
	}
	s, _ := ctx.Setup()
	if p := s.ElectionEventContext; p != nil {
		check("election event context", p.EncryptionGroup)
	}
	if p := s.SetupComponentPublicKeys; p != nil {
		check("setup component public keys", p.EncryptionGroup)
	}
	for _, node := range election.SortedKeys(s.ControlComponentPublicKeys) {
		check(fmt.Sprintf("control component public keys of node %d", node), s.ControlComponentPublicKeys[node].EncryptionGroup)
	}
	for _, id := range ctx.VerificationCardSetIDs() {
		vcs, _ := ctx.VerificationCardSet(id)
		if vcs.TallyData != nil {
			check(fmt.Sprintf("verification card set %s tally data", id), vcs.TallyData.EncryptionGroup)
		}
		for _, chunk := range election.SortedKeys(vcs.VerificationData) {
			check(fmt.Sprintf("verification card set %s verification data chunk %d", id, chunk), vcs.VerificationData[chunk].EncryptionGroup)
		}
		for _, chunk := range election.SortedKeys(vcs.CodeShares) {
			for _, p := range vcs.CodeShares[chunk] {
				check(fmt.Sprintf("verification card set %s code shares chunk %d node %d", id, chunk, p.NodeID), p.EncryptionGroup)
			}
		}
	}
	return nil
}

func verifySetupFileNames(ctx *election.Context, f *Findings) error {
	s, _ := ctx.Setup()
	for _, node := range election.SortedKeys(s.ControlComponentPublicKeys) {
		p := s.ControlComponentPublicKeys[node]
		if p.ControlComponentPublicKeys == nil {
			f.Add("control component public keys file of node %d has no keys", node)
			continue
		}
		f.Mismatch("control component public keys file node id", node, p.ControlComponentPublicKeys.NodeID)
	}
	for _, id := range ctx.VerificationCardSetIDs() {
		vcs, _ := ctx.VerificationCardSet(id)
		for _, chunk := range election.SortedKeys(vcs.VerificationData) {
			f.Mismatch(fmt.Sprintf("verification card set %s verification data file chunk id", id), chunk, vcs.VerificationData[chunk].ChunkID)
		}
		for _, chunk := range election.SortedKeys(vcs.CodeShares) {
			for _, p := range vcs.CodeShares[chunk] {
				f.Mismatch(fmt.Sprintf("verification card set %s code shares file chunk id (node %d)", id, p.NodeID), chunk, p.ChunkID)
			}
		}
	}
	return nil
}

// compareNodeKeys checks one field of the combined control component keys
// against the payload each node published
func compareNodeKeys(ctx *election.Context, f *Findings, what string, same func(combined, own *election.ControlComponentPublicKeys) bool) error {
	combined, _, err := combinedKeys(ctx)
	if err != nil {
		return err
	}
	own, _ := ctx.ControlComponentPublicKeys()
	for _, c := range combined {
		p, ok := own[c.NodeID]
		if !ok || p.ControlComponentPublicKeys == nil {
			f.Add("node %d: no control component public keys to compare with", c.NodeID)
			continue
		}
		if !same(c, p.ControlComponentPublicKeys) {
			f.Add("node %d: %s differs from the combined control component public keys", c.NodeID, what)
		}
	}
	return nil
}

func verifyCCRKeyConsistency(ctx *election.Context, f *Findings) error {
	return compareNodeKeys(ctx, f, "CCR choice return codes encryption key", func(a, b *election.ControlComponentPublicKeys) bool {
		return a.CcrjChoiceReturnCodesEncryptionPublicKey.Equal(b.CcrjChoiceReturnCodesEncryptionPublicKey)
	})
}

func verifyCCMKeyConsistency(ctx *election.Context, f *Findings) error {
	return compareNodeKeys(ctx, f, "CCM election key", func(a, b *election.ControlComponentPublicKeys) bool {
		return a.CcmjElectionPublicKey.Equal(b.CcmjElectionPublicKey)
	})
}

func sameSchnorrProofs(a, b []*election.SchnorrProof) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func verifySchnorrProofConsistency(ctx *election.Context, f *Findings) error {
	return compareNodeKeys(ctx, f, "Schnorr proofs", func(a, b *election.ControlComponentPublicKeys) bool {
		return sameSchnorrProofs(a.CcrjSchnorrProofs, b.CcrjSchnorrProofs) && sameSchnorrProofs(a.CcmjSchnorrProofs, b.CcmjSchnorrProofs)
	})
}

func verifyChoiceReturnCodesKey(ctx *election.Context, f *Findings) error {
	sys, err := group(ctx)
	if err != nil {
		return err
	}
	combined, keys, err := combinedKeys(ctx)
	if err != nil {
		return err
	}
	ccr := make([][]*big.Int, len(combined))
	for i, c := range combined {
		ccr[i] = c.CcrjChoiceReturnCodesEncryptionPublicKey
	}
	product, err := elgamal.CombineKeys(sys, ccr...)
	if err != nil {
		f.Add("CCR keys cannot be combined: %v", err)
		return nil
	}
	if !sameInts(product, keys.ChoiceReturnCodesEncryptionPublicKey) {
		f.Add("choice return codes encryption key != product of the CCR keys")
	}
	return nil
}

func verifyElectionPublicKey(ctx *election.Context, f *Findings) error {
	sys, err := group(ctx)
	if err != nil {
		return err
	}
	combined, keys, err := combinedKeys(ctx)
	if err != nil {
		return err
	}
	parts := make([][]*big.Int, 0, len(combined)+1)
	for _, c := range combined {
		parts = append(parts, c.CcmjElectionPublicKey)
	}
	parts = append(parts, keys.ElectoralBoardPublicKey)
	product, err := elgamal.CombineKeys(sys, parts...)
	if err != nil {
		f.Add("CCM and electoral board keys cannot be combined: %v", err)
		return nil
	}
	if !sameInts(product, keys.ElectionPublicKey) {
		f.Add("election public key != product of the CCM keys and the electoral board key")
	}
	return nil
}

func verifyPrimesMappingTables(ctx *election.Context, f *Findings) error {
	ep, _ := ctx.EncryptionParameters()
	ee, _ := ctx.ElectionEventContext()
	small := map[int]bool{}
	for _, p := range ep.SmallPrimes {
		small[p] = true
	}
	cfg, hasCfg := ctx.Configuration()
	for _, vcc := range ee.ElectionEventContext.VerificationCardSetContexts {
		where := "verification card set " + vcc.VerificationCardSetID
		if vcc.PrimesMappingTable == nil || len(vcc.PrimesMappingTable.PTable) == 0 {
			f.Add("%s: empty primes mapping table", where)
			continue
		}
		seenPrime := map[int]bool{}
		seenOption := map[string]bool{}
		for _, e := range vcc.PrimesMappingTable.PTable {
			if !small[e.EncodedVotingOption] {
				f.Add("%s: encoded voting option %d is not one of the small primes", where, e.EncodedVotingOption)
			}
			if seenPrime[e.EncodedVotingOption] {
				f.Add("%s: encoded voting option %d appears twice", where, e.EncodedVotingOption)
			}
			if seenOption[e.ActualVotingOption] {
				f.Add("%s: actual voting option %s appears twice", where, e.ActualVotingOption)
			}
			seenPrime[e.EncodedVotingOption] = true
			seenOption[e.ActualVotingOption] = true
			contest, choice, ok := election.SplitVotingOption(e.ActualVotingOption)
			if !ok {
				f.Add("%s: actual voting option %q is not contest|choice", where, e.ActualVotingOption)
				continue
			}
			if hasCfg && !cfg.HasOption(contest, choice) {
				f.Add("%s: actual voting option %s not declared in the configuration", where, e.ActualVotingOption)
			}
		}
	}
	return nil
}

func verifySetupElectionEventIDs(ctx *election.Context, f *Findings) error {
	ee, err := electionEventID(ctx)
	if err != nil {
		return err
	}
	check := func(what, id string) {
		if id != ee {
			f.Add("%s: election event id %s != %s", what, id, ee)
		}
	}
	s, _ := ctx.Setup()
	if p := s.SetupComponentPublicKeys; p != nil {
		check("setup component public keys", p.ElectionEventID)
	}
	if s.Configuration != nil {
		check("configuration", s.Configuration.Header.ElectionEventID)
	}
	for _, node := range election.SortedKeys(s.ControlComponentPublicKeys) {
		check(fmt.Sprintf("control component public keys of node %d", node), s.ControlComponentPublicKeys[node].ElectionEventID)
	}
	for _, id := range ctx.VerificationCardSetIDs() {
		vcs, _ := ctx.VerificationCardSet(id)
		if vcs.TallyData != nil {
			check("tally data of verification card set "+id, vcs.TallyData.ElectionEventID)
		}
		for _, chunk := range election.SortedKeys(vcs.VerificationData) {
			check(fmt.Sprintf("verification data of verification card set %s chunk %d", id, chunk), vcs.VerificationData[chunk].ElectionEventID)
		}
		for _, chunk := range election.SortedKeys(vcs.CodeShares) {
			for _, p := range vcs.CodeShares[chunk] {
				check(fmt.Sprintf("code shares of verification card set %s chunk %d node %d", id, chunk, p.NodeID), p.ElectionEventID)
			}
		}
	}
	return nil
}

func verifyVerificationCardSetIDs(ctx *election.Context, f *Findings) error {
	ee, _ := ctx.ElectionEventContext()
	var declared []string
	for _, vcc := range ee.ElectionEventContext.VerificationCardSetContexts {
		declared = append(declared, vcc.VerificationCardSetID)
	}
	sameSet(f, "verification card sets", "election event context", declared, "setup directory", ctx.VerificationCardSetIDs())
	if cfg, ok := ctx.Configuration(); ok {
		var configured []string
		for _, bb := range cfg.BallotBoxes {
			configured = append(configured, bb.VerificationCardSetIdentification)
		}
		sameSet(f, "verification card sets", "election event context", declared, "configuration", configured)
	}
	return nil
}

func verifyFileNameVerificationCardSetIDs(ctx *election.Context, f *Findings) error {
	for _, id := range ctx.VerificationCardSetIDs() {
		vcs, _ := ctx.VerificationCardSet(id)
		if vcs.TallyData != nil {
			f.Mismatch("tally data verification card set id", id, vcs.TallyData.VerificationCardSetID)
		}
		for _, chunk := range election.SortedKeys(vcs.VerificationData) {
			f.Mismatch(fmt.Sprintf("verification data chunk %d verification card set id", chunk), id, vcs.VerificationData[chunk].VerificationCardSetID)
		}
		for _, chunk := range election.SortedKeys(vcs.CodeShares) {
			for _, p := range vcs.CodeShares[chunk] {
				f.Mismatch(fmt.Sprintf("code shares chunk %d node %d verification card set id", chunk, p.NodeID), id, p.VerificationCardSetID)
			}
		}
	}
	return nil
}

func verificationDataCardIDs(vcs *election.VerificationCardSetArtifacts) []string {
	var ids []string
	for _, chunk := range election.SortedKeys(vcs.VerificationData) {
		for _, d := range vcs.VerificationData[chunk].SetupComponentVerificationData {
			ids = append(ids, d.VerificationCardID)
		}
	}
	return ids
}

func verifyVerificationCardIDs(ctx *election.Context, f *Findings) error {
	for _, id := range ctx.VerificationCardSetIDs() {
		vcs, _ := ctx.VerificationCardSet(id)
		where := "verification card set " + id
		if vcs.TallyData == nil {
			f.Add("%s: no tally data to take verification card ids from", where)
			continue
		}
		cards := vcs.TallyData.VerificationCardIDs
		if dups := duplicates(cards); len(dups) > 0 {
			f.Add("%s: duplicate verification card ids %v", where, dups)
		}
		if len(vcs.TallyData.VerificationCardPublicKeys) != len(cards) {
			f.Add("%s: %d verification card public keys for %d cards", where, len(vcs.TallyData.VerificationCardPublicKeys), len(cards))
		}
		sameSet(f, where, "tally data", cards, "verification data", verificationDataCardIDs(vcs))
		for _, node := range election.NodeIDs() {
			var shared []string
			for _, chunk := range election.SortedKeys(vcs.CodeShares) {
				for _, p := range vcs.CodeShares[chunk] {
					if p.NodeID != node {
						continue
					}
					for _, s := range p.ControlComponentCodeShares {
						shared = append(shared, s.VerificationCardID)
					}
				}
			}
			sameSet(f, where, "tally data", cards, fmt.Sprintf("code shares of node %d", node), shared)
		}
		if vcc, ok := ctx.VerificationCardSetContext(id); ok {
			f.Mismatch(where+": number of voting cards", vcc.NumberOfVotingCards, len(cards))
		}
	}
	return nil
}

func duplicates(xs []string) []string {
	seen := map[string]int{}
	var out []string
	for _, x := range xs {
		seen[x]++
		if seen[x] == 2 {
			out = append(out, x)
		}
	}
	return out
}

func verifyTotalVoters(ctx *election.Context, f *Findings) error {
	ee, _ := ctx.ElectionEventContext()
	cfg, _ := ctx.Configuration()
	total := 0
	for _, vcc := range ee.ElectionEventContext.VerificationCardSetContexts {
		if !vcc.TestBallotBox {
			total += vcc.NumberOfVotingCards
		}
	}
	f.Mismatch("configuration voter total vs voting cards of the election event context", cfg.Header.VoterTotal, total)
	f.Mismatch("configuration voter total vs register", cfg.Header.VoterTotal, len(cfg.Register))
	return nil
}

func verifySetupNodeIDs(ctx *election.Context, f *Findings) error {
	want := intsString(election.NodeIDs())
	own, _ := ctx.ControlComponentPublicKeys()
	f.Mismatch("control component public keys nodes", want, intsString(election.SortedKeys(own)))
	if combined, _, err := combinedKeys(ctx); err == nil {
		ids := make([]int, len(combined))
		for i, c := range combined {
			ids[i] = c.NodeID
		}
		f.Mismatch("combined control component public keys nodes", want, intsString(ids))
	}
	for _, id := range ctx.VerificationCardSetIDs() {
		vcs, _ := ctx.VerificationCardSet(id)
		for _, chunk := range election.SortedKeys(vcs.CodeShares) {
			ids := make([]int, 0, len(vcs.CodeShares[chunk]))
			for _, p := range vcs.CodeShares[chunk] {
				ids = append(ids, p.NodeID)
			}
			f.Mismatch(fmt.Sprintf("verification card set %s code shares chunk %d nodes", id, chunk), want, intsString(sortedInts(ids)))
		}
	}
	return nil
}

func verifyChunks(ctx *election.Context, f *Findings) error {
	for _, id := range ctx.VerificationCardSetIDs() {
		vcs, _ := ctx.VerificationCardSet(id)
		where := "verification card set " + id
		chunks := election.SortedKeys(vcs.VerificationData)
		for i, c := range chunks {
			if c != i {
				f.Add("%s: verification data chunks %v are not numbered from 0 without gaps", where, chunks)
				break
			}
		}
		f.Mismatch(where+": code shares chunks", intsString(chunks), intsString(election.SortedKeys(vcs.CodeShares)))
		for _, c := range chunks {
			var want []string
			for _, d := range vcs.VerificationData[c].SetupComponentVerificationData {
				want = append(want, d.VerificationCardID)
			}
			for _, p := range vcs.CodeShares[c] {
				var got []string
				for _, s := range p.ControlComponentCodeShares {
					got = append(got, s.VerificationCardID)
				}
				f.Mismatch(fmt.Sprintf("%s chunk %d: verification cards of node %d", where, c, p.NodeID), want, got)
			}
		}
	}
	return nil
}

func verifySetupIntegrity(ctx *election.Context, f *Findings) error {
	sys, err := group(ctx)
	if err != nil {
		return err
	}
	key := func(what string, y []*big.Int) {
		if len(y) == 0 {
			f.Add("%s: empty key", what)
		} else if !allMembers(sys, y) {
			f.Add("%s: not all elements are group members", what)
		}
	}
	element := func(what string, x *crypto.BigInt) {
		if !sys.IsMember(x.Int()) {
			f.Add("%s: not a group member", what)
		}
	}
	ciphertext := func(what string, ct *election.Ciphertext) {
		if ct == nil || !ct.ElGamal().IsMember(sys) {
			f.Add("%s: ciphertext not in the group", what)
		}
	}
	if p, ok := ctx.SetupComponentPublicKeys(); ok {
		k := p.SetupComponentPublicKeys
		key("election public key", k.ElectionPublicKey)
		key("electoral board public key", k.ElectoralBoardPublicKey)
		key("choice return codes encryption public key", k.ChoiceReturnCodesEncryptionPublicKey)
		for _, c := range k.CombinedControlComponentPublicKeys {
			if c == nil {
				continue
			}
			key(fmt.Sprintf("combined CCR key of node %d", c.NodeID), c.CcrjChoiceReturnCodesEncryptionPublicKey)
			key(fmt.Sprintf("combined CCM key of node %d", c.NodeID), c.CcmjElectionPublicKey)
		}
	}
	own, _ := ctx.ControlComponentPublicKeys()
	for _, node := range election.SortedKeys(own) {
		if k := own[node].ControlComponentPublicKeys; k != nil {
			key(fmt.Sprintf("CCR key of node %d", node), k.CcrjChoiceReturnCodesEncryptionPublicKey)
			key(fmt.Sprintf("CCM key of node %d", node), k.CcmjElectionPublicKey)
		}
	}
	for _, id := range ctx.VerificationCardSetIDs() {
		vcs, _ := ctx.VerificationCardSet(id)
		if vcs.TallyData != nil && !allMembers(sys, vcs.TallyData.VerificationCardPublicKeys) {
			f.Add("verification card set %s: verification card public keys not all group members", id)
		}
		for _, chunk := range election.SortedKeys(vcs.VerificationData) {
			for _, d := range vcs.VerificationData[chunk].SetupComponentVerificationData {
				where := fmt.Sprintf("verification card %s", d.VerificationCardID)
				element(where+" public key", d.VerificationCardPublicKey)
				ciphertext(where+" encrypted partial choice return codes", d.EncryptedHashedSquaredPartialChoiceReturnCodes)
				ciphertext(where+" encrypted confirmation key", d.EncryptedHashedSquaredConfirmationKey)
			}
		}
		for _, chunk := range election.SortedKeys(vcs.CodeShares) {
			for _, p := range vcs.CodeShares[chunk] {
				for _, s := range p.ControlComponentCodeShares {
					where := fmt.Sprintf("node %d code share of verification card %s", p.NodeID, s.VerificationCardID)
					element(where+" choice return code generation key", s.VoterChoiceReturnCodeGenerationPublicKey)
					element(where+" vote cast return code generation key", s.VoterVoteCastReturnCodeGenerationPublicKey)
					ciphertext(where+" partial choice return codes", s.ExponentiatedEncryptedPartialChoiceReturnCodes)
					ciphertext(where+" confirmation key", s.ExponentiatedEncryptedConfirmationKey)
				}
			}
		}
	}
	if ee, ok := ctx.ElectionEventContext(); ok {
		c := ee.ElectionEventContext
		start, err1 := time.Parse(time.RFC3339, c.StartTime)
		finish, err2 := time.Parse(time.RFC3339, c.FinishTime)
		switch {
		case err1 != nil || err2 != nil:
			f.Add("election event start %q or finish %q is not a RFC 3339 time", c.StartTime, c.FinishTime)
		case !start.Before(finish):
			f.Add("election event starts %s, after it finishes %s", c.StartTime, c.FinishTime)
		}
	}
	return nil
}

func sortedInts(xs []int) []int {
	out := append([]int(nil), xs...)
	sort.Ints(out)
	return out
}
