package simulate

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto"
	"github.com/thechriswalker/go-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-verifier/crypto/random"
	"github.com/thechriswalker/go-verifier/election"
)

const (
	electionID = "election-1"
	voteID     = "vote-1"
)

var answers = []string{"yes", "no", "blank"}

func (g *generator) generateSetup() error {
	sys, n := g.sys, g.keyLength()
	maxOptions := g.opts.Candidates
	if len(answers) > maxOptions {
		maxOptions = len(answers)
	}
	var err error
	if g.primes, err = smallPrimes(sys, maxOptions); err != nil {
		return err
	}
	for i := 0; i < g.opts.BallotBoxes; i++ {
		b := &box{id: random.ID(), vcs: random.ID()}
		if i%2 == 1 {
			b.contest, b.isVote, b.psi = voteID, true, 1
			for j, a := range answers {
				b.options = append(b.options, option{prime: g.primes[j], choice: a})
			}
		} else {
			b.contest, b.psi = electionID, g.opts.Selections
			for j := 0; j < g.opts.Candidates; j++ {
				b.options = append(b.options, option{prime: g.primes[j], choice: "candidate-" + strconv.Itoa(j+1)})
			}
		}
		if largest := largestVote(b.primes(), b.psi); largest.Cmp(sys.P) >= 0 {
			return fmt.Errorf("a group of %d bits is too small for %d selections", g.opts.Bits, b.psi)
		}
		for j := 0; j < g.opts.Voters; j++ {
			b.cards = append(b.cards, card{id: random.ID(), k: random.Int(sys.Q)})
		}
		g.boxes = append(g.boxes, b)
	}

	ee := g.ee
	for range election.NodeIDs() {
		g.ccr = append(g.ccr, elgamal.GenerateKeyPair(sys, n))
		g.ccm = append(g.ccm, elgamal.GenerateKeyPair(sys, n))
	}
	g.eb = elgamal.GenerateKeyPair(sys, n)
	g.setup = elgamal.GenerateKeyPair(sys, n)

	ccrKeys := make([][]*big.Int, len(g.ccr))
	electionKeys := make([][]*big.Int, 0, len(g.ccm)+1)
	for i := range g.ccr {
		ccrKeys[i] = g.ccr[i].Public().Y
		electionKeys = append(electionKeys, g.ccm[i].Public().Y)
	}
	electionKeys = append(electionKeys, g.eb.Public().Y)
	if g.pkCCR, err = elgamal.CombineKeys(sys, ccrKeys...); err != nil {
		return err
	}
	full, err := elgamal.CombineKeys(sys, electionKeys...)
	if err != nil {
		return err
	}
	if g.el, err = elgamal.CompressKey(sys, full, election.VoteSize); err != nil {
		return err
	}

	s := &election.SetupArtifacts{
		EncryptionParameters: &election.EncryptionParametersPayload{
			EncryptionGroup: election.GroupOf(sys),
			Seed:            "SIMULATED-" + ee[:8],
			SmallPrimes:     g.primes,
		},
		ElectionEventContext: &election.ElectionEventContextPayload{
			EncryptionGroup:      election.GroupOf(sys),
			ElectionEventContext: g.electionEventContext(maxOptions),
		},
		ControlComponentPublicKeys: map[int]*election.ControlComponentPublicKeysPayload{},
		Configuration:              g.configuration(),
		VerificationCardSets:       map[string]*election.VerificationCardSetArtifacts{},
	}
	keys := &election.SetupComponentPublicKeys{
		ElectoralBoardPublicKey:              g.eb.Public().Y,
		ElectoralBoardSchnorrProofs:          schnorrProofs(sys, g.eb, election.AuxSetupTallyEB(ee)),
		ElectionPublicKey:                    full,
		ChoiceReturnCodesEncryptionPublicKey: g.pkCCR,
	}
	for i, node := range election.NodeIDs() {
		keys.CombinedControlComponentPublicKeys = append(keys.CombinedControlComponentPublicKeys, g.nodeKeys(i, node))
		s.ControlComponentPublicKeys[node] = &election.ControlComponentPublicKeysPayload{
			ElectionEventID:            ee,
			EncryptionGroup:            election.GroupOf(sys),
			ControlComponentPublicKeys: g.nodeKeys(i, node),
		}
	}
	s.SetupComponentPublicKeys = &election.SetupComponentPublicKeysPayload{
		ElectionEventID:          ee,
		EncryptionGroup:          election.GroupOf(sys),
		SetupComponentPublicKeys: keys,
	}
	for _, b := range g.boxes {
		s.VerificationCardSets[b.vcs] = g.verificationCardSet(b)
	}
	g.ds.Setup = s
	return nil
}

// largestVote is the encoding of the psi largest options
func largestVote(primes []int, psi int) *big.Int {
	sorted := append([]int(nil), primes...)
	sort.Ints(sorted)
	return election.EncodeVote(sorted[len(sorted)-psi:])
}

func schnorrProofs(sys *elgamal.System, kp *elgamal.KeyPair, aux []interface{}) []*election.SchnorrProof {
	x := kp.Secret().X
	out := make([]*election.SchnorrProof, len(x))
	for i := range x {
		out[i] = election.SchnorrProofOf(elgamal.ProveSchnorr(sys, x[i], aux...))
	}
	return out
}

// nodeKeys builds a fresh copy of the public keys of node (index i)
func (g *generator) nodeKeys(i, node int) *election.ControlComponentPublicKeys {
	return &election.ControlComponentPublicKeys{
		NodeID:                                   node,
		CcrjChoiceReturnCodesEncryptionPublicKey: g.ccr[i].Public().Y,
		CcrjSchnorrProofs:                        g.proofs(i, true),
		CcmjElectionPublicKey:                    g.ccm[i].Public().Y,
		CcmjSchnorrProofs:                        g.proofs(i, false),
	}
}

func (g *generator) proofs(i int, ccr bool) []*election.SchnorrProof {
	node := i + 1
	if ccr {
		return schnorrProofs(g.sys, g.ccr[i], election.AuxGenKeysCCR(g.ee, node))
	}
	return schnorrProofs(g.sys, g.ccm[i], election.AuxSetupTallyCCM(g.ee, node))
}

func (g *generator) electionEventContext(maxOptions int) *election.ElectionEventContext {
	start := time.Now().UTC().Truncate(time.Second)
	c := &election.ElectionEventContext{
		ElectionEventID:              g.ee,
		ElectionEventAlias:           "simulated-" + g.ee[:8],
		ElectionEventDescription:     "Simulated election event",
		StartTime:                    start.Format(time.RFC3339),
		FinishTime:                   start.Add(48 * time.Hour).Format(time.RFC3339),
		MaximumNumberOfVotingOptions: maxOptions,
		MaximumNumberOfSelections:    g.keyLength(),
	}
	for i, b := range g.boxes {
		table := &election.PrimesMappingTable{}
		for _, o := range b.options {
			table.PTable = append(table.PTable, &election.PrimesMappingTableEntry{
				ActualVotingOption:  election.JoinVotingOption(b.contest, o.choice),
				EncodedVotingOption: o.prime,
				SemanticInformation: "NON_BLANK|" + o.choice,
			})
		}
		c.VerificationCardSetContexts = append(c.VerificationCardSetContexts, &election.VerificationCardSetContext{
			VerificationCardSetID:    b.vcs,
			VerificationCardSetAlias: fmt.Sprintf("vcs-%d", i+1),
			BallotBoxID:              b.id,
			NumberOfVotingCards:      len(b.cards),
			NumberOfSelections:       b.psi,
			GracePeriod:              900,
			PrimesMappingTable:       table,
		})
	}
	return c
}

func (g *generator) configuration() *election.Configuration {
	cfg := &election.Configuration{
		Header: election.ConfigurationHeader{ElectionEventID: g.ee},
		Contest: election.Contest{
			ContestIdentification: "contest-" + g.ee[:8],
		},
	}
	e := &election.ConfigElection{ElectionIdentification: electionID, NumberOfMandates: g.opts.Selections}
	for j := 0; j < g.opts.Candidates; j++ {
		e.Candidates = append(e.Candidates, &election.Candidate{CandidateIdentification: "candidate-" + strconv.Itoa(j+1)})
	}
	v := &election.ConfigVote{VoteIdentification: voteID}
	for _, a := range answers {
		v.Answers = append(v.Answers, &election.Answer{AnswerIdentification: a})
	}
	cfg.Contest.Elections = []*election.ConfigElection{e}
	cfg.Contest.Votes = []*election.ConfigVote{v}
	for _, b := range g.boxes {
		cfg.BallotBoxes = append(cfg.BallotBoxes, &election.ConfigBallotBox{
			BallotBoxIdentification:           b.id,
			VerificationCardSetIdentification: b.vcs,
		})
		for range b.cards {
			cfg.Register = append(cfg.Register, &election.Voter{
				VoterIdentification:     fmt.Sprintf("voter-%d", len(cfg.Register)+1),
				BallotBoxIdentification: b.id,
			})
		}
	}
	cfg.Header.VoterTotal = len(cfg.Register)
	return cfg
}

func (g *generator) verificationCardSet(b *box) *election.VerificationCardSetArtifacts {
	sys, ee := g.sys, g.ee
	vcs := &election.VerificationCardSetArtifacts{
		TallyData: &election.SetupComponentTallyDataPayload{
			ElectionEventID:       ee,
			VerificationCardSetID: b.vcs,
			BallotBoxDefaultTitle: "Ballot box " + b.id[:8],
			EncryptionGroup:       election.GroupOf(sys),
		},
		VerificationData: map[int]*election.SetupComponentVerificationDataPayload{},
		CodeShares:       map[int][]*election.ControlComponentCodeSharesPayload{},
	}
	setupKey := g.setup.Public()
	for start, chunk := 0, 0; start < len(b.cards); start, chunk = start+g.opts.ChunkSize, chunk+1 {
		end := start + g.opts.ChunkSize
		if end > len(b.cards) {
			end = len(b.cards)
		}
		data := &election.SetupComponentVerificationDataPayload{
			ElectionEventID:       ee,
			VerificationCardSetID: b.vcs,
			ChunkID:               chunk,
			EncryptionGroup:       election.GroupOf(sys),
		}
		shares := make([]*election.ControlComponentCodeSharesPayload, len(election.NodeIDs()))
		for i, node := range election.NodeIDs() {
			shares[i] = &election.ControlComponentCodeSharesPayload{
				ElectionEventID:       ee,
				VerificationCardSetID: b.vcs,
				ChunkID:               chunk,
				NodeID:                node,
				EncryptionGroup:       election.GroupOf(sys),
			}
		}
		for _, c := range b.cards[start:end] {
			pk := sys.Exp(sys.G, c.k)
			vcs.TallyData.VerificationCardIDs = append(vcs.TallyData.VerificationCardIDs, c.id)
			vcs.TallyData.VerificationCardPublicKeys = append(vcs.TallyData.VerificationCardPublicKeys, pk)

			// hashed squared codes are opaque group members to the verifier
			pcc := setupKey.Encrypt(randomMembers(sys, b.psi), nil)
			ck := setupKey.Encrypt(randomMembers(sys, 1), nil)
			data.SetupComponentVerificationData = append(data.SetupComponentVerificationData, &election.SetupComponentVerificationData{
				VerificationCardID:                             c.id,
				VerificationCardPublicKey:                      crypto.NewBigInt(pk),
				EncryptedHashedSquaredPartialChoiceReturnCodes: election.CiphertextOf(pcc),
				EncryptedHashedSquaredConfirmationKey:          election.CiphertextOf(ck),
			})
			for i, node := range election.NodeIDs() {
				aux := election.AuxGenEncLongCodeShares(ee, c.id, node)
				pccKey, pccExp, pccProof := exponentiate(sys, pcc, aux)
				ckKey, ckExp, ckProof := exponentiate(sys, ck, aux)
				shares[i].ControlComponentCodeShares = append(shares[i].ControlComponentCodeShares, &election.ControlComponentCodeShares{
					VerificationCardID:                                  c.id,
					VoterChoiceReturnCodeGenerationPublicKey:            crypto.NewBigInt(pccKey),
					VoterVoteCastReturnCodeGenerationPublicKey:          crypto.NewBigInt(ckKey),
					ExponentiatedEncryptedPartialChoiceReturnCodes:      election.CiphertextOf(pccExp),
					EncryptedPartialChoiceReturnCodeExponentiationProof: election.ExponentiationProofOf(pccProof),
					ExponentiatedEncryptedConfirmationKey:               election.CiphertextOf(ckExp),
					EncryptedConfirmationKeyExponentiationProof:         election.ExponentiationProofOf(ckProof),
				})
			}
		}
		vcs.VerificationData[chunk] = data
		vcs.CodeShares[chunk] = shares
	}
	return vcs
}

func randomMembers(sys *elgamal.System, n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = sys.Exp(sys.G, random.Int(sys.Q))
	}
	return out
}

// exponentiate raises ct to a fresh secret and proves it against g^secret
func exponentiate(sys *elgamal.System, ct *elgamal.Ciphertext, aux []interface{}) (*big.Int, *elgamal.Ciphertext, *elgamal.ExponentiationProof) {
	bases := append([]*big.Int{sys.G, ct.Gamma}, ct.Phis...)
	ys, proof := elgamal.ProveExponentiation(sys, bases, random.Int(sys.Q), aux...)
	return ys[0], &elgamal.Ciphertext{Gamma: ys[1], Phis: ys[2:]}, proof
}
