package election

import (
	"github.com/thechriswalker/go-verifier/crypto"
	"github.com/thechriswalker/go-verifier/crypto/elgamal"
)

type ControlComponentBallotBoxPayload struct {
	ElectionEventID         string                     `json:"electionEventId"`
	BallotBoxID             string                     `json:"ballotBoxId"`
	NodeID                  int                        `json:"nodeId"`
	EncryptionGroup         *EncryptionGroup           `json:"encryptionGroup"`
	ConfirmedEncryptedVotes []*EncryptedVerifiableVote `json:"confirmedEncryptedVotes"`
	signed
}

func (p ControlComponentBallotBoxPayload) SignedMessage() ([]byte, error) {
	p.signed = signed{}
	return canonicalJSON(kindControlComponentBallotBox, p)
}

type ContextIDs struct {
	ElectionEventID       string `json:"electionEventId"`
	VerificationCardSetID string `json:"verificationCardSetId"`
	VerificationCardID    string `json:"verificationCardId"`
}

// EncryptedVerifiableVote is a confirmed vote with the proofs binding it
// to the voter's partial choice return codes
type EncryptedVerifiableVote struct {
	ContextIDs                        *ContextIDs             `json:"contextIds"`
	EncryptedVote                     *Ciphertext             `json:"encryptedVote"`
	ExponentiatedEncryptedVote        *Ciphertext             `json:"exponentiatedEncryptedVote"`
	EncryptedPartialChoiceReturnCodes *Ciphertext             `json:"encryptedPartialChoiceReturnCodes"`
	ExponentiationProof               *ExponentiationProof    `json:"exponentiationProof"`
	PlaintextEqualityProof            *PlaintextEqualityProof `json:"plaintextEqualityProof"`
}

type ControlComponentShufflePayload struct {
	ElectionEventID       string                 `json:"electionEventId"`
	BallotBoxID           string                 `json:"ballotBoxId"`
	NodeID                int                    `json:"nodeId"`
	EncryptionGroup       *EncryptionGroup       `json:"encryptionGroup"`
	VerifiableShuffle     *VerifiableShuffle     `json:"verifiableShuffle"`
	VerifiableDecryptions *VerifiableDecryptions `json:"verifiableDecryptions"`
	signed
}

func (p ControlComponentShufflePayload) SignedMessage() ([]byte, error) {
	p.signed = signed{}
	return canonicalJSON(kindControlComponentShuffle, p)
}

type VerifiableShuffle struct {
	ShuffledCiphertexts []*Ciphertext    `json:"shuffledCiphertexts"`
	ShuffleArgument     *ShuffleArgument `json:"shuffleArgument"`
}

// VerifiableDecryptions are partially decrypted ciphertexts with proofs
type VerifiableDecryptions struct {
	Ciphertexts      []*Ciphertext      `json:"ciphertexts"`
	DecryptionProofs []*DecryptionProof `json:"decryptionProofs"`
}

type TallyComponentShufflePayload struct {
	ElectionEventID               string                         `json:"electionEventId"`
	BallotBoxID                   string                         `json:"ballotBoxId"`
	EncryptionGroup               *EncryptionGroup               `json:"encryptionGroup"`
	VerifiableShuffle             *VerifiableShuffle             `json:"verifiableShuffle"`
	VerifiablePlaintextDecryption *VerifiablePlaintextDecryption `json:"verifiablePlaintextDecryption"`
	signed
}

func (p TallyComponentShufflePayload) SignedMessage() ([]byte, error) {
	p.signed = signed{}
	return canonicalJSON(kindTallyComponentShuffle, p)
}

type VerifiablePlaintextDecryption struct {
	DecryptedVotes   []crypto.BigIntSlice `json:"decryptedVotes"`
	DecryptionProofs []*DecryptionProof   `json:"decryptionProofs"`
}

type TallyComponentVotesPayload struct {
	ElectionEventID             string           `json:"electionEventId"`
	BallotBoxID                 string           `json:"ballotBoxId"`
	EncryptionGroup             *EncryptionGroup `json:"encryptionGroup"`
	Votes                       [][]int          `json:"votes"`
	ActualSelectedVotingOptions [][]string       `json:"actualSelectedVotingOptions"`
	signed
}

func (p TallyComponentVotesPayload) SignedMessage() ([]byte, error) {
	p.signed = signed{}
	return canonicalJSON(kindTallyComponentVotes, p)
}

// ShuffleArgument is the serialised elgamal.ShuffleArgument
type ShuffleArgument struct {
	CA                          crypto.BigIntSlice           `json:"c_A"`
	CB                          crypto.BigIntSlice           `json:"c_B"`
	ProductArgument             *ProductArgument             `json:"productArgument"`
	MultiExponentiationArgument *MultiExponentiationArgument `json:"multiExponentiationArgument"`
}

type ProductArgument struct {
	SingleValueProductArgument *SingleValueProductArgument `json:"singleValueProductArgument"`
}

type SingleValueProductArgument struct {
	CD          *crypto.BigInt     `json:"c_d"`
	CLowerDelta *crypto.BigInt     `json:"c_delta"`
	CUpperDelta *crypto.BigInt     `json:"c_Delta"`
	ATilde      crypto.BigIntSlice `json:"a_tilde"`
	BTilde      crypto.BigIntSlice `json:"b_tilde"`
	RTilde      *crypto.BigInt     `json:"r_tilde"`
	STilde      *crypto.BigInt     `json:"s_tilde"`
}

type MultiExponentiationArgument struct {
	CA0 *crypto.BigInt     `json:"c_A_0"`
	CB  crypto.BigIntSlice `json:"c_B"`
	E   []*Ciphertext      `json:"E"`
	A   crypto.BigIntSlice `json:"a"`
	R   *crypto.BigInt     `json:"r"`
	B   *crypto.BigInt     `json:"b"`
	S   *crypto.BigInt     `json:"s"`
	Tau *crypto.BigInt     `json:"tau"`
}

func (a *ShuffleArgument) ElGamal() *elgamal.ShuffleArgument {
	if a == nil {
		return nil
	}
	out := &elgamal.ShuffleArgument{CA: a.CA, CB: a.CB}
	if a.ProductArgument != nil && a.ProductArgument.SingleValueProductArgument != nil {
		svp := a.ProductArgument.SingleValueProductArgument
		out.Product = &elgamal.SingleValueProductArgument{
			CD:          svp.CD.Int(),
			CLowerDelta: svp.CLowerDelta.Int(),
			CUpperDelta: svp.CUpperDelta.Int(),
			ATilde:      svp.ATilde,
			BTilde:      svp.BTilde,
			RTilde:      svp.RTilde.Int(),
			STilde:      svp.STilde.Int(),
		}
	}
	if me := a.MultiExponentiationArgument; me != nil {
		out.MultiExp = &elgamal.MultiExponentiationArgument{
			CA0: me.CA0.Int(),
			CB:  me.CB,
			E:   Ciphertexts(me.E),
			A:   me.A,
			R:   me.R.Int(),
			B:   me.B.Int(),
			S:   me.S.Int(),
			Tau: me.Tau.Int(),
		}
	}
	return out
}

func ShuffleArgumentOf(a *elgamal.ShuffleArgument) *ShuffleArgument {
	svp, me := a.Product, a.MultiExp
	return &ShuffleArgument{
		CA: a.CA,
		CB: a.CB,
		ProductArgument: &ProductArgument{SingleValueProductArgument: &SingleValueProductArgument{
			CD:          crypto.NewBigInt(svp.CD),
			CLowerDelta: crypto.NewBigInt(svp.CLowerDelta),
			CUpperDelta: crypto.NewBigInt(svp.CUpperDelta),
			ATilde:      svp.ATilde,
			BTilde:      svp.BTilde,
			RTilde:      crypto.NewBigInt(svp.RTilde),
			STilde:      crypto.NewBigInt(svp.STilde),
		}},
		MultiExponentiationArgument: &MultiExponentiationArgument{
			CA0: crypto.NewBigInt(me.CA0),
			CB:  me.CB,
			E:   CiphertextsOf(me.E),
			A:   me.A,
			R:   crypto.NewBigInt(me.R),
			B:   crypto.NewBigInt(me.B),
			S:   crypto.NewBigInt(me.S),
			Tau: crypto.NewBigInt(me.Tau),
		},
	}
}
