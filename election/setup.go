package election

import (
	"strings"

	"github.com/thechriswalker/go-verifier/crypto"
)

// labels mixed into every signed message, one per artifact kind
const (
	kindEncryptionParameters       = "encryption parameters"
	kindElectionEventContext       = "election event context"
	kindSetupComponentPublicKeys   = "setup component public keys"
	kindControlComponentPublicKeys = "control component public keys"
	kindSetupComponentTallyData    = "setup component tally data"
	kindSetupComponentVerification = "setup component verification data"
	kindControlComponentCodeShares = "control component code shares"
	kindControlComponentBallotBox  = "control component ballot box"
	kindControlComponentShuffle    = "control component shuffle"
	kindTallyComponentShuffle      = "tally component shuffle"
	kindTallyComponentVotes        = "tally component votes"
	kindConfiguration              = "configuration"
	kindDecryptResults             = "decrypt results"
)

type EncryptionParametersPayload struct {
	EncryptionGroup *EncryptionGroup `json:"encryptionGroup"`
	Seed            string           `json:"seed"`
	SmallPrimes     []int            `json:"smallPrimes"`
	signed
}

func (p EncryptionParametersPayload) SignedMessage() ([]byte, error) {
	p.signed = signed{}
	return canonicalJSON(kindEncryptionParameters, p)
}

type ElectionEventContextPayload struct {
	EncryptionGroup      *EncryptionGroup      `json:"encryptionGroup"`
	ElectionEventContext *ElectionEventContext `json:"electionEventContext"`
	signed
}

func (p ElectionEventContextPayload) SignedMessage() ([]byte, error) {
	p.signed = signed{}
	return canonicalJSON(kindElectionEventContext, p)
}

type ElectionEventContext struct {
	ElectionEventID              string                        `json:"electionEventId"`
	ElectionEventAlias           string                        `json:"electionEventAlias"`
	ElectionEventDescription     string                        `json:"electionEventDescription"`
	VerificationCardSetContexts  []*VerificationCardSetContext `json:"verificationCardSetContexts"`
	StartTime                    string                        `json:"startTime"`
	FinishTime                   string                        `json:"finishTime"`
	MaximumNumberOfVotingOptions int                           `json:"maximumNumberOfVotingOptions"`
	MaximumNumberOfSelections    int                           `json:"maximumNumberOfSelections"`
}

// VerificationCardSetContext ties a verification card set to its ballot box
type VerificationCardSetContext struct {
	VerificationCardSetID    string              `json:"verificationCardSetId"`
	VerificationCardSetAlias string              `json:"verificationCardSetAlias"`
	BallotBoxID              string              `json:"ballotBoxId"`
	TestBallotBox            bool                `json:"testBallotBox"`
	NumberOfVotingCards      int                 `json:"numberOfVotingCards"`
	NumberOfSelections       int                 `json:"numberOfSelections"`
	GracePeriod              int                 `json:"gracePeriod"`
	PrimesMappingTable       *PrimesMappingTable `json:"primesMappingTable"`
}

type PrimesMappingTable struct {
	PTable []*PrimesMappingTableEntry `json:"pTable"`
}

type PrimesMappingTableEntry struct {
	ActualVotingOption  string `json:"actualVotingOption"`
	EncodedVotingOption int    `json:"encodedVotingOption"`
	SemanticInformation string `json:"semanticInformation"`
}

// EncodedVotingOptions in table order
func (t *PrimesMappingTable) EncodedVotingOptions() []int {
	if t == nil {
		return nil
	}
	out := make([]int, len(t.PTable))
	for i, e := range t.PTable {
		out[i] = e.EncodedVotingOption
	}
	return out
}

// ActualVotingOption for an encoded prime
func (t *PrimesMappingTable) ActualVotingOption(prime int) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, e := range t.PTable {
		if e.EncodedVotingOption == prime {
			return e.ActualVotingOption, true
		}
	}
	return "", false
}

// JoinVotingOption builds the actual voting option of a choice in a contest
func JoinVotingOption(contest, choice string) string {
	return contest + "|" + choice
}

// SplitVotingOption is the inverse of JoinVotingOption
func SplitVotingOption(option string) (contest, choice string, ok bool) {
	i := strings.IndexByte(option, '|')
	if i <= 0 || i == len(option)-1 {
		return "", "", false
	}
	return option[:i], option[i+1:], true
}

type SetupComponentPublicKeysPayload struct {
	ElectionEventID          string                    `json:"electionEventId"`
	EncryptionGroup          *EncryptionGroup          `json:"encryptionGroup"`
	SetupComponentPublicKeys *SetupComponentPublicKeys `json:"setupComponentPublicKeys"`
	signed
}

func (p SetupComponentPublicKeysPayload) SignedMessage() ([]byte, error) {
	p.signed = signed{}
	return canonicalJSON(kindSetupComponentPublicKeys, p)
}

type SetupComponentPublicKeys struct {
	CombinedControlComponentPublicKeys   []*ControlComponentPublicKeys `json:"combinedControlComponentPublicKeys"`
	ElectoralBoardPublicKey              crypto.BigIntSlice            `json:"electoralBoardPublicKey"`
	ElectoralBoardSchnorrProofs          []*SchnorrProof               `json:"electoralBoardSchnorrProofs"`
	ElectionPublicKey                    crypto.BigIntSlice            `json:"electionPublicKey"`
	ChoiceReturnCodesEncryptionPublicKey crypto.BigIntSlice            `json:"choiceReturnCodesEncryptionPublicKey"`
}

type ControlComponentPublicKeys struct {
	NodeID                                   int                `json:"nodeId"`
	CcrjChoiceReturnCodesEncryptionPublicKey crypto.BigIntSlice `json:"ccrjChoiceReturnCodesEncryptionPublicKey"`
	CcrjSchnorrProofs                        []*SchnorrProof    `json:"ccrjSchnorrProofs"`
	CcmjElectionPublicKey                    crypto.BigIntSlice `json:"ccmjElectionPublicKey"`
	CcmjSchnorrProofs                        []*SchnorrProof    `json:"ccmjSchnorrProofs"`
}

type ControlComponentPublicKeysPayload struct {
	ElectionEventID            string                      `json:"electionEventId"`
	EncryptionGroup            *EncryptionGroup            `json:"encryptionGroup"`
	ControlComponentPublicKeys *ControlComponentPublicKeys `json:"controlComponentPublicKeys"`
	signed
}

func (p ControlComponentPublicKeysPayload) SignedMessage() ([]byte, error) {
	p.signed = signed{}
	return canonicalJSON(kindControlComponentPublicKeys, p)
}

type SetupComponentTallyDataPayload struct {
	ElectionEventID            string             `json:"electionEventId"`
	VerificationCardSetID      string             `json:"verificationCardSetId"`
	BallotBoxDefaultTitle      string             `json:"ballotBoxDefaultTitle"`
	EncryptionGroup            *EncryptionGroup   `json:"encryptionGroup"`
	VerificationCardIDs        []string           `json:"verificationCardIds"`
	VerificationCardPublicKeys crypto.BigIntSlice `json:"verificationCardPublicKeys"`
	signed
}

func (p SetupComponentTallyDataPayload) SignedMessage() ([]byte, error) {
	p.signed = signed{}
	return canonicalJSON(kindSetupComponentTallyData, p)
}

// VerificationCardPublicKey looks up K_id for a card
func (p *SetupComponentTallyDataPayload) VerificationCardPublicKey(vcID string) (*crypto.BigInt, bool) {
	for i, id := range p.VerificationCardIDs {
		if id == vcID {
			if i >= len(p.VerificationCardPublicKeys) {
				return nil, false
			}
			return crypto.NewBigInt(p.VerificationCardPublicKeys[i]), true
		}
	}
	return nil, false
}

type SetupComponentVerificationDataPayload struct {
	ElectionEventID                   string                            `json:"electionEventId"`
	VerificationCardSetID             string                            `json:"verificationCardSetId"`
	ChunkID                           int                               `json:"chunkId"`
	EncryptionGroup                   *EncryptionGroup                  `json:"encryptionGroup"`
	PartialChoiceReturnCodesAllowList []string                          `json:"partialChoiceReturnCodesAllowList"`
	SetupComponentVerificationData    []*SetupComponentVerificationData `json:"setupComponentVerificationData"`
	signed
}

func (p SetupComponentVerificationDataPayload) SignedMessage() ([]byte, error) {
	p.signed = signed{}
	return canonicalJSON(kindSetupComponentVerification, p)
}

type SetupComponentVerificationData struct {
	VerificationCardID                             string         `json:"verificationCardId"`
	VerificationCardPublicKey                      *crypto.BigInt `json:"verificationCardPublicKey"`
	EncryptedHashedSquaredPartialChoiceReturnCodes *Ciphertext    `json:"encryptedHashedSquaredPartialChoiceReturnCodes"`
	EncryptedHashedSquaredConfirmationKey          *Ciphertext    `json:"encryptedHashedSquaredConfirmationKey"`
}

type ControlComponentCodeSharesPayload struct {
	ElectionEventID            string                        `json:"electionEventId"`
	VerificationCardSetID      string                        `json:"verificationCardSetId"`
	ChunkID                    int                           `json:"chunkId"`
	NodeID                     int                           `json:"nodeId"`
	EncryptionGroup            *EncryptionGroup              `json:"encryptionGroup"`
	ControlComponentCodeShares []*ControlComponentCodeShares `json:"controlComponentCodeShares"`
	signed
}

func (p ControlComponentCodeSharesPayload) SignedMessage() ([]byte, error) {
	p.signed = signed{}
	return canonicalJSON(kindControlComponentCodeShares, p)
}

type ControlComponentCodeShares struct {
	VerificationCardID                                  string               `json:"verificationCardId"`
	VoterChoiceReturnCodeGenerationPublicKey            *crypto.BigInt       `json:"voterChoiceReturnCodeGenerationPublicKey"`
	VoterVoteCastReturnCodeGenerationPublicKey          *crypto.BigInt       `json:"voterVoteCastReturnCodeGenerationPublicKey"`
	ExponentiatedEncryptedPartialChoiceReturnCodes      *Ciphertext          `json:"exponentiatedEncryptedPartialChoiceReturnCodes"`
	EncryptedPartialChoiceReturnCodeExponentiationProof *ExponentiationProof `json:"encryptedPartialChoiceReturnCodeExponentiationProof"`
	ExponentiatedEncryptedConfirmationKey               *Ciphertext          `json:"exponentiatedEncryptedConfirmationKey"`
	EncryptedConfirmationKeyExponentiationProof         *ExponentiationProof `json:"encryptedConfirmationKeyExponentiationProof"`
}
