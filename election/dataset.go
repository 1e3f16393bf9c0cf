package election

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Dataset is the decoded artifact tree of one election, as found on disk.
// Maps are keyed by the identifiers taken from file and directory names.
type Dataset struct {
	Setup *SetupArtifacts `json:"setup,omitempty"`
	Tally *TallyArtifacts `json:"tally,omitempty"`
}

type SetupArtifacts struct {
	EncryptionParameters       *EncryptionParametersPayload               `json:"encryptionParameters,omitempty"`
	ElectionEventContext       *ElectionEventContextPayload               `json:"electionEventContext,omitempty"`
	SetupComponentPublicKeys   *SetupComponentPublicKeysPayload           `json:"setupComponentPublicKeys,omitempty"`
	ControlComponentPublicKeys map[int]*ControlComponentPublicKeysPayload `json:"controlComponentPublicKeys,omitempty"`
	Configuration              *Configuration                             `json:"configuration,omitempty"`
	VerificationCardSets       map[string]*VerificationCardSetArtifacts   `json:"verificationCardSets,omitempty"`
}

type VerificationCardSetArtifacts struct {
	TallyData        *SetupComponentTallyDataPayload                `json:"tallyData,omitempty"`
	VerificationData map[int]*SetupComponentVerificationDataPayload `json:"verificationData,omitempty"`
	// CodeShares holds, per chunk, the payload of every node
	CodeShares map[int][]*ControlComponentCodeSharesPayload `json:"codeShares,omitempty"`
}

type TallyArtifacts struct {
	BallotBoxes    map[string]*BallotBoxArtifacts `json:"ballotBoxes,omitempty"`
	DecryptResults *DecryptResults                `json:"decryptResults,omitempty"`
}

type BallotBoxArtifacts struct {
	ControlComponentBallotBoxes map[int]*ControlComponentBallotBoxPayload `json:"controlComponentBallotBoxes,omitempty"`
	ControlComponentShuffles    map[int]*ControlComponentShufflePayload   `json:"controlComponentShuffles,omitempty"`
	TallyComponentShuffle       *TallyComponentShufflePayload             `json:"tallyComponentShuffle,omitempty"`
	TallyComponentVotes         *TallyComponentVotesPayload               `json:"tallyComponentVotes,omitempty"`
}

// Clone deep copies the dataset, e.g. to tamper with a copy in tests
func (ds *Dataset) Clone() (*Dataset, error) {
	b, err := json.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("cloning dataset: %w", err)
	}
	out := new(Dataset)
	if err := json.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("cloning dataset: %w", err)
	}
	return out, nil
}

// Fingerprint is the hex blake3 digest of the canonical JSON of the dataset
func (ds *Dataset) Fingerprint() (string, error) {
	b, err := json.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("fingerprinting dataset: %w", err)
	}
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
