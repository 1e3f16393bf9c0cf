package election

import (
	"os"
	"path/filepath"
	"testing"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto"
)

func smallDataset() *Dataset {
	group := &EncryptionGroup{
		P: crypto.NewBigInt(big.NewInt(23)),
		Q: crypto.NewBigInt(big.NewInt(11)),
		G: crypto.NewBigInt(big.NewInt(4)),
	}
	ct := &Ciphertext{Gamma: crypto.NewBigInt(big.NewInt(2)), Phis: crypto.BigIntSlice{big.NewInt(3)}}
	return &Dataset{
		Setup: &SetupArtifacts{
			EncryptionParameters: &EncryptionParametersPayload{EncryptionGroup: group, SmallPrimes: []int{2, 3}},
			ControlComponentPublicKeys: map[int]*ControlComponentPublicKeysPayload{
				1: {ElectionEventID: "ee", EncryptionGroup: group},
			},
			Configuration: &Configuration{
				Header:      ConfigurationHeader{ElectionEventID: "ee", VoterTotal: 1},
				BallotBoxes: []*ConfigBallotBox{{BallotBoxIdentification: "bb1", VerificationCardSetIdentification: "vcs1"}},
			},
			VerificationCardSets: map[string]*VerificationCardSetArtifacts{
				"vcs1": {
					TallyData:        &SetupComponentTallyDataPayload{VerificationCardSetID: "vcs1"},
					VerificationData: map[int]*SetupComponentVerificationDataPayload{0: {ChunkID: 0}},
					CodeShares:       map[int][]*ControlComponentCodeSharesPayload{0: {{ChunkID: 0, NodeID: 1}}},
				},
			},
		},
		Tally: &TallyArtifacts{
			BallotBoxes: map[string]*BallotBoxArtifacts{
				"bb1": {
					ControlComponentBallotBoxes: map[int]*ControlComponentBallotBoxPayload{
						2: {BallotBoxID: "bb1", NodeID: 2, ConfirmedEncryptedVotes: []*EncryptedVerifiableVote{{EncryptedVote: ct}}},
					},
					ControlComponentShuffles: map[int]*ControlComponentShufflePayload{},
					TallyComponentVotes:      &TallyComponentVotesPayload{BallotBoxID: "bb1", Votes: [][]int{{3}}},
				},
			},
			DecryptResults: &DecryptResults{ContestIdentification: "c", CastBallots: 1},
		},
	}
}

func TestWriteThenLoad(t *testing.T) {
	dir := t.TempDir()
	ds := smallDataset()
	ds.Setup.EncryptionParameters.Sign([]byte("sig"))
	if err := ds.Write(dir); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := ds.Fingerprint()
	got, _ := loaded.Fingerprint()
	if want != got {
		t.Errorf("fingerprint changed across write/load: %s != %s", want, got)
	}
	if b, err := loaded.Setup.EncryptionParameters.SignatureContents(); err != nil || string(b) != "sig" {
		t.Errorf("signature lost: %q %v", b, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tally", "ballot_boxes", "bb1", "controlComponentBallotBoxPayload_2.json")); err != nil {
		t.Errorf("expected node file: %v", err)
	}
}

func TestLoadIsLenientAboutAbsence(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "setup"), 0o755); err != nil {
		t.Fatal(err)
	}
	ctx, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !ctx.Has(FieldSetup) || ctx.Has(FieldTally) || ctx.Has(FieldEncryptionParameters) {
		t.Errorf("unexpected presence: %v", ctx.Missing(FieldSetup, FieldTally, FieldEncryptionParameters))
	}
}

func TestLoadIsStrictAboutMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "setup", "encryptionParametersPayload.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"encryptionGroup":{"p":"!!"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected a decoding error")
	}
	if _, err := Load(filepath.Join(dir, "nothing")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestCloneIsDeep(t *testing.T) {
	ds := smallDataset()
	c, err := ds.Clone()
	if err != nil {
		t.Fatal(err)
	}
	c.Tally.DecryptResults.CastBallots = 100
	if ds.Tally.DecryptResults.CastBallots != 1 {
		t.Error("clone shares state with the original")
	}
}
