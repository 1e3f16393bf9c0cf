package election

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto"
)

func TestEmptyContextAccessorsAreTotal(t *testing.T) {
	ctx, err := NewContext(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ctx.Setup(); ok {
		t.Error("empty context reports setup")
	}
	if _, ok := ctx.Group(); ok {
		t.Error("empty context reports a group")
	}
	if _, ok := ctx.BallotBox("bb"); ok {
		t.Error("empty context reports a ballot box")
	}
	if ids := ctx.VerificationCardSetIDs(); len(ids) != 0 {
		t.Errorf("unexpected vcs ids %v", ids)
	}
	all := make([]Field, numFields)
	for i := range all {
		all[i] = Field(i)
	}
	if diff := cmp.Diff(all, ctx.Missing(all...)); diff != "" {
		t.Errorf("missing fields (-want +got):\n%s", diff)
	}
}

func TestPresence(t *testing.T) {
	ds := &Dataset{
		Setup: &SetupArtifacts{
			EncryptionParameters: &EncryptionParametersPayload{EncryptionGroup: &EncryptionGroup{
				P: crypto.NewBigInt(big.NewInt(23)),
				Q: crypto.NewBigInt(big.NewInt(11)),
				G: crypto.NewBigInt(big.NewInt(4)),
			}},
			// present but empty is absent
			ElectionEventContext: &ElectionEventContextPayload{},
			VerificationCardSets: map[string]*VerificationCardSetArtifacts{"b": {}, "a": {}},
		},
		Tally: &TallyArtifacts{},
	}
	ctx, err := NewContext(ds)
	if err != nil {
		t.Fatal(err)
	}
	want := []Field{FieldElectionEventContext, FieldBallotBoxes, FieldDecryptResults, FieldKeystore}
	got := ctx.Missing(FieldSetup, FieldEncryptionParameters, FieldElectionEventContext, FieldVerificationCardSets, FieldTally, FieldBallotBoxes, FieldDecryptResults, FieldKeystore)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("missing fields (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, ctx.VerificationCardSetIDs()); diff != "" {
		t.Errorf("vcs ids (-want +got):\n%s", diff)
	}
	sys, ok := ctx.Group()
	if !ok || sys.P.Int64() != 23 {
		t.Errorf("group not decoded: %v", sys)
	}
}

func TestParseField(t *testing.T) {
	for i := Field(0); i < numFields; i++ {
		f, err := ParseField(i.String())
		if err != nil {
			t.Fatal(err)
		}
		if f != i {
			t.Errorf("ParseField(%q) = %v", i.String(), f)
		}
	}
	if _, err := ParseField("nope"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestVotingOptions(t *testing.T) {
	c, o, ok := SplitVotingOption(JoinVotingOption("election-1", "candidate-2"))
	if !ok || c != "election-1" || o != "candidate-2" {
		t.Errorf("split gave %q %q %v", c, o, ok)
	}
	for _, bad := range []string{"", "|x", "x|", "nobar"} {
		if _, _, ok := SplitVotingOption(bad); ok {
			t.Errorf("SplitVotingOption(%q) should fail", bad)
		}
	}
}
