package verifier

import (
	"context"
	"sort"
	"sync"
	"testing"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto"
	"github.com/thechriswalker/go-verifier/election"
	"github.com/thechriswalker/go-verifier/simulate"
)

var (
	simOnce sync.Once
	sim     *simulate.Election
	simErr  error
)

// simulated is one small election event shared by the tests below, which
// only ever tamper with clones of it
func simulated(t *testing.T) *simulate.Election {
	t.Helper()
	if testing.Short() {
		t.Skip("simulated election in short mode")
	}
	simOnce.Do(func() {
		opts := simulate.DefaultOptions()
		opts.Bits = 128
		opts.Voters = 4
		opts.ChunkSize = 3
		sim, simErr = simulate.Generate(opts)
	})
	if simErr != nil {
		t.Fatal(simErr)
	}
	return sim
}

func runAll(t *testing.T, ctx *election.Context) *Report {
	t.Helper()
	rep, err := NewRunner(Default()).Run(context.Background(), ctx)
	if err != nil {
		t.Fatal(err)
	}
	return rep
}

func expectSuccessful(t *testing.T, rep *Report) {
	t.Helper()
	for _, r := range rep.Results {
		switch {
		case r.ID == NewID(7, 6) || r.ID == NewID(7, 7):
			if r.Status != StatusSkipped || r.Reason != ReasonNotImplemented {
				t.Errorf("%s %s: %s %q, want skipped as not implemented", r.ID, r.Name, r.Status, r.Message())
			}
		case r.Status != StatusSuccessful:
			t.Errorf("%s %s: %s %q", r.ID, r.Name, r.Status, r.Message())
		}
	}
	if rep.Status != StatusSuccessful {
		t.Errorf("overall status %s", rep.Status)
	}
}

func TestSimulatedElectionVerifies(t *testing.T) {
	e := simulated(t)
	ctx, err := e.Context(nil)
	if err != nil {
		t.Fatal(err)
	}
	expectSuccessful(t, runAll(t, ctx))
}

func TestSimulatedElectionFromDisk(t *testing.T) {
	e := simulated(t)
	dir := t.TempDir()
	if err := e.Write(dir); err != nil {
		t.Fatal(err)
	}
	ctx, err := election.Open(dir, election.WithPolicy(e.Policy()))
	if err != nil {
		t.Fatal(err)
	}
	want, _ := e.Context(nil)
	if ctx.Fingerprint() != want.Fingerprint() {
		t.Errorf("dataset changed on the way through disk: %s != %s", ctx.Fingerprint(), want.Fingerprint())
	}
	expectSuccessful(t, runAll(t, ctx))
}

func TestSimulatedElectionWithoutKeystore(t *testing.T) {
	e := simulated(t)
	ctx, err := election.NewContext(e.Dataset, election.WithPolicy(e.Policy()))
	if err != nil {
		t.Fatal(err)
	}
	rep := runAll(t, ctx)
	for _, r := range rep.Results {
		if e, _ := Default().Lookup(r.ID); e.Family != FamilySignature {
			continue
		}
		if r.Status != StatusSkipped {
			t.Errorf("%s: %s without a keystore", r.ID, r.Status)
		}
	}
	if rep.Status != StatusSuccessful {
		t.Errorf("overall status %s", rep.Status)
	}
}

func bump(x *crypto.BigInt) *crypto.BigInt {
	return crypto.NewBigInt(new(big.Int).Add(x.Int(), big.NewInt(1)))
}

func firstKey[V any](m map[string]V) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}

// tamper cases change one proof value and re-sign, so exactly the
// verification checking that proof must fail
func TestTamperedProofs(t *testing.T) {
	tests := []struct {
		name     string
		id       ID
		tamper   func(ds *election.Dataset)
		unsigned bool
	}{
		{
			name: "electoral board schnorr proof",
			id:   NewID(5, 4),
			tamper: func(ds *election.Dataset) {
				p := ds.Setup.SetupComponentPublicKeys.SetupComponentPublicKeys.ElectoralBoardSchnorrProofs[0]
				p.Z = bump(p.Z)
			},
		},
		{
			name: "partial choice return code exponentiation proof",
			id:   NewID(5, 21),
			tamper: func(ds *election.Dataset) {
				vcs := ds.Setup.VerificationCardSets[firstKey(ds.Setup.VerificationCardSets)]
				chunk := vcs.CodeShares[election.SortedKeys(vcs.CodeShares)[0]]
				p := chunk[0].ControlComponentCodeShares[0].EncryptedPartialChoiceReturnCodeExponentiationProof
				p.E = bump(p.E)
			},
		},
		{
			name: "confirmation key exponentiation proof",
			id:   NewID(5, 22),
			tamper: func(ds *election.Dataset) {
				vcs := ds.Setup.VerificationCardSets[firstKey(ds.Setup.VerificationCardSets)]
				chunk := vcs.CodeShares[election.SortedKeys(vcs.CodeShares)[0]]
				p := chunk[len(chunk)-1].ControlComponentCodeShares[0].EncryptedConfirmationKeyExponentiationProof
				p.Z = bump(p.Z)
			},
		},
		{
			name: "confirmed vote exponentiation proof",
			id:   NewID(10, 1),
			tamper: func(ds *election.Dataset) {
				bb := ds.Tally.BallotBoxes[firstKey(ds.Tally.BallotBoxes)]
				lowest := bb.ControlComponentBallotBoxes[election.SortedKeys(bb.ControlComponentBallotBoxes)[0]]
				p := lowest.ConfirmedEncryptedVotes[0].ExponentiationProof
				p.Z = bump(p.Z)
			},
		},
		{
			name: "online shuffle argument",
			id:   NewID(10, 1),
			tamper: func(ds *election.Dataset) {
				bb := ds.Tally.BallotBoxes[firstKey(ds.Tally.BallotBoxes)]
				arg := bb.ControlComponentShuffles[2].VerifiableShuffle.ShuffleArgument.MultiExponentiationArgument
				arg.Tau = bump(arg.Tau)
			},
		},
		{
			name: "offline decryption proof",
			id:   NewID(10, 2),
			tamper: func(ds *election.Dataset) {
				bb := ds.Tally.BallotBoxes[firstKey(ds.Tally.BallotBoxes)]
				p := bb.TallyComponentShuffle.VerifiablePlaintextDecryption.DecryptionProofs[0]
				p.E = bump(p.E)
			},
		},
		{
			name: "decrypt results signature",
			id:   NewID(7, 5),
			tamper: func(ds *election.Dataset) {
				ds.Tally.DecryptResults.Signature = ""
			},
			unsigned: true,
		},
	}
	e := simulated(t)
	for _, tt := range tests {
		ds, err := e.Dataset.Clone()
		if err != nil {
			t.Fatal(err)
		}
		tt.tamper(ds)
		if !tt.unsigned {
			if err := e.Resign(ds); err != nil {
				t.Fatal(err)
			}
		}
		ctx, err := e.Context(ds)
		if err != nil {
			t.Fatal(err)
		}
		rep := runAll(t, ctx)
		for _, r := range rep.Results {
			want := StatusSuccessful
			switch {
			case r.ID == tt.id:
				want = StatusFailed
			case r.Reason == ReasonNotImplemented:
				want = StatusSkipped
			}
			if r.Status != want {
				t.Errorf("%s: %s %s is %s (%q), want %s", tt.name, r.ID, r.Name, r.Status, r.Message(), want)
			}
		}
		if rep.Status != StatusFailed {
			t.Errorf("%s: overall status %s, want Failed", tt.name, rep.Status)
		}
	}
}
