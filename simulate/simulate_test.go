package simulate

import (
	"errors"
	"testing"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-verifier/election"
)

func TestOptionsValidate(t *testing.T) {
	tests := map[string]func(o *Options){
		"tiny group":         func(o *Options) { o.Bits = 16 },
		"no ballot boxes":    func(o *Options) { o.BallotBoxes = 0 },
		"no voters":          func(o *Options) { o.Voters = 0 },
		"no selections":      func(o *Options) { o.Selections = 0 },
		"too many selection": func(o *Options) { o.Selections = o.Candidates + 1 },
		"empty chunks":       func(o *Options) { o.ChunkSize = 0 },
	}
	if err := DefaultOptions().validate(); err != nil {
		t.Fatalf("default options: %v", err)
	}
	for name, mutate := range tests {
		o := DefaultOptions()
		mutate(&o)
		if _, err := Generate(o); !errors.Is(err, ErrOptions) {
			t.Errorf("%s: got %v, want ErrOptions", name, err)
		}
	}
}

func TestSmallPrimes(t *testing.T) {
	sys := &elgamal.System{P: big.NewInt(23), Q: big.NewInt(11), G: big.NewInt(4)}
	got, err := smallPrimes(sys, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 2 || got[1] != 3 || got[2] != 13 {
		t.Errorf("got %v, want [2 3 13]", got)
	}
	if _, err := smallPrimes(sys, 5); err == nil {
		t.Error("group of order 11 cannot hold 5 small primes")
	}
}

func TestGenerate(t *testing.T) {
	if testing.Short() {
		t.Skip("generation in short mode")
	}
	o := DefaultOptions()
	o.Bits = 128
	o.BallotBoxes = 3
	o.Voters = 5
	o.ChunkSize = 2
	e, err := Generate(o)
	if err != nil {
		t.Fatal(err)
	}
	ds := e.Dataset
	if n := len(ds.Setup.VerificationCardSets); n != o.BallotBoxes {
		t.Errorf("%d verification card sets, want %d", n, o.BallotBoxes)
	}
	for id, vcs := range ds.Setup.VerificationCardSets {
		// 5 cards in chunks of 2
		if n := len(vcs.VerificationData); n != 3 {
			t.Errorf("%s: %d chunks, want 3", id, n)
		}
		for chunk, shares := range vcs.CodeShares {
			if len(shares) != 4 {
				t.Errorf("%s chunk %d: %d code share payloads, want 4", id, chunk, len(shares))
			}
		}
	}
	if n := len(ds.Tally.BallotBoxes); n != o.BallotBoxes {
		t.Errorf("%d ballot boxes, want %d", n, o.BallotBoxes)
	}
	r := ds.Tally.DecryptResults
	if r.CastBallots != r.CountedBallots() || r.CastBallots == 0 {
		t.Errorf("cast %d, counted %d", r.CastBallots, r.CountedBallots())
	}
	if r.Signature == "" || ds.Setup.Configuration.Signature == "" {
		t.Error("xml artifacts are unsigned")
	}
	ctx, err := e.Context(nil)
	if err != nil {
		t.Fatal(err)
	}
	if missing := ctx.Missing(election.FieldSetup, election.FieldTally, election.FieldKeystore, election.FieldDecryptResults); len(missing) > 0 {
		t.Errorf("context is missing %v", missing)
	}
	if ctx.Policy().MinGroupBits != 128 {
		t.Errorf("policy allows %d bit groups, want 128", ctx.Policy().MinGroupBits)
	}
}
