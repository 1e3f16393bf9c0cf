package verifier

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/election"
)

func contextOf(t *testing.T, ds *election.Dataset, opts ...election.ContextOption) *election.Context {
	t.Helper()
	ctx, err := election.NewContext(ds, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

// results builds decrypt results with the given number of counted ballots
// per ballot box, every ballot choosing candidate-1 of election-1
func results(cast int, perBox map[string]int) *election.DecryptResults {
	r := &election.DecryptResults{ContestIdentification: "contest-1", CastBallots: cast}
	for _, id := range []string{"bb-1", "bb-2", "bb-3"} {
		n, ok := perBox[id]
		if !ok {
			continue
		}
		doi := &election.DomainOfInfluence{DomainOfInfluenceIdentification: "doi-1"}
		for i := 0; i < n; i++ {
			doi.Elections = append(doi.Elections, &election.ResultElection{
				ElectionIdentification: "election-1",
				ChosenCandidates:       []string{"candidate-1"},
			})
		}
		r.BallotsBoxes = append(r.BallotsBoxes, &election.ResultBallotBox{
			BallotBoxIdentification: id,
			CountingCircles: []*election.CountingCircle{{
				CountingCircleIdentification: "cc-1",
				DomainsOfInfluence:           []*election.DomainOfInfluence{doi},
			}},
		})
	}
	return r
}

func configuration(boxes ...string) *election.Configuration {
	cfg := &election.Configuration{
		Contest: election.Contest{
			ContestIdentification: "contest-1",
			Elections: []*election.ConfigElection{{
				ElectionIdentification: "election-1",
				NumberOfMandates:       1,
				Candidates: []*election.Candidate{
					{CandidateIdentification: "candidate-1"},
					{CandidateIdentification: "candidate-2"},
				},
			}},
			Votes: []*election.ConfigVote{{
				VoteIdentification: "vote-1",
				Answers:            []*election.Answer{{AnswerIdentification: "yes"}, {AnswerIdentification: "no"}},
			}},
		},
	}
	for _, id := range boxes {
		cfg.BallotBoxes = append(cfg.BallotBoxes, &election.ConfigBallotBox{BallotBoxIdentification: id, VerificationCardSetIdentification: "vcs-" + id})
	}
	return cfg
}

func tallyContext(t *testing.T, cfg *election.Configuration, r *election.DecryptResults) *election.Context {
	t.Helper()
	ds := &election.Dataset{Tally: &election.TallyArtifacts{DecryptResults: r}}
	if cfg != nil {
		ds.Setup = &election.SetupArtifacts{Configuration: cfg}
	}
	return contextOf(t, ds)
}

func evaluate(t *testing.T, alg Algorithm, ctx *election.Context) []string {
	t.Helper()
	var f Findings
	if err := alg(ctx, &f); err != nil {
		t.Fatalf("could not evaluate: %v", err)
	}
	return f.List()
}

func TestCastBallots(t *testing.T) {
	tests := []struct {
		name string
		r    *election.DecryptResults
		want []string
	}{
		{
			name: "matching",
			r:    results(99, map[string]int{"bb-1": 60, "bb-2": 39}),
		},
		{
			name: "one more cast than counted",
			r:    results(100, map[string]int{"bb-1": 60, "bb-2": 39}),
			want: []string{"castBallots does not match the counted ballots: 100 != 99"},
		},
		{
			name: "nothing counted",
			r:    results(0, nil),
		},
		{
			name: "negative",
			r:    results(-1, nil),
			want: []string{"castBallots is negative: -1"},
		},
	}
	for _, tt := range tests {
		got := evaluate(t, verifyCastBallots, tallyContext(t, nil, tt.r))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: findings (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestCastBallotsThroughRunner(t *testing.T) {
	c := Default().Filter(func(e *Entry) bool { return e.ID == NewID(8, 12) })
	ctx := tallyContext(t, nil, results(100, map[string]int{"bb-1": 99}))
	rep, err := NewRunner(c).Run(context.Background(), ctx)
	if err != nil {
		t.Fatal(err)
	}
	o, ok := rep.Outcome(NewID(8, 12))
	if !ok || o.Status != StatusFailed {
		t.Fatalf("08.12: got %+v, want Failed", o)
	}
	if !strings.Contains(o.Message(), "100 != 99") {
		t.Errorf("finding %q does not name the counts", o.Message())
	}
	if rep.Status != StatusFailed {
		t.Errorf("overall %s, want Failed", rep.Status)
	}
}

func TestBallotBoxIdentification(t *testing.T) {
	r := results(3, map[string]int{"bb-1": 1, "bb-2": 1, "bb-3": 1})
	got := evaluate(t, verifyBallotBoxIdentification, tallyContext(t, configuration("bb-1", "bb-2", "bb-3"), r))
	if len(got) != 0 {
		t.Errorf("unexpected findings %v", got)
	}
	got = evaluate(t, verifyBallotBoxIdentification, tallyContext(t, configuration("bb-1", "bb-3"), r))
	want := []string{"ballot box bb-2 referenced by the decrypt results is not in the configuration"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("findings (-want +got):\n%s", diff)
	}
}

func TestChosenIdentifiers(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doi *election.DomainOfInfluence)
		want   []string
	}{
		{
			name:   "declared candidates and answers",
			mutate: func(doi *election.DomainOfInfluence) {},
		},
		{
			name: "undeclared candidate",
			mutate: func(doi *election.DomainOfInfluence) {
				doi.Elections[0].ChosenCandidates = []string{"candidate-2", "candidate-9"}
			},
			want: []string{"ballot box bb-1 counting circle cc-1: candidate candidate-9 is not declared for election election-1"},
		},
		{
			name: "undeclared election",
			mutate: func(doi *election.DomainOfInfluence) {
				doi.Elections[0].ElectionIdentification = "election-2"
			},
			want: []string{"ballot box bb-1 counting circle cc-1: election election-2 is not declared"},
		},
		{
			name: "undeclared answer",
			mutate: func(doi *election.DomainOfInfluence) {
				doi.Votes[0].ChosenAnswers = []string{"maybe"}
			},
			want: []string{"ballot box bb-1 counting circle cc-1: answer maybe is not declared for vote vote-1"},
		},
	}
	for _, tt := range tests {
		r := results(2, map[string]int{"bb-1": 1})
		doi := r.BallotsBoxes[0].CountingCircles[0].DomainsOfInfluence[0]
		doi.Votes = []*election.ResultVote{{VoteIdentification: "vote-1", ChosenAnswers: []string{"yes"}}}
		tt.mutate(doi)
		got := evaluate(t, verifyChosenIdentifiers, tallyContext(t, configuration("bb-1"), r))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: findings (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestFactorisationRejectsUnusableOptions(t *testing.T) {
	table := func(options ...int) *election.Dataset {
		pt := &election.PrimesMappingTable{}
		for _, o := range options {
			pt.PTable = append(pt.PTable, &election.PrimesMappingTableEntry{EncodedVotingOption: o})
		}
		return &election.Dataset{Setup: &election.SetupArtifacts{
			ElectionEventContext: &election.ElectionEventContextPayload{
				ElectionEventContext: &election.ElectionEventContext{
					VerificationCardSetContexts: []*election.VerificationCardSetContext{{
						BallotBoxID:        "bb-1",
						NumberOfSelections: 2,
						PrimesMappingTable: pt,
					}},
				},
			},
		}}
	}
	votes := &election.TallyComponentVotesPayload{Votes: [][]int{{2, 3}}}
	plaintexts := [][]*big.Int{{big.NewInt(6)}}

	tt := []struct {
		name    string
		options []int
		want    []string
	}{
		{name: "valid", options: []int{2, 3, 5}},
		{name: "one", options: []int{1, 2, 3}, want: []string{"ballot box bb-1: encoded voting option 1 is not a prime >= 2"}},
		{name: "zero", options: []int{2, 0, 3}, want: []string{"ballot box bb-1: encoded voting option 0 is not a prime >= 2"}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var f Findings
			verifyFactorisation(contextOf(t, table(tc.options...)), &f, "bb-1", plaintexts, votes)
			if diff := cmp.Diff(tc.want, f.List()); diff != "" {
				t.Errorf("findings (-want +got):\n%s", diff)
			}
		})
	}
}
