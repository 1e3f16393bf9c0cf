package verifier

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thechriswalker/go-verifier/crypto/elgamal"
)

func TestFindingsMismatch(t *testing.T) {
	var f Findings
	f.Mismatch("castBallots", 100, 99)
	f.Mismatch("equal", "a", "a")
	f.Mismatch("nodes", []int{1, 2, 3, 4}, []int{1, 2, 4})
	want := []string{"castBallots: 100 != 99", "nodes: [1 2 3 4] != [1 2 4]"}
	if diff := cmp.Diff(want, f.List()); diff != "" {
		t.Errorf("findings (-want +got):\n%s", diff)
	}
}

func TestFindingsProof(t *testing.T) {
	var f Findings
	if err := f.Proof("vote 3", nil); err != nil {
		t.Fatal(err)
	}
	err := f.Proof("vote 3", fmt.Errorf("wrapped: %w", &elgamal.ProofError{Proof: "DecryptionProof", Check: "recomputed challenge e' != e"}))
	if err != nil {
		t.Fatalf("proof failure must be a finding, got error %v", err)
	}
	if diff := cmp.Diff([]string{"vote 3: wrapped: DecryptionProof: recomputed challenge e' != e"}, f.List()); diff != "" {
		t.Errorf("findings (-want +got):\n%s", diff)
	}
	err = f.Proof("vote 4", elgamal.ErrMalformed)
	if !errors.Is(err, elgamal.ErrMalformed) {
		t.Errorf("malformed input must be an error, got %v", err)
	}
	if f.Len() != 1 {
		t.Errorf("malformed input must not add a finding, have %d", f.Len())
	}
}

func TestOverallStatus(t *testing.T) {
	r := func(s Status) Result { return Result{Outcome: Outcome{Status: s}} }
	tests := []struct {
		name    string
		results []Result
		want    Status
	}{
		{"empty", nil, StatusSuccessful},
		{"all skipped", []Result{r(StatusSkipped), r(StatusSkipped)}, StatusSuccessful},
		{"successful", []Result{r(StatusSuccessful), r(StatusSkipped)}, StatusSuccessful},
		{"failed", []Result{r(StatusSuccessful), r(StatusFailed), r(StatusSkipped)}, StatusFailed},
		{"errored beats failed", []Result{r(StatusFailed), r(StatusErrored), r(StatusSuccessful)}, StatusErrored},
	}
	for _, tt := range tests {
		if got := OverallStatus(tt.results); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestStatusText(t *testing.T) {
	for _, s := range []Status{StatusSkipped, StatusSuccessful, StatusFailed, StatusErrored} {
		b, _ := s.MarshalText()
		var got Status
		if err := got.UnmarshalText(b); err != nil || got != s {
			t.Errorf("%s: round trip gave %s, %v", s, got, err)
		}
	}
}
