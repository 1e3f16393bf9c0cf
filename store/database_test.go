package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/thechriswalker/go-verifier/verifier"
)

func testReport(status verifier.Status) *verifier.Report {
	rep := &verifier.Report{
		Fingerprint: "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262",
		Results: []verifier.Result{
			{ID: verifier.NewID(1, 1), Name: "VerifySetupCompleteness", Category: verifier.CategoryCompleteness, Outcome: verifier.Successful()},
			{ID: verifier.NewID(5, 4), Name: "VerifyKeyGenerationSchnorrProofs", Category: verifier.CategoryEvidence, Outcome: verifier.Successful()},
			{ID: verifier.NewID(7, 6), Name: "VerifySignatureECH0222", Category: verifier.CategoryAuthenticity, Outcome: verifier.Skipped(verifier.ReasonNotImplemented)},
			{ID: verifier.NewID(8, 12), Name: "VerifyCastBallots", Category: verifier.CategoryConsistency, Outcome: verifier.Failed("castBallots does not match the counted ballots: 100 != 99")},
			{ID: verifier.NewID(10, 1), Name: "VerifyOnlineMixing", Category: verifier.CategoryEvidence, Outcome: verifier.Outcome{
				Status:   verifier.StatusErrored,
				Cause:    "node 2: malformed proof input",
				Findings: []string{"node 1: shuffle size 3 != 4"},
			}},
		},
	}
	if status == verifier.StatusSuccessful {
		rep.Results = rep.Results[:3]
	}
	rep.Status = verifier.OverallStatus(rep.Results)
	return rep
}

func openTest(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "reports.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReportRoundTrip(t *testing.T) {
	s := openTest(t)
	want := testReport(verifier.StatusErrored)
	id, err := s.Save("/data/election", time.Now(), want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Report(id)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report (-want +got):\n%s", diff)
	}
	if _, err := s.Report(id + 1); !errors.Is(err, ErrRunMissing) {
		t.Errorf("unknown run: got %v, want ErrRunMissing", err)
	}
}

func TestRuns(t *testing.T) {
	s := openTest(t)
	start := time.UnixMilli(1700000000000)
	for i, st := range []verifier.Status{verifier.StatusSuccessful, verifier.StatusErrored, verifier.StatusSuccessful} {
		if _, err := s.Save("/data/run", start.Add(time.Duration(i)*time.Minute), testReport(st)); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := s.Runs(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != 3 || runs[1].ID != 2 {
		t.Errorf("runs %d, %d: want most recent first", runs[0].ID, runs[1].ID)
	}
	if !runs[0].Started.Equal(start.Add(2 * time.Minute)) {
		t.Errorf("started %v", runs[0].Started)
	}
	want := map[verifier.Status]int{
		verifier.StatusSuccessful: 2,
		verifier.StatusSkipped:    1,
		verifier.StatusFailed:     1,
		verifier.StatusErrored:    1,
	}
	if diff := cmp.Diff(want, runs[1].Counts); diff != "" {
		t.Errorf("counts (-want +got):\n%s", diff)
	}
	if runs[1].Status != verifier.StatusErrored {
		t.Errorf("status %s", runs[1].Status)
	}
	all, err := s.Runs(0)
	if err != nil || len(all) != 3 {
		t.Errorf("all runs: %d, %v", len(all), err)
	}
}
