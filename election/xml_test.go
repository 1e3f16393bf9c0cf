package election

import (
	"encoding/xml"
	"errors"
	"testing"
)

const resultsXML = `<?xml version="1.0" encoding="UTF-8"?>
<results>
  <contestIdentification>contest-1</contestIdentification>
  <castBallots>3</castBallots>
  <ballotsBox ballotBoxIdentification="bb1">
    <countingCircle countingCircleIdentification="cc1">
      <domainOfInfluence domainOfInfluenceIdentification="d1">
        <vote voteIdentification="v1"><chosenAnswer>yes</chosenAnswer></vote>
        <election electionIdentification="e1"><chosenCandidate>c1</chosenCandidate><chosenCandidate>c2</chosenCandidate></election>
      </domainOfInfluence>
    </countingCircle>
  </ballotsBox>
  <ballotsBox ballotBoxIdentification="bb2">
    <countingCircle countingCircleIdentification="cc1">
      <domainOfInfluence domainOfInfluenceIdentification="d1">
        <election electionIdentification="e1"><chosenCandidate>c3</chosenCandidate></election>
      </domainOfInfluence>
    </countingCircle>
  </ballotsBox>
  <signature>c2lnbmF0dXJl</signature>
</results>`

func TestDecryptResults(t *testing.T) {
	var r DecryptResults
	if err := xml.Unmarshal([]byte(resultsXML), &r); err != nil {
		t.Fatal(err)
	}
	if r.CastBallots != 3 || r.CountedBallots() != 3 {
		t.Errorf("castBallots %d, counted %d", r.CastBallots, r.CountedBallots())
	}
	if got := r.BallotsBoxes[0].CountingCircles[0].DomainsOfInfluence[0].Elections[0].ChosenCandidates; len(got) != 2 {
		t.Errorf("chosen candidates %v", got)
	}
	sig, err := r.SignatureContents()
	if err != nil || string(sig) != "signature" {
		t.Errorf("signature %q %v", sig, err)
	}
	m1, err := r.SignedMessage()
	if err != nil {
		t.Fatal(err)
	}
	r.Signature = "other"
	m2, _ := r.SignedMessage()
	if string(m1) != string(m2) {
		t.Error("signed message depends on the signature")
	}
	r.CastBallots = 4
	m3, _ := r.SignedMessage()
	if string(m1) == string(m3) {
		t.Error("signed message does not cover castBallots")
	}
}

func TestUnsignedConfiguration(t *testing.T) {
	var c Configuration
	if _, err := c.SignatureContents(); !errors.Is(err, ErrUnsigned) {
		t.Errorf("expected ErrUnsigned, got %v", err)
	}
	c.Contest.Elections = []*ConfigElection{{ElectionIdentification: "e1", Candidates: []*Candidate{{CandidateIdentification: "c1"}}}}
	c.Contest.Votes = []*ConfigVote{{VoteIdentification: "v1", Answers: []*Answer{{AnswerIdentification: "yes"}}}}
	if !c.HasOption("e1", "c1") || c.HasOption("e1", "c2") || !c.HasOption("v1", "yes") || c.HasOption("x", "yes") {
		t.Error("HasOption mismatch")
	}
	if !c.IsVote("v1") || c.IsVote("e1") {
		t.Error("IsVote mismatch")
	}
}
