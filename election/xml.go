package election

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"

	"github.com/thechriswalker/go-verifier/signing"
)

// Configuration is the anonymised canton configuration of the election event
type Configuration struct {
	XMLName     xml.Name            `xml:"configuration" json:"-"`
	Header      ConfigurationHeader `xml:"header" json:"header"`
	Contest     Contest             `xml:"contest" json:"contest"`
	BallotBoxes []*ConfigBallotBox  `xml:"ballotBox" json:"ballotBoxes"`
	Register    []*Voter            `xml:"register>voter" json:"register"`
	Signature   string              `xml:"signature,omitempty" json:"signature,omitempty"`
}

type ConfigurationHeader struct {
	ElectionEventID string `xml:"electionEventIdentification" json:"electionEventId"`
	VoterTotal      int    `xml:"voterTotal" json:"voterTotal"`
}

type Contest struct {
	ContestIdentification string            `xml:"contestIdentification" json:"contestIdentification"`
	Elections             []*ConfigElection `xml:"election" json:"elections"`
	Votes                 []*ConfigVote     `xml:"vote" json:"votes"`
}

type ConfigElection struct {
	ElectionIdentification string       `xml:"electionIdentification,attr" json:"electionIdentification"`
	NumberOfMandates       int          `xml:"numberOfMandates,attr" json:"numberOfMandates"`
	Candidates             []*Candidate `xml:"candidate" json:"candidates"`
}

type Candidate struct {
	CandidateIdentification string `xml:"candidateIdentification,attr" json:"candidateIdentification"`
}

type ConfigVote struct {
	VoteIdentification string    `xml:"voteIdentification,attr" json:"voteIdentification"`
	Answers            []*Answer `xml:"answer" json:"answers"`
}

type Answer struct {
	AnswerIdentification string `xml:"answerIdentification,attr" json:"answerIdentification"`
}

type ConfigBallotBox struct {
	BallotBoxIdentification           string `xml:"ballotBoxIdentification,attr" json:"ballotBoxIdentification"`
	VerificationCardSetIdentification string `xml:"verificationCardSetIdentification,attr" json:"verificationCardSetIdentification"`
	Test                              bool   `xml:"test,attr" json:"test"`
}

type Voter struct {
	VoterIdentification     string `xml:"voterIdentification,attr" json:"voterIdentification"`
	BallotBoxIdentification string `xml:"ballotBoxIdentification,attr" json:"ballotBoxIdentification"`
}

func (c *Configuration) SignatureContents() ([]byte, error) {
	return decodeXMLSignature(c.Signature)
}

// Sign sets the base64 signature
func (c *Configuration) Sign(b []byte) {
	c.Signature = EncodeXMLSignature(b)
}

func (c Configuration) SignedMessage() ([]byte, error) {
	c.Signature = ""
	return canonicalXML(kindConfiguration, c)
}

// BallotBox finds a declared ballot box
func (c *Configuration) BallotBox(id string) (*ConfigBallotBox, bool) {
	for _, bb := range c.BallotBoxes {
		if bb.BallotBoxIdentification == id {
			return bb, true
		}
	}
	return nil, false
}

// Candidates of the election with that identification
func (c *Configuration) Candidates(electionID string) (map[string]bool, bool) {
	for _, e := range c.Contest.Elections {
		if e.ElectionIdentification == electionID {
			set := make(map[string]bool, len(e.Candidates))
			for _, cand := range e.Candidates {
				set[cand.CandidateIdentification] = true
			}
			return set, true
		}
	}
	return nil, false
}

// Answers of the vote with that identification
func (c *Configuration) Answers(voteID string) (map[string]bool, bool) {
	for _, v := range c.Contest.Votes {
		if v.VoteIdentification == voteID {
			set := make(map[string]bool, len(v.Answers))
			for _, a := range v.Answers {
				set[a.AnswerIdentification] = true
			}
			return set, true
		}
	}
	return nil, false
}

// HasOption reports whether contest|choice names a declared candidate or answer
func (c *Configuration) HasOption(contest, choice string) bool {
	if set, ok := c.Candidates(contest); ok {
		return set[choice]
	}
	if set, ok := c.Answers(contest); ok {
		return set[choice]
	}
	return false
}

// IsVote tells answers of votes apart from candidates of elections
func (c *Configuration) IsVote(contest string) bool {
	_, ok := c.Answers(contest)
	return ok
}

// DecryptResults is the final tally document
type DecryptResults struct {
	XMLName               xml.Name           `xml:"results" json:"-"`
	ContestIdentification string             `xml:"contestIdentification" json:"contestIdentification"`
	CastBallots           int                `xml:"castBallots" json:"castBallots"`
	BallotsBoxes          []*ResultBallotBox `xml:"ballotsBox" json:"ballotsBoxes"`
	Signature             string             `xml:"signature,omitempty" json:"signature,omitempty"`
}

type ResultBallotBox struct {
	BallotBoxIdentification string            `xml:"ballotBoxIdentification,attr" json:"ballotBoxIdentification"`
	CountingCircles         []*CountingCircle `xml:"countingCircle" json:"countingCircles"`
}

type CountingCircle struct {
	CountingCircleIdentification string               `xml:"countingCircleIdentification,attr" json:"countingCircleIdentification"`
	DomainsOfInfluence           []*DomainOfInfluence `xml:"domainOfInfluence" json:"domainsOfInfluence"`
}

type DomainOfInfluence struct {
	DomainOfInfluenceIdentification string            `xml:"domainOfInfluenceIdentification,attr" json:"domainOfInfluenceIdentification"`
	Votes                           []*ResultVote     `xml:"vote" json:"votes"`
	Elections                       []*ResultElection `xml:"election" json:"elections"`
}

// ResultVote is one counted ballot of a vote
type ResultVote struct {
	VoteIdentification string   `xml:"voteIdentification,attr" json:"voteIdentification"`
	ChosenAnswers      []string `xml:"chosenAnswer" json:"chosenAnswers"`
}

// ResultElection is one counted ballot of an election
type ResultElection struct {
	ElectionIdentification string   `xml:"electionIdentification,attr" json:"electionIdentification"`
	ChosenCandidates       []string `xml:"chosenCandidate" json:"chosenCandidates"`
}

// CountedBallots is the number of vote and election nodes
func (d *DomainOfInfluence) CountedBallots() int {
	return len(d.Votes) + len(d.Elections)
}

// CountedBallots in the ballot box
func (bb *ResultBallotBox) CountedBallots() int {
	n := 0
	for _, cc := range bb.CountingCircles {
		for _, doi := range cc.DomainsOfInfluence {
			n += doi.CountedBallots()
		}
	}
	return n
}

// CountedBallots over every ballot box
func (r *DecryptResults) CountedBallots() int {
	n := 0
	for _, bb := range r.BallotsBoxes {
		n += bb.CountedBallots()
	}
	return n
}

func (r *DecryptResults) SignatureContents() ([]byte, error) {
	return decodeXMLSignature(r.Signature)
}

func (r *DecryptResults) Sign(b []byte) {
	r.Signature = EncodeXMLSignature(b)
}

func (r DecryptResults) SignedMessage() ([]byte, error) {
	r.Signature = ""
	return canonicalXML(kindDecryptResults, r)
}

func decodeXMLSignature(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrUnsigned
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("signature is not base64: %w", err)
	}
	return b, nil
}

// EncodeXMLSignature is the inverse of the signature decoding of XML documents
func EncodeXMLSignature(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func canonicalXML(kind string, v interface{}) ([]byte, error) {
	b, err := xml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical encoding of %s: %w", kind, err)
	}
	return signing.Message(kind, b), nil
}
