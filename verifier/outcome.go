package verifier

import (
	"fmt"
	"strings"

	"github.com/thechriswalker/go-verifier/crypto/elgamal"
)

// Status of one verification, or of a whole report
type Status int

// declared in increasing severity, Skipped is never ranked
const (
	StatusSkipped Status = iota
	StatusSuccessful
	StatusFailed
	StatusErrored
)

var statusNames = map[Status]string{
	StatusSkipped:    "Skipped",
	StatusSuccessful: "Successful",
	StatusFailed:     "Failed",
	StatusErrored:    "Errored",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// Outcome of a single verification. Findings explain a Failed outcome,
// Cause an Errored one and Reason a Skipped one.
type Outcome struct {
	Status   Status   `json:"status"`
	Findings []string `json:"findings,omitempty"`
	Cause    string   `json:"cause,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

func Successful() Outcome {
	return Outcome{Status: StatusSuccessful}
}

func Failed(findings ...string) Outcome {
	return Outcome{Status: StatusFailed, Findings: findings}
}

func Errored(cause error) Outcome {
	return Outcome{Status: StatusErrored, Cause: cause.Error()}
}

func Skipped(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

// ReasonNotImplemented is the skip reason of entries without an algorithm
const ReasonNotImplemented = "not implemented"

// Message is a one line summary of the outcome
func (o Outcome) Message() string {
	switch o.Status {
	case StatusFailed:
		return strings.Join(o.Findings, "; ")
	case StatusErrored:
		return o.Cause
	case StatusSkipped:
		return o.Reason
	}
	return ""
}

// Findings collects the protocol violations an algorithm detects
type Findings struct {
	items []string
}

// Add records a finding
func (f *Findings) Add(format string, args ...interface{}) {
	f.items = append(f.items, fmt.Sprintf(format, args...))
}

// Mismatch records "<what>: <want> != <got>" unless they are equal
func (f *Findings) Mismatch(what string, want, got interface{}) {
	if fmt.Sprint(want) != fmt.Sprint(got) {
		f.Add("%s: %v != %v", what, want, got)
	}
}

// Proof sorts the result of a proof verification: a failed equation is a
// finding, anything else means the proof could not be evaluated.
func (f *Findings) Proof(where string, err error) error {
	if err == nil {
		return nil
	}
	if elgamal.IsProofError(err) {
		f.Add("%s: %v", where, err)
		return nil
	}
	return fmt.Errorf("%s: %w", where, err)
}

func (f *Findings) Len() int { return len(f.items) }

// List returns a copy of the findings in the order they were added
func (f *Findings) List() []string {
	return append([]string(nil), f.items...)
}
