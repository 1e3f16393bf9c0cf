package verifier

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase of the election a verification belongs to
type Phase uint8

const (
	PhaseSetup Phase = iota
	PhaseTally
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseTally:
		return "tally"
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

// ParsePhase accepts "setup" or "tally"
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(s) {
	case "setup":
		return PhaseSetup, nil
	case "tally":
		return PhaseTally, nil
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// firstTallyMajor is where tally numbering starts
const firstTallyMajor = 6

// ID identifies a verification. IDs order by (phase, major, minor).
type ID struct {
	Phase Phase
	Major uint16
	Minor uint16
}

// NewID derives the phase from the major number
func NewID(major, minor uint16) ID {
	p := PhaseSetup
	if major >= firstTallyMajor {
		p = PhaseTally
	}
	return ID{Phase: p, Major: major, Minor: minor}
}

// ParseID parses "MM.mm"
func ParseID(s string) (ID, error) {
	maj, min, ok := strings.Cut(s, ".")
	if !ok {
		return ID{}, fmt.Errorf("verification id %q: expected <major>.<minor>", s)
	}
	a, err := strconv.ParseUint(maj, 10, 16)
	if err != nil {
		return ID{}, fmt.Errorf("verification id %q: %w", s, err)
	}
	b, err := strconv.ParseUint(min, 10, 16)
	if err != nil {
		return ID{}, fmt.Errorf("verification id %q: %w", s, err)
	}
	return NewID(uint16(a), uint16(b)), nil
}

func (id ID) String() string {
	return fmt.Sprintf("%02d.%02d", id.Major, id.Minor)
}

// Compare returns -1, 0 or 1
func (id ID) Compare(o ID) int {
	switch {
	case id.Phase != o.Phase:
		return cmpInt(int(id.Phase), int(o.Phase))
	case id.Major != o.Major:
		return cmpInt(int(id.Major), int(o.Major))
	}
	return cmpInt(int(id.Minor), int(o.Minor))
}

func (id ID) Less(o ID) bool { return id.Compare(o) < 0 }

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(b []byte) error {
	p, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = p
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
