package election

import (
	"fmt"
	"maps"
	"slices"

	"github.com/thechriswalker/go-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-verifier/signing"
)

// Field names a part of the context a verification may depend on
type Field int

const (
	FieldSetup Field = iota
	FieldEncryptionParameters
	FieldElectionEventContext
	FieldSetupComponentPublicKeys
	FieldControlComponentPublicKeys
	FieldConfiguration
	FieldVerificationCardSets
	FieldTally
	FieldBallotBoxes
	FieldDecryptResults
	FieldKeystore
	numFields
)

var fieldNames = [numFields]string{
	"setup",
	"encryption_parameters",
	"election_event_context",
	"setup_component_public_keys",
	"control_component_public_keys",
	"configuration",
	"verification_card_sets",
	"tally",
	"ballot_boxes",
	"decrypt_results",
	"keystore",
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField is the inverse of Field.String
func ParseField(s string) (Field, error) {
	for i, n := range fieldNames {
		if n == s {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown context field %q", s)
}

// Policy holds the verifier-side limits some verifications enforce
type Policy struct {
	MaxVotingOptions int
	MinGroupBits     int
}

// DefaultPolicy matches the limits of the production protocol
var DefaultPolicy = Policy{MaxVotingOptions: 5000, MinGroupBits: 2048}

// Context is the read-only view of one election that verifications run
// against. It must not be modified after NewContext.
type Context struct {
	ds          *Dataset
	keystore    *signing.Keystore
	policy      Policy
	fingerprint string
}

type ContextOption func(*Context)

// WithKeystore attaches the direct-trust keystore
func WithKeystore(ks *signing.Keystore) ContextOption {
	return func(c *Context) { c.keystore = ks }
}

// WithPolicy overrides DefaultPolicy
func WithPolicy(p Policy) ContextOption {
	return func(c *Context) { c.policy = p }
}

// NewContext freezes the dataset. The caller must not keep modifying ds.
func NewContext(ds *Dataset, opts ...ContextOption) (*Context, error) {
	if ds == nil {
		ds = &Dataset{}
	}
	c := &Context{ds: ds, policy: DefaultPolicy}
	for _, o := range opts {
		o(c)
	}
	fp, err := ds.Fingerprint()
	if err != nil {
		return nil, err
	}
	c.fingerprint = fp
	return c, nil
}

func (c *Context) Fingerprint() string { return c.fingerprint }
func (c *Context) Policy() Policy      { return c.policy }

// Has reports presence of a field
func (c *Context) Has(f Field) bool {
	var ok bool
	switch f {
	case FieldSetup:
		_, ok = c.Setup()
	case FieldEncryptionParameters:
		_, ok = c.EncryptionParameters()
	case FieldElectionEventContext:
		_, ok = c.ElectionEventContext()
	case FieldSetupComponentPublicKeys:
		_, ok = c.SetupComponentPublicKeys()
	case FieldControlComponentPublicKeys:
		_, ok = c.ControlComponentPublicKeys()
	case FieldConfiguration:
		_, ok = c.Configuration()
	case FieldVerificationCardSets:
		ok = len(c.VerificationCardSetIDs()) > 0
	case FieldTally:
		_, ok = c.Tally()
	case FieldBallotBoxes:
		ok = len(c.BallotBoxIDs()) > 0
	case FieldDecryptResults:
		_, ok = c.DecryptResults()
	case FieldKeystore:
		_, ok = c.Keystore()
	}
	return ok
}

// Missing lists the fields that are not present, in argument order
func (c *Context) Missing(fields ...Field) []Field {
	var out []Field
	for _, f := range fields {
		if !c.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (c *Context) Setup() (*SetupArtifacts, bool) {
	return c.ds.Setup, c.ds.Setup != nil
}

func (c *Context) Tally() (*TallyArtifacts, bool) {
	return c.ds.Tally, c.ds.Tally != nil
}

func (c *Context) Keystore() (*signing.Keystore, bool) {
	return c.keystore, c.keystore != nil
}

func (c *Context) EncryptionParameters() (*EncryptionParametersPayload, bool) {
	s, ok := c.Setup()
	if !ok || s.EncryptionParameters == nil || s.EncryptionParameters.EncryptionGroup == nil {
		return nil, false
	}
	return s.EncryptionParameters, true
}

// Group is the encryption group of the encryption parameters. It is
// decoded but not validated.
func (c *Context) Group() (*elgamal.System, bool) {
	ep, ok := c.EncryptionParameters()
	if !ok {
		return nil, false
	}
	sys, err := ep.EncryptionGroup.System()
	if err != nil {
		return nil, false
	}
	return sys, true
}

func (c *Context) ElectionEventContext() (*ElectionEventContextPayload, bool) {
	s, ok := c.Setup()
	if !ok || s.ElectionEventContext == nil || s.ElectionEventContext.ElectionEventContext == nil {
		return nil, false
	}
	return s.ElectionEventContext, true
}

// ElectionEventID from the election event context
func (c *Context) ElectionEventID() (string, bool) {
	ee, ok := c.ElectionEventContext()
	if !ok {
		return "", false
	}
	return ee.ElectionEventContext.ElectionEventID, true
}

func (c *Context) SetupComponentPublicKeys() (*SetupComponentPublicKeysPayload, bool) {
	s, ok := c.Setup()
	if !ok || s.SetupComponentPublicKeys == nil || s.SetupComponentPublicKeys.SetupComponentPublicKeys == nil {
		return nil, false
	}
	return s.SetupComponentPublicKeys, true
}

func (c *Context) ControlComponentPublicKeys() (map[int]*ControlComponentPublicKeysPayload, bool) {
	s, ok := c.Setup()
	if !ok || len(s.ControlComponentPublicKeys) == 0 {
		return nil, false
	}
	return s.ControlComponentPublicKeys, true
}

// ControlComponentNodeIDs in ascending order
func (c *Context) ControlComponentNodeIDs() []int {
	m, _ := c.ControlComponentPublicKeys()
	return slices.Sorted(maps.Keys(m))
}

func (c *Context) Configuration() (*Configuration, bool) {
	s, ok := c.Setup()
	if !ok || s.Configuration == nil {
		return nil, false
	}
	return s.Configuration, true
}

// VerificationCardSetIDs present on disk, sorted
func (c *Context) VerificationCardSetIDs() []string {
	s, ok := c.Setup()
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(s.VerificationCardSets))
}

func (c *Context) VerificationCardSet(id string) (*VerificationCardSetArtifacts, bool) {
	s, ok := c.Setup()
	if !ok {
		return nil, false
	}
	vcs, ok := s.VerificationCardSets[id]
	return vcs, ok && vcs != nil
}

// VerificationCardSetContext finds the context declared for a set
func (c *Context) VerificationCardSetContext(vcsID string) (*VerificationCardSetContext, bool) {
	ee, ok := c.ElectionEventContext()
	if !ok {
		return nil, false
	}
	for _, vc := range ee.ElectionEventContext.VerificationCardSetContexts {
		if vc != nil && vc.VerificationCardSetID == vcsID {
			return vc, true
		}
	}
	return nil, false
}

// BallotBoxContext finds the verification card set context of a ballot box
func (c *Context) BallotBoxContext(bbID string) (*VerificationCardSetContext, bool) {
	ee, ok := c.ElectionEventContext()
	if !ok {
		return nil, false
	}
	for _, vc := range ee.ElectionEventContext.VerificationCardSetContexts {
		if vc != nil && vc.BallotBoxID == bbID {
			return vc, true
		}
	}
	return nil, false
}

// BallotBoxIDs present on disk, sorted
func (c *Context) BallotBoxIDs() []string {
	t, ok := c.Tally()
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(t.BallotBoxes))
}

func (c *Context) BallotBox(id string) (*BallotBoxArtifacts, bool) {
	t, ok := c.Tally()
	if !ok {
		return nil, false
	}
	bb, ok := t.BallotBoxes[id]
	return bb, ok && bb != nil
}

func (c *Context) DecryptResults() (*DecryptResults, bool) {
	t, ok := c.Tally()
	if !ok || t.DecryptResults == nil {
		return nil, false
	}
	return t.DecryptResults, true
}

// SortedKeys of an integer keyed map, for deterministic iteration
func SortedKeys[V any](m map[int]V) []int {
	return slices.Sorted(maps.Keys(m))
}
