package election

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/thechriswalker/go-verifier/crypto"
	"github.com/thechriswalker/go-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-verifier/signing"
)

// ErrUnsigned is returned by SignatureContents for artifacts without a signature
var ErrUnsigned = errors.New("artifact carries no signature")

// SignedArtifact is anything verifiable against the direct-trust keystore
type SignedArtifact interface {
	// SignatureContents returns the raw signature bytes
	SignatureContents() ([]byte, error)
	// SignedMessage is the message the signature must cover
	SignedMessage() ([]byte, error)
}

// Signature as it appears in JSON payloads (base64)
type Signature struct {
	SignatureContents []byte `json:"signatureContents"`
}

type signed struct {
	Signature *Signature `json:"signature,omitempty"`
}

func (s signed) SignatureContents() ([]byte, error) {
	if s.Signature == nil || len(s.Signature.SignatureContents) == 0 {
		return nil, ErrUnsigned
	}
	return s.Signature.SignatureContents, nil
}

// Sign sets the signature
func (s *signed) Sign(b []byte) {
	s.Signature = &Signature{SignatureContents: b}
}

func canonicalJSON(context string, v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical encoding of %s: %w", context, err)
	}
	return signing.Message(context, b), nil
}

// EncryptionGroup is (p, q, g)
type EncryptionGroup struct {
	P *crypto.BigInt `json:"p"`
	Q *crypto.BigInt `json:"q"`
	G *crypto.BigInt `json:"g"`
}

// GroupOf converts a system for serialisation
func GroupOf(sys *elgamal.System) *EncryptionGroup {
	return &EncryptionGroup{P: crypto.NewBigInt(sys.P), Q: crypto.NewBigInt(sys.Q), G: crypto.NewBigInt(sys.G)}
}

// System returns the group as an elgamal.System, without validating it
func (eg *EncryptionGroup) System() (*elgamal.System, error) {
	if eg == nil || eg.P == nil || eg.Q == nil || eg.G == nil {
		return nil, errors.New("encryption group incomplete")
	}
	return &elgamal.System{P: eg.P.Int(), Q: eg.Q.Int(), G: eg.G.Int()}, nil
}

// Equal compares with a system, false if incomplete
func (eg *EncryptionGroup) Equal(sys *elgamal.System) bool {
	s, err := eg.System()
	if err != nil {
		return false
	}
	return s.Equal(sys)
}

// Ciphertext is the JSON form of an elgamal.Ciphertext
type Ciphertext struct {
	Gamma *crypto.BigInt     `json:"gamma"`
	Phis  crypto.BigIntSlice `json:"phis"`
}

func (c *Ciphertext) ElGamal() *elgamal.Ciphertext {
	if c == nil {
		return nil
	}
	return &elgamal.Ciphertext{Gamma: c.Gamma.Int(), Phis: c.Phis}
}

// CiphertextOf converts for serialisation
func CiphertextOf(ct *elgamal.Ciphertext) *Ciphertext {
	return &Ciphertext{Gamma: crypto.NewBigInt(ct.Gamma), Phis: ct.Phis}
}

// Ciphertexts converts a slice
func Ciphertexts(cs []*Ciphertext) []*elgamal.Ciphertext {
	out := make([]*elgamal.Ciphertext, len(cs))
	for i, c := range cs {
		out[i] = c.ElGamal()
	}
	return out
}

// CiphertextsOf converts a slice for serialisation
func CiphertextsOf(cs []*elgamal.Ciphertext) []*Ciphertext {
	out := make([]*Ciphertext, len(cs))
	for i, c := range cs {
		out[i] = CiphertextOf(c)
	}
	return out
}

// Equal compares two ciphertexts by value
func (c *Ciphertext) Equal(o *Ciphertext) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Gamma == nil || o.Gamma == nil {
		return c.Gamma == o.Gamma && c.Phis.Equal(o.Phis)
	}
	return c.Gamma.Int().Cmp(o.Gamma.Int()) == 0 && c.Phis.Equal(o.Phis)
}

type SchnorrProof struct {
	E *crypto.BigInt `json:"e"`
	Z *crypto.BigInt `json:"z"`
}

func (p *SchnorrProof) ElGamal() *elgamal.SchnorrProof {
	if p == nil {
		return nil
	}
	return &elgamal.SchnorrProof{E: p.E.Int(), Z: p.Z.Int()}
}

func SchnorrProofOf(p *elgamal.SchnorrProof) *SchnorrProof {
	return &SchnorrProof{E: crypto.NewBigInt(p.E), Z: crypto.NewBigInt(p.Z)}
}

// Equal compares by value
func (p *SchnorrProof) Equal(o *SchnorrProof) bool {
	if p == nil || o == nil {
		return p == o
	}
	return crypto.BigIntSlice{p.E.Int(), p.Z.Int()}.Equal(crypto.BigIntSlice{o.E.Int(), o.Z.Int()})
}

type ExponentiationProof struct {
	E *crypto.BigInt `json:"e"`
	Z *crypto.BigInt `json:"z"`
}

func (p *ExponentiationProof) ElGamal() *elgamal.ExponentiationProof {
	if p == nil {
		return nil
	}
	return &elgamal.ExponentiationProof{E: p.E.Int(), Z: p.Z.Int()}
}

func ExponentiationProofOf(p *elgamal.ExponentiationProof) *ExponentiationProof {
	return &ExponentiationProof{E: crypto.NewBigInt(p.E), Z: crypto.NewBigInt(p.Z)}
}

type DecryptionProof struct {
	E *crypto.BigInt     `json:"e"`
	Z crypto.BigIntSlice `json:"z"`
}

func (p *DecryptionProof) ElGamal() *elgamal.DecryptionProof {
	if p == nil {
		return nil
	}
	return &elgamal.DecryptionProof{E: p.E.Int(), Z: p.Z}
}

func DecryptionProofOf(p *elgamal.DecryptionProof) *DecryptionProof {
	return &DecryptionProof{E: crypto.NewBigInt(p.E), Z: p.Z}
}

type PlaintextEqualityProof struct {
	E *crypto.BigInt     `json:"e"`
	Z crypto.BigIntSlice `json:"z"`
}

func (p *PlaintextEqualityProof) ElGamal() *elgamal.PlaintextEqualityProof {
	if p == nil {
		return nil
	}
	return &elgamal.PlaintextEqualityProof{E: p.E.Int(), Z: p.Z}
}

func PlaintextEqualityProofOf(p *elgamal.PlaintextEqualityProof) *PlaintextEqualityProof {
	return &PlaintextEqualityProof{E: crypto.NewBigInt(p.E), Z: p.Z}
}
