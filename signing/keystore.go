// Package signing verifies artifact signatures against a direct-trust
// keystore: one tink public keyset per signing authority.
package signing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tink-crypto/tink-go/v2/keyset"
	"github.com/tink-crypto/tink-go/v2/signature"
	"github.com/tink-crypto/tink-go/v2/tink"

	"github.com/thechriswalker/go-verifier/crypto/hashing"
)

// Authority names a signer in the direct-trust keystore
type Authority string

const (
	AuthorityCanton     Authority = "canton"
	AuthoritySetup      Authority = "sdm_config"
	AuthorityTally      Authority = "sdm_tally"
	keysetFileExtension           = ".json"
)

// ControlComponent is the authority of control component node (1-based)
func ControlComponent(node int) Authority {
	return Authority(fmt.Sprintf("control_component_%d", node))
}

// AllAuthorities is every authority an election needs, in a fixed order
func AllAuthorities() []Authority {
	return []Authority{
		AuthorityCanton,
		AuthoritySetup,
		AuthorityTally,
		ControlComponent(1),
		ControlComponent(2),
		ControlComponent(3),
		ControlComponent(4),
	}
}

var (
	ErrUnknownAuthority = errors.New("authority not in keystore")
	ErrBadSignature     = errors.New("signature invalid")
)

// Message is what gets signed: the recursive hash of a context label and
// the canonical encoding of the content.
func Message(context string, content []byte) []byte {
	return hashing.RecursiveHash(context, content)
}

// Keystore maps authorities to signature verifiers
type Keystore struct {
	verifiers map[Authority]tink.Verifier
}

// NewKeystore builds a keystore from public keyset handles
func NewKeystore(handles map[Authority]*keyset.Handle) (*Keystore, error) {
	ks := &Keystore{verifiers: make(map[Authority]tink.Verifier, len(handles))}
	for a, h := range handles {
		v, err := signature.NewVerifier(h)
		if err != nil {
			return nil, fmt.Errorf("keystore: authority %s: %w", a, err)
		}
		ks.verifiers[a] = v
	}
	return ks, nil
}

// LoadKeystore reads every <authority>.json public keyset in dir
func LoadKeystore(dir string) (*Keystore, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+keysetFileExtension))
	if err != nil {
		return nil, err
	}
	handles := make(map[Authority]*keyset.Handle, len(matches))
	for _, path := range matches {
		name := strings.TrimSuffix(filepath.Base(path), keysetFileExtension)
		h, err := readPublicKeyset(path)
		if err != nil {
			return nil, fmt.Errorf("keystore: %s: %w", path, err)
		}
		handles[Authority(name)] = h
	}
	log.Debug().Str("dir", dir).Int("authorities", len(handles)).Msg("Loaded direct-trust keystore")
	return NewKeystore(handles)
}

func readPublicKeyset(path string) (*keyset.Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return keyset.ReadWithNoSecrets(keyset.NewJSONReader(f))
}

// Has reports whether the authority is known
func (ks *Keystore) Has(a Authority) bool {
	if ks == nil {
		return false
	}
	_, ok := ks.verifiers[a]
	return ok
}

// Authorities lists the known authorities, sorted
func (ks *Keystore) Authorities() []Authority {
	out := make([]Authority, 0, len(ks.verifiers))
	for a := range ks.verifiers {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Verify checks sig over msg for the authority
func (ks *Keystore) Verify(a Authority, sig, msg []byte) error {
	if !ks.Has(a) {
		return fmt.Errorf("%w: %s", ErrUnknownAuthority, a)
	}
	if err := ks.verifiers[a].Verify(sig, msg); err != nil {
		return fmt.Errorf("%w: authority %s", ErrBadSignature, a)
	}
	return nil
}
