package signing

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tink-crypto/tink-go/v2/keyset"
	"github.com/tink-crypto/tink-go/v2/signature"
	"github.com/tink-crypto/tink-go/v2/tink"
)

// Signers holds private keysets for simulated authorities
type Signers struct {
	handles map[Authority]*keyset.Handle
	signers map[Authority]tink.Signer
}

// GenerateSigners creates a fresh ED25519 keyset per authority
func GenerateSigners(authorities ...Authority) (*Signers, error) {
	s := &Signers{
		handles: make(map[Authority]*keyset.Handle, len(authorities)),
		signers: make(map[Authority]tink.Signer, len(authorities)),
	}
	for _, a := range authorities {
		h, err := keyset.NewHandle(signature.ED25519KeyTemplate())
		if err != nil {
			return nil, err
		}
		signer, err := signature.NewSigner(h)
		if err != nil {
			return nil, err
		}
		s.handles[a] = h
		s.signers[a] = signer
	}
	return s, nil
}

// Sign msg as the authority
func (s *Signers) Sign(a Authority, msg []byte) ([]byte, error) {
	signer, ok := s.signers[a]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAuthority, a)
	}
	return signer.Sign(msg)
}

func (s *Signers) publicHandles() (map[Authority]*keyset.Handle, error) {
	out := make(map[Authority]*keyset.Handle, len(s.handles))
	for a, h := range s.handles {
		pub, err := h.Public()
		if err != nil {
			return nil, fmt.Errorf("authority %s: %w", a, err)
		}
		out[a] = pub
	}
	return out, nil
}

// Keystore returns the verifying side of these signers
func (s *Signers) Keystore() (*Keystore, error) {
	pubs, err := s.publicHandles()
	if err != nil {
		return nil, err
	}
	return NewKeystore(pubs)
}

// WritePublic writes <authority>.json public keysets into dir
func (s *Signers) WritePublic(dir string) error {
	pubs, err := s.publicHandles()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for a, h := range pubs {
		f, err := os.Create(filepath.Join(dir, string(a)+keysetFileExtension))
		if err != nil {
			return err
		}
		if err := h.WriteWithNoSecrets(keyset.NewJSONWriter(f)); err != nil {
			f.Close()
			return fmt.Errorf("authority %s: %w", a, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
