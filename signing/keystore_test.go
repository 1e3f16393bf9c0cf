package signing

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSignAndVerify(t *testing.T) {
	signers, err := GenerateSigners(AuthoritySetup, ControlComponent(1))
	if err != nil {
		t.Fatal(err)
	}
	msg := Message("test payload", []byte(`{"a":1}`))
	sig, err := signers.Sign(AuthoritySetup, msg)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := signers.WritePublic(dir); err != nil {
		t.Fatal(err)
	}
	ks, err := LoadKeystore(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []Authority{ControlComponent(1), AuthoritySetup}
	if diff := cmp.Diff(want, ks.Authorities()); diff != "" {
		t.Errorf("authorities mismatch (-want +got):\n%s", diff)
	}

	if err := ks.Verify(AuthoritySetup, sig, msg); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	if err := ks.Verify(ControlComponent(1), sig, msg); !errors.Is(err, ErrBadSignature) {
		t.Errorf("signature from another authority: got %v", err)
	}
	other := Message("test payload", []byte(`{"a":2}`))
	if err := ks.Verify(AuthoritySetup, sig, other); !errors.Is(err, ErrBadSignature) {
		t.Errorf("signature over other content: got %v", err)
	}
	if err := ks.Verify(AuthorityCanton, sig, msg); !errors.Is(err, ErrUnknownAuthority) {
		t.Errorf("unknown authority: got %v", err)
	}
}
