package elgamal

import (
	"errors"
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-verifier/crypto/random"
)

// PublicKey is a multi-element ElGamal public key
type PublicKey struct {
	*System
	Y []*big.Int
}

// SecretKey is the matching multi-element secret key
type SecretKey struct {
	*PublicKey
	X []*big.Int
}

// KeyPair holds a secret key and exposes both halves
type KeyPair struct {
	sk *SecretKey
}

// Secret gets the private part of this keypair
func (kp *KeyPair) Secret() *SecretKey {
	return kp.sk
}

// Public gets the public half of this keypair
func (kp *KeyPair) Public() *PublicKey {
	return kp.sk.PublicKey
}

// GenerateKeyPair creates a new random key pair of n elements
func GenerateKeyPair(sys *System, n int) *KeyPair {
	return keypairForSecret(sys, random.Vector(n, sys.Q))
}

func keypairForSecret(sys *System, x []*big.Int) (kp *KeyPair) {
	kp = new(KeyPair)
	y := make([]*big.Int, len(x))
	for i := range x {
		y[i] = sys.Exp(sys.G, x[i])
	}
	kp.sk = &SecretKey{
		PublicKey: &PublicKey{System: sys, Y: y},
		X:         x,
	}
	return
}

// Validate that every element is a group member
func (pk *PublicKey) Validate() error {
	if pk.System == nil {
		return errors.New("PublicKey invalid: No ElGamal System Parameters")
	}
	if len(pk.Y) == 0 {
		return errors.New("PublicKey invalid: no elements")
	}
	for i, y := range pk.Y {
		if !pk.IsMember(y) {
			return fmt.Errorf("PublicKey invalid: element %d not a group member", i)
		}
	}
	return nil
}

// Compress reduces the key to l elements by multiplying the trailing
// elements into the last one.
func (pk *PublicKey) Compress(l int) (*PublicKey, error) {
	y, err := CompressKey(pk.System, pk.Y, l)
	if err != nil {
		return nil, err
	}
	return &PublicKey{System: pk.System, Y: y}, nil
}

// CompressKey is Compress on a bare element slice
func CompressKey(sys *System, y []*big.Int, l int) ([]*big.Int, error) {
	if l < 1 || l > len(y) {
		return nil, fmt.Errorf("cannot compress %d element key to %d elements", len(y), l)
	}
	out := make([]*big.Int, l)
	copy(out, y[:l-1])
	out[l-1] = sys.Mul(y[l-1:]...)
	return out, nil
}

// CombineKeys multiplies keys element-wise. All keys must have the same length.
func CombineKeys(sys *System, keys ...[]*big.Int) ([]*big.Int, error) {
	if len(keys) == 0 {
		return nil, errors.New("no keys to combine")
	}
	n := len(keys[0])
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = big.NewInt(1)
	}
	for k, key := range keys {
		if len(key) != n {
			return nil, fmt.Errorf("key %d has %d elements, expected %d", k, len(key), n)
		}
		for i := range key {
			out[i] = sys.Mul(out[i], key[i])
		}
	}
	return out, nil
}

// Compress is the secret key counterpart of PublicKey.Compress
func (sk *SecretKey) Compress(l int) (*SecretKey, error) {
	pk, err := sk.PublicKey.Compress(l)
	if err != nil {
		return nil, err
	}
	x := make([]*big.Int, l)
	copy(x, sk.X[:l-1])
	x[l-1] = big.NewInt(0)
	for _, xi := range sk.X[l-1:] {
		x[l-1] = sk.AddQ(x[l-1], xi)
	}
	return &SecretKey{PublicKey: pk, X: x}, nil
}

// Encrypt the message vector with randomness r (random if nil).
// len(m) must not exceed the key length.
func (pk *PublicKey) Encrypt(m []*big.Int, r *big.Int) *Ciphertext {
	if r == nil {
		r = random.Int(pk.Q)
	}
	ct := &Ciphertext{
		Gamma: pk.Exp(pk.G, r),
		Phis:  make([]*big.Int, len(m)),
	}
	for i := range m {
		ct.Phis[i] = pk.Mul(pk.Exp(pk.Y[i], r), m[i])
	}
	return ct
}

// PartialDecrypt removes this key's share from every phi:
// phi_i / gamma^x_i. With the full key this is a decryption.
func (sk *SecretKey) PartialDecrypt(ct *Ciphertext) []*big.Int {
	m := make([]*big.Int, len(ct.Phis))
	for i := range ct.Phis {
		m[i] = sk.Div(ct.Phis[i], sk.Exp(ct.Gamma, sk.X[i]))
	}
	return m
}
