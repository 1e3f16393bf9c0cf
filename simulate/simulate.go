// Package simulate generates complete election datasets: every artifact a
// real election event produces, with valid proofs and signatures, over a
// group of the requested size.
package simulate

import (
	"errors"
	"fmt"
	"time"

	big "github.com/ncw/gmp"
	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-verifier/crypto/random"
	"github.com/thechriswalker/go-verifier/election"
	"github.com/thechriswalker/go-verifier/signing"
)

// Options shape the simulated election event
type Options struct {
	// Bits is the size of p
	Bits int
	// BallotBoxes alternate between an election and a vote
	BallotBoxes int
	// Voters is the number of voting cards per ballot box. Three in four cast a vote.
	Voters int
	// Candidates of the election
	Candidates int
	// Selections each election ballot makes
	Selections int
	// ChunkSize is the number of voting cards per verification data chunk
	ChunkSize int
}

// DefaultOptions are small enough to generate in a few seconds
func DefaultOptions() Options {
	return Options{
		Bits:        512,
		BallotBoxes: 2,
		Voters:      8,
		Candidates:  5,
		Selections:  2,
		ChunkSize:   5,
	}
}

var ErrOptions = errors.New("invalid simulation options")

func (o Options) validate() error {
	switch {
	case o.Bits < 32:
		return fmt.Errorf("%w: at least 32 bits required, got %d", ErrOptions, o.Bits)
	case o.BallotBoxes < 1:
		return fmt.Errorf("%w: at least one ballot box required", ErrOptions)
	case o.Voters < 1:
		return fmt.Errorf("%w: at least one voter per ballot box required", ErrOptions)
	case o.Selections < 1 || o.Selections > o.Candidates:
		return fmt.Errorf("%w: %d selections of %d candidates", ErrOptions, o.Selections, o.Candidates)
	case o.ChunkSize < 1:
		return fmt.Errorf("%w: chunk size must be positive", ErrOptions)
	}
	return nil
}

// Election is a simulated election event together with the private keys
// of the authorities that signed it
type Election struct {
	Dataset *election.Dataset
	Signers *signing.Signers
	Bits    int
}

// Policy accepts the simulated group size
func (e *Election) Policy() election.Policy {
	p := election.DefaultPolicy
	if e.Bits < p.MinGroupBits {
		p.MinGroupBits = e.Bits
	}
	return p
}

// Context freezes ds (the simulated dataset when nil) with the simulated
// keystore and policy
func (e *Election) Context(ds *election.Dataset, opts ...election.ContextOption) (*election.Context, error) {
	if ds == nil {
		ds = e.Dataset
	}
	ks, err := e.Signers.Keystore()
	if err != nil {
		return nil, err
	}
	opts = append([]election.ContextOption{election.WithKeystore(ks), election.WithPolicy(e.Policy())}, opts...)
	return election.NewContext(ds, opts...)
}

// Resign signs every artifact of ds again, e.g. after tampering with a
// copy so that only the tampered value is wrong
func (e *Election) Resign(ds *election.Dataset) error {
	return Sign(ds, e.Signers)
}

// Write the dataset and the public keystore under dir
func (e *Election) Write(dir string) error {
	if err := e.Dataset.Write(dir); err != nil {
		return err
	}
	return e.Signers.WritePublic(election.KeystoreDir(dir))
}

type option struct {
	prime  int
	choice string
}

type card struct {
	id string
	k  *big.Int
}

type box struct {
	id, vcs string
	contest string
	isVote  bool
	options []option
	psi     int
	cards   []card
}

func (b *box) primes() []int {
	out := make([]int, len(b.options))
	for i, o := range b.options {
		out[i] = o.prime
	}
	return out
}

func (b *box) actualVotingOption(prime int) string {
	for _, o := range b.options {
		if o.prime == prime {
			return election.JoinVotingOption(b.contest, o.choice)
		}
	}
	return ""
}

type generator struct {
	opts     Options
	sys      *elgamal.System
	ee       string
	primes   []int
	ccr, ccm []*elgamal.KeyPair
	eb       *elgamal.KeyPair
	setup    *elgamal.KeyPair
	el       []*big.Int
	pkCCR    []*big.Int
	boxes    []*box
	ds       *election.Dataset
}

// Generate simulates a full election event and signs it
func Generate(opts Options) (*Election, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	t := time.Now()
	log.Info().
		Int("bits", opts.Bits).
		Int("ballotBoxes", opts.BallotBoxes).
		Int("voters", opts.Voters).
		Msg("Generating encryption group")
	g := &generator{
		opts: opts,
		sys:  elgamal.New(opts.Bits),
		ee:   random.ID(),
		ds:   &election.Dataset{},
	}
	log.Debug().Dur("ms", time.Since(t)).Msg("Encryption group ready")
	if err := g.generateSetup(); err != nil {
		return nil, err
	}
	if err := g.generateTally(); err != nil {
		return nil, err
	}
	signers, err := signing.GenerateSigners(signing.AllAuthorities()...)
	if err != nil {
		return nil, err
	}
	if err := Sign(g.ds, signers); err != nil {
		return nil, err
	}
	log.Info().
		Str("electionEvent", g.ee).
		Dur("ms", time.Since(t)).
		Msg("Simulated election event")
	return &Election{Dataset: g.ds, Signers: signers, Bits: opts.Bits}, nil
}

// keyLength is the number of elements of every key: the most selections
// any ballot makes
func (g *generator) keyLength() int {
	return g.opts.Selections
}

// smallPrimes are the first n primes that are group members other than g
func smallPrimes(sys *elgamal.System, n int) ([]int, error) {
	var out []int
	for p := int64(2); len(out) < n; p++ {
		bp := big.NewInt(p)
		if bp.Cmp(sys.P) >= 0 {
			return nil, fmt.Errorf("only %d small primes in a group of %d bits", len(out), sys.P.BitLen())
		}
		if bp.ProbablyPrime(20) && sys.IsMember(bp) && bp.Cmp(sys.G) != 0 {
			out = append(out, int(p))
		}
	}
	return out, nil
}
