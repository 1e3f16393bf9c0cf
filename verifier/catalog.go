package verifier

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/thechriswalker/go-verifier/election"
)

// Category groups verifications the way audit reports present them
type Category string

const (
	CategoryCompleteness Category = "completeness"
	CategoryAuthenticity Category = "authenticity"
	CategoryConsistency  Category = "consistency"
	CategoryIntegrity    Category = "integrity"
	CategoryEvidence     Category = "evidence"
)

// Family is the technique a verification uses
type Family string

const (
	FamilyCompleteness          Family = "completeness"
	FamilySignature             Family = "signature"
	FamilyParameters            Family = "parameters"
	FamilySchnorrProof          Family = "schnorr-proof"
	FamilyExponentiationProof   Family = "exponentiation-proof"
	FamilyDecryptionProof       Family = "decryption-proof"
	FamilyShuffleProof          Family = "shuffle-proof"
	FamilyStructuralCount       Family = "structural-count"
	FamilyIdentifierConsistency Family = "identifier-consistency"
	FamilyGroupMembership       Family = "group-membership"
)

// Algorithm evaluates one verification. It reads the context, records
// protocol violations in f and returns an error only when it could not
// evaluate the data at all.
type Algorithm func(ctx *election.Context, f *Findings) error

// Entry is one verification of the catalog. A nil Algorithm means the
// verification is not implemented.
type Entry struct {
	ID          ID
	Name        string
	Description string
	Category    Category
	Family      Family
	Requires    []election.Field
	Algorithm   Algorithm
}

// Missing lists the required fields absent from the context
func (e *Entry) Missing(ctx *election.Context) []election.Field {
	return ctx.Missing(e.Requires...)
}

// Applicable is the required-fields predicate
func (e *Entry) Applicable(ctx *election.Context) bool {
	return len(e.Missing(ctx)) == 0
}

func (e *Entry) Implemented() bool {
	return e.Algorithm != nil
}

// Catalog is an immutable, ordered set of entries
type Catalog struct {
	entries []*Entry
	byID    map[ID]*Entry
}

// NewCatalog orders the entries by id and rejects duplicates
func NewCatalog(entries ...*Entry) (*Catalog, error) {
	c := &Catalog{
		entries: append([]*Entry(nil), entries...),
		byID:    make(map[ID]*Entry, len(entries)),
	}
	for _, e := range c.entries {
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate verification %s", e.ID)
		}
		c.byID[e.ID] = e
	}
	sort.Slice(c.entries, func(i, j int) bool { return c.entries[i].ID.Less(c.entries[j].ID) })
	return c, nil
}

// Entries in ascending id order
func (c *Catalog) Entries() []*Entry {
	return append([]*Entry(nil), c.entries...)
}

func (c *Catalog) Len() int { return len(c.entries) }

func (c *Catalog) Lookup(id ID) (*Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Filter keeps the entries for which keep returns true
func (c *Catalog) Filter(keep func(*Entry) bool) *Catalog {
	var out []*Entry
	for _, e := range c.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	sub, _ := NewCatalog(out...)
	return sub
}

// Phase is the sub-catalog of one phase
func (c *Catalog) Phase(p Phase) *Catalog {
	return c.Filter(func(e *Entry) bool { return e.ID.Phase == p })
}

//go:embed catalog.yaml
var catalogYAML []byte

type entryDef struct {
	ID          ID       `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    Category `yaml:"category"`
	Family      Family   `yaml:"family"`
	Requires    []string `yaml:"requires"`
}

// Build binds entry metadata (as in catalog.yaml) to algorithms by id.
// Algorithms without metadata are an error, metadata without algorithm
// gives an unimplemented entry.
func Build(metadata []byte, algorithms map[string]Algorithm) (*Catalog, error) {
	var defs []entryDef
	if err := yaml.Unmarshal(metadata, &defs); err != nil {
		return nil, fmt.Errorf("catalog metadata: %w", err)
	}
	bound := map[string]bool{}
	entries := make([]*Entry, 0, len(defs))
	for _, d := range defs {
		e := &Entry{
			ID:          d.ID,
			Name:        d.Name,
			Description: strings.TrimSpace(d.Description),
			Category:    d.Category,
			Family:      d.Family,
			Algorithm:   algorithms[d.ID.String()],
		}
		for _, r := range d.Requires {
			f, err := election.ParseField(r)
			if err != nil {
				return nil, fmt.Errorf("verification %s: %w", d.ID, err)
			}
			e.Requires = append(e.Requires, f)
		}
		bound[d.ID.String()] = true
		entries = append(entries, e)
	}
	for id := range algorithms {
		if !bound[id] {
			return nil, fmt.Errorf("algorithm %s has no catalog entry", id)
		}
	}
	return NewCatalog(entries...)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default is the full verification catalog. It is built on first use and
// never modified afterwards.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Build(catalogYAML, algorithms())
		if err != nil {
			panic(fmt.Sprintf("load catalog.yaml: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
