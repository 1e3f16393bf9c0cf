package verifier

import (
	"testing"

	"github.com/thechriswalker/go-verifier/election"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if c.Len() != 57 {
		t.Errorf("catalog has %d entries, want 57", c.Len())
	}
	if Default() != c {
		t.Error("Default must return the same catalog")
	}
	entries := c.Entries()
	for i := 1; i < len(entries); i++ {
		if !entries[i-1].ID.Less(entries[i].ID) {
			t.Errorf("entries out of order: %s before %s", entries[i-1].ID, entries[i].ID)
		}
	}
	unimplemented := map[string]bool{"07.06": true, "07.07": true}
	for _, e := range entries {
		if e.Name == "" || e.Category == "" || e.Family == "" {
			t.Errorf("%s: incomplete metadata %+v", e.ID, e)
		}
		if len(e.Requires) == 0 {
			t.Errorf("%s: no required fields", e.ID)
		}
		if e.Implemented() == unimplemented[e.ID.String()] {
			t.Errorf("%s: implemented = %v", e.ID, e.Implemented())
		}
	}
	if n := c.Phase(PhaseSetup).Len() + c.Phase(PhaseTally).Len(); n != c.Len() {
		t.Errorf("phases cover %d of %d entries", n, c.Len())
	}
}

func TestBuild(t *testing.T) {
	meta := []byte(`
- id: "01.01"
  name: One
  requires: [setup]
- id: "06.01"
  name: Two
  requires: [tally, keystore]
`)
	c, err := Build(meta, map[string]Algorithm{"06.01": succeed})
	if err != nil {
		t.Fatal(err)
	}
	one, _ := c.Lookup(NewID(1, 1))
	two, _ := c.Lookup(NewID(6, 1))
	if one.Implemented() || !two.Implemented() {
		t.Errorf("binding wrong: 01.01 %v, 06.01 %v", one.Implemented(), two.Implemented())
	}
	if two.ID.Phase != PhaseTally || len(two.Requires) != 2 || two.Requires[1] != election.FieldKeystore {
		t.Errorf("06.01 decoded as %+v", two)
	}

	tests := map[string]struct {
		meta string
		algs map[string]Algorithm
	}{
		"algorithm without metadata": {`- id: "01.01"`, map[string]Algorithm{"01.02": succeed}},
		"unknown field":              {"- id: \"01.01\"\n  requires: [ballots]", nil},
		"bad id":                     {`- id: "one"`, nil},
		"duplicate id":               {"- id: \"01.01\"\n- id: \"1.1\"", nil},
	}
	for name, tt := range tests {
		if _, err := Build([]byte(tt.meta), tt.algs); err == nil {
			t.Errorf("%s: Build succeeded", name)
		}
	}
}

func TestEntryApplicable(t *testing.T) {
	e := &Entry{ID: NewID(8, 12), Requires: []election.Field{election.FieldDecryptResults}}
	ec := emptyContext(t)
	if e.Applicable(ec) {
		t.Error("entry applicable to an empty context")
	}
	ec = contextOf(t, &election.Dataset{Tally: &election.TallyArtifacts{DecryptResults: &election.DecryptResults{}}})
	if !e.Applicable(ec) {
		t.Errorf("entry not applicable, missing %v", e.Missing(ec))
	}
}
