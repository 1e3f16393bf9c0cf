package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thechriswalker/go-verifier/election"
	"github.com/thechriswalker/go-verifier/verifier"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		ext     string
		want    *Config
		wantErr bool
	}{
		{
			name: "yaml",
			ext:  ".yaml",
			data: `
workers: 8
exclude: ["05.21", "05.22"]
period: tally
maxVotingOptions: 100
minGroupBits: 3072
reportDB: reports.sqlite
format: markdown
`,
			want: &Config{
				Workers:          8,
				Exclude:          []string{"05.21", "05.22"},
				Period:           PeriodTally,
				MaxVotingOptions: 100,
				MinGroupBits:     3072,
				ReportDB:         "reports.sqlite",
				Format:           FormatMarkdown,
			},
		},
		{
			name: "json",
			ext:  ".json",
			data: `{"workers": 2, "exclude": ["10.01"], "format": "html"}`,
			want: &Config{Workers: 2, Exclude: []string{"10.01"}, Format: FormatHTML},
		},
		{name: "empty", ext: ".yml", data: "", want: &Config{}},
		{name: "unknown key", ext: ".yaml", data: "worker: 3", wantErr: true},
		{name: "bad period", ext: ".yaml", data: "period: count", wantErr: true},
		{name: "bad format", ext: ".json", data: `{"format":"pdf"}`, wantErr: true},
		{name: "bad exclusion", ext: ".yaml", data: `exclude: ["five"]`, wantErr: true},
		{name: "negative workers", ext: ".yaml", data: "workers: -1", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Load([]byte(tt.data), tt.ext)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected an error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: config (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verifier.yaml")
	if err := os.WriteFile(path, []byte("period: setup\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Period != PeriodSetup {
		t.Errorf("period %q", c.Period)
	}
	if _, err := LoadFile(path + ".missing"); err == nil {
		t.Error("missing file loaded")
	}
}

func TestDefaults(t *testing.T) {
	c := (&Config{MinGroupBits: 512}).WithDefaults()
	want := &Config{Period: PeriodAll, Format: FormatText, MaxVotingOptions: 5000, MinGroupBits: 512}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(election.Policy{MaxVotingOptions: 5000, MinGroupBits: 512}, c.Policy()); diff != "" {
		t.Errorf("policy (-want +got):\n%s", diff)
	}
}

func TestCatalog(t *testing.T) {
	all := verifier.Default()
	for period, want := range map[Period]int{
		PeriodAll:   all.Len(),
		"":          all.Len(),
		PeriodSetup: all.Phase(verifier.PhaseSetup).Len(),
		PeriodTally: all.Phase(verifier.PhaseTally).Len(),
	} {
		if got := (&Config{Period: period}).Catalog(all).Len(); got != want {
			t.Errorf("period %q: %d entries, want %d", period, got, want)
		}
	}
}
