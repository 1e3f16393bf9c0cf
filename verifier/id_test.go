package verifier

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{in: "01.01", want: ID{PhaseSetup, 1, 1}},
		{in: "05.21", want: ID{PhaseSetup, 5, 21}},
		{in: "06.01", want: ID{PhaseTally, 6, 1}},
		{in: "10.02", want: ID{PhaseTally, 10, 2}},
		{in: "1.2", want: ID{PhaseSetup, 1, 2}},
		{in: "0101", wantErr: true},
		{in: "a.b", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseID(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseID(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseID(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestIDOrder(t *testing.T) {
	ids := []ID{NewID(10, 2), NewID(1, 1), NewID(5, 21), NewID(5, 4), NewID(6, 1), NewID(3, 15), NewID(3, 2)}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	var got []string
	for _, id := range ids {
		got = append(got, id.String())
	}
	want := []string{"01.01", "03.02", "03.15", "05.04", "05.21", "06.01", "10.02"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	// phase ranks first
	if !(ID{PhaseSetup, 9, 9}).Less(ID{PhaseTally, 1, 1}) {
		t.Error("setup ids must sort before tally ids")
	}
	if NewID(3, 1).Compare(NewID(3, 1)) != 0 {
		t.Error("equal ids must compare 0")
	}
}

func TestIDText(t *testing.T) {
	b, err := NewID(8, 12).MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var id ID
	if err := id.UnmarshalText(b); err != nil {
		t.Fatal(err)
	}
	if id != NewID(8, 12) || string(b) != "08.12" {
		t.Errorf("got %s from %q", id, b)
	}
}
