package template

import (
	"encoding/json"
	"testing"

	"github.com/FAU-CDI/metaextract/internal/extract"
	"github.com/google/go-cmp/cmp"
)

func TestCandidates(t *testing.T) {
	var data extract.Data
	if err := json.Unmarshal([]byte(`{
		"variables": {"temp": {"units": "K", "long_name": "T"}, "time": "s"},
		"dimensions": {"x": 3}
	}`), &data); err != nil {
		t.Fatal(err)
	}

	got, err := Candidates(&data, []string{"variables", "global_attributes"})
	if err != nil {
		t.Fatalf("Candidates() error = %v", err)
	}
	want := []Candidate{
		{Key: "temp", Fields: []string{"units", "long_name"}},
		{Key: "time"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates() mismatch (-want +got):\n%s", diff)
	}
}

func TestCandidates_Table(t *testing.T) {
	table, err := extract.NewTable([][]string{
		{"id", "temp", "unit"},
		{"1", "300", "K"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := Candidates(table.Data(), []string{extract.TableSection})
	if err != nil {
		t.Fatalf("Candidates() error = %v", err)
	}
	want := []Candidate{{Key: "temp"}, {Key: "unit"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates() mismatch (-want +got):\n%s", diff)
	}
}
