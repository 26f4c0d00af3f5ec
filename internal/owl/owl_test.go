package owl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/FAU-CDI/metaextract/internal/classes"
	"github.com/FAU-CDI/metaextract/internal/triplestore"
	"github.com/FAU-CDI/metaextract/internal/triplestore/igraph"
	"github.com/google/go-cmp/cmp"
)

const (
	simulation   = "http://example.org/onto#Simulation"
	mdSimulation = "http://example.org/onto#MDSimulation"
	software     = "http://example.org/onto#Software"
)

func loadTestOntology(t *testing.T, engine igraph.Engine) *Querier {
	t.Helper()

	file, err := os.Open(filepath.Join("testdata", "simulation.owl"))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	q, err := Load(file, engine)
	if err != nil {
		t.Fatalf("Load() failed: %s", err)
	}
	t.Cleanup(func() { q.Close() })
	return q
}

func queryTest(t *testing.T, q *Querier) {
	t.Helper()

	refs, err := q.Classes()
	if err != nil {
		t.Fatalf("Classes() failed: %s", err)
	}
	wantRefs := []classes.ClassRef{
		{IRI: mdSimulation, Label: "MD simulation"},
		{IRI: simulation, Label: "Simulation"},
		{IRI: software, Label: "Software"},
	}
	if diff := cmp.Diff(wantRefs, refs); diff != "" {
		t.Errorf("Classes() mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name  string
		query func() ([]string, error)
		want  []string
	}{
		{"super-classes", func() ([]string, error) { return q.SuperClasses(mdSimulation) }, []string{"Simulation"}},
		{"no super-classes", func() ([]string, error) { return q.SuperClasses(simulation) }, nil},
		{"sub-classes", func() ([]string, error) { return q.SubClasses(simulation) }, []string{"MD simulation"}},
		{"disjoint", func() ([]string, error) { return q.DisjointClasses(mdSimulation) }, []string{"Software"}},
		{"members", func() ([]string, error) { return q.Members(software) }, []string{"GROMACS"}},
		{"domain data", func() ([]string, error) {
			return q.Properties(simulation, classes.Domain, classes.KindDataProperty)
		}, []string{"has duration"}},
		{"domain object", func() ([]string, error) {
			return q.Properties(simulation, classes.Domain, classes.KindObjectProperty)
		}, []string{"uses software"}},
		{"range object", func() ([]string, error) {
			return q.Properties(software, classes.Range, classes.KindObjectProperty)
		}, []string{"uses software"}},
		{"range data", func() ([]string, error) {
			return q.Properties(software, classes.Range, classes.KindDataProperty)
		}, nil},
		{"unknown class", func() ([]string, error) { return q.SubClasses("http://example.org/unknown") }, nil},
	}

	for _, tt := range tests {
		got, err := tt.query()
		if err != nil {
			t.Errorf("%s: query failed: %s", tt.name, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestQuerier_Memory(t *testing.T) {
	queryTest(t, loadTestOntology(t, triplestore.NewEngine("")))
}

func TestQuerier_Disk(t *testing.T) {
	queryTest(t, loadTestOntology(t, triplestore.NewEngine(t.TempDir())))
}

func TestQuerier_Label(t *testing.T) {
	q := loadTestOntology(t, igraph.MemoryEngine{})

	// the preferred label wins over the english rdfs:label
	label, ok, err := q.Label(mdSimulation)
	if err != nil || !ok || label != "MD simulation" {
		t.Errorf("Label() = %q, %t, %v", label, ok, err)
	}
}

func TestOpen_UnsupportedFormat(t *testing.T) {
	_, err := Open(context.Background(), "https://example.org/ontology.ttl", igraph.MemoryEngine{}, nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open() = %v, want ErrUnsupportedFormat", err)
	}
}

func TestOpen_File(t *testing.T) {
	q, err := Open(context.Background(), filepath.Join("testdata", "simulation.owl"), igraph.MemoryEngine{}, nil)
	if err != nil {
		t.Fatalf("Open() failed: %s", err)
	}
	defer q.Close()

	queryTest(t, q)
}

func TestOpen_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simulation.owl" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join("testdata", "simulation.owl"))
	}))
	defer server.Close()

	q, err := Open(context.Background(), server.URL+"/simulation.owl", igraph.MemoryEngine{}, nil)
	if err != nil {
		t.Fatalf("Open() failed: %s", err)
	}
	defer q.Close()
	queryTest(t, q)

	if _, err := Open(context.Background(), server.URL+"/missing.owl", igraph.MemoryEngine{}, nil); err == nil {
		t.Errorf("Open() of a missing document did not fail")
	}
}
