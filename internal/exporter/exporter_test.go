package exporter

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FAU-CDI/metaextract/internal/extract"
	"github.com/FAU-CDI/metaextract/internal/jsonld"
	"github.com/FAU-CDI/metaextract/internal/metadata"
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	_ "github.com/glebarez/go-sqlite"
)

// cspell:words glebarez

func testDocument(t *testing.T, md string, table *extract.Table) *jsonld.Document {
	t.Helper()

	var data metadata.Metadata
	if err := json.Unmarshal([]byte(md), &data); err != nil {
		t.Fatalf("failed to unmarshal metadata: %s", err)
	}
	ctx, err := jsonld.LoadContext(strings.NewReader(`{"@context": {"schema": "https://schema.org/", "@vocab": "https://example.org/vocab#"}}`))
	if err != nil {
		t.Fatalf("failed to load context: %s", err)
	}
	doc, err := jsonld.Build(&data, ctx, table)
	if err != nil {
		t.Fatalf("failed to build document: %s", err)
	}
	return doc
}

const testMetadata = `{"sim: Simulation":{"hasDuration":"10 ns","count":3},"gmx: Software":{"usedBy":"@0"}}`

func testTable(t *testing.T) (*extract.Table, string) {
	t.Helper()
	table, err := extract.NewTable([][]string{
		{"id", "temp", "unit"},
		{"1", "300"},
		{"2", "310", "K"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return table, `{"temp: Measurement":{"value":"#"},"unit: Unit":{"symbol":"#"}}`
}

func TestMap(t *testing.T) {
	doc := testDocument(t, testMetadata, nil)

	var mp Map
	if err := Export("run", doc, &mp, nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	nodes := mp.Data["run"]
	if len(nodes) != 2 || jsonld.ID(nodes[1]) != "local:software_gmx_1" {
		t.Errorf("Export() stored %v", nodes)
	}
}

func TestNQuads(t *testing.T) {
	doc := testDocument(t, testMetadata, nil)

	var buffer bytes.Buffer
	exporter := NewNQuads(&buffer)
	if err := Export("run", doc, exporter, nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if err := exporter.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	const (
		local = "https://local-domain.org/"
		vocab = "https://example.org/vocab#"
	)
	graph := quad.IRI(local + "run")
	sim := quad.IRI(local + "simulation_sim_1")
	gmx := quad.IRI(local + "software_gmx_1")

	want := []quad.Quad{
		{Subject: sim, Predicate: quad.IRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"), Object: quad.IRI(vocab + "simulation"), Label: graph},
		{Subject: sim, Predicate: quad.IRI("http://www.w3.org/2000/01/rdf-schema#label"), Object: quad.String("sim"), Label: graph},
		{Subject: sim, Predicate: quad.IRI(vocab + "hasDuration"), Object: quad.String("10 ns"), Label: graph},
		{Subject: sim, Predicate: quad.IRI(vocab + "count"), Object: quad.TypedString{Value: "3", Type: quad.IRI(xsd + "integer")}, Label: graph},
		{Subject: gmx, Predicate: quad.IRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"), Object: quad.IRI(vocab + "software"), Label: graph},
		{Subject: gmx, Predicate: quad.IRI("http://www.w3.org/2000/01/rdf-schema#label"), Object: quad.String("gmx"), Label: graph},
		{Subject: gmx, Predicate: quad.IRI(vocab + "usedBy"), Object: sim, Label: graph},
	}

	reader := nquads.NewReader(&buffer, true)
	defer reader.Close()

	var got []quad.Quad
	for {
		q, err := reader.ReadQuad()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadQuad() error = %v", err)
		}
		got = append(got, q)
	}

	if len(got) != len(want) {
		t.Fatalf("Export() wrote %d quads, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("quad %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNQuads_Table(t *testing.T) {
	table, md := testTable(t)
	doc := testDocument(t, md, table)

	var buffer bytes.Buffer
	exporter := NewNQuads(&buffer)
	if err := Export("table", doc, exporter, nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if err := exporter.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	const link = "<https://local-domain.org/2> <https://example.org/vocab#data> <https://local-domain.org/unit_2> <https://local-domain.org/table> .\n"
	if !strings.Contains(buffer.String(), link) {
		t.Errorf("Export() did not link record to data node:\n%s", buffer.String())
	}
}

func TestSQL(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "export.db"))
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}

	exporter := &SQL{
		DB:          db,
		BatchSize:   1,
		MaxQueryVar: SqliteMaxQueryVar,
	}
	defer exporter.Close()

	table, md := testTable(t)
	doc := testDocument(t, md, table)

	// exporting twice must replace the first export
	for range 2 {
		if err := Export("table", doc, exporter, nil); err != nil {
			t.Fatalf("Export() error = %v", err)
		}
	}
	if err := Export("other", testDocument(t, testMetadata, nil), exporter, nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	count := func(query string, args ...any) (n int) {
		t.Helper()
		if err := db.QueryRow(query, args...).Scan(&n); err != nil {
			t.Fatalf("QueryRow(%q) error = %v", query, err)
		}
		return n
	}

	if got := count("SELECT COUNT(*) FROM nodes WHERE graph = ?", "table"); got != 5 {
		t.Errorf("nodes in table = %d, want 5", got)
	}
	if got := count("SELECT COUNT(*) FROM properties WHERE graph = ?", "table"); got != 3 {
		t.Errorf("properties in table = %d, want 3", got)
	}
	if got := count("SELECT COUNT(*) FROM nodes WHERE graph = ?", "other"); got != 2 {
		t.Errorf("nodes in other = %d, want 2", got)
	}

	var parent, value string
	if err := db.QueryRow(
		"SELECT nodes.parent, properties.value FROM nodes JOIN properties ON properties.node = nodes.id WHERE nodes.id = ?",
		"local:unit_2",
	).Scan(&parent, &value); err != nil {
		t.Fatalf("QueryRow() error = %v", err)
	}
	if parent != "local:2" || value != "K" {
		t.Errorf("unit_2 has parent %q and value %q, want %q and %q", parent, value, "local:2", "K")
	}
}
