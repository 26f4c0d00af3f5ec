package viewer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FAU-CDI/metaextract"
	"github.com/google/go-cmp/cmp"
)

// testFolder creates a simulation folder holding a single graph.
func testFolder(t *testing.T) string {
	t.Helper()

	folder := t.TempDir()
	outputs := metaextract.OutputPaths(folder, "run")
	if err := os.MkdirAll(outputs.Folder, 0o755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		outputs.Classes: `{"Simulation": {"is in domain of": {"has duration": "data property"}}, "Software": {}}`,
		outputs.Context: `{"@context": {"schema": "https://schema.org/"}}`,
		outputs.JSONLD: `{"@context": {"schema": "https://schema.org/", "local": "https://local-domain.org/"}, "@graph": [` +
			`{"@id": "local:1", "@type": "record", "data": [{"@id": "local:duration_1", "@type": "simulation", "label": "duration", "has duration": "10"}]}` +
			`]}`,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return folder
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var value T
	if err := json.Unmarshal(rec.Body.Bytes(), &value); err != nil {
		t.Fatalf("failed to decode %q: %s", rec.Body.String(), err)
	}
	return value
}

func TestViewer_NotReady(t *testing.T) {
	viewer := &Viewer{Folder: t.TempDir()}

	rec := get(t, viewer, "/api/v1")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /api/v1 = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if msg := decode[map[string]any](t, rec); msg["message"] != viewerNotReady {
		t.Errorf("GET /api/v1 message = %v", msg["message"])
	}

	if rec := get(t, viewer, "/"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET / = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	if err := viewer.Load(); err == nil {
		t.Errorf("Load() of an empty folder did not fail")
	}
}

func TestViewer(t *testing.T) {
	viewer := &Viewer{Folder: testFolder(t)}
	if err := viewer.Load(); err != nil {
		t.Fatalf("Load() failed: %s", err)
	}

	t.Run("index", func(t *testing.T) {
		rec := get(t, viewer, "/api/v1")
		want := Index{Classes: 2, Graphs: []string{"run"}}
		if diff := cmp.Diff(want, decode[Index](t, rec)); diff != "" {
			t.Errorf("GET /api/v1 mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("classes", func(t *testing.T) {
		rec := get(t, viewer, "/api/v1/classes")
		want := []string{"Simulation", "Software"}
		if diff := cmp.Diff(want, decode[[]string](t, rec)); diff != "" {
			t.Errorf("GET /api/v1/classes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("class", func(t *testing.T) {
		rec := get(t, viewer, "/api/v1/classes/Simulation")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"has duration": "data property"`) {
			t.Errorf("GET /api/v1/classes/Simulation = %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("graph", func(t *testing.T) {
		rec := get(t, viewer, "/api/v1/graphs/run")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /api/v1/graphs/run = %d", rec.Code)
		}
		doc := decode[map[string]any](t, rec)
		if graph, ok := doc["@graph"].([]any); !ok || len(graph) != 1 {
			t.Errorf("GET /api/v1/graphs/run @graph = %v", doc["@graph"])
		}
	})

	t.Run("node", func(t *testing.T) {
		rec := get(t, viewer, "/api/v1/graphs/run/node?id=local:duration_1")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET node = %d", rec.Code)
		}

		var info struct {
			Graph  string         `json:"graph"`
			Parent string         `json:"parent"`
			Node   map[string]any `json:"node"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
			t.Fatal(err)
		}
		if info.Graph != "run" || info.Parent != "local:1" || info.Node["has duration"] != "10" {
			t.Errorf("GET node = %+v", info)
		}
	})

	t.Run("html", func(t *testing.T) {
		rec := get(t, viewer, "/")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `href="/api/v1/graphs/run"`) {
			t.Errorf("GET / = %d %s", rec.Code, rec.Body.String())
		}
	})

	for _, target := range []string{
		"/api/v1/classes/Unknown",
		"/api/v1/graphs/missing",
		"/api/v1/graphs/run/node?id=local:missing",
		"/unknown",
	} {
		if rec := get(t, viewer, target); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want %d", target, rec.Code, http.StatusNotFound)
		}
	}
}

func TestViewer_Files(t *testing.T) {
	folder := testFolder(t)

	// files that are not graphs are ignored
	if err := os.WriteFile(filepath.Join(folder, metaextract.OutputFolder, "metadata_run.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	viewer := &Viewer{Folder: folder}
	if err := viewer.Load(); err != nil {
		t.Fatalf("Load() failed: %s", err)
	}
	if got := viewer.getGraphNames(); len(got) != 1 || got[0] != "run" {
		t.Errorf("Load() graphs = %v", got)
	}
}
