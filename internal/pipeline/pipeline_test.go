package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/FAU-CDI/metaextract"
	"github.com/FAU-CDI/metaextract/internal/config"
	"github.com/FAU-CDI/metaextract/internal/owl"
	"github.com/FAU-CDI/metaextract/internal/status"
	"github.com/FAU-CDI/metaextract/internal/template"
	"github.com/FAU-CDI/metaextract/pkg/jsonfile"
)

const testContext = `{"@context": {"schema": "https://schema.org/", "name": "schema:name"}}`

// newServer serves the test ontology and context.
// When contextStatus is not 200, the context is answered with that status.
func newServer(t *testing.T, contextStatus int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/simulation.owl":
			http.ServeFile(w, r, filepath.Join("testdata", "simulation.owl"))
		case "/context.json":
			if contextStatus != http.StatusOK {
				w.WriteHeader(contextStatus)
				return
			}
			w.Header().Set("Content-Type", "application/ld+json")
			_, _ = w.Write([]byte(testContext))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(server *httptest.Server) *config.Config {
	return &config.Config{
		URL:        server.URL + "/simulation.owl",
		ContextURL: server.URL + "/context.json",
	}
}

// scraped returns a folder that has been scraped already.
func scraped(t *testing.T) *Environment {
	t.Helper()

	folder := t.TempDir()
	if err := Scrape(context.Background(), testConfig(newServer(t, http.StatusOK)), folder, nil); err != nil {
		t.Fatalf("Scrape() failed: %s", err)
	}
	env, err := LoadEnvironment(folder)
	if err != nil {
		t.Fatalf("LoadEnvironment() failed: %s", err)
	}
	return env
}

func TestScrape(t *testing.T) {
	env := scraped(t)

	if NeedsScrape(env.Folder) {
		t.Errorf("NeedsScrape() = true after scraping")
	}
	if got := env.Model.Labels(); len(got) != 3 || got[1] != "Simulation" {
		t.Errorf("Model.Labels() = %v", got)
	}
	if got := env.Context.Prefixes(); len(got) != 1 || got[0].Name != "schema" {
		t.Errorf("Context.Prefixes() = %v", got)
	}

	// an existing context is not fetched again
	broken := testConfig(newServer(t, http.StatusNotFound))
	if err := Scrape(context.Background(), broken, env.Folder, nil); err != nil {
		t.Errorf("Scrape() with existing context failed: %s", err)
	}
}

func TestScrape_Errors(t *testing.T) {
	t.Run("unsupported ontology", func(t *testing.T) {
		folder := t.TempDir()
		cfg := testConfig(newServer(t, http.StatusOK))
		cfg.URL += ".ttl"

		if err := Scrape(context.Background(), cfg, folder, nil); !errors.Is(err, owl.ErrUnsupportedFormat) {
			t.Errorf("Scrape() = %v, want ErrUnsupportedFormat", err)
		}
		if _, err := os.Stat(filepath.Join(folder, metaextract.OutputFolder)); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Scrape() created the output folder")
		}
	})

	t.Run("missing context", func(t *testing.T) {
		folder := t.TempDir()
		err := Scrape(context.Background(), testConfig(newServer(t, http.StatusNotFound)), folder, status.New(nil, false))

		var se *status.StageError
		if !errors.As(err, &se) || se.Stage != status.StageFetch {
			t.Errorf("Scrape() = %v, want error in fetch stage", err)
		}
		if jsonfile.Exists(metaextract.OutputPaths(folder, "").Classes) {
			t.Errorf("Scrape() wrote classes after failing")
		}
	})

	t.Run("not scraped", func(t *testing.T) {
		if _, err := LoadEnvironment(t.TempDir()); !errors.Is(err, ErrNotScraped) {
			t.Errorf("LoadEnvironment() = %v, want ErrNotScraped", err)
		}
	})
}

func writeSource(t *testing.T, folder, name, content string) metaextract.Source {
	t.Helper()

	path := filepath.Join(folder, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	sources, err := metaextract.FindSources(folder)
	if err != nil {
		t.Fatal(err)
	}
	for _, source := range sources {
		if source.Path == path {
			return source
		}
	}
	t.Fatalf("source %q not found", path)
	return metaextract.Source{}
}

func graphJSON(t *testing.T, result *Result) string {
	t.Helper()

	data, err := json.Marshal(result.Document.Graph)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestProcess_Table(t *testing.T) {
	env := scraped(t)
	source := writeSource(t, env.Folder, "run.csv", "id,duration,code\n1,10,GROMACS\n2,20,LAMMPS\n")

	script := template.NewScript(
		"2", "1", "y", // duration: Simulation, has duration
		"0", // skip code
		"n", // no new nodes
		"n", // no extra properties
	)
	opts := Options{Sections: []string{"csv_dict"}, Decisions: script}

	result, err := Process(env, source, opts, nil)
	if err != nil {
		t.Fatalf("Process() failed: %s", err)
	}
	if script.Remaining() != 0 {
		t.Errorf("Process() left %d decisions", script.Remaining())
	}

	const want = `[` +
		`{"@id":"local:1","@type":"record","data":[{"@id":"local:duration_1","@type":"simulation","label":"duration","has duration":"10"}]},` +
		`{"@id":"local:2","@type":"record","data":[{"@id":"local:duration_2","@type":"simulation","label":"duration","has duration":"20"}]}` +
		`]`
	if got := graphJSON(t, result); got != want {
		t.Errorf("Process() graph = %s, want %s", got, want)
	}

	outputs := metaextract.OutputPaths(env.Folder, "run")
	for _, path := range []string{outputs.Template, outputs.Extract, outputs.Metadata, outputs.JSONLD} {
		if !jsonfile.Exists(path) {
			t.Errorf("Process() did not write %q", path)
		}
	}

	first, err := os.ReadFile(outputs.JSONLD)
	if err != nil {
		t.Fatal(err)
	}

	// the second run reuses the template
	opts.Decisions = nil
	if _, err := Process(env, source, opts, nil); err != nil {
		t.Fatalf("Process() with existing template failed: %s", err)
	}
	second, err := os.ReadFile(outputs.JSONLD)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("Process() is not idempotent:\n%s\n%s", first, second)
	}

	doc, err := LoadDocument(outputs.JSONLD)
	if err != nil {
		t.Fatalf("LoadDocument() failed: %s", err)
	}
	if _, parent, ok := doc.Find("local:duration_2"); !ok || parent == nil {
		t.Errorf("LoadDocument() lost nested data nodes")
	}
}

func TestProcess_Extracted(t *testing.T) {
	env := scraped(t)
	source := writeSource(t, env.Folder, "run.json", `{"variables": {"duration": "10"}, "global_attributes": {"title": "run 1"}}`)

	tpl := `{"duration: Simulation": {"has duration": "#Value"}, "title: Software": {"name": "#Value", "uses software": "@0"}}`
	if err := os.WriteFile(metaextract.OutputPaths(env.Folder, "").Template, []byte(tpl), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Process(env, source, Options{Sections: config.Formats["netcdf"]}, nil)
	if err != nil {
		t.Fatalf("Process() failed: %s", err)
	}

	const want = `[` +
		`{"@id":"local:simulation_duration_1","@type":"simulation","label":"duration","has duration":"10"},` +
		`{"@id":"local:software_title_1","@type":"software","label":"title","name":"run 1","uses software":"local:simulation_duration_1"}` +
		`]`
	if got := graphJSON(t, result); got != want {
		t.Errorf("Process() graph = %s, want %s", got, want)
	}
}

func TestProcess_Errors(t *testing.T) {
	t.Run("no template", func(t *testing.T) {
		env := scraped(t)
		source := writeSource(t, env.Folder, "run.csv", "id,duration\n1,10\n")

		_, err := Process(env, source, Options{Sections: []string{"csv_dict"}}, nil)
		if !errors.Is(err, ErrNoTemplate) {
			t.Errorf("Process() = %v, want ErrNoTemplate", err)
		}
	})

	t.Run("dangling reference", func(t *testing.T) {
		env := scraped(t)
		source := writeSource(t, env.Folder, "run.json", `{"variables": {"duration": "10"}}`)
		outputs := metaextract.OutputPaths(env.Folder, "run")

		// stale artifacts of a previous run
		for _, path := range []string{outputs.Metadata, outputs.JSONLD} {
			if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
				t.Fatal(err)
			}
		}

		tpl := `{"duration: Simulation": {"has duration": "#Value", "uses software": "@4"}}`
		if err := os.WriteFile(outputs.Template, []byte(tpl), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := Process(env, source, Options{Sections: []string{"variables"}}, nil)

		var se *status.StageError
		if !errors.As(err, &se) || se.Stage != status.StageTemplate || !errors.Is(err, template.ErrDanglingReference) {
			t.Errorf("Process() = %v, want dangling reference in template stage", err)
		}
		for _, path := range []string{outputs.Metadata, outputs.JSONLD} {
			if jsonfile.Exists(path) {
				t.Errorf("Process() left %q behind", path)
			}
		}
	})

	t.Run("unknown class", func(t *testing.T) {
		env := scraped(t)
		source := writeSource(t, env.Folder, "run.json", `{"variables": {"duration": "10"}}`)

		tpl := `{"duration: Experiment": {"has duration": "#Value"}}`
		if err := os.WriteFile(metaextract.OutputPaths(env.Folder, "").Template, []byte(tpl), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := Process(env, source, Options{Sections: []string{"variables"}}, nil); !errors.Is(err, template.ErrUnknownClass) {
			t.Errorf("Process() = %v, want ErrUnknownClass", err)
		}
	})
}
