package metaextract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindSources(t *testing.T) {
	folder := t.TempDir()
	for _, name := range []string{
		"a.csv",
		"b.run.xlsx",
		".hidden.csv",
		"notes.txt",
		"sub/run.json",
		"__output__/extract_a.json",
		".git/config.json",
	} {
		path := filepath.Join(folder, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindSources(folder)
	if err != nil {
		t.Fatalf("FindSources() error = %v", err)
	}

	want := []Source{
		{Path: filepath.Join(folder, "a.csv"), Name: "a", Kind: KindCSV},
		{Path: filepath.Join(folder, "b.run.xlsx"), Name: "b", Kind: KindXLSX},
		{Path: filepath.Join(folder, "sub", "run.json"), Name: "run", Kind: KindJSON},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FindSources() mismatch (-want +got):\n%s", diff)
	}

	if _, err := FindSources(filepath.Join(folder, "a.csv")); err == nil {
		t.Error("FindSources() on a file did not fail")
	}
}

func TestOutputPaths(t *testing.T) {
	got := OutputPaths("sim", "run")
	want := Outputs{
		Folder:   filepath.Join("sim", "__output__"),
		Classes:  filepath.Join("sim", "__output__", "classes.json"),
		Context:  filepath.Join("sim", "__output__", "context.json"),
		Template: filepath.Join("sim", "__output__", "template.json"),
		Extract:  filepath.Join("sim", "__output__", "extract_run.json"),
		Metadata: filepath.Join("sim", "__output__", "metadata_run.json"),
		JSONLD:   filepath.Join("sim", "__output__", "metadata_run.jsonld"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("OutputPaths() mismatch (-want +got):\n%s", diff)
	}
}
