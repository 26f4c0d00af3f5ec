package metaextract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// cspell:words doublestar jsonld

// OutputFolder is the name of the folder inside a simulation folder that receives all artifacts.
const OutputFolder = "__output__"

// Kind is the kind of a source file.
type Kind string

const (
	KindCSV  Kind = "csv"  // comma-separated values, extracted on the fly
	KindXLSX Kind = "xlsx" // spreadsheet, extracted on the fly
	KindJSON Kind = "json" // data extracted by an external tool
)

// SourcePattern matches all files that can be processed.
const SourcePattern = "**/*.{csv,xlsx,json}"

// Source is a single file inside a simulation folder.
type Source struct {
	Path string // full path to the file
	Name string // name used for artifacts
	Kind Kind
}

var errNotAFolder = errors.New("not a folder")

// FindSources finds all sources inside folder, ordered by path.
// Hidden files and the output folder are skipped.
// FindSources does not guarantee that sources are loadable.
func FindSources(folder string) ([]Source, error) {
	isDir, err := isDirectory(folder)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, fmt.Errorf("%q: %w", folder, errNotAFolder)
	}

	matches, err := doublestar.Glob(os.DirFS(folder), SourcePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", folder, err)
	}
	slices.Sort(matches)

	var sources []Source
	for _, match := range matches {
		if skipped(match) {
			continue
		}

		base := filepath.Base(match)
		name, _, _ := strings.Cut(base, ".")
		sources = append(sources, Source{
			Path: filepath.Join(folder, filepath.FromSlash(match)),
			Name: name,
			Kind: Kind(strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))),
		})
	}
	return sources, nil
}

// skipped checks if a matched path is inside the output folder or hidden.
func skipped(match string) bool {
	for _, part := range strings.Split(match, "/") {
		if part == OutputFolder || strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Outputs holds the paths of all artifacts inside a simulation folder.
type Outputs struct {
	Folder string

	Classes  string
	Context  string
	Template string

	Extract  string // extracted data of a single source
	Metadata string // resolved metadata of a single source
	JSONLD   string // graph of a single source
}

// OutputPaths returns the artifact paths for the source with the given name inside folder.
// If name is empty, only the shared artifacts are set.
func OutputPaths(folder, name string) Outputs {
	output := filepath.Join(folder, OutputFolder)

	outputs := Outputs{
		Folder:   output,
		Classes:  filepath.Join(output, "classes.json"),
		Context:  filepath.Join(output, "context.json"),
		Template: filepath.Join(output, "template.json"),
	}
	if name != "" {
		outputs.Extract = filepath.Join(output, "extract_"+name+".json")
		outputs.Metadata = filepath.Join(output, "metadata_"+name+".json")
		outputs.JSONLD = filepath.Join(output, "metadata_"+name+".jsonld")
	}
	return outputs
}

func isDirectory(path string) (ok bool, err error) {
	stats, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return stats.Mode().IsDir(), nil
}

// IsFile checks if path is a regular file.
func IsFile(path string) (ok bool, err error) {
	stats, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stats.Mode().IsRegular(), nil
}
