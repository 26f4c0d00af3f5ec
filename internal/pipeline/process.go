package pipeline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"github.com/FAU-CDI/metaextract"
	"github.com/FAU-CDI/metaextract/internal/extract"
	"github.com/FAU-CDI/metaextract/internal/jsonld"
	"github.com/FAU-CDI/metaextract/internal/metadata"
	"github.com/FAU-CDI/metaextract/internal/status"
	"github.com/FAU-CDI/metaextract/internal/template"
	"github.com/FAU-CDI/metaextract/pkg/jsonfile"
)

// Options configure how a single source is processed.
type Options struct {
	// Sections are the sections of extracted data to use, in lookup order.
	Sections []string

	// Decisions answer the prompts when a template has to be authored.
	// When nil, a template must already exist.
	Decisions template.Decisions

	// Menu receives the menus shown while authoring, may be nil.
	Menu io.Writer

	// Sheet is the sheet read from spreadsheets, empty for the first one.
	Sheet string
}

// Result holds everything produced for a single source.
type Result struct {
	Data     *extract.Data
	Template *template.Template
	Metadata *metadata.Metadata
	Document *jsonld.Document
}

var (
	ErrNoTemplate     = errors.New("no template exists and no decisions were provided")
	ErrUnknownKind    = errors.New("unknown source kind")
	errEmptyExtracted = errors.New("extracted data is empty")
)

// Process extracts, resolves and builds the graph of source.
//
// Previous metadata artifacts of source are removed first.
// A newly authored template is written as soon as it is valid, all other artifacts only once every stage succeeded.
func Process(env *Environment, source metaextract.Source, opts Options, st *status.Status) (*Result, error) {
	outputs := metaextract.OutputPaths(env.Folder, source.Name)
	if err := removeStale(outputs.Metadata, outputs.JSONLD); err != nil {
		return nil, err
	}

	var result Result

	if err := st.DoStage(status.StageExtract, func() (err error) {
		result.Data, err = Extract(source, opts.Sheet)
		return err
	}); err != nil {
		return nil, err
	}

	if err := st.DoStage(status.StageTemplate, func() (err error) {
		result.Template, err = LoadTemplate(env, result.Data, opts)
		return err
	}); err != nil {
		return nil, err
	}

	if err := st.DoStage(status.StageResolve, func() (err error) {
		result.Metadata, err = metadata.Resolve(result.Template, result.Data, opts.Sections)
		return err
	}); err != nil {
		return nil, err
	}

	if err := st.DoStage(status.StageJSONLD, func() error {
		var table *extract.Table
		if slices.Contains(opts.Sections, extract.TableSection) {
			t, ok, err := result.Data.Table()
			if err != nil {
				return err
			}
			if ok {
				table = t
			}
		}

		doc, err := jsonld.Build(result.Metadata, env.Context, table)
		if err != nil {
			return err
		}
		result.Document = doc
		return nil
	}); err != nil {
		return nil, err
	}

	if err := st.DoStage(status.StageWrite, func() error {
		if err := jsonfile.Write(outputs.Extract, result.Data); err != nil {
			return err
		}
		if err := jsonfile.Write(outputs.Metadata, result.Metadata); err != nil {
			return err
		}
		return jsonfile.Write(outputs.JSONLD, result.Document)
	}); err != nil {
		return nil, err
	}

	st.Log("processed source", "source", source.Path, "nodes", len(result.Document.Graph), "output", outputs.JSONLD)
	return &result, nil
}

// Extract reads the extracted data of source.
// Tables are read from csv and xlsx files; json files hold data extracted by other tools.
func Extract(source metaextract.Source, sheet string) (data *extract.Data, err error) {
	file, err := os.Open(source.Path) // #nosec G304 -- explicit parameter
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			data, err = nil, fmt.Errorf("failed to close %q: %w", source.Path, cerr)
		}
	}()

	var table *extract.Table
	switch source.Kind {
	case metaextract.KindCSV:
		table, err = extract.CSV(file)
	case metaextract.KindXLSX:
		table, err = extract.XLSX(file, sheet)
	case metaextract.KindJSON:
		bytes, err := io.ReadAll(file)
		if err != nil {
			return nil, err
		}
		data = extract.NewData()
		if err := data.UnmarshalJSON(bytes); err != nil {
			return nil, err
		}
		if len(data.Sections()) == 0 {
			return nil, errEmptyExtracted
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, source.Kind)
	}
	if err != nil {
		return nil, err
	}
	return table.Data(), nil
}

// LoadTemplate reads the template of env, or authors and writes a new one from data if it does not exist.
// The template is validated against the class model of env.
func LoadTemplate(env *Environment, data *extract.Data, opts Options) (*template.Template, error) {
	path := metaextract.OutputPaths(env.Folder, "").Template
	if jsonfile.Exists(path) {
		tpl := template.New()
		if err := jsonfile.Read(path, tpl); err != nil {
			return nil, err
		}
		if err := tpl.Validate(env.Model); err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
		return tpl, nil
	}

	if opts.Decisions == nil {
		return nil, ErrNoTemplate
	}

	candidates, err := template.Candidates(data, opts.Sections)
	if err != nil {
		return nil, err
	}

	tpl, err := template.Author(template.Session{
		Model:     env.Model,
		Prefixes:  env.Context.Prefixes(),
		Decisions: opts.Decisions,
		Menu:      opts.Menu,
	}, candidates)
	if err != nil {
		return nil, err
	}
	if err := tpl.Validate(env.Model); err != nil {
		return nil, err
	}

	if err := jsonfile.Write(path, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// removeStale removes the files at paths, ignoring files that do not exist.
func removeStale(paths ...string) error {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %q: %w", path, err)
		}
	}
	return nil
}

// LoadDocument reads a graph written by [Process].
func LoadDocument(path string) (*jsonld.Document, error) {
	var doc jsonld.Document
	if err := jsonfile.Read(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
