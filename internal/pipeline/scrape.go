// Package pipeline runs the stages turning simulation files into metadata graphs.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/FAU-CDI/metaextract"
	"github.com/FAU-CDI/metaextract/internal/classes"
	"github.com/FAU-CDI/metaextract/internal/config"
	"github.com/FAU-CDI/metaextract/internal/jsonld"
	"github.com/FAU-CDI/metaextract/internal/owl"
	"github.com/FAU-CDI/metaextract/internal/status"
	"github.com/FAU-CDI/metaextract/internal/triplestore"
	"github.com/FAU-CDI/metaextract/pkg/jsonfile"
)

// cspell:words jsonld

// NeedsScrape checks if the class model or the context of folder are missing.
func NeedsScrape(folder string) bool {
	outputs := metaextract.OutputPaths(folder, "")
	return !jsonfile.Exists(outputs.Classes) || !jsonfile.Exists(outputs.Context)
}

// contextDocument is the on-disk form of a context.
type contextDocument struct {
	Context *jsonld.Context `json:"@context"`
}

// Scrape builds the class model of the configured ontology and writes it to folder.
// The context is fetched only when folder does not yet hold one.
//
// Nothing is written unless every stage succeeds.
func Scrape(ctx context.Context, cfg *config.Config, folder string, st *status.Status) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !owl.Supported(cfg.URL) {
		return owl.ErrUnsupportedFormat
	}

	outputs := metaextract.OutputPaths(folder, "")

	var jctx *jsonld.Context
	if !jsonfile.Exists(outputs.Context) {
		if err := st.DoStage(status.StageFetch, func() (err error) {
			jctx, err = FetchContext(ctx, cfg.ContextURL, st)
			return err
		}); err != nil {
			return err
		}
	}

	querier, err := owl.Open(ctx, cfg.URL, triplestore.NewEngine(cfg.Cache), st)
	if err != nil {
		return err
	}
	defer querier.Close()

	var model *classes.Model
	if err := st.DoStage(status.StageClasses, func() (err error) {
		model, err = classes.Build(querier)
		return err
	}); err != nil {
		return err
	}
	st.Log("built class model", "classes", model.Len())

	return st.DoStage(status.StageWrite, func() error {
		if jctx != nil {
			if err := jsonfile.Write(outputs.Context, contextDocument{Context: jctx}); err != nil {
				return err
			}
		}
		return jsonfile.Write(outputs.Classes, model)
	})
}

// FetchContext fetches and decodes the context document at location.
func FetchContext(ctx context.Context, location string, st *status.Status) (jctx *jsonld.Context, err error) {
	reader, size, err := owl.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil && err == nil {
			jctx, err = nil, fmt.Errorf("failed to close context: %w", cerr)
		}
	}()

	return jsonld.LoadContext(st.Reader(reader, size))
}

// Environment holds the artifacts shared by every source of a simulation folder.
type Environment struct {
	Folder  string
	Model   *classes.Model
	Context *jsonld.Context
}

var ErrNotScraped = errors.New("class model or context missing, scrape first")

// LoadEnvironment reads the class model and context of folder.
func LoadEnvironment(folder string) (*Environment, error) {
	if NeedsScrape(folder) {
		return nil, ErrNotScraped
	}
	outputs := metaextract.OutputPaths(folder, "")

	env := &Environment{Folder: folder, Model: classes.NewModel()}
	if err := jsonfile.Read(outputs.Classes, env.Model); err != nil {
		return nil, err
	}

	var doc contextDocument
	if err := jsonfile.Read(outputs.Context, &doc); err != nil {
		return nil, err
	}
	if doc.Context == nil {
		return nil, fmt.Errorf("%q: %w", outputs.Context, jsonld.ErrNoContext)
	}
	env.Context = doc.Context
	return env, nil
}
