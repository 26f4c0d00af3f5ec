package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/FAU-CDI/metaextract"
	"github.com/FAU-CDI/metaextract/internal/config"
	"github.com/FAU-CDI/metaextract/internal/pipeline"
	"github.com/FAU-CDI/metaextract/internal/status"
	"github.com/FAU-CDI/metaextract/internal/template"
	"github.com/FAU-CDI/metaextract/pkg/jsonfile"
	"github.com/spf13/cobra"
)

func (a *app) scrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape FOLDER",
		Short: "Build the class model of the ontology and fetch the context if it is missing",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, _ := a.loadConfig(args[0])
			a.scrape(cmd.Context(), cfg, args[0])
			a.st.Log("finished", "took", a.st.Diff())
		},
	}
}

func (a *app) scrape(ctx context.Context, cfg *config.Config, folder string) {
	if err := pipeline.Scrape(ctx, cfg, folder, a.st); err != nil {
		a.st.LogFatal("scrape", err, "ontology", cfg.URL)
	}
}

// environment loads the environment of folder, scraping first if needed.
func (a *app) environment(ctx context.Context, cfg *config.Config, folder string) *pipeline.Environment {
	if pipeline.NeedsScrape(folder) {
		a.scrape(ctx, cfg, folder)
	}

	env, err := pipeline.LoadEnvironment(folder)
	if err != nil {
		a.st.LogFatal("load environment", err, "folder", folder)
	}
	return env
}

func (a *app) extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract FOLDER",
		Short: "Write the extracted data of every source without resolving it",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			folder := args[0]
			_, configPath := a.loadConfig(folder)

			for _, source := range a.sources(folder, configPath) {
				err := a.st.DoStage(status.StageExtract, func() error {
					data, err := pipeline.Extract(source, a.sheet)
					if err != nil {
						return err
					}
					return jsonfile.Write(metaextract.OutputPaths(folder, source.Name).Extract, data)
				})
				if err != nil {
					a.st.LogFatal("extract", err, "file", source.Path)
				}
			}
		},
	}
}

var errTemplateExists = errors.New("template already exists, pass --force to replace it")

func (a *app) templateCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "template FOLDER [NAME]",
		Short: "Interactively author the mapping template from a source",
		Long: `Interactively author the mapping template from a source.

The source is selected by NAME, the name of its file without extension.
When NAME is omitted, the first source of FOLDER is used.`,
		Args: cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			folder := args[0]
			cfg, configPath := a.loadConfig(folder)

			path := metaextract.OutputPaths(folder, "").Template
			if jsonfile.Exists(path) {
				if !force {
					a.st.LogFatal("template", errTemplateExists, "path", path)
				}
				if err := os.Remove(path); err != nil {
					a.st.LogFatal("template", err, "path", path)
				}
			}

			sources := a.sources(folder, configPath)
			source := sources[0]
			if len(args) == 2 {
				source = findSource(sources, args[1])
				if source.Path == "" {
					a.st.LogFatal("template", fmt.Errorf("%w: %q", errNoSources, args[1]))
				}
			}

			env := a.environment(cmd.Context(), cfg, folder)

			data, err := pipeline.Extract(source, a.sheet)
			if err != nil {
				a.st.LogFatal("extract", err, "file", source.Path)
			}

			err = a.st.DoStage(status.StageTemplate, func() error {
				_, err := pipeline.LoadTemplate(env, data, pipeline.Options{
					Sections:  a.targetSections(cfg),
					Decisions: template.NewLines(cmd.InOrStdin(), cmd.OutOrStdout()),
					Menu:      cmd.OutOrStdout(),
				})
				return err
			})
			if err != nil {
				a.st.LogFatal("template", err, "file", source.Path)
			}
			a.st.Log("created template", "path", path)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing template")
	return cmd
}

func findSource(sources []metaextract.Source, name string) metaextract.Source {
	for _, source := range sources {
		if source.Name == name {
			return source
		}
	}
	return metaextract.Source{}
}

var errFailedSources = errors.New("some sources could not be processed")

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run FOLDER",
		Short: "Turn every source of FOLDER into a metadata graph, scraping first if needed",
		Long: `Turn every source of FOLDER into a metadata graph, scraping first if needed.

When no template exists yet, it is authored interactively from the first source
and reused for all others. A source that fails is reported and skipped.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			folder := args[0]
			cfg, configPath := a.loadConfig(folder)
			sources := a.sources(folder, configPath)

			env := a.environment(cmd.Context(), cfg, folder)
			opts := pipeline.Options{
				Sections:  a.targetSections(cfg),
				Decisions: template.NewLines(cmd.InOrStdin(), cmd.OutOrStdout()),
				Menu:      cmd.OutOrStdout(),
				Sheet:     a.sheet,
			}

			var failed int
			for _, source := range sources {
				if _, err := pipeline.Process(env, source, opts, a.st); err != nil {
					a.st.LogError("process", err, "file", source.Path)
					failed++
				}
			}
			if failed > 0 {
				a.st.LogFatal("run", errFailedSources, "failed", failed, "total", len(sources))
			}
			a.st.Log("finished", "sources", len(sources), "took", a.st.Diff())
		},
	}
}
