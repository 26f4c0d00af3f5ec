// Command metaextract turns simulation files into JSON-LD metadata graphs.
package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/FAU-CDI/metaextract"
	"github.com/FAU-CDI/metaextract/internal/config"
	"github.com/FAU-CDI/metaextract/internal/status"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// cspell:words jsonld

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// configNames are the configuration files looked for inside a simulation folder.
var configNames = []string{"config.yaml", "config.yml", "config.json"}

// app holds the global flags shared by all commands.
type app struct {
	configPath string
	url        string
	contextURL string
	format     string
	sections   []string
	cache      string
	sheet      string

	debug        bool
	debugProfile string

	st      *status.Status
	profile interface{ Stop() }
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "metaextract",
		Short: "Turn simulation files into JSON-LD metadata graphs",
		Long: `metaextract maps the data extracted from simulation files onto the classes of an ontology.

Each simulation folder receives an __output__ folder holding the class model of the ontology,
the JSON-LD context, the mapping template and, per source file, the extracted data,
the resolved metadata and the metadata graph.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.st = status.New(os.Stderr, a.debug)
			if a.debugProfile != "" {
				a.profile = profile.Start(profile.ProfilePath(a.debugProfile), profile.Quiet)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.profile != nil {
				a.profile.Stop()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "configuration file, defaults to config.{yaml,yml,json} inside the simulation folder")
	flags.StringVar(&a.url, "url", "", "location of the ontology, overrides the configuration")
	flags.StringVar(&a.contextURL, "context-url", "", "location of the JSON-LD context, overrides the configuration")
	flags.StringVar(&a.format, "format", "", "format of extracted data, one of csv, netcdf, gromacs or opendihu")
	flags.StringSliceVar(&a.sections, "sections", nil, "sections of extracted data to use, overrides the format")
	flags.StringVar(&a.cache, "cache", "", "while indexing the ontology, cache data in the given directory as opposed to memory")
	flags.StringVar(&a.sheet, "sheet", "", "sheet to read from spreadsheets, defaults to the first")
	flags.BoolVar(&a.debug, "debug", false, "log debug messages")
	flags.StringVar(&a.debugProfile, "debug-profile", "", "write a cpu profile to the given directory")

	cmd.AddCommand(
		a.scrapeCmd(),
		a.extractCmd(),
		a.templateCmd(),
		a.runCmd(),
		a.exportCmd(),
		a.serveCmd(),
	)
	return cmd
}

// loadConfig loads the configuration for folder and applies any flags overriding it.
// It also returns the path of the configuration file, if any.
func (a *app) loadConfig(folder string) (*config.Config, string) {
	path := a.configPath
	if path == "" {
		for _, name := range configNames {
			candidate := filepath.Join(folder, name)
			if ok, _ := metaextract.IsFile(candidate); ok {
				path = candidate
				break
			}
		}
	}

	cfg := &config.Config{}
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			a.st.LogFatal("load config", err, "path", path)
		}
		a.st.LogDebug("loaded config", "path", path)
	}

	if a.url != "" {
		cfg.URL = a.url
	}
	if a.contextURL != "" {
		cfg.ContextURL = a.contextURL
	}
	if a.format != "" {
		cfg.Format = a.format
	}
	if len(a.sections) > 0 {
		cfg.Sections = a.sections
	}
	if a.cache != "" {
		cfg.Cache = a.cache
	}
	return cfg, path
}

// targetSections returns the sections of extracted data selected by cfg.
func (a *app) targetSections(cfg *config.Config) []string {
	sections, err := cfg.TargetSections()
	if err != nil {
		a.st.LogFatal("target sections", err)
	}
	return sections
}

var errNoSources = errors.New("no sources found")

// sources finds the sources of folder, skipping the configuration file.
func (a *app) sources(folder, configPath string) []metaextract.Source {
	sources, err := metaextract.FindSources(folder)
	if err != nil {
		a.st.LogFatal("find sources", err, "folder", folder)
	}

	skip, _ := filepath.Abs(configPath)
	filtered := sources[:0]
	for _, source := range sources {
		if path, _ := filepath.Abs(source.Path); configPath != "" && path == skip {
			continue
		}
		filtered = append(filtered, source)
	}

	if len(filtered) == 0 {
		a.st.LogFatal("find sources", errNoSources, "folder", folder)
	}
	return filtered
}
