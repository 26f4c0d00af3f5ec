// Package config loads the configuration of metaextract.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/FAU-CDI/metaextract/internal/extract"
	"gopkg.in/yaml.v3"
)

// cspell:words netcdf gromacs opendihu

// Config configures where ontology and context come from and how sources are processed.
type Config struct {
	URL        string   // location of the ontology, must end in .owl or .xml
	ContextURL string   // location of the JSON-LD context document
	Format     string   // format of extracted data, see [Formats]
	Sections   []string // sections of extracted data to use, overrides Format
	Cache      string   // directory to cache the ontology index in, empty for memory
}

// Formats maps formats of extracted data to the sections they provide, in lookup order.
var Formats = map[string][]string{
	"csv":      {extract.TableSection},
	"netcdf":   {"dimensions", "variables", "global_attributes"},
	"gromacs":  {"variables", "global_attributes", "log_data", "job_data"},
	"opendihu": {"variables"},
}

// DefaultFormat is used when no format is configured.
const DefaultFormat = "csv"

var (
	ErrNoURL         = errors.New("no ontology url configured")
	ErrNoContextURL  = errors.New("no context url configured")
	ErrUnknownFormat = errors.New("unknown format")
)

// file is the on-disk representation of a config.
// Both spellings of the url keys are accepted.
type file struct {
	URL             string   `yaml:"url"`
	URLUpper        string   `yaml:"URL"`
	ContextURL      string   `yaml:"context_url"`
	ContextURLUpper string   `yaml:"context_URL"`
	Format          string   `yaml:"format"`
	Sections        []string `yaml:"sections"`
	Cache           string   `yaml:"cache"`
}

// Decode reads a configuration from r.
// Because json is a subset of yaml, both are accepted.
func Decode(r io.Reader) (*Config, error) {
	var f file
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	config := &Config{
		URL:        first(f.URL, f.URLUpper),
		ContextURL: first(f.ContextURL, f.ContextURLUpper),
		Format:     f.Format,
		Sections:   f.Sections,
		Cache:      f.Cache,
	}
	return config, nil
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

func first(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// TargetSections returns the sections of extracted data to use.
func (config *Config) TargetSections() ([]string, error) {
	if len(config.Sections) > 0 {
		return slices.Clone(config.Sections), nil
	}

	format := config.Format
	if format == "" {
		format = DefaultFormat
	}
	sections, ok := Formats[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return slices.Clone(sections), nil
}

// Validate checks that config can be used to scrape an ontology.
func (config *Config) Validate() error {
	var errs []error
	if config.URL == "" {
		errs = append(errs, ErrNoURL)
	}
	if config.ContextURL == "" {
		errs = append(errs, ErrNoContextURL)
	}
	if _, err := config.TargetSections(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
