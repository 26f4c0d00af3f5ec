package template

import (
	"fmt"
	"slices"

	"github.com/FAU-CDI/metaextract/internal/extract"
)

// Candidate is an extracted value that may be mapped to a template node.
type Candidate struct {
	Key string

	// Fields holds the keys of a value made up of several fields.
	// It is nil for plain values.
	Fields []string
}

// Candidates lists the candidates of the given sections of data, in order.
//
// For tabular data, the candidates are the columns except for the id column.
// Otherwise every key of each section present in data is a candidate.
func Candidates(data *extract.Data, sections []string) ([]Candidate, error) {
	if slices.Contains(sections, extract.TableSection) {
		table, ok, err := data.Table()
		if err != nil {
			return nil, err
		}
		if ok {
			candidates := make([]Candidate, 0, len(table.Headers))
			for _, header := range table.Headers {
				if header == extract.IDColumn || header == "" {
					continue
				}
				candidates = append(candidates, Candidate{Key: header})
			}
			return candidates, nil
		}
	}

	var candidates []Candidate
	for _, name := range sections {
		section, ok := data.Section(name)
		if !ok || section == nil {
			continue
		}
		for pair := section.Oldest(); pair != nil; pair = pair.Next() {
			candidate := Candidate{Key: pair.Key}
			if fields, ok := pair.Value.(*extract.Section); ok {
				candidate.Fields = make([]string, 0, fields.Len())
				for field := fields.Oldest(); field != nil; field = field.Next() {
					candidate.Fields = append(candidate.Fields, field.Key)
				}
			}
			candidates = append(candidates, candidate)
		}
	}
	return candidates, nil
}

func (c Candidate) String() string {
	if c.Fields == nil {
		return c.Key
	}
	return fmt.Sprintf("%s %v", c.Key, c.Fields)
}
