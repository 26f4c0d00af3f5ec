package metadata

import (
	"slices"
	"strings"

	"github.com/FAU-CDI/metaextract/internal/extract"
	"github.com/FAU-CDI/metaextract/internal/template"
)

// Resolve resolves a template against the given sections of data.
//
// For each node, the first section containing its source key provides the extracted value.
// When that value has several fields, each property takes the field of the same name.
// "#Value" assignments take the extracted value and are dropped when there is none;
// every other assignment is kept as authored.
//
// For tabular data the source keys are columns, which are only known per row.
// Placeholders are then kept for the graph builder to substitute.
func Resolve(tpl *template.Template, data *extract.Data, sections []string) (*Metadata, error) {
	_, tabular := data.Section(extract.TableSection)
	tabular = tabular && slices.Contains(sections, extract.TableSection)

	md := New()
	for raw, props := range tpl.All() {
		key, err := template.ParseNodeKey(raw)
		if err != nil {
			return nil, err
		}

		value, found := data.Lookup(sections, key.Source)

		node := NewProperties()
		for pair := props.Oldest(); pair != nil; pair = pair.Next() {
			name, a := pair.Key, pair.Value

			if a.Kind != template.SourceValue {
				node.Set(name, Authored(a))
				continue
			}

			if !found {
				if tabular {
					node.Set(name, Authored(a))
				}
				continue
			}

			if extracted := field(value, name); extracted != nil {
				node.Set(name, Extracted(extracted))
			}
		}
		md.Set(raw, node)
	}
	return md, nil
}

// field returns the named field of value, or value itself when it has no fields.
// Lists of strings are joined.
func field(value any, name string) any {
	if section, ok := value.(*extract.Section); ok {
		value, _ = section.Get(name)
	}

	list, ok := value.([]any)
	if !ok {
		return value
	}

	var builder strings.Builder
	for _, item := range list {
		text, ok := item.(string)
		if !ok {
			return value
		}
		builder.WriteString(text)
	}
	return builder.String()
}
