// Package extract holds extracted data documents and tabular extractors producing them.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Section maps raw keys to extracted values.
//
// Values are json values: nil, bool, json.Number, string, []any or *Section for nested mappings.
type Section = orderedmap.OrderedMap[string, any]

// NewSection returns a new empty section.
func NewSection() *Section {
	return orderedmap.New[string, any]()
}

// Data is an extracted data document.
// It maps section names to sections, in document order.
type Data struct {
	sections *orderedmap.OrderedMap[string, *Section]
}

// NewData returns a new empty document.
func NewData() *Data {
	return &Data{sections: orderedmap.New[string, *Section]()}
}

// Section returns the section with the given name.
func (data *Data) Section(name string) (*Section, bool) {
	if data == nil || data.sections == nil {
		return nil, false
	}
	return data.sections.Get(name)
}

// SetSection sets the section with the given name.
func (data *Data) SetSection(name string, section *Section) {
	if data.sections == nil {
		data.sections = orderedmap.New[string, *Section]()
	}
	data.sections.Set(name, section)
}

// Sections returns the names of all sections, in document order.
func (data *Data) Sections() []string {
	if data == nil || data.sections == nil {
		return nil
	}
	names := make([]string, 0, data.sections.Len())
	for pair := data.sections.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Lookup searches the given sections in order for key, and returns the value of the first match.
// Sections missing from the document are skipped.
func (data *Data) Lookup(sections []string, key string) (value any, ok bool) {
	for _, name := range sections {
		section, found := data.Section(name)
		if !found || section == nil {
			continue
		}
		if value, ok := section.Get(key); ok {
			return value, true
		}
	}
	return nil, false
}

func (data *Data) MarshalJSON() ([]byte, error) {
	if data == nil || data.sections == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(data.sections)
}

var errNotAnObject = errors.New("extracted data must be a json object of objects")

func (data *Data) UnmarshalJSON(raw []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	value, err := decodeValue(decoder)
	if err != nil {
		return fmt.Errorf("failed to decode extracted data: %w", err)
	}

	top, ok := value.(*Section)
	if !ok {
		return errNotAnObject
	}

	data.sections = orderedmap.New[string, *Section]()
	for pair := top.Oldest(); pair != nil; pair = pair.Next() {
		section, ok := pair.Value.(*Section)
		if !ok {
			return fmt.Errorf("section %q: %w", pair.Key, errNotAnObject)
		}
		data.sections.Set(pair.Key, section)
	}
	return nil
}

// Decode decodes a single json value from r, keeping the order of object keys.
// Objects are decoded as *Section, numbers as json.Number.
func Decode(r io.Reader) (any, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	return decodeValue(decoder)
}

func decodeValue(decoder *json.Decoder) (any, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := token.(json.Delim)
	if !ok {
		return token, nil
	}

	switch delim {
	case '{':
		object := NewSection()
		for decoder.More() {
			key, err := decoder.Token()
			if err != nil {
				return nil, err
			}
			value, err := decodeValue(decoder)
			if err != nil {
				return nil, err
			}
			object.Set(key.(string), value)
		}
		if _, err := decoder.Token(); err != nil {
			return nil, err
		}
		return object, nil
	case '[':
		array := []any{}
		for decoder.More() {
			value, err := decodeValue(decoder)
			if err != nil {
				return nil, err
			}
			array = append(array, value)
		}
		if _, err := decoder.Token(); err != nil {
			return nil, err
		}
		return array, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}
