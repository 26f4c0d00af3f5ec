// Package metadata resolves templates against extracted data.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/FAU-CDI/metaextract/internal/extract"
	"github.com/FAU-CDI/metaextract/internal/template"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Value is the resolved value of a single property.
//
// Data holds a value taken from the extracted data.
// When it is nil, the value is the assignment as authored.
type Value struct {
	Assignment template.Assignment
	Data       any
}

// Extracted returns a value holding extracted data.
func Extracted(data any) Value {
	return Value{Assignment: template.NewSourceValue(), Data: data}
}

// Authored returns a value holding an assignment.
func Authored(a template.Assignment) Value {
	return Value{Assignment: a}
}

// Interface returns the value as it is written out.
func (v Value) Interface() any {
	if v.Data != nil {
		return v.Data
	}
	return v.Assignment.Text
}

// Reference returns the position referenced by this value, if any.
// Extracted values never count as references.
func (v Value) Reference() (index int, ok bool) {
	if v.Data != nil || v.Assignment.Kind != template.Reference {
		return 0, false
	}
	return v.Assignment.Index, true
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := extract.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if text, ok := decoded.(string); ok {
		*v = Authored(template.ParseAssignment(text))
		return nil
	}
	*v = Value{Data: decoded}
	return nil
}

// Properties maps property names to resolved values.
type Properties = orderedmap.OrderedMap[string, Value]

// NewProperties returns a new empty set of properties.
func NewProperties() *Properties {
	return orderedmap.New[string, Value]()
}

// Metadata maps node keys to resolved properties, in template order.
type Metadata struct {
	nodes *orderedmap.OrderedMap[string, *Properties]
}

// New returns new empty metadata.
func New() *Metadata {
	return &Metadata{nodes: orderedmap.New[string, *Properties]()}
}

// Len returns the number of nodes.
func (md *Metadata) Len() int {
	if md == nil || md.nodes == nil {
		return 0
	}
	return md.nodes.Len()
}

// Set sets the properties of a node.
func (md *Metadata) Set(key string, props *Properties) {
	if md.nodes == nil {
		md.nodes = orderedmap.New[string, *Properties]()
	}
	md.nodes.Set(key, props)
}

// Get returns the properties of a node.
func (md *Metadata) Get(key string) (*Properties, bool) {
	if md.Len() == 0 {
		return nil, false
	}
	return md.nodes.Get(key)
}

// All iterates over all nodes in order.
func (md *Metadata) All() iter.Seq2[string, *Properties] {
	return func(yield func(string, *Properties) bool) {
		if md.Len() == 0 {
			return
		}
		for pair := md.nodes.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

func (md *Metadata) MarshalJSON() ([]byte, error) {
	if md.Len() == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(md.nodes)
}

func (md *Metadata) UnmarshalJSON(data []byte) error {
	nodes := orderedmap.New[string, *Properties]()
	if err := json.Unmarshal(data, nodes); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	for pair := nodes.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			nodes.Set(pair.Key, NewProperties())
		}
	}
	md.nodes = nodes
	return nil
}
