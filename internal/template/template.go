package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/FAU-CDI/metaextract/internal/classes"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Properties maps property names to their assignments, in authoring order.
type Properties = orderedmap.OrderedMap[string, Assignment]

// NewProperties returns a new empty set of properties.
func NewProperties() *Properties {
	return orderedmap.New[string, Assignment]()
}

// Template maps node keys to property assignments.
// The order of nodes is significant; references point to nodes by position.
type Template struct {
	nodes *orderedmap.OrderedMap[string, *Properties]
}

var (
	ErrEmptyTemplate     = errors.New("template contains no nodes")
	ErrUnknownClass      = errors.New("class not found in class model")
	ErrDanglingReference = errors.New("reference does not point to a node")
)

// New returns a new empty template.
func New() *Template {
	return &Template{nodes: orderedmap.New[string, *Properties]()}
}

// Len returns the number of nodes in this template.
func (tpl *Template) Len() int {
	if tpl == nil || tpl.nodes == nil {
		return 0
	}
	return tpl.nodes.Len()
}

// Set sets the properties of the node with the given key.
// A new key is appended to the end of the template.
func (tpl *Template) Set(key string, props *Properties) {
	if tpl.nodes == nil {
		tpl.nodes = orderedmap.New[string, *Properties]()
	}
	tpl.nodes.Set(key, props)
}

// Get returns the properties of the node with the given key.
func (tpl *Template) Get(key string) (*Properties, bool) {
	if tpl.Len() == 0 {
		return nil, false
	}
	return tpl.nodes.Get(key)
}

// Delete removes the node with the given key.
func (tpl *Template) Delete(key string) {
	if tpl.Len() == 0 {
		return
	}
	tpl.nodes.Delete(key)
}

// Keys returns the raw node keys in order.
func (tpl *Template) Keys() []string {
	keys := make([]string, 0, tpl.Len())
	for key := range tpl.All() {
		keys = append(keys, key)
	}
	return keys
}

// All iterates over the nodes of this template in order.
func (tpl *Template) All() iter.Seq2[string, *Properties] {
	return func(yield func(string, *Properties) bool) {
		if tpl.Len() == 0 {
			return
		}
		for pair := tpl.nodes.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Validate checks that this template can be used with the given class model.
//
// Every node key must be well-formed and name a class of the model, unless it is external.
// Every reference must point to a node of the template.
func (tpl *Template) Validate(model *classes.Model) error {
	if tpl.Len() == 0 {
		return ErrEmptyTemplate
	}

	var errs []error
	for raw, props := range tpl.All() {
		key, err := ParseNodeKey(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !key.External() && !model.Has(key.Class) {
			errs = append(errs, fmt.Errorf("node %q: %w: %q", raw, ErrUnknownClass, key.Class))
		}
		for pair := props.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value.Kind != Reference {
				continue
			}
			if pair.Value.Index < 0 || pair.Value.Index >= tpl.Len() {
				errs = append(errs, fmt.Errorf("node %q property %q: %w: %q", raw, pair.Key, ErrDanglingReference, pair.Value.Text))
			}
		}
	}
	return errors.Join(errs...)
}

func (tpl *Template) MarshalJSON() ([]byte, error) {
	if tpl.Len() == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(tpl.nodes)
}

func (tpl *Template) UnmarshalJSON(data []byte) error {
	nodes := orderedmap.New[string, *Properties]()
	if err := json.Unmarshal(data, nodes); err != nil {
		return fmt.Errorf("failed to unmarshal template: %w", err)
	}
	for pair := nodes.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			nodes.Set(pair.Key, NewProperties())
		}
	}
	tpl.nodes = nodes
	return nil
}
