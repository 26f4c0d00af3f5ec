// Package template implements mapping templates.
//
// A template maps node keys of the form "{source}: {class}" to property assignments.
// Each assignment is a literal, or one of the placeholders "#Value", "#" and "@N".
package template

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedNodeKey is returned when a node key does not contain a colon.
var ErrMalformedNodeKey = errors.New("malformed node key: missing ':' separator")

// NodeKey identifies a single node of a template.
type NodeKey struct {
	Raw    string // the key as written in the template
	Source string // key of the extracted value the node is built from
	Class  string // label of the class of the node
}

// ParseNodeKey parses a node key.
// The key is split at the first colon, both parts are trimmed.
func ParseNodeKey(raw string) (NodeKey, error) {
	source, class, ok := strings.Cut(raw, ":")
	if !ok {
		return NodeKey{}, fmt.Errorf("%w: %q", ErrMalformedNodeKey, raw)
	}
	return NodeKey{
		Raw:    raw,
		Source: strings.TrimSpace(source),
		Class:  strings.TrimSpace(class),
	}, nil
}

// MakeNodeKey makes a node key from a source key and class.
func MakeNodeKey(source, class string) NodeKey {
	return NodeKey{
		Raw:    source + ": " + class,
		Source: source,
		Class:  class,
	}
}

// External checks if the class of this node belongs to an external ontology,
// that is the class is written as "{prefix}:{name}".
func (key NodeKey) External() bool {
	return strings.Count(key.Raw, ":") > 1
}

// Type returns the lower-case class of this node.
func (key NodeKey) Type() string {
	return strings.ToLower(key.Class)
}

// Label returns the lower-case source key of this node.
func (key NodeKey) Label() string {
	return strings.ToLower(key.Source)
}

// Prefix returns the ontology prefix of an external class, if any.
func (key NodeKey) Prefix() string {
	if !key.External() {
		return ""
	}
	prefix, _, _ := strings.Cut(key.Class, ":")
	return strings.TrimSpace(prefix)
}

func (key NodeKey) String() string {
	return key.Raw
}
