// Package jsonld builds JSON-LD graphs from resolved metadata.
package jsonld

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/FAU-CDI/metaextract/internal/extract"
	"github.com/FAU-CDI/metaextract/internal/template"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// LocalNamespace is the namespace of all generated node ids.
const LocalNamespace = "https://local-domain.org/"

// LocalPrefix is the prefix bound to [LocalNamespace].
const LocalPrefix = "local"

// ErrNoContext is returned when a context document has no "@context" object.
var ErrNoContext = errors.New(`document has no "@context" object`)

// Context is a JSON-LD context, keeping the order of its entries.
type Context struct {
	entries *orderedmap.OrderedMap[string, any]
}

// NewContext returns a new empty context.
func NewContext() *Context {
	return &Context{entries: orderedmap.New[string, any]()}
}

// LoadContext reads a context document of the form {"@context": {...}}.
func LoadContext(r io.Reader) (*Context, error) {
	value, err := extract.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode context: %w", err)
	}
	document, ok := value.(*extract.Section)
	if !ok {
		return nil, ErrNoContext
	}
	inner, _ := document.Get("@context")
	entries, ok := inner.(*extract.Section)
	if !ok {
		return nil, ErrNoContext
	}
	return &Context{entries: entries}, nil
}

// Len returns the number of entries.
func (ctx *Context) Len() int {
	if ctx == nil || ctx.entries == nil {
		return 0
	}
	return ctx.entries.Len()
}

// Get returns the definition of a term or prefix.
func (ctx *Context) Get(term string) (any, bool) {
	if ctx.Len() == 0 {
		return nil, false
	}
	return ctx.entries.Get(term)
}

// Set sets the definition of a term or prefix.
func (ctx *Context) Set(term string, definition any) {
	if ctx.entries == nil {
		ctx.entries = orderedmap.New[string, any]()
	}
	ctx.entries.Set(term, definition)
}

// Clone returns a shallow copy of this context.
func (ctx *Context) Clone() *Context {
	clone := NewContext()
	if ctx.Len() == 0 {
		return clone
	}
	for pair := ctx.entries.Oldest(); pair != nil; pair = pair.Next() {
		clone.entries.Set(pair.Key, pair.Value)
	}
	return clone
}

// WithLocal returns a copy of this context with the local prefix bound to [LocalNamespace].
func (ctx *Context) WithLocal() *Context {
	clone := ctx.Clone()
	clone.Set(LocalPrefix, LocalNamespace)
	return clone
}

// Prefixes returns the entries that map a name directly to an http(s) IRI.
func (ctx *Context) Prefixes() []template.Prefix {
	var prefixes []template.Prefix
	if ctx.Len() == 0 {
		return prefixes
	}
	for pair := ctx.entries.Oldest(); pair != nil; pair = pair.Next() {
		iri, ok := pair.Value.(string)
		if ok && isAbsolute(iri) {
			prefixes = append(prefixes, template.Prefix{Name: pair.Key, IRI: iri})
		}
	}
	return prefixes
}

func isAbsolute(iri string) bool {
	return strings.HasPrefix(iri, "http://") || strings.HasPrefix(iri, "https://")
}

// Expand expands a term or compact IRI into an absolute IRI.
func (ctx *Context) Expand(value string) (iri string, ok bool) {
	return ctx.expand(value, 0)
}

// maximal depth of nested term definitions
const maxExpandDepth = 8

func (ctx *Context) expand(value string, depth int) (string, bool) {
	if depth > maxExpandDepth || value == "" || strings.HasPrefix(value, "_:") {
		return "", false
	}
	if isAbsolute(value) {
		return value, true
	}

	if definition, ok := ctx.Get(value); ok {
		if id, ok := definitionID(definition); ok && id != value {
			return ctx.expand(id, depth+1)
		}
	}

	if prefix, rest, ok := strings.Cut(value, ":"); ok {
		definition, ok := ctx.Get(prefix)
		if !ok {
			return "", false
		}
		base, ok := definitionID(definition)
		if !ok {
			return "", false
		}
		if base, ok = ctx.expand(base, depth+1); !ok {
			return "", false
		}
		return base + rest, true
	}

	if vocab, ok := ctx.Get("@vocab"); ok {
		if base, ok := vocab.(string); ok && isAbsolute(base) {
			return base + value, true
		}
	}
	return "", false
}

// definitionID returns the IRI a term definition maps to.
func definitionID(definition any) (string, bool) {
	switch d := definition.(type) {
	case string:
		return d, true
	case *extract.Section:
		raw, _ := d.Get("@id")
		id, ok := raw.(string)
		return id, ok
	}
	return "", false
}

func (ctx *Context) MarshalJSON() ([]byte, error) {
	if ctx.Len() == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(ctx.entries)
}

func (ctx *Context) UnmarshalJSON(data []byte) error {
	value, err := extract.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	entries, ok := value.(*extract.Section)
	if !ok {
		return ErrNoContext
	}
	ctx.entries = entries
	return nil
}
