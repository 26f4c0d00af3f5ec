package exporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/FAU-CDI/metaextract/internal/jsonld"
	"github.com/FAU-CDI/metaextract/internal/owl"
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
)

// cspell:words nquads xsd

const xsd = "http://www.w3.org/2001/XMLSchema#"

// NQuads implements an exporter writing N-Quads.
//
// Compact IRIs are expanded using the context of each graph.
// Terms the context does not define are placed into [jsonld.LocalNamespace].
type NQuads struct {
	writer *nquads.Writer
	closer io.Closer
}

// NewNQuads creates a new NQuads exporter writing to w.
// If w is an [io.Closer], it is closed when the exporter is closed.
func NewNQuads(w io.Writer) *NQuads {
	exporter := &NQuads{writer: nquads.NewWriter(w)}
	if closer, ok := w.(io.Closer); ok {
		exporter.closer = closer
	}
	return exporter
}

func (nq *NQuads) Begin(graph *Graph, count int) error {
	return nil
}

func (nq *NQuads) Add(graph *Graph, node *jsonld.Node) error {
	label := iri(graph, jsonld.LocalID(graph.Name))

	if err := nq.node(graph, label, node); err != nil {
		return err
	}

	subject := iri(graph, jsonld.ID(node))
	data := iri(graph, jsonld.KeyData)
	for _, child := range jsonld.Children(node) {
		if err := nq.write(subject, data, iri(graph, jsonld.ID(child)), label); err != nil {
			return err
		}
		if err := nq.node(graph, label, child); err != nil {
			return err
		}
	}
	return nil
}

var errNoID = errors.New("node has no id")

// node writes the type, label and properties of a single node.
func (nq *NQuads) node(graph *Graph, label quad.IRI, node *jsonld.Node) error {
	id := jsonld.ID(node)
	if id == "" {
		return errNoID
	}
	subject := iri(graph, id)

	if typ := jsonld.Type(node); typ != "" {
		if err := nq.write(subject, quad.IRI(owl.RDFType), iri(graph, typ), label); err != nil {
			return err
		}
	}

	return properties(node, func(key string, value any) error {
		predicate := quad.IRI(owl.RDFSLabel)
		if key != jsonld.KeyLabel {
			predicate = iri(graph, key)
		}

		object, err := literal(value)
		if err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		if text, ok := value.(string); ok && strings.HasPrefix(text, jsonld.LocalPrefix+":") {
			object = iri(graph, text)
		}
		return nq.write(subject, predicate, object, label)
	})
}

func (nq *NQuads) write(subject, predicate, object, label quad.Value) error {
	return nq.writer.WriteQuad(quad.Quad{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
		Label:     label,
	})
}

// iri expands value into an IRI.
func iri(graph *Graph, value string) quad.IRI {
	if expanded, ok := graph.Context.Expand(value); ok {
		return quad.IRI(expanded)
	}
	return quad.IRI(jsonld.LocalNamespace + url.PathEscape(value))
}

// literal turns a property value into an rdf literal.
func literal(value any) (quad.Value, error) {
	switch v := value.(type) {
	case json.Number:
		typ := "decimal"
		if _, err := v.Int64(); err == nil {
			typ = "integer"
		}
		return quad.TypedString{Value: quad.String(v.String()), Type: quad.IRI(xsd + typ)}, nil
	case bool:
		s, _ := text(v)
		return quad.TypedString{Value: quad.String(s), Type: quad.IRI(xsd + "boolean")}, nil
	}

	s, err := text(value)
	if err != nil {
		return nil, err
	}
	return quad.String(s), nil
}

func (nq *NQuads) End(graph *Graph) error {
	return nil
}

func (nq *NQuads) Close() error {
	err := nq.writer.Close()
	if nq.closer != nil {
		err = errors.Join(err, nq.closer.Close())
	}
	return err
}
