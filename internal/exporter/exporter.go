// Package exporter writes JSON-LD graphs into other formats.
package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/FAU-CDI/metaextract/internal/jsonld"
	"github.com/FAU-CDI/metaextract/internal/status"
)

// Graph describes a graph being exported.
type Graph struct {
	Name    string
	Context *jsonld.Context
}

// Exporter receives the nodes of graphs.
type Exporter interface {
	io.Closer

	// Begin signals that count top-level nodes will be transmitted for the given graph
	Begin(graph *Graph, count int) error

	// Add adds a top-level node, including any nested data nodes
	Add(graph *Graph, node *jsonld.Node) error

	// End signals that no more nodes will be submitted for the given graph
	End(graph *Graph) error
}

// Export sends every top-level node of doc to exporter, as the graph with the given name.
// It does not close exporter.
func Export(name string, doc *jsonld.Document, exporter Exporter, st *status.Status) error {
	graph := &Graph{Name: name, Context: doc.Context}

	total := len(doc.Graph)
	if err := exporter.Begin(graph, total); err != nil {
		return fmt.Errorf("failed to begin graph %q: %w", name, err)
	}
	for i, node := range doc.Graph {
		st.SetCT(i, total)
		if err := exporter.Add(graph, node); err != nil {
			return fmt.Errorf("failed to add node %q: %w", jsonld.ID(node), err)
		}
	}
	st.SetCT(total, total)

	if err := exporter.End(graph); err != nil {
		return fmt.Errorf("failed to end graph %q: %w", name, err)
	}
	return nil
}

// properties iterates over the plain properties of node, skipping id, type and nested data.
func properties(node *jsonld.Node, f func(key string, value any) error) error {
	for pair := node.Oldest(); pair != nil; pair = pair.Next() {
		switch pair.Key {
		case jsonld.KeyID, jsonld.KeyType, jsonld.KeyData:
			continue
		}
		if err := f(pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

// text returns the textual form of a property value.
// Structured values are encoded as json.
func text(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case nil:
		return "", nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
