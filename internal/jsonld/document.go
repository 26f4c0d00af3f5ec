package jsonld

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/FAU-CDI/metaextract/internal/extract"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node is a single node of a graph, keeping the order of its keys.
type Node = orderedmap.OrderedMap[string, any]

// Keys of nodes with special meaning.
const (
	KeyID    = "@id"
	KeyType  = "@type"
	KeyLabel = "label"
	KeyData  = "data"
)

// RecordType is the type of nodes holding a single row of tabular data.
const RecordType = "record"

// NewNode creates a new node with the given id and type.
func NewNode(id, typ string) *Node {
	node := orderedmap.New[string, any]()
	node.Set(KeyID, id)
	node.Set(KeyType, typ)
	return node
}

// ID returns the id of node.
func ID(node *Node) string {
	return str(node, KeyID)
}

// Type returns the type of node.
func Type(node *Node) string {
	return str(node, KeyType)
}

func str(node *Node, key string) string {
	if node == nil {
		return ""
	}
	value, _ := node.Get(key)
	text, _ := value.(string)
	return text
}

// Children returns the nested data nodes of a record.
func Children(node *Node) []*Node {
	if node == nil {
		return nil
	}
	raw, _ := node.Get(KeyData)
	switch data := raw.(type) {
	case []*Node:
		return data
	case []any:
		children := make([]*Node, 0, len(data))
		for _, item := range data {
			if child, ok := item.(*Node); ok {
				children = append(children, child)
			}
		}
		return children
	}
	return nil
}

// Document is a JSON-LD document.
type Document struct {
	Context *Context
	Graph   []*Node
}

// Nodes iterates over all nodes of the graph, including nested data nodes.
// The parent of top-level nodes is nil.
func (doc *Document) Nodes() iter.Seq2[*Node, *Node] {
	return func(yield func(node, parent *Node) bool) {
		for _, node := range doc.Graph {
			if !yield(node, nil) {
				return
			}
			for _, child := range Children(node) {
				if !yield(child, node) {
					return
				}
			}
		}
	}
}

// Find returns the node with the given id.
func (doc *Document) Find(id string) (node, parent *Node, ok bool) {
	for node, parent := range doc.Nodes() {
		if ID(node) == id {
			return node, parent, true
		}
	}
	return nil, nil, false
}

func (doc *Document) MarshalJSON() ([]byte, error) {
	graph := doc.Graph
	if graph == nil {
		graph = []*Node{}
	}

	out := orderedmap.New[string, any]()
	out.Set("@context", doc.Context)
	out.Set("@graph", graph)
	return json.Marshal(out)
}

var errNoGraph = errors.New(`document has no "@graph" list`)

func (doc *Document) UnmarshalJSON(data []byte) error {
	value, err := extract.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	top, ok := value.(*extract.Section)
	if !ok {
		return ErrNoContext
	}

	raw, _ := top.Get("@context")
	entries, ok := raw.(*extract.Section)
	if !ok {
		return ErrNoContext
	}

	raw, _ = top.Get("@graph")
	items, ok := raw.([]any)
	if !ok {
		return errNoGraph
	}
	graph := make([]*Node, len(items))
	for i, item := range items {
		node, ok := item.(*Node)
		if !ok {
			return fmt.Errorf("graph item %d: not an object", i)
		}
		graph[i] = node
	}

	doc.Context = &Context{entries: entries}
	doc.Graph = graph
	return nil
}
