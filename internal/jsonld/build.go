package jsonld

import (
	"fmt"

	"github.com/FAU-CDI/metaextract/internal/extract"
	"github.com/FAU-CDI/metaextract/internal/metadata"
	"github.com/FAU-CDI/metaextract/internal/template"
)

// Build builds a JSON-LD document from resolved metadata.
// The context is copied and the local prefix is added to it.
//
// When table is nil, each metadata node becomes a node of the graph.
// Otherwise each row of table becomes a record holding one node per column mapped by the metadata.
//
// Malformed node keys and references to nodes that do not exist fail the entire build.
// A reference may point to any node of the graph, including nodes emitted after the referencing one;
// all ids are assigned before the first node is emitted.
func Build(md *metadata.Metadata, ctx *Context, table *extract.Table) (*Document, error) {
	keys, err := parseKeys(md)
	if err != nil {
		return nil, err
	}

	doc := &Document{Context: ctx.WithLocal()}
	if table == nil {
		doc.Graph, err = buildNodes(md, keys)
	} else {
		doc.Graph = buildRecords(md, keys, table)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func parseKeys(md *metadata.Metadata) ([]template.NodeKey, error) {
	keys := make([]template.NodeKey, 0, md.Len())
	for raw := range md.All() {
		key, err := template.ParseNodeKey(raw)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// LocalID returns the compact id of a node in the local namespace.
func LocalID(parts ...any) string {
	id := LocalPrefix + ":"
	for i, part := range parts {
		if i > 0 {
			id += "_"
		}
		id += fmt.Sprint(part)
	}
	return id
}

// nodeIDs assigns ids to keys, counting occurrences of each type.
func nodeIDs(keys []template.NodeKey) []string {
	counters := make(map[string]int)

	ids := make([]string, len(keys))
	for i, key := range keys {
		typ := key.Type()
		counters[typ]++
		ids[i] = LocalID(typ, key.Label(), counters[typ])
	}
	return ids
}

func buildNodes(md *metadata.Metadata, keys []template.NodeKey) ([]*Node, error) {
	ids := nodeIDs(keys)

	graph := make([]*Node, 0, len(keys))
	i := 0
	for raw, props := range md.All() {
		key := keys[i]
		node := NewNode(ids[i], key.Type())
		node.Set(KeyLabel, key.Label())

		for pair := props.Oldest(); pair != nil; pair = pair.Next() {
			index, ok := pair.Value.Reference()
			if !ok {
				node.Set(pair.Key, pair.Value.Interface())
				continue
			}
			if index < 0 || index >= len(ids) {
				return nil, fmt.Errorf("node %q property %q: %w: %q", raw, pair.Key, template.ErrDanglingReference, pair.Value.Assignment.Text)
			}
			node.Set(pair.Key, ids[index])
		}

		graph = append(graph, node)
		i++
	}
	return graph, nil
}

func buildRecords(md *metadata.Metadata, keys []template.NodeKey, table *extract.Table) []*Node {
	graph := make([]*Node, 0, table.Rows.Len())
	for row := table.Rows.Oldest(); row != nil; row = row.Next() {
		children := make([]*Node, 0, len(keys))

		i := 0
		for _, props := range md.All() {
			key := keys[i]
			i++

			value, ok := row.Value.Get(key.Source)
			if !ok {
				continue
			}

			child := NewNode(LocalID(key.Label(), row.Key), key.Type())
			child.Set(KeyLabel, key.Label())
			for pair := props.Oldest(); pair != nil; pair = pair.Next() {
				if pair.Value.Data == nil && pair.Value.Assignment.Placeholder() {
					child.Set(pair.Key, value)
					continue
				}
				child.Set(pair.Key, pair.Value.Interface())
			}
			children = append(children, child)
		}

		record := NewNode(LocalID(row.Key), RecordType)
		record.Set(KeyData, children)
		graph = append(graph, record)
	}
	return graph
}
