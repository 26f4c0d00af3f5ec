package exporter

import (
	"sync"

	"github.com/FAU-CDI/metaextract/internal/jsonld"
)

// Map implements an exporter that keeps nodes in memory.
type Map struct {
	Data map[string][]*jsonld.Node
	l    sync.Mutex
}

// Begin signals that count nodes will be transmitted for the given graph
func (mp *Map) Begin(graph *Graph, count int) error {
	mp.l.Lock()
	defer mp.l.Unlock()

	if mp.Data == nil {
		mp.Data = make(map[string][]*jsonld.Node)
	}
	mp.Data[graph.Name] = make([]*jsonld.Node, 0, count)
	return nil
}

// Add adds a node to the given graph
func (mp *Map) Add(graph *Graph, node *jsonld.Node) error {
	mp.l.Lock()
	defer mp.l.Unlock()

	mp.Data[graph.Name] = append(mp.Data[graph.Name], node)
	return nil
}

func (mp *Map) End(graph *Graph) error {
	return nil // no-op
}

func (mp *Map) Close() error {
	return nil // no-op
}
