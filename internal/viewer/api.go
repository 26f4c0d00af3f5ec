package viewer

import (
	"github.com/FAU-CDI/metaextract/internal/classes"
	"github.com/FAU-CDI/metaextract/internal/jsonld"
)

// getClassLabels returns the labels of all classes
func (viewer *Viewer) getClassLabels() []string {
	return viewer.model.Labels()
}

func (viewer *Viewer) findClass(label string) (*classes.Class, bool) {
	return viewer.model.Class(label)
}

// getGraphNames returns the names of all graphs, in the order they were loaded
func (viewer *Viewer) getGraphNames() []string {
	names := make([]string, 0, viewer.graphs.Len())
	for pair := viewer.graphs.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func (viewer *Viewer) findGraph(name string) (*jsonld.Document, bool) {
	return viewer.graphs.Get(name)
}

// NodeInfo is a single node of a graph.
type NodeInfo struct {
	Graph  string       `json:"graph"`
	Parent string       `json:"parent,omitempty"` // id of the enclosing record, if any
	Node   *jsonld.Node `json:"node"`
}

// findNode finds a node by id inside the given graph
func (viewer *Viewer) findNode(name, id string) (info NodeInfo, ok bool) {
	doc, ok := viewer.findGraph(name)
	if !ok {
		return info, false
	}

	node, parent, ok := doc.Find(id)
	if !ok {
		return info, false
	}

	info = NodeInfo{Graph: name, Node: node}
	if parent != nil {
		info.Parent = jsonld.ID(parent)
	}
	return info, true
}
