// Package triplestore holds an interned triple index used to query ontologies.
package triplestore

import (
	"github.com/FAU-CDI/metaextract/internal/triplestore/igraph"
	"github.com/FAU-CDI/metaextract/internal/triplestore/imap"
)

// NewEngine returns a new engine for an index.
// An empty path returns an engine keeping everything in memory,
// otherwise everything is stored on disk inside the given directory.
func NewEngine(path string) igraph.Engine {
	if path == "" {
		return igraph.MemoryEngine{}
	}
	return igraph.DiskEngine{DiskMap: imap.DiskMap{Path: path}}
}
