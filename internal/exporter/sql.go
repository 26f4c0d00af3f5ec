package exporter

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/FAU-CDI/metaextract/internal/jsonld"
	"github.com/huandu/go-sqlbuilder"
)

// SQL implements an exporter for storing graphs inside an sql database.
//
// Nodes are stored in one table, their properties in another.
// Each graph replaces any rows previously stored under the same name.
type SQL struct {
	DB          *sql.DB
	BatchSize   int // number of top-level nodes inserted at once
	MaxQueryVar int // maximum number of query variables (overrides BatchSize)

	batches   map[string][]*jsonld.Node
	dbLock    sync.Mutex
	batchLock sync.Mutex
	created   bool
}

// Limits for sqlite databases, see https://www.sqlite.org/limits.html.
const (
	SqliteMaxQueryVar = 32766
	SqliteBatchSize   = 1000
)

const (
	NodesTable      = "nodes"
	PropertiesTable = "properties"

	idColumn       = "id"
	typeColumn     = "type"
	labelColumn    = "label"
	parentColumn   = "parent"
	graphColumn    = "graph"
	nodeColumn     = "node"
	propertyColumn = "property"
	valueColumn    = "value"
)

var (
	nullString               sql.NullString
	errInsufficientQueryVars = errors.New("insufficient query variables")
)

// exec executes an sql query
func (s *SQL) exec(query string, args []any) (err error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	_, err = s.DB.Exec(query, args...)
	return
}

// execInsert inserts values into the given columns of table.
// When this would exceed the maximum number of query variables, multiple inserts are executed.
func (s *SQL) execInsert(table string, columns []string, values [][]any) error {
	if len(values) == 0 {
		return nil
	}

	chunkSize := s.MaxQueryVar / len(columns)
	if chunkSize == 0 {
		return errInsufficientQueryVars
	}
	if s.BatchSize > 0 && s.BatchSize < chunkSize {
		chunkSize = s.BatchSize
	}

	for start := 0; start < len(values); start += chunkSize {
		end := min(start+chunkSize, len(values))

		insert := sqlbuilder.InsertInto(table)
		insert.Cols(columns...)
		for _, v := range values[start:end] {
			insert.Values(v...)
		}

		if err := s.exec(insert.Build()); err != nil {
			return err
		}
	}
	return nil
}

// createTables creates the tables unless they already exist.
func (s *SQL) createTables() error {
	if s.created {
		return nil
	}

	nodes := sqlbuilder.CreateTable(NodesTable).IfNotExists()
	nodes.Define(idColumn, "TEXT", "NOT NULL")
	nodes.Define(typeColumn, "TEXT")
	nodes.Define(labelColumn, "TEXT")
	nodes.Define(parentColumn, "TEXT")
	nodes.Define(graphColumn, "TEXT", "NOT NULL")
	if err := s.exec(nodes.Build()); err != nil {
		return err
	}

	props := sqlbuilder.CreateTable(PropertiesTable).IfNotExists()
	props.Define(nodeColumn, "TEXT", "NOT NULL")
	props.Define(propertyColumn, "TEXT", "NOT NULL")
	props.Define(valueColumn, "TEXT")
	props.Define(graphColumn, "TEXT", "NOT NULL")
	if err := s.exec(props.Build()); err != nil {
		return err
	}

	s.created = true
	return nil
}

func (s *SQL) Begin(graph *Graph, count int) error {
	func() {
		s.batchLock.Lock()
		defer s.batchLock.Unlock()

		if s.batches == nil {
			s.batches = make(map[string][]*jsonld.Node)
		}
	}()

	if err := s.createTables(); err != nil {
		return err
	}

	for _, table := range []string{NodesTable, PropertiesTable} {
		del := sqlbuilder.NewDeleteBuilder()
		del.DeleteFrom(table)
		del.Where(del.Equal(graphColumn, graph.Name))
		if err := s.exec(del.Build()); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQL) Add(graph *Graph, node *jsonld.Node) error {
	batch := func() []*jsonld.Node {
		s.batchLock.Lock()
		defer s.batchLock.Unlock()

		s.batches[graph.Name] = append(s.batches[graph.Name], node)
		if len(s.batches[graph.Name]) < s.BatchSize {
			return nil
		}

		nodes := s.batches[graph.Name]
		delete(s.batches, graph.Name)
		return nodes
	}()

	if len(batch) == 0 {
		return nil
	}
	return s.insert(graph, batch)
}

func (s *SQL) End(graph *Graph) error {
	rest := func() []*jsonld.Node {
		s.batchLock.Lock()
		defer s.batchLock.Unlock()

		result := s.batches[graph.Name]
		delete(s.batches, graph.Name)
		return result
	}()

	return s.insert(graph, rest)
}

func (s *SQL) Close() error {
	return s.DB.Close()
}

// insert inserts nodes and their nested data nodes.
func (s *SQL) insert(graph *Graph, nodes []*jsonld.Node) error {
	var (
		nodeRows [][]any
		propRows [][]any
	)

	add := func(node *jsonld.Node, parent any) error {
		id := jsonld.ID(node)

		label := any(nullString)
		if value, ok := node.Get(jsonld.KeyLabel); ok {
			str, err := text(value)
			if err != nil {
				return err
			}
			label = str
		}
		nodeRows = append(nodeRows, []any{id, jsonld.Type(node), label, parent, graph.Name})

		return properties(node, func(key string, value any) error {
			if key == jsonld.KeyLabel {
				return nil
			}
			str, err := text(value)
			if err != nil {
				return err
			}
			propRows = append(propRows, []any{id, key, str, graph.Name})
			return nil
		})
	}

	for _, node := range nodes {
		if err := add(node, nullString); err != nil {
			return err
		}
		for _, child := range jsonld.Children(node) {
			if err := add(child, jsonld.ID(node)); err != nil {
				return err
			}
		}
	}

	if err := s.execInsert(NodesTable, []string{idColumn, typeColumn, labelColumn, parentColumn, graphColumn}, nodeRows); err != nil {
		return err
	}
	return s.execInsert(PropertiesTable, []string{nodeColumn, propertyColumn, valueColumn, graphColumn}, propRows)
}
