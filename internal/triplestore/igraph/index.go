// Package igraph provides Index.
package igraph

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/FAU-CDI/metaextract/internal/triplestore/imap"
	"github.com/FAU-CDI/metaextract/internal/triplestore/impl"
)

// cSpell:words igraph imap

// Index represents a searchable index of a directed labeled graph with optionally attached Data.
//
// Labels are used for nodes and edges.
// This means that the graph is defined by triples of the form (subject Label, predicate Label, object Label).
// See [AddTriple].
//
// Datum is used for literal values associated with specific nodes.
// See [AddDatum].
//
// The zero value represents an empty index, but is otherwise not ready to be used.
// To fill an index, it first needs to be [Reset], and then [Finalize]d.
//
// Index may not be modified concurrently, however it is possible to run several queries concurrently.
type Index struct {
	data      imap.HashMap[impl.ID, impl.Datum] // holds literal values
	psoIndex  ThreeStorage                      // <predicate> <subject> <object>
	posIndex  ThreeStorage                      // <predicate> <object> <subject>
	labels    imap.IMap
	stats     Stats
	finalized atomic.Bool
}

// Stats holds statistics about triples in the index.
type Stats struct {
	DirectTriples    uint64
	DatumTriples     uint64
	DuplicateTriples uint64
}

func (stats Stats) String() string {
	return fmt.Sprintf("{direct:%d,datum:%d,duplicate:%d}", stats.DirectTriples, stats.DatumTriples, stats.DuplicateTriples)
}

// Stats returns statistics from this index.
func (index *Index) Stats() Stats {
	return index.stats
}

// Reset resets this index and prepares all internal structures for use.
func (index *Index) Reset(engine Engine) (err error) {
	if err = index.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}

	var closers []io.Closer
	defer func() {
		if err == nil {
			return
		}
		errs := []error{err}
		for _, closer := range closers {
			if cerr := closer.Close(); cerr != nil {
				errs = append(errs, fmt.Errorf("failed to close closer: %w", cerr))
			}
		}
		err = errors.Join(errs...)
	}()

	if err := index.labels.Reset(engine); err != nil {
		return fmt.Errorf("failed to reset labels index: %w", err)
	}
	closers = append(closers, &index.labels)

	index.data, err = engine.Data()
	if err != nil {
		return fmt.Errorf("failed to initialize data: %w", err)
	}
	closers = append(closers, index.data)

	index.psoIndex, err = engine.PSOIndex()
	if err != nil {
		return fmt.Errorf("failed to initialize PSO index: %w", err)
	}
	closers = append(closers, index.psoIndex)

	index.posIndex, err = engine.POSIndex()
	if err != nil {
		return fmt.Errorf("failed to initialize POS index: %w", err)
	}

	index.finalized.Store(false)
	index.stats = Stats{}
	return nil
}

var ErrFinalized = errors.New("Index: Finalized")

// AddTriple inserts a subject-predicate-object triple into the index.
// Adding a triple more than once has no effect.
//
// Reset must have been called, or this function may panic.
// After all Add operations have finished, Finalize must be called.
func (index *Index) AddTriple(subject, predicate, object impl.Label) error {
	if index.finalized.Load() {
		return ErrFinalized
	}

	s, err := index.labels.Add(subject)
	if err != nil {
		return fmt.Errorf("failed to add subject label: %w", err)
	}
	p, err := index.labels.Add(predicate)
	if err != nil {
		return fmt.Errorf("failed to add predicate label: %w", err)
	}
	o, err := index.labels.Add(object)
	if err != nil {
		return fmt.Errorf("failed to add object label: %w", err)
	}

	present, err := index.insert(s, p, o)
	if err != nil {
		return err
	}
	if present {
		index.stats.DuplicateTriples++
	} else {
		index.stats.DirectTriples++
	}
	return nil
}

// AddDatum inserts a subject-predicate-datum triple into the index.
// Adding multiple data to a specific subject with a specific predicate is supported.
func (index *Index) AddDatum(subject, predicate impl.Label, datum impl.Datum) error {
	if index.finalized.Load() {
		return ErrFinalized
	}

	s, err := index.labels.Add(subject)
	if err != nil {
		return fmt.Errorf("failed to add subject label: %w", err)
	}
	p, err := index.labels.Add(predicate)
	if err != nil {
		return fmt.Errorf("failed to add predicate label: %w", err)
	}

	// data never has a label, so it always gets a fresh id
	o := index.labels.Next()
	if err := index.data.Set(o, datum); err != nil {
		return fmt.Errorf("failed to add object data: %w", err)
	}

	if _, err := index.insert(s, p, o); err != nil {
		return err
	}
	index.stats.DatumTriples++
	return nil
}

// insert inserts the provided (subject, predicate, object) ids into both indexes.
func (index *Index) insert(subject, predicate, object impl.ID) (present bool, err error) {
	present, err = index.psoIndex.Add(predicate, subject, object)
	if err != nil {
		return false, fmt.Errorf("failed to add to pso index: %w", err)
	}
	if _, err := index.posIndex.Add(predicate, object, subject); err != nil {
		return false, fmt.Errorf("failed to add to pos index: %w", err)
	}
	return present, nil
}

// Finalize finalizes any adding operations into this index.
//
// Finalize must be called before any query is performed,
// but after any calls to the Add* methods.
// Calling finalize multiple times is invalid.
func (index *Index) Finalize() error {
	if index.finalized.Swap(true) {
		return ErrFinalized
	}

	return errors.Join(
		index.labels.Finalize(),
		index.data.Finalize(),
		index.psoIndex.Finalize(),
		index.posIndex.Finalize(),
	)
}

// Objects calls f for every object label of a (subject, predicate, object) triple.
// Data objects are skipped, see [Data].
// Objects are visited in the order their labels were first added to the index.
func (index *Index) Objects(subject, predicate impl.Label, f func(object impl.Label) error) error {
	s, p, ok, err := index.pair(subject, predicate)
	if !ok || err != nil {
		return err
	}

	return index.psoIndex.Fetch(p, s, func(c impl.ID) error {
		label, ok, err := index.labels.Reverse(c)
		if err != nil {
			return fmt.Errorf("failed to reverse object: %w", err)
		}
		if !ok {
			return nil
		}
		return f(label)
	})
}

// Subjects calls f for every subject label of a (subject, predicate, object) triple.
// Subjects are visited in the order their labels were first added to the index.
func (index *Index) Subjects(predicate, object impl.Label, f func(subject impl.Label) error) error {
	p, o, ok, err := index.pair(predicate, object)
	if !ok || err != nil {
		return err
	}

	return index.posIndex.Fetch(p, o, func(c impl.ID) error {
		label, ok, err := index.labels.Reverse(c)
		if err != nil {
			return fmt.Errorf("failed to reverse subject: %w", err)
		}
		if !ok {
			return nil
		}
		return f(label)
	})
}

// Data calls f for every datum attached to subject using predicate, in insertion order.
func (index *Index) Data(subject, predicate impl.Label, f func(datum impl.Datum) error) error {
	s, p, ok, err := index.pair(subject, predicate)
	if !ok || err != nil {
		return err
	}

	return index.psoIndex.Fetch(p, s, func(c impl.ID) error {
		datum, ok, err := index.data.Get(c)
		if err != nil {
			return fmt.Errorf("failed to resolve datum: %w", err)
		}
		if !ok {
			return nil
		}
		return f(datum)
	})
}

// HasTriple checks if the given triple is contained in this index.
func (index *Index) HasTriple(subject, predicate, object impl.Label) (bool, error) {
	s, p, ok, err := index.pair(subject, predicate)
	if !ok || err != nil {
		return false, err
	}
	o, ok, err := index.labels.Forward(object)
	if !ok || err != nil {
		return false, err
	}
	return index.psoIndex.Has(p, s, o)
}

// pair resolves the ids of two labels.
// ok is false if either of them is unknown.
func (index *Index) pair(first, second impl.Label) (a, b impl.ID, ok bool, err error) {
	a, ok, err = index.labels.Forward(first)
	if !ok || err != nil {
		return
	}
	b, ok, err = index.labels.Forward(second)
	return
}

// TripleCount returns the total number of distinct triples in this index.
func (index *Index) TripleCount() (count int64, err error) {
	if index == nil || index.psoIndex == nil {
		return 0, nil
	}
	count, err = index.psoIndex.Count()
	if err != nil {
		return 0, fmt.Errorf("failed to count triples: %w", err)
	}
	return count, nil
}

// Close closes any storages attached to this index.
func (index *Index) Close() error {
	var errs [4]error
	errs[0] = index.labels.Close()

	if index.data != nil {
		errs[1] = index.data.Close()
		index.data = nil
	}
	if index.psoIndex != nil {
		errs[2] = index.psoIndex.Close()
		index.psoIndex = nil
	}
	if index.posIndex != nil {
		errs[3] = index.posIndex.Close()
		index.posIndex = nil
	}
	return errors.Join(errs[:]...)
}
