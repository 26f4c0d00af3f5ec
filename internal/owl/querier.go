package owl

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/FAU-CDI/metaextract/internal/classes"
	"github.com/FAU-CDI/metaextract/internal/triplestore/igraph"
	"github.com/FAU-CDI/metaextract/internal/triplestore/impl"
)

// Querier answers label queries against an indexed ontology.
type Querier struct {
	index *igraph.Index
}

var _ classes.Source = (*Querier)(nil)

// Close closes the underlying index.
func (q *Querier) Close() error {
	if q == nil || q.index == nil {
		return nil
	}
	err := q.index.Close()
	q.index = nil
	return err
}

// Label returns the english label of the given node.
// The preferred label takes precedence over the rdfs label.
// ok is false when the node has no non-empty english label.
func (q *Querier) Label(node impl.Label) (label string, ok bool, err error) {
	for _, predicate := range []impl.Label{SKOSPrefLabel, RDFSLabel} {
		label, ok, err = q.englishDatum(node, predicate)
		if ok || err != nil {
			return
		}
	}
	return "", false, nil
}

var errStop = errors.New("stop")

func (q *Querier) englishDatum(node, predicate impl.Label) (value string, ok bool, err error) {
	err = q.index.Data(node, predicate, func(datum impl.Datum) error {
		if !strings.EqualFold(datum.Language, "en") || datum.Value == "" {
			return nil
		}
		value, ok = datum.Value, true
		return errStop
	})
	if err == errStop {
		err = nil
	}
	return
}

// Classes returns all labeled classes, ordered by label.
func (q *Querier) Classes() ([]classes.ClassRef, error) {
	var refs []classes.ClassRef
	err := q.index.Subjects(RDFType, OWLClass, func(class impl.Label) error {
		label, ok, err := q.Label(class)
		if err != nil || !ok {
			return err
		}
		refs = append(refs, classes.ClassRef{IRI: string(class), Label: label})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}

	slices.SortStableFunc(refs, func(a, b classes.ClassRef) int {
		return cmp.Or(cmp.Compare(a.Label, b.Label), cmp.Compare(a.IRI, b.IRI))
	})
	return refs, nil
}

// SuperClasses returns the labels of the direct super-classes of class.
func (q *Querier) SuperClasses(class string) ([]string, error) {
	return q.labels(func(f func(impl.Label) error) error {
		return q.index.Objects(impl.Label(class), RDFSSubClassOf, f)
	})
}

// SubClasses returns the labels of the direct sub-classes of class.
func (q *Querier) SubClasses(class string) ([]string, error) {
	return q.labels(func(f func(impl.Label) error) error {
		return q.index.Subjects(RDFSSubClassOf, impl.Label(class), f)
	})
}

// DisjointClasses returns the labels of classes class is declared disjoint with.
func (q *Querier) DisjointClasses(class string) ([]string, error) {
	return q.labels(func(f func(impl.Label) error) error {
		return q.index.Objects(impl.Label(class), OWLDisjointWith, f)
	})
}

// Members returns the labels of the named individuals of class.
func (q *Querier) Members(class string) ([]string, error) {
	return q.labels(func(f func(impl.Label) error) error {
		return q.index.Subjects(RDFType, impl.Label(class), func(member impl.Label) error {
			ok, err := q.index.HasTriple(member, RDFType, OWLNamedIndividual)
			if err != nil || !ok {
				return err
			}
			return f(member)
		})
	})
}

// Properties returns the labels of properties of the given kind that have class as their domain or range.
func (q *Querier) Properties(class string, direction classes.Direction, kind classes.Kind) ([]string, error) {
	predicate := RDFSDomain
	if direction == classes.Range {
		predicate = RDFSRange
	}

	var typ impl.Label
	switch kind {
	case classes.KindObjectProperty:
		typ = OWLObjectProperty
	case classes.KindDataProperty:
		typ = OWLDatatypeProperty
	default:
		return nil, fmt.Errorf("%q is not a property kind", kind)
	}

	return q.labels(func(f func(impl.Label) error) error {
		return q.index.Subjects(predicate, impl.Label(class), func(property impl.Label) error {
			ok, err := q.index.HasTriple(property, RDFType, typ)
			if err != nil || !ok {
				return err
			}
			return f(property)
		})
	})
}

// labels collects the labels of all nodes produced by iterate.
// Nodes without a label are skipped.
func (q *Querier) labels(iterate func(f func(impl.Label) error) error) ([]string, error) {
	var labels []string
	err := iterate(func(node impl.Label) error {
		label, ok, err := q.Label(node)
		if err != nil || !ok {
			return err
		}
		labels = append(labels, label)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	return labels, nil
}
