// Package classes implements the ontology class model.
package classes

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind is the kind of an entity related to a class.
type Kind string

const (
	KindClass          Kind = "class"
	KindIndividual     Kind = "named individual"
	KindObjectProperty Kind = "object property"
	KindDataProperty   Kind = "data property"
)

// IsProperty checks if kind denotes a property.
func (kind Kind) IsProperty() bool {
	return kind == KindObjectProperty || kind == KindDataProperty
}

// Direction distinguishes properties using a class as their domain from those using it as their range.
type Direction int

const (
	Domain Direction = iota
	Range
)

// ClassRef references a class inside an ontology.
type ClassRef struct {
	IRI   string
	Label string
}

// Source can be queried for classes and their relations.
// All relations are reported as labels.
type Source interface {
	// Classes returns all classes with a label, ordered by label.
	Classes() ([]ClassRef, error)

	SuperClasses(iri string) ([]string, error)
	SubClasses(iri string) ([]string, error)
	DisjointClasses(iri string) ([]string, error)
	Members(iri string) ([]string, error)

	// Properties returns the properties of the given kind with the class as their domain or range.
	Properties(iri string, direction Direction, kind Kind) ([]string, error)
}

// Relation maps the labels of related entities to their kind, in insertion order.
type Relation = orderedmap.OrderedMap[string, Kind]

// Class holds the relations of a single class.
// Empty relations are omitted when marshaling.
type Class struct {
	SuperClasses *Relation
	SubClasses   *Relation
	Members      *Relation
	DisjointWith *Relation
	Domain       *Relation
	Range        *Relation
}

// keys used when (un)marshaling a class
const (
	keySuperClasses = "has super-classes"
	keySubClasses   = "has sub-classes"
	keyMembers      = "has members"
	keyDisjointWith = "has is disjoint with"
	keyDomain       = "is in domain of"
	keyRange        = "is in range of"
)

// NewClass returns a new class without any relations.
func NewClass() *Class {
	return &Class{
		SuperClasses: orderedmap.New[string, Kind](),
		SubClasses:   orderedmap.New[string, Kind](),
		Members:      orderedmap.New[string, Kind](),
		DisjointWith: orderedmap.New[string, Kind](),
		Domain:       orderedmap.New[string, Kind](),
		Range:        orderedmap.New[string, Kind](),
	}
}

func (class *Class) fields() []struct {
	key      string
	relation **Relation
} {
	return []struct {
		key      string
		relation **Relation
	}{
		{keySuperClasses, &class.SuperClasses},
		{keySubClasses, &class.SubClasses},
		{keyMembers, &class.Members},
		{keyDisjointWith, &class.DisjointWith},
		{keyDomain, &class.Domain},
		{keyRange, &class.Range},
	}
}

// DataProperties returns the data properties in the domain of this class.
func (class *Class) DataProperties() []string {
	var properties []string
	for pair := class.Domain.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == KindDataProperty {
			properties = append(properties, pair.Key)
		}
	}
	return properties
}

// Properties returns all properties in the domain or range of this class.
// Properties in both the domain and the range are returned once, with the domain kind.
func (class *Class) Properties() *Relation {
	properties := orderedmap.New[string, Kind]()
	for _, relation := range []*Relation{class.Domain, class.Range} {
		for pair := relation.Oldest(); pair != nil; pair = pair.Next() {
			if _, ok := properties.Get(pair.Key); !ok {
				properties.Set(pair.Key, pair.Value)
			}
		}
	}
	return properties
}

func (class *Class) MarshalJSON() ([]byte, error) {
	out := orderedmap.New[string, *Relation]()
	for _, field := range class.fields() {
		if relation := *field.relation; relation != nil && relation.Len() > 0 {
			out.Set(field.key, relation)
		}
	}
	return json.Marshal(out)
}

func (class *Class) UnmarshalJSON(data []byte) error {
	raw := orderedmap.New[string, *Relation]()
	if err := json.Unmarshal(data, raw); err != nil {
		return err
	}

	*class = *NewClass()
	for _, field := range class.fields() {
		if relation, ok := raw.Get(field.key); ok && relation != nil {
			*field.relation = relation
		}
	}
	return nil
}

// String returns a short description of the class for debugging.
func (class *Class) String() string {
	return fmt.Sprintf(
		"Class{super:%d,sub:%d,members:%d,disjoint:%d,domain:%d,range:%d}",
		class.SuperClasses.Len(), class.SubClasses.Len(), class.Members.Len(),
		class.DisjointWith.Len(), class.Domain.Len(), class.Range.Len(),
	)
}
