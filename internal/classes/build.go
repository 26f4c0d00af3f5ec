package classes

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Build builds a model from the classes reported by src.
//
// Every class inherits the data properties in the domain of its transitive super-classes.
// Object properties are not inherited.
func Build(src Source) (*Model, error) {
	refs, err := src.Classes()
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}

	model := NewModel()
	for _, ref := range refs {
		class, err := buildClass(src, ref.IRI)
		if err != nil {
			return nil, fmt.Errorf("failed to build class %q: %w", ref.Label, err)
		}
		model.set(ref.Label, class)
	}

	model.inherit()
	return model, nil
}

func buildClass(src Source, iri string) (*Class, error) {
	class := NewClass()

	relations := []struct {
		query    func(string) ([]string, error)
		kind     Kind
		relation *Relation
	}{
		{src.SuperClasses, KindClass, class.SuperClasses},
		{src.SubClasses, KindClass, class.SubClasses},
		{src.Members, KindIndividual, class.Members},
		{src.DisjointClasses, KindClass, class.DisjointWith},
	}
	for _, r := range relations {
		labels, err := r.query(iri)
		if err != nil {
			return nil, err
		}
		for _, label := range labels {
			r.relation.Set(label, r.kind)
		}
	}

	properties := []struct {
		direction Direction
		kind      Kind
		relation  *Relation
	}{
		{Domain, KindDataProperty, class.Domain},
		{Domain, KindObjectProperty, class.Domain},
		{Range, KindDataProperty, class.Range},
		{Range, KindObjectProperty, class.Range},
	}
	for _, p := range properties {
		labels, err := src.Properties(iri, p.direction, p.kind)
		if err != nil {
			return nil, err
		}
		for _, label := range labels {
			p.relation.Set(label, p.kind)
		}
	}

	return class, nil
}

// inherit adds the data properties of all transitive super-classes to the domain of each class.
// Properties already in the domain are kept as is.
func (model *Model) inherit() {
	// data properties each class declares itself
	direct := make(map[string][]string, model.Len())
	for pair := model.classes.Oldest(); pair != nil; pair = pair.Next() {
		direct[pair.Key] = pair.Value.DataProperties()
	}

	for pair := model.classes.Oldest(); pair != nil; pair = pair.Next() {
		inherited := orderedmap.New[string, Kind]()
		model.superDataProperties(pair.Key, direct, map[string]struct{}{pair.Key: {}}, inherited)

		for property := inherited.Oldest(); property != nil; property = property.Next() {
			if _, ok := pair.Value.Domain.Get(property.Key); !ok {
				pair.Value.Domain.Set(property.Key, KindDataProperty)
			}
		}
	}
}

// superDataProperties adds the data properties declared by the transitive super-classes of label to properties.
// Each class is visited at most once per call tree, so shared ancestors and cycles are walked a single time.
func (model *Model) superDataProperties(label string, direct map[string][]string, visited map[string]struct{}, properties *Relation) {
	class, ok := model.Class(label)
	if !ok {
		return
	}

	for pair := class.SuperClasses.Oldest(); pair != nil; pair = pair.Next() {
		super := pair.Key
		if _, seen := visited[super]; seen {
			continue
		}
		visited[super] = struct{}{}

		for _, property := range direct[super] {
			if _, ok := properties.Get(property); !ok {
				properties.Set(property, KindDataProperty)
			}
		}
		model.superDataProperties(super, direct, visited, properties)
	}
}
