package classes

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Model maps class labels to classes, ordered by label.
// A model is not modified once built.
type Model struct {
	classes *orderedmap.OrderedMap[string, *Class]
}

// NewModel returns a new empty model.
func NewModel() *Model {
	return &Model{classes: orderedmap.New[string, *Class]()}
}

// Len returns the number of classes in this model.
func (model *Model) Len() int {
	if model == nil || model.classes == nil {
		return 0
	}
	return model.classes.Len()
}

// Labels returns the labels of all classes, in model order.
func (model *Model) Labels() []string {
	labels := make([]string, 0, model.Len())
	if model.Len() == 0 {
		return labels
	}
	for pair := model.classes.Oldest(); pair != nil; pair = pair.Next() {
		labels = append(labels, pair.Key)
	}
	return labels
}

// Class returns the class with the given label.
func (model *Model) Class(label string) (*Class, bool) {
	if model.Len() == 0 {
		return nil, false
	}
	return model.classes.Get(label)
}

// Has checks if the model contains a class with the given label.
func (model *Model) Has(label string) bool {
	_, ok := model.Class(label)
	return ok
}

// Properties returns the properties in domain or range of the class with the given label.
func (model *Model) Properties(label string) *Relation {
	class, ok := model.Class(label)
	if !ok {
		return orderedmap.New[string, Kind]()
	}
	return class.Properties()
}

// set stores class under label.
func (model *Model) set(label string, class *Class) {
	model.classes.Set(label, class)
}

func (model *Model) MarshalJSON() ([]byte, error) {
	if model == nil || model.classes == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(model.classes)
}

func (model *Model) UnmarshalJSON(data []byte) error {
	classes := orderedmap.New[string, *Class]()
	if err := json.Unmarshal(data, classes); err != nil {
		return fmt.Errorf("failed to unmarshal class model: %w", err)
	}
	for pair := classes.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			pair.Value = NewClass()
		}
	}
	model.classes = classes
	return nil
}
