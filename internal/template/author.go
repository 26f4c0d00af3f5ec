package template

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/FAU-CDI/metaextract/internal/classes"
)

// Prefix is an external ontology classes and properties may be taken from.
type Prefix struct {
	Name string
	IRI  string
}

// Session holds everything needed to author a template.
type Session struct {
	Model     *classes.Model
	Prefixes  []Prefix
	Decisions Decisions

	// Menu receives the menus shown before each prompt, may be nil.
	Menu io.Writer
}

// ErrNoPrefixes is returned when an external ontology is requested but none is known.
var ErrNoPrefixes = errors.New("no external ontologies available")

// externalChoice is the menu entry selecting an external ontology.
const externalChoice = 99

// names accepted for classes and properties entered by hand
var validName = regexp.MustCompile(`^[\p{L}\p{N}_\s]+$`)

// Author creates a new template from a sequence of decisions.
//
// First, each candidate is mapped to a class and properties, or skipped.
// Then new nodes are created, and finally extra properties are added to existing nodes.
//
// Plain candidates are mapped to a single property assigned the extracted value.
// For candidates made up of several fields, each field records the property it is mapped to.
func Author(session Session, candidates []Candidate) (*Template, error) {
	a := &author{
		Session: session,
		tpl:     New(),
		labels:  session.Model.Labels(),
	}
	if a.Menu == nil {
		a.Menu = io.Discard
	}

	for _, candidate := range candidates {
		if err := a.addItem(candidate.Key, candidate.Fields, NewSourceValue()); err != nil {
			return nil, fmt.Errorf("candidate %q: %w", candidate.Key, err)
		}
	}

	for {
		yes, err := a.confirm("Do you want to create new node? (y/n): ")
		if err != nil {
			return nil, err
		}
		if !yes {
			break
		}

		name, err := a.name("the new node")
		if err != nil {
			return nil, err
		}
		value, err := a.ask("Enter the value of the new node: ")
		if err != nil {
			return nil, err
		}
		if err := a.addItem(name, nil, ParseAssignment(value)); err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
	}

	if a.tpl.Len() == 0 {
		return nil, ErrEmptyTemplate
	}

	for {
		yes, err := a.confirm("Do you want to add extra properties to existing nodes? (y/n): ")
		if err != nil {
			return nil, err
		}
		if !yes {
			break
		}
		if err := a.extraProperty(); err != nil {
			return nil, err
		}
	}

	return a.tpl, nil
}

type author struct {
	Session
	tpl    *Template
	labels []string
}

func (a *author) printf(format string, args ...any) {
	fmt.Fprintf(a.Menu, format, args...)
}

func (a *author) ask(prompt string) (string, error) {
	answer, err := a.Decisions.Next(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// number parses a menu choice made up only of digits.
func number(answer string) (int, bool) {
	if answer == "" || strings.TrimLeft(answer, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(answer)
	return n, err == nil
}

func (a *author) confirm(prompt string) (bool, error) {
	for {
		answer, err := a.ask(prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		a.printf("Invalid input. Please enter 'y' for Yes or 'n' for No.\n")
	}
}

func (a *author) name(label string) (string, error) {
	for {
		answer, err := a.ask(fmt.Sprintf("Enter a string with only letters and numbers for %s: ", label))
		if err != nil {
			return "", err
		}
		if validName.MatchString(answer) {
			return answer, nil
		}
		a.printf("Invalid input! Please enter only letters and numbers.\n")
	}
}

func (a *author) prefix() (string, error) {
	if len(a.Prefixes) == 0 {
		return "", ErrNoPrefixes
	}

	a.printf("\nAvailable Ontologies:\n")
	for i, prefix := range a.Prefixes {
		a.printf("%d. %s <%s>\n", i+1, prefix.Name, prefix.IRI)
	}
	for {
		answer, err := a.ask("Enter the ontology index: ")
		if err != nil {
			return "", err
		}
		if choice, ok := number(answer); ok && choice >= 1 && choice <= len(a.Prefixes) {
			return a.Prefixes[choice-1].Name, nil
		}
		a.printf("Invalid ontology choice. Please enter a number between 1 and %d.\n", len(a.Prefixes))
	}
}

// node asks for an existing node and returns its position.
func (a *author) node() (int, error) {
	keys := a.tpl.Keys()

	a.printf("\nAvailable nodes:\n")
	for i, key := range keys {
		a.printf("%d. %s\n", i+1, key)
	}
	for {
		answer, err := a.ask("Enter the node index: ")
		if err != nil {
			return 0, err
		}
		if choice, ok := number(answer); ok && choice >= 1 && choice <= len(keys) {
			return choice - 1, nil
		}
		a.printf("Invalid node choice. Please enter a number between 1 and %d.\n", len(keys))
	}
}

type property struct {
	Name string
	Kind classes.Kind
}

func (a *author) properties(class string) []property {
	relation := a.Model.Properties(class)
	properties := make([]property, 0, relation.Len())
	for pair := relation.Oldest(); pair != nil; pair = pair.Next() {
		properties = append(properties, property{Name: pair.Key, Kind: pair.Value})
	}
	return properties
}

func (a *author) printProperties(class string, properties []property) {
	a.printf("\nAvailable properties for %s:\n", class)
	for i, prop := range properties {
		a.printf("%d. %s (%s)\n", i+1, prop.Name, prop.Kind)
	}
	a.printf("%d. External Ontologies\n", externalChoice)
}

// property asks for the property that subject is mapped to.
func (a *author) property(class, subject string, properties []property) (string, error) {
	a.printProperties(class, properties)
	for {
		answer, err := a.ask(fmt.Sprintf("Enter the property for %s: ", subject))
		if err != nil {
			return "", err
		}
		choice, ok := number(answer)
		switch {
		case ok && choice == externalChoice:
			prefix, err := a.prefix()
			if err != nil {
				return "", err
			}
			name, err := a.name("the property name")
			if err != nil {
				return "", err
			}
			return prefix + ":" + name, nil
		case ok && choice >= 1 && choice <= len(properties):
			return properties[choice-1].Name, nil
		}
		a.printf("Invalid property choice for %s. Please try again.\n", subject)
	}
}

// addItem asks for the class and properties of a single node with the given source key.
func (a *author) addItem(key string, fields []string, value Assignment) error {
	for {
		a.printf("\nAvailable classes:\n0. Skip\n")
		for i, label := range a.labels {
			a.printf("%d. %s\n", i+1, label)
		}
		a.printf("%d. External Ontologies\n", externalChoice)

		answer, err := a.ask(fmt.Sprintf("Enter the class for %s: ", key))
		if err != nil {
			return err
		}

		var class string
		props := NewProperties()

		choice, ok := number(answer)
		switch {
		case !ok:
			a.printf("Invalid class choice\n")
			continue
		case choice == 0:
			return nil
		case choice == externalChoice:
			prefix, err := a.prefix()
			if err != nil {
				return err
			}
			name, err := a.name("the class name")
			if err != nil {
				return err
			}
			propName, err := a.ask("Enter the property name: ")
			if err != nil {
				return err
			}
			class = prefix + ":" + name
			props.Set(prefix+":"+propName, value)
		case choice <= len(a.labels):
			class = a.labels[choice-1]

			properties := a.properties(class)
			if len(properties) == 0 {
				a.printf("No properties available for %s. Skipping...\n", class)
				continue
			}

			if fields == nil {
				name, err := a.property(class, key, properties)
				if err != nil {
					return err
				}
				props.Set(name, value)
				break
			}
			for _, field := range fields {
				name, err := a.property(class, field, properties)
				if err != nil {
					return err
				}
				props.Set(field, NewLiteral(name))
			}
		default:
			a.printf("Invalid class choice for %s.\n", key)
			continue
		}

		nodeKey := MakeNodeKey(key, class).Raw

		a.printf("\nSelected for %s:\n%q: {\n", key, nodeKey)
		for pair := props.Oldest(); pair != nil; pair = pair.Next() {
			a.printf("    %q: %q,\n", pair.Key, pair.Value.Text)
		}
		a.printf("},\n")

		yes, err := a.confirm("Confirm selections? (y/n): ")
		if err != nil {
			return err
		}
		if !yes {
			a.printf("Discarding selection and restarting for this class.\n")
			continue
		}

		existing, ok := a.tpl.Get(nodeKey)
		if !ok {
			a.tpl.Set(nodeKey, props)
			return nil
		}
		for pair := props.Oldest(); pair != nil; pair = pair.Next() {
			existing.Set(pair.Key, pair.Value)
		}
		return nil
	}
}

// extraProperty asks for a single property to add to an existing node.
func (a *author) extraProperty() error {
	index, err := a.node()
	if err != nil {
		return err
	}
	raw := a.tpl.Keys()[index]
	props, _ := a.tpl.Get(raw)

	key, err := ParseNodeKey(raw)
	if err != nil {
		return err
	}

	properties := a.properties(key.Class)
	a.printProperties(key.Class, properties)

	for {
		answer, err := a.ask("Enter the property index: ")
		if err != nil {
			return err
		}

		choice, ok := number(answer)
		switch {
		case ok && choice == externalChoice:
			if !key.External() {
				a.printf("This class is not of an external ontology type.\n")
				continue
			}

			kind, err := a.propertyKind()
			if err != nil {
				return err
			}
			name, err := a.name("the property name")
			if err != nil {
				return err
			}
			value, err := a.propertyValue(kind, "Please enter the value: ")
			if err != nil {
				return err
			}
			props.Set(key.Prefix()+":"+name, value)
			return nil
		case ok && choice >= 1 && choice <= len(properties):
			prop := properties[choice-1]
			value, err := a.propertyValue(prop.Kind, "Enter the value for new property: ")
			if err != nil {
				return err
			}
			props.Set(prop.Name, value)
			return nil
		}
		a.printf("Invalid property choice. Please try again.\n")
	}
}

func (a *author) propertyKind() (classes.Kind, error) {
	a.printf("1. Object property\n2. Data property\n")
	for {
		answer, err := a.ask("Please select the node type: ")
		if err != nil {
			return "", err
		}
		switch answer {
		case "1":
			return classes.KindObjectProperty, nil
		case "2":
			return classes.KindDataProperty, nil
		}
		a.printf("Invalid choice. Please try again.\n")
	}
}

// propertyValue asks for the value of a property of the given kind.
// Object properties reference an existing node.
func (a *author) propertyValue(kind classes.Kind, prompt string) (Assignment, error) {
	if kind == classes.KindObjectProperty {
		index, err := a.node()
		if err != nil {
			return Assignment{}, err
		}
		return NewReference(index), nil
	}

	value, err := a.ask(prompt)
	if err != nil {
		return Assignment{}, err
	}
	return ParseAssignment(value), nil
}
