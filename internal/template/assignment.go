package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the kind of an assignment.
type Kind uint8

const (
	Literal     Kind = iota // a fixed value
	SourceValue             // "#Value": the value found in the extracted data
	RowValue                // "#" (or any other text starting with "#"): the value of the current row
	Reference               // "@N": the node at position N of the template
)

func (kind Kind) String() string {
	switch kind {
	case Literal:
		return "literal"
	case SourceValue:
		return "source value"
	case RowValue:
		return "row value"
	case Reference:
		return "reference"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(kind))
	}
}

// Placeholders as written in templates.
const (
	SourceValuePlaceholder = "#Value"
	RowValuePlaceholder    = "#"
)

// Assignment is the value assigned to a property of a template node.
//
// Text holds the assignment as written in the template; it is preserved exactly when marshaling.
// Index holds the referenced position for references, and -1 if the reference is malformed.
type Assignment struct {
	Kind  Kind
	Text  string
	Index int
}

// ParseAssignment parses an assignment from its textual form.
func ParseAssignment(text string) Assignment {
	switch {
	case text == SourceValuePlaceholder:
		return Assignment{Kind: SourceValue, Text: text}
	case strings.HasPrefix(text, RowValuePlaceholder):
		return Assignment{Kind: RowValue, Text: text}
	case strings.HasPrefix(text, "@"):
		index, err := strconv.Atoi(text[1:])
		if err != nil || index < 0 {
			index = -1
		}
		return Assignment{Kind: Reference, Text: text, Index: index}
	default:
		return Assignment{Kind: Literal, Text: text}
	}
}

// NewLiteral returns a literal assignment.
func NewLiteral(text string) Assignment {
	return Assignment{Kind: Literal, Text: text}
}

// NewSourceValue returns a "#Value" assignment.
func NewSourceValue() Assignment {
	return Assignment{Kind: SourceValue, Text: SourceValuePlaceholder}
}

// NewRowValue returns a "#" assignment.
func NewRowValue() Assignment {
	return Assignment{Kind: RowValue, Text: RowValuePlaceholder}
}

// NewReference returns a reference to the node at the given position.
func NewReference(index int) Assignment {
	return Assignment{Kind: Reference, Text: "@" + strconv.Itoa(index), Index: index}
}

// Placeholder checks if the assignment is substituted by a value from the extracted data.
func (a Assignment) Placeholder() bool {
	return a.Kind == SourceValue || a.Kind == RowValue
}

func (a Assignment) String() string {
	return a.Text
}

func (a Assignment) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Text)
}

func (a *Assignment) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("assignment must be a string: %w", err)
	}
	*a = ParseAssignment(text)
	return nil
}
