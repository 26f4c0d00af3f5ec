package template

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Decisions is a stream of answers to authoring prompts.
type Decisions interface {
	// Next returns the answer to the given prompt.
	Next(prompt string) (string, error)
}

// ErrNoDecision is returned when a stream of decisions is exhausted.
var ErrNoDecision = errors.New("no more decisions")

// Script is a fixed sequence of answers.
type Script struct {
	answers []string
	asked   []string
}

// NewScript returns a script answering prompts with the given answers in order.
func NewScript(answers ...string) *Script {
	return &Script{answers: answers}
}

func (script *Script) Next(prompt string) (string, error) {
	if len(script.answers) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoDecision, prompt)
	}
	answer := script.answers[0]
	script.answers = script.answers[1:]
	script.asked = append(script.asked, prompt)
	return answer, nil
}

// Remaining returns the number of answers not yet used.
func (script *Script) Remaining() int {
	return len(script.answers)
}

// Prompts returns the prompts answered so far.
func (script *Script) Prompts() []string {
	return script.asked
}

// Lines reads answers line by line, writing each prompt before reading.
type Lines struct {
	scanner *bufio.Scanner
	prompts io.Writer
}

// NewLines returns a stream reading answers from r and writing prompts to w.
// w may be nil.
func NewLines(r io.Reader, w io.Writer) *Lines {
	if w == nil {
		w = io.Discard
	}
	return &Lines{scanner: bufio.NewScanner(r), prompts: w}
}

func (lines *Lines) Next(prompt string) (string, error) {
	if _, err := io.WriteString(lines.prompts, prompt); err != nil {
		return "", err
	}
	if !lines.scanner.Scan() {
		if err := lines.scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %q", ErrNoDecision, prompt)
	}
	return strings.TrimSpace(lines.scanner.Text()), nil
}
