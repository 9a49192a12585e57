// Package prompt asks the operator yes/no questions before destructive or
// long-running calls.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer answers a yes/no question.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(question string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(question string) (bool, error) {
	return f(question)
}

// Always answers every question with yes.
func Always(yes bool) Confirmer {
	return ConfirmFunc(func(string) (bool, error) { return yes, nil })
}

// Terminal reads answers line by line. Only y, yes, s and sim count as yes.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// Stdin returns a Terminal reading from in and printing questions to out.
func Stdin(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Confirm prints the question with a [y/N] suffix and reads one line.
// End of input counts as no.
func (t *Terminal) Confirm(question string) (bool, error) {
	fmt.Fprintf(t.out, "%s [y/N] ", question)
	line, err := t.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "sim":
		return true, nil
	}
	return false, nil
}
