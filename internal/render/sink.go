package render

import (
	"bufio"
	"io"
)

// Sink receives rendered lines.
type Sink interface {
	WriteLine(line string) error
}

// Terminal overwrites a single terminal row in place.
type Terminal struct {
	w *bufio.Writer
}

// NewTerminal writes lines to w, each prefixed by a carriage return.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: bufio.NewWriter(w)}
}

func (t *Terminal) WriteLine(line string) error {
	t.w.WriteByte('\r')
	t.w.WriteString(line)
	return t.w.Flush()
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(line string) error

func (f SinkFunc) WriteLine(line string) error { return f(line) }
