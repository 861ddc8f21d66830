// Package util provides small helpers shared by the pipeline and its
// printers: a buffered output writer and a generic stack, sized to this
// core's single-threaded execution model (§5: "the core performs no
// concurrency") rather than a concurrent worker-pool one.
package util

import (
	"bufio"
	"fmt"
	"io"
)

// Writer buffers formatted output and flushes it to an underlying io.Writer.
// It exists so printers can build up a block or instruction line at a time
// with small helper methods. A plain bufio.Writer underneath is enough since
// this core processes one function at a time; no channel-based buffering is
// needed.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w in buffered output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes a formatted string.
func (w *Writer) Write(format string, args ...any) {
	fmt.Fprintf(w.w, format, args...)
}

// WriteString writes a plain string.
func (w *Writer) WriteString(s string) {
	w.w.WriteString(s)
}

// Label writes a one-line label of the given name.
func (w *Writer) Label(name string) {
	fmt.Fprintf(w.w, "%s:\n", name)
}

// Flush flushes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
