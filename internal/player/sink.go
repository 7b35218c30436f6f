package player

import (
	"fmt"
	"io"
)

// Sink receives each serialized frame. Implementations own clearing
// prior output; the pipeline does not track terminal cursor state.
type Sink interface {
	WriteFrame(frame string) error
}

// clearScreen homes the cursor and erases the previous frame.
const clearScreen = "\x1b[H\x1b[2J"

// TerminalSink writes frames to a terminal, clearing between frames.
type TerminalSink struct {
	out io.Writer
}

// NewTerminalSink creates a sink writing to out.
func NewTerminalSink(out io.Writer) *TerminalSink {
	return &TerminalSink{out: out}
}

// WriteFrame clears prior output and writes the frame.
func (t *TerminalSink) WriteFrame(frame string) error {
	_, err := fmt.Fprint(t.out, clearScreen, frame, "\n")
	return err
}
