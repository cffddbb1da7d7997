package vm

import "fmt"

// rescueEntry is one ONERR registration: the PC to jump to if an exception
// reaches this frame while it is live, recorded with the frame that owns
// it so POPERR/unwind can tell which entries belong to which frame.
type rescueEntry struct {
	frame *Frame
	pc    int
}

// ensureEntry is one EPUSH registration: a procedure to CALL (with no
// arguments) as the stack unwinds past the frame that pushed it, whether
// the frame exits normally, via RETURN non-locally, or via an exception.
type ensureEntry struct {
	frame *Frame
	proc  *Proc
}

// excState holds the two LIFO stacks described by the exception/ensure
// machinery: rescue targets installed by ONERR and consumed by raise/
// POPERR, and ensure procedures installed by EPUSH and run by EPOP or by
// unwind. Both are watermarked per frame (Frame.Ridx / Frame.Eidx) so a
// frame's own entries can be trimmed in one slice operation when it exits.
type excState struct {
	rescues []rescueEntry
	ensures []ensureEntry
}

func (e *excState) pushRescue(f *Frame, pc int) {
	e.rescues = append(e.rescues, rescueEntry{frame: f, pc: pc})
}

func (e *excState) popRescue() {
	if len(e.rescues) == 0 {
		return
	}
	e.rescues = e.rescues[:len(e.rescues)-1]
}

func (e *excState) truncateRescues(n int) { e.rescues = e.rescues[:n] }

func (e *excState) pushEnsure(f *Frame, p *Proc) {
	e.ensures = append(e.ensures, ensureEntry{frame: f, proc: p})
}

func (e *excState) popEnsure() (ensureEntry, bool) {
	if len(e.ensures) == 0 {
		return ensureEntry{}, false
	}
	last := e.ensures[len(e.ensures)-1]
	e.ensures = e.ensures[:len(e.ensures)-1]
	return last, true
}

func (e *excState) truncateEnsures(n int) { e.ensures = e.ensures[:n] }

// RubyError is the Go-level carrier for a raised VM exception as it
// propagates through raise. Value is the actual host exception object
// visible to RESCUE handlers.
type RubyError struct {
	Value Value
	frame *Frame // frame active at the moment of RAISE, for backtraces
}

func (e *RubyError) Error() string {
	if e.Value.IsHeap() {
		return fmt.Sprintf("exception: %#v", e.Value)
	}
	return "exception"
}

// LocalJumpError mirrors the host's LocalJumpError: raised when a block
// yields or returns into a frame that is no longer on the stack (a
// non-local return through a promoted environment).
type LocalJumpError struct{ Reason string }

func (e *LocalJumpError) Error() string { return "LocalJumpError: " + e.Reason }

// ArgumentError mirrors the host's ArgumentError: raised by invoke, before
// the callee's frame is pushed, when a Strict proc receives an argument
// count outside its declared arity.
type ArgumentError struct {
	Got, WantMin, WantMax int
}

func (e *ArgumentError) Error() string {
	if e.WantMax < 0 {
		return fmt.Sprintf("wrong number of arguments (%d for %d+)", e.Got, e.WantMin)
	}
	if e.WantMin == e.WantMax {
		return fmt.Sprintf("wrong number of arguments (%d for %d)", e.Got, e.WantMin)
	}
	return fmt.Sprintf("wrong number of arguments (%d for %d..%d)", e.Got, e.WantMin, e.WantMax)
}
