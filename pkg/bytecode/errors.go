package bytecode

import (
	"errors"
	"fmt"
)

// Fault kinds. Every fault halts the run; errors.Is matches a *Fault
// against its kind.
var (
	ErrUsage              = errors.New("usage error")
	ErrEmptyCollection    = errors.New("empty collection")
	ErrTooShort           = errors.New("collection too short")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrOutOfRange         = errors.New("value out of range")
	ErrUnknownInstruction = errors.New("unknown instruction")
)

// ErrHalted is returned when executing on a VM that has already stopped.
var ErrHalted = errors.New("vm halted")

// Fault is a fatal runtime error tied to a source line.
type Fault struct {
	Line    int    // 1-based source line
	Kind    error  // One of the Err* kinds above
	Message string // Diagnostic text, without the line prefix
}

// Error renders the diagnostic exactly as it is reported to the user.
func (f *Fault) Error() string {
	return fmt.Sprintf("L%d: %s", f.Line, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.Kind
}

// AsFault extracts a *Fault from err.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func newFault(line int, kind error, format string, args ...any) *Fault {
	return &Fault{Line: line, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// shortFault builds the "stack too short" fault for op.
func shortFault(in Instruction) *Fault {
	return newFault(in.Line, ErrTooShort, "can't %s, stack too short", in.Op)
}
