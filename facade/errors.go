// Package facade implements the stateful session of spec.md §4.4: the
// single owned struct a caller holds across assemble/step/step-back/reset
// calls, and the JSON-shaped cpu_state view of spec.md §6.
package facade

import "fmt"

// Kind identifies one of the facade's own failure modes (spec.md §7),
// distinct from the assembler's asm.Kind.
type Kind int

const (
	NoProgram Kind = iota
	NoHistory
	Halted
)

func (k Kind) String() string {
	switch k {
	case NoProgram:
		return "NoProgram"
	case NoHistory:
		return "NoHistory"
	case Halted:
		return "Halted"
	default:
		return "UnknownError"
	}
}

// Error is a facade-level failure: step before assemble, step-back with
// empty history, or step after halt.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
