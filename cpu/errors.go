package cpu

import "errors"

// ErrHalted is returned by Step when the pipeline has drained and the PC
// addresses a NOP (spec.md §4.4's halt condition).
var ErrHalted = errors.New("cpu: pipeline halted")

// MemoryWarning reports a non-fatal data memory access (spec.md §6's
// memory_warning).
type MemoryWarning struct {
	Type    string
	Address uint16
}
