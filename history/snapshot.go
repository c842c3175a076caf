// Package history implements the step-back undo stack and the per-instruction
// timeline reconstruction of spec.md §4.3.
package history

import "pipeline16/cpu"

// Snapshot is a deep copy of the engine's architectural and pipeline state
// at one instant, plus the StepResult of the step that produced it (nil for
// the initial checkpoint pushed before any step).
type Snapshot struct {
	Cycle      uint64
	PC         uint16
	Regs       [8]uint16
	DataMemory map[uint16]uint16

	IFID  cpu.IFIDLatch
	IDEX  cpu.IDEXLatch
	EXMEM cpu.EXMEMLatch
	MEMWB cpu.MEMWBLatch

	Counters cpu.PerfCounters
	Result   *cpu.StepResult
}

// NewSnapshot deep-copies the engine's current state. Register and data
// memory copies go through their own Snapshot methods so later writes to
// the live engine cannot reach back into history (spec.md §4.4's
// deep-copy-isolation requirement).
func NewSnapshot(e *cpu.Engine, result *cpu.StepResult) Snapshot {
	return Snapshot{
		Cycle:      e.Counters.Cycles,
		PC:         e.PC,
		Regs:       e.Regs.Snapshot(),
		DataMemory: e.DMem.Snapshot(),
		IFID:       e.IFID,
		IDEX:       e.IDEX,
		EXMEM:      e.EXMEM,
		MEMWB:      e.MEMWB,
		Counters:   e.Counters,
		Result:     result,
	}
}

// Restore writes this snapshot's state back into e, the inverse of
// NewSnapshot.
func (s Snapshot) Restore(e *cpu.Engine) {
	e.PC = s.PC
	e.Regs.Restore(s.Regs)
	e.DMem.Restore(s.DataMemory)
	e.IFID = s.IFID
	e.IDEX = s.IDEX
	e.EXMEM = s.EXMEM
	e.MEMWB = s.MEMWB
	e.Counters = s.Counters
}
