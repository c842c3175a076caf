package facade

import (
	"pipeline16/asm"
	"pipeline16/cpu"
	"pipeline16/history"
	"pipeline16/mem"
)

// Session is the stateful singleton of spec.md §4.4: the one long-lived
// struct a caller holds across assemble/step/step-back/reset calls,
// grounded on the teacher's Cpu struct being the thing LoadProgram/Debug/
// tick are all repeatedly called against. Session owns the loaded program,
// the engine's architectural state, the undo history, and the most
// recently served view; every method mutates it in place and returns a
// fresh deep-copy view, never a pointer into live state.
type Session struct {
	program  *asm.Program
	engine   *cpu.Engine
	history  *history.Store
	lastView CPUState
}

// NewSession returns an empty session; Assemble must be called before Step.
func NewSession() *Session {
	return &Session{}
}

// Assemble compiles source, loads it into a fresh engine, and resets
// history. On failure the session's prior state (program, engine, history)
// is left untouched, per spec.md §7's "assembly errors abort ... without
// altering state".
func (s *Session) Assemble(source string) ([]MachineCodeEntry, CPUState, error) {
	prog, err := asm.Assemble(source)
	if err != nil {
		return nil, CPUState{}, err
	}

	words := make([]uint16, len(prog.Instructions))
	for i, ins := range prog.Instructions {
		words[i] = ins.Encoding
	}
	im := &mem.InstructionMemory{}
	im.Load(words)

	s.program = prog
	s.engine = cpu.NewEngine(im)
	s.history = history.NewStore(history.NewSnapshot(s.engine, nil))

	listing := make([]MachineCodeEntry, len(prog.Instructions))
	for i, ins := range prog.Instructions {
		listing[i] = MachineCodeEntry{
			Address: ins.Address, Hex: ins.Hex, Binary: ins.Binary,
			Source: ins.Source, Disasm: ins.Disasm,
		}
	}

	s.lastView = s.buildView(nil)
	return listing, s.lastView, nil
}

// Step advances the pipeline by one cycle. Returns running=false once the
// pipeline has drained after the program's last instruction (spec.md §6).
func (s *Session) Step() (running bool, view CPUState, err error) {
	if s.engine == nil {
		return false, CPUState{}, newError(NoProgram, "no program assembled")
	}
	if s.engine.Halted() {
		return false, s.lastView, newError(Halted, "pipeline already halted")
	}

	result, err := s.engine.Step()
	if err != nil {
		return false, s.lastView, err
	}

	s.history.Push(history.NewSnapshot(s.engine, result))
	s.lastView = s.buildView(result)
	return !s.engine.Halted(), s.lastView, nil
}

// StepBack restores the engine to the checkpoint before the most recent
// Step, per spec.md §4.3.
func (s *Session) StepBack() (CPUState, error) {
	if s.engine == nil {
		return CPUState{}, newError(NoProgram, "no program assembled")
	}
	if !s.history.CanStepBack() {
		return CPUState{}, newError(NoHistory, "no history to step back to")
	}
	snap, _ := s.history.StepBack()
	snap.Restore(s.engine)
	s.lastView = s.buildView(snap.Result)
	return s.lastView, nil
}

// Reset clears architectural and pipeline state and history, keeping the
// last assembled program (spec.md §6).
func (s *Session) Reset() (CPUState, error) {
	if s.engine == nil {
		return CPUState{}, newError(NoProgram, "no program assembled")
	}
	s.engine.Reset()
	s.history.Reset(history.NewSnapshot(s.engine, nil))
	s.lastView = s.buildView(nil)
	return s.lastView, nil
}

// CanStepBack reports whether StepBack would currently succeed.
func (s *Session) CanStepBack() bool {
	return s.history != nil && s.history.CanStepBack()
}

func (s *Session) buildView(result *cpu.StepResult) CPUState {
	e := s.engine
	checkpoints := s.history.All()
	tl := history.Timeline(checkpoints)

	view := CPUState{
		PC:         e.PC,
		Cycle:      e.Counters.Cycles,
		Registers:  e.Regs.Snapshot(),
		DataMemory: e.DMem.Snapshot(),

		IFID:  ifidView(e.IFID),
		IDEX:  idexView(e.IDEX),
		EXMEM: exmemView(e.EXMEM),
		MEMWB: memwbView(e.MEMWB),

		PipelineHistory: timelineView(tl),
		StallHistory:    stallHistory(checkpoints),
		ForwardHistory:  forwardHistory(checkpoints),

		Performance: performanceView(e.Counters),
	}

	if result != nil {
		view.ForwardA = forwardView(result.ForwardA)
		view.ForwardB = forwardView(result.ForwardB)
		view.IsStalling = result.Stalled
		view.FlushOccurred = result.Flushed
		view.ControlHazard = controlHazardView(result.ControlHazard)
		view.MemoryWarning = memoryWarningView(result.MemoryWarning)
		if result.Stalled {
			view.StallInfo = &StallInfo{Reason: string(result.StallReason)}
		}
	}

	return view
}

func stallHistory(checkpoints []history.Snapshot) []StallRecord {
	var out []StallRecord
	for _, c := range checkpoints {
		if c.Result != nil && c.Result.Stalled {
			out = append(out, StallRecord{Cycle: c.Cycle, Reason: string(c.Result.StallReason)})
		}
	}
	return out
}

func forwardHistory(checkpoints []history.Snapshot) []ForwardRecord {
	var out []ForwardRecord
	for _, c := range checkpoints {
		if c.Result == nil {
			continue
		}
		for _, f := range c.Result.Forwards {
			out = append(out, ForwardRecord{Cycle: c.Cycle, ForwardView: *forwardView(&f)})
		}
	}
	return out
}
