package cpu

import (
	"pipeline16/asm"
	"pipeline16/mem"
)

// exResult is the EX stage's combinational output for the instruction
// currently in the (old) ID/EX latch.
type exResult struct {
	Valid     bool
	ALUResult uint16
	RtVal     uint16 // store data for SW; already forwarded (Open Question O4)
	WriteReg  uint16
	Control   Control
}

// memResult is the MEM stage's combinational output for the instruction
// currently in the (old) EX/MEM latch.
type memResult struct {
	Valid     bool
	ALUResult uint16
	MemData   uint16
	WriteReg  uint16
	Control   Control
}

// Engine is the five-stage pipeline: instruction memory, data memory,
// register file, the four inter-stage latches, the PC, and running
// performance counters.
type Engine struct {
	IMem *mem.InstructionMemory
	DMem *mem.DataMemory
	Regs RegisterFile

	PC uint16

	IFID  IFIDLatch
	IDEX  IDEXLatch
	EXMEM EXMEMLatch
	MEMWB MEMWBLatch

	Counters PerfCounters
}

// NewEngine builds an Engine around an already-assembled instruction
// memory. Data memory, registers, latches, and counters all start zeroed.
func NewEngine(im *mem.InstructionMemory) *Engine {
	return &Engine{
		IMem: im,
		DMem: mem.NewDataMemory(),
	}
}

// Reset clears architectural and pipeline state but keeps the loaded
// program, per spec.md §7's facade Reset semantics.
func (e *Engine) Reset() {
	e.Regs = RegisterFile{}
	e.DMem = mem.NewDataMemory()
	e.PC = 0
	e.IFID = IFIDLatch{}
	e.IDEX = IDEXLatch{}
	e.EXMEM = EXMEMLatch{}
	e.MEMWB = MEMWBLatch{}
	e.Counters = PerfCounters{}
}

// Halted reports whether the pipeline has fully drained with the PC
// addressing a NOP (spec.md §4.4).
func (e *Engine) Halted() bool {
	return e.IMem.Read(e.PC) == 0 && !e.IFID.Valid && !e.IDEX.Valid && !e.EXMEM.Valid && !e.MEMWB.Valid
}

// StepResult reports what happened during one Step call, for the facade's
// per-cycle view (spec.md §6).
type StepResult struct {
	Stalled       bool
	StallReason   StallReason
	ControlHazard *ControlHazardEvent
	Flushed       bool
	MemoryWarning *MemoryWarning
	// ForwardA/ForwardB are the EX stage's two ALU-input forwards, per
	// spec.md §6's forward_a/forward_b. Forwards is every forward that
	// fired this cycle (EX stage's two plus ID stage's branch/JR compare),
	// for the performance counters and history's forward_history.
	ForwardA *ForwardEvent
	ForwardB *ForwardEvent
	Forwards []ForwardEvent
	Halted   bool
}

func computeALU(op ALUOp, a, b uint16) uint16 {
	switch op {
	case ALUAdd:
		return a + b
	case ALUSub:
		return a - b
	case ALUAnd:
		return a & b
	case ALUOr:
		return a | b
	case ALUSlt:
		if int16(a) < int16(b) {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func disasmFor(instr uint16) string {
	d, err := asm.Decode(instr)
	if err != nil {
		return "???"
	}
	return d.Disasm
}

// stageEX computes the EX stage's combinational output from the (old)
// ID/EX latch, applying EX-stage forwarding (spec.md §4.2.3).
func (e *Engine) stageEX(idex IDEXLatch, exmem EXMEMLatch, wbWriteReg uint16, wbRegWrite bool, wbValue uint16) (exResult, *ForwardEvent, *ForwardEvent) {
	if !idex.Valid {
		return exResult{}, nil, nil
	}

	aVal, fwdA := forwardEX(idex.Rs, idex.RsVal, exmem, wbWriteReg, wbRegWrite, wbValue)
	bVal, fwdB := forwardEX(idex.Rt, idex.RtVal, exmem, wbWriteReg, wbRegWrite, wbValue)

	storeData := bVal
	aluB := bVal
	if idex.Control.ALUSrc {
		aluB = idex.Imm
	}

	return exResult{
		Valid:     true,
		ALUResult: computeALU(idex.Control.ALUOp, aVal, aluB),
		RtVal:     storeData,
		WriteReg:  idex.WriteReg,
		Control:   idex.Control,
	}, fwdA, fwdB
}

// stageMEM computes the MEM stage's combinational output from the (old)
// EX/MEM latch.
func (e *Engine) stageMEM(exmem EXMEMLatch) (memResult, *MemoryWarning) {
	if !exmem.Valid {
		return memResult{}, nil
	}

	var warning *MemoryWarning
	var data uint16

	if exmem.Control.MemWrite {
		e.DMem.Write(exmem.ALUResult, exmem.RtVal)
	}
	if exmem.Control.MemRead {
		v, ok := e.DMem.Read(exmem.ALUResult)
		data = v
		if !ok {
			warning = &MemoryWarning{Type: "UninitializedRead", Address: exmem.ALUResult & 0x1ff}
		}
	}

	return memResult{
		Valid:     true,
		ALUResult: exmem.ALUResult,
		MemData:   data,
		WriteReg:  exmem.WriteReg,
		Control:   exmem.Control,
	}, warning
}

// stageID computes the ID stage's combinational output from the (old)
// IF/ID latch: register read, control derivation, and the branch/jump/JR
// resolution that needs ID-stage forwarding to see values still in flight.
func (e *Engine) stageID(ifid IFIDLatch, dec asm.Decoded, ex exResult, exmem EXMEMLatch, wbWriteReg uint16, wbRegWrite bool, wbValue uint16) (idResult, []ForwardEvent) {
	rsVal := e.Regs.Read(dec.Rs)
	rtVal := e.Regs.Read(dec.Rt)

	control := controlFor(dec.Op)
	var writeReg uint16
	switch control.RegDst {
	case RegDstRd:
		writeReg = dec.Rd
	case RegDstRt:
		writeReg = dec.Rt
	case RegDstR7:
		writeReg = 7
	}

	rsFwd, fwdRs := forwardID(dec.Rs, rsVal, ex, exmem, wbWriteReg, wbRegWrite, wbValue)
	rtFwd, fwdRt := forwardID(dec.Rt, rtVal, ex, exmem, wbWriteReg, wbRegWrite, wbValue)

	var forwards []ForwardEvent
	var idForward *ForwardEvent

	r := idResult{
		dec:      dec,
		rsVal:    rsVal,
		rtVal:    rtVal,
		control:  control,
		writeReg: writeReg,
	}

	switch dec.Op {
	case asm.OpBEQ, asm.OpBNE:
		equal := rsFwd == rtFwd
		r.branchTaken = (dec.Op == asm.OpBEQ && equal) || (dec.Op == asm.OpBNE && !equal)
		r.branchTarget = ifid.PCPlus1 + dec.Imm
		if fwdRs != nil {
			forwards = append(forwards, *fwdRs)
			idForward = fwdRs
		}
		if fwdRt != nil {
			forwards = append(forwards, *fwdRt)
			idForward = fwdRt
		}
	case asm.OpJR:
		r.jr = true
		r.jrTarget = rsFwd
		if fwdRs != nil {
			forwards = append(forwards, *fwdRs)
			idForward = fwdRs
		}
	case asm.OpJUMP, asm.OpJAL:
		r.jumpTaken = true
		r.jumpTarget = (ifid.PCPlus1 & 0xf000) | (dec.Addr & 0x0fff)
	}
	r.idForward = idForward

	return r, forwards
}

func buildIDEX(ifid IFIDLatch, id idResult) IDEXLatch {
	return IDEXLatch{
		Valid:    true,
		PCPlus1:  ifid.PCPlus1,
		RsVal:    id.rsVal,
		RtVal:    id.rtVal,
		Imm:      id.dec.Imm,
		Rs:       id.dec.Rs,
		Rt:       id.dec.Rt,
		WriteReg: id.writeReg,
		Control:  id.control,
		Disasm:   ifid.Disasm,
	}
}

func buildEXMEM(idex IDEXLatch, ex exResult) EXMEMLatch {
	if !idex.Valid {
		return EXMEMLatch{}
	}
	return EXMEMLatch{
		Valid:     true,
		PCPlus1:   idex.PCPlus1,
		ALUResult: ex.ALUResult,
		RtVal:     ex.RtVal,
		WriteReg:  idex.WriteReg,
		Control:   idex.Control,
		Disasm:    idex.Disasm,
	}
}

func buildMEMWB(exmem EXMEMLatch, m memResult) MEMWBLatch {
	if !exmem.Valid {
		return MEMWBLatch{}
	}
	return MEMWBLatch{
		Valid:     true,
		PCPlus1:   exmem.PCPlus1,
		ALUResult: m.ALUResult,
		MemData:   m.MemData,
		WriteReg:  exmem.WriteReg,
		Control:   exmem.Control,
		Disasm:    exmem.Disasm,
	}
}

// Step advances the pipeline by one cycle, per the ordering spec.md §4
// requires: write-back commits before this cycle's register reads, and
// EX/ID forwarding sees values produced earlier in the same cycle.
func (e *Engine) Step() (*StepResult, error) {
	if e.Halted() {
		return nil, ErrHalted
	}

	oldIFID, oldIDEX, oldEXMEM, oldMEMWB := e.IFID, e.IDEX, e.EXMEM, e.MEMWB

	// 1. WB: commit the register write before anything reads this cycle.
	var wbWriteReg uint16
	var wbRegWrite bool
	var wbValue uint16
	if oldMEMWB.Valid {
		wbValue = oldMEMWB.writeBackValue()
		wbWriteReg = oldMEMWB.WriteReg
		wbRegWrite = oldMEMWB.Control.RegWrite
		if wbRegWrite && wbWriteReg != 0 {
			e.Regs.Write(wbWriteReg, wbValue)
		}
		e.Counters.InstructionsRetired++
	}

	// 2. EX, from the old ID/EX latch.
	exRes, fwdA, fwdB := e.stageEX(oldIDEX, oldEXMEM, wbWriteReg, wbRegWrite, wbValue)
	var exForwards []ForwardEvent
	if fwdA != nil {
		exForwards = append(exForwards, *fwdA)
	}
	if fwdB != nil {
		exForwards = append(exForwards, *fwdB)
	}

	// 3. MEM, from the old EX/MEM latch.
	memRes, memWarning := e.stageMEM(oldEXMEM)

	// 4. Hazard detection against the old IF/ID instruction.
	var ifidDec asm.Decoded
	if oldIFID.Valid {
		ifidDec, _ = asm.Decode(oldIFID.Instr)
	}
	stallReason := detectHazard(oldIFID, ifidDec, oldIDEX, oldEXMEM)
	stalling := stallReason != StallNone

	// 5. ID, from the old IF/ID latch (skipped while stalling: the
	// stalled instruction cannot resolve control flow this cycle).
	var id idResult
	var idForwards []ForwardEvent
	if oldIFID.Valid && !stalling {
		id, idForwards = e.stageID(oldIFID, ifidDec, exRes, oldEXMEM, wbWriteReg, wbRegWrite, wbValue)
	}

	// 6. IF, from the current PC (read before it is updated below). Once
	// PC has run past the last assembled instruction there is nothing
	// left to fetch; IF must inject a bubble rather than a valid NOP, or
	// the pipeline never drains (spec.md §4.2.5).
	pastProgram := int(e.PC) >= e.IMem.Len()
	fetchedInstr := e.IMem.Read(e.PC)
	fetchedPCPlus1 := e.PC + 1

	// 7. Resolve the next PC and any flush.
	var nextPC uint16
	var ctrlHazard *ControlHazardEvent
	var flushIFID, flushIDEX bool
	switch {
	case stalling:
		nextPC = e.PC
	case oldIFID.Valid:
		nextPC, ctrlHazard = id.nextPC(e.PC)
		flushIFID = id.flushIFID()
		flushIDEX = id.flushIDEX()
	default:
		nextPC = e.PC + 1
	}

	// 8. Commit the latches.
	if stalling {
		e.IFID = oldIFID
		e.IDEX = IDEXLatch{}
	} else {
		var newIFID IFIDLatch
		if !pastProgram {
			newIFID = IFIDLatch{Valid: true, PCPlus1: fetchedPCPlus1, Instr: fetchedInstr, Disasm: disasmFor(fetchedInstr)}
		}
		if flushIFID {
			newIFID = IFIDLatch{}
		}
		e.IFID = newIFID

		if !oldIFID.Valid || flushIDEX {
			e.IDEX = IDEXLatch{}
		} else {
			e.IDEX = buildIDEX(oldIFID, id)
		}
	}

	e.EXMEM = buildEXMEM(oldIDEX, exRes)
	e.MEMWB = buildMEMWB(oldEXMEM, memRes)
	e.PC = nextPC

	// 9. Counters.
	e.Counters.Cycles++
	if stalling {
		e.Counters.Stalls++
	}
	if flushIFID || flushIDEX {
		e.Counters.Flushes++
	}
	allForwards := append(exForwards, idForwards...)
	if len(allForwards) > 0 {
		e.Counters.Forwards++
	}

	return &StepResult{
		Stalled:       stalling,
		StallReason:   stallReason,
		ControlHazard: ctrlHazard,
		Flushed:       flushIFID || flushIDEX,
		MemoryWarning: memWarning,
		ForwardA:      fwdA,
		ForwardB:      fwdB,
		Forwards:      allForwards,
		Halted:        e.Halted(),
	}, nil
}
