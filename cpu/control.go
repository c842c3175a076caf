package cpu

import "pipeline16/asm"

// controlFor derives the control signals of spec.md §4.2.1 from a decoded
// instruction's Op.
func controlFor(op asm.Op) Control {
	switch op {
	case asm.OpADD:
		return Control{RegWrite: true, RegDst: RegDstRd, ALUOp: ALUAdd, MemToReg: MemToRegALU}
	case asm.OpSUB:
		return Control{RegWrite: true, RegDst: RegDstRd, ALUOp: ALUSub, MemToReg: MemToRegALU}
	case asm.OpAND:
		return Control{RegWrite: true, RegDst: RegDstRd, ALUOp: ALUAnd, MemToReg: MemToRegALU}
	case asm.OpOR:
		return Control{RegWrite: true, RegDst: RegDstRd, ALUOp: ALUOr, MemToReg: MemToRegALU}
	case asm.OpSLT:
		return Control{RegWrite: true, RegDst: RegDstRd, ALUOp: ALUSlt, MemToReg: MemToRegALU}
	case asm.OpJR:
		return Control{}
	case asm.OpLW:
		return Control{RegWrite: true, ALUSrc: true, MemRead: true, RegDst: RegDstRt, ALUOp: ALUAdd, MemToReg: MemToRegMem}
	case asm.OpSW:
		return Control{ALUSrc: true, MemWrite: true, ALUOp: ALUAdd}
	case asm.OpADDI:
		return Control{RegWrite: true, ALUSrc: true, RegDst: RegDstRt, ALUOp: ALUAdd, MemToReg: MemToRegALU}
	case asm.OpSUBI:
		return Control{RegWrite: true, ALUSrc: true, RegDst: RegDstRt, ALUOp: ALUSub, MemToReg: MemToRegALU}
	case asm.OpSLTI:
		return Control{RegWrite: true, ALUSrc: true, RegDst: RegDstRt, ALUOp: ALUSlt, MemToReg: MemToRegALU}
	case asm.OpANDI:
		return Control{RegWrite: true, ALUSrc: true, RegDst: RegDstRt, ALUOp: ALUAnd, MemToReg: MemToRegALU}
	case asm.OpBEQ, asm.OpBNE:
		return Control{}
	case asm.OpJUMP:
		return Control{}
	case asm.OpJAL:
		return Control{RegWrite: true, RegDst: RegDstR7, MemToReg: MemToRegPCPlus1}
	default:
		return Control{}
	}
}

// ControlHazardKind identifies a taken control-flow event (spec.md §6's
// control_hazard.type).
type ControlHazardKind int

const (
	ControlHazardNone ControlHazardKind = iota
	ControlHazardBranch
	ControlHazardJump
	ControlHazardJR
)

func (k ControlHazardKind) String() string {
	switch k {
	case ControlHazardBranch:
		return "Branch"
	case ControlHazardJump:
		return "Jump"
	case ControlHazardJR:
		return "JR"
	default:
		return ""
	}
}

// ControlHazardEvent reports a taken control transfer (spec.md §6).
type ControlHazardEvent struct {
	Kind          ControlHazardKind
	TargetAddress uint16
}

// idResult is everything the ID stage computes combinationally from the
// current IF/ID latch.
type idResult struct {
	dec      asm.Decoded
	rsVal    uint16
	rtVal    uint16
	control  Control
	writeReg uint16

	jr           bool
	jrTarget     uint16
	jumpTaken    bool
	jumpTarget   uint16
	branchTaken  bool
	branchTarget uint16

	idForward *ForwardEvent // forwarding applied to the branch/JR compare, if any
}

// nextPC applies spec.md §4.2.4's priority mux: jr > jump > branch > pc+1.
func (r idResult) nextPC(pc uint16) (next uint16, event *ControlHazardEvent) {
	switch {
	case r.jr:
		return r.jrTarget, &ControlHazardEvent{Kind: ControlHazardJR, TargetAddress: r.jrTarget}
	case r.jumpTaken:
		return r.jumpTarget, &ControlHazardEvent{Kind: ControlHazardJump, TargetAddress: r.jumpTarget}
	case r.branchTaken:
		return r.branchTarget, &ControlHazardEvent{Kind: ControlHazardBranch, TargetAddress: r.branchTarget}
	default:
		return pc + 1, nil
	}
}

// flushIDEX reports whether the ID/EX latch must be invalidated this edge.
// JAL is exempted per spec.md §4.2.4 so its PC+1 write-back to r7 survives.
func (r idResult) flushIDEX() bool {
	if r.jr || r.branchTaken {
		return true
	}
	if r.jumpTaken && r.dec.Op != asm.OpJAL {
		return true
	}
	return false
}

// flushIFID reports whether the IF/ID latch must be invalidated this edge.
func (r idResult) flushIFID() bool {
	return r.jr || r.jumpTaken || r.branchTaken
}
