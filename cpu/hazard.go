package cpu

import "pipeline16/asm"

// StallReason names which hazard category froze IF and ID this cycle
// (spec.md §6's stall_info.reason).
type StallReason string

const (
	StallNone           StallReason = ""
	StallLoadUse        StallReason = "load-use"
	StallBranchAfterLoad StallReason = "branch-after-load"
)

// detectHazard implements spec.md §4.2.2: a load-use hazard (the
// instruction in ID/EX is a load whose destination the instruction in
// IF/ID needs), and a branch-after-load hazard (the instruction in ID is a
// branch that needs a value still in EX/MEM from a load).
func detectHazard(ifid IFIDLatch, dec asm.Decoded, idex IDEXLatch, exmem EXMEMLatch) StallReason {
	if !ifid.Valid {
		return StallNone
	}
	rs, rt := dec.Rs, dec.Rt

	if idex.Valid && idex.Control.MemRead && idex.WriteReg != 0 &&
		(idex.WriteReg == rs || idex.WriteReg == rt) {
		return StallLoadUse
	}

	if (dec.Op == asm.OpBEQ || dec.Op == asm.OpBNE) &&
		exmem.Valid && exmem.Control.MemRead && exmem.WriteReg != 0 &&
		(exmem.WriteReg == rs || exmem.WriteReg == rt) {
		return StallBranchAfterLoad
	}

	return StallNone
}
