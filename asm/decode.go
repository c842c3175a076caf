package asm

import (
	"fmt"

	"pipeline16/mask"
)

// Decoded is the tagged-variant decoding of one 16-bit instruction word, per
// spec.md §9's "instructions as sum types" design note: Op tags which of
// the remaining fields are meaningful, so both the assembler's encoder and
// the pipeline engine's decode stage can dispatch off one exhaustive value.
type Decoded struct {
	Op     Op
	Format Format
	Rs     uint16
	Rt     uint16
	Rd     uint16
	Funct  uint16
	Imm    uint16 // sign-extended to 16 bits, meaningful for I-type
	Addr   uint16 // 12-bit absolute target, meaningful for J-type
	Raw    uint16
	Disasm string
}

// Decode decodes a 16-bit instruction word. A zero word decodes to the
// canonical NOP (R-type ADD $r0,$r0,$r0), per spec.md §3.
func Decode(raw uint16) (Decoded, error) {
	opcode := mask.Range(raw, mask.I1, mask.I4)

	d := Decoded{Raw: raw}

	if opcode == 0 {
		d.Format = FormatR
		d.Rs = mask.Range(raw, mask.I5, mask.I7)
		d.Rt = mask.Range(raw, mask.I8, mask.I10)
		d.Rd = mask.Range(raw, mask.I11, mask.I13)
		d.Funct = mask.Range(raw, mask.I14, mask.I16)
		op, ok := functToOp[d.Funct]
		if !ok {
			return Decoded{}, fmt.Errorf("illegal funct %03b in word %#04x", d.Funct, raw)
		}
		d.Op = op
		d.Disasm = disasmR(d)
		return d, nil
	}

	op, ok := opcodeToOp[opcode]
	if !ok {
		return Decoded{}, fmt.Errorf("illegal opcode %04b in word %#04x", opcode, raw)
	}
	d.Op = op
	info := opTable[op]
	d.Format = info.Format

	switch info.Format {
	case FormatI:
		d.Rs = mask.Range(raw, mask.I5, mask.I7)
		d.Rt = mask.Range(raw, mask.I8, mask.I10)
		imm6 := mask.Range(raw, mask.I11, mask.I16)
		d.Imm = mask.SignExtend6(imm6)
		d.Disasm = disasmI(d)
	case FormatJ:
		d.Addr = mask.Range(raw, mask.I5, mask.I16)
		d.Disasm = disasmJ(d)
	}
	return d, nil
}

func regName(r uint16) string { return fmt.Sprintf("$r%d", r) }

func signedImm(imm uint16) int16 { return int16(imm) }

func disasmR(d Decoded) string {
	name := opTable[d.Op].Name
	if d.Op == OpJR {
		return fmt.Sprintf("%s %s", name, regName(d.Rs))
	}
	return fmt.Sprintf("%s %s,%s,%s", name, regName(d.Rd), regName(d.Rs), regName(d.Rt))
}

func disasmI(d Decoded) string {
	name := opTable[d.Op].Name
	switch d.Op {
	case OpLW, OpSW:
		return fmt.Sprintf("%s %s,%d(%s)", name, regName(d.Rt), signedImm(d.Imm), regName(d.Rs))
	case OpBEQ, OpBNE:
		return fmt.Sprintf("%s %s,%s,%d", name, regName(d.Rs), regName(d.Rt), signedImm(d.Imm))
	default: // ADDI, SUBI, SLTI, ANDI
		return fmt.Sprintf("%s %s,%s,%d", name, regName(d.Rt), regName(d.Rs), signedImm(d.Imm))
	}
}

func disasmJ(d Decoded) string {
	name := opTable[d.Op].Name
	return fmt.Sprintf("%s %d", name, d.Addr)
}
