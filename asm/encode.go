package asm

import (
	"fmt"
	"strconv"
	"strings"

	"pipeline16/mask"
)

const maxInstructions = 512

// Assemble lexes and encodes source into a Program. Assembly stops at the
// first error and reports the offending source line (spec.md §4.1).
func Assemble(source string) (*Program, error) {
	type pendingLine struct {
		lineNo int
		source string
		toks   []string
	}

	lines := strings.Split(source, "\n")
	syms := SymbolTable{}
	var pending []pendingLine
	addr := uint16(0)

	for i, raw := range lines {
		lineNo := i + 1
		stripped := stripComment(raw)
		if strings.TrimSpace(stripped) == "" {
			continue
		}
		toks := tokenize(stripped)
		if len(toks) == 0 {
			continue
		}

		label, rest := splitLabel(toks)
		if label != "" {
			syms[strings.ToLower(label)] = addr
		}
		if len(rest) == 0 {
			continue // label-only line
		}

		if int(addr) >= maxInstructions {
			return nil, newError(TooManyInstructions, lineNo, "program exceeds %d instructions", maxInstructions)
		}
		pending = append(pending, pendingLine{lineNo, strings.TrimSpace(raw), rest})
		addr++
	}

	records := make([]InstructionRecord, 0, len(pending))
	for i, p := range pending {
		rec, err := encodeInstruction(uint16(i), p.lineNo, p.source, p.toks, syms)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return &Program{Instructions: records, Symbols: syms}, nil
}

func encodeInstruction(addr uint16, lineNo int, source string, toks []string, syms SymbolTable) (InstructionRecord, error) {
	mnemonic := strings.ToUpper(toks[0])
	op, ok := mnemonicToOp[mnemonic]
	if !ok {
		return InstructionRecord{}, newError(UnknownMnemonic, lineNo, "unknown mnemonic %q", toks[0])
	}
	operands := toks[1:]
	info := opTable[op]

	var word uint16
	var err *Error

	switch info.Format {
	case FormatR:
		word, err = encodeR(op, info, operands, lineNo)
	case FormatI:
		word, err = encodeI(op, info, operands, lineNo, addr, syms)
	case FormatJ:
		word, err = encodeJ(op, info, operands, lineNo, syms)
	}
	if err != nil {
		return InstructionRecord{}, err
	}

	dec, derr := Decode(word)
	if derr != nil {
		// encode produced an undecodable word: an internal inconsistency,
		// not a user-facing error kind.
		return InstructionRecord{}, newError(BadOperand, lineNo, "%v", derr)
	}

	return InstructionRecord{
		Address:  addr,
		Encoding: word,
		Hex:      fmt.Sprintf("0x%04X", word),
		Binary:   toBinary16(word),
		Source:   source,
		Disasm:   dec.Disasm,
		Format:   info.Format.String(),
	}, nil
}

func toBinary16(w uint16) string {
	s := strconv.FormatUint(uint64(w), 2)
	return strings.Repeat("0", 16-len(s)) + s
}

func encodeR(op Op, info opInfo, operands []string, lineNo int) (uint16, *Error) {
	var rd, rs, rt uint16
	if op == OpJR {
		if len(operands) != 1 {
			return 0, newError(BadOperand, lineNo, "JR expects 1 operand, got %d", len(operands))
		}
		r, ok := parseRegister(operands[0])
		if !ok {
			return 0, newError(BadOperand, lineNo, "invalid register %q", operands[0])
		}
		rs = r
	} else {
		if len(operands) != 3 {
			return 0, newError(BadOperand, lineNo, "%s expects 3 operands, got %d", info.Name, len(operands))
		}
		var ok bool
		if rd, ok = parseRegister(operands[0]); !ok {
			return 0, newError(BadOperand, lineNo, "invalid register %q", operands[0])
		}
		if rs, ok = parseRegister(operands[1]); !ok {
			return 0, newError(BadOperand, lineNo, "invalid register %q", operands[1])
		}
		if rt, ok = parseRegister(operands[2]); !ok {
			return 0, newError(BadOperand, lineNo, "invalid register %q", operands[2])
		}
	}
	return (info.Opcode << 12) | (rs << 9) | (rt << 6) | (rd << 3) | info.Funct, nil
}

func encodeI(op Op, info opInfo, operands []string, lineNo int, addr uint16, syms SymbolTable) (uint16, *Error) {
	var rs, rt uint16
	var imm int64

	switch op {
	case OpLW, OpSW:
		if len(operands) != 3 {
			return 0, newError(BadOperand, lineNo, "%s expects \"$rt,imm($rs)\", got %d operands", info.Name, len(operands))
		}
		r, ok := parseRegister(operands[0])
		if !ok {
			return 0, newError(BadOperand, lineNo, "invalid register %q", operands[0])
		}
		rt = r
		v, ok := parseImmediate(operands[1])
		if !ok {
			return 0, newError(BadOperand, lineNo, "invalid immediate %q", operands[1])
		}
		imm = v
		if rs, ok = parseRegister(operands[2]); !ok {
			return 0, newError(BadOperand, lineNo, "invalid register %q", operands[2])
		}

	case OpADDI, OpSUBI, OpSLTI, OpANDI:
		if len(operands) != 3 {
			return 0, newError(BadOperand, lineNo, "%s expects 3 operands, got %d", info.Name, len(operands))
		}
		r, ok := parseRegister(operands[0])
		if !ok {
			return 0, newError(BadOperand, lineNo, "invalid register %q", operands[0])
		}
		rt = r
		if rs, ok = parseRegister(operands[1]); !ok {
			return 0, newError(BadOperand, lineNo, "invalid register %q", operands[1])
		}
		v, ok := parseImmediate(operands[2])
		if !ok {
			return 0, newError(BadOperand, lineNo, "invalid immediate %q", operands[2])
		}
		imm = v

	case OpBEQ, OpBNE:
		if len(operands) != 3 {
			return 0, newError(BadOperand, lineNo, "%s expects 3 operands, got %d", info.Name, len(operands))
		}
		r, ok := parseRegister(operands[0])
		if !ok {
			return 0, newError(BadOperand, lineNo, "invalid register %q", operands[0])
		}
		rs = r
		if rt, ok = parseRegister(operands[1]); !ok {
			return 0, newError(BadOperand, lineNo, "invalid register %q", operands[1])
		}
		target, isLabel, found := resolveTarget(operands[2], syms)
		if !found {
			return 0, newError(UndefinedLabel, lineNo, "undefined label %q", operands[2])
		}
		if isLabel {
			// spec.md §4.1: branch target expands to label_address - (pc+1)
			imm = int64(target) - int64(addr) - 1
		} else {
			// a numeric offset keeps its sign; target has been cut to uint16
			imm, _ = parseImmediate(operands[2])
		}
	}

	if imm < -32 || imm > 31 {
		return 0, newError(ImmediateOutOfRange, lineNo, "immediate %d out of range [-32,31]", imm)
	}
	imm6 := uint16(imm) & 0x3f

	return (info.Opcode << 12) | (rs << 9) | (rt << 6) | imm6, nil
}

func encodeJ(op Op, info opInfo, operands []string, lineNo int, syms SymbolTable) (uint16, *Error) {
	if len(operands) != 1 {
		return 0, newError(BadOperand, lineNo, "%s expects 1 operand, got %d", info.Name, len(operands))
	}
	target, isLabel, found := resolveTarget(operands[0], syms)
	if !found {
		return 0, newError(UndefinedLabel, lineNo, "undefined label %q", operands[0])
	}
	_ = isLabel // jumps always expand to the absolute address either way
	if target > 0x0fff {
		return 0, newError(ImmediateOutOfRange, lineNo, "jump target %d exceeds 12-bit address space", target)
	}
	return (info.Opcode << 12) | (target & mask.Word(0x0fff)), nil
}
