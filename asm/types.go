// Package asm implements the lexer, two-pass assembler, and decoder for the
// three-format, 16-bit instruction set of spec.md §4.1.
package asm

// Op is a tagged mnemonic. Per spec.md §9's design note, instructions are
// modeled as one enum plus the fields relevant to that Op, rather than one
// Go struct type per mnemonic; Format says which subset of fields is
// meaningful, keeping Decode and the encoder exhaustive over a single
// switch.
type Op int

const (
	OpADD Op = iota
	OpSUB
	OpAND
	OpOR
	OpSLT
	OpJR
	OpLW
	OpSW
	OpADDI
	OpSUBI
	OpSLTI
	OpBEQ
	OpBNE
	OpANDI
	OpJUMP
	OpJAL
)

// Format is the encoding shape (spec.md §4.1's three instruction formats).
type Format int

const (
	FormatR Format = iota
	FormatI
	FormatJ
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatJ:
		return "J"
	default:
		return "?"
	}
}

type opInfo struct {
	Name   string
	Format Format
	Opcode uint16 // 4-bit opcode field; meaningless (0) for R-type, which shares 0000
	Funct  uint16 // 3-bit funct field; only meaningful for FormatR
}

var opTable = map[Op]opInfo{
	OpADD: {"ADD", FormatR, 0b0000, 0b000},
	OpSUB: {"SUB", FormatR, 0b0000, 0b001},
	OpAND: {"AND", FormatR, 0b0000, 0b010},
	OpOR:  {"OR", FormatR, 0b0000, 0b011},
	OpSLT: {"SLT", FormatR, 0b0000, 0b100},
	OpJR:  {"JR", FormatR, 0b0000, 0b101},

	OpLW:   {"LW", FormatI, 0b0001, 0},
	OpSW:   {"SW", FormatI, 0b0010, 0},
	OpADDI: {"ADDI", FormatI, 0b0011, 0},
	OpSUBI: {"SUBI", FormatI, 0b0100, 0},
	OpSLTI: {"SLTI", FormatI, 0b0101, 0},
	OpBEQ:  {"BEQ", FormatI, 0b0110, 0},
	OpBNE:  {"BNE", FormatI, 0b0111, 0},
	OpANDI: {"ANDI", FormatI, 0b1000, 0},

	OpJUMP: {"JUMP", FormatJ, 0b1001, 0},
	OpJAL:  {"JAL", FormatJ, 0b1010, 0},
}

var mnemonicToOp map[string]Op
var opcodeToOp map[uint16]Op   // I-type and J-type, keyed by 4-bit opcode
var functToOp map[uint16]Op    // R-type, keyed by 3-bit funct

func init() {
	mnemonicToOp = make(map[string]Op, len(opTable))
	opcodeToOp = make(map[uint16]Op, len(opTable))
	functToOp = make(map[uint16]Op, 6)
	for op, info := range opTable {
		mnemonicToOp[info.Name] = op
		switch info.Format {
		case FormatR:
			functToOp[info.Funct] = op
		default:
			opcodeToOp[info.Opcode] = op
		}
	}
}

// InstructionRecord is one assembled instruction (spec.md §3).
type InstructionRecord struct {
	Address  uint16
	Encoding uint16
	Hex      string
	Binary   string
	Source   string
	Disasm   string
	Format   string // "R", "I", or "J"
}

// SymbolTable maps label names to the word address of the instruction that
// follows them (spec.md §4.1).
type SymbolTable map[string]uint16

// Program is the output of a successful Assemble call.
type Program struct {
	Instructions []InstructionRecord
	Symbols      SymbolTable
}
