package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembleBasic(t *testing.T) {
	src := `
		ADDI $r1,$r0,5
		ADDI $r2,$r0,7
		ADD  $r3,$r1,$r2
	`
	prog, err := Assemble(src)
	assert.NoError(t, err)
	assert.Len(t, prog.Instructions, 3)
	assert.Equal(t, "ADDI $r1,$r0,5", prog.Instructions[0].Disasm)
	assert.Equal(t, "ADD $r3,$r1,$r2", prog.Instructions[2].Disasm)
	assert.Equal(t, "R", prog.Instructions[2].Format)
}

func TestAssembleDeterministic(t *testing.T) {
	src := "ADDI $r1,$r0,5\nADD $r3,$r1,$r1"
	p1, err1 := Assemble(src)
	p2, err2 := Assemble(src)
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, p1.Instructions, p2.Instructions)
}

func TestLabelsAndBranch(t *testing.T) {
	src := `
loop: ADDI $r1,$r0,1
      BEQ  $r1,$r0,loop
      JUMP loop
`
	prog, err := Assemble(src)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0), prog.Symbols["loop"])
	// BEQ at addr 1, target is loop (0): offset = 0 - (1+1) = -2
	assert.Equal(t, "BEQ $r1,$r0,-2", prog.Instructions[1].Disasm)
	assert.Equal(t, "JUMP 0", prog.Instructions[2].Disasm)
}

func TestUndefinedLabel(t *testing.T) {
	_, err := Assemble("BEQ $r1,$r0,nowhere")
	var aerr *Error
	assert.ErrorAs(t, err, &aerr)
	assert.Equal(t, UndefinedLabel, aerr.Kind)
}

func TestUnknownMnemonic(t *testing.T) {
	_, err := Assemble("FROB $r1,$r0,$r0")
	var aerr *Error
	assert.ErrorAs(t, err, &aerr)
	assert.Equal(t, UnknownMnemonic, aerr.Kind)
	assert.Equal(t, 1, aerr.Line)
}

func TestBadOperand(t *testing.T) {
	_, err := Assemble("ADD $r1,$r0")
	var aerr *Error
	assert.ErrorAs(t, err, &aerr)
	assert.Equal(t, BadOperand, aerr.Kind)
}

func TestImmediateOutOfRange(t *testing.T) {
	_, err := Assemble("ADDI $r1,$r0,32")
	var aerr *Error
	assert.ErrorAs(t, err, &aerr)
	assert.Equal(t, ImmediateOutOfRange, aerr.Kind)

	_, err = Assemble("ADDI $r1,$r0,-33")
	assert.ErrorAs(t, err, &aerr)
	assert.Equal(t, ImmediateOutOfRange, aerr.Kind)
}

func TestImmediateBoundaryIsLegal(t *testing.T) {
	_, err := Assemble("ADDI $r1,$r0,31")
	assert.NoError(t, err)
	_, err = Assemble("ADDI $r1,$r0,-32")
	assert.NoError(t, err)
}

func TestTooManyInstructions(t *testing.T) {
	src := ""
	for i := 0; i < 513; i++ {
		src += "ADD $r0,$r0,$r0\n"
	}
	_, err := Assemble(src)
	var aerr *Error
	assert.ErrorAs(t, err, &aerr)
	assert.Equal(t, TooManyInstructions, aerr.Kind)
}

func TestDecodeRoundTrip(t *testing.T) {
	prog, err := Assemble("ADDI $r1,$r0,5\nSW $r1,5($r0)\nJAL 4\nJR $r7")
	assert.NoError(t, err)
	for _, rec := range prog.Instructions {
		dec, err := Decode(rec.Encoding)
		assert.NoError(t, err)
		assert.Equal(t, rec.Disasm, dec.Disasm)
	}
}

func TestZeroWordIsNop(t *testing.T) {
	dec, err := Decode(0)
	assert.NoError(t, err)
	assert.Equal(t, OpADD, dec.Op)
	assert.Equal(t, "ADD $r0,$r0,$r0", dec.Disasm)
}

// Open Question O2: branch-offset encoding is re-derived from spec.md
// §4.2.4, not guessed from either quirky fixture encoding (0x6282 vs
// 0x6281).
func TestBranchOffsetEncoding(t *testing.T) {
	// BEQ at address 0 branching two instructions ahead (to address 3):
	// offset = target - (pc+1) = 3 - 1 = 2.
	src := "BEQ $r1,$r2,target\nADDI $r3,$r0,9\nADDI $r3,$r0,9\ntarget: ADD $r4,$r0,$r0"
	prog, err := Assemble(src)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x6282), prog.Instructions[0].Encoding)
}

// Open Question O3: SW $r2,5($r1) addresses rs_val+5, matching the
// fixture's own comment.
func TestStoreOperandOrder(t *testing.T) {
	prog, err := Assemble("SW $r2,5($r1)")
	assert.NoError(t, err)
	dec, err := Decode(prog.Instructions[0].Encoding)
	assert.NoError(t, err)
	assert.Equal(t, uint16(2), dec.Rt)
	assert.Equal(t, uint16(1), dec.Rs)
	assert.Equal(t, uint16(5), dec.Imm)
}

func TestHexImmediate(t *testing.T) {
	prog, err := Assemble("ADDI $r1,$r0,0x0A")
	assert.NoError(t, err)
	dec, _ := Decode(prog.Instructions[0].Encoding)
	assert.Equal(t, uint16(10), dec.Imm)
}

func TestBinaryAndHexFields(t *testing.T) {
	prog, err := Assemble("ADD $r0,$r0,$r0")
	assert.NoError(t, err)
	rec := prog.Instructions[0]
	assert.Equal(t, "0x0000", rec.Hex)
	assert.Equal(t, "0000000000000000", rec.Binary)
	assert.Len(t, rec.Binary, 16)
}
