package history

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline16/asm"
	"pipeline16/cpu"
	"pipeline16/mem"
)

func newLoadedEngine(t *testing.T, source string) *cpu.Engine {
	t.Helper()
	prog, err := asm.Assemble(source)
	require.NoError(t, err)
	im := &mem.InstructionMemory{}
	words := make([]uint16, len(prog.Instructions))
	for i, ins := range prog.Instructions {
		words[i] = ins.Encoding
	}
	im.Load(words)
	return cpu.NewEngine(im)
}

func TestStepBackRestoresBitIdenticalState(t *testing.T) {
	e := newLoadedEngine(t, `
		ADDI $r1,$r0,5
		ADDI $r2,$r0,7
	`)
	store := NewStore(NewSnapshot(e, nil))

	before := NewSnapshot(e, nil)
	r, err := e.Step()
	require.NoError(t, err)
	store.Push(NewSnapshot(e, r))

	restored, ok := store.StepBack()
	require.True(t, ok)
	restored.Restore(e)

	after := NewSnapshot(e, nil)
	assert.Equal(t, before.PC, after.PC)
	assert.Equal(t, before.Regs, after.Regs)
	assert.Equal(t, before.IFID, after.IFID)
	assert.Equal(t, before.IDEX, after.IDEX)
}

func TestStepBackOnEmptyHistoryFails(t *testing.T) {
	e := newLoadedEngine(t, `ADDI $r1,$r0,1`)
	store := NewStore(NewSnapshot(e, nil))

	_, ok := store.StepBack()
	assert.False(t, ok)
	assert.False(t, store.CanStepBack())
}

func TestResetClearsHistory(t *testing.T) {
	e := newLoadedEngine(t, `ADDI $r1,$r0,1`)
	store := NewStore(NewSnapshot(e, nil))

	r, err := e.Step()
	require.NoError(t, err)
	store.Push(NewSnapshot(e, r))
	assert.Equal(t, 2, store.Len())

	store.Reset(NewSnapshot(e, nil))
	assert.Equal(t, 1, store.Len())
	assert.False(t, store.CanStepBack())
}

func TestTimelineTracksLoadUseStall(t *testing.T) {
	e := newLoadedEngine(t, `
		ADDI $r1,$r0,4
		SW   $r1,0($r0)
		LW   $r2,0($r0)
		ADD  $r3,$r2,$r1
	`)
	store := NewStore(NewSnapshot(e, nil))
	for i := 0; i < 10 && !e.Halted(); i++ {
		r, err := e.Step()
		require.NoError(t, err)
		store.Push(NewSnapshot(e, r))
	}

	tl := Timeline(store.All())
	require.NotEmpty(t, tl)

	var sawStall bool
	for _, inst := range tl {
		if len(inst.StalledAtID) > 0 {
			sawStall = true
		}
		if inst.HasWB {
			assert.Greater(t, inst.WBCycle, inst.IFCycle)
		}
	}
	assert.True(t, sawStall)
}

func TestSnapshotDebugDump(t *testing.T) {
	e := newLoadedEngine(t, `ADDI $r1,$r0,1`)
	snap := NewSnapshot(e, nil)
	dump := spew.Sdump(snap)
	assert.True(t, strings.Contains(dump, "Snapshot"))
}
