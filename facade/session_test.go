package facade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline16/asm"
)

func TestStepBeforeAssembleFailsNoProgram(t *testing.T) {
	s := NewSession()
	_, _, err := s.Step()
	require.Error(t, err)
	ferr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, NoProgram, ferr.Kind)
}

func TestAssembleFailureLeavesSessionUntouched(t *testing.T) {
	s := NewSession()
	_, _, err := s.Assemble("ADDI $r1,$r0,5\nADDI $r2,$r0,7")
	require.NoError(t, err)

	before := s.lastView

	_, _, err = s.Assemble("FROBNICATE $r1,$r2")
	require.Error(t, err)
	aerr, ok := err.(*asm.Error)
	require.True(t, ok)
	assert.Equal(t, asm.UnknownMnemonic, aerr.Kind)

	assert.Equal(t, before, s.lastView)
}

func TestScenario1RunsToHaltViaFacade(t *testing.T) {
	s := NewSession()
	_, _, err := s.Assemble(`
		ADDI $r1,$r0,5
		ADDI $r2,$r0,7
		ADD  $r3,$r1,$r2
	`)
	require.NoError(t, err)

	var sawExMem, sawMemWb bool
	var stalls int
	running := true
	for i := 0; i < 20 && running; i++ {
		var view CPUState
		running, view, err = s.Step()
		require.NoError(t, err)
		if view.ForwardA != nil && view.ForwardA.Source == "EX_MEM" {
			sawExMem = true
		}
		if view.ForwardB != nil && view.ForwardB.Source == "MEM_WB" {
			sawMemWb = true
		}
		if view.IsStalling {
			stalls++
		}
	}

	assert.True(t, sawExMem)
	assert.True(t, sawMemWb)
	assert.Equal(t, 0, stalls)
	assert.Equal(t, uint16(5), s.engine.Regs.Snapshot()[1])
	assert.Equal(t, uint16(7), s.engine.Regs.Snapshot()[2])
	assert.Equal(t, uint16(12), s.engine.Regs.Snapshot()[3])
}

func TestStepBackViaFacadeRestoresView(t *testing.T) {
	s := NewSession()
	_, before, err := s.Assemble(`
		ADDI $r1,$r0,5
		ADDI $r2,$r0,7
	`)
	require.NoError(t, err)

	_, _, err = s.Step()
	require.NoError(t, err)
	assert.True(t, s.CanStepBack())

	after, err := s.StepBack()
	require.NoError(t, err)
	assert.Equal(t, before.PC, after.PC)
	assert.Equal(t, before.Registers, after.Registers)
	assert.False(t, s.CanStepBack())
}

func TestStepBackOnFreshSessionFailsNoHistory(t *testing.T) {
	s := NewSession()
	_, _, err := s.Assemble("ADDI $r1,$r0,1")
	require.NoError(t, err)

	_, err = s.StepBack()
	require.Error(t, err)
	ferr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, NoHistory, ferr.Kind)
}

func TestResetKeepsProgramClearsHistory(t *testing.T) {
	s := NewSession()
	_, _, err := s.Assemble("ADDI $r1,$r0,9")
	require.NoError(t, err)

	_, _, err = s.Step()
	require.NoError(t, err)
	assert.True(t, s.CanStepBack())

	view, err := s.Reset()
	require.NoError(t, err)
	assert.Equal(t, uint16(0), view.PC)
	assert.False(t, s.CanStepBack())

	_, _, err = s.Step()
	require.NoError(t, err)
}

func TestHaltedStepReturnsHaltedError(t *testing.T) {
	s := NewSession()
	_, _, err := s.Assemble("ADDI $r1,$r0,1")
	require.NoError(t, err)

	running := true
	for i := 0; i < 10 && running; i++ {
		running, _, err = s.Step()
		require.NoError(t, err)
	}

	_, _, err = s.Step()
	require.Error(t, err)
	ferr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, Halted, ferr.Kind)
}

func TestLoadUseStallSurfacesStallInfo(t *testing.T) {
	s := NewSession()
	_, _, err := s.Assemble(`
		ADDI $r1,$r0,4
		SW   $r1,0($r0)
		LW   $r2,0($r0)
		ADD  $r3,$r2,$r1
	`)
	require.NoError(t, err)

	var sawStall bool
	running := true
	for i := 0; i < 20 && running; i++ {
		var view CPUState
		running, view, err = s.Step()
		require.NoError(t, err)
		if view.IsStalling {
			require.NotNil(t, view.StallInfo)
			assert.Equal(t, "load-use", view.StallInfo.Reason)
			sawStall = true
		}
	}
	assert.True(t, sawStall)
}
