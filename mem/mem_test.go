package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstructionMemoryLoadAndRead(t *testing.T) {
	im := &InstructionMemory{}
	im.Load([]uint16{0x3105, 0x0000})
	assert.Equal(t, uint16(0x3105), im.Read(0))
	assert.Equal(t, uint16(0), im.Read(1))
	assert.Equal(t, uint16(0), im.Read(511)) // unpopulated entries are zero
	assert.Equal(t, 1, im.Len())
}

func TestDataMemoryUninitializedRead(t *testing.T) {
	dm := NewDataMemory()
	v, ok := dm.Read(5)
	assert.Equal(t, uint16(0), v)
	assert.False(t, ok)
}

func TestDataMemoryWriteRead(t *testing.T) {
	dm := NewDataMemory()
	dm.Write(5, 42)
	v, ok := dm.Read(5)
	assert.True(t, ok)
	assert.Equal(t, uint16(42), v)
}

func TestDataMemorySnapshotRestoreIsolation(t *testing.T) {
	dm := NewDataMemory()
	dm.Write(1, 10)
	snap := dm.Snapshot()

	dm.Write(1, 20)
	assert.Equal(t, uint16(10), snap[1]) // snapshot unaffected by later writes

	other := NewDataMemory()
	other.Restore(snap)
	v, _ := other.Read(1)
	assert.Equal(t, uint16(10), v)
}
