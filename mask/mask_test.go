package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstLast(t *testing.T) {
	w := Word(0b1111000000001111)
	assert.Equal(t, Word(0b1111), First(w, I4))
	assert.Equal(t, Word(0b1111), Last(w, I4))
}

func TestRange(t *testing.T) {
	// field layout: op[15:12] rs[11:9] rt[8:6] rd[5:3] funct[2:0]
	w := Word(0b0001_010_011_101_011) // op=0001, rs=2, rt=3, rd=5, funct=3
	assert.Equal(t, Word(0b0001), Range(w, I1, I4))
	assert.Equal(t, Word(0b010), Range(w, I5, I7))
	assert.Equal(t, Word(0b011), Range(w, I8, I10))
	assert.Equal(t, Word(0b101), Range(w, I11, I13))
	assert.Equal(t, Word(0b011), Range(w, I14, I16))
}

func TestIsSet(t *testing.T) {
	w := Word(0x8000)
	assert.True(t, IsSet(w, I1))
	assert.False(t, IsSet(w, I2))
}

func TestUnsetFlip(t *testing.T) {
	w := Word(0xffff)
	w = Unset(w, I1, I4)
	assert.Equal(t, Word(0x0fff), w)

	w = Flip(w, I1, I4)
	assert.Equal(t, Word(0xffff), w)
}

func TestSignExtend6(t *testing.T) {
	assert.Equal(t, Word(0), SignExtend6(0))
	assert.Equal(t, Word(31), SignExtend6(31))
	assert.Equal(t, Word(0xffff), SignExtend6(0x3f)) // -1
	assert.Equal(t, Word(0xffe0), SignExtend6(0x20)) // -32
}

func TestRangePanicsOnBadOrder(t *testing.T) {
	assert.Panics(t, func() { Range(0, I5, I1) })
}
