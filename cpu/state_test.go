package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatePeekPoke(t *testing.T) {
	assert := assert.New(t)

	var st State

	assert.NoError(st.Poke(0xff, 0x12))
	value, err := st.Peek(0xff)
	assert.NoError(err)
	assert.Equal(uint8(0x12), value)

	for _, addr := range []int{-1, MEMORY_SIZE, 0x1000} {
		assert.ErrorIs(st.Poke(addr, 1), ErrAddressInvalid, addr)
		_, err = st.Peek(addr)
		assert.ErrorIs(err, ErrAddressInvalid, addr)
	}
}

func TestStateReset(t *testing.T) {
	assert := assert.New(t)

	st := State{
		Pc:       0x20,
		Ir:       0x40,
		Register: [REGISTER_COUNT]uint8{1, 2, 3},
		Flags:    Flags{Zero: true, Sign: true},
	}
	st.Memory[0x33] = 0x44

	st.Reset()
	assert.Equal(uint8(0), st.Pc)
	assert.Equal(uint8(0), st.Ir)
	assert.Equal([REGISTER_COUNT]uint8{}, st.Register)
	assert.Equal(Flags{}, st.Flags)
	assert.Equal(uint8(0x44), st.Memory[0x33])
}

func TestStateDump(t *testing.T) {
	assert := assert.New(t)

	var st State
	st.Memory[0x00] = 0x10
	st.Memory[0x1f] = 0xab
	st.Memory[0xff] = 0xff

	var sb strings.Builder
	assert.NoError(st.Dump(&sb))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	assert.Equal(1+MEMORY_SIZE/ROW_SIZE, len(lines))
	assert.Equal("   00 01 02 03 04 05 06 07 08 09 0A 0B 0C 0D 0E 0F", lines[0])
	assert.True(strings.HasPrefix(lines[1], "00 10 00 00"))
	assert.True(strings.HasSuffix(lines[2], " 00 AB"))
	assert.True(strings.HasPrefix(lines[2], "10 00"))
	assert.True(strings.HasSuffix(lines[16], " FF"))
}

func TestStateString(t *testing.T) {
	assert := assert.New(t)

	st := State{Pc: 0x0a, Register: [REGISTER_COUNT]uint8{0, 0x7f, 0}}
	st.Flags.Zero = true

	text := st.String()
	assert.Contains(text, "   pc: 0A\n")
	assert.Contains(text, "   R1: 7F\n")
	assert.Contains(text, "flags: ZF=1 SF=0\n")
}
