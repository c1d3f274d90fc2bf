package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatePatch(t *testing.T) {
	assert := assert.New(t)

	var st State
	st.Memory[0x02] = 0x99

	err := st.Patch(strings.NewReader("[00]: 10\n\n[01]:01\n  [fe]: Ab  \n"))
	assert.NoError(err)
	assert.Equal(uint8(0x10), st.Memory[0x00])
	assert.Equal(uint8(0x01), st.Memory[0x01])
	assert.Equal(uint8(0x99), st.Memory[0x02])
	assert.Equal(uint8(0xab), st.Memory[0xfe])
}

func TestStatePatchInvalid(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		patch string
		line  int
	}){
		{"00: 10", 1},
		{"[00]: 10\n[100]: 10", 2},
		{"[00]: 1", 1},
		{"[00] 10", 1},
		{"[00]: 10\n\n[0g]: 10", 3},
		{"[00]: 10 ; comment", 1},
	}

	for _, entry := range table {
		var st State
		err := st.Patch(strings.NewReader(entry.patch))
		assert.ErrorIs(err, ErrPatchFormat, entry.patch)

		var syntax ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.patch) {
			assert.Equal(entry.line, syntax.LineNo, entry.patch)
		}

		// Nothing is written when any line is bad.
		assert.Equal(Memory{}, st.Memory, entry.patch)
	}
}
