package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzCpu(f *testing.F) {
	for op := range opcodeTable {
		f.Add(uint8(op), uint8(0x00), uint8(0x01), uint8(0x00))
		f.Add(uint8(op), uint8(0x03), uint8(0xff), uint8(0xfe))
	}
	f.Add(uint8(0x00), uint8(0x00), uint8(0x00), uint8(0x00))

	f.Fuzz(func(t *testing.T, opcode uint8, arg1 uint8, arg2 uint8, pc uint8) {
		assert := assert.New(t)

		cpu := NewCpu()
		for n := range MEMORY_SIZE {
			cpu.Memory[n] = uint8(n * 7)
		}
		cpu.Pc = pc
		cpu.Memory[pc] = opcode
		cpu.Memory[pc+1] = arg1
		cpu.Memory[pc+2] = arg2
		cpu.Register = [REGISTER_COUNT]uint8{0x0f, 0xf0, 0x81}

		before := cpu.State

		outcome, err := cpu.Step()

		inst, known := Opcode(opcode).Decode()

		switch outcome {
		case OUTCOME_CONTINUED:
			assert.NoError(err)
			assert.True(known)
			assert.Equal(RUN_RUNNING, cpu.RunState)
			assert.Equal(1, cpu.Ticks)
			if !inst.Mnemonic.IsJump() {
				assert.Equal(uint8(int(pc)+inst.Size()), cpu.Pc)
			}
		case OUTCOME_HALTED:
			assert.NoError(err)
			assert.Equal(OP_HLT, Opcode(opcode))
			assert.Equal(RUN_HALTED, cpu.RunState)
			assert.Equal(pc+1, cpu.Pc)
		case OUTCOME_FAULTED:
			var fault *ErrFault
			assert.True(errors.As(err, &fault))
			assert.True(errors.Is(err, ErrOpcodeUnknown) || errors.Is(err, ErrRegisterInvalid), err)
			assert.Equal(known, !errors.Is(err, ErrOpcodeUnknown))
			assert.Equal(RUN_FAULTED, cpu.RunState)
			assert.Equal(0, cpu.Ticks)

			// Nothing but IR changes on a fault.
			before.Ir = cpu.Ir
			assert.Equal(before, cpu.State)
		default:
			t.Fatalf("unexpected outcome %v", outcome)
		}
	})
}
