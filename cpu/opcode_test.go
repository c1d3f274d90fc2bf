package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeTable(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op    Opcode
		mn    Mnemonic
		shape Shape
	}){
		{0x10, MN_MOV, MakeShape(OPERAND_REGISTER, OPERAND_IMMEDIATE)},
		{0x11, MN_MOV, MakeShape(OPERAND_REGISTER, OPERAND_REGISTER)},
		{0x12, MN_MOV, MakeShape(OPERAND_REGISTER, OPERAND_ADDRESS)},
		{0x13, MN_MOV, MakeShape(OPERAND_ADDRESS, OPERAND_REGISTER)},
		{0x20, MN_ADD, MakeShape(OPERAND_REGISTER, OPERAND_IMMEDIATE)},
		{0x21, MN_ADD, MakeShape(OPERAND_REGISTER, OPERAND_REGISTER)},
		{0x22, MN_ADD, MakeShape(OPERAND_REGISTER, OPERAND_ADDRESS)},
		{0x30, MN_SUB, MakeShape(OPERAND_REGISTER, OPERAND_IMMEDIATE)},
		{0x31, MN_SUB, MakeShape(OPERAND_REGISTER, OPERAND_REGISTER)},
		{0x32, MN_SUB, MakeShape(OPERAND_REGISTER, OPERAND_ADDRESS)},
		{0x40, MN_INC, MakeShape(OPERAND_REGISTER)},
		{0x41, MN_DEC, MakeShape(OPERAND_REGISTER)},
		{0x50, MN_OUT, MakeShape(OPERAND_REGISTER)},
		{0x60, MN_JMP, MakeShape(OPERAND_IMMEDIATE)},
		{0x70, MN_CMP, MakeShape(OPERAND_REGISTER, OPERAND_IMMEDIATE)},
		{0x71, MN_CMP, MakeShape(OPERAND_REGISTER, OPERAND_REGISTER)},
		{0x72, MN_CMP, MakeShape(OPERAND_REGISTER, OPERAND_ADDRESS)},
		{0x80, MN_JE, MakeShape(OPERAND_IMMEDIATE)},
		{0x81, MN_JNE, MakeShape(OPERAND_IMMEDIATE)},
		{0x82, MN_JG, MakeShape(OPERAND_IMMEDIATE)},
		{0x83, MN_JL, MakeShape(OPERAND_IMMEDIATE)},
		{0xff, MN_HLT, MakeShape()},
	}

	assert.Equal(len(table), len(opcodeTable))

	for _, entry := range table {
		inst, ok := entry.op.Decode()
		assert.True(ok, entry.op.String())
		assert.Equal(entry.mn, inst.Mnemonic, entry.op.String())
		assert.Equal(entry.shape, inst.Shape, entry.op.String())
		assert.Equal(1+entry.shape.Len, entry.op.Size())

		op, ok := Encode(entry.mn, entry.shape)
		assert.True(ok)
		assert.Equal(entry.op, op)
	}
}

func TestOpcodeUnknown(t *testing.T) {
	assert := assert.New(t)

	for code := range 0x100 {
		op := Opcode(code)
		_, ok := op.Decode()
		_, known := opcodeTable[op]
		assert.Equal(known, ok)
		if !known {
			assert.Equal(0, op.Size())
		}
	}

	assert.Equal("0x00 (unknown)", Opcode(0).String())
	assert.Equal("0x10 (MOV REG IMM)", OP_MOV_REG_IMM.String())
	assert.Equal("0xFF (HLT)", OP_HLT.String())
}

func TestEncodeLabel(t *testing.T) {
	assert := assert.New(t)

	for _, mn := range []Mnemonic{MN_JMP, MN_JE, MN_JNE, MN_JG, MN_JL} {
		by_label, ok := Encode(mn, MakeShape(OPERAND_LABEL))
		assert.True(ok, mn.String())
		by_imm, ok := Encode(mn, MakeShape(OPERAND_IMMEDIATE))
		assert.True(ok, mn.String())
		assert.Equal(by_imm, by_label)
	}

	// Only jumps take a label.
	_, ok := Encode(MN_MOV, MakeShape(OPERAND_REGISTER, OPERAND_LABEL))
	assert.False(ok)
	_, ok = Encode(MN_OUT, MakeShape(OPERAND_LABEL))
	assert.False(ok)
}

func TestMnemonic(t *testing.T) {
	assert := assert.New(t)

	mn, ok := LookupMnemonic("mov")
	assert.True(ok)
	assert.Equal(MN_MOV, mn)

	mn, ok = LookupMnemonic("Jne")
	assert.True(ok)
	assert.Equal(MN_JNE, mn)

	_, ok = LookupMnemonic("NOP")
	assert.False(ok)

	assert.Equal("HLT", MN_HLT.String())
	assert.Equal("Mnemonic(99)", Mnemonic(99).String())

	assert.Equal([]Shape{
		MakeShape(OPERAND_REGISTER, OPERAND_IMMEDIATE),
		MakeShape(OPERAND_REGISTER, OPERAND_REGISTER),
		MakeShape(OPERAND_REGISTER, OPERAND_ADDRESS),
		MakeShape(OPERAND_ADDRESS, OPERAND_REGISTER),
	}, MN_MOV.Shapes())

	assert.Equal([]Shape{
		MakeShape(OPERAND_IMMEDIATE),
		MakeShape(OPERAND_LABEL),
	}, MN_JMP.Shapes())
}

func TestRegister(t *testing.T) {
	assert := assert.New(t)

	for n, name := range []string{"R0", "R1", "R2"} {
		reg, ok := LookupRegister(name)
		assert.True(ok, name)
		assert.Equal(Register(n), reg)
		assert.Equal(uint8(n), reg.Code())

		reg, ok = RegisterOf(uint8(n))
		assert.True(ok)
		assert.Equal(Register(n), reg)
	}

	_, ok := LookupRegister("R3")
	assert.False(ok)

	// Register names are case sensitive.
	_, ok = LookupRegister("r1")
	assert.False(ok)

	_, ok = RegisterOf(3)
	assert.False(ok)
	_, ok = RegisterOf(0xff)
	assert.False(ok)
}

func TestShape(t *testing.T) {
	assert := assert.New(t)

	shape := MakeShape(OPERAND_REGISTER, OPERAND_ADDRESS)
	assert.Equal(2, shape.Len)
	assert.Equal("REG [ADDR]", shape.String())
	assert.Equal([]OperandKind{OPERAND_REGISTER, OPERAND_ADDRESS}, shape.Kinds())

	assert.Equal("", MakeShape().String())
	assert.Equal(MAX_OPERANDS, MakeShape(OPERAND_REGISTER, OPERAND_REGISTER, OPERAND_REGISTER).Len)
}
