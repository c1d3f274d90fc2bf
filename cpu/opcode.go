package cpu

import (
	"fmt"
	"strings"
)

// Mnemonic is an assembly language instruction name.
type Mnemonic int

const (
	MN_MOV = Mnemonic(0)  // MOV
	MN_ADD = Mnemonic(1)  // ADD
	MN_SUB = Mnemonic(2)  // SUB
	MN_INC = Mnemonic(3)  // INC
	MN_DEC = Mnemonic(4)  // DEC
	MN_OUT = Mnemonic(5)  // OUT
	MN_JMP = Mnemonic(6)  // JMP
	MN_CMP = Mnemonic(7)  // CMP
	MN_JE  = Mnemonic(8)  // JE
	MN_JNE = Mnemonic(9)  // JNE
	MN_JG  = Mnemonic(10) // JG
	MN_JL  = Mnemonic(11) // JL
	MN_HLT = Mnemonic(12) // HLT
)

var mnemonicName = [...]string{
	MN_MOV: "MOV",
	MN_ADD: "ADD",
	MN_SUB: "SUB",
	MN_INC: "INC",
	MN_DEC: "DEC",
	MN_OUT: "OUT",
	MN_JMP: "JMP",
	MN_CMP: "CMP",
	MN_JE:  "JE",
	MN_JNE: "JNE",
	MN_JG:  "JG",
	MN_JL:  "JL",
	MN_HLT: "HLT",
}

func (mn Mnemonic) String() string {
	if mn < 0 || int(mn) >= len(mnemonicName) {
		return fmt.Sprintf("Mnemonic(%d)", int(mn))
	}
	return mnemonicName[mn]
}

// LookupMnemonic finds a mnemonic by name, ignoring case.
func LookupMnemonic(word string) (mn Mnemonic, ok bool) {
	for n, name := range mnemonicName {
		if strings.EqualFold(word, name) {
			return Mnemonic(n), true
		}
	}
	return
}

// OperandKind is the type of a single instruction operand.
type OperandKind int

const (
	OPERAND_REGISTER  = OperandKind(0) // REG
	OPERAND_IMMEDIATE = OperandKind(1) // IMM
	OPERAND_ADDRESS   = OperandKind(2) // [ADDR]
	OPERAND_LABEL     = OperandKind(3) // LABEL
)

func (kind OperandKind) String() string {
	switch kind {
	case OPERAND_REGISTER:
		return "REG"
	case OPERAND_IMMEDIATE:
		return "IMM"
	case OPERAND_ADDRESS:
		return "[ADDR]"
	case OPERAND_LABEL:
		return "LABEL"
	}
	return fmt.Sprintf("OperandKind(%d)", int(kind))
}

// MAX_OPERANDS is the largest operand count of any instruction.
const MAX_OPERANDS = 2

// Shape is the ordered list of operand kinds of an instruction.
type Shape struct {
	Len  int
	Kind [MAX_OPERANDS]OperandKind
}

// MakeShape creates a shape from a list of operand kinds.
// Kinds past MAX_OPERANDS are dropped.
func MakeShape(kinds ...OperandKind) (shape Shape) {
	shape.Len = min(len(kinds), MAX_OPERANDS)
	copy(shape.Kind[:], kinds)
	return
}

// Kinds returns the operand kinds of the shape.
func (shape Shape) Kinds() []OperandKind {
	return shape.Kind[:shape.Len]
}

// String returns the shape as space separated kinds, ie "REG IMM".
func (shape Shape) String() string {
	words := make([]string, 0, shape.Len)
	for _, kind := range shape.Kinds() {
		words = append(words, kind.String())
	}
	return strings.Join(words, " ")
}

// Register is a general purpose register.
type Register int

const (
	REG_R0 = Register(0) // R0
	REG_R1 = Register(1) // R1
	REG_R2 = Register(2) // R2
)

// REGISTER_COUNT is the number of general purpose registers.
const REGISTER_COUNT = 3

func (reg Register) String() string {
	if reg < 0 || reg >= REGISTER_COUNT {
		return fmt.Sprintf("Register(%d)", int(reg))
	}
	return fmt.Sprintf("R%d", int(reg))
}

// Code returns the machine code byte of the register.
func (reg Register) Code() uint8 {
	return uint8(reg)
}

// RegisterOf decodes a register code byte.
func RegisterOf(code uint8) (reg Register, ok bool) {
	if code >= REGISTER_COUNT {
		return
	}
	return Register(code), true
}

// LookupRegister finds a register by its exact name. 'r1' is not a
// register, so it is free to be a label.
func LookupRegister(name string) (reg Register, ok bool) {
	for n := range REGISTER_COUNT {
		if name == Register(n).String() {
			return Register(n), true
		}
	}
	return
}

// Opcode is the first byte of an encoded instruction.
type Opcode uint8

const (
	OP_MOV_REG_IMM  = Opcode(0x10)
	OP_MOV_REG_REG  = Opcode(0x11)
	OP_MOV_REG_ADDR = Opcode(0x12)
	OP_MOV_ADDR_REG = Opcode(0x13)
	OP_ADD_REG_IMM  = Opcode(0x20)
	OP_ADD_REG_REG  = Opcode(0x21)
	OP_ADD_REG_ADDR = Opcode(0x22)
	OP_SUB_REG_IMM  = Opcode(0x30)
	OP_SUB_REG_REG  = Opcode(0x31)
	OP_SUB_REG_ADDR = Opcode(0x32)
	OP_INC          = Opcode(0x40)
	OP_DEC          = Opcode(0x41)
	OP_OUT          = Opcode(0x50)
	OP_JMP          = Opcode(0x60)
	OP_CMP_REG_IMM  = Opcode(0x70)
	OP_CMP_REG_REG  = Opcode(0x71)
	OP_CMP_REG_ADDR = Opcode(0x72)
	OP_JE           = Opcode(0x80)
	OP_JNE          = Opcode(0x81)
	OP_JG           = Opcode(0x82)
	OP_JL           = Opcode(0x83)
	OP_HLT          = Opcode(0xff)
)

// Instruction is the decoded meaning of an opcode.
type Instruction struct {
	Mnemonic Mnemonic
	Shape    Shape
}

// Size returns the encoded length in bytes.
func (inst Instruction) Size() int {
	return 1 + inst.Shape.Len
}

func (inst Instruction) String() string {
	if inst.Shape.Len == 0 {
		return inst.Mnemonic.String()
	}
	return inst.Mnemonic.String() + " " + inst.Shape.String()
}

var (
	shapeNone    = MakeShape()
	shapeReg     = MakeShape(OPERAND_REGISTER)
	shapeRegImm  = MakeShape(OPERAND_REGISTER, OPERAND_IMMEDIATE)
	shapeRegReg  = MakeShape(OPERAND_REGISTER, OPERAND_REGISTER)
	shapeRegAddr = MakeShape(OPERAND_REGISTER, OPERAND_ADDRESS)
	shapeAddrReg = MakeShape(OPERAND_ADDRESS, OPERAND_REGISTER)
	shapeTarget  = MakeShape(OPERAND_IMMEDIATE)
)

// opcodeTable is the authoritative instruction set.
// Jump targets are stored as an immediate address; a label operand
// resolves to one.
var opcodeTable = map[Opcode]Instruction{
	OP_MOV_REG_IMM:  {MN_MOV, shapeRegImm},
	OP_MOV_REG_REG:  {MN_MOV, shapeRegReg},
	OP_MOV_REG_ADDR: {MN_MOV, shapeRegAddr},
	OP_MOV_ADDR_REG: {MN_MOV, shapeAddrReg},
	OP_ADD_REG_IMM:  {MN_ADD, shapeRegImm},
	OP_ADD_REG_REG:  {MN_ADD, shapeRegReg},
	OP_ADD_REG_ADDR: {MN_ADD, shapeRegAddr},
	OP_SUB_REG_IMM:  {MN_SUB, shapeRegImm},
	OP_SUB_REG_REG:  {MN_SUB, shapeRegReg},
	OP_SUB_REG_ADDR: {MN_SUB, shapeRegAddr},
	OP_INC:          {MN_INC, shapeReg},
	OP_DEC:          {MN_DEC, shapeReg},
	OP_OUT:          {MN_OUT, shapeReg},
	OP_JMP:          {MN_JMP, shapeTarget},
	OP_CMP_REG_IMM:  {MN_CMP, shapeRegImm},
	OP_CMP_REG_REG:  {MN_CMP, shapeRegReg},
	OP_CMP_REG_ADDR: {MN_CMP, shapeRegAddr},
	OP_JE:           {MN_JE, shapeTarget},
	OP_JNE:          {MN_JNE, shapeTarget},
	OP_JG:           {MN_JG, shapeTarget},
	OP_JL:           {MN_JL, shapeTarget},
	OP_HLT:          {MN_HLT, shapeNone},
}

// encodeTable is the reverse of opcodeTable.
var encodeTable = func() map[Instruction]Opcode {
	table := make(map[Instruction]Opcode, len(opcodeTable))
	for op, inst := range opcodeTable {
		table[inst] = op
	}
	return table
}()

// Decode returns the instruction an opcode selects.
func (op Opcode) Decode() (inst Instruction, ok bool) {
	inst, ok = opcodeTable[op]
	return
}

// Size returns the encoded length of the instruction, or 0 for an
// unknown opcode.
func (op Opcode) Size() int {
	inst, ok := op.Decode()
	if !ok {
		return 0
	}
	return inst.Size()
}

func (op Opcode) String() string {
	inst, ok := op.Decode()
	if !ok {
		return fmt.Sprintf("0x%02X (unknown)", uint8(op))
	}
	return fmt.Sprintf("0x%02X (%v)", uint8(op), inst)
}

// IsJump returns true for JMP and the conditional jumps.
func (mn Mnemonic) IsJump() bool {
	switch mn {
	case MN_JMP, MN_JE, MN_JNE, MN_JG, MN_JL:
		return true
	}
	return false
}

// Encode finds the opcode for a mnemonic and operand shape.
// Jumps accept a label or an immediate address as their target.
func Encode(mn Mnemonic, shape Shape) (op Opcode, ok bool) {
	if mn.IsJump() && shape == MakeShape(OPERAND_LABEL) {
		shape = shapeTarget
	}
	op, ok = encodeTable[Instruction{Mnemonic: mn, Shape: shape}]
	return
}

// Shapes returns every operand shape a mnemonic accepts, in opcode order.
func (mn Mnemonic) Shapes() (shapes []Shape) {
	for code := range 0x100 {
		inst, ok := Opcode(code).Decode()
		if ok && inst.Mnemonic == mn {
			shapes = append(shapes, inst.Shape)
			if mn.IsJump() {
				shapes = append(shapes, MakeShape(OPERAND_LABEL))
			}
		}
	}
	return
}
