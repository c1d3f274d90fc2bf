package cpu

import (
	"errors"

	"github.com/ezrec/octet/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrRegisterInvalid = errors.New(f("register code invalid"))
	ErrAddressInvalid  = errors.New(f("address invalid"))
	ErrPcOutOfBounds   = errors.New(f("program counter out of bounds"))
	ErrOpcodeUnknown   = errors.New(f("opcode unknown"))
	ErrHalted          = errors.New(f("cpu halted"))
	ErrFaulted         = errors.New(f("cpu faulted"))
	ErrOutputMissing   = errors.New(f("output channel missing"))

	// Instruction decode errors
	ErrOpcodeArg1 = errors.New(f("arg1"))
	ErrOpcodeArg2 = errors.New(f("arg2"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrMnemonicUnknown = errors.New(f("instruction unknown"))
	ErrOperandShape    = errors.New(f("operands invalid"))
	ErrOperandToken    = errors.New(f("operand invalid"))

	// Memory patch errors
	ErrPatchFormat = errors.New(f("patch format invalid"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrFault is an execution fault at a specific address.
type ErrFault struct {
	Address uint8
	Opcode  uint8
	Err     error
}

func (err *ErrFault) Error() string {
	return f("fault at 0x%02X opcode 0x%02X: %v", err.Address, err.Opcode, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrOperand names the operand a shape or token error refers to.
type ErrOperand struct {
	Operand string
	Err     error
}

func (err *ErrOperand) Error() string {
	return f("'%v' %v", err.Operand, err.Err)
}

func (err *ErrOperand) Unwrap() error {
	return err.Err
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
