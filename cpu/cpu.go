package cpu

import (
	"errors"
	"fmt"
	"iter"
	"maps"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/octet/io"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":  fmt.Sprintf("0x%x", MEMORY_SIZE),
	"ADDRESS_MASK": fmt.Sprintf("0x%x", ADDRESS_MASK),
}

// Outcome is the result of a single step.
type Outcome int

const (
	OUTCOME_CONTINUED = Outcome(0) // continued
	OUTCOME_HALTED    = Outcome(1) // halted
	OUTCOME_FAULTED   = Outcome(2) // faulted
)

func (oc Outcome) String() string {
	switch oc {
	case OUTCOME_CONTINUED:
		return "continued"
	case OUTCOME_HALTED:
		return "halted"
	case OUTCOME_FAULTED:
		return "faulted"
	}
	return fmt.Sprintf("Outcome(%d)", int(oc))
}

// RunState is the execution state of the CPU.
type RunState int

const (
	RUN_READY   = RunState(0) // ready
	RUN_RUNNING = RunState(1) // running
	RUN_HALTED  = RunState(2) // halted
	RUN_FAULTED = RunState(3) // faulted
)

func (rs RunState) String() string {
	switch rs {
	case RUN_READY:
		return "ready"
	case RUN_RUNNING:
		return "running"
	case RUN_HALTED:
		return "halted"
	case RUN_FAULTED:
		return "faulted"
	}
	return fmt.Sprintf("RunState(%d)", int(rs))
}

// Terminal returns true if no further steps are accepted.
func (rs RunState) Terminal() bool {
	return rs == RUN_HALTED || rs == RUN_FAULTED
}

// Effect is how an executed instruction moves the program counter.
type Effect struct {
	Jump    bool  // If set, PC is replaced by Target.
	Target  uint8 // Jump target.
	Advance int   // Bytes to advance PC by when not jumping.
}

// AdvanceBy moves PC past an instruction of n bytes.
func AdvanceBy(n int) Effect {
	return Effect{Advance: n}
}

// JumpTo sets PC to an absolute address.
func JumpTo(addr uint8) Effect {
	return Effect{Jump: true, Target: addr}
}

// Snapshot is a copy of the CPU state, safe to hand to observers.
type Snapshot struct {
	State
	RunState RunState
	Ticks    int
	Output   []string
}

// Cpu is the fetch-decode-execute engine of the machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	State // Registers, flags and memory.

	Output   io.Channel // OUT destination.
	RunState RunState   // Current execution state.
	Ticks    int        // Instructions executed since reset.

	fault error
}

// NewCpu creates a new CPU writing OUT values to an unlimited tape.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Output: &io.Tape{},
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears the registers and flags.
// - Rewinds the output channel.
// - Zeros the tick counter, and returns to the ready state.
// Memory is not modified.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		logrus.Info("cpu: reset")
	}

	cpu.State.Reset()
	if cpu.Output != nil {
		cpu.Output.Rewind()
	}
	cpu.RunState = RUN_READY
	cpu.Ticks = 0
	cpu.fault = nil
}

// Fault returns the error that faulted the CPU, if any.
func (cpu *Cpu) Fault() error {
	return cpu.fault
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("% 5s: %v\n", "state", cpu.RunState)
	text += cpu.State.String()
	return
}

// Snapshot copies the current CPU state.
func (cpu *Cpu) Snapshot() (snap Snapshot) {
	snap = Snapshot{
		State:    cpu.State,
		RunState: cpu.RunState,
		Ticks:    cpu.Ticks,
	}

	if cpu.Output != nil {
		for value := range cpu.Output.Receive() {
			snap.Output = append(snap.Output, fmt.Sprintf("%02X", value))
		}
	}

	return
}

// Step fetches, decodes and executes the instruction at PC.
// A halted or faulted CPU rejects the step with ErrHalted or ErrFaulted
// until Reset. A fault is returned as an *ErrFault, and leaves the
// state as of the last successful write.
func (cpu *Cpu) Step() (outcome Outcome, err error) {
	switch cpu.RunState {
	case RUN_HALTED:
		outcome = OUTCOME_HALTED
		err = ErrHalted
		return
	case RUN_FAULTED:
		outcome = OUTCOME_FAULTED
		err = ErrFaulted
		return
	}

	cpu.RunState = RUN_RUNNING

	pc := cpu.Pc
	cpu.Ir = cpu.Memory[pc]
	op := Opcode(cpu.Ir)

	if cpu.Verbose {
		logrus.WithFields(logrus.Fields{
			"pc": fmt.Sprintf("%02X", pc),
			"ir": fmt.Sprintf("%02X", cpu.Ir),
		}).Infof("cpu: %v", op)
	}

	defer func() {
		if err != nil {
			err = &ErrFault{Address: pc, Opcode: uint8(op), Err: err}
			cpu.fault = err
			cpu.RunState = RUN_FAULTED
			outcome = OUTCOME_FAULTED
			if cpu.Verbose {
				logrus.WithError(err).Info("cpu: fault")
			}
		}
	}()

	effect, halted, err := cpu.Execute(op)
	if err != nil {
		return
	}

	err = cpu.advance(effect)
	if err != nil {
		return
	}

	cpu.Ticks++

	if halted {
		cpu.RunState = RUN_HALTED
		outcome = OUTCOME_HALTED
		return
	}

	outcome = OUTCOME_CONTINUED
	return
}

// advance applies an instruction's effect to PC.
func (cpu *Cpu) advance(effect Effect) (err error) {
	if effect.Jump {
		cpu.Pc = effect.Target
		return
	}

	if effect.Advance < 1 || effect.Advance > 1+MAX_OPERANDS {
		err = ErrPcOutOfBounds
		return
	}

	cpu.Pc = uint8((int(cpu.Pc) + effect.Advance) & ADDRESS_MASK)
	return
}

// Execute executes a single decoded instruction at PC.
// No state is modified if an error is returned.
func (cpu *Cpu) Execute(op Opcode) (effect Effect, halted bool, err error) {
	inst, ok := op.Decode()
	if !ok {
		err = ErrOpcodeUnknown
		return
	}

	effect = AdvanceBy(inst.Size())

	switch inst.Mnemonic {
	case MN_HLT:
		halted = true
		return
	case MN_JMP, MN_JE, MN_JNE, MN_JG, MN_JL:
		if cpu.taken(inst.Mnemonic) {
			effect = JumpTo(cpu.operand(1))
		}
		return
	case MN_OUT:
		var reg Register
		reg, err = cpu.getRegister(1)
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		if cpu.Output == nil {
			err = ErrOutputMissing
			return
		}
		err = cpu.Output.Send(cpu.Register[reg])
		return
	}

	if op == OP_MOV_ADDR_REG {
		var reg Register
		reg, err = cpu.getRegister(2)
		if err != nil {
			err = errors.Join(ErrOpcodeArg2, err)
			return
		}
		err = cpu.Poke(int(cpu.operand(1)), cpu.Register[reg])
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
		}
		return
	}

	// All remaining instructions have a destination register,
	// and an optional source operand.
	dst, err := cpu.getRegister(1)
	if err != nil {
		err = errors.Join(ErrOpcodeArg1, err)
		return
	}

	var src uint8
	if inst.Shape.Len == 2 {
		src, err = cpu.getValue(inst.Shape.Kind[1], 2)
		if err != nil {
			err = errors.Join(ErrOpcodeArg2, err)
			return
		}
	}

	switch inst.Mnemonic {
	case MN_MOV:
		cpu.Register[dst] = src
	case MN_ADD:
		cpu.Register[dst] += src
	case MN_SUB:
		cpu.Register[dst] -= src
	case MN_INC:
		cpu.Register[dst]++
	case MN_DEC:
		cpu.Register[dst]--
	case MN_CMP:
		cpu.compare(cpu.Register[dst], src)
	default:
		err = ErrOpcodeUnknown
	}

	return
}

// taken returns true if a jump's condition holds.
func (cpu *Cpu) taken(mn Mnemonic) bool {
	switch mn {
	case MN_JMP:
		return true
	case MN_JE:
		return cpu.Flags.Zero
	case MN_JNE:
		return !cpu.Flags.Zero
	case MN_JG:
		return !cpu.Flags.Zero && !cpu.Flags.Sign
	case MN_JL:
		return cpu.Flags.Sign
	}
	return false
}

// compare sets the flags from the 8-bit wrapped difference a - b.
func (cpu *Cpu) compare(a, b uint8) {
	result := int(a) - int(b)
	cpu.Flags.Zero = (result & 0xff) == 0
	cpu.Flags.Sign = (result & 0x80) != 0
}

// getRegister decodes the register code at PC+offset.
func (cpu *Cpu) getRegister(offset int) (reg Register, err error) {
	code := cpu.operand(offset)
	reg, ok := RegisterOf(code)
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// getValue gets the value of the operand at PC+offset.
func (cpu *Cpu) getValue(kind OperandKind, offset int) (value uint8, err error) {
	switch kind {
	case OPERAND_REGISTER:
		var reg Register
		reg, err = cpu.getRegister(offset)
		if err != nil {
			return
		}
		value = cpu.Register[reg]
	case OPERAND_IMMEDIATE:
		value = cpu.operand(offset)
	case OPERAND_ADDRESS:
		value, err = cpu.Peek(int(cpu.operand(offset)))
	default:
		panic("unknown operand kind")
	}

	return
}
