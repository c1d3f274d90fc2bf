package cpu

import (
	"fmt"
	"io"
	"strings"
)

const (
	MEMORY_SIZE  = 0x100 // Number of memory cells.
	ADDRESS_MASK = 0xff  // Mask of a valid address.
	ROW_SIZE     = 0x10  // Cells per row of a memory dump.
)

// Memory is the flat byte memory of the machine.
type Memory [MEMORY_SIZE]uint8

// Flags are the condition flags written by CMP.
type Flags struct {
	Zero bool // ZF
	Sign bool // SF
}

func (fl Flags) String() string {
	bit := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}
	return fmt.Sprintf("ZF=%d SF=%d", bit(fl.Zero), bit(fl.Sign))
}

// State holds the registers, flags and memory of the machine.
type State struct {
	Pc       uint8                 // Program counter.
	Ir       uint8                 // Last fetched opcode, display only.
	Register [REGISTER_COUNT]uint8 // R0-R2.
	Flags    Flags                 // Condition flags.
	Memory   Memory                // Main memory.
}

// Reset clears the registers and flags. Memory is left untouched.
func (st *State) Reset() {
	st.Pc = 0
	st.Ir = 0
	clear(st.Register[:])
	st.Flags = Flags{}
}

// Peek reads a memory cell.
func (st *State) Peek(addr int) (value uint8, err error) {
	if addr < 0 || addr > ADDRESS_MASK {
		err = ErrAddressInvalid
		return
	}
	value = st.Memory[addr]
	return
}

// Poke writes a memory cell.
func (st *State) Poke(addr int, value uint8) (err error) {
	if addr < 0 || addr > ADDRESS_MASK {
		err = ErrAddressInvalid
		return
	}
	st.Memory[addr] = value
	return
}

// operand returns the byte at PC+offset, wrapping at the end of memory.
func (st *State) operand(offset int) uint8 {
	return st.Memory[(int(st.Pc)+offset)&ADDRESS_MASK]
}

// Dump writes memory as a 16x16 hex grid with row and column headers.
func (st *State) Dump(w io.Writer) (err error) {
	var sb strings.Builder

	sb.WriteString("  ")
	for col := range ROW_SIZE {
		fmt.Fprintf(&sb, " %02X", col)
	}
	sb.WriteString("\n")

	for row := 0; row < MEMORY_SIZE; row += ROW_SIZE {
		fmt.Fprintf(&sb, "%02X", row)
		for _, cell := range st.Memory[row : row+ROW_SIZE] {
			fmt.Fprintf(&sb, " %02X", cell)
		}
		sb.WriteString("\n")
	}

	_, err = io.WriteString(w, sb.String())
	return
}

// String returns the register and flag state.
func (st *State) String() (text string) {
	text += fmt.Sprintf("% 5s: %02X\n", "pc", st.Pc)
	text += fmt.Sprintf("% 5s: %02X\n", "ir", st.Ir)
	for n, val := range st.Register {
		text += fmt.Sprintf("% 5s: %02X\n", Register(n).String(), val)
	}
	text += fmt.Sprintf("% 5s: %v\n", "flags", st.Flags)
	return
}
