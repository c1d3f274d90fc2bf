package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Statement is a line of assembled source with its generated bytes.
type Statement struct {
	LineNo    int      // Source line, 1 based.
	Address   uint8    // Address of the first byte.
	Words     []string // Instruction words, labels removed.
	Bytes     []uint8  // Encoded instruction.
	LinkLabel string   // Label operand, if any.
}

// Program is the output of a successful assembly.
type Program struct {
	Statements []Statement
	Label      map[string]uint8
}

type Debug struct {
	*Statement
	Index int
}

// Debug finds the statement that encodes the byte at addr.
func (prog *Program) Debug(addr uint8) (dbg Debug) {
	for n, stmt := range prog.Statements {
		for index := range len(stmt.Bytes) {
			if uint8(int(stmt.Address)+index) == addr {
				dbg = Debug{
					Statement: &prog.Statements[n],
					Index:     index,
				}
			}
		}
	}

	return
}

// Bytes iterates over every address and byte in assembly order.
// Later statements overwrite earlier ones at the same address.
func (prog *Program) Bytes() iter.Seq2[uint8, uint8] {
	return func(yield func(addr uint8, value uint8) bool) {
		for _, stmt := range prog.Statements {
			for n, value := range stmt.Bytes {
				if !yield(uint8(int(stmt.Address)+n), value) {
					return
				}
			}
		}
	}
}

// Image returns the program as a memory image. Cells the program does
// not cover are zero.
func (prog *Program) Image() (image Memory) {
	for addr, value := range prog.Bytes() {
		image[addr] = value
	}
	return
}

// Commit writes the program bytes into the state memory. Cells the
// program does not cover keep their contents.
func (prog *Program) Commit(st *State) {
	for addr, value := range prog.Bytes() {
		st.Memory[addr] = value
	}
}

// String returns an address, bytes and source listing of the program.
func (prog *Program) String() string {
	var sb strings.Builder
	for _, stmt := range prog.Statements {
		var hex []string
		for _, value := range stmt.Bytes {
			hex = append(hex, fmt.Sprintf("%02X", value))
		}
		fmt.Fprintf(&sb, "%02X: %-8s ; %4d: %v\n", stmt.Address, strings.Join(hex, " "), stmt.LineNo, strings.Join(stmt.Words, " "))
	}
	return sb.String()
}
