// Package cpu implements the processor and assembler for the octet 8-bit machine.
//
// The machine has 256 bytes of memory, a program counter (PC), three 8-bit
// general-purpose registers (R0-R2) and two condition flags (ZF, SF) written
// by CMP. Arithmetic wraps modulo 256, as do operand fetches past the end of
// memory. Instructions are one opcode byte followed by one byte per operand.
//
// The assembler is two pass: the first pass assigns label addresses from
// the operand count of each line, the second encodes. Source syntax:
//
//	; comment
//	.equ LIMIT 0A        ; equate, substituted in operands
//	LOOP:                ; label definition
//	    INC R0
//	    CMP R0, LIMIT    ; commas separate like spaces
//	    JL LOOP
//	    MOV [F0], R0
//	    OUT R0
//	    HLT
//
// Operands are classified in order: exact register name, [HH] memory
// address, one or two digit hex immediate, then label. An equate operand
// is replaced by its value as two hex digits. $(expr) is evaluated at
// assembly time over the integer equates and replaced by its hex value.
package cpu
