package cpu

import (
	"fmt"
	"strings"
)

// Operand is a classified instruction operand.
type Operand struct {
	Kind     OperandKind
	Register Register // OPERAND_REGISTER
	Value    uint8    // OPERAND_IMMEDIATE and OPERAND_ADDRESS
	Label    string   // OPERAND_LABEL, upper case
}

func (op Operand) String() string {
	switch op.Kind {
	case OPERAND_REGISTER:
		return op.Register.String()
	case OPERAND_IMMEDIATE:
		return fmt.Sprintf("%02X", op.Value)
	case OPERAND_ADDRESS:
		return fmt.Sprintf("[%02X]", op.Value)
	case OPERAND_LABEL:
		return op.Label
	}
	return "?"
}

// tokenize strips the comment from a line, and splits the remainder
// into words. Commas separate words like spaces do.
func tokenize(line string) (words []string) {
	line, _, _ = strings.Cut(line, ";")
	line = strings.ReplaceAll(line, ",", " ")
	return strings.Fields(line)
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// parseHex parses a word of 1 to 2 hex digits.
func parseHex(word string) (value uint8, ok bool) {
	if len(word) < 1 || len(word) > 2 {
		return
	}
	for n := range len(word) {
		if !isHexDigit(word[n]) {
			return
		}
		value = value<<4 | hexValue(word[n])
	}
	ok = true
	return
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isIdent returns true for [A-Za-z_][A-Za-z0-9_]*
func isIdent(word string) bool {
	if len(word) == 0 || !isIdentStart(word[0]) {
		return false
	}
	for n := 1; n < len(word); n++ {
		if !isIdentStart(word[n]) && !(word[n] >= '0' && word[n] <= '9') {
			return false
		}
	}
	return true
}

// labelDefinition returns the label name if word is 'IDENT:'.
func labelDefinition(word string) (label string, ok bool) {
	label, found := strings.CutSuffix(word, ":")
	if !found || !isIdent(label) {
		return "", false
	}
	return strings.ToUpper(label), true
}

// classifyOperand determines the kind of an operand word.
// Priority: exact register name, then '[HH]', then 1-2 hex digit
// immediate, then label.
func classifyOperand(word string) (op Operand, err error) {
	if reg, ok := LookupRegister(word); ok {
		op = Operand{Kind: OPERAND_REGISTER, Register: reg}
		return
	}

	if len(word) == 4 && word[0] == '[' && word[3] == ']' {
		if value, ok := parseHex(word[1:3]); ok {
			op = Operand{Kind: OPERAND_ADDRESS, Value: value}
			return
		}
	}

	if value, ok := parseHex(word); ok {
		op = Operand{Kind: OPERAND_IMMEDIATE, Value: value}
		return
	}

	if isIdent(word) {
		op = Operand{Kind: OPERAND_LABEL, Label: strings.ToUpper(word)}
		return
	}

	err = &ErrOperand{Operand: word, Err: ErrOperandToken}
	return
}
