// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0x0",
}

// Assembler is a two pass assembler for the octet machine.
type Assembler struct {
	Verbose    bool        // If set, verbosely logs the assembler actions.
	Statements []Statement // List of generated statements.

	predefine map[string]string // Predefines
	Label     map[string]uint8  // Map of labels to addresses.
	Equate    map[string]string // Map of equates.
}

// sourceLine is a line of source after comment removal and expansion.
type sourceLine struct {
	lineno int
	text   string
	words  []string
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of an equate word. Numbers are hex, as in
// operands, unless a word longer than two characters carries a Go base
// prefix ('0x', '0o' or '0b').
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	if v8, ok := parseHex(word); ok {
		value = int64(v8)
		return
	}

	digits := strings.TrimLeft(word, "+-")
	if len(digits) > 2 && digits[0] == '0' && strings.ContainsRune("xXoObB", rune(digits[1])) {
		value, err = strconv.ParseInt(word, 0, 64)
		return
	}

	value, err = strconv.ParseInt(word, 16, 64)
	return
}

// substitute replaces an equate operand, bare or as '[NAME]', with its
// value as hex digits.
func (asm *Assembler) substitute(word string) (text string, err error) {
	name, format := word, "%02X"
	if len(word) > 2 && word[0] == '[' && word[len(word)-1] == ']' {
		name, format = word[1:len(word)-1], "[%02X]"
	}

	equate, ok := asm.Equate[name]
	if !ok {
		text = word
		return
	}

	value, err := asm.valueOf(equate)
	if err != nil || value < 0 || value > ADDRESS_MASK {
		err = &ErrOperand{Operand: word + "=" + equate, Err: ErrEquateSyntax}
		return
	}

	text = fmt.Sprintf(format, value)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint8, err error) {
	thread := starlark.Thread{Name: "octet"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, err := asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrParseExpression(expr), err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < 0 || st_int64 > ADDRESS_MASK {
		err = ErrParseExpression(expr)
		return
	}
	value = uint8(st_int64)
	return
}

var parenExpr = regexp.MustCompile(`\$\([^\$]*\)`)

// expandLine strips comments, evaluates $() expressions, handles
// .equ definitions and substitutes equates in operands.
func (asm *Assembler) expandLine(text string, lineno int) (words []string, err error) {
	asm.Equate["LINENO"] = fmt.Sprintf("%#x", lineno)

	line, _, _ := strings.Cut(text, ";")

	line = parenExpr.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil && err == nil {
			err = _err
		}
		return fmt.Sprintf("%02X", value)
	})
	if err != nil {
		return
	}

	words = tokenize(line)

	// .equ CONST VALUE
	if len(words) > 0 && strings.EqualFold(words[0], ".equ") {
		if len(words) != 3 || !isIdent(words[1]) {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = nil
		return
	}

	// Substitute equates, but never in the mnemonic or a label definition.
	inst := false
	for n, word := range words {
		if !inst {
			_, is_label := labelDefinition(word)
			if !is_label {
				inst = true
			}
			continue
		}
		words[n], err = asm.substitute(word)
		if err != nil {
			return
		}
	}

	return
}

// Parse parses an input stream into a Program.
// Pass 1 assigns addresses to labels, pass 2 encodes the statements.
// Memory is not touched; use Program.Commit to load the result.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]uint8, 16)
	asm.Statements = asm.Statements[:0]
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, _cpu_defines)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	var lines []sourceLine

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			logrus.Infof("%v: %v", lineno, line)
		}

		var words []string
		words, err = asm.expandLine(line, lineno)
		if err != nil {
			return
		}
		if len(words) == 0 {
			continue
		}

		lines = append(lines, sourceLine{lineno: lineno, text: strings.TrimSpace(line), words: words})
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Pass 1: label addresses. Each instruction is one opcode byte plus
	// one byte per operand, whatever the operand kinds turn out to be.
	var addr int
	for n := range lines {
		src := &lines[n]
		lineno, line = src.lineno, src.text

		for len(src.words) > 0 {
			label, ok := labelDefinition(src.words[0])
			if !ok {
				break
			}
			_, dup := asm.Label[label]
			if dup {
				err = &ErrOperand{Operand: label, Err: ErrLabelDuplicate}
				return
			}
			asm.Label[label] = uint8(addr)
			src.words = src.words[1:]
		}

		addr = (addr + len(src.words)) & ADDRESS_MASK
	}

	// Pass 2: encode.
	addr = 0
	for _, src := range lines {
		if len(src.words) == 0 {
			continue
		}
		lineno, line = src.lineno, src.text

		var stmt Statement
		stmt, err = asm.encode(src.words)
		if err != nil {
			return
		}
		stmt.LineNo = src.lineno
		stmt.Address = uint8(addr)
		asm.Statements = append(asm.Statements, stmt)

		addr = (addr + len(stmt.Bytes)) & ADDRESS_MASK
	}

	prog = &Program{
		Statements: append([]Statement(nil), asm.Statements...),
		Label:      maps.Clone(asm.Label),
	}

	return
}

// encode converts the words of a single instruction into bytes.
func (asm *Assembler) encode(words []string) (stmt Statement, err error) {
	stmt.Words = words

	mn, ok := LookupMnemonic(words[0])
	if !ok {
		err = &ErrOperand{Operand: words[0], Err: ErrMnemonicUnknown}
		return
	}

	args := words[1:]
	if len(args) > MAX_OPERANDS {
		err = &ErrOperand{Operand: strings.Join(words, " "), Err: ErrOperandShape}
		return
	}

	operands := make([]Operand, 0, len(args))
	kinds := make([]OperandKind, 0, len(args))
	for _, arg := range args {
		var operand Operand
		operand, err = classifyOperand(arg)
		if err != nil {
			return
		}
		operands = append(operands, operand)
		kinds = append(kinds, operand.Kind)
	}

	shape := MakeShape(kinds...)
	op, ok := Encode(mn, shape)
	if !ok {
		var kind_names []string
		for _, kind := range kinds {
			kind_names = append(kind_names, kind.String())
		}
		err = &ErrOperand{Operand: mn.String() + " " + strings.Join(kind_names, " "), Err: ErrOperandShape}
		return
	}

	stmt.Bytes = append(stmt.Bytes, uint8(op))
	for _, operand := range operands {
		switch operand.Kind {
		case OPERAND_REGISTER:
			stmt.Bytes = append(stmt.Bytes, operand.Register.Code())
		case OPERAND_IMMEDIATE, OPERAND_ADDRESS:
			stmt.Bytes = append(stmt.Bytes, operand.Value)
		case OPERAND_LABEL:
			target, ok := asm.Label[operand.Label]
			if !ok {
				err = ErrLabelMissing(operand.Label)
				return
			}
			stmt.Bytes = append(stmt.Bytes, target)
			stmt.LinkLabel = operand.Label
		}
	}

	return
}

// Assemble is a convenience wrapper to assemble source text.
func Assemble(source string) (prog *Program, err error) {
	asm := &Assembler{}
	return asm.Parse(strings.NewReader(source))
}
