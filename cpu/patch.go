package cpu

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// patchLine matches '[HH]: HH'.
var patchLine = regexp.MustCompile(`(?i)^\[([0-9a-f]{2})\]:\s*([0-9a-f]{2})$`)

// Patch sets memory cells directly from lines of the form '[HH]: HH'.
// Blank lines are skipped. The whole batch is validated before any
// cell is written, so a malformed line leaves memory untouched.
func (st *State) Patch(input io.Reader) (err error) {
	type cell struct {
		lineno int
		line   string
		addr   int
		value  uint8
	}

	var cells []cell
	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		lineno++
		line = strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}

		match := patchLine.FindStringSubmatch(line)
		if match == nil {
			err = ErrPatchFormat
			return
		}

		addr, _ := strconv.ParseUint(match[1], 16, 8)
		value, _ := strconv.ParseUint(match[2], 16, 8)
		cells = append(cells, cell{lineno: lineno, line: line, addr: int(addr), value: uint8(value)})
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	for _, c := range cells {
		lineno, line = c.lineno, c.line
		err = st.Poke(c.addr, c.value)
		if err != nil {
			return
		}
	}

	return
}
