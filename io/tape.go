package io

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
)

// Tape is an append-only output stream of byte values.
// Each value is rendered as two upper case hex digits and a newline,
// and is mirrored to Output when it is set.
type Tape struct {
	Output   io.Writer // Optional mirror of the rendered stream.
	Capacity int       // Maximum number of values, 0 for unlimited.

	values []uint8
}

var _ Channel = (*Tape)(nil)

// Rewind clears the recorded values. Output is not affected.
func (tc *Tape) Rewind() {
	tc.values = tc.values[:0]
}

// Receive returns an iterator over the recorded values.
func (tc *Tape) Receive() iter.Seq[uint8] {
	return slices.Values(slices.Clone(tc.values))
}

// Send records a value, and writes its rendering to Output.
// Returns ErrChannelFull if the tape has reached capacity.
func (tc *Tape) Send(value uint8) (err error) {
	if tc.Capacity > 0 && len(tc.values) >= tc.Capacity {
		err = ErrChannelFull
		return
	}

	tc.values = append(tc.values, value)

	if tc.Output != nil {
		_, err = io.WriteString(tc.Output, render(value))
	}

	return
}

// Len returns the number of recorded values.
func (tc *Tape) Len() int {
	return len(tc.values)
}

// Lines returns the recorded values as two digit hex strings.
func (tc *Tape) Lines() (lines []string) {
	for _, value := range tc.values {
		lines = append(lines, fmt.Sprintf("%02X", value))
	}
	return
}

// String returns the rendered stream.
func (tc *Tape) String() string {
	var sb strings.Builder
	for _, value := range tc.values {
		sb.WriteString(render(value))
	}
	return sb.String()
}

func render(value uint8) string {
	return fmt.Sprintf("%02X\n", value)
}
